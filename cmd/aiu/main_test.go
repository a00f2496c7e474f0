package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handiism/audio-info-updater/internal/config"
	"github.com/handiism/audio-info-updater/internal/model"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

// album writes two songs, their info file and a settings file without tag
// access, and returns the directory and settings path.
func album(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"01 - alpha.mp3":         "alpha",
		"02 - the beta song.mp3": "beta",
		"info.csv":               "track,title\n1,alpha\n2,the beta song\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	settings := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(settings, []byte("use_tag_match: false\nmodify_tags: false\nsave_cover_art_in_tags: false\n"), 0o644))
	return dir, settings
}

func TestExitCode(t *testing.T) {
	ambiguous := &model.AmbiguousMatchError{File: model.NewCandidateFile("a.mp3")}
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, exitOK},
		{"usage", &usageError{err: errors.New("bad flag")}, exitConfig},
		{"configuration", fmt.Errorf("album: %w", model.NewConfigurationError("duplicate titles")), exitConfig},
		{"ambiguous", errors.Join(fmt.Errorf("album: %w", errors.Join(ambiguous, ambiguous))), exitIncomplete},
		{"ambiguous and failure", errors.Join(ambiguous, errors.New("disk full")), exitOperation},
		{"configuration wins", errors.Join(ambiguous, model.NewConfigurationError("bad")), exitConfig},
		{"operation", errors.New("disk full"), exitOperation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

func TestRunFlags_Apply(t *testing.T) {
	t.Run("rename title with track", func(t *testing.T) {
		s := config.DefaultSettings()
		(&runFlags{renameTitle: true, prefixTrack: true, noUpdate: true}).apply(s)
		assert.True(t, s.Rename)
		assert.Equal(t, "{tracknum} {title}", s.FileNameFormat)
		assert.False(t, s.ModifyTags)
		assert.False(t, s.SaveCoverArtInTags)
	})

	t.Run("no rename wins", func(t *testing.T) {
		s := config.DefaultSettings()
		(&runFlags{renameFormat: "{title}", noRename: true}).apply(s)
		assert.False(t, s.Rename)
	})

	t.Run("no output wins", func(t *testing.T) {
		s := config.DefaultSettings()
		(&runFlags{output: "out.yaml", noOutput: true, deleteDuplicates: true}).apply(s)
		assert.Empty(t, s.OutputFile)
		assert.True(t, s.DetectDuplicates)
		assert.True(t, s.DeleteDuplicates)
	})
}

func TestLiteralFlags_Record(t *testing.T) {
	r, err := (&literalFlags{artist: "Band", track: "3/12", duration: "3:05"}).record()
	require.NoError(t, err)
	assert.Equal(t, "Band", r.Artist)
	assert.Equal(t, 3, r.Track)
	assert.Equal(t, model.NewDuration(0, 3, 5), r.Duration)

	_, err = (&literalFlags{year: "soon"}).record()
	assert.Equal(t, exitConfig, exitCode(err))
}

func TestGlobalFlags_Level(t *testing.T) {
	assert.Equal(t, "warn", (&globalFlags{}).level())
	assert.Equal(t, "error", (&globalFlags{quiet: true}).level())
	assert.Equal(t, "debug", (&globalFlags{quiet: true, debug: true}).level())
	assert.Equal(t, "info", (&globalFlags{verbose: true}).level())
}

func TestRoot_UpdatesDirectory(t *testing.T) {
	dir, settings := album(t)

	out, err := runCLI(t, "--config", settings, "--log-format", "json", "--quiet",
		"--rename-title", "--prefix-track", "--artist", "Band", "--output", "applied.yaml", "--details", dir)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, "01 Alpha.mp3"))
	assert.FileExists(t, filepath.Join(dir, "02 The Beta Song.mp3"))
	assert.FileExists(t, filepath.Join(dir, "applied.yaml"))
	assert.Contains(t, out, "complete")
	assert.Contains(t, out, "The Beta Song")
}

func TestRoot_DryRunReport(t *testing.T) {
	dir, settings := album(t)

	out, err := runCLI(t, "--config", settings, "--quiet", "--dry", "--rename-title", "--no-result", "--report", "-", dir)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, "01 - alpha.mp3"))
	assert.Contains(t, out, "assigned: 2")
	assert.NotContains(t, out, "Collection")
}

func TestRoot_ConfigurationError(t *testing.T) {
	dir, settings := album(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "info.csv"), []byte("title\nSame\nSame\n"), 0o644))

	_, err := runCLI(t, "--config", settings, "--quiet", dir)
	require.Error(t, err)
	assert.Equal(t, exitConfig, exitCode(err))
}

func TestRoot_PathConflict(t *testing.T) {
	_, err := runCLI(t, "--path", "a", "b")
	require.Error(t, err)
	assert.Equal(t, exitConfig, exitCode(err))
}

func TestConfigInit(t *testing.T) {
	target := filepath.Join(t.TempDir(), "settings.yaml")

	out, err := runCLI(t, "config", "init", "--path", target)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote settings")

	loaded, err := config.Load(target)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultSettings().FileNameFormat, loaded.FileNameFormat)
}
