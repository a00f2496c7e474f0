package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handiism/audio-info-updater/internal/model"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	settings, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)

	defaults := DefaultSettings()
	assert.Equal(t, defaults.Beautify, settings.Beautify)
	assert.Equal(t, defaults.MatchTemplates, settings.MatchTemplates)
	assert.Equal(t, defaults.RequiredFields, settings.RequiredFields)
	assert.Equal(t, defaults.TagMatchThreshold, settings.TagMatchThreshold)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aiu.yaml")
	content := strings.Join([]string{
		"beautify: false",
		"strict: true",
		"prefer_shared: [artist]",
		"word_match_overlap: 2",
	}, "\n")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	settings, err := Load(path)
	require.NoError(t, err)

	assert.False(t, settings.Beautify)
	assert.True(t, settings.Strict)
	assert.Equal(t, []string{"artist"}, settings.PreferShared)
	assert.Equal(t, 2, settings.WordMatchOverlap)
	assert.True(t, settings.UseWordMatch, "unset keys keep their default")
}

func TestLoad_EnvironmentOverride(t *testing.T) {
	t.Setenv("AIU_USE_TAG_MATCH", "false")
	t.Setenv("AIU_PLAYLIST_FORMAT", "pls")

	settings, err := Load("")
	require.NoError(t, err)

	assert.False(t, settings.UseTagMatch)
	assert.Equal(t, model.PlaylistFormatPLS, settings.ToPlaylistFormat())
}

func TestLoad_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aiu.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestSave_RoundTrip(t *testing.T) {
	for _, name := range []string{"aiu.json", "aiu.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)
			settings := DefaultSettings()
			settings.Strict = true
			settings.OutputFormat = "csv"

			require.NoError(t, settings.Save(path))

			loaded, err := Load(path)
			require.NoError(t, err)
			assert.True(t, loaded.Strict)
			assert.Equal(t, "csv", loaded.OutputFormat)
		})
	}
}

func TestSettings_Templates(t *testing.T) {
	settings := DefaultSettings()
	templates := settings.Templates()

	require.Len(t, templates, len(settings.MatchTemplates))
	assert.Equal(t, model.Template("{artist} - {track:02} - {title}"), templates[0])
}

func TestFields(t *testing.T) {
	fields, err := Fields([]string{"title", "Artist"})
	require.NoError(t, err)
	assert.Equal(t, []model.Field{model.FieldTitle, model.FieldArtist}, fields)

	_, err = Fields([]string{"lyrics"})
	var cfgErr *model.ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestReadList(t *testing.T) {
	input := "# comment\nThe\n\n   \n  of  \n#another\nAND\n"
	words, err := ReadList(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []string{"The", "of", "AND"}, words)
}

func TestStopwordSet(t *testing.T) {
	set := NewStopwordSet("The", " of ", "")

	assert.Equal(t, 2, set.Len())
	assert.True(t, set.Contains("the"))
	assert.True(t, set.Contains("THE"))
	assert.True(t, set.Contains("Of"))
	assert.False(t, set.Contains("and"))

	var empty StopwordSet
	assert.False(t, empty.Contains("the"))
}

func TestExceptionMap(t *testing.T) {
	m := NewExceptionMap("DJ", "iPhone")

	got, ok := m.Lookup("dj")
	assert.True(t, ok)
	assert.Equal(t, "DJ", got)

	got, ok = m.Lookup("IPHONE")
	assert.True(t, ok)
	assert.Equal(t, "iPhone", got)

	_, ok = m.Lookup("mc")
	assert.False(t, ok)
}

func TestLoadWordlists_Defaults(t *testing.T) {
	lists, err := LoadWordlists(DefaultSettings())
	require.NoError(t, err)

	assert.True(t, lists.RenameStopwords.Contains("of"))
	assert.False(t, lists.RenameStopwords.Contains("video"))
	assert.True(t, lists.MatchStopwords.Contains("video"))
	assert.False(t, lists.MatchStopwords.Contains("of"))

	dj, ok := lists.Exceptions.Lookup("dj")
	assert.True(t, ok)
	assert.Equal(t, "DJ", dj)
}

func TestLoadWordlists_Files(t *testing.T) {
	dir := t.TempDir()
	stop := filepath.Join(dir, "stopwords.cfg")
	require.NoError(t, os.WriteFile(stop, []byte("Remix\n"), 0644))

	settings := DefaultSettings()
	settings.StopwordsFile = stop

	lists, err := LoadWordlists(settings)
	require.NoError(t, err)
	assert.Equal(t, 1, lists.RenameStopwords.Len())
	assert.True(t, lists.RenameStopwords.Contains("remix"))
	assert.False(t, lists.MatchStopwords.Contains("remix"))

	settings.ExceptionsFile = filepath.Join(dir, "missing.cfg")
	_, err = LoadWordlists(settings)
	var cfgErr *model.ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}
