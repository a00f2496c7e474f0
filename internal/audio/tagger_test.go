package audio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bogem/id3v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handiism/audio-info-updater/internal/model"
)

func writeAudio(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("not really audio data"), 0o644))
	return path
}

func assignment(path string, raw model.RawRecord) model.Assignment {
	return model.Assignment{File: model.NewCandidateFile(path), Record: model.NewRecord(0, raw)}
}

func readFrame(t *testing.T, path, id string) string {
	t.Helper()
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	require.NoError(t, err)
	defer tag.Close()
	return tag.GetTextFrame(id).Text
}

func TestTagger_WritesFrames(t *testing.T) {
	path := writeAudio(t, "song.mp3")
	raw := model.RawRecord{
		Track: 3, Title: "Song", Artist: "Band", AlbumArtist: "Band", Album: "Record",
		Year: 1999, Genre: "Rock", Duration: model.NewDuration(0, 3, 5),
	}

	warnings, err := NewTagger(nil).Apply(assignment(path, raw), nil)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	assert.Equal(t, "Song", readFrame(t, path, "TIT2"))
	assert.Equal(t, "Band", readFrame(t, path, "TPE1"))
	assert.Equal(t, "Band", readFrame(t, path, "TPE2"))
	assert.Equal(t, "Record", readFrame(t, path, "TALB"))
	assert.Equal(t, "1999", readFrame(t, path, "TYER"))
	assert.Equal(t, "3", readFrame(t, path, "TRCK"))
	assert.Equal(t, "Rock", readFrame(t, path, "TCON"))
	assert.Equal(t, "185000", readFrame(t, path, "TLEN"))
}

func TestTagger_KeepsExistingWithoutOverwrite(t *testing.T) {
	path := writeAudio(t, "song.mp3")
	_, err := NewTagger(nil).Apply(assignment(path, model.RawRecord{Title: "Old", Album: "Record"}), nil)
	require.NoError(t, err)

	cfg := DefaultTagConfig()
	cfg.Overwrite = false
	warnings, err := NewTagger(cfg).Apply(assignment(path, model.RawRecord{Title: "New", Album: "Record", Artist: "Band"}), nil)
	require.NoError(t, err)

	assert.Equal(t, []string{`song.mp3: kept existing title "Old" instead of "New"`}, warnings)
	assert.Equal(t, "Old", readFrame(t, path, "TIT2"))
	assert.Equal(t, "Band", readFrame(t, path, "TPE1"))
}

func TestTagger_EmptyAndDoNotModify(t *testing.T) {
	path := writeAudio(t, "song.mp3")
	_, err := NewTagger(nil).Apply(assignment(path, model.RawRecord{Title: "Song", Genre: "Rock"}), nil)
	require.NoError(t, err)

	cfg := DefaultTagConfig()
	cfg.Genre = TagEmpty
	cfg.Title = TagDoNotModify
	_, err = NewTagger(cfg).Apply(assignment(path, model.RawRecord{Title: "Other"}), nil)
	require.NoError(t, err)

	assert.Equal(t, "Song", readFrame(t, path, "TIT2"))
	assert.Empty(t, readFrame(t, path, "TCON"))
}

func TestTagger_Artwork(t *testing.T) {
	path := writeAudio(t, "song.mp3")
	art := []byte{0xFF, 0xD8, 0xFF, 0xE0, 1, 2, 3}

	_, err := NewTagger(nil).Apply(assignment(path, model.RawRecord{Title: "Song"}), art)
	require.NoError(t, err)

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	require.NoError(t, err)
	defer tag.Close()
	pictures := tag.GetFrames(tag.CommonID("Attached picture"))
	require.Len(t, pictures, 1)
	pic, ok := pictures[0].(id3v2.PictureFrame)
	require.True(t, ok)
	assert.Equal(t, "image/jpeg", pic.MimeType)
	assert.Equal(t, art, pic.Picture)
}

func TestTagger_UnsupportedContainerWarns(t *testing.T) {
	path := writeAudio(t, "song.flac")

	warnings, err := NewTagger(nil).Apply(assignment(path, model.RawRecord{Title: "Song", Track: 1}), []byte{1})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"song.flac: title not written, .flac tags are not supported",
		"song.flac: track not written, .flac tags are not supported",
		"song.flac: cover not embedded, .flac tags are not supported",
	}, warnings)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "not really audio data", string(data))
}

func TestTagger_MissingFile(t *testing.T) {
	_, err := NewTagger(nil).Apply(assignment(filepath.Join(t.TempDir(), "gone.mp3"), model.RawRecord{Title: "x"}), nil)
	assert.Error(t, err)
}

func TestIsMP3(t *testing.T) {
	assert.True(t, IsMP3("a/b.MP3"))
	assert.False(t, IsMP3("a/b.m4a"))
}
