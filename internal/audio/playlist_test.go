package audio

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/handiism/audio-info-updater/internal/model"
)

func testAssignments() []model.Assignment {
	first := model.NewCandidateFile("/music/01 track1.mp3")
	second := model.NewCandidateFile("/music/02 track2.mp3")
	second.Duration = 200
	return []model.Assignment{
		{File: first, Record: model.NewRecord(0, model.RawRecord{Track: 1, Title: "track1", Artist: "Test Artist", Album: "Test Album", Duration: 180})},
		{File: second, Record: model.NewRecord(1, model.RawRecord{Track: 2, Title: "track2", Album: "Test Album"})},
	}
}

func TestPlaylistCreator_M3U(t *testing.T) {
	content := NewPlaylistCreator(model.PlaylistFormatM3U, false).CreatePlaylist("Test Album", testAssignments())

	assert.Equal(t, "01 track1.mp3\n02 track2.mp3\n", content)
}

func TestPlaylistCreator_M3UExtended(t *testing.T) {
	content := NewPlaylistCreator(model.PlaylistFormatM3U, true).CreatePlaylist("Test Album", testAssignments())

	assert.Equal(t, "#EXTM3U\n#EXTINF:180,Test Artist - track1\n01 track1.mp3\n#EXTINF:200,track2\n02 track2.mp3\n", content)
}

func TestPlaylistCreator_PLS(t *testing.T) {
	content := NewPlaylistCreator(model.PlaylistFormatPLS, false).CreatePlaylist("Test Album", testAssignments())

	assert.True(t, len(content) > 0 && content[:10] == "[playlist]")
	assert.Contains(t, content, "File1=01 track1.mp3\n")
	assert.Contains(t, content, "Length2=200\n")
	assert.Contains(t, content, "NumberOfEntries=2\n")
}

func TestPlaylistCreator_WPL(t *testing.T) {
	content := NewPlaylistCreator(model.PlaylistFormatWPL, false).CreatePlaylist("Test Album", testAssignments())

	assert.Contains(t, content, "<?wpl")
	assert.Contains(t, content, "<title>Test Album</title>")
	assert.Contains(t, content, `<media src="02 track2.mp3"/>`)
}

func TestPlaylistCreator_ZPL(t *testing.T) {
	content := NewPlaylistCreator(model.PlaylistFormatZPL, false).CreatePlaylist("Test Album", testAssignments())

	assert.Contains(t, content, "<?zpl")
	assert.Contains(t, content, `albumTitle="Test Album"`)
	assert.Contains(t, content, `duration="180000"`)
	assert.Contains(t, content, `<meta name="ItemCount" content="2"/>`)
}

func TestPlaylistCreator_XMLEscape(t *testing.T) {
	a := []model.Assignment{{
		File:   model.NewCandidateFile("/music/a.mp3"),
		Record: model.NewRecord(0, model.RawRecord{Title: `Track & "Quote"`}),
	}}

	content := NewPlaylistCreator(model.PlaylistFormatZPL, false).CreatePlaylist("Album <Special>", a)

	assert.Contains(t, content, "Album &lt;Special&gt;")
	assert.Contains(t, content, "Track &amp; &quot;Quote&quot;")
	assert.NotContains(t, content, "<Special>")
}

func TestPlaylistCreator_UntitledUsesFileName(t *testing.T) {
	a := []model.Assignment{{File: model.NewCandidateFile("/music/raw take.mp3"), Record: model.NewRecord(0, model.RawRecord{Track: 1})}}

	content := NewPlaylistCreator(model.PlaylistFormatM3U, true).CreatePlaylist("x", a)

	assert.Contains(t, content, "#EXTINF:0,raw take\n")
}
