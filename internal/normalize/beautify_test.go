package normalize

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handiism/audio-info-updater/internal/config"
	"github.com/handiism/audio-info-updater/internal/model"
)

var (
	testStopwords  = config.NewStopwordSet("a", "and", "at", "of", "the", "in")
	testExceptions = config.NewExceptionMap("BBC", "DJ", "iPhone")
)

func TestBeautify(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"   ", ""},
		{"hello world", "Hello World"},
		{"the beatles - live at the bbc", "The Beatles - Live at the BBC"},
		{"live at the roxy (the encore)", "Live at the Roxy (The Encore)"},
		{"part one: the beginning", "Part One: The Beginning"},
		{"end. the start", "End. The Start"},
		{"the end of the world", "The End of the World"},
		{"mcCartney and THE band", "McCartney and the Band"},
		{"ABBA gold", "ABBA Gold"},
		{"dj shadow", "DJ Shadow"},
		{"my IPHONE song", "My iPhone Song"},
		{"re-entry", "Re-Entry"},
		{"don't stop", "Don't Stop"},
		{"tab\tand\nnewline", "Tab and Newline"},
		{"multiple    spaces", "Multiple Spaces"},
		{"...", "..."},
		{"?!", "?!"},
		{"2nd movement", "2nd Movement"},
		{"été à paris", "Été À Paris"},
		{"intro [the reprise]", "Intro [The Reprise]"},
		{"song — the end", "Song — The End"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, Beautify(tt.input, testStopwords, testExceptions))
		})
	}
}

func TestBeautify_NilLists(t *testing.T) {
	assert.Equal(t, "The End Of The World", Beautify("the end of the world", nil, nil))
}

func TestBeautify_Idempotent(t *testing.T) {
	corpus := []string{
		"the beatles - live at the bbc",
		"  weird\tspacing  ",
		"(the) [a] {of}",
		"a - a - a",
		"DJ dj Dj",
		"iPhone IPHONE",
		"l'été d'un ange",
		"'til the end",
		"-",
		" - ",
		"ÉCOLE of ROCK",
	}

	fragments := []string{
		"the", "a", "of", "and", "at", "song", "SONG", "mcCartney", "bbc", "dj",
		"iphone", "été", "Ärger", "2nd", "don't", "'", " ", " ", "\t", "-", " - ",
		".", "!", "?", ":", ";", "(", ")", "[", "]", "\"", ",", "—", "_", "&",
	}
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		var b strings.Builder
		for j := rng.Intn(12); j >= 0; j-- {
			b.WriteString(fragments[rng.Intn(len(fragments))])
		}
		corpus = append(corpus, b.String())
	}

	for _, s := range corpus {
		once := Beautify(s, testStopwords, testExceptions)
		twice := Beautify(once, testStopwords, testExceptions)
		assert.Equal(t, once, twice, "input %q", s)
	}
}

func TestBeautify_DotlessI(t *testing.T) {
	stopwords := config.NewStopwordSet("i", "the")

	once := Beautify("song ı the ı", stopwords, nil)
	assert.Equal(t, "Song i the i", once)
	assert.Equal(t, once, Beautify(once, stopwords, nil))

	once = Beautify("ı song", stopwords, nil)
	assert.Equal(t, "I Song", once)
	assert.Equal(t, once, Beautify(once, stopwords, nil))
}

func TestBeautify_DefaultWordlists(t *testing.T) {
	lists, err := config.LoadWordlists(config.DefaultSettings())
	require.NoError(t, err)
	require.True(t, lists.MatchStopwords.Contains("official"))
	require.False(t, lists.RenameStopwords.Contains("official"))

	got := Beautify("official video of love", lists.RenameStopwords, lists.Exceptions)
	assert.Equal(t, "Official Video of Love", got, "match stopwords are still capitalized")
}

func TestBeautifier_CustomFormatters(t *testing.T) {
	b := NewBeautifier(testStopwords, nil)
	b.WordFormat = strings.ToUpper
	b.StopwordFormat = nil

	assert.Equal(t, "THE END Of the WORLD", b.String("the end Of the world"))
}

func TestBeautifier_Record(t *testing.T) {
	b := NewBeautifier(testStopwords, testExceptions)
	rec := model.NewRecord(0, model.RawRecord{
		Track:  1,
		Title:  "song of the year",
		Artist: "dj someone",
		Album:  "the album",
		Genre:  "hip hop",
		File:   "01 song of the year.mp3",
	})

	got := b.Record(rec)

	assert.Equal(t, "Song of the Year", got.Title)
	assert.Equal(t, "DJ Someone", got.Artist)
	assert.Equal(t, "The Album", got.Album)
	assert.Equal(t, "Hip Hop", got.Genre)
	assert.Equal(t, "01 song of the year.mp3", got.File, "file paths are not beautified")
	assert.Equal(t, "song of the year", rec.Title, "input record is not modified")

	all := b.Records([]model.Record{rec})
	assert.Equal(t, got.Title, all[0].Title)
}

func TestBeautifier_RecordKeepsOriginsApart(t *testing.T) {
	rec := model.NewRecord(0, model.RawRecord{Title: "song", Artist: "band"})
	rec.SetOrigin(model.FieldArtist, model.OriginShared)

	got := NewBeautifier(testStopwords, nil).Record(rec)
	assert.Equal(t, model.OriginShared, got.Origin(model.FieldArtist))

	got.SetOrigin(model.FieldArtist, model.OriginLiteral)
	got.SetOrigin(model.FieldTitle, model.OriginLiteral)
	assert.Equal(t, model.OriginShared, rec.Origin(model.FieldArtist))
	assert.Equal(t, model.OriginRecord, rec.Origin(model.FieldTitle))
}

func TestUpperFirst(t *testing.T) {
	assert.Equal(t, "Hello", UpperFirst("hello"))
	assert.Equal(t, "'Til", UpperFirst("'til"))
	assert.Equal(t, "ABBA", UpperFirst("ABBA"))
	assert.Equal(t, "'", UpperFirst("'"))
	assert.Equal(t, "Élan", UpperFirst("élan"))
}
