package model

import (
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// TagSet holds the metadata already embedded in an audio file.
type TagSet struct {
	Title       string
	Artist      string
	Album       string
	AlbumArtist string
	Track       int
	Year        int
	Genre       string
	Duration    Duration
}

// Record converts the embedded tags to a RawRecord for field-wise comparison.
func (t TagSet) Record() RawRecord {
	return RawRecord{
		Track:       t.Track,
		Title:       t.Title,
		Artist:      t.Artist,
		Album:       t.Album,
		AlbumArtist: t.AlbumArtist,
		Year:        t.Year,
		Genre:       t.Genre,
		Duration:    t.Duration,
	}
}

// CandidateFile is an audio file considered for metadata assignment.
//
// It is either a file on disk or a placeholder for a file that a remote
// catalog is about to fetch. Placeholders carry the expected file name and
// duration. Candidate files are not modified while a collection is resolved.
type CandidateFile struct {
	// Path is the location of the file, or its expected location for a placeholder.
	Path string

	// Placeholder marks a file that does not exist on disk yet.
	Placeholder bool

	// Cached marks a file that was already present in the output location
	// from a previous run.
	Cached bool

	// RecordHint is the index of the record the file was produced for,
	// or -1 when unknown. Set by the remote catalog.
	RecordHint int

	// Duration is the expected or measured length, zero when unknown.
	Duration Duration

	// Size is the file size in bytes, zero when unknown.
	Size int64

	// Tags are the fields already embedded in the file, nil if none were read.
	Tags *TagSet

	// Tokens is the normalized word sequence of the file name.
	Tokens []string
}

// NewCandidateFile creates a candidate for the file at path with its name tokenized.
func NewCandidateFile(path string) *CandidateFile {
	return &CandidateFile{
		Path:       path,
		RecordHint: -1,
		Tokens:     Tokenize(BaseName(path)),
	}
}

// Name returns the file name without directory.
func (f *CandidateFile) Name() string {
	return filepath.Base(f.Path)
}

// BaseName returns the file name without directory and extension.
func BaseName(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// Fold normalizes text for case-insensitive comparison: NFC composition
// followed by Unicode case folding. Diacritics are kept.
func Fold(s string) string {
	return cases.Fold().String(norm.NFC.String(s))
}

// Tokenize splits text into folded word tokens.
//
// Letters, digits and marks form words; apostrophes inside a word are
// dropped so that "Don't" and "Dont" compare equal; everything else
// separates words.
func Tokenize(s string) []string {
	s = Fold(s)
	var (
		tokens []string
		b      strings.Builder
	)
	flush := func() {
		if b.Len() > 0 {
			tokens = append(tokens, b.String())
			b.Reset()
		}
	}
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.M, r):
			b.WriteRune(r)
		case r == '\'' || r == '’':
		default:
			flush()
		}
	}
	flush()
	return tokens
}
