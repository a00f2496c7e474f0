package normalize

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/handiism/audio-info-updater/internal/model"
)

// Stopwords reports whether a word is a stopword, ignoring case.
type Stopwords interface {
	Contains(word string) bool
}

// Exceptions returns the fixed rendering of a word, ignoring case.
type Exceptions interface {
	Lookup(word string) (string, bool)
}

// Formatter transforms a single word.
type Formatter func(word string) string

// UpperFirst upper-cases the first letter and keeps the rest of the word as
// is, so "mcCartney" becomes "McCartney" and "ABBA" stays "ABBA".
func UpperFirst(word string) string {
	for i, r := range word {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			upper := unicode.ToTitle(r)
			if upper == r {
				return word
			}
			return word[:i] + string(upper) + word[i+utf8.RuneLen(r):]
		}
	}
	return word
}

// Lower lower-cases the whole word.
func Lower(word string) string {
	return cases.Lower(language.Und).String(word)
}

// Beautifier applies capitalization rules to free-text fields.
//
// For each word, in order:
//  1. an exception replaces the word with its fixed rendering
//  2. a stopword that does not start a sentence goes through StopwordFormat
//  3. any other word goes through WordFormat
//
// Sentences restart after . ! ? : ; " brackets and spaced dashes, so
// "live at the roxy (the encore)" becomes "Live at the Roxy (The Encore)".
// Beautification is idempotent as long as the formatters are.
type Beautifier struct {
	Stopwords      Stopwords
	Exceptions     Exceptions
	WordFormat     Formatter
	StopwordFormat Formatter
}

// NewBeautifier creates a Beautifier with the default formatters.
// Either list may be nil.
func NewBeautifier(stopwords Stopwords, exceptions Exceptions) *Beautifier {
	return &Beautifier{
		Stopwords:      stopwords,
		Exceptions:     exceptions,
		WordFormat:     UpperFirst,
		StopwordFormat: Lower,
	}
}

// Beautify formats value with the default formatters.
func Beautify(value string, stopwords Stopwords, exceptions Exceptions) string {
	return NewBeautifier(stopwords, exceptions).String(value)
}

// String beautifies one value. Empty and punctuation-only values are
// returned with whitespace normalized and otherwise unchanged.
func (b *Beautifier) String(value string) string {
	if value == "" {
		return value
	}
	value = CollapseSpaces(norm.NFC.String(value))

	var (
		out           strings.Builder
		word          strings.Builder
		sentenceStart = true
	)
	flushWord := func() {
		if word.Len() == 0 {
			return
		}
		out.WriteString(b.word(word.String(), sentenceStart))
		word.Reset()
		sentenceStart = false
	}

	runes := []rune(value)
	for i, r := range runes {
		if isWordRune(r) {
			word.WriteRune(r)
			continue
		}
		flushWord()
		if isSentenceBoundary(runes, i) {
			sentenceStart = true
		}
		out.WriteRune(r)
	}
	flushWord()

	return out.String()
}

func (b *Beautifier) word(w string, sentenceStart bool) string {
	if fixed, ok := b.exception(w); ok {
		return fixed
	}
	if !sentenceStart && b.isStopword(w) {
		return apply(b.StopwordFormat, w)
	}
	formatted := apply(b.WordFormat, w)
	if formatted == w {
		return formatted
	}
	// Formatting can turn a word into a listed one, as "ı" becomes "I".
	if fixed, ok := b.exception(formatted); ok {
		return fixed
	}
	if !sentenceStart && b.isStopword(formatted) {
		return apply(b.StopwordFormat, formatted)
	}
	return formatted
}

func (b *Beautifier) exception(w string) (string, bool) {
	if b.Exceptions == nil {
		return "", false
	}
	return b.Exceptions.Lookup(w)
}

func (b *Beautifier) isStopword(w string) bool {
	return b.Stopwords != nil && b.Stopwords.Contains(w)
}

func apply(f Formatter, w string) string {
	if f == nil {
		return w
	}
	return f(w)
}

// Record beautifies the free-text fields of a copy of r.
func (b *Beautifier) Record(r model.Record) model.Record {
	r = r.Clone()
	r.Title = b.String(r.Title)
	r.Artist = b.String(r.Artist)
	r.Album = b.String(r.Album)
	r.AlbumArtist = b.String(r.AlbumArtist)
	r.Genre = b.String(r.Genre)
	return r
}

// Records beautifies every record, returning new values.
func (b *Beautifier) Records(records []model.Record) []model.Record {
	out := make([]model.Record, len(records))
	for i, r := range records {
		out[i] = b.Record(r)
	}
	return out
}

// CollapseSpaces turns every whitespace character into a space, collapses
// runs of spaces and trims both ends.
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.M, r) || r == '\'' || r == '’'
}

func isSentenceBoundary(runes []rune, i int) bool {
	switch runes[i] {
	case '.', '!', '?', ':', ';', '(', ')', '[', ']', '{', '}', '"', '“', '”', '–', '—':
		return true
	case '-':
		return i > 0 && i+1 < len(runes) && runes[i-1] == ' ' && runes[i+1] == ' '
	}
	return false
}
