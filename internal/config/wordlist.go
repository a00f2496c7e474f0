package config

import (
	"bufio"
	"embed"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/handiism/audio-info-updater/internal/model"
)

//go:embed defaults/*.txt
var defaultLists embed.FS

// StopwordSet is an immutable set of lowercase words.
type StopwordSet struct {
	words map[string]struct{}
}

// NewStopwordSet builds a set from words, folding them to lowercase.
func NewStopwordSet(words ...string) StopwordSet {
	set := StopwordSet{words: make(map[string]struct{}, len(words))}
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w != "" {
			set.words[model.Fold(w)] = struct{}{}
		}
	}
	return set
}

// Contains reports whether word is in the set, ignoring case.
func (s StopwordSet) Contains(word string) bool {
	_, ok := s.words[model.Fold(word)]
	return ok
}

// Len returns the number of words.
func (s StopwordSet) Len() int {
	return len(s.words)
}

// ExceptionMap maps a lowercase word to its canonical rendering.
type ExceptionMap struct {
	words map[string]string
}

// NewExceptionMap builds a map keyed by the lowercase form of each rendering.
func NewExceptionMap(renderings ...string) ExceptionMap {
	m := ExceptionMap{words: make(map[string]string, len(renderings))}
	for _, w := range renderings {
		w = strings.TrimSpace(w)
		if w != "" {
			m.words[model.Fold(w)] = w
		}
	}
	return m
}

// Lookup returns the canonical rendering of word, if any.
func (m ExceptionMap) Lookup(word string) (string, bool) {
	w, ok := m.words[model.Fold(word)]
	return w, ok
}

// Len returns the number of exceptions.
func (m ExceptionMap) Len() int {
	return len(m.words)
}

// Wordlists groups the word lists loaded once per run and shared
// read-only by every collection.
//
// RenameStopwords only affect capitalization, MatchStopwords only affect
// file name matching. The two lists are kept separate even when they
// contain the same words.
type Wordlists struct {
	RenameStopwords StopwordSet
	MatchStopwords  StopwordSet
	Exceptions      ExceptionMap
}

// LoadWordlists reads the lists named in settings, falling back to the
// built-in lists for any file left empty.
func LoadWordlists(s *Settings) (*Wordlists, error) {
	rename, err := loadList(s.StopwordsFile, "defaults/stopwords.txt")
	if err != nil {
		return nil, err
	}
	match, err := loadList(s.MatchStopwordsFile, "defaults/ignore.txt")
	if err != nil {
		return nil, err
	}
	exceptions, err := loadList(s.ExceptionsFile, "defaults/exceptions.txt")
	if err != nil {
		return nil, err
	}

	return &Wordlists{
		RenameStopwords: NewStopwordSet(rename...),
		MatchStopwords:  NewStopwordSet(match...),
		Exceptions:      NewExceptionMap(exceptions...),
	}, nil
}

func loadList(path, fallback string) ([]string, error) {
	if path == "" {
		f, err := defaultLists.Open(fallback)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return ReadList(f)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &model.ConfigurationError{Reason: fmt.Sprintf("cannot open word list %s", path), Err: err}
	}
	defer f.Close()

	words, err := ReadList(f)
	if err != nil {
		return nil, &model.ConfigurationError{Reason: fmt.Sprintf("cannot read word list %s", path), Err: err}
	}
	return words, nil
}

// ReadList reads one entry per line, skipping blank lines and lines
// starting with '#'.
func ReadList(r io.Reader) ([]string, error) {
	var words []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	return words, scanner.Err()
}
