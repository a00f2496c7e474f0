package model

import (
	"fmt"
	"strings"
)

// ConfigurationError reports malformed or inconsistent input detected
// before matching starts. It is fatal for the collection.
type ConfigurationError struct {
	Reason string
	Err    error
}

// NewConfigurationError formats a ConfigurationError.
func NewConfigurationError(format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("configuration error: %s: %v", e.Reason, e.Err)
	}
	return "configuration error: " + e.Reason
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// Candidate is one record competing for a file, with its score.
type Candidate struct {
	Record Record
	Score  float64
}

// AmbiguousMatchError reports a file for which two or more records tied
// during heuristic matching. It is never resolved automatically.
type AmbiguousMatchError struct {
	File       *CandidateFile
	Candidates []Candidate
}

func (e *AmbiguousMatchError) Error() string {
	parts := make([]string, 0, len(e.Candidates))
	for _, c := range e.Candidates {
		parts = append(parts, fmt.Sprintf("%q (score %.2f)", c.Record.Label(), c.Score))
	}
	return fmt.Sprintf("ambiguous match for %q: %s", e.File.Name(), strings.Join(parts, ", "))
}

// UnmatchedItemWarning reports a file or record left without a counterpart.
// Exactly one of File and Record is set.
type UnmatchedItemWarning struct {
	File   *CandidateFile
	Record *Record
}

func (w *UnmatchedItemWarning) Error() string {
	if w.File != nil {
		return fmt.Sprintf("unmatched file %q", w.File.Name())
	}
	return fmt.Sprintf("unmatched record %q", w.Record.Label())
}

// PartialFetchError reports a remote item that could not be fetched.
// The rest of the batch is unaffected.
type PartialFetchError struct {
	Item string
	Err  error
}

func (e *PartialFetchError) Error() string {
	return fmt.Sprintf("failed to fetch %q: %v", e.Item, e.Err)
}

func (e *PartialFetchError) Unwrap() error {
	return e.Err
}
