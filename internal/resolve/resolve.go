package resolve

import (
	"errors"
	"sort"

	"github.com/handiism/audio-info-updater/internal/match"
	"github.com/handiism/audio-info-updater/internal/model"
)

// StageCache names assignments recovered from files fetched by a previous run.
const StageCache = "cache"

// Options configures Finalize.
type Options struct {
	// Strict turns ambiguous matches into an error.
	Strict bool

	// DetectDuplicates folds cached files into the assignments and reports
	// unmatched files that duplicate an assigned one.
	DetectDuplicates bool

	// NameThreshold and SizeThreshold are the similarity ratios (0-1) above
	// which two files are considered duplicates.
	NameThreshold float64
	SizeThreshold float64
}

// DefaultOptions returns non-strict options with duplicate detection on.
func DefaultOptions() Options {
	return Options{
		DetectDuplicates: true,
		NameThreshold:    0.95,
		SizeThreshold:    0.95,
	}
}

// Duplicate is an unmatched file that copies an assigned one.
type Duplicate struct {
	File     *model.CandidateFile
	Original *model.CandidateFile
}

// Result is the final outcome for one collection.
type Result struct {
	Assignments      []model.Assignment
	UnmatchedFiles   []*model.CandidateFile
	UnmatchedRecords []model.Record
	Ambiguous        []*model.AmbiguousMatchError
	Duplicates       []Duplicate
	Warnings         []*model.UnmatchedItemWarning
}

// Summary counts the outcome of a collection.
type Summary struct {
	Assigned         int `json:"assigned" yaml:"assigned"`
	UnmatchedFiles   int `json:"unmatched_files" yaml:"unmatched_files"`
	UnmatchedRecords int `json:"unmatched_records" yaml:"unmatched_records"`
	Ambiguous        int `json:"ambiguous" yaml:"ambiguous"`
	CacheHits        int `json:"cache_hits" yaml:"cache_hits"`
	Duplicates       int `json:"duplicates" yaml:"duplicates"`
}

// Summary returns the counts of the result.
func (r *Result) Summary() Summary {
	s := Summary{
		Assigned:         len(r.Assignments),
		UnmatchedFiles:   len(r.UnmatchedFiles),
		UnmatchedRecords: len(r.UnmatchedRecords),
		Ambiguous:        len(r.Ambiguous),
		Duplicates:       len(r.Duplicates),
	}
	for _, a := range r.Assignments {
		if a.CacheHit {
			s.CacheHits++
		}
	}
	return s
}

// Complete reports whether every file and record was paired.
func (r *Result) Complete() bool {
	return len(r.UnmatchedFiles) == 0 && len(r.UnmatchedRecords) == 0 && len(r.Ambiguous) == 0
}

// Finalize turns a matcher resolution into a Result.
//
// With duplicate detection, unmatched cached files are paired with the
// record they were fetched for when that record is still open, and
// unmatched files duplicating an assigned file are listed as duplicates
// rather than unmatched. Every remaining file and record becomes a
// warning. Ambiguities are returned as an error only in strict mode; the
// Result is always returned.
func Finalize(res *match.Resolution, opts Options) (*Result, error) {
	out := &Result{
		Assignments: append([]model.Assignment(nil), res.Assignments...),
		Ambiguous:   res.Ambiguities,
	}

	openRecords := map[int]model.Record{}
	for _, rec := range res.UnmatchedRecords {
		openRecords[rec.Index] = rec
	}
	assignedByRecord := map[int]*model.CandidateFile{}
	for _, a := range out.Assignments {
		assignedByRecord[a.Record.Index] = a.File
	}

	for _, f := range res.UnmatchedFiles {
		if !opts.DetectDuplicates {
			out.UnmatchedFiles = append(out.UnmatchedFiles, f)
			continue
		}
		if f.Cached && f.RecordHint >= 0 {
			if rec, ok := openRecords[f.RecordHint]; ok {
				out.Assignments = append(out.Assignments, model.Assignment{
					File:       f,
					Record:     rec,
					Confidence: model.ConfidenceExact,
					Stage:      StageCache,
					Score:      1,
					CacheHit:   true,
				})
				assignedByRecord[rec.Index] = f
				delete(openRecords, rec.Index)
				continue
			}
			if original, ok := assignedByRecord[f.RecordHint]; ok {
				out.Duplicates = append(out.Duplicates, Duplicate{File: f, Original: original})
				continue
			}
		}
		if original := duplicateOf(f, out.Assignments, opts); original != nil {
			out.Duplicates = append(out.Duplicates, Duplicate{File: f, Original: original})
			continue
		}
		out.UnmatchedFiles = append(out.UnmatchedFiles, f)
	}

	for _, rec := range res.UnmatchedRecords {
		if _, open := openRecords[rec.Index]; open {
			out.UnmatchedRecords = append(out.UnmatchedRecords, rec)
		}
	}

	sort.SliceStable(out.Assignments, func(i, j int) bool {
		return out.Assignments[i].Record.Index < out.Assignments[j].Record.Index
	})

	for _, f := range out.UnmatchedFiles {
		out.Warnings = append(out.Warnings, &model.UnmatchedItemWarning{File: f})
	}
	for i := range out.UnmatchedRecords {
		out.Warnings = append(out.Warnings, &model.UnmatchedItemWarning{Record: &out.UnmatchedRecords[i]})
	}

	if opts.Strict && len(out.Ambiguous) > 0 {
		errs := make([]error, len(out.Ambiguous))
		for i, a := range out.Ambiguous {
			errs[i] = a
		}
		return out, errors.Join(errs...)
	}
	return out, nil
}

func duplicateOf(f *model.CandidateFile, assignments []model.Assignment, opts Options) *model.CandidateFile {
	for _, a := range assignments {
		if IsDuplicate(f, a.File, opts.NameThreshold, opts.SizeThreshold) {
			return a.File
		}
	}
	return nil
}

// IsDuplicate reports whether two files have nearly the same name and size.
// Files of unknown size are never duplicates.
func IsDuplicate(a, b *model.CandidateFile, nameThreshold, sizeThreshold float64) bool {
	if a == b || a.Size <= 0 || b.Size <= 0 {
		return false
	}
	if match.Similarity(model.Fold(a.Name()), model.Fold(b.Name())) <= nameThreshold {
		return false
	}
	diff := float64(a.Size - b.Size)
	if diff < 0 {
		diff = -diff
	}
	return 1-diff/float64(a.Size) > sizeThreshold
}

// FindDuplicates splits files into the ones to keep and the ones that
// duplicate an earlier kept file.
func FindDuplicates(files []*model.CandidateFile, opts Options) (kept []*model.CandidateFile, duplicates []Duplicate) {
	for _, f := range files {
		var original *model.CandidateFile
		for _, k := range kept {
			if IsDuplicate(f, k, opts.NameThreshold, opts.SizeThreshold) {
				original = k
				break
			}
		}
		if original != nil {
			duplicates = append(duplicates, Duplicate{File: f, Original: original})
			continue
		}
		kept = append(kept, f)
	}
	return kept, duplicates
}
