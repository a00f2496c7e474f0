package match

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/handiism/audio-info-updater/internal/model"
)

// Stage names reported on assignments.
const (
	StageBinding     = "binding"
	StageCardinality = "cardinality"
	StagePattern     = "pattern"
	StageTags        = "tags"
	StageWords       = "words"
)

// bind assigns records that name their file explicitly.
func (m *Matcher) bind(p *pool) int {
	n := 0
	for ri, rec := range p.records {
		if rec.File == "" {
			continue
		}
		for fi, f := range p.files {
			if p.fileUsed[fi] || !samePath(rec.File, f.Path) {
				continue
			}
			confidence := model.ConfidenceExact
			if rec.Forced {
				confidence = model.ConfidenceForced
			}
			p.assign(fi, ri, confidence, StageBinding, 1)
			n++
			break
		}
	}
	return n
}

// samePath compares a bound path with a file path. A bare file name
// matches any file of that name.
func samePath(bound, path string) bool {
	if filepath.Clean(bound) == filepath.Clean(path) {
		return true
	}
	if filepath.Base(bound) != bound {
		return false
	}
	return model.Fold(bound) == model.Fold(filepath.Base(path))
}

// cardinality assigns the last file to the last record.
func (m *Matcher) cardinality(p *pool) int {
	files, records := p.openFiles(), p.openRecords()
	if len(files) != 1 || len(records) != 1 {
		return 0
	}
	p.assign(files[0], records[0], model.ConfidenceForced, StageCardinality, 0)
	return 1
}

// pattern renders each template for every open record and looks for a
// file with exactly that name. Templates are tried in priority order; a
// name claimed by two files or two records is skipped.
func (m *Matcher) pattern(p *pool) int {
	n := 0
	for _, tmpl := range m.opts.Templates {
		byFile := map[int][]int{}
		byRecord := map[int][]int{}
		for _, ri := range p.openRecords() {
			rendered, ok := tmpl.Render(p.records[ri].RawRecord)
			if !ok {
				continue
			}
			for _, fi := range p.openFiles() {
				if SameName(model.BaseName(p.files[fi].Path), rendered) {
					byFile[fi] = append(byFile[fi], ri)
					byRecord[ri] = append(byRecord[ri], fi)
				}
			}
		}

		files := make([]int, 0, len(byFile))
		for fi := range byFile {
			files = append(files, fi)
		}
		sort.Ints(files)
		for _, fi := range files {
			records := byFile[fi]
			if len(records) != 1 || len(byRecord[records[0]]) != 1 {
				continue
			}
			p.assign(fi, records[0], model.ConfidenceExact, StagePattern, 1)
			n++
		}
	}
	return n
}

// NormalizeName prepares a file name for comparison: illegal characters
// become "_", whitespace is collapsed and case is folded. Diacritics are kept.
func NormalizeName(name string) string {
	return model.Fold(model.SanitizeFileName(name))
}

// SameName reports whether two file names are equal once normalized,
// also accepting names where sanitizing dropped or added "_".
func SameName(a, b string) bool {
	na, nb := NormalizeName(a), NormalizeName(b)
	if na == nb {
		return true
	}
	if separatorsAsSpace(na) == separatorsAsSpace(nb) {
		return true
	}
	return dropSeparators(na) == dropSeparators(nb)
}

// separatorsAsSpace matches "AC_DC" with "AC DC".
func separatorsAsSpace(s string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(s, "_", " ")), " ")
}

// dropSeparators matches "ACDC" with "AC_DC".
func dropSeparators(s string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(s, "_", "")), " ")
}

// tags compares the tags embedded in files with the records. The best
// pair whose fields all reach the threshold is assigned, unless another
// pair for the same file or record ties with it.
func (m *Matcher) tags(p *pool) int {
	if len(m.opts.TagFields) == 0 {
		return 0
	}
	var pairs []scoredPair
	for _, fi := range p.openFiles() {
		tags := p.files[fi].Tags
		if tags == nil {
			continue
		}
		existing := tags.Record()
		for _, ri := range p.openRecords() {
			if score, ok := m.tagScore(existing, p.records[ri].RawRecord); ok {
				pairs = append(pairs, scoredPair{file: fi, record: ri, score: score})
			}
		}
	}

	best, ok := pickUnique(pairs, m.opts.TagTieMargin)
	if !ok {
		return 0
	}
	p.assign(best.file, best.record, model.ConfidenceHeuristic, StageTags, best.score)
	return 1
}

func (m *Matcher) tagScore(existing, rec model.RawRecord) (float64, bool) {
	total := 0.0
	for _, f := range m.opts.TagFields {
		if !existing.Has(f) || !rec.Has(f) {
			return 0, false
		}
		ratio := Similarity(model.Fold(existing.Value(f)), model.Fold(rec.Value(f)))
		if ratio < m.opts.TagThreshold {
			return 0, false
		}
		total += ratio
	}
	return total / float64(len(m.opts.TagFields)), true
}

// words scores file name tokens against title tokens and assigns the best
// pair. Only distinctive tokens count, see Scores.
func (m *Matcher) words(p *pool) int {
	s := m.scores(p)
	var pairs []scoredPair
	for i, fi := range s.files {
		for j, ri := range s.records {
			if score := s.distinctive[i][j]; score >= float64(m.opts.MinOverlap) && score > 0 {
				pairs = append(pairs, scoredPair{file: fi, record: ri, score: score})
			}
		}
	}

	best, ok := pickUnique(pairs, m.opts.TieMargin)
	if !ok {
		return 0
	}
	p.assign(best.file, best.record, model.ConfidenceHeuristic, StageWords, best.score)
	return 1
}

// ambiguities reports open files whose best candidates tie.
//
// Distinctive scores are used first. When a file shares no distinctive
// token with any record, plain token overlap is used instead, so that
// "Intro" and "Intro (Reprise)" both claiming "Track 01 - Intro" is
// surfaced rather than left as a silent miss.
func (m *Matcher) ambiguities(p *pool) []*model.AmbiguousMatchError {
	s := m.scores(p)
	if len(s.records) < 2 {
		return nil
	}
	minimum := float64(max(m.opts.MinOverlap, 1))

	var out []*model.AmbiguousMatchError
	for i, fi := range s.files {
		scores := s.distinctive[i]
		if maxOf(scores) < minimum {
			scores = s.overlap[i]
		}
		top := maxOf(scores)
		if top < minimum {
			continue
		}

		var candidates []model.Candidate
		for j, ri := range s.records {
			if scores[j] >= top-m.opts.TieMargin {
				candidates = append(candidates, model.Candidate{Record: p.records[ri], Score: scores[j]})
			}
		}
		if len(candidates) > 1 {
			out = append(out, &model.AmbiguousMatchError{File: p.files[fi], Candidates: candidates})
		}
	}
	return out
}

type scoredPair struct {
	file   int
	record int
	score  float64
}

// pickUnique returns the highest pair that beats every other pair sharing
// its file or record by more than margin.
func pickUnique(pairs []scoredPair, margin float64) (scoredPair, bool) {
	sort.SliceStable(pairs, func(i, j int) bool {
		if pairs[i].score != pairs[j].score {
			return pairs[i].score > pairs[j].score
		}
		if pairs[i].file != pairs[j].file {
			return pairs[i].file < pairs[j].file
		}
		return pairs[i].record < pairs[j].record
	})

	for i, candidate := range pairs {
		unique := true
		for j, other := range pairs {
			if i == j || (other.file != candidate.file && other.record != candidate.record) {
				continue
			}
			if other.score >= candidate.score-margin {
				unique = false
				break
			}
		}
		if unique {
			return candidate, true
		}
	}
	return scoredPair{}, false
}

func maxOf(values []float64) float64 {
	top := 0.0
	for _, v := range values {
		top = max(top, v)
	}
	return top
}
