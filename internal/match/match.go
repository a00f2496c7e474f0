package match

import (
	"context"

	"github.com/handiism/audio-info-updater/internal/logging"
	"github.com/handiism/audio-info-updater/internal/model"
)

// Stopwords reports whether a token is ignored when comparing names.
type Stopwords interface {
	Contains(word string) bool
}

// Options configures the matching cascade.
type Options struct {
	// Templates are the file name patterns tried in priority order.
	Templates []model.Template

	// UseTagMatch enables comparison of the tags already embedded in files.
	UseTagMatch bool

	// TagFields must all agree for a tag match.
	TagFields []model.Field

	// TagThreshold is the minimum similarity ratio (0-1) of each tag field.
	TagThreshold float64

	// TagTieMargin is the ratio difference under which two tag pairs tie.
	TagTieMargin float64

	// UseWordMatch enables token overlap scoring of file names against titles.
	UseWordMatch bool

	// MinOverlap is the minimum number of shared distinctive tokens.
	MinOverlap int

	// TieMargin is the token count difference under which two word
	// candidates tie.
	TieMargin float64

	// Stopwords are the tokens ignored by token scoring. Keep them separate
	// from the capitalization stopwords.
	Stopwords Stopwords
}

// DefaultOptions returns options with every stage enabled.
func DefaultOptions() Options {
	return Options{
		Templates: []model.Template{
			"{artist} - {track:02} - {title}",
			"{track:02} - {title}",
			"{track:02} {title}",
			"{track:02}. {title}",
			"{tracknum} {artist} - {title}",
			"{artist} - {title}",
			"{title}",
		},
		UseTagMatch:  true,
		TagFields:    []model.Field{model.FieldTitle},
		TagThreshold: 0.9,
		UseWordMatch: true,
		MinOverlap:   1,
	}
}

// Resolution is the outcome of matching one collection.
type Resolution struct {
	Assignments      []model.Assignment
	UnmatchedFiles   []*model.CandidateFile
	UnmatchedRecords []model.Record

	// Ambiguities lists files that tied between two or more records.
	// These files are not repeated in UnmatchedFiles.
	Ambiguities []*model.AmbiguousMatchError
}

// Matcher pairs records with candidate files.
type Matcher struct {
	opts Options
}

// New creates a Matcher.
func New(opts Options) *Matcher {
	return &Matcher{opts: opts}
}

type stage struct {
	name string
	run  func(p *pool) int
}

func (m *Matcher) stages() []stage {
	stages := []stage{
		{StageCardinality, m.cardinality},
		{StagePattern, m.pattern},
	}
	if m.opts.UseTagMatch {
		stages = append(stages, stage{StageTags, m.tags})
	}
	if m.opts.UseWordMatch {
		stages = append(stages, stage{StageWords, m.words})
	}
	return stages
}

// Resolve matches records to files.
//
// Records bound to a file are assigned first. The remaining pool then goes
// through the cascade of stages: cardinality shortcut, file name pattern,
// existing tags and token overlap. Every acceptance restarts the cascade on
// the smaller pool, for at most min(files, records)+1 passes. Files and
// records left over are reported, never force-assigned.
//
// Resolve does not modify records or files.
func (m *Matcher) Resolve(ctx context.Context, records []model.Record, files []*model.CandidateFile) *Resolution {
	log := logging.FromContext(ctx)
	p := newPool(records, files)

	if n := m.bind(p); n > 0 {
		log.Debug().Int("assigned", n).Msg("Applied explicit file bindings")
	}

	bound := min(len(p.openFiles()), len(p.openRecords())) + 1
	for pass := 0; pass < bound; pass++ {
		accepted := 0
		for _, s := range m.stages() {
			if accepted = s.run(p); accepted > 0 {
				log.Debug().Int("pass", pass).Str("stage", s.name).Int("assigned", accepted).Msg("Matched files")
				break
			}
		}
		if accepted == 0 {
			break
		}
	}

	res := &Resolution{Assignments: p.assignments}
	if m.opts.UseWordMatch {
		res.Ambiguities = m.ambiguities(p)
	}

	ambiguous := map[*model.CandidateFile]bool{}
	for _, a := range res.Ambiguities {
		ambiguous[a.File] = true
	}
	for _, fi := range p.openFiles() {
		if !ambiguous[p.files[fi]] {
			res.UnmatchedFiles = append(res.UnmatchedFiles, p.files[fi])
		}
	}
	for _, ri := range p.openRecords() {
		res.UnmatchedRecords = append(res.UnmatchedRecords, p.records[ri])
	}

	log.Debug().
		Int("assigned", len(res.Assignments)).
		Int("unmatched_files", len(res.UnmatchedFiles)).
		Int("unmatched_records", len(res.UnmatchedRecords)).
		Int("ambiguous", len(res.Ambiguities)).
		Msg("Resolution finished")

	return res
}

// pool tracks which records and files are still unassigned.
type pool struct {
	records     []model.Record
	files       []*model.CandidateFile
	recordUsed  []bool
	fileUsed    []bool
	assignments []model.Assignment
}

func newPool(records []model.Record, files []*model.CandidateFile) *pool {
	return &pool{
		records:    records,
		files:      files,
		recordUsed: make([]bool, len(records)),
		fileUsed:   make([]bool, len(files)),
	}
}

func (p *pool) openFiles() []int {
	var idx []int
	for i, used := range p.fileUsed {
		if !used {
			idx = append(idx, i)
		}
	}
	return idx
}

func (p *pool) openRecords() []int {
	var idx []int
	for i, used := range p.recordUsed {
		if !used {
			idx = append(idx, i)
		}
	}
	return idx
}

func (p *pool) assign(fi, ri int, confidence model.Confidence, stage string, score float64) {
	p.fileUsed[fi] = true
	p.recordUsed[ri] = true
	p.assignments = append(p.assignments, model.Assignment{
		File:       p.files[fi],
		Record:     p.records[ri],
		Confidence: confidence,
		Stage:      stage,
		Score:      score,
		CacheHit:   p.files[fi].Cached,
	})
}
