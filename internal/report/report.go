package report

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/goccy/go-yaml"

	"github.com/handiism/audio-info-updater/internal/model"
	"github.com/handiism/audio-info-updater/internal/resolve"
	"github.com/handiism/audio-info-updater/internal/updater"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	numberStyle = cellStyle.Align(lipgloss.Right)
	errorStyle  = cellStyle.Foreground(lipgloss.Color("9"))
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// Entry is the outcome of one collection as shown in reports.
type Entry struct {
	Name   string
	RunID  string
	Result *resolve.Result

	// FetchErrors counts remote items that could not be fetched.
	FetchErrors int

	// Err stopped the collection. Result may still be set, for example
	// when strict mode rejected ambiguous matches.
	Err error
}

// Summary renders one row per collection with the counts of assigned,
// unmatched and ambiguous items. A row is produced for every entry, even
// when the collection failed.
func Summary(entries ...Entry) string {
	headers := []string{"Collection", "Assigned", "Unmatched files", "Unmatched records", "Ambiguous", "Cache hits", "Duplicates", "Status"}

	rows := make([][]string, 0, len(entries))
	failed := map[int]bool{}
	for i, e := range entries {
		var s resolve.Summary
		if e.Result != nil {
			s = e.Result.Summary()
		}
		rows = append(rows, []string{
			e.Name,
			strconv.Itoa(s.Assigned),
			strconv.Itoa(s.UnmatchedFiles),
			strconv.Itoa(s.UnmatchedRecords),
			strconv.Itoa(s.Ambiguous),
			strconv.Itoa(s.CacheHits),
			strconv.Itoa(s.Duplicates),
			status(e),
		})
		if e.Err != nil {
			failed[i] = true
		}
	}

	return renderTable(headers, rows, func(row, col int) lipgloss.Style {
		switch {
		case col == len(headers)-1 && failed[row]:
			return errorStyle
		case col > 0 && col < len(headers)-1:
			return numberStyle
		}
		return cellStyle
	})
}

func status(e Entry) string {
	switch {
	case e.Err != nil:
		return "error: " + e.Err.Error()
	case e.Result == nil:
		return "skipped"
	case e.FetchErrors > 0:
		return fmt.Sprintf("partial, %d not fetched", e.FetchErrors)
	case e.Result.Complete():
		return "complete"
	default:
		return "incomplete"
	}
}

// Details renders one row per assignment in record order, followed by the
// unmatched, ambiguous and duplicate items.
func Details(result *resolve.Result) string {
	if result == nil {
		return ""
	}

	assignments := inRecordOrder(result.Assignments)

	headers := []string{"#", "File", "Title", "Confidence", "Stage", "Score"}
	rows := make([][]string, 0, len(assignments)+len(result.UnmatchedFiles)+len(result.UnmatchedRecords))
	for _, a := range assignments {
		track := ""
		if a.Record.Track > 0 {
			track = strconv.Itoa(a.Record.Track)
		}
		stage := a.Stage
		if a.CacheHit {
			stage += " (cached)"
		}
		rows = append(rows, []string{track, a.File.Name(), a.Record.Title, string(a.Confidence), stage, score(a.Score)})
	}
	for _, f := range result.UnmatchedFiles {
		rows = append(rows, []string{"", f.Name(), "", "unmatched", "", ""})
	}
	for _, r := range result.UnmatchedRecords {
		rows = append(rows, []string{trackOf(r.RawRecord), "", r.Label(), "unmatched", "", ""})
	}
	for _, a := range result.Ambiguous {
		rows = append(rows, []string{"", a.File.Name(), candidates(a), "ambiguous", "", ""})
	}
	for _, d := range result.Duplicates {
		rows = append(rows, []string{"", d.File.Name(), "duplicate of " + d.Original.Name(), "duplicate", "", ""})
	}

	return renderTable(headers, rows, func(row, col int) lipgloss.Style {
		if col == 0 || col == len(headers)-1 {
			return numberStyle
		}
		return cellStyle
	})
}

func inRecordOrder(assignments []model.Assignment) []model.Assignment {
	out := slices.Clone(assignments)
	slices.SortStableFunc(out, func(a, b model.Assignment) int {
		return cmp.Compare(a.Record.Index, b.Record.Index)
	})
	return out
}

func score(s float64) string {
	if s == 0 {
		return ""
	}
	return strconv.FormatFloat(s, 'f', 2, 64)
}

func trackOf(r model.RawRecord) string {
	if r.Track > 0 {
		return strconv.Itoa(r.Track)
	}
	return ""
}

func candidates(a *model.AmbiguousMatchError) string {
	labels := make([]string, len(a.Candidates))
	for i, c := range a.Candidates {
		labels[i] = c.Record.Label()
	}
	return strings.Join(labels, " / ")
}

func renderTable(headers []string, rows [][]string, style func(row, col int) lipgloss.Style) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return style(row, col)
		})
	return t.String()
}

type document struct {
	Collection       string          `yaml:"collection"`
	RunID            string          `yaml:"run_id,omitempty"`
	Error            string          `yaml:"error,omitempty"`
	Summary          resolve.Summary `yaml:"summary"`
	Assignments      []assignmentDoc `yaml:"assignments,omitempty"`
	UnmatchedFiles   []string        `yaml:"unmatched_files,omitempty"`
	UnmatchedRecords []string        `yaml:"unmatched_records,omitempty"`
	Ambiguous        []ambiguousDoc  `yaml:"ambiguous,omitempty"`
	Duplicates       []duplicateDoc  `yaml:"duplicates,omitempty"`
}

type assignmentDoc struct {
	File       string           `yaml:"file"`
	Confidence model.Confidence `yaml:"confidence"`
	Stage      string           `yaml:"stage"`
	Score      float64          `yaml:"score,omitempty"`
	CacheHit   bool             `yaml:"cache_hit,omitempty"`
	Record     model.RawRecord  `yaml:"record"`
}

type ambiguousDoc struct {
	File       string   `yaml:"file"`
	Candidates []string `yaml:"candidates"`
}

type duplicateDoc struct {
	File     string `yaml:"file"`
	Original string `yaml:"original"`
}

// YAML writes the applied metadata of every entry as a YAML document list.
func YAML(w io.Writer, entries ...Entry) error {
	docs := make([]document, 0, len(entries))
	for _, e := range entries {
		docs = append(docs, newDocument(e))
	}
	data, err := yaml.Marshal(docs)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	_, err = w.Write(data)
	return err
}

func newDocument(e Entry) document {
	doc := document{Collection: e.Name, RunID: e.RunID}
	if e.Err != nil {
		doc.Error = e.Err.Error()
	}
	r := e.Result
	if r == nil {
		return doc
	}

	doc.Summary = r.Summary()
	for _, a := range inRecordOrder(r.Assignments) {
		doc.Assignments = append(doc.Assignments, assignmentDoc{
			File:       a.File.Path,
			Confidence: a.Confidence,
			Stage:      a.Stage,
			Score:      a.Score,
			CacheHit:   a.CacheHit,
			Record:     a.Record.RawRecord,
		})
	}
	for _, f := range r.UnmatchedFiles {
		doc.UnmatchedFiles = append(doc.UnmatchedFiles, f.Path)
	}
	for _, rec := range r.UnmatchedRecords {
		doc.UnmatchedRecords = append(doc.UnmatchedRecords, rec.Label())
	}
	for _, a := range r.Ambiguous {
		amb := ambiguousDoc{File: a.File.Path}
		for _, c := range a.Candidates {
			amb.Candidates = append(amb.Candidates, c.Record.Label())
		}
		doc.Ambiguous = append(doc.Ambiguous, amb)
	}
	for _, d := range r.Duplicates {
		doc.Duplicates = append(doc.Duplicates, duplicateDoc{File: d.File.Path, Original: d.Original.Path})
	}
	return doc
}

// FromOutcomes converts runner outcomes to report entries.
func FromOutcomes(runID string, outcomes []updater.Outcome) []Entry {
	entries := make([]Entry, len(outcomes))
	for i, o := range outcomes {
		entries[i] = Entry{
			Name:        o.Collection.Name,
			RunID:       runID,
			Result:      o.Result,
			FetchErrors: len(o.FetchErrors),
			Err:         o.Err,
		}
	}
	return entries
}
