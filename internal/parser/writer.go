package parser

import (
	"cmp"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/handiism/audio-info-updater/internal/model"
)

// Write encodes records in the given format. Records are sorted by track
// when all of them have one, by title or file name otherwise.
func Write(w io.Writer, records []model.RawRecord, format Format) error {
	records = sortRecords(records)

	switch format {
	case FormatYAML, FormatAny, "":
		data, err := yaml.Marshal(records)
		if err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		_, err = w.Write(data)
		return err
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	case FormatCSV:
		return writeCSV(w, records)
	case FormatTab:
		return writeTab(w, records)
	default:
		return fmt.Errorf("cannot write metadata as %q", format)
	}
}

func sortRecords(records []model.RawRecord) []model.RawRecord {
	out := slices.Clone(records)
	allTracked := !slices.ContainsFunc(out, func(r model.RawRecord) bool { return r.Track <= 0 })
	slices.SortStableFunc(out, func(a, b model.RawRecord) int {
		if allTracked {
			return cmp.Compare(a.Track, b.Track)
		}
		return cmp.Compare(sortKey(a), sortKey(b))
	})
	return out
}

func sortKey(r model.RawRecord) string {
	if r.Title != "" {
		return r.Title
	}
	return r.File
}

func writeCSV(w io.Writer, records []model.RawRecord) error {
	var header []model.Field
	for _, f := range model.Fields {
		if slices.ContainsFunc(records, func(r model.RawRecord) bool { return r.Has(f) }) {
			header = append(header, f)
		}
	}

	cw := csv.NewWriter(w)
	row := make([]string, len(header))
	for i, f := range header {
		row[i] = string(f)
	}
	if err := cw.Write(row); err != nil {
		return err
	}
	for _, r := range records {
		for i, f := range header {
			row[i] = r.Value(f)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// writeTab aligns "N. Title    duration" columns so the output reads back
// with the tab parser.
func writeTab(w io.Writer, records []model.RawRecord) error {
	trackWidth, titleWidth := 0, 0
	allTracked := len(records) > 0
	for _, r := range records {
		if r.Track <= 0 {
			allTracked = false
		}
		trackWidth = max(trackWidth, len(fmt.Sprintf("%d.", r.Track)))
		titleWidth = max(titleWidth, len([]rune(r.Title)))
	}

	for _, r := range records {
		var b strings.Builder
		if allTracked {
			fmt.Fprintf(&b, "%-*s ", trackWidth, fmt.Sprintf("%d.", r.Track))
		}
		b.WriteString(r.Title)
		if !r.Duration.IsZero() {
			b.WriteString(strings.Repeat(" ", titleWidth-len([]rune(r.Title))+4))
			b.WriteString(r.Duration.String())
		}
		b.WriteByte('\n')
		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
	}
	return nil
}
