package parser

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/handiism/audio-info-updater/internal/logging"
	"github.com/handiism/audio-info-updater/internal/model"
)

// ErrNoParser is returned when no format could read the input.
var ErrNoParser = errors.New("no parser could read the metadata")

// anyOrder is the order FormatAny tries formats in. YAML also reads JSON.
// Tab accepts nearly any text so it comes last.
var anyOrder = []Format{FormatCSV, FormatYAML, FormatList, FormatTab}

var (
	// numberedLine splits a leading track number from the rest of a line.
	numberedLine = regexp.MustCompile(`^[\s\-#.]*([0-9]+)[\s\-#.]*(.*)$`)
	// trailingDuration matches a duration ending a line.
	trailingDuration = regexp.MustCompile(`(?:^|\s)([0-9]+:[0-5][0-9](?::[0-5][0-9])?)$`)
	// durationLine matches a line holding only a duration.
	durationLine = regexp.MustCompile(`^[0-9]+:[0-5][0-9](?::[0-5][0-9])?$`)
	// trackLine matches a line holding only a track number.
	trackLine = regexp.MustCompile(`^[\s\-#.]*([0-9]+)[\s\-#.]*$`)
)

// Parse reads the metadata records of a file.
func Parse(path string, format Format) ([]model.RawRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata file: %w", err)
	}
	records, err := parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// ParseReader reads metadata records from r.
//
// With FormatAny every format is tried in turn and the first one producing
// records wins. Blank records are dropped.
func ParseReader(r io.Reader, format Format) ([]model.RawRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}
	return parse(data, format)
}

func parse(data []byte, format Format) ([]model.RawRecord, error) {
	log := logging.Default()

	formats := []Format{format}
	if format == FormatAny || format == "" {
		formats = anyOrder
	}

	var errs []error
	for _, f := range formats {
		records, err := parseAs(data, f)
		if err == nil {
			records = dropBlank(records)
			if len(records) > 0 {
				log.Debug().Str("format", string(f)).Int("records", len(records)).Msg("parsed metadata")
				return records, nil
			}
			err = errors.New("no records")
		}
		log.Trace().Err(err).Str("format", string(f)).Msg("metadata format rejected")
		errs = append(errs, fmt.Errorf("%s: %w", f, err))
	}
	return nil, fmt.Errorf("%w: %w", ErrNoParser, errors.Join(errs...))
}

func parseAs(data []byte, format Format) ([]model.RawRecord, error) {
	switch format {
	case FormatCSV:
		return parseCSV(data)
	case FormatTab:
		return parseTab(data)
	case FormatList:
		return parseList(data)
	case FormatJSON, FormatYAML:
		return parseObjects(data)
	default:
		return nil, fmt.Errorf("unknown metadata format %q", format)
	}
}

func dropBlank(records []model.RawRecord) []model.RawRecord {
	out := records[:0]
	for _, r := range records {
		if !r.IsEmpty() {
			out = append(out, r)
		}
	}
	return out
}

// parseCSV reads a header row followed by one record per row. Columns are
// matched to fields by name; unknown columns are ignored but at least one
// must be known.
func parseCSV(data []byte) ([]model.RawRecord, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, errors.New("header and at least one row required")
	}

	columns := make([]model.Field, len(rows[0]))
	known := 0
	for i, name := range rows[0] {
		if f, ok := model.ParseField(name); ok {
			columns[i] = f
			known++
		}
	}
	if known == 0 {
		return nil, fmt.Errorf("no known column in header %q", strings.Join(rows[0], ","))
	}

	records := make([]model.RawRecord, 0, len(rows)-1)
	for line, row := range rows[1:] {
		var rec model.RawRecord
		for i, value := range row {
			if i >= len(columns) || columns[i] == "" {
				continue
			}
			if err := rec.Set(columns[i], value); err != nil {
				return nil, fmt.Errorf("row %d: %w", line+2, err)
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

// parseTab reads one "[N.] Title    duration" entry per line. The track
// number and the trailing duration are both optional.
func parseTab(data []byte) ([]model.RawRecord, error) {
	lines, err := readLines(data)
	if err != nil {
		return nil, err
	}

	records := make([]model.RawRecord, 0, len(lines))
	for _, line := range lines {
		var rec model.RawRecord
		if m := numberedLine.FindStringSubmatch(line); m != nil {
			if err := rec.Set(model.FieldTrack, m[1]); err != nil {
				return nil, err
			}
			line = m[2]
		}
		if m := trailingDuration.FindStringSubmatchIndex(line); m != nil {
			if err := rec.Set(model.FieldDuration, line[m[2]:m[3]]); err != nil {
				return nil, err
			}
			line = line[:m[0]]
		}
		rec.Title = strings.TrimSpace(line)
		records = append(records, rec)
	}
	return records, nil
}

// parseList reads entries spread over consecutive lines: either triples of
// track, title and duration, or pairs of track and title, or pairs of
// title and duration. Triples are tried first. Every entry of a file uses
// the same layout.
func parseList(data []byte) ([]model.RawRecord, error) {
	lines, err := readLines(data)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, errors.New("empty list")
	}

	if len(lines)%3 == 0 {
		if records, ok := listEntries(lines, 3, func(entry []string) bool {
			return trackLine.MatchString(entry[0]) && durationLine.MatchString(entry[2])
		}, model.FieldTrack, model.FieldTitle, model.FieldDuration); ok {
			return records, nil
		}
	}
	if len(lines)%2 == 0 {
		if records, ok := listEntries(lines, 2, func(entry []string) bool {
			return trackLine.MatchString(entry[0])
		}, model.FieldTrack, model.FieldTitle); ok {
			return records, nil
		}
		if records, ok := listEntries(lines, 2, func(entry []string) bool {
			return durationLine.MatchString(entry[1])
		}, model.FieldTitle, model.FieldDuration); ok {
			return records, nil
		}
	}
	return nil, fmt.Errorf("%d lines do not form a track, title or duration list", len(lines))
}

func listEntries(lines []string, size int, valid func([]string) bool, fields ...model.Field) ([]model.RawRecord, bool) {
	records := make([]model.RawRecord, 0, len(lines)/size)
	for i := 0; i < len(lines); i += size {
		entry := lines[i : i+size]
		if !valid(entry) {
			return nil, false
		}
		var rec model.RawRecord
		for j, f := range fields {
			value := entry[j]
			if f == model.FieldTrack {
				value = trackLine.FindStringSubmatch(value)[1]
			}
			if err := rec.Set(f, value); err != nil {
				return nil, false
			}
		}
		records = append(records, rec)
	}
	return records, true
}

// parseObjects reads a list of mappings, or a single mapping, in YAML or
// JSON.
func parseObjects(data []byte) ([]model.RawRecord, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	var items []any
	switch v := doc.(type) {
	case []any:
		items = v
	case map[string]any:
		items = []any{v}
	default:
		return nil, fmt.Errorf("expected a list of mappings, got %T", doc)
	}

	records := make([]model.RawRecord, 0, len(items))
	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("item %d: expected a mapping, got %T", i, item)
		}
		rec, err := objectRecord(m)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func objectRecord(m map[string]any) (model.RawRecord, error) {
	var rec model.RawRecord
	known := 0
	for key, value := range m {
		f, ok := model.ParseField(key)
		if !ok {
			continue
		}
		known++
		if value == nil {
			continue
		}
		if err := rec.Set(f, fmt.Sprint(value)); err != nil {
			return rec, err
		}
	}
	if known == 0 && len(m) > 0 {
		return rec, errors.New("no known field")
	}
	return rec, nil
}

// readLines returns the trimmed non-blank lines of data.
func readLines(data []byte) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines, scanner.Err()
}
