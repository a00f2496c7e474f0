package merge

import (
	"fmt"
	"slices"
	"strings"

	"github.com/handiism/audio-info-updater/internal/model"
)

// Precedence selects which value wins when a field is present both in a
// record and in the shared fields. Literal values always win over both.
type Precedence int

const (
	// PreferRecord keeps the per-record value and uses the shared value only
	// for records that lack the field.
	PreferRecord Precedence = iota

	// PreferShared applies the shared value to every record.
	PreferShared
)

func (p Precedence) String() string {
	if p == PreferShared {
		return "shared"
	}
	return "record"
}

// Field families that are usually configured together.
var (
	FamilyArtist = []model.Field{model.FieldArtist, model.FieldAlbumArtist}
	FamilyAlbum  = []model.Field{model.FieldAlbum, model.FieldYear, model.FieldGenre, model.FieldCover}
	FamilyTrack  = []model.Field{model.FieldTrack, model.FieldTitle, model.FieldDuration}
)

// mergedFields are the fields resolved by precedence. File is handled
// separately since it binds a record to a file.
var mergedFields = []model.Field{
	model.FieldTrack, model.FieldTitle, model.FieldArtist, model.FieldAlbum,
	model.FieldAlbumArtist, model.FieldYear, model.FieldGenre,
	model.FieldDuration, model.FieldCover,
}

// ParseFamily resolves a family name (artist, album, track) or a single
// field name to the fields it covers.
func ParseFamily(name string) ([]model.Field, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "artist", "artists":
		return FamilyArtist, nil
	case "album":
		return FamilyAlbum, nil
	case "track", "tracks":
		return FamilyTrack, nil
	}
	f, ok := model.ParseField(name)
	if !ok {
		return nil, model.NewConfigurationError("unknown field or family %q", name)
	}
	return []model.Field{f}, nil
}

// Options configures a Merger.
type Options struct {
	// Precedence per field. Fields not listed use PreferRecord.
	Precedence map[model.Field]Precedence

	// Required fields must be given by each record (or a literal for a
	// single record) and must be distinct across records. Shared values are
	// never broadcast into them.
	Required map[model.Field]bool

	// MatchArtist fills an absent album artist with the artist.
	MatchArtist bool
}

// DefaultOptions returns options preferring per-record values, requiring
// distinct titles and matching album artist to artist.
func DefaultOptions() Options {
	return Options{
		Precedence:  map[model.Field]Precedence{},
		Required:    map[model.Field]bool{model.FieldTitle: true},
		MatchArtist: true,
	}
}

// SetFamily sets the same precedence for every field in fields.
func (o *Options) SetFamily(fields []model.Field, p Precedence) {
	if o.Precedence == nil {
		o.Precedence = map[model.Field]Precedence{}
	}
	for _, f := range fields {
		o.Precedence[f] = p
	}
}

// Merger combines per-record, shared and literal values into one Record per song.
type Merger struct {
	opts Options
}

// New creates a Merger.
func New(opts Options) *Merger {
	return &Merger{opts: opts}
}

// Shared collapses the entries of a source meant to apply to every song
// into SharedFields. More than one entry is ambiguous.
func Shared(records []model.RawRecord) (model.SharedFields, error) {
	var nonEmpty []model.RawRecord
	for _, r := range records {
		if !r.IsEmpty() {
			nonEmpty = append(nonEmpty, r)
		}
	}
	switch len(nonEmpty) {
	case 0:
		return model.SharedFields{}, nil
	case 1:
		return model.SharedFields{RawRecord: nonEmpty[0]}, nil
	default:
		return model.SharedFields{}, model.NewConfigurationError(
			"shared metadata must hold a single entry, got %d", len(nonEmpty))
	}
}

// Merge resolves records against shared and literal values.
//
// Field precedence is literal, then record (unless the field prefers shared
// values), then shared. With no records, one record is created per file and
// bound to it, so that shared and literal values apply to every file.
//
// Merge is pure: the same inputs always give the same ordered output.
// Inconsistent input is reported as a *model.ConfigurationError.
func (m *Merger) Merge(records []model.RawRecord, shared model.SharedFields, literals model.RawRecord, files []string) ([]model.Record, error) {
	var raws []model.RawRecord
	for _, r := range records {
		if !r.IsEmpty() {
			raws = append(raws, r)
		}
	}

	if len(raws) == 0 {
		return m.mergeShared(shared, literals, files)
	}

	for _, f := range m.requiredFields() {
		if literals.Has(f) && len(raws) > 1 {
			return nil, model.NewConfigurationError(
				"literal %s %q cannot apply to %d records", f, literals.Value(f), len(raws))
		}
	}

	out := make([]model.Record, 0, len(raws))
	for i, raw := range raws {
		rec := model.NewRecord(i, model.RawRecord{})
		for _, f := range mergedFields {
			m.resolveField(&rec, f, raw, shared.RawRecord, literals)
		}
		rec.File = raw.File
		m.matchArtist(&rec)

		for _, f := range m.requiredFields() {
			if !rec.Has(f) {
				return nil, model.NewConfigurationError("record %d has no %s", i+1, f)
			}
		}
		out = append(out, rec)
	}

	if err := m.checkDistinct(out); err != nil {
		return nil, err
	}
	return out, nil
}

func (m *Merger) mergeShared(shared model.SharedFields, literals model.RawRecord, files []string) ([]model.Record, error) {
	if len(files) == 0 {
		return nil, model.NewConfigurationError("no metadata records and no audio files")
	}
	for _, f := range m.requiredFields() {
		if literals.Has(f) && len(files) > 1 {
			return nil, model.NewConfigurationError(
				"literal %s %q cannot apply to %d files", f, literals.Value(f), len(files))
		}
	}

	sorted := slices.Clone(files)
	slices.Sort(sorted)

	out := make([]model.Record, 0, len(sorted))
	for i, file := range sorted {
		rec := model.NewRecord(i, model.RawRecord{})
		for _, f := range mergedFields {
			switch {
			case literals.Has(f):
				rec.CopyField(f, literals)
				rec.SetOrigin(f, model.OriginLiteral)
			case shared.Has(f) && !m.opts.Required[f]:
				rec.CopyField(f, shared.RawRecord)
				rec.SetOrigin(f, model.OriginShared)
			}
		}
		rec.File = file
		rec.Forced = true
		m.matchArtist(&rec)
		out = append(out, rec)
	}
	return out, nil
}

func (m *Merger) resolveField(rec *model.Record, f model.Field, raw, shared, literals model.RawRecord) {
	preferShared := m.opts.Precedence[f] == PreferShared && !m.opts.Required[f]
	switch {
	case literals.Has(f):
		rec.CopyField(f, literals)
		rec.SetOrigin(f, model.OriginLiteral)
	case raw.Has(f) && !(preferShared && shared.Has(f)):
		rec.CopyField(f, raw)
		rec.SetOrigin(f, model.OriginRecord)
	case shared.Has(f) && !m.opts.Required[f]:
		rec.CopyField(f, shared)
		rec.SetOrigin(f, model.OriginShared)
	}
}

func (m *Merger) matchArtist(rec *model.Record) {
	if m.opts.MatchArtist && !rec.Has(model.FieldAlbumArtist) && rec.Has(model.FieldArtist) {
		rec.AlbumArtist = rec.Artist
		rec.SetOrigin(model.FieldAlbumArtist, rec.Origin(model.FieldArtist))
	}
}

func (m *Merger) requiredFields() []model.Field {
	var fields []model.Field
	for _, f := range mergedFields {
		if m.opts.Required[f] {
			fields = append(fields, f)
		}
	}
	return fields
}

func (m *Merger) checkDistinct(records []model.Record) error {
	for _, f := range append(m.requiredFields(), model.FieldFile) {
		seen := map[string]int{}
		for _, rec := range records {
			if !rec.Has(f) {
				continue
			}
			key := model.Fold(rec.Value(f))
			if prev, ok := seen[key]; ok {
				return model.NewConfigurationError(
					"records %d and %d share the same %s %q", prev+1, rec.Index+1, f, rec.Value(f))
			}
			seen[key] = rec.Index
		}
	}
	return nil
}

// Describe summarizes the options for logging.
func (o Options) Describe() string {
	var parts []string
	for _, f := range mergedFields {
		if p, ok := o.Precedence[f]; ok && p == PreferShared {
			parts = append(parts, fmt.Sprintf("%s=%s", f, p))
		}
	}
	for _, f := range mergedFields {
		if o.Required[f] {
			parts = append(parts, fmt.Sprintf("%s=required", f))
		}
	}
	if len(parts) == 0 {
		return "defaults"
	}
	return strings.Join(parts, " ")
}
