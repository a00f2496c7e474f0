package model

import (
	"fmt"
	"maps"
	"strconv"
	"strings"
)

// Field names one metadata field of a song.
type Field string

const (
	FieldTrack       Field = "track"
	FieldTitle       Field = "title"
	FieldArtist      Field = "artist"
	FieldAlbum       Field = "album"
	FieldAlbumArtist Field = "album_artist"
	FieldYear        Field = "year"
	FieldGenre       Field = "genre"
	FieldDuration    Field = "duration"
	FieldCover       Field = "cover"
	FieldFile        Field = "file"
)

// Fields lists every field in display order.
var Fields = []Field{
	FieldTrack, FieldTitle, FieldArtist, FieldAlbum, FieldAlbumArtist,
	FieldYear, FieldGenre, FieldDuration, FieldCover, FieldFile,
}

// TextFields are the free-text fields subject to beautification.
var TextFields = []Field{FieldTitle, FieldArtist, FieldAlbum, FieldAlbumArtist, FieldGenre}

var fieldAliases = map[string]Field{
	"#":            FieldTrack,
	"no":           FieldTrack,
	"number":       FieldTrack,
	"tracknum":     FieldTrack,
	"track":        FieldTrack,
	"name":         FieldTitle,
	"song":         FieldTitle,
	"title":        FieldTitle,
	"artist":       FieldArtist,
	"album":        FieldAlbum,
	"album_artist": FieldAlbumArtist,
	"albumartist":  FieldAlbumArtist,
	"album artist": FieldAlbumArtist,
	"album-artist": FieldAlbumArtist,
	"year":         FieldYear,
	"genre":        FieldGenre,
	"duration":     FieldDuration,
	"length":       FieldDuration,
	"time":         FieldDuration,
	"cover":        FieldCover,
	"artwork":      FieldCover,
	"image":        FieldCover,
	"file":         FieldFile,
	"filename":     FieldFile,
	"path":         FieldFile,
}

// ParseField resolves a column or key name to a Field.
// Matching is case-insensitive and accepts common aliases such as "time"
// for duration and "number" for track.
func ParseField(name string) (Field, bool) {
	f, ok := fieldAliases[strings.ToLower(strings.TrimSpace(name))]
	return f, ok
}

// RawRecord is one metadata entry as read from a source.
//
// Every field is optional: the zero value of a field means it is absent.
// Track and Year are only meaningful when positive.
type RawRecord struct {
	Track       int      `json:"track,omitempty" yaml:"track,omitempty"`
	Title       string   `json:"title,omitempty" yaml:"title,omitempty"`
	Artist      string   `json:"artist,omitempty" yaml:"artist,omitempty"`
	Album       string   `json:"album,omitempty" yaml:"album,omitempty"`
	AlbumArtist string   `json:"album_artist,omitempty" yaml:"album_artist,omitempty"`
	Year        int      `json:"year,omitempty" yaml:"year,omitempty"`
	Genre       string   `json:"genre,omitempty" yaml:"genre,omitempty"`
	Duration    Duration `json:"duration,omitempty" yaml:"duration,omitempty"`
	Cover       string   `json:"cover,omitempty" yaml:"cover,omitempty"`
	File        string   `json:"file,omitempty" yaml:"file,omitempty"`
}

// Has reports whether the field carries a value.
func (r RawRecord) Has(f Field) bool {
	switch f {
	case FieldTrack:
		return r.Track > 0
	case FieldYear:
		return r.Year > 0
	case FieldDuration:
		return !r.Duration.IsZero()
	default:
		return r.Value(f) != ""
	}
}

// Value returns the field rendered as text, or "" when absent.
func (r RawRecord) Value(f Field) string {
	switch f {
	case FieldTrack:
		if r.Track > 0 {
			return strconv.Itoa(r.Track)
		}
	case FieldTitle:
		return r.Title
	case FieldArtist:
		return r.Artist
	case FieldAlbum:
		return r.Album
	case FieldAlbumArtist:
		return r.AlbumArtist
	case FieldYear:
		if r.Year > 0 {
			return strconv.Itoa(r.Year)
		}
	case FieldGenre:
		return r.Genre
	case FieldDuration:
		if !r.Duration.IsZero() {
			return r.Duration.String()
		}
	case FieldCover:
		return r.Cover
	case FieldFile:
		return r.File
	}
	return ""
}

// Set parses value into the field. Blank values clear the field.
func (r *RawRecord) Set(f Field, value string) error {
	value = strings.TrimSpace(value)
	switch f {
	case FieldTrack, FieldYear:
		n := 0
		if value != "" {
			var err error
			// "3/12" style track numbers keep the leading position.
			head, _, _ := strings.Cut(value, "/")
			n, err = strconv.Atoi(strings.TrimSpace(head))
			if err != nil {
				return fmt.Errorf("invalid %s %q: %w", f, value, err)
			}
		}
		if f == FieldTrack {
			r.Track = n
		} else {
			r.Year = n
		}
	case FieldTitle:
		r.Title = value
	case FieldArtist:
		r.Artist = value
	case FieldAlbum:
		r.Album = value
	case FieldAlbumArtist:
		r.AlbumArtist = value
	case FieldGenre:
		r.Genre = value
	case FieldDuration:
		d, err := ParseDuration(value)
		if err != nil {
			return err
		}
		r.Duration = d
	case FieldCover:
		r.Cover = value
	case FieldFile:
		r.File = value
	default:
		return fmt.Errorf("unknown field %q", f)
	}
	return nil
}

// CopyField copies one field from src, including an absent value.
func (r *RawRecord) CopyField(f Field, src RawRecord) {
	switch f {
	case FieldTrack:
		r.Track = src.Track
	case FieldTitle:
		r.Title = src.Title
	case FieldArtist:
		r.Artist = src.Artist
	case FieldAlbum:
		r.Album = src.Album
	case FieldAlbumArtist:
		r.AlbumArtist = src.AlbumArtist
	case FieldYear:
		r.Year = src.Year
	case FieldGenre:
		r.Genre = src.Genre
	case FieldDuration:
		r.Duration = src.Duration
	case FieldCover:
		r.Cover = src.Cover
	case FieldFile:
		r.File = src.File
	}
}

// IsEmpty reports whether no field carries a value.
func (r RawRecord) IsEmpty() bool {
	for _, f := range Fields {
		if r.Has(f) {
			return false
		}
	}
	return true
}

// SharedFields holds values given once for a whole collection,
// such as a common album or artist.
type SharedFields struct {
	RawRecord
}

// Origin tells where a resolved field value came from.
type Origin int

const (
	OriginAbsent Origin = iota
	OriginShared
	OriginRecord
	OriginLiteral
)

func (o Origin) String() string {
	switch o {
	case OriginShared:
		return "shared"
	case OriginRecord:
		return "record"
	case OriginLiteral:
		return "literal"
	default:
		return "absent"
	}
}

// Record is a song's metadata after merging per-record, shared and
// literal values. Exactly one Record exists per logical song.
type Record struct {
	RawRecord

	// Index is the position of the record in the merged sequence.
	Index int `json:"-" yaml:"-"`

	// Forced marks a record created for a specific file when no
	// per-record source was given. Its File binding is a fallback
	// rather than an explicit match.
	Forced bool `json:"-" yaml:"-"`

	origins map[Field]Origin
}

// NewRecord creates a Record with no provenance information.
func NewRecord(index int, raw RawRecord) Record {
	return Record{RawRecord: raw, Index: index, origins: map[Field]Origin{}}
}

// Clone returns a copy of r that does not share its provenance.
func (r Record) Clone() Record {
	r.origins = maps.Clone(r.origins)
	return r
}

// Origin returns where the field value came from.
func (r Record) Origin(f Field) Origin {
	if o, ok := r.origins[f]; ok {
		return o
	}
	if r.Has(f) {
		return OriginRecord
	}
	return OriginAbsent
}

// SetOrigin records where the field value came from.
func (r *Record) SetOrigin(f Field, o Origin) {
	if r.origins == nil {
		r.origins = map[Field]Origin{}
	}
	r.origins[f] = o
}

// Label is a short human-readable identifier of the record.
func (r Record) Label() string {
	switch {
	case r.Title != "" && r.Track > 0:
		return fmt.Sprintf("%02d. %s", r.Track, r.Title)
	case r.Title != "":
		return r.Title
	case r.Track > 0:
		return fmt.Sprintf("#%d", r.Track)
	default:
		return fmt.Sprintf("record %d", r.Index+1)
	}
}
