package audio

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bogem/id3v2"

	"github.com/handiism/audio-info-updater/internal/model"
)

// TagEditAction defines how to handle individual ID3 tags.
type TagEditAction int

const (
	// TagEmpty removes the frame.
	TagEmpty TagEditAction = iota

	// TagModify writes the record value when the record has one.
	TagModify

	// TagDoNotModify leaves the existing frame unchanged.
	TagDoNotModify
)

// TagConfig holds tagging configuration for each ID3 field.
type TagConfig struct {
	// ModifyTags is a master switch. If false, no text frames are modified.
	ModifyTags bool

	// Overwrite replaces frames that already hold a different value.
	// Without it existing values are kept and reported as warnings.
	Overwrite bool

	Title       TagEditAction
	Artist      TagEditAction
	AlbumArtist TagEditAction
	Album       TagEditAction
	Year        TagEditAction
	TrackNumber TagEditAction
	Genre       TagEditAction
	Duration    TagEditAction

	// Comments controls the COMM frame. Records never carry comments, so
	// only TagEmpty has an effect.
	Comments TagEditAction
}

// DefaultTagConfig returns a configuration that writes every field,
// overwrites existing values and clears comments.
func DefaultTagConfig() *TagConfig {
	return &TagConfig{
		ModifyTags:  true,
		Overwrite:   true,
		Title:       TagModify,
		Artist:      TagModify,
		AlbumArtist: TagModify,
		Album:       TagModify,
		Year:        TagModify,
		TrackNumber: TagModify,
		Genre:       TagModify,
		Duration:    TagModify,
		Comments:    TagEmpty,
	}
}

func (c *TagConfig) action(f model.Field) TagEditAction {
	switch f {
	case model.FieldTitle:
		return c.Title
	case model.FieldArtist:
		return c.Artist
	case model.FieldAlbumArtist:
		return c.AlbumArtist
	case model.FieldAlbum:
		return c.Album
	case model.FieldYear:
		return c.Year
	case model.FieldTrack:
		return c.TrackNumber
	case model.FieldGenre:
		return c.Genre
	case model.FieldDuration:
		return c.Duration
	}
	return TagDoNotModify
}

// frameIDs maps record fields to the ID3v2 text frames holding them.
var frameIDs = []struct {
	field model.Field
	id    string
}{
	{model.FieldTitle, "TIT2"},
	{model.FieldArtist, "TPE1"},
	{model.FieldAlbumArtist, "TPE2"},
	{model.FieldAlbum, "TALB"},
	{model.FieldYear, "TYER"},
	{model.FieldTrack, "TRCK"},
	{model.FieldGenre, "TCON"},
	{model.FieldDuration, "TLEN"},
}

// Tagger writes resolved records into audio files.
//
// MP3 files get ID3v2 frames. Other containers are left untouched and
// every field that would have been written is reported as a warning.
type Tagger struct {
	config *TagConfig
}

// NewTagger creates a new Tagger with the given configuration.
//
// If config is nil, DefaultTagConfig() is used.
func NewTagger(config *TagConfig) *Tagger {
	if config == nil {
		config = DefaultTagConfig()
	}
	return &Tagger{config: config}
}

// IsMP3 reports whether the file at path is written as ID3v2-tagged MP3.
func IsMP3(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".mp3")
}

// Apply writes the assignment's record into its file and embeds artwork
// when it is not nil.
//
// The returned warnings list fields that were not written: unsupported
// containers and, without Overwrite, existing values that were kept. An
// error means the file could not be read or saved.
func (t *Tagger) Apply(a model.Assignment, artwork []byte) ([]string, error) {
	path := a.File.Path
	name := filepath.Base(path)

	if !IsMP3(path) {
		var warnings []string
		if t.config.ModifyTags {
			for _, fr := range frameIDs {
				if t.config.action(fr.field) == TagModify && a.Record.Has(fr.field) {
					warnings = append(warnings, fmt.Sprintf("%s: %s not written, %s tags are not supported", name, fr.field, filepath.Ext(path)))
				}
			}
		}
		if artwork != nil {
			warnings = append(warnings, fmt.Sprintf("%s: cover not embedded, %s tags are not supported", name, filepath.Ext(path)))
		}
		return warnings, nil
	}

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open tags of %s: %w", name, err)
	}
	defer tag.Close()

	var warnings []string
	if t.config.ModifyTags {
		warnings = t.updateTextFrames(tag, a.Record, name)
	}
	if artwork != nil {
		if w := t.updateArtwork(tag, artwork, name); w != "" {
			warnings = append(warnings, w)
		}
	}

	if err := tag.Save(); err != nil {
		return warnings, fmt.Errorf("failed to save tags of %s: %w", name, err)
	}
	return warnings, nil
}

// updateTextFrames updates text-based ID3 frames based on configuration.
func (t *Tagger) updateTextFrames(tag *id3v2.Tag, rec model.Record, name string) []string {
	var warnings []string
	for _, fr := range frameIDs {
		switch t.config.action(fr.field) {
		case TagEmpty:
			tag.DeleteFrames(fr.id)
		case TagModify:
			if !rec.Has(fr.field) {
				continue
			}
			value := frameValue(rec.RawRecord, fr.field)
			existing := tag.GetTextFrame(fr.id).Text
			if existing == value {
				continue
			}
			if existing != "" && !t.config.Overwrite {
				warnings = append(warnings, fmt.Sprintf("%s: kept existing %s %q instead of %q", name, fr.field, existing, value))
				continue
			}
			tag.DeleteFrames(fr.id)
			tag.AddTextFrame(fr.id, id3v2.EncodingUTF8, value)
		}
	}

	if t.config.Comments == TagEmpty {
		tag.DeleteFrames(tag.CommonID("Comments"))
	}
	return warnings
}

// frameValue renders a field the way its ID3 frame stores it.
// TLEN holds milliseconds.
func frameValue(r model.RawRecord, f model.Field) string {
	if f == model.FieldDuration {
		return strconv.FormatInt(r.Duration.Time().Milliseconds(), 10)
	}
	return r.Value(f)
}

// updateArtwork embeds cover art as the front cover picture frame.
func (t *Tagger) updateArtwork(tag *id3v2.Tag, artwork []byte, name string) string {
	pictureID := tag.CommonID("Attached picture")
	if !t.config.Overwrite && len(tag.GetFrames(pictureID)) > 0 {
		return fmt.Sprintf("%s: kept existing cover", name)
	}
	tag.DeleteFrames(pictureID)

	pic := id3v2.PictureFrame{
		Encoding:    id3v2.EncodingUTF8,
		MimeType:    imageMimeType(artwork),
		PictureType: id3v2.PTFrontCover,
		Description: "Cover",
		Picture:     artwork,
	}
	tag.AddAttachedPicture(pic)
	return ""
}

func imageMimeType(data []byte) string {
	if len(data) >= 8 && string(data[1:4]) == "PNG" {
		return "image/png"
	}
	return "image/jpeg"
}
