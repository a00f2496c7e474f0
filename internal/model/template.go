package model

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Template is a file naming pattern with {field} placeholders.
//
// Supported placeholders:
//   - {track} - Track number
//   - {track:02}, {tracknum} - Track number, zero-padded to 2 digits
//   - {title}, {artist}, {album}, {album_artist}, {genre}
//   - {year} - Release year
//
// Example:
//
//	name, ok := model.Template("{track:02} - {title}").Render(record)
//	// name = "03 - Come Together", ok = true
type Template string

var placeholderRegex = regexp.MustCompile(`\{([a-z_]+)(?::0?(\d+))?\}`)

// Render substitutes the record fields into the template.
// It returns false when a placeholder refers to an absent field or is unknown.
func (t Template) Render(r RawRecord) (string, bool) {
	ok := true
	out := placeholderRegex.ReplaceAllStringFunc(string(t), func(m string) string {
		groups := placeholderRegex.FindStringSubmatch(m)
		name, width := groups[1], groups[2]
		if name == "tracknum" {
			name, width = string(FieldTrack), "2"
		}
		f, known := ParseField(name)
		if !known || !r.Has(f) {
			ok = false
			return ""
		}
		if width != "" && (f == FieldTrack || f == FieldYear) {
			w, _ := strconv.Atoi(width)
			n, _ := strconv.Atoi(r.Value(f))
			return fmt.Sprintf("%0*d", w, n)
		}
		return r.Value(f)
	})
	if !ok {
		return "", false
	}
	return out, true
}

// Fields returns the fields referenced by the template.
func (t Template) Fields() []Field {
	var fields []Field
	for _, groups := range placeholderRegex.FindAllStringSubmatch(string(t), -1) {
		name := groups[1]
		if name == "tracknum" {
			name = string(FieldTrack)
		}
		if f, ok := ParseField(name); ok {
			fields = append(fields, f)
		}
	}
	return fields
}

var (
	invalidFileChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	trailingDots     = regexp.MustCompile(`\.+$`)
	whitespaceRuns   = regexp.MustCompile(`\s+`)
)

// SanitizeFileName replaces characters that are invalid in file names.
//
// The following transformations are applied:
//   - Invalid characters (<>:"/\|?* and control chars) are replaced with underscore
//   - Trailing dots are removed (Windows limitation)
//   - Multiple whitespace is collapsed to single space
//   - Surrounding whitespace is removed
//
// Example:
//
//	SanitizeFileName("Song: Part 1/2") // Returns "Song_ Part 1_2"
func SanitizeFileName(name string) string {
	name = invalidFileChars.ReplaceAllString(name, "_")
	name = trailingDots.ReplaceAllString(name, "")
	name = whitespaceRuns.ReplaceAllString(name, " ")
	return strings.TrimSpace(name)
}

// PlaylistFormat represents supported playlist file formats.
type PlaylistFormat int

const (
	// PlaylistFormatM3U creates .m3u playlist files (most widely supported).
	PlaylistFormatM3U PlaylistFormat = iota

	// PlaylistFormatPLS creates .pls playlist files (used by Winamp).
	PlaylistFormatPLS

	// PlaylistFormatWPL creates .wpl playlist files (Windows Media Player).
	PlaylistFormatWPL

	// PlaylistFormatZPL creates .zpl playlist files (Zune Media Player).
	PlaylistFormatZPL
)

// ParsePlaylistFormat maps a name such as "pls" to a PlaylistFormat.
// Unknown names fall back to M3U.
func ParsePlaylistFormat(name string) PlaylistFormat {
	switch strings.ToLower(name) {
	case "pls":
		return PlaylistFormatPLS
	case "wpl":
		return PlaylistFormatWPL
	case "zpl":
		return PlaylistFormatZPL
	default:
		return PlaylistFormatM3U
	}
}

// Extension returns the file extension for the playlist format, including the dot.
func (pf PlaylistFormat) Extension() string {
	switch pf {
	case PlaylistFormatPLS:
		return ".pls"
	case PlaylistFormatWPL:
		return ".wpl"
	case PlaylistFormatZPL:
		return ".zpl"
	default:
		return ".m3u"
	}
}
