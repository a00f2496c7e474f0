package audio

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/handiism/audio-info-updater/internal/model"
)

// PlaylistCreator generates playlist files in various formats.
//
// Entries follow the order of the assignments given. Paths are relative
// (just the file name), assuming the playlist sits next to the files.
//
// Example:
//
//	creator := NewPlaylistCreator(model.PlaylistFormatM3U, true)
//	content := creator.CreatePlaylist("Album", result.Assignments)
//	os.WriteFile("Album.m3u", []byte(content), 0644)
//
//	// Result:
//	// #EXTM3U
//	// #EXTINF:180,Artist - Song Title
//	// 01 Song Title.mp3
type PlaylistCreator struct {
	format   model.PlaylistFormat
	extended bool // For M3U: include EXTINF lines with duration/title
}

// NewPlaylistCreator creates a new PlaylistCreator.
// extended only applies to M3U.
func NewPlaylistCreator(format model.PlaylistFormat, extended bool) *PlaylistCreator {
	return &PlaylistCreator{
		format:   format,
		extended: extended,
	}
}

type entry struct {
	file     string
	title    string
	artist   string
	album    string
	albumArt string
	seconds  int
}

func entries(assignments []model.Assignment) []entry {
	out := make([]entry, 0, len(assignments))
	for _, a := range assignments {
		d := a.Record.Duration
		if d.IsZero() {
			d = a.File.Duration
		}
		title := a.Record.Title
		if title == "" {
			title = model.BaseName(a.File.Path)
		}
		out = append(out, entry{
			file:     filepath.Base(a.File.Path),
			title:    title,
			artist:   a.Record.Artist,
			album:    a.Record.Album,
			albumArt: a.Record.AlbumArtist,
			seconds:  d.Total(),
		})
	}
	return out
}

// CreatePlaylist generates playlist content titled name.
func (p *PlaylistCreator) CreatePlaylist(name string, assignments []model.Assignment) string {
	items := entries(assignments)
	switch p.format {
	case model.PlaylistFormatPLS:
		return p.createPLS(items)
	case model.PlaylistFormatWPL:
		return p.createWPL(name, items)
	case model.PlaylistFormatZPL:
		return p.createZPL(name, items)
	default:
		return p.createM3U(items)
	}
}

func (e entry) display() string {
	if e.artist == "" {
		return e.title
	}
	return e.artist + " - " + e.title
}

// createM3U generates an M3U playlist, with #EXTINF lines when extended.
func (p *PlaylistCreator) createM3U(items []entry) string {
	var sb strings.Builder

	if p.extended {
		sb.WriteString("#EXTM3U\n")
	}

	for _, e := range items {
		if p.extended {
			fmt.Fprintf(&sb, "#EXTINF:%d,%s\n", e.seconds, e.display())
		}
		sb.WriteString(e.file + "\n")
	}

	return sb.String()
}

// createPLS generates an INI-style PLS playlist.
func (p *PlaylistCreator) createPLS(items []entry) string {
	var sb strings.Builder

	sb.WriteString("[playlist]\n")

	for i, e := range items {
		idx := i + 1
		fmt.Fprintf(&sb, "File%d=%s\n", idx, e.file)
		fmt.Fprintf(&sb, "Title%d=%s\n", idx, e.display())
		fmt.Fprintf(&sb, "Length%d=%d\n", idx, e.seconds)
	}

	fmt.Fprintf(&sb, "NumberOfEntries=%d\n", len(items))
	sb.WriteString("Version=2\n")

	return sb.String()
}

// createWPL generates a Windows Media Player playlist.
func (p *PlaylistCreator) createWPL(name string, items []entry) string {
	var sb strings.Builder

	sb.WriteString("<?wpl version=\"1.0\"?>\n")
	sb.WriteString("<smil>\n")
	sb.WriteString("  <head>\n")
	fmt.Fprintf(&sb, "    <title>%s</title>\n", escapeXML(name))
	sb.WriteString("  </head>\n")
	sb.WriteString("  <body>\n")
	sb.WriteString("    <seq>\n")

	for _, e := range items {
		fmt.Fprintf(&sb, "      <media src=\"%s\"/>\n", escapeXML(e.file))
	}

	sb.WriteString("    </seq>\n")
	sb.WriteString("  </body>\n")
	sb.WriteString("</smil>\n")

	return sb.String()
}

// createZPL generates a Zune playlist. Like WPL, with per-track metadata
// and durations in milliseconds.
func (p *PlaylistCreator) createZPL(name string, items []entry) string {
	var sb strings.Builder

	sb.WriteString("<?zpl version=\"2.0\"?>\n")
	sb.WriteString("<smil>\n")
	sb.WriteString("  <head>\n")
	fmt.Fprintf(&sb, "    <title>%s</title>\n", escapeXML(name))
	sb.WriteString("    <meta name=\"Generator\" content=\"AudioInfoUpdater\"/>\n")
	fmt.Fprintf(&sb, "    <meta name=\"ItemCount\" content=\"%d\"/>\n", len(items))
	sb.WriteString("  </head>\n")
	sb.WriteString("  <body>\n")
	sb.WriteString("    <seq>\n")

	for _, e := range items {
		fmt.Fprintf(&sb, "      <media src=\"%s\" albumTitle=\"%s\" albumArtist=\"%s\" trackTitle=\"%s\" trackArtist=\"%s\" duration=\"%d\"/>\n",
			escapeXML(e.file),
			escapeXML(e.album),
			escapeXML(e.albumArt),
			escapeXML(e.title),
			escapeXML(e.artist),
			e.seconds*1000)
	}

	sb.WriteString("    </seq>\n")
	sb.WriteString("  </body>\n")
	sb.WriteString("</smil>\n")

	return sb.String()
}

// escapeXML escapes special XML characters in a string.
func escapeXML(s string) string {
	return strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		"\"", "&quot;",
		"'", "&apos;",
	).Replace(s)
}
