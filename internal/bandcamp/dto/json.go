package dto

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	artworkURLStart = "https://f4.bcbits.com/img/a"
	artworkURLEnd   = "_0.jpg"
)

// BandcampTime is a custom time type that handles Bandcamp's date format.
type BandcampTime struct {
	time.Time
}

// UnmarshalJSON parses Bandcamp's date format: "01 Jan 2023 00:00:00 GMT"
func (bt *BandcampTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	if s == "" {
		bt.Time = time.Time{}
		return nil
	}

	formats := []string{
		"02 Jan 2006 15:04:05 MST",
		"2 Jan 2006 15:04:05 MST",
		time.RFC3339,
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			bt.Time = t
			return nil
		}
	}

	return fmt.Errorf("unable to parse date: %s", s)
}

// JSONAlbum represents the deserialized album data from Bandcamp's HTML.
type JSONAlbum struct {
	AlbumData   *JSONAlbumData `json:"current"`
	ArtID       *int64         `json:"art_id"`
	Artist      string         `json:"artist"`
	ReleaseDate *BandcampTime  `json:"album_release_date"`
	Tracks      []JSONTrack    `json:"trackinfo"`
}

// JSONAlbumData contains album metadata.
type JSONAlbumData struct {
	AlbumTitle  string        `json:"title"`
	ReleaseDate *BandcampTime `json:"release_date"`
	PublishDate *BandcampTime `json:"publish_date"`
}

// JSONTrack represents a track from Bandcamp's JSON data.
type JSONTrack struct {
	Duration float64      `json:"duration"`
	File     *JSONMp3File `json:"file"`
	Number   *int         `json:"track_num"`
	Title    string       `json:"title"`
}

// JSONMp3File represents the MP3 file info.
type JSONMp3File struct {
	URL string `json:"mp3-128"`
}

// Title returns the album title, empty for a bare track page.
func (ja *JSONAlbum) Title() string {
	if ja.AlbumData == nil {
		return ""
	}
	return ja.AlbumData.AlbumTitle
}

// ArtworkURL builds the cover URL from the art id, empty without one.
func (ja *JSONAlbum) ArtworkURL() string {
	if ja.ArtID == nil {
		return ""
	}
	return fmt.Sprintf("%s%010d%s", artworkURLStart, *ja.ArtID, artworkURLEnd)
}

// Released returns the album release date, falling back to the release
// and publish dates of the current item.
func (ja *JSONAlbum) Released() time.Time {
	switch {
	case ja.ReleaseDate != nil:
		return ja.ReleaseDate.Time
	case ja.AlbumData != nil && ja.AlbumData.ReleaseDate != nil:
		return ja.AlbumData.ReleaseDate.Time
	case ja.AlbumData != nil && ja.AlbumData.PublishDate != nil:
		return ja.AlbumData.PublishDate.Time
	}
	return time.Time{}
}

// TrackNumber returns the track number, 1 for single-track pages.
func (jt *JSONTrack) TrackNumber() int {
	if jt.Number == nil {
		return 1
	}
	return *jt.Number
}

// MP3URL returns the stream URL with a scheme, empty when the track is
// not streamable.
func (jt *JSONTrack) MP3URL() string {
	if jt.File == nil || jt.File.URL == "" {
		return ""
	}
	if strings.HasPrefix(jt.File.URL, "//") {
		return "http:" + jt.File.URL
	}
	return jt.File.URL
}
