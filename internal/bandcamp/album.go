package bandcamp

import (
	"math"
	"time"

	"github.com/handiism/audio-info-updater/internal/bandcamp/dto"
	"github.com/handiism/audio-info-updater/internal/model"
)

// Album is a release listed on a Bandcamp page.
type Album struct {
	URL         string
	Artist      string
	Title       string
	ArtworkURL  string
	ReleaseDate time.Time
	Tracks      []Track
}

// Track is one streamable song of an album.
type Track struct {
	Number   int
	Title    string
	Duration model.Duration
	MP3URL   string
}

func albumFromJSON(ja *dto.JSONAlbum) *Album {
	album := &Album{
		Artist:      ja.Artist,
		Title:       ja.Title(),
		ArtworkURL:  ja.ArtworkURL(),
		ReleaseDate: ja.Released(),
	}

	// Tracks without a stream are not downloadable.
	for _, jt := range ja.Tracks {
		url := jt.MP3URL()
		if url == "" {
			continue
		}
		album.Tracks = append(album.Tracks, Track{
			Number:   jt.TrackNumber(),
			Title:    jt.Title,
			Duration: model.Duration(math.Round(jt.Duration)),
			MP3URL:   url,
		})
	}
	return album
}

// Year returns the release year, zero when unknown.
func (a *Album) Year() int {
	if a.ReleaseDate.IsZero() {
		return 0
	}
	return a.ReleaseDate.Year()
}

// Shared returns the fields common to every track.
func (a *Album) Shared() model.SharedFields {
	return model.SharedFields{RawRecord: model.RawRecord{
		Artist:      a.Artist,
		AlbumArtist: a.Artist,
		Album:       a.Title,
		Year:        a.Year(),
	}}
}

// Records returns one record per track in page order.
func (a *Album) Records() []model.RawRecord {
	records := make([]model.RawRecord, len(a.Tracks))
	for i, t := range a.Tracks {
		records[i] = model.RawRecord{
			Track:    t.Number,
			Title:    t.Title,
			Duration: t.Duration,
		}
	}
	return records
}
