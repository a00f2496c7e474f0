package bandcamp

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handiism/audio-info-updater/internal/model"
)

const albumPage = `<html>
	<script data-tralbum="{
		&quot;current&quot;:{&quot;title&quot;:&quot;Test Album&quot;,&quot;release_date&quot;:&quot;01 Jan 2023 00:00:00 GMT&quot;},
		&quot;artist&quot;:&quot;Test Artist&quot;,
		&quot;art_id&quot;:1234567890,
		&quot;trackinfo&quot;:[
			{&quot;track_num&quot;:1,&quot;title&quot;:&quot;First Track&quot;,&quot;duration&quot;:180.5,&quot;file&quot;:{&quot;mp3-128&quot;:&quot;//example.com/1.mp3&quot;}},
			{&quot;track_num&quot;:2,&quot;title&quot;:&quot;Second Track&quot;,&quot;duration&quot;:200.0,&quot;file&quot;:{&quot;mp3-128&quot;:&quot;https://example.com/2.mp3&quot;}},
			{&quot;track_num&quot;:3,&quot;title&quot;:&quot;Preorder&quot;,&quot;duration&quot;:0,&quot;file&quot;:null}
		]
	}"></script>
	</html>`

func TestDiscography_GetAlbumURLs(t *testing.T) {
	tests := []struct {
		name    string
		html    string
		want    []string
		wantErr error
	}{
		{
			name: "single album link",
			html: `<html><body><a href="/album/test-album">Album</a></body></html>`,
			want: []string{"/album/test-album"},
		},
		{
			name: "multiple albums",
			html: `<html><body>
				<a href="/track/single-track">&quot;</a>
				<a href="/album/second-album">&quot;</a>
				<a href="/album/first-album">&quot;</a>
			</body></html>`,
			want: []string{"/album/first-album", "/album/second-album", "/track/single-track"},
		},
		{
			name: "duplicate albums filtered",
			html: `<html><body>
				<a href="/album/same-album">&quot;</a>
				<a href="/album/same-album">&quot;</a>
			</body></html>`,
			want: []string{"/album/same-album"},
		},
		{
			name:    "no albums found",
			html:    `<html><body>No music here</body></html>`,
			wantErr: ErrNoAlbumFound,
		},
		{
			name: "single album artist page",
			html: `<html><body>
				<div id="discography"></div>
				<a href="/album/only-album">Only Album</a>
			</body></html>`,
			want: []string{"/album/only-album"},
		},
	}

	d := NewDiscography()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			urls, err := d.GetAlbumURLs(tt.html)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, urls)
		})
	}
}

func TestParser_ParseAlbumPage(t *testing.T) {
	album, err := NewParser().ParseAlbumPage(albumPage)
	require.NoError(t, err)

	assert.Equal(t, "Test Artist", album.Artist)
	assert.Equal(t, "Test Album", album.Title)
	assert.Equal(t, "https://f4.bcbits.com/img/a1234567890_0.jpg", album.ArtworkURL)
	assert.Equal(t, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), album.ReleaseDate.UTC())
	require.Len(t, album.Tracks, 2, "tracks without a stream are skipped")
	assert.Equal(t, "http://example.com/1.mp3", album.Tracks[0].MP3URL)
	assert.Equal(t, model.Duration(181), album.Tracks[0].Duration)
}

func TestAlbum_RecordsAndShared(t *testing.T) {
	album, err := NewParser().ParseAlbumPage(albumPage)
	require.NoError(t, err)

	assert.Equal(t, []model.RawRecord{
		{Track: 1, Title: "First Track", Duration: 181},
		{Track: 2, Title: "Second Track", Duration: 200},
	}, album.Records())
	assert.Equal(t, model.RawRecord{
		Artist: "Test Artist", AlbumArtist: "Test Artist", Album: "Test Album", Year: 2023,
	}, album.Shared().RawRecord)
}

func TestExtractAlbumData(t *testing.T) {
	data, err := extractAlbumData(`<html><script data-tralbum="{&quot;current&quot;:{&quot;title&quot;:&quot;Test&quot;}}"></script></html>`)
	require.NoError(t, err)
	assert.Equal(t, `{"current":{"title":"Test"}}`, data)

	_, err = extractAlbumData(`<html><body>No album data</body></html>`)
	assert.Error(t, err)
}

func TestFixJSON(t *testing.T) {
	assert.Equal(t,
		`url: "http://example.bandcamp.com/album/test",`,
		fixJSON(`url: "http://example.bandcamp.com" + "/album/test",`))
	assert.Equal(t,
		`url: "http://example.bandcamp.com/album/test",`,
		fixJSON(`url: "http://example.bandcamp.com/album/test",`))
}

func TestURLs(t *testing.T) {
	music, err := MusicPageURL("https://artist.bandcamp.com/album/name?x=1")
	require.NoError(t, err)
	assert.Equal(t, "https://artist.bandcamp.com/music", music)

	_, err = MusicPageURL("not a url")
	assert.Error(t, err)

	full, err := ResolveURL(music, "/album/other")
	require.NoError(t, err)
	assert.Equal(t, "https://artist.bandcamp.com/album/other", full)
}
