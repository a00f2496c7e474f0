package download

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/handiism/audio-info-updater/internal/bandcamp"
	"github.com/handiism/audio-info-updater/internal/config"
	"github.com/handiism/audio-info-updater/internal/http"
	ioutils "github.com/handiism/audio-info-updater/internal/io"
	"github.com/handiism/audio-info-updater/internal/model"
	"golang.org/x/sync/errgroup"
)

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// ProgressEvent represents a fetch progress update.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
}

// Manager turns Bandcamp pages into collections and fetches their tracks.
type Manager struct {
	settings     *config.Settings
	httpClient   *http.Client
	parser       *bandcamp.Parser
	discography  *bandcamp.Discography
	imageService *ioutils.ImageService

	collections []*model.Collection
	albums      map[*model.Collection]*bandcamp.Album

	totalBytes      int64
	receivedBytes   int64
	totalFiles      int32
	downloadedFiles int32

	onProgress func(ProgressEvent)
	mu         sync.RWMutex
}

// NewManager creates a new Manager. The HTTP client honors the proxy settings.
func NewManager(settings *config.Settings, onProgress func(ProgressEvent)) *Manager {
	return &Manager{
		settings:     settings,
		httpClient:   http.NewClient(http.WithProxy(settings.ProxyType, settings.ProxyAddress, settings.ProxyPort)),
		parser:       bandcamp.NewParser(),
		discography:  bandcamp.NewDiscography(),
		imageService: ioutils.NewImageService(),
		albums:       make(map[*model.Collection]*bandcamp.Album),
		onProgress:   onProgress,
	}
}

// Initialize fetches album info for every URL in input, one URL per line,
// and returns one collection per album. Files of the returned collections
// are placeholders until Fetch is called.
//
// Pages that cannot be read are reported and skipped. An error is returned
// only when no album could be found at all.
func (m *Manager) Initialize(ctx context.Context, input string) ([]*model.Collection, error) {
	var errs []error

	var albumURLs []string
	for _, inputURL := range ParseInputURLs(input) {
		urls, err := m.getAlbumURLs(ctx, inputURL)
		if err != nil {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Error getting albums from %s: %v", inputURL, err), Level: LevelError})
			errs = append(errs, fmt.Errorf("%s: %w", inputURL, err))
			continue
		}
		albumURLs = append(albumURLs, urls...)
	}

	var created []*model.Collection
	for _, albumURL := range albumURLs {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Fetching album info: %s", albumURL), Level: LevelVerbose})

		html, err := m.httpClient.GetString(ctx, albumURL)
		if err != nil {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Error fetching %s: %v", albumURL, err), Level: LevelError})
			errs = append(errs, err)
			continue
		}

		album, err := m.parser.ParseAlbumPage(html)
		if err != nil {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Error parsing %s: %v", albumURL, err), Level: LevelError})
			errs = append(errs, fmt.Errorf("%s: %w", albumURL, err))
			continue
		}
		album.URL = albumURL

		c := m.newCollection(album)
		m.mu.Lock()
		m.collections = append(m.collections, c)
		m.albums[c] = album
		m.mu.Unlock()
		created = append(created, c)

		m.progress(ProgressEvent{Message: fmt.Sprintf("Found album: %s - %s (%d tracks)", album.Artist, album.Title, len(album.Tracks)), Level: LevelInfo})
	}

	if len(created) == 0 {
		if len(errs) == 0 {
			return nil, errors.New("no album URL given")
		}
		return nil, errors.Join(errs...)
	}

	m.calculateTotals(ctx, created)
	return created, nil
}

// GetProgress returns current fetch progress.
func (m *Manager) GetProgress() (received, total int64, filesReceived, filesTotal int32) {
	return atomic.LoadInt64(&m.receivedBytes), atomic.LoadInt64(&m.totalBytes),
		atomic.LoadInt32(&m.downloadedFiles), atomic.LoadInt32(&m.totalFiles)
}

// GetCollectionNames returns the names of all initialized collections.
func (m *Manager) GetCollectionNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, len(m.collections))
	for i, c := range m.collections {
		names[i] = fmt.Sprintf("%s (%d tracks)", c.Name, len(c.Records))
	}
	return names
}

// ParseInputURLs returns the http(s) URLs of input, one per line.
func ParseInputURLs(input string) []string {
	var urls []string
	for _, line := range strings.Split(input, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "http://") || strings.HasPrefix(line, "https://") {
			urls = append(urls, line)
		}
	}
	return urls
}

func (m *Manager) getAlbumURLs(ctx context.Context, inputURL string) ([]string, error) {
	if strings.Contains(inputURL, "/album/") || strings.Contains(inputURL, "/track/") {
		return []string{inputURL}, nil
	}
	if !m.settings.DownloadArtistDiscography {
		return []string{inputURL}, nil
	}

	musicURL, err := bandcamp.MusicPageURL(inputURL)
	if err != nil {
		return nil, err
	}
	html, err := m.httpClient.GetString(ctx, musicURL)
	if err != nil {
		return nil, err
	}

	relativeURLs, err := m.discography.GetAlbumURLs(html)
	if err != nil {
		return nil, err
	}

	absoluteURLs := make([]string, 0, len(relativeURLs))
	for _, rel := range relativeURLs {
		abs, err := bandcamp.ResolveURL(musicURL, rel)
		if err != nil {
			return nil, err
		}
		absoluteURLs = append(absoluteURLs, abs)
	}
	return absoluteURLs, nil
}

// newCollection builds the collection of album with one placeholder per
// track at the location the track will be fetched to.
func (m *Manager) newCollection(album *bandcamp.Album) *model.Collection {
	c := &model.Collection{
		Name:    fmt.Sprintf("%s - %s", album.Artist, album.Title),
		Dir:     expandDownloadsPath(m.settings.DownloadsPath, album),
		Records: album.Records(),
		Shared:  album.Shared(),
		Source:  album.URL,
	}

	for i, rec := range c.Records {
		f := model.NewCandidateFile(filepath.Join(c.Dir, m.trackFileName(c.Shared, rec)))
		f.Placeholder = true
		f.RecordHint = i
		f.Duration = rec.Duration
		c.Files = append(c.Files, f)
	}
	return c
}

func expandDownloadsPath(pattern string, album *bandcamp.Album) string {
	year := ""
	if y := album.Year(); y > 0 {
		year = strconv.Itoa(y)
	}
	replacer := strings.NewReplacer(
		"{artist}", model.SanitizeFileName(album.Artist),
		"{album_artist}", model.SanitizeFileName(album.Artist),
		"{album}", model.SanitizeFileName(album.Title),
		"{year}", year,
	)
	return filepath.Clean(replacer.Replace(pattern))
}

// trackFileName renders the file name format for a track, falling back to
// "NN title" when the format refers to a field the track lacks.
func (m *Manager) trackFileName(shared model.SharedFields, rec model.RawRecord) string {
	full := shared.RawRecord
	for _, f := range model.Fields {
		if rec.Has(f) {
			full.CopyField(f, rec)
		}
	}

	name, ok := model.Template(m.settings.FileNameFormat).Render(full)
	if !ok || strings.TrimSpace(name) == "" {
		name = fmt.Sprintf("%02d %s", rec.Track, rec.Title)
	}
	return model.SanitizeFileName(name) + ".mp3"
}

func (m *Manager) calculateTotals(ctx context.Context, collections []*model.Collection) {
	for _, c := range collections {
		album := m.albumFor(c)
		for _, track := range album.Tracks {
			atomic.AddInt32(&m.totalFiles, 1)
			if size, err := m.httpClient.GetFileSize(ctx, track.MP3URL); err == nil {
				atomic.AddInt64(&m.totalBytes, size)
			}
		}
		if album.ArtworkURL != "" && m.wantsArtwork() {
			atomic.AddInt32(&m.totalFiles, 1)
		}
	}
}

func (m *Manager) albumFor(c *model.Collection) *bandcamp.Album {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.albums[c]
}

func (m *Manager) wantsArtwork() bool {
	return m.settings.SaveCoverArtInFolder || m.settings.SaveCoverArtInTags
}

// Fetch downloads the tracks and cover of a collection returned by
// Initialize, updating its files in place.
//
// A track already present in the collection directory, either at its
// expected path with an acceptable size or under a common alternate name,
// is reused and marked as cached. Tracks that still fail after all retries
// are removed from the collection's files and reported as
// PartialFetchErrors; the other tracks are unaffected. The returned error
// is non-nil only when the whole collection cannot be fetched.
func (m *Manager) Fetch(ctx context.Context, c *model.Collection) ([]*model.PartialFetchError, error) {
	album := m.albumFor(c)
	if album == nil {
		return nil, fmt.Errorf("collection %q was not initialized by this manager", c.Name)
	}
	if err := ioutils.EnsureDir(c.Dir); err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Error creating directory: %v", err), Level: LevelError})
		return nil, err
	}

	var failures []*model.PartialFetchError

	if m.wantsArtwork() && album.ArtworkURL != "" {
		if err := m.fetchArtwork(ctx, c, album); err != nil {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Error downloading artwork for %s: %v", album.Title, err), Level: LevelWarning})
			failures = append(failures, &model.PartialFetchError{Item: "cover", Err: err})
		}
	}

	files := make(map[int]*model.CandidateFile, len(c.Files))
	for _, f := range c.Files {
		files[f.RecordHint] = f
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, m.settings.MaxConcurrentTracksDownload))

	trackErrs := make([]error, len(album.Tracks))
	for i, track := range album.Tracks {
		f, ok := files[i]
		if !ok {
			continue
		}
		g.Go(func() error {
			if err := m.fetchTrack(gctx, c, track, f); err != nil {
				m.progress(ProgressEvent{Message: fmt.Sprintf("Error downloading %s: %v", track.Title, err), Level: LevelError})
				trackErrs[i] = err
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return failures, err
	}

	kept := c.Files[:0]
	for _, f := range c.Files {
		if f.RecordHint >= 0 && f.RecordHint < len(trackErrs) && trackErrs[f.RecordHint] != nil {
			failures = append(failures, &model.PartialFetchError{
				Item: album.Tracks[f.RecordHint].Title,
				Err:  trackErrs[f.RecordHint],
			})
			continue
		}
		kept = append(kept, f)
	}
	c.Files = kept

	if len(failures) == 0 {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Successfully fetched album: %s", album.Title), Level: LevelSuccess})
	} else {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Finished %s, some items failed", album.Title), Level: LevelWarning})
	}
	return failures, nil
}

// coverPath is the location of the cover saved next to the tracks.
func (m *Manager) coverPath(c *model.Collection) string {
	name, ok := model.Template(m.settings.CoverArtFileNameFormat).Render(c.Shared.RawRecord)
	if !ok || strings.TrimSpace(name) == "" {
		name = "cover"
	}
	return filepath.Join(c.Dir, model.SanitizeFileName(name)+".jpg")
}

func (m *Manager) fetchArtwork(ctx context.Context, c *model.Collection, album *bandcamp.Album) error {
	path := m.coverPath(c)
	if data, err := os.ReadFile(path); err == nil && len(data) > 0 {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Using existing cover: %s", filepath.Base(path)), Level: LevelVerbose})
		atomic.AddInt32(&m.downloadedFiles, 1)
		c.Artwork = data
		c.CoverPath = path
		return nil
	}

	var artwork []byte
	var err error
	for tries := 0; tries < max(1, m.settings.DownloadMaxRetries); tries++ {
		artwork, err = m.httpClient.DownloadBytes(ctx, album.ArtworkURL)
		if err == nil || ctx.Err() != nil {
			break
		}
		m.waitForRetry(ctx, tries)
	}
	if err != nil {
		return err
	}

	atomic.AddInt32(&m.downloadedFiles, 1)
	atomic.AddInt64(&m.receivedBytes, int64(len(artwork)))
	c.Artwork = artwork

	if m.settings.SaveCoverArtInFolder {
		toSave, err := m.imageService.Prepare(ctx, artwork, ioutils.CoverOptions{
			Resize:  m.settings.CoverArtInFolderResize,
			MaxSize: m.settings.CoverArtInFolderMaxSize,
			ToJPEG:  m.settings.ConvertCoverArtToJPG,
		})
		if err != nil {
			toSave = artwork
		}
		if err := ioutils.WriteFile(ctx, path, toSave); err != nil {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Error saving artwork: %v", err), Level: LevelWarning})
		} else {
			c.CoverPath = path
		}
	}

	m.progress(ProgressEvent{Message: fmt.Sprintf("Downloaded artwork for %s", album.Title), Level: LevelVerbose})
	return nil
}

func (m *Manager) fetchTrack(ctx context.Context, c *model.Collection, track bandcamp.Track, f *model.CandidateFile) error {
	if path, ok := m.findCached(ctx, c, track, f.Path); ok {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Skipping existing: %s", filepath.Base(path)), Level: LevelVerbose})
		atomic.AddInt32(&m.downloadedFiles, 1)
		m.markPresent(f, path, true)
		return nil
	}

	var err error
	for tries := 0; tries < max(1, m.settings.DownloadMaxRetries); tries++ {
		var last int64
		err = m.httpClient.DownloadFile(ctx, track.MP3URL, f.Path, func(written, _ int64) {
			atomic.AddInt64(&m.receivedBytes, written-last)
			last = written
		})
		if err == nil || ctx.Err() != nil {
			break
		}
		atomic.AddInt64(&m.receivedBytes, -last)
		m.progress(ProgressEvent{Message: fmt.Sprintf("Retry %d/%d for %s", tries+1, m.settings.DownloadMaxRetries, track.Title), Level: LevelWarning})
		m.waitForRetry(ctx, tries)
	}
	if err != nil {
		return err
	}

	atomic.AddInt32(&m.downloadedFiles, 1)
	m.markPresent(f, f.Path, false)
	m.progress(ProgressEvent{Message: fmt.Sprintf("Downloaded: %s", filepath.Base(f.Path)), Level: LevelVerbose})
	return nil
}

// findCached looks for a previous copy of track in the collection directory.
// The expected path counts only when its size is within the allowed
// difference of the remote size; alternate names count as soon as they exist.
func (m *Manager) findCached(ctx context.Context, c *model.Collection, track bandcamp.Track, expected string) (string, bool) {
	if size, err := ioutils.FileSize(expected); err == nil {
		remote, err := m.httpClient.GetFileSize(ctx, track.MP3URL)
		if err == nil && m.sizeAcceptable(size, remote) {
			return expected, true
		}
	}

	for _, name := range CandidateNames(track.Title, c.Shared.Artist, c.Shared.AlbumArtist, track.Number) {
		path := filepath.Join(c.Dir, name+".mp3")
		if path == expected {
			continue
		}
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			return path, true
		}
	}
	return "", false
}

func (m *Manager) sizeAcceptable(actual, expected int64) bool {
	if expected <= 0 {
		return false
	}
	diff := float64(actual-expected) / float64(expected)
	return math.Abs(diff) <= m.settings.AllowedFileSizeDifference
}

func (m *Manager) markPresent(f *model.CandidateFile, path string, cached bool) {
	if path != f.Path {
		f.Path = path
		f.Tokens = model.Tokenize(model.BaseName(path))
	}
	f.Placeholder = false
	f.Cached = cached
	if size, err := ioutils.FileSize(path); err == nil {
		f.Size = size
	}
}

// CandidateNames returns the file names, without extension, under which a
// track may already have been saved by an earlier run or another tool.
// The title comes first, followed by common suffix, artist prefix and
// track number variants.
func CandidateNames(title, artist, albumArtist string, track int) []string {
	names := []string{title, model.SanitizeFileName(title)}

	for _, suffix := range []string{"(Music Video)", "(Official Music Video)"} {
		for _, n := range names {
			names = append(names, n+" "+suffix)
		}
	}

	var prefixed []string
	if artist != "" {
		for _, n := range names {
			prefixed = append(prefixed, artist+" - "+n)
		}
	}
	if albumArtist != "" && albumArtist != artist {
		for _, n := range names {
			prefixed = append(prefixed, albumArtist+" - "+n)
		}
	}
	names = append(names, prefixed...)

	if track > 0 {
		base := names
		for _, n := range base {
			names = append(names,
				fmt.Sprintf("%02d %s", track, n),
				fmt.Sprintf("%02d. %s", track, n),
				fmt.Sprintf("%d %s", track, n),
				fmt.Sprintf("%d. %s", track, n),
			)
		}
	}

	for _, n := range names {
		if strings.Contains(n, "_") {
			names = append(names, strings.ReplaceAll(n, "_", ""))
		}
	}

	seen := make(map[string]bool, len(names))
	unique := names[:0]
	for _, n := range names {
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		unique = append(unique, n)
	}
	return unique
}

func (m *Manager) waitForRetry(ctx context.Context, tries int) {
	cooldown := m.settings.DownloadRetryCooldown * math.Pow(m.settings.DownloadRetryExponent, float64(tries))
	select {
	case <-ctx.Done():
	case <-time.After(time.Duration(cooldown * float64(time.Second))):
	}
}

func (m *Manager) progress(event ProgressEvent) {
	if m.onProgress != nil {
		m.onProgress(event)
	}
}
