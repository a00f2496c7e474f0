package bandcamp

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"slices"
	"strings"
)

// ErrNoAlbumFound is returned when no album or track URLs can be found on a page.
var ErrNoAlbumFound = errors.New("no album found on page")

var (
	listedURL = regexp.MustCompile(`(?P<url>/(album|track)/.+?)("|&quot;)`)
	albumHref = regexp.MustCompile(`href="(?P<url>/album/.+?)"`)
)

// Discography extracts album and track URLs from Bandcamp artist pages.
//
// Example usage:
//
//	page, _ := client.GetString(ctx, MusicPageURL(albumURL))
//	paths, err := NewDiscography().GetAlbumURLs(page)
//	for _, p := range paths {
//	    fmt.Println(ResolveURL(albumURL, p))
//	}
type Discography struct{}

// NewDiscography creates a new Discography service.
func NewDiscography() *Discography {
	return &Discography{}
}

// GetAlbumURLs extracts the album and track paths, such as
// "/album/my-album", listed on a music page. The result is sorted and free
// of duplicates.
//
// Artists with a single album often have their music page redirect to
// that album; the album path is then returned alone.
//
// Returns ErrNoAlbumFound if no album or track URLs can be found.
func (d *Discography) GetAlbumURLs(musicPageHTML string) ([]string, error) {
	if d.isSingleAlbumArtist(musicPageHTML) {
		albumURL, err := d.getSingleAlbumURL(musicPageHTML)
		if err != nil {
			return nil, err
		}
		return []string{albumURL}, nil
	}

	urls := uniqueMatches(listedURL, musicPageHTML)
	if len(urls) == 0 {
		return nil, ErrNoAlbumFound
	}
	return urls, nil
}

// isSingleAlbumArtist reports whether the page is an album page rather
// than a music listing. Only album pages carry the "discography" div.
func (d *Discography) isSingleAlbumArtist(html string) bool {
	return strings.Contains(html, `div id="discography"`)
}

func (d *Discography) getSingleAlbumURL(html string) (string, error) {
	urls := uniqueMatches(albumHref, html)
	switch len(urls) {
	case 0:
		return "", ErrNoAlbumFound
	case 1:
		return urls[0], nil
	}
	return "", errors.New("found multiple album URLs, expected exactly one")
}

func uniqueMatches(re *regexp.Regexp, s string) []string {
	var urls []string
	for _, match := range re.FindAllStringSubmatch(s, -1) {
		urls = append(urls, match[1])
	}
	slices.Sort(urls)
	return slices.Compact(urls)
}

// MusicPageURL returns the artist's music listing page for any URL on
// the artist's site.
func MusicPageURL(pageURL string) (string, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return "", err
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid Bandcamp URL %q", pageURL)
	}
	return (&url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/music"}).String(), nil
}

// ResolveURL joins a path found on a page with the page's URL.
func ResolveURL(pageURL, path string) (string, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(path)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(ref).String(), nil
}
