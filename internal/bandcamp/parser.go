package bandcamp

import (
	"encoding/json"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/handiism/audio-info-updater/internal/bandcamp/dto"
)

// urlConcat matches JavaScript-style string concatenation that some pages
// leave inside the embedded JSON.
var urlConcat = regexp.MustCompile(`(url: ".+)" \+ "(.+",)`)

// Parser extracts album information from Bandcamp HTML pages.
//
// Bandcamp embeds album data as JSON within the HTML page in a data-tralbum
// attribute. The Parser extracts this JSON, fixes any malformed content,
// and deserializes it into an Album.
//
// Example usage:
//
//	page, _ := client.GetString(ctx, "https://artist.bandcamp.com/album/name")
//	album, err := NewParser().ParseAlbumPage(page)
//	if err != nil {
//	    return err
//	}
//	records := album.Records()
type Parser struct{}

// NewParser creates a new Parser.
func NewParser() *Parser {
	return &Parser{}
}

// ParseAlbumPage extracts album info from a Bandcamp album or track page HTML.
func (p *Parser) ParseAlbumPage(htmlContent string) (*Album, error) {
	albumData, err := extractAlbumData(htmlContent)
	if err != nil {
		return nil, fmt.Errorf("could not retrieve album data: %w", err)
	}

	albumData = fixJSON(albumData)

	var jsonAlbum dto.JSONAlbum
	if err := json.Unmarshal([]byte(albumData), &jsonAlbum); err != nil {
		return nil, fmt.Errorf("failed to parse album JSON: %w", err)
	}

	return albumFromJSON(&jsonAlbum), nil
}

// extractAlbumData extracts the data-tralbum JSON string from HTML.
//
// Bandcamp embeds album data in the HTML like this:
//
//	<script ... data-tralbum="{...JSON...}">
//
// The attribute value is HTML-unescaped before it is returned.
func extractAlbumData(htmlContent string) (string, error) {
	const startString = `data-tralbum="{`
	const stopString = `}"`

	startIndex := strings.Index(htmlContent, startString)
	if startIndex == -1 {
		return "", fmt.Errorf("could not find album data in HTML")
	}

	startIndex += len(startString) - 1 // Include the opening brace
	remaining := htmlContent[startIndex:]

	endIndex := strings.Index(remaining, stopString)
	if endIndex == -1 {
		return "", fmt.Errorf("could not find end of album data")
	}

	return html.UnescapeString(remaining[:endIndex+1]), nil
}

// fixJSON removes URL concatenation such as
//
//	url: "http://example.bandcamp.com" + "/album/name",
//
// which is not valid JSON.
func fixJSON(albumData string) string {
	return urlConcat.ReplaceAllString(albumData, "${1}${2}")
}
