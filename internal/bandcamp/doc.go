// Package bandcamp reads album metadata from Bandcamp pages.
//
// The Parser extracts the embedded album data of an album or track page
// and exposes it as records and shared fields ready for merging:
//
//	album, err := bandcamp.NewParser().ParseAlbumPage(page)
//	records, shared := album.Records(), album.Shared()
//
// Discography lists the albums of an artist's music page so a whole
// discography can be fetched.
package bandcamp
