// Package download turns Bandcamp album and artist pages into collections
// and fetches their tracks.
//
// # Manager
//
// The Manager works in two steps:
//
//  1. Initialize reads the album pages and returns one collection per
//     album, with records from the page and a placeholder file per track
//  2. Fetch downloads the cover and the tracks of one collection
//
// Placeholders carry the path the track will be saved to and the index of
// the record it belongs to, so a collection can be inspected before
// anything is written.
//
// # Basic Usage
//
//	manager := download.NewManager(settings, func(event download.ProgressEvent) {
//	    fmt.Println(event.Message)
//	})
//
//	collections, err := manager.Initialize(ctx, "https://artist.bandcamp.com/album/name")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, c := range collections {
//	    failures, err := manager.Fetch(ctx, c)
//	    ...
//	}
//
// # Cached Files
//
// A track is not downloaded again when a file of acceptable size already
// exists at its path, or when a file exists under a common alternate name
// such as "Artist - Title.mp3" or "01. Title.mp3". Such files are marked
// as cached.
//
// # Concurrency
//
// Tracks of a collection are fetched in parallel, limited by
// settings.MaxConcurrentTracksDownload.
//
// # Retry Logic
//
// Failed downloads are retried with exponential backoff, configurable via
// settings.DownloadMaxRetries, settings.DownloadRetryCooldown and
// settings.DownloadRetryExponent. A track that still fails is reported as
// a model.PartialFetchError without stopping the rest of the collection.
package download
