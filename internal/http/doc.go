// Package http provides the HTTP client used to fetch remote catalog pages,
// audio files and cover art.
//
// # Basic Usage
//
//	client := http.NewClient(http.WithProxy(settings.ProxyType, settings.ProxyAddress, settings.ProxyPort))
//
//	html, err := client.GetString(ctx, "https://artist.bandcamp.com/album/name")
//
//	client.DownloadFile(ctx, mp3URL, "/path/to/file.mp3", func(written, total int64) {
//	    fmt.Printf("%.1f%%\n", float64(written)/float64(total)*100)
//	})
//
// Downloads land in a temporary file first and are renamed into place
// when complete.
package http
