// Package normalize implements beautification of song metadata text.
//
// Beautification fixes whitespace and capitalization of titles, artists,
// albums and genres in a single pass:
//
//	lists, _ := config.LoadWordlists(settings)
//	b := normalize.NewBeautifier(lists.RenameStopwords, lists.Exceptions)
//	b.String("the beatles - live at the bbc") // "The Beatles - Live at the BBC"
//
// It runs once per record, right after merging, and never again during
// matching or tag writing.
package normalize
