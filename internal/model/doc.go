// Package model defines the data structures shared by every stage of
// metadata reconciliation.
//
// # Records
//
// RawRecord is one metadata entry as parsed from a source; SharedFields
// carries values that apply to a whole collection; Record is the merged
// result, one per song:
//
//	raw := model.RawRecord{Track: 1, Title: "Come Together"}
//	rec := model.NewRecord(0, raw)
//	fmt.Println(rec.Label()) // "01. Come Together"
//
// # Candidate Files
//
// CandidateFile is an audio file on disk or a placeholder for a pending
// download, with its file name already tokenized:
//
//	f := model.NewCandidateFile("/music/01 - Come Together.mp3")
//	fmt.Println(f.Tokens) // [01 come together]
//
// # Assignments
//
// Assignment is the terminal pairing of one file to one record, with a
// Confidence of exact, heuristic or forced.
//
// # Naming Templates
//
// Template renders file names from record fields:
//
//	name, ok := model.Template("{track:02} - {title}").Render(raw)
//
// Available placeholders: {track}, {track:02}, {tracknum}, {title}, {artist},
// {album}, {album_artist}, {year}, {genre}
//
// # Errors
//
// ConfigurationError, AmbiguousMatchError, UnmatchedItemWarning and
// PartialFetchError form the error taxonomy used across packages.
package model
