// Package audio reads and writes the metadata embedded in audio files and
// generates playlists.
//
// # Tags
//
// ReadTags reads existing tags with audiometa. The Tagger writes a
// resolved record into an MP3 file as ID3v2 frames:
//
//	tagger := audio.NewTagger(audio.DefaultTagConfig())
//	warnings, err := tagger.Apply(assignment, coverBytes)
//
// Containers other than MP3 are not modified; each field that would have
// been written comes back as a warning.
//
// # Playlist Generation
//
//	creator := audio.NewPlaylistCreator(model.PlaylistFormatM3U, true) // extended M3U
//	content := creator.CreatePlaylist("Album", result.Assignments)
//
// Supported formats:
//   - M3U (with optional extended info)
//   - PLS
//   - WPL (Windows Media Player)
//   - ZPL (Zune Media Player)
package audio
