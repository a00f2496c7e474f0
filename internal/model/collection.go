package model

// Collection is one set of songs resolved together, typically an album
// directory or a fetched remote album. Collections share nothing and are
// processed independently.
type Collection struct {
	// Name identifies the collection in logs and reports.
	Name string

	// Dir is the directory holding the audio files.
	Dir string

	// Records are the per-song metadata entries in source order.
	Records []RawRecord

	// Shared holds the values applying to every song.
	Shared SharedFields

	// Files are the audio files or placeholders to pair with records.
	Files []*CandidateFile

	// CoverPath is a local cover image, empty when none.
	CoverPath string

	// Artwork is cover image data already in memory, such as a cover
	// fetched from a remote catalog. It takes precedence over CoverPath.
	Artwork []byte

	// Source is where the records came from: a metadata file or a URL.
	Source string
}

// Paths returns the paths of files.
func Paths(files []*CandidateFile) []string {
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.Path
	}
	return paths
}
