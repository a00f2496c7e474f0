// Package merge combines metadata from several sources into one record per song.
//
// Three sources are merged field by field:
//   - literal values given on the command line, which always win
//   - per-record values, one entry per song
//   - shared values, given once for the whole collection
//
// Whether a per-record value beats a shared one is set per field with
// Options.Precedence. Required fields (title by default) must come from the
// records themselves and be distinct:
//
//	opts := merge.DefaultOptions()
//	opts.SetFamily(merge.FamilyArtist, merge.PreferShared)
//	records, err := merge.New(opts).Merge(raws, shared, literals, files)
//
// Inconsistent input is reported as a *model.ConfigurationError before any
// matching takes place.
package merge
