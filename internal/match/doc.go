// Package match pairs resolved records with candidate audio files.
//
// Matching runs as a cascade. Records naming their file are bound first,
// then each pass tries, in order:
//
//  1. Cardinality: one open file and one open record are paired (forced).
//  2. Pattern: a record rendered through a naming template equals a file
//     name, ignoring case and illegal characters (exact).
//  3. Tags: the tags already embedded in a file are similar enough to a
//     record (heuristic, optional).
//  4. Words: the file name shares distinctive tokens with a title
//     (heuristic, optional).
//
// A pass commits what it can and the cascade restarts on the smaller pool.
// Ties are never guessed; files that tie between records are reported as
// *model.AmbiguousMatchError:
//
//	m := match.New(match.DefaultOptions())
//	res := m.Resolve(ctx, records, files)
//	for _, a := range res.Assignments {
//	    fmt.Println(a.File.Name(), "->", a.Record.Title, a.Confidence)
//	}
package match
