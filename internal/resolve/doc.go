// Package resolve finalizes matching results for one collection.
//
// Finalize folds files reused from a previous fetch into the assignments,
// separates duplicate files from truly unmatched ones, and turns leftovers
// into warnings:
//
//	res := matcher.Resolve(ctx, records, files)
//	opts := resolve.DefaultOptions()
//	opts.Strict = true
//	result, err := resolve.Finalize(res, opts)
//	fmt.Printf("%+v\n", result.Summary())
//
// In strict mode, ambiguous matches are returned as a joined error of
// *model.AmbiguousMatchError values. The Result is returned either way so a
// summary can always be shown.
package resolve
