// Package updater runs the whole update of a collection: optional fetch of
// remote files, metadata resolution and the changes made on disk.
//
// # Pipeline
//
// Pipeline.Resolve only reads files:
//
//  1. merge per-record, shared and literal values into one record per song
//  2. beautify free-text fields when Settings.Beautify is on
//  3. read tags already embedded in the files for the tag match stage
//  4. match records with files
//  5. finalize: fold cached files, report duplicates and unmatched items
//
// Pipeline.Apply then writes the result: backups, tags, renames, duplicate
// removal, playlist and output file. With Settings.DryRun the changes are
// only logged.
//
// # Discovery
//
// Discover builds a local collection from a directory. Metadata files that
// are not given explicitly are looked up by their default names:
//
//	info.*, config.*, meta.*            one entry per song
//	all.*, any.*, every.*               values shared by every song
//	cover.*, artwork.*, art.*, image.*  cover image
//
// # Runner
//
// Runner processes several collections at once, up to a limit. Collections
// share nothing but the read-only settings and word lists, and a failing
// collection does not stop the others:
//
//	runner := updater.NewRunner(pipeline, manager, settings.MaxConcurrentCollections)
//	outcomes, err := runner.Run(ctx, collections)
package updater
