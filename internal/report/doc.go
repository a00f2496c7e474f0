// Package report renders the outcome of a run for people and for tools.
//
// Summary prints one table row per collection with the counts of
// assigned, unmatched and ambiguous items, and is produced even when some
// collections failed. Details lists every assignment of one collection
// with the stage that decided it. YAML dumps the same information in a
// machine-readable form.
package report
