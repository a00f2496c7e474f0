// Package parser reads song metadata files and writes the applied
// configuration back out.
//
// Supported layouts are CSV with a header row, tab-aligned lines
// ("1. Title    3:45"), line lists of track, title and duration, and
// JSON or YAML lists of mappings. FormatAny tries each in turn.
package parser
