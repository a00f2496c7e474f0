// Package config provides configuration management for audio-info-updater.
//
// This package handles:
//   - Loading settings from JSON or YAML files with AIU_* environment overrides
//   - Default configuration values
//   - Loading the stopword and exception word lists
//
// # Default Settings
//
//	settings := config.DefaultSettings()
//	// Beautification on, tag and word matching on
//	// Title required on every record
//
// # Loading from File
//
//	settings, err := config.Load("/path/to/aiu.yaml")
//	if err != nil {
//	    // malformed file
//	}
//
// A missing file yields the defaults. Any key can be overridden from the
// environment, e.g. AIU_USE_WORD_MATCH=false.
//
// # Word Lists
//
// Word lists are plain text files with one word per line; blank lines and
// lines starting with '#' are ignored. Built-in lists are used when no file
// is configured:
//
//	lists, err := config.LoadWordlists(settings)
//	lists.RenameStopwords.Contains("The") // true
//	lists.Exceptions.Lookup("dj")         // "DJ", true
package config
