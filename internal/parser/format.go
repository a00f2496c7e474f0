package parser

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format identifies a metadata file layout.
type Format string

const (
	FormatAny  Format = "any"
	FormatCSV  Format = "csv"
	FormatTab  Format = "tab"
	FormatList Format = "list"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Formats lists the concrete formats.
var Formats = []Format{FormatCSV, FormatJSON, FormatYAML, FormatList, FormatTab}

var extensions = map[Format][]string{
	FormatCSV:  {"csv"},
	FormatTab:  {"tsv", "tab", "cfg", "config", "meta", "info", "txt"},
	FormatList: {"ls", "lst", "list"},
	FormatJSON: {"json"},
	FormatYAML: {"yml", "yaml"},
}

// Extensions returns the file extensions of a format, without dots.
func (f Format) Extensions() []string {
	return extensions[f]
}

// ParseFormat resolves a format name or file extension.
func ParseFormat(name string) (Format, error) {
	name = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), "."))
	if name == "" || name == string(FormatAny) || name == "*" {
		return FormatAny, nil
	}
	for _, f := range Formats {
		if name == string(f) {
			return f, nil
		}
	}
	for _, f := range Formats {
		for _, ext := range extensions[f] {
			if name == ext {
				return f, nil
			}
		}
	}
	return "", fmt.Errorf("unknown metadata format %q", name)
}

// FormatOf guesses the format of a file from its extension.
// Unknown extensions yield FormatAny.
func FormatOf(path string) Format {
	ext := filepath.Ext(path)
	if ext == "" {
		return FormatAny
	}
	f, err := ParseFormat(ext)
	if err != nil {
		return FormatAny
	}
	return f
}

// AllExtensions lists every extension a parser is registered for.
func AllExtensions() []string {
	var out []string
	for _, f := range Formats {
		out = append(out, extensions[f]...)
	}
	return out
}
