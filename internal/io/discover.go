package ioutils

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// AudioExtensions lists the audio file extensions considered, without dots.
var AudioExtensions = []string{"mp3", "m4a", "m4b", "flac", "ogg", "opus", "wav"}

// ImageExtensions lists the cover image extensions considered, without dots.
var ImageExtensions = []string{"jpg", "jpeg", "png"}

// Default file base names looked up in a collection directory.
var (
	InfoFileNames   = []string{"info", "config", "meta"}
	SharedFileNames = []string{"all", "any", "every"}
	CoverFileNames  = []string{"cover", "artwork", "art", "image"}
)

func hasExtension(name string, extensions []string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	return ext != "" && slices.Contains(extensions, ext)
}

// FindAudioFiles lists the audio files directly inside dir, sorted by name.
// A path to a single audio file yields just that file.
func FindAudioFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		if !hasExtension(path, AudioExtensions) {
			return nil, fmt.Errorf("%s is not an audio file", filepath.Base(path))
		}
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.Type().IsRegular() && hasExtension(e.Name(), AudioExtensions) {
			files = append(files, filepath.Join(path, e.Name()))
		}
	}
	slices.Sort(files)
	return files, nil
}

// LookForDefaultFile returns the first file in dir, in name order, whose
// base name is one of names and whose extension is one of extensions.
// Base names compare case-insensitively. It returns "" when none matches.
func LookForDefaultFile(dir string, names, extensions []string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	for _, e := range entries {
		if !e.Type().IsRegular() || !hasExtension(e.Name(), extensions) {
			continue
		}
		base := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		if slices.ContainsFunc(names, func(n string) bool { return strings.EqualFold(n, base) }) {
			return filepath.Join(dir, e.Name()), nil
		}
	}
	return "", nil
}
