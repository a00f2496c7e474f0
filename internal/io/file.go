package ioutils

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/handiism/audio-info-updater/internal/model"
)

// BackupDirName is the directory, under the collection directory, that
// receives copies of files before they are modified.
const BackupDirName = "backup"

// CopyFile copies a file from source to destination.
//
// The destination file is created with mode 0644 if it doesn't exist,
// or truncated if it does. The copy stops early when ctx is cancelled.
func CopyFile(ctx context.Context, src, dst string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	if _, err = io.Copy(destFile, readerWithContext{ctx: ctx, r: sourceFile}); err != nil {
		return err
	}
	return destFile.Close()
}

type readerWithContext struct {
	ctx context.Context
	r   io.Reader
}

func (r readerWithContext) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}

// Backup copies every path into dir, creating it if needed, and returns
// the backup locations in the same order.
func Backup(ctx context.Context, dir string, paths []string) ([]string, error) {
	if err := EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		dst := filepath.Join(dir, filepath.Base(p))
		if err := CopyFile(ctx, p, dst); err != nil {
			return out, fmt.Errorf("failed to back up %s: %w", filepath.Base(p), err)
		}
		out = append(out, dst)
	}
	return out, nil
}

// WriteFile writes data to a file with mode 0644, creating or truncating it.
func WriteFile(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// RenameFile moves src to dir/name, keeping the extension of src.
// It returns the new path, which equals src when the name is unchanged.
// An existing different file at the destination is an error.
func RenameFile(src, name string) (string, error) {
	dst := filepath.Join(filepath.Dir(src), SanitizeFileName(name)+filepath.Ext(src))
	if dst == src {
		return src, nil
	}
	if _, err := os.Stat(dst); err == nil {
		return src, fmt.Errorf("cannot rename %s: %s already exists", filepath.Base(src), filepath.Base(dst))
	}
	if err := os.Rename(src, dst); err != nil {
		return src, err
	}
	return dst, nil
}

// SanitizeFileName replaces characters that are invalid in file names
// on common file systems with underscores.
//
// Example:
//
//	SanitizeFileName("Song: Part 1/2")     // Returns "Song_ Part 1_2"
//	SanitizeFileName("Track...")           // Returns "Track"
//	SanitizeFileName("Name   with  spaces") // Returns "Name with spaces"
func SanitizeFileName(name string) string {
	return model.SanitizeFileName(name)
}

// EnsureDir creates a directory and all parent directories if they don't exist.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// FileSize returns the size of the file at path in bytes.
func FileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// Exists reports whether a regular file exists at path.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
