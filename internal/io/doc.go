// Package ioutils provides the file system side of updating a collection.
//
// # Discovery
//
// FindAudioFiles lists the audio files of a directory. LookForDefaultFile
// finds the conventional companion files next to them:
//
//	info, _ := ioutils.LookForDefaultFile(dir, ioutils.InfoFileNames, parser.AllExtensions())
//	cover, _ := ioutils.LookForDefaultFile(dir, ioutils.CoverFileNames, ioutils.ImageExtensions)
//
// # File Operations
//
// Backup copies files into a backup directory before they are modified.
// RenameFile moves a file to a sanitized name in the same directory.
//
// # Image Processing
//
// The ImageService prepares cover art:
//
//	svc := ioutils.NewImageService()
//	data, err := svc.LoadCover(ctx, cover, ioutils.CoverOptions{Resize: true, MaxSize: 500})
package ioutils
