package updater

import (
	"fmt"
	"os"
	"path/filepath"

	ioutils "github.com/handiism/audio-info-updater/internal/io"
	"github.com/handiism/audio-info-updater/internal/merge"
	"github.com/handiism/audio-info-updater/internal/model"
	"github.com/handiism/audio-info-updater/internal/parser"
)

// Sources names the metadata files of a local collection. Empty paths are
// looked up in the collection directory under their default names.
type Sources struct {
	// InfoFile holds one entry per song.
	InfoFile   string
	InfoFormat parser.Format

	// SharedFile holds a single entry applying to every song.
	SharedFile   string
	SharedFormat parser.Format

	// CoverFile is the image embedded when no record names its own.
	CoverFile string

	// NoDefaults disables the lookup of default file names.
	NoDefaults bool
}

// Discover builds the collection for a directory of audio files, or for a
// single audio file and the directory holding it.
//
// Unreadable or unparsable metadata files are reported as a
// *model.ConfigurationError, since nothing can be matched reliably
// without them.
func Discover(path string, src Sources) (*model.Collection, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, model.NewConfigurationError("cannot read %s: %v", path, err)
	}
	dir := path
	if !info.IsDir() {
		dir = filepath.Dir(path)
	}

	paths, err := ioutils.FindAudioFiles(path)
	if err != nil {
		return nil, &model.ConfigurationError{Reason: "cannot list audio files", Err: err}
	}

	c := &model.Collection{
		Name: filepath.Base(dir),
		Dir:  dir,
	}
	for _, p := range paths {
		f := model.NewCandidateFile(p)
		if size, err := ioutils.FileSize(p); err == nil {
			f.Size = size
		}
		c.Files = append(c.Files, f)
	}

	infoFile, err := src.lookup(dir, src.InfoFile, ioutils.InfoFileNames, parser.AllExtensions())
	if err != nil {
		return nil, err
	}
	if infoFile != "" {
		records, err := parser.Parse(infoFile, src.InfoFormat)
		if err != nil {
			return nil, &model.ConfigurationError{Reason: fmt.Sprintf("cannot parse %s", filepath.Base(infoFile)), Err: err}
		}
		c.Records = records
		c.Source = infoFile
	}

	sharedFile, err := src.lookup(dir, src.SharedFile, ioutils.SharedFileNames, parser.AllExtensions())
	if err != nil {
		return nil, err
	}
	if sharedFile != "" {
		records, err := parser.Parse(sharedFile, src.SharedFormat)
		if err != nil {
			return nil, &model.ConfigurationError{Reason: fmt.Sprintf("cannot parse %s", filepath.Base(sharedFile)), Err: err}
		}
		shared, err := merge.Shared(records)
		if err != nil {
			return nil, err
		}
		c.Shared = shared
		if c.Source == "" {
			c.Source = sharedFile
		}
	}

	cover, err := src.lookup(dir, src.CoverFile, ioutils.CoverFileNames, ioutils.ImageExtensions)
	if err != nil {
		return nil, err
	}
	c.CoverPath = cover

	return c, nil
}

// lookup returns the explicit path when given, the default file found in
// dir otherwise, or "" when there is none.
func (s Sources) lookup(dir, explicit string, names, extensions []string) (string, error) {
	if explicit != "" {
		if !filepath.IsAbs(explicit) && !ioutils.Exists(explicit) {
			explicit = filepath.Join(dir, explicit)
		}
		if !ioutils.Exists(explicit) {
			return "", model.NewConfigurationError("file %s does not exist", explicit)
		}
		return explicit, nil
	}
	if s.NoDefaults {
		return "", nil
	}
	found, err := ioutils.LookForDefaultFile(dir, names, extensions)
	if err != nil {
		return "", &model.ConfigurationError{Reason: "cannot list " + dir, Err: err}
	}
	return found, nil
}
