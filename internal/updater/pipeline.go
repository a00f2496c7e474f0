package updater

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/handiism/audio-info-updater/internal/audio"
	"github.com/handiism/audio-info-updater/internal/config"
	ioutils "github.com/handiism/audio-info-updater/internal/io"
	"github.com/handiism/audio-info-updater/internal/logging"
	"github.com/handiism/audio-info-updater/internal/match"
	"github.com/handiism/audio-info-updater/internal/merge"
	"github.com/handiism/audio-info-updater/internal/model"
	"github.com/handiism/audio-info-updater/internal/normalize"
	"github.com/handiism/audio-info-updater/internal/parser"
	"github.com/handiism/audio-info-updater/internal/resolve"
)

// Pipeline resolves and applies the metadata of one collection at a time.
// It holds no per-collection state and may be shared by concurrent runs.
type Pipeline struct {
	settings   *config.Settings
	literals   model.RawRecord
	mergeOpts  merge.Options
	merger     *merge.Merger
	beautifier *normalize.Beautifier
	matcher    *match.Matcher
	finalize   resolve.Options

	tagger   *audio.Tagger
	playlist *audio.PlaylistCreator
	images   *ioutils.ImageService
}

// NewPipeline builds a pipeline from settings. Literals are values given
// on the command line; they win over every other source.
//
// Unknown field names in settings are reported as a *model.ConfigurationError.
func NewPipeline(settings *config.Settings, wordlists *config.Wordlists, literals model.RawRecord) (*Pipeline, error) {
	mergeOpts, err := MergeOptions(settings)
	if err != nil {
		return nil, err
	}
	matchOpts, err := MatchOptions(settings, wordlists)
	if err != nil {
		return nil, err
	}

	tagCfg := audio.DefaultTagConfig()
	tagCfg.ModifyTags = settings.ModifyTags
	tagCfg.Overwrite = settings.OverwriteTags

	return &Pipeline{
		settings:   settings,
		literals:   literals,
		mergeOpts:  mergeOpts,
		merger:     merge.New(mergeOpts),
		beautifier: normalize.NewBeautifier(wordlists.RenameStopwords, wordlists.Exceptions),
		matcher:    match.New(matchOpts),
		finalize: resolve.Options{
			Strict:           settings.Strict,
			DetectDuplicates: settings.DetectDuplicates,
			NameThreshold:    resolve.DefaultOptions().NameThreshold,
			SizeThreshold:    resolve.DefaultOptions().SizeThreshold,
		},
		tagger:   audio.NewTagger(tagCfg),
		playlist: audio.NewPlaylistCreator(settings.ToPlaylistFormat(), settings.M3UExtended),
		images:   ioutils.NewImageService(),
	}, nil
}

// MergeOptions converts the merging settings.
func MergeOptions(settings *config.Settings) (merge.Options, error) {
	opts := merge.DefaultOptions()
	opts.MatchArtist = settings.MatchArtist

	for _, name := range settings.PreferShared {
		fields, err := merge.ParseFamily(name)
		if err != nil {
			return opts, err
		}
		opts.SetFamily(fields, merge.PreferShared)
	}

	if settings.RequiredFields != nil {
		fields, err := config.Fields(settings.RequiredFields)
		if err != nil {
			return opts, err
		}
		opts.Required = make(map[model.Field]bool, len(fields))
		for _, f := range fields {
			opts.Required[f] = true
		}
	}
	return opts, nil
}

// MatchOptions converts the matching settings.
func MatchOptions(settings *config.Settings, wordlists *config.Wordlists) (match.Options, error) {
	opts := match.DefaultOptions()
	if len(settings.MatchTemplates) > 0 {
		opts.Templates = settings.Templates()
	}
	opts.UseTagMatch = settings.UseTagMatch
	opts.UseWordMatch = settings.UseWordMatch
	opts.TagThreshold = settings.TagMatchThreshold
	opts.TagTieMargin = settings.TagMatchTie
	opts.MinOverlap = settings.WordMatchOverlap
	opts.TieMargin = settings.WordMatchTie
	opts.Stopwords = wordlists.MatchStopwords

	if len(settings.TagMatchFields) > 0 {
		fields, err := config.Fields(settings.TagMatchFields)
		if err != nil {
			return opts, err
		}
		opts.TagFields = fields
	}
	return opts, nil
}

// Resolve runs merge, beautification, tag reading, matching and
// finalization for c. Files are only read, never written.
//
// A *model.ConfigurationError aborts before matching. In strict mode the
// ambiguities are returned as an error together with the Result.
func (p *Pipeline) Resolve(ctx context.Context, c *model.Collection) (*resolve.Result, error) {
	log := logging.FromContext(ctx)

	// Without per-song entries every file becomes a song, so copies of the
	// same file are set aside first.
	files := c.Files
	var duplicates []resolve.Duplicate
	if len(c.Records) == 0 && p.finalize.DetectDuplicates {
		files, duplicates = resolve.FindDuplicates(c.Files, p.finalize)
	}

	records, err := p.merger.Merge(c.Records, c.Shared, p.literals, model.Paths(files))
	if err != nil {
		return nil, err
	}
	log.Debug().
		Int("records", len(records)).
		Int("files", len(files)).
		Str("precedence", p.mergeOpts.Describe()).
		Msg("Merged metadata")

	if p.settings.Beautify {
		records = p.beautifier.Records(records)
	}

	if p.settings.UseTagMatch {
		p.readTags(ctx, files)
	}

	resolution := p.matcher.Resolve(ctx, records, files)

	result, err := resolve.Finalize(resolution, p.finalize)
	result.Duplicates = append(result.Duplicates, duplicates...)
	summary := result.Summary()
	log.Info().
		Int("assigned", summary.Assigned).
		Int("unmatched_files", summary.UnmatchedFiles).
		Int("unmatched_records", summary.UnmatchedRecords).
		Int("ambiguous", summary.Ambiguous).
		Int("cache_hits", summary.CacheHits).
		Int("duplicates", summary.Duplicates).
		Msg("Resolved collection")
	for _, w := range result.Warnings {
		log.Warn().Msg(w.Error())
	}
	return result, err
}

// readTags loads the embedded tags of files on disk that have none yet.
func (p *Pipeline) readTags(ctx context.Context, files []*model.CandidateFile) {
	log := logging.FromContext(ctx)
	for _, f := range files {
		if f.Placeholder || f.Tags != nil {
			continue
		}
		tags, err := audio.ReadTags(ctx, f.Path)
		if err != nil {
			log.Debug().Err(err).Str("file", f.Name()).Msg("Could not read existing tags")
			continue
		}
		f.Tags = tags
		if f.Duration.IsZero() {
			f.Duration = tags.Duration
		}
	}
}

// Applied describes the changes made by Apply.
type Applied struct {
	// Backups are the copies made before any file was modified.
	Backups []string

	// Tagged lists the files whose tags were written.
	Tagged []string

	// Renamed maps old paths to new paths.
	Renamed map[string]string

	// Deleted lists removed duplicate files.
	Deleted []string

	Playlist string
	Output   string

	// Warnings are non-fatal problems, such as fields a container cannot hold.
	Warnings []string
}

// Apply writes the result of Resolve: backups, tags, renames, duplicate
// removal, playlist and output file, in that order. With DryRun nothing
// is written and the planned changes are logged instead.
//
// Errors on single files are collected as warnings; the returned error
// reports the first failure that prevents further changes.
func (p *Pipeline) Apply(ctx context.Context, c *model.Collection, result *resolve.Result) (*Applied, error) {
	log := logging.FromContext(ctx)
	applied := &Applied{Renamed: map[string]string{}}

	if p.settings.DryRun {
		p.plan(ctx, c, result)
		return applied, nil
	}

	if p.settings.Backup {
		paths := make([]string, 0, len(result.Assignments))
		for _, a := range result.Assignments {
			if !a.File.Placeholder {
				paths = append(paths, a.File.Path)
			}
		}
		backups, err := ioutils.Backup(ctx, filepath.Join(c.Dir, ioutils.BackupDirName), paths)
		applied.Backups = backups
		if err != nil {
			return applied, err
		}
	}

	if p.settings.ModifyTags || p.settings.SaveCoverArtInTags {
		artwork := p.artwork(ctx, c)
		for _, a := range result.Assignments {
			if err := ctx.Err(); err != nil {
				return applied, err
			}
			if a.File.Placeholder {
				applied.Warnings = append(applied.Warnings, fmt.Sprintf("%s: not tagged, file was not fetched", a.File.Name()))
				continue
			}
			art := p.recordArtwork(ctx, c, a.Record, artwork)
			if !p.settings.ModifyTags && art == nil {
				continue
			}
			warnings, err := p.tagger.Apply(a, art)
			applied.Warnings = append(applied.Warnings, warnings...)
			if err != nil {
				log.Error().Err(err).Str("file", a.File.Name()).Msg("Failed to write tags")
				applied.Warnings = append(applied.Warnings, err.Error())
				continue
			}
			applied.Tagged = append(applied.Tagged, a.File.Path)
		}
	}

	if p.settings.Rename {
		for _, a := range result.Assignments {
			if a.File.Placeholder {
				continue
			}
			name, ok := p.fileName(a.Record)
			if !ok {
				applied.Warnings = append(applied.Warnings, fmt.Sprintf("%s: not renamed, %q needs fields the record lacks", a.File.Name(), p.settings.FileNameFormat))
				continue
			}
			old := a.File.Path
			renamed, err := ioutils.RenameFile(old, name)
			if err != nil {
				applied.Warnings = append(applied.Warnings, err.Error())
				continue
			}
			if renamed != old {
				a.File.Path = renamed
				applied.Renamed[old] = renamed
				log.Debug().Str("from", filepath.Base(old)).Str("to", filepath.Base(renamed)).Msg("Renamed file")
			}
		}
	}

	if p.settings.DeleteDuplicates {
		for _, d := range result.Duplicates {
			if err := os.Remove(d.File.Path); err != nil {
				applied.Warnings = append(applied.Warnings, fmt.Sprintf("failed to delete duplicate %s: %v", d.File.Name(), err))
				continue
			}
			applied.Deleted = append(applied.Deleted, d.File.Path)
		}
	}

	if p.settings.CreatePlaylist && len(result.Assignments) > 0 {
		path := p.playlistPath(c)
		content := p.playlist.CreatePlaylist(p.playlistName(c), sortedAssignments(result.Assignments))
		if err := ioutils.WriteFile(ctx, path, []byte(content)); err != nil {
			applied.Warnings = append(applied.Warnings, fmt.Sprintf("failed to write playlist: %v", err))
		} else {
			applied.Playlist = path
		}
	}

	if p.settings.OutputFile != "" {
		path, err := p.writeOutput(ctx, c, result)
		if err != nil {
			return applied, err
		}
		applied.Output = path
	}

	log.Info().
		Int("tagged", len(applied.Tagged)).
		Int("renamed", len(applied.Renamed)).
		Int("deleted", len(applied.Deleted)).
		Int("warnings", len(applied.Warnings)).
		Msg("Applied metadata")
	return applied, nil
}

// plan logs what Apply would change.
func (p *Pipeline) plan(ctx context.Context, c *model.Collection, result *resolve.Result) {
	log := logging.FromContext(ctx)
	for _, a := range sortedAssignments(result.Assignments) {
		ev := log.Info().
			Str("file", a.File.Name()).
			Str("title", a.Record.Title).
			Str("confidence", string(a.Confidence)).
			Str("stage", a.Stage)
		if p.settings.Rename {
			if name, ok := p.fileName(a.Record); ok {
				ev = ev.Str("rename", ioutils.SanitizeFileName(name)+filepath.Ext(a.File.Path))
			}
		}
		ev.Msg("Would update")
	}
	if p.settings.DeleteDuplicates {
		for _, d := range result.Duplicates {
			log.Info().Str("file", d.File.Name()).Str("original", d.Original.Name()).Msg("Would delete duplicate")
		}
	}
	if p.settings.CreatePlaylist {
		log.Info().Str("path", p.playlistPath(c)).Msg("Would write playlist")
	}
	if p.settings.OutputFile != "" {
		log.Info().Str("path", p.outputPath(c)).Msg("Would write output file")
	}
}

func (p *Pipeline) coverOptions() ioutils.CoverOptions {
	return ioutils.CoverOptions{
		Resize:  p.settings.CoverArtInTagsResize,
		MaxSize: p.settings.CoverArtInTagsMaxSize,
		ToJPEG:  p.settings.ConvertCoverArtToJPG,
	}
}

// artwork returns the collection cover prepared for embedding, nil when
// covers are not embedded or none is available.
func (p *Pipeline) artwork(ctx context.Context, c *model.Collection) []byte {
	if !p.settings.SaveCoverArtInTags {
		return nil
	}
	log := logging.FromContext(ctx)

	var data []byte
	var err error
	switch {
	case c.Artwork != nil:
		data, err = p.images.Prepare(ctx, c.Artwork, p.coverOptions())
	case c.CoverPath != "":
		data, err = p.images.LoadCover(ctx, c.CoverPath, p.coverOptions())
	default:
		return nil
	}
	if err != nil {
		log.Warn().Err(err).Msg("Could not prepare cover art")
		return nil
	}
	return data
}

// recordArtwork prefers a cover named by the record itself.
func (p *Pipeline) recordArtwork(ctx context.Context, c *model.Collection, rec model.Record, fallback []byte) []byte {
	if !p.settings.SaveCoverArtInTags || rec.Cover == "" {
		return fallback
	}
	path := rec.Cover
	if !filepath.IsAbs(path) {
		path = filepath.Join(c.Dir, path)
	}
	data, err := p.images.LoadCover(ctx, path, p.coverOptions())
	if err != nil {
		logging.FromContext(ctx).Warn().Err(err).Str("cover", rec.Cover).Msg("Could not load record cover")
		return fallback
	}
	return data
}

// fileName renders the rename format for a record.
func (p *Pipeline) fileName(rec model.Record) (string, bool) {
	name, ok := model.Template(p.settings.FileNameFormat).Render(rec.RawRecord)
	if !ok || strings.TrimSpace(name) == "" {
		return "", false
	}
	return name, true
}

func (p *Pipeline) playlistName(c *model.Collection) string {
	if c.Shared.Album != "" {
		return c.Shared.Album
	}
	return c.Name
}

func (p *Pipeline) playlistPath(c *model.Collection) string {
	name, ok := model.Template(p.settings.PlaylistFileNameFormat).Render(c.Shared.RawRecord)
	if !ok || strings.TrimSpace(name) == "" {
		name = p.playlistName(c)
	}
	return filepath.Join(c.Dir, ioutils.SanitizeFileName(name)+p.settings.ToPlaylistFormat().Extension())
}

func (p *Pipeline) outputPath(c *model.Collection) string {
	if filepath.IsAbs(p.settings.OutputFile) {
		return p.settings.OutputFile
	}
	return filepath.Join(c.Dir, p.settings.OutputFile)
}

// writeOutput saves the applied records, each bound to its file name, so
// the same configuration can be replayed later.
func (p *Pipeline) writeOutput(ctx context.Context, c *model.Collection, result *resolve.Result) (string, error) {
	format, err := parser.ParseFormat(p.settings.OutputFormat)
	if err != nil {
		return "", model.NewConfigurationError("output format %q: %v", p.settings.OutputFormat, err)
	}
	if format == parser.FormatAny {
		format = parser.FormatOf(p.settings.OutputFile)
	}

	records := make([]model.RawRecord, 0, len(result.Assignments))
	for _, a := range result.Assignments {
		raw := a.Record.RawRecord
		raw.File = a.File.Name()
		records = append(records, raw)
	}

	path := p.outputPath(c)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create output file: %w", err)
	}
	werr := parser.Write(f, records, format)
	cerr := f.Close()
	if err := errors.Join(werr, cerr); err != nil {
		return "", fmt.Errorf("failed to write output file: %w", err)
	}
	logging.FromContext(ctx).Debug().Str("path", path).Str("format", string(format)).Msg("Wrote output file")
	return path, nil
}

// sortedAssignments orders assignments by record position.
func sortedAssignments(assignments []model.Assignment) []model.Assignment {
	out := slices.Clone(assignments)
	slices.SortStableFunc(out, func(a, b model.Assignment) int {
		return cmp.Compare(a.Record.Index, b.Record.Index)
	})
	return out
}
