package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/handiism/audio-info-updater/internal/model"
	"github.com/handiism/audio-info-updater/internal/parser"
	"github.com/handiism/audio-info-updater/internal/updater"
)

const version = "0.1.0"

func newRootCommand() *cobra.Command {
	global := &globalFlags{}
	ctx := newCommandContext(global)

	var (
		run      runFlags
		literals literalFlags
		path     string
		file     string
		src      struct {
			info, all, parser, cover string
		}
	)

	rootCmd := &cobra.Command{
		Use:   "aiu [path]",
		Short: "Audio Info Updater",
		Long: `Match song metadata to audio files and update their tags.

Metadata is read from an info file holding one entry per song, a shared
file applying to every song and values given on the command line. Files
that are not given are looked up under the path by their default names.`,
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := ctx.ensureSettings()
			if err != nil {
				return err
			}
			run.apply(settings)
			if literals.noMatchArtist {
				settings.MatchArtist = false
			}

			target := "."
			switch {
			case len(args) == 1 && (path != "" || file != ""):
				return &usageError{err: errors.New("give the path either as argument or flag")}
			case len(args) == 1:
				target = args[0]
			case file != "":
				target = file
			case path != "":
				target = path
			}

			literal, err := literals.record()
			if err != nil {
				return err
			}
			format, err := parser.ParseFormat(src.parser)
			if err != nil {
				return &usageError{err: err}
			}

			c, err := updater.Discover(target, updater.Sources{
				InfoFile:     src.info,
				InfoFormat:   format,
				SharedFile:   src.all,
				SharedFormat: format,
				CoverFile:    src.cover,
			})
			if err != nil {
				return err
			}

			return ctx.execute(ctx.logContext(cmd.Context()), cmd, settings, literal, []*model.Collection{c}, nil, &run)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&global.config, "config", "", "Settings file (json or yaml)")
	pf.BoolVarP(&global.quiet, "quiet", "q", false, "Log errors only")
	pf.BoolVarP(&global.warn, "warn", "w", false, "Log warnings and errors")
	pf.BoolVarP(&global.verbose, "verbose", "v", false, "Log additional information")
	pf.BoolVarP(&global.debug, "debug", "d", false, "Log as much detail as possible")
	pf.StringVar(&global.logFormat, "log-format", "auto", "Log format: auto, console or json")

	f := rootCmd.Flags()
	f.StringVarP(&path, "path", "p", "", "Directory holding the audio and metadata files (default \".\")")
	f.StringVarP(&file, "file", "f", "", "Single audio file to update")
	rootCmd.MarkFlagsMutuallyExclusive("path", "file")

	f.StringVarP(&src.info, "info", "i", "", "Metadata file with one entry per song (default: info, config or meta)")
	f.StringVarP(&src.all, "all", "a", "", "Metadata file applied to every song (default: all, any or every)")
	f.StringVarP(&src.parser, "parser", "P", "any", "Parsing mode: any, csv, tab, list, json or yaml")
	f.StringVarP(&src.cover, "cover", "c", "", "Cover image (default: cover, artwork, art or image)")

	addRunFlags(rootCmd, &run)

	f.StringVarP(&literals.title, "title", "T", "", "Title applied to the matched files")
	f.StringVarP(&literals.track, "track", "N", "", "Track number applied to the matched files")
	f.StringVarP(&literals.year, "year", "Y", "", "Year applied to the matched files")
	f.StringVarP(&literals.duration, "duration", "D", "", "Duration applied to the matched files")
	f.StringVarP(&literals.genre, "genre", "G", "", "Genre applied to the matched files")
	f.StringVar(&literals.artist, "artist", "", "Artist applied to the matched files")
	f.StringVarP(&literals.album, "album", "A", "", "Album applied to the matched files")
	f.StringVar(&literals.albumArtist, "album-artist", "", "Album artist applied to the matched files (default: artist)")
	f.BoolVar(&literals.noMatchArtist, "no-match-artist", false, "Do not default the album artist to the artist")

	rootCmd.AddCommand(newFetchCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}

// addRunFlags registers the flags shared by the update and fetch commands.
func addRunFlags(cmd *cobra.Command, run *runFlags) {
	f := cmd.Flags()
	f.BoolVar(&run.dry, "dry", false, "Only report what would be changed")
	f.BoolVarP(&run.backup, "backup", "b", false, "Copy files to a backup directory before changing them")
	f.BoolVar(&run.renameTitle, "rename-title", false, "Rename matched files after their title")
	f.BoolVar(&run.prefixTrack, "prefix-track", false, "Prefix renamed files with the track number")
	f.StringVar(&run.renameFormat, "rename-format", "", "Template used to rename matched files, e.g. \"{track:02} - {title}\"")
	f.BoolVar(&run.noRename, "no-rename", false, "Never rename files")
	f.BoolVar(&run.noUpdate, "no-update", false, "Do not write tags")
	f.BoolVar(&run.noOutput, "no-output", false, "Do not write the output metadata file")
	f.BoolVar(&run.noResult, "no-result", false, "Do not print the result tables")
	f.StringVarP(&run.output, "output", "o", "", "Write the applied metadata to this file")
	f.StringVarP(&run.format, "format", "F", "", "Format of the output metadata file: yaml, json, csv or tab")
	f.StringVarP(&run.stopwords, "stopwords", "S", "", "Stopwords file used when beautifying names")
	f.StringVarP(&run.exceptions, "exceptions", "E", "", "Exceptions file used when beautifying names")
	f.BoolVar(&run.strict, "strict", false, "Fail when a file matches several records")
	f.BoolVar(&run.noBeautify, "no-beautify", false, "Keep names exactly as given")
	f.BoolVar(&run.deleteDuplicates, "delete-duplicates", false, "Delete files duplicating a matched file")
	f.BoolVar(&run.playlist, "playlist", false, "Create a playlist of the matched files")
	f.BoolVar(&run.details, "details", false, "Print one row per matched file")
	f.StringVar(&run.report, "report", "", "Write the result as YAML to this file, or - for stdout")
}
