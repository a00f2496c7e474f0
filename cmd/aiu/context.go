package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/handiism/audio-info-updater/internal/config"
	"github.com/handiism/audio-info-updater/internal/logging"
	"github.com/handiism/audio-info-updater/internal/model"
	"github.com/handiism/audio-info-updater/internal/report"
	"github.com/handiism/audio-info-updater/internal/updater"
)

// globalFlags are shared by every command.
type globalFlags struct {
	config    string
	quiet     bool
	warn      bool
	verbose   bool
	debug     bool
	logFormat string
}

// level returns the most verbose log level requested.
func (g *globalFlags) level() string {
	switch {
	case g.debug:
		return "debug"
	case g.verbose:
		return "info"
	case g.warn:
		return "warn"
	case g.quiet:
		return "error"
	}
	return "warn"
}

// runFlags control what is written once a collection is resolved.
type runFlags struct {
	dry              bool
	backup           bool
	renameTitle      bool
	prefixTrack      bool
	renameFormat     string
	noRename         bool
	noUpdate         bool
	noOutput         bool
	noResult         bool
	output           string
	format           string
	stopwords        string
	exceptions       string
	strict           bool
	noBeautify       bool
	deleteDuplicates bool
	playlist         bool
	details          bool
	report           string
}

// literalFlags are field values applied to every record.
type literalFlags struct {
	title         string
	track         string
	year          string
	duration      string
	genre         string
	artist        string
	album         string
	albumArtist   string
	noMatchArtist bool
}

type commandContext struct {
	global *globalFlags

	settingsOnce sync.Once
	settings     *config.Settings
	settingsErr  error
}

func newCommandContext(global *globalFlags) *commandContext {
	return &commandContext{global: global}
}

func (c *commandContext) ensureSettings() (*config.Settings, error) {
	c.settingsOnce.Do(func() {
		settings, err := config.Load(strings.TrimSpace(c.global.config))
		if err != nil {
			c.settingsErr = &model.ConfigurationError{Reason: "cannot load settings", Err: err}
			return
		}
		c.settings = settings
	})
	return c.settings, c.settingsErr
}

// logContext installs the logger selected by the global flags.
func (c *commandContext) logContext(ctx context.Context) context.Context {
	logger := logging.New(logging.Config{Level: c.global.level(), Format: c.global.logFormat})
	logging.SetDefault(logger)
	ctx = logging.WithLogger(ctx, &logger)
	return logging.WithRunID(ctx, uuid.NewString())
}

// apply copies the run flags over the loaded settings.
func (f *runFlags) apply(s *config.Settings) {
	if f.dry {
		s.DryRun = true
	}
	if f.backup {
		s.Backup = true
	}
	switch {
	case f.renameFormat != "":
		s.Rename = true
		s.FileNameFormat = f.renameFormat
	case f.renameTitle && f.prefixTrack:
		s.Rename = true
		s.FileNameFormat = "{tracknum} {title}"
	case f.renameTitle:
		s.Rename = true
		s.FileNameFormat = "{title}"
	}
	if f.noRename {
		s.Rename = false
	}
	if f.noUpdate {
		s.ModifyTags = false
		s.SaveCoverArtInTags = false
	}
	if f.output != "" {
		s.OutputFile = f.output
	}
	if f.format != "" {
		s.OutputFormat = f.format
	}
	if f.noOutput {
		s.OutputFile = ""
	}
	if f.stopwords != "" {
		s.StopwordsFile = f.stopwords
	}
	if f.exceptions != "" {
		s.ExceptionsFile = f.exceptions
	}
	if f.strict {
		s.Strict = true
	}
	if f.noBeautify {
		s.Beautify = false
	}
	if f.deleteDuplicates {
		s.DetectDuplicates = true
		s.DeleteDuplicates = true
	}
	if f.playlist {
		s.CreatePlaylist = true
	}
}

// record converts the literal flags into a record. Invalid numbers and
// durations are usage errors.
func (l *literalFlags) record() (model.RawRecord, error) {
	var r model.RawRecord
	values := []struct {
		field model.Field
		value string
	}{
		{model.FieldTitle, l.title},
		{model.FieldTrack, l.track},
		{model.FieldYear, l.year},
		{model.FieldDuration, l.duration},
		{model.FieldGenre, l.genre},
		{model.FieldArtist, l.artist},
		{model.FieldAlbum, l.album},
		{model.FieldAlbumArtist, l.albumArtist},
	}
	for _, v := range values {
		if strings.TrimSpace(v.value) == "" {
			continue
		}
		if err := r.Set(v.field, v.value); err != nil {
			return r, &usageError{err: err}
		}
	}
	return r, nil
}

// execute runs every collection and prints the report.
func (c *commandContext) execute(
	ctx context.Context,
	cmd *cobra.Command,
	settings *config.Settings,
	literals model.RawRecord,
	collections []*model.Collection,
	fetcher updater.Fetcher,
	flags *runFlags,
) error {
	wordlists, err := config.LoadWordlists(settings)
	if err != nil {
		return err
	}
	pipeline, err := updater.NewPipeline(settings, wordlists, literals)
	if err != nil {
		return err
	}

	runner := updater.NewRunner(pipeline, fetcher, settings.MaxConcurrentCollections)
	outcomes, runErr := runner.Run(ctx, collections)

	entries := report.FromOutcomes(logging.RunID(ctx), outcomes)
	if err := printReport(cmd.OutOrStdout(), entries, outcomes, flags); err != nil {
		return err
	}
	return runErr
}

func printReport(out io.Writer, entries []report.Entry, outcomes []updater.Outcome, flags *runFlags) error {
	if !flags.noResult {
		fmt.Fprintln(out, report.Summary(entries...))
		if flags.details {
			for _, o := range outcomes {
				if o.Result == nil {
					continue
				}
				fmt.Fprintf(out, "\n%s\n%s\n", o.Collection.Name, report.Details(o.Result))
			}
		}
	}

	switch flags.report {
	case "":
		return nil
	case "-":
		return report.YAML(out, entries...)
	default:
		f, err := os.Create(flags.report)
		if err != nil {
			return fmt.Errorf("failed to create report: %w", err)
		}
		if err := report.YAML(f, entries...); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}
}
