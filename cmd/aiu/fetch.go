package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/handiism/audio-info-updater/internal/download"
	"github.com/handiism/audio-info-updater/internal/model"
)

func newFetchCommand(ctx *commandContext) *cobra.Command {
	var (
		run         runFlags
		discography bool
		downloads   string
	)

	cmd := &cobra.Command{
		Use:   "fetch URL...",
		Short: "Download Bandcamp albums and tag them",
		Long: `Download the tracks of Bandcamp albums, then match them with the album
metadata and tag them. Tracks already present in the target directory are
reused.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := ctx.ensureSettings()
			if err != nil {
				return err
			}
			run.apply(settings)
			if discography {
				settings.DownloadArtistDiscography = true
			}
			if downloads != "" {
				settings.DownloadsPath = downloads
			}

			out := cmd.ErrOrStderr()
			verbose := ctx.global.verbose || ctx.global.debug
			manager := download.NewManager(settings, func(event download.ProgressEvent) {
				if event.Level == download.LevelVerbose && !verbose {
					return
				}
				fmt.Fprintln(out, progressPrefix(event.Level)+event.Message)
			})

			runCtx := ctx.logContext(cmd.Context())
			collections, err := manager.Initialize(runCtx, strings.Join(args, "\n"))
			if err != nil {
				return err
			}
			return ctx.execute(runCtx, cmd, settings, model.RawRecord{}, collections, manager, &run)
		},
	}

	addRunFlags(cmd, &run)
	cmd.Flags().BoolVar(&discography, "discography", false, "Fetch every album of the artist")
	cmd.Flags().StringVar(&downloads, "downloads-path", "", "Target directory template, e.g. \"~/Music/{artist}/{album}\"")

	return cmd
}

func progressPrefix(level download.ProgressLevel) string {
	switch level {
	case download.LevelError:
		return "error: "
	case download.LevelWarning:
		return "warning: "
	case download.LevelSuccess:
		return "ok: "
	default:
		return ""
	}
}
