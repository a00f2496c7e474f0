package main

import (
	"errors"
	"fmt"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the settings file",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := ctx.ensureSettings()
			if err != nil {
				return err
			}
			data, err := yaml.Marshal(settings)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	})

	var path string
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the effective settings to a file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				path = ctx.global.config
			}
			if path == "" {
				return &usageError{err: errors.New("--path or --config is required")}
			}
			settings, err := ctx.ensureSettings()
			if err != nil {
				return err
			}
			if err := settings.Save(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote settings to %s\n", path)
			return nil
		},
	}
	initCmd.Flags().StringVar(&path, "path", "", "Destination file (.yaml, .yml or .json)")
	cmd.AddCommand(initCmd)

	return cmd
}
