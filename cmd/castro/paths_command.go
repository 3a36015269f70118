package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"castro/internal/paths"
)

func newPathsCommand(ctx *commandContext) *cobra.Command {
	var recFlags recordingFlags

	cmd := &cobra.Command{
		Use:   "paths",
		Short: "Show the artifact paths for the configured session",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := recFlags.apply(cmd, cfg); err != nil {
				return err
			}
			set := paths.Resolve(cfg.Recording.Filename, cfg.Recording.DataDir)
			rows := [][]string{
				{"Data directory", set.DataDir},
				{"Output", set.Output},
				{"Working", set.Working},
				{"Cuepoints", set.Cuepoints},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]column{{Header: "Artifact"}, {Header: "Path"}}, rows))
			return nil
		},
	}
	recFlags.register(cmd)
	return cmd
}
