package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"castro/internal/logging"
	"castro/internal/paths"
	"castro/internal/pipeline"
	"castro/internal/services"
	"castro/internal/sessionlock"
)

func newProcessCommand(ctx *commandContext) *cobra.Command {
	var recFlags recordingFlags

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Post-process an existing capture in the data directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := recFlags.apply(cmd, cfg); err != nil {
				return err
			}
			logger, err := ctx.logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			lock, err := sessionlock.Acquire(cfg.Recording.DataDir)
			if err != nil {
				return err
			}
			defer func() {
				if err := lock.Release(); err != nil {
					logger.Warn("release session lock", logging.Error(err))
				}
			}()

			set := paths.Resolve(cfg.Recording.Filename, cfg.Recording.DataDir)
			if _, err := os.Stat(set.Output); err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					return services.Wrap(services.ErrFilesystem, "process", "", fmt.Sprintf("no capture at %s", set.Output), nil)
				}
				return services.Wrap(services.ErrFilesystem, "process", "stat", set.Output, err)
			}

			processor := pipeline.NewFromConfig(cfg, ctx.runner(cmd), logger)
			result, err := processor.Process(cmd.Context(), pipeline.Job{
				Paths:     set,
				Framerate: cfg.Recording.Framerate,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d seconds, %d cuepoints, transcoder %s)\n",
				set.Output, result.Duration, result.Cuepoints, result.Transcoder)
			return nil
		},
	}
	recFlags.register(cmd)
	return cmd
}
