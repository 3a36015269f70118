package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"castro/internal/cuepoint"
)

func newCuepointsCommand() *cobra.Command {
	var seconds int
	var output string

	cmd := &cobra.Command{
		Use:         "cuepoints",
		Short:       "Print the navigation cuepoint document for a duration",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(output)
			if target == "" || target == "-" {
				return cuepoint.Write(cmd.OutOrStdout(), seconds)
			}
			if err := cuepoint.WriteFile(target, seconds); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d cuepoints to %s\n", seconds, target)
			return nil
		},
	}
	cmd.Flags().IntVar(&seconds, "seconds", 0, "Duration in whole seconds")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of stdout")
	_ = cmd.MarkFlagRequired("seconds")
	return cmd
}
