package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"castro/internal/deps"
	"castro/internal/preflight"
	"castro/internal/services"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check directories and external tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			lines := []string{renderSectionHeader("Configuration", colorize)}
			path := ctx.configPath
			if path == "" {
				path = "(defaults)"
			}
			lines = append(lines,
				renderStatusLine("Config", statusInfo, path, colorize),
				renderStatusLine("Probe backend", statusInfo, cfg.Tools.ProbeBackend, colorize),
				renderStatusLine("History", statusInfo, yesNo(cfg.History.Enabled), colorize),
				"",
			)

			lines = append(lines, renderSectionHeader("Filesystem", colorize))
			checks := preflight.RunAll(cfg)
			for _, check := range checks {
				lines = append(lines, renderStatusLine(check.Name, checkKind(check), check.Detail, colorize))
			}
			fmt.Fprintln(out, strings.Join(lines, "\n"))
			fmt.Fprintln(out)

			statuses := preflight.CheckSystemDeps(cfg)
			fmt.Fprintln(out, renderSectionHeader("External tools", colorize))
			fmt.Fprintln(out, renderDependencyTable(statuses))

			missing := deps.MissingRequired(statuses)
			failed := preflight.Failed(checks)
			if len(missing) == 0 && len(failed) == 0 {
				fmt.Fprintln(out, renderStatusLine("Result", statusOK, "ready to record", colorize))
				return nil
			}
			problems := append([]string{}, missing...)
			for _, f := range failed {
				problems = append(problems, f.Name)
			}
			fmt.Fprintln(out, renderStatusLine("Result", statusFail, strings.Join(problems, ", "), colorize))
			return services.Wrap(services.ErrConfiguration, "doctor", "", "problems found: "+strings.Join(problems, ", "), nil)
		},
	}
}

func renderDependencyTable(statuses []deps.Status) string {
	rows := make([][]string, 0, len(statuses))
	for _, status := range statuses {
		detail := status.Detail
		if detail == "" {
			detail = status.Description
		}
		rows = append(rows, []string{status.Name, status.Command, dependencyKind(status).label(), detail})
	}
	return renderTable([]column{
		{Header: "Tool"},
		{Header: "Command"},
		{Header: "Status"},
		{Header: "Detail", MaxWidth: 60},
	}, rows)
}
