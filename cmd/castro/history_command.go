package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent recording sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openHistory()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if store == nil {
				fmt.Fprintln(out, "History is disabled (set [history] enabled = true)")
				return nil
			}
			defer store.Close()

			entries, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(out, "No recordings yet")
				return nil
			}

			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				detail := e.ErrorMessage
				if detail == "" {
					detail = e.OutputPath
				}
				rows = append(rows, []string{
					shortID(e.ID),
					e.StartedAt.Local().Format(time.DateTime),
					e.Target,
					string(e.Status),
					strconv.Itoa(e.DurationSeconds),
					detail,
				})
			}
			fmt.Fprintln(out, renderTable(historyColumns, rows))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of sessions to show (0 for all)")
	return cmd
}

var historyColumns = []column{
	{Header: "ID"},
	{Header: "Started"},
	{Header: "Target"},
	{Header: "Status"},
	{Header: "Seconds", Numeric: true},
	{Header: "Output / Error", MaxWidth: 60},
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
