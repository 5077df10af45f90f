package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"ikit/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded uploads",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(cmd.Context(), func(store *history.Store) error {
				if store == nil {
					return errors.New("upload history is disabled (history.enabled = false)")
				}
				entries, err := store.Recent(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, entries)
				}
				out := cmd.OutOrStdout()
				if len(entries) == 0 {
					fmt.Fprintln(out, "No uploads recorded")
					return nil
				}
				colorize := shouldColorize(out)
				rows := make([][]string, 0, len(entries))
				for _, entry := range entries {
					detail := entry.URL
					if entry.Error != "" {
						detail = entry.Error
					}
					rows = append(rows, []string{
						strconv.FormatInt(entry.ID, 10),
						entry.StartedAt.Local().Format(time.DateTime),
						entry.FileName,
						outcomeLabel(entry.Outcome, colorize),
						formatDuration(entry.Duration),
						detail,
					})
				}
				fmt.Fprintln(out, renderTable([]column{
					{title: "ID", right: true},
					{title: "Started"},
					{title: "File"},
					{title: "Outcome"},
					{title: "Took", right: true},
					{title: "URL / Error"},
				}, rows))
				counts, err := store.Counts(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Total: %s\n", summaryLine(counts))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of uploads to show")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	cmd.AddCommand(newHistoryPruneCommand(ctx))
	return cmd
}

func newHistoryPruneCommand(ctx *commandContext) *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete uploads recorded before a cutoff",
		RunE: func(cmd *cobra.Command, args []string) error {
			if olderThan <= 0 {
				return errors.New("--older-than must be positive")
			}
			return ctx.withHistory(cmd.Context(), func(store *history.Store) error {
				if store == nil {
					return errors.New("upload history is disabled (history.enabled = false)")
				}
				removed, err := store.Prune(cmd.Context(), time.Now().Add(-olderThan))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d upload(s)\n", removed)
				return nil
			})
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "Remove entries older than this duration")
	return cmd
}
