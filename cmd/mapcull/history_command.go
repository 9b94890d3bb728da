package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"mapcull/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect saved analyses",
	}
	historyCmd.AddCommand(newHistoryListCommand(ctx))
	historyCmd.AddCommand(newHistoryShowCommand(ctx))
	return historyCmd
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent analyses",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openHistory()
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, runs)
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No saved analyses.")
				return nil
			}
			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					shortID(run.ID),
					humanize.Time(run.CreatedAt),
					sourceLabel(run.Source, run.LibraryDir),
					fmt.Sprintf("%d", run.RecordCount),
					fmt.Sprintf("%d", run.ClusterCount),
					fmt.Sprintf("%d", run.TotalDuplicates),
					yesNo(run.PruneCount > 0),
				})
			}
			fmt.Fprintln(out, renderTable(out,
				[]string{"ID", "When", "Source", "Maps", "Clusters", "Redundant", "Pruned"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of analyses to list (0 for all)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show RUN_ID",
		Short: "Show a saved analysis and its prune log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openHistory()
			if err != nil {
				return err
			}
			defer store.Close()

			run, err := store.GetRun(cmd.Context(), strings.TrimSpace(args[0]))
			if err != nil {
				return err
			}
			entries, err := store.PruneEntries(cmd.Context(), run.ID)
			if err != nil {
				return err
			}

			if jsonOutput {
				return writeJSON(cmd, struct {
					*history.Run
					Pruned []history.PruneEntry `json:"pruned"`
				}{Run: run, Pruned: entries})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Analysed %s from %s\n\n", humanize.Time(run.CreatedAt), sourceLabel(run.Source, run.LibraryDir))
			printRun(cmd, run)
			if len(entries) > 0 {
				fmt.Fprintln(out)
				for _, line := range renderSectionHeader("Pruned", shouldColorize(out)) {
					fmt.Fprintln(out, line)
				}
				rows := make([][]string, 0, len(entries))
				for _, entry := range entries {
					rows = append(rows, []string{string(entry.Action), entry.Path, humanize.Bytes(uint64(max(entry.Bytes, 0)))})
				}
				fmt.Fprintln(out, renderTable(out, []string{"Action", "Path", "Size"}, rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight}))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func sourceLabel(source history.Source, dir string) string {
	if source == history.SourceLibrary && dir != "" {
		return dir
	}
	return string(source)
}
