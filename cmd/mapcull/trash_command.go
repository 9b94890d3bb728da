package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"mapcull/internal/prune"
)

func newTrashCommand(ctx *commandContext) *cobra.Command {
	trashCmd := &cobra.Command{
		Use:   "trash",
		Short: "Inspect and empty the prune trash",
	}
	trashCmd.AddCommand(newTrashListCommand(ctx))
	trashCmd.AddCommand(newTrashCleanCommand(ctx))
	return trashCmd
}

func newTrashListCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List trashed runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			runs, err := prune.ListTrash(cfg.Paths.TrashDir)
			if err != nil {
				return fmt.Errorf("list trash: %w", err)
			}
			if jsonOutput {
				return writeJSON(cmd, runs)
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "Trash is empty.")
				return nil
			}
			var total int64
			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				total += run.Bytes
				rows = append(rows, []string{
					run.RunID,
					humanize.Time(run.ModTime),
					fmt.Sprintf("%d", run.Maps),
					humanize.Bytes(uint64(max(run.Bytes, 0))),
				})
			}
			fmt.Fprintln(out, renderTable(out,
				[]string{"Run", "Trashed", "Maps", "Size"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight},
			))
			fmt.Fprintf(out, "Total: %s\n", humanize.Bytes(uint64(max(total, 0))))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newTrashCleanCommand(ctx *commandContext) *cobra.Command {
	var olderThanDays int
	var all bool

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Permanently delete old trashed runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			days := cfg.Prune.TrashRetentionDays
			if cmd.Flags().Changed("older-than-days") {
				days = olderThanDays
			}
			if !all && days <= 0 {
				return fmt.Errorf("trash retention is disabled; pass --older-than-days N or --all")
			}
			var maxAge time.Duration
			if !all {
				maxAge = time.Duration(days) * 24 * time.Hour
			}

			result := prune.CleanTrash(cmd.Context(), cfg.Paths.TrashDir, maxAge, logger)
			var reclaimed int64
			for _, run := range result.Removed {
				reclaimed += run.Bytes
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Removed %d trashed run(s), reclaimed %s\n", len(result.Removed), humanize.Bytes(uint64(max(reclaimed, 0))))
			if len(result.Errors) > 0 {
				first := result.Errors[0]
				return fmt.Errorf("%d trashed run(s) could not be removed; first: %s: %w", len(result.Errors), first.Path, first.Error)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&olderThanDays, "older-than-days", 0, "Remove runs trashed more than N days ago (default prune.trash_retention_days)")
	cmd.Flags().BoolVar(&all, "all", false, "Remove every trashed run")
	return cmd
}
