package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"mapcull/internal/history"
	"mapcull/internal/logging"
	"mapcull/internal/preflight"
	"mapcull/internal/prune"
	"mapcull/internal/textutil"
)

func newPruneCommand(ctx *commandContext) *cobra.Command {
	var confirm bool
	var mode string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "prune [RUN_ID]",
		Short: "Remove redundant maps found by a saved analysis",
		Long: "Remove every map a saved analysis did not recommend keeping.\n" +
			"Without --yes the command only reports what would be removed.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			store, err := ctx.openHistory()
			if err != nil {
				return err
			}
			defer store.Close()

			var run *history.Run
			if len(args) == 1 {
				run, err = store.GetRun(cmd.Context(), strings.TrimSpace(args[0]))
			} else {
				run, err = store.LatestRun(cmd.Context())
			}
			if errors.Is(err, history.ErrNotFound) && len(args) == 0 {
				return fmt.Errorf("no saved analysis; run `mapcull analyze` first")
			}
			if err != nil {
				return err
			}

			root := run.LibraryDir
			if root == "" {
				root = cfg.Paths.LibraryDir
			}
			selectedMode := strings.ToLower(strings.TrimSpace(mode))
			if selectedMode == "" {
				selectedMode = cfg.Prune.Mode
			}

			if confirm {
				checkCfg := *cfg
				checkCfg.Paths.LibraryDir = root
				checkCfg.Prune.Mode = selectedMode
				if failed := preflight.Failed(preflight.RunAll(&checkCfg)); len(failed) > 0 {
					return fmt.Errorf("preflight: %s: %s", failed[0].Name, failed[0].Detail)
				}
			}

			executor := prune.NewExecutor(logger)
			report, err := executor.Execute(cmd.Context(), run.Result, prune.Options{
				RunID:       run.ID,
				LibraryRoot: root,
				Mode:        selectedMode,
				TrashDir:    cfg.Paths.TrashDir,
				DryRun:      !confirm,
				LockTimeout: time.Duration(cfg.Prune.LockTimeoutSeconds) * time.Second,
			})
			if err != nil {
				if errors.Is(err, prune.ErrLocked) {
					return fmt.Errorf("%w; wait for the other prune to finish", err)
				}
				return err
			}

			if !report.DryRun {
				if err := store.RecordPrune(cmd.Context(), run.ID, report.Entries); err != nil {
					logging.ErrorWithContext(logger, "prune outcome not recorded", "prune_record_failed",
						logging.String(logging.FieldRunID, run.ID),
						logging.Error(err),
						logging.String(logging.FieldErrorHint, "check the history database at paths.data_dir"),
						logging.String(logging.FieldImpact, "history show will not list these removals"),
					)
					return err
				}
			}

			if jsonOutput {
				return writeJSON(cmd, report)
			}
			printPruneReport(cmd, report)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&confirm, "yes", "y", false, "Actually remove maps instead of reporting a dry run")
	cmd.Flags().StringVar(&mode, "mode", "", "Removal mode: trash or delete (default from config)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the prune report as JSON")
	return cmd
}

func printPruneReport(cmd *cobra.Command, report prune.Report) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)

	heading := "Prune " + shortID(report.RunID)
	if report.DryRun {
		heading += " (dry run)"
	}
	for _, line := range renderSectionHeader(heading, colorize) {
		fmt.Fprintln(out, line)
	}

	if len(report.Entries) == 0 {
		fmt.Fprintln(out, "Nothing to remove.")
		return
	}

	rows := make([][]string, 0, len(report.Entries))
	for _, entry := range report.Entries {
		note := entry.Error
		if note == "" {
			note = entry.Destination
		}
		rows = append(rows, []string{
			string(entry.Action),
			entry.Title,
			entry.Path,
			humanize.Bytes(uint64(max(entry.Bytes, 0))),
			note,
		})
	}
	fmt.Fprintln(out, renderTable(out,
		[]string{"Action", "Title", "Path", "Size", "Note"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
	))

	removedLabel := textutil.Ternary(report.DryRun, "Would remove", "Removed")
	reclaimedLabel := textutil.Ternary(report.DryRun, "Would reclaim", "Reclaimed")
	fmt.Fprintln(out, renderStatusLine("Mode", statusInfo, report.Mode, colorize))
	fmt.Fprintln(out, renderStatusLine(removedLabel, statusOK, fmt.Sprintf("%d", report.Removed), colorize))
	if report.Skipped > 0 {
		fmt.Fprintln(out, renderStatusLine("Skipped", statusWarn, fmt.Sprintf("%d", report.Skipped), colorize))
	}
	if report.Failed > 0 {
		fmt.Fprintln(out, renderStatusLine("Failed", statusError, fmt.Sprintf("%d", report.Failed), colorize))
	}
	fmt.Fprintln(out, renderStatusLine(reclaimedLabel, statusInfo, humanize.Bytes(uint64(max(report.ReclaimedBytes, 0))), colorize))
	if report.FreeBefore > 0 {
		free := humanize.Bytes(report.FreeBefore)
		if !report.DryRun && report.FreeAfter > 0 {
			free = fmt.Sprintf("%s -> %s", free, humanize.Bytes(report.FreeAfter))
		}
		fmt.Fprintln(out, renderStatusLine("Free space", statusInfo, free, colorize))
	}
	if report.DryRun && report.Removed > 0 {
		fmt.Fprintf(out, "\nRe-run with --yes to remove these maps.\n")
	}
}
