package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mapcull/internal/config"
	"mapcull/internal/dedup"
	"mapcull/internal/history"
	"mapcull/internal/library"
	"mapcull/internal/logging"
)

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var manifestPath string
	var jsonOutput bool
	var noSave bool

	cmd := &cobra.Command{
		Use:   "analyze [DIR]",
		Short: "Find duplicate maps in a library folder or manifest",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if manifestPath != "" && len(args) > 0 {
				return fmt.Errorf("pass either a library directory or --manifest, not both")
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			cache, err := ctx.metadataCache()
			if err != nil {
				return err
			}

			run := &history.Run{}
			var records []dedup.Record
			if manifestPath != "" {
				path, err := config.ExpandPath(manifestPath)
				if err != nil {
					return fmt.Errorf("resolve manifest path: %w", err)
				}
				records, err = library.LoadManifest(path)
				if err != nil {
					return err
				}
				library.ApplyMetadata(records, cache)
				run.Source = history.SourceManifest
			} else {
				dir := cfg.Paths.LibraryDir
				if len(args) == 1 {
					dir, err = config.ExpandPath(args[0])
					if err != nil {
						return fmt.Errorf("resolve library path: %w", err)
					}
				}
				scanner := library.NewScanner(
					library.WithWorkers(cfg.Library.ScanWorkers),
					library.WithMetadata(cache),
					library.WithLogger(logger),
				)
				records, err = scanner.Scan(cmd.Context(), dir)
				if err != nil {
					return err
				}
				run.Source = history.SourceLibrary
				run.LibraryDir = dir
			}

			if err := dedup.ValidateBatch(records, cfg.Library.StrictHashes); err != nil {
				return err
			}

			analyzer := dedup.NewAnalyzer(analysisPolicy(cfg), dedup.WithLogger(logger))
			run.Result = analyzer.Analyze(records)
			run.RecordCount = len(records)

			if !noSave {
				store, err := ctx.openHistory()
				if err != nil {
					return err
				}
				defer store.Close()
				if err := store.SaveRun(cmd.Context(), run); err != nil {
					return err
				}
				logger.Info("analysis saved",
					logging.String(logging.FieldRunID, run.ID),
					logging.Int("clusters", run.ClusterCount()),
					logging.Int("total_duplicates", run.Result.TotalDuplicates),
				)
			}

			if jsonOutput {
				return writeJSON(cmd, run)
			}
			printRun(cmd, run)
			if run.ID != "" && run.Result.TotalDuplicates > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "\nReview, then run `mapcull prune %s --yes` to remove redundant maps.\n", shortID(run.ID))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&manifestPath, "manifest", "m", "", "Analyse records from a JSON or YAML manifest instead of a library folder")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the analysis as JSON")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "Do not record the analysis in history")
	return cmd
}

// printRun renders every cluster followed by the run summary.
func printRun(cmd *cobra.Command, run *history.Run) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)

	if len(run.Result.Clusters) == 0 {
		fmt.Fprintf(out, "No duplicates found among %d maps.\n", run.RecordCount)
		return
	}

	for i, cluster := range run.Result.Clusters {
		for _, line := range renderSectionHeader(clusterHeading(i+1, cluster), colorize) {
			fmt.Fprintln(out, line)
		}
		fmt.Fprintln(out, renderTable(out, clusterHeaders(), clusterRows(cluster), clusterAligns()))
		fmt.Fprintln(out)
	}

	for _, line := range renderSectionHeader("Summary", colorize) {
		fmt.Fprintln(out, line)
	}
	if run.ID != "" {
		fmt.Fprintln(out, renderStatusLine("Run", statusInfo, run.ID, colorize))
	}
	fmt.Fprintln(out, renderStatusLine("Maps analysed", statusInfo, fmt.Sprintf("%d", run.RecordCount), colorize))
	fmt.Fprintln(out, renderStatusLine("Duplicate clusters", statusInfo, fmt.Sprintf("%d", run.ClusterCount()), colorize))
	kind := statusOK
	if run.Result.TotalDuplicates > 0 {
		kind = statusWarn
	}
	fmt.Fprintln(out, renderStatusLine("Redundant maps", kind, fmt.Sprintf("%d", run.Result.TotalDuplicates), colorize))
	fmt.Fprintln(out, renderStatusLine("Potential saving", statusInfo, formatUnits(run.Result.PotentialSpaceSaving), colorize))
}

func clusterHeading(index int, cluster dedup.Cluster) string {
	title := strings.TrimSpace(cluster.Title)
	if title == "" {
		title = "(untitled)"
	}
	if author := strings.TrimSpace(cluster.Author); author != "" {
		title += " by " + author
	}
	return fmt.Sprintf("%d. %s [%s]", index, title, cluster.Similarity)
}

func clusterHeaders() []string {
	return []string{"Keep", "Score", "Title", "Mapper", "Diffs", "Size", "Location"}
}

func clusterAligns() []columnAlignment {
	return []columnAlignment{alignLeft, alignRight, alignLeft, alignLeft, alignRight, alignRight, alignLeft}
}

func clusterRows(cluster dedup.Cluster) [][]string {
	rows := make([][]string, 0, len(cluster.Members))
	for _, member := range cluster.Members {
		rec := member.Record
		keep := ""
		if member.Recommended {
			keep = "*"
		}
		location := rec.Path
		if location == "" {
			location = shortHash(rec.Hash)
		}
		rows = append(rows, []string{
			keep,
			fmt.Sprintf("%.1f", member.Score),
			rec.Title,
			rec.Mapper,
			fmt.Sprintf("%d", len(rec.Difficulties)),
			fmt.Sprintf("%d", member.EstimatedSize),
			location,
		})
	}
	return rows
}

// formatUnits labels the size estimate, which is a relative unit rather than bytes.
func formatUnits(units int) string {
	return fmt.Sprintf("%d units (est.)", units)
}

func shortHash(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
