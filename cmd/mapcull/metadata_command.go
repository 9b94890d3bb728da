package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"mapcull/internal/config"
	"mapcull/internal/dedup"
)

func newMetadataCommand(ctx *commandContext) *cobra.Command {
	metadataCmd := &cobra.Command{
		Use:   "metadata",
		Short: "Manage cached community metadata",
	}
	metadataCmd.AddCommand(newMetadataImportCommand(ctx))
	metadataCmd.AddCommand(newMetadataListCommand(ctx))
	metadataCmd.AddCommand(newMetadataClearCommand(ctx))
	return metadataCmd
}

func newMetadataImportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Import a JSON metadata export into the cache",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := ctx.metadataCache()
			if err != nil {
				return err
			}
			if cache.Path() == "" {
				return fmt.Errorf("metadata cache is disabled; set library.metadata_cache_path")
			}
			path, err := config.ExpandPath(args[0])
			if err != nil {
				return fmt.Errorf("resolve import path: %w", err)
			}
			file, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("open metadata export: %w", err)
			}
			defer file.Close()

			count, err := cache.Import(file)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d entries (%d cached)\n", count, cache.Count())
			return nil
		},
	}
}

func newMetadataListCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cached metadata entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := ctx.metadataCache()
			if err != nil {
				return err
			}
			entries := cache.List()
			if jsonOutput {
				return writeJSON(cmd, entries)
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "Metadata cache is empty.")
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				m := entry.Metadata
				rows = append(rows, []string{
					shortHash(entry.Hash),
					optionalInt(m.UpVotes),
					optionalInt(m.DownVotes),
					optionalInt(m.Downloads),
					metadataFlags(m),
					humanize.Time(entry.CachedAt),
				})
			}
			fmt.Fprintln(out, renderTable(out,
				[]string{"Hash", "Up", "Down", "Downloads", "Flags", "Cached"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignLeft, alignLeft},
			))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newMetadataClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached metadata entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := ctx.metadataCache()
			if err != nil {
				return err
			}
			count := cache.Count()
			if err := cache.Clear(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d entries\n", count)
			return nil
		},
	}
}

func optionalInt(v *int) string {
	if v == nil {
		return "-"
	}
	return humanize.Comma(int64(*v))
}

func metadataFlags(m dedup.Metadata) string {
	var flags []string
	if m.Ranked || m.AltRanked {
		flags = append(flags, "ranked")
	}
	if m.Curated {
		flags = append(flags, "curated")
	}
	if m.Uploader.Verified {
		flags = append(flags, "verified")
	}
	if m.Automapper {
		flags = append(flags, "automapper")
	}
	if len(flags) == 0 {
		return "-"
	}
	return strings.Join(flags, ", ")
}
