package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewIndexCmd creates the index command.
func NewIndexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "index <path>...",
		Short: "Index files or directories into the semantic index",
		Long: `Chunk, embed, and store the given files or directories.

Examples:
  semsort index ~/Documents
  semsort index notes.txt report.md`,
		Args: cobra.MinimumNArgs(1),
		RunE: runIndex,
	}
}

func runIndex(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	var chunks, hits, enqueued int
	for _, path := range args {
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("stat %s: %w", path, err)
		}

		if info.IsDir() {
			report, err := a.pipeline.IndexDir(ctx, path)
			if err != nil {
				return err
			}
			chunks += report.Chunks
			hits += report.CacheHits
			enqueued += report.Enqueued
			continue
		}

		report, err := a.pipeline.IndexFile(ctx, path)
		if err != nil {
			return err
		}
		chunks += report.Chunks
		hits += report.CacheHits
		enqueued += report.Enqueued
	}

	if err := a.waitForQueues(ctx); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d chunks (%d cached, %d embedded)\n",
		chunks, hits, enqueued)
	return nil
}
