package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewStatsCmd creates the stats command.
func NewStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show index and pipeline statistics",
		Args:  cobra.NoArgs,
		RunE:  runStats,
	}
}

func runStats(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	snap, err := a.pipeline.Stats(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Embedding:  %s / %s\n", snap.Provider, snap.Model)
	fmt.Fprintf(out, "Documents:  %d\n", snap.StoreDocuments)
	fmt.Fprintf(out, "Cache:      %d entries, %d hits, %d misses, %d evictions\n",
		snap.Cache.Size, snap.Cache.Hits, snap.Cache.Misses, snap.Cache.Evictions)
	for _, q := range snap.Queues {
		fmt.Fprintf(out, "Queue %-9s pending=%d active=%d failed=%d processed=%d retried=%d\n",
			q.Stage+":", q.Size, q.Active, q.Failed, q.Processed, q.Retried)
	}
	fmt.Fprintf(out, "Tracked ops: %d\n", snap.TrackedOps)
	if snap.LockHolder != "" {
		fmt.Fprintf(out, "Batch lock:  held by %s\n", snap.LockHolder)
	} else {
		fmt.Fprintf(out, "Batch lock:  free\n")
	}
	return nil
}
