package commands

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dshills/semsort/internal/watcher"
)

// NewWatchCmd creates the watch command.
func NewWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch <dir>...",
		Short: "Watch directories and re-index external changes",
		Long: `Watch the given directories and re-index files created or
modified outside the pipeline. Changes caused by semsort's own moves
are suppressed. Runs until interrupted.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runWatch,
	}
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	w, err := watcher.New(a.tracker, func(ctx context.Context, change watcher.Change) error {
		if change.Type == watcher.ChangeDeleted {
			if n, err := a.store.DeleteByPath(ctx, change.Path); err != nil {
				return err
			} else if n > 0 {
				log.Printf("watch: dropped %d chunks for %s", n, change.Path)
			}
			return nil
		}

		report, err := a.pipeline.IndexFile(ctx, change.Path)
		if err != nil {
			return err
		}
		log.Printf("watch: re-indexed %s (%d chunks)", change.Path, report.Chunks)
		return nil
	})
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	for _, dir := range args {
		if err := w.AddRoot(dir); err != nil {
			return err
		}
	}

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- w.Run(ctx)
	}()

	fmt.Fprintf(cmd.OutOrStdout(), "Watching %d directories (Ctrl-C to stop)\n", len(args))

	select {
	case sig := <-sigChan:
		log.Printf("received signal %v, shutting down", sig)
		cancel()
		return nil
	case err := <-errChan:
		if err != nil && err != context.Canceled {
			return err
		}
		return nil
	}
}
