// Package commands wires the semsort CLI.
package commands

import (
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"
)

var verbose bool

// NewRootCmd creates the root command with all subcommands attached.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "semsort",
		Short: "Semantic file indexing and organizing",
		Long: `semsort builds a local semantic index of your files and sorts them
into category folders suggested by a language model.

Indexing chunks each file, embeds the chunks (with caching and durable
retry queues), and stores the vectors for similarity search. Organizing
moves files under a batch lock so concurrent runs cannot collide, and a
watch mode re-indexes files changed outside the pipeline.`,
		SilenceUsage: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			if verbose {
				log.SetOutput(os.Stderr)
			} else {
				log.SetOutput(io.Discard)
			}
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log pipeline activity to stderr")

	cmd.AddCommand(
		NewIndexCmd(),
		NewSearchCmd(),
		NewOrganizeCmd(),
		NewWatchCmd(),
		NewStatsCmd(),
		NewVersionCmd(),
	)

	return cmd
}

// Execute runs the CLI.
func Execute() error {
	return NewRootCmd().Execute()
}
