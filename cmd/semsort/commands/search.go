package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	searchLimit    int
	searchMinScore float64
)

// NewSearchCmd creates the search command.
func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the semantic index",
		Long: `Embed the query and return the most similar indexed chunks.

Examples:
  semsort search "tax documents from 2025"
  semsort search --limit 3 "meeting notes"`,
		Args: cobra.MinimumNArgs(1),
		RunE: runSearch,
	}

	cmd.Flags().IntVar(&searchLimit, "limit", 10, "Maximum number of results")
	cmd.Flags().Float64Var(&searchMinScore, "min-score", 0, "Minimum similarity score")

	return cmd
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	results, err := a.pipeline.Search(ctx, strings.Join(args, " "), searchLimit, searchMinScore)
	if err != nil {
		return err
	}

	if len(results) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No matches.")
		return nil
	}

	for i, r := range results {
		fmt.Fprintf(cmd.OutOrStdout(), "%2d. %.3f  %s#%d\n    %s\n",
			i+1, r.SimilarityScore, r.Path, r.ChunkIndex, snippet(r.Content, 120))
	}
	return nil
}

// snippet shortens content to a single display line.
func snippet(s string, maxRunes int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes-3]) + "..."
}
