package commands

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

var organizeDest string

// NewOrganizeCmd creates the organize command.
func NewOrganizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "organize <path>...",
		Short: "Sort files into category folders",
		Long: `Suggest a category for each file and move it into
<dest>/<category>/. Moves run one batch at a time under an advisory
lock, and each move is recorded so watch mode ignores it.

Examples:
  semsort organize --dest ~/Sorted ~/Downloads
  semsort organize --dest ./out invoice.pdf notes.txt`,
		Args: cobra.MinimumNArgs(1),
		RunE: runOrganize,
	}

	cmd.Flags().StringVar(&organizeDest, "dest", "", "Destination root for category folders (required)")
	_ = cmd.MarkFlagRequired("dest")

	return cmd
}

func runOrganize(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	var files []string
	for _, path := range args {
		err := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if name := d.Name(); name != "." && strings.HasPrefix(name, ".") {
					return filepath.SkipDir
				}
				return nil
			}
			files = append(files, p)
			return nil
		})
		if err != nil {
			return err
		}
	}

	if len(files) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Nothing to organize.")
		return nil
	}

	if _, err := a.pipeline.OrganizeBatch(files, organizeDest); err != nil {
		return err
	}
	if err := a.waitForQueues(ctx); err != nil {
		return err
	}

	snap, err := a.pipeline.Stats(ctx)
	if err != nil {
		return err
	}
	failed := 0
	for _, q := range snap.Queues {
		failed += q.Failed
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Organized %d files into %s (%d failed)\n",
		len(files)-failed, organizeDest, failed)
	return nil
}
