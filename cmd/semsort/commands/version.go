package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/semsort/internal/vectorstore"
)

var versionInfo = struct {
	Version   string
	BuildTime string
}{
	Version:   "dev",
	BuildTime: "unknown",
}

// SetVersion sets the version information (called from main).
func SetVersion(version, buildTime string) {
	versionInfo.Version = version
	versionInfo.BuildTime = buildTime
}

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "semsort %s\n", versionInfo.Version)
			fmt.Fprintf(out, "Built:  %s\n", versionInfo.BuildTime)
			fmt.Fprintf(out, "Build Mode: %s (driver %s, vector extension %v)\n",
				vectorstore.BuildMode, vectorstore.DriverName, vectorstore.VectorExtensionAvailable)
		},
	}
}
