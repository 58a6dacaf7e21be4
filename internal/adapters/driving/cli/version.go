package cli

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/railkm/internal/adapters/driving/mcp"
)

var versionShort bool

var versionCmd = &cobra.Command{
	Use:         "version",
	Short:       "Print version information",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationServices: needsNothing},
	RunE:        runVersion,
}

func init() {
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "print only the version number")
	rootCmd.AddCommand(versionCmd)
}

func runVersion(cmd *cobra.Command, _ []string) error {
	if versionShort {
		cmd.Println(version)
		return nil
	}

	cmd.Printf("railkm version %s\n", version)
	cmd.Printf("  go:         %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	cmd.Printf("  mcp server: %s\n", mcp.Version)
	return nil
}
