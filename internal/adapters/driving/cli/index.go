package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/railkm/internal/core/domain"
)

var indexReset bool

var indexCmd = &cobra.Command{
	Use:   "index [path]",
	Short: "Index documents from the corpus",
	Long: `Indexes every PDF and text file under path, or the configured corpus
directory when no path is given. Files that cannot be read are skipped and
reported.

Indexing the same files again without --reset stores their chunks twice.
Use --reset to wipe the index and reload the whole corpus.`,
	Args:        cobra.MaximumNArgs(1),
	Annotations: map[string]string{annotationServices: needsProviders},
	RunE:        runIndex,
}

func init() {
	indexCmd.Flags().BoolVar(&indexReset, "reset", false, "wipe the index and reload the corpus")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}

	var (
		report *domain.IndexReport
		err    error
	)
	switch {
	case indexReset:
		if len(args) > 0 {
			return errors.New("--reset reloads the whole corpus and takes no path")
		}
		cmd.Println("Resetting index and reloading corpus...")
		report, err = indexService.ResetAndReindex(cmd.Context())
	default:
		path := corpusDir
		if len(args) > 0 {
			path = args[0]
		}
		if path == "" {
			return errors.New("no path given and no corpus directory configured")
		}
		cmd.Printf("Indexing %s...\n", path)
		report, err = indexService.LoadAndIndex(cmd.Context(), path)
	}
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	printReport(cmd, report)
	return nil
}

// printReport summarises an index report.
func printReport(cmd *cobra.Command, report *domain.IndexReport) {
	cmd.Printf("Indexed %d chunks from %d files.\n", report.Indexed, len(report.Files))
	if len(report.Skipped) > 0 {
		cmd.Printf("Skipped %d files:\n", len(report.Skipped))
		for _, s := range report.Skipped {
			cmd.Printf("  %s: %s\n", s.File, s.Reason)
		}
	}
}
