package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/railkm/internal/core/domain"
)

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show index statistics",
	Long:  `Shows the number of indexed documents and chunks, per file and per document class.`,
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "output statistics as JSON")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}

	stats, err := indexService.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("reading stats: %w", err)
	}

	if statsJSON {
		data, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal stats: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("Documents: %d\n", stats.Documents)
	cmd.Printf("Chunks: %d\n", stats.Chunks)

	if len(stats.PerFile) > 0 {
		cmd.Println()
		cmd.Println("Per file:")
		for _, name := range stats.Filenames() {
			cmd.Printf("  %-40s %d\n", name, stats.PerFile[name])
		}
	}

	if len(stats.PerClass) > 0 {
		cmd.Println()
		cmd.Println("Per class:")
		for _, class := range domain.SortedKeys(stats.PerClass) {
			label := class
			if label == "" {
				label = "(unclassified)"
			}
			cmd.Printf("  %-40s %d\n", label, stats.PerClass[class])
		}
	}
	return nil
}
