package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/railkm/internal/core/domain"
	"github.com/custodia-labs/railkm/internal/core/services"
)

var watchIndexFirst bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep the index in step with the corpus directory",
	Long: `Watches the corpus directory and re-indexes documents as they are
created, modified or deleted. Editing a metadata sidecar re-indexes its
document. Runs until interrupted.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationServices: needsProviders},
	RunE:        runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchIndexFirst, "reindex", false, "reset and reload the corpus before watching")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}
	if corpusWatcher == nil {
		return errors.New("corpus watcher not configured")
	}

	if watchIndexFirst {
		report, err := indexService.ResetAndReindex(cmd.Context())
		if err != nil {
			return err
		}
		printReport(cmd, report)
	}

	sync := services.NewCorpusSync(corpusWatcher, indexService)
	sync.OnChange(func(c domain.FileChange, report *domain.IndexReport, err error) {
		switch {
		case err != nil:
			cmd.PrintErrf("%s %s: %v\n", c.Type, c.Filename, err)
		case c.Type == domain.ChangeDeleted:
			cmd.Printf("%s %s\n", c.Type, c.Filename)
		default:
			cmd.Printf("%s %s: %d chunks\n", c.Type, c.Filename, report.Indexed)
		}
	})

	cmd.Printf("Watching %s for changes (Ctrl+C to stop)...\n", corpusDir)
	return sync.Run(cmd.Context())
}
