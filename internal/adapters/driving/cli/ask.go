package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/railkm/internal/core/domain"
)

var (
	askK     int
	askDebug bool
	askJSON  bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from the indexed regulations",
	Long: `Retrieves the passages most similar to the question and asks the
language model to answer from them. The answer is followed by its sources
in ranked order.

Examples:
  railkm ask "Berapa kecepatan maksimum kereta di perlintasan?"
  railkm ask -k 8 --debug "Siapa yang berwenang menerbitkan sertifikat awak?"`,
	Args:        cobra.MinimumNArgs(1),
	Annotations: map[string]string{annotationServices: needsProviders},
	RunE:        runAsk,
}

func init() {
	askCmd.Flags().IntVarP(&askK, "top-k", "k", 0, "number of passages to retrieve (default from config)")
	askCmd.Flags().BoolVar(&askDebug, "debug", false, "print retrieval diagnostics")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}

	question := strings.Join(args, " ")
	opts := domain.QueryOptions{K: askK, Debug: askDebug}

	answer, err := queryService.Answer(cmd.Context(), question, opts)
	if err != nil {
		return fmt.Errorf("answering question: %w", err)
	}

	if askJSON {
		data, err := json.MarshalIndent(answer, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal answer: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	printAnswer(cmd, answer)
	return nil
}

// printAnswer writes an answer with its sources and optional diagnostics.
func printAnswer(cmd *cobra.Command, answer *domain.Answer) {
	cmd.Println(answer.Text)
	if answer.Status != domain.AnswerStatusAnswered {
		return
	}

	if len(answer.Sources) > 0 {
		cmd.Println()
		cmd.Println("Sources:")
		for i, src := range answer.Sources {
			cmd.Printf("  [%d] %s (%s) score %.4f\n", i+1, src.File, src.Locator, src.Score)
			if src.Preview != "" {
				cmd.Printf("      %s\n", oneLine(src.Preview))
			}
		}
	}

	if d := answer.Diagnostics; d != nil {
		cmd.Println()
		cmd.Println("Diagnostics:")
		cmd.Printf("  Documents: %d\n", d.DocumentCount)
		cmd.Printf("  Chunks: %d\n", d.ChunkCount)
		cmd.Printf("  Query: %s\n", d.Query)
		if d.RefinedQuery != "" && d.RefinedQuery != d.Query {
			cmd.Printf("  Refined query: %s\n", d.RefinedQuery)
		}
		cmd.Printf("  Retrieved: %d\n", d.Retrieved)
	}
}

// oneLine collapses whitespace so a preview fits on one line.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
