package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/railkm/internal/core/domain"
	"github.com/custodia-labs/railkm/internal/core/services"
)

var evalJSON bool

var evalCmd = &cobra.Command{
	Use:   "eval [cases.yaml]",
	Short: "Score answers against an evaluation set",
	Long: `Answers each question in a YAML evaluation set and scores the generated
answer against the expected one by token overlap (precision, recall, F1).

The file is a list of cases, or a mapping with a "cases" key:

  - question: Berapa kecepatan maksimum di perlintasan sebidang?
    expected_answer: Kecepatan maksimum adalah 60 km/jam.
    expected_context: Pasal 35`,
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{annotationServices: needsProviders},
	RunE:        runEval,
}

func init() {
	evalCmd.Flags().BoolVar(&evalJSON, "json", false, "output scores as JSON")
	rootCmd.AddCommand(evalCmd)
}

// evalResult is the JSON output of the eval command.
type evalResult struct {
	Scores  []domain.EvalScore `json:"scores"`
	Summary domain.EvalSummary `json:"summary"`
}

func runEval(cmd *cobra.Command, args []string) error {
	if evaluationService == nil {
		return errors.New("evaluation service not configured")
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading evaluation set: %w", err)
	}

	cases, err := services.ParseEvalCases(data)
	if err != nil {
		return err
	}
	if len(cases) == 0 {
		cmd.Println("No evaluation cases found.")
		return nil
	}

	scores, err := evaluationService.Evaluate(cmd.Context(), cases)
	if err != nil {
		return fmt.Errorf("evaluation failed: %w", err)
	}
	summary := domain.Summarise(scores)

	if evalJSON {
		data, err := json.MarshalIndent(evalResult{Scores: scores, Summary: summary}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal scores: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	for i := range scores {
		s := &scores[i]
		cmd.Printf("[%d] %s\n", i+1, s.Case.Question)
		cmd.Printf("    status: %s  precision %.2f  recall %.2f  f1 %.2f\n",
			s.Status, s.Precision, s.Recall, s.F1)
	}
	cmd.Println()
	cmd.Printf("%d cases: precision %.2f  recall %.2f  f1 %.2f\n",
		summary.Cases, summary.Precision, summary.Recall, summary.F1)
	return nil
}
