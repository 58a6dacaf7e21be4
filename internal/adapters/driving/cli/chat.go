package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/railkm/internal/adapters/driving/tui"
	"github.com/custodia-labs/railkm/internal/core/domain"
)

var (
	chatK    int
	chatLine bool
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive question session",
	Long: `Starts a conversation about the indexed regulations. Follow-up
questions are rewritten into standalone ones using the previous exchanges.

In a terminal the session runs full screen:
  Enter    - Ask
  PgUp/Dn  - Scroll the transcript
  Ctrl+S   - Toggle sources
  Ctrl+L   - Clear the conversation
  Esc      - Quit

When stdin is not a terminal (or with --line) questions are read one per
line and answered in turn. Type "exit" to stop.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationServices: needsProviders},
	RunE:        runChat,
}

func init() {
	chatCmd.Flags().IntVarP(&chatK, "top-k", "k", 0, "number of passages to retrieve (default from config)")
	chatCmd.Flags().BoolVar(&chatLine, "line", false, "read questions line by line instead of the full-screen UI")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}

	if !chatLine && term.IsTerminal(int(os.Stdin.Fd())) {
		if err := tui.Run(cmd.Context(), &tui.Ports{Query: queryService}, chatK); err != nil {
			return fmt.Errorf("TUI error: %w", err)
		}
		return nil
	}

	return runLineChat(cmd)
}

// runLineChat answers one question per input line, carrying the history.
func runLineChat(cmd *cobra.Command) error {
	scanner := bufio.NewScanner(cmd.InOrStdin())
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var history []domain.Turn
	for {
		cmd.Print("> ")
		if !scanner.Scan() {
			cmd.Println()
			break
		}

		question := strings.TrimSpace(scanner.Text())
		switch question {
		case "":
			continue
		case "exit", "quit":
			return nil
		}

		opts := domain.QueryOptions{K: chatK, History: history}
		answer, err := queryService.Answer(cmd.Context(), question, opts)
		if err != nil {
			cmd.PrintErrf("Error: %v\n", err)
			continue
		}

		printAnswer(cmd, answer)
		cmd.Println()

		if answer.Status == domain.AnswerStatusAnswered {
			history = append(history,
				domain.Turn{Role: domain.RoleUser, Content: question},
				domain.Turn{Role: domain.RoleAssistant, Content: answer.Text},
			)
		}
	}
	return scanner.Err()
}
