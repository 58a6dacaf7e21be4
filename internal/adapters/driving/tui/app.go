package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/railkm/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/railkm/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/railkm/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/railkm/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/railkm/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/railkm/internal/core/domain"
)

// chromeHeight is the number of rows taken by the title, input and status bar.
const chromeHeight = 6

// exchange is one question with its outcome.
type exchange struct {
	question string
	answer   *domain.Answer
	err      error
}

// App is the chat session following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports *Ports
	ctx   context.Context
	k     int

	styles     *styles.Styles
	keymap     *keymap.KeyMap
	input      *input.QuestionInput
	transcript viewport.Model
	statusbar  *status.Bar

	// history is sent with each question so follow-ups can be refined.
	history   []domain.Turn
	exchanges []exchange

	showSources bool
	pending     bool

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a chat session over the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:       ports,
		ctx:         context.Background(),
		styles:      s,
		keymap:      km,
		input:       input.NewQuestionInput(s),
		transcript:  viewport.New(80, 24-chromeHeight),
		statusbar:   status.NewBar(s, km),
		showSources: true,
		width:       80,
		height:      24,
	}, nil
}

// WithContext sets the context used for questions.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// WithK sets the number of chunks retrieved per question.
func (a *App) WithK(k int) *App {
	a.k = k
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		a.input.Init(),
		tea.SetWindowTitle("railkm"),
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		a.ready = true
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case messages.QuestionSubmitted:
		a.pending = true
		a.statusbar.SetState(status.StateThinking)
		return a, a.ask(msg.Question)

	case messages.AnswerReceived:
		a.handleAnswer(msg)
		return a, nil

	case messages.TranscriptCleared:
		a.history = nil
		a.exchanges = nil
		a.statusbar.Clear()
		a.refresh()
		return a, nil
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	switch {
	case keymap.Matches(key, a.keymap.Quit):
		return a, tea.Quit

	case keymap.Matches(key, a.keymap.ScrollUp), keymap.Matches(key, a.keymap.ScrollDown):
		var cmd tea.Cmd
		a.transcript, cmd = a.transcript.Update(msg)
		return a, cmd

	case keymap.Matches(key, a.keymap.Sources):
		a.showSources = !a.showSources
		a.refresh()
		return a, nil
	}

	// One question at a time.
	if a.pending {
		return a, nil
	}

	switch {
	case keymap.Matches(key, a.keymap.Send):
		question := strings.TrimSpace(a.input.Value())
		if question == "" {
			return a, nil
		}
		a.input.Reset()
		return a, func() tea.Msg { return messages.QuestionSubmitted{Question: question} }

	case keymap.Matches(key, a.keymap.Clear):
		return a, func() tea.Msg { return messages.TranscriptCleared{} }
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

// ask answers question in the background with a snapshot of the history.
func (a *App) ask(question string) tea.Cmd {
	history := append([]domain.Turn(nil), a.history...)
	opts := domain.QueryOptions{K: a.k, History: history}
	query := a.ports.Query
	ctx := a.ctx

	return func() tea.Msg {
		answer, err := query.Answer(ctx, question, opts)
		return messages.AnswerReceived{Question: question, Answer: answer, Err: err}
	}
}

func (a *App) handleAnswer(msg messages.AnswerReceived) {
	a.pending = false
	a.exchanges = append(a.exchanges, exchange{question: msg.Question, answer: msg.Answer, err: msg.Err})

	if msg.Err != nil {
		a.statusbar.SetState(status.StateError)
		a.statusbar.SetMessage(msg.Err.Error())
	} else {
		a.statusbar.SetState(status.StateReady)
		a.statusbar.SetMessage("")
		if msg.Answer != nil && msg.Answer.Status == domain.AnswerStatusAnswered {
			a.history = append(a.history,
				domain.Turn{Role: domain.RoleUser, Content: msg.Question},
				domain.Turn{Role: domain.RoleAssistant, Content: msg.Answer.Text},
			)
		}
	}
	a.statusbar.SetTurns(len(a.exchanges))
	a.refresh()
}

// refresh re-renders the transcript and scrolls to the latest exchange.
func (a *App) refresh() {
	a.transcript.SetContent(a.renderTranscript())
	a.transcript.GotoBottom()
}

func (a *App) renderTranscript() string {
	if len(a.exchanges) == 0 {
		return a.styles.Muted.Render("Ask a question about the indexed regulations.")
	}

	wrap := lipgloss.NewStyle().Width(max(a.width-4, 20))
	var b strings.Builder
	for i, ex := range a.exchanges {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(a.styles.Question.Render("You"))
		b.WriteString("\n")
		b.WriteString(wrap.Render(ex.question))
		b.WriteString("\n")

		switch {
		case ex.err != nil:
			b.WriteString(a.styles.Error.Render("Error: " + ex.err.Error()))
			b.WriteString("\n")
		case ex.answer == nil:
		case ex.answer.Status == domain.AnswerStatusAnswered:
			b.WriteString(a.styles.Answer.Render("railkm"))
			b.WriteString("\n")
			b.WriteString(wrap.Render(ex.answer.Text))
			b.WriteString("\n")
			if a.showSources {
				for j, src := range ex.answer.Sources {
					line := fmt.Sprintf("[%d] %s (%s) %.4f", j+1, src.File, src.Locator, src.Score)
					b.WriteString(a.styles.Source.Render(line))
					b.WriteString("\n")
				}
			}
		default:
			b.WriteString(a.styles.Warning.Render(ex.answer.Text))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// View implements tea.Model.
func (a *App) View() string {
	title := a.styles.Title.Render("railkm: railway regulation assistant")
	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		a.transcript.View(),
		a.input.View(),
		a.statusbar.View(),
	)
}

// SetDimensions resizes the session to the terminal.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.transcript.Width = width
	a.transcript.Height = max(height-chromeHeight, 3)
	a.input.SetWidth(width)
	a.statusbar.SetWidth(width)
	a.refresh()
}

// History returns the conversation turns sent with the next question.
func (a *App) History() []domain.Turn {
	return a.history
}

// Pending reports whether a question is being answered.
func (a *App) Pending() bool {
	return a.pending
}

// Ready reports whether the terminal size is known.
func (a *App) Ready() bool {
	return a.ready
}

// Run starts the chat session and blocks until the user quits.
func Run(ctx context.Context, ports *Ports, k int) error {
	app, err := NewApp(ports)
	if err != nil {
		return err
	}
	app.WithContext(ctx).WithK(k)

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("chat session: %w", err)
	}
	return nil
}
