package cli

import (
	"bytes"
	"context"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/railkm/internal/core/domain"
	"github.com/custodia-labs/railkm/internal/core/ports/driving"
)

// mockQueryService returns a canned answer and records questions.
type mockQueryService struct {
	driving.QueryService

	answer    *domain.Answer
	err       error
	questions []string
	opts      []domain.QueryOptions
}

func (m *mockQueryService) Answer(_ context.Context, question string, opts domain.QueryOptions) (*domain.Answer, error) {
	m.questions = append(m.questions, question)
	m.opts = append(m.opts, opts)
	if m.err != nil {
		return nil, m.err
	}
	if m.answer != nil {
		return m.answer, nil
	}
	return &domain.Answer{
		Text:   "Kecepatan maksimum adalah 60 km/jam.",
		Status: domain.AnswerStatusAnswered,
		Sources: []domain.Source{
			{File: "uu_23_2007.pdf", Locator: "Pasal 35", ChunkID: "uu_23_2007.pdf#12", Preview: "Pasal 35\nKecepatan", Score: 0.8731},
		},
	}, nil
}

// mockIndexService records lifecycle calls.
type mockIndexService struct {
	driving.IndexService

	counts map[string]int
	stats  *domain.IndexStats
	report *domain.IndexReport
	err    error

	loaded   []string
	deleted  []string
	removed  []string
	added    []string
	addMeta  domain.DocumentMetadata
	revised  map[string]string
	resets   int
	reloads  int
	reindexd []string
}

func (m *mockIndexService) LoadAndIndex(_ context.Context, path string) (*domain.IndexReport, error) {
	m.loaded = append(m.loaded, path)
	return m.reportOrDefault(), m.err
}

func (m *mockIndexService) ListIndexedFiles(_ context.Context) (map[string]int, error) {
	return m.counts, m.err
}

func (m *mockIndexService) DeleteDocument(_ context.Context, filename string) (int, error) {
	m.deleted = append(m.deleted, filename)
	if m.err != nil {
		return 0, m.err
	}
	n, ok := m.counts[filename]
	if !ok {
		return 0, domain.ErrNotFound
	}
	return n, nil
}

func (m *mockIndexService) RemoveDocument(_ context.Context, filename string) error {
	m.removed = append(m.removed, filename)
	return m.err
}

func (m *mockIndexService) AddDocument(_ context.Context, srcPath string, meta domain.DocumentMetadata) (*domain.IndexReport, error) {
	m.added = append(m.added, srcPath)
	m.addMeta = meta
	return m.reportOrDefault(), m.err
}

func (m *mockIndexService) ReviseChunk(_ context.Context, chunkID, text string) error {
	if m.err != nil {
		return m.err
	}
	if m.revised == nil {
		m.revised = make(map[string]string)
	}
	m.revised[chunkID] = text
	return nil
}

func (m *mockIndexService) ReindexFile(_ context.Context, path string) (*domain.IndexReport, error) {
	m.reindexd = append(m.reindexd, path)
	return m.reportOrDefault(), m.err
}

func (m *mockIndexService) Reset(_ context.Context) error {
	m.resets++
	return m.err
}

func (m *mockIndexService) ResetAndReindex(_ context.Context) (*domain.IndexReport, error) {
	m.reloads++
	return m.reportOrDefault(), m.err
}

func (m *mockIndexService) Stats(_ context.Context) (*domain.IndexStats, error) {
	return m.stats, m.err
}

func (m *mockIndexService) reportOrDefault() *domain.IndexReport {
	if m.err != nil {
		return nil
	}
	if m.report != nil {
		return m.report
	}
	return &domain.IndexReport{Indexed: 4, Files: []string{"speed.txt", "signal.txt"}}
}

// mockEvaluationService returns fixed scores.
type mockEvaluationService struct {
	scores []domain.EvalScore
	err    error
	cases  []domain.EvalCase
}

func (m *mockEvaluationService) Evaluate(_ context.Context, cases []domain.EvalCase) ([]domain.EvalScore, error) {
	m.cases = cases
	return m.scores, m.err
}

// testServices holds the mocks installed by setupTestServices.
type testServices struct {
	query *mockQueryService
	index *mockIndexService
	eval  *mockEvaluationService
}

// setupTestServices installs mock services and returns a cleanup function
// that restores the package state.
func setupTestServices() (*testServices, func()) {
	ts := &testServices{
		query: &mockQueryService{},
		index: &mockIndexService{
			counts: map[string]int{"speed.txt": 2, "signal.txt": 1},
		},
		eval: &mockEvaluationService{},
	}

	settings := domain.DefaultSettings()
	SetServices(&Services{
		Query:        ts.query,
		Index:        ts.index,
		Evaluation:   ts.eval,
		Settings:     &settings,
		SettingsPath: "/tmp/railkm/config.toml",
		CorpusDir:    "railway_docs",
	})

	return ts, func() {
		SetServices(nil)
		SetBootstrap(nil)
		resetFlags(rootCmd)
	}
}

// resetFlags restores every flag of cmd and its subcommands to its default.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

// execute runs the root command with args and returns its combined output.
func execute(args ...string) (string, error) {
	return executeWithInput("", args...)
}

func executeWithInput(input string, args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(input))
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}
