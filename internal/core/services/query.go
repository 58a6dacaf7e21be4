package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/railkm/internal/core/domain"
	"github.com/custodia-labs/railkm/internal/core/ports/driven"
	"github.com/custodia-labs/railkm/internal/logger"
)

// errNoSynthesizer is reported when a question is asked without an LLM.
var errNoSynthesizer = errors.New("no language model configured")

// Answer retrieves relevant chunks and synthesizes a grounded answer.
func (e *RAGEngine) Answer(ctx context.Context, question string, opts domain.QueryOptions) (*domain.Answer, error) {
	logger.Section("Answer")
	defer logger.Timed("answer")()

	question = strings.TrimSpace(question)
	if question == "" {
		return domain.StatusAnswer(domain.AnswerStatusNoQuery, domain.MessageNoQuery), nil
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	count, err := e.index.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count chunks: %w", err)
	}
	if count == 0 {
		logger.Debug("Index is empty, skipping providers")
		return domain.StatusAnswer(domain.AnswerStatusNoDocuments, domain.MessageNoDocuments), nil
	}

	query := question
	if len(opts.History) > 0 && e.cfg.Refine {
		refined, err := e.refine(ctx, opts.History, question)
		if err != nil {
			logger.Warn("Question refinement failed, using the original question: %v", err)
		} else {
			query = refined
		}
	}
	logger.Debug("Query: %q", query)

	k := opts.K
	if k <= 0 {
		k = e.cfg.TopK
	}

	vec, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return providerAnswer("embed question", err), nil
	}

	hits, err := e.index.Search(ctx, vec, k)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}
	logger.Debug("Retrieved %d chunks", len(hits))
	if len(hits) == 0 {
		return domain.StatusAnswer(domain.AnswerStatusNoRelevant, domain.MessageNoRelevant), nil
	}

	prompt := domain.RenderPrompt(e.loadPrompt(driven.PromptAnswer, domain.DefaultAnswerPrompt), joinContext(hits), query)

	if e.llm == nil {
		return providerAnswer("generate answer", errNoSynthesizer), nil
	}
	text, err := e.llm.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens:   e.cfg.MaxTokens,
		Temperature: e.cfg.Temperature,
	})
	if err != nil {
		return providerAnswer("generate answer", err), nil
	}

	answer := &domain.Answer{
		Text:    text,
		Status:  domain.AnswerStatusAnswered,
		Sources: make([]domain.Source, len(hits)),
	}
	for i := range hits {
		answer.Sources[i] = domain.NewSource(hits[i])
	}

	if opts.Debug {
		perFile, err := e.index.CountBySource(ctx)
		if err != nil {
			return nil, fmt.Errorf("count documents: %w", err)
		}
		answer.Diagnostics = &domain.Diagnostics{
			DocumentCount: len(perFile),
			ChunkCount:    count,
			Query:         question,
			Retrieved:     len(hits),
			Prompt:        prompt,
		}
		if query != question {
			answer.Diagnostics.RefinedQuery = query
		}
	}

	return answer, nil
}

// Retrieve runs similarity search only, without synthesis. An empty index
// returns no hits without calling the embedder.
func (e *RAGEngine) Retrieve(ctx context.Context, question string, k int) ([]domain.ScoredChunk, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return []domain.ScoredChunk{}, nil
	}
	if k <= 0 {
		k = e.cfg.TopK
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	total, err := e.index.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count chunks: %w", err)
	}
	if total == 0 {
		return []domain.ScoredChunk{}, nil
	}

	vec, err := e.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	hits, err := e.index.Search(ctx, vec, k)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}
	return hits, nil
}

// RefineQuestion rewrites a follow-up question into a standalone one.
// Empty history returns the question unchanged without a provider call.
func (e *RAGEngine) RefineQuestion(ctx context.Context, history []domain.Turn, question string) (string, error) {
	question = strings.TrimSpace(question)
	if len(history) == 0 || question == "" {
		return question, nil
	}
	return e.refine(ctx, history, question)
}

func (e *RAGEngine) refine(ctx context.Context, history []domain.Turn, question string) (string, error) {
	if e.llm == nil {
		return "", errNoSynthesizer
	}

	if len(history) > refineHistoryTurns {
		history = history[len(history)-refineHistoryTurns:]
	}

	messages := make([]driven.ChatMessage, 0, len(history)+1)
	for _, turn := range history {
		if turn.Role != domain.RoleUser && turn.Role != domain.RoleAssistant {
			continue
		}
		messages = append(messages, driven.ChatMessage{Role: turn.Role, Content: turn.Content})
	}

	template := e.loadPrompt(driven.PromptRefine, domain.DefaultRefinePrompt)
	messages = append(messages, driven.ChatMessage{
		Role:    domain.RoleUser,
		Content: domain.RenderPrompt(template, "", question),
	})

	out, err := e.llm.Chat(ctx, messages, driven.ChatOptions{
		MaxTokens:   e.cfg.MaxTokens,
		Temperature: e.cfg.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("refine question: %w", err)
	}

	out = strings.TrimSpace(out)
	if out == "" {
		return question, nil
	}
	return out, nil
}

// joinContext concatenates chunk texts in ranked order.
func joinContext(hits []domain.ScoredChunk) string {
	parts := make([]string, len(hits))
	for i := range hits {
		parts[i] = hits[i].Chunk.Text
	}
	return strings.Join(parts, "\n\n")
}

// providerAnswer logs a provider failure and returns a user-safe answer.
func providerAnswer(stage string, err error) *domain.Answer {
	logger.Error("%s: %v", stage, err)
	if domain.IsRetryable(err) {
		return domain.StatusAnswer(domain.AnswerStatusProviderError, domain.MessageRetryable)
	}
	return domain.StatusAnswer(domain.AnswerStatusProviderError, domain.MessageProvider)
}
