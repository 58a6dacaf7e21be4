package mcp

import (
	"context"

	"github.com/custodia-labs/railkm/internal/core/domain"
	"github.com/custodia-labs/railkm/internal/core/ports/driving"
)

// mockQueryService is a mock implementation of driving.QueryService.
type mockQueryService struct {
	driving.QueryService

	answer *domain.Answer
	hits   []domain.ScoredChunk
	err    error

	lastQuestion string
	lastOpts     domain.QueryOptions
	lastK        int
}

func (m *mockQueryService) Answer(
	_ context.Context,
	question string,
	opts domain.QueryOptions,
) (*domain.Answer, error) {
	m.lastQuestion = question
	m.lastOpts = opts
	return m.answer, m.err
}

func (m *mockQueryService) Retrieve(_ context.Context, question string, k int) ([]domain.ScoredChunk, error) {
	m.lastQuestion = question
	m.lastK = k
	return m.hits, m.err
}

// mockIndexService is a mock implementation of driving.IndexService.
type mockIndexService struct {
	driving.IndexService

	counts map[string]int
	stats  *domain.IndexStats
	err    error
}

func (m *mockIndexService) ListIndexedFiles(_ context.Context) (map[string]int, error) {
	return m.counts, m.err
}

func (m *mockIndexService) Stats(_ context.Context) (*domain.IndexStats, error) {
	return m.stats, m.err
}
