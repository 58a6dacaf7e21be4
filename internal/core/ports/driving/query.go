package driving

import (
	"context"

	"github.com/custodia-labs/railkm/internal/core/domain"
)

// QueryService answers questions against the indexed corpus.
type QueryService interface {
	// Answer retrieves relevant chunks and synthesizes a grounded answer.
	// Empty questions, an empty index, no hits and provider failures are
	// reported through Answer.Status, never as errors. An error is only
	// returned when the index itself cannot be read.
	Answer(ctx context.Context, question string, opts domain.QueryOptions) (*domain.Answer, error)

	// Retrieve runs similarity search only, without synthesis.
	Retrieve(ctx context.Context, question string, k int) ([]domain.ScoredChunk, error)

	// RefineQuestion rewrites a follow-up question into a standalone one
	// using the recent conversation history.
	RefineQuestion(ctx context.Context, history []domain.Turn, question string) (string, error)
}
