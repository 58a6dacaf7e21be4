package guard

import (
	"context"

	"github.com/custodia-labs/railkm/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// EmbeddingService guards an embedding provider.
type EmbeddingService struct {
	next  driven.EmbeddingService
	guard *guard
}

// NewEmbeddingService wraps next. name labels errors and the breaker.
func NewEmbeddingService(name string, next driven.EmbeddingService, cfg Config) *EmbeddingService {
	return &EmbeddingService{next: next, guard: newGuard(name+"-embedding", cfg)}
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	var out []float32
	err := s.guard.do(ctx, "embed", func(ctx context.Context) error {
		var err error
		out, err = s.next.Embed(ctx, text)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// EmbedBatch generates embeddings for multiple texts.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	var out [][]float32
	err := s.guard.do(ctx, "embed", func(ctx context.Context) error {
		var err error
		out, err = s.next.EmbedBatch(ctx, texts)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Dimensions returns the wrapped provider's vector size.
func (s *EmbeddingService) Dimensions() int { return s.next.Dimensions() }

// ModelName returns the wrapped provider's model.
func (s *EmbeddingService) ModelName() string { return s.next.ModelName() }

// Ping checks the wrapped provider once, without retries.
func (s *EmbeddingService) Ping(ctx context.Context) error { return s.next.Ping(ctx) }

// Close closes the wrapped provider.
func (s *EmbeddingService) Close() error { return s.next.Close() }
