package driven

import (
	"context"

	"github.com/custodia-labs/railkm/internal/core/domain"
)

// VectorIndex stores chunks with their embeddings and answers similarity
// queries over them.
//
// Score convention: Search returns cosine similarity, HIGHER is more
// similar, and results are sorted by descending score.
//
// Rows are keyed by an internal identity, not by chunk ID, so chunks
// with colliding IDs (re-indexing without a reset) are stored side by side.
// Every mutation is durable when the call returns.
type VectorIndex interface {
	// Insert stores chunks that already carry embeddings.
	// The batch is all-or-nothing; an empty batch is a no-op.
	Insert(ctx context.Context, chunks []domain.Chunk) error

	// Search returns up to k chunks ordered by descending similarity.
	Search(ctx context.Context, query []float32, k int) ([]domain.ScoredChunk, error)

	// DeleteWhere removes every chunk matching the filter and returns how
	// many were removed. An empty filter is rejected with domain.ErrInvalidFilter.
	DeleteWhere(ctx context.Context, filter domain.ChunkFilter) (int, error)

	// Replace removes every chunk matching the filter and stores chunks in
	// their place as one all-or-nothing write. It returns how many chunks
	// were removed. An empty filter is rejected with domain.ErrInvalidFilter.
	Replace(ctx context.Context, filter domain.ChunkFilter, chunks []domain.Chunk) (int, error)

	// Get returns every stored chunk carrying the given chunk ID.
	Get(ctx context.Context, chunkID string) ([]domain.Chunk, error)

	// Count returns the number of stored chunks.
	Count(ctx context.Context) (int, error)

	// CountBySource tallies stored chunks by source file.
	CountBySource(ctx context.Context) (map[string]int, error)

	// Stats summarises the index contents.
	Stats(ctx context.Context) (*domain.IndexStats, error)

	// Reset removes every chunk.
	Reset(ctx context.Context) error

	// Close releases resources.
	Close() error
}
