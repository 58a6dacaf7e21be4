// Package memory provides an in-process vector index.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/custodia-labs/railkm/internal/adapters/driven/storage/vecmath"
	"github.com/custodia-labs/railkm/internal/core/domain"
	"github.com/custodia-labs/railkm/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

type row struct {
	id    string
	chunk domain.Chunk
}

// Index is an in-memory implementation of driven.VectorIndex.
// Contents are lost when the process exits.
type Index struct {
	mu   sync.RWMutex
	rows []row
}

// NewIndex creates a new empty in-memory index.
func NewIndex() *Index {
	return &Index{}
}

// Insert stores chunks. Each chunk is copied so callers may reuse the slice.
func (x *Index) Insert(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	added := newRows(chunks)

	x.mu.Lock()
	defer x.mu.Unlock()
	x.rows = append(x.rows, added...)
	return nil
}

func newRows(chunks []domain.Chunk) []row {
	rows := make([]row, len(chunks))
	for i, c := range chunks {
		c.Embedding = append([]float32(nil), c.Embedding...)
		rows[i] = row{id: uuid.NewString(), chunk: c}
	}
	return rows
}

// Search returns up to k chunks by descending cosine similarity.
func (x *Index) Search(ctx context.Context, query []float32, k int) ([]domain.ScoredChunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	candidates := make([]domain.ScoredChunk, 0, len(x.rows))
	for _, r := range x.rows {
		if len(r.chunk.Embedding) == 0 {
			continue
		}
		candidates = append(candidates, domain.ScoredChunk{
			Chunk: r.chunk,
			Score: vecmath.Cosine(query, r.chunk.Embedding),
		})
	}
	return vecmath.TopK(candidates, k), nil
}

// DeleteWhere removes every chunk matching the filter.
func (x *Index) DeleteWhere(_ context.Context, filter domain.ChunkFilter) (int, error) {
	if err := filter.Validate(); err != nil {
		return 0, err
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	return x.removeLocked(filter), nil
}

// Replace swaps the chunks matching filter for chunks under one lock.
func (x *Index) Replace(ctx context.Context, filter domain.ChunkFilter, chunks []domain.Chunk) (int, error) {
	if err := filter.Validate(); err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	added := newRows(chunks)

	x.mu.Lock()
	defer x.mu.Unlock()
	removed := x.removeLocked(filter)
	x.rows = append(x.rows, added...)
	return removed, nil
}

func (x *Index) removeLocked(filter domain.ChunkFilter) int {
	kept := x.rows[:0]
	removed := 0
	for _, r := range x.rows {
		if filter.Matches(&r.chunk) {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	// clear the tail so removed chunks can be collected
	for i := len(kept); i < len(x.rows); i++ {
		x.rows[i] = row{}
	}
	x.rows = kept
	return removed
}

// Get returns every chunk carrying chunkID.
func (x *Index) Get(_ context.Context, chunkID string) ([]domain.Chunk, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	var out []domain.Chunk
	for _, r := range x.rows {
		if r.chunk.ID == chunkID {
			out = append(out, r.chunk)
		}
	}
	return out, nil
}

// Count returns the number of stored chunks.
func (x *Index) Count(_ context.Context) (int, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.rows), nil
}

// CountBySource tallies stored chunks by source file.
func (x *Index) CountBySource(_ context.Context) (map[string]int, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	counts := make(map[string]int)
	for _, r := range x.rows {
		counts[r.chunk.Metadata.SourceFile]++
	}
	return counts, nil
}

// Stats summarises the index contents.
func (x *Index) Stats(_ context.Context) (*domain.IndexStats, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	stats := &domain.IndexStats{
		Chunks:   len(x.rows),
		PerFile:  make(map[string]int),
		PerClass: make(map[string]int),
	}
	for _, r := range x.rows {
		stats.PerFile[r.chunk.Metadata.SourceFile]++
		stats.PerClass[r.chunk.Metadata.DocumentClass]++
	}
	stats.Documents = len(stats.PerFile)
	return stats, nil
}

// Reset removes every chunk.
func (x *Index) Reset(_ context.Context) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.rows = nil
	return nil
}

// Close is a no-op.
func (x *Index) Close() error {
	return nil
}
