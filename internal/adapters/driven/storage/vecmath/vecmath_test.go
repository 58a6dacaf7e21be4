package vecmath

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/railkm/internal/core/domain"
)

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"scaled", []float32{1, 1}, []float32{3, 3}, 1},
		{"length mismatch", []float32{1, 2}, []float32{1}, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0},
		{"empty", nil, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Cosine(tt.a, tt.b), 1e-9)
		})
	}
}

func TestTopK(t *testing.T) {
	candidates := []domain.ScoredChunk{
		{Chunk: domain.Chunk{ID: "a#0"}, Score: 0.1},
		{Chunk: domain.Chunk{ID: "b#0"}, Score: 0.9},
		{Chunk: domain.Chunk{ID: "c#0"}, Score: 0.5},
		{Chunk: domain.Chunk{ID: "d#0"}, Score: 0.5},
	}

	got := TopK(candidates, 3)

	assert.Len(t, got, 3)
	assert.Equal(t, "b#0", got[0].Chunk.ID)
	assert.Equal(t, "c#0", got[1].Chunk.ID)
	assert.Equal(t, "d#0", got[2].Chunk.ID)
}

func TestTopK_NonPositiveK(t *testing.T) {
	got := TopK([]domain.ScoredChunk{{Score: 1}}, 0)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
