// Package vecmath holds the similarity scoring shared by the index adapters.
package vecmath

import (
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/custodia-labs/railkm/internal/core/domain"
)

// Cosine returns the cosine similarity of a and b in [-1, 1].
// Vectors of different length or with zero norm score 0.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	x, y := widen(a), widen(b)
	na, nb := floats.Norm(x, 2), floats.Norm(y, 2)
	if na == 0 || nb == 0 {
		return 0
	}
	return floats.Dot(x, y) / (na * nb)
}

// TopK sorts candidates by descending score and keeps the first k.
// Ties keep insertion order. k <= 0 returns nothing.
func TopK(candidates []domain.ScoredChunk, k int) []domain.ScoredChunk {
	if k <= 0 {
		return []domain.ScoredChunk{}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	if len(candidates) > k {
		candidates = candidates[:k]
	}
	return candidates
}

func widen(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, f := range v {
		out[i] = float64(f)
	}
	return out
}
