package segmenters

import (
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/railkm/internal/core/domain"
	"github.com/custodia-labs/railkm/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.SegmenterRegistry = (*Registry)(nil)

// Registry maps media types to segmenters.
type Registry struct {
	mu         sync.RWMutex
	segmenters map[domain.MediaType]driven.Segmenter
}

// NewRegistry creates a registry with the given segmenters registered.
func NewRegistry(segmenters ...driven.Segmenter) *Registry {
	r := &Registry{
		segmenters: make(map[domain.MediaType]driven.Segmenter),
	}
	for _, s := range segmenters {
		r.Register(s)
	}
	return r
}

// Register adds a segmenter for each of its media types.
// A later registration replaces an earlier one for the same type.
func (r *Registry) Register(s driven.Segmenter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, mt := range s.SupportedMediaTypes() {
		r.segmenters[mt] = s
	}
}

// Get returns the segmenter for a media type.
func (r *Registry) Get(mediaType domain.MediaType) (driven.Segmenter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.segmenters[mediaType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedType, mediaType)
	}
	return s, nil
}

// SupportedMediaTypes lists every registered media type in sorted order.
func (r *Registry) SupportedMediaTypes() []domain.MediaType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]domain.MediaType, 0, len(r.segmenters))
	for mt := range r.segmenters {
		types = append(types, mt)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}
