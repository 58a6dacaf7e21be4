package driven

import (
	"context"

	"github.com/custodia-labs/railkm/internal/core/domain"
)

// Segmenter splits a raw document into ordered units.
// Each segmenter handles specific media types.
type Segmenter interface {
	// SupportedMediaTypes returns the media types this segmenter handles.
	SupportedMediaTypes() []domain.MediaType

	// Segment splits the document. A document without extractable text
	// yields zero units and no error. Unreadable input returns an error.
	Segment(ctx context.Context, raw *domain.RawDocument) ([]domain.Unit, error)
}

// SegmenterRegistry selects the segmenter for a media type.
type SegmenterRegistry interface {
	// Register adds a segmenter for each of its media types.
	Register(s Segmenter)

	// Get returns the segmenter for a media type.
	// Returns domain.ErrUnsupportedType when none is registered.
	Get(mediaType domain.MediaType) (Segmenter, error)

	// SupportedMediaTypes lists every registered media type.
	SupportedMediaTypes() []domain.MediaType
}
