package driven

import (
	"context"

	"github.com/custodia-labs/railkm/internal/core/domain"
)

// PostProcessor turns the units of one document into chunks or refines
// chunks produced by an earlier processor.
type PostProcessor interface {
	// Name returns the processor name for logging and configuration.
	Name() string

	// Process receives the document's units and the chunks produced so far.
	// The first processor (the chunker) receives nil chunks and creates them.
	Process(ctx context.Context, units []domain.Unit, chunks []domain.Chunk) ([]domain.Chunk, error)
}

// PostProcessorPipeline chains multiple PostProcessors.
type PostProcessorPipeline interface {
	// Process runs the units through all processors in order.
	Process(ctx context.Context, units []domain.Unit) ([]domain.Chunk, error)
}
