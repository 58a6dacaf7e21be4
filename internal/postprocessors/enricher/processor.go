// Package enricher attaches sidecar metadata to chunks.
package enricher

import (
	"context"

	"github.com/custodia-labs/railkm/internal/core/domain"
	"github.com/custodia-labs/railkm/internal/core/ports/driven"
	"github.com/custodia-labs/railkm/internal/logger"
)

// Ensure Processor implements the interface.
var _ driven.PostProcessor = (*Processor)(nil)

// Processor copies upload_by, upload_at, document_class and description
// from each source file's sidecar onto its chunks.
type Processor struct {
	lookup driven.MetadataLookup
}

// New creates an enricher. A nil lookup makes the processor a passthrough.
func New(lookup driven.MetadataLookup) *Processor {
	return &Processor{lookup: lookup}
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "enricher"
}

// Process enriches chunks in place. A sidecar that cannot be read is
// logged and skipped; the chunks are still indexed without it.
func (p *Processor) Process(ctx context.Context, _ []domain.Unit, chunks []domain.Chunk) ([]domain.Chunk, error) {
	if p.lookup == nil || len(chunks) == 0 {
		return chunks, nil
	}

	cache := make(map[string]*domain.DocumentMetadata)

	for i := range chunks {
		file := chunks[i].Metadata.SourceFile
		meta, seen := cache[file]
		if !seen {
			var err error
			meta, err = p.lookup.Lookup(ctx, file)
			if err != nil {
				logger.Warn("Skipping metadata for %s: %v", file, err)
				meta = nil
			}
			cache[file] = meta
		}
		chunks[i].Metadata.ApplyDocumentMetadata(meta)
	}

	return chunks, nil
}
