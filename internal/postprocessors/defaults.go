package postprocessors

import (
	"fmt"

	"github.com/custodia-labs/railkm/internal/core/domain"
	"github.com/custodia-labs/railkm/internal/core/ports/driven"
	"github.com/custodia-labs/railkm/internal/postprocessors/chunker"
	"github.com/custodia-labs/railkm/internal/postprocessors/enricher"
)

// Built-in stage names.
const (
	StageChunker  = "chunker"
	StageEnricher = "enricher"
)

// IndexingStages is the stage order used when indexing a document:
// split units into chunks, then attach sidecar metadata.
var IndexingStages = []string{StageChunker, StageEnricher}

// RegisterDefaults registers the built-in stages.
func RegisterDefaults(r *Registry) {
	r.Register(StageChunker, buildChunker)
	r.Register(StageEnricher, func(deps StageDeps) (driven.PostProcessor, error) {
		return enricher.New(deps.Lookup), nil
	})
}

// NewDefaultPipeline builds the indexing pipeline from chunking settings.
// lookup may be nil, in which case chunks carry no sidecar fields.
func NewDefaultPipeline(chunking domain.ChunkingSettings, lookup driven.MetadataLookup) (*Pipeline, error) {
	r := NewRegistry()
	RegisterDefaults(r)
	return r.Pipeline(IndexingStages, StageDeps{Chunking: chunking, Lookup: lookup})
}

// buildChunker applies the chunking settings. An unset chunk size keeps
// the chunker's defaults.
func buildChunker(deps StageDeps) (driven.PostProcessor, error) {
	c := deps.Chunking
	if c.ChunkSize < 0 || c.Overlap < 0 {
		return nil, fmt.Errorf("%w: negative chunk size or overlap", domain.ErrConfiguration)
	}
	if c.ChunkSize > 0 && c.Overlap >= c.ChunkSize {
		return nil, fmt.Errorf("%w: overlap %d must be smaller than chunk size %d",
			domain.ErrConfiguration, c.Overlap, c.ChunkSize)
	}

	if c.ChunkSize == 0 {
		return chunker.New(), nil
	}
	return chunker.New(chunker.WithChunkSize(c.ChunkSize), chunker.WithOverlap(c.Overlap)), nil
}
