// Package chunker provides a recursive text chunking processor.
//
// Text is split on the highest-priority separator it contains (paragraph,
// then line, then sentence, then word) and the pieces are merged back
// into windows of at most the chunk size, with the tail of each window
// repeated at the start of the next. Pieces that are still too large are
// split again with the next separator, down to single characters.
package chunker

import (
	"context"
	"strings"

	"github.com/custodia-labs/railkm/internal/core/domain"
	"github.com/custodia-labs/railkm/internal/core/ports/driven"
)

// Ensure Processor implements the interface.
var _ driven.PostProcessor = (*Processor)(nil)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = domain.DefaultChunkSize

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = domain.DefaultChunkOverlap

// DefaultSeparators are tried in order. The empty separator splits
// between characters and always applies.
var DefaultSeparators = []string{"\n\n", "\n", ". ", " ", ""}

// Processor splits units into overlapping chunks.
// It implements the PostProcessor interface.
type Processor struct {
	chunkSize  int
	overlap    int
	separators []string
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// WithSeparators replaces the separator priority list.
// An empty final separator is appended if missing.
func WithSeparators(seps ...string) Option {
	return func(p *Processor) {
		if len(seps) == 0 {
			return
		}
		if seps[len(seps)-1] != "" {
			seps = append(seps, "")
		}
		p.separators = seps
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize:  DefaultChunkSize,
		overlap:    DefaultChunkOverlap,
		separators: DefaultSeparators,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Process chunks the units. Input chunks are ignored; this processor
// creates new chunks from unit text.
func (p *Processor) Process(ctx context.Context, units []domain.Unit, _ []domain.Chunk) ([]domain.Chunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p.Chunk(units), nil
}

// Chunk splits every unit into chunks. Each chunk inherits its unit's
// provenance; ordinals run across all units of the same source file, so
// chunk IDs are stable for identical input.
func (p *Processor) Chunk(units []domain.Unit) []domain.Chunk {
	var chunks []domain.Chunk
	ordinals := make(map[string]int)

	for i := range units {
		unit := &units[i]
		if strings.TrimSpace(unit.Text) == "" {
			continue
		}

		for _, text := range p.SplitText(unit.Text) {
			ordinal := ordinals[unit.SourceFile]
			ordinals[unit.SourceFile]++

			chunks = append(chunks, domain.Chunk{
				ID:   domain.ChunkID(unit.SourceFile, ordinal),
				Text: text,
				Metadata: domain.ChunkMetadata{
					SourceFile:    unit.SourceFile,
					Locator:       unit.Locator,
					ArticleNumber: unit.ArticleNumber,
					Ordinal:       ordinal,
					Preview:       domain.Preview(text),
				},
			})
		}
	}

	return chunks
}
