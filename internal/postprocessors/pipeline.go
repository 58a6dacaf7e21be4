// Package postprocessors turns segmented units into indexable chunks.
package postprocessors

import (
	"context"
	"fmt"

	"github.com/custodia-labs/railkm/internal/core/domain"
	"github.com/custodia-labs/railkm/internal/core/ports/driven"
	"github.com/custodia-labs/railkm/internal/logger"
)

var _ driven.PostProcessorPipeline = (*Pipeline)(nil)

// Pipeline runs post-processing stages over the units of one document.
// The chunks returned by a stage are the input of the next; the first
// stage starts from nil.
type Pipeline struct {
	stages []driven.PostProcessor
}

// NewPipeline creates a pipeline running stages in the given order.
func NewPipeline(stages ...driven.PostProcessor) *Pipeline {
	return &Pipeline{stages: stages}
}

// Process runs units through every stage.
func (p *Pipeline) Process(ctx context.Context, units []domain.Unit) ([]domain.Chunk, error) {
	var chunks []domain.Chunk
	for _, stage := range p.stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		out, err := stage.Process(ctx, units, chunks)
		if err != nil {
			return nil, fmt.Errorf("%s stage: %w", stage.Name(), err)
		}
		logger.Debug("Stage %s: %d units, %d chunks", stage.Name(), len(units), len(out))
		chunks = out
	}
	return chunks, nil
}

// Append adds a stage at the end of the pipeline.
func (p *Pipeline) Append(stage driven.PostProcessor) {
	p.stages = append(p.stages, stage)
}

// Stages returns the stage names in execution order.
func (p *Pipeline) Stages() []string {
	names := make([]string, 0, len(p.stages))
	for _, s := range p.stages {
		names = append(names, s.Name())
	}
	return names
}
