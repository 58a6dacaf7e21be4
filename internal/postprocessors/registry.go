package postprocessors

import (
	"fmt"
	"sort"

	"github.com/custodia-labs/railkm/internal/core/domain"
	"github.com/custodia-labs/railkm/internal/core/ports/driven"
)

// StageDeps is what a stage builder can draw on.
type StageDeps struct {
	Chunking domain.ChunkingSettings

	// Lookup resolves sidecar metadata. May be nil.
	Lookup driven.MetadataLookup
}

// StageBuilder creates a post-processing stage.
type StageBuilder func(deps StageDeps) (driven.PostProcessor, error)

// Registry maps stage names to builders.
type Registry struct {
	builders map[string]StageBuilder
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{builders: make(map[string]StageBuilder)}
}

// Register adds or replaces the builder for name.
func (r *Registry) Register(name string, b StageBuilder) {
	r.builders[name] = b
}

// Build creates the stage registered under name.
func (r *Registry) Build(name string, deps StageDeps) (driven.PostProcessor, error) {
	b, ok := r.builders[name]
	if !ok {
		return nil, fmt.Errorf("unknown post-processing stage %q", name)
	}
	stage, err := b(deps)
	if err != nil {
		return nil, fmt.Errorf("building stage %s: %w", name, err)
	}
	return stage, nil
}

// Pipeline builds the named stages, in order, sharing one set of deps.
func (r *Registry) Pipeline(names []string, deps StageDeps) (*Pipeline, error) {
	p := NewPipeline()
	for _, name := range names {
		stage, err := r.Build(name, deps)
		if err != nil {
			return nil, err
		}
		p.Append(stage)
	}
	return p, nil
}

// Names returns the registered stage names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
