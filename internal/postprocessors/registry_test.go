package postprocessors

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/railkm/internal/core/domain"
	"github.com/custodia-labs/railkm/internal/core/ports/driven"
)

type namedStage struct {
	name string
}

func (s *namedStage) Name() string { return s.name }
func (s *namedStage) Process(_ context.Context, _ []domain.Unit, chunks []domain.Chunk) ([]domain.Chunk, error) {
	return chunks, nil
}

func TestRegistry_BuildPassesDeps(t *testing.T) {
	r := NewRegistry()

	var got StageDeps
	r.Register("custom", func(deps StageDeps) (driven.PostProcessor, error) {
		got = deps
		return &namedStage{name: "custom"}, nil
	})

	stage, err := r.Build("custom", StageDeps{Chunking: domain.ChunkingSettings{ChunkSize: 300, Overlap: 30}})
	require.NoError(t, err)
	assert.Equal(t, "custom", stage.Name())
	assert.Equal(t, 300, got.Chunking.ChunkSize)
	assert.Equal(t, 30, got.Chunking.Overlap)
}

func TestRegistry_BuildUnknown(t *testing.T) {
	_, err := NewRegistry().Build("summariser", StageDeps{})
	assert.ErrorContains(t, err, `unknown post-processing stage "summariser"`)
}

func TestRegistry_RegisterReplaces(t *testing.T) {
	r := NewRegistry()
	r.Register("x", func(StageDeps) (driven.PostProcessor, error) { return &namedStage{name: "old"}, nil })
	r.Register("x", func(StageDeps) (driven.PostProcessor, error) { return &namedStage{name: "new"}, nil })

	stage, err := r.Build("x", StageDeps{})
	require.NoError(t, err)
	assert.Equal(t, "new", stage.Name())
	assert.Equal(t, []string{"x"}, r.Names())
}

func TestRegistry_NamesSorted(t *testing.T) {
	r := NewRegistry()
	assert.Empty(t, r.Names())

	RegisterDefaults(r)
	assert.Equal(t, []string{StageChunker, StageEnricher}, r.Names())
}

func TestRegistry_PipelineStopsOnUnknownStage(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)

	_, err := r.Pipeline([]string{StageChunker, "summariser"}, StageDeps{})
	assert.Error(t, err)
}

func TestBuildChunker(t *testing.T) {
	tests := []struct {
		name    string
		cfg     domain.ChunkingSettings
		wantErr bool
	}{
		{"unset keeps defaults", domain.ChunkingSettings{}, false},
		{"custom window", domain.ChunkingSettings{ChunkSize: 500, Overlap: 100}, false},
		{"zero overlap", domain.ChunkingSettings{ChunkSize: 500}, false},
		{"overlap not smaller than window", domain.ChunkingSettings{ChunkSize: 100, Overlap: 100}, true},
		{"negative overlap", domain.ChunkingSettings{ChunkSize: 100, Overlap: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stage, err := buildChunker(StageDeps{Chunking: tt.cfg})
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrConfiguration)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, StageChunker, stage.Name())
		})
	}
}
