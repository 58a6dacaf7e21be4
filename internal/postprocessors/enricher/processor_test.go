package enricher

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/railkm/internal/core/domain"
)

type mockLookup struct {
	meta  map[string]*domain.DocumentMetadata
	err   error
	calls map[string]int
}

func (m *mockLookup) Lookup(_ context.Context, filename string) (*domain.DocumentMetadata, error) {
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[filename]++
	if m.err != nil {
		return nil, m.err
	}
	return m.meta[filename], nil
}

func chunksFor(files ...string) []domain.Chunk {
	chunks := make([]domain.Chunk, len(files))
	for i, f := range files {
		chunks[i] = domain.Chunk{ID: domain.ChunkID(f, i), Metadata: domain.ChunkMetadata{SourceFile: f}}
	}
	return chunks
}

func TestProcessor_Name(t *testing.T) {
	assert.Equal(t, "enricher", New(nil).Name())
}

func TestProcess_AppliesSidecar(t *testing.T) {
	lookup := &mockLookup{meta: map[string]*domain.DocumentMetadata{
		"uu.pdf": {
			Filename:      "uu.pdf",
			UploadBy:      "admin",
			UploadAt:      "2024-01-02T03:04:05Z",
			DocumentClass: "regulation",
			Description:   "Undang-undang perkeretaapian",
		},
	}}

	chunks, err := New(lookup).Process(context.Background(), nil, chunksFor("uu.pdf", "uu.pdf", "notes.txt"))
	require.NoError(t, err)
	require.Len(t, chunks, 3)

	assert.Equal(t, "admin", chunks[0].Metadata.UploadBy)
	assert.Equal(t, "regulation", chunks[1].Metadata.DocumentClass)
	assert.Equal(t, "Undang-undang perkeretaapian", chunks[1].Metadata.Description)
	assert.Empty(t, chunks[2].Metadata.UploadBy)

	// one lookup per file per call
	assert.Equal(t, 1, lookup.calls["uu.pdf"])
	assert.Equal(t, 1, lookup.calls["notes.txt"])
}

func TestProcess_LookupErrorIsNotFatal(t *testing.T) {
	lookup := &mockLookup{err: errors.New("bad json")}

	chunks, err := New(lookup).Process(context.Background(), nil, chunksFor("a.txt"))
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Empty(t, chunks[0].Metadata.DocumentClass)
}

func TestProcess_NilLookupPassthrough(t *testing.T) {
	in := chunksFor("a.txt")
	out, err := New(nil).Process(context.Background(), nil, in)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}
