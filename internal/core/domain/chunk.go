package domain

import (
	"strconv"
	"strings"
)

// PreviewLength is the number of characters kept in a chunk preview.
const PreviewLength = 100

// Chunk is the atomic indexed entity.
type Chunk struct {
	// ID is the chunk_id, derived from the source file and the ordinal
	// position in that file's chunk sequence. It is NOT unique across
	// repeated indexing of the same file without a reset.
	ID string

	// Text is the chunk content that gets embedded.
	Text string

	// Metadata is the chunk's provenance.
	Metadata ChunkMetadata

	// Embedding is the vector representation, set just before insert.
	Embedding []float32
}

// ChunkMetadata holds typed provenance for a chunk.
type ChunkMetadata struct {
	// SourceFile is the corpus filename the chunk came from.
	SourceFile string

	// Locator is the page or article of the originating unit.
	Locator string

	// ArticleNumber is set for chunks of article-mode units.
	ArticleNumber string

	// Ordinal is the position within the file's chunk sequence.
	Ordinal int

	// Preview is the first PreviewLength characters of the text.
	Preview string

	// UploadBy is copied from the sidecar.
	UploadBy string

	// UploadAt is copied from the sidecar.
	UploadAt string

	// DocumentClass is copied from the sidecar.
	DocumentClass string

	// Description is copied from the sidecar.
	Description string
}

// ChunkID derives the chunk_id for the ordinal-th chunk of sourceFile.
func ChunkID(sourceFile string, ordinal int) string {
	return sourceFile + "#" + strconv.Itoa(ordinal)
}

// ParseChunkID splits a chunk_id back into source file and ordinal.
func ParseChunkID(id string) (string, int, bool) {
	i := strings.LastIndex(id, "#")
	if i <= 0 {
		return "", 0, false
	}
	n, err := strconv.Atoi(id[i+1:])
	if err != nil || n < 0 {
		return "", 0, false
	}
	return id[:i], n, true
}

// Preview returns the first PreviewLength characters of text.
// The result is always a prefix of text.
func Preview(text string) string {
	n := 0
	for i := range text {
		if n == PreviewLength {
			return text[:i]
		}
		n++
	}
	return text
}

// ApplyDocumentMetadata copies sidecar fields onto the chunk metadata.
func (m *ChunkMetadata) ApplyDocumentMetadata(meta *DocumentMetadata) {
	if meta == nil {
		return
	}
	m.UploadBy = meta.UploadBy
	m.UploadAt = meta.UploadAt
	m.DocumentClass = meta.DocumentClass
	m.Description = meta.Description
}

// ScoredChunk is a chunk returned by similarity search.
type ScoredChunk struct {
	Chunk Chunk

	// Score is the cosine similarity to the query. Higher is more similar.
	Score float64
}

// ChunkFilter is a typed predicate over chunk metadata.
// Empty fields match anything. A filter with every field empty is invalid.
type ChunkFilter struct {
	SourceFile    string
	DocumentClass string
	UploadBy      string
	ChunkID       string
}

// IsEmpty returns true if the filter constrains nothing.
func (f ChunkFilter) IsEmpty() bool {
	return f.SourceFile == "" && f.DocumentClass == "" && f.UploadBy == "" && f.ChunkID == ""
}

// Validate returns ErrInvalidFilter when the filter would match every chunk.
func (f ChunkFilter) Validate() error {
	if f.IsEmpty() {
		return ErrInvalidFilter
	}
	return nil
}

// Matches reports whether the chunk satisfies the filter.
func (f ChunkFilter) Matches(c *Chunk) bool {
	if f.SourceFile != "" && c.Metadata.SourceFile != f.SourceFile {
		return false
	}
	if f.DocumentClass != "" && c.Metadata.DocumentClass != f.DocumentClass {
		return false
	}
	if f.UploadBy != "" && c.Metadata.UploadBy != f.UploadBy {
		return false
	}
	if f.ChunkID != "" && c.ID != f.ChunkID {
		return false
	}
	return true
}
