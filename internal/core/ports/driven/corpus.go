package driven

import (
	"context"

	"github.com/custodia-labs/railkm/internal/core/domain"
)

// MetadataLookup resolves sidecar metadata for a corpus filename.
type MetadataLookup interface {
	// Lookup returns the sidecar for filename, or nil when there is none.
	// An error means the sidecar exists but could not be read.
	Lookup(ctx context.Context, filename string) (*domain.DocumentMetadata, error)
}

// CorpusStore manages the corpus directory: documents and their sidecars.
type CorpusStore interface {
	MetadataLookup

	// Dir returns the corpus directory.
	Dir() string

	// List returns the paths of all supported documents under path,
	// which may be a directory (walked recursively) or a single file.
	List(ctx context.Context, path string) ([]string, error)

	// Read loads a document from disk.
	Read(ctx context.Context, path string) (*domain.RawDocument, error)

	// Add copies a document into the corpus and writes its sidecar.
	// Returns the path of the stored document.
	Add(ctx context.Context, srcPath string, meta domain.DocumentMetadata) (string, error)

	// WriteMetadata writes the sidecar for a document already in the corpus.
	WriteMetadata(ctx context.Context, meta domain.DocumentMetadata) error

	// RemoveOrphanMetadata deletes the sidecar beside docPath when the
	// document itself no longer exists. It reports whether a sidecar was
	// removed; a document still present leaves its sidecar untouched.
	RemoveOrphanMetadata(ctx context.Context, docPath string) (bool, error)

	// Remove deletes a document and its sidecar from the corpus.
	// Returns domain.ErrNotFound when neither exists.
	Remove(ctx context.Context, filename string) error
}
