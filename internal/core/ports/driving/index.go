package driving

import (
	"context"

	"github.com/custodia-labs/railkm/internal/core/domain"
)

// IndexService manages the lifecycle of indexed documents.
// All mutating operations are serialized.
type IndexService interface {
	// LoadAndIndex indexes every supported file under path (a directory or
	// a single file). Files that fail ingestion are skipped and reported.
	LoadAndIndex(ctx context.Context, path string) (*domain.IndexReport, error)

	// ListIndexedFiles maps each indexed filename to its chunk count.
	ListIndexedFiles(ctx context.Context) (map[string]int, error)

	// DeleteDocument removes a document's chunks from the index without
	// touching the corpus. Returns domain.ErrNotFound if nothing matched.
	DeleteDocument(ctx context.Context, filename string) (int, error)

	// RemoveDocument deletes a document's chunks, file and sidecar.
	RemoveDocument(ctx context.Context, filename string) error

	// AddDocument copies a file into the corpus with its sidecar and indexes it.
	AddDocument(ctx context.Context, srcPath string, meta domain.DocumentMetadata) (*domain.IndexReport, error)

	// ReviseChunk replaces the text of every chunk carrying chunkID.
	ReviseChunk(ctx context.Context, chunkID, text string) error

	// ReindexFile indexes the file again and swaps its old chunks for the
	// new ones; a file that no longer exists just loses its chunks. Used
	// when the corpus changes on disk.
	ReindexFile(ctx context.Context, path string) (*domain.IndexReport, error)

	// PruneFile handles a document deleted from disk: its chunks and the
	// sidecar left beside it are removed. A document that is back on disk
	// by the time this runs, as after an editor's save-by-rename, is
	// reindexed instead.
	PruneFile(ctx context.Context, path string) (*domain.IndexReport, error)

	// Reset wipes the index.
	Reset(ctx context.Context) error

	// ResetAndReindex wipes the index and reloads the whole corpus.
	ResetAndReindex(ctx context.Context) (*domain.IndexReport, error)

	// Stats summarises the index contents.
	Stats(ctx context.Context) (*domain.IndexStats, error)
}
