package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/railkm/internal/core/domain"
	"github.com/custodia-labs/railkm/internal/logger"
)

// reasonNoText is recorded for files that segment into nothing.
const reasonNoText = "no extractable text"

// LoadAndIndex indexes every supported file under path.
// Read and segmentation failures skip the file. An embedding failure
// aborts the batch before anything is written.
func (e *RAGEngine) LoadAndIndex(ctx context.Context, path string) (*domain.IndexReport, error) {
	logger.Section("Index")
	defer logger.Timed("index")()

	e.mu.Lock()
	defer e.mu.Unlock()

	paths, err := e.corpus.List(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return e.indexPaths(ctx, paths)
}

// ReindexFile indexes a file again if it still exists, replacing its old
// chunks so a changed file never leaves duplicate chunk IDs behind. The
// new chunks are embedded before anything is removed, so an embedding
// failure leaves the previous chunks searchable.
func (e *RAGEngine) ReindexFile(ctx context.Context, path string) (*domain.IndexReport, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.reindexFile(ctx, path)
}

func (e *RAGEngine) reindexFile(ctx context.Context, path string) (*domain.IndexReport, error) {
	filename := filepath.Base(path)

	paths, err := e.corpus.List(ctx, path)
	if errors.Is(err, domain.ErrNotFound) {
		removed, err := e.deleteChunks(ctx, filename)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		logger.Debug("Dropped %d chunks of missing %s", removed, filename)
		return &domain.IndexReport{Files: []string{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return e.replacePaths(ctx, filename, paths)
}

// PruneFile drops the chunks and orphaned sidecar of a document deleted
// from disk. A document that exists again is reindexed instead.
func (e *RAGEngine) PruneFile(ctx context.Context, path string) (*domain.IndexReport, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	report, err := e.reindexFile(ctx, path)
	if err != nil {
		return nil, err
	}
	if len(report.Files) > 0 || len(report.Skipped) > 0 {
		return report, nil
	}

	orphan, err := e.corpus.RemoveOrphanMetadata(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("prune %s: %w", filepath.Base(path), err)
	}
	if orphan {
		logger.Info("Removed sidecar of deleted %s", filepath.Base(path))
	}
	return report, nil
}

// indexPaths runs the ingestion pipeline over paths and appends the
// result to the index. Caller must hold the write lock.
func (e *RAGEngine) indexPaths(ctx context.Context, paths []string) (*domain.IndexReport, error) {
	chunks, report, err := e.collect(ctx, paths)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return report, nil
	}

	if err := e.index.Insert(ctx, chunks); err != nil {
		return nil, fmt.Errorf("insert chunks: %w", err)
	}

	report.Indexed = len(chunks)
	logger.Info("Indexed %d chunks from %d files (%d skipped)", report.Indexed, len(report.Files), len(report.Skipped))
	return report, nil
}

// replacePaths ingests paths and swaps them in for every chunk of filename
// in one index write. Nothing is removed until the new chunks are embedded.
// Caller must hold the write lock.
func (e *RAGEngine) replacePaths(ctx context.Context, filename string, paths []string) (*domain.IndexReport, error) {
	chunks, report, err := e.collect(ctx, paths)
	if err != nil {
		return nil, err
	}

	removed, err := e.index.Replace(ctx, domain.ChunkFilter{SourceFile: filename}, chunks)
	if err != nil {
		return nil, fmt.Errorf("replace chunks of %s: %w", filename, err)
	}

	report.Indexed = len(chunks)
	logger.Info("Replaced %d chunks of %s with %d", removed, filename, report.Indexed)
	return report, nil
}

// collect reads, chunks and embeds paths without touching the index.
// Per-file read and segmentation failures are recorded as skipped.
func (e *RAGEngine) collect(ctx context.Context, paths []string) ([]domain.Chunk, *domain.IndexReport, error) {
	report := &domain.IndexReport{Files: []string{}}
	if len(paths) == 0 {
		logger.Info("No supported documents found")
		return nil, report, nil
	}

	var chunks []domain.Chunk
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		fileChunks, err := e.prepare(ctx, path)
		if err != nil {
			if ctx.Err() != nil {
				return nil, nil, ctx.Err()
			}
			logger.Warn("Skipping %s: %v", path, err)
			report.Skipped = append(report.Skipped, domain.SkippedFile{File: filepath.Base(path), Reason: err.Error()})
			continue
		}
		if len(fileChunks) == 0 {
			logger.Warn("Skipping %s: %s", path, reasonNoText)
			report.Skipped = append(report.Skipped, domain.SkippedFile{File: filepath.Base(path), Reason: reasonNoText})
			continue
		}

		chunks = append(chunks, fileChunks...)
		report.Files = append(report.Files, filepath.Base(path))
	}

	if len(chunks) == 0 {
		return nil, report, nil
	}
	if err := e.embedChunks(ctx, chunks); err != nil {
		return nil, nil, err
	}
	return chunks, report, nil
}

// prepare reads, segments and chunks one file. Every failure is an IngestionError.
func (e *RAGEngine) prepare(ctx context.Context, path string) ([]domain.Chunk, error) {
	raw, err := e.corpus.Read(ctx, path)
	if err != nil {
		return nil, ingestionError(path, err)
	}

	segmenter, err := e.segmenters.Get(raw.MediaType)
	if err != nil {
		return nil, ingestionError(raw.Filename, err)
	}

	units, err := segmenter.Segment(ctx, raw)
	if err != nil {
		return nil, ingestionError(raw.Filename, fmt.Errorf("segment: %w", err))
	}
	logger.Debug("%s: %d units", raw.Filename, len(units))

	chunks, err := e.pipeline.Process(ctx, units)
	if err != nil {
		return nil, ingestionError(raw.Filename, fmt.Errorf("chunk: %w", err))
	}
	return chunks, nil
}

func ingestionError(file string, err error) error {
	var ie *domain.IngestionError
	if errors.As(err, &ie) {
		return err
	}
	return &domain.IngestionError{File: filepath.Base(file), Err: err}
}

// embedChunks sets the embedding of every chunk in provider-sized batches.
func (e *RAGEngine) embedChunks(ctx context.Context, chunks []domain.Chunk) error {
	for start := 0; start < len(chunks); start += embedBatchSize {
		end := min(start+embedBatchSize, len(chunks))

		texts := make([]string, end-start)
		for i := range texts {
			texts[i] = chunks[start+i].Text
		}

		vectors, err := e.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed chunks: %w", err)
		}
		if len(vectors) != len(texts) {
			return fmt.Errorf("embed chunks: %w", &domain.ProviderError{
				Provider: e.embedder.ModelName(),
				Op:       "embed",
				Err:      fmt.Errorf("expected %d embeddings, got %d", len(texts), len(vectors)),
			})
		}
		for i, v := range vectors {
			chunks[start+i].Embedding = v
		}
	}
	return nil
}

// ListIndexedFiles maps each indexed filename to its chunk count.
func (e *RAGEngine) ListIndexedFiles(ctx context.Context) (map[string]int, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	counts, err := e.index.CountBySource(ctx)
	if err != nil {
		return nil, fmt.Errorf("list indexed files: %w", err)
	}
	return counts, nil
}

// DeleteDocument removes a document's chunks from the index without
// touching the corpus. A filename without chunks is ErrNotFound.
func (e *RAGEngine) DeleteDocument(ctx context.Context, filename string) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.deleteChunks(ctx, filename)
}

func (e *RAGEngine) deleteChunks(ctx context.Context, filename string) (int, error) {
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return 0, fmt.Errorf("%w: filename is required", domain.ErrInvalidInput)
	}

	n, err := e.index.DeleteWhere(ctx, domain.ChunkFilter{SourceFile: filename})
	if err != nil {
		return 0, fmt.Errorf("delete %s: %w", filename, err)
	}
	if n == 0 {
		return 0, fmt.Errorf("document %s: %w", filename, domain.ErrNotFound)
	}
	logger.Info("Deleted %d chunks of %s", n, filename)
	return n, nil
}

// RemoveDocument deletes a document's chunks, file and sidecar.
// A file that was never indexed is still removed from disk.
func (e *RAGEngine) RemoveDocument(ctx context.Context, filename string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	removed, err := e.deleteChunks(ctx, filename)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	if err := e.corpus.Remove(ctx, filename); err != nil {
		if errors.Is(err, domain.ErrNotFound) && removed > 0 {
			return nil
		}
		return fmt.Errorf("remove %s: %w", filename, err)
	}
	return nil
}

// AddDocument copies a file into the corpus with its sidecar and indexes it.
// A document of the same name is replaced; its old chunks stay in the index
// until the new ones are embedded.
func (e *RAGEngine) AddDocument(ctx context.Context, srcPath string, meta domain.DocumentMetadata) (*domain.IndexReport, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if domain.MediaTypeFromFilename(srcPath) == "" {
		return nil, fmt.Errorf("add %s: %w", filepath.Base(srcPath), domain.ErrUnsupportedType)
	}

	stored, err := e.corpus.Add(ctx, srcPath, meta)
	if err != nil {
		return nil, fmt.Errorf("add document: %w", err)
	}

	report, err := e.replacePaths(ctx, filepath.Base(stored), []string{stored})
	if err != nil {
		return nil, err
	}
	if len(report.Skipped) > 0 {
		return report, &domain.IngestionError{File: report.Skipped[0].File, Err: errors.New(report.Skipped[0].Reason)}
	}
	return report, nil
}

// ReviseChunk replaces the text of every chunk carrying chunkID, keeping
// its metadata and recomputing preview and embedding.
func (e *RAGEngine) ReviseChunk(ctx context.Context, chunkID, text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: revised text is empty", domain.ErrInvalidInput)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	existing, err := e.index.Get(ctx, chunkID)
	if err != nil {
		return fmt.Errorf("get chunk %s: %w", chunkID, err)
	}
	if len(existing) == 0 {
		return fmt.Errorf("chunk %s: %w", chunkID, domain.ErrNotFound)
	}

	vec, err := e.embedder.Embed(ctx, text)
	if err != nil {
		return fmt.Errorf("embed revision: %w", err)
	}

	revised := make([]domain.Chunk, len(existing))
	for i, c := range existing {
		c.Text = text
		c.Metadata.Preview = domain.Preview(text)
		c.Embedding = vec
		revised[i] = c
	}

	if _, err := e.index.DeleteWhere(ctx, domain.ChunkFilter{ChunkID: chunkID}); err != nil {
		return fmt.Errorf("delete chunk %s: %w", chunkID, err)
	}
	if err := e.index.Insert(ctx, revised); err != nil {
		if restoreErr := e.index.Insert(ctx, existing); restoreErr != nil {
			logger.Error("Restoring chunk %s failed: %v", chunkID, restoreErr)
		}
		return fmt.Errorf("insert revision: %w", err)
	}

	logger.Info("Revised %d chunks with id %s", len(revised), chunkID)
	return nil
}

// Reset wipes the index.
func (e *RAGEngine) Reset(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.index.Reset(ctx); err != nil {
		return fmt.Errorf("reset index: %w", err)
	}
	logger.Info("Index reset")
	return nil
}

// ResetAndReindex wipes the index and reloads the whole corpus.
func (e *RAGEngine) ResetAndReindex(ctx context.Context) (*domain.IndexReport, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.index.Reset(ctx); err != nil {
		return nil, fmt.Errorf("reset index: %w", err)
	}

	paths, err := e.corpus.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return e.indexPaths(ctx, paths)
}

// Stats summarises the index contents.
func (e *RAGEngine) Stats(ctx context.Context) (*domain.IndexStats, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	stats, err := e.index.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("index stats: %w", err)
	}
	return stats, nil
}
