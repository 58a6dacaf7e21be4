package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/railkm/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/railkm/internal/adapters/driven/storage/vecmath"
	"github.com/custodia-labs/railkm/internal/core/domain"
	"github.com/custodia-labs/railkm/internal/core/ports/driven"
)

// DBName is the database filename inside the index directory.
const DBName = "index.db"

// chunkColumns lists the columns read back into a domain.Chunk, in scan order.
const chunkColumns = `chunk_id, source_file, locator, article_number, ordinal, content, preview,
	upload_by, upload_at, document_class, description, embedding`

// Ensure Store implements the interface.
var _ driven.VectorIndex = (*Store)(nil)

// Store is a SQLite-based vector index.
type Store struct {
	mu   sync.RWMutex
	db   *sql.DB
	path string
}

// DefaultDir returns ~/.railkm/index.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".railkm", "index"), nil
}

// NewStore opens (or creates) the index at the specified directory.
// If dataDir is empty, defaults to ~/.railkm/index.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dataDir = dir
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, DBName)

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_chunks.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Writes ====================

// Insert stores chunks in a single transaction. Every row gets a fresh
// internal id, so chunks sharing a chunk ID are kept side by side.
func (s *Store) Insert(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.inTx(ctx, func(tx *sql.Tx) error {
		return insertRows(ctx, tx, chunks)
	})
}

// DeleteWhere removes every chunk matching the filter.
func (s *Store) DeleteWhere(ctx context.Context, filter domain.ChunkFilter) (int, error) {
	if err := filter.Validate(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return deleteRows(ctx, s.db, filter)
}

// Replace deletes the chunks matching filter and inserts chunks in the
// same transaction, so a failed insert leaves the old rows in place.
func (s *Store) Replace(ctx context.Context, filter domain.ChunkFilter, chunks []domain.Chunk) (int, error) {
	if err := filter.Validate(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		n, err := deleteRows(ctx, tx, filter)
		if err != nil {
			return err
		}
		removed = n
		return insertRows(ctx, tx, chunks)
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// inTx runs fn in a transaction, committing only if fn succeeds.
func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: beginning transaction: %v", domain.ErrIndexWrite, err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: committing chunks: %v", domain.ErrIndexWrite, err)
	}
	return nil
}

func insertRows(ctx context.Context, tx *sql.Tx, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, chunk_id, source_file, locator, article_number, ordinal,
			content, preview, upload_by, upload_at, document_class, description, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("%w: preparing insert: %v", domain.ErrIndexWrite, err)
	}
	defer stmt.Close()

	for i := range chunks {
		c := &chunks[i]
		m := &c.Metadata
		_, err := stmt.ExecContext(ctx,
			uuid.NewString(), c.ID, m.SourceFile, m.Locator, m.ArticleNumber, m.Ordinal,
			c.Text, m.Preview, m.UploadBy, m.UploadAt, m.DocumentClass, m.Description,
			float32SliceToBytes(c.Embedding),
		)
		if err != nil {
			return fmt.Errorf("%w: inserting chunk %s: %v", domain.ErrIndexWrite, c.ID, err)
		}
	}
	return nil
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func deleteRows(ctx context.Context, db execer, filter domain.ChunkFilter) (int, error) {
	where, args := filterClause(filter)

	res, err := db.ExecContext(ctx, "DELETE FROM chunks WHERE "+where, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: deleting chunks: %v", domain.ErrIndexWrite, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: counting deleted chunks: %v", domain.ErrIndexWrite, err)
	}
	return int(n), nil
}

// Reset removes every chunk.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, "DELETE FROM chunks"); err != nil {
		return fmt.Errorf("%w: resetting index: %v", domain.ErrIndexWrite, err)
	}
	return nil
}

// filterClause builds the WHERE clause for a validated filter.
func filterClause(f domain.ChunkFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(column, value string) {
		if value != "" {
			conds = append(conds, column+" = ?")
			args = append(args, value)
		}
	}
	add("source_file", f.SourceFile)
	add("document_class", f.DocumentClass)
	add("upload_by", f.UploadBy)
	add("chunk_id", f.ChunkID)
	return strings.Join(conds, " AND "), args
}

// ==================== Reads ====================

// Search scores every stored embedding against query and returns the
// k most similar chunks, highest score first.
func (s *Store) Search(ctx context.Context, query []float32, k int) ([]domain.ScoredChunk, error) {
	if k <= 0 {
		return []domain.ScoredChunk{}, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+chunkColumns+" FROM chunks WHERE embedding IS NOT NULL ORDER BY seq")
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var candidates []domain.ScoredChunk
	for rows.Next() {
		c, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, domain.ScoredChunk{
			Chunk: *c,
			Score: vecmath.Cosine(query, c.Embedding),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	return vecmath.TopK(candidates, k), nil
}

// Get returns every row carrying chunkID, in insertion order.
func (s *Store) Get(ctx context.Context, chunkID string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+chunkColumns+" FROM chunks WHERE chunk_id = ? ORDER BY seq", chunkID)
	if err != nil {
		return nil, fmt.Errorf("querying chunk %s: %w", chunkID, err)
	}
	defer rows.Close()

	var chunks []domain.Chunk
	for rows.Next() {
		c, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}
	return chunks, nil
}

// Count returns the number of stored chunks.
func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return n, nil
}

// CountBySource tallies stored chunks by source file.
func (s *Store) CountBySource(ctx context.Context) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.countBy(ctx, "source_file")
}

// Stats summarises the index contents.
func (s *Store) Stats(ctx context.Context) (*domain.IndexStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	perFile, err := s.countBy(ctx, "source_file")
	if err != nil {
		return nil, err
	}
	perClass, err := s.countBy(ctx, "document_class")
	if err != nil {
		return nil, err
	}

	stats := &domain.IndexStats{
		Documents: len(perFile),
		PerFile:   perFile,
		PerClass:  perClass,
	}
	for _, n := range perFile {
		stats.Chunks += n
	}
	return stats, nil
}

// countBy groups chunks by a column. Callers hold the read lock.
func (s *Store) countBy(ctx context.Context, column string) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+column+", COUNT(*) FROM chunks GROUP BY "+column)
	if err != nil {
		return nil, fmt.Errorf("counting chunks by %s: %w", column, err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			key string
			n   int
		)
		if err := rows.Scan(&key, &n); err != nil {
			return nil, fmt.Errorf("scanning count: %w", err)
		}
		counts[key] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating counts: %w", err)
	}
	return counts, nil
}

// ==================== Helpers ====================

// float32SliceToBytes converts a float32 slice to little-endian bytes.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts little-endian bytes back to a float32 slice.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}

// scanChunk reads one row selected with chunkColumns.
func scanChunk(rows *sql.Rows) (*domain.Chunk, error) {
	var (
		c         domain.Chunk
		m         = &c.Metadata
		embedding []byte
	)
	err := rows.Scan(&c.ID, &m.SourceFile, &m.Locator, &m.ArticleNumber, &m.Ordinal,
		&c.Text, &m.Preview, &m.UploadBy, &m.UploadAt, &m.DocumentClass, &m.Description,
		&embedding)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning chunk: %w", err)
	}
	c.Embedding = bytesToFloat32Slice(embedding)
	return &c, nil
}
