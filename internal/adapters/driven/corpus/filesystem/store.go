// Package filesystem stores the document corpus in a local directory.
//
// Each document may have a sidecar {name}.{ext}.meta.json next to it
// describing who uploaded it and what kind of document it is.
package filesystem

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/custodia-labs/railkm/internal/core/domain"
	"github.com/custodia-labs/railkm/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.CorpusStore = (*Store)(nil)

// Store is a directory-backed corpus.
type Store struct {
	dir string
	now func() time.Time
}

// New creates a corpus store rooted at dir. The directory is created
// on first write.
func New(dir string) *Store {
	return &Store{dir: dir, now: time.Now}
}

// Dir returns the corpus directory.
func (s *Store) Dir() string {
	return s.dir
}

// List returns every supported document under path, sorted.
// Hidden entries and sidecars are skipped.
func (s *Store) List(ctx context.Context, path string) ([]string, error) {
	if path == "" {
		path = s.dir
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, path)
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	if !info.IsDir() {
		if domain.MediaTypeFromFilename(path) == "" {
			return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedType, filepath.Base(path))
		}
		return []string{path}, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if p != path && isHidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if domain.MediaTypeFromFilename(d.Name()) != "" {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", path, err)
	}

	sort.Strings(files)
	return files, nil
}

// Read loads a document from disk.
func (s *Store) Read(_ context.Context, path string) (*domain.RawDocument, error) {
	name := filepath.Base(path)
	mediaType := domain.MediaTypeFromFilename(name)
	if mediaType == "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedType, name)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, &domain.IngestionError{File: name, Err: err}
	}

	return &domain.RawDocument{
		Filename:  name,
		Path:      path,
		MediaType: mediaType,
		Content:   content,
	}, nil
}

// Add copies srcPath into the corpus root and writes its sidecar.
// Filename and a missing UploadAt are filled in.
func (s *Store) Add(ctx context.Context, srcPath string, meta domain.DocumentMetadata) (string, error) {
	name := filepath.Base(srcPath)
	if domain.MediaTypeFromFilename(name) == "" {
		return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedType, name)
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("creating corpus directory: %w", err)
	}

	dst := filepath.Join(s.dir, name)
	if err := copyFile(srcPath, dst); err != nil {
		return "", err
	}

	meta.Filename = name
	if meta.UploadAt == "" {
		meta.UploadAt = s.now().UTC().Format(domain.UploadTimeFormat)
	}
	if err := s.WriteMetadata(ctx, meta); err != nil {
		return "", err
	}

	return dst, nil
}

// WriteMetadata writes the sidecar next to the document.
func (s *Store) WriteMetadata(_ context.Context, meta domain.DocumentMetadata) error {
	if meta.Filename == "" {
		return fmt.Errorf("%w: metadata without filename", domain.ErrInvalidInput)
	}

	dir := s.dir
	if p, ok := s.locate(meta.Filename); ok {
		dir = filepath.Dir(p)
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling metadata: %w", err)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating corpus directory: %w", err)
	}
	path := filepath.Join(dir, domain.SidecarName(meta.Filename))
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("writing metadata: %w", err)
	}
	return nil
}

// Lookup returns the sidecar for filename, or nil when there is none.
func (s *Store) Lookup(_ context.Context, filename string) (*domain.DocumentMetadata, error) {
	dir := s.dir
	if p, ok := s.locate(filename); ok {
		dir = filepath.Dir(p)
	}

	data, err := os.ReadFile(filepath.Join(dir, domain.SidecarName(filename)))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading metadata for %s: %w", filename, err)
	}

	var meta domain.DocumentMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parsing metadata for %s: %w", filename, err)
	}
	if meta.Filename == "" {
		meta.Filename = filename
	}
	return &meta, nil
}

// Remove deletes a document and its sidecar.
func (s *Store) Remove(_ context.Context, filename string) error {
	docPath := filepath.Join(s.dir, filename)
	if p, ok := s.locate(filename); ok {
		docPath = p
	}
	sidecar := filepath.Join(filepath.Dir(docPath), domain.SidecarName(filename))

	removed := false
	for _, p := range []string{docPath, sidecar} {
		err := os.Remove(p)
		switch {
		case err == nil:
			removed = true
		case errors.Is(err, fs.ErrNotExist):
		default:
			return fmt.Errorf("removing %s: %w", p, err)
		}
	}

	if !removed {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, filename)
	}
	return nil
}

// RemoveOrphanMetadata deletes the sidecar of a document that is gone.
func (s *Store) RemoveOrphanMetadata(_ context.Context, docPath string) (bool, error) {
	if !filepath.IsAbs(docPath) {
		docPath = filepath.Join(s.dir, docPath)
	}
	if _, err := os.Stat(docPath); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("checking %s: %w", docPath, err)
	}

	sidecar := filepath.Join(filepath.Dir(docPath), domain.SidecarName(filepath.Base(docPath)))
	err := os.Remove(sidecar)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("removing %s: %w", sidecar, err)
	}
}

// locate finds a document by base name, preferring the corpus root.
func (s *Store) locate(filename string) (string, bool) {
	root := filepath.Join(s.dir, filename)
	if info, err := os.Stat(root); err == nil && !info.IsDir() {
		return root, true
	}

	var found string
	_ = filepath.WalkDir(s.dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || found != "" {
			return filepath.SkipDir
		}
		if p != s.dir && isHidden(d.Name()) && d.IsDir() {
			return filepath.SkipDir
		}
		if !d.IsDir() && d.Name() == filename {
			found = p
			return filepath.SkipAll
		}
		return nil
	})
	return found, found != ""
}

func copyFile(src, dst string) error {
	if same, err := samePath(src, dst); err == nil && same {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copying %s: %w", src, err)
	}
	return out.Close()
}

func samePath(a, b string) (bool, error) {
	absA, err := filepath.Abs(a)
	if err != nil {
		return false, err
	}
	absB, err := filepath.Abs(b)
	if err != nil {
		return false, err
	}
	return absA == absB, nil
}

// isHidden reports whether a path element is a dot-file or dot-directory.
func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}
