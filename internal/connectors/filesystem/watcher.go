// Package filesystem watches a corpus directory for document changes.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/railkm/internal/core/domain"
	"github.com/custodia-labs/railkm/internal/core/ports/driven"
	"github.com/custodia-labs/railkm/internal/logger"
)

// DefaultDebounce is how long a path must stay quiet before its change is emitted.
const DefaultDebounce = 500 * time.Millisecond

// Ensure Watcher implements the interface.
var _ driven.CorpusWatcher = (*Watcher)(nil)

// Watcher reports created, updated and deleted corpus documents.
// Editing a sidecar is reported as an update of its document.
type Watcher struct {
	rootPath string
	debounce time.Duration

	mu      sync.Mutex
	closed  bool
	watcher *fsnotify.Watcher
}

// Option configures the watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period per path.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// New creates a watcher for rootPath.
func New(rootPath string, opts ...Option) *Watcher {
	w := &Watcher{
		rootPath: rootPath,
		debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Watch starts watching rootPath and its subdirectories.
func (w *Watcher) Watch(ctx context.Context) (<-chan domain.FileChange, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil, errors.New("watcher is closed")
	}

	info, err := os.Stat(w.rootPath)
	if err != nil {
		return nil, fmt.Errorf("root path error: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root path error: %s is not a directory", w.rootPath)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	if err := addTree(fw, w.rootPath); err != nil {
		fw.Close()
		return nil, err
	}

	if w.watcher != nil {
		w.watcher.Close()
	}
	w.watcher = fw

	out := make(chan domain.FileChange)
	go w.loop(ctx, fw, out)
	return out, nil
}

// Close stops watching. It is safe to call more than once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	if w.watcher != nil {
		return w.watcher.Close()
	}
	return nil
}

// loop owns the pending map; timers only signal which path fired.
func (w *Watcher) loop(ctx context.Context, fw *fsnotify.Watcher, out chan<- domain.FileChange) {
	pending := make(map[string]*time.Timer)
	changes := make(map[string]domain.FileChange)
	fired := make(chan string)
	done := make(chan struct{})

	defer func() {
		close(done)
		for _, t := range pending {
			t.Stop()
		}
		fw.Close()
		close(out)
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fw.Events:
			if !ok {
				return
			}

			if event.Op&fsnotify.Create != 0 && !w.hidden(event.Name) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := addTree(fw, event.Name); err != nil {
						logger.Warn("Cannot watch %s: %v", event.Name, err)
					}
					continue
				}
			}

			change := w.handleFsEvent(event)
			if change == nil {
				continue
			}

			if prev, ok := changes[change.Path]; ok {
				change = mergeChange(prev, *change)
			}
			changes[change.Path] = *change

			if t, ok := pending[change.Path]; ok {
				t.Stop()
			}
			path := change.Path
			pending[path] = time.AfterFunc(w.debounce, func() {
				select {
				case fired <- path:
				case <-done:
				}
			})

		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			logger.Warn("Watcher error: %v", err)

		case path := <-fired:
			change, ok := changes[path]
			delete(changes, path)
			delete(pending, path)
			if !ok {
				continue
			}
			logger.Debug("Corpus change: %s %s", change.Type, change.Filename)
			select {
			case out <- change:
			case <-ctx.Done():
				return
			}
		}
	}
}

// handleFsEvent converts a raw event into a document change, or nil when
// the event is irrelevant (directories, hidden files, unsupported types, chmod).
func (w *Watcher) handleFsEvent(event fsnotify.Event) *domain.FileChange {
	if w.hidden(event.Name) {
		return nil
	}

	path := event.Name
	name := filepath.Base(path)

	// A sidecar edit re-indexes the document it describes.
	if domain.IsSidecar(name) {
		if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
			return nil
		}
		docName := name[:len(name)-len(domain.SidecarSuffix)]
		if domain.MediaTypeFromFilename(docName) == "" {
			return nil
		}
		return &domain.FileChange{
			Type:     domain.ChangeUpdated,
			Path:     filepath.Join(filepath.Dir(path), docName),
			Filename: docName,
		}
	}

	if domain.MediaTypeFromFilename(name) == "" {
		return nil
	}

	change := &domain.FileChange{Path: path, Filename: name}
	switch {
	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		change.Type = domain.ChangeDeleted
	case event.Op&fsnotify.Create != 0:
		if info, err := os.Stat(path); err != nil || info.IsDir() {
			return nil
		}
		change.Type = domain.ChangeCreated
	case event.Op&fsnotify.Write != 0:
		change.Type = domain.ChangeUpdated
	default:
		return nil
	}
	return change
}

// hidden reports whether any element of path below the root is hidden.
func (w *Watcher) hidden(path string) bool {
	rel, err := filepath.Rel(w.rootPath, path)
	if err != nil {
		rel = path
	}
	return isHidden(rel)
}

// mergeChange folds a new event into the one already pending for a path.
func mergeChange(prev, next domain.FileChange) *domain.FileChange {
	if prev.Type == domain.ChangeCreated && next.Type == domain.ChangeUpdated {
		next.Type = domain.ChangeCreated
	}
	return &next
}

// addTree watches dir and every non-hidden directory below it.
func addTree(fw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != dir && isHidden(d.Name()) {
			return filepath.SkipDir
		}
		if err := fw.Add(p); err != nil {
			return fmt.Errorf("watching %s: %w", p, err)
		}
		return nil
	})
}

// isHidden reports whether any element of path starts with a dot.
// "." and ".." are not hidden.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if strings.HasPrefix(part, ".") && part != "." && part != ".." {
			return true
		}
	}
	return false
}
