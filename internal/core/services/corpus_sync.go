package services

import (
	"context"
	"errors"

	"github.com/custodia-labs/railkm/internal/core/domain"
	"github.com/custodia-labs/railkm/internal/core/ports/driven"
	"github.com/custodia-labs/railkm/internal/core/ports/driving"
	"github.com/custodia-labs/railkm/internal/logger"
)

// CorpusSync keeps the index in step with the corpus directory.
type CorpusSync struct {
	watcher driven.CorpusWatcher
	index   driving.IndexService

	// onChange, if set, is called after each change is applied.
	onChange func(domain.FileChange, *domain.IndexReport, error)
}

// NewCorpusSync creates a sync loop over watcher events.
func NewCorpusSync(watcher driven.CorpusWatcher, index driving.IndexService) *CorpusSync {
	return &CorpusSync{watcher: watcher, index: index}
}

// OnChange registers a callback for applied changes.
func (s *CorpusSync) OnChange(fn func(domain.FileChange, *domain.IndexReport, error)) {
	s.onChange = fn
}

// Run applies changes until ctx is cancelled or the watcher stops.
// Failures on single files are logged and do not stop the loop.
func (s *CorpusSync) Run(ctx context.Context) error {
	changes, err := s.watcher.Watch(ctx)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case change, ok := <-changes:
			if !ok {
				return nil
			}
			report, err := s.apply(ctx, change)
			if err != nil {
				logger.Warn("Sync %s %s: %v", change.Type, change.Filename, err)
			}
			if s.onChange != nil {
				s.onChange(change, report, err)
			}
		}
	}
}

func (s *CorpusSync) apply(ctx context.Context, change domain.FileChange) (*domain.IndexReport, error) {
	switch change.Type {
	case domain.ChangeDeleted:
		if change.Path == "" {
			n, err := s.index.DeleteDocument(ctx, change.Filename)
			if errors.Is(err, domain.ErrNotFound) {
				return &domain.IndexReport{}, nil
			}
			if err != nil {
				return nil, err
			}
			logger.Info("Removed %d chunks of deleted %s", n, change.Filename)
			return &domain.IndexReport{}, nil
		}
		// Editors that save by rename emit a delete for a file that is
		// back on disk; PruneFile reindexes those instead.
		report, err := s.index.PruneFile(ctx, change.Path)
		if err != nil {
			return nil, err
		}
		logger.Info("Pruned deleted %s", change.Filename)
		return report, nil

	default:
		report, err := s.index.ReindexFile(ctx, change.Path)
		if err != nil {
			return nil, err
		}
		logger.Info("Reindexed %s: %d chunks", change.Filename, report.Indexed)
		return report, nil
	}
}
