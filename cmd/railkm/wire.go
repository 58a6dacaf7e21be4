package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/railkm/internal/adapters/driven/ai"
	"github.com/custodia-labs/railkm/internal/adapters/driven/config/file"
	corpusfs "github.com/custodia-labs/railkm/internal/adapters/driven/corpus/filesystem"
	"github.com/custodia-labs/railkm/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/railkm/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/railkm/internal/adapters/driving/cli"
	watchfs "github.com/custodia-labs/railkm/internal/connectors/filesystem"
	"github.com/custodia-labs/railkm/internal/core/domain"
	"github.com/custodia-labs/railkm/internal/core/ports/driven"
	"github.com/custodia-labs/railkm/internal/core/services"
	"github.com/custodia-labs/railkm/internal/logger"
	"github.com/custodia-labs/railkm/internal/postprocessors"
	"github.com/custodia-labs/railkm/internal/segmenters"
	"github.com/custodia-labs/railkm/internal/segmenters/pdf"
	"github.com/custodia-labs/railkm/internal/segmenters/plaintext"
)

// closableIndex is a vector index that owns resources.
type closableIndex interface {
	driven.VectorIndex
	Close() error
}

// bootstrap wires the application for one command invocation.
func bootstrap(ctx context.Context, opts cli.Options) (*cli.Services, error) {
	store, err := file.NewSettingsStore(opts.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("opening settings: %w", err)
	}

	settings, err := store.Load()
	if err != nil {
		return nil, err
	}
	applyOptions(&settings, opts)

	svc := &cli.Services{
		Settings:     &settings,
		SettingsPath: store.Path(),
		CorpusDir:    settings.Corpus.Dir,
		SaveSettings: store.Save,
		Check: func(ctx context.Context) error {
			if err := ai.ValidateEmbeddingConfig(ctx, &settings.Embedding); err != nil {
				return err
			}
			return ai.ValidateLLMConfig(ctx, &settings.LLM)
		},
	}
	if opts.SettingsOnly {
		return svc, nil
	}

	logger.Section("Startup")
	logger.Debug("Settings: %s", store.Path())
	logger.Debug("Corpus: %s", settings.Corpus.Dir)

	providers, err := ai.NewProviders(ctx, settings, opts.Validate)
	if err != nil {
		return nil, err
	}

	index, err := openIndex(settings.Index)
	if err != nil {
		providers.Close()
		return nil, err
	}

	corpus := corpusfs.New(settings.Corpus.Dir)
	registry := segmenters.NewRegistry(
		plaintext.New(),
		pdf.New(pdf.WithMode(settings.Corpus.SegmentMode)),
	)
	pipeline, err := postprocessors.NewDefaultPipeline(settings.Chunking, corpus)
	if err != nil {
		_ = index.Close()
		providers.Close()
		return nil, fmt.Errorf("%w: %v", domain.ErrConfiguration, err)
	}

	engine := services.NewRAGEngine(
		corpus,
		registry,
		pipeline,
		index,
		providers.Embedding,
		providers.LLM,
		services.EngineConfigFromSettings(settings),
	)

	prompts, err := file.NewPromptStore(filepath.Join(store.Dir(), "prompts"))
	if err != nil {
		logger.Warn("Prompt store unavailable, using built-in prompts: %v", err)
	} else {
		engine.SetPromptStore(prompts)
	}

	watcher := watchfs.New(settings.Corpus.Dir)

	svc.Query = engine
	svc.Index = engine
	svc.Evaluation = services.NewEvaluationService(engine, settings.Query.TopK)
	svc.Watcher = watcher
	svc.Close = func() error {
		providers.Close()
		return errors.Join(watcher.Close(), index.Close())
	}
	return svc, nil
}

// applyOptions lets command-line flags override loaded settings.
func applyOptions(settings *domain.Settings, opts cli.Options) {
	if opts.CorpusDir != "" {
		settings.Corpus.Dir = opts.CorpusDir
	}
	if opts.IndexDir != "" {
		settings.Index.Dir = opts.IndexDir
	}
	if opts.InMemory {
		settings.Index.InMemory = true
	}
}

// openIndex opens the persisted SQLite index, or a memory index when configured.
func openIndex(cfg domain.IndexSettings) (closableIndex, error) {
	if cfg.InMemory {
		logger.Debug("Index: in memory")
		return memory.NewIndex(), nil
	}

	store, err := sqlite.NewStore(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("%w: opening index: %v", domain.ErrConfiguration, err)
	}
	logger.Debug("Index: %s", store.Path())
	return store, nil
}
