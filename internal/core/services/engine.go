package services

import (
	"sync"

	"github.com/custodia-labs/railkm/internal/core/domain"
	"github.com/custodia-labs/railkm/internal/core/ports/driven"
	"github.com/custodia-labs/railkm/internal/core/ports/driving"
	"github.com/custodia-labs/railkm/internal/logger"
)

// Ensure RAGEngine implements the driving interfaces.
var (
	_ driving.QueryService = (*RAGEngine)(nil)
	_ driving.IndexService = (*RAGEngine)(nil)
)

// Engine defaults.
const (
	// refineHistoryTurns is how many trailing conversation turns the
	// refiner sees: three user questions and three answers.
	refineHistoryTurns = 6

	// embedBatchSize is the number of chunk texts embedded per provider call.
	embedBatchSize = 64
)

// EngineConfig tunes question answering.
type EngineConfig struct {
	// TopK is the default number of chunks retrieved (default: 5).
	TopK int

	// Temperature is passed to the synthesizer.
	Temperature float64

	// MaxTokens caps the synthesized answer. Zero leaves it to the provider.
	MaxTokens int

	// Refine rewrites follow-up questions using the conversation history.
	Refine bool
}

// EngineConfigFromSettings derives the engine configuration from settings.
func EngineConfigFromSettings(s domain.Settings) EngineConfig {
	return EngineConfig{
		TopK:        s.Query.TopK,
		Temperature: s.LLM.Temperature,
		MaxTokens:   s.LLM.MaxTokens,
		Refine:      s.Query.Refine,
	}
}

// RAGEngine is the query orchestrator and the owner of the index lifecycle.
//
// Lifecycle operations take the write lock; questions and listings take
// the read lock, so concurrent questions never observe a half-applied
// mutation.
type RAGEngine struct {
	mu sync.RWMutex

	corpus     driven.CorpusStore
	segmenters driven.SegmenterRegistry
	pipeline   driven.PostProcessorPipeline
	index      driven.VectorIndex
	embedder   driven.EmbeddingService
	llm        driven.LLMService
	prompts    driven.PromptStore

	cfg EngineConfig
}

// NewRAGEngine creates a new engine.
// The llm may be nil for index-only use; questions then fail with a provider status.
func NewRAGEngine(
	corpus driven.CorpusStore,
	segmenters driven.SegmenterRegistry,
	pipeline driven.PostProcessorPipeline,
	index driven.VectorIndex,
	embedder driven.EmbeddingService,
	llm driven.LLMService,
	cfg EngineConfig,
) *RAGEngine {
	if cfg.TopK <= 0 {
		cfg.TopK = domain.DefaultTopK
	}
	return &RAGEngine{
		corpus:     corpus,
		segmenters: segmenters,
		pipeline:   pipeline,
		index:      index,
		embedder:   embedder,
		llm:        llm,
		cfg:        cfg,
	}
}

// SetPromptStore sets the store for customisable prompts.
// If not set, the engine uses the built-in templates.
func (e *RAGEngine) SetPromptStore(store driven.PromptStore) {
	e.prompts = store
}

// loadPrompt loads a prompt from the store, falling back to the default if unavailable.
func (e *RAGEngine) loadPrompt(name, fallback string) string {
	if e.prompts == nil {
		return fallback
	}
	prompt, err := e.prompts.Load(name)
	if err != nil {
		logger.Debug("Using built-in %s prompt: %v", name, err)
		return fallback
	}
	return prompt
}
