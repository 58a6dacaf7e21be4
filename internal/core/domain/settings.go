package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderGemini is Google Gemini cloud API.
	AIProviderGemini AIProvider = "gemini"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic, AIProviderGemini:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic || p == AIProviderGemini
}

// SupportsEmbeddings returns true if the provider offers an embedding API.
func (p AIProvider) SupportsEmbeddings() bool {
	return p == AIProviderOpenAI || p == AIProviderOllama || p == AIProviderGemini
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderGemini:
		return "Google Gemini (cloud)"
	default:
		return unknownDescription
	}
}

// SegmentMode selects how PDFs are split into units.
type SegmentMode string

// PDF segmentation policies.
const (
	// SegmentModeArticle splits on "Pasal N" markers.
	SegmentModeArticle SegmentMode = "article"

	// SegmentModePage emits one unit per page.
	SegmentModePage SegmentMode = "page"
)

// IsValid returns true if the mode is recognised.
func (m SegmentMode) IsValid() bool {
	return m == SegmentModeArticle || m == SegmentModePage
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider `toml:"provider" validate:"required,oneof=openai ollama gemini"`

	// Model is the embedding model name.
	Model string `toml:"model"`

	// BaseURL is the API endpoint.
	BaseURL string `toml:"base_url,omitempty" validate:"omitempty,url"`

	// APIKey is the API key (for OpenAI and Gemini). Usually supplied via environment.
	APIKey string `toml:"api_key,omitempty"`
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() || !e.Provider.SupportsEmbeddings() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider `toml:"provider" validate:"required,oneof=openai ollama anthropic gemini"`

	// Model is the LLM model name.
	Model string `toml:"model"`

	// BaseURL is the API endpoint.
	BaseURL string `toml:"base_url,omitempty" validate:"omitempty,url"`

	// APIKey is the API key (for OpenAI, Anthropic and Gemini).
	APIKey string `toml:"api_key,omitempty"`

	// Temperature controls answer randomness.
	Temperature float64 `toml:"temperature" validate:"gte=0,lte=2"`

	// MaxTokens caps the answer length. Zero leaves it to the provider.
	MaxTokens int `toml:"max_tokens" validate:"gte=0"`
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// IndexSettings configures the vector index.
type IndexSettings struct {
	// Dir is the directory holding the persisted index.
	Dir string `toml:"dir"`

	// InMemory keeps the index in process memory only.
	InMemory bool `toml:"in_memory"`
}

// CorpusSettings configures the document corpus.
type CorpusSettings struct {
	// Dir is the corpus directory.
	Dir string `toml:"dir" validate:"required"`

	// SegmentMode selects the PDF segmentation policy.
	SegmentMode SegmentMode `toml:"segment_mode" validate:"oneof=article page"`
}

// ChunkingSettings configures the chunker.
type ChunkingSettings struct {
	ChunkSize int `toml:"chunk_size" validate:"gt=0"`
	Overlap   int `toml:"overlap" validate:"gte=0,ltfield=ChunkSize"`
}

// QuerySettings configures question answering.
type QuerySettings struct {
	// TopK is the number of chunks retrieved per question.
	TopK int `toml:"top_k" validate:"gt=0,lte=50"`

	// Refine rewrites follow-up questions using conversation history.
	Refine bool `toml:"refine"`
}

// GuardSettings configures provider call protection.
type GuardSettings struct {
	Timeout     time.Duration `toml:"timeout" validate:"gt=0"`
	MaxAttempts int           `toml:"max_attempts" validate:"gte=1,lte=10"`
	RetryDelay  time.Duration `toml:"retry_delay" validate:"gte=0"`

	// RequestsPerSecond is the client-side rate limit. Zero disables it.
	RequestsPerSecond float64 `toml:"requests_per_second" validate:"gte=0"`

	// BreakerFailures consecutive failures open the circuit breaker.
	BreakerFailures int `toml:"breaker_failures" validate:"gte=1"`

	// BreakerCooldown is how long the breaker stays open.
	BreakerCooldown time.Duration `toml:"breaker_cooldown" validate:"gt=0"`
}

// Settings holds all application settings.
type Settings struct {
	Embedding EmbeddingSettings `toml:"embedding"`
	LLM       LLMSettings       `toml:"llm"`
	Index     IndexSettings     `toml:"index"`
	Corpus    CorpusSettings    `toml:"corpus"`
	Chunking  ChunkingSettings  `toml:"chunking"`
	Query     QuerySettings     `toml:"query"`
	Guard     GuardSettings     `toml:"guard"`
}

// Default settings values.
const (
	DefaultCorpusDir        = "railway_docs"
	DefaultChunkSize        = 2000
	DefaultChunkOverlap     = 200
	DefaultTemperature      = 0.2
	DefaultProviderTimeout  = 60 * time.Second
	DefaultMaxAttempts      = 3
	DefaultRetryDelay       = time.Second
	DefaultBreakerFailures  = 5
	DefaultBreakerCooldown  = 30 * time.Second
	DefaultEmbeddingModel   = "text-embedding-ada-002"
	DefaultChatModel        = "gpt-3.5-turbo"
	DefaultRequestRateLimit = 0
)

// DefaultSettings returns settings matching the original deployment:
// OpenAI ada-002 embeddings with gpt-3.5-turbo at temperature 0.2.
// API keys are left empty and must come from the environment.
func DefaultSettings() Settings {
	return Settings{
		Embedding: EmbeddingSettings{
			Provider: AIProviderOpenAI,
			Model:    DefaultEmbeddingModel,
		},
		LLM: LLMSettings{
			Provider:    AIProviderOpenAI,
			Model:       DefaultChatModel,
			Temperature: DefaultTemperature,
		},
		Corpus: CorpusSettings{
			Dir:         DefaultCorpusDir,
			SegmentMode: SegmentModeArticle,
		},
		Chunking: ChunkingSettings{
			ChunkSize: DefaultChunkSize,
			Overlap:   DefaultChunkOverlap,
		},
		Query: QuerySettings{
			TopK:   DefaultTopK,
			Refine: true,
		},
		Guard: GuardSettings{
			Timeout:           DefaultProviderTimeout,
			MaxAttempts:       DefaultMaxAttempts,
			RetryDelay:        DefaultRetryDelay,
			RequestsPerSecond: DefaultRequestRateLimit,
			BreakerFailures:   DefaultBreakerFailures,
			BreakerCooldown:   DefaultBreakerCooldown,
		},
	}
}
