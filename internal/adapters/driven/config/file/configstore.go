package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/railkm/internal/core/domain"
	"github.com/custodia-labs/railkm/internal/core/ports/driven"
)

// Ensure SettingsStore implements the interface.
var _ driven.SettingsStore = (*SettingsStore)(nil)

const (
	// DefaultDirName is the per-user configuration directory under $HOME.
	DefaultDirName = ".railkm"

	// ConfigFileName is the settings file inside the configuration directory.
	ConfigFileName = "config.toml"

	envFileName = ".env"
)

// Environment variables that override the settings file.
const (
	EnvEmbeddingProvider = "RAILKM_EMBEDDING_PROVIDER"
	EnvEmbeddingModel    = "RAILKM_EMBEDDING_MODEL"
	EnvEmbeddingBaseURL  = "RAILKM_EMBEDDING_BASE_URL"
	EnvLLMProvider       = "RAILKM_LLM_PROVIDER"
	EnvLLMModel          = "RAILKM_LLM_MODEL"
	EnvLLMBaseURL        = "RAILKM_LLM_BASE_URL"
	EnvCorpusDir         = "RAILKM_CORPUS_DIR"
	EnvIndexDir          = "RAILKM_INDEX_DIR"

	EnvOpenAIKey    = "OPENAI_API_KEY"
	EnvAnthropicKey = "ANTHROPIC_API_KEY"
	EnvGeminiKey    = "GEMINI_API_KEY"
	EnvGoogleKey    = "GOOGLE_API_KEY"
)

// SettingsStore is a TOML file implementation of driven.SettingsStore.
// Values are layered: built-in defaults, then the config file, then .env
// files, then the process environment.
type SettingsStore struct {
	mu        sync.Mutex
	configDir string
	filePath  string
	validate  *validator.Validate
}

// NewSettingsStore creates a settings store rooted at configDir.
// If configDir is empty, defaults to ~/.railkm.
func NewSettingsStore(configDir string) (*SettingsStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		configDir = filepath.Join(home, DefaultDirName)
	}

	return &SettingsStore{
		configDir: configDir,
		filePath:  filepath.Join(configDir, ConfigFileName),
		validate:  validator.New(validator.WithRequiredStructEnabled()),
	}, nil
}

// Path returns the settings file path.
func (s *SettingsStore) Path() string {
	return s.filePath
}

// Dir returns the configuration directory.
func (s *SettingsStore) Dir() string {
	return s.configDir
}

// Load reads settings. A missing file yields the defaults. Invalid
// settings are reported as domain.ErrConfiguration.
func (s *SettingsStore) Load() (domain.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fs := toFileSettings(domain.DefaultSettings())

	data, err := os.ReadFile(s.filePath)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &fs); err != nil {
			return domain.Settings{}, fmt.Errorf("%w: parse %s: %v", domain.ErrConfiguration, s.filePath, err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return domain.Settings{}, fmt.Errorf("%w: read %s: %v", domain.ErrConfiguration, s.filePath, err)
	}

	if err := s.loadEnvFiles(); err != nil {
		return domain.Settings{}, err
	}

	settings := fs.toDomain()
	ApplyEnv(&settings)

	if err := s.Validate(settings); err != nil {
		return domain.Settings{}, err
	}
	return settings, nil
}

// Save writes settings to disk. API keys are never written.
func (s *SettingsStore) Save(settings domain.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.Validate(settings); err != nil {
		return err
	}

	settings.Embedding.APIKey = ""
	settings.LLM.APIKey = ""

	data, err := toml.Marshal(toFileSettings(settings))
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err := os.MkdirAll(s.configDir, 0700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(s.filePath, data, 0600); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}

// Validate checks settings against their struct tags.
func (s *SettingsStore) Validate(settings domain.Settings) error {
	if err := s.validate.Struct(settings); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w: %s fails %q (value %v)", domain.ErrConfiguration, fe.Namespace(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("%w: %v", domain.ErrConfiguration, err)
	}
	return nil
}

// loadEnvFiles loads .env from the working directory and the config
// directory. Variables already set in the environment win.
func (s *SettingsStore) loadEnvFiles() error {
	for _, path := range []string{envFileName, filepath.Join(s.configDir, envFileName)} {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("%w: load %s: %v", domain.ErrConfiguration, path, err)
		}
	}
	return nil
}

// ApplyEnv overrides settings from the process environment.
// API keys are picked per provider.
func ApplyEnv(settings *domain.Settings) {
	setString(&settings.Corpus.Dir, EnvCorpusDir)
	setString(&settings.Index.Dir, EnvIndexDir)
	setString(&settings.Embedding.Model, EnvEmbeddingModel)
	setString(&settings.Embedding.BaseURL, EnvEmbeddingBaseURL)
	setString(&settings.LLM.Model, EnvLLMModel)
	setString(&settings.LLM.BaseURL, EnvLLMBaseURL)

	if v := os.Getenv(EnvEmbeddingProvider); v != "" {
		settings.Embedding.Provider = domain.AIProvider(v)
	}
	if v := os.Getenv(EnvLLMProvider); v != "" {
		settings.LLM.Provider = domain.AIProvider(v)
	}

	if key := apiKeyFromEnv(settings.Embedding.Provider); key != "" {
		settings.Embedding.APIKey = key
	}
	if key := apiKeyFromEnv(settings.LLM.Provider); key != "" {
		settings.LLM.APIKey = key
	}
}

func apiKeyFromEnv(p domain.AIProvider) string {
	switch p {
	case domain.AIProviderOpenAI:
		return os.Getenv(EnvOpenAIKey)
	case domain.AIProviderAnthropic:
		return os.Getenv(EnvAnthropicKey)
	case domain.AIProviderGemini:
		if key := os.Getenv(EnvGeminiKey); key != "" {
			return key
		}
		return os.Getenv(EnvGoogleKey)
	default:
		return ""
	}
}

func setString(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

// ==================== File format ====================

// fileSettings is the on-disk layout. Durations are written as strings
// such as "60s".
type fileSettings struct {
	Embedding domain.EmbeddingSettings `toml:"embedding"`
	LLM       domain.LLMSettings       `toml:"llm"`
	Index     domain.IndexSettings     `toml:"index"`
	Corpus    domain.CorpusSettings    `toml:"corpus"`
	Chunking  domain.ChunkingSettings  `toml:"chunking"`
	Query     domain.QuerySettings     `toml:"query"`
	Guard     fileGuard                `toml:"guard"`
}

type fileGuard struct {
	Timeout           duration `toml:"timeout"`
	MaxAttempts       int      `toml:"max_attempts"`
	RetryDelay        duration `toml:"retry_delay"`
	RequestsPerSecond float64  `toml:"requests_per_second"`
	BreakerFailures   int      `toml:"breaker_failures"`
	BreakerCooldown   duration `toml:"breaker_cooldown"`
}

func toFileSettings(s domain.Settings) fileSettings {
	return fileSettings{
		Embedding: s.Embedding,
		LLM:       s.LLM,
		Index:     s.Index,
		Corpus:    s.Corpus,
		Chunking:  s.Chunking,
		Query:     s.Query,
		Guard: fileGuard{
			Timeout:           duration(s.Guard.Timeout),
			MaxAttempts:       s.Guard.MaxAttempts,
			RetryDelay:        duration(s.Guard.RetryDelay),
			RequestsPerSecond: s.Guard.RequestsPerSecond,
			BreakerFailures:   s.Guard.BreakerFailures,
			BreakerCooldown:   duration(s.Guard.BreakerCooldown),
		},
	}
}

func (f fileSettings) toDomain() domain.Settings {
	return domain.Settings{
		Embedding: f.Embedding,
		LLM:       f.LLM,
		Index:     f.Index,
		Corpus:    f.Corpus,
		Chunking:  f.Chunking,
		Query:     f.Query,
		Guard: domain.GuardSettings{
			Timeout:           time.Duration(f.Guard.Timeout),
			MaxAttempts:       f.Guard.MaxAttempts,
			RetryDelay:        time.Duration(f.Guard.RetryDelay),
			RequestsPerSecond: f.Guard.RequestsPerSecond,
			BreakerFailures:   f.Guard.BreakerFailures,
			BreakerCooldown:   time.Duration(f.Guard.BreakerCooldown),
		},
	}
}

// duration is a time.Duration stored as text.
type duration time.Duration

// MarshalText implements encoding.TextMarshaler.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = duration(v)
	return nil
}
