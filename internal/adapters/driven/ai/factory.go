// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	geminiembed "github.com/custodia-labs/railkm/internal/adapters/driven/embedding/gemini"
	ollamaembed "github.com/custodia-labs/railkm/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/railkm/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/railkm/internal/adapters/driven/guard"
	anthropicllm "github.com/custodia-labs/railkm/internal/adapters/driven/llm/anthropic"
	geminillm "github.com/custodia-labs/railkm/internal/adapters/driven/llm/gemini"
	ollamallm "github.com/custodia-labs/railkm/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/railkm/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/railkm/internal/core/domain"
	"github.com/custodia-labs/railkm/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// Providers holds the guarded provider services.
type Providers struct {
	Embedding driven.EmbeddingService
	LLM       driven.LLMService
}

// Close releases all resources held by the providers.
func (p *Providers) Close() {
	if p.Embedding != nil {
		_ = p.Embedding.Close()
	}
	if p.LLM != nil {
		_ = p.LLM.Close()
	}
}

// NewProviders creates both provider services, validates connectivity and
// wraps them with the guard. Any failure is a configuration error.
func NewProviders(ctx context.Context, settings domain.Settings, validate bool) (*Providers, error) {
	cfg := guard.ConfigFromSettings(settings.Guard)

	embed, err := CreateAndValidateEmbeddingService(ctx, &settings.Embedding, cfg, validate)
	if err != nil {
		return nil, err
	}

	llm, err := CreateAndValidateLLMService(ctx, &settings.LLM, cfg, validate)
	if err != nil {
		_ = embed.Close()
		return nil, err
	}

	return &Providers{Embedding: embed, LLM: llm}, nil
}

// CreateAndValidateEmbeddingService creates a guarded embedding service.
// When validate is set the provider is pinged once before it is returned.
func CreateAndValidateEmbeddingService(
	ctx context.Context,
	settings *domain.EmbeddingSettings,
	cfg guard.Config,
	validate bool,
) (driven.EmbeddingService, error) {
	if err := checkConfigured("embedding", settings.Provider, settings.APIKey, settings.Provider.SupportsEmbeddings()); err != nil {
		return nil, err
	}

	svc, err := CreateEmbeddingService(ctx, settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrConfiguration, err)
	}

	if validate {
		if err := ping(ctx, svc.Ping); err != nil {
			_ = svc.Close()
			return nil, fmt.Errorf("%w: embedding service unreachable (%w)", domain.ErrConfiguration, err)
		}
	}

	return guard.NewEmbeddingService(settings.Provider.String(), svc, cfg), nil
}

// CreateAndValidateLLMService creates a guarded LLM service.
// When validate is set the provider is pinged once before it is returned.
func CreateAndValidateLLMService(
	ctx context.Context,
	settings *domain.LLMSettings,
	cfg guard.Config,
	validate bool,
) (driven.LLMService, error) {
	if err := checkConfigured("llm", settings.Provider, settings.APIKey, true); err != nil {
		return nil, err
	}

	svc, err := CreateLLMService(ctx, settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrConfiguration, err)
	}

	if validate {
		if err := ping(ctx, svc.Ping); err != nil {
			_ = svc.Close()
			return nil, fmt.Errorf("%w: language service unreachable (%w)", domain.ErrConfiguration, err)
		}
	}

	return guard.NewLLMService(settings.Provider.String(), svc, cfg), nil
}

// ValidateEmbeddingConfig validates an embedding configuration by creating a service and pinging it.
func ValidateEmbeddingConfig(ctx context.Context, settings *domain.EmbeddingSettings) error {
	svc, err := CreateEmbeddingService(ctx, settings)
	if err != nil {
		return err
	}
	defer svc.Close()
	return ping(ctx, svc.Ping)
}

// ValidateLLMConfig validates an LLM configuration by creating a service and pinging it.
func ValidateLLMConfig(ctx context.Context, settings *domain.LLMSettings) error {
	svc, err := CreateLLMService(ctx, settings)
	if err != nil {
		return err
	}
	defer svc.Close()
	return ping(ctx, svc.Ping)
}

// CreateEmbeddingService creates the unguarded embedding adapter for settings.
func CreateEmbeddingService(ctx context.Context, settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil

	case domain.AIProviderOpenAI:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderGemini:
		return geminiembed.NewEmbeddingService(ctx, geminiembed.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderAnthropic:
		return nil, fmt.Errorf("anthropic does not support embeddings, use openai, gemini or ollama")

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// CreateLLMService creates the unguarded LLM adapter for settings.
func CreateLLMService(ctx context.Context, settings *domain.LLMSettings) (driven.LLMService, error) {
	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil

	case domain.AIProviderOpenAI:
		return openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderAnthropic:
		return anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderGemini:
		return geminillm.NewLLMService(ctx, geminillm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
}

// checkConfigured rejects unknown providers and missing credentials before
// any adapter is built.
func checkConfigured(kind string, p domain.AIProvider, apiKey string, supported bool) error {
	switch {
	case !p.IsValid():
		return fmt.Errorf("%w: unknown %s provider %q", domain.ErrConfiguration, kind, p)
	case !supported:
		return fmt.Errorf("%w: %s does not support %s", domain.ErrConfiguration, p.Description(), kind)
	case p.RequiresAPIKey() && apiKey == "":
		return fmt.Errorf("%w: %s API key is not set (%s)", domain.ErrConfiguration, p, APIKeyEnv(p))
	}
	return nil
}

// APIKeyEnv names the environment variable holding a provider's API key.
func APIKeyEnv(p domain.AIProvider) string {
	switch p {
	case domain.AIProviderOpenAI:
		return "OPENAI_API_KEY"
	case domain.AIProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	case domain.AIProviderGemini:
		return "GEMINI_API_KEY"
	default:
		return ""
	}
}

func ping(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return fn(ctx)
}
