package guard

import (
	"context"
	"errors"
	"strings"

	"github.com/custodia-labs/railkm/internal/core/domain"
	"github.com/custodia-labs/railkm/internal/core/ports/driven"
)

var errEmptyCompletion = errors.New("empty completion")

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// LLMService guards a completion provider.
type LLMService struct {
	next  driven.LLMService
	guard *guard
}

// NewLLMService wraps next. name labels errors and the breaker.
func NewLLMService(name string, next driven.LLMService, cfg Config) *LLMService {
	return &LLMService{next: next, guard: newGuard(name+"-llm", cfg)}
}

// Generate produces text completion from a prompt.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	var out string
	err := s.guard.do(ctx, "generate", func(ctx context.Context) error {
		var err error
		out, err = s.next.Generate(ctx, prompt, opts)
		return s.checkEmpty("generate", out, err)
	})
	return out, err
}

// Chat conducts a multi-turn conversation.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	var out string
	err := s.guard.do(ctx, "chat", func(ctx context.Context) error {
		var err error
		out, err = s.next.Chat(ctx, messages, opts)
		return s.checkEmpty("chat", out, err)
	})
	return out, err
}

// checkEmpty turns a blank completion into a permanent provider error.
func (s *LLMService) checkEmpty(op, out string, err error) error {
	if err == nil && strings.TrimSpace(out) == "" {
		return &domain.ProviderError{Provider: s.guard.name, Op: op, Err: errEmptyCompletion}
	}
	return err
}

// ModelName returns the wrapped provider's model.
func (s *LLMService) ModelName() string { return s.next.ModelName() }

// Ping checks the wrapped provider once, without retries.
func (s *LLMService) Ping(ctx context.Context) error { return s.next.Ping(ctx) }

// Close closes the wrapped provider.
func (s *LLMService) Close() error { return s.next.Close() }
