package driven

import "context"

// LLMService is the answer synthesizer. The engine uses Generate for the
// grounded answer prompt and Chat for rewriting follow-up questions.
// An empty completion is returned as an error.
type LLMService interface {
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
	Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) (string, error)

	// ModelName returns the configured model, for diagnostics.
	ModelName() string

	// Ping makes the cheapest request the provider offers. It is used at
	// startup to reject bad credentials before any work begins.
	Ping(ctx context.Context) error

	Close() error
}

// Chat roles. RoleUser and RoleAssistant match domain.Turn roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// GenerateOptions tunes a single-prompt completion. Zero values leave the
// provider default.
type GenerateOptions struct {
	MaxTokens   int
	Temperature float64
	StopWords   []string
}

// ChatMessage is one message of a conversation.
type ChatMessage struct {
	Role    string
	Content string
}

// ChatOptions tunes a chat completion.
type ChatOptions struct {
	MaxTokens   int
	Temperature float64
}
