package driven

// Prompt names for PromptStore.Load.
const (
	// PromptAnswer is the grounded answer template. It must contain the
	// {context} and {question} placeholders.
	PromptAnswer = "answer"

	// PromptRefine rewrites a follow-up question. It must contain {question}.
	PromptRefine = "refine"
)

// PromptStore loads user-customisable prompt templates.
type PromptStore interface {
	// Load returns the template for name, falling back to the built-in default.
	Load(name string) (string, error)
}
