package driving

import (
	"context"

	"github.com/custodia-labs/railkm/internal/core/domain"
)

// EvaluationService scores generated answers against expected ones.
type EvaluationService interface {
	// Evaluate answers each case and scores it by token overlap.
	Evaluate(ctx context.Context, cases []domain.EvalCase) ([]domain.EvalScore, error)
}
