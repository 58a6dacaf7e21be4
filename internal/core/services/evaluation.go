package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/railkm/internal/core/domain"
	"github.com/custodia-labs/railkm/internal/core/ports/driving"
	"github.com/custodia-labs/railkm/internal/logger"
)

// Ensure EvaluationService implements the interface.
var _ driving.EvaluationService = (*EvaluationService)(nil)

// wordPattern matches tokens of two or more letters, digits or underscores.
var wordPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// EvaluationService scores generated answers against expected ones by
// binary token overlap.
type EvaluationService struct {
	query driving.QueryService
	k     int
}

// NewEvaluationService creates an evaluation service over a query service.
// k is the retrieval depth used for every case; zero uses the query default.
func NewEvaluationService(query driving.QueryService, k int) *EvaluationService {
	return &EvaluationService{query: query, k: k}
}

// Evaluate answers each case and scores it. It stops at the first error
// and returns the scores computed so far.
func (s *EvaluationService) Evaluate(ctx context.Context, cases []domain.EvalCase) ([]domain.EvalScore, error) {
	scores := make([]domain.EvalScore, 0, len(cases))
	for i, c := range cases {
		if err := ctx.Err(); err != nil {
			return scores, err
		}

		answer, err := s.query.Answer(ctx, c.Question, domain.QueryOptions{K: s.k, Debug: true})
		if err != nil {
			return scores, fmt.Errorf("case %d: %w", i+1, err)
		}

		score := domain.EvalScore{
			Case:             c,
			GeneratedAnswer:  answer.Text,
			GeneratedContext: joinPreviews(answer.Sources),
			Status:           answer.Status,
		}
		score.Precision, score.Recall, score.F1 = TokenOverlap(c.ExpectedAnswer, answer.Text)
		logger.Debug("Case %d: P=%.2f R=%.2f F1=%.2f", i+1, score.Precision, score.Recall, score.F1)

		scores = append(scores, score)
	}
	return scores, nil
}

// TokenOverlap computes precision, recall and F1 of generated against
// expected, treating each text as a set of lower-cased word tokens.
// Empty sides score zero.
func TokenOverlap(expected, generated string) (precision, recall, f1 float64) {
	exp := tokenSet(expected)
	gen := tokenSet(generated)
	if len(exp) == 0 || len(gen) == 0 {
		return 0, 0, 0
	}

	common := 0
	for tok := range gen {
		if _, ok := exp[tok]; ok {
			common++
		}
	}
	if common == 0 {
		return 0, 0, 0
	}

	precision = float64(common) / float64(len(gen))
	recall = float64(common) / float64(len(exp))
	f1 = 2 * precision * recall / (precision + recall)
	return precision, recall, f1
}

func tokenSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		set[tok] = struct{}{}
	}
	return set
}

func joinPreviews(sources []domain.Source) string {
	parts := make([]string, len(sources))
	for i := range sources {
		parts[i] = sources[i].Preview
	}
	return strings.Join(parts, "\n")
}

// evalFile is the YAML layout of an evaluation set. A bare list of cases
// is accepted too.
type evalFile struct {
	Cases []domain.EvalCase `yaml:"cases"`
}

// ParseEvalCases decodes evaluation cases from YAML.
func ParseEvalCases(data []byte) ([]domain.EvalCase, error) {
	var cases []domain.EvalCase
	if err := yaml.Unmarshal(data, &cases); err != nil {
		var file evalFile
		if fileErr := yaml.Unmarshal(data, &file); fileErr != nil {
			return nil, fmt.Errorf("%w: parse evaluation cases: %v", domain.ErrInvalidInput, err)
		}
		cases = file.Cases
	}

	for i, c := range cases {
		if strings.TrimSpace(c.Question) == "" {
			return nil, fmt.Errorf("%w: case %d has no question", domain.ErrInvalidInput, i+1)
		}
	}
	return cases, nil
}
