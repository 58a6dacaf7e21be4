package domain

// EvalCase is one question with its expected answer.
type EvalCase struct {
	Question        string `yaml:"question" json:"question"`
	ExpectedAnswer  string `yaml:"expected_answer" json:"expected_answer"`
	ExpectedContext string `yaml:"expected_context,omitempty" json:"expected_context,omitempty"`
}

// EvalScore is the token-overlap score of a generated answer.
type EvalScore struct {
	Case             EvalCase     `json:"case"`
	GeneratedAnswer  string       `json:"generated_answer"`
	GeneratedContext string       `json:"generated_context"`
	Status           AnswerStatus `json:"status"`
	Precision        float64      `json:"precision"`
	Recall           float64      `json:"recall"`
	F1               float64      `json:"f1"`
}

// EvalSummary averages a set of scores.
type EvalSummary struct {
	Cases     int     `json:"cases"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
}

// Summarise averages precision, recall and F1 over scores.
func Summarise(scores []EvalScore) EvalSummary {
	s := EvalSummary{Cases: len(scores)}
	if len(scores) == 0 {
		return s
	}
	for i := range scores {
		s.Precision += scores[i].Precision
		s.Recall += scores[i].Recall
		s.F1 += scores[i].F1
	}
	n := float64(len(scores))
	s.Precision /= n
	s.Recall /= n
	s.F1 /= n
	return s
}
