package intelligence

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/pursuit/internal/domain"
	"github.com/alexanderramin/pursuit/internal/llm"
)

// ConceptResponse is the raw response shape. Pointer fields distinguish a
// missing key from an empty value.
type ConceptResponse struct {
	ConceptSummary      *string             `json:"conceptSummary"`
	Strengths           *string             `json:"strengths"`
	AreasForImprovement *string             `json:"areasForImprovement"`
	Suggestions         *string             `json:"suggestions"`
	Scores              *[]CriterionScore   `json:"scores"`
	Questions           *[]FollowUpQuestion `json:"questions"`
}

// ConceptSchema is the strict schema requested from providers.
func ConceptSchema() *llm.Schema {
	return llm.Object(
		llm.Prop("conceptSummary", llm.String()),
		llm.Prop("strengths", llm.String()),
		llm.Prop("areasForImprovement", llm.String()),
		llm.Prop("suggestions", llm.String()),
		llm.Prop("scores", llm.Array(llm.Object(
			llm.Prop("criterion", llm.String()),
			llm.Prop("score", llm.Number()),
			llm.Prop("feedback", llm.String()),
		))),
		llm.Prop("questions", llm.Array(llm.Object(
			llm.Prop("question", llm.String()),
			llm.Prop("criterion", llm.String()),
			llm.Prop("reason", llm.String()),
		))),
	)
}

// ValidateConceptResponse checks required keys, criterion names and score range.
func ValidateConceptResponse(r ConceptResponse) error {
	var missing []string
	if r.ConceptSummary == nil {
		missing = append(missing, "conceptSummary")
	}
	if r.Strengths == nil {
		missing = append(missing, "strengths")
	}
	if r.AreasForImprovement == nil {
		missing = append(missing, "areasForImprovement")
	}
	if r.Suggestions == nil {
		missing = append(missing, "suggestions")
	}
	if r.Scores == nil {
		missing = append(missing, "scores")
	}
	if r.Questions == nil {
		missing = append(missing, "questions")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}

	for i, s := range *r.Scores {
		if strings.TrimSpace(s.Criterion) == "" {
			return fmt.Errorf("scores[%d]: criterion is required", i)
		}
		if s.Score < 0 || s.Score > domain.RubricCeiling {
			return fmt.Errorf("scores[%d]: score must be between 0 and %d, got %v", i, domain.RubricCeiling, s.Score)
		}
	}
	for i, q := range *r.Questions {
		if strings.TrimSpace(q.Question) == "" {
			return fmt.Errorf("questions[%d]: question text is required", i)
		}
	}
	return nil
}

// DecodeConceptFeedback extracts, validates and normalizes a response body.
// Failures wrap llm.ErrInvalidOutput.
func DecodeConceptFeedback(raw string) (*ConceptFeedback, error) {
	r, err := llm.ExtractJSON[ConceptResponse](raw, ValidateConceptResponse)
	if err != nil {
		return nil, err
	}
	return &ConceptFeedback{
		Summary:             *r.ConceptSummary,
		Strengths:           *r.Strengths,
		AreasForImprovement: *r.AreasForImprovement,
		Suggestions:         *r.Suggestions,
		Scores:              append([]CriterionScore{}, *r.Scores...),
		Questions:           append([]FollowUpQuestion{}, *r.Questions...),
	}, nil
}
