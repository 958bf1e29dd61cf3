package intelligence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/pursuit/internal/domain"
	"github.com/alexanderramin/pursuit/internal/llm"
)

// ConceptSchemaName is the structured-output schema name sent to providers.
const ConceptSchemaName = "concept_summary_feedback"

// ConceptRequest is one evaluation request. IdeaOrSummaryText is the fully
// rendered request text; PromptOverride replaces DefaultPrompt when set.
type ConceptRequest struct {
	IdeaOrSummaryText string `json:"idea"`
	PromptOverride    string `json:"prompt,omitempty"`
	Stage             string `json:"stage,omitempty"`
}

// CriterionScore is one rubric score in the gateway response.
type CriterionScore struct {
	Criterion string  `json:"criterion"`
	Score     float64 `json:"score"`
	Feedback  string  `json:"feedback"`
}

// FollowUpQuestion is a question the model wants answered next.
type FollowUpQuestion struct {
	Question  string `json:"question"`
	Criterion string `json:"criterion"`
	Reason    string `json:"reason"`
}

// UnmarshalJSON accepts either a bare string or an object.
func (q *FollowUpQuestion) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*q = FollowUpQuestion{Question: s}
		return nil
	}
	type plain FollowUpQuestion
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("question must be a string or object: %w", err)
	}
	*q = FollowUpQuestion(p)
	return nil
}

// ConceptFeedback is the normalized gateway response.
type ConceptFeedback struct {
	Summary             string             `json:"conceptSummary"`
	Strengths           string             `json:"strengths"`
	AreasForImprovement string             `json:"areasForImprovement"`
	Suggestions         string             `json:"suggestions"`
	Scores              []CriterionScore   `json:"scores"`
	Questions           []FollowUpQuestion `json:"questions"`
}

// Version converts the feedback into a history entry with the given id.
// Every criterion is scored out of domain.RubricCeiling.
func (f *ConceptFeedback) Version(id string) domain.Version {
	v := domain.Version{
		ID:                  id,
		Summary:             f.Summary,
		Strengths:           f.Strengths,
		AreasForImprovement: f.AreasForImprovement,
		Suggestions:         f.Suggestions,
		Scores:              make([]domain.RubricScore, 0, len(f.Scores)),
	}
	for _, s := range f.Scores {
		v.Scores = append(v.Scores, domain.RubricScore{
			Criterion: s.Criterion,
			Score:     s.Score,
			MaxScore:  domain.RubricCeiling,
			Feedback:  s.Feedback,
		})
	}
	for _, q := range f.Questions {
		v.Questions = append(v.Questions, domain.Question{Text: q.Question, Criterion: q.Criterion, Reason: q.Reason})
	}
	return v
}

// ConceptGateway evaluates concept text against the rubric prompt.
type ConceptGateway interface {
	GenerateConcept(ctx context.Context, req ConceptRequest) (*ConceptFeedback, error)
}

// ErrIdeaRequired is returned for a request with blank text.
var ErrIdeaRequired = errors.New("idea is required")

type conceptService struct {
	client   llm.LLMClient
	observer llm.Observer
}

// NewConceptService creates a gateway that calls the model in-process.
// observer receives an INVALID_OUTPUT event when a response fails validation.
func NewConceptService(client llm.LLMClient, observer llm.Observer) ConceptGateway {
	if observer == nil {
		observer = llm.NoopObserver{}
	}
	return &conceptService{client: client, observer: observer}
}

func (s *conceptService) GenerateConcept(ctx context.Context, req ConceptRequest) (*ConceptFeedback, error) {
	if strings.TrimSpace(req.IdeaOrSummaryText) == "" {
		return nil, ErrIdeaRequired
	}
	if s.client == nil {
		return nil, llm.ErrProviderUnavailable
	}

	prompt := req.PromptOverride
	if strings.TrimSpace(prompt) == "" {
		prompt = DefaultPrompt
	}
	task := llm.ParseTaskType(req.Stage)

	resp, err := s.client.Generate(ctx, llm.GenerateRequest{
		Task:         task,
		SystemPrompt: prompt,
		UserPrompt:   req.IdeaOrSummaryText,
		ResponseFormat: &llm.ResponseFormat{
			Name:   ConceptSchemaName,
			Schema: ConceptSchema(),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("llm concept generation failed: %w", err)
	}

	feedback, err := DecodeConceptFeedback(resp.Text)
	if err != nil {
		s.observer.OnCallComplete(llm.LLMCallEvent{
			Task:      task,
			Model:     resp.Model,
			LatencyMs: resp.LatencyMs,
			ErrorCode: "INVALID_OUTPUT",
		})
		return nil, fmt.Errorf("failed to extract concept feedback: %w", err)
	}
	return feedback, nil
}
