package wizard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/alexanderramin/pursuit/internal/domain"
	"github.com/alexanderramin/pursuit/internal/intelligence"
	"github.com/alexanderramin/pursuit/internal/llm"
	"github.com/alexanderramin/pursuit/internal/testutil"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type gatewayFunc func(ctx context.Context, req intelligence.ConceptRequest) (*intelligence.ConceptFeedback, error)

func (f gatewayFunc) GenerateConcept(ctx context.Context, req intelligence.ConceptRequest) (*intelligence.ConceptFeedback, error) {
	return f(ctx, req)
}

type recordingGateway struct {
	mu       sync.Mutex
	requests []intelligence.ConceptRequest
	feedback *intelligence.ConceptFeedback
	err      error
}

func (g *recordingGateway) GenerateConcept(_ context.Context, req intelligence.ConceptRequest) (*intelligence.ConceptFeedback, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests = append(g.requests, req)
	if g.err != nil {
		return nil, g.err
	}
	fb := *g.feedback
	return &fb, nil
}

type fixedPrompt string

func (p fixedPrompt) Active() string { return string(p) }

func newTestMachine(gw intelligence.ConceptGateway) (*Machine, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.WarnLevel)
	m := NewMachine(gw, fixedPrompt("active prompt"), zap.New(core))
	var seq atomic.Int64
	m.newID = func() string {
		return fmt.Sprintf("id-%d", seq.Add(1))
	}
	return m, logs
}

func stubFeedback() *intelligence.ConceptFeedback {
	return &intelligence.ConceptFeedback{
		Summary: "S",
		Scores:  []intelligence.CriterionScore{{Criterion: "Clarity", Score: 3, Feedback: "ok"}},
		Questions: []intelligence.FollowUpQuestion{
			{Question: "Q1", Criterion: "Clarity", Reason: "R"},
		},
	}
}

func completeSetup(m *Machine) {
	m.UpdateSetup(SetupPatch{GradeBand: ptr(domain.GradeK2)})
	m.UpdateSetup(SetupPatch{PracticalFocus: ptr(domain.PracticalWriting)})
	m.UpdateSetup(SetupPatch{AcademicFocuses: []domain.AcademicFocus{domain.AcademicReading}})
	m.CompleteSetup()
}

func TestMachine_EndToEndWithStubbedGateway(t *testing.T) {
	gw := &recordingGateway{feedback: stubFeedback()}
	m, logs := newTestMachine(gw)

	completeSetup(m)
	assert.Equal(t, StepIdea, m.State().CurrentStep)

	m.UpdateIdea("kids write stories")
	m.SubmitIdea(context.Background())

	s := m.State()
	require.Len(t, s.ConceptSummary.Versions, 1)
	assert.Len(t, s.ConceptSummary.Versions[0].Questions, 1)
	assert.Equal(t, StepConfirm, s.CurrentStep)
	assert.False(t, s.IsLoading)
	require.NotNil(t, s.ConceptSummary.InitialConcept)
	assert.Equal(t, "S", *s.ConceptSummary.InitialConcept)
	assert.Equal(t, "id-1", s.ConceptSummary.Versions[0].ID)
	assert.Zero(t, logs.Len())

	require.Len(t, gw.requests, 1)
	assert.Equal(t,
		"Grade levels: K-2nd\nPractical focus: Writing\nAcademic focus: Reading\nFreeform idea:\nkids write stories",
		gw.requests[0].IdeaOrSummaryText)
	assert.Equal(t, "active prompt", gw.requests[0].PromptOverride)
	assert.Equal(t, "idea", gw.requests[0].Stage)
}

func TestMachine_SubmitIdeaRequiresText(t *testing.T) {
	gw := &recordingGateway{feedback: stubFeedback()}
	m, _ := newTestMachine(gw)

	m.UpdateIdea("   ")
	m.SubmitIdea(context.Background())

	assert.Empty(t, gw.requests)
	assert.Empty(t, m.State().ConceptSummary.Versions)
}

func TestMachine_SubmitIdeaFallback(t *testing.T) {
	m, logs := newTestMachine(&recordingGateway{err: llm.ErrTimeout})
	completeSetup(m)
	m.UpdateIdea("puppets")
	m.SubmitIdea(context.Background())

	s := m.State()
	require.Len(t, s.ConceptSummary.Versions, 1)
	v := s.ConceptSummary.Versions[0]
	assert.Equal(t, "A pursuit focused on Writing for K-2nd students, incorporating Reading and based on the idea: puppets", v.Summary)
	assert.Equal(t, v.Summary, *s.ConceptSummary.InitialConcept)
	require.Len(t, v.Scores, 3)
	assert.Equal(t, 2.0, v.Scores[0].Score)
	assert.Len(t, v.Questions, 2)
	assert.Equal(t, StepConfirm, s.CurrentStep)
	assert.False(t, s.IsLoading)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, zapcore.WarnLevel, logs.All()[0].Level)
}

func TestMachine_NilGatewayFallsBack(t *testing.T) {
	m := NewMachine(nil, nil, nil)
	m.UpdateIdea("x")
	m.SubmitIdea(context.Background())
	assert.Len(t, m.State().ConceptSummary.Versions, 1)
}

func TestMachine_IsLoadingWhileInFlight(t *testing.T) {
	var seen bool
	var m *Machine
	m, _ = newTestMachine(gatewayFunc(func(context.Context, intelligence.ConceptRequest) (*intelligence.ConceptFeedback, error) {
		seen = m.State().IsLoading
		return stubFeedback(), nil
	}))
	m.UpdateIdea("x")
	m.SubmitIdea(context.Background())

	assert.True(t, seen)
	assert.False(t, m.State().IsLoading)
}

func TestMachine_SubmitConceptConfirmation(t *testing.T) {
	gw := &recordingGateway{feedback: stubFeedback()}
	m, _ := newTestMachine(gw)
	completeSetup(m)

	m.SubmitConceptConfirmation(context.Background(), "")
	assert.Empty(t, gw.requests)

	m.SubmitConceptConfirmation(context.Background(), "Edited summary")
	require.Len(t, gw.requests, 1)
	assert.Equal(t,
		"Grade levels: K-2nd\nPractical focus: Writing\nAcademic focus: Reading\nConcept Summary:\nEdited summary",
		gw.requests[0].IdeaOrSummaryText)
	assert.Equal(t, "confirmation", gw.requests[0].Stage)
	assert.Len(t, m.State().ConceptSummary.Versions, 1)
}

func TestMachine_SubmitConceptConfirmationFallback(t *testing.T) {
	m, _ := newTestMachine(&recordingGateway{err: errors.New("status 502")})
	m.SubmitConceptConfirmation(context.Background(), "Edited summary")

	v, ok := m.CurrentVersion()
	require.True(t, ok)
	assert.Equal(t, "Edited summary", v.Summary)
	assert.Equal(t, 3.0, v.Scores[2].Score)
	assert.Len(t, v.Questions, 2)
}

func seedVersion(m *Machine, v domain.Version) {
	m.Dispatch(AddVersion{Version: v})
}

func TestMachine_AnswerQuestionsRequiresQuestion(t *testing.T) {
	gw := &recordingGateway{feedback: stubFeedback()}
	m, _ := newTestMachine(gw)

	m.AnswerQuestions(context.Background(), []domain.QuestionAnswer{{Question: "q", Answer: "a"}})
	seedVersion(m, testutil.NewTestVersion(testutil.WithQuestions()))
	m.AnswerQuestions(context.Background(), []domain.QuestionAnswer{{Question: "q", Answer: "a"}})

	assert.Empty(t, gw.requests)
	assert.Len(t, m.State().ConceptSummary.Versions, 1)
}

func TestMachine_AnswerQuestionsSuccessCoalesces(t *testing.T) {
	gw := &recordingGateway{feedback: &intelligence.ConceptFeedback{
		Summary:   "Refined",
		Scores:    []intelligence.CriterionScore{{Criterion: "Clarity", Score: 4}},
		Questions: []intelligence.FollowUpQuestion{{Question: "dropped at ceiling"}},
	}}
	m, _ := newTestMachine(gw)
	completeSetup(m)
	seedVersion(m, testutil.NewTestVersion(testutil.WithSummary("Original")))

	m.AnswerQuestions(context.Background(), []domain.QuestionAnswer{
		{Question: "How will students share their work?", Answer: "A podcast"},
	})

	require.Len(t, gw.requests, 1)
	assert.Equal(t,
		"Grade levels: K-2nd\nPractical focus: Writing\nAcademic focus: Reading\nConcept Summary:\nOriginal\nQ&A:\nHow will students share their work?: A podcast",
		gw.requests[0].IdeaOrSummaryText)

	v, ok := m.CurrentVersion()
	require.True(t, ok)
	assert.Equal(t, "Refined", v.Summary)
	assert.Equal(t, "- Clear audience", v.Strengths, "empty fields keep the previous version's text")
	assert.Equal(t, "- Add a peer review round", v.Suggestions)
	assert.Empty(t, v.Questions)
	assert.Equal(t, 1, m.State().ConceptSummary.CurrentVersionIndex)
}

func TestMachine_AnswerQuestionsFallbackRaisesScores(t *testing.T) {
	m, _ := newTestMachine(&recordingGateway{err: llm.ErrProviderUnavailable})
	seedVersion(m, testutil.NewTestVersion(testutil.WithScores(2, 4)))

	m.AnswerQuestions(context.Background(), []domain.QuestionAnswer{{Question: "q", Answer: "a"}})

	s := m.State()
	require.Len(t, s.ConceptSummary.Versions, 2)
	got := s.ConceptSummary.Versions[1].Scores
	want := []domain.RubricScore{
		{Criterion: "Clarity", Score: 3, MaxScore: 4, Feedback: "Clarity feedback"},
		{Criterion: "Academic Integration", Score: 4, MaxScore: 4},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("fallback scores mismatch (-want +got):\n%s", diff)
	}
	assert.Len(t, s.ConceptSummary.Versions[1].Questions, 1)
	assert.Equal(t, "id-1", s.ConceptSummary.Versions[1].ID)
}

func TestMachine_EditWithInstructions(t *testing.T) {
	m, _ := newTestMachine(nil)
	seedVersion(m, testutil.NewTestVersion())

	m.EditCurrentVersionWithInstructions("make it shorter")
	v, _ := m.CurrentVersion()
	assert.Contains(t, v.Suggestions, "[Modified based on your instructions: make it shorter]")
	assert.Len(t, m.State().ConceptSummary.Versions, 1)
}

func TestMachine_ApproveAndReset(t *testing.T) {
	m, _ := newTestMachine(nil)
	seedVersion(m, testutil.NewTestVersion())

	m.ApproveCurrentVersion()
	m.ApproveCurrentVersion()
	s := m.State()
	assert.Equal(t, StepSummary, s.CurrentStep)
	require.NotNil(t, s.ConceptSummary.ApprovedVersion)
	assert.True(t, s.ConceptSummary.ApprovedVersion.Approved)

	m.AdvanceToStep(StepCompletion)
	assert.Equal(t, StepCompletion, m.State().CurrentStep)

	m.ResetForm()
	if diff := cmp.Diff(InitialState(), m.State()); diff != "" {
		t.Errorf("reset mismatch (-want +got):\n%s", diff)
	}
}

func TestMachine_LogRecordsActions(t *testing.T) {
	m, _ := newTestMachine(&recordingGateway{feedback: stubFeedback()})
	m.UpdateIdea("x")
	m.SubmitIdea(context.Background())

	var names []string
	for _, a := range m.Log() {
		names = append(names, a.Name())
	}
	assert.Equal(t, []string{"update_idea", "set_loading", "set_initial_concept", "add_version", "set_loading"}, names)
}

func TestMachine_StateIsACopy(t *testing.T) {
	m, _ := newTestMachine(nil)
	seedVersion(m, testutil.NewTestVersion())

	s := m.State()
	s.ConceptSummary.Versions[0].Summary = "mutated"
	v, _ := m.CurrentVersion()
	assert.NotEqual(t, "mutated", v.Summary)
}

// Overlapping submissions each append a version; the mutex never covers a
// gateway call, so they can run side by side.
func TestMachine_ConcurrentSubmissions(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 4)
	m, _ := newTestMachine(gatewayFunc(func(ctx context.Context, _ intelligence.ConceptRequest) (*intelligence.ConceptFeedback, error) {
		started <- struct{}{}
		select {
		case <-release:
			return stubFeedback(), nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}))
	m.UpdateIdea("x")

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i%2 == 0 {
				m.SubmitIdea(context.Background())
			} else {
				m.SubmitConceptConfirmation(context.Background(), "edited")
			}
		}()
	}
	for i := 0; i < 4; i++ {
		<-started
	}
	assert.True(t, m.State().IsLoading)
	close(release)
	wg.Wait()

	s := m.State()
	assert.Len(t, s.ConceptSummary.Versions, 4)
	assert.False(t, s.IsLoading)
	assert.Equal(t, 3, s.ConceptSummary.CurrentVersionIndex)
}
