package wizard

import (
	"context"
	"strings"
	"sync"

	"github.com/alexanderramin/pursuit/internal/domain"
	"github.com/alexanderramin/pursuit/internal/intelligence"
	"github.com/alexanderramin/pursuit/internal/llm"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PromptSource supplies the prompt text sent with every concept request.
type PromptSource interface {
	Active() string
}

// Machine is the single mutator of a wizard session. Its methods are safe
// for concurrent use; the gateway is always called without the lock held.
type Machine struct {
	gateway intelligence.ConceptGateway
	prompts PromptSource
	log     *zap.Logger
	newID   func() string

	mu      sync.Mutex
	state   State
	actions []Action
}

// NewMachine creates a machine in the initial state. prompts may be nil, in
// which case the gateway applies its own default prompt.
func NewMachine(gateway intelligence.ConceptGateway, prompts PromptSource, log *zap.Logger) *Machine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Machine{
		gateway: gateway,
		prompts: prompts,
		log:     log,
		newID:   func() string { return uuid.New().String() },
		state:   InitialState(),
	}
}

// Dispatch applies a to the current state and records it.
func (m *Machine) Dispatch(a Action) {
	m.mu.Lock()
	m.state = Reduce(m.state, a)
	m.actions = append(m.actions, a)
	m.mu.Unlock()
	m.log.Debug("wizard action", zap.String("action", a.Name()))
}

// State returns a copy of the current state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Clone()
}

// Log returns the actions applied so far, oldest first.
func (m *Machine) Log() []Action {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Action{}, m.actions...)
}

// CurrentVersion returns a copy of the selected version, if any.
func (m *Machine) CurrentVersion() (domain.Version, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.state.CurrentVersion()
	if !ok {
		return domain.Version{}, false
	}
	return v.Clone(), true
}

// AdvanceToStep moves forward to step. Earlier steps are ignored.
func (m *Machine) AdvanceToStep(step Step) { m.Dispatch(AdvanceToStep{Step: step}) }

// UpdateSetup merges the non-nil fields of patch into the setup.
func (m *Machine) UpdateSetup(patch SetupPatch) { m.Dispatch(UpdateSetup{Patch: patch}) }

// ToggleAcademicFocus adds or removes f. Adding a third focus drops the oldest.
func (m *Machine) ToggleAcademicFocus(f domain.AcademicFocus) {
	m.Dispatch(ToggleAcademicFocus{Focus: f})
}

// CompleteSetup advances to the idea step once every setup field is set.
func (m *Machine) CompleteSetup() { m.Dispatch(CompleteSetup{}) }

// UpdateIdea replaces the freeform idea text.
func (m *Machine) UpdateIdea(text string) { m.Dispatch(UpdateIdea{Text: text}) }

// SetCurrentVersion selects version i. Out-of-range indexes are ignored.
func (m *Machine) SetCurrentVersion(i int) { m.Dispatch(SetCurrentVersion{Index: i}) }

// ApproveCurrentVersion marks the current version approved.
func (m *Machine) ApproveCurrentVersion() { m.Dispatch(ApproveCurrentVersion{}) }

// EditCurrentVersion merges the non-nil fields of patch into the current version.
func (m *Machine) EditCurrentVersion(patch VersionPatch) {
	m.Dispatch(EditCurrentVersion{Patch: patch})
}

// EditCurrentVersionWithInstructions records free-text edit instructions on
// the current version's suggestions.
func (m *Machine) EditCurrentVersionWithInstructions(text string) {
	m.Dispatch(AppendInstructions{Text: text})
}

// ResetForm returns the session to its initial state.
func (m *Machine) ResetForm() { m.Dispatch(ResetForm{}) }

// SubmitIdea evaluates the freeform idea and appends the resulting version.
// A gateway failure appends fallback content instead.
func (m *Machine) SubmitIdea(ctx context.Context) {
	s := m.State()
	idea := s.Idea.FreeformText
	if strings.TrimSpace(idea) == "" {
		return
	}

	m.Dispatch(SetLoading{Loading: true})
	defer m.Dispatch(SetLoading{Loading: false})

	fb, err := m.generate(ctx, llm.TaskIdea, intelligence.BuildIdeaRequest(s.Setup, idea))
	if err != nil {
		m.log.Warn("idea evaluation failed, using fallback", zap.Error(err))
		m.Dispatch(SetInitialConcept{Text: intelligence.FallbackInitialConcept(s.Setup, idea)})
		m.addVersion(intelligence.FallbackIdeaVersion(s.Setup, idea))
		return
	}
	m.Dispatch(SetInitialConcept{Text: fb.Summary})
	m.addVersion(fb.Version(""))
}

// SubmitConceptConfirmation evaluates an edited summary and appends the
// resulting version. Blank text is ignored.
func (m *Machine) SubmitConceptConfirmation(ctx context.Context, edited string) {
	if strings.TrimSpace(edited) == "" {
		return
	}
	s := m.State()

	m.Dispatch(SetLoading{Loading: true})
	defer m.Dispatch(SetLoading{Loading: false})

	fb, err := m.generate(ctx, llm.TaskConfirmation, intelligence.BuildConfirmationRequest(s.Setup, edited))
	if err != nil {
		m.log.Warn("summary evaluation failed, using fallback", zap.Error(err))
		m.addVersion(intelligence.FallbackConfirmationVersion(edited))
		return
	}
	m.addVersion(fb.Version(""))
}

// AnswerQuestions folds answers into the current version and appends the
// refined version. It needs a current version with at least one question.
func (m *Machine) AnswerQuestions(ctx context.Context, answers []domain.QuestionAnswer) {
	s := m.State()
	current, ok := s.CurrentVersion()
	if !ok || len(current.Questions) == 0 {
		return
	}

	m.Dispatch(SetLoading{Loading: true})
	defer m.Dispatch(SetLoading{Loading: false})

	fb, err := m.generate(ctx, llm.TaskRefinement, intelligence.BuildRefinementRequest(s.Setup, current.Summary, answers))
	if err != nil {
		m.log.Warn("answer evaluation failed, using fallback", zap.Error(err))
		m.addVersion(intelligence.FallbackRefinedVersion(current))
		return
	}

	next := fb.Version("")
	next.Summary = domain.CoalesceStr(next.Summary, current.Summary)
	next.Strengths = domain.CoalesceStr(next.Strengths, current.Strengths)
	next.AreasForImprovement = domain.CoalesceStr(next.AreasForImprovement, current.AreasForImprovement)
	next.Suggestions = domain.CoalesceStr(next.Suggestions, current.Suggestions)
	if len(next.Scores) == 0 {
		next.Scores = append([]domain.RubricScore{}, current.Scores...)
	}
	m.addVersion(next)
}

func (m *Machine) generate(ctx context.Context, task llm.TaskType, text string) (*intelligence.ConceptFeedback, error) {
	if m.gateway == nil {
		return nil, llm.ErrProviderUnavailable
	}
	req := intelligence.ConceptRequest{IdeaOrSummaryText: text, Stage: string(task)}
	if m.prompts != nil {
		req.PromptOverride = m.prompts.Active()
	}
	return m.gateway.GenerateConcept(ctx, req)
}

func (m *Machine) addVersion(v domain.Version) {
	v.ID = m.newID()
	m.Dispatch(AddVersion{Version: v})
}
