package wizard

import (
	"strings"

	"github.com/alexanderramin/pursuit/internal/domain"
)

// Action is one state transition. Reduce applies it.
type Action interface {
	Name() string
}

// SetupPatch carries the setup fields to merge. Nil fields are left alone.
type SetupPatch struct {
	GradeBand       *domain.GradeBand
	PracticalFocus  *domain.PracticalFocus
	AcademicFocuses []domain.AcademicFocus
}

// VersionPatch carries the version fields to merge. Nil fields are left alone.
type VersionPatch struct {
	Summary             *string
	Strengths           *string
	AreasForImprovement *string
	Suggestions         *string
	Scores              []domain.RubricScore
	Questions           []domain.Question
}

type (
	AdvanceToStep         struct{ Step Step }
	UpdateSetup           struct{ Patch SetupPatch }
	ToggleAcademicFocus   struct{ Focus domain.AcademicFocus }
	CompleteSetup         struct{}
	UpdateIdea            struct{ Text string }
	SetLoading            struct{ Loading bool }
	SetInitialConcept     struct{ Text string }
	AddVersion            struct{ Version domain.Version }
	SetCurrentVersion     struct{ Index int }
	ApproveCurrentVersion struct{}
	EditCurrentVersion    struct{ Patch VersionPatch }
	AppendInstructions    struct{ Text string }
	ResetForm             struct{}
)

func (AdvanceToStep) Name() string         { return "advance_to_step" }
func (UpdateSetup) Name() string           { return "update_setup" }
func (ToggleAcademicFocus) Name() string   { return "toggle_academic_focus" }
func (CompleteSetup) Name() string         { return "complete_setup" }
func (UpdateIdea) Name() string            { return "update_idea" }
func (SetLoading) Name() string            { return "set_loading" }
func (SetInitialConcept) Name() string     { return "set_initial_concept" }
func (AddVersion) Name() string            { return "add_version" }
func (SetCurrentVersion) Name() string     { return "set_current_version" }
func (ApproveCurrentVersion) Name() string { return "approve_current_version" }
func (EditCurrentVersion) Name() string    { return "edit_current_version" }
func (AppendInstructions) Name() string    { return "append_instructions" }
func (ResetForm) Name() string             { return "reset_form" }

// Reduce returns the state after applying a. The input is never modified and
// the result shares no memory with it. Invalid transitions return an
// unchanged copy.
func Reduce(s State, a Action) State {
	next := s.Clone()

	switch a := a.(type) {
	case AdvanceToStep:
		if a.Step.Valid() && a.Step >= next.CurrentStep {
			next.CurrentStep = a.Step
		}

	case UpdateSetup:
		if g := a.Patch.GradeBand; g != nil && g.Valid() {
			v := *g
			next.Setup.GradeBand = &v
		}
		if p := a.Patch.PracticalFocus; p != nil && p.Valid() {
			v := *p
			next.Setup.PracticalFocus = &v
		}
		if a.Patch.AcademicFocuses != nil {
			next.Setup.AcademicFocuses = capAcademics(a.Patch.AcademicFocuses)
		}

	case ToggleAcademicFocus:
		if !a.Focus.Valid() {
			break
		}
		current := next.Setup.AcademicFocuses
		if i := indexOfFocus(current, a.Focus); i >= 0 {
			next.Setup.AcademicFocuses = append(current[:i:i], current[i+1:]...)
			break
		}
		next.Setup.AcademicFocuses = capAcademics(append(current, a.Focus))

	case CompleteSetup:
		if next.Setup.Complete() {
			next.CurrentStep = max(next.CurrentStep, StepIdea)
		}

	case UpdateIdea:
		next.Idea.FreeformText = a.Text

	case SetLoading:
		next.IsLoading = a.Loading

	case SetInitialConcept:
		text := a.Text
		next.ConceptSummary.InitialConcept = &text

	case AddVersion:
		v := a.Version.Clone()
		v.Approved = false
		if len(v.Scores) > 0 && v.AllAtCeiling() {
			v.Questions = nil
		}
		next.ConceptSummary.Versions = append(next.ConceptSummary.Versions, v)
		next.ConceptSummary.CurrentVersionIndex = len(next.ConceptSummary.Versions) - 1
		next.CurrentStep = max(next.CurrentStep, StepConfirm)

	case SetCurrentVersion:
		if a.Index >= 0 && a.Index < len(next.ConceptSummary.Versions) {
			next.ConceptSummary.CurrentVersionIndex = a.Index
		}

	case ApproveCurrentVersion:
		i := next.ConceptSummary.CurrentVersionIndex
		if i < 0 || i >= len(next.ConceptSummary.Versions) {
			break
		}
		next.ConceptSummary.Versions[i].Approved = true
		approved := next.ConceptSummary.Versions[i].Clone()
		next.ConceptSummary.ApprovedVersion = &approved
		next.CurrentStep = max(next.CurrentStep, StepSummary)

	case EditCurrentVersion:
		i := next.ConceptSummary.CurrentVersionIndex
		if i < 0 || i >= len(next.ConceptSummary.Versions) {
			break
		}
		applyVersionPatch(&next.ConceptSummary.Versions[i], a.Patch)

	case AppendInstructions:
		i := next.ConceptSummary.CurrentVersionIndex
		if i < 0 || i >= len(next.ConceptSummary.Versions) || strings.TrimSpace(a.Text) == "" {
			break
		}
		v := &next.ConceptSummary.Versions[i]
		v.Suggestions += "\n\n[Modified based on your instructions: " + a.Text + "]"

	case ResetForm:
		return InitialState()
	}

	return next
}

// capAcademics drops invalid and duplicate entries, keeping the newest
// MaxAcademicFocuses in insertion order.
func capAcademics(in []domain.AcademicFocus) []domain.AcademicFocus {
	out := make([]domain.AcademicFocus, 0, len(in))
	for _, f := range in {
		if !f.Valid() {
			continue
		}
		if i := indexOfFocus(out, f); i >= 0 {
			out = append(out[:i], out[i+1:]...)
		}
		out = append(out, f)
	}
	if len(out) > domain.MaxAcademicFocuses {
		out = out[len(out)-domain.MaxAcademicFocuses:]
	}
	return append([]domain.AcademicFocus{}, out...)
}

func indexOfFocus(fs []domain.AcademicFocus, f domain.AcademicFocus) int {
	for i, v := range fs {
		if v == f {
			return i
		}
	}
	return -1
}

func applyVersionPatch(v *domain.Version, p VersionPatch) {
	if p.Summary != nil {
		v.Summary = *p.Summary
	}
	if p.Strengths != nil {
		v.Strengths = *p.Strengths
	}
	if p.AreasForImprovement != nil {
		v.AreasForImprovement = *p.AreasForImprovement
	}
	if p.Suggestions != nil {
		v.Suggestions = *p.Suggestions
	}
	if p.Scores != nil {
		v.Scores = append([]domain.RubricScore{}, p.Scores...)
	}
	if p.Questions != nil {
		v.Questions = append([]domain.Question{}, p.Questions...)
	}
}
