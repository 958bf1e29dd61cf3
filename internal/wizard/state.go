// Package wizard holds the pursuit wizard's state and the transitions that
// advance it from setup through an approved concept summary.
package wizard

import "github.com/alexanderramin/pursuit/internal/domain"

// Step is a 1-based wizard step.
type Step int

const (
	StepSetup Step = iota + 1
	StepIdea
	StepConfirm
	StepSummary
	StepCompletion
)

// LastStep is the terminal step, reached only by approving a version.
const LastStep = StepCompletion

func (s Step) Valid() bool { return s >= StepSetup && s <= LastStep }

func (s Step) String() string {
	switch s {
	case StepSetup:
		return "setup"
	case StepIdea:
		return "idea"
	case StepConfirm:
		return "confirm"
	case StepSummary:
		return "summary"
	case StepCompletion:
		return "completion"
	default:
		return "unknown"
	}
}

// Idea is the freeform text captured on the idea step.
type Idea struct {
	FreeformText string `json:"freeformText"`
}

// ConceptSummary is the append-only version history.
type ConceptSummary struct {
	Versions            []domain.Version `json:"versions"`
	CurrentVersionIndex int              `json:"currentVersionIndex"`
	ApprovedVersion     *domain.Version  `json:"approvedVersion"`
	InitialConcept      *string          `json:"initialConcept"`
}

// State is the whole wizard state for one session.
type State struct {
	CurrentStep    Step           `json:"currentStep"`
	Setup          domain.Setup   `json:"setup"`
	Idea           Idea           `json:"idea"`
	ConceptSummary ConceptSummary `json:"conceptSummary"`
	IsLoading      bool           `json:"isLoading"`
}

// InitialState returns the empty state a session starts from.
func InitialState() State {
	return State{
		CurrentStep: StepSetup,
		Setup:       domain.Setup{AcademicFocuses: []domain.AcademicFocus{}},
		ConceptSummary: ConceptSummary{
			Versions:            []domain.Version{},
			CurrentVersionIndex: -1,
		},
	}
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	out := s
	out.Setup = s.Setup.Clone()
	out.ConceptSummary.Versions = make([]domain.Version, len(s.ConceptSummary.Versions))
	for i, v := range s.ConceptSummary.Versions {
		out.ConceptSummary.Versions[i] = v.Clone()
	}
	if s.ConceptSummary.ApprovedVersion != nil {
		v := s.ConceptSummary.ApprovedVersion.Clone()
		out.ConceptSummary.ApprovedVersion = &v
	}
	if s.ConceptSummary.InitialConcept != nil {
		c := *s.ConceptSummary.InitialConcept
		out.ConceptSummary.InitialConcept = &c
	}
	return out
}

// CurrentVersion returns the selected version, if any.
func (s State) CurrentVersion() (domain.Version, bool) {
	i := s.ConceptSummary.CurrentVersionIndex
	if i < 0 || i >= len(s.ConceptSummary.Versions) {
		return domain.Version{}, false
	}
	return s.ConceptSummary.Versions[i], true
}
