package testutil

import (
	"github.com/alexanderramin/pursuit/internal/domain"
	"github.com/google/uuid"
)

// Setup options
type SetupOption func(*domain.Setup)

func WithGradeBand(g domain.GradeBand) SetupOption {
	return func(s *domain.Setup) {
		s.GradeBand = &g
	}
}

func WithPracticalFocus(p domain.PracticalFocus) SetupOption {
	return func(s *domain.Setup) {
		s.PracticalFocus = &p
	}
}

func WithAcademicFocuses(a ...domain.AcademicFocus) SetupOption {
	return func(s *domain.Setup) {
		s.AcademicFocuses = append([]domain.AcademicFocus{}, a...)
	}
}

// NewTestSetup returns a complete setup (3rd-5th, Communication, Math) unless
// overridden by opts.
func NewTestSetup(opts ...SetupOption) domain.Setup {
	g := domain.Grade35
	p := domain.PracticalCommunication
	s := domain.Setup{
		GradeBand:       &g,
		PracticalFocus:  &p,
		AcademicFocuses: []domain.AcademicFocus{domain.AcademicMath},
	}
	for _, o := range opts {
		o(&s)
	}
	return s
}

// Version options
type VersionOption func(*domain.Version)

func WithScores(scores ...float64) VersionOption {
	return func(v *domain.Version) {
		v.Scores = nil
		names := []string{"Clarity", "Academic Integration", "Practical Application"}
		for i, sc := range scores {
			name := "Criterion"
			if i < len(names) {
				name = names[i]
			}
			v.Scores = append(v.Scores, domain.RubricScore{
				Criterion: name,
				Score:     sc,
				MaxScore:  domain.RubricCeiling,
				Feedback:  name + " feedback",
			})
		}
	}
}

func WithQuestions(texts ...string) VersionOption {
	return func(v *domain.Version) {
		v.Questions = nil
		for _, q := range texts {
			v.Questions = append(v.Questions, domain.Question{Text: q})
		}
	}
}

func WithSummary(s string) VersionOption {
	return func(v *domain.Version) {
		v.Summary = s
	}
}

// NewTestVersion returns a version with two scores at 2/4 and one question.
func NewTestVersion(opts ...VersionOption) domain.Version {
	v := domain.Version{
		ID:                  uuid.New().String(),
		Summary:             "Students design a class newsletter.",
		Strengths:           "- Clear audience",
		AreasForImprovement: "- Add assessment detail",
		Suggestions:         "- Add a peer review round",
	}
	WithScores(2, 2)(&v)
	WithQuestions("How will students share their work?")(&v)
	for _, o := range opts {
		o(&v)
	}
	return v
}
