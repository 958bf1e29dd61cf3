package intelligence

import (
	"fmt"
	"math"

	"github.com/alexanderramin/pursuit/internal/domain"
)

// Fallback criteria are coarser than the rubric; they only stand in until a
// model response arrives.
const (
	fallbackClarity   = "Clarity"
	fallbackAcademic  = "Academic Integration"
	fallbackPractical = "Practical Application"
)

const (
	fallbackAreas       = "- Consider adding more detail about implementation\n- Think about assessment strategies"
	fallbackSuggestions = "- Add specific activities or projects\n- Consider how to measure student progress"

	refinedSummarySuffix = "\n\nThe pursuit now includes more interactive elements and clearer success criteria based on your feedback."
	refinedStrength      = "- Incorporates student feedback effectively"
)

var activitiesQuestion = domain.Question{
	Text:   "What specific activities or projects will students complete?",
	Reason: "Concrete activities will help bring the concept to life.",
}

// FallbackInitialConcept synthesizes the initial concept from the setup and idea.
func FallbackInitialConcept(s domain.Setup, idea string) string {
	grade, practical := "", ""
	if s.GradeBand != nil {
		grade = string(*s.GradeBand)
	}
	if s.PracticalFocus != nil {
		practical = string(*s.PracticalFocus)
	}
	return fmt.Sprintf("A pursuit focused on %s for %s students, incorporating %s and based on the idea: %s",
		practical, grade, joinAcademics(s.AcademicFocuses), idea)
}

func fallbackScore(criterion string, score float64, feedback string) domain.RubricScore {
	return domain.RubricScore{Criterion: criterion, Score: score, MaxScore: domain.RubricCeiling, Feedback: feedback}
}

// FallbackIdeaVersion is the version shown when idea evaluation fails.
// It has no ID; callers assign one.
func FallbackIdeaVersion(s domain.Setup, idea string) domain.Version {
	return domain.Version{
		Summary:             FallbackInitialConcept(s, idea),
		Strengths:           "- Addresses the specified academic and practical focuses\n- Shows potential for student engagement",
		AreasForImprovement: fallbackAreas,
		Suggestions:         fallbackSuggestions,
		Scores: []domain.RubricScore{
			fallbackScore(fallbackClarity, 2, "The concept needs more specific details."),
			fallbackScore(fallbackAcademic, 2, "Academic focuses need to be more explicitly integrated."),
			fallbackScore(fallbackPractical, 2, "Consider adding more real-world connections."),
		},
		Questions: []domain.Question{
			{
				Text:   "How will students demonstrate their learning in this pursuit?",
				Reason: "Clear assessment criteria will help track student progress.",
			},
			activitiesQuestion,
		},
	}
}

// FallbackConfirmationVersion is the version shown when evaluating an edited
// summary fails. The summary is kept as typed.
func FallbackConfirmationVersion(summary string) domain.Version {
	return domain.Version{
		Summary:             summary,
		Strengths:           "- Clearly defined concept\n- Addresses the specified academic and practical focuses",
		AreasForImprovement: fallbackAreas,
		Suggestions:         fallbackSuggestions,
		Scores: []domain.RubricScore{
			fallbackScore(fallbackClarity, 3, "The concept is clear but could use more specific details."),
			fallbackScore(fallbackAcademic, 3, "Good integration of academic focuses, but could be more explicit."),
			fallbackScore(fallbackPractical, 3, "Strong practical focus, but consider real-world connections."),
		},
		Questions: []domain.Question{
			{
				Text:   "How will you assess student learning throughout this pursuit?",
				Reason: "Clear assessment criteria will help track student progress.",
			},
			activitiesQuestion,
		},
	}
}

// FallbackRefinedVersion derives the next version from current when
// evaluating answers fails. Each score rises by one up to its maximum, and
// feedback is dropped once a criterion reaches it.
func FallbackRefinedVersion(current domain.Version) domain.Version {
	next := domain.Version{
		Summary:     current.Summary + refinedSummarySuffix,
		Suggestions: current.Suggestions,
		Scores:      make([]domain.RubricScore, 0, len(current.Scores)),
	}
	if current.Strengths != "" {
		next.Strengths = current.Strengths + "\n" + refinedStrength
	} else {
		next.Strengths = "- Engaging and interactive\n" + refinedStrength
	}

	for _, s := range current.Scores {
		raised := s
		raised.Score = math.Min(s.Score+1, s.MaxScore)
		if raised.AtCeiling() {
			raised.Feedback = ""
		}
		next.Scores = append(next.Scores, raised)
	}

	if !next.AllAtCeiling() {
		next.AreasForImprovement = current.AreasForImprovement
		next.Questions = []domain.Question{{
			Text:   "Any additional thoughts on how to make this pursuit more effective?",
			Reason: "Your insights can help refine the pursuit further.",
		}}
	}
	return next
}
