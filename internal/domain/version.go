package domain

// RubricCeiling is the top score of every rubric criterion.
const RubricCeiling = 4

// RubricScore is one criterion's score within a Version.
type RubricScore struct {
	Criterion string  `json:"criterion"`
	Score     float64 `json:"score"`
	MaxScore  float64 `json:"maxScore"`
	Feedback  string  `json:"feedback,omitempty"`
}

// AtCeiling reports whether the criterion has reached its maximum.
func (r RubricScore) AtCeiling() bool {
	return r.Score >= r.MaxScore
}

// Question is a follow-up question attached to a Version.
type Question struct {
	Text      string `json:"question"`
	Criterion string `json:"criterion,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// QuestionAnswer pairs a follow-up question with the user's answer.
type QuestionAnswer struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Version is one snapshot of concept-summary feedback in the revision history.
type Version struct {
	ID                  string        `json:"id"`
	Summary             string        `json:"conceptSummary"`
	Strengths           string        `json:"strengths,omitempty"`
	AreasForImprovement string        `json:"areasForImprovement,omitempty"`
	Suggestions         string        `json:"suggestions,omitempty"`
	Scores              []RubricScore `json:"scores"`
	Questions           []Question    `json:"questions,omitempty"`
	Approved            bool          `json:"approved,omitempty"`
}

// AllAtCeiling reports whether every score has reached its maximum.
// It is vacuously true for a version without scores.
func (v Version) AllAtCeiling() bool {
	for _, s := range v.Scores {
		if !s.AtCeiling() {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of v.
func (v Version) Clone() Version {
	out := v
	out.Scores = append([]RubricScore{}, v.Scores...)
	if v.Questions != nil {
		out.Questions = append([]Question{}, v.Questions...)
	}
	return out
}
