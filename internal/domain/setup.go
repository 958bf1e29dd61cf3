package domain

import "strings"

type GradeBand string

const (
	GradeK2 GradeBand = "K-2nd"
	Grade35 GradeBand = "3rd-5th"
	Grade68 GradeBand = "6th-8th"
)

// GradeBands lists the grade bands in display order.
var GradeBands = []GradeBand{GradeK2, Grade35, Grade68}

func (g GradeBand) Valid() bool {
	for _, v := range GradeBands {
		if v == g {
			return true
		}
	}
	return false
}

type PracticalFocus string

const (
	PracticalCommunication   PracticalFocus = "Communication"
	PracticalCriticalThought PracticalFocus = "Critical Thinking"
	PracticalDailyLiving     PracticalFocus = "Daily Living"
	PracticalFeedback        PracticalFocus = "Feedback"
	PracticalPersonalFinance PracticalFocus = "Personal Finance"
	PracticalPublicSpeaking  PracticalFocus = "Public Speaking"
	PracticalSelfCare        PracticalFocus = "Self-Care"
	PracticalWriting         PracticalFocus = "Writing"
)

// PracticalFocuses lists the practical focus areas in display order.
var PracticalFocuses = []PracticalFocus{
	PracticalCommunication, PracticalCriticalThought, PracticalDailyLiving,
	PracticalFeedback, PracticalPersonalFinance, PracticalPublicSpeaking,
	PracticalSelfCare, PracticalWriting,
}

var practicalLabels = map[PracticalFocus]string{
	PracticalCommunication:   "💬 Communication",
	PracticalCriticalThought: "🧠 Critical Thinking",
	PracticalDailyLiving:     "🏠 Daily Living",
	PracticalFeedback:        "🔄 Feedback",
	PracticalPersonalFinance: "💵 Personal Finance",
	PracticalPublicSpeaking:  "🎤 Public Speaking",
	PracticalSelfCare:        "🪴 Self-Care",
	PracticalWriting:         "✍🏻 Writing",
}

func (p PracticalFocus) Valid() bool {
	_, ok := practicalLabels[p]
	return ok
}

// Label returns the emoji-prefixed display label.
func (p PracticalFocus) Label() string {
	if l, ok := practicalLabels[p]; ok {
		return l
	}
	return string(p)
}

type AcademicFocus string

const (
	AcademicArts            AcademicFocus = "Arts"
	AcademicComputerScience AcademicFocus = "Computer Science"
	AcademicMath            AcademicFocus = "Math"
	AcademicReading         AcademicFocus = "Reading"
	AcademicScience         AcademicFocus = "Science"
	AcademicSocialStudies   AcademicFocus = "Social Studies"
)

// AcademicFocuses lists the academic focuses in display order.
var AcademicFocuses = []AcademicFocus{
	AcademicArts, AcademicComputerScience, AcademicMath,
	AcademicReading, AcademicScience, AcademicSocialStudies,
}

var academicLabels = map[AcademicFocus]string{
	AcademicArts:            "🎭 Arts",
	AcademicComputerScience: "🤖 Computer Science",
	AcademicMath:            "📐 Math",
	AcademicReading:         "📚 Reading",
	AcademicScience:         "🔬 Science",
	AcademicSocialStudies:   "🏛️ Social Studies",
}

func (a AcademicFocus) Valid() bool {
	_, ok := academicLabels[a]
	return ok
}

// Label returns the emoji-prefixed display label.
func (a AcademicFocus) Label() string {
	if l, ok := academicLabels[a]; ok {
		return l
	}
	return string(a)
}

// MaxAcademicFocuses caps how many academic focuses a pursuit may combine.
const MaxAcademicFocuses = 2

// Setup holds the selections made on the first wizard step.
type Setup struct {
	GradeBand       *GradeBand      `json:"gradeBand"`
	PracticalFocus  *PracticalFocus `json:"practicalFocus"`
	AcademicFocuses []AcademicFocus `json:"academicFocuses"`
}

// Complete reports whether every setup field has a value.
func (s Setup) Complete() bool {
	return s.GradeBand != nil && s.PracticalFocus != nil && len(s.AcademicFocuses) > 0
}

// Clone returns a copy that shares no memory with s.
func (s Setup) Clone() Setup {
	out := Setup{}
	if s.GradeBand != nil {
		g := *s.GradeBand
		out.GradeBand = &g
	}
	if s.PracticalFocus != nil {
		p := *s.PracticalFocus
		out.PracticalFocus = &p
	}
	out.AcademicFocuses = append([]AcademicFocus{}, s.AcademicFocuses...)
	return out
}

// ParseGradeBand accepts a grade band value, case-insensitively.
func ParseGradeBand(s string) (GradeBand, bool) {
	for _, g := range GradeBands {
		if strings.EqualFold(string(g), s) {
			return g, true
		}
	}
	return "", false
}

// ParsePracticalFocus accepts a practical focus value or its label.
func ParsePracticalFocus(s string) (PracticalFocus, bool) {
	for _, p := range PracticalFocuses {
		if strings.EqualFold(string(p), s) || p.Label() == s {
			return p, true
		}
	}
	return "", false
}

// ParseAcademicFocus accepts an academic focus value or its label.
func ParseAcademicFocus(s string) (AcademicFocus, bool) {
	for _, a := range AcademicFocuses {
		if strings.EqualFold(string(a), s) || a.Label() == s {
			return a, true
		}
	}
	return "", false
}
