package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/pursuit/internal/domain"
)

// FormatSetup renders the setup selections as one line per field.
func FormatSetup(s domain.Setup) string {
	grade, practical := Dim("(not set)"), Dim("(not set)")
	if s.GradeBand != nil {
		grade = string(*s.GradeBand)
	}
	if s.PracticalFocus != nil {
		practical = s.PracticalFocus.Label()
	}
	academics := make([]string, len(s.AcademicFocuses))
	for i, a := range s.AcademicFocuses {
		academics[i] = a.Label()
	}
	academic := strings.Join(academics, ", ")
	if academic == "" {
		academic = Dim("(not set)")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "  Grade levels:    %s\n", grade)
	fmt.Fprintf(&b, "  Practical focus: %s\n", practical)
	fmt.Fprintf(&b, "  Academic focus:  %s\n", academic)
	return b.String()
}

// FormatScores renders one bar per rubric criterion with its feedback.
func FormatScores(scores []domain.RubricScore) string {
	if len(scores) == 0 {
		return ""
	}
	width := 0
	for _, s := range scores {
		width = max(width, len([]rune(s.Criterion)))
	}

	var b strings.Builder
	for _, s := range scores {
		pad := strings.Repeat(" ", width-len([]rune(s.Criterion)))
		fmt.Fprintf(&b, "  %s%s  %s\n", s.Criterion, pad, ScoreBar(s.Score, s.MaxScore, 8))
		if s.Feedback != "" {
			fmt.Fprintf(&b, "    %s\n", Dim(s.Feedback))
		}
	}
	return b.String()
}

func writeSection(b *strings.Builder, title, body string) {
	if strings.TrimSpace(body) == "" {
		return
	}
	b.WriteString(Header(title))
	b.WriteString("\n")
	for _, line := range strings.Split(strings.TrimRight(body, "\n"), "\n") {
		b.WriteString("  " + line + "\n")
	}
	b.WriteString("\n")
}

// FormatVersion renders one version of the concept summary. index is
// zero-based; total is the number of versions in the history.
func FormatVersion(v domain.Version, index, total int) string {
	var b strings.Builder

	b.WriteString(StyleBold.Render(v.Summary))
	b.WriteString("\n\n")

	if scores := FormatScores(v.Scores); scores != "" {
		b.WriteString(Header("Rubric"))
		b.WriteString("\n")
		b.WriteString(scores)
		b.WriteString("\n")
	}
	writeSection(&b, "Strengths", v.Strengths)
	writeSection(&b, "Areas for improvement", v.AreasForImprovement)
	writeSection(&b, "Suggestions", v.Suggestions)

	if len(v.Questions) > 0 {
		b.WriteString(Header("Questions"))
		b.WriteString("\n")
		for i, q := range v.Questions {
			fmt.Fprintf(&b, "  %s %s\n", StyleYellow.Render(fmt.Sprintf("%d.", i+1)), q.Text)
			if q.Reason != "" {
				fmt.Fprintf(&b, "     %s\n", Dim(q.Reason))
			}
		}
	}

	title := fmt.Sprintf("Version %d of %d", index+1, total)
	if v.Approved {
		title += " ✔ approved"
	}
	return RenderBox(title, strings.TrimRight(b.String(), "\n"))
}

// FormatCompletion renders the final approved summary.
func FormatCompletion(setup domain.Setup, approved domain.Version) string {
	var b strings.Builder
	b.WriteString(FormatSetup(setup))
	b.WriteString("\n")
	b.WriteString(StyleBold.Render(approved.Summary))
	b.WriteString("\n")
	return RenderBox("Pursuit concept approved", b.String())
}
