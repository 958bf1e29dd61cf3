package cli

import (
	"errors"
	"fmt"

	"github.com/alexanderramin/pursuit/internal/cli/formatter"
	"github.com/alexanderramin/pursuit/internal/domain"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// pursuitHuhTheme returns the huh theme used by every form, built on the
// formatter palette.
func pursuitHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.MultiSelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorGreen)
	t.Focused.SelectedPrefix = lipgloss.NewStyle().Foreground(formatter.ColorGreen).SetString("[x] ")
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.UnselectedPrefix = lipgloss.NewStyle().Foreground(formatter.ColorDim).SetString("[ ] ")
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.ErrorMessage = lipgloss.NewStyle().Foreground(formatter.ColorRed)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

func ignoreAbort(err error) error {
	if errors.Is(err, huh.ErrUserAborted) {
		return nil
	}
	return err
}

func newForm(fields ...huh.Field) *huh.Form {
	return huh.NewForm(huh.NewGroup(fields...)).WithTheme(pursuitHuhTheme()).WithShowHelp(false)
}

// huhPrompter collects wizard input with huh forms on the terminal.
type huhPrompter struct{}

func (huhPrompter) Setup(in *setupInput) error {
	gradeOpts := make([]huh.Option[domain.GradeBand], len(domain.GradeBands))
	for i, g := range domain.GradeBands {
		gradeOpts[i] = huh.NewOption(string(g), g)
	}
	practicalOpts := make([]huh.Option[domain.PracticalFocus], len(domain.PracticalFocuses))
	for i, p := range domain.PracticalFocuses {
		practicalOpts[i] = huh.NewOption(p.Label(), p)
	}
	academicOpts := make([]huh.Option[domain.AcademicFocus], len(domain.AcademicFocuses))
	for i, a := range domain.AcademicFocuses {
		academicOpts[i] = huh.NewOption(a.Label(), a)
	}

	return newForm(
		huh.NewSelect[domain.GradeBand]().
			Title("Grade band").
			Options(gradeOpts...).
			Value(&in.Grade),
		huh.NewSelect[domain.PracticalFocus]().
			Title("Practical focus").
			Options(practicalOpts...).
			Value(&in.Practical),
		huh.NewMultiSelect[domain.AcademicFocus]().
			Title("Academic focus").
			Description(fmt.Sprintf("Up to %d. A newer pick replaces the oldest.", domain.MaxAcademicFocuses)).
			Options(academicOpts...).
			Value(&in.Academics).
			Validate(func(v []domain.AcademicFocus) error {
				if len(v) == 0 {
					return errors.New("pick at least one academic focus")
				}
				return nil
			}),
	).Run()
}

func (huhPrompter) Idea(idea *string) error {
	return newForm(
		huh.NewText().
			Title("What is your pursuit idea?").
			Description("Describe what students will do and what they will make.").
			Lines(6).
			Value(idea).
			Validate(requireText("an idea")),
	).Run()
}

func (huhPrompter) Confirm(summary *string) error {
	return newForm(
		huh.NewText().
			Title("Confirm your concept").
			Description("Edit the summary so it says what you mean, then submit.").
			Lines(6).
			Value(summary).
			Validate(requireText("a summary")),
	).Run()
}

func (huhPrompter) NextAction(opts []huh.Option[summaryAction]) (summaryAction, error) {
	var choice summaryAction
	err := newForm(
		huh.NewSelect[summaryAction]().
			Title("What next?").
			Options(opts...).
			Value(&choice),
	).Run()
	return choice, err
}

func (huhPrompter) Answers(questions []domain.Question) ([]string, error) {
	answers := make([]string, len(questions))
	fields := make([]huh.Field, len(questions))
	for i, q := range questions {
		fields[i] = huh.NewText().
			Title(q.Text).
			Description(q.Reason).
			Lines(3).
			Value(&answers[i])
	}
	return answers, newForm(fields...).Run()
}

func (huhPrompter) EditSummary(text *string) error {
	return newForm(
		huh.NewText().
			Title("Summary").
			Lines(6).
			Value(text).
			Validate(requireText("a summary")),
	).Run()
}

func (huhPrompter) Instructions() (string, error) {
	var text string
	err := newForm(
		huh.NewInput().
			Title("How should this version change?").
			Value(&text),
	).Run()
	return text, err
}

func (huhPrompter) Browse(b *versionBrowser) error {
	_, err := tea.NewProgram(b, tea.WithAltScreen()).Run()
	return err
}

func (huhPrompter) Again() (bool, error) {
	again := false
	err := newForm(
		huh.NewConfirm().
			Title("Start another pursuit?").
			Affirmative("Yes").
			Negative("No").
			Value(&again),
	).Run()
	return again, err
}

