package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/alexanderramin/pursuit/internal/cli/formatter"
	"github.com/alexanderramin/pursuit/internal/domain"
	"github.com/alexanderramin/pursuit/internal/wizard"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

func newWizardCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "wizard",
		Short: "Build a pursuit concept step by step",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !app.interactive() {
				return errors.New("the wizard needs an interactive terminal; use generate instead")
			}
			w := &wizardSession{
				m:   wizard.NewMachine(app.Gateway, app.Prompts, app.logger()),
				in:  huhPrompter{},
				out: cmd.OutOrStdout(),
				err: cmd.ErrOrStderr(),
			}
			return ignoreAbort(w.run(cmd.Context()))
		},
	}
}

type setupInput struct {
	Grade     domain.GradeBand
	Practical domain.PracticalFocus
	Academics []domain.AcademicFocus
}

// wizardPrompter collects the input for each wizard step. Every method
// returns huh.ErrUserAborted when the user backs out.
type wizardPrompter interface {
	Setup(in *setupInput) error
	Idea(idea *string) error
	Confirm(summary *string) error
	NextAction(opts []huh.Option[summaryAction]) (summaryAction, error)
	Answers(questions []domain.Question) ([]string, error)
	EditSummary(text *string) error
	Instructions() (string, error)
	Browse(b *versionBrowser) error
	Again() (bool, error)
}

// wizardSession renders the step the machine is on and feeds the user's
// input back as actions.
type wizardSession struct {
	m   *wizard.Machine
	in  wizardPrompter
	out io.Writer
	err io.Writer
}

func (w *wizardSession) run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		var (
			done bool
			err  error
		)
		switch w.m.State().CurrentStep {
		case wizard.StepSetup:
			err = w.setupStep()
		case wizard.StepIdea:
			err = w.ideaStep(ctx)
		case wizard.StepConfirm:
			err = w.confirmStep(ctx)
		case wizard.StepSummary:
			err = w.summaryStep(ctx)
		case wizard.StepCompletion:
			done, err = w.completionStep()
		}
		if err != nil || done {
			return err
		}
	}
}

// withSpinner runs fn with a spinner on stderr.
func (w *wizardSession) withSpinner(msg string, fn func()) {
	stop := formatter.StartSpinner(w.err, msg)
	defer stop()
	fn()
}

func (w *wizardSession) setupStep() error {
	s := w.m.State().Setup
	prev := append([]domain.AcademicFocus{}, s.AcademicFocuses...)
	in := setupInput{Academics: append([]domain.AcademicFocus{}, prev...)}
	if s.GradeBand != nil {
		in.Grade = *s.GradeBand
	}
	if s.PracticalFocus != nil {
		in.Practical = *s.PracticalFocus
	}
	if err := w.in.Setup(&in); err != nil {
		return err
	}

	w.m.UpdateSetup(wizard.SetupPatch{GradeBand: &in.Grade, PracticalFocus: &in.Practical})
	applyAcademicSelection(w.m, prev, in.Academics)
	w.m.CompleteSetup()
	return nil
}

// applyAcademicSelection turns the difference between prev and selected into
// toggles, so picks beyond the limit push out the oldest focus.
func applyAcademicSelection(m *wizard.Machine, prev, selected []domain.AcademicFocus) {
	for _, f := range prev {
		if !slices.Contains(selected, f) {
			m.ToggleAcademicFocus(f)
		}
	}
	for _, f := range selected {
		if !slices.Contains(prev, f) {
			m.ToggleAcademicFocus(f)
		}
	}
}

func (w *wizardSession) ideaStep(ctx context.Context) error {
	s := w.m.State()
	fmt.Fprint(w.out, formatter.FormatSetup(s.Setup))
	fmt.Fprintln(w.out)

	idea := s.Idea.FreeformText
	if err := w.in.Idea(&idea); err != nil {
		return err
	}

	w.m.UpdateIdea(idea)
	w.withSpinner("Evaluating your idea...", func() { w.m.SubmitIdea(ctx) })
	return nil
}

// confirmStep only re-evaluates the summary when the user changed it.
func (w *wizardSession) confirmStep(ctx context.Context) error {
	s := w.m.State()
	seed := deref(s.ConceptSummary.InitialConcept)
	if v, ok := s.CurrentVersion(); ok && seed == "" {
		seed = v.Summary
	}

	summary := seed
	if err := w.in.Confirm(&summary); err != nil {
		return err
	}

	if strings.TrimSpace(summary) != strings.TrimSpace(seed) {
		w.withSpinner("Evaluating your summary...", func() { w.m.SubmitConceptConfirmation(ctx, summary) })
	}
	w.m.AdvanceToStep(wizard.StepSummary)
	return nil
}

type summaryAction string

const (
	actionAnswer   summaryAction = "answer"
	actionEdit     summaryAction = "edit"
	actionInstruct summaryAction = "instruct"
	actionBrowse   summaryAction = "browse"
	actionApprove  summaryAction = "approve"
	actionRestart  summaryAction = "restart"
)

// summaryActions lists what the user can do with version v out of total.
func summaryActions(v domain.Version, total int) []huh.Option[summaryAction] {
	var opts []huh.Option[summaryAction]
	if len(v.Questions) > 0 {
		opts = append(opts, huh.NewOption("Answer the questions", actionAnswer))
	}
	opts = append(opts,
		huh.NewOption("Edit the summary", actionEdit),
		huh.NewOption("Give edit instructions", actionInstruct),
	)
	if total > 1 {
		opts = append(opts, huh.NewOption("Browse versions", actionBrowse))
	}
	return append(opts,
		huh.NewOption("Approve this version", actionApprove),
		huh.NewOption("Start over", actionRestart),
	)
}

func (w *wizardSession) summaryStep(ctx context.Context) error {
	s := w.m.State()
	v, ok := s.CurrentVersion()
	if !ok {
		w.m.ResetForm()
		return nil
	}
	fmt.Fprintln(w.out, formatter.FormatVersion(v, s.ConceptSummary.CurrentVersionIndex, len(s.ConceptSummary.Versions)))

	choice, err := w.in.NextAction(summaryActions(v, len(s.ConceptSummary.Versions)))
	if err != nil {
		return err
	}

	switch choice {
	case actionAnswer:
		return w.answerQuestions(ctx, v)
	case actionEdit:
		return w.editSummary(v)
	case actionInstruct:
		return w.instruct()
	case actionBrowse:
		return w.browse()
	case actionApprove:
		w.m.ApproveCurrentVersion()
		w.m.AdvanceToStep(wizard.StepCompletion)
	case actionRestart:
		w.m.ResetForm()
	}
	return nil
}

func (w *wizardSession) answerQuestions(ctx context.Context, v domain.Version) error {
	answers, err := w.in.Answers(v.Questions)
	if err != nil {
		return err
	}

	qa := make([]domain.QuestionAnswer, 0, len(v.Questions))
	for i, q := range v.Questions {
		if i >= len(answers) || strings.TrimSpace(answers[i]) == "" {
			continue
		}
		qa = append(qa, domain.QuestionAnswer{Question: q.Text, Answer: answers[i]})
	}
	if len(qa) == 0 {
		return nil
	}
	w.withSpinner("Refining your concept...", func() { w.m.AnswerQuestions(ctx, qa) })
	return nil
}

func (w *wizardSession) editSummary(v domain.Version) error {
	text := v.Summary
	if err := w.in.EditSummary(&text); err != nil {
		return err
	}
	w.m.EditCurrentVersion(wizard.VersionPatch{Summary: &text})
	return nil
}

func (w *wizardSession) instruct() error {
	text, err := w.in.Instructions()
	if err != nil {
		return err
	}
	w.m.EditCurrentVersionWithInstructions(text)
	return nil
}

func (w *wizardSession) browse() error {
	s := w.m.State()
	b := newVersionBrowser(s.ConceptSummary.Versions, s.ConceptSummary.CurrentVersionIndex)
	if err := w.in.Browse(b); err != nil {
		return fmt.Errorf("version browser: %w", err)
	}
	applyBrowserResult(w.m, b.Result())
	return nil
}

func applyBrowserResult(m *wizard.Machine, r browserResult) {
	if !r.Selected {
		return
	}
	m.SetCurrentVersion(r.Index)
	if r.Approve {
		m.ApproveCurrentVersion()
		m.AdvanceToStep(wizard.StepCompletion)
	}
}

func (w *wizardSession) completionStep() (bool, error) {
	s := w.m.State()
	if s.ConceptSummary.ApprovedVersion != nil {
		fmt.Fprintln(w.out, formatter.FormatCompletion(s.Setup, *s.ConceptSummary.ApprovedVersion))
	}

	again, err := w.in.Again()
	if err != nil {
		return true, err
	}
	if !again {
		return true, nil
	}
	w.m.ResetForm()
	return false, nil
}

func requireText(what string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("enter %s", what)
		}
		return nil
	}
}
