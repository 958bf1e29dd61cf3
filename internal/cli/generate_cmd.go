package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/pursuit/internal/cli/formatter"
	"github.com/alexanderramin/pursuit/internal/domain"
	"github.com/alexanderramin/pursuit/internal/wizard"
	"github.com/spf13/cobra"
)

type generateResult struct {
	Setup          domain.Setup   `json:"setup"`
	InitialConcept string         `json:"initialConcept"`
	Version        domain.Version `json:"version"`
}

func newGenerateCmd(app *App) *cobra.Command {
	var (
		grade     gradeFlag
		practical practicalFlag
		academics academicFlag
		idea      string
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Evaluate a pursuit idea without the interactive wizard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(idea) == "" {
				return errors.New("--idea is required")
			}
			if len(academics.values) == 0 {
				return errors.New("--academic is required")
			}

			m := wizard.NewMachine(app.Gateway, app.Prompts, app.logger())
			m.UpdateSetup(wizard.SetupPatch{
				GradeBand:       &grade.value,
				PracticalFocus:  &practical.value,
				AcademicFocuses: academics.values,
			})
			m.CompleteSetup()
			m.UpdateIdea(idea)

			stop := func() {}
			if app.interactive() && !asJSON {
				stop = formatter.StartSpinner(cmd.ErrOrStderr(), "Evaluating your idea...")
			}
			m.SubmitIdea(cmd.Context())
			stop()

			s := m.State()
			v, ok := s.CurrentVersion()
			if !ok {
				return errors.New("no concept was produced")
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(generateResult{
					Setup:          s.Setup,
					InitialConcept: deref(s.ConceptSummary.InitialConcept),
					Version:        v,
				})
			}

			fmt.Fprint(out, formatter.FormatSetup(s.Setup))
			fmt.Fprintln(out)
			fmt.Fprintln(out, formatter.FormatVersion(v, s.ConceptSummary.CurrentVersionIndex, len(s.ConceptSummary.Versions)))
			return nil
		},
	}

	cmd.Flags().Var(&grade, "grade", "Grade band (K-2nd, 3rd-5th, 6th-8th)")
	cmd.Flags().Var(&practical, "practical", "Practical focus, e.g. Communication")
	cmd.Flags().Var(&academics, "academic", "Academic focus; repeat or comma-separate, at most 2")
	cmd.Flags().StringVar(&idea, "idea", "", "Freeform pursuit idea")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	_ = cmd.MarkFlagRequired("grade")
	_ = cmd.MarkFlagRequired("practical")

	return cmd
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
