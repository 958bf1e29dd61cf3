package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alexanderramin/pursuit/internal/cli/formatter"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var errNoPromptService = errors.New("prompt store is not configured")

func newPromptCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Manage the evaluation prompt and its saved versions",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if app.Prompts == nil {
				return errNoPromptService
			}
			return nil
		},
	}

	cmd.AddCommand(
		newPromptShowCmd(app),
		newPromptListCmd(app),
		newPromptUseCmd(app),
		newPromptDeleteCmd(app),
		newPromptSaveCmd(app),
		newPromptEditCmd(app),
	)

	return cmd
}

func newPromptShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the active prompt",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := app.Prompts
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatActivePrompt(p.Active(), p.ActiveVersionID(), p.Active() == p.Default()))
			return nil
		},
	}
}

func newPromptListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved prompt versions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := app.Prompts
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatPromptVersions(p.Versions(), p.ActiveVersionID(), app.now()))
			return nil
		},
	}
}

func newPromptUseCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "use <version-id|default>",
		Short: "Activate a saved version or the default prompt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if strings.EqualFold(args[0], "default") {
				if err := app.Prompts.ActivateDefault(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Using the default prompt.")
				return nil
			}
			if err := app.Prompts.ActivateVersion(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Using prompt version %s.\n", args[0])
			return nil
		},
	}
}

func newPromptDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <version-id>",
		Short: "Delete a saved prompt version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wasActive := app.Prompts.ActiveVersionID() == args[0]
			if err := app.Prompts.DeleteVersion(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted prompt version %s.\n", args[0])
			if wasActive {
				fmt.Fprintln(cmd.OutOrStdout(), "The default prompt is active again.")
			}
			return nil
		},
	}
}

func newPromptSaveCmd(app *App) *cobra.Command {
	var (
		file     string
		text     string
		activate bool
	)

	cmd := &cobra.Command{
		Use:   "save",
		Short: "Save prompt text as a new version",
		Long:  "Save prompt text as a new version. The text comes from --text, --file, or stdin when --file is \"-\".",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := readPromptText(cmd.InOrStdin(), text, file)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			v, err := app.Prompts.SaveVersion(ctx, content)
			if err != nil {
				return err
			}
			if activate {
				if err := app.Prompts.ActivateVersion(ctx, v.ID); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved prompt version %s.\n", v.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "Prompt text")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Read prompt text from a file, or - for stdin")
	cmd.Flags().BoolVar(&activate, "activate", false, "Make the saved version active")
	cmd.MarkFlagsMutuallyExclusive("text", "file")

	return cmd
}

func readPromptText(stdin io.Reader, text, file string) (string, error) {
	var content string
	switch {
	case text != "":
		content = text
	case file == "-":
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		content = string(b)
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading prompt file: %w", err)
		}
		content = string(b)
	default:
		return "", errors.New("one of --text or --file is required")
	}
	if strings.TrimSpace(content) == "" {
		return "", errors.New("prompt text is empty")
	}
	return content, nil
}

func newPromptEditCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "edit",
		Short: "Edit the active prompt interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !app.interactive() {
				return errors.New("prompt edit needs an interactive terminal; use prompt save instead")
			}

			selectedID := app.Prompts.ActiveVersionID()
			if len(app.Prompts.Versions()) > 0 {
				if err := promptBaseForm(app, &selectedID).Run(); err != nil {
					return ignoreAbort(err)
				}
			}

			text := promptTextFor(app, selectedID)
			if err := promptTextForm(&text).Run(); err != nil {
				return ignoreAbort(err)
			}

			outcome, err := app.Prompts.Save(cmd.Context(), text, selectedID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Prompt %s.\n", outcome)
			return nil
		},
	}
}

// promptTextFor returns the content of the selected version, or the default
// prompt when id is empty.
func promptTextFor(app *App, id string) string {
	for _, v := range app.Prompts.Versions() {
		if v.ID == id {
			return v.Content
		}
	}
	return app.Prompts.Default()
}

func promptBaseForm(app *App, selectedID *string) *huh.Form {
	options := []huh.Option[string]{huh.NewOption("Default prompt", "")}
	versions := app.Prompts.Versions()
	for i := len(versions) - 1; i >= 0; i-- {
		v := versions[i]
		label := fmt.Sprintf("%s  %s", v.ID, formatter.Truncate(v.Content, 40))
		options = append(options, huh.NewOption(label, v.ID))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Start from").
				Options(options...).
				Value(selectedID),
		),
	).WithTheme(pursuitHuhTheme()).WithShowHelp(false)
}

func promptTextForm(text *string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title("Evaluation prompt").
				Description("Saving text equal to the default or the selected version reuses it.").
				Lines(16).
				Value(text),
		),
	).WithTheme(pursuitHuhTheme()).WithShowHelp(false)
}
