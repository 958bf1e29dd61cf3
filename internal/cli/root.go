package cli

import (
	"context"
	"time"

	"github.com/alexanderramin/pursuit/internal/intelligence"
	"github.com/alexanderramin/pursuit/internal/service"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// App holds the services used by CLI commands.
type App struct {
	Gateway intelligence.ConceptGateway
	Prompts service.PromptService
	Log     *zap.Logger

	// IsInteractive reports whether stdin is a terminal. Nil means never.
	IsInteractive func() bool

	// Serve runs the HTTP API until ctx is cancelled.
	Serve       func(ctx context.Context, addr string) error
	DefaultAddr string

	Now func() time.Time
}

func (a *App) logger() *zap.Logger {
	if a.Log == nil {
		return zap.NewNop()
	}
	return a.Log
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

// NewRootCmd creates the top-level "pursuit" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "pursuit",
		Short:         "Shape a student pursuit concept with rubric feedback",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newWizardCmd(app),
		newGenerateCmd(app),
		newPromptCmd(app),
		newServeCmd(app),
	)

	return root
}
