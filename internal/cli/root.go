package cli

import (
	"github.com/alexanderramin/compass/internal/service"
	"github.com/spf13/cobra"
)

// App holds references to the services used by CLI commands.
type App struct {
	Insights service.InsightService

	// IsInteractive reports whether stdin is attached to a terminal;
	// interactive commands fall back to plain output when it is not.
	IsInteractive func() bool
}

// NewRootCmd creates the top-level "compass" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "compass",
		Short: "Product insights, budgets and timeline planning",
	}

	root.AddCommand(
		newOverviewCmd(app),
		newTimelineCmd(app),
		newBudgetCmd(app),
	)

	return root
}
