package cli

import (
	"context"
	"fmt"

	"github.com/alexanderramin/compass/internal/cache"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newOverviewCmd(app *App) *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "overview <product-id>",
		Short: "Show the insights overview for a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			productID := args[0]

			if !plain && app.IsInteractive != nil && app.IsInteractive() {
				model := newDashboardModel(app, productID)
				_, err := tea.NewProgram(model).Run()
				return err
			}

			app.Insights.SelectProduct(productID)
			if err := app.Insights.Refresh(context.Background()); err != nil {
				// Entity errors are scoped; show what loaded and warn.
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: some entities failed to load: %v\n", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Product %s\n\n", productID)
			for _, kind := range cache.AllKinds {
				snap := app.Insights.Snapshot(kind)
				fmt.Fprintf(out, "  %-16s %s\n", kind, describeSnapshot(snap))
			}
			fmt.Fprintln(out)
			fmt.Fprint(out, formatTimeline(app.Insights.Timeline()))
			fmt.Fprint(out, formatBudget(app.Insights.Timeline(), app.Insights.Budget()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "Force plain output even on a terminal")

	return cmd
}

func describeSnapshot(snap cache.Snapshot) string {
	switch {
	case snap.Err != nil:
		return fmt.Sprintf("error: %v", snap.Err)
	case snap.IsLoading:
		return "loading"
	case snap.IsStale:
		return "stale"
	case snap.Status == cache.StatusFresh:
		return fmt.Sprintf("fresh (fetched %s)", snap.FetchedAt.Format("15:04:05"))
	default:
		return string(snap.Status)
	}
}
