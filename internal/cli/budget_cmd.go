package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/alexanderramin/compass/internal/budget"
	"github.com/alexanderramin/compass/internal/datasource"
	"github.com/alexanderramin/compass/internal/domain"
	"github.com/alexanderramin/compass/internal/service"
	"github.com/spf13/cobra"
)

func newBudgetCmd(app *App) *cobra.Command {
	var editRelease string
	var generateRelease string
	var save bool
	var scope string

	cmd := &cobra.Command{
		Use:   "budget <product-id>",
		Short: "Show or edit release budget estimates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			app.Insights.SelectProduct(args[0])
			if err := app.Insights.Refresh(ctx); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: some entities failed to load: %v\n", err)
			}

			if editRelease != "" {
				if app.IsInteractive == nil || !app.IsInteractive() {
					return fmt.Errorf("--edit requires an interactive terminal")
				}
				est, ok := estimateForRelease(app.Insights, editRelease)
				if !ok {
					return fmt.Errorf("no estimate for release %q", editRelease)
				}
				team, err := runTeamForm(est.Team)
				if err != nil {
					return err
				}
				if _, err := app.Insights.EditTeam(ctx, editRelease, team); err != nil {
					return err
				}
				save = true
			}

			if generateRelease != "" {
				est, err := app.Insights.GenerateEstimate(ctx, generateRelease)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Drafted estimate for %s: $%.0f (%s confidence)\n",
					generateRelease, est.TotalCost, est.Confidence)
			}

			if save {
				result, err := app.Insights.SaveBudget(ctx, datasource.SaveScope(scope))
				if err != nil {
					return err
				}
				if result.SavedLocally {
					fmt.Fprintln(cmd.OutOrStdout(), "Server unreachable; budget saved locally and will sync later.")
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), "Budget saved.")
				}
			}

			fmt.Fprint(cmd.OutOrStdout(), formatBudget(app.Insights.Timeline(), app.Insights.Budget()))
			return nil
		},
	}

	cmd.Flags().StringVar(&editRelease, "edit", "", "Edit the team roster for a release ID")
	cmd.Flags().StringVar(&generateRelease, "generate", "", "Draft an estimate for a release ID with the configured advisor")
	cmd.Flags().BoolVar(&save, "save", false, "Persist the current estimates")
	cmd.Flags().StringVar(&scope, "scope", string(datasource.ScopeRelease), "Save scope: release, future or product")

	return cmd
}

func estimateForRelease(insights service.InsightService, releaseID string) (domain.BudgetEstimate, bool) {
	view := insights.Budget()
	est, ok := view.EstimatesByRelease[releaseID]
	return est, ok
}

func formatBudget(tl service.TimelineView, view budget.View) string {
	var b strings.Builder
	b.WriteString("Budget estimates:\n")

	names := make(map[string]string, len(tl.Releases))
	for _, r := range tl.Releases {
		names[r.ID] = r.Name
	}

	ids := make([]string, 0, len(view.EstimatesByRelease))
	for id := range view.EstimatesByRelease {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		est := view.EstimatesByRelease[id]
		name := names[id]
		if name == "" {
			name = id
		}
		marker := ""
		if est.Source == domain.SourceDefault {
			marker = " (default)"
		}
		fmt.Fprintf(&b, "  %-24s $%.0f  %gw @ %g%% buffer%s\n",
			name, est.TotalCost, est.TimelineWeeks, est.RiskBufferPercent, marker)
	}

	fmt.Fprintf(&b, "  Total: $%.0f\n", view.TotalBudget)
	if len(view.UnestimatedReleaseIDs) > 0 {
		fmt.Fprintf(&b, "  %d release(s) unestimated; total is incomplete\n", len(view.UnestimatedReleaseIDs))
	}
	return b.String()
}
