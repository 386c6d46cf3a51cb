package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/compass/internal/service"
	"github.com/spf13/cobra"
)

func newTimelineCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timeline <product-id>",
		Short: "Show the computed timeline window for a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Insights.SelectProduct(args[0])
			if err := app.Insights.Refresh(context.Background()); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: some entities failed to load: %v\n", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), formatTimeline(app.Insights.Timeline()))
			return nil
		},
	}
	return cmd
}

func formatTimeline(view service.TimelineView) string {
	if !view.Computed {
		return "Timeline: not computed\n"
	}

	var b strings.Builder
	r := view.Range
	fmt.Fprintf(&b, "Timeline: %s to %s (%s)\n",
		r.Start.Format("2006-01-02"), r.End.Format("2006-01-02"), r.Granularity)
	if r.UsedFallback {
		b.WriteString("  no usable dates; showing the default window\n")
	}
	if r.FocusedSubset {
		b.WriteString("  zoomed to releases with feature-level dates\n")
	}
	for _, rel := range view.Releases {
		dates := rel.TargetDate
		if dates == "" {
			dates = "no target date"
		}
		fmt.Fprintf(&b, "  %-24s %s\n", rel.Name, dates)
	}
	return b.String()
}
