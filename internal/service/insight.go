package service

import (
	"context"

	"github.com/alexanderramin/compass/internal/budget"
	"github.com/alexanderramin/compass/internal/cache"
	"github.com/alexanderramin/compass/internal/datasource"
	"github.com/alexanderramin/compass/internal/domain"
	"github.com/alexanderramin/compass/internal/timeline"
)

// TimelineView is the derived timeline state for the selected product.
// Computed is false until a refresh has run under the current selection.
type TimelineView struct {
	Range    timeline.Range
	Releases []domain.Release
	Computed bool
}

// InsightService is the product-insights engine surface the UI binds to.
type InsightService interface {
	// SelectProduct switches the active product. All cached entities of
	// the previous product are evicted and derived state is cleared
	// before any data for the new product is fetched.
	SelectProduct(productID string)

	// Refresh pulls the planning entities for the current product and
	// recomputes derived state. A failure in one entity kind does not
	// block the others; the first error is returned after all kinds ran.
	Refresh(ctx context.Context) error

	Timeline() TimelineView
	Budget() budget.View
	Snapshot(kind cache.Kind) cache.Snapshot
	Snapshots() map[cache.Kind]cache.Snapshot
	Subscribe() (<-chan cache.Event, func())

	EditTeam(ctx context.Context, releaseID string, team []domain.TeamMember) (domain.BudgetEstimate, error)
	GenerateEstimate(ctx context.Context, releaseID string) (domain.BudgetEstimate, error)
	SaveBudget(ctx context.Context, scope datasource.SaveScope) (budget.SaveResult, error)
}
