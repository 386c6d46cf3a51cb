package datasource

import (
	"context"

	"github.com/alexanderramin/compass/internal/domain"
)

// SaveScope selects how far a budget edit propagates when persisted.
type SaveScope string

const (
	ScopeRelease SaveScope = "release"
	ScopeFuture  SaveScope = "future"
	ScopeProduct SaveScope = "product"
)

// DataSource is the remote product-insights API consumed by the engine.
// Every method returns either data or an *Error carrying the taxonomy the
// cache coordinator keys retries off.
type DataSource interface {
	Report(ctx context.Context, productID string) (*domain.InsightReport, error)
	ReleaseReport(ctx context.Context, productID string) (*domain.ReleaseReport, error)
	Budget(ctx context.Context, productID string) (*domain.ProductBudgetDocument, error)
	Features(ctx context.Context, productID string) ([]domain.Feature, error)
	Issues(ctx context.Context, productID string) ([]domain.Issue, error)
	Releases(ctx context.Context, productID string) ([]domain.Release, error)
	Statuses(ctx context.Context, productID string) ([]domain.StatusOption, error)

	SaveBudget(ctx context.Context, productID string, doc *domain.ProductBudgetDocument, scope SaveScope) error
}
