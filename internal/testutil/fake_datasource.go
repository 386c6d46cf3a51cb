package testutil

import (
	"context"
	"sync"

	"github.com/alexanderramin/compass/internal/datasource"
	"github.com/alexanderramin/compass/internal/domain"
)

// FakeDataSource is an in-memory DataSource for tests. Per-operation
// errors can be injected, call counts are recorded, and OnCall (if set)
// runs at the start of every operation for synchronization tricks.
type FakeDataSource struct {
	mu    sync.Mutex
	calls map[string]int

	ReleasesByProduct map[string][]domain.Release
	BudgetByProduct   map[string]*domain.ProductBudgetDocument
	FeaturesByProduct map[string][]domain.Feature
	IssuesByProduct   map[string][]domain.Issue
	ReportByProduct   map[string]*domain.InsightReport
	StatusList        []domain.StatusOption

	Errs    map[string]error
	SaveErr error
	Saved   []*domain.ProductBudgetDocument

	OnCall func(op, productID string)
}

func NewFakeDataSource() *FakeDataSource {
	return &FakeDataSource{
		calls:             make(map[string]int),
		ReleasesByProduct: make(map[string][]domain.Release),
		BudgetByProduct:   make(map[string]*domain.ProductBudgetDocument),
		FeaturesByProduct: make(map[string][]domain.Feature),
		IssuesByProduct:   make(map[string][]domain.Issue),
		ReportByProduct:   make(map[string]*domain.InsightReport),
		Errs:              make(map[string]error),
	}
}

// CallCount returns how many times an operation ran (e.g. "releases").
func (f *FakeDataSource) CallCount(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *FakeDataSource) begin(op, productID string) error {
	f.mu.Lock()
	f.calls[op]++
	err := f.Errs[op]
	hook := f.OnCall
	f.mu.Unlock()
	if hook != nil {
		hook(op, productID)
	}
	return err
}

func (f *FakeDataSource) Report(ctx context.Context, productID string) (*domain.InsightReport, error) {
	if err := f.begin("report", productID); err != nil {
		return nil, err
	}
	if r, ok := f.ReportByProduct[productID]; ok {
		return r, nil
	}
	return &domain.InsightReport{ProductID: productID}, nil
}

func (f *FakeDataSource) ReleaseReport(ctx context.Context, productID string) (*domain.ReleaseReport, error) {
	if err := f.begin("release_report", productID); err != nil {
		return nil, err
	}
	return &domain.ReleaseReport{ProductID: productID}, nil
}

func (f *FakeDataSource) Budget(ctx context.Context, productID string) (*domain.ProductBudgetDocument, error) {
	if err := f.begin("budget", productID); err != nil {
		return nil, err
	}
	if doc, ok := f.BudgetByProduct[productID]; ok {
		return doc, nil
	}
	return nil, datasource.NewError(datasource.KindNotFound, "budget", nil)
}

func (f *FakeDataSource) Features(ctx context.Context, productID string) ([]domain.Feature, error) {
	if err := f.begin("features", productID); err != nil {
		return nil, err
	}
	return f.FeaturesByProduct[productID], nil
}

func (f *FakeDataSource) Issues(ctx context.Context, productID string) ([]domain.Issue, error) {
	if err := f.begin("issues", productID); err != nil {
		return nil, err
	}
	return f.IssuesByProduct[productID], nil
}

func (f *FakeDataSource) Releases(ctx context.Context, productID string) ([]domain.Release, error) {
	if err := f.begin("releases", productID); err != nil {
		return nil, err
	}
	return f.ReleasesByProduct[productID], nil
}

func (f *FakeDataSource) Statuses(ctx context.Context, productID string) ([]domain.StatusOption, error) {
	if err := f.begin("statuses", productID); err != nil {
		return nil, err
	}
	return f.StatusList, nil
}

func (f *FakeDataSource) SaveBudget(ctx context.Context, productID string, doc *domain.ProductBudgetDocument, scope datasource.SaveScope) error {
	if err := f.begin("save_budget", productID); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SaveErr != nil {
		return f.SaveErr
	}
	f.Saved = append(f.Saved, doc)
	return nil
}

var _ datasource.DataSource = (*FakeDataSource)(nil)
