package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alexanderramin/compass/internal/budget"
	"github.com/alexanderramin/compass/internal/cache"
	"github.com/alexanderramin/compass/internal/datasource"
	"github.com/alexanderramin/compass/internal/domain"
	"github.com/alexanderramin/compass/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var svcNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

type fakeAdvisor struct {
	draft *budget.AdvisorEstimate
	err   error
}

func (a *fakeAdvisor) DraftEstimate(ctx context.Context, release domain.Release) (*budget.AdvisorEstimate, error) {
	if a.err != nil {
		return nil, a.err
	}
	return a.draft, nil
}

func newTestService(t *testing.T, ds *testutil.FakeDataSource, opts ...ServiceOption) InsightService {
	t.Helper()
	coord := cache.NewCoordinator(cache.WithWatchdog(0))
	store := budget.NewEstimateStore(ds, nil, budget.WithStoreClock(func() time.Time { return svcNow }))
	opts = append(opts, WithClock(func() time.Time { return svcNow }))
	return NewInsightService(ds, coord, store, opts...)
}

func seedReleases(ds *testutil.FakeDataSource) {
	ds.ReleasesByProduct["prod-1"] = []domain.Release{
		{ID: "rel-1", ProductID: "prod-1", Name: "Q3 Launch", StartDate: "2025-07-01", EndDate: "2025-09-30", DurationWeeks: 13},
		{ID: "rel-2", ProductID: "prod-1", Name: "Q4 Polish"},
	}
}

func TestRefresh_PopulatesTimelineAndDefaults(t *testing.T) {
	ds := testutil.NewFakeDataSource()
	seedReleases(ds)
	svc := newTestService(t, ds)

	svc.SelectProduct("prod-1")
	require.NoError(t, svc.Refresh(context.Background()))

	view := svc.Timeline()
	assert.True(t, view.Computed)
	require.Len(t, view.Releases, 2)
	assert.False(t, view.Range.UsedFallback)

	// Every release gets an estimate after refresh, synthesized where
	// nothing was persisted.
	b := svc.Budget()
	require.Len(t, b.EstimatesByRelease, 2)
	assert.Empty(t, b.UnestimatedReleaseIDs)
	assert.Equal(t, domain.SourceDefault, b.EstimatesByRelease["rel-1"].Source)
	assert.Equal(t, 13.0, b.EstimatesByRelease["rel-1"].TimelineWeeks)
	assert.Equal(t, float64(budget.DefaultTimelineWeeks), b.EstimatesByRelease["rel-2"].TimelineWeeks)
}

func TestRefresh_MissingBudgetDocumentIsNotAnError(t *testing.T) {
	ds := testutil.NewFakeDataSource()
	seedReleases(ds)
	svc := newTestService(t, ds)

	svc.SelectProduct("prod-1")
	assert.NoError(t, svc.Refresh(context.Background()))
}

func TestRefresh_HydratesPersistedEstimates(t *testing.T) {
	ds := testutil.NewFakeDataSource()
	seedReleases(ds)
	ds.BudgetByProduct["prod-1"] = &domain.ProductBudgetDocument{
		ProductID: "prod-1",
		Estimates: map[string]domain.BudgetEstimate{
			"rel-1": {
				ReleaseID:     "rel-1",
				Team:          testutil.NewTestTeam(),
				TimelineWeeks: 12,
				BaseCost:      63600,
				TotalCost:     76320,
				Source:        domain.SourceUserConfigured,
				Confidence:    domain.ConfidenceHigh,
			},
		},
	}
	svc := newTestService(t, ds)

	svc.SelectProduct("prod-1")
	require.NoError(t, svc.Refresh(context.Background()))

	b := svc.Budget()
	// The persisted estimate wins over the default for rel-1.
	assert.Equal(t, domain.SourceUserConfigured, b.EstimatesByRelease["rel-1"].Source)
	assert.Equal(t, 76320.0, b.EstimatesByRelease["rel-1"].TotalCost)
	assert.Equal(t, domain.SourceDefault, b.EstimatesByRelease["rel-2"].Source)
}

func TestRefresh_EntityErrorDoesNotBlockOthers(t *testing.T) {
	ds := testutil.NewFakeDataSource()
	seedReleases(ds)
	ds.Errs["issues"] = datasource.NewError(datasource.KindFatal, "issues", errors.New("boom"))
	svc := newTestService(t, ds)

	svc.SelectProduct("prod-1")
	err := svc.Refresh(context.Background())
	require.Error(t, err)

	// The failing kind is reported, the rest still landed.
	assert.True(t, svc.Timeline().Computed)
	assert.Len(t, svc.Budget().EstimatesByRelease, 2)
}

func TestSelectProduct_ClearsDerivedState(t *testing.T) {
	ds := testutil.NewFakeDataSource()
	seedReleases(ds)
	svc := newTestService(t, ds)

	svc.SelectProduct("prod-1")
	require.NoError(t, svc.Refresh(context.Background()))
	require.True(t, svc.Timeline().Computed)

	svc.SelectProduct("prod-2")

	// Derived state is cleared synchronously with the switch, before any
	// data for the new product arrives.
	assert.False(t, svc.Timeline().Computed)
	assert.Empty(t, svc.Timeline().Releases)
	assert.Empty(t, svc.Budget().EstimatesByRelease)
}

func TestEditTeam(t *testing.T) {
	ds := testutil.NewFakeDataSource()
	seedReleases(ds)
	svc := newTestService(t, ds)
	svc.SelectProduct("prod-1")
	require.NoError(t, svc.Refresh(context.Background()))

	est, err := svc.EditTeam(context.Background(), "rel-2", testutil.NewTestTeam())
	require.NoError(t, err)

	// rel-2 runs on the fixed 12-week default timeline.
	assert.Equal(t, 63600.0, est.BaseCost)
	assert.Equal(t, 76320.0, est.TotalCost)
	assert.Equal(t, domain.SourceUserConfigured, est.Source)
	assert.Equal(t, domain.ConfidenceHigh, est.Confidence)

	assert.Equal(t, est, svc.Budget().EstimatesByRelease["rel-2"])
}

func TestEditTeam_UnknownRelease(t *testing.T) {
	ds := testutil.NewFakeDataSource()
	svc := newTestService(t, ds)
	svc.SelectProduct("prod-1")

	_, err := svc.EditTeam(context.Background(), "missing", testutil.NewTestTeam())
	assert.ErrorIs(t, err, budget.ErrUnknownRelease)
}

func TestGenerateEstimate(t *testing.T) {
	ds := testutil.NewFakeDataSource()
	seedReleases(ds)
	advisor := &fakeAdvisor{draft: &budget.AdvisorEstimate{
		Team:              testutil.NewTestTeam(),
		TimelineWeeks:     10,
		RiskBufferPercent: 25,
		Rationale:         "two features, moderate scope",
	}}
	svc := newTestService(t, ds, WithAdvisor(advisor))
	svc.SelectProduct("prod-1")
	require.NoError(t, svc.Refresh(context.Background()))

	est, err := svc.GenerateEstimate(context.Background(), "rel-1")
	require.NoError(t, err)

	assert.Equal(t, domain.SourceAI, est.Source)
	assert.Equal(t, domain.ConfidenceMedium, est.Confidence)
	// (2500 + 2800) * 10 = 53000; * 1.25 = 66250
	assert.Equal(t, 66250.0, est.TotalCost)
}

func TestGenerateEstimate_NoAdvisor(t *testing.T) {
	ds := testutil.NewFakeDataSource()
	svc := newTestService(t, ds)

	_, err := svc.GenerateEstimate(context.Background(), "rel-1")
	assert.ErrorIs(t, err, ErrNoAdvisor)
}

func TestGenerateEstimate_UnknownRelease(t *testing.T) {
	ds := testutil.NewFakeDataSource()
	seedReleases(ds)
	svc := newTestService(t, ds, WithAdvisor(&fakeAdvisor{}))
	svc.SelectProduct("prod-1")
	require.NoError(t, svc.Refresh(context.Background()))

	_, err := svc.GenerateEstimate(context.Background(), "rel-99")
	assert.ErrorIs(t, err, budget.ErrUnknownRelease)
}

func TestSaveBudget_Delegates(t *testing.T) {
	ds := testutil.NewFakeDataSource()
	seedReleases(ds)
	svc := newTestService(t, ds)
	svc.SelectProduct("prod-1")
	require.NoError(t, svc.Refresh(context.Background()))

	result, err := svc.SaveBudget(context.Background(), datasource.ScopeProduct)
	require.NoError(t, err)
	assert.False(t, result.SavedLocally)
	require.Len(t, ds.Saved, 1)
	assert.Equal(t, "prod-1", ds.Saved[0].ProductID)
}
