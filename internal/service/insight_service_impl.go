package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/alexanderramin/compass/internal/budget"
	"github.com/alexanderramin/compass/internal/cache"
	"github.com/alexanderramin/compass/internal/datasource"
	"github.com/alexanderramin/compass/internal/domain"
	"github.com/alexanderramin/compass/internal/timeline"
)

// ErrNoAdvisor indicates estimate generation was requested without an
// advisor wired in.
var ErrNoAdvisor = errors.New("no estimate advisor configured")

type insightService struct {
	coord   *cache.Coordinator
	store   *budget.EstimateStore
	advisor budget.Advisor
	now     func() time.Time

	mu       sync.Mutex
	timeline TimelineView
}

// ServiceOption configures the insight service.
type ServiceOption func(*insightService)

// WithAdvisor wires an external estimate generator.
func WithAdvisor(a budget.Advisor) ServiceOption {
	return func(s *insightService) { s.advisor = a }
}

// WithClock replaces the time source (for tests).
func WithClock(now func() time.Time) ServiceOption {
	return func(s *insightService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewInsightService wires the coordinator against the data source and
// registers the fixed set of entity kinds. The statuses taxonomy is
// org-wide, so it stays applicable for an empty selection; everything else
// needs a product.
func NewInsightService(ds datasource.DataSource, coord *cache.Coordinator, store *budget.EstimateStore, opts ...ServiceOption) InsightService {
	s := &insightService{
		coord: coord,
		store: store,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	coord.Register(cache.KindReport, cache.Registration{
		Fetch: func(ctx context.Context, sel string) (any, error) {
			return ds.Report(ctx, sel)
		},
	})
	coord.Register(cache.KindReleaseReport, cache.Registration{
		Fetch: func(ctx context.Context, sel string) (any, error) {
			return ds.ReleaseReport(ctx, sel)
		},
	})
	coord.Register(cache.KindBudget, cache.Registration{
		Fetch: func(ctx context.Context, sel string) (any, error) {
			return ds.Budget(ctx, sel)
		},
	})
	coord.Register(cache.KindFeatures, cache.Registration{
		Fetch: func(ctx context.Context, sel string) (any, error) {
			return ds.Features(ctx, sel)
		},
	})
	coord.Register(cache.KindIssues, cache.Registration{
		Fetch: func(ctx context.Context, sel string) (any, error) {
			return ds.Issues(ctx, sel)
		},
	})
	coord.Register(cache.KindReleases, cache.Registration{
		Fetch: func(ctx context.Context, sel string) (any, error) {
			return ds.Releases(ctx, sel)
		},
	})
	coord.Register(cache.KindStatuses, cache.Registration{
		Fetch: func(ctx context.Context, sel string) (any, error) {
			return ds.Statuses(ctx, sel)
		},
		Enabled: func(string) bool { return true },
	})

	coord.OnReset(func() {
		s.store.Reset(coord.Selection())
		s.mu.Lock()
		s.timeline = TimelineView{}
		s.mu.Unlock()
	})

	return s
}

func (s *insightService) SelectProduct(productID string) {
	s.coord.SetContext(productID)
}

func (s *insightService) Refresh(ctx context.Context) error {
	selection := s.coord.Selection()

	var errs []error

	releases, err := s.fetchReleases(ctx)
	if err != nil && !errors.Is(err, cache.ErrNotApplicable) {
		errs = append(errs, fmt.Errorf("releases: %w", err))
	}

	doc, err := s.fetchBudget(ctx)
	if err != nil && !errors.Is(err, cache.ErrNotApplicable) {
		errs = append(errs, fmt.Errorf("budget: %w", err))
	}

	// Entity errors stay scoped: the remaining kinds still populate the
	// registry for whoever renders them.
	for _, kind := range []cache.Kind{cache.KindReport, cache.KindReleaseReport, cache.KindFeatures, cache.KindIssues, cache.KindStatuses} {
		if _, err := s.coord.Fetch(ctx, kind); err != nil && !errors.Is(err, cache.ErrNotApplicable) {
			errs = append(errs, fmt.Errorf("%s: %w", kind, err))
		}
	}

	// Guard against a context switch that happened mid-refresh: derived
	// state must only reflect the currently selected product.
	if s.coord.Selection() == selection {
		s.store.Hydrate(doc)
		s.store.HydrateLocal(ctx, selection)
		s.store.EnsureDefaults(releases)

		rng := timeline.ComputeRange(timeline.ItemsFromReleases(releases), s.now())
		s.mu.Lock()
		s.timeline = TimelineView{Range: rng, Releases: releases, Computed: true}
		s.mu.Unlock()
	}

	return errors.Join(errs...)
}

func (s *insightService) fetchReleases(ctx context.Context) ([]domain.Release, error) {
	data, err := s.coord.Fetch(ctx, cache.KindReleases)
	if err != nil {
		return nil, err
	}
	releases, _ := data.([]domain.Release)
	return releases, nil
}

func (s *insightService) fetchBudget(ctx context.Context) (*domain.ProductBudgetDocument, error) {
	data, err := s.coord.Fetch(ctx, cache.KindBudget)
	if err != nil {
		return nil, err
	}
	doc, _ := data.(*domain.ProductBudgetDocument)
	return doc, nil
}

func (s *insightService) Timeline() TimelineView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timeline
}

func (s *insightService) Budget() budget.View {
	return s.store.View()
}

func (s *insightService) Snapshot(kind cache.Kind) cache.Snapshot {
	return s.coord.Snapshot(kind)
}

func (s *insightService) Snapshots() map[cache.Kind]cache.Snapshot {
	return s.coord.Snapshots()
}

func (s *insightService) Subscribe() (<-chan cache.Event, func()) {
	return s.coord.Subscribe()
}

func (s *insightService) EditTeam(ctx context.Context, releaseID string, team []domain.TeamMember) (domain.BudgetEstimate, error) {
	est, err := s.store.ApplyTeamEdit(releaseID, team)
	if err != nil {
		return domain.BudgetEstimate{}, err
	}
	// The edit changed what the budget entity would now return.
	s.coord.Invalidate(cache.KindBudget)
	return est, nil
}

func (s *insightService) GenerateEstimate(ctx context.Context, releaseID string) (domain.BudgetEstimate, error) {
	if s.advisor == nil {
		return domain.BudgetEstimate{}, ErrNoAdvisor
	}

	var release domain.Release
	found := false
	for _, r := range s.Timeline().Releases {
		if r.ID == releaseID {
			release = r
			found = true
			break
		}
	}
	if !found {
		return domain.BudgetEstimate{}, fmt.Errorf("%w: %s", budget.ErrUnknownRelease, releaseID)
	}

	draft, err := s.advisor.DraftEstimate(ctx, release)
	if err != nil {
		return domain.BudgetEstimate{}, fmt.Errorf("drafting estimate: %w", err)
	}
	return s.store.ApplyAdvisorEstimate(releaseID, *draft)
}

func (s *insightService) SaveBudget(ctx context.Context, scope datasource.SaveScope) (budget.SaveResult, error) {
	return s.store.Save(ctx, scope)
}
