package budget

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/alexanderramin/compass/internal/datasource"
	"github.com/alexanderramin/compass/internal/domain"
	"github.com/alexanderramin/compass/internal/localstore"
)

// ErrUnknownRelease indicates an edit targeted a release the store has
// never seen.
var ErrUnknownRelease = errors.New("unknown release")

// RemoteWriter is the slice of the DataSource the store persists through.
type RemoteWriter interface {
	SaveBudget(ctx context.Context, productID string, doc *domain.ProductBudgetDocument, scope datasource.SaveScope) error
}

// LocalFallback is the durable store used when the remote write fails.
type LocalFallback interface {
	SaveBudget(ctx context.Context, productID string, doc *domain.ProductBudgetDocument, savedAt time.Time) error
	LoadBudget(ctx context.Context, productID string) (*domain.ProductBudgetDocument, error)
}

// SaveResult reports where a save landed. SavedLocally means the remote
// write failed and the document is parked locally pending retry.
type SaveResult struct {
	SavedLocally bool
	SavedAt      time.Time
}

// View is the UI-facing read model of the store.
type View struct {
	EstimatesByRelease    map[string]domain.BudgetEstimate
	TotalBudget           float64
	UnestimatedReleaseIDs []string
}

// EstimateStore owns the per-release estimate map for the selected product
// and is the only writer of its ProductBudgetDocument.
type EstimateStore struct {
	mu        sync.Mutex
	productID string
	releases  []domain.Release
	estimates map[string]domain.BudgetEstimate

	remote RemoteWriter
	local  LocalFallback
	now    func() time.Time
}

// StoreOption configures an EstimateStore.
type StoreOption func(*EstimateStore)

// WithStoreClock replaces the time source (for tests).
func WithStoreClock(now func() time.Time) StoreOption {
	return func(s *EstimateStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewEstimateStore creates an empty store with no selected product.
func NewEstimateStore(remote RemoteWriter, local LocalFallback, opts ...StoreOption) *EstimateStore {
	s := &EstimateStore{
		estimates: make(map[string]domain.BudgetEstimate),
		remote:    remote,
		local:     local,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Reset clears all derived state for a product switch.
func (s *EstimateStore) Reset(productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.productID = productID
	s.releases = nil
	s.estimates = make(map[string]domain.BudgetEstimate)
}

// Hydrate merges a persisted document into the in-memory map. Older
// documents stored the roster apart from the cost breakdown; those two
// halves are reassembled into one coherent estimate here.
func (s *EstimateStore) Hydrate(doc *domain.ProductBudgetDocument) {
	if doc == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for releaseID, est := range doc.Estimates {
		if est.ReleaseID == "" {
			est.ReleaseID = releaseID
		}
		if len(est.Team) == 0 {
			if roster, ok := doc.TeamConfigs[releaseID]; ok {
				est.Team = roster
			}
		}
		// A reassembled estimate may predate its cost fields.
		if est.BaseCost == 0 && len(est.Team) > 0 && est.TimelineWeeks > 0 {
			est.BaseCost = BaseCost(est.Team, est.TimelineWeeks)
			est.TotalCost = TotalCost(est.BaseCost, est.RiskBufferPercent)
		}
		if est.Source == "" {
			est.Source = domain.SourceUserConfigured
		}
		s.estimates[releaseID] = est
	}
}

// HydrateLocal opportunistically folds in a document parked by a failed
// remote save, so local-only edits survive restarts. Reconciliation with
// the server happens elsewhere; here we only keep the data visible.
func (s *EstimateStore) HydrateLocal(ctx context.Context, productID string) bool {
	if s.local == nil {
		return false
	}
	doc, err := s.local.LoadBudget(ctx, productID)
	if err != nil {
		return false
	}
	s.Hydrate(doc)
	return true
}

// EnsureDefaults synthesizes a default estimate for every release lacking
// one. After this runs each known release has some estimate, so downstream
// rendering needs no absence checks. Idempotent: existing estimates,
// default or otherwise, are never replaced.
func (s *EstimateStore) EnsureDefaults(releases []domain.Release) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.releases = releases
	now := s.now()
	for _, r := range releases {
		if _, ok := s.estimates[r.ID]; ok {
			continue
		}
		s.estimates[r.ID] = DefaultEstimate(r, now)
	}
}

// ApplyTeamEdit replaces a release's roster and recomputes costs from its
// existing timeline and risk buffer.
func (s *EstimateStore) ApplyTeamEdit(releaseID string, newTeam []domain.TeamMember) (domain.BudgetEstimate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	est, ok := s.estimates[releaseID]
	if !ok {
		return domain.BudgetEstimate{}, fmt.Errorf("%w: %s", ErrUnknownRelease, releaseID)
	}

	est.Team = newTeam
	est.BaseCost = BaseCost(newTeam, est.TimelineWeeks)
	est.TotalCost = TotalCost(est.BaseCost, est.RiskBufferPercent)
	est.Source = domain.SourceUserConfigured
	est.Confidence = domain.ConfidenceHigh
	est.LastUpdated = s.now()

	s.estimates[releaseID] = est
	return est, nil
}

// ApplyAdvisorEstimate installs an externally drafted estimate for a
// release, recomputing the cost figures from the proposed inputs.
func (s *EstimateStore) ApplyAdvisorEstimate(releaseID string, draft AdvisorEstimate) (domain.BudgetEstimate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.estimates[releaseID]; !ok {
		return domain.BudgetEstimate{}, fmt.Errorf("%w: %s", ErrUnknownRelease, releaseID)
	}

	confidence := draft.Confidence
	if confidence == "" {
		confidence = domain.ConfidenceMedium
	}
	est, err := Estimate(releaseID, draft.Team, draft.TimelineWeeks, draft.RiskBufferPercent,
		domain.SourceAI, confidence, s.now())
	if err != nil {
		return domain.BudgetEstimate{}, err
	}

	s.estimates[releaseID] = est
	return est, nil
}

// Estimate returns the estimate for one release, if present.
func (s *EstimateStore) Estimate(releaseID string) (domain.BudgetEstimate, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	est, ok := s.estimates[releaseID]
	return est, ok
}

// View returns the read model: all estimates, the product total, and the
// releases contributing zero so the total is never misread as complete.
func (s *EstimateStore) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := View{EstimatesByRelease: make(map[string]domain.BudgetEstimate, len(s.estimates))}
	for id, est := range s.estimates {
		out.EstimatesByRelease[id] = est
	}
	out.TotalBudget, out.UnestimatedReleaseIDs = ProductTotal(s.releases, s.estimates)
	return out
}

// Save persists the current document remotely. On remote failure the full
// document is written to the durable local fallback and the caller is told
// persistence is local-only pending retry.
func (s *EstimateStore) Save(ctx context.Context, scope datasource.SaveScope) (SaveResult, error) {
	s.mu.Lock()
	doc := s.documentLocked()
	productID := s.productID
	s.mu.Unlock()

	savedAt := s.now()
	remoteErr := s.remote.SaveBudget(ctx, productID, doc, scope)
	if remoteErr == nil {
		if s.local != nil {
			// Best effort: a stale pending copy would shadow the server.
			_ = s.deletePending(ctx, productID)
		}
		return SaveResult{SavedAt: savedAt}, nil
	}

	if s.local == nil {
		return SaveResult{}, fmt.Errorf("saving budget remotely: %w", remoteErr)
	}
	if err := s.local.SaveBudget(ctx, productID, doc, savedAt); err != nil {
		return SaveResult{}, errors.Join(
			fmt.Errorf("saving budget remotely: %w", remoteErr),
			fmt.Errorf("saving budget locally: %w", err),
		)
	}
	return SaveResult{SavedLocally: true, SavedAt: savedAt}, nil
}

func (s *EstimateStore) deletePending(ctx context.Context, productID string) error {
	type deleter interface {
		DeleteBudget(ctx context.Context, productID string) error
	}
	if d, ok := s.local.(deleter); ok {
		return d.DeleteBudget(ctx, productID)
	}
	return nil
}

// documentLocked assembles the persisted document. Caller must hold s.mu.
func (s *EstimateStore) documentLocked() *domain.ProductBudgetDocument {
	doc := &domain.ProductBudgetDocument{
		ProductID: s.productID,
		Estimates: make(map[string]domain.BudgetEstimate, len(s.estimates)),
	}
	for id, est := range s.estimates {
		doc.Estimates[id] = est
	}
	doc.TotalBudget, _ = ProductTotal(s.releases, s.estimates)
	return doc
}

var _ LocalFallback = (*localstore.Store)(nil)
