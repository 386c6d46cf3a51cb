package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/alexanderramin/compass/internal/datasource"
	"golang.org/x/sync/singleflight"
)

// Status is the lifecycle state of a cache entry.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusFresh   Status = "fresh"
	StatusStale   Status = "stale"
	StatusError   Status = "error"
)

// FetchFunc retrieves one entity kind for a selection context.
type FetchFunc func(ctx context.Context, selection string) (any, error)

// Registration binds a kind to its fetcher. A nil Enabled means the kind
// applies to any non-empty selection.
type Registration struct {
	Fetch   FetchFunc
	Enabled func(selection string) bool
}

// Snapshot is the UI-facing view of one entry.
type Snapshot struct {
	Kind      Kind
	Data      any
	Status    Status
	IsLoading bool
	IsStale   bool
	Err       error
	FetchedAt time.Time
}

// entry is one cached query result scoped to a selection context.
// Data is only ever written by a fetch issued under the entry's epoch;
// a fetch that outlives its epoch is discarded.
type entry struct {
	kind      Kind
	selection string
	data      any
	status    Status
	fetchedAt time.Time
	err       error
}

const defaultWatchdog = 30 * time.Second

// Coordinator owns the registry of cached query results, one entry per
// (entity kind, selection context). It is safe for concurrent use; the
// single ordering rule is that a context switch fully evicts the previous
// context's entries and resets derived state before any fetch for the new
// context is issued.
type Coordinator struct {
	mu        sync.Mutex
	selection string
	epoch     uint64
	entries   map[Kind]*entry
	fetchers  map[Kind]Registration
	policies  map[Kind]Policy

	runCtx    context.Context
	runCancel context.CancelFunc

	group singleflight.Group

	subs    map[int]chan Event
	nextSub int

	resetHooks []func()

	watchdog       time.Duration
	watchdogTimer  *time.Timer
	watchdogLapsed bool

	observer Observer
	now      func() time.Time
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithObserver attaches fetch telemetry.
func WithObserver(obs Observer) Option {
	return func(c *Coordinator) {
		if obs != nil {
			c.observer = obs
		}
	}
}

// WithPolicies overrides the default freshness table.
func WithPolicies(policies map[Kind]Policy) Option {
	return func(c *Coordinator) { c.policies = policies }
}

// WithWatchdog sets the ceiling after which the loading state is forced
// off even if fetches never resolve. Zero disables the watchdog.
func WithWatchdog(d time.Duration) Option {
	return func(c *Coordinator) { c.watchdog = d }
}

// WithClock replaces the time source (for tests).
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCoordinator creates an empty coordinator with no active selection.
func NewCoordinator(opts ...Option) *Coordinator {
	c := &Coordinator{
		entries:  make(map[Kind]*entry),
		fetchers: make(map[Kind]Registration),
		policies: DefaultPolicies(),
		subs:     make(map[int]chan Event),
		watchdog: defaultWatchdog,
		observer: NoopObserver{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Register binds a fetcher for a kind. Must be called before the kind is
// fetched; typically all kinds are registered at wiring time.
func (c *Coordinator) Register(kind Kind, reg Registration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fetchers[kind] = reg
}

// OnReset registers a hook invoked during a context switch, after eviction
// and before any new-context fetch is issued. Derived view state (timeline
// rows, budget estimates) is cleared here so no frame can mix contexts.
func (c *Coordinator) OnReset(hook func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetHooks = append(c.resetHooks, hook)
}

// Selection returns the active selection context.
func (c *Coordinator) Selection() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selection
}

// SetContext switches the active selection. Outstanding fetches for the
// previous context are cancelled (and their late results discarded), every
// entry is evicted, derived state is reset, and fetches are scheduled for
// each kind enabled under the new selection.
func (c *Coordinator) SetContext(selection string) {
	c.mu.Lock()

	if c.runCancel != nil {
		c.runCancel()
	}
	c.entries = make(map[Kind]*entry)
	c.epoch++
	c.selection = selection
	c.runCtx, c.runCancel = context.WithCancel(context.Background())
	runCtx := c.runCtx

	c.armWatchdogLocked()

	hooks := make([]func(), len(c.resetHooks))
	copy(hooks, c.resetHooks)

	var enabled []Kind
	for kind, reg := range c.fetchers {
		if c.enabledLocked(reg, selection) {
			enabled = append(enabled, kind)
		}
	}

	c.emitLocked(Event{Type: EventContextChanged, Selection: selection})
	c.mu.Unlock()

	for _, hook := range hooks {
		hook()
	}

	for _, kind := range enabled {
		go func(k Kind) {
			_, _ = c.Fetch(runCtx, k)
		}(kind)
	}
}

// Fetch returns the entry data for a kind under the current selection.
// A still-fresh entry is returned without a network call; otherwise at
// most one underlying fetch is in flight per (kind, selection) pair no
// matter how many callers arrive.
func (c *Coordinator) Fetch(ctx context.Context, kind Kind) (any, error) {
	c.mu.Lock()

	reg, ok := c.fetchers[kind]
	if !ok {
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	selection := c.selection
	if !c.enabledLocked(reg, selection) {
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrNotApplicable, kind)
	}

	pol := c.policy(kind)
	now := c.now()

	if e, ok := c.entries[kind]; ok {
		if !e.fetchedAt.IsZero() && !now.Before(e.fetchedAt.Add(pol.EvictAfter)) {
			delete(c.entries, kind)
		} else if e.status == StatusFresh {
			if now.Before(e.fetchedAt.Add(pol.StaleAfter)) {
				data := e.data
				c.mu.Unlock()
				c.observer.ObserveFetch(FetchEvent{Kind: kind, Selection: selection, Outcome: "hit"})
				return data, nil
			}
			e.status = StatusStale
		}
	}

	e, ok := c.entries[kind]
	if !ok {
		e = &entry{kind: kind, selection: selection, status: StatusIdle}
		c.entries[kind] = e
	}
	e.status = StatusLoading
	epoch := c.epoch
	runCtx := c.runCtx
	if runCtx == nil {
		runCtx = context.Background()
	}
	c.emitLocked(Event{Type: EventLoading, Kind: kind, Selection: selection})
	c.mu.Unlock()

	key := string(kind) + "|" + selection
	data, err, _ := c.group.Do(key, func() (any, error) {
		return c.runFetch(runCtx, reg.Fetch, kind, selection, pol, epoch)
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// runFetch performs the retried fetch and, if the selection context is
// unchanged at write-time, commits the result to the registry.
func (c *Coordinator) runFetch(runCtx context.Context, fetch FetchFunc, kind Kind, selection string, pol Policy, epoch uint64) (any, error) {
	start := c.now()
	attempts := 0
	maxAttempts := 1 + pol.MaxRetries

	var data any
	var lastErr error
	empty := false

	for attempts < maxAttempts {
		attempts++
		d, err := fetch(runCtx, selection)
		if err == nil {
			data = d
			lastErr = nil
			break
		}
		if datasource.IsNotFound(err) {
			// Legitimate absence, not an error. No retry.
			empty = true
			lastErr = nil
			break
		}
		lastErr = err
		if !datasource.IsTransient(err) {
			break
		}
		if runCtx.Err() != nil {
			break
		}
	}

	duration := c.now().Sub(start)

	c.mu.Lock()
	if epoch != c.epoch {
		c.mu.Unlock()
		c.observer.ObserveFetch(FetchEvent{
			Kind: kind, Selection: selection, Outcome: "discarded",
			Attempts: attempts, Duration: duration, Err: lastErr,
		})
		return nil, ErrSuperseded
	}

	e, ok := c.entries[kind]
	if !ok {
		e = &entry{kind: kind, selection: selection}
		c.entries[kind] = e
	}

	if lastErr != nil {
		e.status = StatusError
		e.err = lastErr
		c.emitLocked(Event{Type: EventError, Kind: kind, Selection: selection})
		c.mu.Unlock()
		c.observer.ObserveFetch(FetchEvent{
			Kind: kind, Selection: selection, Outcome: "error",
			Attempts: attempts, Duration: duration, Err: lastErr,
		})
		return nil, lastErr
	}

	e.data = data
	e.status = StatusFresh
	e.fetchedAt = c.now()
	e.err = nil
	c.emitLocked(Event{Type: EventUpdated, Kind: kind, Selection: selection})
	c.mu.Unlock()

	outcome := "fetched"
	if empty {
		outcome = "empty"
	}
	c.observer.ObserveFetch(FetchEvent{
		Kind: kind, Selection: selection, Outcome: outcome,
		Attempts: attempts, Duration: duration,
	})
	return data, nil
}

// Invalidate evicts one kind's entry so the next fetch hits the network.
func (c *Coordinator) Invalidate(kind Kind) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, kind)
	c.emitLocked(Event{Type: EventInvalidated, Kind: kind, Selection: c.selection})
}

// InvalidateAll evicts every entry under the current selection.
func (c *Coordinator) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[Kind]*entry)
	c.emitLocked(Event{Type: EventInvalidated, Selection: c.selection})
}

// Snapshot returns the UI-facing view of one kind. IsLoading is forced off
// once the watchdog ceiling lapses so the interface never hangs, even
// though the underlying fetch may still resolve later.
func (c *Coordinator) Snapshot(kind Kind) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked(kind)
}

// Snapshots returns views for every registered kind.
func (c *Coordinator) Snapshots() map[Kind]Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[Kind]Snapshot, len(c.fetchers))
	for kind := range c.fetchers {
		out[kind] = c.snapshotLocked(kind)
	}
	return out
}

func (c *Coordinator) snapshotLocked(kind Kind) Snapshot {
	snap := Snapshot{Kind: kind, Status: StatusIdle}
	e, ok := c.entries[kind]
	if !ok {
		return snap
	}

	pol := c.policy(kind)
	now := c.now()
	if !e.fetchedAt.IsZero() && !now.Before(e.fetchedAt.Add(pol.EvictAfter)) {
		delete(c.entries, kind)
		return snap
	}

	snap.Data = e.data
	snap.Status = e.status
	snap.Err = e.err
	snap.FetchedAt = e.fetchedAt
	snap.IsLoading = e.status == StatusLoading && !c.watchdogLapsed
	snap.IsStale = e.status == StatusStale ||
		(e.status == StatusFresh && !now.Before(e.fetchedAt.Add(pol.StaleAfter)))
	return snap
}

func (c *Coordinator) policy(kind Kind) Policy {
	if pol, ok := c.policies[kind]; ok {
		return pol
	}
	return Policy{StaleAfter: time.Minute, EvictAfter: 4 * time.Minute, MaxRetries: defaultMaxRetries}
}

func (c *Coordinator) enabledLocked(reg Registration, selection string) bool {
	if reg.Enabled != nil {
		return reg.Enabled(selection)
	}
	return selection != ""
}

// armWatchdogLocked restarts the loading-state ceiling for a new context.
// Caller must hold c.mu.
func (c *Coordinator) armWatchdogLocked() {
	c.watchdogLapsed = false
	if c.watchdogTimer != nil {
		c.watchdogTimer.Stop()
		c.watchdogTimer = nil
	}
	if c.watchdog <= 0 {
		return
	}
	epoch := c.epoch
	c.watchdogTimer = time.AfterFunc(c.watchdog, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.epoch != epoch {
			return
		}
		c.watchdogLapsed = true
		c.emitLocked(Event{Type: EventWatchdog, Selection: c.selection})
	})
}
