// Package tripsync owns the "current trip" state: the loaded trip list, the
// selected trip, the loading flag and the notices produced along the way.
//
// Core is the single writer. Surfaces (the HTTP companion API, the CLI) hold
// it through the narrow Context interface and only ever see copies of the
// state. Network and store calls are made without holding the state lock;
// results that arrive after a newer selection or refresh cycle has begun are
// discarded by comparing generation counters.
package tripsync

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/tripwhizz/tripsync/internal/domain"
	"github.com/tripwhizz/tripsync/internal/repo"
)

// ListFailedMessage is the user-facing error set when the trip list cannot be
// loaded.
const ListFailedMessage = "Failed to load trips. Please try again."

const defaultNoticeLimit = 20

// Context is the read/command surface of the core.
type Context interface {
	State() domain.TripState
	SelectTrip(ctx context.Context, trip domain.Trip) error
	SelectTripByID(ctx context.Context, id string) error
	RefreshTrips(ctx context.Context) error
	RefreshContent() uint64
}

// TripSource lists trips and fetches details. *service.TripDirectory
// satisfies it.
type TripSource interface {
	ListTrips(ctx context.Context) ([]domain.Trip, error)
	GetTripDetails(ctx context.Context, id domain.TripID) (domain.Trip, error)
}

// PreferenceSource supplies the user's preferences. *service.PreferenceService
// satisfies it.
type PreferenceSource interface {
	GetPreferences(ctx context.Context) (domain.UserPreferences, error)
}

// Publisher receives a snapshot after every state change. *events.Bus
// satisfies it. Publish must not block.
type Publisher interface {
	Publish(domain.TripState)
}

// Core implements Context.
type Core struct {
	trips       TripSource
	prefs       PreferenceSource
	store       repo.SelectionStore
	pub         Publisher
	log         *slog.Logger
	now         func() time.Time
	noticeLimit int

	// persistMu serialises store writes so the last write is always the
	// latest selection, whatever order concurrent switches finish in.
	persistMu sync.Mutex

	mu       sync.Mutex
	state    domain.TripState
	selGen   uint64 // bumped on every selection change
	cycleGen uint64 // bumped when a full load cycle starts
	inflight int
}

var _ Context = (*Core)(nil)

// Option configures a Core.
type Option func(*Core)

// WithPublisher sends every new snapshot to p.
func WithPublisher(p Publisher) Option {
	return func(c *Core) { c.pub = p }
}

// WithLogger replaces slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Core) { c.log = l }
}

// WithClock replaces time.Now for notice timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Core) { c.now = now }
}

// WithNoticeLimit caps how many notices are kept; older ones are dropped.
func WithNoticeLimit(n int) Option {
	return func(c *Core) {
		if n > 0 {
			c.noticeLimit = n
		}
	}
}

// New returns an idle Core. Call Start to run the first load.
func New(trips TripSource, prefs PreferenceSource, store repo.SelectionStore, opts ...Option) *Core {
	c := &Core{
		trips:       trips,
		prefs:       prefs,
		store:       store,
		log:         slog.Default(),
		now:         time.Now,
		noticeLimit: defaultNoticeLimit,
		state: domain.TripState{
			Trips: []domain.Trip{},
			Phase: domain.PhaseIdle,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns a copy of the current state.
func (c *Core) State() domain.TripState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// RefreshContent bumps and returns the content version. Load cycles never
// reset it.
func (c *Core) RefreshContent() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.ContentVersion++
	c.publishLocked()
	return c.state.ContentVersion
}

// beginLocked marks one more operation in flight.
func (c *Core) beginLocked(initial bool) {
	c.inflight++
	c.state.Loading = true
	switch {
	case initial && c.state.Phase == domain.PhaseIdle:
		c.state.Phase = domain.PhaseInitializing
	case c.state.Phase == domain.PhaseReady || c.state.Phase == domain.PhaseIdle:
		c.state.Phase = domain.PhaseRefreshing
	}
}

// endLocked marks one operation finished. The core is ready once nothing
// is in flight.
func (c *Core) endLocked() {
	c.inflight--
	c.state.Loading = c.inflight > 0
	if c.inflight == 0 {
		c.state.Phase = domain.PhaseReady
	}
}

// noticeLocked records a non-fatal failure and logs it.
func (c *Core) noticeLocked(msg string, err error) {
	n := domain.Notice{Time: c.now(), Message: msg}
	if err != nil {
		n.Detail = err.Error()
	}
	c.log.Warn("tripsync: "+msg, "error", err)
	c.state.Notices = append(c.state.Notices, n)
	if over := len(c.state.Notices) - c.noticeLimit; over > 0 {
		c.state.Notices = append([]domain.Notice(nil), c.state.Notices[over:]...)
	}
}

func (c *Core) notice(msg string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.noticeLocked(msg, err)
	c.publishLocked()
}

func (c *Core) publishLocked() {
	if c.pub != nil {
		c.pub.Publish(c.state.Clone())
	}
}

// persistSelection writes the currently selected id to the store.
func (c *Core) persistSelection(ctx context.Context) {
	c.persistMu.Lock()
	defer c.persistMu.Unlock()

	c.mu.Lock()
	id := c.state.SelectedID()
	c.mu.Unlock()
	if id == "" {
		return
	}
	if err := c.store.Set(ctx, id); err != nil {
		c.notice("Failed to save selected trip", err)
	}
}
