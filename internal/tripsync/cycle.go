package tripsync

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/tripwhizz/tripsync/internal/domain"
)

// Start runs the first load cycle. Calling it again behaves like RefreshTrips.
func (c *Core) Start(ctx context.Context) error {
	return c.runCycle(ctx, true)
}

// RefreshTrips re-runs the full load cycle: preferences, list, sort, resolve
// the selection, fetch its details. It returns an error only when the trip
// list could not be loaded; every other failure becomes a notice.
func (c *Core) RefreshTrips(ctx context.Context) error {
	return c.runCycle(ctx, false)
}

func (c *Core) runCycle(ctx context.Context, initial bool) error {
	c.mu.Lock()
	c.cycleGen++
	gen := c.cycleGen
	selGenAtStart := c.selGen
	c.state.Error = ""
	c.beginLocked(initial)
	c.publishLocked()
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.endLocked()
		c.publishLocked()
		c.mu.Unlock()
	}()

	// Preferences are best-effort and fetched alongside the list; a failure
	// there only costs the sort.
	var (
		prefs    domain.UserPreferences
		prefsErr error
		trips    []domain.Trip
	)
	var g errgroup.Group
	g.Go(func() error {
		prefs, prefsErr = c.prefs.GetPreferences(ctx)
		return nil
	})
	g.Go(func() error {
		var err error
		trips, err = c.trips.ListTrips(ctx)
		return err
	})
	listErr := g.Wait()

	order := domain.TripSortNone
	if prefsErr != nil {
		c.notice("Failed to load preferences", prefsErr)
	} else {
		order = prefs.TripSort()
	}

	if listErr != nil {
		c.mu.Lock()
		defer c.mu.Unlock()
		if gen != c.cycleGen {
			c.log.Debug("tripsync: discarding failure of superseded cycle", "error", listErr)
			return nil
		}
		c.state.Error = ListFailedMessage
		c.log.Error("tripsync: trip list fetch failed", "error", listErr)
		return fmt.Errorf("tripsync.Core.RefreshTrips: %w", listErr)
	}

	trips = domain.SortTrips(trips, order)

	persisted, hasPersisted, err := c.store.Get(ctx)
	if err != nil {
		c.notice("Failed to read saved trip selection", err)
		hasPersisted = false
	}

	chosen, token, persist, ok := c.resolve(gen, selGenAtStart, trips, persisted, hasPersisted)
	if !ok {
		return nil
	}
	if persist {
		c.persistSelection(ctx)
	}
	c.loadDetails(ctx, chosen, token)
	return nil
}

// resolve installs the new list and picks the selection, in order:
// a switch made while the cycle was running, the persisted id, the first
// trip. ok is false when there is nothing to fetch details for (superseded
// cycle, empty list, or a mid-cycle switch that fetches its own details).
func (c *Core) resolve(gen, selGenAtStart uint64, trips []domain.Trip, persisted string, hasPersisted bool) (chosen domain.Trip, token uint64, persist bool, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer c.publishLocked()

	if gen != c.cycleGen {
		c.log.Debug("tripsync: discarding result of superseded cycle")
		return domain.Trip{}, 0, false, false
	}
	c.state.Trips = trips
	c.state.Error = ""

	if c.selGen != selGenAtStart && c.state.Selected != nil {
		if _, found := domain.FindTrip(trips, c.state.SelectedID()); found {
			return domain.Trip{}, 0, false, false
		}
	}

	t, found := domain.FindTrip(trips, persisted)
	switch {
	case hasPersisted && found:
		chosen = t
	case len(trips) > 0:
		chosen, persist = trips[0], true
	default:
		c.clearSelectionLocked()
		return domain.Trip{}, 0, false, false
	}

	c.selGen++
	sel := chosen
	c.state.Selected = &sel
	return chosen, c.selGen, persist, true
}

func (c *Core) clearSelectionLocked() {
	c.selGen++
	c.state.Selected = nil
}

// loadDetails fetches details for trip and merges them if trip is still the
// selection made under token.
func (c *Core) loadDetails(ctx context.Context, trip domain.Trip, token uint64) error {
	detail, err := c.trips.GetTripDetails(ctx, trip.ID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.noticeLocked("Failed to load trip details", err)
		c.publishLocked()
		return fmt.Errorf("tripsync: trip %s details: %w", trip.ID, err)
	}
	if token != c.selGen || c.state.Selected == nil || c.state.Selected.ID != trip.ID {
		c.log.Debug("tripsync: discarding stale trip details", "trip_id", trip.ID)
		return nil
	}
	merged := domain.MergeDetails(*c.state.Selected, detail)
	c.state.Selected = &merged
	c.publishLocked()
	return nil
}
