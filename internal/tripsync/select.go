package tripsync

import (
	"context"
	"fmt"

	"github.com/tripwhizz/tripsync/internal/domain"
)

// SelectTrip switches to trip immediately (summary form), persists its id,
// then fetches and merges its details. Details that arrive after a newer
// switch, or for a trip that is no longer selected, are dropped.
//
// A details failure leaves the summary selected and records a notice; the
// error is also returned so callers can report it, but the state already
// reflects the outcome.
func (c *Core) SelectTrip(ctx context.Context, trip domain.Trip) error {
	c.mu.Lock()
	c.selGen++
	token := c.selGen
	sel := trip
	c.state.Selected = &sel
	c.beginLocked(false)
	c.publishLocked()
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.endLocked()
		c.publishLocked()
		c.mu.Unlock()
	}()

	c.persistSelection(ctx)

	if err := c.loadDetails(ctx, trip, token); err != nil {
		return fmt.Errorf("tripsync.Core.SelectTrip: %w", err)
	}
	return nil
}

// SelectTripByID selects the loaded trip whose id string is id.
func (c *Core) SelectTripByID(ctx context.Context, id string) error {
	c.mu.Lock()
	trip, ok := c.state.FindTrip(id)
	c.mu.Unlock()
	if !ok {
		return fmt.Errorf("tripsync.Core.SelectTripByID: trip %q: %w", id, domain.ErrNotFound)
	}
	return c.SelectTrip(ctx, trip)
}
