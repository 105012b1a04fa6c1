// Package service sits between the backend client and the sync core.
// Services depend on small consumer-side interfaces, not on apiclient types,
// so each can be unit-tested with a hand-written mock.
package service

import (
	"context"
	"fmt"

	"github.com/tripwhizz/tripsync/internal/domain"
)

// TripBackend is the subset of the trips API the directory needs.
// *apiclient.TripsAPI satisfies it.
type TripBackend interface {
	// List returns the trip summaries visible to the user, in backend order.
	List(ctx context.Context) ([]domain.Trip, error)

	// Get returns one trip with its detail-only fields.
	Get(ctx context.Context, id domain.TripID) (domain.Trip, error)
}

// TripDirectory lists trips and fetches their details.
type TripDirectory struct {
	api TripBackend
}

// NewTripDirectory constructs a TripDirectory backed by api.
func NewTripDirectory(api TripBackend) *TripDirectory {
	return &TripDirectory{api: api}
}

// ListTrips returns all trip summaries. A nil backend result is normalised to
// an empty slice.
func (s *TripDirectory) ListTrips(ctx context.Context) ([]domain.Trip, error) {
	trips, err := s.api.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.TripDirectory.ListTrips: %w", err)
	}
	if trips == nil {
		trips = []domain.Trip{}
	}
	return trips, nil
}

// GetTripDetails returns the full record for id.
func (s *TripDirectory) GetTripDetails(ctx context.Context, id domain.TripID) (domain.Trip, error) {
	trip, err := s.api.Get(ctx, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripDirectory.GetTripDetails: %w", err)
	}
	return trip, nil
}
