package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/tripwhizz/tripsync/internal/domain"
)

// minutesPerDay bounds start/end offsets of an itinerary event.
const minutesPerDay = 24 * 60

// ItineraryEvent is a time block on one day of the trip. Start and end are
// minutes from midnight.
type ItineraryEvent struct {
	ID           int64              `json:"id,omitempty"`
	Date         openapi_types.Date `json:"date"`
	Title        string             `json:"title" validate:"required"`
	Description  string             `json:"description,omitempty"`
	StartMinutes int                `json:"start_minutes" validate:"gte=0,lt=1440"`
	EndMinutes   int                `json:"end_minutes" validate:"gtfield=StartMinutes,lte=1440"`
	Color        *string            `json:"color,omitempty"`
}

// ItineraryAPI wraps /api/trip/{id}/itinerary/events/.
type ItineraryAPI struct{ c *Client }

// Itinerary returns the itinerary resource wrapper.
func (c *Client) Itinerary() *ItineraryAPI { return &ItineraryAPI{c: c} }

func eventsPath(tripID domain.TripID) string {
	return fmt.Sprintf("/api/trip/%d/itinerary/events/", tripID)
}

// List returns the trip's events, only those on date when it is non-nil.
func (a *ItineraryAPI) List(ctx context.Context, tripID domain.TripID, date *openapi_types.Date) ([]ItineraryEvent, error) {
	q := url.Values{}
	if date != nil {
		q.Set("date", date.String())
	}
	var out []ItineraryEvent
	err := a.c.Do(ctx, Request{Method: http.MethodGet, Path: eventsPath(tripID), Query: q}, &out)
	return out, err
}

// Create adds an event.
func (a *ItineraryAPI) Create(ctx context.Context, tripID domain.TripID, ev ItineraryEvent) (ItineraryEvent, error) {
	if err := validateEvent(ev); err != nil {
		return ItineraryEvent{}, err
	}
	var out ItineraryEvent
	err := a.c.Do(ctx, Request{Method: http.MethodPost, Path: eventsPath(tripID), Body: ev}, &out)
	return out, err
}

// Update replaces an event.
func (a *ItineraryAPI) Update(ctx context.Context, tripID domain.TripID, eventID int64, ev ItineraryEvent) (ItineraryEvent, error) {
	if err := validateEvent(ev); err != nil {
		return ItineraryEvent{}, err
	}
	var out ItineraryEvent
	err := a.c.Do(ctx, Request{
		Method: http.MethodPut,
		Path:   fmt.Sprintf("%s%d/", eventsPath(tripID), eventID),
		Body:   ev,
	}, &out)
	return out, err
}

// Delete removes an event.
func (a *ItineraryAPI) Delete(ctx context.Context, tripID domain.TripID, eventID int64) error {
	return a.c.Do(ctx, Request{Method: http.MethodDelete, Path: fmt.Sprintf("%s%d/", eventsPath(tripID), eventID)}, nil)
}

func validateEvent(ev ItineraryEvent) error {
	if ev.Date.IsZero() {
		return fmt.Errorf("%w: date is required", domain.ErrValidation)
	}
	if ev.EndMinutes > minutesPerDay {
		return fmt.Errorf("%w: end_minutes must be within the day", domain.ErrValidation)
	}
	return validateInput(ev)
}
