package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/tripwhizz/tripsync/internal/domain"
)

// TripInput is the writable subset of a trip, used for create and update.
type TripInput struct {
	Name             string              `json:"name" validate:"required"`
	Destination      string              `json:"destination" validate:"required"`
	Description      string              `json:"description,omitempty"`
	StartDate        *openapi_types.Date `json:"start_date,omitempty"`
	EndDate          *openapi_types.Date `json:"end_date,omitempty"`
	TripType         string              `json:"trip_type,omitempty" validate:"omitempty,oneof=private public"`
	Icon             string              `json:"icon,omitempty"`
	IconColor        string              `json:"icon_color,omitempty"`
	Tags             []string            `json:"tags,omitempty"`
	InvitePermission string              `json:"invite_permission,omitempty" validate:"omitempty,oneof=admin-only members-can-invite"`
	ParticipantIDs   []int64             `json:"participants_ids,omitempty"`
}

func (in TripInput) validate() error {
	if err := validateInput(in); err != nil {
		return err
	}
	if in.StartDate != nil && in.EndDate != nil && in.EndDate.Before(in.StartDate.Time) {
		return fmt.Errorf("%w: end_date must not be before start_date", domain.ErrValidation)
	}
	return nil
}

// TripInvitation is an outstanding invitation for a user to join a trip.
type TripInvitation struct {
	ID        int64              `json:"id"`
	Trip      domain.TripID      `json:"trip"`
	Inviter   domain.Participant `json:"inviter"`
	Invitee   domain.Participant `json:"invitee"`
	Status    string             `json:"status"`
	CreatedAt *time.Time         `json:"created_at,omitempty"`
}

// TripsAPI wraps /api/trip/ and its sub-resources that act on the trip itself.
type TripsAPI struct{ c *Client }

// Trips returns the trip resource wrapper.
func (c *Client) Trips() *TripsAPI { return &TripsAPI{c: c} }

func tripPath(id domain.TripID) string {
	return fmt.Sprintf("/api/trip/%d/", id)
}

// List returns the trips visible to the user, in backend order.
func (a *TripsAPI) List(ctx context.Context) ([]domain.Trip, error) {
	var trips []domain.Trip
	if err := a.c.Do(ctx, Request{Method: http.MethodGet, Path: "/api/trip/"}, &trips); err != nil {
		return nil, err
	}
	return trips, nil
}

// Get returns one trip with owner, participants and stages.
func (a *TripsAPI) Get(ctx context.Context, id domain.TripID) (domain.Trip, error) {
	var trip domain.Trip
	if err := a.c.Do(ctx, Request{Method: http.MethodGet, Path: tripPath(id)}, &trip); err != nil {
		return domain.Trip{}, err
	}
	return trip, nil
}

// Create creates a trip owned by the current user.
func (a *TripsAPI) Create(ctx context.Context, in TripInput) (domain.Trip, error) {
	if err := in.validate(); err != nil {
		return domain.Trip{}, err
	}
	var trip domain.Trip
	err := a.c.Do(ctx, Request{Method: http.MethodPost, Path: "/api/trip/", Body: in}, &trip)
	return trip, err
}

// Update replaces the writable fields of a trip.
func (a *TripsAPI) Update(ctx context.Context, id domain.TripID, in TripInput) (domain.Trip, error) {
	if err := in.validate(); err != nil {
		return domain.Trip{}, err
	}
	var trip domain.Trip
	err := a.c.Do(ctx, Request{Method: http.MethodPut, Path: tripPath(id), Body: in}, &trip)
	return trip, err
}

// Delete removes a trip.
func (a *TripsAPI) Delete(ctx context.Context, id domain.TripID) error {
	return a.c.Do(ctx, Request{Method: http.MethodDelete, Path: tripPath(id)}, nil)
}

// AddParticipant adds userID to the trip's participants. The backend only
// accepts the full id list, so this reads the current list first.
func (a *TripsAPI) AddParticipant(ctx context.Context, id domain.TripID, userID int64) (domain.Trip, error) {
	return a.setParticipants(ctx, id, func(ids []int64) []int64 {
		if slices.Contains(ids, userID) {
			return ids
		}
		return append(ids, userID)
	})
}

// RemoveParticipant removes userID from the trip's participants.
func (a *TripsAPI) RemoveParticipant(ctx context.Context, id domain.TripID, userID int64) (domain.Trip, error) {
	return a.setParticipants(ctx, id, func(ids []int64) []int64 {
		return slices.DeleteFunc(ids, func(p int64) bool { return p == userID })
	})
}

func (a *TripsAPI) setParticipants(ctx context.Context, id domain.TripID, edit func([]int64) []int64) (domain.Trip, error) {
	current, err := a.Get(ctx, id)
	if err != nil {
		return domain.Trip{}, err
	}
	ids := make([]int64, 0, len(current.Participants))
	for _, p := range current.Participants {
		ids = append(ids, p.ID)
	}
	body := map[string][]int64{"participants_ids": edit(ids)}

	var trip domain.Trip
	err = a.c.Do(ctx, Request{Method: http.MethodPut, Path: tripPath(id), Body: body}, &trip)
	return trip, err
}

// Invite sends a trip invitation to inviteeID.
func (a *TripsAPI) Invite(ctx context.Context, id domain.TripID, inviteeID int64) (TripInvitation, error) {
	if inviteeID <= 0 {
		return TripInvitation{}, fmt.Errorf("%w: invitee_id is required", domain.ErrValidation)
	}
	var inv TripInvitation
	err := a.c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   tripPath(id) + "invite/",
		Body:   map[string]int64{"invitee_id": inviteeID},
	}, &inv)
	return inv, err
}

// RespondToInvitation accepts or rejects an invitation addressed to the user.
func (a *TripsAPI) RespondToInvitation(ctx context.Context, invitationID int64, action string) (TripInvitation, error) {
	if action != "accept" && action != "reject" {
		return TripInvitation{}, fmt.Errorf("%w: action must be accept or reject", domain.ErrValidation)
	}
	var inv TripInvitation
	err := a.c.Do(ctx, Request{
		Method: http.MethodPut,
		Path:   fmt.Sprintf("/api/invitation/%d/respond/", invitationID),
		Body:   map[string]string{"action": action},
	}, &inv)
	return inv, err
}

// CreateStages creates several stages on a trip in one call.
func (a *TripsAPI) CreateStages(ctx context.Context, id domain.TripID, stages []domain.Stage) ([]domain.Stage, error) {
	for i, s := range stages {
		if s.Name == "" || s.Category == "" {
			return nil, fmt.Errorf("%w: stage %d needs a name and category", domain.ErrValidation, i)
		}
	}
	var out []domain.Stage
	err := a.c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   tripPath(id) + "batch-create-stages/",
		Body:   map[string][]domain.Stage{"stages": stages},
	}, &out)
	return out, err
}

// ReorderStages sets the stage order to stageIDs.
func (a *TripsAPI) ReorderStages(ctx context.Context, id domain.TripID, stageIDs []int64) error {
	return a.c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   tripPath(id) + "reorder-stages/",
		Body:   map[string][]int64{"stage_ids": stageIDs},
	}, nil)
}
