// Package domain contains the core data types for tripsync.
// It is imported by every other internal package (apiclient, repo, service,
// tripsync, handler) and holds no I/O of its own.
package domain

import (
	"strconv"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

// TripID identifies a trip. The backend issues numeric ids; everywhere else
// (persisted selection, companion API) the id travels as its decimal string.
type TripID int64

// String returns the decimal form used for persistence and comparison.
func (id TripID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// ParseTripID parses the decimal form produced by TripID.String.
func ParseTripID(s string) (TripID, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return TripID(n), nil
}

// Trip is the central planning unit. The list endpoint returns a summary
// (counters, no participants); the detail endpoint returns a superset with
// owner, participants and stages. See MergeDetails for how the two combine.
type Trip struct {
	ID               TripID              `json:"id"`
	Name             string              `json:"name"`
	Destination      string              `json:"destination"`
	Description      string              `json:"description,omitempty"`
	StartDate        *openapi_types.Date `json:"start_date,omitempty"`
	EndDate          *openapi_types.Date `json:"end_date,omitempty"`
	TripType         string              `json:"trip_type,omitempty"`
	Icon             string              `json:"icon,omitempty"`
	IconColor        string              `json:"icon_color,omitempty"`
	Tags             []string            `json:"tags,omitempty"`
	InvitePermission string              `json:"invite_permission,omitempty"`
	Owner            *Participant        `json:"owner,omitempty"`

	// Participants is nil when the payload did not carry the list (summaries)
	// and non-nil, possibly empty, when it did.
	Participants []Participant `json:"participants,omitempty"`
	Stages       []Stage       `json:"stages,omitempty"`

	// Summary-only counters.
	StageCount        *int `json:"stage_count,omitempty"`
	ParticipantsCount *int `json:"participants_count,omitempty"`

	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// HasDetails reports whether the trip carries the detail-only participant list.
func (t Trip) HasDetails() bool {
	return t.Participants != nil
}

// PendingParticipants returns the participants whose invitation is still pending.
func (t Trip) PendingParticipants() []Participant {
	var out []Participant
	for _, p := range t.Participants {
		if p.IsPending() {
			out = append(out, p)
		}
	}
	return out
}

// Stage is one ordered segment of a trip's plan.
type Stage struct {
	ID                  int64               `json:"id,omitempty"`
	Name                string              `json:"name"`
	Category            string              `json:"category"`
	Description         string              `json:"description,omitempty"`
	StartDate           *openapi_types.Date `json:"start_date,omitempty"`
	EndDate             *openapi_types.Date `json:"end_date,omitempty"`
	Order               int                 `json:"order"`
	IsCustomCategory    bool                `json:"is_custom_category,omitempty"`
	CustomCategoryColor string              `json:"custom_category_color,omitempty"`
}

// NewDate wraps t as a calendar date for the wire.
func NewDate(t time.Time) *openapi_types.Date {
	return &openapi_types.Date{Time: t}
}
