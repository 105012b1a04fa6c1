package domain

import (
	"slices"
	"time"
)

// Phase is the lifecycle stage of the trip synchronization core.
type Phase string

const (
	PhaseIdle         Phase = "idle"
	PhaseInitializing Phase = "initializing"
	PhaseReady        Phase = "ready"
	PhaseRefreshing   Phase = "refreshing"
)

// Notice is a non-fatal problem surfaced to the user (toast-style): a failed
// preferences fetch, a failed details fetch, a store write that did not land.
type Notice struct {
	Time    time.Time `json:"time"`
	Message string    `json:"message"`
	Detail  string    `json:"detail,omitempty"`
}

// TripState is a point-in-time view of the currently active trip and the
// loaded trip list. Values handed out by the core are copies; mutating one
// has no effect on the core.
type TripState struct {
	Trips    []Trip `json:"trips"`
	Selected *Trip  `json:"selected_trip"`
	Loading  bool   `json:"is_loading"`

	// Error is set only when the trip list itself could not be loaded during
	// the most recent cycle. Trips then holds the previous list.
	Error string `json:"error,omitempty"`

	Phase Phase `json:"phase"`

	// ContentVersion is bumped by RefreshContent to force dependent views to
	// remount. It carries no other meaning.
	ContentVersion uint64 `json:"content_version"`

	Notices []Notice `json:"notices,omitempty"`
}

// Clone returns a copy that shares no slices or pointers with s.
func (s TripState) Clone() TripState {
	c := s
	c.Trips = slices.Clone(s.Trips)
	if s.Selected != nil {
		sel := *s.Selected
		sel.Participants = slices.Clone(s.Selected.Participants)
		sel.Stages = slices.Clone(s.Selected.Stages)
		sel.Tags = slices.Clone(s.Selected.Tags)
		c.Selected = &sel
	}
	c.Notices = slices.Clone(s.Notices)
	return c
}

// SelectedID returns the selected trip's id string, or "" when nothing is selected.
func (s TripState) SelectedID() string {
	if s.Selected == nil {
		return ""
	}
	return s.Selected.ID.String()
}

// FindTrip returns the trip in s.Trips whose id string equals id.
func (s TripState) FindTrip(id string) (Trip, bool) {
	return FindTrip(s.Trips, id)
}

// FindTrip returns the trip in trips whose id string equals id.
func FindTrip(trips []Trip, id string) (Trip, bool) {
	for _, t := range trips {
		if t.ID.String() == id {
			return t, true
		}
	}
	return Trip{}, false
}
