package domain

import (
	"fmt"
	"time"
)

// TripSort is the user's preferred ordering of the trip list.
// The zero value means "no explicit sort": keep the backend's order.
type TripSort string

const (
	TripSortNone TripSort = ""
	TripSortName TripSort = "name"
	TripSortDate TripSort = "date"
)

// prefKeyTripSort is the key inside UserPreferences.Data holding the sort.
const prefKeyTripSort = "trip_sort"

// ParseTripSort validates a user-supplied sort value. The empty string and
// "none" both clear the preference.
func ParseTripSort(s string) (TripSort, error) {
	switch s {
	case "", "none":
		return TripSortNone, nil
	case string(TripSortName):
		return TripSortName, nil
	case string(TripSortDate):
		return TripSortDate, nil
	default:
		return TripSortNone, fmt.Errorf("%w: trip sort must be one of name, date, none", ErrValidation)
	}
}

// UserPreferences is the single per-user settings record. Data is free-form;
// keys this package does not know about are kept so an update round-trips
// them untouched.
type UserPreferences struct {
	ID        int64          `json:"id,omitempty"`
	Data      map[string]any `json:"data"`
	CreatedAt *time.Time     `json:"created_at,omitempty"`
	UpdatedAt *time.Time     `json:"updated_at,omitempty"`
}

// TripSort returns the stored sort preference. Absent or unrecognised values
// resolve to TripSortNone.
func (p UserPreferences) TripSort() TripSort {
	raw, ok := p.Data[prefKeyTripSort].(string)
	if !ok {
		return TripSortNone
	}
	switch TripSort(raw) {
	case TripSortName, TripSortDate:
		return TripSort(raw)
	default:
		return TripSortNone
	}
}

// SetTripSort stores s in Data, removing the key for TripSortNone.
func (p *UserPreferences) SetTripSort(s TripSort) {
	if p.Data == nil {
		p.Data = make(map[string]any)
	}
	if s == TripSortNone {
		delete(p.Data, prefKeyTripSort)
		return
	}
	p.Data[prefKeyTripSort] = string(s)
}
