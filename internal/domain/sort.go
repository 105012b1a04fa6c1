package domain

import (
	"slices"
	"strings"
	"time"
)

// SortTrips returns a new slice holding trips in the order requested by s.
//
//   - TripSortName: byte-wise lexicographic by Name; an empty name sorts first.
//   - TripSortDate: ascending by StartDate, falling back to CreatedAt, falling
//     back to the zero time when both are absent.
//   - TripSortNone: backend order, unchanged.
//
// Both sorts are stable, so equal keys keep their relative backend order and
// applying the same sort twice is a no-op.
func SortTrips(trips []Trip, s TripSort) []Trip {
	out := slices.Clone(trips)
	switch s {
	case TripSortName:
		slices.SortStableFunc(out, func(a, b Trip) int {
			return strings.Compare(a.Name, b.Name)
		})
	case TripSortDate:
		slices.SortStableFunc(out, func(a, b Trip) int {
			return sortDate(a).Compare(sortDate(b))
		})
	}
	return out
}

func sortDate(t Trip) time.Time {
	if t.StartDate != nil {
		return t.StartDate.Time
	}
	if t.CreatedAt != nil {
		return *t.CreatedAt
	}
	return time.Time{}
}
