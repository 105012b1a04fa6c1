package domain

// RosterRow is a single row in the trip roster export.
// It is a flat, denormalized view: one row per participant, with trip fields
// repeated for every participant on that trip. Trips whose details carry no
// participants yield one row with empty participant fields.
type RosterRow struct {
	// Trip fields, repeated for every participant on the trip.
	TripID        string
	TripName      string
	Destination   string
	TripStartDate string // "2006-01-02" formatted date, empty when unset
	TripEndDate   string // empty string when nil

	// Participant fields, zero values when the trip has no participants.
	ParticipantID   int64
	ParticipantName string
	Email           string
	Status          string
}
