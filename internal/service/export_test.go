package service_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripwhizz/tripsync/internal/domain"
	"github.com/tripwhizz/tripsync/internal/service"
)

// ---- helpers ---------------------------------------------------------------

func tripFixtureExport(id domain.TripID, name string, start time.Time) domain.Trip {
	return domain.Trip{ID: id, Name: name, Destination: name + " centre", StartDate: domain.NewDate(start)}
}

// detailsBackend lists trips and serves details from byID.
func detailsBackend(trips []domain.Trip, byID map[domain.TripID][]domain.Participant) *mockTripBackend {
	var mu sync.Mutex
	return &mockTripBackend{
		list: func(context.Context) ([]domain.Trip, error) { return trips, nil },
		get: func(_ context.Context, id domain.TripID) (domain.Trip, error) {
			mu.Lock()
			defer mu.Unlock()
			ps := byID[id]
			if ps == nil {
				ps = []domain.Participant{}
			}
			return domain.Trip{ID: id, Participants: ps}, nil
		},
	}
}

// ---- Export ----------------------------------------------------------------

func TestExportService_Export_OneTripTwoParticipants(t *testing.T) {
	trip := tripFixtureExport(1, "Rome", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	svc := service.NewExportService(detailsBackend(
		[]domain.Trip{trip},
		map[domain.TripID][]domain.Participant{1: {
			{ID: 10, Username: "ann", FirstName: "Ann", LastName: "Lee", Email: "ann@x.io", Status: "accepted"},
			{ID: 11, Username: "bo", Status: domain.ParticipantPending},
		}},
	))

	rows, err := svc.Export(context.Background())

	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "1", rows[0].TripID)
	assert.Equal(t, "Rome", rows[0].TripName)
	assert.Equal(t, "2025-06-01", rows[0].TripStartDate)
	assert.Empty(t, rows[0].TripEndDate)
	assert.Equal(t, "Ann Lee", rows[0].ParticipantName)
	assert.Equal(t, "bo", rows[1].ParticipantName)
	assert.Equal(t, domain.ParticipantPending, rows[1].Status)
}

func TestExportService_Export_TripWithNoParticipants(t *testing.T) {
	trip := tripFixtureExport(3, "Empty Trip", time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC))
	svc := service.NewExportService(detailsBackend([]domain.Trip{trip}, nil))

	rows, err := svc.Export(context.Background())

	require.NoError(t, err)
	require.Len(t, rows, 1, "trips with no participants should still produce one row")
	assert.Equal(t, "Empty Trip", rows[0].TripName)
	assert.Zero(t, rows[0].ParticipantID)
	assert.Empty(t, rows[0].ParticipantName)
}

func TestExportService_Export_KeepsTripOrder(t *testing.T) {
	trips := []domain.Trip{
		tripFixtureExport(1, "Trip A", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)),
		tripFixtureExport(2, "Trip B", time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)),
		tripFixtureExport(3, "Trip C", time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)),
	}
	svc := service.NewExportService(detailsBackend(trips, map[domain.TripID][]domain.Participant{
		1: {{ID: 1, Username: "a1"}, {ID: 2, Username: "a2"}},
		3: {{ID: 3, Username: "c1"}},
	}))

	rows, err := svc.Export(context.Background())

	require.NoError(t, err)
	require.Len(t, rows, 4)
	names := []string{rows[0].TripName, rows[1].TripName, rows[2].TripName, rows[3].TripName}
	assert.Equal(t, []string{"Trip A", "Trip A", "Trip B", "Trip C"}, names)
}

func TestExportService_Export_NoTrips(t *testing.T) {
	svc := service.NewExportService(detailsBackend([]domain.Trip{}, nil))

	rows, err := svc.Export(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestExportService_Export_ListError(t *testing.T) {
	svc := service.NewExportService(&mockTripBackend{
		list: func(context.Context) ([]domain.Trip, error) { return nil, errBackend },
	})

	_, err := svc.Export(context.Background())

	require.ErrorIs(t, err, errBackend)
}

func TestExportService_Export_DetailError(t *testing.T) {
	svc := service.NewExportService(&mockTripBackend{
		list: func(context.Context) ([]domain.Trip, error) {
			return []domain.Trip{{ID: 1}, {ID: 2}}, nil
		},
		get: func(_ context.Context, id domain.TripID) (domain.Trip, error) {
			if id == 2 {
				return domain.Trip{}, errBackend
			}
			return domain.Trip{ID: id}, nil
		},
	})

	_, err := svc.Export(context.Background())

	require.ErrorIs(t, err, errBackend)
	assert.Contains(t, err.Error(), "trip 2")
}

// ---- WriteRosterCSV --------------------------------------------------------

func TestWriteRosterCSV_HeaderAndRows(t *testing.T) {
	rows := []domain.RosterRow{
		{TripID: "1", TripName: "Rome, Italy", TripStartDate: "2025-05-01", ParticipantID: 9, ParticipantName: "Ana", Status: "accepted"},
		{TripID: "2", TripName: "Solo"},
	}

	var buf bytes.Buffer
	require.NoError(t, service.WriteRosterCSV(&buf, rows))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, service.RosterCSVHeader, records[0])
	assert.Equal(t, []string{"1", "Rome, Italy", "", "2025-05-01", "", "9", "Ana", "", "accepted"}, records[1])
	assert.Equal(t, "", records[2][5])
}
