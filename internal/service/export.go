package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	openapi_types "github.com/oapi-codegen/runtime/types"
	"golang.org/x/sync/errgroup"

	"github.com/tripwhizz/tripsync/internal/domain"
)

// exportConcurrency bounds the detail requests in flight during an export.
const exportConcurrency = 4

// ExportService assembles a flat roster of every trip and its participants.
type ExportService struct {
	trips TripBackend
}

// NewExportService constructs an ExportService backed by trips.
func NewExportService(trips TripBackend) *ExportService {
	return &ExportService{trips: trips}
}

// Export returns one RosterRow per participant across all trips, in trip
// list order. Trips without participants contribute one row with empty
// participant fields. Any failed detail fetch fails the whole export.
func (s *ExportService) Export(ctx context.Context) ([]domain.RosterRow, error) {
	trips, err := s.trips.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Export: list trips: %w", err)
	}

	details := make([]domain.Trip, len(trips))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(exportConcurrency)
	for i, t := range trips {
		g.Go(func() error {
			d, err := s.trips.Get(gctx, t.ID)
			if err != nil {
				return fmt.Errorf("service.ExportService.Export: trip %s: %w", t.ID, err)
			}
			details[i] = domain.MergeDetails(t, d)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rows := make([]domain.RosterRow, 0, len(details))
	for _, t := range details {
		base := domain.RosterRow{
			TripID:        t.ID.String(),
			TripName:      t.Name,
			Destination:   t.Destination,
			TripStartDate: formatDate(t.StartDate),
			TripEndDate:   formatDate(t.EndDate),
		}
		if len(t.Participants) == 0 {
			rows = append(rows, base)
			continue
		}
		for _, p := range t.Participants {
			row := base
			row.ParticipantID = p.ID
			row.ParticipantName = p.DisplayName()
			row.Email = p.Email
			row.Status = p.Status
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func formatDate(d *openapi_types.Date) string {
	if d == nil || d.IsZero() {
		return ""
	}
	return d.String()
}

// RosterCSVHeader is the first line of every CSV roster.
var RosterCSVHeader = []string{
	"trip_id", "trip_name", "destination", "trip_start_date", "trip_end_date",
	"participant_id", "participant_name", "email", "status",
}

// WriteRosterCSV writes rows as CSV with a header line.
// A zero participant id is written as an empty cell.
func WriteRosterCSV(w io.Writer, rows []domain.RosterRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(RosterCSVHeader); err != nil {
		return err
	}
	for _, r := range rows {
		participantID := ""
		if r.ParticipantID != 0 {
			participantID = strconv.FormatInt(r.ParticipantID, 10)
		}
		record := []string{
			r.TripID,
			r.TripName,
			r.Destination,
			r.TripStartDate,
			r.TripEndDate,
			participantID,
			r.ParticipantName,
			r.Email,
			r.Status,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
