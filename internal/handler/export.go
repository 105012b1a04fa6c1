// export.go implements GET /export.
// Returns every trip and participant as a flat roster.
// Supports content negotiation via ?format=csv (CSV) or default (JSON).

package handler

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/tripwhizz/tripsync/internal/domain"
	"github.com/tripwhizz/tripsync/internal/service"
)

// RosterRow is the JSON shape of one export row.
// Empty participant fields are omitted.
type RosterRow struct {
	TripID          string              `json:"trip_id"`
	TripName        string              `json:"trip_name"`
	Destination     string              `json:"destination,omitempty"`
	TripStartDate   *openapi_types.Date `json:"trip_start_date,omitempty"`
	TripEndDate     *openapi_types.Date `json:"trip_end_date,omitempty"`
	ParticipantID   *int64              `json:"participant_id,omitempty"`
	ParticipantName string              `json:"participant_name,omitempty"`
	Email           string              `json:"email,omitempty"`
	Status          string              `json:"status,omitempty"`
}

// GetExport implements GET /export.
// Use ?format=csv to receive CSV; default is JSON.
func (s *Server) GetExport(w http.ResponseWriter, r *http.Request) {
	rows, err := s.export.Export(r.Context())
	if err != nil {
		s.log.ErrorContext(r.Context(), "export roster", "error", err)
		writeJSON(w, http.StatusBadGateway, upstreamBody(err))
		return
	}

	switch r.URL.Query().Get("format") {
	case "", "json":
		writeJSON(w, http.StatusOK, buildJSONRows(rows))
	case "csv":
		var buf bytes.Buffer
		//nolint:errcheck // bytes.Buffer.Write never returns an error.
		service.WriteRosterCSV(&buf, rows)
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="roster.csv"`)
		w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
		w.WriteHeader(http.StatusOK)
		_, _ = buf.WriteTo(w)
	default:
		writeJSON(w, http.StatusUnprocessableEntity, requestBody("format must be json or csv"))
	}
}

// buildJSONRows converts domain rows to the JSON response shape.
func buildJSONRows(rows []domain.RosterRow) []RosterRow {
	out := make([]RosterRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, domainRowToJSONRow(r))
	}
	return out
}

// domainRowToJSONRow maps a domain.RosterRow to the JSON row.
// Dates that fail to parse are dropped rather than failing the export.
func domainRowToJSONRow(r domain.RosterRow) RosterRow {
	row := RosterRow{
		TripID:          r.TripID,
		TripName:        r.TripName,
		Destination:     r.Destination,
		TripStartDate:   parseDate(r.TripStartDate),
		TripEndDate:     parseDate(r.TripEndDate),
		ParticipantName: r.ParticipantName,
		Email:           r.Email,
		Status:          r.Status,
	}
	if r.ParticipantID != 0 {
		id := r.ParticipantID
		row.ParticipantID = &id
	}
	return row
}

// parseDate parses a "2006-01-02" string into an openapi_types.Date.
func parseDate(s string) *openapi_types.Date {
	if s == "" {
		return nil
	}
	t, err := time.Parse(openapi_types.DateFormat, s)
	if err != nil {
		return nil
	}
	return &openapi_types.Date{Time: t}
}
