package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/tripwhizz/tripsync/internal/domain"
)

// SelectTripRequest is the body of POST /trips/select. The id may be sent
// as a JSON string or number.
type SelectTripRequest struct {
	ID json.Number `json:"id"`
}

// ContentVersionResponse is the body of POST /content/refresh.
type ContentVersionResponse struct {
	ContentVersion uint64 `json:"content_version"`
}

// SelectTrip handles POST /trips/select.
// An id not in the loaded list is 404. A details fetch failure is not an
// error here: the switch happened and the snapshot carries the notice.
func (s *Server) SelectTrip(w http.ResponseWriter, r *http.Request) {
	var req SelectTripRequest
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		if isMaxBytes(err) {
			writeJSON(w, http.StatusRequestEntityTooLarge, requestBody("request body too large"))
			return
		}
		writeJSON(w, http.StatusUnprocessableEntity, requestBody("request body must be a JSON object with an id"))
		return
	}
	id := strings.TrimSpace(req.ID.String())
	if id == "" {
		writeJSON(w, http.StatusUnprocessableEntity, requestBody("id is required"))
		return
	}

	// The switch completes even if the client goes away mid-request.
	ctx := context.WithoutCancel(r.Context())
	if err := s.core.SelectTripByID(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, notFoundBody("trip "+id+" not found"))
			return
		}
		s.log.WarnContext(r.Context(), "select trip: details not loaded", "trip_id", id, "error", err)
	}
	writeJSON(w, http.StatusAccepted, s.core.State())
}

// RefreshTrips handles POST /trips/refresh and runs a full load cycle.
func (s *Server) RefreshTrips(w http.ResponseWriter, r *http.Request) {
	ctx := context.WithoutCancel(r.Context())
	if err := s.core.RefreshTrips(ctx); err != nil {
		s.log.ErrorContext(r.Context(), "refresh trips", "error", err)
		writeJSON(w, http.StatusBadGateway, upstreamBody(err))
		return
	}
	writeJSON(w, http.StatusOK, s.core.State())
}

// RefreshContent handles POST /content/refresh.
func (s *Server) RefreshContent(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, ContentVersionResponse{ContentVersion: s.core.RefreshContent()})
}
