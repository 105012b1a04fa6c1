package handler

import (
	"net/http"

	"github.com/tripwhizz/tripsync/internal/domain"
)

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status string       `json:"status"`
	Phase  domain.Phase `json:"phase"`
	Trips  int          `json:"trips"`
}

// GetHealth always answers 200 while the process is serving. Status is
// "starting" until the first load cycle has finished.
func (s *Server) GetHealth(w http.ResponseWriter, _ *http.Request) {
	st := s.core.State()
	resp := HealthResponse{Status: "ok", Phase: st.Phase, Trips: len(st.Trips)}
	if st.Phase == domain.PhaseIdle || st.Phase == domain.PhaseInitializing {
		resp.Status = "starting"
	}
	writeJSON(w, http.StatusOK, resp)
}
