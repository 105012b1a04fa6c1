package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// GetState handles GET /state and returns the current snapshot.
func (s *Server) GetState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.core.State())
}

// StreamState handles GET /state/stream as a server-sent event stream.
// The current snapshot is sent first so a client never waits for a change
// to learn the state.
func (s *Server) StreamState(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)
	// The stream outlives the server's WriteTimeout.
	_ = rc.SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	id := uuid.NewString()
	ch := s.events.Subscribe(id)
	defer s.events.Unsubscribe(id)

	log := s.log.With("subscriber", id)
	log.Debug("state stream opened")
	defer log.Debug("state stream closed")

	if err := writeEvent(w, s.core.State()); err != nil {
		return
	}
	if err := rc.Flush(); err != nil {
		log.Warn("state stream: flush unsupported", "error", err)
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case state, ok := <-ch:
			if !ok {
				return
			}
			if err := writeEvent(w, state); err != nil {
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}
		}
	}
}

func writeEvent(w http.ResponseWriter, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", data)
	return err
}
