// Package handler implements the HTTP handlers for the tripsyncd companion API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (health.go, state.go, trips.go, etc.) but share the same Server struct
// so they can access its dependencies.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tripwhizz/tripsync/internal/domain"
	"github.com/tripwhizz/tripsync/spec"
)

// TripContext is the part of the synchronization core the handlers drive.
// Defining the interface here (in the consumer package) lets handler tests
// inject a mock without a backend or a selection store.
type TripContext interface {
	State() domain.TripState
	SelectTripByID(ctx context.Context, id string) error
	RefreshTrips(ctx context.Context) error
	RefreshContent() uint64
}

// Subscriber hands out state-change channels for the event stream.
type Subscriber interface {
	Subscribe(id string) <-chan domain.TripState
	Unsubscribe(id string)
}

// RosterExporter produces the flat participant roster.
type RosterExporter interface {
	Export(ctx context.Context) ([]domain.RosterRow, error)
}

// Server serves every companion API endpoint.
type Server struct {
	core   TripContext
	events Subscriber
	export RosterExporter
	log    *slog.Logger
}

// NewServer constructs the Server with all its dependencies.
// Any of them may be nil in tests that only exercise unrelated routes.
func NewServer(core TripContext, events Subscriber, export RosterExporter, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{core: core, events: events, export: export, log: log}
}

// Routes returns the router for the companion API. Global middleware is
// applied by the caller so tests can hit the bare routes; commandMW wraps
// only the POST command routes.
func (s *Server) Routes(commandMW ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", serveOpenAPI)
	r.Get("/state", s.GetState)
	r.Get("/state/stream", s.StreamState)
	r.Get("/export", s.GetExport)
	r.Group(func(r chi.Router) {
		r.Use(commandMW...)
		r.Post("/trips/select", s.SelectTrip)
		r.Post("/trips/refresh", s.RefreshTrips)
		r.Post("/content/refresh", s.RefreshContent)
	})
	return r
}

func serveOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(spec.OpenAPI)
}
