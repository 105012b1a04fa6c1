package handler_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/tripwhizz/tripsync/internal/domain"
	"github.com/tripwhizz/tripsync/internal/handler"
)

// mockCore is a test double for handler.TripContext.
// Set only the method fields your test needs.
type mockCore struct {
	state          func() domain.TripState
	selectTripByID func(ctx context.Context, id string) error
	refreshTrips   func(ctx context.Context) error
	refreshContent func() uint64
}

func (m *mockCore) State() domain.TripState { return m.state() }
func (m *mockCore) SelectTripByID(ctx context.Context, id string) error {
	return m.selectTripByID(ctx, id)
}
func (m *mockCore) RefreshTrips(ctx context.Context) error { return m.refreshTrips(ctx) }
func (m *mockCore) RefreshContent() uint64                 { return m.refreshContent() }

// compile-time check: mockCore must satisfy handler.TripContext.
var _ handler.TripContext = (*mockCore)(nil)

// mockExporter is a test double for handler.RosterExporter.
type mockExporter struct {
	export func(ctx context.Context) ([]domain.RosterRow, error)
}

func (m *mockExporter) Export(ctx context.Context) ([]domain.RosterRow, error) {
	return m.export(ctx)
}

var _ handler.RosterExporter = (*mockExporter)(nil)

// chanSubscriber hands every subscriber the same channel and records ids.
type chanSubscriber struct {
	mu           sync.Mutex
	ch           chan domain.TripState
	subscribed   []string
	unsubscribed []string
}

func (s *chanSubscriber) Subscribe(id string) <-chan domain.TripState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribed = append(s.subscribed, id)
	return s.ch
}

func (s *chanSubscriber) Unsubscribe(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unsubscribed = append(s.unsubscribed, id)
}

func (s *chanSubscriber) ids() (sub, unsub []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.subscribed...), append([]string(nil), s.unsubscribed...)
}

var _ handler.Subscriber = (*chanSubscriber)(nil)

// ---- helpers ---------------------------------------------------------------

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newHTTPHandler wires a Server with the given mocks into its chi router.
// This mirrors how main.go wires it in production, minus middleware.
func newHTTPHandler(core handler.TripContext, sub handler.Subscriber, exp handler.RosterExporter) http.Handler {
	return handler.NewServer(core, sub, exp, quietLogger()).Routes()
}

func staticState(s domain.TripState) func() domain.TripState {
	return func() domain.TripState { return s }
}

func tripFixture(id domain.TripID, name string) domain.Trip {
	return domain.Trip{ID: id, Name: name, Destination: "Lisbon"}
}

func readyState() domain.TripState {
	rome := tripFixture(1, "Rome")
	return domain.TripState{
		Trips:    []domain.Trip{rome, tripFixture(2, "Oslo")},
		Selected: &rome,
		Phase:    domain.PhaseReady,
	}
}
