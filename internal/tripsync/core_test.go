package tripsync_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/tripwhizz/tripsync/internal/domain"
	"github.com/tripwhizz/tripsync/internal/repo"
	"github.com/tripwhizz/tripsync/internal/tripsync"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// ---- test doubles ----------------------------------------------------------

// fakeTrips is a hand-written tripsync.TripSource. Each method is a function
// field; set only the ones your test needs.
type fakeTrips struct {
	list    func(ctx context.Context) ([]domain.Trip, error)
	details func(ctx context.Context, id domain.TripID) (domain.Trip, error)
}

func (f *fakeTrips) ListTrips(ctx context.Context) ([]domain.Trip, error) {
	return f.list(ctx)
}
func (f *fakeTrips) GetTripDetails(ctx context.Context, id domain.TripID) (domain.Trip, error) {
	return f.details(ctx, id)
}

var _ tripsync.TripSource = (*fakeTrips)(nil)

type fakePrefs struct {
	get func(ctx context.Context) (domain.UserPreferences, error)
}

func (f *fakePrefs) GetPreferences(ctx context.Context) (domain.UserPreferences, error) {
	return f.get(ctx)
}

// fakeStore is a SelectionStore that records every write.
type fakeStore struct {
	mu     sync.Mutex
	value  string
	has    bool
	sets   []string
	getErr error
	setErr error
}

func (s *fakeStore) Get(context.Context) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value, s.has, s.getErr
}

func (s *fakeStore) Set(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setErr != nil {
		return s.setErr
	}
	s.value, s.has = id, true
	s.sets = append(s.sets, id)
	return nil
}

func (s *fakeStore) current() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value, s.has
}

func (s *fakeStore) writes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.sets...)
}

var _ repo.SelectionStore = (*fakeStore)(nil)

type recordingPublisher struct {
	mu     sync.Mutex
	states []domain.TripState
}

func (p *recordingPublisher) Publish(s domain.TripState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.states = append(p.states, s)
}

func (p *recordingPublisher) snapshot() []domain.TripState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.TripState(nil), p.states...)
}

// ---- helpers ---------------------------------------------------------------

var errBoom = errors.New("boom")

func romeOslo() []domain.Trip {
	return []domain.Trip{{ID: 1, Name: "Rome"}, {ID: 2, Name: "Oslo"}}
}

func listOf(trips []domain.Trip) func(context.Context) ([]domain.Trip, error) {
	return func(context.Context) ([]domain.Trip, error) { return trips, nil }
}

// detailsWithParticipant returns details carrying one participant whose id
// equals the trip id, so tests can tell which payload was merged.
func detailsWithParticipant(_ context.Context, id domain.TripID) (domain.Trip, error) {
	return domain.Trip{
		ID:           id,
		Description:  "details of " + id.String(),
		Participants: []domain.Participant{{ID: int64(id), Username: "p" + id.String()}},
	}, nil
}

func prefsWithSort(sort domain.TripSort) *fakePrefs {
	return &fakePrefs{get: func(context.Context) (domain.UserPreferences, error) {
		var p domain.UserPreferences
		p.SetTripSort(sort)
		return p, nil
	}}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newCore(trips tripsync.TripSource, prefs tripsync.PreferenceSource, store repo.SelectionStore, opts ...tripsync.Option) *tripsync.Core {
	opts = append([]tripsync.Option{tripsync.WithLogger(quietLogger())}, opts...)
	return tripsync.New(trips, prefs, store, opts...)
}

func ids(trips []domain.Trip) []domain.TripID {
	out := make([]domain.TripID, 0, len(trips))
	for _, t := range trips {
		out = append(out, t.ID)
	}
	return out
}

// ---- startup ---------------------------------------------------------------

func TestStart_NoSortNoPersisted_SelectsFirst(t *testing.T) {
	store := &fakeStore{}
	core := newCore(&fakeTrips{list: listOf(romeOslo()), details: detailsWithParticipant}, prefsWithSort(domain.TripSortNone), store)

	require.NoError(t, core.Start(context.Background()))

	st := core.State()
	assert.Equal(t, []domain.TripID{1, 2}, ids(st.Trips), "backend order preserved")
	require.NotNil(t, st.Selected)
	assert.Equal(t, domain.TripID(1), st.Selected.ID)
	assert.Equal(t, "Rome", st.Selected.Name, "summary fields kept after merge")
	assert.Equal(t, "details of 1", st.Selected.Description)
	assert.Len(t, st.Selected.Participants, 1)
	assert.False(t, st.Loading)
	assert.Empty(t, st.Error)
	assert.Equal(t, domain.PhaseReady, st.Phase)

	got, ok := store.current()
	assert.True(t, ok)
	assert.Equal(t, "1", got)
}

func TestStart_NameSort_SelectsFirstSorted(t *testing.T) {
	store := &fakeStore{}
	core := newCore(&fakeTrips{list: listOf(romeOslo()), details: detailsWithParticipant}, prefsWithSort(domain.TripSortName), store)

	require.NoError(t, core.Start(context.Background()))

	st := core.State()
	assert.Equal(t, []domain.TripID{2, 1}, ids(st.Trips))
	require.NotNil(t, st.Selected)
	assert.Equal(t, domain.TripID(2), st.Selected.ID)
	got, _ := store.current()
	assert.Equal(t, "2", got)
}

func TestStart_PersistedIDPresent_SelectsItWithoutRewriting(t *testing.T) {
	store := &fakeStore{value: "2", has: true}
	core := newCore(&fakeTrips{list: listOf(romeOslo()), details: detailsWithParticipant}, prefsWithSort(domain.TripSortNone), store)

	require.NoError(t, core.Start(context.Background()))

	st := core.State()
	require.NotNil(t, st.Selected)
	assert.Equal(t, domain.TripID(2), st.Selected.ID)
	assert.Equal(t, "Oslo", st.Selected.Name)
	require.Len(t, st.Selected.Participants, 1)
	assert.Equal(t, int64(2), st.Selected.Participants[0].ID, "merged with its own details")
	assert.Empty(t, store.writes())
}

func TestStart_StalePersistedID_FallsBackToFirst(t *testing.T) {
	store := &fakeStore{value: "2", has: true}
	trips := []domain.Trip{{ID: 1, Name: "Rome"}, {ID: 3, Name: "Lima"}}
	core := newCore(&fakeTrips{list: listOf(trips), details: detailsWithParticipant}, prefsWithSort(domain.TripSortNone), store)

	require.NoError(t, core.Start(context.Background()))

	st := core.State()
	require.NotNil(t, st.Selected)
	assert.Equal(t, domain.TripID(1), st.Selected.ID)
	assert.Equal(t, []string{"1"}, store.writes())
}

func TestStart_EmptyList_NoSelectionNoError(t *testing.T) {
	store := &fakeStore{value: "9", has: true}
	core := newCore(&fakeTrips{list: listOf([]domain.Trip{})}, prefsWithSort(domain.TripSortNone), store)

	require.NoError(t, core.Start(context.Background()))

	st := core.State()
	assert.Nil(t, st.Selected)
	assert.Empty(t, st.Error)
	assert.Empty(t, st.Trips)
	assert.False(t, st.Loading)
	assert.Empty(t, store.writes())
}

func TestStart_PreferencesFailure_DoesNotBlockTrips(t *testing.T) {
	prefs := &fakePrefs{get: func(context.Context) (domain.UserPreferences, error) {
		return domain.UserPreferences{}, errBoom
	}}
	core := newCore(&fakeTrips{list: listOf(romeOslo()), details: detailsWithParticipant}, prefs, &fakeStore{})

	require.NoError(t, core.Start(context.Background()))

	st := core.State()
	assert.Equal(t, []domain.TripID{1, 2}, ids(st.Trips), "no sort without preferences")
	require.NotNil(t, st.Selected)
	assert.Equal(t, domain.TripID(1), st.Selected.ID)
	require.Len(t, st.Notices, 1)
	assert.Equal(t, "Failed to load preferences", st.Notices[0].Message)
	assert.Equal(t, "boom", st.Notices[0].Detail)
	assert.Empty(t, st.Error)
}

func TestStart_DetailsFailure_KeepsSummarySelected(t *testing.T) {
	trips := &fakeTrips{
		list: listOf(romeOslo()),
		details: func(context.Context, domain.TripID) (domain.Trip, error) {
			return domain.Trip{}, errBoom
		},
	}
	core := newCore(trips, prefsWithSort(domain.TripSortNone), &fakeStore{})

	require.NoError(t, core.Start(context.Background()))

	st := core.State()
	require.NotNil(t, st.Selected, "selection is never nulled by a details failure")
	assert.Equal(t, domain.TripID(1), st.Selected.ID)
	assert.False(t, st.Selected.HasDetails())
	assert.False(t, st.Loading)
	require.Len(t, st.Notices, 1)
	assert.Equal(t, "Failed to load trip details", st.Notices[0].Message)
}

func TestStart_StoreReadFailure_TreatedAsAbsent(t *testing.T) {
	store := &fakeStore{getErr: errBoom}
	core := newCore(&fakeTrips{list: listOf(romeOslo()), details: detailsWithParticipant}, prefsWithSort(domain.TripSortNone), store)

	require.NoError(t, core.Start(context.Background()))

	st := core.State()
	require.NotNil(t, st.Selected)
	assert.Equal(t, domain.TripID(1), st.Selected.ID)
	assert.Equal(t, []string{"1"}, store.writes())
	require.Len(t, st.Notices, 1)
	assert.Equal(t, "Failed to read saved trip selection", st.Notices[0].Message)
}

func TestStart_StoreWriteFailure_IsNotice(t *testing.T) {
	store := &fakeStore{setErr: errBoom}
	core := newCore(&fakeTrips{list: listOf(romeOslo()), details: detailsWithParticipant}, prefsWithSort(domain.TripSortNone), store)

	require.NoError(t, core.Start(context.Background()))

	st := core.State()
	require.NotNil(t, st.Selected)
	assert.Equal(t, domain.TripID(1), st.Selected.ID)
	require.Len(t, st.Notices, 1)
	assert.Equal(t, "Failed to save selected trip", st.Notices[0].Message)
}

// ---- refresh ---------------------------------------------------------------

func TestRefreshTrips_ListFailure_KeepsStaleTrips(t *testing.T) {
	var fail bool
	var mu sync.Mutex
	trips := &fakeTrips{
		list: func(context.Context) ([]domain.Trip, error) {
			mu.Lock()
			defer mu.Unlock()
			if fail {
				return nil, errBoom
			}
			return romeOslo(), nil
		},
		details: detailsWithParticipant,
	}
	core := newCore(trips, prefsWithSort(domain.TripSortNone), &fakeStore{})
	require.NoError(t, core.Start(context.Background()))

	mu.Lock()
	fail = true
	mu.Unlock()
	err := core.RefreshTrips(context.Background())

	require.ErrorIs(t, err, errBoom)
	st := core.State()
	assert.Equal(t, tripsync.ListFailedMessage, st.Error)
	assert.Equal(t, []domain.TripID{1, 2}, ids(st.Trips), "stale-but-valid list kept")
	require.NotNil(t, st.Selected)
	assert.Equal(t, domain.TripID(1), st.Selected.ID)
	assert.False(t, st.Loading)

	mu.Lock()
	fail = false
	mu.Unlock()
	require.NoError(t, core.RefreshTrips(context.Background()))
	assert.Empty(t, core.State().Error, "a successful cycle clears the error")
}

func TestRefreshTrips_ClearsErrorWhenCycleStarts(t *testing.T) {
	var fail bool
	var mu sync.Mutex
	trips := &fakeTrips{
		list: func(context.Context) ([]domain.Trip, error) {
			mu.Lock()
			defer mu.Unlock()
			if fail {
				return nil, errBoom
			}
			return romeOslo(), nil
		},
		details: detailsWithParticipant,
	}
	pub := &recordingPublisher{}
	mu.Lock()
	fail = true
	mu.Unlock()
	core := newCore(trips, prefsWithSort(domain.TripSortNone), &fakeStore{}, tripsync.WithPublisher(pub))
	require.Error(t, core.Start(context.Background()))
	require.Equal(t, tripsync.ListFailedMessage, core.State().Error)

	mu.Lock()
	fail = false
	mu.Unlock()
	before := len(pub.snapshot())
	require.NoError(t, core.RefreshTrips(context.Background()))

	states := pub.snapshot()
	require.Greater(t, len(states), before)
	started := states[before]
	assert.True(t, started.Loading)
	assert.Empty(t, started.Error, "the old list error is not shown while reloading")
}

func TestStart_ListFailure_EmptyState(t *testing.T) {
	trips := &fakeTrips{list: func(context.Context) ([]domain.Trip, error) { return nil, errBoom }}
	core := newCore(trips, prefsWithSort(domain.TripSortNone), &fakeStore{})

	err := core.Start(context.Background())

	require.Error(t, err)
	st := core.State()
	assert.Equal(t, tripsync.ListFailedMessage, st.Error)
	assert.Empty(t, st.Trips)
	assert.Nil(t, st.Selected)
	assert.Equal(t, domain.PhaseReady, st.Phase)
}

func TestRefreshTrips_ReappliesSort(t *testing.T) {
	var mu sync.Mutex
	sort := domain.TripSortNone
	prefs := &fakePrefs{get: func(context.Context) (domain.UserPreferences, error) {
		mu.Lock()
		defer mu.Unlock()
		var p domain.UserPreferences
		p.SetTripSort(sort)
		return p, nil
	}}
	core := newCore(&fakeTrips{list: listOf(romeOslo()), details: detailsWithParticipant}, prefs, &fakeStore{})
	require.NoError(t, core.Start(context.Background()))
	assert.Equal(t, []domain.TripID{1, 2}, ids(core.State().Trips))

	mu.Lock()
	sort = domain.TripSortName
	mu.Unlock()
	require.NoError(t, core.RefreshTrips(context.Background()))

	st := core.State()
	assert.Equal(t, []domain.TripID{2, 1}, ids(st.Trips))
	require.NotNil(t, st.Selected)
	assert.Equal(t, domain.TripID(1), st.Selected.ID, "persisted selection survives a re-sort")
}

func TestRefreshContent_Monotonic(t *testing.T) {
	core := newCore(&fakeTrips{list: listOf(romeOslo()), details: detailsWithParticipant}, prefsWithSort(domain.TripSortNone), &fakeStore{})

	assert.Equal(t, uint64(1), core.RefreshContent())
	assert.Equal(t, uint64(2), core.RefreshContent())
	require.NoError(t, core.Start(context.Background()))
	require.NoError(t, core.RefreshTrips(context.Background()))

	assert.Equal(t, uint64(2), core.State().ContentVersion, "cycles never reset the content version")
	assert.Equal(t, uint64(3), core.RefreshContent())
}

// ---- switching -------------------------------------------------------------

func TestSelectTrip_StaleResponseDoesNotClobberNewer(t *testing.T) {
	releaseB := make(chan struct{})
	trips := &fakeTrips{
		list: listOf([]domain.Trip{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}, {ID: 3, Name: "C"}}),
		details: func(ctx context.Context, id domain.TripID) (domain.Trip, error) {
			if id == 2 {
				<-releaseB
			}
			return detailsWithParticipant(ctx, id)
		},
	}
	store := &fakeStore{}
	core := newCore(trips, prefsWithSort(domain.TripSortNone), store)
	require.NoError(t, core.Start(context.Background()))
	st := core.State()

	bDone := make(chan error, 1)
	go func() { bDone <- core.SelectTrip(context.Background(), st.Trips[1]) }()
	require.Eventually(t, func() bool { return core.State().SelectedID() == "2" }, time.Second, time.Millisecond)

	require.NoError(t, core.SelectTrip(context.Background(), st.Trips[2]))
	assert.True(t, core.State().Loading, "B is still in flight")

	close(releaseB)
	require.NoError(t, <-bDone)

	final := core.State()
	require.NotNil(t, final.Selected)
	assert.Equal(t, domain.TripID(3), final.Selected.ID)
	assert.Equal(t, "C", final.Selected.Name)
	require.Len(t, final.Selected.Participants, 1)
	assert.Equal(t, int64(3), final.Selected.Participants[0].ID, "B's details must not be merged into C")
	assert.False(t, final.Loading)
	got, _ := store.current()
	assert.Equal(t, "3", got)
}

func TestSelectTrip_OptimisticWhileLoading(t *testing.T) {
	release := make(chan struct{})
	trips := &fakeTrips{
		list: listOf(romeOslo()),
		details: func(ctx context.Context, id domain.TripID) (domain.Trip, error) {
			if id == 2 {
				<-release
			}
			return detailsWithParticipant(ctx, id)
		},
	}
	store := &fakeStore{}
	core := newCore(trips, prefsWithSort(domain.TripSortNone), store)
	require.NoError(t, core.Start(context.Background()))

	done := make(chan error, 1)
	go func() { done <- core.SelectTripByID(context.Background(), "2") }()

	require.Eventually(t, func() bool {
		st := core.State()
		return st.SelectedID() == "2" && st.Loading
	}, time.Second, time.Millisecond)
	st := core.State()
	assert.Equal(t, domain.PhaseRefreshing, st.Phase)
	assert.False(t, st.Selected.HasDetails(), "summary shown before details arrive")
	require.Eventually(t, func() bool { v, _ := store.current(); return v == "2" }, time.Second, time.Millisecond,
		"id persisted before details arrive")

	close(release)
	require.NoError(t, <-done)
	st = core.State()
	assert.False(t, st.Loading)
	assert.Equal(t, domain.PhaseReady, st.Phase)
	assert.True(t, st.Selected.HasDetails())
}

func TestSelectTrip_DetailsFailure_KeepsOptimisticSelection(t *testing.T) {
	trips := &fakeTrips{
		list: listOf(romeOslo()),
		details: func(ctx context.Context, id domain.TripID) (domain.Trip, error) {
			if id == 2 {
				return domain.Trip{}, errBoom
			}
			return detailsWithParticipant(ctx, id)
		},
	}
	core := newCore(trips, prefsWithSort(domain.TripSortNone), &fakeStore{})
	require.NoError(t, core.Start(context.Background()))

	err := core.SelectTripByID(context.Background(), "2")

	require.ErrorIs(t, err, errBoom)
	st := core.State()
	require.NotNil(t, st.Selected)
	assert.Equal(t, domain.TripID(2), st.Selected.ID)
	assert.Equal(t, "Oslo", st.Selected.Name)
	assert.False(t, st.Loading)
	require.NotEmpty(t, st.Notices)
	assert.Equal(t, "Failed to load trip details", st.Notices[len(st.Notices)-1].Message)
}

func TestSelectTripByID_Unknown(t *testing.T) {
	core := newCore(&fakeTrips{list: listOf(romeOslo()), details: detailsWithParticipant}, prefsWithSort(domain.TripSortNone), &fakeStore{})
	require.NoError(t, core.Start(context.Background()))

	err := core.SelectTripByID(context.Background(), "99")

	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, "1", core.State().SelectedID())
}

func TestRefreshTrips_SwitchDuringCycleWins(t *testing.T) {
	listGate := make(chan struct{})
	var calls int
	var mu sync.Mutex
	trips := &fakeTrips{
		list: func(context.Context) ([]domain.Trip, error) {
			mu.Lock()
			calls++
			n := calls
			mu.Unlock()
			if n == 2 {
				<-listGate
			}
			return romeOslo(), nil
		},
		details: detailsWithParticipant,
	}
	store := &fakeStore{}
	core := newCore(trips, prefsWithSort(domain.TripSortNone), store)
	require.NoError(t, core.Start(context.Background()))

	refreshed := make(chan error, 1)
	go func() { refreshed <- core.RefreshTrips(context.Background()) }()
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return calls == 2
	}, time.Second, time.Millisecond)

	require.NoError(t, core.SelectTripByID(context.Background(), "2"))
	close(listGate)
	require.NoError(t, <-refreshed)

	st := core.State()
	assert.Equal(t, "2", st.SelectedID())
	assert.True(t, st.Selected.HasDetails())
	got, _ := store.current()
	assert.Equal(t, "2", got)
}

// ---- publishing & notices --------------------------------------------------

func TestCore_PublishesSnapshots(t *testing.T) {
	pub := &recordingPublisher{}
	core := newCore(&fakeTrips{list: listOf(romeOslo()), details: detailsWithParticipant}, prefsWithSort(domain.TripSortNone), &fakeStore{},
		tripsync.WithPublisher(pub))

	require.NoError(t, core.Start(context.Background()))

	states := pub.snapshot()
	require.NotEmpty(t, states)
	assert.Equal(t, domain.PhaseInitializing, states[0].Phase)
	assert.True(t, states[0].Loading)
	last := states[len(states)-1]
	assert.Equal(t, core.State(), last)
	assert.False(t, last.Loading)
}

func TestCore_StateIsACopy(t *testing.T) {
	core := newCore(&fakeTrips{list: listOf(romeOslo()), details: detailsWithParticipant}, prefsWithSort(domain.TripSortNone), &fakeStore{})
	require.NoError(t, core.Start(context.Background()))

	st := core.State()
	st.Trips[0].Name = "mutated"
	st.Selected.Participants[0].Username = "mutated"

	again := core.State()
	assert.Equal(t, "Rome", again.Trips[0].Name)
	assert.NotEqual(t, "mutated", again.Selected.Participants[0].Username)
}

func TestCore_NoticeLimit(t *testing.T) {
	prefs := &fakePrefs{get: func(context.Context) (domain.UserPreferences, error) {
		return domain.UserPreferences{}, errBoom
	}}
	fixed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	core := newCore(&fakeTrips{list: listOf(romeOslo()), details: detailsWithParticipant}, prefs, &fakeStore{},
		tripsync.WithNoticeLimit(2), tripsync.WithClock(func() time.Time { return fixed }))

	for i := 0; i < 5; i++ {
		require.NoError(t, core.RefreshTrips(context.Background()))
	}

	st := core.State()
	require.Len(t, st.Notices, 2)
	assert.Equal(t, fixed, st.Notices[0].Time)
}

func TestNew_IsIdle(t *testing.T) {
	core := newCore(&fakeTrips{}, &fakePrefs{}, &fakeStore{})

	st := core.State()
	assert.Equal(t, domain.PhaseIdle, st.Phase)
	assert.NotNil(t, st.Trips)
	assert.Nil(t, st.Selected)
	assert.False(t, st.Loading)
}
