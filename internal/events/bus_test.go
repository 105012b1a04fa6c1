package events_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripwhizz/tripsync/internal/domain"
	"github.com/tripwhizz/tripsync/internal/events"
)

func TestBus_SubscribePublish(t *testing.T) {
	bus := events.NewBus()
	ch := bus.Subscribe("a")

	bus.Publish(domain.TripState{ContentVersion: 3})

	select {
	case got := <-ch:
		assert.Equal(t, uint64(3), got.ContentVersion)
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timed out waiting for event")
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := events.NewBus()
	ch := bus.Subscribe("a")

	bus.Unsubscribe("a")
	bus.Unsubscribe("a")

	_, ok := <-ch
	assert.False(t, ok, "channel should be closed after unsubscribe")
	assert.Zero(t, bus.SubscriberCount())
}

func TestBus_ResubscribeClosesOld(t *testing.T) {
	bus := events.NewBus()
	old := bus.Subscribe("a")
	fresh := bus.Subscribe("a")

	_, ok := <-old
	assert.False(t, ok)
	assert.Equal(t, 1, bus.SubscriberCount())

	bus.Publish(domain.TripState{Phase: domain.PhaseReady})
	got := <-fresh
	assert.Equal(t, domain.PhaseReady, got.Phase)
}

func TestBus_DropsWhenFull(t *testing.T) {
	bus := events.NewBus()
	ch := bus.Subscribe("slow")

	done := make(chan struct{})
	go func() {
		for i := 0; i < 20; i++ {
			bus.Publish(domain.TripState{ContentVersion: uint64(i)})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a slow subscriber")
	}

	var got []uint64
	for len(ch) > 0 {
		got = append(got, (<-ch).ContentVersion)
	}
	require.Len(t, got, 8)
	assert.Equal(t, []uint64{12, 13, 14, 15, 16, 17, 18, 19}, got, "oldest snapshots are dropped")
}

func TestBus_SlowSubscriberEndsOnLatest(t *testing.T) {
	bus := events.NewBus()
	ch := bus.Subscribe("slow")

	for v := uint64(1); v <= 10; v++ {
		bus.Publish(domain.TripState{ContentVersion: v, Loading: v < 10})
	}

	var last domain.TripState
	for len(ch) > 0 {
		last = <-ch
	}
	assert.Equal(t, uint64(10), last.ContentVersion)
	assert.False(t, last.Loading)
}

func TestBus_SubscriberCount(t *testing.T) {
	bus := events.NewBus()
	bus.Subscribe("a")
	bus.Subscribe("b")
	assert.Equal(t, 2, bus.SubscriberCount())
	bus.Unsubscribe("a")
	assert.Equal(t, 1, bus.SubscriberCount())
}
