package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishDeliversToSubscriber(t *testing.T) {
	bus := NewBus()
	ch, unsubscribe := bus.Subscribe(1)
	defer unsubscribe()

	bus.Publish(Event{Kind: StatusOverview, Payload: map[string]int{"Optimized": 3}})

	select {
	case ev := <-ch:
		assert.Equal(t, StatusOverview, ev.Kind)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestPublishDropsWhenBufferFull(t *testing.T) {
	bus := NewBus()
	ch, unsubscribe := bus.Subscribe(1)
	defer unsubscribe()

	bus.Publish(Event{Kind: CrystalUpdated})
	bus.Publish(Event{Kind: CrystalUpdated}) // buffer full, dropped silently

	require.Len(t, ch, 1)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	bus := NewBus()
	ch, unsubscribe := bus.Subscribe(1)
	unsubscribe()

	bus.Publish(Event{Kind: SimilarityFound})

	_, ok := <-ch
	assert.False(t, ok, "channel should be closed after unsubscribe")
}
