package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishDeliversToTypeSubscribers(t *testing.T) {
	bus := NewBus()

	var got []Event
	bus.Subscribe(EventMediaUploaded, func(e Event) {
		got = append(got, e)
	})

	bus.Publish(New(EventMediaUploaded, "test", MediaEventData{MediaID: 1}))
	bus.Publish(New(EventMediaDeleted, "test", nil))

	require.Len(t, got, 1)
	assert.Equal(t, EventMediaUploaded, got[0].Type)
	assert.Equal(t, "test", got[0].Source)
	assert.False(t, got[0].Timestamp.IsZero())
}

func TestWildcardSubscriberSeesEverything(t *testing.T) {
	bus := NewBus()

	var count int
	bus.SubscribeAll(func(Event) { count++ })

	bus.Publish(New(EventMediaUploaded, "test", nil))
	bus.Publish(New(EventGuestCreated, "test", nil))
	bus.Publish(New(EventSettingsUpdated, "test", nil))

	assert.Equal(t, 3, count)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	bus := NewBus()

	var count int
	unsubscribe := bus.Subscribe(EventMediaUpdated, func(Event) { count++ })

	bus.Publish(New(EventMediaUpdated, "test", nil))
	unsubscribe()
	bus.Publish(New(EventMediaUpdated, "test", nil))

	assert.Equal(t, 1, count)
}

func TestPublishIsSynchronous(t *testing.T) {
	bus := NewBus()

	done := false
	bus.Subscribe(EventMediaDeleted, func(Event) { done = true })

	bus.Publish(New(EventMediaDeleted, "test", nil))
	assert.True(t, done, "handler had not run when Publish returned")
}

func TestGlobalBusAccessor(t *testing.T) {
	prev := GetGlobalEventBus()
	defer SetGlobalEventBus(prev)

	bus := NewBus()
	SetGlobalEventBus(bus)
	assert.Equal(t, bus, GetGlobalEventBus())
}
