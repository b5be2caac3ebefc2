package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPublishEventWithoutNotifierIsSafe(t *testing.T) {
	SetNotifier(nil)

	// Must not panic; mutation paths call this unconditionally
	publishEvent(EventNewOrder, NewOrderData{OrderID: 1})
}

func TestMockNotifierRecordsEvents(t *testing.T) {
	notifier := NewMockNotifier()
	notifier.SetAsMockForTesting()
	defer SetNotifier(nil)

	publishEvent(EventStatusUpdated, StatusUpdatedData{OrderID: 3, Status: "preparing"})
	publishEvent(EventOrderCompleted, OrderCompletedData{OrderID: 3, TableID: 1})

	assert.Len(t, notifier.Events(), 2)
	assert.Len(t, notifier.EventsNamed(EventStatusUpdated), 1)
	assert.Len(t, notifier.EventsNamed(EventOrderCompleted), 1)
	assert.Empty(t, notifier.EventsNamed(EventNewOrder))

	notifier.Clear()
	assert.Empty(t, notifier.Events())
}

func TestHubPublishNeverBlocks(t *testing.T) {
	// Hub is deliberately not running: the queue fills and further publishes
	// must drop instead of blocking the caller
	hub := NewHub()

	done := make(chan struct{})
	go func() {
		for i := 0; i < hubQueueSize+10; i++ {
			hub.Publish(Event{Name: EventNewOrder, Data: NewOrderData{OrderID: uint(i)}})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a full event queue")
	}
}

func TestHubBroadcastsToRegisteredClients(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := &hubClient{hub: hub, send: make(chan []byte, clientSendBuffer)}
	hub.register <- client

	hub.Publish(Event{Name: EventStatusUpdated, Data: StatusUpdatedData{OrderID: 7, Status: "preparing"}})

	select {
	case payload := <-client.send:
		assert.JSONEq(t, `{"event":"status_updated","data":{"order_id":7,"status":"preparing"}}`, string(payload))
	case <-time.After(2 * time.Second):
		t.Fatal("client did not receive broadcast")
	}
}

func TestFormatEventTime(t *testing.T) {
	ts := time.Date(2024, 5, 17, 19, 30, 5, 0, time.UTC)
	assert.Equal(t, "2024-05-17 19:30:05", FormatEventTime(ts))
}
