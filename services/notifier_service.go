package services

import (
	"time"
)

// Event names pushed to connected dashboards
const (
	EventNewOrder       = "new_order"
	EventStatusUpdated  = "status_updated"
	EventOrderCompleted = "order_completed"
)

// Event is a single realtime message. Payloads are small flat structs so the
// wire format stays stable.
type Event struct {
	Name string `json:"event"`
	Data any    `json:"data"`
}

// NewOrderData is the payload for a new_order event
type NewOrderData struct {
	OrderID   uint   `json:"order_id"`
	TableID   uint   `json:"table_id"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

// StatusUpdatedData is the payload for a status_updated event
type StatusUpdatedData struct {
	OrderID uint   `json:"order_id"`
	Status  string `json:"status"`
}

// OrderCompletedData is the payload for an order_completed event
type OrderCompletedData struct {
	OrderID uint `json:"order_id"`
	TableID uint `json:"table_id"`
}

// Notifier delivers events to currently connected observers. Delivery is
// best-effort and fire-and-forget: Publish must never block the request path
// and a failed or dropped delivery must never fail the state change that
// produced it. Clients connecting later do not see earlier events.
type Notifier interface {
	Publish(event Event)
}

var notifierInstance Notifier

// InitNotifier sets the global notifier
func InitNotifier(n Notifier) Notifier {
	notifierInstance = n
	return n
}

// GetNotifier returns the initialized notifier instance
func GetNotifier() Notifier {
	return notifierInstance
}

// SetNotifier sets the notifier instance (primarily for testing)
func SetNotifier(n Notifier) {
	notifierInstance = n
}

// publishEvent sends through the global notifier if one is configured.
// Callers on mutation paths go through this so a missing notifier (e.g. unit
// tests that don't care about events) is harmless.
func publishEvent(name string, data any) {
	if notifierInstance == nil {
		return
	}
	notifierInstance.Publish(Event{Name: name, Data: data})
}

// FormatEventTime renders timestamps the way the dashboard expects them
func FormatEventTime(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}
