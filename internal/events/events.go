package events

import (
	"encoding/json"
	"sync"
	"time"
)

// Names of the events broadcast to staff displays.
const (
	TableCreated                = "tableCreated"
	TableDeleted                = "tableDeleted"
	TableStatusUpdated          = "tableStatusUpdated"
	TableAvailabilityUpdated    = "tableAvailabilityUpdated"
	DashboardUpdated            = "dashboardUpdated"
	FloorCreated                = "floorCreated"
	FloorDeleted                = "floorDeleted"
	BookingCreated              = "bookingCreated"
	BookingUpdated              = "bookingUpdated"
	BookingConfirmed            = "bookingConfirmed"
	BookingDelayed              = "bookingDelayed"
	BookingOverridden           = "bookingOverridden"
	WaitingListUpdated          = "waitingListUpdated"
	UpcomingBookingNotification = "upcomingBookingNotification"
	LongWaitingCustomer         = "longWaitingCustomer"
)

// Event represents a lightweight domain event.
type Event struct {
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// EventHandler reacts to an event.
type EventHandler func(event Event) error

// EventBus provides in-process pub/sub for events.
type EventBus struct {
	subscribers map[string][]EventHandler
	catchAll    []EventHandler
	mu          sync.RWMutex
}

// NewEventBus constructs an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler)}
}

// Subscribe registers a handler for a given event type.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// SubscribeAll registers a handler for every event type. The websocket
// bridge uses this to mirror the whole stream to connected displays.
func (b *EventBus) SubscribeAll(handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.catchAll = append(b.catchAll, handler)
}

// Publish notifies subscribers of the event type.
func (b *EventBus) Publish(event Event) {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	handlers = append(handlers, b.catchAll...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		// Handlers run synchronously; caller decides concurrency model.
		_ = handler(event)
	}
}

// PublishJSON marshals the payload and publishes it under the event type.
// Emission is fire-and-forget: handler errors are swallowed, a marshal
// failure is returned so callers can log it.
func (b *EventBus) PublishJSON(eventType string, payload interface{}) error {
	var data []byte
	if payload != nil {
		var err error
		data, err = json.Marshal(payload)
		if err != nil {
			return err
		}
	}
	b.Publish(Event{Type: eventType, Payload: data})
	return nil
}
