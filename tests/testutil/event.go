package testutil

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/erp/retail/internal/domain/shared"
)

// EventRecorder captures domain events. It serves both as a bus subscriber
// and as the publisher handed to services and the stock ledger.
type EventRecorder struct {
	mu         sync.Mutex
	eventTypes []string
	events     []shared.DomainEvent
	err        error
	panicMsg   string
}

// NewEventRecorder subscribes to the given types, or to every event when none are given
func NewEventRecorder(eventTypes ...string) *EventRecorder {
	return &EventRecorder{eventTypes: eventTypes}
}

// EventTypes implements shared.EventHandler
func (r *EventRecorder) EventTypes() []string {
	return r.eventTypes
}

// Handle records the event, then fails or panics when told to
func (r *EventRecorder) Handle(_ context.Context, event shared.DomainEvent) error {
	r.mu.Lock()
	r.events = append(r.events, event)
	err, panicMsg := r.err, r.panicMsg
	r.mu.Unlock()

	if panicMsg != "" {
		panic(panicMsg)
	}
	return err
}

// Publish implements shared.EventPublisher
func (r *EventRecorder) Publish(_ context.Context, events ...shared.DomainEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, events...)
	return nil
}

// FailWith makes Handle return err after recording
func (r *EventRecorder) FailWith(err error) *EventRecorder {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
	return r
}

// PanicWith makes Handle panic after recording
func (r *EventRecorder) PanicWith(msg string) *EventRecorder {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.panicMsg = msg
	return r
}

// Events returns a copy of everything recorded so far
func (r *EventRecorder) Events() []shared.DomainEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]shared.DomainEvent(nil), r.events...)
}

// Types lists the recorded event types in arrival order
func (r *EventRecorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]string, len(r.events))
	for i, e := range r.events {
		types[i] = e.EventType()
	}
	return types
}

// Count returns how many events of a type were recorded
func (r *EventRecorder) Count(eventType string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.EventType() == eventType {
			n++
		}
	}
	return n
}

// NewEvent builds a bare event of the given type on a fresh aggregate
func NewEvent(eventType string, tenantID uuid.UUID) shared.DomainEvent {
	e := shared.NewBaseDomainEvent(eventType, "Test", uuid.New(), tenantID)
	return &e
}
