package event

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/erp/retail/internal/domain/finance"
	"github.com/erp/retail/internal/domain/inventory"
	"github.com/erp/retail/internal/domain/shared"
	"github.com/erp/retail/internal/domain/trade"
)

// EventSerializer encodes domain events as JSON and decodes them back into
// their concrete type by event type name
type EventSerializer struct {
	mu    sync.RWMutex
	types map[string]reflect.Type
}

// NewEventSerializer creates a serializer with every domain event registered
func NewEventSerializer() *EventSerializer {
	s := &EventSerializer{types: make(map[string]reflect.Type)}
	s.Register(trade.EventTypeSaleCompleted, &trade.SaleCompletedEvent{})
	s.Register(trade.EventTypePurchaseOrderReceived, &trade.PurchaseOrderReceivedEvent{})
	s.Register(inventory.EventTypeStockLow, &inventory.StockLowEvent{})
	s.Register(inventory.EventTypeCountSessionClosed, &inventory.CountSessionFinishedEvent{})
	s.Register(finance.EventTypeReceivableOverdue, &finance.ReceivableOverdueEvent{})
	return s
}

// Register maps an event type name to the Go type used to decode it
func (s *EventSerializer) Register(eventType string, prototype shared.DomainEvent) {
	t := reflect.TypeOf(prototype)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	s.mu.Lock()
	s.types[eventType] = t
	s.mu.Unlock()
}

// Serialize encodes an event. Unregistered types are rejected so nothing is
// written that could not be read back.
func (s *EventSerializer) Serialize(event shared.DomainEvent) ([]byte, error) {
	if !s.IsRegistered(event.EventType()) {
		return nil, fmt.Errorf("unknown event type: %s", event.EventType())
	}
	return json.Marshal(event)
}

// Deserialize decodes data into the type registered for eventType
func (s *EventSerializer) Deserialize(eventType string, data []byte) (shared.DomainEvent, error) {
	s.mu.RLock()
	t, ok := s.types[eventType]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown event type: %s", eventType)
	}

	ptr := reflect.New(t).Interface()
	if err := json.Unmarshal(data, ptr); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", eventType, err)
	}
	event, ok := ptr.(shared.DomainEvent)
	if !ok {
		return nil, fmt.Errorf("%s does not implement DomainEvent", t)
	}
	return event, nil
}

// IsRegistered reports whether eventType can be decoded
func (s *EventSerializer) IsRegistered(eventType string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.types[eventType]
	return ok
}

// RegisteredTypes returns the registered type names in order
func (s *EventSerializer) RegisteredTypes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.types))
	for name := range s.types {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
