package finance

import (
	"time"

	"github.com/erp/retail/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate and event type constants
const (
	AggregateTypeReceivable    = "Receivable"
	EventTypeReceivableOverdue = "receivable.overdue"
)

// ReceivableOverdueEvent is raised when a pending receivable passes its due date
type ReceivableOverdueEvent struct {
	shared.BaseDomainEvent
	ReceivableID     uuid.UUID       `json:"receivable_id"`
	Number           string          `json:"number"`
	CounterpartyID   *uuid.UUID      `json:"counterparty_id,omitempty"`
	CounterpartyName string          `json:"counterparty_name"`
	Outstanding      decimal.Decimal `json:"outstanding"`
	DueDate          time.Time       `json:"due_date"`
	DaysOverdue      int             `json:"days_overdue"`
}

// NewReceivableOverdueEvent creates a new ReceivableOverdueEvent
func NewReceivableOverdueEvent(r *Receivable, actor shared.Actor, today time.Time) *ReceivableOverdueEvent {
	days := int(shared.TruncateDay(today).Sub(r.DueDate).Hours() / 24)
	return &ReceivableOverdueEvent{
		BaseDomainEvent:  shared.NewActorDomainEvent(EventTypeReceivableOverdue, AggregateTypeReceivable, r.ID, actor),
		ReceivableID:     r.ID,
		Number:           r.Number,
		CounterpartyID:   r.CounterpartyID,
		CounterpartyName: r.CounterpartyName,
		Outstanding:      r.Outstanding(),
		DueDate:          r.DueDate,
		DaysOverdue:      days,
	}
}

// EventType returns the event type name
func (e *ReceivableOverdueEvent) EventType() string {
	return EventTypeReceivableOverdue
}
