package servicedesk

import (
	"time"

	"github.com/erp/retail/internal/domain/shared"
	"github.com/google/uuid"
)

// Action names a history entry
type Action string

const (
	ActionOpened         Action = "opened"
	ActionStatusChanged  Action = "status_changed"
	ActionTechnician     Action = "technician_assigned"
	ActionPartApplied    Action = "part_applied"
	ActionBudgetApproved Action = "budget_approved"
	ActionBudgetRejected Action = "budget_rejected"
	ActionPaymentTaken   Action = "payment_received"
)

// HistoryEntry is an append-only audit line of a service order
type HistoryEntry struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID     uuid.UUID `gorm:"type:uuid;not null;index"`
	ActorID     uuid.UUID `gorm:"type:uuid;not null"`
	ActorName   string    `gorm:"type:varchar(100)"`
	Action      Action    `gorm:"type:varchar(30);not null"`
	Description string    `gorm:"type:text"`
	FromStatus  Status    `gorm:"type:varchar(20)"`
	ToStatus    Status    `gorm:"type:varchar(20)"`
	At          time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (HistoryEntry) TableName() string {
	return "service_order_history"
}

// NewHistoryEntry creates a history entry attributed to the actor
func NewHistoryEntry(orderID uuid.UUID, actor shared.Actor, action Action, description string, from, to Status) HistoryEntry {
	return HistoryEntry{
		ID:          uuid.New(),
		OrderID:     orderID,
		ActorID:     actor.UserID,
		ActorName:   actor.Name,
		Action:      action,
		Description: description,
		FromStatus:  from,
		ToStatus:    to,
		At:          time.Now(),
	}
}
