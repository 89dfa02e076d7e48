package finance

import (
	"time"

	"github.com/erp/retail/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Direction of a cash flow entry
type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

// CashFlowEntry records money actually moving in or out, one per settlement
type CashFlowEntry struct {
	shared.BaseEntity
	TenantID     uuid.UUID       `gorm:"type:uuid;not null;index:idx_cash_flow_tenant_date,priority:1"`
	Date         time.Time       `gorm:"type:date;not null;index:idx_cash_flow_tenant_date,priority:2"`
	Direction    Direction       `gorm:"type:varchar(3);not null"`
	Description  string          `gorm:"type:varchar(255);not null"`
	Amount       decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Fee          decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	ReceivableID *uuid.UUID      `gorm:"type:uuid"`
	PayableID    *uuid.UUID      `gorm:"type:uuid"`
	ActorID      uuid.UUID       `gorm:"type:uuid;not null"`
}

// TableName returns the table name for GORM
func (CashFlowEntry) TableName() string {
	return "cash_flow_entries"
}

// NewInflow records a receivable settlement
func NewInflow(actor shared.Actor, r *Receivable, s Settlement) *CashFlowEntry {
	id := r.ID
	return &CashFlowEntry{
		BaseEntity:   shared.NewBaseEntity(),
		TenantID:     r.TenantID,
		Date:         s.PaidDate,
		Direction:    DirectionIn,
		Description:  "Receipt " + r.Number + " - " + r.Description,
		Amount:       s.Amount,
		Fee:          s.Fee.Amount,
		ReceivableID: &id,
		ActorID:      actor.UserID,
	}
}

// NewOutflow records a payable payment
func NewOutflow(actor shared.Actor, p *Payable, s Settlement) *CashFlowEntry {
	id := p.ID
	return &CashFlowEntry{
		BaseEntity:  shared.NewBaseEntity(),
		TenantID:    p.TenantID,
		Date:        s.PaidDate,
		Direction:   DirectionOut,
		Description: "Payment " + p.Number + " - " + p.Description,
		Amount:      s.Amount,
		Fee:         s.Fee.Amount,
		PayableID:   &id,
		ActorID:     actor.UserID,
	}
}

// Signed returns the amount with a negative sign for outflows
func (c *CashFlowEntry) Signed() decimal.Decimal {
	if c.Direction == DirectionOut {
		return c.Amount.Neg()
	}
	return c.Amount
}
