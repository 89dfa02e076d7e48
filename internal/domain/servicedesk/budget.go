package servicedesk

import (
	"fmt"
	"time"

	"github.com/erp/retail/internal/domain/shared"
	"github.com/erp/retail/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BudgetStatus represents the status of a service order budget
type BudgetStatus string

const (
	BudgetStatusPending  BudgetStatus = "pending"
	BudgetStatusApproved BudgetStatus = "approved"
	BudgetStatusRejected BudgetStatus = "rejected"
)

// String returns the string representation of BudgetStatus
func (s BudgetStatus) String() string {
	return string(s)
}

// DefaultBudgetValidityDays is how long a budget stays valid when none is given
const DefaultBudgetValidityDays = 15

// Budget is a quote for a service order. total = service + parts.
type Budget struct {
	shared.TenantAggregateRoot
	Number       string          `gorm:"type:varchar(30);not null;index:idx_budget_number"`
	OrderID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Description  string          `gorm:"type:text;not null"`
	ServiceValue decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	PartsValue   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Total        decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	LeadTimeDays int             `gorm:"not null;default:7"`
	ValidUntil   time.Time       `gorm:"type:date;not null"`
	Status       BudgetStatus    `gorm:"type:varchar(20);not null"`
	DecidedAt    *time.Time
	DecidedBy    *uuid.UUID `gorm:"type:uuid"`
	DecisionNote string     `gorm:"type:varchar(255)"`
}

// TableName returns the table name for GORM
func (Budget) TableName() string {
	return "service_order_budgets"
}

// NewBudget creates a pending budget for a service order
func NewBudget(actor shared.Actor, number string, order *ServiceOrder, description string, service, parts decimal.Decimal, validityDays int) (*Budget, error) {
	if number == "" {
		return nil, shared.NewValidationError("budget number cannot be empty")
	}
	if order.Status.IsTerminal() {
		return nil, shared.NewDomainErrorf(shared.CodeInvalidStatusTransition, "Cannot quote a service order in %s status", order.Status)
	}
	if err := valueobject.ValidateAmount("service value", service); err != nil {
		return nil, shared.NewValidationError(err.Error())
	}
	if err := valueobject.ValidateAmount("parts value", parts); err != nil {
		return nil, shared.NewValidationError(err.Error())
	}
	if validityDays <= 0 {
		validityDays = DefaultBudgetValidityDays
	}
	return &Budget{
		TenantAggregateRoot: shared.NewTenantAggregateRootForActor(actor),
		Number:              number,
		OrderID:             order.ID,
		Description:         description,
		ServiceValue:        service,
		PartsValue:          parts,
		Total:               valueobject.RoundMoney(service.Add(parts)),
		LeadTimeDays:        7,
		ValidUntil:          shared.TruncateDay(time.Now()).AddDate(0, 0, validityDays),
		Status:              BudgetStatusPending,
	}, nil
}

// Approve accepts the budget and writes its values back onto the order
func (b *Budget) Approve(actor shared.Actor, order *ServiceOrder) error {
	if b.Status != BudgetStatusPending {
		return shared.NewTransitionError("budget", b.Status, BudgetStatusApproved)
	}
	if order.ID != b.OrderID {
		return shared.NewValidationError("budget belongs to another service order")
	}
	if err := order.ApplyBudget(actor, b); err != nil {
		return err
	}
	b.decide(actor, BudgetStatusApproved, "")
	return nil
}

// Reject declines the budget and records it on the order history
func (b *Budget) Reject(actor shared.Actor, order *ServiceOrder, reason string) error {
	if b.Status != BudgetStatusPending {
		return shared.NewTransitionError("budget", b.Status, BudgetStatusRejected)
	}
	if order.ID != b.OrderID {
		return shared.NewValidationError("budget belongs to another service order")
	}
	b.decide(actor, BudgetStatusRejected, reason)
	order.record(actor, ActionBudgetRejected, fmt.Sprintf("Budget %s rejected: %s", b.Number, reason), order.Status, order.Status)
	return nil
}

// IsExpired reports whether the budget validity has passed
func (b *Budget) IsExpired(today time.Time) bool {
	return shared.TruncateDay(today).After(b.ValidUntil)
}

func (b *Budget) decide(actor shared.Actor, status BudgetStatus, note string) {
	now := time.Now()
	userID := actor.UserID
	b.Status = status
	b.DecidedAt = &now
	b.DecidedBy = &userID
	b.DecisionNote = note
	b.Touch()
}
