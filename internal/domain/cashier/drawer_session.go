package cashier

import (
	"strings"
	"time"

	"github.com/erp/retail/internal/domain/shared"
	"github.com/erp/retail/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SessionStatus represents the status of a drawer session
type SessionStatus string

const (
	SessionStatusOpen   SessionStatus = "open"
	SessionStatusClosed SessionStatus = "closed"
)

// String returns the string representation of SessionStatus
func (s SessionStatus) String() string {
	return string(s)
}

// MovementKind classifies a drawer movement
type MovementKind string

const (
	MovementSale       MovementKind = "sale"
	MovementWithdrawal MovementKind = "withdrawal"
	MovementDeposit    MovementKind = "deposit"
)

// IsValid checks if the movement kind is known
func (k MovementKind) IsValid() bool {
	switch k {
	case MovementSale, MovementWithdrawal, MovementDeposit:
		return true
	}
	return false
}

// Movement is an immutable cash event inside a drawer session.
// Corrections are recorded as new movements, never edits.
type Movement struct {
	shared.BaseEntity
	SessionID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Kind        MovementKind    `gorm:"type:varchar(20);not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Description string          `gorm:"type:varchar(255)"`
	ReferenceID *uuid.UUID      `gorm:"type:uuid"`
	ActorID     uuid.UUID       `gorm:"type:uuid;not null"`
}

// TableName returns the table name for GORM
func (Movement) TableName() string {
	return "drawer_movements"
}

// DrawerSession is one opening-to-closing lifecycle of a cash drawer by one operator
type DrawerSession struct {
	shared.TenantAggregateRoot
	RegisterNumber   int             `gorm:"not null;index"`
	OperatorID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	OperatorName     string          `gorm:"type:varchar(100)"`
	OpenedAt         time.Time       `gorm:"not null"`
	OpeningFloat     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	OpeningNote      string          `gorm:"type:text"`
	SalesTotal       decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	WithdrawalsTotal decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	DepositsTotal    decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	SalesCount       int             `gorm:"not null;default:0"`
	Status           SessionStatus   `gorm:"type:varchar(20);not null;index"`
	ClosedBy         *uuid.UUID      `gorm:"type:uuid"`
	ClosedAt         *time.Time
	CountedAmount    *decimal.Decimal `gorm:"type:decimal(18,2)"`
	ExpectedBalance  *decimal.Decimal `gorm:"type:decimal(18,2)"`
	Variance         *decimal.Decimal `gorm:"type:decimal(18,2)"`
	ClosingNote      string           `gorm:"type:text"`
	Movements        []Movement       `gorm:"foreignKey:SessionID;references:ID"`
}

// TableName returns the table name for GORM
func (DrawerSession) TableName() string {
	return "drawer_sessions"
}

// OpenSession starts a drawer session for the actor
func OpenSession(actor shared.Actor, register int, float decimal.Decimal, note string) (*DrawerSession, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	if register <= 0 {
		return nil, shared.NewValidationError("register number must be positive")
	}
	if err := valueobject.ValidateAmount("opening float", float); err != nil {
		return nil, shared.NewValidationError(err.Error())
	}
	return &DrawerSession{
		TenantAggregateRoot: shared.NewTenantAggregateRootForActor(actor),
		RegisterNumber:      register,
		OperatorID:          actor.UserID,
		OperatorName:        actor.Name,
		OpenedAt:            time.Now(),
		OpeningFloat:        valueobject.RoundMoney(float),
		OpeningNote:         strings.TrimSpace(note),
		SalesTotal:          decimal.Zero,
		WithdrawalsTotal:    decimal.Zero,
		DepositsTotal:       decimal.Zero,
		Status:              SessionStatusOpen,
		Movements:           make([]Movement, 0),
	}, nil
}

// IsOpen returns true while the session accepts movements
func (s *DrawerSession) IsOpen() bool {
	return s.Status == SessionStatusOpen
}

// EnsureOperator rejects actors other than the session's operator
func (s *DrawerSession) EnsureOperator(actor shared.Actor) error {
	if s.TenantID != actor.TenantID || s.OperatorID != actor.UserID {
		return shared.ErrForbidden.
			WithDetail("session_id", s.ID.String()).
			WithDetail("operator_id", s.OperatorID.String())
	}
	return nil
}

// EnsureOpen rejects closed sessions with DRAWER_NOT_OPEN
func (s *DrawerSession) EnsureOpen() error {
	if !s.IsOpen() {
		return shared.ErrDrawerNotOpen.WithDetail("session_id", s.ID.String())
	}
	return nil
}

// ExpectedCash returns float + sales + deposits - withdrawals
func (s *DrawerSession) ExpectedCash() decimal.Decimal {
	return s.OpeningFloat.Add(s.SalesTotal).Add(s.DepositsTotal).Sub(s.WithdrawalsTotal)
}

// RecordMovement appends a movement and updates the running totals
func (s *DrawerSession) RecordMovement(actor shared.Actor, kind MovementKind, amount decimal.Decimal, description string, reference *uuid.UUID) (*Movement, error) {
	if err := s.EnsureOpen(); err != nil {
		return nil, err
	}
	if !kind.IsValid() {
		return nil, shared.NewValidationError("invalid drawer movement kind").WithDetail("kind", string(kind))
	}
	if err := valueobject.ValidateAmount("amount", amount); err != nil {
		return nil, shared.NewValidationError(err.Error())
	}
	if !amount.IsPositive() {
		return nil, shared.NewValidationError("amount must be positive")
	}
	amount = valueobject.RoundMoney(amount)

	switch kind {
	case MovementSale:
		s.SalesTotal = s.SalesTotal.Add(amount)
		s.SalesCount++
	case MovementWithdrawal:
		s.WithdrawalsTotal = s.WithdrawalsTotal.Add(amount)
	case MovementDeposit:
		s.DepositsTotal = s.DepositsTotal.Add(amount)
	}

	m := Movement{
		BaseEntity:  shared.NewBaseEntity(),
		SessionID:   s.ID,
		Kind:        kind,
		Amount:      amount,
		Description: strings.TrimSpace(description),
		ReferenceID: reference,
		ActorID:     actor.UserID,
	}
	s.Movements = append(s.Movements, m)
	s.Touch()
	return &s.Movements[len(s.Movements)-1], nil
}

// Close records the counted cash, the expected balance and the variance
func (s *DrawerSession) Close(actor shared.Actor, counted decimal.Decimal, note string) error {
	if !s.IsOpen() {
		return shared.ErrAlreadyClosed.WithDetail("session_id", s.ID.String())
	}
	if err := valueobject.ValidateAmount("counted amount", counted); err != nil {
		return shared.NewValidationError(err.Error())
	}
	counted = valueobject.RoundMoney(counted)
	expected := s.ExpectedCash()
	variance := counted.Sub(expected)
	now := time.Now()
	closer := actor.UserID

	s.CountedAmount = &counted
	s.ExpectedBalance = &expected
	s.Variance = &variance
	s.ClosingNote = strings.TrimSpace(note)
	s.ClosedAt = &now
	s.ClosedBy = &closer
	s.Status = SessionStatusClosed
	s.Touch()
	return nil
}

// VarianceOrZero returns the recorded variance, or zero for open sessions
func (s *DrawerSession) VarianceOrZero() decimal.Decimal {
	if s.Variance == nil {
		return decimal.Zero
	}
	return *s.Variance
}
