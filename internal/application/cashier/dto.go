package cashier

import (
	"time"

	"github.com/erp/retail/internal/domain/cashier"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OpenDrawerRequest opens a drawer session for the calling operator
type OpenDrawerRequest struct {
	RegisterNumber int             `json:"register_number" binding:"required,min=1"`
	OpeningFloat   decimal.Decimal `json:"opening_float"`
	Note           string          `json:"note" binding:"max=500"`
}

// MovementRequest records a cash event in an open session
type MovementRequest struct {
	Kind        string          `json:"kind" binding:"required,oneof=sale withdrawal deposit"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Description string          `json:"description" binding:"max=255"`
}

// CloseDrawerRequest closes a session with the counted cash
type CloseDrawerRequest struct {
	CountedAmount decimal.Decimal `json:"counted_amount"`
	Note          string          `json:"note" binding:"max=500"`
}

// SessionListFilter holds query parameters of a session listing
type SessionListFilter struct {
	Page       int        `form:"page" binding:"omitempty,min=1"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	Status     string     `form:"status" binding:"omitempty,oneof=open closed"`
	OperatorID *uuid.UUID `form:"operator_id"`
}

// MovementResponse represents a drawer movement in API responses
type MovementResponse struct {
	ID          uuid.UUID       `json:"id"`
	Kind        string          `json:"kind"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
	ReferenceID *uuid.UUID      `json:"reference_id,omitempty"`
	ActorID     uuid.UUID       `json:"actor_id"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ToMovementResponse converts a domain movement to a response
func ToMovementResponse(m *cashier.Movement) MovementResponse {
	return MovementResponse{
		ID:          m.ID,
		Kind:        string(m.Kind),
		Amount:      m.Amount,
		Description: m.Description,
		ReferenceID: m.ReferenceID,
		ActorID:     m.ActorID,
		CreatedAt:   m.CreatedAt,
	}
}

// SessionResponse represents a drawer session in API responses
type SessionResponse struct {
	ID               uuid.UUID        `json:"id"`
	RegisterNumber   int              `json:"register_number"`
	OperatorID       uuid.UUID        `json:"operator_id"`
	OperatorName     string           `json:"operator_name"`
	Status           string           `json:"status"`
	OpenedAt         time.Time        `json:"opened_at"`
	OpeningFloat     decimal.Decimal  `json:"opening_float"`
	OpeningNote      string           `json:"opening_note,omitempty"`
	SalesTotal       decimal.Decimal  `json:"sales_total"`
	SalesCount       int              `json:"sales_count"`
	WithdrawalsTotal decimal.Decimal  `json:"withdrawals_total"`
	DepositsTotal    decimal.Decimal  `json:"deposits_total"`
	ExpectedCash     decimal.Decimal  `json:"expected_cash"`
	ClosedAt         *time.Time       `json:"closed_at,omitempty"`
	ClosedBy         *uuid.UUID       `json:"closed_by,omitempty"`
	CountedAmount    *decimal.Decimal `json:"counted_amount,omitempty"`
	ExpectedBalance  *decimal.Decimal `json:"expected_balance,omitempty"`
	Variance         *decimal.Decimal `json:"variance,omitempty"`
	ClosingNote      string           `json:"closing_note,omitempty"`
	Version          int              `json:"version"`
}

// ToSessionResponse converts a domain session to a response
func ToSessionResponse(s *cashier.DrawerSession) SessionResponse {
	return SessionResponse{
		ID:               s.ID,
		RegisterNumber:   s.RegisterNumber,
		OperatorID:       s.OperatorID,
		OperatorName:     s.OperatorName,
		Status:           string(s.Status),
		OpenedAt:         s.OpenedAt,
		OpeningFloat:     s.OpeningFloat,
		OpeningNote:      s.OpeningNote,
		SalesTotal:       s.SalesTotal,
		SalesCount:       s.SalesCount,
		WithdrawalsTotal: s.WithdrawalsTotal,
		DepositsTotal:    s.DepositsTotal,
		ExpectedCash:     s.ExpectedCash(),
		ClosedAt:         s.ClosedAt,
		ClosedBy:         s.ClosedBy,
		CountedAmount:    s.CountedAmount,
		ExpectedBalance:  s.ExpectedBalance,
		Variance:         s.Variance,
		ClosingNote:      s.ClosingNote,
		Version:          s.Version,
	}
}
