package finance

import (
	"time"

	"github.com/erp/retail/internal/domain/finance"
	"github.com/erp/retail/internal/domain/payment"
	"github.com/erp/retail/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateEntryRequest creates a manual receivable or payable
type CreateEntryRequest struct {
	CounterpartyID   *uuid.UUID      `json:"counterparty_id"`
	CounterpartyName string          `json:"counterparty_name" binding:"max=200"`
	Description      string          `json:"description" binding:"required,max=255"`
	Category         string          `json:"category" binding:"max=100"`
	DRECode          *int            `json:"dre_code"`
	Amount           decimal.Decimal `json:"amount" binding:"required"`
	DueDate          time.Time       `json:"due_date" binding:"required"`
}

// SettleRequest applies a payment to a receivable or payable.
// A zero amount pays the whole outstanding balance.
type SettleRequest struct {
	Amount          decimal.Decimal `json:"amount"`
	PaidDate        *time.Time      `json:"paid_date"`
	PaymentMethodID *uuid.UUID      `json:"payment_method_id"`
	Installments    int             `json:"installments" binding:"omitempty,min=1,max=12"`
	Interest        decimal.Decimal `json:"interest"`
	Penalty         decimal.Decimal `json:"penalty"`
	Discount        decimal.Decimal `json:"discount"`
}

// CancelEntryRequest carries the cancellation reason
type CancelEntryRequest struct {
	Reason string `json:"reason" binding:"required,max=255"`
}

// EntryListFilter holds query parameters of a receivable or payable listing
type EntryListFilter struct {
	Page           int        `form:"page" binding:"omitempty,min=1"`
	PageSize       int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	Status         string     `form:"status" binding:"omitempty,oneof=pending settled cancelled overdue"`
	CounterpartyID *uuid.UUID `form:"counterparty_id"`
	DueFrom        *time.Time `form:"due_from" time_format:"2006-01-02"`
	DueTo          *time.Time `form:"due_to" time_format:"2006-01-02"`
	Search         string     `form:"search"`
}

func (f EntryListFilter) toDomain() finance.EntryFilter {
	return finance.EntryFilter{
		Filter: shared.Filter{
			Page:     f.Page,
			PageSize: f.PageSize,
			OrderBy:  "due_date",
			OrderDir: "asc",
			Search:   f.Search,
		},
		Status:         finance.Status(f.Status),
		CounterpartyID: f.CounterpartyID,
		DueFrom:        f.DueFrom,
		DueTo:          f.DueTo,
	}
}

// EntryResponse represents a receivable or payable in API responses
type EntryResponse struct {
	ID                 uuid.UUID       `json:"id"`
	Number             string          `json:"number"`
	CounterpartyID     *uuid.UUID      `json:"counterparty_id,omitempty"`
	CounterpartyName   string          `json:"counterparty_name"`
	Description        string          `json:"description"`
	Category           string          `json:"category,omitempty"`
	DRECode            *int            `json:"dre_code,omitempty"`
	OriginalAmount     decimal.Decimal `json:"original_amount"`
	PaidAmount         decimal.Decimal `json:"paid_amount"`
	Interest           decimal.Decimal `json:"interest"`
	Penalty            decimal.Decimal `json:"penalty"`
	Discount           decimal.Decimal `json:"discount"`
	Total              decimal.Decimal `json:"total"`
	Outstanding        decimal.Decimal `json:"outstanding"`
	DueDate            time.Time       `json:"due_date"`
	PaidDate           *time.Time      `json:"paid_date,omitempty"`
	Status             string          `json:"status"`
	SourceType         string          `json:"source_type"`
	SourceID           *uuid.UUID      `json:"source_id,omitempty"`
	SourceNumber       string          `json:"source_number,omitempty"`
	PaymentMethodID    *uuid.UUID      `json:"payment_method_id,omitempty"`
	Installments       int             `json:"installments"`
	FeeAmount          decimal.Decimal `json:"fee_amount"`
	NetAmount          decimal.Decimal `json:"net_amount"`
	ExpectedSettlement *time.Time      `json:"expected_settlement,omitempty"`
	CancelReason       string          `json:"cancel_reason,omitempty"`
	Version            int             `json:"version"`
}

func toEntryResponse(id uuid.UUID, version int, e *finance.Entry) EntryResponse {
	return EntryResponse{
		ID:                 id,
		Number:             e.Number,
		CounterpartyID:     e.CounterpartyID,
		CounterpartyName:   e.CounterpartyName,
		Description:        e.Description,
		Category:           e.Category,
		DRECode:            e.DRECode,
		OriginalAmount:     e.OriginalAmount,
		PaidAmount:         e.PaidAmount,
		Interest:           e.Interest,
		Penalty:            e.Penalty,
		Discount:           e.Discount,
		Total:              e.Total(),
		Outstanding:        e.Outstanding(),
		DueDate:            e.DueDate,
		PaidDate:           e.PaidDate,
		Status:             string(e.Status),
		SourceType:         string(e.SourceType),
		SourceID:           e.SourceID,
		SourceNumber:       e.SourceNumber,
		PaymentMethodID:    e.PaymentMethodID,
		Installments:       e.Installments,
		FeeAmount:          e.FeeAmount,
		NetAmount:          e.NetAmount,
		ExpectedSettlement: e.ExpectedSettlement,
		CancelReason:       e.CancelReason,
		Version:            version,
	}
}

// ToReceivableResponse converts a domain receivable to a response
func ToReceivableResponse(r *finance.Receivable) EntryResponse {
	return toEntryResponse(r.ID, r.Version, &r.Entry)
}

// ToPayableResponse converts a domain payable to a response
func ToPayableResponse(p *finance.Payable) EntryResponse {
	return toEntryResponse(p.ID, p.Version, &p.Entry)
}

// SettlementResponse is the outcome of a payment
type SettlementResponse struct {
	Entry      EntryResponse   `json:"entry"`
	Amount     decimal.Decimal `json:"amount"`
	Fee        decimal.Decimal `json:"fee"`
	FeePercent decimal.Decimal `json:"fee_percent"`
	Net        decimal.Decimal `json:"net"`
	PaidDate   time.Time       `json:"paid_date"`
	Settled    bool            `json:"settled"`
}

// OverdueResult reports how many entries were flipped to overdue
type OverdueResult struct {
	Checked int `json:"checked"`
	Flipped int `json:"flipped"`
}

// FeeScheduleInput is the fee configuration of a payment method
type FeeScheduleInput struct {
	BasePercent        decimal.Decimal `json:"base_percent"`
	FixedFee           decimal.Decimal `json:"fixed_fee"`
	AllowsInstallments bool            `json:"allows_installments"`
	MaxInstallments    int             `json:"max_installments" binding:"omitempty,min=1,max=12"`
	Tier2Percent       decimal.Decimal `json:"tier2_percent"`
	Tier3Percent       decimal.Decimal `json:"tier3_percent"`
	Tier4To6Percent    decimal.Decimal `json:"tier4_6_percent"`
	Tier7To12Percent   decimal.Decimal `json:"tier7_12_percent"`
	SettlementLagDays  int             `json:"settlement_lag_days" binding:"omitempty,min=0,max=365"`
}

func (in FeeScheduleInput) toDomain() payment.FeeSchedule {
	return payment.FeeSchedule{
		BasePercent:        in.BasePercent,
		FixedFee:           in.FixedFee,
		AllowsInstallments: in.AllowsInstallments,
		MaxInstallments:    in.MaxInstallments,
		Tier2Percent:       in.Tier2Percent,
		Tier3Percent:       in.Tier3Percent,
		Tier4To6Percent:    in.Tier4To6Percent,
		Tier7To12Percent:   in.Tier7To12Percent,
		SettlementLagDays:  in.SettlementLagDays,
	}
}

// CreateMethodRequest creates a payment method
type CreateMethodRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Type     string `json:"type" binding:"required,oneof=cash credit_card debit_card pix boleto transfer cheque"`
	Operator string `json:"operator" binding:"max=100"`
	FeeScheduleInput
}

// MethodResponse represents a payment method in API responses
type MethodResponse struct {
	ID       uuid.UUID           `json:"id"`
	Name     string              `json:"name"`
	Type     string              `json:"type"`
	Operator string              `json:"operator,omitempty"`
	Active   bool                `json:"active"`
	Schedule payment.FeeSchedule `json:"schedule"`
}

// ToMethodResponse converts a domain payment method to a response
func ToMethodResponse(m *payment.Method) MethodResponse {
	return MethodResponse{
		ID:       m.ID,
		Name:     m.Name,
		Type:     string(m.Type),
		Operator: m.Operator,
		Active:   m.Active,
		Schedule: m.FeeSchedule,
	}
}

// FeePreviewRequest asks for the fee of an amount paid with a method
type FeePreviewRequest struct {
	Amount       decimal.Decimal `form:"amount" json:"amount" binding:"required"`
	Installments int             `form:"installments" json:"installments" binding:"omitempty,min=1,max=12"`
}

// FeePreviewResponse is the fee calculator output
type FeePreviewResponse struct {
	Gross              decimal.Decimal `json:"gross"`
	Installments       int             `json:"installments"`
	Percent            decimal.Decimal `json:"percent"`
	Fee                decimal.Decimal `json:"fee"`
	Net                decimal.Decimal `json:"net"`
	ExpectedSettlement time.Time       `json:"expected_settlement"`
}
