package finance

import (
	"strings"
	"time"

	"github.com/erp/retail/internal/domain/payment"
	"github.com/erp/retail/internal/domain/shared"
	"github.com/erp/retail/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status represents the status of a receivable or payable
type Status string

const (
	StatusPending   Status = "pending"
	StatusSettled   Status = "settled"
	StatusCancelled Status = "cancelled"
	StatusOverdue   Status = "overdue"
)

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsOpen returns true while money is still owed
func (s Status) IsOpen() bool {
	return s == StatusPending || s == StatusOverdue
}

// SourceType identifies the document that originated an entry
type SourceType string

const (
	SourceManual        SourceType = "manual"
	SourceSale          SourceType = "sale"
	SourceServiceOrder  SourceType = "service_order"
	SourcePurchaseOrder SourceType = "purchase_order"
)

// Entry holds the amounts and lifecycle shared by receivables and payables.
// total = original + interest + penalty - discount, outstanding = total - paid.
type Entry struct {
	Number             string          `gorm:"type:varchar(30);not null"`
	CounterpartyID     *uuid.UUID      `gorm:"type:uuid;index"`
	CounterpartyName   string          `gorm:"type:varchar(200)"`
	Description        string          `gorm:"type:varchar(255);not null"`
	Category           string          `gorm:"type:varchar(100)"`
	DRECode            *int            `gorm:"column:dre_code;index"`
	OriginalAmount     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	PaidAmount         decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Interest           decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Penalty            decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Discount           decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	DueDate            time.Time       `gorm:"type:date;not null;index"`
	PaidDate           *time.Time      `gorm:"type:date;index"`
	Status             Status          `gorm:"type:varchar(20);not null;index"`
	SourceType         SourceType      `gorm:"type:varchar(20);not null;default:'manual'"`
	SourceID           *uuid.UUID      `gorm:"type:uuid;index"`
	SourceNumber       string          `gorm:"type:varchar(30)"`
	PaymentMethodID    *uuid.UUID      `gorm:"type:uuid"`
	Installments       int             `gorm:"not null;default:1"`
	FeeAmount          decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	NetAmount          decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	ExpectedSettlement *time.Time      `gorm:"type:date"`
	CancelReason       string          `gorm:"type:varchar(255)"`
}

// EntryParams describes a new receivable or payable
type EntryParams struct {
	Number           string
	CounterpartyID   *uuid.UUID
	CounterpartyName string
	Description      string
	Category         string
	DRECode          *int
	Amount           decimal.Decimal
	DueDate          time.Time
	SourceType       SourceType
	SourceID         *uuid.UUID
	SourceNumber     string
	// AllowZero admits a 0.00 amount, as raised by a fully discounted sale
	AllowZero bool
}

func newEntry(p EntryParams) (Entry, error) {
	if p.Number == "" {
		return Entry{}, shared.NewValidationError("number cannot be empty")
	}
	if strings.TrimSpace(p.Description) == "" {
		return Entry{}, shared.NewValidationError("description cannot be empty")
	}
	if err := valueobject.ValidateAmount("amount", p.Amount); err != nil {
		return Entry{}, shared.NewValidationError(err.Error())
	}
	if p.Amount.IsNegative() || (p.Amount.IsZero() && !p.AllowZero) {
		return Entry{}, shared.NewValidationError("amount must be positive")
	}
	if p.DueDate.IsZero() {
		return Entry{}, shared.NewValidationError("due date is required")
	}
	if p.DRECode != nil && !IsKnownDRECode(*p.DRECode) {
		return Entry{}, shared.NewValidationError("unknown DRE category").WithDetail("dre_code", *p.DRECode)
	}
	if p.SourceType == "" {
		p.SourceType = SourceManual
	}
	return Entry{
		Number:           p.Number,
		CounterpartyID:   p.CounterpartyID,
		CounterpartyName: p.CounterpartyName,
		Description:      strings.TrimSpace(p.Description),
		Category:         p.Category,
		DRECode:          p.DRECode,
		OriginalAmount:   valueobject.RoundMoney(p.Amount),
		PaidAmount:       decimal.Zero,
		Interest:         decimal.Zero,
		Penalty:          decimal.Zero,
		Discount:         decimal.Zero,
		DueDate:          shared.TruncateDay(p.DueDate),
		Status:           StatusPending,
		SourceType:       p.SourceType,
		SourceID:         p.SourceID,
		SourceNumber:     p.SourceNumber,
		Installments:     1,
		FeeAmount:        decimal.Zero,
		NetAmount:        decimal.Zero,
	}, nil
}

// Total returns original + interest + penalty - discount
func (e *Entry) Total() decimal.Decimal {
	return e.OriginalAmount.Add(e.Interest).Add(e.Penalty).Sub(e.Discount)
}

// Outstanding returns total - paid
func (e *Entry) Outstanding() decimal.Decimal {
	return e.Total().Sub(e.PaidAmount)
}

// EvaluateOverdue flips a pending entry whose due date has passed to overdue.
// It returns true when the status changed.
func (e *Entry) EvaluateOverdue(today time.Time) bool {
	if e.Status == StatusPending && e.DueDate.Before(shared.TruncateDay(today)) {
		e.Status = StatusOverdue
		return true
	}
	return false
}

// IsOverdue derives overdue from the due date without changing state
func (e *Entry) IsOverdue(today time.Time) bool {
	return e.Status.IsOpen() && e.DueDate.Before(shared.TruncateDay(today))
}

// SettleCommand describes a payment applied to an entry
type SettleCommand struct {
	Amount       decimal.Decimal
	PaidDate     time.Time
	Interest     decimal.Decimal
	Penalty      decimal.Decimal
	Discount     decimal.Decimal
	Method       *payment.Method
	Installments int
}

// Settlement is the outcome of applying a payment
type Settlement struct {
	Amount   decimal.Decimal
	Fee      payment.Fee
	PaidDate time.Time
	Settled  bool
}

// settle applies a payment. When the amount is zero the whole outstanding balance is paid.
func (e *Entry) settle(cmd SettleCommand) (Settlement, error) {
	if !e.Status.IsOpen() {
		return Settlement{}, shared.NewTransitionError("entry", e.Status, StatusSettled).
			WithDetail("number", e.Number)
	}
	amounts := []struct {
		field string
		value decimal.Decimal
	}{
		{"amount", cmd.Amount}, {"interest", cmd.Interest}, {"penalty", cmd.Penalty}, {"discount", cmd.Discount},
	}
	for _, a := range amounts {
		if err := valueobject.ValidateAmount(a.field, a.value); err != nil {
			return Settlement{}, shared.NewValidationError(err.Error())
		}
	}
	if cmd.PaidDate.IsZero() {
		cmd.PaidDate = time.Now()
	}
	if cmd.Installments == 0 {
		cmd.Installments = 1
	}

	interest, penalty, discount := e.Interest, e.Penalty, e.Discount
	e.Interest = e.Interest.Add(cmd.Interest)
	e.Penalty = e.Penalty.Add(cmd.Penalty)
	e.Discount = e.Discount.Add(cmd.Discount)
	restore := func() { e.Interest, e.Penalty, e.Discount = interest, penalty, discount }

	outstanding := e.Outstanding()
	if outstanding.IsNegative() {
		restore()
		return Settlement{}, shared.NewValidationError("discount cannot exceed the amount due").WithDetail("number", e.Number)
	}
	amount := cmd.Amount
	if amount.IsZero() {
		amount = outstanding
	}
	if amount.GreaterThan(outstanding) {
		restore()
		return Settlement{}, shared.NewValidationError("payment exceeds the outstanding amount").
			WithDetail("number", e.Number).
			WithDetail("outstanding", outstanding.String()).
			WithDetail("amount", amount.String())
	}

	fee := payment.Fee{Amount: decimal.Zero, Net: amount, Percent: decimal.Zero}
	if cmd.Method != nil {
		var err error
		fee, err = payment.ComputeFee(amount, cmd.Method, cmd.Installments)
		if err != nil {
			restore()
			return Settlement{}, err
		}
		methodID := cmd.Method.ID
		e.PaymentMethodID = &methodID
		e.Installments = cmd.Installments
		expected := cmd.Method.SettlementDate(e.DueDate)
		e.ExpectedSettlement = &expected
	}

	paidDate := shared.TruncateDay(cmd.PaidDate)
	e.PaidAmount = e.PaidAmount.Add(amount)
	e.FeeAmount = e.FeeAmount.Add(fee.Amount)
	e.NetAmount = e.NetAmount.Add(fee.Net)
	e.PaidDate = &paidDate
	settled := !e.Outstanding().IsPositive()
	if settled {
		e.Status = StatusSettled
	}
	return Settlement{Amount: amount, Fee: fee, PaidDate: paidDate, Settled: settled}, nil
}

func (e *Entry) cancel(reason string) error {
	if !e.Status.IsOpen() {
		return shared.NewTransitionError("entry", e.Status, StatusCancelled).WithDetail("number", e.Number)
	}
	if e.PaidAmount.IsPositive() {
		return shared.NewValidationError("cannot cancel an entry with payments").WithDetail("number", e.Number)
	}
	if reason == "" {
		return shared.NewValidationError("cancel reason is required")
	}
	e.Status = StatusCancelled
	e.CancelReason = reason
	return nil
}
