package payment

import (
	"strings"
	"time"

	"github.com/erp/retail/internal/domain/shared"
	"github.com/erp/retail/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MethodType represents the kind of payment instrument
type MethodType string

const (
	MethodTypeCash       MethodType = "cash"
	MethodTypeCreditCard MethodType = "credit_card"
	MethodTypeDebitCard  MethodType = "debit_card"
	MethodTypePix        MethodType = "pix"
	MethodTypeBoleto     MethodType = "boleto"
	MethodTypeTransfer   MethodType = "transfer"
	MethodTypeCheque     MethodType = "cheque"
)

// IsValid checks if the method type is known
func (t MethodType) IsValid() bool {
	switch t {
	case MethodTypeCash, MethodTypeCreditCard, MethodTypeDebitCard, MethodTypePix,
		MethodTypeBoleto, MethodTypeTransfer, MethodTypeCheque:
		return true
	}
	return false
}

// FeeSchedule holds the processor fee configuration of a payment method.
// Tier percentages left at zero fall back to the base percentage.
type FeeSchedule struct {
	BasePercent        decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"base_percent"`
	FixedFee           decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"fixed_fee"`
	AllowsInstallments bool            `gorm:"not null;default:false" json:"allows_installments"`
	MaxInstallments    int             `gorm:"not null;default:1" json:"max_installments"`
	Tier2Percent       decimal.Decimal `gorm:"column:tier2_percent;type:decimal(5,2);not null;default:0" json:"tier2_percent"`
	Tier3Percent       decimal.Decimal `gorm:"column:tier3_percent;type:decimal(5,2);not null;default:0" json:"tier3_percent"`
	Tier4To6Percent    decimal.Decimal `gorm:"column:tier4_6_percent;type:decimal(5,2);not null;default:0" json:"tier4_6_percent"`
	Tier7To12Percent   decimal.Decimal `gorm:"column:tier7_12_percent;type:decimal(5,2);not null;default:0" json:"tier7_12_percent"`
	SettlementLagDays  int             `gorm:"not null;default:0" json:"settlement_lag_days"`
}

// Validate checks that all rates and limits are in range
func (s FeeSchedule) Validate() error {
	for _, tier := range []struct {
		name string
		pct  decimal.Decimal
	}{
		{"base percent", s.BasePercent},
		{"tier 2x", s.Tier2Percent},
		{"tier 3x", s.Tier3Percent},
		{"tier 4-6x", s.Tier4To6Percent},
		{"tier 7-12x", s.Tier7To12Percent},
	} {
		if tier.pct.IsNegative() || tier.pct.GreaterThan(decimal.NewFromInt(100)) {
			return shared.NewValidationError(tier.name + " fee must be between 0 and 100")
		}
	}
	if err := valueobject.ValidateAmount("fixed fee", s.FixedFee); err != nil {
		return shared.NewValidationError(err.Error())
	}
	if s.MaxInstallments < 1 || s.MaxInstallments > 12 {
		return shared.NewValidationError("max installments must be between 1 and 12")
	}
	if !s.AllowsInstallments && s.MaxInstallments > 1 {
		return shared.NewValidationError("max installments must be 1 when installments are not allowed")
	}
	if s.SettlementLagDays < 0 {
		return shared.NewValidationError("settlement lag days cannot be negative")
	}
	return nil
}

// Method is a payment method with its fee schedule. It is configuration and
// is never modified during a transaction.
type Method struct {
	shared.TenantAggregateRoot
	Name     string     `gorm:"type:varchar(100);not null;index:idx_payment_method_name"`
	Type     MethodType `gorm:"type:varchar(20);not null"`
	Operator string     `gorm:"type:varchar(100)"`
	Active   bool       `gorm:"not null;default:true"`
	FeeSchedule
}

// TableName returns the table name for GORM
func (Method) TableName() string {
	return "payment_methods"
}

// NewMethod creates an active payment method
func NewMethod(tenantID uuid.UUID, name string, methodType MethodType, schedule FeeSchedule) (*Method, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewValidationError("payment method name cannot be empty")
	}
	if !methodType.IsValid() {
		return nil, shared.NewValidationError("invalid payment method type")
	}
	if schedule.MaxInstallments == 0 {
		schedule.MaxInstallments = 1
	}
	if err := schedule.Validate(); err != nil {
		return nil, err
	}
	return &Method{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		Type:                methodType,
		Active:              true,
		FeeSchedule:         schedule,
	}, nil
}

// NewCashMethod returns a fee-free cash method
func NewCashMethod(tenantID uuid.UUID) *Method {
	m, _ := NewMethod(tenantID, "Cash", MethodTypeCash, FeeSchedule{MaxInstallments: 1})
	return m
}

// UpdateSchedule replaces the fee schedule
func (m *Method) UpdateSchedule(schedule FeeSchedule) error {
	if err := schedule.Validate(); err != nil {
		return err
	}
	m.FeeSchedule = schedule
	m.IncrementVersion()
	return nil
}

// Deactivate stops the method from being offered
func (m *Method) Deactivate() {
	m.Active = false
	m.Touch()
}

// SettlementDate returns when funds paid on the due date are expected to arrive
func (m *Method) SettlementDate(due time.Time) time.Time {
	return due.AddDate(0, 0, m.SettlementLagDays)
}
