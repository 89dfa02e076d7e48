package payment

import (
	"github.com/erp/retail/internal/domain/shared"
	"github.com/erp/retail/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Fee is the processor fee charged on a gross amount
type Fee struct {
	Percent decimal.Decimal `json:"percent"`
	Amount  decimal.Decimal `json:"amount"`
	Net     decimal.Decimal `json:"net"`
}

// PercentFor selects the percentage that applies to an installment count
func (s FeeSchedule) PercentFor(installments int) decimal.Decimal {
	var tier decimal.Decimal
	switch {
	case installments <= 1:
		return s.BasePercent
	case installments == 2:
		tier = s.Tier2Percent
	case installments == 3:
		tier = s.Tier3Percent
	case installments <= 6:
		tier = s.Tier4To6Percent
	default:
		tier = s.Tier7To12Percent
	}
	if tier.IsZero() {
		return s.BasePercent
	}
	return tier
}

// CheckInstallments validates an installment count against the schedule
func (s FeeSchedule) CheckInstallments(installments int) error {
	switch {
	case installments < 1:
		return invalidInstallments(installments, "installments must be at least 1")
	case installments > 1 && !s.AllowsInstallments:
		return invalidInstallments(installments, "payment method does not allow installments")
	case installments > s.MaxInstallments:
		return invalidInstallments(installments, "installments exceed the maximum for this payment method").
			WithDetail("max_installments", s.MaxInstallments)
	}
	return nil
}

// ComputeFee computes the fee and net amount for a gross amount paid with the method.
// The percentage part is rounded to cents before the fixed fee is added.
func ComputeFee(gross decimal.Decimal, method *Method, installments int) (Fee, error) {
	if err := valueobject.ValidateAmount("gross amount", gross); err != nil {
		return Fee{}, shared.NewValidationError(err.Error())
	}
	if err := method.CheckInstallments(installments); err != nil {
		return Fee{}, err
	}

	percent := method.PercentFor(installments)
	amount := valueobject.PercentOf(gross, percent).Add(method.FixedFee)

	return Fee{
		Percent: percent,
		Amount:  amount,
		Net:     gross.Sub(amount),
	}, nil
}

func invalidInstallments(installments int, message string) *shared.DomainError {
	return shared.NewDomainError(shared.CodeInvalidInstallments, message).
		WithDetail("installments", installments)
}
