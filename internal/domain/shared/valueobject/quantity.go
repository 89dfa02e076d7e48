package valueobject

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// QuantityPlaces is the number of decimal places kept for stock quantities
const QuantityPlaces int32 = 3

// RoundQuantity rounds a quantity to the stock precision
func RoundQuantity(d decimal.Decimal) decimal.Decimal {
	return d.Round(QuantityPlaces)
}

// ValidateQuantity checks a quantity is non-negative and fits the stock precision.
// When positive is true the quantity must also be greater than zero.
func ValidateQuantity(field string, d decimal.Decimal, positive bool) error {
	if d.IsNegative() {
		return fmt.Errorf("%s cannot be negative", field)
	}
	if positive && !d.IsPositive() {
		return fmt.Errorf("%s must be greater than zero", field)
	}
	if !d.Equal(RoundQuantity(d)) {
		return fmt.Errorf("%s supports at most %d decimal places", field, QuantityPlaces)
	}
	return nil
}

// ValidateAmount checks a monetary amount is non-negative and has at most 2 decimal places
func ValidateAmount(field string, d decimal.Decimal) error {
	if d.IsNegative() {
		return fmt.Errorf("%s cannot be negative", field)
	}
	if !d.Equal(RoundMoney(d)) {
		return fmt.Errorf("%s supports at most %d decimal places", field, MoneyPlaces)
	}
	return nil
}
