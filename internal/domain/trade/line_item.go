package trade

import (
	"strings"

	"github.com/erp/retail/internal/domain/catalog"
	"github.com/erp/retail/internal/domain/shared"
	"github.com/erp/retail/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineKind tags what a line item references
type LineKind string

const (
	LineKindProduct LineKind = "product"
	LineKindService LineKind = "service"
)

// LineItem is a priced line referencing exactly one product or one service.
// It is embedded by the document line tables.
type LineItem struct {
	Kind        LineKind        `gorm:"type:varchar(10);not null"`
	ProductID   *uuid.UUID      `gorm:"type:uuid;index"`
	ServiceID   *uuid.UUID      `gorm:"type:uuid"`
	Code        string          `gorm:"type:varchar(50)"`
	Description string          `gorm:"type:varchar(255);not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,3);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	UnitCost    decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Discount    decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Surcharge   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Total       decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

// LineValues are the editable numbers of a line
type LineValues struct {
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	Discount  decimal.Decimal
	Surcharge decimal.Decimal
}

// NewLineItem builds a line from raw references. Exactly one of productID and serviceID must be set.
func NewLineItem(productID, serviceID *uuid.UUID, description string, values LineValues) (LineItem, error) {
	hasProduct := productID != nil && *productID != uuid.Nil
	hasService := serviceID != nil && *serviceID != uuid.Nil
	if hasProduct == hasService {
		return LineItem{}, shared.ErrDuplicateLineItemType
	}

	line := LineItem{Description: strings.TrimSpace(description)}
	if hasProduct {
		line.Kind = LineKindProduct
		line.ProductID = productID
	} else {
		line.Kind = LineKindService
		line.ServiceID = serviceID
	}
	if err := line.SetValues(values); err != nil {
		return LineItem{}, err
	}
	return line, nil
}

// NewProductLine builds a product line, snapshotting the product cost for margin reporting
func NewProductLine(product *catalog.Product, values LineValues) (LineItem, error) {
	id := product.ID
	line, err := NewLineItem(&id, nil, product.Name, values)
	if err != nil {
		return LineItem{}, err
	}
	line.Code = product.Code
	line.UnitCost = product.CostPrice
	return line, nil
}

// NewServiceLine builds a service line
func NewServiceLine(item *catalog.ServiceItem, values LineValues) (LineItem, error) {
	id := item.ID
	line, err := NewLineItem(nil, &id, item.Name, values)
	if err != nil {
		return LineItem{}, err
	}
	line.Code = item.Code
	return line, nil
}

// SetValues validates and applies quantity, price, discount and surcharge, then recomputes the total
func (l *LineItem) SetValues(v LineValues) error {
	if err := valueobject.ValidateQuantity("quantity", v.Quantity, true); err != nil {
		return shared.NewValidationError(err.Error())
	}
	for _, a := range []struct {
		field  string
		amount decimal.Decimal
	}{{"unit price", v.UnitPrice}, {"discount", v.Discount}, {"surcharge", v.Surcharge}} {
		if err := valueobject.ValidateAmount(a.field, a.amount); err != nil {
			return shared.NewValidationError(err.Error())
		}
	}
	gross := v.Quantity.Mul(v.UnitPrice)
	if v.Discount.GreaterThan(gross.Add(v.Surcharge)) {
		return shared.NewValidationError("line discount cannot exceed the line amount")
	}

	l.Quantity = v.Quantity
	l.UnitPrice = v.UnitPrice
	l.Discount = v.Discount
	l.Surcharge = v.Surcharge
	l.Recompute()
	return nil
}

// Recompute derives the line total: quantity * unit price - discount + surcharge
func (l *LineItem) Recompute() {
	l.Total = valueobject.RoundMoney(l.Quantity.Mul(l.UnitPrice).Sub(l.Discount).Add(l.Surcharge))
}

// ReferenceID returns the referenced product or service ID
func (l *LineItem) ReferenceID() uuid.UUID {
	if l.Kind == LineKindProduct && l.ProductID != nil {
		return *l.ProductID
	}
	if l.ServiceID != nil {
		return *l.ServiceID
	}
	return uuid.Nil
}

// IsProduct returns true if the line moves stock
func (l *LineItem) IsProduct() bool {
	return l.Kind == LineKindProduct
}

// CostTotal returns unit cost * quantity
func (l *LineItem) CostTotal() decimal.Decimal {
	return valueobject.RoundMoney(l.UnitCost.Mul(l.Quantity))
}
