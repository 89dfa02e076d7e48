package trade

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/retail/internal/application/txn"
	"github.com/erp/retail/internal/domain/partner"
	"github.com/erp/retail/internal/domain/shared"
	"github.com/erp/retail/internal/domain/trade"
	"github.com/google/uuid"
)

// Options holds the business settings the trade services depend on
type Options struct {
	// WalkInName names the walk-in customer created on first use
	WalkInName string
	// ReceivableTermDays is the due date offset of receivables created on invoice
	ReceivableTermDays int
	// CreatePayableOnReceipt books a payable for the order total once goods are fully received
	CreatePayableOnReceipt bool
	// PayableTermDays is the due date offset of payables created on receipt
	PayableTermDays int
}

// DefaultOptions returns the settings used when none are configured
func DefaultOptions() Options {
	return Options{
		WalkInName:         partner.DefaultWalkInName,
		ReceivableTermDays: 30,
		PayableTermDays:    30,
	}
}

// BuildLine resolves the referenced product or service and builds a priced line.
// The catalog price applies when the input carries none.
func BuildLine(ctx context.Context, repos txn.Repositories, tenantID uuid.UUID, in LineInput) (trade.LineItem, error) {
	hasProduct := in.ProductID != nil && *in.ProductID != uuid.Nil
	hasService := in.ServiceID != nil && *in.ServiceID != uuid.Nil
	if hasProduct == hasService {
		return trade.LineItem{}, shared.ErrDuplicateLineItemType
	}

	values := trade.LineValues{Quantity: in.Quantity, Discount: in.Discount, Surcharge: in.Surcharge}
	if hasProduct {
		product, err := repos.Products().FindByIDForTenant(ctx, tenantID, *in.ProductID)
		if err != nil {
			return trade.LineItem{}, err
		}
		if !product.IsActive() {
			return trade.LineItem{}, shared.NewValidationError("product is inactive").
				WithDetail("product_id", product.ID.String())
		}
		values.UnitPrice = product.SalePrice
		if in.UnitPrice != nil {
			values.UnitPrice = *in.UnitPrice
		}
		return trade.NewProductLine(product, values)
	}

	item, err := repos.ServiceItems().FindByIDForTenant(ctx, tenantID, *in.ServiceID)
	if err != nil {
		return trade.LineItem{}, err
	}
	values.UnitPrice = item.Price
	if in.UnitPrice != nil {
		values.UnitPrice = *in.UnitPrice
	}
	return trade.NewServiceLine(item, values)
}

// ResolveCustomer loads the given customer or, when none is given, the tenant's
// walk-in customer, creating it on first use.
func ResolveCustomer(ctx context.Context, repos txn.Repositories, tenantID uuid.UUID, customerID *uuid.UUID, walkInName string) (*partner.Customer, error) {
	if customerID != nil && *customerID != uuid.Nil {
		return repos.Customers().FindByIDForTenant(ctx, tenantID, *customerID)
	}
	customer, err := repos.Customers().FindWalkIn(ctx, tenantID)
	if err == nil {
		return customer, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("load walk-in customer: %w", err)
	}
	customer = partner.NewWalkInCustomer(tenantID, walkInName)
	if err := repos.Customers().Save(ctx, customer); err != nil {
		return nil, fmt.Errorf("create walk-in customer: %w", err)
	}
	return customer, nil
}

// dueIn returns today plus the given number of days, at midnight UTC
func dueIn(days int) time.Time {
	return shared.TruncateDay(time.Now()).AddDate(0, 0, days)
}
