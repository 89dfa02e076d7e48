package trade

import (
	"context"

	"github.com/erp/retail/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleSummary aggregates settled sales of a period for the income statement
type SaleSummary struct {
	Count      int64
	ItemsTotal decimal.Decimal
	Discount   decimal.Decimal
	Surcharge  decimal.Decimal
	Freight    decimal.Decimal
	CostTotal  decimal.Decimal
}

// SaleFilter narrows a sale listing
type SaleFilter struct {
	shared.Filter
	Status     SaleStatus
	CustomerID *uuid.UUID
}

// SaleRepository defines the interface for sale persistence
type SaleRepository interface {
	// FindByIDForTenant loads a sale with its items
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Sale, error)

	// FindByNumber loads a sale by document number
	FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*Sale, error)

	// FindAllForTenant lists sales without items
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter SaleFilter) ([]Sale, int64, error)

	// Save creates or replaces a sale together with its items
	Save(ctx context.Context, sale *Sale) error

	// SaveWithLock updates a sale and its items only if the stored version matches
	SaveWithLock(ctx context.Context, sale *Sale) error

	// Summarize totals settled sales sold within the period
	Summarize(ctx context.Context, tenantID uuid.UUID, period shared.Period) (SaleSummary, error)

	// CountForTenant counts sales of a tenant
	CountForTenant(ctx context.Context, tenantID uuid.UUID) (int64, error)
}

// PurchaseOrderRepository defines the interface for purchase order persistence
type PurchaseOrderRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*PurchaseOrder, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]PurchaseOrder, int64, error)
	Save(ctx context.Context, order *PurchaseOrder) error
	SaveWithLock(ctx context.Context, order *PurchaseOrder) error
}
