package servicedesk

import (
	"context"

	"github.com/erp/retail/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderSummary aggregates service orders completed in a period for the income statement
type OrderSummary struct {
	Count        int64
	ServiceValue decimal.Decimal
	PartsValue   decimal.Decimal
	PartsCost    decimal.Decimal
	Discount     decimal.Decimal
	Freight      decimal.Decimal
}

// ServiceOrderRepository defines the interface for service order persistence
type ServiceOrderRepository interface {
	// FindByIDForTenant loads an order with parts and history
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ServiceOrder, error)

	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]ServiceOrder, int64, error)

	// Save creates or replaces an order together with parts and history
	Save(ctx context.Context, order *ServiceOrder) error

	// SaveWithLock updates an order only if the stored version matches
	SaveWithLock(ctx context.Context, order *ServiceOrder) error

	// Summarize totals orders completed or delivered with a completion date in the period
	Summarize(ctx context.Context, tenantID uuid.UUID, period shared.Period) (OrderSummary, error)
}

// BudgetRepository defines the interface for budget persistence
type BudgetRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Budget, error)
	FindByOrder(ctx context.Context, tenantID, orderID uuid.UUID) ([]Budget, error)
	Save(ctx context.Context, budget *Budget) error
}
