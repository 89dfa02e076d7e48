package catalog

import (
	"context"

	"github.com/erp/retail/internal/domain/shared"
	"github.com/google/uuid"
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindByIDForTenant finds a product by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Product, error)

	// FindByIDForUpdate loads a product holding a row lock until the surrounding transaction ends.
	// Every stock ledger write goes through this method.
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*Product, error)

	// FindByCode finds a product by its code within a tenant
	FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*Product, error)

	// FindByBarcode finds a product by its barcode within a tenant
	FindByBarcode(ctx context.Context, tenantID uuid.UUID, barcode string) (*Product, error)

	// FindByIDs finds multiple products by their IDs
	FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]Product, error)

	// FindAllForTenant lists products for a tenant
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Product, error)

	// FindBelowMinimum lists products whose stock is at or below their minimum
	FindBelowMinimum(ctx context.Context, tenantID uuid.UUID) ([]Product, error)

	// Save creates or updates a product
	Save(ctx context.Context, product *Product) error

	// UpdateOnHand writes the cached stock level and bumps the version
	UpdateOnHand(ctx context.Context, product *Product) error
}

// ServiceItemRepository defines the interface for service item persistence
type ServiceItemRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ServiceItem, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]ServiceItem, error)
	Save(ctx context.Context, item *ServiceItem) error
}
