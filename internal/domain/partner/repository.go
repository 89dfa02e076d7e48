package partner

import (
	"context"

	"github.com/erp/retail/internal/domain/shared"
	"github.com/google/uuid"
)

// CustomerRepository defines the interface for customer persistence
type CustomerRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Customer, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Customer, int64, error)
	FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*Customer, error)

	// FindWalkIn returns the tenant's walk-in customer or shared.ErrNotFound
	FindWalkIn(ctx context.Context, tenantID uuid.UUID) (*Customer, error)

	Save(ctx context.Context, customer *Customer) error
}

// SupplierRepository defines the interface for supplier persistence
type SupplierRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Supplier, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Supplier, int64, error)
	FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*Supplier, error)
	Save(ctx context.Context, supplier *Supplier) error
}
