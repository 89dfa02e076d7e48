package payment

import (
	"context"

	"github.com/erp/retail/internal/domain/shared"
	"github.com/google/uuid"
)

// MethodRepository defines the interface for payment method persistence
type MethodRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Method, error)

	// FindByType returns the first active method of a type, used to resolve cash at checkout
	FindByType(ctx context.Context, tenantID uuid.UUID, methodType MethodType) (*Method, error)

	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Method, error)
	Save(ctx context.Context, method *Method) error

	// CreateIfAbsent inserts a method unless the tenant already has one with its name
	CreateIfAbsent(ctx context.Context, method *Method) error
}
