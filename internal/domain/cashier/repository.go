package cashier

import (
	"context"

	"github.com/erp/retail/internal/domain/shared"
	"github.com/google/uuid"
)

// SessionFilter narrows a drawer session listing
type SessionFilter struct {
	shared.Filter
	Status     SessionStatus
	OperatorID *uuid.UUID
}

// DrawerRepository defines the interface for drawer session persistence
type DrawerRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*DrawerSession, error)

	// FindByIDForUpdate loads the session holding a row lock until the transaction ends
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*DrawerSession, error)

	// FindOpenByOperator returns the operator's open session or shared.ErrNotFound
	FindOpenByOperator(ctx context.Context, tenantID, operatorID uuid.UUID) (*DrawerSession, error)

	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter SessionFilter) ([]DrawerSession, int64, error)
	FindOpenedInPeriod(ctx context.Context, tenantID uuid.UUID, period shared.Period) ([]DrawerSession, error)
	ListMovements(ctx context.Context, sessionID uuid.UUID) ([]Movement, error)

	Create(ctx context.Context, session *DrawerSession) error

	// SaveWithLock persists session fields with an optimistic version check
	SaveWithLock(ctx context.Context, session *DrawerSession) error

	CreateMovement(ctx context.Context, movement *Movement) error
}
