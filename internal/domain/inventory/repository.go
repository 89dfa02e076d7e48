package inventory

import (
	"context"
	"time"

	"github.com/erp/retail/internal/domain/shared"
	"github.com/google/uuid"
)

// MovementFilter narrows a movement listing
type MovementFilter struct {
	shared.Filter
	Kind MovementKind
	From *time.Time
	To   *time.Time
}

// MovementRepository persists the append-only stock ledger
type MovementRepository interface {
	// Create appends a movement. Movements are never updated.
	Create(ctx context.Context, movement *StockMovement) error

	// FindByProduct returns every movement of a product in ledger order
	FindByProduct(ctx context.Context, tenantID, productID uuid.UUID) ([]StockMovement, error)

	// ListByProduct returns a page of movements of a product, newest first
	ListByProduct(ctx context.Context, tenantID, productID uuid.UUID, filter MovementFilter) ([]StockMovement, int64, error)

	// FindByDocument returns the movements booked by a source document
	FindByDocument(ctx context.Context, tenantID uuid.UUID, docType DocumentType, documentNumber string) ([]StockMovement, error)

	// CountForTenant counts all movements of a tenant
	CountForTenant(ctx context.Context, tenantID uuid.UUID) (int64, error)
}

// BatchRepository persists lot quantities
type BatchRepository interface {
	FindByLot(ctx context.Context, tenantID, productID uuid.UUID, lotCode string) (*StockBatch, error)

	// FindAvailable returns batches of a product that still hold stock
	FindAvailable(ctx context.Context, tenantID, productID uuid.UUID) ([]*StockBatch, error)

	// FindExpiringBefore returns batches with stock whose expiry date is before the given day
	FindExpiringBefore(ctx context.Context, tenantID uuid.UUID, before time.Time) ([]StockBatch, error)

	Save(ctx context.Context, batch *StockBatch) error
}

// CountSessionRepository persists count sessions with their lines
type CountSessionRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*CountSession, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]CountSession, int64, error)
	Save(ctx context.Context, session *CountSession) error
}
