package persistence

import (
	"context"
	"time"

	"github.com/erp/retail/internal/domain/inventory"
	"github.com/erp/retail/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormMovementRepository implements MovementRepository using GORM
type GormMovementRepository struct {
	db *gorm.DB
}

// NewGormMovementRepository creates a new GormMovementRepository
func NewGormMovementRepository(db *gorm.DB) *GormMovementRepository {
	return &GormMovementRepository{db: db}
}

// Create appends a movement. A duplicate (product, sequence) pair is rejected by the unique index.
func (r *GormMovementRepository) Create(ctx context.Context, movement *inventory.StockMovement) error {
	return translate(r.db.WithContext(ctx).Create(movement).Error)
}

// FindByProduct returns every movement of a product in ledger order
func (r *GormMovementRepository) FindByProduct(ctx context.Context, tenantID, productID uuid.UUID) ([]inventory.StockMovement, error) {
	var movements []inventory.StockMovement
	if err := r.db.WithContext(ctx).Scopes(forTenant(tenantID)).
		Where("product_id = ?", productID).
		Order("sequence ASC").
		Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// ListByProduct returns a page of movements of a product, newest first by default
func (r *GormMovementRepository) ListByProduct(ctx context.Context, tenantID, productID uuid.UUID, filter inventory.MovementFilter) ([]inventory.StockMovement, int64, error) {
	query := r.db.WithContext(ctx).Model(&inventory.StockMovement{}).
		Scopes(forTenant(tenantID)).
		Where("product_id = ?", productID)
	if filter.Kind != "" {
		query = query.Where("kind = ?", filter.Kind)
	}
	if filter.From != nil {
		query = query.Where("occurred_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("occurred_at <= ?", *filter.To)
	}

	total, err := countRows(query)
	if err != nil {
		return nil, 0, err
	}

	var movements []inventory.StockMovement
	if err := query.Scopes(paginate(filter.Filter, MovementSortFields, "sequence")).Find(&movements).Error; err != nil {
		return nil, 0, err
	}
	return movements, total, nil
}

// FindByDocument returns the movements booked by a source document
func (r *GormMovementRepository) FindByDocument(ctx context.Context, tenantID uuid.UUID, docType inventory.DocumentType, documentNumber string) ([]inventory.StockMovement, error) {
	var movements []inventory.StockMovement
	if err := r.db.WithContext(ctx).Scopes(forTenant(tenantID)).
		Where("document_type = ? AND document_number = ?", docType, documentNumber).
		Order("occurred_at ASC, sequence ASC").
		Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// CountForTenant counts all movements of a tenant
func (r *GormMovementRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&inventory.StockMovement{}).Scopes(forTenant(tenantID)).Count(&count).Error
	return count, err
}

// GormBatchRepository implements BatchRepository using GORM
type GormBatchRepository struct {
	db *gorm.DB
}

// NewGormBatchRepository creates a new GormBatchRepository
func NewGormBatchRepository(db *gorm.DB) *GormBatchRepository {
	return &GormBatchRepository{db: db}
}

// FindByLot finds the batch of a product by lot code
func (r *GormBatchRepository) FindByLot(ctx context.Context, tenantID, productID uuid.UUID, lotCode string) (*inventory.StockBatch, error) {
	var batch inventory.StockBatch
	if err := r.db.WithContext(ctx).Scopes(forTenant(tenantID)).
		Where("product_id = ? AND lot_code = ?", productID, lotCode).
		First(&batch).Error; err != nil {
		return nil, translate(err)
	}
	return &batch, nil
}

// FindAvailable returns batches of a product that still hold stock, locked with the product
func (r *GormBatchRepository) FindAvailable(ctx context.Context, tenantID, productID uuid.UUID) ([]*inventory.StockBatch, error) {
	var batches []*inventory.StockBatch
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Scopes(forTenant(tenantID)).
		Where("product_id = ? AND quantity > 0", productID).
		Order("expiry_date ASC").
		Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}

// FindExpiringBefore returns batches with stock whose expiry date is before the given day
func (r *GormBatchRepository) FindExpiringBefore(ctx context.Context, tenantID uuid.UUID, before time.Time) ([]inventory.StockBatch, error) {
	var batches []inventory.StockBatch
	if err := r.db.WithContext(ctx).Scopes(forTenant(tenantID)).
		Where("expiry_date IS NOT NULL AND expiry_date < ? AND quantity > 0", shared.TruncateDay(before)).
		Order("expiry_date ASC").
		Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}

// Save creates or updates a batch
func (r *GormBatchRepository) Save(ctx context.Context, batch *inventory.StockBatch) error {
	return translate(r.db.WithContext(ctx).Save(batch).Error)
}

// GormCountSessionRepository implements CountSessionRepository using GORM
type GormCountSessionRepository struct {
	db *gorm.DB
}

// NewGormCountSessionRepository creates a new GormCountSessionRepository
func NewGormCountSessionRepository(db *gorm.DB) *GormCountSessionRepository {
	return &GormCountSessionRepository{db: db}
}

// FindByIDForTenant loads a session with its lines
func (r *GormCountSessionRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*inventory.CountSession, error) {
	var session inventory.CountSession
	if err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("product_code ASC") }).
		Scopes(forTenant(tenantID)).
		Where("id = ?", id).
		First(&session).Error; err != nil {
		return nil, translate(err)
	}
	return &session, nil
}

// FindAllForTenant lists sessions without lines
func (r *GormCountSessionRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]inventory.CountSession, int64, error) {
	query := r.db.WithContext(ctx).Model(&inventory.CountSession{}).Scopes(forTenant(tenantID))
	if status, ok := filter.Filters["status"].(string); ok && status != "" {
		query = query.Where("status = ?", status)
	}

	total, err := countRows(query)
	if err != nil {
		return nil, 0, err
	}
	var sessions []inventory.CountSession
	if err := query.Scopes(paginate(filter, DocumentSortFields, "created_at")).Find(&sessions).Error; err != nil {
		return nil, 0, err
	}
	return sessions, total, nil
}

// Save creates or replaces a session together with its lines
func (r *GormCountSessionRepository) Save(ctx context.Context, session *inventory.CountSession) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(session).Error; err != nil {
			return translate(err)
		}
		return replaceChildren(tx, "session_id", session.ID, session.Lines)
	})
}

// replaceChildren rewrites the child rows of a parent to match the given slice
func replaceChildren[T any](tx *gorm.DB, foreignKey string, parentID uuid.UUID, children []T) error {
	if err := tx.Where(foreignKey+" = ?", parentID).Delete(new(T)).Error; err != nil {
		return err
	}
	if len(children) == 0 {
		return nil
	}
	return translate(tx.Create(&children).Error)
}

var (
	_ inventory.MovementRepository     = (*GormMovementRepository)(nil)
	_ inventory.BatchRepository        = (*GormBatchRepository)(nil)
	_ inventory.CountSessionRepository = (*GormCountSessionRepository)(nil)
)
