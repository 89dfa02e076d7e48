package persistence

import (
	"context"
	"strings"
	"time"

	"github.com/erp/retail/internal/domain/catalog"
	"github.com/erp/retail/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByIDForTenant finds a product by ID within a tenant
func (r *GormProductRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Product, error) {
	var product catalog.Product
	if err := r.db.WithContext(ctx).Scopes(forTenant(tenantID)).
		Where("id = ?", id).
		First(&product).Error; err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

// FindByIDForUpdate loads a product with SELECT ... FOR UPDATE.
// Must run inside a transaction; the lock is released on commit or rollback.
func (r *GormProductRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Product, error) {
	var product catalog.Product
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Scopes(forTenant(tenantID)).
		Where("id = ?", id).
		First(&product).Error; err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

// FindByCode finds a product by its code within a tenant
func (r *GormProductRepository) FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*catalog.Product, error) {
	var product catalog.Product
	if err := r.db.WithContext(ctx).Scopes(forTenant(tenantID)).
		Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).
		First(&product).Error; err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

// FindByBarcode finds a product by its barcode within a tenant
func (r *GormProductRepository) FindByBarcode(ctx context.Context, tenantID uuid.UUID, barcode string) (*catalog.Product, error) {
	var product catalog.Product
	if err := r.db.WithContext(ctx).Scopes(forTenant(tenantID)).
		Where("barcode = ?", strings.TrimSpace(barcode)).
		First(&product).Error; err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

// FindByIDs finds multiple products by their IDs
func (r *GormProductRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]catalog.Product, error) {
	if len(ids) == 0 {
		return []catalog.Product{}, nil
	}
	var products []catalog.Product
	if err := r.db.WithContext(ctx).Scopes(forTenant(tenantID)).
		Where("id IN ?", ids).
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// FindAllForTenant lists products for a tenant. Search matches code, name or barcode.
func (r *GormProductRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]catalog.Product, error) {
	query := r.db.WithContext(ctx).Model(&catalog.Product{}).Scopes(forTenant(tenantID))
	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(code) LIKE ? OR LOWER(name) LIKE ? OR barcode = ?", like, like, filter.Search)
	}
	if status, ok := filter.Filters["status"].(string); ok && status != "" {
		query = query.Where("status = ?", status)
	}

	var products []catalog.Product
	if err := query.Scopes(paginate(filter, ProductSortFields, "code")).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// FindBelowMinimum lists active products whose stock is at or below a positive minimum
func (r *GormProductRepository) FindBelowMinimum(ctx context.Context, tenantID uuid.UUID) ([]catalog.Product, error) {
	var products []catalog.Product
	if err := r.db.WithContext(ctx).Scopes(forTenant(tenantID)).
		Where("status = ? AND min_stock > 0 AND on_hand_quantity <= min_stock", catalog.ProductStatusActive).
		Order("code ASC").
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// Save creates or updates a product. The cached stock columns are owned by
// the ledger and never written here.
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	return translate(r.db.WithContext(ctx).
		Omit("on_hand_quantity", "ledger_seq").
		Save(product).Error)
}

// UpdateOnHand writes the cached stock level and ledger sequence, bumping the version
func (r *GormProductRepository) UpdateOnHand(ctx context.Context, product *catalog.Product) error {
	now := time.Now()
	result := r.db.WithContext(ctx).Model(&catalog.Product{}).
		Where("id = ? AND tenant_id = ?", product.ID, product.TenantID).
		Updates(map[string]any{
			"on_hand_quantity": product.OnHandQuantity,
			"ledger_seq":       product.LedgerSeq,
			"version":          gorm.Expr("version + 1"),
			"updated_at":       now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound.WithDetail("product_id", product.ID.String())
	}
	product.Version++
	product.UpdatedAt = now
	return nil
}

// GormServiceItemRepository implements ServiceItemRepository using GORM
type GormServiceItemRepository struct {
	db *gorm.DB
}

// NewGormServiceItemRepository creates a new GormServiceItemRepository
func NewGormServiceItemRepository(db *gorm.DB) *GormServiceItemRepository {
	return &GormServiceItemRepository{db: db}
}

// FindByIDForTenant finds a service item by ID within a tenant
func (r *GormServiceItemRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*catalog.ServiceItem, error) {
	var item catalog.ServiceItem
	if err := r.db.WithContext(ctx).Scopes(forTenant(tenantID)).
		Where("id = ?", id).
		First(&item).Error; err != nil {
		return nil, translate(err)
	}
	return &item, nil
}

// FindAllForTenant lists service items for a tenant
func (r *GormServiceItemRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]catalog.ServiceItem, error) {
	query := r.db.WithContext(ctx).Model(&catalog.ServiceItem{}).Scopes(forTenant(tenantID))
	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(code) LIKE ? OR LOWER(name) LIKE ?", like, like)
	}
	var items []catalog.ServiceItem
	if err := query.Scopes(paginate(filter, ServiceItemSortFields, "code")).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Save creates or updates a service item
func (r *GormServiceItemRepository) Save(ctx context.Context, item *catalog.ServiceItem) error {
	return translate(r.db.WithContext(ctx).Save(item).Error)
}

var (
	_ catalog.ProductRepository     = (*GormProductRepository)(nil)
	_ catalog.ServiceItemRepository = (*GormServiceItemRepository)(nil)
)

// GormStockedTenants lists tenants that own products. It feeds the nightly
// stock reconciliation.
type GormStockedTenants struct {
	db *gorm.DB
}

// NewGormStockedTenants creates a new GormStockedTenants
func NewGormStockedTenants(db *gorm.DB) *GormStockedTenants {
	return &GormStockedTenants{db: db}
}

// Tenants returns the distinct tenant IDs owning at least one product
func (r *GormStockedTenants) Tenants(ctx context.Context, _ time.Time) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).Model(&catalog.Product{}).
		Distinct("tenant_id").
		Pluck("tenant_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
