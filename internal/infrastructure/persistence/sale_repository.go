package persistence

import (
	"context"
	"time"

	"github.com/erp/retail/internal/domain/shared"
	"github.com/erp/retail/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSaleRepository implements SaleRepository using GORM
type GormSaleRepository struct {
	db *gorm.DB
}

// NewGormSaleRepository creates a new GormSaleRepository
func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

func preloadSaleItems(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC, id ASC")
}

// FindByIDForTenant loads a sale with its items
func (r *GormSaleRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*trade.Sale, error) {
	var sale trade.Sale
	if err := r.db.WithContext(ctx).
		Preload("Items", preloadSaleItems).
		Scopes(forTenant(tenantID)).
		Where("id = ?", id).
		First(&sale).Error; err != nil {
		return nil, translate(err)
	}
	return &sale, nil
}

// FindByNumber loads a sale by document number
func (r *GormSaleRepository) FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*trade.Sale, error) {
	var sale trade.Sale
	if err := r.db.WithContext(ctx).
		Preload("Items", preloadSaleItems).
		Scopes(forTenant(tenantID)).
		Where("number = ?", number).
		First(&sale).Error; err != nil {
		return nil, translate(err)
	}
	return &sale, nil
}

// FindAllForTenant lists sales without items
func (r *GormSaleRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter trade.SaleFilter) ([]trade.Sale, int64, error) {
	query := r.db.WithContext(ctx).Model(&trade.Sale{}).Scopes(forTenant(tenantID))
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("number LIKE ? OR customer_name LIKE ?", like, like)
	}

	total, err := countRows(query)
	if err != nil {
		return nil, 0, err
	}
	var sales []trade.Sale
	if err := query.Scopes(paginate(filter.Filter, SaleSortFields, "sold_at")).Find(&sales).Error; err != nil {
		return nil, 0, err
	}
	return sales, total, nil
}

// Save creates or replaces a sale together with its items
func (r *GormSaleRepository) Save(ctx context.Context, sale *trade.Sale) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(sale).Error; err != nil {
			return translate(err)
		}
		return replaceChildren(tx, "sale_id", sale.ID, sale.Items)
	})
}

// SaveWithLock updates a sale and its items only if the stored version matches
func (r *GormSaleRepository) SaveWithLock(ctx context.Context, sale *trade.Sale) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkVersion(tx, &trade.Sale{}, sale.ID, sale.Version); err != nil {
			return err
		}

		expected := sale.Version
		sale.Version++
		sale.UpdatedAt = time.Now()

		result := tx.Model(&trade.Sale{}).
			Where("id = ? AND version = ?", sale.ID, expected).
			Omit(clause.Associations, "id", "tenant_id", "created_at", "created_by").
			Select("*").
			Updates(sale)
		if result.Error != nil {
			return translate(result.Error)
		}
		if result.RowsAffected == 0 {
			return shared.ErrOptimisticLock.WithDetail("sale_id", sale.ID.String())
		}
		return replaceChildren(tx, "sale_id", sale.ID, sale.Items)
	})
}

// Summarize totals settled sales sold within the period
func (r *GormSaleRepository) Summarize(ctx context.Context, tenantID uuid.UUID, period shared.Period) (trade.SaleSummary, error) {
	var row struct {
		Count      int64
		ItemsTotal decimal.NullDecimal
		Discount   decimal.NullDecimal
		Surcharge  decimal.NullDecimal
		Freight    decimal.NullDecimal
		CostTotal  decimal.NullDecimal
	}
	err := r.db.WithContext(ctx).Model(&trade.Sale{}).
		Select(`COUNT(*) AS count,
			SUM(items_total) AS items_total,
			SUM(discount) AS discount,
			SUM(surcharge) AS surcharge,
			SUM(freight) AS freight,
			SUM(cost_total) AS cost_total`).
		Scopes(forTenant(tenantID)).
		Where("status IN ?", trade.SettledSaleStatuses).
		Where("sold_at >= ? AND sold_at < ?", period.Start, period.EndExclusive()).
		Scan(&row).Error
	if err != nil {
		return trade.SaleSummary{}, err
	}
	return trade.SaleSummary{
		Count:      row.Count,
		ItemsTotal: orZero(row.ItemsTotal),
		Discount:   orZero(row.Discount),
		Surcharge:  orZero(row.Surcharge),
		Freight:    orZero(row.Freight),
		CostTotal:  orZero(row.CostTotal),
	}, nil
}

// CountForTenant counts sales of a tenant
func (r *GormSaleRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&trade.Sale{}).Scopes(forTenant(tenantID)).Count(&count).Error
	return count, err
}

// GormPurchaseOrderRepository implements PurchaseOrderRepository using GORM
type GormPurchaseOrderRepository struct {
	db *gorm.DB
}

// NewGormPurchaseOrderRepository creates a new GormPurchaseOrderRepository
func NewGormPurchaseOrderRepository(db *gorm.DB) *GormPurchaseOrderRepository {
	return &GormPurchaseOrderRepository{db: db}
}

// FindByIDForTenant loads an order with its lines
func (r *GormPurchaseOrderRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*trade.PurchaseOrder, error) {
	var order trade.PurchaseOrder
	if err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }).
		Scopes(forTenant(tenantID)).
		Where("id = ?", id).
		First(&order).Error; err != nil {
		return nil, translate(err)
	}
	return &order, nil
}

// FindAllForTenant lists orders without lines
func (r *GormPurchaseOrderRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]trade.PurchaseOrder, int64, error) {
	query := r.db.WithContext(ctx).Model(&trade.PurchaseOrder{}).Scopes(forTenant(tenantID))
	if status, ok := filter.Filters["status"].(string); ok && status != "" {
		query = query.Where("status = ?", status)
	}
	if supplierID, ok := filter.Filters["supplier_id"].(uuid.UUID); ok {
		query = query.Where("supplier_id = ?", supplierID)
	}

	total, err := countRows(query)
	if err != nil {
		return nil, 0, err
	}
	var orders []trade.PurchaseOrder
	if err := query.Scopes(paginate(filter, DocumentSortFields, "created_at")).Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// Save creates or replaces an order together with its lines
func (r *GormPurchaseOrderRepository) Save(ctx context.Context, order *trade.PurchaseOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(order).Error; err != nil {
			return translate(err)
		}
		return replaceChildren(tx, "order_id", order.ID, order.Lines)
	})
}

// SaveWithLock updates an order and its lines only if the stored version matches
func (r *GormPurchaseOrderRepository) SaveWithLock(ctx context.Context, order *trade.PurchaseOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkVersion(tx, &trade.PurchaseOrder{}, order.ID, order.Version); err != nil {
			return err
		}

		expected := order.Version
		order.Version++
		order.UpdatedAt = time.Now()

		result := tx.Model(&trade.PurchaseOrder{}).
			Where("id = ? AND version = ?", order.ID, expected).
			Omit(clause.Associations, "id", "tenant_id", "created_at", "created_by").
			Select("*").
			Updates(order)
		if result.Error != nil {
			return translate(result.Error)
		}
		if result.RowsAffected == 0 {
			return shared.ErrOptimisticLock.WithDetail("purchase_order_id", order.ID.String())
		}
		return replaceChildren(tx, "order_id", order.ID, order.Lines)
	})
}

var (
	_ trade.SaleRepository          = (*GormSaleRepository)(nil)
	_ trade.PurchaseOrderRepository = (*GormPurchaseOrderRepository)(nil)
)
