package persistence

import (
	"context"
	"time"

	"github.com/erp/retail/internal/domain/servicedesk"
	"github.com/erp/retail/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormServiceOrderRepository implements ServiceOrderRepository using GORM
type GormServiceOrderRepository struct {
	db *gorm.DB
}

// NewGormServiceOrderRepository creates a new GormServiceOrderRepository
func NewGormServiceOrderRepository(db *gorm.DB) *GormServiceOrderRepository {
	return &GormServiceOrderRepository{db: db}
}

// FindByIDForTenant loads an order with parts and history
func (r *GormServiceOrderRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*servicedesk.ServiceOrder, error) {
	var order servicedesk.ServiceOrder
	if err := r.db.WithContext(ctx).
		Preload("Parts", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }).
		Preload("History", func(db *gorm.DB) *gorm.DB { return db.Order("at ASC") }).
		Scopes(forTenant(tenantID)).
		Where("id = ?", id).
		First(&order).Error; err != nil {
		return nil, translate(err)
	}
	return &order, nil
}

// FindAllForTenant lists orders without parts and history
func (r *GormServiceOrderRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]servicedesk.ServiceOrder, int64, error) {
	query := r.db.WithContext(ctx).Model(&servicedesk.ServiceOrder{}).Scopes(forTenant(tenantID))
	if status, ok := filter.Filters["status"].(string); ok && status != "" {
		query = query.Where("status = ?", status)
	}
	if customerID, ok := filter.Filters["customer_id"].(uuid.UUID); ok {
		query = query.Where("customer_id = ?", customerID)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("number LIKE ? OR customer_name LIKE ? OR equipment LIKE ? OR serial_number = ?",
			like, like, like, filter.Search)
	}

	total, err := countRows(query)
	if err != nil {
		return nil, 0, err
	}
	var orders []servicedesk.ServiceOrder
	if err := query.Scopes(paginate(filter, ServiceOrderSortFields, "opened_at")).Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// Save creates or replaces an order together with parts and history
func (r *GormServiceOrderRepository) Save(ctx context.Context, order *servicedesk.ServiceOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(order).Error; err != nil {
			return translate(err)
		}
		return r.saveChildren(tx, order)
	})
}

// SaveWithLock updates an order only if the stored version matches
func (r *GormServiceOrderRepository) SaveWithLock(ctx context.Context, order *servicedesk.ServiceOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkVersion(tx, &servicedesk.ServiceOrder{}, order.ID, order.Version); err != nil {
			return err
		}

		expected := order.Version
		order.Version++
		order.UpdatedAt = time.Now()

		result := tx.Model(&servicedesk.ServiceOrder{}).
			Where("id = ? AND version = ?", order.ID, expected).
			Omit(clause.Associations, "id", "tenant_id", "created_at", "created_by").
			Select("*").
			Updates(order)
		if result.Error != nil {
			return translate(result.Error)
		}
		if result.RowsAffected == 0 {
			return shared.ErrOptimisticLock.WithDetail("service_order_id", order.ID.String())
		}
		return r.saveChildren(tx, order)
	})
}

func (r *GormServiceOrderRepository) saveChildren(tx *gorm.DB, order *servicedesk.ServiceOrder) error {
	if err := replaceChildren(tx, "order_id", order.ID, order.Parts); err != nil {
		return err
	}
	return appendHistory(tx, order.ID, order.History)
}

// appendHistory inserts history entries not stored yet. History is append-only.
func appendHistory(tx *gorm.DB, orderID uuid.UUID, history []servicedesk.HistoryEntry) error {
	if len(history) == 0 {
		return nil
	}
	var stored []uuid.UUID
	if err := tx.Model(&servicedesk.HistoryEntry{}).
		Where("order_id = ?", orderID).
		Pluck("id", &stored).Error; err != nil {
		return err
	}
	known := make(map[uuid.UUID]struct{}, len(stored))
	for _, id := range stored {
		known[id] = struct{}{}
	}
	fresh := make([]servicedesk.HistoryEntry, 0, len(history))
	for _, h := range history {
		if _, ok := known[h.ID]; !ok {
			fresh = append(fresh, h)
		}
	}
	if len(fresh) == 0 {
		return nil
	}
	return tx.Create(&fresh).Error
}

// Summarize totals orders completed or delivered with a completion date in the period
func (r *GormServiceOrderRepository) Summarize(ctx context.Context, tenantID uuid.UUID, period shared.Period) (servicedesk.OrderSummary, error) {
	var row struct {
		Count        int64
		ServiceValue decimal.NullDecimal
		PartsValue   decimal.NullDecimal
		PartsCost    decimal.NullDecimal
		Discount     decimal.NullDecimal
		Freight      decimal.NullDecimal
	}
	err := r.db.WithContext(ctx).Model(&servicedesk.ServiceOrder{}).
		Select(`COUNT(*) AS count,
			SUM(service_value) AS service_value,
			SUM(parts_value) AS parts_value,
			SUM(parts_cost) AS parts_cost,
			SUM(discount) AS discount,
			SUM(freight) AS freight`).
		Scopes(forTenant(tenantID)).
		Where("status IN ?", []servicedesk.Status{servicedesk.StatusCompleted, servicedesk.StatusDelivered}).
		Where("completed_at >= ? AND completed_at < ?", period.Start, period.EndExclusive()).
		Scan(&row).Error
	if err != nil {
		return servicedesk.OrderSummary{}, err
	}
	return servicedesk.OrderSummary{
		Count:        row.Count,
		ServiceValue: orZero(row.ServiceValue),
		PartsValue:   orZero(row.PartsValue),
		PartsCost:    orZero(row.PartsCost),
		Discount:     orZero(row.Discount),
		Freight:      orZero(row.Freight),
	}, nil
}

// GormBudgetRepository implements BudgetRepository using GORM
type GormBudgetRepository struct {
	db *gorm.DB
}

// NewGormBudgetRepository creates a new GormBudgetRepository
func NewGormBudgetRepository(db *gorm.DB) *GormBudgetRepository {
	return &GormBudgetRepository{db: db}
}

// FindByIDForTenant finds a budget by ID within a tenant
func (r *GormBudgetRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*servicedesk.Budget, error) {
	var budget servicedesk.Budget
	if err := r.db.WithContext(ctx).Scopes(forTenant(tenantID)).
		Where("id = ?", id).
		First(&budget).Error; err != nil {
		return nil, translate(err)
	}
	return &budget, nil
}

// FindByOrder lists the budgets of a service order, oldest first
func (r *GormBudgetRepository) FindByOrder(ctx context.Context, tenantID, orderID uuid.UUID) ([]servicedesk.Budget, error) {
	var budgets []servicedesk.Budget
	if err := r.db.WithContext(ctx).Scopes(forTenant(tenantID)).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&budgets).Error; err != nil {
		return nil, err
	}
	return budgets, nil
}

// Save creates or updates a budget
func (r *GormBudgetRepository) Save(ctx context.Context, budget *servicedesk.Budget) error {
	return translate(r.db.WithContext(ctx).Save(budget).Error)
}

var (
	_ servicedesk.ServiceOrderRepository = (*GormServiceOrderRepository)(nil)
	_ servicedesk.BudgetRepository       = (*GormBudgetRepository)(nil)
)
