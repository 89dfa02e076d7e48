package persistence

import (
	"context"
	"time"

	"github.com/erp/retail/internal/domain/finance"
	"github.com/erp/retail/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormReceivableRepository implements ReceivableRepository using GORM
type GormReceivableRepository struct {
	db *gorm.DB
}

// NewGormReceivableRepository creates a new GormReceivableRepository
func NewGormReceivableRepository(db *gorm.DB) *GormReceivableRepository {
	return &GormReceivableRepository{db: db}
}

// FindByIDForTenant finds a receivable by ID within a tenant
func (r *GormReceivableRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*finance.Receivable, error) {
	var rec finance.Receivable
	if err := r.db.WithContext(ctx).Scopes(forTenant(tenantID)).
		Where("id = ?", id).
		First(&rec).Error; err != nil {
		return nil, translate(err)
	}
	return &rec, nil
}

// FindBySource returns the receivables booked by a source document
func (r *GormReceivableRepository) FindBySource(ctx context.Context, tenantID uuid.UUID, source finance.SourceType, sourceID uuid.UUID) ([]finance.Receivable, error) {
	var recs []finance.Receivable
	if err := r.db.WithContext(ctx).Scopes(forTenant(tenantID)).
		Where("source_type = ? AND source_id = ?", source, sourceID).
		Order("created_at ASC").
		Find(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}

// FindAllForTenant lists receivables with filtering and pagination
func (r *GormReceivableRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter finance.EntryFilter) ([]finance.Receivable, int64, error) {
	query := applyEntryFilter(r.db.WithContext(ctx).Model(&finance.Receivable{}).Scopes(forTenant(tenantID)), filter)
	total, err := countRows(query)
	if err != nil {
		return nil, 0, err
	}
	var recs []finance.Receivable
	if err := query.Scopes(paginate(filter.Filter, EntrySortFields, "due_date")).Find(&recs).Error; err != nil {
		return nil, 0, err
	}
	return recs, total, nil
}

// FindPendingDueBefore returns pending receivables whose due date is before the given day
func (r *GormReceivableRepository) FindPendingDueBefore(ctx context.Context, tenantID uuid.UUID, day time.Time) ([]finance.Receivable, error) {
	var recs []finance.Receivable
	if err := r.db.WithContext(ctx).Scopes(forTenant(tenantID)).
		Where("status = ? AND due_date < ?", finance.StatusPending, shared.TruncateDay(day)).
		Order("due_date ASC").
		Find(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}

// Save creates or updates a receivable
func (r *GormReceivableRepository) Save(ctx context.Context, rec *finance.Receivable) error {
	return translate(r.db.WithContext(ctx).Save(rec).Error)
}

// SaveWithLock updates a receivable only if the stored version matches
func (r *GormReceivableRepository) SaveWithLock(ctx context.Context, rec *finance.Receivable) error {
	return saveEntryWithLock(r.db.WithContext(ctx), &finance.Receivable{}, rec.ID, &rec.TenantAggregateRoot, rec)
}

// SumSettledByDRE sums original amounts of settled receivables per DRE code, by paid date
func (r *GormReceivableRepository) SumSettledByDRE(ctx context.Context, tenantID uuid.UUID, period shared.Period, codes []int) (map[int]decimal.Decimal, error) {
	return sumSettledByDRE(r.db.WithContext(ctx).Model(&finance.Receivable{}), tenantID, period, codes)
}

// CountForTenant counts receivables of a tenant
func (r *GormReceivableRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&finance.Receivable{}).Scopes(forTenant(tenantID)).Count(&count).Error
	return count, err
}

// GormPayableRepository implements PayableRepository using GORM
type GormPayableRepository struct {
	db *gorm.DB
}

// NewGormPayableRepository creates a new GormPayableRepository
func NewGormPayableRepository(db *gorm.DB) *GormPayableRepository {
	return &GormPayableRepository{db: db}
}

// FindByIDForTenant finds a payable by ID within a tenant
func (r *GormPayableRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*finance.Payable, error) {
	var p finance.Payable
	if err := r.db.WithContext(ctx).Scopes(forTenant(tenantID)).
		Where("id = ?", id).
		First(&p).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

// FindAllForTenant lists payables with filtering and pagination
func (r *GormPayableRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter finance.EntryFilter) ([]finance.Payable, int64, error) {
	query := applyEntryFilter(r.db.WithContext(ctx).Model(&finance.Payable{}).Scopes(forTenant(tenantID)), filter)
	total, err := countRows(query)
	if err != nil {
		return nil, 0, err
	}
	var items []finance.Payable
	if err := query.Scopes(paginate(filter.Filter, EntrySortFields, "due_date")).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// FindPendingDueBefore returns pending payables whose due date is before the given day
func (r *GormPayableRepository) FindPendingDueBefore(ctx context.Context, tenantID uuid.UUID, day time.Time) ([]finance.Payable, error) {
	var items []finance.Payable
	if err := r.db.WithContext(ctx).Scopes(forTenant(tenantID)).
		Where("status = ? AND due_date < ?", finance.StatusPending, shared.TruncateDay(day)).
		Order("due_date ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Save creates or updates a payable
func (r *GormPayableRepository) Save(ctx context.Context, p *finance.Payable) error {
	return translate(r.db.WithContext(ctx).Save(p).Error)
}

// SaveWithLock updates a payable only if the stored version matches
func (r *GormPayableRepository) SaveWithLock(ctx context.Context, p *finance.Payable) error {
	return saveEntryWithLock(r.db.WithContext(ctx), &finance.Payable{}, p.ID, &p.TenantAggregateRoot, p)
}

// SumSettledByDRE sums original amounts of settled payables per DRE code, by paid date
func (r *GormPayableRepository) SumSettledByDRE(ctx context.Context, tenantID uuid.UUID, period shared.Period, codes []int) (map[int]decimal.Decimal, error) {
	return sumSettledByDRE(r.db.WithContext(ctx).Model(&finance.Payable{}), tenantID, period, codes)
}

func applyEntryFilter(query *gorm.DB, filter finance.EntryFilter) *gorm.DB {
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.CounterpartyID != nil {
		query = query.Where("counterparty_id = ?", *filter.CounterpartyID)
	}
	if filter.DueFrom != nil {
		query = query.Where("due_date >= ?", shared.TruncateDay(*filter.DueFrom))
	}
	if filter.DueTo != nil {
		query = query.Where("due_date <= ?", shared.TruncateDay(*filter.DueTo))
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("number LIKE ? OR description LIKE ? OR counterparty_name LIKE ?", like, like, like)
	}
	return query
}

// saveEntryWithLock writes a receivable or payable guarded by its version.
// root is the aggregate header embedded in entry.
func saveEntryWithLock(db *gorm.DB, model any, id uuid.UUID, root *shared.TenantAggregateRoot, entry any) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := checkVersion(tx, model, id, root.Version); err != nil {
			return err
		}

		expected := root.Version
		root.Version++
		root.UpdatedAt = time.Now()

		result := tx.Model(model).
			Where("id = ? AND version = ?", id, expected).
			Omit(clause.Associations, "id", "tenant_id", "created_at", "created_by").
			Select("*").
			Updates(entry)
		if result.Error != nil {
			return translate(result.Error)
		}
		if result.RowsAffected == 0 {
			return shared.ErrOptimisticLock.WithDetail("id", id.String())
		}
		return nil
	})
}

func sumSettledByDRE(query *gorm.DB, tenantID uuid.UUID, period shared.Period, codes []int) (map[int]decimal.Decimal, error) {
	out := make(map[int]decimal.Decimal)
	if len(codes) == 0 {
		return out, nil
	}
	var rows []struct {
		DRECode int `gorm:"column:dre_code"`
		Total   decimal.Decimal
	}
	err := query.
		Select("dre_code, SUM(original_amount) AS total").
		Scopes(forTenant(tenantID)).
		Where("status = ? AND dre_code IN ?", finance.StatusSettled, codes).
		Where("paid_date >= ? AND paid_date < ?", period.Start, period.EndExclusive()).
		Group("dre_code").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.DRECode] = row.Total
	}
	return out, nil
}

// GormCashFlowRepository implements CashFlowRepository using GORM
type GormCashFlowRepository struct {
	db *gorm.DB
}

// NewGormCashFlowRepository creates a new GormCashFlowRepository
func NewGormCashFlowRepository(db *gorm.DB) *GormCashFlowRepository {
	return &GormCashFlowRepository{db: db}
}

// Create records a cash flow entry
func (r *GormCashFlowRepository) Create(ctx context.Context, entry *finance.CashFlowEntry) error {
	return translate(r.db.WithContext(ctx).Create(entry).Error)
}

// FindByPeriod returns the entries dated within the period in date order
func (r *GormCashFlowRepository) FindByPeriod(ctx context.Context, tenantID uuid.UUID, period shared.Period) ([]finance.CashFlowEntry, error) {
	var entries []finance.CashFlowEntry
	if err := r.db.WithContext(ctx).Scopes(forTenant(tenantID)).
		Where("date >= ? AND date < ?", period.Start, period.EndExclusive()).
		Order("date ASC, created_at ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// GormDRECategoryRepository implements DRECategoryRepository using GORM
type GormDRECategoryRepository struct {
	db *gorm.DB
}

// NewGormDRECategoryRepository creates a new GormDRECategoryRepository
func NewGormDRECategoryRepository(db *gorm.DB) *GormDRECategoryRepository {
	return &GormDRECategoryRepository{db: db}
}

// FindAll returns every category in display order
func (r *GormDRECategoryRepository) FindAll(ctx context.Context) ([]finance.DRECategory, error) {
	var categories []finance.DRECategory
	if err := r.db.WithContext(ctx).Order("display_order ASC, code ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// Seed inserts the given categories, leaving existing codes untouched
func (r *GormDRECategoryRepository) Seed(ctx context.Context, categories []finance.DRECategory) error {
	if len(categories) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "code"}}, DoNothing: true}).
		Create(&categories).Error
}

var (
	_ finance.ReceivableRepository  = (*GormReceivableRepository)(nil)
	_ finance.PayableRepository     = (*GormPayableRepository)(nil)
	_ finance.CashFlowRepository    = (*GormCashFlowRepository)(nil)
	_ finance.DRECategoryRepository = (*GormDRECategoryRepository)(nil)
)

// GormOpenEntryTenants lists tenants holding pending receivables or payables
// due before a day. It feeds the nightly overdue sweep.
type GormOpenEntryTenants struct {
	db *gorm.DB
}

// NewGormOpenEntryTenants creates a new GormOpenEntryTenants
func NewGormOpenEntryTenants(db *gorm.DB) *GormOpenEntryTenants {
	return &GormOpenEntryTenants{db: db}
}

// Tenants returns the distinct tenant IDs with entries due before day, in no particular order
func (r *GormOpenEntryTenants) Tenants(ctx context.Context, before time.Time) ([]uuid.UUID, error) {
	seen := make(map[uuid.UUID]struct{})
	for _, model := range []any{&finance.Receivable{}, &finance.Payable{}} {
		var ids []uuid.UUID
		if err := r.db.WithContext(ctx).Model(model).
			Where("status = ? AND due_date < ?", finance.StatusPending, before).
			Distinct("tenant_id").
			Pluck("tenant_id", &ids).Error; err != nil {
			return nil, err
		}
		for _, id := range ids {
			seen[id] = struct{}{}
		}
	}

	tenants := make([]uuid.UUID, 0, len(seen))
	for id := range seen {
		tenants = append(tenants, id)
	}
	return tenants, nil
}
