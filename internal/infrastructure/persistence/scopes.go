package persistence

import (
	"errors"

	"github.com/erp/retail/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// forTenant restricts a query to one tenant
func forTenant(tenantID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("tenant_id = ?", tenantID)
	}
}

// paginate applies the filter ordering and page window. Sort fields are
// checked against the allowed set before they reach the SQL.
func paginate(filter shared.Filter, allowed map[string]bool, defaultField string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		field := ValidateSortField(filter.OrderBy, allowed, defaultField)
		dir := ValidateSortOrder(filter.OrderDir)
		return db.Order(field + " " + dir).Offset(filter.Offset()).Limit(filter.Limit())
	}
}

// translate maps driver errors onto domain errors
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return shared.ErrAlreadyExists
	default:
		return err
	}
}

// countRows counts the rows of a query while leaving it usable for the page fetch
func countRows(query *gorm.DB) (int64, error) {
	var total int64
	err := query.Session(&gorm.Session{}).Count(&total).Error
	return total, err
}

// checkVersion compares the stored version of a row with the one the caller loaded
func checkVersion(tx *gorm.DB, model any, id uuid.UUID, version int) error {
	var current int
	result := tx.Model(model).Where("id = ?", id).Select("version").Scan(&current)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound.WithDetail("id", id.String())
	}
	if current != version {
		return shared.ErrOptimisticLock.
			WithDetail("id", id.String()).
			WithDetail("expected_version", version).
			WithDetail("current_version", current)
	}
	return nil
}

func orZero(d decimal.NullDecimal) decimal.Decimal {
	if !d.Valid {
		return decimal.Zero
	}
	return d.Decimal
}
