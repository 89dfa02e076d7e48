package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/erp/retail/internal/domain/catalog"
	"github.com/erp/retail/internal/domain/shared"
	"github.com/erp/retail/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// newTestDB opens an in-memory sqlite database with the full schema
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	database, err := NewDatabase(&config.DatabaseConfig{
		Driver: config.DriverSQLite,
		Path:   ":memory:",
	})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(database.DB))
	t.Cleanup(func() { _ = database.Close() })
	return database.DB
}

func newTestActor() shared.Actor {
	return shared.NewActor(uuid.New(), uuid.New(), "tester")
}

func createTestProduct(t *testing.T, db *gorm.DB, tenantID uuid.UUID, code string, price float64) *catalog.Product {
	t.Helper()
	product, err := catalog.NewProduct(tenantID, code, "Product "+code, "UN")
	require.NoError(t, err)
	require.NoError(t, product.SetPrices(decimal.NewFromFloat(price/2), decimal.NewFromFloat(price)))
	require.NoError(t, NewGormProductRepository(db).Save(context.Background(), product))
	return product
}

func utcDay(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 12, 0, 0, 0, time.UTC)
}
