package report

import (
	"context"
	"testing"
	"time"

	"github.com/erp/retail/internal/domain/catalog"
	"github.com/erp/retail/internal/domain/finance"
	"github.com/erp/retail/internal/domain/shared"
	"github.com/erp/retail/internal/domain/trade"
	"github.com/erp/retail/internal/infrastructure/persistence"
	"github.com/erp/retail/tests/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func march(day int) time.Time {
	return time.Date(2026, time.March, day, 12, 0, 0, 0, time.UTC)
}

func seedCompletedSale(t *testing.T, db *gorm.DB, actor shared.Actor, qty, price, cost string, soldAt time.Time) {
	t.Helper()
	ctx := context.Background()
	product, err := catalog.NewProduct(actor.TenantID, "P-"+uuid.NewString()[:8], "Produto", "UN")
	require.NoError(t, err)
	require.NoError(t, product.SetPrices(dec(cost), dec(price)))
	require.NoError(t, persistence.NewGormProductRepository(db).Save(ctx, product))

	sale, err := trade.NewSale(actor, "SALE-"+uuid.NewString()[:6], trade.SaleKindSale, uuid.New(), "Cliente")
	require.NoError(t, err)
	line, err := trade.NewProductLine(product, trade.LineValues{Quantity: dec(qty), UnitPrice: dec(price)})
	require.NoError(t, err)
	_, err = sale.AddLine(line)
	require.NoError(t, err)
	require.NoError(t, sale.CompleteCheckout(actor, uuid.New(), uuid.New()))
	sale.SoldAt = soldAt
	require.NoError(t, persistence.NewGormSaleRepository(db).Save(ctx, sale))
}

func seedPaidPayable(t *testing.T, db *gorm.DB, actor shared.Actor, code int, amount string, paid time.Time) {
	t.Helper()
	p, err := finance.NewPayable(actor, finance.EntryParams{
		Number:      "CP-" + uuid.NewString()[:6],
		Description: "Despesa",
		DRECode:     &code,
		Amount:      dec(amount),
		DueDate:     paid,
	})
	require.NoError(t, err)
	_, err = p.Pay(finance.SettleCommand{PaidDate: paid})
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormPayableRepository(db).Save(context.Background(), p))
}

func TestDREService_Monthly(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	svc := NewDREService(persistence.NewGormTransactionScope(db), nil)
	actor := testutil.NewActor("Contador")

	seedCompletedSale(t, db, actor, "100", "100.00", "30.00", march(10))
	seedPaidPayable(t, db, actor, finance.DRESalesTaxes, "500", march(15))
	seedPaidPayable(t, db, actor, finance.DREAdministrative, "2000", march(20))
	// outside the period
	seedPaidPayable(t, db, actor, finance.DREAdministrative, "999", time.Date(2026, time.April, 2, 12, 0, 0, 0, time.UTC))

	stmt, err := svc.Monthly(context.Background(), actor.TenantID, 2026, time.March)
	require.NoError(t, err)

	assert.True(t, dec("10000").Equal(stmt.GrossRevenue), stmt.GrossRevenue.String())
	assert.True(t, dec("500").Equal(stmt.Deductions), stmt.Deductions.String())
	assert.True(t, dec("9500").Equal(stmt.NetRevenue))
	assert.True(t, dec("3000").Equal(stmt.Costs), stmt.Costs.String())
	assert.True(t, dec("6500").Equal(stmt.GrossProfit))
	assert.True(t, dec("2000").Equal(stmt.OperatingExpenses))
	assert.True(t, dec("4500").Equal(stmt.NetIncome), stmt.NetIncome.String())
	assert.True(t, dec("45").Equal(stmt.NetMargin), stmt.NetMargin.String())
}

func TestDREService_Annual(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	svc := NewDREService(persistence.NewGormTransactionScope(db), nil)
	actor := testutil.NewActor("Contador")

	seedCompletedSale(t, db, actor, "10", "100.00", "40.00", march(5))
	seedCompletedSale(t, db, actor, "10", "100.00", "40.00", time.Date(2026, time.July, 5, 12, 0, 0, 0, time.UTC))

	annual, err := svc.Annual(context.Background(), actor.TenantID, 2026)
	require.NoError(t, err)
	require.Len(t, annual.Months, 12)
	assert.True(t, dec("600").Equal(annual.Months[2].NetIncome))
	assert.True(t, annual.Months[3].NetIncome.IsZero())
	assert.True(t, dec("2000").Equal(annual.Total.GrossRevenue))
	assert.True(t, dec("1200").Equal(annual.Total.NetIncome))
	assert.True(t, dec("60").Equal(annual.Total.NetMargin))
}

func TestDREService_Validation(t *testing.T) {
	svc := NewDREService(persistence.NewGormTransactionScope(testutil.NewSQLiteDB(t)), nil)
	ctx := context.Background()
	tenantID := uuid.New()

	_, err := svc.Monthly(ctx, tenantID, 1999, time.January)
	assert.True(t, shared.IsDomainError(err, shared.CodeValidation))

	_, err = svc.Monthly(ctx, tenantID, 2026, time.Month(13))
	assert.True(t, shared.IsDomainError(err, shared.CodeValidation))

	_, err = svc.Annual(ctx, tenantID, 2200)
	assert.True(t, shared.IsDomainError(err, shared.CodeValidation))

	empty, err := svc.Monthly(ctx, tenantID, 2026, time.March)
	require.NoError(t, err)
	assert.True(t, empty.NetIncome.IsZero())
	assert.True(t, empty.NetMargin.IsZero())
}

func TestDREService_StatementAcrossMonths(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	svc := NewDREService(persistence.NewGormTransactionScope(db), nil)
	actor := testutil.NewActor("Contador")
	april := func(day int) time.Time { return time.Date(2026, time.April, day, 12, 0, 0, 0, time.UTC) }

	seedCompletedSale(t, db, actor, "10", "100.00", "40.00", march(25))
	seedCompletedSale(t, db, actor, "10", "100.00", "40.00", april(5))
	seedPaidPayable(t, db, actor, finance.DREAdministrative, "300", april(10))
	// outside the range on both sides
	seedCompletedSale(t, db, actor, "10", "100.00", "40.00", march(10))
	seedPaidPayable(t, db, actor, finance.DREAdministrative, "999", april(11))

	period, err := shared.NewPeriod(march(20), april(10))
	require.NoError(t, err)
	stmt, err := svc.Statement(context.Background(), actor.TenantID, period)
	require.NoError(t, err)

	assert.True(t, dec("2000").Equal(stmt.GrossRevenue), stmt.GrossRevenue.String())
	assert.True(t, dec("800").Equal(stmt.Costs), stmt.Costs.String())
	assert.True(t, dec("300").Equal(stmt.OperatingExpenses), stmt.OperatingExpenses.String())
	assert.True(t, dec("900").Equal(stmt.NetIncome), stmt.NetIncome.String())
	assert.True(t, dec("45").Equal(stmt.NetMargin), stmt.NetMargin.String())

	t.Run("a single month matches the monthly statement", func(t *testing.T) {
		monthly, err := svc.Monthly(context.Background(), actor.TenantID, 2026, time.March)
		require.NoError(t, err)
		byRange, err := svc.Statement(context.Background(), actor.TenantID, shared.MonthPeriod(2026, time.March))
		require.NoError(t, err)
		assert.True(t, monthly.NetIncome.Equal(byRange.NetIncome))
		assert.True(t, dec("1200").Equal(byRange.NetIncome), byRange.NetIncome.String())
	})

	t.Run("rejects malformed ranges", func(t *testing.T) {
		_, err := svc.Statement(context.Background(), actor.TenantID, shared.Period{})
		assert.True(t, shared.IsDomainError(err, shared.CodeValidation))

		_, err = svc.Statement(context.Background(), actor.TenantID, shared.Period{Start: april(10), End: march(20)})
		assert.True(t, shared.IsDomainError(err, shared.CodeValidation))
	})
}
