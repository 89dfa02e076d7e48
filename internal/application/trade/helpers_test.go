package trade

import (
	"context"
	"testing"

	inventoryapp "github.com/erp/retail/internal/application/inventory"
	"github.com/erp/retail/internal/application/txn"
	"github.com/erp/retail/internal/domain/cashier"
	"github.com/erp/retail/internal/domain/catalog"
	"github.com/erp/retail/internal/domain/inventory"
	"github.com/erp/retail/internal/domain/shared"
	"github.com/erp/retail/internal/infrastructure/persistence"
	"github.com/erp/retail/tests/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type tradeFixture struct {
	db        *gorm.DB
	scope     txn.TransactionScope
	ledger    *inventoryapp.Ledger
	publisher *testutil.EventRecorder
	actor     shared.Actor
}

func newTradeFixture(t *testing.T) *tradeFixture {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	publisher := testutil.NewEventRecorder()
	return &tradeFixture{
		db:        db,
		scope:     persistence.NewGormTransactionScope(db),
		ledger:    inventoryapp.NewLedger(publisher, nil),
		publisher: publisher,
		actor:     testutil.NewActor("Vendedor"),
	}
}

// product creates a catalog product and books the opening stock as an entry
func (f *tradeFixture) product(t *testing.T, price, cost, stock string) *catalog.Product {
	t.Helper()
	ctx := context.Background()
	p, err := catalog.NewProduct(f.actor.TenantID, "P-"+uuid.NewString()[:8], "Produto de teste", "UN")
	require.NoError(t, err)
	require.NoError(t, p.SetPrices(dec(cost), dec(price)))
	require.NoError(t, persistence.NewGormProductRepository(f.db).Save(ctx, p))

	if dec(stock).IsPositive() {
		err = f.scope.Execute(ctx, func(repos txn.Repositories) error {
			_, _, err := f.ledger.Post(ctx, repos, f.actor, p.ID, inventory.MovementRequest{
				Kind:      inventory.MovementEntry,
				Quantity:  dec(stock),
				UnitValue: dec(cost),
				Document:  inventory.ManualDocument("ABERTURA"),
			})
			return err
		})
		require.NoError(t, err)
	}
	return p
}

func (f *tradeFixture) onHand(t *testing.T, productID uuid.UUID) decimal.Decimal {
	t.Helper()
	p, err := persistence.NewGormProductRepository(f.db).FindByIDForTenant(context.Background(), f.actor.TenantID, productID)
	require.NoError(t, err)
	return p.OnHandQuantity
}

func (f *tradeFixture) openDrawer(t *testing.T, float string) *cashier.DrawerSession {
	t.Helper()
	session, err := cashier.OpenSession(f.actor, 1, dec(float), "")
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormDrawerRepository(f.db).Create(context.Background(), session))
	return session
}

func (f *tradeFixture) drawer(t *testing.T, id uuid.UUID) *cashier.DrawerSession {
	t.Helper()
	session, err := persistence.NewGormDrawerRepository(f.db).FindByIDForTenant(context.Background(), f.actor.TenantID, id)
	require.NoError(t, err)
	return session
}

func (f *tradeFixture) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(model).Where("tenant_id = ?", f.actor.TenantID).Count(&n).Error)
	return n
}

func lineFor(p *catalog.Product, qty string) LineInput {
	id := p.ID
	return LineInput{ProductID: &id, Quantity: dec(qty)}
}
