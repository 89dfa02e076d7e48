//go:build integration

package integration

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	financeapp "github.com/erp/retail/internal/application/finance"
	inventoryapp "github.com/erp/retail/internal/application/inventory"
	reportapp "github.com/erp/retail/internal/application/report"
	tradeapp "github.com/erp/retail/internal/application/trade"
	"github.com/erp/retail/internal/application/txn"
	"github.com/erp/retail/internal/domain/cashier"
	"github.com/erp/retail/internal/domain/catalog"
	"github.com/erp/retail/internal/domain/finance"
	"github.com/erp/retail/internal/domain/inventory"
	"github.com/erp/retail/internal/domain/partner"
	"github.com/erp/retail/internal/domain/shared"
	"github.com/erp/retail/internal/infrastructure/persistence"
	"github.com/erp/retail/tests/testutil"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type stack struct {
	db        *TestDB
	scope     *persistence.GormTransactionScope
	ledger    *inventoryapp.Ledger
	checkout  *tradeapp.CheckoutService
	purchases *tradeapp.PurchaseService
	dre       *reportapp.DREService
	actor     shared.Actor
}

func newStack(t *testing.T) *stack {
	t.Helper()
	db := NewTestDB(t)
	scope := persistence.NewGormTransactionScope(db.DB)
	ledger := inventoryapp.NewLedger(nil, nil)

	require.NoError(t, financeapp.NewDRECategoryService(persistence.NewGormDRECategoryRepository(db.DB)).Seed(context.Background()))

	opts := tradeapp.DefaultOptions()
	opts.CreatePayableOnReceipt = true
	return &stack{
		db:        db,
		scope:     scope,
		ledger:    ledger,
		checkout:  tradeapp.NewCheckoutService(scope, ledger, opts, nil),
		purchases: tradeapp.NewPurchaseService(scope, ledger, persistence.NewGormPurchaseOrderRepository(db.DB), opts, nil),
		dre:       reportapp.NewDREService(scope, nil),
		actor:     testutil.NewActor("Gerente"),
	}
}

func (s *stack) product(t *testing.T, code, price, cost string) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(s.actor.TenantID, code, "Produto "+code, "UN")
	require.NoError(t, err)
	require.NoError(t, p.SetPrices(dec(cost), dec(price)))
	require.NoError(t, persistence.NewGormProductRepository(s.db.DB).Save(context.Background(), p))
	return p
}

func (s *stack) onHand(t *testing.T, id uuid.UUID) decimal.Decimal {
	t.Helper()
	p, err := persistence.NewGormProductRepository(s.db.DB).FindByIDForTenant(context.Background(), s.actor.TenantID, id)
	require.NoError(t, err)
	return p.OnHandQuantity
}

func (s *stack) openDrawer(t *testing.T) *cashier.DrawerSession {
	t.Helper()
	session, err := cashier.OpenSession(s.actor, 1, dec("100"), "")
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormDrawerRepository(s.db.DB).Create(context.Background(), session))
	return session
}

func TestPostgres_PurchaseReceiptThenCheckout(t *testing.T) {
	ctx := context.Background()
	s := newStack(t)

	supplier, err := partner.NewSupplier(s.actor.TenantID, "F001", "Distribuidora Central")
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormSupplierRepository(s.db.DB).Save(ctx, supplier))
	product := s.product(t, "RACAO-10", "30.00", "12.00")

	order, err := s.purchases.Create(ctx, s.actor, tradeapp.CreatePurchaseOrderRequest{
		SupplierID: supplier.ID,
		Lines:      []tradeapp.PurchaseLineInput{{ProductID: product.ID, Quantity: dec("10")}},
	})
	require.NoError(t, err)
	assert.Equal(t, "PC000001", order.Number)

	_, err = s.purchases.Approve(ctx, s.actor, order.ID)
	require.NoError(t, err)
	received, err := s.purchases.ReceiveGoods(ctx, s.actor, order.ID, tradeapp.ReceiveGoodsRequest{
		Lines: []tradeapp.ReceiveLineInput{{ProductID: product.ID, Quantity: dec("10")}},
	})
	require.NoError(t, err)
	assert.Equal(t, "received", received.Status)
	require.NotNil(t, received.PayableID)
	assert.True(t, dec("10").Equal(s.onHand(t, product.ID)))

	payable, err := persistence.NewGormPayableRepository(s.db.DB).FindByIDForTenant(ctx, s.actor.TenantID, *received.PayableID)
	require.NoError(t, err)
	assert.Equal(t, finance.StatusPending, payable.Status)
	assert.True(t, dec("120").Equal(payable.OriginalAmount))

	session := s.openDrawer(t)
	id := product.ID
	receipt, err := s.checkout.Checkout(ctx, s.actor, tradeapp.CheckoutRequest{
		DrawerSessionID: session.ID,
		Lines:           []tradeapp.LineInput{{ProductID: &id, Quantity: dec("2")}},
		Tendered:        dec("100"),
	})
	require.NoError(t, err)
	assert.Equal(t, "SALE000001", receipt.Number)
	assert.True(t, dec("40").Equal(receipt.Change))
	assert.True(t, dec("8").Equal(s.onHand(t, product.ID)))

	movements, err := persistence.NewGormMovementRepository(s.db.DB).FindByDocument(ctx, s.actor.TenantID, inventory.DocumentTypePurchaseOrder, order.Number)
	require.NoError(t, err)
	assert.Len(t, movements, 1)

	now := time.Now()
	statement, err := s.dre.Monthly(ctx, s.actor.TenantID, now.Year(), now.Month())
	require.NoError(t, err)
	assert.True(t, dec("60").Equal(statement.SalesRevenue))
}

func TestPostgres_ConcurrentCheckoutsKeepStockAndDrawerConsistent(t *testing.T) {
	ctx := context.Background()
	s := newStack(t)
	product := s.product(t, "COLEIRA", "10.00", "4.00")
	require.NoError(t, s.scope.Execute(ctx, func(repos txn.Repositories) error {
		_, _, err := s.ledger.Post(ctx, repos, s.actor, product.ID, inventory.MovementRequest{
			Kind:      inventory.MovementEntry,
			Quantity:  dec("3"),
			UnitValue: dec("4.00"),
			Document:  inventory.ManualDocument("ABERTURA"),
		})
		return err
	}))
	session := s.openDrawer(t)

	const attempts = 6
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		numbers = map[string]bool{}
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := product.ID
			receipt, err := s.checkout.Checkout(ctx, s.actor, tradeapp.CheckoutRequest{
				DrawerSessionID: session.ID,
				Lines:           []tradeapp.LineInput{{ProductID: &id, Quantity: dec("1")}},
				Tendered:        dec("10"),
			})
			if err != nil {
				return
			}
			mu.Lock()
			numbers[receipt.Number] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	sold := len(numbers)
	assert.LessOrEqual(t, sold, 3, "never sells more than the stock on hand")
	assert.True(t, decimal.NewFromInt(int64(3-sold)).Equal(s.onHand(t, product.ID)))

	drawer, err := persistence.NewGormDrawerRepository(s.db.DB).FindByIDForTenant(ctx, s.actor.TenantID, session.ID)
	require.NoError(t, err)
	assert.Equal(t, sold, drawer.SalesCount)
	assert.True(t, decimal.NewFromInt(int64(10*sold)).Equal(drawer.SalesTotal))
}

func TestPostgres_FullyDiscountedCheckoutCommits(t *testing.T) {
	ctx := context.Background()
	s := newStack(t)
	product := s.product(t, "BRINDE", "30.00", "12.00")
	require.NoError(t, s.scope.Execute(ctx, func(repos txn.Repositories) error {
		_, _, err := s.ledger.Post(ctx, repos, s.actor, product.ID, inventory.MovementRequest{
			Kind:      inventory.MovementEntry,
			Quantity:  dec("5"),
			UnitValue: dec("12.00"),
			Document:  inventory.ManualDocument("ABERTURA"),
		})
		return err
	}))
	session := s.openDrawer(t)

	id := product.ID
	receipt, err := s.checkout.Checkout(ctx, s.actor, tradeapp.CheckoutRequest{
		DrawerSessionID: session.ID,
		Lines:           []tradeapp.LineInput{{ProductID: &id, Quantity: dec("2")}},
		Discount:        dec("60"),
	})
	require.NoError(t, err)
	assert.True(t, receipt.Total.IsZero())
	assert.True(t, dec("3").Equal(s.onHand(t, product.ID)))

	receivable, err := persistence.NewGormReceivableRepository(s.db.DB).FindByIDForTenant(ctx, s.actor.TenantID, receipt.ReceivableID)
	require.NoError(t, err)
	assert.Equal(t, finance.StatusSettled, receivable.Status)
	assert.True(t, receivable.OriginalAmount.IsZero())
}

func TestPostgres_DocumentNumbersAreUniqueUnderConcurrency(t *testing.T) {
	ctx := context.Background()
	db := NewTestDB(t)
	numberer := persistence.NewGormDocumentNumberer(db.DB)
	tenantID := uuid.New()

	const workers = 20
	results := make(chan string, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := numberer.Next(ctx, tenantID, shared.DocumentSale)
			if assert.NoError(t, err) {
				results <- n
			}
		}()
	}
	wg.Wait()
	close(results)

	seen := map[string]bool{}
	for n := range results {
		assert.False(t, seen[n], "duplicate number %s", n)
		seen[n] = true
	}
	assert.Len(t, seen, workers)
	assert.True(t, seen[shared.FormatDocumentNumber(shared.DocumentSale, workers)])

	current, err := numberer.Current(ctx, tenantID, shared.DocumentSale)
	require.NoError(t, err)
	assert.Equal(t, int64(workers), current)
}
