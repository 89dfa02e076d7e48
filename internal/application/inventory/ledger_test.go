package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/erp/retail/internal/application/txn"
	"github.com/erp/retail/internal/domain/catalog"
	"github.com/erp/retail/internal/domain/inventory"
	"github.com/erp/retail/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type ledgerFixture struct {
	products  *MockProductRepository
	movements *MockMovementRepository
	batches   *MockBatchRepository
	publisher *MockEventPublisher
	scope     *txn.NoOpTransactionScope
	ledger    *Ledger
	actor     shared.Actor
}

func newLedgerFixture() *ledgerFixture {
	f := &ledgerFixture{
		products:  new(MockProductRepository),
		movements: new(MockMovementRepository),
		batches:   new(MockBatchRepository),
		publisher: &MockEventPublisher{},
		actor:     shared.NewActor(uuid.New(), uuid.New(), "Estoquista"),
	}
	f.scope = txn.NewNoOpTransactionScope(&txn.StaticRepositories{
		ProductRepo:  f.products,
		MovementRepo: f.movements,
		BatchRepo:    f.batches,
	})
	f.ledger = NewLedger(f.publisher, nil)
	return f
}

func (f *ledgerFixture) product(t *testing.T, onHand, minStock string) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(f.actor.TenantID, "P"+uuid.NewString()[:6], "Filtro de óleo", "UN")
	require.NoError(t, err)
	require.NoError(t, p.SetMinStock(decimal.RequireFromString(minStock)))
	p.ApplyLedgerQuantity(decimal.RequireFromString(onHand))
	f.products.On("FindByIDForUpdate", mock.Anything, f.actor.TenantID, p.ID).Return(p, nil)
	return p
}

func TestSortIDs(t *testing.T) {
	a := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	b := uuid.MustParse("00000000-0000-0000-0000-000000000002")
	c := uuid.MustParse("10000000-0000-0000-0000-000000000000")

	assert.Equal(t, []uuid.UUID{a, b, c}, SortIDs([]uuid.UUID{c, a, b, a, c}))
	assert.Empty(t, SortIDs(nil))
}

func TestLedger_PostExit(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture()
	p := f.product(t, "10", "8")
	f.movements.On("Create", ctx, mock.AnythingOfType("*inventory.StockMovement")).Return(nil)
	f.products.On("UpdateOnHand", ctx, p).Return(nil)
	f.batches.On("FindAvailable", ctx, f.actor.TenantID, p.ID).Return([]*inventory.StockBatch{}, nil)

	req := inventory.MovementRequest{
		Kind:     inventory.MovementExit,
		Quantity: decimal.RequireFromString("3"),
		Document: inventory.ManualDocument("AJ-1"),
	}
	err := f.scope.Execute(ctx, func(repos txn.Repositories) error {
		m, _, err := f.ledger.Post(ctx, repos, f.actor, p.ID, req)
		require.NoError(t, err)
		assert.True(t, decimal.RequireFromString("10").Equal(m.QuantityBefore))
		assert.True(t, decimal.RequireFromString("7").Equal(m.QuantityAfter))
		assert.Equal(t, int64(2), m.Sequence)
		return nil
	})
	require.NoError(t, err)

	assert.True(t, decimal.RequireFromString("7").Equal(p.OnHandQuantity))
	events := f.publisher.GetEventsByType(inventory.EventTypeStockLow)
	require.Len(t, events, 1)
	assert.Equal(t, p.ID, events[0].(*inventory.StockLowEvent).ProductID)
	f.movements.AssertExpectations(t)
	f.products.AssertExpectations(t)
}

func TestLedger_PostInsufficientStock(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture()
	p := f.product(t, "2", "0")

	req := inventory.MovementRequest{
		Kind:     inventory.MovementExit,
		Quantity: decimal.RequireFromString("5"),
		Document: inventory.ManualDocument(""),
	}
	err := f.scope.Execute(ctx, func(repos txn.Repositories) error {
		_, _, err := f.ledger.Post(ctx, repos, f.actor, p.ID, req)
		return err
	})

	assert.True(t, shared.IsDomainError(err, shared.CodeInsufficientStock))
	assert.True(t, decimal.RequireFromString("2").Equal(p.OnHandQuantity))
	f.movements.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.products.AssertNotCalled(t, "UpdateOnHand", mock.Anything, mock.Anything)
}

func TestLedger_PostEntryWithLotCreatesBatch(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture()
	p := f.product(t, "0", "0")
	expiry := time.Date(2027, 1, 31, 0, 0, 0, 0, time.UTC)

	f.movements.On("Create", ctx, mock.Anything).Return(nil)
	f.products.On("UpdateOnHand", ctx, p).Return(nil)
	f.batches.On("FindByLot", ctx, f.actor.TenantID, p.ID, "L-77").Return(nil, shared.ErrNotFound)
	f.batches.On("Save", ctx, mock.MatchedBy(func(b *inventory.StockBatch) bool {
		return b.LotCode == "L-77" && b.Quantity.Equal(decimal.RequireFromString("12")) && b.ExpiryDate.Equal(expiry)
	})).Return(nil)

	req := inventory.MovementRequest{
		Kind:       inventory.MovementEntry,
		Quantity:   decimal.RequireFromString("12"),
		UnitValue:  decimal.RequireFromString("4.50"),
		Document:   inventory.ManualDocument("NF-9"),
		LotCode:    "L-77",
		ExpiryDate: &expiry,
	}
	err := f.scope.Execute(ctx, func(repos txn.Repositories) error {
		_, _, err := f.ledger.Post(ctx, repos, f.actor, p.ID, req)
		return err
	})
	require.NoError(t, err)
	f.batches.AssertExpectations(t)
	assert.Empty(t, f.publisher.GetEventsByType(inventory.EventTypeStockLow))
}

func TestLedger_LockProductsNotFound(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture()
	missing := uuid.New()
	f.products.On("FindByIDForUpdate", ctx, f.actor.TenantID, missing).Return(nil, shared.ErrNotFound)

	err := f.scope.Execute(ctx, func(repos txn.Repositories) error {
		_, err := f.ledger.LockProducts(ctx, repos, f.actor.TenantID, []uuid.UUID{missing})
		return err
	})
	assert.True(t, shared.IsDomainError(err, shared.CodeNotFound))
}

func TestStockService_ReconcileFix(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture()
	p := f.product(t, "9", "0")
	svc := NewStockService(f.scope, f.ledger, f.products, f.movements, f.batches, nil)

	ledger := []inventory.StockMovement{
		{Sequence: 1, Kind: inventory.MovementEntry, Quantity: decimal.RequireFromString("10")},
		{Sequence: 2, Kind: inventory.MovementExit, Quantity: decimal.RequireFromString("2")},
	}
	f.movements.On("FindByProduct", ctx, f.actor.TenantID, p.ID).Return(ledger, nil)
	f.movements.On("Create", ctx, mock.MatchedBy(func(m *inventory.StockMovement) bool {
		return m.DocumentType == inventory.DocumentTypeReconciliation &&
			m.QuantityBefore.Equal(decimal.RequireFromString("8")) &&
			m.QuantityAfter.Equal(decimal.RequireFromString("9"))
	})).Return(nil)
	f.products.On("UpdateOnHand", ctx, p).Return(nil)

	d, err := svc.Reconcile(ctx, f.actor, p.ID, true)
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.True(t, decimal.RequireFromString("1").Equal(d.Difference))
	assert.True(t, decimal.RequireFromString("9").Equal(p.OnHandQuantity))
	f.movements.AssertExpectations(t)
}

func TestStockService_ReconcileClean(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture()
	p := f.product(t, "10", "0")
	svc := NewStockService(f.scope, f.ledger, f.products, f.movements, f.batches, nil)

	f.movements.On("FindByProduct", ctx, f.actor.TenantID, p.ID).Return([]inventory.StockMovement{
		{Sequence: 1, Kind: inventory.MovementEntry, Quantity: decimal.RequireFromString("10")},
	}, nil)

	d, err := svc.Reconcile(ctx, f.actor, p.ID, true)
	require.NoError(t, err)
	assert.Nil(t, d)
	f.movements.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
