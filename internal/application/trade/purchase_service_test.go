package trade

import (
	"context"
	"testing"
	"time"

	"github.com/erp/retail/internal/domain/finance"
	"github.com/erp/retail/internal/domain/inventory"
	"github.com/erp/retail/internal/domain/partner"
	"github.com/erp/retail/internal/domain/shared"
	"github.com/erp/retail/internal/domain/trade"
	"github.com/erp/retail/internal/infrastructure/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *tradeFixture) supplier(t *testing.T) *partner.Supplier {
	t.Helper()
	s, err := partner.NewSupplier(f.actor.TenantID, "F001", "Distribuidora Central")
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormSupplierRepository(f.db).Save(context.Background(), s))
	return s
}

func TestPurchaseService_PartialThenFullReceipt(t *testing.T) {
	ctx := context.Background()
	f := newTradeFixture(t)
	opts := DefaultOptions()
	opts.CreatePayableOnReceipt = true
	svc := NewPurchaseService(f.scope, f.ledger, persistence.NewGormPurchaseOrderRepository(f.db), opts, nil)

	supplier := f.supplier(t)
	product := f.product(t, "20.00", "10.00", "0")

	order, err := svc.Create(ctx, f.actor, CreatePurchaseOrderRequest{
		SupplierID: supplier.ID,
		Lines:      []PurchaseLineInput{{ProductID: product.ID, Quantity: dec("5")}},
	})
	require.NoError(t, err)
	assert.Equal(t, "pending", order.Status)
	assert.Equal(t, "PC000001", order.Number)
	assert.True(t, dec("50").Equal(order.GrandTotal))

	_, err = svc.ReceiveGoods(ctx, f.actor, order.ID, ReceiveGoodsRequest{
		Lines: []ReceiveLineInput{{ProductID: product.ID, Quantity: dec("1")}},
	})
	assert.True(t, shared.IsDomainError(err, shared.CodeInvalidStatusTransition), "pending orders cannot receive")

	_, err = svc.Approve(ctx, f.actor, order.ID)
	require.NoError(t, err)

	partial, err := svc.ReceiveGoods(ctx, f.actor, order.ID, ReceiveGoodsRequest{
		Lines: []ReceiveLineInput{{ProductID: product.ID, Quantity: dec("2")}},
	})
	require.NoError(t, err)
	assert.Equal(t, "approved", partial.Status)
	assert.Nil(t, partial.PayableID)
	assert.True(t, dec("2").Equal(f.onHand(t, product.ID)))

	expiry := time.Date(2027, time.June, 30, 0, 0, 0, 0, time.UTC)
	full, err := svc.ReceiveGoods(ctx, f.actor, order.ID, ReceiveGoodsRequest{
		Lines: []ReceiveLineInput{{ProductID: product.ID, Quantity: dec("3"), LotCode: "L-9", ExpiryDate: &expiry}},
	})
	require.NoError(t, err)
	assert.Equal(t, "received", full.Status)
	assert.True(t, dec("5").Equal(f.onHand(t, product.ID)))
	require.NotNil(t, full.PayableID)

	payable, err := persistence.NewGormPayableRepository(f.db).FindByIDForTenant(ctx, f.actor.TenantID, *full.PayableID)
	require.NoError(t, err)
	assert.Equal(t, finance.StatusPending, payable.Status)
	assert.True(t, dec("50").Equal(payable.OriginalAmount))
	assert.Equal(t, finance.SourcePurchaseOrder, payable.SourceType)

	batch, err := persistence.NewGormBatchRepository(f.db).FindByLot(ctx, f.actor.TenantID, product.ID, "L-9")
	require.NoError(t, err)
	assert.True(t, dec("3").Equal(batch.Quantity))

	movements, err := persistence.NewGormMovementRepository(f.db).FindByDocument(ctx, f.actor.TenantID, inventory.DocumentTypePurchaseOrder, order.Number)
	require.NoError(t, err)
	assert.Len(t, movements, 2)
	assert.Equal(t, 2, f.publisher.Count(trade.EventTypePurchaseOrderReceived))

	_, err = svc.Cancel(ctx, f.actor, order.ID, CancelRequest{Reason: "tarde demais"})
	assert.Error(t, err)
}

func TestPurchaseService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	f := newTradeFixture(t)
	svc := NewPurchaseService(f.scope, f.ledger, persistence.NewGormPurchaseOrderRepository(f.db), DefaultOptions(), nil)
	supplier := f.supplier(t)
	a := f.product(t, "20.00", "10.00", "0")
	b := f.product(t, "8.00", "3.00", "0")

	order, err := svc.Create(ctx, f.actor, CreatePurchaseOrderRequest{
		SupplierID: supplier.ID,
		Lines:      []PurchaseLineInput{{ProductID: a.ID, Quantity: dec("1")}},
		Freight:    dec("7"),
	})
	require.NoError(t, err)

	withB, err := svc.AddLine(ctx, f.actor, order.ID, PurchaseLineInput{ProductID: b.ID, Quantity: dec("4")})
	require.NoError(t, err)
	require.Len(t, withB.Lines, 2)
	assert.True(t, dec("29").Equal(withB.GrandTotal))

	withoutB, err := svc.RemoveLine(ctx, f.actor, order.ID, withB.Lines[1].ID)
	require.NoError(t, err)
	assert.Len(t, withoutB.Lines, 1)

	_, err = svc.Approve(ctx, f.actor, order.ID)
	require.NoError(t, err)
	eta := time.Now().AddDate(0, 0, 3)
	dispatched, err := svc.Dispatch(ctx, f.actor, order.ID, DispatchPurchaseOrderRequest{ExpectedDelivery: &eta})
	require.NoError(t, err)
	assert.Equal(t, "in_transit", dispatched.Status)

	cancelled, err := svc.Cancel(ctx, f.actor, order.ID, CancelRequest{Reason: "fornecedor sem estoque"})
	require.NoError(t, err)
	assert.Equal(t, "cancelled", cancelled.Status)

	list, total, err := svc.List(ctx, f.actor.TenantID, shared.Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, list, 1)
}
