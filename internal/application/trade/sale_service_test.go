package trade

import (
	"context"
	"testing"

	"github.com/erp/retail/internal/domain/finance"
	"github.com/erp/retail/internal/domain/shared"
	"github.com/erp/retail/internal/domain/trade"
	"github.com/erp/retail/internal/infrastructure/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSaleService(f *tradeFixture) *SaleService {
	return NewSaleService(f.scope, f.ledger, persistence.NewGormSaleRepository(f.db), DefaultOptions(), nil)
}

func TestSaleService_QuoteToInvoiceToCancel(t *testing.T) {
	ctx := context.Background()
	f := newTradeFixture(t)
	svc := newTestSaleService(f)
	product := f.product(t, "25.00", "10.00", "10")

	created, err := svc.Create(ctx, f.actor, CreateSaleRequest{
		Kind:    "quote",
		Lines:   []LineInput{lineFor(product, "3")},
		Freight: dec("5"),
	})
	require.NoError(t, err)
	assert.Equal(t, "quote", created.Status)
	assert.Equal(t, "SALE000001", created.Number)
	assert.True(t, dec("80").Equal(created.GrandTotal))
	assert.True(t, dec("10").Equal(f.onHand(t, product.ID)), "quotes do not move stock")

	_, err = svc.Invoice(ctx, f.actor, created.ID, InvoiceSaleRequest{})
	assert.True(t, shared.IsDomainError(err, shared.CodeInvalidStatusTransition))

	approved, err := svc.Approve(ctx, f.actor, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "approved", approved.Status)

	invoiced, err := svc.Invoice(ctx, f.actor, created.ID, InvoiceSaleRequest{})
	require.NoError(t, err)
	assert.Equal(t, "invoiced", invoiced.Status)
	assert.True(t, dec("7").Equal(f.onHand(t, product.ID)))

	receivables, err := persistence.NewGormReceivableRepository(f.db).FindBySource(ctx, f.actor.TenantID, finance.SourceSale, created.ID)
	require.NoError(t, err)
	require.Len(t, receivables, 1)
	assert.Equal(t, finance.StatusPending, receivables[0].Status)
	assert.True(t, dec("80").Equal(receivables[0].OriginalAmount))

	cancelled, err := svc.Cancel(ctx, f.actor, created.ID, CancelRequest{Reason: "cliente desistiu"})
	require.NoError(t, err)
	assert.Equal(t, "cancelled", cancelled.Status)
	assert.True(t, dec("10").Equal(f.onHand(t, product.ID)), "cancelling an invoiced sale returns the stock")

	receivables, err = persistence.NewGormReceivableRepository(f.db).FindBySource(ctx, f.actor.TenantID, finance.SourceSale, created.ID)
	require.NoError(t, err)
	assert.Equal(t, finance.StatusCancelled, receivables[0].Status)
}

func TestSaleService_InvoiceInsufficientStock(t *testing.T) {
	ctx := context.Background()
	f := newTradeFixture(t)
	svc := newTestSaleService(f)
	product := f.product(t, "25.00", "10.00", "2")

	created, err := svc.Create(ctx, f.actor, CreateSaleRequest{Lines: []LineInput{lineFor(product, "5")}})
	require.NoError(t, err)
	_, err = svc.Approve(ctx, f.actor, created.ID)
	require.NoError(t, err)

	_, err = svc.Invoice(ctx, f.actor, created.ID, InvoiceSaleRequest{})
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)

	loaded, err := svc.GetByID(ctx, f.actor.TenantID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "approved", loaded.Status)
	assert.True(t, dec("2").Equal(f.onHand(t, product.ID)))
	assert.Equal(t, int64(0), f.count(t, &finance.Receivable{}))
}

func TestSaleService_LinesAndDelivery(t *testing.T) {
	ctx := context.Background()
	f := newTradeFixture(t)
	svc := newTestSaleService(f)
	a := f.product(t, "10.00", "4.00", "10")
	b := f.product(t, "20.00", "8.00", "10")

	created, err := svc.Create(ctx, f.actor, CreateSaleRequest{Lines: []LineInput{lineFor(a, "1")}})
	require.NoError(t, err)

	withB, err := svc.AddLine(ctx, f.actor, created.ID, lineFor(b, "2"))
	require.NoError(t, err)
	require.Len(t, withB.Lines, 2)
	assert.True(t, dec("50").Equal(withB.GrandTotal))

	updated, err := svc.UpdateLine(ctx, f.actor, created.ID, withB.Lines[0].ID, LineValuesInput{Quantity: dec("3"), UnitPrice: dec("10")})
	require.NoError(t, err)
	assert.True(t, dec("70").Equal(updated.GrandTotal))

	removed, err := svc.RemoveLine(ctx, f.actor, created.ID, withB.Lines[1].ID)
	require.NoError(t, err)
	require.Len(t, removed.Lines, 1)

	adjusted, err := svc.SetAdjustments(ctx, f.actor, created.ID, AdjustmentsRequest{Discount: dec("5")})
	require.NoError(t, err)
	assert.True(t, dec("25").Equal(adjusted.GrandTotal))

	_, err = svc.Approve(ctx, f.actor, created.ID)
	require.NoError(t, err)
	_, err = svc.Invoice(ctx, f.actor, created.ID, InvoiceSaleRequest{})
	require.NoError(t, err)
	delivered, err := svc.Deliver(ctx, f.actor, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "delivered", delivered.Status)
	assert.Equal(t, 1, f.publisher.Count(trade.EventTypeSaleCompleted))

	_, err = svc.AddLine(ctx, f.actor, created.ID, lineFor(b, "1"))
	assert.Error(t, err, "delivered sales are read-only")

	byNumber, err := svc.GetByNumber(ctx, f.actor.TenantID, created.Number)
	require.NoError(t, err)
	assert.Equal(t, created.ID, byNumber.ID)

	list, total, err := svc.List(ctx, f.actor.TenantID, SaleListFilter{Status: "delivered"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, list, 1)
}
