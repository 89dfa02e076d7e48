package trade

import (
	"context"
	"testing"

	"github.com/erp/retail/internal/domain/finance"
	"github.com/erp/retail/internal/domain/payment"
	"github.com/erp/retail/internal/domain/shared"
	"github.com/erp/retail/internal/domain/trade"
	"github.com/erp/retail/internal/infrastructure/persistence"
	"github.com/erp/retail/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckoutService_CashSale(t *testing.T) {
	ctx := context.Background()
	f := newTradeFixture(t)
	svc := NewCheckoutService(f.scope, f.ledger, DefaultOptions(), nil)

	product := f.product(t, "30.00", "12.00", "10")
	session := f.openDrawer(t, "100")

	receipt, err := svc.Checkout(ctx, f.actor, CheckoutRequest{
		DrawerSessionID: session.ID,
		Lines:           []LineInput{lineFor(product, "2")},
		Tendered:        dec("100"),
	})
	require.NoError(t, err)
	assert.Equal(t, "SALE000001", receipt.Number)
	assert.True(t, dec("60").Equal(receipt.Total))
	assert.True(t, dec("40").Equal(receipt.Change))
	assert.True(t, receipt.Fee.IsZero())
	assert.Equal(t, 1, receipt.Installments)

	assert.True(t, dec("8").Equal(f.onHand(t, product.ID)))

	drawer := f.drawer(t, session.ID)
	assert.True(t, dec("60").Equal(drawer.SalesTotal))
	assert.Equal(t, 1, drawer.SalesCount)
	assert.True(t, dec("160").Equal(drawer.ExpectedCash()))
	assert.Equal(t, 2, drawer.Version)

	sale, err := persistence.NewGormSaleRepository(f.db).FindByIDForTenant(ctx, f.actor.TenantID, receipt.SaleID)
	require.NoError(t, err)
	assert.Equal(t, trade.SaleStatusCompleted, sale.Status)
	assert.Equal(t, partnerWalkIn(t, f), sale.CustomerID)
	assert.True(t, dec("24").Equal(sale.CostTotal))

	receivables, err := persistence.NewGormReceivableRepository(f.db).FindBySource(ctx, f.actor.TenantID, finance.SourceSale, sale.ID)
	require.NoError(t, err)
	require.Len(t, receivables, 1)
	assert.Equal(t, receipt.ReceivableID, receivables[0].ID)
	assert.Equal(t, finance.StatusSettled, receivables[0].Status)
	assert.True(t, dec("60").Equal(receivables[0].PaidAmount))
	assert.Equal(t, "Sale SALE000001", receivables[0].Description)

	assert.Equal(t, int64(1), f.count(t, &finance.CashFlowEntry{}))
	var inflow finance.CashFlowEntry
	require.NoError(t, f.db.Where("tenant_id = ?", f.actor.TenantID).First(&inflow).Error)
	assert.Equal(t, "Receipt "+receivables[0].Number+" - Sale SALE000001", inflow.Description)
	assert.Equal(t, 1, f.publisher.Count(trade.EventTypeSaleCompleted))
}

func partnerWalkIn(t *testing.T, f *tradeFixture) uuid.UUID {
	t.Helper()
	customer, err := persistence.NewGormCustomerRepository(f.db).FindWalkIn(context.Background(), f.actor.TenantID)
	require.NoError(t, err)
	return customer.ID
}

func TestCheckoutService_CardFee(t *testing.T) {
	ctx := context.Background()
	f := newTradeFixture(t)
	svc := NewCheckoutService(f.scope, f.ledger, DefaultOptions(), nil)

	method, err := payment.NewMethod(f.actor.TenantID, "Crédito", payment.MethodTypeCreditCard, payment.FeeSchedule{
		BasePercent:        dec("3"),
		AllowsInstallments: true,
		MaxInstallments:    3,
		Tier3Percent:       dec("4.5"),
	})
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormPaymentMethodRepository(f.db).Save(ctx, method))

	product := f.product(t, "30.00", "12.00", "5")
	session := f.openDrawer(t, "0")
	methodID := method.ID

	receipt, err := svc.Checkout(ctx, f.actor, CheckoutRequest{
		DrawerSessionID: session.ID,
		PaymentMethodID: &methodID,
		Installments:    3,
		Lines:           []LineInput{lineFor(product, "2")},
		Tendered:        dec("500"),
	})
	require.NoError(t, err)
	assert.True(t, dec("60").Equal(receipt.Tendered))
	assert.True(t, receipt.Change.IsZero())
	assert.True(t, dec("2.70").Equal(receipt.Fee))
	assert.True(t, dec("57.30").Equal(receipt.Net))

	t.Run("installments above the maximum roll back", func(t *testing.T) {
		_, err := svc.Checkout(ctx, f.actor, CheckoutRequest{
			DrawerSessionID: session.ID,
			PaymentMethodID: &methodID,
			Installments:    6,
			Lines:           []LineInput{lineFor(product, "1")},
		})
		assert.True(t, shared.IsDomainError(err, shared.CodeInvalidInstallments))
		assert.True(t, dec("3").Equal(f.onHand(t, product.ID)))
	})
}

func TestCheckoutService_InsufficientStockRollsBackEverything(t *testing.T) {
	ctx := context.Background()
	f := newTradeFixture(t)
	svc := NewCheckoutService(f.scope, f.ledger, DefaultOptions(), nil)

	plenty := f.product(t, "10.00", "5.00", "20")
	scarce := f.product(t, "10.00", "5.00", "1")
	session := f.openDrawer(t, "100")

	_, err := svc.Checkout(ctx, f.actor, CheckoutRequest{
		DrawerSessionID: session.ID,
		Lines:           []LineInput{lineFor(plenty, "3"), lineFor(scarce, "2")},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)

	assert.True(t, dec("20").Equal(f.onHand(t, plenty.ID)))
	assert.True(t, dec("1").Equal(f.onHand(t, scarce.ID)))
	assert.Equal(t, int64(0), f.count(t, &trade.Sale{}))
	assert.Equal(t, int64(0), f.count(t, &finance.Receivable{}))
	drawer := f.drawer(t, session.ID)
	assert.True(t, drawer.SalesTotal.IsZero())
	assert.Equal(t, 1, drawer.Version)
	assert.Equal(t, 0, f.publisher.Count(trade.EventTypeSaleCompleted))

	receipt, err := svc.Checkout(ctx, f.actor, CheckoutRequest{
		DrawerSessionID: session.ID,
		Lines:           []LineInput{lineFor(scarce, "1")},
	})
	require.NoError(t, err)
	assert.Equal(t, "SALE000001", receipt.Number, "rolled back checkout must release its number")
}

func TestCheckoutService_Rejections(t *testing.T) {
	ctx := context.Background()
	f := newTradeFixture(t)
	svc := NewCheckoutService(f.scope, f.ledger, DefaultOptions(), nil)
	product := f.product(t, "30.00", "12.00", "10")
	session := f.openDrawer(t, "50")

	t.Run("no lines", func(t *testing.T) {
		_, err := svc.Checkout(ctx, f.actor, CheckoutRequest{DrawerSessionID: session.ID})
		assert.True(t, shared.IsDomainError(err, shared.CodeValidation))
	})

	t.Run("unknown drawer", func(t *testing.T) {
		_, err := svc.Checkout(ctx, f.actor, CheckoutRequest{
			DrawerSessionID: uuid.New(),
			Lines:           []LineInput{lineFor(product, "1")},
		})
		assert.True(t, shared.IsDomainError(err, shared.CodeDrawerNotOpen))
	})

	t.Run("another operator's drawer", func(t *testing.T) {
		other := shared.NewActor(f.actor.TenantID, testutil.NewTestUUID("other-operator"), "Outro")
		_, err := svc.Checkout(ctx, other, CheckoutRequest{
			DrawerSessionID: session.ID,
			Lines:           []LineInput{lineFor(product, "1")},
		})
		assert.True(t, shared.IsDomainError(err, shared.CodeForbidden))
	})

	t.Run("tendered below total", func(t *testing.T) {
		_, err := svc.Checkout(ctx, f.actor, CheckoutRequest{
			DrawerSessionID: session.ID,
			Lines:           []LineInput{lineFor(product, "1")},
			Tendered:        dec("20"),
		})
		assert.True(t, shared.IsDomainError(err, shared.CodeValidation))
	})

	t.Run("both product and service on a line", func(t *testing.T) {
		line := lineFor(product, "1")
		serviceID := uuid.New()
		line.ServiceID = &serviceID
		_, err := svc.Checkout(ctx, f.actor, CheckoutRequest{
			DrawerSessionID: session.ID,
			Lines:           []LineInput{line},
		})
		assert.ErrorIs(t, err, shared.ErrDuplicateLineItemType)
	})

	t.Run("discount above subtotal", func(t *testing.T) {
		_, err := svc.Checkout(ctx, f.actor, CheckoutRequest{
			DrawerSessionID: session.ID,
			Lines:           []LineInput{lineFor(product, "1")},
			Discount:        dec("31"),
		})
		assert.True(t, shared.IsDomainError(err, shared.CodeValidation))
	})

	assert.True(t, dec("10").Equal(f.onHand(t, product.ID)))
	assert.Equal(t, int64(0), f.count(t, &trade.Sale{}))
}

func TestCheckoutService_FullyDiscountedSale(t *testing.T) {
	ctx := context.Background()
	f := newTradeFixture(t)
	svc := NewCheckoutService(f.scope, f.ledger, DefaultOptions(), nil)
	product := f.product(t, "30.00", "12.00", "10")
	session := f.openDrawer(t, "50")

	receipt, err := svc.Checkout(ctx, f.actor, CheckoutRequest{
		DrawerSessionID: session.ID,
		Lines:           []LineInput{lineFor(product, "2")},
		Discount:        dec("60"),
	})
	require.NoError(t, err)
	assert.True(t, receipt.Total.IsZero())
	assert.True(t, receipt.Change.IsZero())
	assert.True(t, receipt.Fee.IsZero())

	assert.True(t, dec("8").Equal(f.onHand(t, product.ID)))

	receivables, err := persistence.NewGormReceivableRepository(f.db).FindBySource(ctx, f.actor.TenantID, finance.SourceSale, receipt.SaleID)
	require.NoError(t, err)
	require.Len(t, receivables, 1)
	assert.Equal(t, finance.StatusSettled, receivables[0].Status)
	assert.True(t, receivables[0].OriginalAmount.IsZero())

	drawer := f.drawer(t, session.ID)
	assert.Equal(t, 0, drawer.SalesCount)
	assert.True(t, drawer.SalesTotal.IsZero())
	assert.True(t, dec("50").Equal(drawer.ExpectedCash()))

	assert.Equal(t, int64(0), f.count(t, &finance.CashFlowEntry{}))
	assert.Equal(t, 1, f.publisher.Count(trade.EventTypeSaleCompleted))
}

func TestCheckoutService_ResolvesCashMethodOnce(t *testing.T) {
	ctx := context.Background()
	f := newTradeFixture(t)
	svc := NewCheckoutService(f.scope, f.ledger, DefaultOptions(), nil)
	product := f.product(t, "10.00", "4.00", "10")
	session := f.openDrawer(t, "0")

	for i := 0; i < 2; i++ {
		_, err := svc.Checkout(ctx, f.actor, CheckoutRequest{
			DrawerSessionID: session.ID,
			Lines:           []LineInput{lineFor(product, "1")},
		})
		require.NoError(t, err)
	}
	assert.Equal(t, int64(1), f.count(t, &payment.Method{}))

	t.Run("cash name taken by an inactive method", func(t *testing.T) {
		g := newTradeFixture(t)
		checkout := NewCheckoutService(g.scope, g.ledger, DefaultOptions(), nil)
		retired := payment.NewCashMethod(g.actor.TenantID)
		retired.Active = false
		require.NoError(t, persistence.NewGormPaymentMethodRepository(g.db).Save(ctx, retired))

		_, err := checkout.Checkout(ctx, g.actor, CheckoutRequest{
			DrawerSessionID: g.openDrawer(t, "0").ID,
			Lines:           []LineInput{lineFor(g.product(t, "10.00", "4.00", "5"), "1")},
		})
		assert.True(t, shared.IsDomainError(err, shared.CodeValidation))
		assert.Equal(t, int64(1), g.count(t, &payment.Method{}))
	})
}
