package trade

import (
	"testing"
	"time"

	"github.com/erp/retail/internal/domain/inventory"
	"github.com/erp/retail/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPurchaseOrder_Totals(t *testing.T) {
	actor := testActor()
	o, err := NewPurchaseOrder(actor, "PC000001", uuid.New(), "Fornecedor")
	require.NoError(t, err)
	a := stockedProduct(t, actor.TenantID, "A", "0")
	b := stockedProduct(t, actor.TenantID, "B", "0")

	la, err := o.AddLine(a, dec("10"), dec("4.50"), dec("5.00"))
	require.NoError(t, err)
	_, err = o.AddLine(b, dec("2"), dec("20.00"), dec("0"))
	require.NoError(t, err)
	require.NoError(t, o.SetAdjustments(dec("15.00"), dec("10.00")))

	// items 40 + 40; grand 80 + 15 - 10
	assert.True(t, dec("80.00").Equal(o.ItemsTotal))
	assert.True(t, dec("85.00").Equal(o.GrandTotal))

	require.NoError(t, o.RecomputeTotals())
	assert.True(t, dec("85.00").Equal(o.GrandTotal))

	require.NoError(t, o.UpdateLine(la.ID, dec("1"), dec("4.50"), dec("0")))
	assert.True(t, dec("49.50").Equal(o.GrandTotal))

	assert.Error(t, o.SetAdjustments(dec("0"), dec("100")))
	assert.True(t, dec("49.50").Equal(o.GrandTotal))
}

func TestPurchaseOrder_Receive(t *testing.T) {
	actor := testActor()
	o, err := NewPurchaseOrder(actor, "PC000002", uuid.New(), "Fornecedor")
	require.NoError(t, err)
	a := stockedProduct(t, actor.TenantID, "A", "0")
	b := stockedProduct(t, actor.TenantID, "B", "0")
	_, err = o.AddLine(a, dec("10"), dec("2.00"), dec("0"))
	require.NoError(t, err)
	_, err = o.AddLine(b, dec("5"), dec("3.00"), dec("0"))
	require.NoError(t, err)

	_, err = o.Receive(actor, []ReceiptLine{{ProductID: a.ID, Quantity: dec("1")}})
	assert.True(t, shared.IsDomainError(err, shared.CodeInvalidStatusTransition), "pending orders cannot receive")

	require.NoError(t, o.Approve())
	require.NoError(t, o.Dispatch(nil))

	expiry := time.Date(2027, 3, 1, 0, 0, 0, 0, time.UTC)
	received, err := o.Receive(actor, []ReceiptLine{
		{ProductID: a.ID, Quantity: dec("10"), LotCode: "L-01", ExpiryDate: &expiry},
		{ProductID: b.ID, Quantity: dec("2"), UnitCost: dec("2.80")},
	})
	require.NoError(t, err)
	require.Len(t, received, 2)
	assert.Equal(t, PurchaseOrderStatusInTransit, o.Status)
	assert.True(t, dec("2.00").Equal(received[0].UnitCost))
	assert.True(t, dec("2.80").Equal(received[1].UnitCost))

	req := received[0].MovementRequest(o.Document())
	assert.Equal(t, inventory.MovementEntry, req.Kind)
	assert.Equal(t, "L-01", req.LotCode)
	assert.Equal(t, "PC000002", req.Document.Number)

	_, err = o.Receive(actor, []ReceiptLine{{ProductID: uuid.New(), Quantity: dec("1")}})
	assert.True(t, shared.IsDomainError(err, shared.CodeNotFound))

	_, err = o.Receive(actor, []ReceiptLine{{ProductID: b.ID, Quantity: dec("4")}})
	require.NoError(t, err)
	assert.Equal(t, PurchaseOrderStatusReceived, o.Status)
	assert.NotNil(t, o.ReceivedAt)
	assert.Len(t, o.GetDomainEvents(), 2)

	assert.Error(t, o.Cancel("late"))
}

func TestPurchaseOrder_Cancel(t *testing.T) {
	actor := testActor()
	o, err := NewPurchaseOrder(actor, "PC000003", uuid.New(), "Fornecedor")
	require.NoError(t, err)
	a := stockedProduct(t, actor.TenantID, "A", "0")
	_, err = o.AddLine(a, dec("10"), dec("2.00"), dec("0"))
	require.NoError(t, err)
	require.NoError(t, o.Approve())

	_, err = o.Receive(actor, []ReceiptLine{{ProductID: a.ID, Quantity: dec("1")}})
	require.NoError(t, err)
	assert.True(t, shared.IsDomainError(o.Cancel("x"), shared.CodeValidation))

	fresh, err := NewPurchaseOrder(actor, "PC000004", uuid.New(), "Fornecedor")
	require.NoError(t, err)
	require.NoError(t, fresh.Cancel("duplicate"))
	assert.Equal(t, PurchaseOrderStatusCancelled, fresh.Status)
	assert.True(t, PurchaseOrderStatusInTransit.CanTransitionTo(PurchaseOrderStatusCancelled))
	assert.False(t, PurchaseOrderStatusPending.CanTransitionTo(PurchaseOrderStatusReceived))
}
