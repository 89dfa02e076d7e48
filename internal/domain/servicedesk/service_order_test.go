package servicedesk

import (
	"testing"
	"time"

	"github.com/erp/retail/internal/domain/catalog"
	"github.com/erp/retail/internal/domain/inventory"
	"github.com/erp/retail/internal/domain/shared"
	"github.com/erp/retail/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testActor() shared.Actor {
	return shared.NewActor(uuid.New(), uuid.New(), "Carla")
}

func newOrder(t *testing.T, actor shared.Actor) *ServiceOrder {
	t.Helper()
	o, err := NewServiceOrder(actor, "OS000001", Intake{
		CustomerID:     uuid.New(),
		CustomerName:   "Daniel",
		Equipment:      "Notebook",
		ReportedDefect: "Não liga",
	})
	require.NoError(t, err)
	return o
}

func partLine(t *testing.T, tenantID uuid.UUID, qty, price string) trade.LineItem {
	t.Helper()
	p, err := catalog.NewProduct(tenantID, "PEC-1", "Fonte", "UN")
	require.NoError(t, err)
	require.NoError(t, p.SetPrices(dec("20.00"), dec(price)))
	line, err := trade.NewProductLine(p, trade.LineValues{Quantity: dec(qty), UnitPrice: dec(price)})
	require.NoError(t, err)
	return line
}

func TestNewServiceOrder(t *testing.T) {
	actor := testActor()

	o := newOrder(t, actor)
	assert.Equal(t, StatusOpen, o.Status)
	assert.Equal(t, DefaultWarrantyDays, o.WarrantyDays)
	require.Len(t, o.History, 1)
	assert.Equal(t, ActionOpened, o.History[0].Action)
	assert.Equal(t, actor.UserID, o.History[0].ActorID)

	_, err := NewServiceOrder(actor, "OS000002", Intake{CustomerID: uuid.New(), Equipment: "TV"})
	assert.True(t, shared.IsDomainError(err, shared.CodeValidation))
}

func TestStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusOpen, StatusDiagnosing, true},
		{StatusOpen, StatusApproved, false},
		{StatusDiagnosing, StatusQuoting, true},
		{StatusQuoting, StatusApproved, true},
		{StatusApproved, StatusInProgress, true},
		{StatusInProgress, StatusAwaitingParts, true},
		{StatusAwaitingParts, StatusInProgress, true},
		{StatusAwaitingParts, StatusCompleted, true},
		{StatusCompleted, StatusDelivered, true},
		{StatusCompleted, StatusInProgress, false},
		{StatusCompleted, StatusCancelled, true},
		{StatusDelivered, StatusCancelled, false},
		{StatusCancelled, StatusOpen, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestServiceOrder_Totals(t *testing.T) {
	actor := testActor()
	o := newOrder(t, actor)

	require.NoError(t, o.SetServiceValue(dec("150.00")))
	part, err := o.AddPart(partLine(t, actor.TenantID, "2", "45.00"))
	require.NoError(t, err)
	require.NoError(t, o.SetAdjustments(dec("10.00"), dec("5.00")))

	assert.True(t, dec("90.00").Equal(o.PartsValue))
	assert.True(t, dec("40.00").Equal(o.PartsCost))
	// 150 + 90 - 10 + 5
	assert.True(t, dec("235.00").Equal(o.GrandTotal))

	require.NoError(t, o.RecomputeTotals())
	require.NoError(t, o.RecomputeTotals())
	assert.True(t, dec("235.00").Equal(o.GrandTotal))

	require.NoError(t, o.UpdatePart(part.ID, trade.LineValues{Quantity: dec("1"), UnitPrice: dec("45.00")}))
	assert.True(t, dec("190.00").Equal(o.GrandTotal))

	require.NoError(t, o.RemovePart(part.ID))
	assert.True(t, o.PartsValue.IsZero())
	assert.True(t, dec("145.00").Equal(o.GrandTotal))

	svcID := uuid.New()
	serviceLine, err := trade.NewLineItem(nil, &svcID, "Limpeza", trade.LineValues{Quantity: dec("1"), UnitPrice: dec("10")})
	require.NoError(t, err)
	_, err = o.AddPart(serviceLine)
	assert.True(t, shared.IsDomainError(err, shared.CodeValidation))
}

func TestServiceOrder_ApplyPart(t *testing.T) {
	actor := testActor()
	o := newOrder(t, actor)
	part, err := o.AddPart(partLine(t, actor.TenantID, "3", "10.00"))
	require.NoError(t, err)

	productID, req, err := o.ApplyPart(actor, part.ID)
	require.NoError(t, err)
	assert.Equal(t, part.ReferenceID(), productID)
	assert.Equal(t, inventory.MovementExit, req.Kind)
	assert.Equal(t, inventory.DocumentTypeServiceOrder, req.Document.Type)
	assert.Equal(t, "OS000001", req.Document.Number)
	assert.True(t, dec("3").Equal(req.Quantity))
	assert.True(t, o.GetPart(part.ID).Applied)

	_, _, err = o.ApplyPart(actor, part.ID)
	assert.True(t, shared.IsDomainError(err, shared.CodeValidation))
	assert.Error(t, o.RemovePart(part.ID))
}

func TestServiceOrder_Lifecycle(t *testing.T) {
	actor := testActor()
	o := newOrder(t, actor)

	err := o.TransitionTo(actor, StatusCompleted, "")
	assert.True(t, shared.IsDomainError(err, shared.CodeInvalidStatusTransition))
	assert.Equal(t, StatusOpen, o.Status)

	for _, next := range []Status{StatusDiagnosing, StatusQuoting, StatusApproved, StatusInProgress, StatusAwaitingParts, StatusInProgress, StatusAwaitingParts, StatusCompleted} {
		require.NoError(t, o.TransitionTo(actor, next, ""), "to %s", next)
	}

	require.NotNil(t, o.CompletedAt)
	require.NotNil(t, o.WarrantyUntil)
	expected := shared.TruncateDay(*o.CompletedAt).AddDate(0, 0, 90)
	assert.Equal(t, expected, *o.WarrantyUntil)
	assert.True(t, o.InWarranty(time.Now()))
	assert.False(t, o.InWarranty(time.Now().AddDate(0, 0, 91)))

	// opened + 8 transitions
	assert.Len(t, o.History, 9)
	assert.Equal(t, StatusAwaitingParts, o.History[8].FromStatus)
	assert.Equal(t, StatusCompleted, o.History[8].ToStatus)

	assert.Error(t, o.SetServiceValue(dec("1")))
	require.NoError(t, o.TransitionTo(actor, StatusDelivered, "retirado pelo cliente"))
	assert.Contains(t, o.History[9].Description, "retirado pelo cliente")
	assert.Error(t, o.TransitionTo(actor, StatusCancelled, ""))
}

func TestServiceOrder_ApplyBudgetBelowDiscountLeavesOrderUntouched(t *testing.T) {
	actor := testActor()
	o := newOrder(t, actor)
	require.NoError(t, o.SetServiceValue(dec("100.00")))
	require.NoError(t, o.SetAdjustments(dec("80.00"), decimal.Zero))
	require.True(t, dec("20.00").Equal(o.GrandTotal))
	history := len(o.History)

	budget, err := NewBudget(actor, "ORC000001", o, "Troca de tela", dec("50.00"), decimal.Zero, 0)
	require.NoError(t, err)

	err = o.ApplyBudget(actor, budget)
	assert.True(t, shared.IsDomainError(err, shared.CodeValidation))

	assert.Equal(t, StatusOpen, o.Status)
	assert.Nil(t, o.ApprovedAt)
	assert.True(t, dec("100.00").Equal(o.ServiceValue))
	assert.True(t, o.QuotedPartsValue.IsZero())
	assert.True(t, dec("20.00").Equal(o.GrandTotal))
	assert.Len(t, o.History, history)
}
