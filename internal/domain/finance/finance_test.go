package finance

import (
	"testing"
	"time"

	"github.com/erp/retail/internal/domain/payment"
	"github.com/erp/retail/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testActor() shared.Actor {
	return shared.NewActor(uuid.New(), uuid.New(), "Carla")
}

func newReceivable(t *testing.T, actor shared.Actor, amount string, due time.Time) *Receivable {
	t.Helper()
	code := DRESalesRevenue
	r, err := NewReceivable(actor, EntryParams{
		Number:      "CR000001",
		Description: "Sale SALE000001",
		DRECode:     &code,
		Amount:      dec(amount),
		DueDate:     due,
		SourceType:  SourceSale,
	})
	require.NoError(t, err)
	return r
}

func TestNewReceivable_Validation(t *testing.T) {
	actor := testActor()
	unknown := 9

	tests := []struct {
		name   string
		params EntryParams
	}{
		{"empty number", EntryParams{Description: "x", Amount: dec("10"), DueDate: day(2026, 1, 1)}},
		{"empty description", EntryParams{Number: "CR1", Amount: dec("10"), DueDate: day(2026, 1, 1)}},
		{"zero amount", EntryParams{Number: "CR1", Description: "x", Amount: decimal.Zero, DueDate: day(2026, 1, 1)}},
		{"negative amount", EntryParams{Number: "CR1", Description: "x", Amount: dec("-1"), DueDate: day(2026, 1, 1)}},
		{"negative amount with zero allowed", EntryParams{Number: "CR1", Description: "x", Amount: dec("-1"), DueDate: day(2026, 1, 1), AllowZero: true}},
		{"missing due date", EntryParams{Number: "CR1", Description: "x", Amount: dec("10")}},
		{"unknown dre code", EntryParams{Number: "CR1", Description: "x", Amount: dec("10"), DueDate: day(2026, 1, 1), DRECode: &unknown}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewReceivable(actor, tt.params)
			assert.True(t, shared.IsDomainError(err, shared.CodeValidation))
		})
	}

	r := newReceivable(t, actor, "100.45", day(2026, 3, 10))
	assert.Equal(t, StatusPending, r.Status)
	assert.Equal(t, SourceSale, r.SourceType)
	assert.True(t, dec("100.45").Equal(r.OriginalAmount))
	assert.Equal(t, actor.TenantID, r.TenantID)
}

func TestNewReceivable_ZeroAmountSettles(t *testing.T) {
	actor := testActor()
	r, err := NewReceivable(actor, EntryParams{
		Number:      "CR000002",
		Description: "Sale SALE000002",
		Amount:      decimal.Zero,
		DueDate:     day(2026, 3, 10),
		SourceType:  SourceSale,
		AllowZero:   true,
	})
	require.NoError(t, err)

	settlement, err := r.Settle(SettleCommand{PaidDate: day(2026, 3, 10)})
	require.NoError(t, err)
	assert.True(t, settlement.Settled)
	assert.True(t, settlement.Amount.IsZero())
	assert.True(t, settlement.Fee.Amount.IsZero())
	assert.Equal(t, StatusSettled, r.Status)
	assert.True(t, r.Outstanding().IsZero())
}

func TestReceivable_SettleWithFee(t *testing.T) {
	actor := testActor()
	r := newReceivable(t, actor, "1000.00", day(2026, 3, 10))
	card, err := payment.NewMethod(actor.TenantID, "Crédito", payment.MethodTypeCreditCard, payment.FeeSchedule{
		BasePercent:        dec("3.00"),
		AllowsInstallments: true,
		MaxInstallments:    6,
		Tier2Percent:       dec("4.00"),
		SettlementLagDays:  30,
	})
	require.NoError(t, err)

	s, err := r.Settle(SettleCommand{PaidDate: day(2026, 3, 8), Method: card, Installments: 2})
	require.NoError(t, err)

	assert.True(t, s.Settled)
	assert.True(t, dec("1000").Equal(s.Amount))
	assert.True(t, dec("40.00").Equal(s.Fee.Amount))
	assert.Equal(t, StatusSettled, r.Status)
	assert.True(t, dec("40.00").Equal(r.FeeAmount))
	assert.True(t, dec("960.00").Equal(r.NetAmount))
	assert.Equal(t, 2, r.Installments)
	require.NotNil(t, r.ExpectedSettlement)
	assert.Equal(t, day(2026, 4, 9), *r.ExpectedSettlement)
	require.NotNil(t, r.PaidDate)
	assert.Equal(t, day(2026, 3, 8), *r.PaidDate)
	assert.True(t, r.Outstanding().IsZero())

	t.Run("settled receivable cannot be settled again", func(t *testing.T) {
		_, err := r.Settle(SettleCommand{Amount: dec("1")})
		assert.True(t, shared.IsDomainError(err, shared.CodeInvalidStatusTransition))
	})
}

func TestReceivable_PartialSettlement(t *testing.T) {
	actor := testActor()
	r := newReceivable(t, actor, "300.00", day(2026, 3, 10))

	s, err := r.Settle(SettleCommand{Amount: dec("100.00"), PaidDate: day(2026, 3, 1)})
	require.NoError(t, err)
	assert.False(t, s.Settled)
	assert.Equal(t, StatusPending, r.Status)
	assert.True(t, dec("200.00").Equal(r.Outstanding()))

	_, err = r.Settle(SettleCommand{Amount: dec("250.00")})
	assert.True(t, shared.IsDomainError(err, shared.CodeValidation))
	assert.True(t, dec("100.00").Equal(r.PaidAmount))

	s, err = r.Settle(SettleCommand{Amount: dec("195.00"), Discount: dec("5.00"), PaidDate: day(2026, 3, 5)})
	require.NoError(t, err)
	assert.True(t, s.Settled)
	assert.Equal(t, StatusSettled, r.Status)
	assert.True(t, dec("295.00").Equal(r.Total()))
}

func TestReceivable_SettleWithInterestAndPenalty(t *testing.T) {
	r := newReceivable(t, testActor(), "100.00", day(2026, 3, 10))

	s, err := r.Settle(SettleCommand{Interest: dec("1.50"), Penalty: dec("2.00"), PaidDate: day(2026, 3, 20)})
	require.NoError(t, err)
	assert.True(t, dec("103.50").Equal(s.Amount))
	assert.True(t, dec("103.50").Equal(r.PaidAmount))
	assert.True(t, s.Settled)
}

func TestReceivable_SettleRejectsInvalidInstallments(t *testing.T) {
	actor := testActor()
	r := newReceivable(t, actor, "100.00", day(2026, 3, 10))
	debit, err := payment.NewMethod(actor.TenantID, "Débito", payment.MethodTypeDebitCard, payment.FeeSchedule{BasePercent: dec("1.5")})
	require.NoError(t, err)

	_, err = r.Settle(SettleCommand{Method: debit, Installments: 3})
	assert.True(t, shared.IsDomainError(err, shared.CodeInvalidInstallments))
	assert.Equal(t, StatusPending, r.Status)
	assert.True(t, r.PaidAmount.IsZero())
}

func TestReceivable_RefreshOverdue(t *testing.T) {
	actor := testActor()
	r := newReceivable(t, actor, "80.00", day(2026, 3, 10))

	assert.False(t, r.RefreshOverdue(actor, day(2026, 3, 10)))
	assert.Empty(t, r.GetDomainEvents())

	assert.True(t, r.RefreshOverdue(actor, day(2026, 3, 15)))
	assert.Equal(t, StatusOverdue, r.Status)
	events := r.GetDomainEvents()
	require.Len(t, events, 1)
	ev, ok := events[0].(*ReceivableOverdueEvent)
	require.True(t, ok)
	assert.Equal(t, EventTypeReceivableOverdue, ev.EventType())
	assert.Equal(t, 5, ev.DaysOverdue)
	assert.True(t, dec("80.00").Equal(ev.Outstanding))

	// already overdue, no second event
	assert.False(t, r.RefreshOverdue(actor, day(2026, 3, 20)))
	assert.Len(t, r.GetDomainEvents(), 1)

	_, err := r.Settle(SettleCommand{PaidDate: day(2026, 3, 20)})
	require.NoError(t, err)
	assert.Equal(t, StatusSettled, r.Status)
}

func TestPayable_Cancel(t *testing.T) {
	actor := testActor()
	code := DREAdministrative
	p, err := NewPayable(actor, EntryParams{
		Number:      "CP000001",
		Description: "Aluguel",
		DRECode:     &code,
		Amount:      dec("2500"),
		DueDate:     day(2026, 4, 5),
	})
	require.NoError(t, err)
	assert.Equal(t, SourceManual, p.SourceType)

	assert.True(t, shared.IsDomainError(p.Cancel(""), shared.CodeValidation))
	require.NoError(t, p.Cancel("duplicado"))
	assert.Equal(t, StatusCancelled, p.Status)

	_, err = p.Pay(SettleCommand{})
	assert.True(t, shared.IsDomainError(err, shared.CodeInvalidStatusTransition))
	assert.True(t, shared.IsDomainError(p.Cancel("again"), shared.CodeInvalidStatusTransition))
}

func TestPayable_CancelWithPaymentsRejected(t *testing.T) {
	p, err := NewPayable(testActor(), EntryParams{
		Number: "CP000002", Description: "Fornecedor", Amount: dec("100"), DueDate: day(2026, 4, 5),
	})
	require.NoError(t, err)
	_, err = p.Pay(SettleCommand{Amount: dec("10")})
	require.NoError(t, err)
	assert.True(t, shared.IsDomainError(p.Cancel("erro"), shared.CodeValidation))
}

func TestCashFlowEntry(t *testing.T) {
	actor := testActor()
	r := newReceivable(t, actor, "50.00", day(2026, 3, 10))
	s, err := r.Settle(SettleCommand{PaidDate: day(2026, 3, 9)})
	require.NoError(t, err)

	in := NewInflow(actor, r, s)
	assert.Equal(t, DirectionIn, in.Direction)
	assert.True(t, dec("50.00").Equal(in.Signed()))
	assert.Equal(t, r.ID, *in.ReceivableID)

	p, err := NewPayable(actor, EntryParams{Number: "CP1", Description: "Luz", Amount: dec("20"), DueDate: day(2026, 3, 10)})
	require.NoError(t, err)
	ps, err := p.Pay(SettleCommand{})
	require.NoError(t, err)
	out := NewOutflow(actor, p, ps)
	assert.True(t, dec("-20").Equal(out.Signed()))
}

func TestDefaultDRECategories(t *testing.T) {
	cats := DefaultDRECategories()
	require.Len(t, cats, 19)
	for i := 1; i < len(cats); i++ {
		assert.Less(t, cats[i-1].DisplayOrder, cats[i].DisplayOrder)
	}
	c, ok := DRECategoryByCode(DREPayroll)
	require.True(t, ok)
	assert.Equal(t, DREKindExpense, c.Kind)
	assert.True(t, c.Kind.IsPayableKind())
	assert.False(t, DREKindRevenue.IsPayableKind())
	assert.False(t, IsKnownDRECode(2))

	cats[0].Name = "changed"
	fresh, _ := DRECategoryByCode(DRESalesRevenue)
	assert.NotEqual(t, "changed", fresh.Name)
}
