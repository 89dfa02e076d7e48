package event

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/erp/retail/internal/domain/finance"
	"github.com/erp/retail/internal/domain/inventory"
	"github.com/erp/retail/internal/domain/shared"
	"github.com/erp/retail/internal/domain/trade"
	"github.com/erp/retail/tests/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type recordingNotifier struct {
	mu    sync.Mutex
	notes []Notification
	err   error
}

func (n *recordingNotifier) Notify(_ context.Context, note Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.notes = append(n.notes, note)
	return nil
}

func (n *recordingNotifier) all() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Notification(nil), n.notes...)
}

func testActor() shared.Actor {
	return shared.NewActor(uuid.New(), uuid.New(), "cashier")
}

func TestNotificationHandler_EventTypes(t *testing.T) {
	h := NewNotificationHandler(nil, nil, nil)
	assert.ElementsMatch(t, []string{
		trade.EventTypeSaleCompleted,
		inventory.EventTypeStockLow,
		finance.EventTypeReceivableOverdue,
	}, h.EventTypes())
}

func TestNotificationHandler_SaleCompleted(t *testing.T) {
	notifier := &recordingNotifier{}
	h := NewNotificationHandler(notifier, nil, zaptest.NewLogger(t))
	actor := testActor()

	event := &trade.SaleCompletedEvent{
		BaseDomainEvent: shared.NewActorDomainEvent(trade.EventTypeSaleCompleted, trade.AggregateTypeSale, uuid.New(), actor),
		Number:          "VEN-000001",
		GrandTotal:      decimal.NewFromInt(60),
		Items:           1,
	}
	require.NoError(t, h.Handle(context.Background(), event))

	notes := notifier.all()
	require.Len(t, notes, 1)
	note := notes[0]
	assert.Equal(t, event.EventID(), note.ID)
	assert.Equal(t, trade.EventTypeSaleCompleted, note.Type)
	assert.Equal(t, actor.TenantID, note.TenantID)
	assert.Equal(t, "Sale VEN-000001 completed: 60.00 (1 items)", note.Subject)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(note.Payload, &payload))
	assert.Equal(t, "VEN-000001", payload["number"])
}

func TestNotificationHandler_StockLow(t *testing.T) {
	notifier := &recordingNotifier{}
	h := NewNotificationHandler(notifier, nil, zaptest.NewLogger(t))

	event := &inventory.StockLowEvent{
		BaseDomainEvent: shared.NewActorDomainEvent(inventory.EventTypeStockLow, inventory.AggregateTypeProduct, uuid.New(), testActor()),
		ProductCode:     "P-1",
		ProductName:     "Cable",
		OnHand:          decimal.NewFromInt(2),
		MinStock:        decimal.NewFromInt(5),
	}
	require.NoError(t, h.Handle(context.Background(), event))

	notes := notifier.all()
	require.Len(t, notes, 1)
	assert.Equal(t, "Low stock: P-1 Cable has 2 (minimum 5)", notes[0].Subject)
}

func TestNotificationHandler_ReceivableOverdue(t *testing.T) {
	notifier := &recordingNotifier{}
	h := NewNotificationHandler(notifier, nil, zaptest.NewLogger(t))

	event := &finance.ReceivableOverdueEvent{
		BaseDomainEvent: shared.NewActorDomainEvent(finance.EventTypeReceivableOverdue, finance.AggregateTypeReceivable, uuid.New(), testActor()),
		Number:          "REC-000007",
		Outstanding:     decimal.RequireFromString("150.5"),
		DueDate:         time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
		DaysOverdue:     3,
	}
	require.NoError(t, h.Handle(context.Background(), event))

	notes := notifier.all()
	require.Len(t, notes, 1)
	assert.Equal(t, "Receivable REC-000007 overdue by 3 days: 150.50", notes[0].Subject)
}

func TestNotificationHandler_NotifierFailureIsSwallowed(t *testing.T) {
	notifier := &recordingNotifier{err: errors.New("redis down")}
	h := NewNotificationHandler(notifier, nil, zaptest.NewLogger(t))

	event := &trade.SaleCompletedEvent{
		BaseDomainEvent: shared.NewActorDomainEvent(trade.EventTypeSaleCompleted, trade.AggregateTypeSale, uuid.New(), testActor()),
		Number:          "VEN-000002",
	}
	assert.NoError(t, h.Handle(context.Background(), event))
	assert.Empty(t, notifier.all())
}

func TestNotificationHandler_UnknownEventIgnored(t *testing.T) {
	notifier := &recordingNotifier{}
	h := NewNotificationHandler(notifier, nil, zaptest.NewLogger(t))

	for _, event := range []shared.DomainEvent{
		&inventory.CountSessionFinishedEvent{
			BaseDomainEvent: shared.NewActorDomainEvent(inventory.EventTypeCountSessionClosed, inventory.AggregateTypeCountSession, uuid.New(), testActor()),
		},
		testutil.NewEvent(trade.EventTypeSaleCompleted, uuid.New()),
	} {
		assert.NoError(t, h.Handle(context.Background(), event))
	}
	assert.Empty(t, notifier.all(), "events of unknown shape are skipped")
}

func TestLoggingNotifier(t *testing.T) {
	n := NewLoggingNotifier(zaptest.NewLogger(t))
	assert.NoError(t, n.Notify(context.Background(), Notification{Type: trade.EventTypeSaleCompleted}))
}
