package event

import (
	"testing"
	"time"

	"github.com/erp/retail/internal/domain/finance"
	"github.com/erp/retail/internal/domain/inventory"
	"github.com/erp/retail/internal/domain/shared"
	"github.com/erp/retail/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventSerializer_RegisteredTypes(t *testing.T) {
	s := NewEventSerializer()
	assert.Equal(t, []string{
		"purchase_order.received",
		"receivable.overdue",
		"sale.completed",
		"stock.count_finished",
		"stock.low",
	}, s.RegisteredTypes())
}

func TestEventSerializer_RoundTrip(t *testing.T) {
	s := NewEventSerializer()
	tenantID := uuid.New()
	original := &finance.ReceivableOverdueEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(finance.EventTypeReceivableOverdue, "Receivable", uuid.New(), tenantID),
		Number:          "CR000003",
		Outstanding:     decimal.RequireFromString("150.50"),
		DueDate:         time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		DaysOverdue:     12,
	}

	data, err := s.Serialize(original)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"number":"CR000003"`)

	decoded, err := s.Deserialize(finance.EventTypeReceivableOverdue, data)
	require.NoError(t, err)
	got, ok := decoded.(*finance.ReceivableOverdueEvent)
	require.True(t, ok)
	assert.Equal(t, tenantID, got.TenantID())
	assert.Equal(t, 12, got.DaysOverdue)
	assert.True(t, original.Outstanding.Equal(got.Outstanding))
	assert.True(t, original.DueDate.Equal(got.DueDate))
}

func TestEventSerializer_Unknown(t *testing.T) {
	s := NewEventSerializer()

	_, err := s.Deserialize("sale.voided", []byte(`{}`))
	assert.ErrorContains(t, err, "unknown event type")

	_, err = s.Serialize(&trade.SaleCompletedEvent{})
	assert.Error(t, err, "an event without a type is rejected")

	_, err = s.Deserialize(inventory.EventTypeStockLow, []byte(`{"on_hand":`))
	assert.Error(t, err)
}
