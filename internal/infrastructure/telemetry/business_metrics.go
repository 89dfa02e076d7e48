package telemetry

import (
	"context"
	"fmt"

	"github.com/erp/retail/internal/domain/finance"
	"github.com/erp/retail/internal/domain/inventory"
	"github.com/erp/retail/internal/domain/shared"
	"github.com/erp/retail/internal/domain/trade"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/erp/retail"

// BusinessMetrics turns domain events into counters. It subscribes to the
// event bus like any other handler.
type BusinessMetrics struct {
	salesCompleted     metric.Int64Counter
	salesRevenue       metric.Float64Counter
	purchasesReceived  metric.Int64Counter
	stockLow           metric.Int64Counter
	countsFinished     metric.Int64Counter
	receivablesOverdue metric.Int64Counter
}

// NewBusinessMetrics creates the instruments on meter
func NewBusinessMetrics(meter metric.Meter) (*BusinessMetrics, error) {
	m := &BusinessMetrics{}
	var err error
	if m.salesCompleted, err = meter.Int64Counter("retail.sales.completed",
		metric.WithDescription("Sales checked out"), metric.WithUnit("{sale}")); err != nil {
		return nil, fmt.Errorf("sales counter: %w", err)
	}
	if m.salesRevenue, err = meter.Float64Counter("retail.sales.revenue",
		metric.WithDescription("Grand total of checked out sales")); err != nil {
		return nil, fmt.Errorf("revenue counter: %w", err)
	}
	if m.purchasesReceived, err = meter.Int64Counter("retail.purchase_orders.received",
		metric.WithDescription("Purchase order receipts"), metric.WithUnit("{receipt}")); err != nil {
		return nil, fmt.Errorf("receipt counter: %w", err)
	}
	if m.stockLow, err = meter.Int64Counter("retail.stock.low",
		metric.WithDescription("Products crossing their minimum stock"), metric.WithUnit("{alert}")); err != nil {
		return nil, fmt.Errorf("low stock counter: %w", err)
	}
	if m.countsFinished, err = meter.Int64Counter("retail.stock.counts_finished",
		metric.WithDescription("Inventory count sessions applied"), metric.WithUnit("{session}")); err != nil {
		return nil, fmt.Errorf("count counter: %w", err)
	}
	if m.receivablesOverdue, err = meter.Int64Counter("retail.receivables.overdue",
		metric.WithDescription("Receivables found overdue"), metric.WithUnit("{receivable}")); err != nil {
		return nil, fmt.Errorf("overdue counter: %w", err)
	}
	return m, nil
}

// EventTypes returns every event the metrics count
func (m *BusinessMetrics) EventTypes() []string {
	return []string{
		trade.EventTypeSaleCompleted,
		trade.EventTypePurchaseOrderReceived,
		inventory.EventTypeStockLow,
		inventory.EventTypeCountSessionClosed,
		finance.EventTypeReceivableOverdue,
	}
}

// Handle records one event
func (m *BusinessMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	tenant := metric.WithAttributes(attribute.String("tenant.id", event.TenantID().String()))
	switch e := event.(type) {
	case *trade.SaleCompletedEvent:
		m.salesCompleted.Add(ctx, 1, tenant)
		m.salesRevenue.Add(ctx, e.GrandTotal.InexactFloat64(), tenant)
	case *trade.PurchaseOrderReceivedEvent:
		m.purchasesReceived.Add(ctx, 1, metric.WithAttributes(
			attribute.String("tenant.id", e.TenantID().String()),
			attribute.Bool("full", e.FullReceived),
		))
	case *inventory.StockLowEvent:
		m.stockLow.Add(ctx, 1, tenant)
	case *inventory.CountSessionFinishedEvent:
		m.countsFinished.Add(ctx, 1, tenant)
	case *finance.ReceivableOverdueEvent:
		m.receivablesOverdue.Add(ctx, 1, tenant)
	}
	return nil
}

var _ shared.EventHandler = (*BusinessMetrics)(nil)
