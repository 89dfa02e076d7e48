package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/erp/retail/internal/domain/finance"
	"github.com/erp/retail/internal/domain/inventory"
	"github.com/erp/retail/internal/domain/shared"
	"github.com/erp/retail/internal/domain/trade"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Notification is the envelope handed to a Notifier
type Notification struct {
	ID          uuid.UUID       `json:"id"`
	Type        string          `json:"type"`
	TenantID    uuid.UUID       `json:"tenant_id"`
	AggregateID uuid.UUID       `json:"aggregate_id"`
	OccurredAt  time.Time       `json:"occurred_at"`
	Subject     string          `json:"subject"`
	Payload     json.RawMessage `json:"payload"`
}

// Notifier delivers notifications to whatever sits outside the process
// (a Redis stream, a log, a test recorder)
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// Encoder turns a domain event into its wire payload
type Encoder interface {
	Serialize(event shared.DomainEvent) ([]byte, error)
}

type jsonEncoder struct{}

func (jsonEncoder) Serialize(event shared.DomainEvent) ([]byte, error) {
	return json.Marshal(event)
}

// NotificationHandler forwards completed sales, low stock alerts and overdue
// receivables to a Notifier. Failures are logged and never returned, so a
// broken notification channel cannot fail the operation that raised the event.
type NotificationHandler struct {
	notifier Notifier
	encoder  Encoder
	logger   *zap.Logger
}

// NewNotificationHandler creates a new NotificationHandler.
// A nil encoder falls back to plain JSON.
func NewNotificationHandler(notifier Notifier, encoder Encoder, logger *zap.Logger) *NotificationHandler {
	if encoder == nil {
		encoder = jsonEncoder{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationHandler{
		notifier: notifier,
		encoder:  encoder,
		logger:   logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *NotificationHandler) EventTypes() []string {
	return []string{
		trade.EventTypeSaleCompleted,
		inventory.EventTypeStockLow,
		finance.EventTypeReceivableOverdue,
	}
}

// Handle builds the notification for an event and hands it to the notifier
func (h *NotificationHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	subject, err := h.subject(event)
	if err != nil {
		h.logger.Error("unexpected event type",
			zap.String("event_type", event.EventType()),
			zap.Error(err),
		)
		return nil
	}

	payload, err := h.encoder.Serialize(event)
	if err != nil {
		h.logger.Error("failed to encode notification payload",
			zap.String("event_id", event.EventID().String()),
			zap.Error(err),
		)
		return nil
	}

	n := Notification{
		ID:          event.EventID(),
		Type:        event.EventType(),
		TenantID:    event.TenantID(),
		AggregateID: event.AggregateID(),
		OccurredAt:  event.OccurredAt(),
		Subject:     subject,
		Payload:     payload,
	}
	if h.notifier == nil {
		return nil
	}
	if err := h.notifier.Notify(ctx, n); err != nil {
		h.logger.Error("failed to deliver notification",
			zap.String("event_type", n.Type),
			zap.String("event_id", n.ID.String()),
			zap.Error(err),
		)
		return nil
	}

	h.logger.Debug("notification delivered",
		zap.String("event_type", n.Type),
		zap.String("tenant_id", n.TenantID.String()),
	)
	return nil
}

// subject renders a one-line summary of the event
func (h *NotificationHandler) subject(event shared.DomainEvent) (string, error) {
	switch e := event.(type) {
	case *trade.SaleCompletedEvent:
		return fmt.Sprintf("Sale %s completed: %s (%d items)", e.Number, e.GrandTotal.StringFixed(2), e.Items), nil
	case *inventory.StockLowEvent:
		h.logger.Warn("stock at or below minimum",
			zap.String("tenant_id", e.TenantID().String()),
			zap.String("product_code", e.ProductCode),
			zap.String("on_hand", e.OnHand.String()),
			zap.String("min_stock", e.MinStock.String()),
		)
		return fmt.Sprintf("Low stock: %s %s has %s (minimum %s)", e.ProductCode, e.ProductName, e.OnHand.String(), e.MinStock.String()), nil
	case *finance.ReceivableOverdueEvent:
		return fmt.Sprintf("Receivable %s overdue by %d days: %s", e.Number, e.DaysOverdue, e.Outstanding.StringFixed(2)), nil
	default:
		return "", fmt.Errorf("no notification for %T", event)
	}
}

// LoggingNotifier writes notifications to the log. Used when no Redis is configured.
type LoggingNotifier struct {
	logger *zap.Logger
}

// NewLoggingNotifier creates a new LoggingNotifier
func NewLoggingNotifier(logger *zap.Logger) *LoggingNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoggingNotifier{logger: logger}
}

// Notify logs the notification
func (n *LoggingNotifier) Notify(_ context.Context, note Notification) error {
	n.logger.Info("notification",
		zap.String("type", note.Type),
		zap.String("tenant_id", note.TenantID.String()),
		zap.String("aggregate_id", note.AggregateID.String()),
		zap.String("subject", note.Subject),
	)
	return nil
}

var (
	_ shared.EventHandler = (*NotificationHandler)(nil)
	_ Notifier            = (*LoggingNotifier)(nil)
)
