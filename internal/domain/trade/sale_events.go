package trade

import (
	"github.com/erp/retail/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constants
const (
	AggregateTypeSale          = "Sale"
	AggregateTypePurchaseOrder = "PurchaseOrder"
)

// Event type constants
const (
	EventTypeSaleCompleted         = "sale.completed"
	EventTypePurchaseOrderReceived = "purchase_order.received"
)

// SaleCompletedEvent is raised when a sale is completed at checkout or delivered
type SaleCompletedEvent struct {
	shared.BaseDomainEvent
	SaleID       uuid.UUID       `json:"sale_id"`
	Number       string          `json:"number"`
	CustomerID   uuid.UUID       `json:"customer_id"`
	CustomerName string          `json:"customer_name"`
	GrandTotal   decimal.Decimal `json:"grand_total"`
	Items        int             `json:"items"`
}

// NewSaleCompletedEvent creates a new SaleCompletedEvent
func NewSaleCompletedEvent(s *Sale, actor shared.Actor) *SaleCompletedEvent {
	return &SaleCompletedEvent{
		BaseDomainEvent: shared.NewActorDomainEvent(EventTypeSaleCompleted, AggregateTypeSale, s.ID, actor),
		SaleID:          s.ID,
		Number:          s.Number,
		CustomerID:      s.CustomerID,
		CustomerName:    s.CustomerName,
		GrandTotal:      s.GrandTotal,
		Items:           len(s.Items),
	}
}

// EventType returns the event type name
func (e *SaleCompletedEvent) EventType() string {
	return EventTypeSaleCompleted
}

// PurchaseOrderReceivedEvent is raised when goods are booked in against a purchase order
type PurchaseOrderReceivedEvent struct {
	shared.BaseDomainEvent
	OrderID      uuid.UUID      `json:"order_id"`
	Number       string         `json:"number"`
	FullReceived bool           `json:"full_received"`
	Lines        []ReceivedLine `json:"lines"`
}

// EventType returns the event type name
func (e *PurchaseOrderReceivedEvent) EventType() string {
	return EventTypePurchaseOrderReceived
}
