package inventory

import (
	"github.com/erp/retail/internal/domain/catalog"
	"github.com/erp/retail/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AggregateTypeProduct is the aggregate type stock events are raised against
const AggregateTypeProduct = "Product"

// Event type constants
const (
	EventTypeStockLow           = "stock.low"
	EventTypeCountSessionClosed = "stock.count_finished"
	AggregateTypeCountSession   = "CountSession"
)

// StockLowEvent is raised when a movement takes a product to or below its minimum stock
type StockLowEvent struct {
	shared.BaseDomainEvent
	ProductID   uuid.UUID       `json:"product_id"`
	ProductCode string          `json:"product_code"`
	ProductName string          `json:"product_name"`
	OnHand      decimal.Decimal `json:"on_hand"`
	MinStock    decimal.Decimal `json:"min_stock"`
	MovementID  uuid.UUID       `json:"movement_id"`
}

// NewStockLowEvent creates a new StockLowEvent
func NewStockLowEvent(product *catalog.Product, movement *StockMovement, actor shared.Actor) *StockLowEvent {
	return &StockLowEvent{
		BaseDomainEvent: shared.NewActorDomainEvent(EventTypeStockLow, AggregateTypeProduct, product.ID, actor),
		ProductID:       product.ID,
		ProductCode:     product.Code,
		ProductName:     product.Name,
		OnHand:          product.OnHandQuantity,
		MinStock:        product.MinStock,
		MovementID:      movement.ID,
	}
}

// EventType returns the event type name
func (e *StockLowEvent) EventType() string {
	return EventTypeStockLow
}

// CrossedMinimum reports whether a movement took the product from above its minimum to at or below it
func CrossedMinimum(product *catalog.Product, movement *StockMovement) bool {
	if !product.MinStock.IsPositive() {
		return false
	}
	return movement.QuantityBefore.GreaterThan(product.MinStock) &&
		movement.QuantityAfter.LessThanOrEqual(product.MinStock)
}

// CountSessionFinishedEvent is raised when a count session applies its counted quantities
type CountSessionFinishedEvent struct {
	shared.BaseDomainEvent
	SessionID uuid.UUID `json:"session_id"`
	Number    string    `json:"number"`
	Lines     int       `json:"lines"`
}

// EventType returns the event type name
func (e *CountSessionFinishedEvent) EventType() string {
	return EventTypeCountSessionClosed
}
