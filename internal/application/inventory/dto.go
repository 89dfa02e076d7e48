package inventory

import (
	"time"

	"github.com/erp/retail/internal/domain/catalog"
	"github.com/erp/retail/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ApplyMovementInput is a manual stock movement request
type ApplyMovementInput struct {
	ProductID      uuid.UUID
	Kind           inventory.MovementKind
	Quantity       decimal.Decimal
	UnitValue      decimal.Decimal
	DocumentNumber string
	LotCode        string
	ExpiryDate     *time.Time
	From           string
	To             string
	Reason         string
}

// MovementResponse represents a stock movement in API responses
type MovementResponse struct {
	ID             uuid.UUID              `json:"id"`
	ProductID      uuid.UUID              `json:"product_id"`
	Sequence       int64                  `json:"sequence"`
	Kind           inventory.MovementKind `json:"kind"`
	Quantity       decimal.Decimal        `json:"quantity"`
	UnitValue      decimal.Decimal        `json:"unit_value"`
	TotalValue     decimal.Decimal        `json:"total_value"`
	QuantityBefore decimal.Decimal        `json:"quantity_before"`
	QuantityAfter  decimal.Decimal        `json:"quantity_after"`
	DocumentType   inventory.DocumentType `json:"document_type"`
	DocumentNumber string                 `json:"document_number,omitempty"`
	LotCode        string                 `json:"lot_code,omitempty"`
	Reason         string                 `json:"reason,omitempty"`
	ActorName      string                 `json:"actor_name"`
	OccurredAt     time.Time              `json:"occurred_at"`
}

// ToMovementResponse converts a domain movement
func ToMovementResponse(m *inventory.StockMovement) MovementResponse {
	return MovementResponse{
		ID:             m.ID,
		ProductID:      m.ProductID,
		Sequence:       m.Sequence,
		Kind:           m.Kind,
		Quantity:       m.Quantity,
		UnitValue:      m.UnitValue,
		TotalValue:     m.TotalValue(),
		QuantityBefore: m.QuantityBefore,
		QuantityAfter:  m.QuantityAfter,
		DocumentType:   m.DocumentType,
		DocumentNumber: m.DocumentNumber,
		LotCode:        m.LotCode,
		Reason:         m.Reason,
		ActorName:      m.ActorName,
		OccurredAt:     m.OccurredAt,
	}
}

// StockResponse is the stock position of a product
type StockResponse struct {
	ProductID      uuid.UUID       `json:"product_id"`
	Code           string          `json:"code"`
	Name           string          `json:"name"`
	Unit           string          `json:"unit"`
	OnHandQuantity decimal.Decimal `json:"on_hand_quantity"`
	MinStock       decimal.Decimal `json:"min_stock"`
	CostPrice      decimal.Decimal `json:"cost_price"`
	StockValue     decimal.Decimal `json:"stock_value"`
	BelowMinimum   bool            `json:"below_minimum"`
}

// ToStockResponse converts a product to its stock position
func ToStockResponse(p *catalog.Product) StockResponse {
	return StockResponse{
		ProductID:      p.ID,
		Code:           p.Code,
		Name:           p.Name,
		Unit:           p.Unit,
		OnHandQuantity: p.OnHandQuantity,
		MinStock:       p.MinStock,
		CostPrice:      p.CostPrice,
		StockValue:     p.OnHandQuantity.Mul(p.CostPrice).Round(2),
		BelowMinimum:   p.BelowMinimum(),
	}
}

// BatchResponse represents a lot in API responses
type BatchResponse struct {
	ID         uuid.UUID       `json:"id"`
	ProductID  uuid.UUID       `json:"product_id"`
	LotCode    string          `json:"lot_code"`
	ExpiryDate *time.Time      `json:"expiry_date,omitempty"`
	Quantity   decimal.Decimal `json:"quantity"`
	Expired    bool            `json:"expired"`
}

// ToBatchResponse converts a batch
func ToBatchResponse(b *inventory.StockBatch, today time.Time) BatchResponse {
	return BatchResponse{
		ID:         b.ID,
		ProductID:  b.ProductID,
		LotCode:    b.LotCode,
		ExpiryDate: b.ExpiryDate,
		Quantity:   b.Quantity,
		Expired:    b.IsExpired(today),
	}
}

// CountSessionResponse represents a count session in API responses
type CountSessionResponse struct {
	ID         uuid.UUID                    `json:"id"`
	Number     string                       `json:"number"`
	Status     inventory.CountSessionStatus `json:"status"`
	Note       string                       `json:"note,omitempty"`
	FinishedAt *time.Time                   `json:"finished_at,omitempty"`
	CreatedAt  time.Time                    `json:"created_at"`
	Lines      []CountLineResponse          `json:"lines"`
}

// CountLineResponse represents a counted product
type CountLineResponse struct {
	ProductID       uuid.UUID       `json:"product_id"`
	ProductCode     string          `json:"product_code"`
	SystemQuantity  decimal.Decimal `json:"system_quantity"`
	CountedQuantity decimal.Decimal `json:"counted_quantity"`
	Difference      decimal.Decimal `json:"difference"`
	Note            string          `json:"note,omitempty"`
}

// ToCountSessionResponse converts a count session
func ToCountSessionResponse(s *inventory.CountSession) CountSessionResponse {
	lines := make([]CountLineResponse, 0, len(s.Lines))
	for _, l := range s.Lines {
		lines = append(lines, CountLineResponse{
			ProductID:       l.ProductID,
			ProductCode:     l.ProductCode,
			SystemQuantity:  l.SystemQuantity,
			CountedQuantity: l.CountedQuantity,
			Difference:      l.Difference,
			Note:            l.Note,
		})
	}
	return CountSessionResponse{
		ID:         s.ID,
		Number:     s.Number,
		Status:     s.Status,
		Note:       s.Note,
		FinishedAt: s.FinishedAt,
		CreatedAt:  s.CreatedAt,
		Lines:      lines,
	}
}
