package inventory

import (
	"strings"
	"time"

	"github.com/erp/retail/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockBatch tracks the quantity and expiry of one lot of a product
type StockBatch struct {
	shared.BaseEntity
	TenantID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID  uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_batch_product_lot,priority:1"`
	LotCode    string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_stock_batch_product_lot,priority:2"`
	ExpiryDate *time.Time      `gorm:"type:date;index"`
	Quantity   decimal.Decimal `gorm:"type:decimal(18,3);not null;default:0"`
	UnitCost   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
}

// TableName returns the table name for GORM
func (StockBatch) TableName() string {
	return "stock_batches"
}

// NewStockBatch creates an empty batch for a lot
func NewStockBatch(tenantID, productID uuid.UUID, lotCode string, expiry *time.Time, unitCost decimal.Decimal) (*StockBatch, error) {
	lotCode = strings.TrimSpace(lotCode)
	if lotCode == "" {
		return nil, shared.NewValidationError("lot code cannot be empty")
	}
	return &StockBatch{
		BaseEntity: shared.NewBaseEntity(),
		TenantID:   tenantID,
		ProductID:  productID,
		LotCode:    lotCode,
		ExpiryDate: expiry,
		Quantity:   decimal.Zero,
		UnitCost:   unitCost,
	}, nil
}

// Receive adds quantity to the batch
func (b *StockBatch) Receive(quantity decimal.Decimal) {
	b.Quantity = b.Quantity.Add(quantity)
	b.Touch()
}

// Consume removes up to quantity from the batch and returns how much was taken
func (b *StockBatch) Consume(quantity decimal.Decimal) decimal.Decimal {
	taken := decimal.Min(quantity, b.Quantity)
	b.Quantity = b.Quantity.Sub(taken)
	b.Touch()
	return taken
}

// IsExpired returns true if the batch expiry is before the given day
func (b *StockBatch) IsExpired(today time.Time) bool {
	if b.ExpiryDate == nil {
		return false
	}
	return b.ExpiryDate.Before(shared.TruncateDay(today))
}

// ConsumeFEFO removes quantity from batches ordered first-expiry-first-out.
// Batches without expiry are consumed last. It returns the batches it changed.
func ConsumeFEFO(batches []*StockBatch, quantity decimal.Decimal) []*StockBatch {
	ordered := make([]*StockBatch, 0, len(batches))
	ordered = append(ordered, batches...)
	sortByExpiry(ordered)

	changed := make([]*StockBatch, 0)
	remaining := quantity
	for _, b := range ordered {
		if !remaining.IsPositive() {
			break
		}
		if !b.Quantity.IsPositive() {
			continue
		}
		remaining = remaining.Sub(b.Consume(remaining))
		changed = append(changed, b)
	}
	return changed
}

func sortByExpiry(batches []*StockBatch) {
	less := func(a, b *StockBatch) bool {
		switch {
		case a.ExpiryDate == nil:
			return false
		case b.ExpiryDate == nil:
			return true
		default:
			return a.ExpiryDate.Before(*b.ExpiryDate)
		}
	}
	for i := 1; i < len(batches); i++ {
		for j := i; j > 0 && less(batches[j], batches[j-1]); j-- {
			batches[j], batches[j-1] = batches[j-1], batches[j]
		}
	}
}
