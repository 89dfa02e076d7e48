package inventory

import (
	"sort"
	"time"

	"github.com/erp/retail/internal/domain/catalog"
	"github.com/erp/retail/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// NextQuantity computes the on-hand quantity after applying a movement of the given kind.
// Exits larger than the current stock fail with an insufficient stock error.
func NextQuantity(current decimal.Decimal, kind MovementKind, quantity decimal.Decimal) (decimal.Decimal, error) {
	switch kind {
	case MovementEntry:
		return current.Add(quantity), nil
	case MovementExit:
		if quantity.GreaterThan(current) {
			return current, shared.ErrInsufficientStock
		}
		return decimal.Max(current.Sub(quantity), decimal.Zero), nil
	case MovementAdjustment, MovementInventoryCount:
		return quantity, nil
	case MovementTransfer:
		return current, nil
	}
	return current, shared.NewValidationError("invalid movement kind")
}

// Apply applies a movement to a product that the caller holds locked.
// It updates the product's cached quantity and returns the movement record to persist.
func Apply(product *catalog.Product, req MovementRequest, actor shared.Actor) (*StockMovement, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	before := product.OnHandQuantity
	after, err := NextQuantity(before, req.Kind, req.Quantity)
	if err != nil {
		return nil, NewInsufficientStockError(product, req.Quantity)
	}

	seq := product.ApplyLedgerQuantity(after)

	return &StockMovement{
		BaseEntity:     shared.NewBaseEntity(),
		TenantID:       product.TenantID,
		ProductID:      product.ID,
		Sequence:       seq,
		Kind:           req.Kind,
		Quantity:       req.Quantity,
		UnitValue:      req.UnitValue,
		QuantityBefore: before,
		QuantityAfter:  after,
		DocumentType:   req.Document.Type,
		DocumentID:     req.Document.ID,
		DocumentNumber: req.Document.Number,
		LotCode:        req.LotCode,
		ExpiryDate:     req.ExpiryDate,
		FromLocation:   req.From,
		ToLocation:     req.To,
		Reason:         req.Reason,
		ActorID:        actor.UserID,
		ActorName:      actor.Name,
		OccurredAt:     time.Now(),
	}, nil
}

// NewInsufficientStockError reports the product and the requested and available quantities
func NewInsufficientStockError(product *catalog.Product, requested decimal.Decimal) *shared.DomainError {
	return shared.NewDomainErrorf(shared.CodeInsufficientStock,
		"Insufficient stock for %s: requested %s, available %s",
		product.Name, requested.String(), product.OnHandQuantity.String()).
		WithDetail("product_id", product.ID.String()).
		WithDetail("product_code", product.Code).
		WithDetail("requested", requested.String()).
		WithDetail("available", product.OnHandQuantity.String())
}

// Replay rebuilds the on-hand quantity from zero by applying movements in ledger order
func Replay(movements []StockMovement) decimal.Decimal {
	ordered := make([]StockMovement, len(movements))
	copy(ordered, movements)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Sequence != ordered[j].Sequence {
			return ordered[i].Sequence < ordered[j].Sequence
		}
		return ordered[i].OccurredAt.Before(ordered[j].OccurredAt)
	})

	quantity := decimal.Zero
	for _, m := range ordered {
		next, err := NextQuantity(quantity, m.Kind, m.Quantity)
		if err != nil {
			// the ledger recorded this exit against a cached value the replay does not reach
			next = decimal.Zero
		}
		quantity = next
	}
	return quantity
}

// Discrepancy describes a product whose cached stock differs from its ledger replay
type Discrepancy struct {
	ProductID   string          `json:"product_id"`
	ProductCode string          `json:"product_code"`
	Cached      decimal.Decimal `json:"cached"`
	Ledger      decimal.Decimal `json:"ledger"`
	Difference  decimal.Decimal `json:"difference"`
}

// Reconcile compares the cached stock of a product with the replay of its movements.
// It returns nil when they agree.
func Reconcile(product *catalog.Product, movements []StockMovement) *Discrepancy {
	ledger := Replay(movements)
	if ledger.Equal(product.OnHandQuantity) {
		return nil
	}
	return &Discrepancy{
		ProductID:   product.ID.String(),
		ProductCode: product.Code,
		Cached:      product.OnHandQuantity,
		Ledger:      ledger,
		Difference:  product.OnHandQuantity.Sub(ledger),
	}
}

// NewReconciliationMovement builds the adjustment that brings the ledger in line with the
// cached quantity, which stays authoritative. QuantityBefore records the replayed value.
func NewReconciliationMovement(product *catalog.Product, d *Discrepancy, actor shared.Actor) *StockMovement {
	seq := product.ApplyLedgerQuantity(product.OnHandQuantity)
	return &StockMovement{
		BaseEntity:     shared.NewBaseEntity(),
		TenantID:       product.TenantID,
		ProductID:      product.ID,
		Sequence:       seq,
		Kind:           MovementAdjustment,
		Quantity:       product.OnHandQuantity,
		UnitValue:      product.CostPrice,
		QuantityBefore: d.Ledger,
		QuantityAfter:  product.OnHandQuantity,
		DocumentType:   DocumentTypeReconciliation,
		Reason:         "ledger reconciliation",
		ActorID:        actor.UserID,
		ActorName:      actor.Name,
		OccurredAt:     time.Now(),
	}
}
