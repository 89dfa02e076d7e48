package trade

import (
	"context"
	"errors"
	"fmt"
	"time"

	inventoryapp "github.com/erp/retail/internal/application/inventory"
	"github.com/erp/retail/internal/application/txn"
	"github.com/erp/retail/internal/domain/catalog"
	"github.com/erp/retail/internal/domain/finance"
	"github.com/erp/retail/internal/domain/inventory"
	"github.com/erp/retail/internal/domain/shared"
	"github.com/erp/retail/internal/domain/trade"
	"github.com/google/uuid"
)

func productIDs(sale *trade.Sale) []uuid.UUID {
	quantities := sale.ProductQuantities()
	ids := make([]uuid.UUID, 0, len(quantities))
	for id := range quantities {
		ids = append(ids, id)
	}
	return ids
}

// PostSaleLines books one movement per product line of the sale against
// products the caller already holds locked.
func PostSaleLines(ctx context.Context, ledger *inventoryapp.Ledger, repos txn.Repositories, actor shared.Actor, sale *trade.Sale, products map[uuid.UUID]*catalog.Product, kind inventory.MovementKind) error {
	doc := sale.Document()
	for i := range sale.Items {
		line := &sale.Items[i]
		if !line.IsProduct() {
			continue
		}
		product, ok := products[line.ReferenceID()]
		if !ok {
			return shared.ErrNotFound.WithDetail("product_id", line.ReferenceID().String())
		}
		req := inventory.MovementRequest{
			Kind:      kind,
			Quantity:  line.Quantity,
			UnitValue: line.UnitCost,
			Document:  doc,
		}
		if kind == inventory.MovementEntry {
			req.Reason = "sale cancelled"
		}
		if _, err := ledger.PostLocked(ctx, repos, actor, product, req); err != nil {
			var de *shared.DomainError
			if errors.As(err, &de) {
				return de.WithDetail("line_id", line.ID.String())
			}
			return err
		}
	}
	return nil
}

func newSaleReceivable(ctx context.Context, repos txn.Repositories, actor shared.Actor, sale *trade.Sale, due time.Time) (*finance.Receivable, error) {
	number, err := repos.Numberer().Next(ctx, actor.TenantID, shared.DocumentReceivable)
	if err != nil {
		return nil, fmt.Errorf("next receivable number: %w", err)
	}
	customerID := sale.CustomerID
	saleID := sale.ID
	code := finance.DRESalesRevenue
	return finance.NewReceivable(actor, finance.EntryParams{
		Number:           number,
		CounterpartyID:   &customerID,
		CounterpartyName: sale.CustomerName,
		Description:      "Sale " + sale.Number,
		Category:         "sales",
		DRECode:          &code,
		Amount:           sale.GrandTotal,
		DueDate:          due,
		SourceType:       finance.SourceSale,
		SourceID:         &saleID,
		SourceNumber:     sale.Number,
		AllowZero:        true,
	})
}

// cancelSourceReceivables cancels the open receivables raised by a document.
// A receivable that already took a payment blocks the cancellation.
func cancelSourceReceivables(ctx context.Context, repos txn.Repositories, tenantID uuid.UUID, source finance.SourceType, sourceID uuid.UUID, reason string) error {
	receivables, err := repos.Receivables().FindBySource(ctx, tenantID, source, sourceID)
	if err != nil {
		return fmt.Errorf("load receivables: %w", err)
	}
	for i := range receivables {
		r := &receivables[i]
		if r.PaidAmount.IsPositive() {
			return shared.NewValidationError("cannot cancel a document whose receivable has payments").
				WithDetail("receivable_id", r.ID.String()).
				WithDetail("paid_amount", r.PaidAmount.String())
		}
		if !r.Status.IsOpen() {
			continue
		}
		if err := r.Cancel(reason); err != nil {
			return err
		}
		if err := repos.Receivables().SaveWithLock(ctx, r); err != nil {
			return err
		}
	}
	return nil
}
