package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/retail/internal/application/txn"
	"github.com/erp/retail/internal/domain/catalog"
	"github.com/erp/retail/internal/domain/inventory"
	"github.com/erp/retail/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const reconcilePageSize = 200

// StockService handles manual stock movements, stock queries and ledger reconciliation
type StockService struct {
	scope     txn.TransactionScope
	ledger    *Ledger
	products  catalog.ProductRepository
	movements inventory.MovementRepository
	batches   inventory.BatchRepository
	logger    *zap.Logger
}

// NewStockService creates a new StockService
func NewStockService(
	scope txn.TransactionScope,
	ledger *Ledger,
	products catalog.ProductRepository,
	movements inventory.MovementRepository,
	batches inventory.BatchRepository,
	logger *zap.Logger,
) *StockService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StockService{
		scope:     scope,
		ledger:    ledger,
		products:  products,
		movements: movements,
		batches:   batches,
		logger:    logger,
	}
}

// ApplyMovement books a manual movement against one product
func (s *StockService) ApplyMovement(ctx context.Context, actor shared.Actor, in ApplyMovementInput) (*MovementResponse, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	req := inventory.MovementRequest{
		Kind:       in.Kind,
		Quantity:   in.Quantity,
		UnitValue:  in.UnitValue,
		Document:   inventory.ManualDocument(in.DocumentNumber),
		LotCode:    in.LotCode,
		ExpiryDate: in.ExpiryDate,
		From:       in.From,
		To:         in.To,
		Reason:     in.Reason,
	}

	var movement *inventory.StockMovement
	err := s.scope.Execute(ctx, func(repos txn.Repositories) error {
		var err error
		movement, _, err = s.ledger.Post(ctx, repos, actor, in.ProductID, req)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("stock movement applied",
		zap.String("tenant_id", actor.TenantID.String()),
		zap.String("product_id", in.ProductID.String()),
		zap.String("kind", string(in.Kind)),
		zap.String("quantity", in.Quantity.String()),
		zap.String("after", movement.QuantityAfter.String()),
	)
	resp := ToMovementResponse(movement)
	return &resp, nil
}

// GetStock returns the stock position of a product
func (s *StockService) GetStock(ctx context.Context, tenantID, productID uuid.UUID) (*StockResponse, error) {
	p, err := s.products.FindByIDForTenant(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	resp := ToStockResponse(p)
	return &resp, nil
}

// ListMovements lists a product's movements, newest first
func (s *StockService) ListMovements(ctx context.Context, tenantID, productID uuid.UUID, filter inventory.MovementFilter) ([]MovementResponse, int64, error) {
	movements, total, err := s.movements.ListByProduct(ctx, tenantID, productID, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]MovementResponse, 0, len(movements))
	for i := range movements {
		out = append(out, ToMovementResponse(&movements[i]))
	}
	return out, total, nil
}

// ListBelowMinimum lists products at or below their minimum stock
func (s *StockService) ListBelowMinimum(ctx context.Context, tenantID uuid.UUID) ([]StockResponse, error) {
	products, err := s.products.FindBelowMinimum(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	out := make([]StockResponse, 0, len(products))
	for i := range products {
		out = append(out, ToStockResponse(&products[i]))
	}
	return out, nil
}

// ListExpiringBatches lists lots with stock expiring within the given number of days
func (s *StockService) ListExpiringBatches(ctx context.Context, tenantID uuid.UUID, withinDays int) ([]BatchResponse, error) {
	if withinDays < 0 {
		return nil, shared.NewValidationError("days cannot be negative")
	}
	today := shared.TruncateDay(time.Now())
	batches, err := s.batches.FindExpiringBefore(ctx, tenantID, today.AddDate(0, 0, withinDays+1))
	if err != nil {
		return nil, err
	}
	out := make([]BatchResponse, 0, len(batches))
	for i := range batches {
		out = append(out, ToBatchResponse(&batches[i], today))
	}
	return out, nil
}

// Reconcile compares a product's cached stock with the replay of its ledger.
// With fix set, a reconciliation adjustment is appended so the ledger agrees with the cached value.
func (s *StockService) Reconcile(ctx context.Context, actor shared.Actor, productID uuid.UUID, fix bool) (*inventory.Discrepancy, error) {
	var found *inventory.Discrepancy
	err := s.scope.Execute(ctx, func(repos txn.Repositories) error {
		var err error
		found, err = s.reconcileInTx(ctx, repos, actor, productID, fix)
		return err
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// ReconcileAll checks every product of the tenant and returns the discrepancies found
func (s *StockService) ReconcileAll(ctx context.Context, actor shared.Actor, fix bool) ([]inventory.Discrepancy, error) {
	out := make([]inventory.Discrepancy, 0)
	for page := 1; ; page++ {
		filter := shared.Filter{Page: page, PageSize: reconcilePageSize, OrderBy: "code", OrderDir: "asc"}
		products, err := s.products.FindAllForTenant(ctx, actor.TenantID, filter)
		if err != nil {
			return nil, fmt.Errorf("list products: %w", err)
		}
		for i := range products {
			d, err := s.Reconcile(ctx, actor, products[i].ID, fix)
			if err != nil {
				return nil, err
			}
			if d != nil {
				out = append(out, *d)
			}
		}
		if len(products) < reconcilePageSize {
			break
		}
	}
	return out, nil
}

// ReconcileForTenant checks every product of the tenant for the nightly
// reconciliation run. Discrepancies are logged and left for an operator to fix.
func (s *StockService) ReconcileForTenant(ctx context.Context, tenantID uuid.UUID, _ time.Time) error {
	found, err := s.ReconcileAll(ctx, shared.SystemActor(tenantID), false)
	if err != nil {
		return err
	}
	if len(found) > 0 {
		s.logger.Warn("stock reconciliation found discrepancies",
			zap.String("tenant_id", tenantID.String()),
			zap.Int("count", len(found)),
		)
	}
	return nil
}

func (s *StockService) reconcileInTx(ctx context.Context, repos txn.Repositories, actor shared.Actor, productID uuid.UUID, fix bool) (*inventory.Discrepancy, error) {
	products, err := s.ledger.LockProducts(ctx, repos, actor.TenantID, []uuid.UUID{productID})
	if err != nil {
		return nil, err
	}
	product := products[productID]
	movements, err := repos.Movements().FindByProduct(ctx, actor.TenantID, productID)
	if err != nil {
		return nil, fmt.Errorf("load movements: %w", err)
	}
	d := inventory.Reconcile(product, movements)
	if d == nil {
		return nil, nil
	}

	s.logger.Warn("stock ledger discrepancy",
		zap.String("tenant_id", actor.TenantID.String()),
		zap.String("product_id", d.ProductID),
		zap.String("cached", d.Cached.String()),
		zap.String("ledger", d.Ledger.String()),
		zap.Bool("fix", fix),
	)
	if !fix {
		return d, nil
	}
	m := inventory.NewReconciliationMovement(product, d, actor)
	if err := repos.Movements().Create(ctx, m); err != nil {
		return nil, fmt.Errorf("create reconciliation movement: %w", err)
	}
	if err := repos.Products().UpdateOnHand(ctx, product); err != nil {
		return nil, fmt.Errorf("update ledger sequence: %w", err)
	}
	return d, nil
}
