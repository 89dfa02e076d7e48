package inventory

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/erp/retail/internal/application/txn"
	"github.com/erp/retail/internal/domain/catalog"
	"github.com/erp/retail/internal/domain/inventory"
	"github.com/erp/retail/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Ledger books stock movements inside a transaction scope. Every write locks
// the product row first, so concurrent exits cannot both pass the stock check.
type Ledger struct {
	publisher      shared.EventPublisher
	logger         *zap.Logger
	lowStockEvents bool
}

// NewLedger creates a Ledger that raises stock.low events through publisher
func NewLedger(publisher shared.EventPublisher, logger *zap.Logger) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ledger{
		publisher:      publisher,
		logger:         logger,
		lowStockEvents: true,
	}
}

// SetLowStockEvents turns stock.low events on or off
func (l *Ledger) SetLowStockEvents(enabled bool) {
	l.lowStockEvents = enabled
}

// SortIDs orders product IDs ascending and drops duplicates. Locks are always
// taken in this order to keep concurrent transactions from deadlocking.
func SortIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i][:], out[j][:]) < 0
	})
	return out
}

// LockProducts loads and row-locks the products in ascending ID order
func (l *Ledger) LockProducts(ctx context.Context, repos txn.Repositories, tenantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]*catalog.Product, error) {
	products := make(map[uuid.UUID]*catalog.Product, len(ids))
	for _, id := range SortIDs(ids) {
		p, err := repos.Products().FindByIDForUpdate(ctx, tenantID, id)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.ErrNotFound.WithDetail("product_id", id.String())
			}
			return nil, fmt.Errorf("lock product %s: %w", id, err)
		}
		products[id] = p
	}
	return products, nil
}

// Post locks one product and books a movement against it
func (l *Ledger) Post(ctx context.Context, repos txn.Repositories, actor shared.Actor, productID uuid.UUID, req inventory.MovementRequest) (*inventory.StockMovement, *catalog.Product, error) {
	if err := req.Validate(); err != nil {
		return nil, nil, err
	}
	products, err := l.LockProducts(ctx, repos, actor.TenantID, []uuid.UUID{productID})
	if err != nil {
		return nil, nil, err
	}
	product := products[productID]
	movement, err := l.PostLocked(ctx, repos, actor, product, req)
	if err != nil {
		return nil, nil, err
	}
	return movement, product, nil
}

// PostLocked books a movement against a product the caller already holds locked.
// The movement, the new cached quantity and any batch changes are written together.
func (l *Ledger) PostLocked(ctx context.Context, repos txn.Repositories, actor shared.Actor, product *catalog.Product, req inventory.MovementRequest) (*inventory.StockMovement, error) {
	movement, err := inventory.Apply(product, req, actor)
	if err != nil {
		return nil, err
	}
	if err := repos.Movements().Create(ctx, movement); err != nil {
		return nil, fmt.Errorf("create stock movement: %w", err)
	}
	if err := repos.Products().UpdateOnHand(ctx, product); err != nil {
		return nil, fmt.Errorf("update on-hand quantity: %w", err)
	}
	if err := l.updateBatches(ctx, repos, product, movement); err != nil {
		return nil, err
	}

	if l.lowStockEvents && inventory.CrossedMinimum(product, movement) {
		l.publish(ctx, inventory.NewStockLowEvent(product, movement, actor))
	}
	return movement, nil
}

func (l *Ledger) updateBatches(ctx context.Context, repos txn.Repositories, product *catalog.Product, m *inventory.StockMovement) error {
	switch m.Kind {
	case inventory.MovementEntry:
		if m.LotCode == "" {
			return nil
		}
		batch, err := repos.Batches().FindByLot(ctx, product.TenantID, product.ID, m.LotCode)
		if errors.Is(err, shared.ErrNotFound) {
			batch, err = inventory.NewStockBatch(product.TenantID, product.ID, m.LotCode, m.ExpiryDate, m.UnitValue)
		}
		if err != nil {
			return fmt.Errorf("load batch %s: %w", m.LotCode, err)
		}
		batch.Receive(m.Quantity)
		if err := repos.Batches().Save(ctx, batch); err != nil {
			return fmt.Errorf("save batch %s: %w", m.LotCode, err)
		}
	case inventory.MovementExit:
		batches, err := repos.Batches().FindAvailable(ctx, product.TenantID, product.ID)
		if err != nil {
			return fmt.Errorf("load batches: %w", err)
		}
		for _, b := range inventory.ConsumeFEFO(batches, m.Quantity) {
			if err := repos.Batches().Save(ctx, b); err != nil {
				return fmt.Errorf("save batch %s: %w", b.LotCode, err)
			}
		}
	}
	return nil
}

func (l *Ledger) publish(ctx context.Context, events ...shared.DomainEvent) {
	if l.publisher == nil || len(events) == 0 {
		return
	}
	if err := l.publisher.Publish(ctx, events...); err != nil {
		l.logger.Warn("failed to publish stock events", zap.Error(err))
	}
}

// PublishEvents forwards aggregate events on the ledger's publisher
func (l *Ledger) PublishEvents(ctx context.Context, events ...shared.DomainEvent) {
	l.publish(ctx, events...)
}
