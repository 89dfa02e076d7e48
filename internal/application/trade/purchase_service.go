package trade

import (
	"context"
	"fmt"

	inventoryapp "github.com/erp/retail/internal/application/inventory"
	"github.com/erp/retail/internal/application/txn"
	"github.com/erp/retail/internal/domain/finance"
	"github.com/erp/retail/internal/domain/shared"
	"github.com/erp/retail/internal/domain/trade"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PurchaseService handles purchase orders and goods receipt
type PurchaseService struct {
	scope  txn.TransactionScope
	ledger *inventoryapp.Ledger
	orders trade.PurchaseOrderRepository
	opts   Options
	logger *zap.Logger
}

// NewPurchaseService creates a new PurchaseService
func NewPurchaseService(scope txn.TransactionScope, ledger *inventoryapp.Ledger, orders trade.PurchaseOrderRepository, opts Options, logger *zap.Logger) *PurchaseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PurchaseService{
		scope:  scope,
		ledger: ledger,
		orders: orders,
		opts:   opts,
		logger: logger,
	}
}

// Create creates a pending purchase order
func (s *PurchaseService) Create(ctx context.Context, actor shared.Actor, req CreatePurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	var order *trade.PurchaseOrder
	err := s.scope.Execute(ctx, func(repos txn.Repositories) error {
		supplier, err := repos.Suppliers().FindByIDForTenant(ctx, actor.TenantID, req.SupplierID)
		if err != nil {
			return err
		}
		number, err := repos.Numberer().Next(ctx, actor.TenantID, shared.DocumentPurchaseOrder)
		if err != nil {
			return fmt.Errorf("next purchase order number: %w", err)
		}
		order, err = trade.NewPurchaseOrder(actor, number, supplier.ID, supplier.Name)
		if err != nil {
			return err
		}
		for _, in := range req.Lines {
			if err := addPurchaseLine(ctx, repos, actor.TenantID, order, in); err != nil {
				return err
			}
		}
		if err := order.SetAdjustments(req.Freight, req.Discount); err != nil {
			return err
		}
		return repos.PurchaseOrders().Save(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	resp := ToPurchaseOrderResponse(order)
	return &resp, nil
}

// AddLine appends a product line
func (s *PurchaseService) AddLine(ctx context.Context, actor shared.Actor, orderID uuid.UUID, in PurchaseLineInput) (*PurchaseOrderResponse, error) {
	return s.mutate(ctx, actor, orderID, func(repos txn.Repositories, order *trade.PurchaseOrder) error {
		return addPurchaseLine(ctx, repos, actor.TenantID, order, in)
	})
}

// RemoveLine deletes a line
func (s *PurchaseService) RemoveLine(ctx context.Context, actor shared.Actor, orderID, lineID uuid.UUID) (*PurchaseOrderResponse, error) {
	return s.mutate(ctx, actor, orderID, func(_ txn.Repositories, order *trade.PurchaseOrder) error {
		return order.RemoveLine(lineID)
	})
}

// Approve approves a pending order
func (s *PurchaseService) Approve(ctx context.Context, actor shared.Actor, orderID uuid.UUID) (*PurchaseOrderResponse, error) {
	return s.mutate(ctx, actor, orderID, func(_ txn.Repositories, order *trade.PurchaseOrder) error {
		return order.Approve()
	})
}

// Dispatch marks an approved order as in transit
func (s *PurchaseService) Dispatch(ctx context.Context, actor shared.Actor, orderID uuid.UUID, req DispatchPurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	return s.mutate(ctx, actor, orderID, func(_ txn.Repositories, order *trade.PurchaseOrder) error {
		return order.Dispatch(req.ExpectedDelivery)
	})
}

// ReceiveGoods books entry movements for the received quantities. When the
// order becomes fully received and payables on receipt are enabled, a pending
// payable for the order total is created in the same transaction.
func (s *PurchaseService) ReceiveGoods(ctx context.Context, actor shared.Actor, orderID uuid.UUID, req ReceiveGoodsRequest) (*PurchaseOrderResponse, error) {
	resp, err := s.mutate(ctx, actor, orderID, func(repos txn.Repositories, order *trade.PurchaseOrder) error {
		receipts := make([]trade.ReceiptLine, 0, len(req.Lines))
		ids := make([]uuid.UUID, 0, len(req.Lines))
		for _, l := range req.Lines {
			receipts = append(receipts, trade.ReceiptLine{
				ProductID:  l.ProductID,
				Quantity:   l.Quantity,
				UnitCost:   l.UnitCost,
				LotCode:    l.LotCode,
				ExpiryDate: l.ExpiryDate,
			})
			ids = append(ids, l.ProductID)
		}

		received, err := order.Receive(actor, receipts)
		if err != nil {
			return err
		}
		products, err := s.ledger.LockProducts(ctx, repos, actor.TenantID, ids)
		if err != nil {
			return err
		}
		doc := order.Document()
		for _, r := range received {
			if _, err := s.ledger.PostLocked(ctx, repos, actor, products[r.ProductID], r.MovementRequest(doc)); err != nil {
				return err
			}
		}

		if s.opts.CreatePayableOnReceipt && order.Status == trade.PurchaseOrderStatusReceived &&
			order.PayableID == nil && order.GrandTotal.IsPositive() {
			payable, err := newOrderPayable(ctx, repos, actor, order, s.opts.PayableTermDays)
			if err != nil {
				return err
			}
			if err := repos.Payables().Save(ctx, payable); err != nil {
				return fmt.Errorf("save payable: %w", err)
			}
			order.LinkPayable(payable.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("purchase goods received",
		zap.String("tenant_id", actor.TenantID.String()),
		zap.String("order_id", orderID.String()),
		zap.String("status", resp.Status),
		zap.Int("lines", len(req.Lines)),
	)
	return resp, nil
}

// Cancel cancels an order that has not received goods
func (s *PurchaseService) Cancel(ctx context.Context, actor shared.Actor, orderID uuid.UUID, req CancelRequest) (*PurchaseOrderResponse, error) {
	return s.mutate(ctx, actor, orderID, func(_ txn.Repositories, order *trade.PurchaseOrder) error {
		return order.Cancel(req.Reason)
	})
}

// GetByID retrieves a purchase order with its lines
func (s *PurchaseService) GetByID(ctx context.Context, tenantID, orderID uuid.UUID) (*PurchaseOrderResponse, error) {
	order, err := s.orders.FindByIDForTenant(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	resp := ToPurchaseOrderResponse(order)
	return &resp, nil
}

// List retrieves purchase orders with pagination
func (s *PurchaseService) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]PurchaseOrderResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	orders, total, err := s.orders.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]PurchaseOrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, ToPurchaseOrderResponse(&orders[i]))
	}
	return out, total, nil
}

func (s *PurchaseService) mutate(ctx context.Context, actor shared.Actor, orderID uuid.UUID, fn func(repos txn.Repositories, order *trade.PurchaseOrder) error) (*PurchaseOrderResponse, error) {
	var order *trade.PurchaseOrder
	err := s.scope.Execute(ctx, func(repos txn.Repositories) error {
		var err error
		order, err = repos.PurchaseOrders().FindByIDForTenant(ctx, actor.TenantID, orderID)
		if err != nil {
			return err
		}
		if err := fn(repos, order); err != nil {
			return err
		}
		if err := repos.PurchaseOrders().SaveWithLock(ctx, order); err != nil {
			return err
		}
		s.ledger.PublishEvents(ctx, order.PullDomainEvents()...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := ToPurchaseOrderResponse(order)
	return &resp, nil
}

func addPurchaseLine(ctx context.Context, repos txn.Repositories, tenantID uuid.UUID, order *trade.PurchaseOrder, in PurchaseLineInput) error {
	product, err := repos.Products().FindByIDForTenant(ctx, tenantID, in.ProductID)
	if err != nil {
		return err
	}
	price := product.CostPrice
	if in.UnitPrice != nil {
		price = *in.UnitPrice
	}
	_, err = order.AddLine(product, in.Quantity, price, in.Discount)
	return err
}

func newOrderPayable(ctx context.Context, repos txn.Repositories, actor shared.Actor, order *trade.PurchaseOrder, termDays int) (*finance.Payable, error) {
	number, err := repos.Numberer().Next(ctx, actor.TenantID, shared.DocumentPayable)
	if err != nil {
		return nil, fmt.Errorf("next payable number: %w", err)
	}
	supplierID := order.SupplierID
	orderID := order.ID
	// stock bought is an asset; cost reaches the DRE through sale cost totals
	return finance.NewPayable(actor, finance.EntryParams{
		Number:           number,
		CounterpartyID:   &supplierID,
		CounterpartyName: order.SupplierName,
		Description:      "Purchase order " + order.Number,
		Category:         "purchases",
		Amount:           order.GrandTotal,
		DueDate:          dueIn(termDays),
		SourceType:       finance.SourcePurchaseOrder,
		SourceID:         &orderID,
		SourceNumber:     order.Number,
	})
}
