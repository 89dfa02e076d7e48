package trade

import (
	"context"
	"fmt"

	inventoryapp "github.com/erp/retail/internal/application/inventory"
	"github.com/erp/retail/internal/application/txn"
	"github.com/erp/retail/internal/domain/catalog"
	"github.com/erp/retail/internal/domain/finance"
	"github.com/erp/retail/internal/domain/inventory"
	"github.com/erp/retail/internal/domain/shared"
	"github.com/erp/retail/internal/domain/trade"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SaleService handles the sale document lifecycle: quote, approval, invoice, delivery and cancellation
type SaleService struct {
	scope  txn.TransactionScope
	ledger *inventoryapp.Ledger
	sales  trade.SaleRepository
	opts   Options
	logger *zap.Logger
}

// NewSaleService creates a new SaleService
func NewSaleService(scope txn.TransactionScope, ledger *inventoryapp.Ledger, sales trade.SaleRepository, opts Options, logger *zap.Logger) *SaleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SaleService{
		scope:  scope,
		ledger: ledger,
		sales:  sales,
		opts:   opts,
		logger: logger,
	}
}

// Create creates a sale document in quote status
func (s *SaleService) Create(ctx context.Context, actor shared.Actor, req CreateSaleRequest) (*SaleResponse, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	var sale *trade.Sale
	err := s.scope.Execute(ctx, func(repos txn.Repositories) error {
		customer, err := ResolveCustomer(ctx, repos, actor.TenantID, req.CustomerID, s.opts.WalkInName)
		if err != nil {
			return err
		}
		number, err := repos.Numberer().Next(ctx, actor.TenantID, shared.DocumentSale)
		if err != nil {
			return fmt.Errorf("next sale number: %w", err)
		}
		sale, err = trade.NewSale(actor, number, trade.SaleKind(req.Kind), customer.ID, customer.Name)
		if err != nil {
			return err
		}
		for _, in := range req.Lines {
			line, err := BuildLine(ctx, repos, actor.TenantID, in)
			if err != nil {
				return err
			}
			if _, err := sale.AddLine(line); err != nil {
				return err
			}
		}
		if err := sale.SetAdjustments(req.Discount, req.Surcharge, req.Freight); err != nil {
			return err
		}
		return repos.Sales().Save(ctx, sale)
	})
	if err != nil {
		return nil, err
	}
	resp := ToSaleResponse(sale)
	return &resp, nil
}

// AddLine appends a line to a quote or approved sale
func (s *SaleService) AddLine(ctx context.Context, actor shared.Actor, saleID uuid.UUID, in LineInput) (*SaleResponse, error) {
	return s.mutate(ctx, actor, saleID, func(repos txn.Repositories, sale *trade.Sale) error {
		line, err := BuildLine(ctx, repos, actor.TenantID, in)
		if err != nil {
			return err
		}
		_, err = sale.AddLine(line)
		return err
	})
}

// UpdateLine changes the values of a line
func (s *SaleService) UpdateLine(ctx context.Context, actor shared.Actor, saleID, itemID uuid.UUID, in LineValuesInput) (*SaleResponse, error) {
	return s.mutate(ctx, actor, saleID, func(_ txn.Repositories, sale *trade.Sale) error {
		return sale.UpdateLine(itemID, in.Values())
	})
}

// RemoveLine deletes a line
func (s *SaleService) RemoveLine(ctx context.Context, actor shared.Actor, saleID, itemID uuid.UUID) (*SaleResponse, error) {
	return s.mutate(ctx, actor, saleID, func(_ txn.Repositories, sale *trade.Sale) error {
		return sale.RemoveLine(itemID)
	})
}

// SetAdjustments sets the header discount, surcharge and freight
func (s *SaleService) SetAdjustments(ctx context.Context, actor shared.Actor, saleID uuid.UUID, req AdjustmentsRequest) (*SaleResponse, error) {
	return s.mutate(ctx, actor, saleID, func(_ txn.Repositories, sale *trade.Sale) error {
		return sale.SetAdjustments(req.Discount, req.Surcharge, req.Freight)
	})
}

// Approve moves a quote to approved
func (s *SaleService) Approve(ctx context.Context, actor shared.Actor, saleID uuid.UUID) (*SaleResponse, error) {
	return s.mutate(ctx, actor, saleID, func(_ txn.Repositories, sale *trade.Sale) error {
		return sale.Approve()
	})
}

// Invoice checks stock for every product line, books the exits and creates a
// pending receivable for the grand total, all in one transaction.
func (s *SaleService) Invoice(ctx context.Context, actor shared.Actor, saleID uuid.UUID, req InvoiceSaleRequest) (*SaleResponse, error) {
	var sale *trade.Sale
	err := s.scope.Execute(ctx, func(repos txn.Repositories) error {
		var err error
		sale, err = repos.Sales().FindByIDForTenant(ctx, actor.TenantID, saleID)
		if err != nil {
			return err
		}
		products, err := s.ledger.LockProducts(ctx, repos, actor.TenantID, productIDs(sale))
		if err != nil {
			return err
		}
		if err := sale.Invoice(products); err != nil {
			return err
		}
		if err := s.postLines(ctx, repos, actor, sale, products, inventory.MovementExit); err != nil {
			return err
		}

		due := dueIn(s.opts.ReceivableTermDays)
		if req.DueDate != nil {
			due = *req.DueDate
		}
		if sale.GrandTotal.IsPositive() {
			receivable, err := newSaleReceivable(ctx, repos, actor, sale, due)
			if err != nil {
				return err
			}
			if err := repos.Receivables().Save(ctx, receivable); err != nil {
				return fmt.Errorf("save receivable: %w", err)
			}
		}
		return repos.Sales().SaveWithLock(ctx, sale)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("sale invoiced",
		zap.String("tenant_id", actor.TenantID.String()),
		zap.String("sale_id", sale.ID.String()),
		zap.String("number", sale.Number),
		zap.String("grand_total", sale.GrandTotal.String()),
	)
	resp := ToSaleResponse(sale)
	return &resp, nil
}

// Deliver marks an invoiced sale as delivered
func (s *SaleService) Deliver(ctx context.Context, actor shared.Actor, saleID uuid.UUID) (*SaleResponse, error) {
	return s.mutate(ctx, actor, saleID, func(_ txn.Repositories, sale *trade.Sale) error {
		return sale.Deliver(actor)
	})
}

// Cancel cancels a sale. An invoiced sale gets its stock back and its open receivables cancelled.
func (s *SaleService) Cancel(ctx context.Context, actor shared.Actor, saleID uuid.UUID, req CancelRequest) (*SaleResponse, error) {
	return s.mutate(ctx, actor, saleID, func(repos txn.Repositories, sale *trade.Sale) error {
		var products map[uuid.UUID]*catalog.Product
		wasInvoiced := sale.Status == trade.SaleStatusInvoiced
		if wasInvoiced {
			var err error
			products, err = s.ledger.LockProducts(ctx, repos, actor.TenantID, productIDs(sale))
			if err != nil {
				return err
			}
		}
		returned, err := sale.Cancel(req.Reason)
		if err != nil {
			return err
		}
		if !returned {
			return nil
		}
		if err := s.postLines(ctx, repos, actor, sale, products, inventory.MovementEntry); err != nil {
			return err
		}
		return cancelSourceReceivables(ctx, repos, actor.TenantID, finance.SourceSale, sale.ID, req.Reason)
	})
}

// GetByID retrieves a sale with its lines
func (s *SaleService) GetByID(ctx context.Context, tenantID, saleID uuid.UUID) (*SaleResponse, error) {
	sale, err := s.sales.FindByIDForTenant(ctx, tenantID, saleID)
	if err != nil {
		return nil, err
	}
	resp := ToSaleResponse(sale)
	return &resp, nil
}

// GetByNumber retrieves a sale by document number
func (s *SaleService) GetByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*SaleResponse, error) {
	sale, err := s.sales.FindByNumber(ctx, tenantID, number)
	if err != nil {
		return nil, err
	}
	resp := ToSaleResponse(sale)
	return &resp, nil
}

// List retrieves sales with filtering and pagination
func (s *SaleService) List(ctx context.Context, tenantID uuid.UUID, filter SaleListFilter) ([]SaleResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "sold_at"
		filter.OrderDir = "desc"
	}
	sales, total, err := s.sales.FindAllForTenant(ctx, tenantID, trade.SaleFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
			Search:   filter.Search,
		},
		Status:     trade.SaleStatus(filter.Status),
		CustomerID: filter.CustomerID,
	})
	if err != nil {
		return nil, 0, err
	}
	out := make([]SaleResponse, 0, len(sales))
	for i := range sales {
		out = append(out, ToSaleResponse(&sales[i]))
	}
	return out, total, nil
}

// mutate loads a sale, applies fn and saves it with a version check in one transaction.
// Events raised by the sale are published before the transaction commits.
func (s *SaleService) mutate(ctx context.Context, actor shared.Actor, saleID uuid.UUID, fn func(repos txn.Repositories, sale *trade.Sale) error) (*SaleResponse, error) {
	var sale *trade.Sale
	err := s.scope.Execute(ctx, func(repos txn.Repositories) error {
		var err error
		sale, err = repos.Sales().FindByIDForTenant(ctx, actor.TenantID, saleID)
		if err != nil {
			return err
		}
		if err := fn(repos, sale); err != nil {
			return err
		}
		if err := repos.Sales().SaveWithLock(ctx, sale); err != nil {
			return err
		}
		s.ledger.PublishEvents(ctx, sale.PullDomainEvents()...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := ToSaleResponse(sale)
	return &resp, nil
}

// postLines books one movement of the given kind per product line, in line order
func (s *SaleService) postLines(ctx context.Context, repos txn.Repositories, actor shared.Actor, sale *trade.Sale, products map[uuid.UUID]*catalog.Product, kind inventory.MovementKind) error {
	return PostSaleLines(ctx, s.ledger, repos, actor, sale, products, kind)
}
