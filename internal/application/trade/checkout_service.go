package trade

import (
	"context"
	"errors"
	"fmt"
	"time"

	inventoryapp "github.com/erp/retail/internal/application/inventory"
	"github.com/erp/retail/internal/application/txn"
	"github.com/erp/retail/internal/domain/cashier"
	"github.com/erp/retail/internal/domain/finance"
	"github.com/erp/retail/internal/domain/inventory"
	"github.com/erp/retail/internal/domain/payment"
	"github.com/erp/retail/internal/domain/shared"
	"github.com/erp/retail/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CheckoutService runs the point-of-sale transaction. Stock exits, the settled
// receivable and the drawer sale movement commit together or not at all.
type CheckoutService struct {
	scope  txn.TransactionScope
	ledger *inventoryapp.Ledger
	opts   Options
	logger *zap.Logger
}

// NewCheckoutService creates a new CheckoutService
func NewCheckoutService(scope txn.TransactionScope, ledger *inventoryapp.Ledger, opts Options, logger *zap.Logger) *CheckoutService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CheckoutService{
		scope:  scope,
		ledger: ledger,
		opts:   opts,
		logger: logger,
	}
}

// Checkout sells the requested lines at the counter and returns the receipt
func (s *CheckoutService) Checkout(ctx context.Context, actor shared.Actor, req CheckoutRequest) (*Receipt, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	if len(req.Lines) == 0 {
		return nil, shared.NewValidationError("checkout requires at least one line")
	}
	if req.Installments == 0 {
		req.Installments = 1
	}

	var receipt *Receipt
	err := s.scope.Execute(ctx, func(repos txn.Repositories) error {
		var err error
		receipt, err = s.checkout(ctx, repos, actor, req)
		return err
	})
	if err != nil {
		s.logger.Warn("checkout aborted",
			zap.String("tenant_id", actor.TenantID.String()),
			zap.String("drawer_session_id", req.DrawerSessionID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("checkout completed",
		zap.String("tenant_id", actor.TenantID.String()),
		zap.String("sale_id", receipt.SaleID.String()),
		zap.String("number", receipt.Number),
		zap.String("total", receipt.Total.String()),
		zap.String("fee", receipt.Fee.String()),
	)
	return receipt, nil
}

func (s *CheckoutService) checkout(ctx context.Context, repos txn.Repositories, actor shared.Actor, req CheckoutRequest) (*Receipt, error) {
	// the session lock serializes running totals for this drawer until commit
	session, err := repos.Drawers().FindByIDForUpdate(ctx, actor.TenantID, req.DrawerSessionID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrDrawerNotOpen.WithDetail("session_id", req.DrawerSessionID.String())
		}
		return nil, err
	}
	if err := session.EnsureOpen(); err != nil {
		return nil, err
	}
	if err := session.EnsureOperator(actor); err != nil {
		return nil, err
	}

	method, err := s.resolveMethod(ctx, repos, actor.TenantID, req.PaymentMethodID)
	if err != nil {
		return nil, err
	}
	customer, err := ResolveCustomer(ctx, repos, actor.TenantID, req.CustomerID, s.opts.WalkInName)
	if err != nil {
		return nil, err
	}

	number, err := repos.Numberer().Next(ctx, actor.TenantID, shared.DocumentSale)
	if err != nil {
		return nil, fmt.Errorf("next sale number: %w", err)
	}
	sale, err := trade.NewSale(actor, number, trade.SaleKindSale, customer.ID, customer.Name)
	if err != nil {
		return nil, err
	}
	for _, in := range req.Lines {
		line, err := BuildLine(ctx, repos, actor.TenantID, in)
		if err != nil {
			return nil, err
		}
		if _, err := sale.AddLine(line); err != nil {
			return nil, err
		}
	}
	if err := sale.SetAdjustments(req.Discount, decimal.Zero, decimal.Zero); err != nil {
		return nil, err
	}
	if sale.GrandTotal.IsNegative() {
		return nil, shared.NewValidationError("checkout total cannot be negative").
			WithDetail("grand_total", sale.GrandTotal.String())
	}

	tendered, change, err := tender(method, sale.GrandTotal, req.Tendered)
	if err != nil {
		return nil, err
	}

	products, err := s.ledger.LockProducts(ctx, repos, actor.TenantID, productIDs(sale))
	if err != nil {
		return nil, err
	}
	if err := sale.CheckStock(products); err != nil {
		return nil, err
	}
	if err := sale.CompleteCheckout(actor, session.ID, method.ID); err != nil {
		return nil, err
	}
	if err := repos.Sales().Save(ctx, sale); err != nil {
		return nil, fmt.Errorf("save sale: %w", err)
	}
	if err := PostSaleLines(ctx, s.ledger, repos, actor, sale, products, inventory.MovementExit); err != nil {
		return nil, err
	}

	receivable, err := newSaleReceivable(ctx, repos, actor, sale, time.Now())
	if err != nil {
		return nil, err
	}
	// a fully discounted sale settles its 0.00 receivable without a fee and
	// moves no money, so it books neither cash flow nor a drawer movement
	paid := sale.GrandTotal.IsPositive()
	settle := finance.SettleCommand{PaidDate: time.Now(), Installments: req.Installments}
	if paid {
		settle.Method = method
	}
	settlement, err := receivable.Settle(settle)
	if err != nil {
		return nil, err
	}
	if err := repos.Receivables().Save(ctx, receivable); err != nil {
		return nil, fmt.Errorf("save receivable: %w", err)
	}

	if paid {
		if err := repos.CashFlow().Create(ctx, finance.NewInflow(actor, receivable, settlement)); err != nil {
			return nil, fmt.Errorf("record cash flow: %w", err)
		}
		saleID := sale.ID
		movement, err := session.RecordMovement(actor, cashier.MovementSale, sale.GrandTotal, "Sale "+sale.Number, &saleID)
		if err != nil {
			return nil, err
		}
		if err := repos.Drawers().CreateMovement(ctx, movement); err != nil {
			return nil, fmt.Errorf("record drawer movement: %w", err)
		}
		if err := repos.Drawers().SaveWithLock(ctx, session); err != nil {
			return nil, err
		}
	}

	s.ledger.PublishEvents(ctx, sale.PullDomainEvents()...)

	return &Receipt{
		SaleID:       sale.ID,
		Number:       sale.Number,
		Total:        sale.GrandTotal,
		Tendered:     tendered,
		Change:       change,
		Fee:          settlement.Fee.Amount,
		Net:          settlement.Fee.Net,
		ReceivableID: receivable.ID,
		Installments: req.Installments,
	}, nil
}

// resolveMethod loads the requested payment method, or the tenant's cash method,
// creating a fee-free cash method the first time one is needed.
func (s *CheckoutService) resolveMethod(ctx context.Context, repos txn.Repositories, tenantID uuid.UUID, methodID *uuid.UUID) (*payment.Method, error) {
	if methodID != nil && *methodID != uuid.Nil {
		method, err := repos.PaymentMethods().FindByIDForTenant(ctx, tenantID, *methodID)
		if err != nil {
			return nil, err
		}
		if !method.Active {
			return nil, shared.NewValidationError("payment method is inactive").WithDetail("payment_method_id", method.ID.String())
		}
		return method, nil
	}
	method, err := repos.PaymentMethods().FindByType(ctx, tenantID, payment.MethodTypeCash)
	if err == nil {
		return method, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("load cash method: %w", err)
	}
	if err := repos.PaymentMethods().CreateIfAbsent(ctx, payment.NewCashMethod(tenantID)); err != nil {
		return nil, fmt.Errorf("create cash method: %w", err)
	}
	// read back whichever row won, ours or a concurrent checkout's
	method, err = repos.PaymentMethods().FindByType(ctx, tenantID, payment.MethodTypeCash)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, shared.NewValidationError("no active cash payment method")
	}
	if err != nil {
		return nil, fmt.Errorf("load cash method: %w", err)
	}
	return method, nil
}

// tender computes what the customer handed over and the change due.
// Only cash may be overpaid; other methods are charged the exact total.
func tender(method *payment.Method, total, tendered decimal.Decimal) (decimal.Decimal, decimal.Decimal, error) {
	if method.Type != payment.MethodTypeCash || tendered.IsZero() {
		return total, decimal.Zero, nil
	}
	if tendered.LessThan(total) {
		return decimal.Zero, decimal.Zero, shared.NewValidationError("tendered amount is less than the total").
			WithDetail("total", total.String()).
			WithDetail("tendered", tendered.String())
	}
	return tendered, tendered.Sub(total), nil
}
