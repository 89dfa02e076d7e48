package persistence

import (
	"context"

	"github.com/erp/retail/internal/application/txn"
	"github.com/erp/retail/internal/domain/cashier"
	"github.com/erp/retail/internal/domain/catalog"
	"github.com/erp/retail/internal/domain/finance"
	"github.com/erp/retail/internal/domain/inventory"
	"github.com/erp/retail/internal/domain/partner"
	"github.com/erp/retail/internal/domain/payment"
	"github.com/erp/retail/internal/domain/servicedesk"
	"github.com/erp/retail/internal/domain/shared"
	"github.com/erp/retail/internal/domain/trade"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// Every repository handed to the callback shares the transaction.
type GormTransactionScope struct {
	db       *gorm.DB
	numberer shared.DocumentNumberer
}

// NewGormTransactionScope creates a new GormTransactionScope.
// Document numbers come from the database sequence table.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// WithNumberer replaces the transactional sequence table with an external numberer
func (s *GormTransactionScope) WithNumberer(numberer shared.DocumentNumberer) *GormTransactionScope {
	return &GormTransactionScope{db: s.db, numberer: numberer}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos txn.Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormRepositories{tx: tx, numberer: s.numberer})
	})
}

// gormRepositories provides access to all repositories within a transaction
type gormRepositories struct {
	tx       *gorm.DB
	numberer shared.DocumentNumberer
}

func (r *gormRepositories) Products() catalog.ProductRepository {
	return NewGormProductRepository(r.tx)
}

func (r *gormRepositories) ServiceItems() catalog.ServiceItemRepository {
	return NewGormServiceItemRepository(r.tx)
}

func (r *gormRepositories) Movements() inventory.MovementRepository {
	return NewGormMovementRepository(r.tx)
}

func (r *gormRepositories) Batches() inventory.BatchRepository {
	return NewGormBatchRepository(r.tx)
}

func (r *gormRepositories) CountSessions() inventory.CountSessionRepository {
	return NewGormCountSessionRepository(r.tx)
}

func (r *gormRepositories) Sales() trade.SaleRepository {
	return NewGormSaleRepository(r.tx)
}

func (r *gormRepositories) PurchaseOrders() trade.PurchaseOrderRepository {
	return NewGormPurchaseOrderRepository(r.tx)
}

func (r *gormRepositories) ServiceOrders() servicedesk.ServiceOrderRepository {
	return NewGormServiceOrderRepository(r.tx)
}

func (r *gormRepositories) Budgets() servicedesk.BudgetRepository {
	return NewGormBudgetRepository(r.tx)
}

func (r *gormRepositories) Receivables() finance.ReceivableRepository {
	return NewGormReceivableRepository(r.tx)
}

func (r *gormRepositories) Payables() finance.PayableRepository {
	return NewGormPayableRepository(r.tx)
}

func (r *gormRepositories) CashFlow() finance.CashFlowRepository {
	return NewGormCashFlowRepository(r.tx)
}

func (r *gormRepositories) Drawers() cashier.DrawerRepository {
	return NewGormDrawerRepository(r.tx)
}

func (r *gormRepositories) Customers() partner.CustomerRepository {
	return NewGormCustomerRepository(r.tx)
}

func (r *gormRepositories) Suppliers() partner.SupplierRepository {
	return NewGormSupplierRepository(r.tx)
}

func (r *gormRepositories) PaymentMethods() payment.MethodRepository {
	return NewGormPaymentMethodRepository(r.tx)
}

func (r *gormRepositories) Numberer() shared.DocumentNumberer {
	if r.numberer != nil {
		return r.numberer
	}
	return NewGormDocumentNumberer(r.tx)
}

var (
	_ txn.TransactionScope = (*GormTransactionScope)(nil)
	_ txn.Repositories     = (*gormRepositories)(nil)
)
