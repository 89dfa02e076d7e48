package txn

import (
	"context"

	"github.com/erp/retail/internal/domain/cashier"
	"github.com/erp/retail/internal/domain/catalog"
	"github.com/erp/retail/internal/domain/finance"
	"github.com/erp/retail/internal/domain/inventory"
	"github.com/erp/retail/internal/domain/partner"
	"github.com/erp/retail/internal/domain/payment"
	"github.com/erp/retail/internal/domain/servicedesk"
	"github.com/erp/retail/internal/domain/shared"
	"github.com/erp/retail/internal/domain/trade"
)

// TransactionScope runs a unit of work atomically.
// If fn returns an error every write made through the repositories is rolled back.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos Repositories) error) error
}

// Repositories gives access to every repository bound to the same database transaction.
// Row locks taken through these repositories are held until the scope ends.
type Repositories interface {
	Products() catalog.ProductRepository
	ServiceItems() catalog.ServiceItemRepository
	Movements() inventory.MovementRepository
	Batches() inventory.BatchRepository
	CountSessions() inventory.CountSessionRepository
	Sales() trade.SaleRepository
	PurchaseOrders() trade.PurchaseOrderRepository
	ServiceOrders() servicedesk.ServiceOrderRepository
	Budgets() servicedesk.BudgetRepository
	Receivables() finance.ReceivableRepository
	Payables() finance.PayableRepository
	CashFlow() finance.CashFlowRepository
	Drawers() cashier.DrawerRepository
	Customers() partner.CustomerRepository
	Suppliers() partner.SupplierRepository
	PaymentMethods() payment.MethodRepository

	// Numberer hands out document numbers. The database implementation takes
	// part in the transaction so a rollback also releases the number.
	Numberer() shared.DocumentNumberer
}
