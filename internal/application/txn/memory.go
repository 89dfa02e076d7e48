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

// StaticRepositories is a fixed set of repositories, used with NoOpTransactionScope.
// Unset fields return nil.
type StaticRepositories struct {
	ProductRepo       catalog.ProductRepository
	ServiceItemRepo   catalog.ServiceItemRepository
	MovementRepo      inventory.MovementRepository
	BatchRepo         inventory.BatchRepository
	CountSessionRepo  inventory.CountSessionRepository
	SaleRepo          trade.SaleRepository
	PurchaseOrderRepo trade.PurchaseOrderRepository
	ServiceOrderRepo  servicedesk.ServiceOrderRepository
	BudgetRepo        servicedesk.BudgetRepository
	ReceivableRepo    finance.ReceivableRepository
	PayableRepo       finance.PayableRepository
	CashFlowRepo      finance.CashFlowRepository
	DrawerRepo        cashier.DrawerRepository
	CustomerRepo      partner.CustomerRepository
	SupplierRepo      partner.SupplierRepository
	MethodRepo        payment.MethodRepository
	DocumentNumberer  shared.DocumentNumberer
}

func (r *StaticRepositories) Products() catalog.ProductRepository {
	return r.ProductRepo
}

func (r *StaticRepositories) ServiceItems() catalog.ServiceItemRepository {
	return r.ServiceItemRepo
}

func (r *StaticRepositories) Movements() inventory.MovementRepository {
	return r.MovementRepo
}

func (r *StaticRepositories) Batches() inventory.BatchRepository {
	return r.BatchRepo
}

func (r *StaticRepositories) CountSessions() inventory.CountSessionRepository {
	return r.CountSessionRepo
}

func (r *StaticRepositories) Sales() trade.SaleRepository {
	return r.SaleRepo
}

func (r *StaticRepositories) PurchaseOrders() trade.PurchaseOrderRepository {
	return r.PurchaseOrderRepo
}

func (r *StaticRepositories) ServiceOrders() servicedesk.ServiceOrderRepository {
	return r.ServiceOrderRepo
}

func (r *StaticRepositories) Budgets() servicedesk.BudgetRepository {
	return r.BudgetRepo
}

func (r *StaticRepositories) Receivables() finance.ReceivableRepository {
	return r.ReceivableRepo
}

func (r *StaticRepositories) Payables() finance.PayableRepository {
	return r.PayableRepo
}

func (r *StaticRepositories) CashFlow() finance.CashFlowRepository {
	return r.CashFlowRepo
}

func (r *StaticRepositories) Drawers() cashier.DrawerRepository {
	return r.DrawerRepo
}

func (r *StaticRepositories) Customers() partner.CustomerRepository {
	return r.CustomerRepo
}

func (r *StaticRepositories) Suppliers() partner.SupplierRepository {
	return r.SupplierRepo
}

func (r *StaticRepositories) PaymentMethods() payment.MethodRepository {
	return r.MethodRepo
}

func (r *StaticRepositories) Numberer() shared.DocumentNumberer {
	return r.DocumentNumberer
}

// NoOpTransactionScope runs the function without a real transaction.
// This is useful for unit tests with mocked repositories.
type NoOpTransactionScope struct {
	repos Repositories
}

// NewNoOpTransactionScope creates a NoOpTransactionScope over the given repositories
func NewNoOpTransactionScope(repos Repositories) *NoOpTransactionScope {
	return &NoOpTransactionScope{repos: repos}
}

// Execute runs fn directly
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos Repositories) error) error {
	return fn(s.repos)
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ Repositories = (*StaticRepositories)(nil)
