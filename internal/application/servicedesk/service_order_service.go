package servicedesk

import (
	"context"
	"fmt"
	"time"

	inventoryapp "github.com/erp/retail/internal/application/inventory"
	tradeapp "github.com/erp/retail/internal/application/trade"
	"github.com/erp/retail/internal/application/txn"
	"github.com/erp/retail/internal/domain/finance"
	"github.com/erp/retail/internal/domain/inventory"
	"github.com/erp/retail/internal/domain/servicedesk"
	"github.com/erp/retail/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Options holds the business settings of the service desk
type Options struct {
	WalkInName   string
	WarrantyDays int
}

// ServiceOrderService handles service orders, their parts, budgets and payments
type ServiceOrderService struct {
	scope  txn.TransactionScope
	ledger *inventoryapp.Ledger
	orders servicedesk.ServiceOrderRepository
	opts   Options
	logger *zap.Logger
}

// NewServiceOrderService creates a new ServiceOrderService
func NewServiceOrderService(scope txn.TransactionScope, ledger *inventoryapp.Ledger, orders servicedesk.ServiceOrderRepository, opts Options, logger *zap.Logger) *ServiceOrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ServiceOrderService{
		scope:  scope,
		ledger: ledger,
		orders: orders,
		opts:   opts,
		logger: logger,
	}
}

// Open records equipment received for service
func (s *ServiceOrderService) Open(ctx context.Context, actor shared.Actor, req OpenServiceOrderRequest) (*ServiceOrderResponse, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	if req.WarrantyDays == 0 {
		req.WarrantyDays = s.opts.WarrantyDays
	}
	var order *servicedesk.ServiceOrder
	err := s.scope.Execute(ctx, func(repos txn.Repositories) error {
		customer, err := tradeapp.ResolveCustomer(ctx, repos, actor.TenantID, req.CustomerID, s.opts.WalkInName)
		if err != nil {
			return err
		}
		number, err := repos.Numberer().Next(ctx, actor.TenantID, shared.DocumentServiceOrder)
		if err != nil {
			return fmt.Errorf("next service order number: %w", err)
		}
		order, err = servicedesk.NewServiceOrder(actor, number, servicedesk.Intake{
			CustomerID:     customer.ID,
			CustomerName:   customer.Name,
			Equipment:      req.Equipment,
			Brand:          req.Brand,
			Model:          req.Model,
			SerialNumber:   req.SerialNumber,
			ReportedDefect: req.ReportedDefect,
			WarrantyDays:   req.WarrantyDays,
		})
		if err != nil {
			return err
		}
		return repos.ServiceOrders().Save(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("service order opened",
		zap.String("tenant_id", actor.TenantID.String()),
		zap.String("order_id", order.ID.String()),
		zap.String("number", order.Number),
	)
	resp := ToServiceOrderResponse(order)
	return &resp, nil
}

// AssignTechnician sets the responsible technician
func (s *ServiceOrderService) AssignTechnician(ctx context.Context, actor shared.Actor, orderID uuid.UUID, req AssignTechnicianRequest) (*ServiceOrderResponse, error) {
	return s.mutate(ctx, actor, orderID, func(_ txn.Repositories, order *servicedesk.ServiceOrder) error {
		return order.AssignTechnician(actor, req.TechnicianID, req.Name)
	})
}

// SetDiagnosis records the technical diagnosis
func (s *ServiceOrderService) SetDiagnosis(ctx context.Context, actor shared.Actor, orderID uuid.UUID, req DiagnosisRequest) (*ServiceOrderResponse, error) {
	return s.mutate(ctx, actor, orderID, func(_ txn.Repositories, order *servicedesk.ServiceOrder) error {
		order.SetDiagnosis(req.Diagnosis)
		return nil
	})
}

// SetValues sets service value, discount and freight
func (s *ServiceOrderService) SetValues(ctx context.Context, actor shared.Actor, orderID uuid.UUID, req ValuesRequest) (*ServiceOrderResponse, error) {
	return s.mutate(ctx, actor, orderID, func(_ txn.Repositories, order *servicedesk.ServiceOrder) error {
		if err := order.SetServiceValue(req.ServiceValue); err != nil {
			return err
		}
		return order.SetAdjustments(req.Discount, req.Freight)
	})
}

// AddPart adds a product part priced from the catalog unless a price is given
func (s *ServiceOrderService) AddPart(ctx context.Context, actor shared.Actor, orderID uuid.UUID, in PartInput) (*ServiceOrderResponse, error) {
	return s.mutate(ctx, actor, orderID, func(repos txn.Repositories, order *servicedesk.ServiceOrder) error {
		productID := in.ProductID
		line, err := tradeapp.BuildLine(ctx, repos, actor.TenantID, tradeapp.LineInput{
			ProductID: &productID,
			Quantity:  in.Quantity,
			UnitPrice: in.UnitPrice,
			Discount:  in.Discount,
		})
		if err != nil {
			return err
		}
		_, err = order.AddPart(line)
		return err
	})
}

// UpdatePart changes the values of a part not yet applied
func (s *ServiceOrderService) UpdatePart(ctx context.Context, actor shared.Actor, orderID, partID uuid.UUID, in tradeapp.LineValuesInput) (*ServiceOrderResponse, error) {
	return s.mutate(ctx, actor, orderID, func(_ txn.Repositories, order *servicedesk.ServiceOrder) error {
		return order.UpdatePart(partID, in.Values())
	})
}

// RemovePart deletes a part not yet applied
func (s *ServiceOrderService) RemovePart(ctx context.Context, actor shared.Actor, orderID, partID uuid.UUID) (*ServiceOrderResponse, error) {
	return s.mutate(ctx, actor, orderID, func(_ txn.Repositories, order *servicedesk.ServiceOrder) error {
		return order.RemovePart(partID)
	})
}

// ApplyPart marks a part as used and books its stock exit in the same transaction
func (s *ServiceOrderService) ApplyPart(ctx context.Context, actor shared.Actor, orderID, partID uuid.UUID) (*ServiceOrderResponse, error) {
	return s.mutate(ctx, actor, orderID, func(repos txn.Repositories, order *servicedesk.ServiceOrder) error {
		productID, req, err := order.ApplyPart(actor, partID)
		if err != nil {
			return err
		}
		if _, _, err := s.ledger.Post(ctx, repos, actor, productID, req); err != nil {
			return err
		}
		return nil
	})
}

// Transition moves the order to another status. Cancelling returns applied parts to stock.
func (s *ServiceOrderService) Transition(ctx context.Context, actor shared.Actor, orderID uuid.UUID, req TransitionRequest) (*ServiceOrderResponse, error) {
	target := servicedesk.Status(req.Status)
	return s.mutate(ctx, actor, orderID, func(repos txn.Repositories, order *servicedesk.ServiceOrder) error {
		if err := order.TransitionTo(actor, target, req.Note); err != nil {
			return err
		}
		if target != servicedesk.StatusCancelled {
			return nil
		}
		return s.returnAppliedParts(ctx, repos, actor, order)
	})
}

// CreateBudget quotes a service order
func (s *ServiceOrderService) CreateBudget(ctx context.Context, actor shared.Actor, orderID uuid.UUID, req CreateBudgetRequest) (*BudgetResponse, error) {
	var budget *servicedesk.Budget
	err := s.scope.Execute(ctx, func(repos txn.Repositories) error {
		order, err := repos.ServiceOrders().FindByIDForTenant(ctx, actor.TenantID, orderID)
		if err != nil {
			return err
		}
		number, err := repos.Numberer().Next(ctx, actor.TenantID, shared.DocumentBudget)
		if err != nil {
			return fmt.Errorf("next budget number: %w", err)
		}
		budget, err = servicedesk.NewBudget(actor, number, order, req.Description, req.ServiceValue, req.PartsValue, req.ValidityDays)
		if err != nil {
			return err
		}
		return repos.Budgets().Save(ctx, budget)
	})
	if err != nil {
		return nil, err
	}
	resp := ToBudgetResponse(budget)
	return &resp, nil
}

// ApproveBudget accepts a budget, writing its values onto the order
func (s *ServiceOrderService) ApproveBudget(ctx context.Context, actor shared.Actor, budgetID uuid.UUID) (*ServiceOrderResponse, error) {
	return s.decideBudget(ctx, actor, budgetID, func(b *servicedesk.Budget, order *servicedesk.ServiceOrder) error {
		if b.IsExpired(time.Now()) {
			return shared.NewValidationError("budget has expired").
				WithDetail("budget_id", b.ID.String()).
				WithDetail("valid_until", b.ValidUntil.Format("2006-01-02"))
		}
		return b.Approve(actor, order)
	})
}

// RejectBudget declines a budget
func (s *ServiceOrderService) RejectBudget(ctx context.Context, actor shared.Actor, budgetID uuid.UUID, req RejectBudgetRequest) (*ServiceOrderResponse, error) {
	return s.decideBudget(ctx, actor, budgetID, func(b *servicedesk.Budget, order *servicedesk.ServiceOrder) error {
		return b.Reject(actor, order, req.Reason)
	})
}

// ListBudgets returns the budgets of an order
func (s *ServiceOrderService) ListBudgets(ctx context.Context, tenantID, orderID uuid.UUID) ([]BudgetResponse, error) {
	var out []BudgetResponse
	err := s.scope.Execute(ctx, func(repos txn.Repositories) error {
		budgets, err := repos.Budgets().FindByOrder(ctx, tenantID, orderID)
		if err != nil {
			return err
		}
		out = make([]BudgetResponse, 0, len(budgets))
		for i := range budgets {
			out = append(out, ToBudgetResponse(&budgets[i]))
		}
		return nil
	})
	return out, err
}

// RegisterPayment takes a payment for the order. It books a settled receivable
// under service revenue, with the processor fee of the chosen method.
func (s *ServiceOrderService) RegisterPayment(ctx context.Context, actor shared.Actor, orderID uuid.UUID, req PaymentRequest) (*PaymentResponse, error) {
	if req.Installments == 0 {
		req.Installments = 1
	}
	var resp *PaymentResponse
	err := s.scope.Execute(ctx, func(repos txn.Repositories) error {
		order, err := repos.ServiceOrders().FindByIDForTenant(ctx, actor.TenantID, orderID)
		if err != nil {
			return err
		}
		if order.Status == servicedesk.StatusCancelled {
			return shared.NewValidationError("cannot take payment for a cancelled service order").
				WithDetail("order_id", order.ID.String())
		}
		method, err := repos.PaymentMethods().FindByIDForTenant(ctx, actor.TenantID, req.PaymentMethodID)
		if err != nil {
			return err
		}
		if !method.Active {
			return shared.NewValidationError("payment method is inactive").WithDetail("payment_method_id", method.ID.String())
		}
		amount := req.Amount
		if amount.IsZero() {
			amount = order.GrandTotal
		}

		number, err := repos.Numberer().Next(ctx, actor.TenantID, shared.DocumentReceivable)
		if err != nil {
			return fmt.Errorf("next receivable number: %w", err)
		}
		paidDate := time.Now()
		if req.PaidDate != nil {
			paidDate = *req.PaidDate
		}
		customerID, sourceID := order.CustomerID, order.ID
		code := finance.DREServiceRevenue
		receivable, err := finance.NewReceivable(actor, finance.EntryParams{
			Number:           number,
			CounterpartyID:   &customerID,
			CounterpartyName: order.CustomerName,
			Description:      "OS " + order.Number,
			Category:         "services",
			DRECode:          &code,
			Amount:           amount,
			DueDate:          paidDate,
			SourceType:       finance.SourceServiceOrder,
			SourceID:         &sourceID,
			SourceNumber:     order.Number,
		})
		if err != nil {
			return err
		}
		settlement, err := receivable.Settle(finance.SettleCommand{
			PaidDate:     paidDate,
			Method:       method,
			Installments: req.Installments,
		})
		if err != nil {
			return err
		}
		if err := repos.Receivables().Save(ctx, receivable); err != nil {
			return fmt.Errorf("save receivable: %w", err)
		}
		if err := repos.CashFlow().Create(ctx, finance.NewInflow(actor, receivable, settlement)); err != nil {
			return fmt.Errorf("record cash flow: %w", err)
		}

		order.AddHistory(actor, servicedesk.ActionPaymentTaken, fmt.Sprintf("Payment %s of %s received via %s",
			receivable.Number, settlement.Amount.StringFixed(2), method.Name))
		if err := repos.ServiceOrders().SaveWithLock(ctx, order); err != nil {
			return err
		}

		resp = &PaymentResponse{
			ReceivableID:       receivable.ID,
			Number:             receivable.Number,
			Amount:             settlement.Amount,
			Fee:                settlement.Fee.Amount,
			Net:                settlement.Fee.Net,
			FeePercent:         settlement.Fee.Percent,
			ExpectedSettlement: receivable.ExpectedSettlement,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("service order payment registered",
		zap.String("tenant_id", actor.TenantID.String()),
		zap.String("order_id", orderID.String()),
		zap.String("receivable", resp.Number),
		zap.String("amount", resp.Amount.String()),
	)
	return resp, nil
}

// GetByID retrieves an order with parts and history
func (s *ServiceOrderService) GetByID(ctx context.Context, tenantID, orderID uuid.UUID) (*ServiceOrderResponse, error) {
	order, err := s.orders.FindByIDForTenant(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	resp := ToServiceOrderResponse(order)
	return &resp, nil
}

// List retrieves orders with pagination
func (s *ServiceOrderService) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]ServiceOrderResponse, int64, error) {
	orders, total, err := s.orders.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]ServiceOrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, ToServiceOrderResponse(&orders[i]))
	}
	return out, total, nil
}

func (s *ServiceOrderService) decideBudget(ctx context.Context, actor shared.Actor, budgetID uuid.UUID, fn func(*servicedesk.Budget, *servicedesk.ServiceOrder) error) (*ServiceOrderResponse, error) {
	var order *servicedesk.ServiceOrder
	err := s.scope.Execute(ctx, func(repos txn.Repositories) error {
		budget, err := repos.Budgets().FindByIDForTenant(ctx, actor.TenantID, budgetID)
		if err != nil {
			return err
		}
		order, err = repos.ServiceOrders().FindByIDForTenant(ctx, actor.TenantID, budget.OrderID)
		if err != nil {
			return err
		}
		if err := fn(budget, order); err != nil {
			return err
		}
		if err := repos.Budgets().Save(ctx, budget); err != nil {
			return err
		}
		return repos.ServiceOrders().SaveWithLock(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	resp := ToServiceOrderResponse(order)
	return &resp, nil
}

// returnAppliedParts books an entry for every part already taken from stock
func (s *ServiceOrderService) returnAppliedParts(ctx context.Context, repos txn.Repositories, actor shared.Actor, order *servicedesk.ServiceOrder) error {
	id := order.ID
	for i := range order.Parts {
		part := &order.Parts[i]
		if !part.Applied {
			continue
		}
		req := inventory.MovementRequest{
			Kind:      inventory.MovementEntry,
			Quantity:  part.Quantity,
			UnitValue: part.UnitCost,
			Document:  inventory.DocumentRef{Type: inventory.DocumentTypeServiceOrder, ID: &id, Number: order.Number},
			Reason:    "service order cancelled",
		}
		if _, _, err := s.ledger.Post(ctx, repos, actor, part.ReferenceID(), req); err != nil {
			return err
		}
	}
	return nil
}

// mutate loads an order, applies fn and saves it with a version check in one transaction
func (s *ServiceOrderService) mutate(ctx context.Context, actor shared.Actor, orderID uuid.UUID, fn func(repos txn.Repositories, order *servicedesk.ServiceOrder) error) (*ServiceOrderResponse, error) {
	var order *servicedesk.ServiceOrder
	err := s.scope.Execute(ctx, func(repos txn.Repositories) error {
		var err error
		order, err = repos.ServiceOrders().FindByIDForTenant(ctx, actor.TenantID, orderID)
		if err != nil {
			return err
		}
		if err := fn(repos, order); err != nil {
			return err
		}
		return repos.ServiceOrders().SaveWithLock(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	resp := ToServiceOrderResponse(order)
	return &resp, nil
}
