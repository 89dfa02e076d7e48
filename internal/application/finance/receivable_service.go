package finance

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/retail/internal/application/txn"
	"github.com/erp/retail/internal/domain/finance"
	"github.com/erp/retail/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReceivableService manages money owed to the business
type ReceivableService struct {
	scope       txn.TransactionScope
	receivables finance.ReceivableRepository
	publisher   shared.EventPublisher
	logger      *zap.Logger
}

// NewReceivableService creates a new ReceivableService
func NewReceivableService(scope txn.TransactionScope, receivables finance.ReceivableRepository, publisher shared.EventPublisher, logger *zap.Logger) *ReceivableService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReceivableService{
		scope:       scope,
		receivables: receivables,
		publisher:   publisher,
		logger:      logger,
	}
}

// Create books a manual receivable
func (s *ReceivableService) Create(ctx context.Context, actor shared.Actor, req CreateEntryRequest) (*EntryResponse, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	if err := checkDRECode(req.DRECode, false); err != nil {
		return nil, err
	}
	var r *finance.Receivable
	err := s.scope.Execute(ctx, func(repos txn.Repositories) error {
		number, err := repos.Numberer().Next(ctx, actor.TenantID, shared.DocumentReceivable)
		if err != nil {
			return fmt.Errorf("next receivable number: %w", err)
		}
		r, err = finance.NewReceivable(actor, entryParams(number, req))
		if err != nil {
			return err
		}
		return repos.Receivables().Save(ctx, r)
	})
	if err != nil {
		return nil, err
	}
	resp := ToReceivableResponse(r)
	return &resp, nil
}

// Settle applies a payment and records the cash inflow
func (s *ReceivableService) Settle(ctx context.Context, actor shared.Actor, id uuid.UUID, req SettleRequest) (*SettlementResponse, error) {
	var (
		r          *finance.Receivable
		settlement finance.Settlement
	)
	err := s.scope.Execute(ctx, func(repos txn.Repositories) error {
		var err error
		r, err = repos.Receivables().FindByIDForTenant(ctx, actor.TenantID, id)
		if err != nil {
			return err
		}
		cmd, err := settleCommand(ctx, repos, actor.TenantID, req)
		if err != nil {
			return err
		}
		settlement, err = r.Settle(cmd)
		if err != nil {
			return err
		}
		if err := repos.Receivables().SaveWithLock(ctx, r); err != nil {
			return err
		}
		if err := repos.CashFlow().Create(ctx, finance.NewInflow(actor, r, settlement)); err != nil {
			return fmt.Errorf("record cash flow: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("receivable settled",
		zap.String("tenant_id", actor.TenantID.String()),
		zap.String("number", r.Number),
		zap.String("amount", settlement.Amount.String()),
		zap.String("fee", settlement.Fee.Amount.String()),
		zap.Bool("settled", settlement.Settled),
	)
	return &SettlementResponse{
		Entry:      ToReceivableResponse(r),
		Amount:     settlement.Amount,
		Fee:        settlement.Fee.Amount,
		FeePercent: settlement.Fee.Percent,
		Net:        settlement.Fee.Net,
		PaidDate:   settlement.PaidDate,
		Settled:    settlement.Settled,
	}, nil
}

// Cancel cancels an unpaid receivable
func (s *ReceivableService) Cancel(ctx context.Context, actor shared.Actor, id uuid.UUID, req CancelEntryRequest) (*EntryResponse, error) {
	var r *finance.Receivable
	err := s.scope.Execute(ctx, func(repos txn.Repositories) error {
		var err error
		r, err = repos.Receivables().FindByIDForTenant(ctx, actor.TenantID, id)
		if err != nil {
			return err
		}
		if err := r.Cancel(req.Reason); err != nil {
			return err
		}
		return repos.Receivables().SaveWithLock(ctx, r)
	})
	if err != nil {
		return nil, err
	}
	resp := ToReceivableResponse(r)
	return &resp, nil
}

// RefreshOverdue flips pending receivables due before today to overdue and
// raises one receivable.overdue event per flipped receivable.
func (s *ReceivableService) RefreshOverdue(ctx context.Context, actor shared.Actor, today time.Time) (*OverdueResult, error) {
	result := &OverdueResult{}
	err := s.scope.Execute(ctx, func(repos txn.Repositories) error {
		due, err := repos.Receivables().FindPendingDueBefore(ctx, actor.TenantID, shared.TruncateDay(today))
		if err != nil {
			return fmt.Errorf("load pending receivables: %w", err)
		}
		result.Checked = len(due)
		var events []shared.DomainEvent
		for i := range due {
			r := &due[i]
			if !r.RefreshOverdue(actor, today) {
				continue
			}
			if err := repos.Receivables().SaveWithLock(ctx, r); err != nil {
				return err
			}
			events = append(events, r.PullDomainEvents()...)
			result.Flipped++
		}
		s.publish(ctx, events)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if result.Flipped > 0 {
		s.logger.Info("receivables marked overdue",
			zap.String("tenant_id", actor.TenantID.String()),
			zap.Int("count", result.Flipped),
		)
	}
	return result, nil
}

// RefreshOverdueForTenant runs RefreshOverdue on behalf of the nightly
// sweep, which has no user
func (s *ReceivableService) RefreshOverdueForTenant(ctx context.Context, tenantID uuid.UUID, day time.Time) error {
	_, err := s.RefreshOverdue(ctx, shared.SystemActor(tenantID), day)
	return err
}

// GetByID retrieves a receivable
func (s *ReceivableService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*EntryResponse, error) {
	r, err := s.receivables.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	resp := ToReceivableResponse(r)
	return &resp, nil
}

// List retrieves receivables with filtering and pagination
func (s *ReceivableService) List(ctx context.Context, tenantID uuid.UUID, filter EntryListFilter) ([]EntryResponse, int64, error) {
	items, total, err := s.receivables.FindAllForTenant(ctx, tenantID, filter.toDomain())
	if err != nil {
		return nil, 0, err
	}
	out := make([]EntryResponse, 0, len(items))
	for i := range items {
		out = append(out, ToReceivableResponse(&items[i]))
	}
	return out, total, nil
}

func (s *ReceivableService) publish(ctx context.Context, events []shared.DomainEvent) {
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish receivable events", zap.Error(err))
	}
}

func entryParams(number string, req CreateEntryRequest) finance.EntryParams {
	return finance.EntryParams{
		Number:           number,
		CounterpartyID:   req.CounterpartyID,
		CounterpartyName: req.CounterpartyName,
		Description:      req.Description,
		Category:         req.Category,
		DRECode:          req.DRECode,
		Amount:           req.Amount,
		DueDate:          req.DueDate,
		SourceType:       finance.SourceManual,
	}
}

// settleCommand resolves the payment method of a settle request
func settleCommand(ctx context.Context, repos txn.Repositories, tenantID uuid.UUID, req SettleRequest) (finance.SettleCommand, error) {
	cmd := finance.SettleCommand{
		Amount:       req.Amount,
		Interest:     req.Interest,
		Penalty:      req.Penalty,
		Discount:     req.Discount,
		Installments: req.Installments,
	}
	if req.PaidDate != nil {
		cmd.PaidDate = *req.PaidDate
	}
	if req.PaymentMethodID == nil || *req.PaymentMethodID == uuid.Nil {
		return cmd, nil
	}
	method, err := repos.PaymentMethods().FindByIDForTenant(ctx, tenantID, *req.PaymentMethodID)
	if err != nil {
		return cmd, err
	}
	if !method.Active {
		return cmd, shared.NewValidationError("payment method is inactive").WithDetail("payment_method_id", method.ID.String())
	}
	cmd.Method = method
	return cmd, nil
}
