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

// PayableService manages money the business owes
type PayableService struct {
	scope    txn.TransactionScope
	payables finance.PayableRepository
	logger   *zap.Logger
}

// NewPayableService creates a new PayableService
func NewPayableService(scope txn.TransactionScope, payables finance.PayableRepository, logger *zap.Logger) *PayableService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PayableService{
		scope:    scope,
		payables: payables,
		logger:   logger,
	}
}

// Create books a manual payable. A DRE code must name a cost, expense or deduction category.
func (s *PayableService) Create(ctx context.Context, actor shared.Actor, req CreateEntryRequest) (*EntryResponse, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	if err := checkDRECode(req.DRECode, true); err != nil {
		return nil, err
	}
	var p *finance.Payable
	err := s.scope.Execute(ctx, func(repos txn.Repositories) error {
		number, err := repos.Numberer().Next(ctx, actor.TenantID, shared.DocumentPayable)
		if err != nil {
			return fmt.Errorf("next payable number: %w", err)
		}
		p, err = finance.NewPayable(actor, entryParams(number, req))
		if err != nil {
			return err
		}
		return repos.Payables().Save(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	resp := ToPayableResponse(p)
	return &resp, nil
}

// Pay applies a payment and records the cash outflow
func (s *PayableService) Pay(ctx context.Context, actor shared.Actor, id uuid.UUID, req SettleRequest) (*SettlementResponse, error) {
	var (
		p          *finance.Payable
		settlement finance.Settlement
	)
	err := s.scope.Execute(ctx, func(repos txn.Repositories) error {
		var err error
		p, err = repos.Payables().FindByIDForTenant(ctx, actor.TenantID, id)
		if err != nil {
			return err
		}
		cmd, err := settleCommand(ctx, repos, actor.TenantID, req)
		if err != nil {
			return err
		}
		settlement, err = p.Pay(cmd)
		if err != nil {
			return err
		}
		if err := repos.Payables().SaveWithLock(ctx, p); err != nil {
			return err
		}
		if err := repos.CashFlow().Create(ctx, finance.NewOutflow(actor, p, settlement)); err != nil {
			return fmt.Errorf("record cash flow: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("payable paid",
		zap.String("tenant_id", actor.TenantID.String()),
		zap.String("number", p.Number),
		zap.String("amount", settlement.Amount.String()),
		zap.Bool("settled", settlement.Settled),
	)
	return &SettlementResponse{
		Entry:      ToPayableResponse(p),
		Amount:     settlement.Amount,
		Fee:        settlement.Fee.Amount,
		FeePercent: settlement.Fee.Percent,
		Net:        settlement.Fee.Net,
		PaidDate:   settlement.PaidDate,
		Settled:    settlement.Settled,
	}, nil
}

// Cancel cancels an unpaid payable
func (s *PayableService) Cancel(ctx context.Context, actor shared.Actor, id uuid.UUID, req CancelEntryRequest) (*EntryResponse, error) {
	var p *finance.Payable
	err := s.scope.Execute(ctx, func(repos txn.Repositories) error {
		var err error
		p, err = repos.Payables().FindByIDForTenant(ctx, actor.TenantID, id)
		if err != nil {
			return err
		}
		if err := p.Cancel(req.Reason); err != nil {
			return err
		}
		return repos.Payables().SaveWithLock(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	resp := ToPayableResponse(p)
	return &resp, nil
}

// RefreshOverdue flips pending payables due before today to overdue
func (s *PayableService) RefreshOverdue(ctx context.Context, actor shared.Actor, today time.Time) (*OverdueResult, error) {
	result := &OverdueResult{}
	err := s.scope.Execute(ctx, func(repos txn.Repositories) error {
		due, err := repos.Payables().FindPendingDueBefore(ctx, actor.TenantID, shared.TruncateDay(today))
		if err != nil {
			return fmt.Errorf("load pending payables: %w", err)
		}
		result.Checked = len(due)
		for i := range due {
			if !due[i].RefreshOverdue(today) {
				continue
			}
			if err := repos.Payables().SaveWithLock(ctx, &due[i]); err != nil {
				return err
			}
			result.Flipped++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RefreshOverdueForTenant runs RefreshOverdue on behalf of the nightly sweep
func (s *PayableService) RefreshOverdueForTenant(ctx context.Context, tenantID uuid.UUID, day time.Time) error {
	_, err := s.RefreshOverdue(ctx, shared.SystemActor(tenantID), day)
	return err
}

// GetByID retrieves a payable
func (s *PayableService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*EntryResponse, error) {
	p, err := s.payables.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	resp := ToPayableResponse(p)
	return &resp, nil
}

// List retrieves payables with filtering and pagination
func (s *PayableService) List(ctx context.Context, tenantID uuid.UUID, filter EntryListFilter) ([]EntryResponse, int64, error) {
	items, total, err := s.payables.FindAllForTenant(ctx, tenantID, filter.toDomain())
	if err != nil {
		return nil, 0, err
	}
	out := make([]EntryResponse, 0, len(items))
	for i := range items {
		out = append(out, ToPayableResponse(&items[i]))
	}
	return out, total, nil
}

// checkDRECode rejects a category whose side of the statement does not match the entry
func checkDRECode(code *int, payable bool) error {
	if code == nil {
		return nil
	}
	category, ok := finance.DRECategoryByCode(*code)
	if !ok {
		return shared.NewValidationError("unknown DRE category").WithDetail("dre_code", *code)
	}
	if category.Kind.IsPayableKind() != payable {
		return shared.NewValidationError("DRE category does not apply to this kind of entry").
			WithDetail("dre_code", *code).
			WithDetail("kind", string(category.Kind))
	}
	return nil
}
