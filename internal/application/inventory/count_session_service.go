package inventory

import (
	"context"
	"fmt"

	"github.com/erp/retail/internal/application/txn"
	"github.com/erp/retail/internal/domain/inventory"
	"github.com/erp/retail/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CountSessionService runs physical stock counts
type CountSessionService struct {
	scope    txn.TransactionScope
	ledger   *Ledger
	sessions inventory.CountSessionRepository
	logger   *zap.Logger
}

// NewCountSessionService creates a new CountSessionService
func NewCountSessionService(scope txn.TransactionScope, ledger *Ledger, sessions inventory.CountSessionRepository, logger *zap.Logger) *CountSessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CountSessionService{scope: scope, ledger: ledger, sessions: sessions, logger: logger}
}

// Open starts a new count session
func (s *CountSessionService) Open(ctx context.Context, actor shared.Actor, note string) (*CountSessionResponse, error) {
	var session *inventory.CountSession
	err := s.scope.Execute(ctx, func(repos txn.Repositories) error {
		number, err := repos.Numberer().Next(ctx, actor.TenantID, shared.DocumentCountSession)
		if err != nil {
			return fmt.Errorf("next count session number: %w", err)
		}
		session, err = inventory.NewCountSession(actor, number, note)
		if err != nil {
			return err
		}
		return repos.CountSessions().Save(ctx, session)
	})
	if err != nil {
		return nil, err
	}
	resp := ToCountSessionResponse(session)
	return &resp, nil
}

// RecordCount records the counted quantity of a product, snapshotting its current stock
func (s *CountSessionService) RecordCount(ctx context.Context, actor shared.Actor, sessionID, productID uuid.UUID, counted decimal.Decimal, note string) (*CountSessionResponse, error) {
	var session *inventory.CountSession
	err := s.scope.Execute(ctx, func(repos txn.Repositories) error {
		var err error
		session, err = repos.CountSessions().FindByIDForTenant(ctx, actor.TenantID, sessionID)
		if err != nil {
			return err
		}
		product, err := repos.Products().FindByIDForTenant(ctx, actor.TenantID, productID)
		if err != nil {
			return err
		}
		if err := session.RecordCount(product, counted, note); err != nil {
			return err
		}
		return repos.CountSessions().Save(ctx, session)
	})
	if err != nil {
		return nil, err
	}
	resp := ToCountSessionResponse(session)
	return &resp, nil
}

// Finish closes the session and sets each counted product to its counted quantity
func (s *CountSessionService) Finish(ctx context.Context, actor shared.Actor, sessionID uuid.UUID) (*CountSessionResponse, error) {
	var session *inventory.CountSession
	err := s.scope.Execute(ctx, func(repos txn.Repositories) error {
		var err error
		session, err = repos.CountSessions().FindByIDForTenant(ctx, actor.TenantID, sessionID)
		if err != nil {
			return err
		}
		requests, err := session.Finish(actor)
		if err != nil {
			return err
		}
		ids := make([]uuid.UUID, 0, len(requests))
		for id := range requests {
			ids = append(ids, id)
		}
		products, err := s.ledger.LockProducts(ctx, repos, actor.TenantID, ids)
		if err != nil {
			return err
		}
		for _, id := range SortIDs(ids) {
			if _, err := s.ledger.PostLocked(ctx, repos, actor, products[id], requests[id]); err != nil {
				return err
			}
		}
		if err := repos.CountSessions().Save(ctx, session); err != nil {
			return err
		}
		s.ledger.PublishEvents(ctx, session.PullDomainEvents()...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("count session finished",
		zap.String("tenant_id", actor.TenantID.String()),
		zap.String("number", session.Number),
		zap.Int("lines", len(session.Lines)),
	)
	resp := ToCountSessionResponse(session)
	return &resp, nil
}

// Cancel discards an open session
func (s *CountSessionService) Cancel(ctx context.Context, actor shared.Actor, sessionID uuid.UUID) error {
	return s.scope.Execute(ctx, func(repos txn.Repositories) error {
		session, err := repos.CountSessions().FindByIDForTenant(ctx, actor.TenantID, sessionID)
		if err != nil {
			return err
		}
		if err := session.Cancel(); err != nil {
			return err
		}
		return repos.CountSessions().Save(ctx, session)
	})
}

// Get returns a session with its lines
func (s *CountSessionService) Get(ctx context.Context, tenantID, sessionID uuid.UUID) (*CountSessionResponse, error) {
	session, err := s.sessions.FindByIDForTenant(ctx, tenantID, sessionID)
	if err != nil {
		return nil, err
	}
	resp := ToCountSessionResponse(session)
	return &resp, nil
}

// List lists count sessions
func (s *CountSessionService) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]CountSessionResponse, int64, error) {
	sessions, total, err := s.sessions.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]CountSessionResponse, 0, len(sessions))
	for i := range sessions {
		out = append(out, ToCountSessionResponse(&sessions[i]))
	}
	return out, total, nil
}
