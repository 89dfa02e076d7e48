package cashier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/retail/internal/application/txn"
	"github.com/erp/retail/internal/domain/cashier"
	"github.com/erp/retail/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// openLockTTL bounds how long a crashed opener can block the operator
const openLockTTL = 10 * time.Second

// Locker takes a short-lived lock on a key. The returned release func must be called once.
// Implementations return shared.ErrLockNotObtained when the key is held elsewhere.
type Locker interface {
	Obtain(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, err error)
}

// NopLocker grants every lock. Used when no Redis is configured; the database
// unique index on open sessions still guards the invariant.
type NopLocker struct{}

// Obtain always succeeds
func (NopLocker) Obtain(context.Context, string, time.Duration) (func(context.Context) error, error) {
	return func(context.Context) error { return nil }, nil
}

// DrawerService manages cash drawer sessions
type DrawerService struct {
	scope    txn.TransactionScope
	sessions cashier.DrawerRepository
	locker   Locker
	logger   *zap.Logger
}

// NewDrawerService creates a new DrawerService
func NewDrawerService(scope txn.TransactionScope, sessions cashier.DrawerRepository, locker Locker, logger *zap.Logger) *DrawerService {
	if locker == nil {
		locker = NopLocker{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DrawerService{
		scope:    scope,
		sessions: sessions,
		locker:   locker,
		logger:   logger,
	}
}

// Open starts a session for the actor. An operator holds at most one open session.
func (s *DrawerService) Open(ctx context.Context, actor shared.Actor, req OpenDrawerRequest) (*SessionResponse, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	key := fmt.Sprintf("drawer:open:%s:%s", actor.TenantID, actor.UserID)
	release, err := s.locker.Obtain(ctx, key, openLockTTL)
	if err != nil {
		if errors.Is(err, shared.ErrLockNotObtained) {
			// another open for the same operator is in flight
			return nil, shared.ErrDrawerAlreadyOpen.WithDetail("operator_id", actor.UserID.String())
		}
		return nil, fmt.Errorf("obtain drawer lock: %w", err)
	}
	defer func() {
		if err := release(ctx); err != nil {
			s.logger.Warn("failed to release drawer lock", zap.String("key", key), zap.Error(err))
		}
	}()

	var session *cashier.DrawerSession
	err = s.scope.Execute(ctx, func(repos txn.Repositories) error {
		existing, err := repos.Drawers().FindOpenByOperator(ctx, actor.TenantID, actor.UserID)
		if err == nil {
			return shared.ErrDrawerAlreadyOpen.
				WithDetail("operator_id", actor.UserID.String()).
				WithDetail("session_id", existing.ID.String())
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return fmt.Errorf("load open session: %w", err)
		}
		session, err = cashier.OpenSession(actor, req.RegisterNumber, req.OpeningFloat, req.Note)
		if err != nil {
			return err
		}
		return repos.Drawers().Create(ctx, session)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("drawer opened",
		zap.String("tenant_id", actor.TenantID.String()),
		zap.String("session_id", session.ID.String()),
		zap.Int("register", session.RegisterNumber),
		zap.String("float", session.OpeningFloat.String()),
	)
	resp := ToSessionResponse(session)
	return &resp, nil
}

// RecordMovement records a sale, withdrawal or deposit in an open session
func (s *DrawerService) RecordMovement(ctx context.Context, actor shared.Actor, sessionID uuid.UUID, req MovementRequest) (*MovementResponse, error) {
	var movement *cashier.Movement
	err := s.scope.Execute(ctx, func(repos txn.Repositories) error {
		session, err := s.lock(ctx, repos, actor, sessionID)
		if err != nil {
			return err
		}
		if err := session.EnsureOperator(actor); err != nil {
			return err
		}
		movement, err = session.RecordMovement(actor, cashier.MovementKind(req.Kind), req.Amount, req.Description, nil)
		if err != nil {
			return err
		}
		if err := repos.Drawers().CreateMovement(ctx, movement); err != nil {
			return fmt.Errorf("record drawer movement: %w", err)
		}
		return repos.Drawers().SaveWithLock(ctx, session)
	})
	if err != nil {
		return nil, err
	}
	resp := ToMovementResponse(movement)
	return &resp, nil
}

// Close closes a session, storing counted cash, expected balance and variance
func (s *DrawerService) Close(ctx context.Context, actor shared.Actor, sessionID uuid.UUID, req CloseDrawerRequest) (*SessionResponse, error) {
	var session *cashier.DrawerSession
	err := s.scope.Execute(ctx, func(repos txn.Repositories) error {
		var err error
		session, err = repos.Drawers().FindByIDForUpdate(ctx, actor.TenantID, sessionID)
		if err != nil {
			return err
		}
		if err := session.Close(actor, req.CountedAmount, req.Note); err != nil {
			return err
		}
		return repos.Drawers().SaveWithLock(ctx, session)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("drawer closed",
		zap.String("tenant_id", actor.TenantID.String()),
		zap.String("session_id", session.ID.String()),
		zap.String("expected", session.ExpectedBalance.String()),
		zap.String("variance", session.VarianceOrZero().String()),
	)
	resp := ToSessionResponse(session)
	return &resp, nil
}

// Current returns the actor's open session, or nil when there is none
func (s *DrawerService) Current(ctx context.Context, actor shared.Actor) (*SessionResponse, error) {
	session, err := s.sessions.FindOpenByOperator(ctx, actor.TenantID, actor.UserID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	resp := ToSessionResponse(session)
	return &resp, nil
}

// Get retrieves a session
func (s *DrawerService) Get(ctx context.Context, tenantID, sessionID uuid.UUID) (*SessionResponse, error) {
	session, err := s.sessions.FindByIDForTenant(ctx, tenantID, sessionID)
	if err != nil {
		return nil, err
	}
	resp := ToSessionResponse(session)
	return &resp, nil
}

// List retrieves sessions with filtering and pagination
func (s *DrawerService) List(ctx context.Context, tenantID uuid.UUID, filter SessionListFilter) ([]SessionResponse, int64, error) {
	sessions, total, err := s.sessions.FindAllForTenant(ctx, tenantID, cashier.SessionFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  "opened_at",
			OrderDir: "desc",
		},
		Status:     cashier.SessionStatus(filter.Status),
		OperatorID: filter.OperatorID,
	})
	if err != nil {
		return nil, 0, err
	}
	out := make([]SessionResponse, 0, len(sessions))
	for i := range sessions {
		out = append(out, ToSessionResponse(&sessions[i]))
	}
	return out, total, nil
}

// ListMovements returns the movements of a session in recording order
func (s *DrawerService) ListMovements(ctx context.Context, tenantID, sessionID uuid.UUID) ([]MovementResponse, error) {
	if _, err := s.sessions.FindByIDForTenant(ctx, tenantID, sessionID); err != nil {
		return nil, err
	}
	movements, err := s.sessions.ListMovements(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	out := make([]MovementResponse, 0, len(movements))
	for i := range movements {
		out = append(out, ToMovementResponse(&movements[i]))
	}
	return out, nil
}

// Statistics summarises the sessions opened between from and to, inclusive
func (s *DrawerService) Statistics(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (*cashier.Statistics, error) {
	period, err := shared.NewPeriod(from, to)
	if err != nil {
		return nil, err
	}
	sessions, err := s.sessions.FindOpenedInPeriod(ctx, tenantID, period)
	if err != nil {
		return nil, err
	}
	stats := cashier.Summarize(sessions)
	return &stats, nil
}

// lock loads the session under a row lock, mapping a missing session to DRAWER_NOT_OPEN
func (s *DrawerService) lock(ctx context.Context, repos txn.Repositories, actor shared.Actor, sessionID uuid.UUID) (*cashier.DrawerSession, error) {
	session, err := repos.Drawers().FindByIDForUpdate(ctx, actor.TenantID, sessionID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrDrawerNotOpen.WithDetail("session_id", sessionID.String())
		}
		return nil, err
	}
	return session, nil
}
