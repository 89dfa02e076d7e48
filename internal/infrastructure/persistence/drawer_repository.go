package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/erp/retail/internal/domain/cashier"
	"github.com/erp/retail/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormDrawerRepository implements DrawerRepository using GORM
type GormDrawerRepository struct {
	db *gorm.DB
}

// NewGormDrawerRepository creates a new GormDrawerRepository
func NewGormDrawerRepository(db *gorm.DB) *GormDrawerRepository {
	return &GormDrawerRepository{db: db}
}

// FindByIDForTenant finds a session by ID within a tenant
func (r *GormDrawerRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*cashier.DrawerSession, error) {
	var session cashier.DrawerSession
	if err := r.db.WithContext(ctx).Scopes(forTenant(tenantID)).
		Where("id = ?", id).
		First(&session).Error; err != nil {
		return nil, translate(err)
	}
	return &session, nil
}

// FindByIDForUpdate loads a session with SELECT ... FOR UPDATE
func (r *GormDrawerRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*cashier.DrawerSession, error) {
	var session cashier.DrawerSession
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Scopes(forTenant(tenantID)).
		Where("id = ?", id).
		First(&session).Error; err != nil {
		return nil, translate(err)
	}
	return &session, nil
}

// FindOpenByOperator returns the operator's open session
func (r *GormDrawerRepository) FindOpenByOperator(ctx context.Context, tenantID, operatorID uuid.UUID) (*cashier.DrawerSession, error) {
	var session cashier.DrawerSession
	if err := r.db.WithContext(ctx).Scopes(forTenant(tenantID)).
		Where("operator_id = ? AND status = ?", operatorID, cashier.SessionStatusOpen).
		First(&session).Error; err != nil {
		return nil, translate(err)
	}
	return &session, nil
}

// FindAllForTenant lists sessions with filtering and pagination
func (r *GormDrawerRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter cashier.SessionFilter) ([]cashier.DrawerSession, int64, error) {
	query := r.db.WithContext(ctx).Model(&cashier.DrawerSession{}).Scopes(forTenant(tenantID))
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.OperatorID != nil {
		query = query.Where("operator_id = ?", *filter.OperatorID)
	}

	total, err := countRows(query)
	if err != nil {
		return nil, 0, err
	}
	var sessions []cashier.DrawerSession
	if err := query.Scopes(paginate(filter.Filter, DrawerSortFields, "opened_at")).Find(&sessions).Error; err != nil {
		return nil, 0, err
	}
	return sessions, total, nil
}

// FindOpenedInPeriod returns the sessions opened within the period
func (r *GormDrawerRepository) FindOpenedInPeriod(ctx context.Context, tenantID uuid.UUID, period shared.Period) ([]cashier.DrawerSession, error) {
	var sessions []cashier.DrawerSession
	if err := r.db.WithContext(ctx).Scopes(forTenant(tenantID)).
		Where("opened_at >= ? AND opened_at < ?", period.Start, period.EndExclusive()).
		Order("opened_at ASC").
		Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

// ListMovements returns the movements of a session in recording order
func (r *GormDrawerRepository) ListMovements(ctx context.Context, sessionID uuid.UUID) ([]cashier.Movement, error) {
	var movements []cashier.Movement
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC, id ASC").
		Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// Create inserts a new session. The partial unique index on open sessions
// turns a concurrent second open into DRAWER_ALREADY_OPEN.
func (r *GormDrawerRepository) Create(ctx context.Context, session *cashier.DrawerSession) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(session).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.ErrDrawerAlreadyOpen.WithDetail("operator_id", session.OperatorID.String())
	}
	return err
}

// SaveWithLock persists session fields with an optimistic version check
func (r *GormDrawerRepository) SaveWithLock(ctx context.Context, session *cashier.DrawerSession) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkVersion(tx, &cashier.DrawerSession{}, session.ID, session.Version); err != nil {
			return err
		}

		expected := session.Version
		session.Version++
		session.UpdatedAt = time.Now()

		result := tx.Model(&cashier.DrawerSession{}).
			Where("id = ? AND version = ?", session.ID, expected).
			Omit(clause.Associations, "id", "tenant_id", "created_at", "created_by").
			Select("*").
			Updates(session)
		if result.Error != nil {
			return translate(result.Error)
		}
		if result.RowsAffected == 0 {
			return shared.ErrOptimisticLock.WithDetail("session_id", session.ID.String())
		}
		return nil
	})
}

// CreateMovement records a drawer movement
func (r *GormDrawerRepository) CreateMovement(ctx context.Context, movement *cashier.Movement) error {
	return translate(r.db.WithContext(ctx).Create(movement).Error)
}

var _ cashier.DrawerRepository = (*GormDrawerRepository)(nil)
