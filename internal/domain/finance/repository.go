package finance

import (
	"context"
	"time"

	"github.com/erp/retail/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntryFilter narrows a receivable or payable listing
type EntryFilter struct {
	shared.Filter
	Status         Status
	CounterpartyID *uuid.UUID
	DueFrom        *time.Time
	DueTo          *time.Time
}

// ReceivableRepository defines the interface for receivable persistence
type ReceivableRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Receivable, error)
	FindBySource(ctx context.Context, tenantID uuid.UUID, source SourceType, sourceID uuid.UUID) ([]Receivable, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter EntryFilter) ([]Receivable, int64, error)

	// FindPendingDueBefore returns pending receivables whose due date is before the given day
	FindPendingDueBefore(ctx context.Context, tenantID uuid.UUID, day time.Time) ([]Receivable, error)

	Save(ctx context.Context, r *Receivable) error
	SaveWithLock(ctx context.Context, r *Receivable) error

	// SumSettledByDRE sums original amounts of settled receivables per DRE code, by paid date
	SumSettledByDRE(ctx context.Context, tenantID uuid.UUID, period shared.Period, codes []int) (map[int]decimal.Decimal, error)

	CountForTenant(ctx context.Context, tenantID uuid.UUID) (int64, error)
}

// PayableRepository defines the interface for payable persistence
type PayableRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Payable, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter EntryFilter) ([]Payable, int64, error)
	FindPendingDueBefore(ctx context.Context, tenantID uuid.UUID, day time.Time) ([]Payable, error)
	Save(ctx context.Context, p *Payable) error
	SaveWithLock(ctx context.Context, p *Payable) error

	// SumSettledByDRE sums original amounts of settled payables per DRE code, by paid date
	SumSettledByDRE(ctx context.Context, tenantID uuid.UUID, period shared.Period, codes []int) (map[int]decimal.Decimal, error)
}

// CashFlowRepository persists cash flow entries
type CashFlowRepository interface {
	Create(ctx context.Context, entry *CashFlowEntry) error
	FindByPeriod(ctx context.Context, tenantID uuid.UUID, period shared.Period) ([]CashFlowEntry, error)
}

// DRECategoryRepository persists the category taxonomy
type DRECategoryRepository interface {
	FindAll(ctx context.Context) ([]DRECategory, error)

	// Seed inserts the default taxonomy, leaving existing codes untouched
	Seed(ctx context.Context, categories []DRECategory) error
}
