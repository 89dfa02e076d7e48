package finance

import (
	"time"

	"github.com/erp/retail/internal/domain/shared"
)

// Receivable is money owed to the business
type Receivable struct {
	shared.TenantAggregateRoot
	Entry
}

// TableName returns the table name for GORM
func (Receivable) TableName() string {
	return "receivables"
}

// NewReceivable creates a pending receivable
func NewReceivable(actor shared.Actor, p EntryParams) (*Receivable, error) {
	entry, err := newEntry(p)
	if err != nil {
		return nil, err
	}
	return &Receivable{
		TenantAggregateRoot: shared.NewTenantAggregateRootForActor(actor),
		Entry:               entry,
	}, nil
}

// Settle applies a payment, computing the processor fee when a method is given
func (r *Receivable) Settle(cmd SettleCommand) (Settlement, error) {
	s, err := r.settle(cmd)
	if err != nil {
		return Settlement{}, err
	}
	r.Touch()
	return s, nil
}

// Cancel cancels an unpaid receivable
func (r *Receivable) Cancel(reason string) error {
	if err := r.cancel(reason); err != nil {
		return err
	}
	r.Touch()
	return nil
}

// RefreshOverdue re-evaluates the overdue status and raises receivable.overdue when it flips
func (r *Receivable) RefreshOverdue(actor shared.Actor, today time.Time) bool {
	if !r.EvaluateOverdue(today) {
		return false
	}
	r.Touch()
	r.AddDomainEvent(NewReceivableOverdueEvent(r, actor, today))
	return true
}
