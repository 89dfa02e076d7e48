package finance

import (
	"time"

	"github.com/erp/retail/internal/domain/shared"
)

// Payable is money owed by the business
type Payable struct {
	shared.TenantAggregateRoot
	Entry
}

// TableName returns the table name for GORM
func (Payable) TableName() string {
	return "payables"
}

// NewPayable creates a pending payable
func NewPayable(actor shared.Actor, p EntryParams) (*Payable, error) {
	entry, err := newEntry(p)
	if err != nil {
		return nil, err
	}
	return &Payable{
		TenantAggregateRoot: shared.NewTenantAggregateRootForActor(actor),
		Entry:               entry,
	}, nil
}

// Pay applies a payment to the payable
func (p *Payable) Pay(cmd SettleCommand) (Settlement, error) {
	s, err := p.settle(cmd)
	if err != nil {
		return Settlement{}, err
	}
	p.Touch()
	return s, nil
}

// Cancel cancels an unpaid payable
func (p *Payable) Cancel(reason string) error {
	if err := p.cancel(reason); err != nil {
		return err
	}
	p.Touch()
	return nil
}

// RefreshOverdue re-evaluates the overdue status
func (p *Payable) RefreshOverdue(today time.Time) bool {
	if !p.EvaluateOverdue(today) {
		return false
	}
	p.Touch()
	return true
}
