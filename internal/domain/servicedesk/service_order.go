package servicedesk

import (
	"fmt"
	"strings"
	"time"

	"github.com/erp/retail/internal/domain/inventory"
	"github.com/erp/retail/internal/domain/shared"
	"github.com/erp/retail/internal/domain/shared/valueobject"
	"github.com/erp/retail/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultWarrantyDays is used when an order is opened without a warranty period
const DefaultWarrantyDays = 90

// Status represents the status of a service order
type Status string

const (
	StatusOpen          Status = "open"
	StatusDiagnosing    Status = "diagnosing"
	StatusQuoting       Status = "quoting"
	StatusApproved      Status = "approved"
	StatusInProgress    Status = "in_progress"
	StatusAwaitingParts Status = "awaiting_parts"
	StatusCompleted     Status = "completed"
	StatusDelivered     Status = "delivered"
	StatusCancelled     Status = "cancelled"
)

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsTerminal returns true for statuses that accept no further transition
func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

var transitions = map[Status][]Status{
	StatusOpen:          {StatusDiagnosing},
	StatusDiagnosing:    {StatusQuoting},
	StatusQuoting:       {StatusApproved},
	StatusApproved:      {StatusInProgress},
	StatusInProgress:    {StatusAwaitingParts, StatusCompleted},
	StatusAwaitingParts: {StatusInProgress, StatusCompleted},
	StatusCompleted:     {StatusDelivered},
}

// CanTransitionTo checks if the status can transition to the target status
func (s Status) CanTransitionTo(target Status) bool {
	if target == StatusCancelled {
		return !s.IsTerminal()
	}
	for _, next := range transitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// Part is a product used on a service order. Applying it books the stock exit.
type Part struct {
	shared.BaseEntity
	OrderID uuid.UUID `gorm:"type:uuid;not null;index"`
	trade.LineItem
	Applied   bool `gorm:"not null;default:false"`
	AppliedAt *time.Time
}

// TableName returns the table name for GORM
func (Part) TableName() string {
	return "service_order_parts"
}

// ServiceOrder is a repair or service ticket.
// grand = service + parts - discount + freight, parts = sum of part lines.
type ServiceOrder struct {
	shared.TenantAggregateRoot
	Number           string          `gorm:"type:varchar(30);not null;index:idx_service_order_number"`
	Status           Status          `gorm:"type:varchar(20);not null;index"`
	CustomerID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	CustomerName     string          `gorm:"type:varchar(200)"`
	TechnicianID     *uuid.UUID      `gorm:"type:uuid"`
	TechnicianName   string          `gorm:"type:varchar(100)"`
	Equipment        string          `gorm:"type:varchar(200);not null"`
	Brand            string          `gorm:"type:varchar(100)"`
	Model            string          `gorm:"type:varchar(100)"`
	SerialNumber     string          `gorm:"type:varchar(100)"`
	ReportedDefect   string          `gorm:"type:text;not null"`
	Diagnosis        string          `gorm:"type:text"`
	ServiceValue     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	QuotedPartsValue decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	PartsValue       decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	PartsCost        decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Discount         decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Freight          decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	GrandTotal       decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	WarrantyDays     int             `gorm:"not null;default:90"`
	OpenedAt         time.Time       `gorm:"not null"`
	ApprovedAt       *time.Time
	CompletedAt      *time.Time      `gorm:"index"`
	WarrantyUntil    *time.Time      `gorm:"type:date"`
	DeliveredAt      *time.Time
	CancelledAt      *time.Time
	Parts            []Part          `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	History          []HistoryEntry  `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (ServiceOrder) TableName() string {
	return "service_orders"
}

// Intake holds what is recorded when equipment is received
type Intake struct {
	CustomerID     uuid.UUID
	CustomerName   string
	Equipment      string
	Brand          string
	Model          string
	SerialNumber   string
	ReportedDefect string
	WarrantyDays   int
}

// NewServiceOrder opens a service order and records the opening in its history
func NewServiceOrder(actor shared.Actor, number string, in Intake) (*ServiceOrder, error) {
	if number == "" {
		return nil, shared.NewValidationError("service order number cannot be empty")
	}
	if in.CustomerID == uuid.Nil {
		return nil, shared.NewValidationError("customer is required")
	}
	if strings.TrimSpace(in.Equipment) == "" {
		return nil, shared.NewValidationError("equipment is required")
	}
	if strings.TrimSpace(in.ReportedDefect) == "" {
		return nil, shared.NewValidationError("reported defect is required")
	}
	if in.WarrantyDays < 0 {
		return nil, shared.NewValidationError("warranty days cannot be negative")
	}
	if in.WarrantyDays == 0 {
		in.WarrantyDays = DefaultWarrantyDays
	}

	o := &ServiceOrder{
		TenantAggregateRoot: shared.NewTenantAggregateRootForActor(actor),
		Number:              number,
		Status:              StatusOpen,
		CustomerID:          in.CustomerID,
		CustomerName:        in.CustomerName,
		Equipment:           strings.TrimSpace(in.Equipment),
		Brand:               in.Brand,
		Model:               in.Model,
		SerialNumber:        in.SerialNumber,
		ReportedDefect:      strings.TrimSpace(in.ReportedDefect),
		ServiceValue:        decimal.Zero,
		QuotedPartsValue:    decimal.Zero,
		PartsValue:          decimal.Zero,
		PartsCost:           decimal.Zero,
		Discount:            decimal.Zero,
		Freight:             decimal.Zero,
		GrandTotal:          decimal.Zero,
		WarrantyDays:        in.WarrantyDays,
		OpenedAt:            time.Now(),
		Parts:               make([]Part, 0),
		History:             make([]HistoryEntry, 0),
	}
	o.record(actor, ActionOpened, fmt.Sprintf("Service order opened for %s", o.Equipment), "", StatusOpen)
	return o, nil
}

// AssignTechnician sets the responsible technician
func (o *ServiceOrder) AssignTechnician(actor shared.Actor, technicianID uuid.UUID, name string) error {
	if o.Status.IsTerminal() {
		return shared.NewDomainErrorf(shared.CodeInvalidStatusTransition, "Cannot change a service order in %s status", o.Status)
	}
	o.TechnicianID = &technicianID
	o.TechnicianName = name
	o.record(actor, ActionTechnician, "Technician assigned: "+name, o.Status, o.Status)
	return nil
}

// SetDiagnosis records the technical diagnosis
func (o *ServiceOrder) SetDiagnosis(diagnosis string) {
	o.Diagnosis = diagnosis
	o.Touch()
}

// SetServiceValue sets the labour value and recomputes totals
func (o *ServiceOrder) SetServiceValue(value decimal.Decimal) error {
	if !o.canChangeValues() {
		return shared.NewDomainErrorf(shared.CodeInvalidStatusTransition, "Cannot change values of a service order in %s status", o.Status)
	}
	if err := valueobject.ValidateAmount("service value", value); err != nil {
		return shared.NewValidationError(err.Error())
	}
	previous := o.ServiceValue
	o.ServiceValue = value
	if err := o.RecomputeTotals(); err != nil {
		o.ServiceValue = previous
		_ = o.RecomputeTotals()
		return err
	}
	return nil
}

// SetAdjustments sets discount and freight and recomputes totals
func (o *ServiceOrder) SetAdjustments(discount, freight decimal.Decimal) error {
	if !o.canChangeValues() {
		return shared.NewDomainErrorf(shared.CodeInvalidStatusTransition, "Cannot change values of a service order in %s status", o.Status)
	}
	if err := valueobject.ValidateAmount("discount", discount); err != nil {
		return shared.NewValidationError(err.Error())
	}
	if err := valueobject.ValidateAmount("freight", freight); err != nil {
		return shared.NewValidationError(err.Error())
	}
	prevDiscount, prevFreight := o.Discount, o.Freight
	o.Discount, o.Freight = discount, freight
	if err := o.RecomputeTotals(); err != nil {
		o.Discount, o.Freight = prevDiscount, prevFreight
		_ = o.RecomputeTotals()
		return err
	}
	return nil
}

// AddPart appends a product line and recomputes totals
func (o *ServiceOrder) AddPart(line trade.LineItem) (*Part, error) {
	if !o.canChangeValues() {
		return nil, shared.NewDomainErrorf(shared.CodeInvalidStatusTransition, "Cannot change parts of a service order in %s status", o.Status)
	}
	if !line.IsProduct() {
		return nil, shared.NewValidationError("service order parts must reference a product")
	}
	o.Parts = append(o.Parts, Part{BaseEntity: shared.NewBaseEntity(), OrderID: o.ID, LineItem: line})
	if err := o.RecomputeTotals(); err != nil {
		o.Parts = o.Parts[:len(o.Parts)-1]
		_ = o.RecomputeTotals()
		return nil, err
	}
	return &o.Parts[len(o.Parts)-1], nil
}

// UpdatePart changes the values of a part not yet applied
func (o *ServiceOrder) UpdatePart(partID uuid.UUID, values trade.LineValues) error {
	part, err := o.editablePart(partID)
	if err != nil {
		return err
	}
	previous := part.LineItem
	if err := part.SetValues(values); err != nil {
		return err
	}
	if err := o.RecomputeTotals(); err != nil {
		part.LineItem = previous
		_ = o.RecomputeTotals()
		return err
	}
	part.Touch()
	return nil
}

// RemovePart deletes a part not yet applied
func (o *ServiceOrder) RemovePart(partID uuid.UUID) error {
	if _, err := o.editablePart(partID); err != nil {
		return err
	}
	for i := range o.Parts {
		if o.Parts[i].ID == partID {
			o.Parts = append(o.Parts[:i], o.Parts[i+1:]...)
			break
		}
	}
	return o.RecomputeTotals()
}

// ApplyPart marks a part as used and returns the exit movement to book
func (o *ServiceOrder) ApplyPart(actor shared.Actor, partID uuid.UUID) (uuid.UUID, inventory.MovementRequest, error) {
	part, err := o.editablePart(partID)
	if err != nil {
		return uuid.Nil, inventory.MovementRequest{}, err
	}
	now := time.Now()
	part.Applied = true
	part.AppliedAt = &now
	part.Touch()
	o.record(actor, ActionPartApplied, fmt.Sprintf("Part %s applied: %s", part.Code, part.Quantity.String()), o.Status, o.Status)

	id := o.ID
	return part.ReferenceID(), inventory.MovementRequest{
		Kind:      inventory.MovementExit,
		Quantity:  part.Quantity,
		UnitValue: part.UnitCost,
		Document:  inventory.DocumentRef{Type: inventory.DocumentTypeServiceOrder, ID: &id, Number: o.Number},
		Reason:    "Part applied on service order " + o.Number,
	}, nil
}

// RecomputeTotals derives parts and grand totals. Part lines, when present,
// override the parts value quoted by an approved budget.
func (o *ServiceOrder) RecomputeTotals() error {
	parts := decimal.Zero
	cost := decimal.Zero
	for i := range o.Parts {
		o.Parts[i].Recompute()
		parts = parts.Add(o.Parts[i].Total)
		cost = cost.Add(o.Parts[i].CostTotal())
	}
	if len(o.Parts) == 0 {
		parts = o.QuotedPartsValue
	}
	grand := o.ServiceValue.Add(parts).Sub(o.Discount).Add(o.Freight)

	o.PartsValue = parts
	o.PartsCost = cost
	o.GrandTotal = valueobject.RoundMoney(grand)
	o.Touch()
	if grand.IsNegative() {
		return shared.NewValidationError("discount cannot exceed the service order total").
			WithDetail("order_id", o.ID.String())
	}
	return nil
}

// TransitionTo moves the order along its status graph, recording history.
// Completing sets the completion date and the warranty end date.
func (o *ServiceOrder) TransitionTo(actor shared.Actor, target Status, note string) error {
	if !o.Status.CanTransitionTo(target) {
		return shared.NewTransitionError("service order", o.Status, target).
			WithDetail("order_id", o.ID.String())
	}
	now := time.Now()
	switch target {
	case StatusApproved:
		o.ApprovedAt = &now
	case StatusCompleted:
		o.CompletedAt = &now
		until := shared.TruncateDay(now).AddDate(0, 0, o.WarrantyDays)
		o.WarrantyUntil = &until
	case StatusDelivered:
		o.DeliveredAt = &now
	case StatusCancelled:
		o.CancelledAt = &now
	}
	from := o.Status
	o.Status = target
	description := fmt.Sprintf("Status changed from %s to %s", from, target)
	if note != "" {
		description += ": " + note
	}
	o.record(actor, ActionStatusChanged, description, from, target)
	return nil
}

// ApplyBudget writes approved budget values onto the order and forces it to approved
func (o *ServiceOrder) ApplyBudget(actor shared.Actor, b *Budget) error {
	if o.Status.IsTerminal() || o.Status == StatusCompleted {
		return shared.NewTransitionError("service order", o.Status, StatusApproved).
			WithDetail("order_id", o.ID.String())
	}
	now := time.Now()
	from := o.Status
	prevService, prevQuoted, prevApprovedAt := o.ServiceValue, o.QuotedPartsValue, o.ApprovedAt
	o.ServiceValue = b.ServiceValue
	o.QuotedPartsValue = b.PartsValue
	o.Status = StatusApproved
	o.ApprovedAt = &now
	if err := o.RecomputeTotals(); err != nil {
		o.ServiceValue, o.QuotedPartsValue = prevService, prevQuoted
		o.Status, o.ApprovedAt = from, prevApprovedAt
		_ = o.RecomputeTotals()
		return err
	}
	o.record(actor, ActionBudgetApproved, fmt.Sprintf("Budget %s of %s approved", b.Number, b.Total.StringFixed(2)), from, StatusApproved)
	return nil
}

// InWarranty reports whether the warranty is still running on the given day
func (o *ServiceOrder) InWarranty(today time.Time) bool {
	return o.WarrantyUntil != nil && !o.WarrantyUntil.Before(shared.TruncateDay(today))
}

// GetPart returns the part with the given ID or nil
func (o *ServiceOrder) GetPart(partID uuid.UUID) *Part {
	for i := range o.Parts {
		if o.Parts[i].ID == partID {
			return &o.Parts[i]
		}
	}
	return nil
}

func (o *ServiceOrder) canChangeValues() bool {
	return !o.Status.IsTerminal() && o.Status != StatusCompleted
}

func (o *ServiceOrder) editablePart(partID uuid.UUID) (*Part, error) {
	if !o.canChangeValues() {
		return nil, shared.NewDomainErrorf(shared.CodeInvalidStatusTransition, "Cannot change parts of a service order in %s status", o.Status)
	}
	part := o.GetPart(partID)
	if part == nil {
		return nil, shared.ErrNotFound.WithDetail("part_id", partID.String())
	}
	if part.Applied {
		return nil, shared.NewValidationError("part was already applied").WithDetail("part_id", partID.String())
	}
	return part, nil
}

func (o *ServiceOrder) record(actor shared.Actor, action Action, description string, from, to Status) {
	o.History = append(o.History, NewHistoryEntry(o.ID, actor, action, description, from, to))
	o.Touch()
}

// AddHistory appends a free history entry without changing the status
func (o *ServiceOrder) AddHistory(actor shared.Actor, action Action, description string) {
	o.record(actor, action, description, o.Status, o.Status)
}
