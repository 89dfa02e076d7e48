package trade

import (
	"time"

	"github.com/erp/retail/internal/domain/catalog"
	"github.com/erp/retail/internal/domain/inventory"
	"github.com/erp/retail/internal/domain/shared"
	"github.com/erp/retail/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchaseOrderStatus represents the status of a purchase order
type PurchaseOrderStatus string

const (
	PurchaseOrderStatusPending   PurchaseOrderStatus = "pending"
	PurchaseOrderStatusApproved  PurchaseOrderStatus = "approved"
	PurchaseOrderStatusInTransit PurchaseOrderStatus = "in_transit"
	PurchaseOrderStatusReceived  PurchaseOrderStatus = "received"
	PurchaseOrderStatusCancelled PurchaseOrderStatus = "cancelled"
)

// String returns the string representation of PurchaseOrderStatus
func (s PurchaseOrderStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status.
// received is never a manual target; it is set when every line is fully received.
func (s PurchaseOrderStatus) CanTransitionTo(target PurchaseOrderStatus) bool {
	switch s {
	case PurchaseOrderStatusPending:
		return target == PurchaseOrderStatusApproved || target == PurchaseOrderStatusCancelled
	case PurchaseOrderStatusApproved:
		return target == PurchaseOrderStatusInTransit || target == PurchaseOrderStatusCancelled
	case PurchaseOrderStatusInTransit:
		return target == PurchaseOrderStatusCancelled
	}
	return false
}

// CanReceive returns true if goods can be booked in
func (s PurchaseOrderStatus) CanReceive() bool {
	return s == PurchaseOrderStatusApproved || s == PurchaseOrderStatusInTransit
}

// PurchaseOrderLine is a product line of a purchase order
type PurchaseOrderLine struct {
	shared.BaseEntity
	OrderID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID        uuid.UUID       `gorm:"type:uuid;not null"`
	ProductCode      string          `gorm:"type:varchar(50)"`
	Description      string          `gorm:"type:varchar(255)"`
	OrderedQuantity  decimal.Decimal `gorm:"type:decimal(18,3);not null"`
	ReceivedQuantity decimal.Decimal `gorm:"type:decimal(18,3);not null;default:0"`
	UnitPrice        decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Discount         decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Total            decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (PurchaseOrderLine) TableName() string {
	return "purchase_order_lines"
}

// Recompute derives the line total: ordered quantity * unit price - discount
func (l *PurchaseOrderLine) Recompute() {
	l.Total = valueobject.RoundMoney(l.OrderedQuantity.Mul(l.UnitPrice).Sub(l.Discount))
}

// IsFullyReceived returns true once received quantity covers the ordered quantity
func (l *PurchaseOrderLine) IsFullyReceived() bool {
	return l.ReceivedQuantity.GreaterThanOrEqual(l.OrderedQuantity)
}

// ReceiptLine is a quantity of a product arriving against an order
type ReceiptLine struct {
	ProductID  uuid.UUID
	Quantity   decimal.Decimal
	UnitCost   decimal.Decimal // zero keeps the order price
	LotCode    string
	ExpiryDate *time.Time
}

// ReceivedLine describes a booked receipt and the stock movement it requires
type ReceivedLine struct {
	LineID     uuid.UUID       `json:"line_id"`
	ProductID  uuid.UUID       `json:"product_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitCost   decimal.Decimal `json:"unit_cost"`
	LotCode    string          `json:"lot_code,omitempty"`
	ExpiryDate *time.Time      `json:"expiry_date,omitempty"`
}

// MovementRequest returns the entry movement for the received line
func (r ReceivedLine) MovementRequest(doc inventory.DocumentRef) inventory.MovementRequest {
	return inventory.MovementRequest{
		Kind:       inventory.MovementEntry,
		Quantity:   r.Quantity,
		UnitValue:  r.UnitCost,
		Document:   doc,
		LotCode:    r.LotCode,
		ExpiryDate: r.ExpiryDate,
	}
}

// PurchaseOrder is a supplier order. grand = items + freight - discount.
type PurchaseOrder struct {
	shared.TenantAggregateRoot
	Number           string              `gorm:"type:varchar(30);not null;index:idx_purchase_order_number"`
	Status           PurchaseOrderStatus `gorm:"type:varchar(20);not null;index"`
	SupplierID       uuid.UUID           `gorm:"type:uuid;not null;index"`
	SupplierName     string              `gorm:"type:varchar(200)"`
	ItemsTotal       decimal.Decimal     `gorm:"type:decimal(18,2);not null;default:0"`
	Freight          decimal.Decimal     `gorm:"type:decimal(18,2);not null;default:0"`
	Discount         decimal.Decimal     `gorm:"type:decimal(18,2);not null;default:0"`
	GrandTotal       decimal.Decimal     `gorm:"type:decimal(18,2);not null;default:0"`
	ExpectedDelivery *time.Time          `gorm:"type:date"`
	ReceivedAt       *time.Time
	CancelledAt      *time.Time
	CancelReason     string              `gorm:"type:varchar(255)"`
	PayableID        *uuid.UUID          `gorm:"type:uuid"`
	Lines            []PurchaseOrderLine `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (PurchaseOrder) TableName() string {
	return "purchase_orders"
}

// NewPurchaseOrder creates a pending purchase order
func NewPurchaseOrder(actor shared.Actor, number string, supplierID uuid.UUID, supplierName string) (*PurchaseOrder, error) {
	if number == "" {
		return nil, shared.NewValidationError("purchase order number cannot be empty")
	}
	if supplierID == uuid.Nil {
		return nil, shared.NewValidationError("supplier is required")
	}
	return &PurchaseOrder{
		TenantAggregateRoot: shared.NewTenantAggregateRootForActor(actor),
		Number:              number,
		Status:              PurchaseOrderStatusPending,
		SupplierID:          supplierID,
		SupplierName:        supplierName,
		ItemsTotal:          decimal.Zero,
		Freight:             decimal.Zero,
		Discount:            decimal.Zero,
		GrandTotal:          decimal.Zero,
		Lines:               make([]PurchaseOrderLine, 0),
	}, nil
}

// CanModify returns true while lines may change
func (o *PurchaseOrder) CanModify() bool {
	return o.Status == PurchaseOrderStatusPending || o.Status == PurchaseOrderStatusApproved
}

// AddLine appends a product line and recomputes totals
func (o *PurchaseOrder) AddLine(product *catalog.Product, quantity, unitPrice, discount decimal.Decimal) (*PurchaseOrderLine, error) {
	if !o.CanModify() {
		return nil, shared.NewDomainErrorf(shared.CodeInvalidStatusTransition, "Cannot change lines of a purchase order in %s status", o.Status)
	}
	line := PurchaseOrderLine{
		BaseEntity:       shared.NewBaseEntity(),
		OrderID:          o.ID,
		ProductID:        product.ID,
		ProductCode:      product.Code,
		Description:      product.Name,
		ReceivedQuantity: decimal.Zero,
	}
	if err := setPurchaseLineValues(&line, quantity, unitPrice, discount); err != nil {
		return nil, err
	}
	o.Lines = append(o.Lines, line)
	if err := o.RecomputeTotals(); err != nil {
		o.Lines = o.Lines[:len(o.Lines)-1]
		_ = o.RecomputeTotals()
		return nil, err
	}
	return &o.Lines[len(o.Lines)-1], nil
}

// UpdateLine changes quantity, price and discount of a line
func (o *PurchaseOrder) UpdateLine(lineID uuid.UUID, quantity, unitPrice, discount decimal.Decimal) error {
	if !o.CanModify() {
		return shared.NewDomainErrorf(shared.CodeInvalidStatusTransition, "Cannot change lines of a purchase order in %s status", o.Status)
	}
	line := o.GetLine(lineID)
	if line == nil {
		return shared.ErrNotFound.WithDetail("line_id", lineID.String())
	}
	previous := *line
	if err := setPurchaseLineValues(line, quantity, unitPrice, discount); err != nil {
		return err
	}
	if err := o.RecomputeTotals(); err != nil {
		*line = previous
		_ = o.RecomputeTotals()
		return err
	}
	line.Touch()
	return nil
}

// RemoveLine deletes a line and recomputes totals
func (o *PurchaseOrder) RemoveLine(lineID uuid.UUID) error {
	if !o.CanModify() {
		return shared.NewDomainErrorf(shared.CodeInvalidStatusTransition, "Cannot change lines of a purchase order in %s status", o.Status)
	}
	for i := range o.Lines {
		if o.Lines[i].ID == lineID {
			o.Lines = append(o.Lines[:i], o.Lines[i+1:]...)
			return o.RecomputeTotals()
		}
	}
	return shared.ErrNotFound.WithDetail("line_id", lineID.String())
}

// SetAdjustments sets header freight and discount
func (o *PurchaseOrder) SetAdjustments(freight, discount decimal.Decimal) error {
	if !o.CanModify() {
		return shared.NewDomainErrorf(shared.CodeInvalidStatusTransition, "Cannot change a purchase order in %s status", o.Status)
	}
	if err := valueobject.ValidateAmount("freight", freight); err != nil {
		return shared.NewValidationError(err.Error())
	}
	if err := valueobject.ValidateAmount("discount", discount); err != nil {
		return shared.NewValidationError(err.Error())
	}
	prevFreight, prevDiscount := o.Freight, o.Discount
	o.Freight, o.Discount = freight, discount
	if err := o.RecomputeTotals(); err != nil {
		o.Freight, o.Discount = prevFreight, prevDiscount
		_ = o.RecomputeTotals()
		return err
	}
	return nil
}

// RecomputeTotals derives items and grand totals from the current lines
func (o *PurchaseOrder) RecomputeTotals() error {
	items := decimal.Zero
	for i := range o.Lines {
		o.Lines[i].Recompute()
		items = items.Add(o.Lines[i].Total)
	}
	grand := items.Add(o.Freight).Sub(o.Discount)
	o.ItemsTotal = items
	o.GrandTotal = valueobject.RoundMoney(grand)
	o.Touch()
	if grand.IsNegative() {
		return shared.NewValidationError("discount cannot exceed the order total").
			WithDetail("order_id", o.ID.String())
	}
	return nil
}

// Approve moves a pending order to approved
func (o *PurchaseOrder) Approve() error {
	if !o.Status.CanTransitionTo(PurchaseOrderStatusApproved) {
		return shared.NewTransitionError("purchase order", o.Status, PurchaseOrderStatusApproved)
	}
	if len(o.Lines) == 0 {
		return shared.NewValidationError("cannot approve a purchase order without lines")
	}
	o.Status = PurchaseOrderStatusApproved
	o.Touch()
	return nil
}

// Dispatch marks the order as in transit
func (o *PurchaseOrder) Dispatch(expected *time.Time) error {
	if !o.Status.CanTransitionTo(PurchaseOrderStatusInTransit) {
		return shared.NewTransitionError("purchase order", o.Status, PurchaseOrderStatusInTransit)
	}
	o.Status = PurchaseOrderStatusInTransit
	if expected != nil {
		o.ExpectedDelivery = expected
	}
	o.Touch()
	return nil
}

// Receive books received quantities against the lines. When every line is
// fully received the order becomes received.
func (o *PurchaseOrder) Receive(actor shared.Actor, receipts []ReceiptLine) ([]ReceivedLine, error) {
	if !o.Status.CanReceive() {
		return nil, shared.NewTransitionError("purchase order", o.Status, PurchaseOrderStatusReceived)
	}
	if len(receipts) == 0 {
		return nil, shared.NewValidationError("receipt lines cannot be empty")
	}

	received := make([]ReceivedLine, 0, len(receipts))
	for _, r := range receipts {
		if err := valueobject.ValidateQuantity("received quantity", r.Quantity, true); err != nil {
			return nil, shared.NewValidationError(err.Error()).WithDetail("product_id", r.ProductID.String())
		}
		line := o.GetLineByProduct(r.ProductID)
		if line == nil {
			return nil, shared.ErrNotFound.WithDetail("product_id", r.ProductID.String())
		}
		cost := line.UnitPrice
		if r.UnitCost.IsPositive() {
			cost = r.UnitCost
		}
		line.ReceivedQuantity = line.ReceivedQuantity.Add(r.Quantity)
		line.Touch()
		received = append(received, ReceivedLine{
			LineID:     line.ID,
			ProductID:  r.ProductID,
			Quantity:   r.Quantity,
			UnitCost:   cost,
			LotCode:    r.LotCode,
			ExpiryDate: r.ExpiryDate,
		})
	}

	full := o.IsFullyReceived()
	if full {
		now := time.Now()
		o.Status = PurchaseOrderStatusReceived
		o.ReceivedAt = &now
	}
	o.Touch()
	o.AddDomainEvent(&PurchaseOrderReceivedEvent{
		BaseDomainEvent: shared.NewActorDomainEvent(EventTypePurchaseOrderReceived, AggregateTypePurchaseOrder, o.ID, actor),
		OrderID:         o.ID,
		Number:          o.Number,
		FullReceived:    full,
		Lines:           received,
	})
	return received, nil
}

// IsFullyReceived returns true when every line has received at least its ordered quantity
func (o *PurchaseOrder) IsFullyReceived() bool {
	for i := range o.Lines {
		if !o.Lines[i].IsFullyReceived() {
			return false
		}
	}
	return len(o.Lines) > 0
}

// Cancel cancels the order. Orders with received goods cannot be cancelled.
func (o *PurchaseOrder) Cancel(reason string) error {
	if !o.Status.CanTransitionTo(PurchaseOrderStatusCancelled) {
		return shared.NewTransitionError("purchase order", o.Status, PurchaseOrderStatusCancelled)
	}
	if reason == "" {
		return shared.NewValidationError("cancel reason is required")
	}
	for i := range o.Lines {
		if o.Lines[i].ReceivedQuantity.IsPositive() {
			return shared.NewValidationError("cannot cancel a purchase order after goods were received")
		}
	}
	now := time.Now()
	o.Status = PurchaseOrderStatusCancelled
	o.CancelledAt = &now
	o.CancelReason = reason
	o.Touch()
	return nil
}

// LinkPayable records the payable created for this order
func (o *PurchaseOrder) LinkPayable(payableID uuid.UUID) {
	o.PayableID = &payableID
	o.Touch()
}

// GetLine returns the line with the given ID or nil
func (o *PurchaseOrder) GetLine(lineID uuid.UUID) *PurchaseOrderLine {
	for i := range o.Lines {
		if o.Lines[i].ID == lineID {
			return &o.Lines[i]
		}
	}
	return nil
}

// GetLineByProduct returns the first line for a product or nil
func (o *PurchaseOrder) GetLineByProduct(productID uuid.UUID) *PurchaseOrderLine {
	for i := range o.Lines {
		if o.Lines[i].ProductID == productID {
			return &o.Lines[i]
		}
	}
	return nil
}

// Document returns the stock document reference for entries booked by this order
func (o *PurchaseOrder) Document() inventory.DocumentRef {
	id := o.ID
	return inventory.DocumentRef{Type: inventory.DocumentTypePurchaseOrder, ID: &id, Number: o.Number}
}

func setPurchaseLineValues(line *PurchaseOrderLine, quantity, unitPrice, discount decimal.Decimal) error {
	if err := valueobject.ValidateQuantity("quantity", quantity, true); err != nil {
		return shared.NewValidationError(err.Error())
	}
	if err := valueobject.ValidateAmount("unit price", unitPrice); err != nil {
		return shared.NewValidationError(err.Error())
	}
	if err := valueobject.ValidateAmount("discount", discount); err != nil {
		return shared.NewValidationError(err.Error())
	}
	if discount.GreaterThan(quantity.Mul(unitPrice)) {
		return shared.NewValidationError("line discount cannot exceed the line amount")
	}
	line.OrderedQuantity = quantity
	line.UnitPrice = unitPrice
	line.Discount = discount
	line.Recompute()
	return nil
}
