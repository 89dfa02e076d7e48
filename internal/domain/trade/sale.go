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

// SaleStatus represents the status of a sale
type SaleStatus string

const (
	SaleStatusQuote     SaleStatus = "quote"
	SaleStatusApproved  SaleStatus = "approved"
	SaleStatusInvoiced  SaleStatus = "invoiced"
	SaleStatusDelivered SaleStatus = "delivered"
	SaleStatusCompleted SaleStatus = "completed"
	SaleStatusCancelled SaleStatus = "cancelled"
)

// String returns the string representation of SaleStatus
func (s SaleStatus) String() string {
	return string(s)
}

// IsTerminal returns true for statuses that accept no further transition
func (s SaleStatus) IsTerminal() bool {
	return s == SaleStatusDelivered || s == SaleStatusCompleted || s == SaleStatusCancelled
}

// IsSettled returns true for statuses that count as revenue
func (s SaleStatus) IsSettled() bool {
	return s == SaleStatusInvoiced || s == SaleStatusDelivered || s == SaleStatusCompleted
}

// CanTransitionTo checks if the status can transition to the target status
func (s SaleStatus) CanTransitionTo(target SaleStatus) bool {
	if target == SaleStatusCancelled {
		return !s.IsTerminal()
	}
	switch s {
	case SaleStatusQuote:
		return target == SaleStatusApproved
	case SaleStatusApproved:
		return target == SaleStatusInvoiced
	case SaleStatusInvoiced:
		return target == SaleStatusDelivered
	}
	return false
}

// SettledSaleStatuses lists the statuses included in revenue figures
var SettledSaleStatuses = []SaleStatus{SaleStatusInvoiced, SaleStatusDelivered, SaleStatusCompleted}

// SaleKind distinguishes a quote document from a sale
type SaleKind string

const (
	SaleKindQuote SaleKind = "quote"
	SaleKindSale  SaleKind = "sale"
)

// SaleItem is a line of a sale
type SaleItem struct {
	shared.BaseEntity
	SaleID uuid.UUID `gorm:"type:uuid;not null;index"`
	LineItem
}

// TableName returns the table name for GORM
func (SaleItem) TableName() string {
	return "sale_items"
}

// Sale is a sales document. Header totals are always derived from the lines.
type Sale struct {
	shared.TenantAggregateRoot
	Number          string          `gorm:"type:varchar(30);not null;index:idx_sale_number"`
	Kind            SaleKind        `gorm:"type:varchar(10);not null"`
	Status          SaleStatus      `gorm:"type:varchar(20);not null;index"`
	CustomerID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	CustomerName    string          `gorm:"type:varchar(200)"`
	SellerID        uuid.UUID       `gorm:"type:uuid;not null"`
	SellerName      string          `gorm:"type:varchar(100)"`
	ItemsTotal      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Discount        decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Surcharge       decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Freight         decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	GrandTotal      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	CostTotal       decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	PaymentMethodID *uuid.UUID      `gorm:"type:uuid"`
	DrawerSessionID *uuid.UUID      `gorm:"type:uuid;index"`
	SoldAt          time.Time       `gorm:"not null;index"`
	ApprovedAt      *time.Time
	InvoicedAt      *time.Time
	DeliveredAt     *time.Time
	CompletedAt     *time.Time
	CancelledAt     *time.Time
	CancelReason    string     `gorm:"type:varchar(255)"`
	Items           []SaleItem `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (Sale) TableName() string {
	return "sales"
}

// NewSale creates a sale document in quote status
func NewSale(actor shared.Actor, number string, kind SaleKind, customerID uuid.UUID, customerName string) (*Sale, error) {
	if number == "" {
		return nil, shared.NewValidationError("sale number cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewValidationError("customer is required")
	}
	if kind == "" {
		kind = SaleKindSale
	}
	return &Sale{
		TenantAggregateRoot: shared.NewTenantAggregateRootForActor(actor),
		Number:              number,
		Kind:                kind,
		Status:              SaleStatusQuote,
		CustomerID:          customerID,
		CustomerName:        customerName,
		SellerID:            actor.UserID,
		SellerName:          actor.Name,
		ItemsTotal:          decimal.Zero,
		Discount:            decimal.Zero,
		Surcharge:           decimal.Zero,
		Freight:             decimal.Zero,
		GrandTotal:          decimal.Zero,
		CostTotal:           decimal.Zero,
		SoldAt:              time.Now(),
		Items:               make([]SaleItem, 0),
	}, nil
}

// CanModify returns true while lines and header adjustments may change
func (s *Sale) CanModify() bool {
	return s.Status == SaleStatusQuote || s.Status == SaleStatusApproved
}

// AddLine appends a line and recomputes totals
func (s *Sale) AddLine(line LineItem) (*SaleItem, error) {
	if !s.CanModify() {
		return nil, shared.NewDomainErrorf(shared.CodeInvalidStatusTransition, "Cannot change lines of a sale in %s status", s.Status)
	}
	item := SaleItem{BaseEntity: shared.NewBaseEntity(), SaleID: s.ID, LineItem: line}
	s.Items = append(s.Items, item)
	if err := s.RecomputeTotals(); err != nil {
		s.Items = s.Items[:len(s.Items)-1]
		_ = s.RecomputeTotals()
		return nil, err
	}
	return &s.Items[len(s.Items)-1], nil
}

// UpdateLine changes the values of a line and recomputes totals
func (s *Sale) UpdateLine(itemID uuid.UUID, values LineValues) error {
	if !s.CanModify() {
		return shared.NewDomainErrorf(shared.CodeInvalidStatusTransition, "Cannot change lines of a sale in %s status", s.Status)
	}
	item := s.GetItem(itemID)
	if item == nil {
		return shared.ErrNotFound.WithDetail("item_id", itemID.String())
	}
	previous := item.LineItem
	if err := item.SetValues(values); err != nil {
		return err
	}
	if err := s.RecomputeTotals(); err != nil {
		item.LineItem = previous
		_ = s.RecomputeTotals()
		return err
	}
	item.Touch()
	return nil
}

// RemoveLine deletes a line and recomputes totals
func (s *Sale) RemoveLine(itemID uuid.UUID) error {
	if !s.CanModify() {
		return shared.NewDomainErrorf(shared.CodeInvalidStatusTransition, "Cannot change lines of a sale in %s status", s.Status)
	}
	for i := range s.Items {
		if s.Items[i].ID == itemID {
			s.Items = append(s.Items[:i], s.Items[i+1:]...)
			return s.RecomputeTotals()
		}
	}
	return shared.ErrNotFound.WithDetail("item_id", itemID.String())
}

// SetAdjustments sets the header discount, surcharge and freight
func (s *Sale) SetAdjustments(discount, surcharge, freight decimal.Decimal) error {
	if !s.CanModify() {
		return shared.NewDomainErrorf(shared.CodeInvalidStatusTransition, "Cannot change a sale in %s status", s.Status)
	}
	for _, a := range []struct {
		field  string
		amount decimal.Decimal
	}{{"discount", discount}, {"surcharge", surcharge}, {"freight", freight}} {
		if err := valueobject.ValidateAmount(a.field, a.amount); err != nil {
			return shared.NewValidationError(err.Error())
		}
	}
	prevDiscount, prevSurcharge, prevFreight := s.Discount, s.Surcharge, s.Freight
	s.Discount, s.Surcharge, s.Freight = discount, surcharge, freight
	if err := s.RecomputeTotals(); err != nil {
		s.Discount, s.Surcharge, s.Freight = prevDiscount, prevSurcharge, prevFreight
		_ = s.RecomputeTotals()
		return err
	}
	return nil
}

// RecomputeTotals derives items, cost and grand totals from the current lines.
// grand = items - discount + surcharge + freight. Calling it twice yields the same values.
func (s *Sale) RecomputeTotals() error {
	items := decimal.Zero
	cost := decimal.Zero
	for i := range s.Items {
		s.Items[i].Recompute()
		items = items.Add(s.Items[i].Total)
		if s.Items[i].IsProduct() {
			cost = cost.Add(s.Items[i].CostTotal())
		}
	}
	grand := items.Sub(s.Discount).Add(s.Surcharge).Add(s.Freight)

	s.ItemsTotal = items
	s.CostTotal = cost
	s.GrandTotal = valueobject.RoundMoney(grand)
	s.Touch()
	if grand.IsNegative() {
		return shared.NewValidationError("discount cannot exceed the sale total").
			WithDetail("sale_id", s.ID.String()).
			WithDetail("items_total", items.String()).
			WithDetail("discount", s.Discount.String())
	}
	return nil
}

// Approve moves a quote to approved
func (s *Sale) Approve() error {
	if !s.Status.CanTransitionTo(SaleStatusApproved) {
		return shared.NewTransitionError("sale", s.Status, SaleStatusApproved)
	}
	if len(s.Items) == 0 {
		return shared.NewValidationError("cannot approve a sale without items")
	}
	now := time.Now()
	s.Status = SaleStatusApproved
	s.Kind = SaleKindSale
	s.ApprovedAt = &now
	s.Touch()
	return nil
}

// ProductQuantities sums the quantity of each product across product lines
func (s *Sale) ProductQuantities() map[uuid.UUID]decimal.Decimal {
	totals := make(map[uuid.UUID]decimal.Decimal)
	for i := range s.Items {
		if s.Items[i].IsProduct() {
			id := s.Items[i].ReferenceID()
			totals[id] = totals[id].Add(s.Items[i].Quantity)
		}
	}
	return totals
}

// CheckStock verifies each product line against the products' cached stock, line by line.
// The first line that cannot be covered is reported.
func (s *Sale) CheckStock(products map[uuid.UUID]*catalog.Product) error {
	needed := make(map[uuid.UUID]decimal.Decimal)
	for i := range s.Items {
		line := &s.Items[i]
		if !line.IsProduct() {
			continue
		}
		id := line.ReferenceID()
		product, ok := products[id]
		if !ok {
			return shared.ErrNotFound.WithDetail("product_id", id.String())
		}
		needed[id] = needed[id].Add(line.Quantity)
		if !product.HasStockFor(needed[id]) {
			return inventory.NewInsufficientStockError(product, needed[id]).
				WithDetail("sale_id", s.ID.String()).
				WithDetail("line_id", line.ID.String())
		}
	}
	return nil
}

// Invoice checks stock for every product line and moves the sale to invoiced.
// On failure the status is unchanged.
func (s *Sale) Invoice(products map[uuid.UUID]*catalog.Product) error {
	if !s.Status.CanTransitionTo(SaleStatusInvoiced) {
		return shared.NewTransitionError("sale", s.Status, SaleStatusInvoiced)
	}
	if err := s.CheckStock(products); err != nil {
		return err
	}
	now := time.Now()
	s.Status = SaleStatusInvoiced
	s.InvoicedAt = &now
	s.Touch()
	return nil
}

// Deliver marks an invoiced sale as delivered
func (s *Sale) Deliver(actor shared.Actor) error {
	if !s.Status.CanTransitionTo(SaleStatusDelivered) {
		return shared.NewTransitionError("sale", s.Status, SaleStatusDelivered)
	}
	now := time.Now()
	s.Status = SaleStatusDelivered
	s.DeliveredAt = &now
	s.Touch()
	s.AddDomainEvent(NewSaleCompletedEvent(s, actor))
	return nil
}

// CompleteCheckout finalises a point-of-sale sale. It is only valid on a fresh document.
func (s *Sale) CompleteCheckout(actor shared.Actor, drawerSessionID, paymentMethodID uuid.UUID) error {
	if s.Status != SaleStatusQuote {
		return shared.NewTransitionError("sale", s.Status, SaleStatusCompleted)
	}
	if len(s.Items) == 0 {
		return shared.NewValidationError("checkout requires at least one line")
	}
	now := time.Now()
	s.Status = SaleStatusCompleted
	s.Kind = SaleKindSale
	s.DrawerSessionID = &drawerSessionID
	s.PaymentMethodID = &paymentMethodID
	s.CompletedAt = &now
	s.Touch()
	s.AddDomainEvent(NewSaleCompletedEvent(s, actor))
	return nil
}

// Cancel cancels a sale from any non-terminal status.
// It returns whether stock had been booked out, so the caller can return it.
func (s *Sale) Cancel(reason string) (bool, error) {
	if !s.Status.CanTransitionTo(SaleStatusCancelled) {
		return false, shared.NewTransitionError("sale", s.Status, SaleStatusCancelled)
	}
	if reason == "" {
		return false, shared.NewValidationError("cancel reason is required")
	}
	wasInvoiced := s.Status == SaleStatusInvoiced
	now := time.Now()
	s.Status = SaleStatusCancelled
	s.CancelledAt = &now
	s.CancelReason = reason
	s.Touch()
	return wasInvoiced, nil
}

// GetItem returns the item with the given ID or nil
func (s *Sale) GetItem(itemID uuid.UUID) *SaleItem {
	for i := range s.Items {
		if s.Items[i].ID == itemID {
			return &s.Items[i]
		}
	}
	return nil
}

// Document returns the stock document reference for movements booked by this sale
func (s *Sale) Document() inventory.DocumentRef {
	id := s.ID
	return inventory.DocumentRef{Type: inventory.DocumentTypeSale, ID: &id, Number: s.Number}
}
