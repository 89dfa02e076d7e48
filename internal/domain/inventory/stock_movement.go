package inventory

import (
	"time"

	"github.com/erp/retail/internal/domain/shared"
	"github.com/erp/retail/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MovementKind is the type of a stock movement
type MovementKind string

const (
	// MovementEntry adds quantity to stock (purchase receipt, return)
	MovementEntry MovementKind = "entry"
	// MovementExit removes quantity from stock (sale, part applied to a service order)
	MovementExit MovementKind = "exit"
	// MovementAdjustment sets stock to an absolute quantity
	MovementAdjustment MovementKind = "adjustment"
	// MovementTransfer moves stock between locations without changing the total
	MovementTransfer MovementKind = "transfer"
	// MovementInventoryCount sets stock to the quantity found in a physical count
	MovementInventoryCount MovementKind = "inventory_count"
)

// String returns the string representation of MovementKind
func (k MovementKind) String() string {
	return string(k)
}

// IsValid returns true if the kind is known
func (k MovementKind) IsValid() bool {
	switch k {
	case MovementEntry, MovementExit, MovementAdjustment, MovementTransfer, MovementInventoryCount:
		return true
	}
	return false
}

// IsAbsolute reports whether the movement sets stock instead of applying a delta
func (k MovementKind) IsAbsolute() bool {
	return k == MovementAdjustment || k == MovementInventoryCount
}

// DocumentType identifies the document that originated a movement
type DocumentType string

const (
	DocumentTypeSale           DocumentType = "sale"
	DocumentTypeServiceOrder   DocumentType = "service_order"
	DocumentTypePurchaseOrder  DocumentType = "purchase_order"
	DocumentTypeCountSession   DocumentType = "count_session"
	DocumentTypeManual         DocumentType = "manual"
	DocumentTypeReconciliation DocumentType = "reconciliation"
)

// DocumentRef links a movement to its source document
type DocumentRef struct {
	Type   DocumentType
	ID     *uuid.UUID
	Number string
}

// ManualDocument returns a reference for movements entered by hand
func ManualDocument(number string) DocumentRef {
	return DocumentRef{Type: DocumentTypeManual, Number: number}
}

// StockMovement is an immutable ledger record. Corrections are new movements.
type StockMovement struct {
	shared.BaseEntity
	TenantID       uuid.UUID       `gorm:"type:uuid;not null;index:idx_stock_mov_tenant_time,priority:1"`
	ProductID      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_mov_product_seq,priority:1"`
	Sequence       int64           `gorm:"not null;uniqueIndex:idx_stock_mov_product_seq,priority:2"`
	Kind           MovementKind    `gorm:"type:varchar(20);not null;index"`
	Quantity       decimal.Decimal `gorm:"type:decimal(18,3);not null"`
	UnitValue      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	QuantityBefore decimal.Decimal `gorm:"type:decimal(18,3);not null"`
	QuantityAfter  decimal.Decimal `gorm:"type:decimal(18,3);not null"`
	DocumentType   DocumentType    `gorm:"type:varchar(30);not null;index:idx_stock_mov_document,priority:1"`
	DocumentID     *uuid.UUID      `gorm:"type:uuid"`
	DocumentNumber string          `gorm:"type:varchar(50);index:idx_stock_mov_document,priority:2"`
	LotCode        string          `gorm:"type:varchar(50)"`
	ExpiryDate     *time.Time      `gorm:"type:date"`
	FromLocation   string          `gorm:"type:varchar(100)"`
	ToLocation     string          `gorm:"type:varchar(100)"`
	Reason         string          `gorm:"type:varchar(255)"`
	ActorID        uuid.UUID       `gorm:"type:uuid;not null"`
	ActorName      string          `gorm:"type:varchar(100)"`
	OccurredAt     time.Time       `gorm:"not null;index:idx_stock_mov_tenant_time,priority:2"`
}

// TableName returns the table name for GORM
func (StockMovement) TableName() string {
	return "stock_movements"
}

// TotalValue returns quantity * unit value
func (m *StockMovement) TotalValue() decimal.Decimal {
	return valueobject.RoundMoney(m.Quantity.Mul(m.UnitValue))
}

// Delta returns the signed change this movement made to stock
func (m *StockMovement) Delta() decimal.Decimal {
	return m.QuantityAfter.Sub(m.QuantityBefore)
}

// MovementRequest describes a movement to apply to a product
type MovementRequest struct {
	Kind       MovementKind
	Quantity   decimal.Decimal
	UnitValue  decimal.Decimal
	Document   DocumentRef
	LotCode    string
	ExpiryDate *time.Time
	From       string
	To         string
	Reason     string
}

// Validate checks the request shape before any stock is read
func (r MovementRequest) Validate() error {
	if !r.Kind.IsValid() {
		return shared.NewValidationError("invalid movement kind")
	}
	// absolute sets may legitimately zero the stock
	if err := valueobject.ValidateQuantity("quantity", r.Quantity, !r.Kind.IsAbsolute()); err != nil {
		return shared.NewValidationError(err.Error())
	}
	if r.UnitValue.IsNegative() {
		return shared.NewValidationError("unit value cannot be negative")
	}
	if r.Document.Type == "" {
		return shared.NewValidationError("document type is required")
	}
	if r.Kind == MovementTransfer && r.From == r.To {
		return shared.NewValidationError("transfer requires different source and target locations")
	}
	return nil
}
