package catalog

import (
	"strings"

	"github.com/erp/retail/internal/domain/shared"
	"github.com/erp/retail/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductStatus represents the status of a product
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
)

// Product represents a stocked item in the catalog.
// OnHandQuantity is the cached stock level; it is only changed through the stock ledger.
type Product struct {
	shared.TenantAggregateRoot
	Code           string          `gorm:"type:varchar(50);not null;index:idx_product_code"`
	Barcode        string          `gorm:"type:varchar(50);index"`
	Name           string          `gorm:"type:varchar(200);not null"`
	Unit           string          `gorm:"type:varchar(20);not null;default:'UN'"`
	CostPrice      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	SalePrice      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	MinStock       decimal.Decimal `gorm:"type:decimal(18,3);not null;default:0"`
	OnHandQuantity decimal.Decimal `gorm:"type:decimal(18,3);not null;default:0"`
	LedgerSeq      int64           `gorm:"not null;default:0"`
	Status         ProductStatus   `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new active product with zero stock
func NewProduct(tenantID uuid.UUID, code, name, unit string) (*Product, error) {
	if err := validateProductCode(code); err != nil {
		return nil, err
	}
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	if unit == "" {
		unit = "UN"
	}

	return &Product{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                strings.ToUpper(strings.TrimSpace(code)),
		Name:                strings.TrimSpace(name),
		Unit:                unit,
		CostPrice:           decimal.Zero,
		SalePrice:           decimal.Zero,
		MinStock:            decimal.Zero,
		OnHandQuantity:      decimal.Zero,
		Status:              ProductStatusActive,
	}, nil
}

// Rename changes the product name
func (p *Product) Rename(name string) error {
	if err := validateProductName(name); err != nil {
		return err
	}
	p.Name = strings.TrimSpace(name)
	p.Touch()
	return nil
}

// SetUnit changes the unit of measure
func (p *Product) SetUnit(unit string) error {
	unit = strings.TrimSpace(unit)
	if unit == "" || len(unit) > 20 {
		return shared.NewValidationError("unit must be 1 to 20 characters")
	}
	p.Unit = strings.ToUpper(unit)
	p.Touch()
	return nil
}

// SetPrices sets both cost and sale prices
func (p *Product) SetPrices(costPrice, salePrice decimal.Decimal) error {
	if err := valueobject.ValidateAmount("cost price", costPrice); err != nil {
		return shared.NewValidationError(err.Error())
	}
	if err := valueobject.ValidateAmount("sale price", salePrice); err != nil {
		return shared.NewValidationError(err.Error())
	}
	p.CostPrice = costPrice
	p.SalePrice = salePrice
	p.Touch()
	return nil
}

// SetMinStock sets the minimum stock level used for low stock alerts
func (p *Product) SetMinStock(minStock decimal.Decimal) error {
	if err := valueobject.ValidateQuantity("minimum stock", minStock, false); err != nil {
		return shared.NewValidationError(err.Error())
	}
	p.MinStock = minStock
	p.Touch()
	return nil
}

// SetBarcode sets the product barcode
func (p *Product) SetBarcode(barcode string) error {
	if len(barcode) > 50 {
		return shared.NewValidationError("barcode cannot exceed 50 characters")
	}
	p.Barcode = barcode
	p.Touch()
	return nil
}

// ApplyLedgerQuantity replaces the cached stock level and returns the ledger
// sequence number for the movement that produced it. Only the stock ledger calls this.
func (p *Product) ApplyLedgerQuantity(quantity decimal.Decimal) int64 {
	p.OnHandQuantity = quantity
	p.LedgerSeq++
	p.Touch()
	return p.LedgerSeq
}

// Activate makes the product available for sale
func (p *Product) Activate() {
	p.Status = ProductStatusActive
	p.Touch()
}

// Deactivate hides the product from sale and checkout
func (p *Product) Deactivate() {
	p.Status = ProductStatusInactive
	p.Touch()
}

// IsActive returns true if the product can be sold
func (p *Product) IsActive() bool {
	return p.Status == ProductStatusActive
}

// HasStockFor reports whether the cached stock covers the quantity
func (p *Product) HasStockFor(quantity decimal.Decimal) bool {
	return p.OnHandQuantity.GreaterThanOrEqual(quantity)
}

// BelowMinimum reports whether stock is at or below the configured minimum
func (p *Product) BelowMinimum() bool {
	return p.MinStock.IsPositive() && p.OnHandQuantity.LessThanOrEqual(p.MinStock)
}

// GetProfitMargin returns the margin percentage over the sale price
func (p *Product) GetProfitMargin() decimal.Decimal {
	return valueobject.Ratio(p.SalePrice.Sub(p.CostPrice), p.SalePrice)
}

func validateProductCode(code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return shared.NewValidationError("product code cannot be empty")
	}
	if len(code) > 50 {
		return shared.NewValidationError("product code cannot exceed 50 characters")
	}
	return nil
}

func validateProductName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewValidationError("product name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewValidationError("product name cannot exceed 200 characters")
	}
	return nil
}
