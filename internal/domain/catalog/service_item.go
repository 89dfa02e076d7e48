package catalog

import (
	"strings"

	"github.com/erp/retail/internal/domain/shared"
	"github.com/erp/retail/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ServiceItem is a billable service offered by the business (labour, installation, repair).
// Service lines reference it instead of a product and never touch stock.
type ServiceItem struct {
	shared.TenantAggregateRoot
	Code   string          `gorm:"type:varchar(50);not null;index:idx_service_item_code"`
	Name   string          `gorm:"type:varchar(200);not null"`
	Price  decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Active bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (ServiceItem) TableName() string {
	return "service_items"
}

// NewServiceItem creates an active service item
func NewServiceItem(tenantID uuid.UUID, code, name string, price decimal.Decimal) (*ServiceItem, error) {
	if err := validateProductCode(code); err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewValidationError("service name cannot be empty")
	}
	if err := valueobject.ValidateAmount("service price", price); err != nil {
		return nil, shared.NewValidationError(err.Error())
	}
	return &ServiceItem{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                strings.ToUpper(strings.TrimSpace(code)),
		Name:                strings.TrimSpace(name),
		Price:               price,
		Active:              true,
	}, nil
}

// Update changes name and price
func (s *ServiceItem) Update(name string, price decimal.Decimal) error {
	if strings.TrimSpace(name) == "" {
		return shared.NewValidationError("service name cannot be empty")
	}
	if err := valueobject.ValidateAmount("service price", price); err != nil {
		return shared.NewValidationError(err.Error())
	}
	s.Name = strings.TrimSpace(name)
	s.Price = price
	s.Touch()
	return nil
}

// Deactivate hides the service from new documents
func (s *ServiceItem) Deactivate() {
	s.Active = false
	s.Touch()
}
