package partner

import (
	"strings"

	"github.com/erp/retail/internal/domain/shared"
	"github.com/google/uuid"
)

// Supplier represents a supplier in the partner context
type Supplier struct {
	shared.TenantAggregateRoot
	Code         string `gorm:"type:varchar(50);not null;index:idx_supplier_code"`
	Name         string `gorm:"type:varchar(200);not null"`
	Document     string `gorm:"type:varchar(20)"`
	ContactName  string `gorm:"type:varchar(100)"`
	Phone        string `gorm:"type:varchar(50)"`
	Email        string `gorm:"type:varchar(200)"`
	LeadTimeDays int    `gorm:"not null;default:0"`
	Active       bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Supplier) TableName() string {
	return "suppliers"
}

// NewSupplier creates an active supplier
func NewSupplier(tenantID uuid.UUID, code, name string) (*Supplier, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" || len(code) > 50 {
		return nil, shared.NewValidationError("supplier code must be 1 to 50 characters")
	}
	if err := validateName(name); err != nil {
		return nil, err
	}
	return &Supplier{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                code,
		Name:                strings.TrimSpace(name),
		Active:              true,
	}, nil
}

// SetLeadTime sets the usual delivery lead time in days
func (s *Supplier) SetLeadTime(days int) error {
	if days < 0 {
		return shared.NewValidationError("lead time cannot be negative")
	}
	s.LeadTimeDays = days
	s.Touch()
	return nil
}

// SetContact sets the contact person, phone and email
func (s *Supplier) SetContact(contactName, phone, email string) error {
	email = strings.TrimSpace(email)
	if email != "" && !strings.Contains(email, "@") {
		return shared.NewValidationError("invalid email")
	}
	s.ContactName = strings.TrimSpace(contactName)
	s.Phone = strings.TrimSpace(phone)
	s.Email = email
	s.Touch()
	return nil
}

// SetDocument sets the CNPJ or CPF after stripping punctuation
func (s *Supplier) SetDocument(document string) error {
	digits := onlyDigits(document)
	if digits != "" && !documentPattern.MatchString(digits) {
		return shared.NewValidationError("document must have 11 (CPF) or 14 (CNPJ) digits")
	}
	s.Document = digits
	s.Touch()
	return nil
}

// Rename changes the supplier name
func (s *Supplier) Rename(name string) error {
	if err := validateName(name); err != nil {
		return err
	}
	s.Name = strings.TrimSpace(name)
	s.Touch()
	return nil
}

// Deactivate hides the supplier from new purchase orders
func (s *Supplier) Deactivate() {
	s.Active = false
	s.Touch()
}
