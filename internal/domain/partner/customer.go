package partner

import (
	"regexp"
	"strings"

	"github.com/erp/retail/internal/domain/shared"
	"github.com/google/uuid"
)

// CustomerType represents the type of customer
type CustomerType string

const (
	CustomerTypeIndividual   CustomerType = "individual"
	CustomerTypeOrganization CustomerType = "organization"
)

// WalkInCode is the code of the per-tenant anonymous point-of-sale customer
const WalkInCode = "CONSUMIDOR"

// DefaultWalkInName is used when no walk-in name is configured
const DefaultWalkInName = "Walk-in Customer"

var documentPattern = regexp.MustCompile(`^[0-9]{11}$|^[0-9]{14}$`)

// Customer represents a customer in the partner context
type Customer struct {
	shared.TenantAggregateRoot
	Code     string       `gorm:"type:varchar(50);not null;index:idx_customer_code"`
	Name     string       `gorm:"type:varchar(200);not null"`
	Type     CustomerType `gorm:"type:varchar(20);not null;default:'individual'"`
	Document string       `gorm:"type:varchar(20);index"` // CPF or CNPJ, digits only
	Phone    string       `gorm:"type:varchar(50)"`
	Email    string       `gorm:"type:varchar(200)"`
	WalkIn   bool         `gorm:"not null;default:false;index"`
	Active   bool         `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Customer) TableName() string {
	return "customers"
}

// NewCustomer creates a new customer with required fields
func NewCustomer(tenantID uuid.UUID, code, name string, customerType CustomerType) (*Customer, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" || len(code) > 50 {
		return nil, shared.NewValidationError("customer code must be 1 to 50 characters")
	}
	if err := validateName(name); err != nil {
		return nil, err
	}
	if customerType != CustomerTypeIndividual && customerType != CustomerTypeOrganization {
		return nil, shared.NewValidationError("invalid customer type")
	}
	return &Customer{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                code,
		Name:                strings.TrimSpace(name),
		Type:                customerType,
		Active:              true,
	}, nil
}

// NewWalkInCustomer creates the anonymous customer used for counter sales
func NewWalkInCustomer(tenantID uuid.UUID, name string) *Customer {
	if strings.TrimSpace(name) == "" {
		name = DefaultWalkInName
	}
	c, _ := NewCustomer(tenantID, WalkInCode, name, CustomerTypeIndividual)
	c.WalkIn = true
	return c
}

// SetDocument sets the CPF/CNPJ after stripping punctuation
func (c *Customer) SetDocument(document string) error {
	digits := onlyDigits(document)
	if digits != "" && !documentPattern.MatchString(digits) {
		return shared.NewValidationError("document must have 11 (CPF) or 14 (CNPJ) digits")
	}
	c.Document = digits
	if len(digits) == 14 {
		c.Type = CustomerTypeOrganization
	}
	c.Touch()
	return nil
}

// SetContact sets phone and email
func (c *Customer) SetContact(phone, email string) error {
	email = strings.TrimSpace(email)
	if email != "" && !strings.Contains(email, "@") {
		return shared.NewValidationError("invalid email")
	}
	c.Phone = strings.TrimSpace(phone)
	c.Email = email
	c.Touch()
	return nil
}

// Deactivate hides the customer from new documents. The walk-in customer stays active.
func (c *Customer) Deactivate() error {
	if c.WalkIn {
		return shared.NewValidationError("the walk-in customer cannot be deactivated")
	}
	c.Active = false
	c.Touch()
	return nil
}

// Rename changes the customer name
func (c *Customer) Rename(name string) error {
	if err := validateName(name); err != nil {
		return err
	}
	c.Name = strings.TrimSpace(name)
	c.Touch()
	return nil
}

func onlyDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

func validateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewValidationError("name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewValidationError("name cannot exceed 200 characters")
	}
	return nil
}
