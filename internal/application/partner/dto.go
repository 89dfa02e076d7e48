package partner

import (
	"time"

	"github.com/erp/retail/internal/domain/partner"
	"github.com/google/uuid"
)

// =============================================================================
// Customer DTOs
// =============================================================================

// CreateCustomerRequest represents a request to create a new customer
type CreateCustomerRequest struct {
	Code     string `json:"code" binding:"required,min=1,max=50"`
	Name     string `json:"name" binding:"required,min=1,max=200"`
	Type     string `json:"type" binding:"omitempty,oneof=individual organization"`
	Document string `json:"document" binding:"max=20"`
	Phone    string `json:"phone" binding:"max=50"`
	Email    string `json:"email" binding:"omitempty,email,max=200"`
}

// UpdateCustomerRequest represents a request to update a customer
type UpdateCustomerRequest struct {
	Name     *string `json:"name" binding:"omitempty,min=1,max=200"`
	Document *string `json:"document" binding:"omitempty,max=20"`
	Phone    *string `json:"phone" binding:"omitempty,max=50"`
	Email    *string `json:"email" binding:"omitempty,email,max=200"`
}

// CustomerResponse represents a customer in API responses
type CustomerResponse struct {
	ID        uuid.UUID `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Document  string    `json:"document"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	WalkIn    bool      `json:"walk_in"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	Version   int       `json:"version"`
}

// ToCustomerResponse converts a domain Customer to CustomerResponse
func ToCustomerResponse(c *partner.Customer) CustomerResponse {
	return CustomerResponse{
		ID:        c.ID,
		Code:      c.Code,
		Name:      c.Name,
		Type:      string(c.Type),
		Document:  c.Document,
		Phone:     c.Phone,
		Email:     c.Email,
		WalkIn:    c.WalkIn,
		Active:    c.Active,
		CreatedAt: c.CreatedAt,
		Version:   c.Version,
	}
}

// =============================================================================
// Supplier DTOs
// =============================================================================

// CreateSupplierRequest represents a request to create a new supplier
type CreateSupplierRequest struct {
	Code         string `json:"code" binding:"required,min=1,max=50"`
	Name         string `json:"name" binding:"required,min=1,max=200"`
	Document     string `json:"document" binding:"max=20"`
	ContactName  string `json:"contact_name" binding:"max=100"`
	Phone        string `json:"phone" binding:"max=50"`
	Email        string `json:"email" binding:"omitempty,email,max=200"`
	LeadTimeDays int    `json:"lead_time_days" binding:"min=0,max=365"`
}

// UpdateSupplierRequest represents a request to update a supplier
type UpdateSupplierRequest struct {
	Name         *string `json:"name" binding:"omitempty,min=1,max=200"`
	Document     *string `json:"document" binding:"omitempty,max=20"`
	ContactName  *string `json:"contact_name" binding:"omitempty,max=100"`
	Phone        *string `json:"phone" binding:"omitempty,max=50"`
	Email        *string `json:"email" binding:"omitempty,email,max=200"`
	LeadTimeDays *int    `json:"lead_time_days" binding:"omitempty,min=0,max=365"`
}

// SupplierResponse represents a supplier in API responses
type SupplierResponse struct {
	ID           uuid.UUID `json:"id"`
	Code         string    `json:"code"`
	Name         string    `json:"name"`
	Document     string    `json:"document"`
	ContactName  string    `json:"contact_name"`
	Phone        string    `json:"phone"`
	Email        string    `json:"email"`
	LeadTimeDays int       `json:"lead_time_days"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	Version      int       `json:"version"`
}

// ToSupplierResponse converts a domain Supplier to SupplierResponse
func ToSupplierResponse(s *partner.Supplier) SupplierResponse {
	return SupplierResponse{
		ID:           s.ID,
		Code:         s.Code,
		Name:         s.Name,
		Document:     s.Document,
		ContactName:  s.ContactName,
		Phone:        s.Phone,
		Email:        s.Email,
		LeadTimeDays: s.LeadTimeDays,
		Active:       s.Active,
		CreatedAt:    s.CreatedAt,
		Version:      s.Version,
	}
}
