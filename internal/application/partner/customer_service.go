package partner

import (
	"context"
	"errors"
	"strings"

	"github.com/erp/retail/internal/domain/partner"
	"github.com/erp/retail/internal/domain/shared"
	"github.com/google/uuid"
)

// CustomerService handles customer-related business operations
type CustomerService struct {
	customerRepo partner.CustomerRepository
	walkInName   string
}

// NewCustomerService creates a new CustomerService. walkInName names the
// tenant's anonymous counter customer when it has to be created.
func NewCustomerService(customerRepo partner.CustomerRepository, walkInName string) *CustomerService {
	return &CustomerService{
		customerRepo: customerRepo,
		walkInName:   walkInName,
	}
}

// Create creates a new customer
func (s *CustomerService) Create(ctx context.Context, tenantID uuid.UUID, req CreateCustomerRequest) (*CustomerResponse, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == partner.WalkInCode {
		return nil, shared.NewValidationError("code is reserved for the walk-in customer")
	}
	if _, err := s.customerRepo.FindByCode(ctx, tenantID, code); err == nil {
		return nil, shared.ErrAlreadyExists.WithDetail("code", code)
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	customerType := partner.CustomerType(req.Type)
	if customerType == "" {
		customerType = partner.CustomerTypeIndividual
	}
	customer, err := partner.NewCustomer(tenantID, code, req.Name, customerType)
	if err != nil {
		return nil, err
	}
	if err := customer.SetDocument(req.Document); err != nil {
		return nil, err
	}
	if err := customer.SetContact(req.Phone, req.Email); err != nil {
		return nil, err
	}

	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, err
	}
	resp := ToCustomerResponse(customer)
	return &resp, nil
}

// GetByID retrieves a customer by ID
func (s *CustomerService) GetByID(ctx context.Context, tenantID, customerID uuid.UUID) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByIDForTenant(ctx, tenantID, customerID)
	if err != nil {
		return nil, err
	}
	resp := ToCustomerResponse(customer)
	return &resp, nil
}

// WalkIn returns the tenant's walk-in customer, creating it on first use
func (s *CustomerService) WalkIn(ctx context.Context, tenantID uuid.UUID) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindWalkIn(ctx, tenantID)
	if errors.Is(err, shared.ErrNotFound) {
		customer = partner.NewWalkInCustomer(tenantID, s.walkInName)
		err = s.customerRepo.Save(ctx, customer)
	}
	if err != nil {
		return nil, err
	}
	resp := ToCustomerResponse(customer)
	return &resp, nil
}

// List retrieves a page of customers with the total count
func (s *CustomerService) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]CustomerResponse, int64, error) {
	customers, total, err := s.customerRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]CustomerResponse, len(customers))
	for i := range customers {
		out[i] = ToCustomerResponse(&customers[i])
	}
	return out, total, nil
}

// Update changes a customer's name, document and contact
func (s *CustomerService) Update(ctx context.Context, tenantID, customerID uuid.UUID, req UpdateCustomerRequest) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByIDForTenant(ctx, tenantID, customerID)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		if err := customer.Rename(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.Document != nil {
		if err := customer.SetDocument(*req.Document); err != nil {
			return nil, err
		}
	}
	if req.Phone != nil || req.Email != nil {
		phone, email := customer.Phone, customer.Email
		if req.Phone != nil {
			phone = *req.Phone
		}
		if req.Email != nil {
			email = *req.Email
		}
		if err := customer.SetContact(phone, email); err != nil {
			return nil, err
		}
	}
	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, err
	}
	resp := ToCustomerResponse(customer)
	return &resp, nil
}

// Deactivate hides a customer from new documents
func (s *CustomerService) Deactivate(ctx context.Context, tenantID, customerID uuid.UUID) error {
	customer, err := s.customerRepo.FindByIDForTenant(ctx, tenantID, customerID)
	if err != nil {
		return err
	}
	if err := customer.Deactivate(); err != nil {
		return err
	}
	return s.customerRepo.Save(ctx, customer)
}
