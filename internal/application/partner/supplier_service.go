package partner

import (
	"context"
	"errors"
	"strings"

	"github.com/erp/retail/internal/domain/partner"
	"github.com/erp/retail/internal/domain/shared"
	"github.com/google/uuid"
)

// SupplierService handles supplier-related business operations
type SupplierService struct {
	supplierRepo partner.SupplierRepository
}

// NewSupplierService creates a new SupplierService
func NewSupplierService(supplierRepo partner.SupplierRepository) *SupplierService {
	return &SupplierService{supplierRepo: supplierRepo}
}

// Create creates a new supplier
func (s *SupplierService) Create(ctx context.Context, tenantID uuid.UUID, req CreateSupplierRequest) (*SupplierResponse, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if _, err := s.supplierRepo.FindByCode(ctx, tenantID, code); err == nil {
		return nil, shared.ErrAlreadyExists.WithDetail("code", code)
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	supplier, err := partner.NewSupplier(tenantID, code, req.Name)
	if err != nil {
		return nil, err
	}
	if err := supplier.SetDocument(req.Document); err != nil {
		return nil, err
	}
	if err := supplier.SetContact(req.ContactName, req.Phone, req.Email); err != nil {
		return nil, err
	}
	if err := supplier.SetLeadTime(req.LeadTimeDays); err != nil {
		return nil, err
	}

	if err := s.supplierRepo.Save(ctx, supplier); err != nil {
		return nil, err
	}
	resp := ToSupplierResponse(supplier)
	return &resp, nil
}

// GetByID retrieves a supplier by ID
func (s *SupplierService) GetByID(ctx context.Context, tenantID, supplierID uuid.UUID) (*SupplierResponse, error) {
	supplier, err := s.supplierRepo.FindByIDForTenant(ctx, tenantID, supplierID)
	if err != nil {
		return nil, err
	}
	resp := ToSupplierResponse(supplier)
	return &resp, nil
}

// List retrieves a page of suppliers with the total count
func (s *SupplierService) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]SupplierResponse, int64, error) {
	suppliers, total, err := s.supplierRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]SupplierResponse, len(suppliers))
	for i := range suppliers {
		out[i] = ToSupplierResponse(&suppliers[i])
	}
	return out, total, nil
}

// Update changes a supplier's details
func (s *SupplierService) Update(ctx context.Context, tenantID, supplierID uuid.UUID, req UpdateSupplierRequest) (*SupplierResponse, error) {
	supplier, err := s.supplierRepo.FindByIDForTenant(ctx, tenantID, supplierID)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		if err := supplier.Rename(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.Document != nil {
		if err := supplier.SetDocument(*req.Document); err != nil {
			return nil, err
		}
	}
	if req.ContactName != nil || req.Phone != nil || req.Email != nil {
		contact, phone, email := supplier.ContactName, supplier.Phone, supplier.Email
		if req.ContactName != nil {
			contact = *req.ContactName
		}
		if req.Phone != nil {
			phone = *req.Phone
		}
		if req.Email != nil {
			email = *req.Email
		}
		if err := supplier.SetContact(contact, phone, email); err != nil {
			return nil, err
		}
	}
	if req.LeadTimeDays != nil {
		if err := supplier.SetLeadTime(*req.LeadTimeDays); err != nil {
			return nil, err
		}
	}
	if err := s.supplierRepo.Save(ctx, supplier); err != nil {
		return nil, err
	}
	resp := ToSupplierResponse(supplier)
	return &resp, nil
}

// Deactivate hides a supplier from new purchase orders
func (s *SupplierService) Deactivate(ctx context.Context, tenantID, supplierID uuid.UUID) error {
	supplier, err := s.supplierRepo.FindByIDForTenant(ctx, tenantID, supplierID)
	if err != nil {
		return err
	}
	supplier.Deactivate()
	return s.supplierRepo.Save(ctx, supplier)
}
