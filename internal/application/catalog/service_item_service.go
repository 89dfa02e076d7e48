package catalog

import (
	"context"

	"github.com/erp/retail/internal/domain/catalog"
	"github.com/erp/retail/internal/domain/shared"
	"github.com/google/uuid"
)

// ServiceItemService manages billable services referenced by service lines
type ServiceItemService struct {
	repo catalog.ServiceItemRepository
}

// NewServiceItemService creates a new ServiceItemService
func NewServiceItemService(repo catalog.ServiceItemRepository) *ServiceItemService {
	return &ServiceItemService{repo: repo}
}

// Create registers a service item
func (s *ServiceItemService) Create(ctx context.Context, tenantID uuid.UUID, req CreateServiceItemRequest) (*ServiceItemResponse, error) {
	item, err := catalog.NewServiceItem(tenantID, req.Code, req.Name, req.Price)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, item); err != nil {
		return nil, err
	}
	resp := ToServiceItemResponse(item)
	return &resp, nil
}

// Get retrieves a service item
func (s *ServiceItemService) Get(ctx context.Context, tenantID, id uuid.UUID) (*ServiceItemResponse, error) {
	item, err := s.repo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	resp := ToServiceItemResponse(item)
	return &resp, nil
}

// List retrieves a page of service items
func (s *ServiceItemService) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]ServiceItemResponse, error) {
	items, err := s.repo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	out := make([]ServiceItemResponse, len(items))
	for i := range items {
		out[i] = ToServiceItemResponse(&items[i])
	}
	return out, nil
}

// Update changes name and price. Lines already priced keep their values.
func (s *ServiceItemService) Update(ctx context.Context, tenantID, id uuid.UUID, req UpdateServiceItemRequest) (*ServiceItemResponse, error) {
	item, err := s.repo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := item.Update(req.Name, req.Price); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, item); err != nil {
		return nil, err
	}
	resp := ToServiceItemResponse(item)
	return &resp, nil
}

// Deactivate hides a service item from new documents
func (s *ServiceItemService) Deactivate(ctx context.Context, tenantID, id uuid.UUID) error {
	item, err := s.repo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return err
	}
	item.Deactivate()
	return s.repo.Save(ctx, item)
}
