package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/erp/retail/internal/domain/catalog"
	"github.com/erp/retail/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductService handles product-related business operations.
// Stock quantities are read-only here; they move only through the stock ledger.
type ProductService struct {
	productRepo catalog.ProductRepository
	logger      *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(productRepo catalog.ProductRepository, logger *zap.Logger) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{productRepo: productRepo, logger: logger}
}

// Create creates a new product
func (s *ProductService) Create(ctx context.Context, tenantID uuid.UUID, req CreateProductRequest) (*ProductResponse, error) {
	if err := s.ensureCodeFree(ctx, tenantID, req.Code); err != nil {
		return nil, err
	}
	if req.Barcode != "" {
		if err := s.ensureBarcodeFree(ctx, tenantID, req.Barcode, uuid.Nil); err != nil {
			return nil, err
		}
	}

	product, err := catalog.NewProduct(tenantID, req.Code, req.Name, req.Unit)
	if err != nil {
		return nil, err
	}
	if req.Barcode != "" {
		if err := product.SetBarcode(req.Barcode); err != nil {
			return nil, err
		}
	}
	cost, sale := decimal.Zero, decimal.Zero
	if req.CostPrice != nil {
		cost = *req.CostPrice
	}
	if req.SalePrice != nil {
		sale = *req.SalePrice
	}
	if err := product.SetPrices(cost, sale); err != nil {
		return nil, err
	}
	if req.MinStock != nil {
		if err := product.SetMinStock(*req.MinStock); err != nil {
			return nil, err
		}
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	s.logger.Info("product created",
		zap.String("tenant_id", tenantID.String()),
		zap.String("product_id", product.ID.String()),
		zap.String("code", product.Code),
	)
	resp := ToProductResponse(product)
	return &resp, nil
}

// GetByID retrieves a product by ID
func (s *ProductService) GetByID(ctx context.Context, tenantID, productID uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByIDForTenant(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// GetByCode retrieves a product by code, falling back to a barcode lookup
// so scanners and typed codes share one endpoint.
func (s *ProductService) GetByCode(ctx context.Context, tenantID uuid.UUID, code string) (*ProductResponse, error) {
	product, err := s.productRepo.FindByCode(ctx, tenantID, strings.ToUpper(strings.TrimSpace(code)))
	if errors.Is(err, shared.ErrNotFound) {
		product, err = s.productRepo.FindByBarcode(ctx, tenantID, strings.TrimSpace(code))
	}
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// List retrieves a page of products
func (s *ProductService) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]ProductResponse, error) {
	products, err := s.productRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	return ToProductResponses(products), nil
}

// Update changes descriptive fields and prices
func (s *ProductService) Update(ctx context.Context, tenantID, productID uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByIDForTenant(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if err := product.Rename(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.Unit != nil {
		if err := product.SetUnit(*req.Unit); err != nil {
			return nil, err
		}
	}
	if req.Barcode != nil && *req.Barcode != product.Barcode {
		if *req.Barcode != "" {
			if err := s.ensureBarcodeFree(ctx, tenantID, *req.Barcode, product.ID); err != nil {
				return nil, err
			}
		}
		if err := product.SetBarcode(*req.Barcode); err != nil {
			return nil, err
		}
	}
	if req.CostPrice != nil || req.SalePrice != nil {
		cost, sale := product.CostPrice, product.SalePrice
		if req.CostPrice != nil {
			cost = *req.CostPrice
		}
		if req.SalePrice != nil {
			sale = *req.SalePrice
		}
		if err := product.SetPrices(cost, sale); err != nil {
			return nil, err
		}
	}
	if req.MinStock != nil {
		if err := product.SetMinStock(*req.MinStock); err != nil {
			return nil, err
		}
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// Activate makes a product available for sale again
func (s *ProductService) Activate(ctx context.Context, tenantID, productID uuid.UUID) (*ProductResponse, error) {
	return s.setActive(ctx, tenantID, productID, true)
}

// Deactivate hides a product from sales and checkout. Its stock history stays intact.
func (s *ProductService) Deactivate(ctx context.Context, tenantID, productID uuid.UUID) (*ProductResponse, error) {
	return s.setActive(ctx, tenantID, productID, false)
}

func (s *ProductService) setActive(ctx context.Context, tenantID, productID uuid.UUID, active bool) (*ProductResponse, error) {
	product, err := s.productRepo.FindByIDForTenant(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	if active {
		product.Activate()
	} else {
		product.Deactivate()
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

func (s *ProductService) ensureCodeFree(ctx context.Context, tenantID uuid.UUID, code string) error {
	_, err := s.productRepo.FindByCode(ctx, tenantID, strings.ToUpper(strings.TrimSpace(code)))
	switch {
	case err == nil:
		return shared.ErrAlreadyExists.WithDetail("code", code)
	case errors.Is(err, shared.ErrNotFound):
		return nil
	default:
		return err
	}
}

func (s *ProductService) ensureBarcodeFree(ctx context.Context, tenantID uuid.UUID, barcode string, self uuid.UUID) error {
	existing, err := s.productRepo.FindByBarcode(ctx, tenantID, barcode)
	switch {
	case err == nil && existing.ID != self:
		return shared.ErrAlreadyExists.WithDetail("barcode", barcode)
	case err == nil, errors.Is(err, shared.ErrNotFound):
		return nil
	default:
		return err
	}
}
