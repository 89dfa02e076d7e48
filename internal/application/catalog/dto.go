package catalog

import (
	"time"

	"github.com/erp/retail/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateProductRequest represents a request to create a new product.
// Stock always starts at zero; opening stock is booked as an entry movement.
type CreateProductRequest struct {
	Code      string           `json:"code" binding:"required,min=1,max=50"`
	Name      string           `json:"name" binding:"required,min=1,max=200"`
	Barcode   string           `json:"barcode" binding:"max=50"`
	Unit      string           `json:"unit" binding:"omitempty,max=20"`
	CostPrice *decimal.Decimal `json:"cost_price"`
	SalePrice *decimal.Decimal `json:"sale_price"`
	MinStock  *decimal.Decimal `json:"min_stock"`
}

// UpdateProductRequest represents a request to update a product
type UpdateProductRequest struct {
	Name      *string          `json:"name" binding:"omitempty,min=1,max=200"`
	Barcode   *string          `json:"barcode" binding:"omitempty,max=50"`
	Unit      *string          `json:"unit" binding:"omitempty,max=20"`
	CostPrice *decimal.Decimal `json:"cost_price"`
	SalePrice *decimal.Decimal `json:"sale_price"`
	MinStock  *decimal.Decimal `json:"min_stock"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID             uuid.UUID       `json:"id"`
	Code           string          `json:"code"`
	Name           string          `json:"name"`
	Barcode        string          `json:"barcode"`
	Unit           string          `json:"unit"`
	CostPrice      decimal.Decimal `json:"cost_price"`
	SalePrice      decimal.Decimal `json:"sale_price"`
	MinStock       decimal.Decimal `json:"min_stock"`
	OnHandQuantity decimal.Decimal `json:"on_hand_quantity"`
	ProfitMargin   decimal.Decimal `json:"profit_margin"`
	Status         string          `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	Version        int             `json:"version"`
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:             p.ID,
		Code:           p.Code,
		Name:           p.Name,
		Barcode:        p.Barcode,
		Unit:           p.Unit,
		CostPrice:      p.CostPrice,
		SalePrice:      p.SalePrice,
		MinStock:       p.MinStock,
		OnHandQuantity: p.OnHandQuantity,
		ProfitMargin:   p.GetProfitMargin(),
		Status:         string(p.Status),
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
		Version:        p.Version,
	}
}

// ToProductResponses converts a slice of domain Products
func ToProductResponses(products []catalog.Product) []ProductResponse {
	out := make([]ProductResponse, len(products))
	for i := range products {
		out[i] = ToProductResponse(&products[i])
	}
	return out
}

// CreateServiceItemRequest represents a request to create a billable service
type CreateServiceItemRequest struct {
	Code  string          `json:"code" binding:"required,min=1,max=50"`
	Name  string          `json:"name" binding:"required,min=1,max=200"`
	Price decimal.Decimal `json:"price"`
}

// UpdateServiceItemRequest represents a request to update a billable service
type UpdateServiceItemRequest struct {
	Name  string          `json:"name" binding:"required,min=1,max=200"`
	Price decimal.Decimal `json:"price"`
}

// ServiceItemResponse represents a service item in API responses
type ServiceItemResponse struct {
	ID      uuid.UUID       `json:"id"`
	Code    string          `json:"code"`
	Name    string          `json:"name"`
	Price   decimal.Decimal `json:"price"`
	Active  bool            `json:"active"`
	Version int             `json:"version"`
}

// ToServiceItemResponse converts a domain ServiceItem
func ToServiceItemResponse(s *catalog.ServiceItem) ServiceItemResponse {
	return ServiceItemResponse{
		ID:      s.ID,
		Code:    s.Code,
		Name:    s.Name,
		Price:   s.Price,
		Active:  s.Active,
		Version: s.Version,
	}
}
