package handler

import (
	catalogapp "github.com/erp/retail/internal/application/catalog"
	"github.com/gin-gonic/gin"
)

// CatalogHandler serves products and service items
type CatalogHandler struct {
	BaseHandler
	products *catalogapp.ProductService
	services *catalogapp.ServiceItemService
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(products *catalogapp.ProductService, services *catalogapp.ServiceItemService) *CatalogHandler {
	return &CatalogHandler{products: products, services: services}
}

// CreateProduct handles POST /catalog/products
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req catalogapp.CreateProductRequest
	if !h.bindJSON(c, &req) {
		return
	}
	product, err := h.products.Create(c.Request.Context(), actor.TenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, product)
}

// GetProduct handles GET /catalog/products/:id
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	product, err := h.products.GetByID(c.Request.Context(), actor.TenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// GetProductByCode handles GET /catalog/products/code/:code
func (h *CatalogHandler) GetProductByCode(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	product, err := h.products.GetByCode(c.Request.Context(), actor.TenantID, c.Param("code"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// ListProducts handles GET /catalog/products
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var q ListQuery
	if !h.bindQuery(c, &q) {
		return
	}
	products, err := h.products.List(c.Request.Context(), actor.TenantID, q.Filter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, products)
}

// UpdateProduct handles PUT /catalog/products/:id
func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req catalogapp.UpdateProductRequest
	if !h.bindJSON(c, &req) {
		return
	}
	product, err := h.products.Update(c.Request.Context(), actor.TenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// ActivateProduct handles POST /catalog/products/:id/activate
func (h *CatalogHandler) ActivateProduct(c *gin.Context) {
	h.setProductActive(c, true)
}

// DeactivateProduct handles POST /catalog/products/:id/deactivate
func (h *CatalogHandler) DeactivateProduct(c *gin.Context) {
	h.setProductActive(c, false)
}

func (h *CatalogHandler) setProductActive(c *gin.Context, active bool) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var (
		product *catalogapp.ProductResponse
		err     error
	)
	if active {
		product, err = h.products.Activate(c.Request.Context(), actor.TenantID, id)
	} else {
		product, err = h.products.Deactivate(c.Request.Context(), actor.TenantID, id)
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// CreateServiceItem handles POST /catalog/services
func (h *CatalogHandler) CreateServiceItem(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req catalogapp.CreateServiceItemRequest
	if !h.bindJSON(c, &req) {
		return
	}
	item, err := h.services.Create(c.Request.Context(), actor.TenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, item)
}

// GetServiceItem handles GET /catalog/services/:id
func (h *CatalogHandler) GetServiceItem(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	item, err := h.services.Get(c.Request.Context(), actor.TenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// ListServiceItems handles GET /catalog/services
func (h *CatalogHandler) ListServiceItems(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var q ListQuery
	if !h.bindQuery(c, &q) {
		return
	}
	items, err := h.services.List(c.Request.Context(), actor.TenantID, q.Filter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// UpdateServiceItem handles PUT /catalog/services/:id
func (h *CatalogHandler) UpdateServiceItem(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req catalogapp.UpdateServiceItemRequest
	if !h.bindJSON(c, &req) {
		return
	}
	item, err := h.services.Update(c.Request.Context(), actor.TenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// DeactivateServiceItem handles DELETE /catalog/services/:id
func (h *CatalogHandler) DeactivateServiceItem(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.services.Deactivate(c.Request.Context(), actor.TenantID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
