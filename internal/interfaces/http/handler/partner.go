package handler

import (
	partnerapp "github.com/erp/retail/internal/application/partner"
	"github.com/gin-gonic/gin"
)

// PartnerHandler serves customers and suppliers
type PartnerHandler struct {
	BaseHandler
	customers *partnerapp.CustomerService
	suppliers *partnerapp.SupplierService
}

// NewPartnerHandler creates a new PartnerHandler
func NewPartnerHandler(customers *partnerapp.CustomerService, suppliers *partnerapp.SupplierService) *PartnerHandler {
	return &PartnerHandler{customers: customers, suppliers: suppliers}
}

// CreateCustomer handles POST /partner/customers
func (h *PartnerHandler) CreateCustomer(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req partnerapp.CreateCustomerRequest
	if !h.bindJSON(c, &req) {
		return
	}
	customer, err := h.customers.Create(c.Request.Context(), actor.TenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, customer)
}

// GetCustomer handles GET /partner/customers/:id
func (h *PartnerHandler) GetCustomer(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	customer, err := h.customers.GetByID(c.Request.Context(), actor.TenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, customer)
}

// WalkInCustomer handles GET /partner/customers/walk-in
func (h *PartnerHandler) WalkInCustomer(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	customer, err := h.customers.WalkIn(c.Request.Context(), actor.TenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, customer)
}

// ListCustomers handles GET /partner/customers
func (h *PartnerHandler) ListCustomers(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var q ListQuery
	if !h.bindQuery(c, &q) {
		return
	}
	filter := q.Filter()
	customers, total, err := h.customers.List(c.Request.Context(), actor.TenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, customers, total, filter.Page, filter.PageSize)
}

// UpdateCustomer handles PUT /partner/customers/:id
func (h *PartnerHandler) UpdateCustomer(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req partnerapp.UpdateCustomerRequest
	if !h.bindJSON(c, &req) {
		return
	}
	customer, err := h.customers.Update(c.Request.Context(), actor.TenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, customer)
}

// DeactivateCustomer handles DELETE /partner/customers/:id
func (h *PartnerHandler) DeactivateCustomer(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.customers.Deactivate(c.Request.Context(), actor.TenantID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// CreateSupplier handles POST /partner/suppliers
func (h *PartnerHandler) CreateSupplier(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req partnerapp.CreateSupplierRequest
	if !h.bindJSON(c, &req) {
		return
	}
	supplier, err := h.suppliers.Create(c.Request.Context(), actor.TenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, supplier)
}

// GetSupplier handles GET /partner/suppliers/:id
func (h *PartnerHandler) GetSupplier(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	supplier, err := h.suppliers.GetByID(c.Request.Context(), actor.TenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, supplier)
}

// ListSuppliers handles GET /partner/suppliers
func (h *PartnerHandler) ListSuppliers(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var q ListQuery
	if !h.bindQuery(c, &q) {
		return
	}
	filter := q.Filter()
	suppliers, total, err := h.suppliers.List(c.Request.Context(), actor.TenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, suppliers, total, filter.Page, filter.PageSize)
}

// UpdateSupplier handles PUT /partner/suppliers/:id
func (h *PartnerHandler) UpdateSupplier(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req partnerapp.UpdateSupplierRequest
	if !h.bindJSON(c, &req) {
		return
	}
	supplier, err := h.suppliers.Update(c.Request.Context(), actor.TenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, supplier)
}

// DeactivateSupplier handles DELETE /partner/suppliers/:id
func (h *PartnerHandler) DeactivateSupplier(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.suppliers.Deactivate(c.Request.Context(), actor.TenantID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
