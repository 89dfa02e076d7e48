package handler

import (
	tradeapp "github.com/erp/retail/internal/application/trade"
	"github.com/gin-gonic/gin"
)

// SaleHandler serves sales, quotes and the POS checkout
type SaleHandler struct {
	BaseHandler
	sales    *tradeapp.SaleService
	checkout *tradeapp.CheckoutService
}

// NewSaleHandler creates a new SaleHandler
func NewSaleHandler(sales *tradeapp.SaleService, checkout *tradeapp.CheckoutService) *SaleHandler {
	return &SaleHandler{sales: sales, checkout: checkout}
}

// Checkout handles POST /trade/checkout. The whole sale is booked in one
// transaction: stock, drawer and receivable move together or not at all.
func (h *SaleHandler) Checkout(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req tradeapp.CheckoutRequest
	if !h.bindJSON(c, &req) {
		return
	}
	receipt, err := h.checkout.Checkout(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, receipt)
}

// Create handles POST /trade/sales
func (h *SaleHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req tradeapp.CreateSaleRequest
	if !h.bindJSON(c, &req) {
		return
	}
	sale, err := h.sales.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, sale)
}

// Get handles GET /trade/sales/:id
func (h *SaleHandler) Get(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	sale, err := h.sales.GetByID(c.Request.Context(), actor.TenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sale)
}

// GetByNumber handles GET /trade/sales/number/:number
func (h *SaleHandler) GetByNumber(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	sale, err := h.sales.GetByNumber(c.Request.Context(), actor.TenantID, c.Param("number"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sale)
}

// List handles GET /trade/sales
func (h *SaleHandler) List(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var filter tradeapp.SaleListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	sales, total, err := h.sales.List(c.Request.Context(), actor.TenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, pageSize := paging(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, sales, total, page, pageSize)
}

// AddLine handles POST /trade/sales/:id/lines
func (h *SaleHandler) AddLine(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req tradeapp.LineInput
	if !h.bindJSON(c, &req) {
		return
	}
	sale, err := h.sales.AddLine(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sale)
}

// UpdateLine handles PUT /trade/sales/:id/lines/:line_id
func (h *SaleHandler) UpdateLine(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	lineID, ok := h.pathID(c, "line_id")
	if !ok {
		return
	}
	var req tradeapp.LineValuesInput
	if !h.bindJSON(c, &req) {
		return
	}
	sale, err := h.sales.UpdateLine(c.Request.Context(), actor, id, lineID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sale)
}

// RemoveLine handles DELETE /trade/sales/:id/lines/:line_id
func (h *SaleHandler) RemoveLine(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	lineID, ok := h.pathID(c, "line_id")
	if !ok {
		return
	}
	sale, err := h.sales.RemoveLine(c.Request.Context(), actor, id, lineID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sale)
}

// SetAdjustments handles PUT /trade/sales/:id/adjustments
func (h *SaleHandler) SetAdjustments(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req tradeapp.AdjustmentsRequest
	if !h.bindJSON(c, &req) {
		return
	}
	sale, err := h.sales.SetAdjustments(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sale)
}

// Approve handles POST /trade/sales/:id/approve
func (h *SaleHandler) Approve(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	sale, err := h.sales.Approve(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sale)
}

// Invoice handles POST /trade/sales/:id/invoice
func (h *SaleHandler) Invoice(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req tradeapp.InvoiceSaleRequest
	if c.Request.ContentLength != 0 && !h.bindJSON(c, &req) {
		return
	}
	sale, err := h.sales.Invoice(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sale)
}

// Deliver handles POST /trade/sales/:id/deliver
func (h *SaleHandler) Deliver(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	sale, err := h.sales.Deliver(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sale)
}

// Cancel handles POST /trade/sales/:id/cancel
func (h *SaleHandler) Cancel(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req tradeapp.CancelRequest
	if !h.bindJSON(c, &req) {
		return
	}
	sale, err := h.sales.Cancel(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sale)
}
