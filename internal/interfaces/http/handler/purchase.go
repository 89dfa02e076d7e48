package handler

import (
	tradeapp "github.com/erp/retail/internal/application/trade"
	"github.com/gin-gonic/gin"
)

// PurchaseHandler serves purchase orders
type PurchaseHandler struct {
	BaseHandler
	orders *tradeapp.PurchaseService
}

// NewPurchaseHandler creates a new PurchaseHandler
func NewPurchaseHandler(orders *tradeapp.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{orders: orders}
}

// Create handles POST /trade/purchase-orders
func (h *PurchaseHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req tradeapp.CreatePurchaseOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}
	order, err := h.orders.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, order)
}

// Get handles GET /trade/purchase-orders/:id
func (h *PurchaseHandler) Get(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	order, err := h.orders.GetByID(c.Request.Context(), actor.TenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// List handles GET /trade/purchase-orders
func (h *PurchaseHandler) List(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var q ListQuery
	if !h.bindQuery(c, &q) {
		return
	}
	filter := q.Filter()
	orders, total, err := h.orders.List(c.Request.Context(), actor.TenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, orders, total, filter.Page, filter.PageSize)
}

// AddLine handles POST /trade/purchase-orders/:id/lines
func (h *PurchaseHandler) AddLine(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req tradeapp.PurchaseLineInput
	if !h.bindJSON(c, &req) {
		return
	}
	order, err := h.orders.AddLine(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// RemoveLine handles DELETE /trade/purchase-orders/:id/lines/:line_id
func (h *PurchaseHandler) RemoveLine(c *gin.Context) {
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
	order, err := h.orders.RemoveLine(c.Request.Context(), actor, id, lineID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Approve handles POST /trade/purchase-orders/:id/approve
func (h *PurchaseHandler) Approve(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	order, err := h.orders.Approve(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Dispatch handles POST /trade/purchase-orders/:id/dispatch
func (h *PurchaseHandler) Dispatch(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req tradeapp.DispatchPurchaseOrderRequest
	if c.Request.ContentLength != 0 && !h.bindJSON(c, &req) {
		return
	}
	order, err := h.orders.Dispatch(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Receive handles POST /trade/purchase-orders/:id/receive
func (h *PurchaseHandler) Receive(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req tradeapp.ReceiveGoodsRequest
	if !h.bindJSON(c, &req) {
		return
	}
	order, err := h.orders.ReceiveGoods(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Cancel handles POST /trade/purchase-orders/:id/cancel
func (h *PurchaseHandler) Cancel(c *gin.Context) {
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
	order, err := h.orders.Cancel(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}
