package handler

import (
	"time"

	cashierapp "github.com/erp/retail/internal/application/cashier"
	"github.com/gin-gonic/gin"
)

// DrawerHandler serves cash drawer sessions
type DrawerHandler struct {
	BaseHandler
	drawers *cashierapp.DrawerService
}

// NewDrawerHandler creates a new DrawerHandler
func NewDrawerHandler(drawers *cashierapp.DrawerService) *DrawerHandler {
	return &DrawerHandler{drawers: drawers}
}

// Open handles POST /cashier/drawers
func (h *DrawerHandler) Open(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req cashierapp.OpenDrawerRequest
	if !h.bindJSON(c, &req) {
		return
	}
	session, err := h.drawers.Open(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, session)
}

// Current handles GET /cashier/drawers/current
func (h *DrawerHandler) Current(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	session, err := h.drawers.Current(c.Request.Context(), actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, session)
}

// RecordMovement handles POST /cashier/drawers/:id/movements
func (h *DrawerHandler) RecordMovement(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req cashierapp.MovementRequest
	if !h.bindJSON(c, &req) {
		return
	}
	movement, err := h.drawers.RecordMovement(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, movement)
}

// Close handles POST /cashier/drawers/:id/close
func (h *DrawerHandler) Close(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req cashierapp.CloseDrawerRequest
	if !h.bindJSON(c, &req) {
		return
	}
	session, err := h.drawers.Close(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, session)
}

// Get handles GET /cashier/drawers/:id
func (h *DrawerHandler) Get(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	session, err := h.drawers.Get(c.Request.Context(), actor.TenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, session)
}

// List handles GET /cashier/drawers
func (h *DrawerHandler) List(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var filter cashierapp.SessionListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	sessions, total, err := h.drawers.List(c.Request.Context(), actor.TenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, pageSize := paging(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, sessions, total, page, pageSize)
}

// ListMovements handles GET /cashier/drawers/:id/movements
func (h *DrawerHandler) ListMovements(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	movements, err := h.drawers.ListMovements(c.Request.Context(), actor.TenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, movements)
}

// Statistics handles GET /cashier/statistics?from=2024-01-01&to=2024-01-31
func (h *DrawerHandler) Statistics(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	today := time.Now()
	from, ok := h.dateQuery(c, "from", time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.Local))
	if !ok {
		return
	}
	to, ok := h.dateQuery(c, "to", today)
	if !ok {
		return
	}
	stats, err := h.drawers.Statistics(c.Request.Context(), actor.TenantID, from, to.AddDate(0, 0, 1))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}
