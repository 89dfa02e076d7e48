package handler

import (
	"time"

	inventoryapp "github.com/erp/retail/internal/application/inventory"
	"github.com/erp/retail/internal/domain/inventory"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InventoryHandler serves the stock ledger and count sessions
type InventoryHandler struct {
	BaseHandler
	stock  *inventoryapp.StockService
	counts *inventoryapp.CountSessionService
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(stock *inventoryapp.StockService, counts *inventoryapp.CountSessionService) *InventoryHandler {
	return &InventoryHandler{stock: stock, counts: counts}
}

// MovementRequest is the body of a manual stock movement
type MovementRequest struct {
	ProductID      uuid.UUID       `json:"product_id" binding:"required"`
	Kind           string          `json:"kind" binding:"required,oneof=entry exit adjustment transfer"`
	Quantity       decimal.Decimal `json:"quantity" binding:"required"`
	UnitValue      decimal.Decimal `json:"unit_value" binding:"decimal_gte0"`
	DocumentNumber string          `json:"document_number" binding:"max=50"`
	LotCode        string          `json:"lot_code" binding:"max=50"`
	ExpiryDate     *time.Time      `json:"expiry_date"`
	From           string          `json:"from" binding:"max=100"`
	To             string          `json:"to" binding:"max=100"`
	Reason         string          `json:"reason" binding:"max=255"`
}

// MovementListQuery filters a product's ledger
type MovementListQuery struct {
	ListQuery
	Kind string     `form:"kind" binding:"omitempty,oneof=entry exit adjustment transfer inventory_count"`
	From *time.Time `form:"from" time_format:"2006-01-02"`
	To   *time.Time `form:"to" time_format:"2006-01-02"`
}

// CountRequest records a counted quantity in a count session
type CountRequest struct {
	ProductID uuid.UUID       `json:"product_id" binding:"required"`
	Counted   decimal.Decimal `json:"counted" binding:"decimal_gte0"`
	Note      string          `json:"note" binding:"max=255"`
}

// NoteRequest carries an optional free-text note
type NoteRequest struct {
	Note string `json:"note" binding:"max=500"`
}

// ApplyMovement handles POST /inventory/movements
func (h *InventoryHandler) ApplyMovement(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req MovementRequest
	if !h.bindJSON(c, &req) {
		return
	}
	movement, err := h.stock.ApplyMovement(c.Request.Context(), actor, inventoryapp.ApplyMovementInput{
		ProductID:      req.ProductID,
		Kind:           inventory.MovementKind(req.Kind),
		Quantity:       req.Quantity,
		UnitValue:      req.UnitValue,
		DocumentNumber: req.DocumentNumber,
		LotCode:        req.LotCode,
		ExpiryDate:     req.ExpiryDate,
		From:           req.From,
		To:             req.To,
		Reason:         req.Reason,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, movement)
}

// GetStock handles GET /inventory/stock/:id
func (h *InventoryHandler) GetStock(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	stock, err := h.stock.GetStock(c.Request.Context(), actor.TenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stock)
}

// ListMovements handles GET /inventory/stock/:id/movements
func (h *InventoryHandler) ListMovements(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var q MovementListQuery
	if !h.bindQuery(c, &q) {
		return
	}
	filter := inventory.MovementFilter{
		Filter: q.Filter(),
		Kind:   inventory.MovementKind(q.Kind),
		From:   q.From,
		To:     q.To,
	}
	movements, total, err := h.stock.ListMovements(c.Request.Context(), actor.TenantID, id, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, movements, total, filter.Page, filter.PageSize)
}

// ListBelowMinimum handles GET /inventory/below-minimum
func (h *InventoryHandler) ListBelowMinimum(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	items, err := h.stock.ListBelowMinimum(c.Request.Context(), actor.TenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// ListExpiringBatches handles GET /inventory/batches/expiring?within_days=30
func (h *InventoryHandler) ListExpiringBatches(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var q struct {
		WithinDays int `form:"within_days" binding:"omitempty,min=0,max=3650"`
	}
	if !h.bindQuery(c, &q) {
		return
	}
	if q.WithinDays == 0 {
		q.WithinDays = 30
	}
	batches, err := h.stock.ListExpiringBatches(c.Request.Context(), actor.TenantID, q.WithinDays)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, batches)
}

// Reconcile handles POST /inventory/stock/:id/reconcile?fix=true
func (h *InventoryHandler) Reconcile(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	discrepancy, err := h.stock.Reconcile(c.Request.Context(), actor, id, c.Query("fix") == "true")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"consistent": discrepancy == nil, "discrepancy": discrepancy})
}

// ReconcileAll handles POST /inventory/reconcile?fix=true
func (h *InventoryHandler) ReconcileAll(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	discrepancies, err := h.stock.ReconcileAll(c.Request.Context(), actor, c.Query("fix") == "true")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"consistent": len(discrepancies) == 0, "discrepancies": discrepancies})
}

// OpenCount handles POST /inventory/counts
func (h *InventoryHandler) OpenCount(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req NoteRequest
	if !h.bindJSON(c, &req) {
		return
	}
	session, err := h.counts.Open(c.Request.Context(), actor, req.Note)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, session)
}

// RecordCount handles POST /inventory/counts/:id/lines
func (h *InventoryHandler) RecordCount(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req CountRequest
	if !h.bindJSON(c, &req) {
		return
	}
	session, err := h.counts.RecordCount(c.Request.Context(), actor, id, req.ProductID, req.Counted, req.Note)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, session)
}

// FinishCount handles POST /inventory/counts/:id/finish
func (h *InventoryHandler) FinishCount(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	session, err := h.counts.Finish(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, session)
}

// CancelCount handles POST /inventory/counts/:id/cancel
func (h *InventoryHandler) CancelCount(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.counts.Cancel(c.Request.Context(), actor, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// GetCount handles GET /inventory/counts/:id
func (h *InventoryHandler) GetCount(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	session, err := h.counts.Get(c.Request.Context(), actor.TenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, session)
}

// ListCounts handles GET /inventory/counts
func (h *InventoryHandler) ListCounts(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var q ListQuery
	if !h.bindQuery(c, &q) {
		return
	}
	filter := q.Filter()
	sessions, total, err := h.counts.List(c.Request.Context(), actor.TenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, sessions, total, filter.Page, filter.PageSize)
}
