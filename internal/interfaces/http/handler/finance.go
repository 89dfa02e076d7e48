package handler

import (
	"time"

	financeapp "github.com/erp/retail/internal/application/finance"
	"github.com/gin-gonic/gin"
)

// FinanceHandler serves receivables, payables, payment methods and the DRE chart
type FinanceHandler struct {
	BaseHandler
	receivables *financeapp.ReceivableService
	payables    *financeapp.PayableService
	methods     *financeapp.PaymentMethodService
	categories  *financeapp.DRECategoryService
}

// NewFinanceHandler creates a new FinanceHandler
func NewFinanceHandler(
	receivables *financeapp.ReceivableService,
	payables *financeapp.PayableService,
	methods *financeapp.PaymentMethodService,
	categories *financeapp.DRECategoryService,
) *FinanceHandler {
	return &FinanceHandler{receivables: receivables, payables: payables, methods: methods, categories: categories}
}

// CreateReceivable handles POST /finance/receivables
func (h *FinanceHandler) CreateReceivable(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req financeapp.CreateEntryRequest
	if !h.bindJSON(c, &req) {
		return
	}
	entry, err := h.receivables.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, entry)
}

// GetReceivable handles GET /finance/receivables/:id
func (h *FinanceHandler) GetReceivable(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	entry, err := h.receivables.GetByID(c.Request.Context(), actor.TenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entry)
}

// ListReceivables handles GET /finance/receivables
func (h *FinanceHandler) ListReceivables(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var filter financeapp.EntryListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	entries, total, err := h.receivables.List(c.Request.Context(), actor.TenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, pageSize := paging(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, entries, total, page, pageSize)
}

// SettleReceivable handles POST /finance/receivables/:id/settle
func (h *FinanceHandler) SettleReceivable(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req financeapp.SettleRequest
	if !h.bindJSON(c, &req) {
		return
	}
	settlement, err := h.receivables.Settle(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, settlement)
}

// CancelReceivable handles POST /finance/receivables/:id/cancel
func (h *FinanceHandler) CancelReceivable(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req financeapp.CancelEntryRequest
	if !h.bindJSON(c, &req) {
		return
	}
	entry, err := h.receivables.Cancel(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entry)
}

// RefreshOverdueReceivables handles POST /finance/receivables/refresh-overdue?today=YYYY-MM-DD
func (h *FinanceHandler) RefreshOverdueReceivables(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	today, ok := h.dateQuery(c, "today", time.Now())
	if !ok {
		return
	}
	result, err := h.receivables.RefreshOverdue(c.Request.Context(), actor, today)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// CreatePayable handles POST /finance/payables
func (h *FinanceHandler) CreatePayable(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req financeapp.CreateEntryRequest
	if !h.bindJSON(c, &req) {
		return
	}
	entry, err := h.payables.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, entry)
}

// GetPayable handles GET /finance/payables/:id
func (h *FinanceHandler) GetPayable(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	entry, err := h.payables.GetByID(c.Request.Context(), actor.TenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entry)
}

// ListPayables handles GET /finance/payables
func (h *FinanceHandler) ListPayables(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var filter financeapp.EntryListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	entries, total, err := h.payables.List(c.Request.Context(), actor.TenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, pageSize := paging(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, entries, total, page, pageSize)
}

// PayPayable handles POST /finance/payables/:id/pay
func (h *FinanceHandler) PayPayable(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req financeapp.SettleRequest
	if !h.bindJSON(c, &req) {
		return
	}
	settlement, err := h.payables.Pay(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, settlement)
}

// CancelPayable handles POST /finance/payables/:id/cancel
func (h *FinanceHandler) CancelPayable(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req financeapp.CancelEntryRequest
	if !h.bindJSON(c, &req) {
		return
	}
	entry, err := h.payables.Cancel(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entry)
}

// RefreshOverduePayables handles POST /finance/payables/refresh-overdue?today=YYYY-MM-DD
func (h *FinanceHandler) RefreshOverduePayables(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	today, ok := h.dateQuery(c, "today", time.Now())
	if !ok {
		return
	}
	result, err := h.payables.RefreshOverdue(c.Request.Context(), actor, today)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// CreatePaymentMethod handles POST /finance/payment-methods
func (h *FinanceHandler) CreatePaymentMethod(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req financeapp.CreateMethodRequest
	if !h.bindJSON(c, &req) {
		return
	}
	method, err := h.methods.Create(c.Request.Context(), actor.TenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, method)
}

// GetPaymentMethod handles GET /finance/payment-methods/:id
func (h *FinanceHandler) GetPaymentMethod(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	method, err := h.methods.Get(c.Request.Context(), actor.TenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, method)
}

// ListPaymentMethods handles GET /finance/payment-methods
func (h *FinanceHandler) ListPaymentMethods(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var q ListQuery
	if !h.bindQuery(c, &q) {
		return
	}
	methods, err := h.methods.List(c.Request.Context(), actor.TenantID, q.Filter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, methods)
}

// UpdateFeeSchedule handles PUT /finance/payment-methods/:id/schedule
func (h *FinanceHandler) UpdateFeeSchedule(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req financeapp.FeeScheduleInput
	if !h.bindJSON(c, &req) {
		return
	}
	method, err := h.methods.UpdateSchedule(c.Request.Context(), actor.TenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, method)
}

// DeactivatePaymentMethod handles DELETE /finance/payment-methods/:id
func (h *FinanceHandler) DeactivatePaymentMethod(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.methods.Deactivate(c.Request.Context(), actor.TenantID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// PreviewFee handles GET /finance/payment-methods/:id/fee?amount=100&installments=3
func (h *FinanceHandler) PreviewFee(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req financeapp.FeePreviewRequest
	if !h.bindQuery(c, &req) {
		return
	}
	preview, err := h.methods.PreviewFee(c.Request.Context(), actor.TenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, preview)
}

// ListDRECategories handles GET /finance/dre-categories
func (h *FinanceHandler) ListDRECategories(c *gin.Context) {
	categories, err := h.categories.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, categories)
}
