package handler

import (
	servicedeskapp "github.com/erp/retail/internal/application/servicedesk"
	tradeapp "github.com/erp/retail/internal/application/trade"
	"github.com/gin-gonic/gin"
)

// ServiceOrderHandler serves repair orders, their parts and budgets
type ServiceOrderHandler struct {
	BaseHandler
	orders *servicedeskapp.ServiceOrderService
}

// NewServiceOrderHandler creates a new ServiceOrderHandler
func NewServiceOrderHandler(orders *servicedeskapp.ServiceOrderService) *ServiceOrderHandler {
	return &ServiceOrderHandler{orders: orders}
}

// orderMutation runs fn with the caller and the :id order and answers its result
func (h *ServiceOrderHandler) orderMutation(c *gin.Context, fn func(c *gin.Context) (*servicedeskapp.ServiceOrderResponse, error)) {
	order, err := fn(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if order != nil {
		h.Success(c, order)
	}
}

// Open handles POST /servicedesk/orders
func (h *ServiceOrderHandler) Open(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req servicedeskapp.OpenServiceOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}
	order, err := h.orders.Open(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, order)
}

// Get handles GET /servicedesk/orders/:id
func (h *ServiceOrderHandler) Get(c *gin.Context) {
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

// List handles GET /servicedesk/orders
func (h *ServiceOrderHandler) List(c *gin.Context) {
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

// AssignTechnician handles PUT /servicedesk/orders/:id/technician
func (h *ServiceOrderHandler) AssignTechnician(c *gin.Context) {
	h.orderMutation(c, func(c *gin.Context) (*servicedeskapp.ServiceOrderResponse, error) {
		actor, ok := h.actor(c)
		if !ok {
			return nil, nil
		}
		id, ok := h.pathID(c, "id")
		if !ok {
			return nil, nil
		}
		var req servicedeskapp.AssignTechnicianRequest
		if !h.bindJSON(c, &req) {
			return nil, nil
		}
		return h.orders.AssignTechnician(c.Request.Context(), actor, id, req)
	})
}

// SetDiagnosis handles PUT /servicedesk/orders/:id/diagnosis
func (h *ServiceOrderHandler) SetDiagnosis(c *gin.Context) {
	h.orderMutation(c, func(c *gin.Context) (*servicedeskapp.ServiceOrderResponse, error) {
		actor, ok := h.actor(c)
		if !ok {
			return nil, nil
		}
		id, ok := h.pathID(c, "id")
		if !ok {
			return nil, nil
		}
		var req servicedeskapp.DiagnosisRequest
		if !h.bindJSON(c, &req) {
			return nil, nil
		}
		return h.orders.SetDiagnosis(c.Request.Context(), actor, id, req)
	})
}

// SetValues handles PUT /servicedesk/orders/:id/values
func (h *ServiceOrderHandler) SetValues(c *gin.Context) {
	h.orderMutation(c, func(c *gin.Context) (*servicedeskapp.ServiceOrderResponse, error) {
		actor, ok := h.actor(c)
		if !ok {
			return nil, nil
		}
		id, ok := h.pathID(c, "id")
		if !ok {
			return nil, nil
		}
		var req servicedeskapp.ValuesRequest
		if !h.bindJSON(c, &req) {
			return nil, nil
		}
		return h.orders.SetValues(c.Request.Context(), actor, id, req)
	})
}

// AddPart handles POST /servicedesk/orders/:id/parts
func (h *ServiceOrderHandler) AddPart(c *gin.Context) {
	h.orderMutation(c, func(c *gin.Context) (*servicedeskapp.ServiceOrderResponse, error) {
		actor, ok := h.actor(c)
		if !ok {
			return nil, nil
		}
		id, ok := h.pathID(c, "id")
		if !ok {
			return nil, nil
		}
		var req servicedeskapp.PartInput
		if !h.bindJSON(c, &req) {
			return nil, nil
		}
		return h.orders.AddPart(c.Request.Context(), actor, id, req)
	})
}

// UpdatePart handles PUT /servicedesk/orders/:id/parts/:part_id
func (h *ServiceOrderHandler) UpdatePart(c *gin.Context) {
	h.orderMutation(c, func(c *gin.Context) (*servicedeskapp.ServiceOrderResponse, error) {
		actor, ok := h.actor(c)
		if !ok {
			return nil, nil
		}
		id, ok := h.pathID(c, "id")
		if !ok {
			return nil, nil
		}
		partID, ok := h.pathID(c, "part_id")
		if !ok {
			return nil, nil
		}
		var req tradeapp.LineValuesInput
		if !h.bindJSON(c, &req) {
			return nil, nil
		}
		return h.orders.UpdatePart(c.Request.Context(), actor, id, partID, req)
	})
}

// RemovePart handles DELETE /servicedesk/orders/:id/parts/:part_id
func (h *ServiceOrderHandler) RemovePart(c *gin.Context) {
	h.orderMutation(c, func(c *gin.Context) (*servicedeskapp.ServiceOrderResponse, error) {
		actor, ok := h.actor(c)
		if !ok {
			return nil, nil
		}
		id, ok := h.pathID(c, "id")
		if !ok {
			return nil, nil
		}
		partID, ok := h.pathID(c, "part_id")
		if !ok {
			return nil, nil
		}
		return h.orders.RemovePart(c.Request.Context(), actor, id, partID)
	})
}

// ApplyPart handles POST /servicedesk/orders/:id/parts/:part_id/apply
func (h *ServiceOrderHandler) ApplyPart(c *gin.Context) {
	h.orderMutation(c, func(c *gin.Context) (*servicedeskapp.ServiceOrderResponse, error) {
		actor, ok := h.actor(c)
		if !ok {
			return nil, nil
		}
		id, ok := h.pathID(c, "id")
		if !ok {
			return nil, nil
		}
		partID, ok := h.pathID(c, "part_id")
		if !ok {
			return nil, nil
		}
		return h.orders.ApplyPart(c.Request.Context(), actor, id, partID)
	})
}

// Transition handles POST /servicedesk/orders/:id/status
func (h *ServiceOrderHandler) Transition(c *gin.Context) {
	h.orderMutation(c, func(c *gin.Context) (*servicedeskapp.ServiceOrderResponse, error) {
		actor, ok := h.actor(c)
		if !ok {
			return nil, nil
		}
		id, ok := h.pathID(c, "id")
		if !ok {
			return nil, nil
		}
		var req servicedeskapp.TransitionRequest
		if !h.bindJSON(c, &req) {
			return nil, nil
		}
		return h.orders.Transition(c.Request.Context(), actor, id, req)
	})
}

// CreateBudget handles POST /servicedesk/orders/:id/budgets
func (h *ServiceOrderHandler) CreateBudget(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req servicedeskapp.CreateBudgetRequest
	if !h.bindJSON(c, &req) {
		return
	}
	budget, err := h.orders.CreateBudget(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, budget)
}

// ListBudgets handles GET /servicedesk/orders/:id/budgets
func (h *ServiceOrderHandler) ListBudgets(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	budgets, err := h.orders.ListBudgets(c.Request.Context(), actor.TenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, budgets)
}

// ApproveBudget handles POST /servicedesk/budgets/:id/approve
func (h *ServiceOrderHandler) ApproveBudget(c *gin.Context) {
	h.orderMutation(c, func(c *gin.Context) (*servicedeskapp.ServiceOrderResponse, error) {
		actor, ok := h.actor(c)
		if !ok {
			return nil, nil
		}
		id, ok := h.pathID(c, "id")
		if !ok {
			return nil, nil
		}
		return h.orders.ApproveBudget(c.Request.Context(), actor, id)
	})
}

// RejectBudget handles POST /servicedesk/budgets/:id/reject
func (h *ServiceOrderHandler) RejectBudget(c *gin.Context) {
	h.orderMutation(c, func(c *gin.Context) (*servicedeskapp.ServiceOrderResponse, error) {
		actor, ok := h.actor(c)
		if !ok {
			return nil, nil
		}
		id, ok := h.pathID(c, "id")
		if !ok {
			return nil, nil
		}
		var req servicedeskapp.RejectBudgetRequest
		if !h.bindJSON(c, &req) {
			return nil, nil
		}
		return h.orders.RejectBudget(c.Request.Context(), actor, id, req)
	})
}

// RegisterPayment handles POST /servicedesk/orders/:id/payments
func (h *ServiceOrderHandler) RegisterPayment(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req servicedeskapp.PaymentRequest
	if !h.bindJSON(c, &req) {
		return
	}
	payment, err := h.orders.RegisterPayment(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, payment)
}
