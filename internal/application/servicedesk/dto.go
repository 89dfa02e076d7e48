package servicedesk

import (
	"time"

	"github.com/erp/retail/internal/domain/servicedesk"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OpenServiceOrderRequest records equipment received for service.
// A missing customer resolves to the walk-in customer.
type OpenServiceOrderRequest struct {
	CustomerID     *uuid.UUID `json:"customer_id"`
	Equipment      string     `json:"equipment" binding:"required,min=1,max=200"`
	Brand          string     `json:"brand" binding:"max=100"`
	Model          string     `json:"model" binding:"max=100"`
	SerialNumber   string     `json:"serial_number" binding:"max=100"`
	ReportedDefect string     `json:"reported_defect" binding:"required"`
	WarrantyDays   int        `json:"warranty_days" binding:"omitempty,min=0,max=3650"`
}

// AssignTechnicianRequest sets the responsible technician
type AssignTechnicianRequest struct {
	TechnicianID uuid.UUID `json:"technician_id" binding:"required"`
	Name         string    `json:"name" binding:"required,max=100"`
}

// DiagnosisRequest records the technical diagnosis
type DiagnosisRequest struct {
	Diagnosis string `json:"diagnosis" binding:"required"`
}

// ValuesRequest sets service value, discount and freight
type ValuesRequest struct {
	ServiceValue decimal.Decimal `json:"service_value"`
	Discount     decimal.Decimal `json:"discount"`
	Freight      decimal.Decimal `json:"freight"`
}

// PartInput adds a product part to an order
type PartInput struct {
	ProductID uuid.UUID        `json:"product_id" binding:"required"`
	Quantity  decimal.Decimal  `json:"quantity" binding:"required"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
	Discount  decimal.Decimal  `json:"discount"`
}

// TransitionRequest moves an order to another status
type TransitionRequest struct {
	Status string `json:"status" binding:"required,oneof=diagnosing quoting approved in_progress awaiting_parts completed delivered cancelled"`
	Note   string `json:"note" binding:"max=500"`
}

// CreateBudgetRequest quotes a service order
type CreateBudgetRequest struct {
	Description  string          `json:"description" binding:"required"`
	ServiceValue decimal.Decimal `json:"service_value"`
	PartsValue   decimal.Decimal `json:"parts_value"`
	ValidityDays int             `json:"validity_days" binding:"omitempty,min=1,max=365"`
}

// RejectBudgetRequest carries the rejection reason
type RejectBudgetRequest struct {
	Reason string `json:"reason" binding:"required,max=255"`
}

// PaymentRequest registers a payment for a service order.
// A zero amount charges the order's grand total.
type PaymentRequest struct {
	PaymentMethodID uuid.UUID       `json:"payment_method_id" binding:"required"`
	Installments    int             `json:"installments" binding:"omitempty,min=1,max=12"`
	Amount          decimal.Decimal `json:"amount"`
	PaidDate        *time.Time      `json:"paid_date"`
}

// PaymentResponse describes the receivable settled for a service order payment
type PaymentResponse struct {
	ReceivableID       uuid.UUID       `json:"receivable_id"`
	Number             string          `json:"number"`
	Amount             decimal.Decimal `json:"amount"`
	Fee                decimal.Decimal `json:"fee"`
	Net                decimal.Decimal `json:"net"`
	FeePercent         decimal.Decimal `json:"fee_percent"`
	ExpectedSettlement *time.Time      `json:"expected_settlement,omitempty"`
}

// PartResponse represents a part in API responses
type PartResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   *uuid.UUID      `json:"product_id"`
	Code        string          `json:"code"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Discount    decimal.Decimal `json:"discount"`
	Total       decimal.Decimal `json:"total"`
	Applied     bool            `json:"applied"`
	AppliedAt   *time.Time      `json:"applied_at,omitempty"`
}

// HistoryResponse represents a history entry in API responses
type HistoryResponse struct {
	Action      string    `json:"action"`
	Description string    `json:"description"`
	FromStatus  string    `json:"from_status,omitempty"`
	ToStatus    string    `json:"to_status,omitempty"`
	ActorName   string    `json:"actor_name"`
	At          time.Time `json:"at"`
}

// ServiceOrderResponse represents a service order in API responses
type ServiceOrderResponse struct {
	ID             uuid.UUID         `json:"id"`
	Number         string            `json:"number"`
	Status         string            `json:"status"`
	CustomerID     uuid.UUID         `json:"customer_id"`
	CustomerName   string            `json:"customer_name"`
	TechnicianID   *uuid.UUID        `json:"technician_id,omitempty"`
	TechnicianName string            `json:"technician_name,omitempty"`
	Equipment      string            `json:"equipment"`
	Brand          string            `json:"brand,omitempty"`
	Model          string            `json:"model,omitempty"`
	SerialNumber   string            `json:"serial_number,omitempty"`
	ReportedDefect string            `json:"reported_defect"`
	Diagnosis      string            `json:"diagnosis,omitempty"`
	ServiceValue   decimal.Decimal   `json:"service_value"`
	PartsValue     decimal.Decimal   `json:"parts_value"`
	PartsCost      decimal.Decimal   `json:"parts_cost"`
	Discount       decimal.Decimal   `json:"discount"`
	Freight        decimal.Decimal   `json:"freight"`
	GrandTotal     decimal.Decimal   `json:"grand_total"`
	WarrantyDays   int               `json:"warranty_days"`
	WarrantyUntil  *time.Time        `json:"warranty_until,omitempty"`
	OpenedAt       time.Time         `json:"opened_at"`
	ApprovedAt     *time.Time        `json:"approved_at,omitempty"`
	CompletedAt    *time.Time        `json:"completed_at,omitempty"`
	DeliveredAt    *time.Time        `json:"delivered_at,omitempty"`
	Parts          []PartResponse    `json:"parts,omitempty"`
	History        []HistoryResponse `json:"history,omitempty"`
	Version        int               `json:"version"`
}

// ToServiceOrderResponse converts a domain order to a response
func ToServiceOrderResponse(o *servicedesk.ServiceOrder) ServiceOrderResponse {
	parts := make([]PartResponse, 0, len(o.Parts))
	for _, p := range o.Parts {
		parts = append(parts, PartResponse{
			ID:          p.ID,
			ProductID:   p.ProductID,
			Code:        p.Code,
			Description: p.Description,
			Quantity:    p.Quantity,
			UnitPrice:   p.UnitPrice,
			Discount:    p.Discount,
			Total:       p.Total,
			Applied:     p.Applied,
			AppliedAt:   p.AppliedAt,
		})
	}
	history := make([]HistoryResponse, 0, len(o.History))
	for _, h := range o.History {
		history = append(history, HistoryResponse{
			Action:      string(h.Action),
			Description: h.Description,
			FromStatus:  string(h.FromStatus),
			ToStatus:    string(h.ToStatus),
			ActorName:   h.ActorName,
			At:          h.At,
		})
	}
	return ServiceOrderResponse{
		ID:             o.ID,
		Number:         o.Number,
		Status:         string(o.Status),
		CustomerID:     o.CustomerID,
		CustomerName:   o.CustomerName,
		TechnicianID:   o.TechnicianID,
		TechnicianName: o.TechnicianName,
		Equipment:      o.Equipment,
		Brand:          o.Brand,
		Model:          o.Model,
		SerialNumber:   o.SerialNumber,
		ReportedDefect: o.ReportedDefect,
		Diagnosis:      o.Diagnosis,
		ServiceValue:   o.ServiceValue,
		PartsValue:     o.PartsValue,
		PartsCost:      o.PartsCost,
		Discount:       o.Discount,
		Freight:        o.Freight,
		GrandTotal:     o.GrandTotal,
		WarrantyDays:   o.WarrantyDays,
		WarrantyUntil:  o.WarrantyUntil,
		OpenedAt:       o.OpenedAt,
		ApprovedAt:     o.ApprovedAt,
		CompletedAt:    o.CompletedAt,
		DeliveredAt:    o.DeliveredAt,
		Parts:          parts,
		History:        history,
		Version:        o.Version,
	}
}

// BudgetResponse represents a budget in API responses
type BudgetResponse struct {
	ID           uuid.UUID       `json:"id"`
	Number       string          `json:"number"`
	OrderID      uuid.UUID       `json:"order_id"`
	Description  string          `json:"description"`
	ServiceValue decimal.Decimal `json:"service_value"`
	PartsValue   decimal.Decimal `json:"parts_value"`
	Total        decimal.Decimal `json:"total"`
	ValidUntil   time.Time       `json:"valid_until"`
	Status       string          `json:"status"`
	DecidedAt    *time.Time      `json:"decided_at,omitempty"`
	DecisionNote string          `json:"decision_note,omitempty"`
}

// ToBudgetResponse converts a domain budget to a response
func ToBudgetResponse(b *servicedesk.Budget) BudgetResponse {
	return BudgetResponse{
		ID:           b.ID,
		Number:       b.Number,
		OrderID:      b.OrderID,
		Description:  b.Description,
		ServiceValue: b.ServiceValue,
		PartsValue:   b.PartsValue,
		Total:        b.Total,
		ValidUntil:   b.ValidUntil,
		Status:       string(b.Status),
		DecidedAt:    b.DecidedAt,
		DecisionNote: b.DecisionNote,
	}
}
