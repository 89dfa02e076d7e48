package trade

import (
	"time"

	"github.com/erp/retail/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ==================== Line DTOs ====================

// LineInput describes a product or service line. UnitPrice left empty uses the catalog price.
type LineInput struct {
	ProductID *uuid.UUID       `json:"product_id"`
	ServiceID *uuid.UUID       `json:"service_id"`
	Quantity  decimal.Decimal  `json:"quantity" binding:"required"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
	Discount  decimal.Decimal  `json:"discount"`
	Surcharge decimal.Decimal  `json:"surcharge"`
}

// LineValuesInput changes the values of an existing line
type LineValuesInput struct {
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Discount  decimal.Decimal `json:"discount"`
	Surcharge decimal.Decimal `json:"surcharge"`
}

// Values converts the input to domain line values
func (in LineValuesInput) Values() trade.LineValues {
	return trade.LineValues{
		Quantity:  in.Quantity,
		UnitPrice: in.UnitPrice,
		Discount:  in.Discount,
		Surcharge: in.Surcharge,
	}
}

// LineResponse represents a document line in API responses
type LineResponse struct {
	ID          uuid.UUID       `json:"id"`
	Kind        string          `json:"kind"`
	ProductID   *uuid.UUID      `json:"product_id,omitempty"`
	ServiceID   *uuid.UUID      `json:"service_id,omitempty"`
	Code        string          `json:"code"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Discount    decimal.Decimal `json:"discount"`
	Surcharge   decimal.Decimal `json:"surcharge"`
	Total       decimal.Decimal `json:"total"`
}

// ToLineResponse converts a domain line to a response
func ToLineResponse(id uuid.UUID, l *trade.LineItem) LineResponse {
	return LineResponse{
		ID:          id,
		Kind:        string(l.Kind),
		ProductID:   l.ProductID,
		ServiceID:   l.ServiceID,
		Code:        l.Code,
		Description: l.Description,
		Quantity:    l.Quantity,
		UnitPrice:   l.UnitPrice,
		Discount:    l.Discount,
		Surcharge:   l.Surcharge,
		Total:       l.Total,
	}
}

// ==================== Sale DTOs ====================

// CreateSaleRequest represents a request to create a sale or quote.
// A missing customer resolves to the walk-in customer.
type CreateSaleRequest struct {
	CustomerID *uuid.UUID      `json:"customer_id"`
	Kind       string          `json:"kind" binding:"omitempty,oneof=quote sale"`
	Lines      []LineInput     `json:"lines" binding:"dive"`
	Discount   decimal.Decimal `json:"discount"`
	Surcharge  decimal.Decimal `json:"surcharge"`
	Freight    decimal.Decimal `json:"freight"`
}

// AdjustmentsRequest sets the header discount, surcharge and freight of a sale
type AdjustmentsRequest struct {
	Discount  decimal.Decimal `json:"discount"`
	Surcharge decimal.Decimal `json:"surcharge"`
	Freight   decimal.Decimal `json:"freight"`
}

// InvoiceSaleRequest represents a request to invoice a sale
type InvoiceSaleRequest struct {
	DueDate *time.Time `json:"due_date"`
}

// CancelRequest carries a cancellation reason
type CancelRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=255"`
}

// SaleListFilter represents filter options for a sale listing
type SaleListFilter struct {
	Page       int        `form:"page" binding:"omitempty,min=1"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string     `form:"order_by" binding:"omitempty,oneof=number sold_at grand_total created_at"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	Search     string     `form:"search"`
	Status     string     `form:"status"`
	CustomerID *uuid.UUID `form:"customer_id"`
}

// SaleResponse represents a sale in API responses
type SaleResponse struct {
	ID              uuid.UUID       `json:"id"`
	Number          string          `json:"number"`
	Kind            string          `json:"kind"`
	Status          string          `json:"status"`
	CustomerID      uuid.UUID       `json:"customer_id"`
	CustomerName    string          `json:"customer_name"`
	SellerID        uuid.UUID       `json:"seller_id"`
	SellerName      string          `json:"seller_name"`
	Lines           []LineResponse  `json:"lines,omitempty"`
	ItemsTotal      decimal.Decimal `json:"items_total"`
	Discount        decimal.Decimal `json:"discount"`
	Surcharge       decimal.Decimal `json:"surcharge"`
	Freight         decimal.Decimal `json:"freight"`
	GrandTotal      decimal.Decimal `json:"grand_total"`
	CostTotal       decimal.Decimal `json:"cost_total"`
	PaymentMethodID *uuid.UUID      `json:"payment_method_id,omitempty"`
	DrawerSessionID *uuid.UUID      `json:"drawer_session_id,omitempty"`
	SoldAt          time.Time       `json:"sold_at"`
	InvoicedAt      *time.Time      `json:"invoiced_at,omitempty"`
	DeliveredAt     *time.Time      `json:"delivered_at,omitempty"`
	CompletedAt     *time.Time      `json:"completed_at,omitempty"`
	CancelledAt     *time.Time      `json:"cancelled_at,omitempty"`
	CancelReason    string          `json:"cancel_reason,omitempty"`
	Version         int             `json:"version"`
}

// ToSaleResponse converts a domain sale to a response
func ToSaleResponse(s *trade.Sale) SaleResponse {
	lines := make([]LineResponse, 0, len(s.Items))
	for i := range s.Items {
		lines = append(lines, ToLineResponse(s.Items[i].ID, &s.Items[i].LineItem))
	}
	return SaleResponse{
		ID:              s.ID,
		Number:          s.Number,
		Kind:            string(s.Kind),
		Status:          string(s.Status),
		CustomerID:      s.CustomerID,
		CustomerName:    s.CustomerName,
		SellerID:        s.SellerID,
		SellerName:      s.SellerName,
		Lines:           lines,
		ItemsTotal:      s.ItemsTotal,
		Discount:        s.Discount,
		Surcharge:       s.Surcharge,
		Freight:         s.Freight,
		GrandTotal:      s.GrandTotal,
		CostTotal:       s.CostTotal,
		PaymentMethodID: s.PaymentMethodID,
		DrawerSessionID: s.DrawerSessionID,
		SoldAt:          s.SoldAt,
		InvoicedAt:      s.InvoicedAt,
		DeliveredAt:     s.DeliveredAt,
		CompletedAt:     s.CompletedAt,
		CancelledAt:     s.CancelledAt,
		CancelReason:    s.CancelReason,
		Version:         s.Version,
	}
}

// ==================== Checkout DTOs ====================

// CheckoutRequest is a point-of-sale sale paid at the counter.
// A missing payment method means cash; Tendered only matters for cash.
type CheckoutRequest struct {
	DrawerSessionID uuid.UUID       `json:"drawer_session_id" binding:"required"`
	CustomerID      *uuid.UUID      `json:"customer_id"`
	PaymentMethodID *uuid.UUID      `json:"payment_method_id"`
	Installments    int             `json:"installments" binding:"omitempty,min=1,max=12"`
	Lines           []LineInput     `json:"lines" binding:"required,min=1,dive"`
	Discount        decimal.Decimal `json:"discount"`
	Tendered        decimal.Decimal `json:"tendered"`
}

// Receipt is the outcome of a checkout
type Receipt struct {
	SaleID       uuid.UUID       `json:"sale_id"`
	Number       string          `json:"number"`
	Total        decimal.Decimal `json:"total"`
	Tendered     decimal.Decimal `json:"tendered"`
	Change       decimal.Decimal `json:"change"`
	Fee          decimal.Decimal `json:"fee"`
	Net          decimal.Decimal `json:"net"`
	ReceivableID uuid.UUID       `json:"receivable_id"`
	Installments int             `json:"installments"`
}

// ==================== Purchase Order DTOs ====================

// PurchaseLineInput represents a product line of a purchase order
type PurchaseLineInput struct {
	ProductID uuid.UUID        `json:"product_id" binding:"required"`
	Quantity  decimal.Decimal  `json:"quantity" binding:"required"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
	Discount  decimal.Decimal  `json:"discount"`
}

// CreatePurchaseOrderRequest represents a request to create a purchase order
type CreatePurchaseOrderRequest struct {
	SupplierID uuid.UUID           `json:"supplier_id" binding:"required"`
	Lines      []PurchaseLineInput `json:"lines" binding:"dive"`
	Freight    decimal.Decimal     `json:"freight"`
	Discount   decimal.Decimal     `json:"discount"`
}

// DispatchPurchaseOrderRequest marks an order as in transit
type DispatchPurchaseOrderRequest struct {
	ExpectedDelivery *time.Time `json:"expected_delivery"`
}

// ReceiveLineInput is a quantity received for one product
type ReceiveLineInput struct {
	ProductID  uuid.UUID       `json:"product_id" binding:"required"`
	Quantity   decimal.Decimal `json:"quantity" binding:"required"`
	UnitCost   decimal.Decimal `json:"unit_cost"`
	LotCode    string          `json:"lot_code" binding:"max=50"`
	ExpiryDate *time.Time      `json:"expiry_date"`
}

// ReceiveGoodsRequest represents a request to receive goods against an order
type ReceiveGoodsRequest struct {
	Lines []ReceiveLineInput `json:"lines" binding:"required,min=1,dive"`
}

// PurchaseLineResponse represents a purchase order line in API responses
type PurchaseLineResponse struct {
	ID               uuid.UUID       `json:"id"`
	ProductID        uuid.UUID       `json:"product_id"`
	ProductCode      string          `json:"product_code"`
	Description      string          `json:"description"`
	OrderedQuantity  decimal.Decimal `json:"ordered_quantity"`
	ReceivedQuantity decimal.Decimal `json:"received_quantity"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	Discount         decimal.Decimal `json:"discount"`
	Total            decimal.Decimal `json:"total"`
}

// PurchaseOrderResponse represents a purchase order in API responses
type PurchaseOrderResponse struct {
	ID               uuid.UUID              `json:"id"`
	Number           string                 `json:"number"`
	Status           string                 `json:"status"`
	SupplierID       uuid.UUID              `json:"supplier_id"`
	SupplierName     string                 `json:"supplier_name"`
	Lines            []PurchaseLineResponse `json:"lines,omitempty"`
	ItemsTotal       decimal.Decimal        `json:"items_total"`
	Freight          decimal.Decimal        `json:"freight"`
	Discount         decimal.Decimal        `json:"discount"`
	GrandTotal       decimal.Decimal        `json:"grand_total"`
	ExpectedDelivery *time.Time             `json:"expected_delivery,omitempty"`
	ReceivedAt       *time.Time             `json:"received_at,omitempty"`
	PayableID        *uuid.UUID             `json:"payable_id,omitempty"`
	CancelReason     string                 `json:"cancel_reason,omitempty"`
	Version          int                    `json:"version"`
}

// ToPurchaseOrderResponse converts a domain purchase order to a response
func ToPurchaseOrderResponse(o *trade.PurchaseOrder) PurchaseOrderResponse {
	lines := make([]PurchaseLineResponse, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, PurchaseLineResponse{
			ID:               l.ID,
			ProductID:        l.ProductID,
			ProductCode:      l.ProductCode,
			Description:      l.Description,
			OrderedQuantity:  l.OrderedQuantity,
			ReceivedQuantity: l.ReceivedQuantity,
			UnitPrice:        l.UnitPrice,
			Discount:         l.Discount,
			Total:            l.Total,
		})
	}
	return PurchaseOrderResponse{
		ID:               o.ID,
		Number:           o.Number,
		Status:           string(o.Status),
		SupplierID:       o.SupplierID,
		SupplierName:     o.SupplierName,
		Lines:            lines,
		ItemsTotal:       o.ItemsTotal,
		Freight:          o.Freight,
		Discount:         o.Discount,
		GrandTotal:       o.GrandTotal,
		ExpectedDelivery: o.ExpectedDelivery,
		ReceivedAt:       o.ReceivedAt,
		PayableID:        o.PayableID,
		CancelReason:     o.CancelReason,
		Version:          o.Version,
	}
}
