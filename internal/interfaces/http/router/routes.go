package router

import (
	"github.com/erp/retail/internal/interfaces/http/handler"
)

// Handlers groups every API handler mounted under /api/v1
type Handlers struct {
	Catalog      *handler.CatalogHandler
	Partner      *handler.PartnerHandler
	Inventory    *handler.InventoryHandler
	Drawer       *handler.DrawerHandler
	Sale         *handler.SaleHandler
	Purchase     *handler.PurchaseHandler
	ServiceOrder *handler.ServiceOrderHandler
	Finance      *handler.FinanceHandler
	Report       *handler.ReportHandler
}

// Groups returns the domain groups for every non-nil handler
func (h Handlers) Groups() []RouteRegistrar {
	var groups []RouteRegistrar
	if h.Catalog != nil {
		groups = append(groups, CatalogRoutes(h.Catalog))
	}
	if h.Partner != nil {
		groups = append(groups, PartnerRoutes(h.Partner))
	}
	if h.Inventory != nil {
		groups = append(groups, InventoryRoutes(h.Inventory))
	}
	if h.Drawer != nil {
		groups = append(groups, CashierRoutes(h.Drawer))
	}
	if h.Sale != nil || h.Purchase != nil {
		groups = append(groups, TradeRoutes(h.Sale, h.Purchase))
	}
	if h.ServiceOrder != nil {
		groups = append(groups, ServiceDeskRoutes(h.ServiceOrder))
	}
	if h.Finance != nil {
		groups = append(groups, FinanceRoutes(h.Finance))
	}
	if h.Report != nil {
		groups = append(groups, ReportRoutes(h.Report))
	}
	return groups
}

// CatalogRoutes mounts products and service items
func CatalogRoutes(h *handler.CatalogHandler) *DomainGroup {
	g := NewDomainGroup("catalog", "/catalog")

	products := g.Group("products", "/products")
	products.GET("", h.ListProducts).
		POST("", h.CreateProduct).
		GET("/code/:code", h.GetProductByCode).
		GET("/:id", h.GetProduct).
		PUT("/:id", h.UpdateProduct).
		POST("/:id/activate", h.ActivateProduct).
		POST("/:id/deactivate", h.DeactivateProduct)

	services := g.Group("services", "/services")
	services.GET("", h.ListServiceItems).
		POST("", h.CreateServiceItem).
		GET("/:id", h.GetServiceItem).
		PUT("/:id", h.UpdateServiceItem).
		DELETE("/:id", h.DeactivateServiceItem)
	return g
}

// PartnerRoutes mounts customers and suppliers
func PartnerRoutes(h *handler.PartnerHandler) *DomainGroup {
	g := NewDomainGroup("partner", "/partner")

	customers := g.Group("customers", "/customers")
	customers.GET("", h.ListCustomers).
		POST("", h.CreateCustomer).
		GET("/walk-in", h.WalkInCustomer).
		GET("/:id", h.GetCustomer).
		PUT("/:id", h.UpdateCustomer).
		DELETE("/:id", h.DeactivateCustomer)

	suppliers := g.Group("suppliers", "/suppliers")
	suppliers.GET("", h.ListSuppliers).
		POST("", h.CreateSupplier).
		GET("/:id", h.GetSupplier).
		PUT("/:id", h.UpdateSupplier).
		DELETE("/:id", h.DeactivateSupplier)
	return g
}

// InventoryRoutes mounts the stock ledger and count sessions
func InventoryRoutes(h *handler.InventoryHandler) *DomainGroup {
	g := NewDomainGroup("inventory", "/inventory")
	g.POST("/movements", h.ApplyMovement).
		GET("/below-minimum", h.ListBelowMinimum).
		GET("/batches/expiring", h.ListExpiringBatches).
		POST("/reconcile", h.ReconcileAll).
		GET("/stock/:id", h.GetStock).
		GET("/stock/:id/movements", h.ListMovements).
		POST("/stock/:id/reconcile", h.Reconcile)

	counts := g.Group("counts", "/counts")
	counts.GET("", h.ListCounts).
		POST("", h.OpenCount).
		GET("/:id", h.GetCount).
		POST("/:id/lines", h.RecordCount).
		POST("/:id/finish", h.FinishCount).
		POST("/:id/cancel", h.CancelCount)
	return g
}

// CashierRoutes mounts drawer sessions and their statistics
func CashierRoutes(h *handler.DrawerHandler) *DomainGroup {
	g := NewDomainGroup("cashier", "/cashier")
	g.GET("/statistics", h.Statistics)

	drawers := g.Group("drawers", "/drawers")
	drawers.GET("", h.List).
		POST("", h.Open).
		GET("/current", h.Current).
		GET("/:id", h.Get).
		POST("/:id/close", h.Close).
		GET("/:id/movements", h.ListMovements).
		POST("/:id/movements", h.RecordMovement)
	return g
}

// TradeRoutes mounts checkout, sales and purchase orders
func TradeRoutes(sales *handler.SaleHandler, purchases *handler.PurchaseHandler) *DomainGroup {
	g := NewDomainGroup("trade", "/trade")

	if sales != nil {
		g.POST("/checkout", sales.Checkout)
		s := g.Group("sales", "/sales")
		s.GET("", sales.List).
			POST("", sales.Create).
			GET("/number/:number", sales.GetByNumber).
			GET("/:id", sales.Get).
			POST("/:id/lines", sales.AddLine).
			PUT("/:id/lines/:line_id", sales.UpdateLine).
			DELETE("/:id/lines/:line_id", sales.RemoveLine).
			PUT("/:id/adjustments", sales.SetAdjustments).
			POST("/:id/approve", sales.Approve).
			POST("/:id/invoice", sales.Invoice).
			POST("/:id/deliver", sales.Deliver).
			POST("/:id/cancel", sales.Cancel)
	}

	if purchases != nil {
		p := g.Group("purchase-orders", "/purchase-orders")
		p.GET("", purchases.List).
			POST("", purchases.Create).
			GET("/:id", purchases.Get).
			POST("/:id/lines", purchases.AddLine).
			DELETE("/:id/lines/:line_id", purchases.RemoveLine).
			POST("/:id/approve", purchases.Approve).
			POST("/:id/dispatch", purchases.Dispatch).
			POST("/:id/receive", purchases.Receive).
			POST("/:id/cancel", purchases.Cancel)
	}
	return g
}

// ServiceDeskRoutes mounts repair orders and budgets
func ServiceDeskRoutes(h *handler.ServiceOrderHandler) *DomainGroup {
	g := NewDomainGroup("servicedesk", "/servicedesk")

	orders := g.Group("orders", "/orders")
	orders.GET("", h.List).
		POST("", h.Open).
		GET("/:id", h.Get).
		PUT("/:id/technician", h.AssignTechnician).
		PUT("/:id/diagnosis", h.SetDiagnosis).
		PUT("/:id/values", h.SetValues).
		POST("/:id/parts", h.AddPart).
		PUT("/:id/parts/:part_id", h.UpdatePart).
		DELETE("/:id/parts/:part_id", h.RemovePart).
		POST("/:id/parts/:part_id/apply", h.ApplyPart).
		POST("/:id/status", h.Transition).
		GET("/:id/budgets", h.ListBudgets).
		POST("/:id/budgets", h.CreateBudget).
		POST("/:id/payments", h.RegisterPayment)

	budgets := g.Group("budgets", "/budgets")
	budgets.POST("/:id/approve", h.ApproveBudget).
		POST("/:id/reject", h.RejectBudget)
	return g
}

// FinanceRoutes mounts receivables, payables, payment methods and the
// DRE chart
func FinanceRoutes(h *handler.FinanceHandler) *DomainGroup {
	g := NewDomainGroup("finance", "/finance")
	g.GET("/dre-categories", h.ListDRECategories)

	receivables := g.Group("receivables", "/receivables")
	receivables.GET("", h.ListReceivables).
		POST("", h.CreateReceivable).
		POST("/refresh-overdue", h.RefreshOverdueReceivables).
		GET("/:id", h.GetReceivable).
		POST("/:id/settle", h.SettleReceivable).
		POST("/:id/cancel", h.CancelReceivable)

	payables := g.Group("payables", "/payables")
	payables.GET("", h.ListPayables).
		POST("", h.CreatePayable).
		POST("/refresh-overdue", h.RefreshOverduePayables).
		GET("/:id", h.GetPayable).
		POST("/:id/pay", h.PayPayable).
		POST("/:id/cancel", h.CancelPayable)

	methods := g.Group("payment-methods", "/payment-methods")
	methods.GET("", h.ListPaymentMethods).
		POST("", h.CreatePaymentMethod).
		GET("/:id", h.GetPaymentMethod).
		GET("/:id/fee", h.PreviewFee).
		PUT("/:id/schedule", h.UpdateFeeSchedule).
		DELETE("/:id", h.DeactivatePaymentMethod)
	return g
}

// ReportRoutes mounts the income statement
func ReportRoutes(h *handler.ReportHandler) *DomainGroup {
	g := NewDomainGroup("reports", "/reports")
	g.GET("/dre", h.DRE)
	return g
}
