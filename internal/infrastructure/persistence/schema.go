package persistence

import (
	"fmt"

	"github.com/erp/retail/internal/domain/cashier"
	"github.com/erp/retail/internal/domain/catalog"
	"github.com/erp/retail/internal/domain/finance"
	"github.com/erp/retail/internal/domain/inventory"
	"github.com/erp/retail/internal/domain/partner"
	"github.com/erp/retail/internal/domain/payment"
	"github.com/erp/retail/internal/domain/servicedesk"
	"github.com/erp/retail/internal/domain/trade"
	"gorm.io/gorm"
)

// Models lists every persisted struct in dependency order
func Models() []any {
	return []any{
		&DocumentSequence{},
		&finance.DRECategory{},
		&partner.Customer{},
		&partner.Supplier{},
		&payment.Method{},
		&catalog.Product{},
		&catalog.ServiceItem{},
		&inventory.StockMovement{},
		&inventory.StockBatch{},
		&inventory.CountSession{},
		&inventory.CountLine{},
		&cashier.DrawerSession{},
		&cashier.Movement{},
		&trade.Sale{},
		&trade.SaleItem{},
		&trade.PurchaseOrder{},
		&trade.PurchaseOrderLine{},
		&servicedesk.ServiceOrder{},
		&servicedesk.Part{},
		&servicedesk.HistoryEntry{},
		&servicedesk.Budget{},
		&finance.Receivable{},
		&finance.Payable{},
		&finance.CashFlowEntry{},
	}
}

// tenantUniqueIndexes are business keys unique within a tenant. They live here
// because the tenant column comes from an embedded struct shared by every table.
var tenantUniqueIndexes = []struct {
	table  string
	column string
}{
	{"products", "code"},
	{"service_items", "code"},
	{"customers", "code"},
	{"suppliers", "code"},
	{"payment_methods", "name"},
	{"sales", "number"},
	{"purchase_orders", "number"},
	{"service_orders", "number"},
	{"service_order_budgets", "number"},
	{"count_sessions", "number"},
	{"receivables", "number"},
	{"payables", "number"},
}

// IndexStatements returns the DDL for indexes GORM tags cannot express
func IndexStatements() []string {
	stmts := make([]string, 0, len(tenantUniqueIndexes)+1)
	for _, idx := range tenantUniqueIndexes {
		stmts = append(stmts, fmt.Sprintf(
			"CREATE UNIQUE INDEX IF NOT EXISTS uq_%s_tenant_%s ON %s (tenant_id, %s)",
			idx.table, idx.column, idx.table, idx.column,
		))
	}
	// an operator holds at most one open drawer
	stmts = append(stmts,
		"CREATE UNIQUE INDEX IF NOT EXISTS uq_drawer_sessions_open_operator ON drawer_sessions (tenant_id, operator_id) WHERE status = 'open'",
	)
	return stmts
}

// AutoMigrate creates or updates the schema from the domain structs.
// Production databases are migrated with the SQL files under migrations/;
// this is used by tests and by the sqlite driver.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	for _, stmt := range IndexStatements() {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}
