package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// CommonSortFields contains fields common to most entities
var CommonSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
}

// ProductSortFields contains allowed sort fields for products
var ProductSortFields = map[string]bool{
	"id":               true,
	"created_at":       true,
	"updated_at":       true,
	"code":             true,
	"name":             true,
	"sale_price":       true,
	"cost_price":       true,
	"on_hand_quantity": true,
	"status":           true,
}

// ServiceItemSortFields contains allowed sort fields for service items
var ServiceItemSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"code":       true,
	"name":       true,
	"price":      true,
}

// PartnerSortFields contains allowed sort fields for customers and suppliers
var PartnerSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"code":       true,
	"name":       true,
	"document":   true,
}

// MovementSortFields contains allowed sort fields for stock movements
var MovementSortFields = map[string]bool{
	"occurred_at": true,
	"sequence":    true,
	"kind":        true,
	"quantity":    true,
}

// DocumentSortFields contains allowed sort fields for numbered documents
var DocumentSortFields = map[string]bool{
	"id":          true,
	"created_at":  true,
	"updated_at":  true,
	"number":      true,
	"status":      true,
	"grand_total": true,
}

// SaleSortFields contains allowed sort fields for sales
var SaleSortFields = map[string]bool{
	"created_at":    true,
	"number":        true,
	"status":        true,
	"sold_at":       true,
	"grand_total":   true,
	"customer_name": true,
}

// ServiceOrderSortFields contains allowed sort fields for service orders
var ServiceOrderSortFields = map[string]bool{
	"created_at":    true,
	"number":        true,
	"status":        true,
	"opened_at":     true,
	"completed_at":  true,
	"grand_total":   true,
	"customer_name": true,
}

// EntrySortFields contains allowed sort fields for receivables and payables
var EntrySortFields = map[string]bool{
	"created_at":        true,
	"number":            true,
	"status":            true,
	"due_date":          true,
	"paid_date":         true,
	"original_amount":   true,
	"counterparty_name": true,
}

// DrawerSortFields contains allowed sort fields for drawer sessions
var DrawerSortFields = map[string]bool{
	"opened_at":       true,
	"closed_at":       true,
	"register_number": true,
	"status":          true,
}

// PaymentMethodSortFields contains allowed sort fields for payment methods
var PaymentMethodSortFields = map[string]bool{
	"created_at": true,
	"name":       true,
	"type":       true,
}
