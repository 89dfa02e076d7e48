package shared

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// DocumentKind identifies a numbered document series
type DocumentKind string

const (
	DocumentSale          DocumentKind = "SALE"
	DocumentServiceOrder  DocumentKind = "OS"
	DocumentPurchaseOrder DocumentKind = "PC"
	DocumentBudget        DocumentKind = "ORC"
	DocumentReceivable    DocumentKind = "CR"
	DocumentPayable       DocumentKind = "CP"
	DocumentCountSession  DocumentKind = "INV"
)

// DocumentNumberer supplies unique, monotonically assigned document numbers per tenant
type DocumentNumberer interface {
	Next(ctx context.Context, tenantID uuid.UUID, kind DocumentKind) (string, error)
}

// FormatDocumentNumber renders a sequence value as PREFIX + 6 digits
func FormatDocumentNumber(kind DocumentKind, seq int64) string {
	return fmt.Sprintf("%s%06d", kind, seq)
}
