package persistence

import (
	"context"
	"fmt"

	"github.com/erp/retail/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DocumentSequence holds the last number issued for one document series of a tenant
type DocumentSequence struct {
	TenantID uuid.UUID `gorm:"type:uuid;primaryKey"`
	Kind     string    `gorm:"type:varchar(10);primaryKey"`
	Value    int64     `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (DocumentSequence) TableName() string {
	return "document_sequences"
}

// GormDocumentNumberer issues document numbers from a row-locked counter.
// Used inside a transaction the number is released if the transaction rolls back,
// so committed documents have no gaps.
type GormDocumentNumberer struct {
	db *gorm.DB
}

// NewGormDocumentNumberer creates a new GormDocumentNumberer
func NewGormDocumentNumberer(db *gorm.DB) *GormDocumentNumberer {
	return &GormDocumentNumberer{db: db}
}

// Next returns the next number of the series, formatted with its prefix
func (n *GormDocumentNumberer) Next(ctx context.Context, tenantID uuid.UUID, kind shared.DocumentKind) (string, error) {
	var value int64
	err := n.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// make sure the row exists so there is something to lock
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&DocumentSequence{TenantID: tenantID, Kind: string(kind)}).Error; err != nil {
			return err
		}

		var seq DocumentSequence
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("tenant_id = ? AND kind = ?", tenantID, string(kind)).
			First(&seq).Error; err != nil {
			return err
		}
		value = seq.Value + 1
		return tx.Model(&DocumentSequence{}).
			Where("tenant_id = ? AND kind = ?", tenantID, string(kind)).
			Update("value", value).Error
	})
	if err != nil {
		return "", fmt.Errorf("next %s number: %w", kind, err)
	}
	return shared.FormatDocumentNumber(kind, value), nil
}

// Current returns the last number issued for the series, zero when none was
func (n *GormDocumentNumberer) Current(ctx context.Context, tenantID uuid.UUID, kind shared.DocumentKind) (int64, error) {
	var seq DocumentSequence
	err := n.db.WithContext(ctx).
		Where("tenant_id = ? AND kind = ?", tenantID, string(kind)).
		Limit(1).Find(&seq).Error
	if err != nil {
		return 0, fmt.Errorf("read %s sequence: %w", kind, err)
	}
	return seq.Value, nil
}

// Advance raises the stored counter to value. It never lowers it.
func (n *GormDocumentNumberer) Advance(ctx context.Context, tenantID uuid.UUID, kind shared.DocumentKind, value int64) error {
	err := n.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "tenant_id"}, {Name: "kind"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"value": gorm.Expr("CASE WHEN document_sequences.value < excluded.value THEN excluded.value ELSE document_sequences.value END"),
		}),
	}).Create(&DocumentSequence{TenantID: tenantID, Kind: string(kind), Value: value}).Error
	if err != nil {
		return fmt.Errorf("advance %s sequence: %w", kind, err)
	}
	return nil
}

var _ shared.DocumentNumberer = (*GormDocumentNumberer)(nil)
