package inventory

import (
	"time"

	"github.com/erp/retail/internal/domain/catalog"
	"github.com/erp/retail/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CountSessionStatus represents the status of a physical stock count
type CountSessionStatus string

const (
	CountSessionOpen      CountSessionStatus = "open"
	CountSessionFinished  CountSessionStatus = "finished"
	CountSessionCancelled CountSessionStatus = "cancelled"
)

// String returns the string representation of CountSessionStatus
func (s CountSessionStatus) String() string {
	return string(s)
}

// CountLine is one product counted in a session
type CountLine struct {
	shared.BaseEntity
	SessionID       uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_count_line_session_product,priority:1"`
	ProductID       uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_count_line_session_product,priority:2"`
	ProductCode     string          `gorm:"type:varchar(50)"`
	SystemQuantity  decimal.Decimal `gorm:"type:decimal(18,3);not null"`
	CountedQuantity decimal.Decimal `gorm:"type:decimal(18,3);not null"`
	Difference      decimal.Decimal `gorm:"type:decimal(18,3);not null"`
	Note            string          `gorm:"type:varchar(255)"`
}

// TableName returns the table name for GORM
func (CountLine) TableName() string {
	return "count_session_lines"
}

// CountSession is a physical stock count. Finishing it sets each counted product's stock.
type CountSession struct {
	shared.TenantAggregateRoot
	Number     string             `gorm:"type:varchar(30);not null;index:idx_count_session_number"`
	Status     CountSessionStatus `gorm:"type:varchar(20);not null;index"`
	Note       string             `gorm:"type:varchar(255)"`
	FinishedAt *time.Time
	Lines      []CountLine `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (CountSession) TableName() string {
	return "count_sessions"
}

// NewCountSession opens a new count session
func NewCountSession(actor shared.Actor, number, note string) (*CountSession, error) {
	if number == "" {
		return nil, shared.NewValidationError("count session number is required")
	}
	return &CountSession{
		TenantAggregateRoot: shared.NewTenantAggregateRootForActor(actor),
		Number:              number,
		Status:              CountSessionOpen,
		Note:                note,
		Lines:               make([]CountLine, 0),
	}, nil
}

// RecordCount records or replaces the counted quantity for a product.
// The system quantity is snapshotted from the product at the time of counting.
func (s *CountSession) RecordCount(product *catalog.Product, counted decimal.Decimal, note string) error {
	if s.Status != CountSessionOpen {
		return shared.NewTransitionError("count session", s.Status, CountSessionOpen)
	}
	if counted.IsNegative() {
		return shared.NewValidationError("counted quantity cannot be negative")
	}

	for i := range s.Lines {
		if s.Lines[i].ProductID == product.ID {
			s.Lines[i].SystemQuantity = product.OnHandQuantity
			s.Lines[i].CountedQuantity = counted
			s.Lines[i].Difference = counted.Sub(product.OnHandQuantity)
			s.Lines[i].Note = note
			s.Lines[i].Touch()
			s.Touch()
			return nil
		}
	}

	s.Lines = append(s.Lines, CountLine{
		BaseEntity:      shared.NewBaseEntity(),
		SessionID:       s.ID,
		ProductID:       product.ID,
		ProductCode:     product.Code,
		SystemQuantity:  product.OnHandQuantity,
		CountedQuantity: counted,
		Difference:      counted.Sub(product.OnHandQuantity),
		Note:            note,
	})
	s.Touch()
	return nil
}

// Finish closes the session and returns one inventory_count request per counted line
func (s *CountSession) Finish(actor shared.Actor) (map[uuid.UUID]MovementRequest, error) {
	if s.Status != CountSessionOpen {
		return nil, shared.NewTransitionError("count session", s.Status, CountSessionFinished)
	}
	if len(s.Lines) == 0 {
		return nil, shared.NewValidationError("count session has no counted products")
	}

	id := s.ID
	requests := make(map[uuid.UUID]MovementRequest, len(s.Lines))
	for _, line := range s.Lines {
		requests[line.ProductID] = MovementRequest{
			Kind:     MovementInventoryCount,
			Quantity: line.CountedQuantity,
			Document: DocumentRef{Type: DocumentTypeCountSession, ID: &id, Number: s.Number},
			Reason:   line.Note,
		}
	}

	now := time.Now()
	s.Status = CountSessionFinished
	s.FinishedAt = &now
	s.Touch()
	s.AddDomainEvent(&CountSessionFinishedEvent{
		BaseDomainEvent: shared.NewActorDomainEvent(EventTypeCountSessionClosed, AggregateTypeCountSession, s.ID, actor),
		SessionID:       s.ID,
		Number:          s.Number,
		Lines:           len(s.Lines),
	})
	return requests, nil
}

// Cancel discards the session without touching stock
func (s *CountSession) Cancel() error {
	if s.Status != CountSessionOpen {
		return shared.NewTransitionError("count session", s.Status, CountSessionCancelled)
	}
	s.Status = CountSessionCancelled
	s.Touch()
	return nil
}
