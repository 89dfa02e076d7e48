package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type queryStartKey struct{}

// DBTracing registers otelgorm on a connection and flags slow statements on
// their spans and in the log
type DBTracing struct {
	slowThreshold time.Duration
	logger        *zap.Logger
}

// NewDBTracing creates the plugin wrapper
func NewDBTracing(slowThreshold time.Duration, logger *zap.Logger) *DBTracing {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DBTracing{slowThreshold: slowThreshold, logger: logger}
}

// Register installs otelgorm without query variables plus the timing callbacks
func (p *DBTracing) Register(db *gorm.DB, dbSystem string) error {
	if err := db.Use(otelgorm.NewPlugin(
		otelgorm.WithDBName(dbSystem),
		otelgorm.WithoutQueryVariables(),
	)); err != nil {
		return err
	}

	cb := db.Callback()
	for _, err := range []error{
		cb.Create().Before("gorm:create").Register("retail:before_create", p.before),
		cb.Query().Before("gorm:query").Register("retail:before_query", p.before),
		cb.Update().Before("gorm:update").Register("retail:before_update", p.before),
		cb.Delete().Before("gorm:delete").Register("retail:before_delete", p.before),
		cb.Row().Before("gorm:row").Register("retail:before_row", p.before),
		cb.Raw().Before("gorm:raw").Register("retail:before_raw", p.before),
		cb.Create().After("gorm:create").Register("retail:after_create", p.after),
		cb.Query().After("gorm:query").Register("retail:after_query", p.after),
		cb.Update().After("gorm:update").Register("retail:after_update", p.after),
		cb.Delete().After("gorm:delete").Register("retail:after_delete", p.after),
		cb.Row().After("gorm:row").Register("retail:after_row", p.after),
		cb.Raw().After("gorm:raw").Register("retail:after_raw", p.after),
	} {
		if err != nil {
			return err
		}
	}

	p.logger.Info("Database tracing enabled",
		zap.String("db_system", dbSystem),
		zap.Duration("slow_query_threshold", p.slowThreshold),
	)
	return nil
}

func (p *DBTracing) before(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, queryStartKey{}, time.Now())
	}
}

func (p *DBTracing) after(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)

	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) && span.IsRecording() {
		span.RecordError(db.Error)
		span.SetStatus(codes.Error, db.Error.Error())
	}

	start, ok := ctx.Value(queryStartKey{}).(time.Time)
	if !ok || p.slowThreshold <= 0 {
		return
	}
	if elapsed := time.Since(start); elapsed > p.slowThreshold {
		if span.IsRecording() {
			span.SetAttributes(
				attribute.Bool("db.slow_query", true),
				attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
			)
		}
		p.logger.Warn("slow query",
			zap.String("table", db.Statement.Table),
			zap.Duration("elapsed", elapsed),
			zap.Int64("rows", db.Statement.RowsAffected),
		)
	}
}
