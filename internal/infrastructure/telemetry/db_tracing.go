package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/marketplace/backend/internal/infrastructure/config"
)

// DBTracingConfig holds configuration for database tracing
type DBTracingConfig struct {
	Enabled         bool
	LogFullSQL      bool // include bound variables in spans
	SlowQueryThresh time.Duration
	DBSystem        string
}

// DBTracingConfigFrom derives database tracing settings
func DBTracingConfigFrom(tel config.TelemetryConfig, driver string) DBTracingConfig {
	cfg := DBTracingConfig{
		Enabled:         tel.Enabled && tel.DBTraceEnabled,
		LogFullSQL:      tel.DBLogFullSQL,
		SlowQueryThresh: tel.DBSlowQueryThresh,
		DBSystem:        "postgresql",
	}
	if driver == "sqlite" {
		cfg.DBSystem = "sqlite"
	}
	if cfg.SlowQueryThresh <= 0 {
		cfg.SlowQueryThresh = 200 * time.Millisecond
	}
	return cfg
}

type queryStartKey struct{}

// RegisterDBTracing installs the otelgorm plugin plus a callback that flags
// slow statements on their span
func RegisterDBTracing(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if !cfg.Enabled {
		return nil
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(cfg.DBSystem)}
	if !cfg.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	before := func(tx *gorm.DB) {
		if tx.Statement.Context != nil {
			tx.Statement.Context = context.WithValue(tx.Statement.Context, queryStartKey{}, time.Now())
		}
	}
	after := func(tx *gorm.DB) { markSlowQuery(tx, cfg.SlowQueryThresh) }

	cb := db.Callback()
	registrations := []struct {
		name string
		err  error
	}{
		{"create", cb.Create().Before("gorm:create").Register("slow_query:before_create", before)},
		{"create", cb.Create().After("gorm:create").Register("slow_query:after_create", after)},
		{"query", cb.Query().Before("gorm:query").Register("slow_query:before_query", before)},
		{"query", cb.Query().After("gorm:query").Register("slow_query:after_query", after)},
		{"update", cb.Update().Before("gorm:update").Register("slow_query:before_update", before)},
		{"update", cb.Update().After("gorm:update").Register("slow_query:after_update", after)},
		{"delete", cb.Delete().Before("gorm:delete").Register("slow_query:before_delete", before)},
		{"delete", cb.Delete().After("gorm:delete").Register("slow_query:after_delete", after)},
		{"row", cb.Row().Before("gorm:row").Register("slow_query:before_row", before)},
		{"row", cb.Row().After("gorm:row").Register("slow_query:after_row", after)},
		{"raw", cb.Raw().Before("gorm:raw").Register("slow_query:before_raw", before)},
		{"raw", cb.Raw().After("gorm:raw").Register("slow_query:after_raw", after)},
	}
	for _, r := range registrations {
		if r.err != nil {
			return fmt.Errorf("register %s callback: %w", r.name, r.err)
		}
	}

	logger.Info("Database tracing enabled",
		zap.String("db_system", cfg.DBSystem),
		zap.Duration("slow_query_threshold", cfg.SlowQueryThresh),
	)
	return nil
}

func markSlowQuery(tx *gorm.DB, threshold time.Duration) {
	ctx := tx.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	if tx.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", tx.Statement.Table))
	}
	if tx.Error != nil && !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
		RecordError(span, tx.Error)
	}
	if start, ok := ctx.Value(queryStartKey{}).(time.Time); ok {
		if elapsed := time.Since(start); elapsed > threshold {
			span.SetAttributes(
				attribute.Bool("db.slow_query", true),
				attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
			)
		}
	}
}
