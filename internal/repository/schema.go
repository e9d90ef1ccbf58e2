package repository

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"lifesync/pkg/metrics"
	"lifesync/pkg/otel"
)

//go:embed schema.sql
var schemaSQL string

// EnsureSchema creates the habit and task tables when missing. Safe to run repeatedly.
func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	err := observe(ctx, "migrate", "schema", func(ctx context.Context) error {
		_, err := db.Exec(ctx, schemaSQL)
		return err
	})
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// observe traces fn and records its duration under operation/table.
func observe(ctx context.Context, operation, table string, fn func(context.Context) error) error {
	start := time.Now()
	err := otel.Query(ctx, operation, table, fn)
	metrics.RecordDBQueryDuration(operation, table, time.Since(start))
	return err
}
