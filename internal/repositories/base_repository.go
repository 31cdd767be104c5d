package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"rekaloka/internal/database"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"
)

// Querier is the subset of *sql.DB and *sql.Tx the repositories need, so the
// same repository code runs inside and outside a transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

const (
	slowQueryThreshold    = 100 * time.Millisecond
	slowQueryRowThreshold = 50 * time.Millisecond
)

// BaseRepository provides common database operations with query logging
type BaseRepository struct {
	q      Querier
	logger *zap.Logger
}

// NewBaseRepository creates a base repository over the manager's pool
func NewBaseRepository(db *database.Manager, logger *zap.Logger) *BaseRepository {
	return newBaseRepository(db.DB(), logger)
}

func newBaseRepository(q Querier, logger *zap.Logger) *BaseRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BaseRepository{q: q, logger: logger}
}

// ===============================
// CORE DATABASE OPERATIONS
// ===============================

// ExecContext executes a statement with slow and failed query logging
func (r *BaseRepository) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	start := time.Now()
	result, err := r.q.ExecContext(ctx, query, args...)

	if duration := time.Since(start); duration > slowQueryThreshold {
		r.logger.Warn("Slow query detected",
			zap.String("query", truncateQuery(query)),
			zap.Duration("duration", duration),
		)
	}

	if err != nil {
		r.logger.Error("Query execution failed",
			zap.String("query", truncateQuery(query)),
			zap.Error(err),
		)
	}

	return result, err
}

// QueryContext executes a query that returns rows
func (r *BaseRepository) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	start := time.Now()
	rows, err := r.q.QueryContext(ctx, query, args...)

	if duration := time.Since(start); duration > slowQueryThreshold {
		r.logger.Warn("Slow query detected",
			zap.String("query", truncateQuery(query)),
			zap.Duration("duration", duration),
		)
	}

	if err != nil {
		r.logger.Error("Query execution failed",
			zap.String("query", truncateQuery(query)),
			zap.Error(err),
		)
	}

	return rows, err
}

// QueryRowContext executes a query that returns a single row
func (r *BaseRepository) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	start := time.Now()
	row := r.q.QueryRowContext(ctx, query, args...)

	if duration := time.Since(start); duration > slowQueryRowThreshold {
		r.logger.Warn("Slow single-row query detected",
			zap.String("query", truncateQuery(query)),
			zap.Duration("duration", duration),
		)
	}

	return row
}

// ===============================
// UTILITY METHODS
// ===============================

// ensureID assigns a fresh UUID when id is empty
func ensureID(id *string) error {
	if *id != "" {
		return nil
	}
	v, err := uuid.NewV4()
	if err != nil {
		return fmt.Errorf("failed to generate id: %w", err)
	}
	*id = v.String()
	return nil
}

// requireAffected turns a zero-row UPDATE or DELETE into ErrNotFound
func requireAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// truncateQuery truncates long queries for logging
func truncateQuery(query string) string {
	const maxLength = 200
	if len(query) <= maxLength {
		return query
	}
	return query[:maxLength] + "..."
}

// GetLogger returns the logger instance
func (r *BaseRepository) GetLogger() *zap.Logger {
	return r.logger
}
