// file: internal/repositories/collection.go
package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"rekaloka/internal/database"

	"go.uber.org/zap"
)

// Collection holds all repository instances for dependency injection
type Collection struct {
	User     UserRepository
	Province ProvinceRepository
	Hotspot  HotspotRepository
	CheckIn  CheckInRepository
	Badge    BadgeRepository

	db     *database.Manager
	logger *zap.Logger
}

// NewCollection creates a new repository collection over the manager's pool
func NewCollection(db *database.Manager, logger *zap.Logger) (*Collection, error) {
	if db == nil {
		return nil, fmt.Errorf("database manager is required")
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	collection := newCollection(db.DB(), logger)
	collection.db = db

	logger.Info("Repository collection initialized successfully")
	return collection, nil
}

func newCollection(q Querier, logger *zap.Logger) *Collection {
	return &Collection{
		User:     &userRepository{BaseRepository: newBaseRepository(q, logger)},
		Province: &provinceRepository{BaseRepository: newBaseRepository(q, logger)},
		Hotspot:  &hotspotRepository{BaseRepository: newBaseRepository(q, logger)},
		CheckIn:  &checkInRepository{BaseRepository: newBaseRepository(q, logger)},
		Badge:    &badgeRepository{BaseRepository: newBaseRepository(q, logger)},
		logger:   logger,
	}
}

// ===============================
// TRANSACTION MANAGEMENT
// ===============================

// WithTransaction runs fn with a collection whose repositories all share one
// transaction. The transaction commits only if fn returns nil; any error or
// panic rolls it back.
func (c *Collection) WithTransaction(ctx context.Context, fn func(tx *Collection) error) (err error) {
	if c.db == nil {
		return fmt.Errorf("transactions require a database manager")
	}

	tx, err := c.db.DB().BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	txCollection := newCollection(tx, c.logger)
	txCollection.db = c.db

	if err := fn(txCollection); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			c.logger.Error("Failed to rollback transaction",
				zap.Error(rbErr),
				zap.NamedError("cause", err),
			)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
