package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"rekaloka/internal/database"
	"rekaloka/internal/models"

	"go.uber.org/zap"
)

type badgeRepository struct {
	*BaseRepository
}

// NewBadgeRepository creates a new badge repository
func NewBadgeRepository(db *database.Manager, logger *zap.Logger) BadgeRepository {
	return &badgeRepository{BaseRepository: NewBaseRepository(db, logger)}
}

func (r *badgeRepository) Award(ctx context.Context, badge *models.Badge) (bool, error) {
	if err := ensureID(&badge.ID); err != nil {
		return false, err
	}

	err := r.QueryRowContext(ctx, `
		INSERT INTO badges (id, user_id, name, description, icon_url)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, name) DO NOTHING
		RETURNING created_at`,
		badge.ID, badge.UserID, badge.Name, badge.Description, badge.IconURL,
	).Scan(&badge.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to award badge: %w", mapError(err))
	}

	r.GetLogger().Info("Badge awarded",
		zap.String("user_id", badge.UserID),
		zap.String("badge", badge.Name))
	return true, nil
}

// ListByUser returns owned badges newest first
func (r *badgeRepository) ListByUser(ctx context.Context, userID string) ([]*models.Badge, error) {
	rows, err := r.QueryContext(ctx, `
		SELECT id, user_id, name, description, icon_url, created_at
		FROM badges
		WHERE user_id = $1
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list badges: %w", err)
	}
	defer rows.Close()

	badges := make([]*models.Badge, 0)
	for rows.Next() {
		var b models.Badge
		if err := rows.Scan(&b.ID, &b.UserID, &b.Name, &b.Description, &b.IconURL, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan badge: %w", err)
		}
		badges = append(badges, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate badges: %w", err)
	}
	return badges, nil
}

func (r *badgeRepository) NamesByUser(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.QueryContext(ctx, `SELECT name FROM badges WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list badge names: %w", err)
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan badge name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate badge names: %w", err)
	}
	return names, nil
}
