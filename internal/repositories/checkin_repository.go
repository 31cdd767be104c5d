package repositories

import (
	"context"
	"fmt"

	"rekaloka/internal/database"
	"rekaloka/internal/models"

	"go.uber.org/zap"
)

type checkInRepository struct {
	*BaseRepository
}

// NewCheckInRepository creates a new check-in repository
func NewCheckInRepository(db *database.Manager, logger *zap.Logger) CheckInRepository {
	return &checkInRepository{BaseRepository: NewBaseRepository(db, logger)}
}

func (r *checkInRepository) Create(ctx context.Context, checkIn *models.CheckIn) error {
	if err := ensureID(&checkIn.ID); err != nil {
		return err
	}

	err := r.QueryRowContext(ctx, `
		INSERT INTO checkins (id, user_id, hotspot_id, image_url, is_validated)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING timestamp`,
		checkIn.ID, checkIn.UserID, checkIn.HotspotID, checkIn.ImageURL, checkIn.IsValidated,
	).Scan(&checkIn.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to create check-in: %w", mapError(err))
	}
	return nil
}

func (r *checkInRepository) ExistsValidated(ctx context.Context, userID, hotspotID string) (bool, error) {
	var exists bool
	err := r.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM checkins
			WHERE user_id = $1 AND hotspot_id = $2 AND is_validated
		)`, userID, hotspotID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check existing check-in: %w", err)
	}
	return exists, nil
}

func (r *checkInRepository) CountValidated(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM checkins WHERE user_id = $1 AND is_validated`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count check-ins: %w", err)
	}
	return count, nil
}

// History lists validated check-ins newest first with a summary of each hotspot
func (r *checkInRepository) History(ctx context.Context, userID string) ([]*models.CheckInHistoryItem, error) {
	rows, err := r.QueryContext(ctx, `
		SELECT c.id, c.user_id, c.hotspot_id, c.image_url, c.is_validated, c.timestamp,
			h.name, h.type, h.province_id, h.image_url
		FROM checkins c
		JOIN hotspots h ON h.id = c.hotspot_id
		WHERE c.user_id = $1 AND c.is_validated
		ORDER BY c.timestamp DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get check-in history: %w", err)
	}
	defer rows.Close()

	items := make([]*models.CheckInHistoryItem, 0)
	for rows.Next() {
		var item models.CheckInHistoryItem
		if err := rows.Scan(
			&item.ID, &item.UserID, &item.HotspotID, &item.ImageURL, &item.IsValidated, &item.Timestamp,
			&item.Hotspot.Name, &item.Hotspot.Type, &item.Hotspot.ProvinceID, &item.Hotspot.ImageURL,
		); err != nil {
			return nil, fmt.Errorf("failed to scan check-in: %w", err)
		}
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate check-ins: %w", err)
	}

	r.GetLogger().Debug("Loaded check-in history",
		zap.String("user_id", userID),
		zap.Int("count", len(items)))
	return items, nil
}
