package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"rekaloka/internal/database"
	"rekaloka/internal/models"

	"go.uber.org/zap"
)

type hotspotRepository struct {
	*BaseRepository
}

// NewHotspotRepository creates a new hotspot repository
func NewHotspotRepository(db *database.Manager, logger *zap.Logger) HotspotRepository {
	return &hotspotRepository{BaseRepository: NewBaseRepository(db, logger)}
}

const hotspotColumns = `id, name, description, latitude, longitude, type,
	province_id, image_url, created_at, updated_at`

func scanHotspot(row rowScanner) (*models.Hotspot, error) {
	var h models.Hotspot
	err := row.Scan(
		&h.ID, &h.Name, &h.Description, &h.Latitude, &h.Longitude, &h.Type,
		&h.ProvinceID, &h.ImageURL, &h.CreatedAt, &h.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func (r *hotspotRepository) Create(ctx context.Context, hotspot *models.Hotspot) error {
	if err := ensureID(&hotspot.ID); err != nil {
		return err
	}

	err := r.QueryRowContext(ctx, `
		INSERT INTO hotspots (
			id, name, description, latitude, longitude, type, province_id, image_url
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`,
		hotspot.ID, hotspot.Name, hotspot.Description,
		hotspot.Latitude, hotspot.Longitude, hotspot.Type,
		hotspot.ProvinceID, hotspot.ImageURL,
	).Scan(&hotspot.CreatedAt, &hotspot.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create hotspot: %w", mapError(err))
	}

	r.GetLogger().Info("Hotspot created",
		zap.String("hotspot_id", hotspot.ID),
		zap.String("province_id", hotspot.ProvinceID))
	return nil
}

func (r *hotspotRepository) GetByID(ctx context.Context, id string) (*models.Hotspot, error) {
	hotspot, err := scanHotspot(r.QueryRowContext(ctx,
		`SELECT `+hotspotColumns+` FROM hotspots WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get hotspot by ID: %w", mapError(err))
	}
	return hotspot, nil
}

func (r *hotspotRepository) List(ctx context.Context) ([]*models.Hotspot, error) {
	rows, err := r.QueryContext(ctx,
		`SELECT `+hotspotColumns+` FROM hotspots ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list hotspots: %w", err)
	}
	return collectHotspots(rows)
}

func (r *hotspotRepository) ListByProvince(ctx context.Context, provinceID string) ([]*models.Hotspot, error) {
	rows, err := r.QueryContext(ctx,
		`SELECT `+hotspotColumns+` FROM hotspots WHERE province_id = $1 ORDER BY name ASC`, provinceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list hotspots by province: %w", err)
	}
	return collectHotspots(rows)
}

func collectHotspots(rows *sql.Rows) ([]*models.Hotspot, error) {
	defer rows.Close()

	hotspots := make([]*models.Hotspot, 0)
	for rows.Next() {
		hotspot, err := scanHotspot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan hotspot: %w", err)
		}
		hotspots = append(hotspots, hotspot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate hotspots: %w", err)
	}
	return hotspots, nil
}

func (r *hotspotRepository) Update(ctx context.Context, hotspot *models.Hotspot) error {
	err := r.QueryRowContext(ctx, `
		UPDATE hotspots SET
			name = $2, description = $3, latitude = $4, longitude = $5,
			type = $6, province_id = $7, image_url = $8, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		hotspot.ID, hotspot.Name, hotspot.Description,
		hotspot.Latitude, hotspot.Longitude, hotspot.Type,
		hotspot.ProvinceID, hotspot.ImageURL,
	).Scan(&hotspot.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update hotspot: %w", mapError(err))
	}
	return nil
}

func (r *hotspotRepository) Delete(ctx context.Context, id string) error {
	result, err := r.ExecContext(ctx, `DELETE FROM hotspots WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete hotspot: %w", mapError(err))
	}
	return requireAffected(result)
}
