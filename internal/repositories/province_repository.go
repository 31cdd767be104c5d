package repositories

import (
	"context"
	"fmt"

	"rekaloka/internal/database"
	"rekaloka/internal/models"

	"go.uber.org/zap"
)

type provinceRepository struct {
	*BaseRepository
}

// NewProvinceRepository creates a new province repository
func NewProvinceRepository(db *database.Manager, logger *zap.Logger) ProvinceRepository {
	return &provinceRepository{BaseRepository: NewBaseRepository(db, logger)}
}

const provinceColumns = `p.id, p.name, p.description, p.latitude, p.longitude,
	p.logo_url, p.background_url, p.backsound_url, p.iconic_info,
	p.created_at, p.updated_at`

func scanProvince(row rowScanner, extra ...interface{}) (*models.Province, error) {
	var p models.Province
	dest := []interface{}{
		&p.ID, &p.Name, &p.Description, &p.Latitude, &p.Longitude,
		&p.LogoURL, &p.BackgroundURL, &p.BacksoundURL, &p.IconicInfo,
		&p.CreatedAt, &p.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *provinceRepository) Create(ctx context.Context, province *models.Province) error {
	if err := ensureID(&province.ID); err != nil {
		return err
	}

	query := `
		INSERT INTO provinces (
			id, name, description, latitude, longitude,
			logo_url, background_url, backsound_url, iconic_info
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`

	err := r.QueryRowContext(ctx, query,
		province.ID, province.Name, province.Description,
		province.Latitude, province.Longitude,
		province.LogoURL, province.BackgroundURL, province.BacksoundURL,
		province.IconicInfo,
	).Scan(&province.CreatedAt, &province.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create province: %w", mapError(err))
	}

	r.GetLogger().Info("Province created",
		zap.String("province_id", province.ID),
		zap.String("name", province.Name))
	return nil
}

func (r *provinceRepository) GetByID(ctx context.Context, id string) (*models.Province, error) {
	province, err := scanProvince(r.QueryRowContext(ctx,
		`SELECT `+provinceColumns+` FROM provinces p WHERE p.id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get province by ID: %w", mapError(err))
	}
	return province, nil
}

// List returns all provinces by name with their hotspot counts
func (r *provinceRepository) List(ctx context.Context) ([]*models.Province, error) {
	rows, err := r.QueryContext(ctx, `
		SELECT `+provinceColumns+`, COUNT(h.id)
		FROM provinces p
		LEFT JOIN hotspots h ON h.province_id = p.id
		GROUP BY p.id
		ORDER BY p.name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list provinces: %w", err)
	}
	defer rows.Close()

	provinces := make([]*models.Province, 0)
	for rows.Next() {
		var count int
		province, err := scanProvince(rows, &count)
		if err != nil {
			return nil, fmt.Errorf("failed to scan province: %w", err)
		}
		province.HotspotCount = count
		provinces = append(provinces, province)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate provinces: %w", err)
	}
	return provinces, nil
}

func (r *provinceRepository) Update(ctx context.Context, province *models.Province) error {
	err := r.QueryRowContext(ctx, `
		UPDATE provinces SET
			name = $2, description = $3, latitude = $4, longitude = $5,
			logo_url = $6, background_url = $7, backsound_url = $8,
			iconic_info = $9, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		province.ID, province.Name, province.Description,
		province.Latitude, province.Longitude,
		province.LogoURL, province.BackgroundURL, province.BacksoundURL,
		province.IconicInfo,
	).Scan(&province.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update province: %w", mapError(err))
	}
	return nil
}

func (r *provinceRepository) Delete(ctx context.Context, id string) error {
	result, err := r.ExecContext(ctx, `DELETE FROM provinces WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete province: %w", mapError(err))
	}
	return requireAffected(result)
}
