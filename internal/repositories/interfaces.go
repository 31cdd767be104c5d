// file: internal/repositories/interfaces.go
package repositories

import (
	"context"

	"rekaloka/internal/models"
)

// ===============================
// CORE REPOSITORY INTERFACES
// ===============================

// UserRepository defines the contract for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	MarkVerified(ctx context.Context, id string) error
	UpdateUsername(ctx context.Context, id, username string) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error

	// Progression. GetExpForUpdate locks the row when run inside a transaction.
	GetExpForUpdate(ctx context.Context, id string) (int64, error)
	UpdateProgress(ctx context.Context, id string, exp int64, level int) error

	Leaderboard(ctx context.Context, limit int) ([]*models.LeaderboardEntry, error)
}

// ProvinceRepository defines the contract for province data operations
type ProvinceRepository interface {
	Create(ctx context.Context, province *models.Province) error
	GetByID(ctx context.Context, id string) (*models.Province, error)
	List(ctx context.Context) ([]*models.Province, error)
	Update(ctx context.Context, province *models.Province) error
	Delete(ctx context.Context, id string) error
}

// HotspotRepository defines the contract for hotspot data operations
type HotspotRepository interface {
	Create(ctx context.Context, hotspot *models.Hotspot) error
	GetByID(ctx context.Context, id string) (*models.Hotspot, error)
	List(ctx context.Context) ([]*models.Hotspot, error)
	ListByProvince(ctx context.Context, provinceID string) ([]*models.Hotspot, error)
	Update(ctx context.Context, hotspot *models.Hotspot) error
	Delete(ctx context.Context, id string) error
}

// CheckInRepository defines the contract for check-in data operations
type CheckInRepository interface {
	// Create returns ErrDuplicateKey when a validated check-in already exists
	// for the same user and hotspot.
	Create(ctx context.Context, checkIn *models.CheckIn) error
	ExistsValidated(ctx context.Context, userID, hotspotID string) (bool, error)
	CountValidated(ctx context.Context, userID string) (int, error)
	History(ctx context.Context, userID string) ([]*models.CheckInHistoryItem, error)
}

// BadgeRepository defines the contract for badge data operations
type BadgeRepository interface {
	// Award inserts the badge unless the user already owns one with the same
	// name. It reports whether a row was written.
	Award(ctx context.Context, badge *models.Badge) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Badge, error)
	NamesByUser(ctx context.Context, userID string) ([]string, error)
}
