// file: internal/services/interface.go
package services

import (
	"context"

	"rekaloka/internal/leveling"
	"rekaloka/internal/models"
	"rekaloka/internal/repositories"
)

// ===============================
// CORE SERVICE INTERFACES
// ===============================

// AuthService handles registration, verification and login
type AuthService interface {
	Register(ctx context.Context, req *RegisterRequest) (*RegisterResponse, error)
	Verify(ctx context.Context, req *VerifyRequest) error
	Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error)
}

// ProfileService exposes a player's own account and progression
type ProfileService interface {
	GetProfile(ctx context.Context, userID string) (*ProfileResponse, error)
	GetExpLevel(ctx context.Context, userID string) (*ExpLevelResponse, error)
	GetCheckInHistory(ctx context.Context, userID string) ([]*models.CheckInHistoryItem, error)
	UpdateProfile(ctx context.Context, userID string, req *UpdateProfileRequest) (*models.User, error)
	ChangePassword(ctx context.Context, userID string, req *ChangePasswordRequest) error
}

// ProvinceService manages provinces behind the read-through cache
type ProvinceService interface {
	List(ctx context.Context) ([]*models.Province, error)
	Get(ctx context.Context, id string) (*models.Province, error)
	Create(ctx context.Context, req *CreateProvinceRequest) (*models.Province, error)
	Update(ctx context.Context, id string, req *UpdateProvinceRequest) (*models.Province, error)
	Delete(ctx context.Context, id string) error
}

// HotspotService manages hotspots behind the read-through cache
type HotspotService interface {
	List(ctx context.Context) ([]*models.Hotspot, error)
	Get(ctx context.Context, id string) (*models.Hotspot, error)
	ListByProvince(ctx context.Context, provinceID string) ([]*models.Hotspot, error)
	Create(ctx context.Context, req *CreateHotspotRequest) (*models.Hotspot, error)
	Update(ctx context.Context, id string, req *UpdateHotspotRequest) (*models.Hotspot, error)
	Delete(ctx context.Context, id string) error
}

// CheckInService runs the geofenced, photo-verified check-in
type CheckInService interface {
	CheckIn(ctx context.Context, userID string, req *CheckInRequest) (*CheckInResponse, error)
}

// BadgeService evaluates and lists achievements
type BadgeService interface {
	Catalog() []BadgeDefinition
	EvaluateAndAward(ctx context.Context, userID string) ([]*models.Badge, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Badge, error)
}

// LeaderboardService ranks players by exp
type LeaderboardService interface {
	Top(ctx context.Context, limit int) ([]*models.LeaderboardEntry, error)
}

// LocationService guesses the province a coordinate lies in
type LocationService interface {
	DetectProvince(ctx context.Context, lat, long float64) (*DetectProvinceResponse, error)
}

// UploadService stores user-supplied media
type UploadService interface {
	Upload(ctx context.Context, req *UploadRequest) (*UploadResponse, error)
}

// AIService generates illustrative images
type AIService interface {
	GenerateImage(ctx context.Context, req *GenerateImageRequest) (*GenerateImageResponse, error)
}

// EmailService delivers account emails
type EmailService interface {
	SendVerificationCode(ctx context.Context, email, username, code string) error
}

// ===============================
// COLLABORATORS
// ===============================

// LandmarkVerifier decides whether a photo shows the named landmark
type LandmarkVerifier interface {
	VerifyLandmark(ctx context.Context, imageBase64, hotspotName string) (bool, error)
}

// ImageGenerator renders a prompt into an image data URL
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) (string, error)
}

// ReverseGeocoder resolves coordinates to a raw state name
type ReverseGeocoder interface {
	ReverseState(ctx context.Context, lat, lon float64) (string, error)
}

// Transactor runs fn with repositories bound to one transaction
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(tx *repositories.Collection) error) error
}

// LevelCalculator is the progression curve shared by check-in rewards and
// profile display
type LevelCalculator interface {
	Level(totalExp int64) int
	Progress(totalExp int64) leveling.Progress
}
