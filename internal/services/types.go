// file: internal/services/types.go
package services

import (
	"rekaloka/internal/leveling"
	"rekaloka/internal/models"
)

// ===============================
// AUTH TYPES
// ===============================

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type RegisterResponse struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
}

type VerifyRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresIn int64        `json:"expiresIn"`
	User      *models.User `json:"user"`
}

// ===============================
// PROFILE TYPES
// ===============================

type ProfileResponse struct {
	*models.User
	Progress leveling.Progress `json:"progress"`
}

type ExpLevelResponse struct {
	Exp      int64             `json:"exp"`
	Level    int               `json:"level"`
	Progress leveling.Progress `json:"progress"`
}

type UpdateProfileRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6,max=72"`
}

// ===============================
// GEO CONTENT TYPES
// ===============================

type CreateProvinceRequest struct {
	Name          string            `json:"name" validate:"required,max=100"`
	Description   string            `json:"description"`
	Latitude      *float64          `json:"latitude" validate:"omitempty,latitude"`
	Longitude     *float64          `json:"longitude" validate:"omitempty,longitude"`
	LogoURL       *string           `json:"logoUrl" validate:"omitempty,url"`
	BackgroundURL *string           `json:"backgroundUrl" validate:"omitempty,url"`
	BacksoundURL  *string           `json:"backsoundUrl" validate:"omitempty,url"`
	IconicInfo    models.IconicInfo `json:"iconicInfo"`
}

// UpdateProvinceRequest is a partial update. IconicInfo is merged key-wise
// into the stored value.
type UpdateProvinceRequest struct {
	Name          *string           `json:"name" validate:"omitempty,min=1,max=100"`
	Description   *string           `json:"description"`
	Latitude      *float64          `json:"latitude" validate:"omitempty,latitude"`
	Longitude     *float64          `json:"longitude" validate:"omitempty,longitude"`
	LogoURL       *string           `json:"logoUrl" validate:"omitempty,url"`
	BackgroundURL *string           `json:"backgroundUrl" validate:"omitempty,url"`
	BacksoundURL  *string           `json:"backsoundUrl" validate:"omitempty,url"`
	IconicInfo    models.IconicInfo `json:"iconicInfo"`
}

type CreateHotspotRequest struct {
	Name        string   `json:"name" validate:"required,max=150"`
	Description string   `json:"description"`
	Latitude    *float64 `json:"latitude" validate:"required,latitude"`
	Longitude   *float64 `json:"longitude" validate:"required,longitude"`
	Type        string   `json:"type" validate:"required,max=50"`
	ProvinceID  string   `json:"provinceId" validate:"required"`
	ImageURL    *string  `json:"imageUrl" validate:"omitempty,url"`
}

type UpdateHotspotRequest struct {
	Name        *string  `json:"name" validate:"omitempty,min=1,max=150"`
	Description *string  `json:"description"`
	Latitude    *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude   *float64 `json:"longitude" validate:"omitempty,longitude"`
	Type        *string  `json:"type" validate:"omitempty,min=1,max=50"`
	ProvinceID  *string  `json:"provinceId" validate:"omitempty,min=1"`
	ImageURL    *string  `json:"imageUrl" validate:"omitempty,url"`
}

// ===============================
// GAME TYPES
// ===============================

type CheckInRequest struct {
	HotspotID   string   `json:"hotspotId" validate:"required"`
	UserLat     *float64 `json:"userLat" validate:"required,latitude"`
	UserLong    *float64 `json:"userLong" validate:"required,longitude"`
	ImageBase64 string   `json:"imageBase64" validate:"required"`
}

type CheckInResponse struct {
	Message     string   `json:"message"`
	Reward      int64    `json:"reward"`
	RewardLabel string   `json:"rewardLabel"`
	ImageURL    string   `json:"imageUrl"`
	NewBadges   []string `json:"newBadges"`
	Exp         int64    `json:"exp"`
	Level       int      `json:"level"`
}

// ===============================
// LOCATION / MEDIA TYPES
// ===============================

type DetectProvinceResponse struct {
	Found       bool             `json:"found"`
	Offline     bool             `json:"offline,omitempty"`
	Message     string           `json:"message"`
	DetectedRaw string           `json:"detectedRaw,omitempty"`
	Province    *models.Province `json:"province,omitempty"`
}

// UploadRequest carries a base64 payload. Bare base64 is treated as an
// image unless MediaType is "audio".
type UploadRequest struct {
	Data      string `json:"imageIcon" validate:"required"`
	Folder    string `json:"folder" validate:"omitempty,max=100"`
	MediaType string `json:"mediaType" validate:"omitempty,oneof=image audio"`
}

type UploadResponse struct {
	URL    string `json:"url"`
	Folder string `json:"folder"`
}

type GenerateImageRequest struct {
	Prompt string `json:"prompt" validate:"required,max=2000"`
}

type GenerateImageResponse struct {
	ImageURL string `json:"imageUrl"`
}
