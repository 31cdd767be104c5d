// file: internal/models/models.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ===============================
// CORE ENTITIES
// ===============================

// Roles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is a player account. Level is stored for convenience only; it is
// always recomputed from Exp by the leveling engine before being written.
type User struct {
	ID               string    `json:"id" db:"id"`
	Email            string    `json:"email" db:"email"`
	Username         string    `json:"username" db:"username"`
	PasswordHash     string    `json:"-" db:"password_hash"`
	IsVerified       bool      `json:"isVerified" db:"is_verified"`
	VerificationCode *string   `json:"-" db:"verification_code"`
	Exp              int64     `json:"exp" db:"exp"`
	Level            int       `json:"level" db:"level"`
	Role             string    `json:"role" db:"role"`
	CreatedAt        time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time `json:"updatedAt" db:"updated_at"`
}

// IsAdmin reports whether the user has the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Province groups hotspots and carries regional media and facts
type Province struct {
	ID            string     `json:"id" db:"id"`
	Name          string     `json:"name" db:"name"`
	Description   string     `json:"description" db:"description"`
	Latitude      *float64   `json:"latitude,omitempty" db:"latitude"`
	Longitude     *float64   `json:"longitude,omitempty" db:"longitude"`
	LogoURL       *string    `json:"logoUrl,omitempty" db:"logo_url"`
	BackgroundURL *string    `json:"backgroundUrl,omitempty" db:"background_url"`
	BacksoundURL  *string    `json:"backsoundUrl,omitempty" db:"backsound_url"`
	IconicInfo    IconicInfo `json:"iconicInfo,omitempty" db:"iconic_info"`
	CreatedAt     time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time  `json:"updatedAt" db:"updated_at"`

	// Computed/joined fields (not in DB)
	HotspotCount int        `json:"hotspotCount" db:"-"`
	Hotspots     []*Hotspot `json:"hotspots,omitempty" db:"-"`
}

// Hotspot is a cultural point of interest and the geofencing anchor for check-ins
type Hotspot struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Latitude    float64   `json:"latitude" db:"latitude"`
	Longitude   float64   `json:"longitude" db:"longitude"`
	Type        string    `json:"type" db:"type"`
	ProvinceID  string    `json:"provinceId" db:"province_id"`
	ImageURL    *string   `json:"imageUrl,omitempty" db:"image_url"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// CheckIn records a user's proven visit to a hotspot
type CheckIn struct {
	ID          string    `json:"id" db:"id"`
	UserID      string    `json:"userId" db:"user_id"`
	HotspotID   string    `json:"hotspotId" db:"hotspot_id"`
	ImageURL    string    `json:"imageUrl" db:"image_url"`
	IsValidated bool      `json:"isValidated" db:"is_validated"`
	Timestamp   time.Time `json:"timestamp" db:"timestamp"`
}

// CheckInHistoryItem is a check-in joined with a summary of its hotspot
type CheckInHistoryItem struct {
	CheckIn
	Hotspot HotspotSummary `json:"hotspot"`
}

// HotspotSummary is the subset of hotspot fields shown in history
type HotspotSummary struct {
	Name       string  `json:"name"`
	Type       string  `json:"type"`
	ProvinceID string  `json:"provinceId"`
	ImageURL   *string `json:"imageUrl,omitempty"`
}

// Badge is an awarded achievement. Badges are never revoked.
type Badge struct {
	ID          string    `json:"id" db:"id"`
	UserID      string    `json:"userId" db:"user_id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	IconURL     string    `json:"iconUrl" db:"icon_url"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

// LeaderboardEntry is one ranked row of the leaderboard
type LeaderboardEntry struct {
	Rank     int    `json:"rank"`
	ID       string `json:"id"`
	Username string `json:"username"`
	Exp      int64  `json:"exp"`
	Level    int    `json:"level"`
}

// UserStats is the input of badge evaluation
type UserStats struct {
	UserID       string   `json:"userId"`
	CheckInCount int      `json:"checkInCount"`
	Level        int      `json:"level"`
	OwnedBadges  []string `json:"ownedBadges"`
}

// ===============================
// ICONIC INFO
// ===============================

// IconicInfo holds free-form regional facts keyed by topic
type IconicInfo map[string]interface{}

// Merge overlays patch on a copy of i: new keys are added, existing keys
// overwritten and untouched keys preserved. Neither input is modified.
func (i IconicInfo) Merge(patch IconicInfo) IconicInfo {
	out := make(IconicInfo, len(i)+len(patch))
	for k, v := range i {
		out[k] = v
	}
	for k, v := range patch {
		out[k] = v
	}
	return out
}

// Value implements driver.Valuer for jsonb columns
func (i IconicInfo) Value() (driver.Value, error) {
	if i == nil {
		return nil, nil
	}
	data, err := json.Marshal(i)
	if err != nil {
		return nil, fmt.Errorf("failed to encode iconic info: %w", err)
	}
	return data, nil
}

// Scan implements sql.Scanner for jsonb columns
func (i *IconicInfo) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*i = nil
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into IconicInfo", src)
	}

	if len(data) == 0 {
		*i = nil
		return nil
	}

	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("failed to decode iconic info: %w", err)
	}
	*i = m
	return nil
}
