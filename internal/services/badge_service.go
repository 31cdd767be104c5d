// file: internal/services/badge_service.go
package services

import (
	"context"

	"rekaloka/internal/models"
	"rekaloka/internal/repositories"

	"go.uber.org/zap"
	"golang.org/x/exp/slices"
)

// BadgeDefinition describes one achievement of the catalog. A badge unlocks
// when every non-zero threshold is met.
type BadgeDefinition struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IconURL     string `json:"iconUrl"`
	Condition   string `json:"condition"`
	MinCheckIns int    `json:"-"`
	MinLevel    int    `json:"-"`
}

// Qualifies reports whether stats satisfy the badge thresholds
func (d BadgeDefinition) Qualifies(stats models.UserStats) bool {
	if d.MinCheckIns > 0 && stats.CheckInCount < d.MinCheckIns {
		return false
	}
	if d.MinLevel > 0 && stats.Level < d.MinLevel {
		return false
	}
	return d.MinCheckIns > 0 || d.MinLevel > 0
}

// BadgeCatalog is the fixed achievement list, in display order. Names are
// unique; a user can own each at most once.
var BadgeCatalog = []BadgeDefinition{
	{
		Name:        "Turis Biasa",
		Description: "Langkah pertama! Selamat datang di dunia pelestarian budaya.",
		IconURL:     "https://cdn-icons-png.flaticon.com/512/744/744546.png",
		Condition:   "Check-in pertama kali",
		MinCheckIns: 1,
	},
	{
		Name:        "Penjelajah Budaya",
		Description: "Mantap! Jiwa petualang lo mulai kelihatan. Udah 5 tempat nih!",
		IconURL:     "https://cdn-icons-png.flaticon.com/512/949/949603.png",
		Condition:   "Melakukan 5x check-in valid",
		MinCheckIns: 5,
	},
	{
		Name:        "Pakar Warisan",
		Description: "Level 5! Pengetahuan budaya lo udah diakui warga lokal.",
		IconURL:     "https://cdn-icons-png.flaticon.com/512/2451/2451066.png",
		Condition:   "Mencapai Level 5",
		MinLevel:    5,
	},
	{
		Name:        "Maestro Budaya",
		Description: "LEGEND! Dedikasi lo buat budaya gak ada tandingannya.",
		IconURL:     "https://cdn-icons-png.flaticon.com/512/5405/5405929.png",
		Condition:   "Mencapai Level 10",
		MinLevel:    10,
	},
}

// EvaluateBadges returns the catalog entries stats qualify for that are not
// already owned, in catalog order. It performs no I/O.
func EvaluateBadges(catalog []BadgeDefinition, stats models.UserStats) []BadgeDefinition {
	var earned []BadgeDefinition
	for _, def := range catalog {
		if slices.Contains(stats.OwnedBadges, def.Name) {
			continue
		}
		if def.Qualifies(stats) {
			earned = append(earned, def)
		}
	}
	return earned
}

// badgeService implements BadgeService
type badgeService struct {
	users    repositories.UserRepository
	checkIns repositories.CheckInRepository
	badges   repositories.BadgeRepository
	levels   LevelCalculator
	catalog  []BadgeDefinition
	logger   *zap.Logger
}

// NewBadgeService creates a badge service over the default catalog
func NewBadgeService(
	users repositories.UserRepository,
	checkIns repositories.CheckInRepository,
	badges repositories.BadgeRepository,
	levels LevelCalculator,
	logger *zap.Logger,
) BadgeService {
	return &badgeService{
		users:    users,
		checkIns: checkIns,
		badges:   badges,
		levels:   levels,
		catalog:  BadgeCatalog,
		logger:   logger,
	}
}

// Catalog returns a copy of the badge catalog
func (s *badgeService) Catalog() []BadgeDefinition {
	return slices.Clone(s.catalog)
}

// EvaluateAndAward recomputes the user's stats from committed state and
// awards every newly qualified badge. Badges the store reports as already
// owned are skipped, so concurrent evaluations award each badge once.
func (s *badgeService) EvaluateAndAward(ctx context.Context, userID string) ([]*models.Badge, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, storeError(err, "user", userID, "failed to load user")
	}

	count, err := s.checkIns.CountValidated(ctx, userID)
	if err != nil {
		return nil, NewInternalError("failed to count check-ins").WithCause(err)
	}

	owned, err := s.badges.NamesByUser(ctx, userID)
	if err != nil {
		return nil, NewInternalError("failed to load badges").WithCause(err)
	}

	stats := models.UserStats{
		UserID:       userID,
		CheckInCount: count,
		Level:        s.levels.Level(user.Exp),
		OwnedBadges:  owned,
	}

	var awarded []*models.Badge
	for _, def := range EvaluateBadges(s.catalog, stats) {
		badge := &models.Badge{
			UserID:      userID,
			Name:        def.Name,
			Description: def.Description,
			IconURL:     def.IconURL,
		}
		ok, err := s.badges.Award(ctx, badge)
		if err != nil {
			return awarded, NewInternalError("failed to award badge").WithCause(err)
		}
		if !ok {
			continue
		}
		awarded = append(awarded, badge)
		s.logger.Info("Badge awarded",
			zap.String("user_id", userID),
			zap.String("badge", def.Name))
	}

	return awarded, nil
}

// ListByUser returns the user's badges, newest first
func (s *badgeService) ListByUser(ctx context.Context, userID string) ([]*models.Badge, error) {
	badges, err := s.badges.ListByUser(ctx, userID)
	if err != nil {
		return nil, NewInternalError("failed to list badges").WithCause(err)
	}
	if badges == nil {
		badges = []*models.Badge{}
	}
	return badges, nil
}
