// file: internal/services/leaderboard_service.go
package services

import (
	"context"
	"time"

	"rekaloka/internal/cache"
	"rekaloka/internal/models"
	"rekaloka/internal/repositories"

	"go.uber.org/zap"
)

// Leaderboard paging
const (
	DefaultLeaderboardLimit = 10
	MaxLeaderboardLimit     = 100
	DefaultLeaderboardTTL   = 10 * time.Minute
)

// leaderboardService implements LeaderboardService
type leaderboardService struct {
	users  repositories.UserRepository
	levels LevelCalculator
	store  *cache.Store
	ttl    time.Duration
	logger *zap.Logger
}

// NewLeaderboardService creates a cached leaderboard
func NewLeaderboardService(
	users repositories.UserRepository,
	levels LevelCalculator,
	store *cache.Store,
	ttl time.Duration,
	logger *zap.Logger,
) LeaderboardService {
	if ttl <= 0 {
		ttl = DefaultLeaderboardTTL
	}
	return &leaderboardService{
		users:  users,
		levels: levels,
		store:  store,
		ttl:    ttl,
		logger: logger,
	}
}

// NormalizeLeaderboardLimit clamps limit to [1, MaxLeaderboardLimit],
// defaulting non-positive values
func NormalizeLeaderboardLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLeaderboardLimit
	case limit > MaxLeaderboardLimit:
		return MaxLeaderboardLimit
	default:
		return limit
	}
}

// Top returns the highest-exp players. Levels are derived from exp rather
// than read back from storage.
func (s *leaderboardService) Top(ctx context.Context, limit int) ([]*models.LeaderboardEntry, error) {
	limit = NormalizeLeaderboardLimit(limit)

	entries, err := cache.GetOrLoad(ctx, s.store, cache.LeaderboardKey(limit), s.ttl, func(ctx context.Context) ([]*models.LeaderboardEntry, error) {
		entries, err := s.users.Leaderboard(ctx, limit)
		if err != nil {
			return nil, err
		}
		if entries == nil {
			entries = []*models.LeaderboardEntry{}
		}
		for i, e := range entries {
			e.Rank = i + 1
			e.Level = s.levels.Level(e.Exp)
		}
		return entries, nil
	})
	if err != nil {
		return nil, NewInternalError("failed to load leaderboard").WithCause(err)
	}
	return entries, nil
}
