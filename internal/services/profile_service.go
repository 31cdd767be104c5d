// file: internal/services/profile_service.go
package services

import (
	"context"

	"rekaloka/internal/models"
	"rekaloka/internal/repositories"
	"rekaloka/internal/validation"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// profileService implements ProfileService
type profileService struct {
	users      repositories.UserRepository
	checkIns   repositories.CheckInRepository
	levels     LevelCalculator
	bcryptCost int
	logger     *zap.Logger
}

// NewProfileService creates a profile service
func NewProfileService(
	users repositories.UserRepository,
	checkIns repositories.CheckInRepository,
	levels LevelCalculator,
	bcryptCost int,
	logger *zap.Logger,
) ProfileService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &profileService{
		users:      users,
		checkIns:   checkIns,
		levels:     levels,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// GetProfile returns the account with its level progress
func (s *profileService) GetProfile(ctx context.Context, userID string) (*ProfileResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, storeError(err, "user", userID, "failed to load profile")
	}

	progress := s.levels.Progress(user.Exp)
	user.Level = progress.CurrentLevel
	return &ProfileResponse{User: user, Progress: progress}, nil
}

// GetExpLevel returns only the progression numbers
func (s *profileService) GetExpLevel(ctx context.Context, userID string) (*ExpLevelResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, storeError(err, "user", userID, "failed to load profile")
	}

	progress := s.levels.Progress(user.Exp)
	return &ExpLevelResponse{
		Exp:      user.Exp,
		Level:    progress.CurrentLevel,
		Progress: progress,
	}, nil
}

// GetCheckInHistory lists the user's check-ins, newest first
func (s *profileService) GetCheckInHistory(ctx context.Context, userID string) ([]*models.CheckInHistoryItem, error) {
	history, err := s.checkIns.History(ctx, userID)
	if err != nil {
		return nil, NewInternalError("failed to load check-in history").WithCause(err)
	}
	if history == nil {
		history = []*models.CheckInHistoryItem{}
	}
	return history, nil
}

// UpdateProfile changes the username
func (s *profileService) UpdateProfile(ctx context.Context, userID string, req *UpdateProfileRequest) (*models.User, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid profile", err)
	}

	if err := s.users.UpdateUsername(ctx, userID, req.Username); err != nil {
		if repositories.IsDuplicateKey(err) {
			return nil, EntityAlreadyExistsError("user", "username", req.Username)
		}
		return nil, storeError(err, "user", userID, "failed to update profile")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, storeError(err, "user", userID, "failed to load profile")
	}

	s.logger.Info("Profile updated", zap.String("user_id", userID))
	return user, nil
}

// ChangePassword replaces the password after checking the current one
func (s *profileService) ChangePassword(ctx context.Context, userID string, req *ChangePasswordRequest) error {
	if err := validation.ValidateStruct(req); err != nil {
		return NewValidationError("invalid password change", err)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return storeError(err, "user", userID, "failed to load user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
		return NewValidationError("current password is incorrect", nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.bcryptCost)
	if err != nil {
		return NewInternalError("failed to hash password").WithCause(err)
	}

	if err := s.users.UpdatePassword(ctx, userID, string(hash)); err != nil {
		return storeError(err, "user", userID, "failed to update password")
	}

	s.logger.Info("Password changed", zap.String("user_id", userID))
	return nil
}
