// file: internal/services/checkin_service.go
package services

import (
	"context"
	"fmt"
	"math"
	"net/http"

	"rekaloka/internal/cache"
	"rekaloka/internal/events"
	"rekaloka/internal/geo"
	"rekaloka/internal/models"
	"rekaloka/internal/repositories"
	"rekaloka/internal/storage"
	"rekaloka/internal/validation"

	"go.uber.org/zap"
)

// Check-in rejection codes
const (
	CodeGeofenceExceeded   = "GEOFENCE_EXCEEDED"
	CodeDuplicateCheckIn   = "DUPLICATE_CHECKIN"
	CodeVerificationFailed = "VERIFICATION_FAILED"
)

// CheckInConfig tunes the check-in rules
type CheckInConfig struct {
	GeofenceRadiusMeters float64
	ExpReward            int64
	ProofFolder          string
	// VisionFailOpen accepts proofs when the verifier cannot be reached.
	// Off by default: an unavailable verifier rejects the check-in.
	VisionFailOpen bool
}

// DefaultCheckInConfig returns the standard check-in rules
func DefaultCheckInConfig() CheckInConfig {
	return CheckInConfig{
		GeofenceRadiusMeters: 100,
		ExpReward:            100,
		ProofFolder:          "rekaloka_proofs",
	}
}

// checkInService implements CheckInService
type checkInService struct {
	hotspots repositories.HotspotRepository
	checkIns repositories.CheckInRepository
	tx       Transactor
	verifier LandmarkVerifier
	storage  storage.ObjectStorage
	badges   BadgeService
	levels   LevelCalculator
	store    *cache.Store
	events   events.EventBus
	config   CheckInConfig
	logger   *zap.Logger
}

// NewCheckInService creates the check-in orchestrator
func NewCheckInService(
	hotspots repositories.HotspotRepository,
	checkIns repositories.CheckInRepository,
	tx Transactor,
	verifier LandmarkVerifier,
	objectStorage storage.ObjectStorage,
	badges BadgeService,
	levels LevelCalculator,
	store *cache.Store,
	bus events.EventBus,
	config CheckInConfig,
	logger *zap.Logger,
) CheckInService {
	defaults := DefaultCheckInConfig()
	if config.GeofenceRadiusMeters <= 0 {
		config.GeofenceRadiusMeters = defaults.GeofenceRadiusMeters
	}
	if config.ExpReward <= 0 {
		config.ExpReward = defaults.ExpReward
	}
	if config.ProofFolder == "" {
		config.ProofFolder = defaults.ProofFolder
	}

	return &checkInService{
		hotspots: hotspots,
		checkIns: checkIns,
		tx:       tx,
		verifier: verifier,
		storage:  objectStorage,
		badges:   badges,
		levels:   levels,
		store:    store,
		events:   bus,
		config:   config,
		logger:   logger,
	}
}

// CheckIn validates the visit and, when every check passes, records it and
// credits the reward atomically. Rejections leave no persisted trace.
func (s *checkInService) CheckIn(ctx context.Context, userID string, req *CheckInRequest) (*CheckInResponse, error) {
	// Step 1: Validate request
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid check-in request", err)
	}

	// Step 2: Load the geofence anchor from the store of record
	hotspot, err := s.hotspots.GetByID(ctx, req.HotspotID)
	if err != nil {
		return nil, storeError(err, "hotspot", req.HotspotID, "failed to load hotspot")
	}

	// Step 3: Geofence
	user := geo.Point{Latitude: *req.UserLat, Longitude: *req.UserLong}
	anchor := geo.Point{Latitude: hotspot.Latitude, Longitude: hotspot.Longitude}
	within, distance := geo.WithinRadius(user, anchor, s.config.GeofenceRadiusMeters)
	if !within {
		meters := int64(math.Round(distance))
		s.logger.Info("Check-in outside geofence",
			zap.String("user_id", userID),
			zap.String("hotspot_id", hotspot.ID),
			zap.Int64("distance_meters", meters))
		return nil, NewBusinessError(
			fmt.Sprintf("You are %dm away from %s. Move within %.0fm to check in.", meters, hotspot.Name, s.config.GeofenceRadiusMeters),
			CodeGeofenceExceeded,
		).WithStatus(http.StatusBadRequest).WithContext(&ErrorContext{
			Metadata: map[string]interface{}{
				"distance_meters":     meters,
				"max_distance_meters": s.config.GeofenceRadiusMeters,
			},
		})
	}

	// Step 4: One validated check-in per user and hotspot
	exists, err := s.checkIns.ExistsValidated(ctx, userID, hotspot.ID)
	if err != nil {
		return nil, NewInternalError("failed to check previous check-ins").WithCause(err)
	}
	if exists {
		return nil, duplicateCheckInError(hotspot.Name)
	}

	// Step 5: Photo verification
	if err := s.verifyProof(ctx, userID, hotspot, req.ImageBase64); err != nil {
		return nil, err
	}

	// Step 6: Store the proof
	imageURL, err := s.storage.Upload(ctx, storage.NormalizeDataURI(req.ImageBase64, "image/jpeg"), s.config.ProofFolder)
	if err != nil {
		s.logger.Error("Failed to upload check-in proof",
			zap.String("user_id", userID),
			zap.String("hotspot_id", hotspot.ID),
			zap.Error(err))
		return nil, NewServiceUnavailableError("failed to store proof photo").WithCause(err)
	}

	// Step 7: Record the check-in and credit the reward atomically
	var newExp int64
	var newLevel int
	err = s.tx.WithTransaction(ctx, func(tx *repositories.Collection) error {
		checkIn := &models.CheckIn{
			UserID:      userID,
			HotspotID:   hotspot.ID,
			ImageURL:    imageURL,
			IsValidated: true,
		}
		if err := tx.CheckIn.Create(ctx, checkIn); err != nil {
			return err
		}

		exp, err := tx.User.GetExpForUpdate(ctx, userID)
		if err != nil {
			return err
		}

		newExp = exp + s.config.ExpReward
		newLevel = s.levels.Level(newExp)
		return tx.User.UpdateProgress(ctx, userID, newExp, newLevel)
	})
	if err != nil {
		// The proof stays in object storage; the URL is logged for cleanup
		if repositories.IsDuplicateKey(err) {
			s.logger.Warn("Concurrent duplicate check-in, proof left unreferenced",
				zap.String("user_id", userID),
				zap.String("hotspot_id", hotspot.ID),
				zap.String("image_url", imageURL))
			return nil, duplicateCheckInError(hotspot.Name)
		}
		s.logger.Error("Check-in transaction failed, proof left unreferenced",
			zap.String("user_id", userID),
			zap.String("hotspot_id", hotspot.ID),
			zap.String("image_url", imageURL),
			zap.Error(err))
		return nil, storeError(err, "user", userID, "failed to record check-in")
	}

	s.store.InvalidatePattern(ctx, cache.LeaderboardPattern)

	// Step 8: Badges never fail a committed check-in
	newBadges := []string{}
	awarded, err := s.badges.EvaluateAndAward(ctx, userID)
	if err != nil {
		s.logger.Warn("Badge evaluation failed after check-in",
			zap.String("user_id", userID),
			zap.Error(err))
	}
	for _, b := range awarded {
		newBadges = append(newBadges, b.Name)
		s.publish(ctx, events.NewBadgeAwardedEvent(userID, b.Name))
	}
	s.publish(ctx, events.NewCheckInCompletedEvent(userID, hotspot.ID, newExp, newLevel, s.config.ExpReward))

	s.logger.Info("Check-in recorded",
		zap.String("user_id", userID),
		zap.String("hotspot_id", hotspot.ID),
		zap.Int64("exp", newExp),
		zap.Int("level", newLevel),
		zap.Strings("new_badges", newBadges))

	// Step 9: Respond
	return &CheckInResponse{
		Message:     fmt.Sprintf("Check-in at %s succeeded!", hotspot.Name),
		Reward:      s.config.ExpReward,
		RewardLabel: fmt.Sprintf("+%d EXP", s.config.ExpReward),
		ImageURL:    imageURL,
		NewBadges:   newBadges,
		Exp:         newExp,
		Level:       newLevel,
	}, nil
}

func (s *checkInService) verifyProof(ctx context.Context, userID string, hotspot *models.Hotspot, image string) error {
	ok, err := s.verifier.VerifyLandmark(ctx, image, hotspot.Name)
	if err != nil {
		if s.config.VisionFailOpen {
			s.logger.Warn("Landmark verifier unavailable, accepting proof",
				zap.String("user_id", userID),
				zap.String("hotspot_id", hotspot.ID),
				zap.Error(err))
			return nil
		}
		s.logger.Warn("Landmark verifier unavailable, rejecting proof",
			zap.String("user_id", userID),
			zap.String("hotspot_id", hotspot.ID),
			zap.Error(err))
		return NewBusinessError("Photo could not be verified right now. Please try again.", CodeVerificationFailed).
			WithStatus(http.StatusBadRequest).
			WithCause(err)
	}
	if !ok {
		return NewBusinessError(
			fmt.Sprintf("The photo does not appear to show %s.", hotspot.Name),
			CodeVerificationFailed,
		).WithStatus(http.StatusBadRequest)
	}
	return nil
}

func (s *checkInService) publish(ctx context.Context, event events.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishAsync(ctx, event); err != nil {
		s.logger.Warn("Failed to publish event",
			zap.String("event_type", event.GetEventType()),
			zap.Error(err))
	}
}

func duplicateCheckInError(hotspotName string) *ServiceError {
	return NewBusinessError(
		fmt.Sprintf("You have already checked in at %s.", hotspotName),
		CodeDuplicateCheckIn,
	).WithStatus(http.StatusBadRequest)
}
