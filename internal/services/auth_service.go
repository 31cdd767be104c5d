// file: internal/services/auth_service.go
package services

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"time"

	"rekaloka/internal/events"
	"rekaloka/internal/models"
	"rekaloka/internal/repositories"
	"rekaloka/internal/validation"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Auth rejection codes
const (
	CodeAlreadyVerified   = "ALREADY_VERIFIED"
	CodeInvalidCode       = "INVALID_VERIFICATION_CODE"
	CodeInvalidCredential = "INVALID_CREDENTIALS"
	CodeNotVerified       = "ACCOUNT_NOT_VERIFIED"
)

// TokenIssuer signs login tokens
type TokenIssuer interface {
	Sign(userID, email, role string) (string, error)
	TTL() time.Duration
}

// authService implements AuthService
type authService struct {
	users      repositories.UserRepository
	email      EmailService
	tokens     TokenIssuer
	events     events.EventBus
	bcryptCost int
	logger     *zap.Logger
}

// NewAuthService creates the registration and login service
func NewAuthService(
	users repositories.UserRepository,
	email EmailService,
	tokens TokenIssuer,
	bus events.EventBus,
	bcryptCost int,
	logger *zap.Logger,
) AuthService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &authService{
		users:      users,
		email:      email,
		tokens:     tokens,
		events:     bus,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// ===============================
// REGISTRATION
// ===============================

// Register creates an unverified account and mails its verification code.
// Mail delivery failures do not fail registration.
func (s *authService) Register(ctx context.Context, req *RegisterRequest) (*RegisterResponse, error) {
	// Step 1: Validate request
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid registration", err)
	}
	email := strings.TrimSpace(req.Email)
	username := strings.TrimSpace(req.Username)

	// Step 2: Reject taken identifiers early with a precise message
	if err := s.ensureAvailable(ctx, email, username); err != nil {
		return nil, err
	}

	// Step 3: Hash password and draw a verification code
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, NewInternalError("failed to hash password").WithCause(err)
	}

	code, err := GenerateVerificationCode()
	if err != nil {
		return nil, NewInternalError("failed to generate verification code").WithCause(err)
	}

	// Step 4: Persist. Unique indexes close the race with a concurrent signup.
	user := &models.User{
		Email:            email,
		Username:         username,
		PasswordHash:     string(hash),
		VerificationCode: &code,
		Level:            1,
		Role:             models.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if repositories.IsDuplicateKey(err) {
			if strings.Contains(repositories.ConstraintOf(err), "username") {
				return nil, EntityAlreadyExistsError("user", "username", username)
			}
			return nil, EntityAlreadyExistsError("user", "email", email)
		}
		return nil, NewInternalError("failed to create user").WithCause(err)
	}

	// Step 5: Mail the code, best effort
	if err := s.email.SendVerificationCode(ctx, email, username, code); err != nil {
		s.logger.Error("Failed to send verification email",
			zap.String("user_id", user.ID),
			zap.Error(err))
	}

	s.logger.Info("User registered",
		zap.String("user_id", user.ID),
		zap.String("username", username))

	if s.events != nil {
		if err := s.events.PublishAsync(ctx, events.NewUserRegisteredEvent(user.ID, username, email)); err != nil {
			s.logger.Warn("Failed to publish registration event", zap.Error(err))
		}
	}

	return &RegisterResponse{UserID: user.ID, Email: email}, nil
}

func (s *authService) ensureAvailable(ctx context.Context, email, username string) error {
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return EntityAlreadyExistsError("user", "email", email)
	} else if !repositories.IsNotFound(err) {
		return NewInternalError("failed to check email").WithCause(err)
	}

	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return EntityAlreadyExistsError("user", "username", username)
	} else if !repositories.IsNotFound(err) {
		return NewInternalError("failed to check username").WithCause(err)
	}
	return nil
}

// Verify activates an account with its emailed code
func (s *authService) Verify(ctx context.Context, req *VerifyRequest) error {
	if err := validation.ValidateStruct(req); err != nil {
		return NewValidationError("invalid verification request", err)
	}

	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		return storeError(err, "user", req.Email, "failed to load user")
	}

	if user.IsVerified {
		return NewBusinessError("account is already verified", CodeAlreadyVerified).WithStatus(http.StatusBadRequest)
	}

	if user.VerificationCode == nil ||
		subtle.ConstantTimeCompare([]byte(*user.VerificationCode), []byte(req.Code)) != 1 {
		return NewBusinessError("verification code is incorrect", CodeInvalidCode).WithStatus(http.StatusBadRequest)
	}

	if err := s.users.MarkVerified(ctx, user.ID); err != nil {
		return storeError(err, "user", user.ID, "failed to verify account")
	}

	s.logger.Info("User verified", zap.String("user_id", user.ID))
	return nil
}

// ===============================
// LOGIN
// ===============================

// Login exchanges credentials for a bearer token. Unknown emails and wrong
// passwords produce the same error.
func (s *authService) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid login request", err)
	}

	invalid := NewUnauthorizedError("invalid email or password")
	invalid.Code = CodeInvalidCredential

	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, invalid
		}
		return nil, NewInternalError("authentication failed").WithCause(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Warn("Invalid password attempt", zap.String("user_id", user.ID))
		return nil, invalid
	}

	if !user.IsVerified {
		forbidden := NewForbiddenError("account is not verified, check your email")
		forbidden.Code = CodeNotVerified
		return nil, forbidden
	}

	token, err := s.tokens.Sign(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, NewInternalError("failed to issue token").WithCause(err)
	}

	s.logger.Info("User logged in", zap.String("user_id", user.ID))

	return &LoginResponse{
		Token:     token,
		ExpiresIn: int64(s.tokens.TTL().Seconds()),
		User:      user,
	}, nil
}

// GenerateVerificationCode returns a uniformly random six-digit code
func GenerateVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
