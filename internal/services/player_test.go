package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"rekaloka/internal/cache"
	"rekaloka/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// ===============================
// LEADERBOARD
// ===============================

func TestNormalizeLeaderboardLimit(t *testing.T) {
	assert.Equal(t, 10, NormalizeLeaderboardLimit(0))
	assert.Equal(t, 10, NormalizeLeaderboardLimit(-3))
	assert.Equal(t, 25, NormalizeLeaderboardLimit(25))
	assert.Equal(t, 100, NormalizeLeaderboardLimit(500))
}

func TestLeaderboard_OrderAndDerivedLevel(t *testing.T) {
	h := newHarness()
	base := time.Now()
	h.db.addUser(&models.User{Email: "a@x", Username: "early", Exp: 500, Level: 1, CreatedAt: base})
	h.db.addUser(&models.User{Email: "b@x", Username: "late", Exp: 500, Level: 1, CreatedAt: base.Add(time.Hour)})
	h.db.addUser(&models.User{Email: "c@x", Username: "top", Exp: 900, CreatedAt: base})
	h.db.addUser(&models.User{Email: "d@x", Username: "new", Exp: 0, CreatedAt: base})

	entries, err := h.sc.LeaderboardService.Top(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "top", entries[0].Username)
	assert.Equal(t, 4, entries[0].Level)
	assert.Equal(t, "early", entries[1].Username)
	assert.Equal(t, 3, entries[1].Level, "level is derived from exp, not the stored column")
	assert.Equal(t, "late", entries[2].Username)
	for i, e := range entries {
		assert.Equal(t, i+1, e.Rank)
	}
	assert.True(t, h.cached(cache.LeaderboardKey(3)))
}

func TestLeaderboard_CachedPerLimit(t *testing.T) {
	h := newHarness()
	h.db.addUser(&models.User{Email: "a@x", Username: "one", Exp: 100})
	ctx := context.Background()

	_, err := h.sc.LeaderboardService.Top(ctx, 0)
	require.NoError(t, err)
	assert.True(t, h.cached(cache.LeaderboardKey(10)))
	assert.False(t, h.cached(cache.LeaderboardKey(0)))
}

// ===============================
// AUTH
// ===============================

func TestAuth_RegisterVerifyLogin(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	reg, err := h.sc.AuthService.Register(ctx, &RegisterRequest{
		Email: "siti@example.com", Username: "siti", Password: "rahasia123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, reg.UserID)

	code := h.email.codes["siti@example.com"]
	require.Len(t, code, 6)
	stored := h.db.user(reg.UserID)
	assert.False(t, stored.IsVerified)
	assert.NotEqual(t, "rahasia123", stored.PasswordHash)
	assert.Equal(t, models.RoleUser, stored.Role)

	_, err = h.sc.AuthService.Login(ctx, &LoginRequest{Email: "siti@example.com", Password: "rahasia123"})
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, GetServiceError(err).GetStatusCode())

	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}
	err = h.sc.AuthService.Verify(ctx, &VerifyRequest{Email: "siti@example.com", Code: wrong})
	requireCode(t, err, CodeInvalidCode, http.StatusBadRequest)

	require.NoError(t, h.sc.AuthService.Verify(ctx, &VerifyRequest{Email: "SITI@example.com", Code: code}))

	err = h.sc.AuthService.Verify(ctx, &VerifyRequest{Email: "siti@example.com", Code: code})
	requireCode(t, err, CodeAlreadyVerified, http.StatusBadRequest)

	login, err := h.sc.AuthService.Login(ctx, &LoginRequest{Email: "siti@example.com", Password: "rahasia123"})
	require.NoError(t, err)
	assert.Equal(t, int64((7 * 24 * time.Hour).Seconds()), login.ExpiresIn)

	claims, err := h.sc.Tokens.Parse(login.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.UserID, claims.UserID())
	assert.Equal(t, "siti@example.com", claims.Email)
	assert.Equal(t, models.RoleUser, claims.Role)
}

func TestAuth_RegisterConflictsNameTheField(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	h.db.addUser(&models.User{Email: "taken@example.com", Username: "taken"})

	_, err := h.sc.AuthService.Register(ctx, &RegisterRequest{Email: "TAKEN@example.com", Username: "fresh", Password: "secret1"})
	serviceErr := GetServiceError(err)
	assert.Equal(t, http.StatusConflict, serviceErr.GetStatusCode())
	assert.Equal(t, "email", serviceErr.Details["field"])

	_, err = h.sc.AuthService.Register(ctx, &RegisterRequest{Email: "fresh@example.com", Username: "taken", Password: "secret1"})
	serviceErr = GetServiceError(err)
	assert.Equal(t, http.StatusConflict, serviceErr.GetStatusCode())
	assert.Equal(t, "username", serviceErr.Details["field"])
}

func TestAuth_RegisterSurvivesMailFailure(t *testing.T) {
	h := newHarness()
	h.email.err = errors.New("smtp down")

	reg, err := h.sc.AuthService.Register(context.Background(), &RegisterRequest{
		Email: "a@example.com", Username: "andi", Password: "secret1",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, reg.UserID)
}

func TestAuth_RegisterValidation(t *testing.T) {
	h := newHarness()
	_, err := h.sc.AuthService.Register(context.Background(), &RegisterRequest{Email: "not-an-email", Username: "ab", Password: "1"})
	assert.True(t, IsValidationError(err))
}

func TestAuth_LoginRejectsUniformly(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct"), bcrypt.MinCost)
	require.NoError(t, err)
	h.db.addUser(&models.User{Email: "u@example.com", Username: "u", PasswordHash: string(hash), IsVerified: true})

	_, unknownErr := h.sc.AuthService.Login(ctx, &LoginRequest{Email: "nobody@example.com", Password: "correct"})
	_, wrongErr := h.sc.AuthService.Login(ctx, &LoginRequest{Email: "u@example.com", Password: "wrong"})

	require.Error(t, unknownErr)
	require.Error(t, wrongErr)
	assert.Equal(t, http.StatusUnauthorized, GetServiceError(unknownErr).GetStatusCode())
	assert.Equal(t, GetServiceError(unknownErr).Message, GetServiceError(wrongErr).Message)
	assert.Equal(t, GetServiceError(unknownErr).Code, GetServiceError(wrongErr).Code)
}

func TestAuth_VerifyUnknownUser(t *testing.T) {
	h := newHarness()
	err := h.sc.AuthService.Verify(context.Background(), &VerifyRequest{Email: "ghost@example.com", Code: "123456"})
	assert.True(t, IsNotFoundError(err))
}

func TestGenerateVerificationCode(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := GenerateVerificationCode()
		require.NoError(t, err)
		require.Len(t, code, 6)
		assert.GreaterOrEqual(t, code, "100000")
		assert.LessOrEqual(t, code, "999999")
	}
}

// ===============================
// PROFILE
// ===============================

func TestProfile_ProgressAndHistory(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	user, hotspot := seedCheckInWorld(h)

	_, err := h.sc.CheckInService.CheckIn(ctx, user.ID, checkInAt(hotspot.ID, borobudurLat, borobudurLong))
	require.NoError(t, err)

	profile, err := h.sc.ProfileService.GetProfile(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, profile.Level)
	assert.Equal(t, 2, profile.Progress.CurrentLevel)
	assert.Equal(t, int64(100), profile.Progress.LevelBaseExp)
	assert.Equal(t, int64(400), profile.Progress.NextLevelExp)

	expLevel, err := h.sc.ProfileService.GetExpLevel(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), expLevel.Exp)
	assert.Equal(t, 2, expLevel.Level)

	history, err := h.sc.ProfileService.GetCheckInHistory(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "Candi Borobudur", history[0].Hotspot.Name)

	empty, err := h.sc.ProfileService.GetCheckInHistory(ctx, "someone-else")
	require.NoError(t, err)
	assert.NotNil(t, empty)
}

func TestProfile_UpdateUsername(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	user := h.db.addUser(&models.User{Email: "a@x", Username: "alpha"})
	h.db.addUser(&models.User{Email: "b@x", Username: "beta"})

	updated, err := h.sc.ProfileService.UpdateProfile(ctx, user.ID, &UpdateProfileRequest{Username: "gamma"})
	require.NoError(t, err)
	assert.Equal(t, "gamma", updated.Username)

	_, err = h.sc.ProfileService.UpdateProfile(ctx, user.ID, &UpdateProfileRequest{Username: "beta"})
	assert.Equal(t, http.StatusConflict, GetServiceError(err).GetStatusCode())
}

func TestProfile_ChangePassword(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	hash, err := bcrypt.GenerateFromPassword([]byte("oldpass"), bcrypt.MinCost)
	require.NoError(t, err)
	user := h.db.addUser(&models.User{Email: "a@x", Username: "alpha", PasswordHash: string(hash)})

	err = h.sc.ProfileService.ChangePassword(ctx, user.ID, &ChangePasswordRequest{OldPassword: "nope", NewPassword: "newpass"})
	assert.True(t, IsValidationError(err))

	require.NoError(t, h.sc.ProfileService.ChangePassword(ctx, user.ID, &ChangePasswordRequest{OldPassword: "oldpass", NewPassword: "newpass"}))
	stored := h.db.user(user.ID)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("newpass")))
}

func TestProfile_Missing(t *testing.T) {
	h := newHarness()
	_, err := h.sc.ProfileService.GetProfile(context.Background(), "ghost")
	assert.True(t, IsNotFoundError(err))
}
