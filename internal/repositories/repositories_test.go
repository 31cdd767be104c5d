package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"rekaloka/internal/database"
	"rekaloka/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockCollection(t *testing.T) (*Collection, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	c, err := NewCollection(database.NewManagerFromDB(db, nil), nil)
	require.NoError(t, err)
	return c, mock
}

func TestMapError(t *testing.T) {
	assert.Nil(t, mapError(nil))
	assert.ErrorIs(t, mapError(sql.ErrNoRows), ErrNotFound)

	dup := mapError(&pq.Error{Code: "23505", Constraint: "users_email_key"})
	assert.ErrorIs(t, dup, ErrDuplicateKey)
	assert.Equal(t, "users_email_key", ConstraintOf(dup))

	fk := &pq.Error{Code: "23503"}
	assert.Same(t, fk, mapError(fk))

	wrapped := errors.New("boom")
	assert.Equal(t, wrapped, mapError(wrapped))

	badID := &pq.Error{Code: "22P02", Message: `invalid input syntax for type uuid: "abc"`}
	assert.ErrorIs(t, mapError(badID), ErrNotFound)
	assert.True(t, IsNotFound(fmt.Errorf("failed to list hotspots: %w", badID)))
	assert.False(t, IsDuplicateKey(badID))
}

func TestUserRepository_Create(t *testing.T) {
	c, mock := newMockCollection(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs(sqlmock.AnyArg(), "a@b.id", "alice", "hash", false, sqlmock.AnyArg(), int64(0), 1, models.RoleUser).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	user := &models.User{Email: "a@b.id", Username: "alice", PasswordHash: "hash"}
	require.NoError(t, c.User.Create(context.Background(), user))
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, 1, user.Level)
	assert.Equal(t, now, user.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_CreateDuplicate(t *testing.T) {
	c, mock := newMockCollection(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "users_username_key"})

	err := c.User.Create(context.Background(), &models.User{Email: "a@b.id", Username: "alice"})
	assert.True(t, IsDuplicateKey(err))
	assert.Equal(t, "users_username_key", ConstraintOf(err))
}

func TestUserRepository_GetByIDNotFound(t *testing.T) {
	c, mock := newMockCollection(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	user, err := c.User.GetByID(context.Background(), "missing")
	assert.Nil(t, user)
	assert.True(t, IsNotFound(err))
}

func TestUserRepository_UpdateUsernameNoRows(t *testing.T) {
	c, mock := newMockCollection(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET username")).
		WithArgs("u1", "bob").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, c.User.UpdateUsername(context.Background(), "u1", "bob"), ErrNotFound)
}

func TestUserRepository_Leaderboard(t *testing.T) {
	c, mock := newMockCollection(t)

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY exp DESC, created_at ASC")).
		WithArgs(2).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "exp", "level"}).
			AddRow("u1", "alice", int64(900), 4).
			AddRow("u2", "bob", int64(100), 2))

	entries, err := c.User.Leaderboard(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, "alice", entries[0].Username)
	assert.Equal(t, 2, entries[1].Rank)
}

func TestProvinceRepository_List(t *testing.T) {
	c, mock := newMockCollection(t)
	now := time.Now()

	cols := []string{"id", "name", "description", "latitude", "longitude",
		"logo_url", "background_url", "backsound_url", "iconic_info",
		"created_at", "updated_at", "count"}
	mock.ExpectQuery(regexp.QuoteMeta("LEFT JOIN hotspots h ON h.province_id = p.id")).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("p1", "Bali", "", -8.4, 115.1, nil, nil, nil, []byte(`{"food":"Babi Guling"}`), now, now, 3).
			AddRow("p2", "Aceh", "", nil, nil, nil, nil, nil, nil, now, now, 0))

	provinces, err := c.Province.List(context.Background())
	require.NoError(t, err)
	require.Len(t, provinces, 2)

	assert.Equal(t, 3, provinces[0].HotspotCount)
	require.NotNil(t, provinces[0].Latitude)
	assert.Equal(t, -8.4, *provinces[0].Latitude)
	assert.Equal(t, "Babi Guling", provinces[0].IconicInfo["food"])
	assert.Nil(t, provinces[1].Latitude)
	assert.Nil(t, provinces[1].IconicInfo)
}

func TestHotspotRepository_GetByIDMalformed(t *testing.T) {
	c, mock := newMockCollection(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM hotspots WHERE id = $1")).
		WithArgs("abc").
		WillReturnError(&pq.Error{Code: "22P02", Message: `invalid input syntax for type uuid: "abc"`})

	hotspot, err := c.Hotspot.GetByID(context.Background(), "abc")
	assert.Nil(t, hotspot)
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHotspotRepository_DeleteMissing(t *testing.T) {
	c, mock := newMockCollection(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM hotspots")).
		WithArgs("h1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, c.Hotspot.Delete(context.Background(), "h1"), ErrNotFound)
}

func TestCheckInRepository_ExistsValidated(t *testing.T) {
	c, mock := newMockCollection(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs("u1", "h1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := c.CheckIn.ExistsValidated(context.Background(), "u1", "h1")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestCheckInRepository_CreateDuplicate(t *testing.T) {
	c, mock := newMockCollection(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO checkins")).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "uq_checkins_user_hotspot_validated"})

	err := c.CheckIn.Create(context.Background(), &models.CheckIn{UserID: "u1", HotspotID: "h1", IsValidated: true})
	assert.ErrorIs(t, err, ErrDuplicateKey)
}

func TestBadgeRepository_AwardConflict(t *testing.T) {
	c, mock := newMockCollection(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (user_id, name) DO NOTHING")).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(now))
	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (user_id, name) DO NOTHING")).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}))

	awarded, err := c.Badge.Award(context.Background(), &models.Badge{UserID: "u1", Name: "Turis Biasa"})
	require.NoError(t, err)
	assert.True(t, awarded)

	awarded, err = c.Badge.Award(context.Background(), &models.Badge{UserID: "u1", Name: "Turis Biasa"})
	require.NoError(t, err)
	assert.False(t, awarded)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCollection_WithTransactionCommit(t *testing.T) {
	c, mock := newMockCollection(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO checkins")).
		WillReturnRows(sqlmock.NewRows([]string{"timestamp"}).AddRow(now))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT exp FROM users WHERE id = $1 FOR UPDATE")).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"exp"}).AddRow(int64(200)))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET exp")).
		WithArgs("u1", int64(300), 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := c.WithTransaction(context.Background(), func(tx *Collection) error {
		if err := tx.CheckIn.Create(context.Background(), &models.CheckIn{UserID: "u1", HotspotID: "h1", IsValidated: true}); err != nil {
			return err
		}
		exp, err := tx.User.GetExpForUpdate(context.Background(), "u1")
		if err != nil {
			return err
		}
		return tx.User.UpdateProgress(context.Background(), "u1", exp+100, 2)
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCollection_WithTransactionRollback(t *testing.T) {
	c, mock := newMockCollection(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO checkins")).
		WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectRollback()

	err := c.WithTransaction(context.Background(), func(tx *Collection) error {
		return tx.CheckIn.Create(context.Background(), &models.CheckIn{UserID: "u1", HotspotID: "h1", IsValidated: true})
	})
	assert.ErrorIs(t, err, ErrDuplicateKey)
	assert.NoError(t, mock.ExpectationsWereMet())
}
