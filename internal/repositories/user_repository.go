// file: internal/repositories/user_repository.go
package repositories

import (
	"context"
	"fmt"

	"rekaloka/internal/database"
	"rekaloka/internal/models"

	"go.uber.org/zap"
)

type userRepository struct {
	*BaseRepository
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.Manager, logger *zap.Logger) UserRepository {
	return &userRepository{BaseRepository: NewBaseRepository(db, logger)}
}

const userColumns = `id, email, username, password_hash, is_verified, verification_code,
	exp, level, role, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID, &user.Email, &user.Username, &user.PasswordHash,
		&user.IsVerified, &user.VerificationCode,
		&user.Exp, &user.Level, &user.Role,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ===============================
// BASIC CRUD OPERATIONS
// ===============================

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := ensureID(&user.ID); err != nil {
		return err
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	if user.Level < 1 {
		user.Level = 1
	}

	query := `
		INSERT INTO users (
			id, email, username, password_hash, is_verified,
			verification_code, exp, level, role
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`

	err := r.QueryRowContext(ctx, query,
		user.ID, user.Email, user.Username, user.PasswordHash, user.IsVerified,
		user.VerificationCode, user.Exp, user.Level, user.Role,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", mapError(err))
	}

	r.GetLogger().Info("User created successfully",
		zap.String("user_id", user.ID),
		zap.String("username", user.Username),
	)
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	user, err := scanUser(r.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get user by ID: %w", mapError(err))
	}
	return user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := scanUser(r.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)`, email))
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", mapError(err))
	}
	return user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := scanUser(r.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`, username))
	if err != nil {
		return nil, fmt.Errorf("failed to get user by username: %w", mapError(err))
	}
	return user, nil
}

func (r *userRepository) MarkVerified(ctx context.Context, id string) error {
	result, err := r.ExecContext(ctx, `
		UPDATE users
		SET is_verified = TRUE, verification_code = NULL, updated_at = NOW()
		WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to verify user: %w", mapError(err))
	}
	return requireAffected(result)
}

func (r *userRepository) UpdateUsername(ctx context.Context, id, username string) error {
	result, err := r.ExecContext(ctx, `
		UPDATE users SET username = $2, updated_at = NOW() WHERE id = $1`, id, username)
	if err != nil {
		return fmt.Errorf("failed to update username: %w", mapError(err))
	}
	return requireAffected(result)
}

func (r *userRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	result, err := r.ExecContext(ctx, `
		UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`, id, passwordHash)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", mapError(err))
	}
	return requireAffected(result)
}

// ===============================
// PROGRESSION
// ===============================

func (r *userRepository) GetExpForUpdate(ctx context.Context, id string) (int64, error) {
	var exp int64
	err := r.QueryRowContext(ctx, `SELECT exp FROM users WHERE id = $1 FOR UPDATE`, id).Scan(&exp)
	if err != nil {
		return 0, fmt.Errorf("failed to read user exp: %w", mapError(err))
	}
	return exp, nil
}

func (r *userRepository) UpdateProgress(ctx context.Context, id string, exp int64, level int) error {
	result, err := r.ExecContext(ctx, `
		UPDATE users SET exp = $2, level = $3, updated_at = NOW() WHERE id = $1`, id, exp, level)
	if err != nil {
		return fmt.Errorf("failed to update user progress: %w", mapError(err))
	}
	return requireAffected(result)
}

// Leaderboard ranks users by exp; ties go to the earlier account
func (r *userRepository) Leaderboard(ctx context.Context, limit int) ([]*models.LeaderboardEntry, error) {
	rows, err := r.QueryContext(ctx, `
		SELECT id, username, exp, level
		FROM users
		ORDER BY exp DESC, created_at ASC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}
	defer rows.Close()

	entries := make([]*models.LeaderboardEntry, 0, limit)
	for rows.Next() {
		entry := &models.LeaderboardEntry{Rank: len(entries) + 1}
		if err := rows.Scan(&entry.ID, &entry.Username, &entry.Exp, &entry.Level); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard row: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate leaderboard: %w", err)
	}
	return entries, nil
}
