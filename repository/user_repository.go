package repository

import (
	"context"
	"fmt"

	"gaznger/database"
	"gaznger/models"
	"gaznger/service"

	"github.com/jackc/pgx/v5"
)

const userColumns = `id, email, phone, password_hash, display_name, gender, profile_image, points, device_tokens, created_at, updated_at`

// UserRepository implements the service.UserRepository interface
type UserRepository struct {
	q queryable
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{q: db.Pool}
}

// newUserRepositoryWithTx creates a new user repository with a transaction
func newUserRepositoryWithTx(tx queryable) *UserRepository {
	return &UserRepository{q: tx}
}

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Phone,
		&user.PasswordHash,
		&user.DisplayName,
		&user.Gender,
		&user.ProfileImage,
		&user.Points,
		&user.DeviceTokens,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByID retrieves a user by ID, returning (nil, nil) when absent
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}

	return user, nil
}

// GetByEmail retrieves a user by email, returning (nil, nil) when absent
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(r.q.QueryRow(ctx, query, email))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

// Create creates a new user; points start at zero
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (email, phone, password_hash, display_name, gender, profile_image, device_tokens)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, points, created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query,
		user.Email,
		user.Phone,
		user.PasswordHash,
		user.DisplayName,
		user.Gender,
		user.ProfileImage,
		user.DeviceTokens,
	).Scan(&user.ID, &user.Points, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create user %s: %w", user.Email, err)
	}

	return nil
}

// ApplyPointsDelta applies a signed point change to a user's cached balance
// atomically, clamping the result at zero so readers never observe a
// negative balance. Returns the resulting balance.
func (r *UserRepository) ApplyPointsDelta(ctx context.Context, userID int64, delta int64) (int64, error) {
	query := `
		UPDATE users
		SET points = GREATEST(points + $1, 0), updated_at = NOW()
		WHERE id = $2
		RETURNING points
	`

	var points int64
	err := r.q.QueryRow(ctx, query, delta, userID).Scan(&points)
	if err == pgx.ErrNoRows {
		return 0, service.ErrUserNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to apply points delta for user %d: %w", userID, err)
	}

	return points, nil
}

// GetPoints returns the cached point balance for a user
func (r *UserRepository) GetPoints(ctx context.Context, userID int64) (int64, error) {
	var points int64
	err := r.q.QueryRow(ctx, `SELECT points FROM users WHERE id = $1`, userID).Scan(&points)
	if err == pgx.ErrNoRows {
		return 0, service.ErrUserNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get points for user %d: %w", userID, err)
	}
	return points, nil
}

// AddDeviceToken registers a push device token for a user, ignoring duplicates
func (r *UserRepository) AddDeviceToken(ctx context.Context, userID int64, token string) error {
	query := `
		UPDATE users
		SET device_tokens = array_append(device_tokens, $1), updated_at = NOW()
		WHERE id = $2 AND NOT ($1 = ANY(device_tokens))
	`

	if _, err := r.q.Exec(ctx, query, token, userID); err != nil {
		return fmt.Errorf("failed to add device token for user %d: %w", userID, err)
	}
	return nil
}
