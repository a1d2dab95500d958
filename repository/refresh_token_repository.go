package repository

import (
	"context"
	"fmt"
	"time"

	"gaznger/database"
	"gaznger/models"

	"github.com/jackc/pgx/v5"
)

// RefreshTokenRepository implements the service.RefreshTokenRepository interface
type RefreshTokenRepository struct {
	q queryable
}

// NewRefreshTokenRepository creates a new refresh token repository
func NewRefreshTokenRepository(db *database.DB) *RefreshTokenRepository {
	return &RefreshTokenRepository{q: db.Pool}
}

// newRefreshTokenRepositoryWithTx creates a new refresh token repository with a transaction
func newRefreshTokenRepositoryWithTx(tx queryable) *RefreshTokenRepository {
	return &RefreshTokenRepository{q: tx}
}

// Create stores a refresh token
func (r *RefreshTokenRepository) Create(ctx context.Context, token *models.RefreshToken) error {
	query := `
		INSERT INTO refresh_tokens (user_id, token, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query, token.UserID, token.Token, token.ExpiresAt).
		Scan(&token.ID, &token.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to store refresh token for user %d: %w", token.UserID, err)
	}

	return nil
}

// GetByToken retrieves a stored refresh token, returning (nil, nil) when absent
func (r *RefreshTokenRepository) GetByToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	query := `
		SELECT id, user_id, token, expires_at, created_at
		FROM refresh_tokens
		WHERE token = $1
	`

	var rt models.RefreshToken
	err := r.q.QueryRow(ctx, query, token).
		Scan(&rt.ID, &rt.UserID, &rt.Token, &rt.ExpiresAt, &rt.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}

	return &rt, nil
}

// Delete removes a stored refresh token (logout)
func (r *RefreshTokenRepository) Delete(ctx context.Context, token string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM refresh_tokens WHERE token = $1`, token); err != nil {
		return fmt.Errorf("failed to delete refresh token: %w", err)
	}
	return nil
}

// DeleteExpired removes tokens past their expiry; returns the count removed
func (r *RefreshTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.q.Exec(ctx, `DELETE FROM refresh_tokens WHERE expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired refresh tokens: %w", err)
	}
	return result.RowsAffected(), nil
}
