package repository

import (
	"context"
	"fmt"
	"time"

	"gaznger/database"
	"gaznger/models"

	"github.com/jackc/pgx/v5"
)

const pointColumns = `id, user_id, change, kind, description, pending_until, expires_at, settled, lapsed, created_at`

// PointRepository implements the service.PointRepository interface over the
// append-only point_entries ledger.
type PointRepository struct {
	q queryable
}

// NewPointRepository creates a new point ledger repository
func NewPointRepository(db *database.DB) *PointRepository {
	return &PointRepository{q: db.Pool}
}

// newPointRepositoryWithTx creates a new point ledger repository with a transaction
func newPointRepositoryWithTx(tx queryable) *PointRepository {
	return &PointRepository{q: tx}
}

// Insert appends a ledger entry
func (r *PointRepository) Insert(ctx context.Context, entry *models.PointEntry) error {
	query := `
		INSERT INTO point_entries (user_id, change, kind, description, pending_until, expires_at, settled)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		entry.UserID,
		entry.Change,
		entry.Kind,
		entry.Description,
		entry.PendingUntil,
		entry.ExpiresAt,
		entry.Settled,
	).Scan(&entry.ID, &entry.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to insert point entry for user %d: %w", entry.UserID, err)
	}

	return nil
}

// GetByUser returns ledger entries for a user, newest first
func (r *PointRepository) GetByUser(ctx context.Context, userID int64, limit int) ([]*models.PointEntry, error) {
	query := `
		SELECT ` + pointColumns + `
		FROM point_entries
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get point entries for user %d: %w", userID, err)
	}
	defer rows.Close()

	return scanPointEntries(rows)
}

// ListEligibleUnsettled returns entries whose pending window has opened and
// which have neither settled, lapsed, nor expired as of now. This is the
// settlement sweep's work queue.
func (r *PointRepository) ListEligibleUnsettled(ctx context.Context, now time.Time) ([]*models.PointEntry, error) {
	query := `
		SELECT ` + pointColumns + `
		FROM point_entries
		WHERE NOT settled
		  AND NOT lapsed
		  AND pending_until IS NOT NULL
		  AND pending_until <= $1
		  AND (expires_at IS NULL OR expires_at >= $1)
		ORDER BY created_at
	`

	rows, err := r.q.Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list eligible unsettled entries: %w", err)
	}
	defer rows.Close()

	return scanPointEntries(rows)
}

// MarkSettled flips an entry's settled flag. The WHERE guard makes the claim
// exclusive: a false return means another sweep already settled the entry
// (or it lapsed), and its effect must not be applied again.
func (r *PointRepository) MarkSettled(ctx context.Context, entryID int64) (bool, error) {
	query := `
		UPDATE point_entries
		SET settled = TRUE
		WHERE id = $1 AND NOT settled AND NOT lapsed
	`

	result, err := r.q.Exec(ctx, query, entryID)
	if err != nil {
		return false, fmt.Errorf("failed to mark entry %d settled: %w", entryID, err)
	}

	return result.RowsAffected() > 0, nil
}

// MarkLapsed terminally marks entries that expired before ever settling.
// Their effect is never applied; the flag only disambiguates them from
// still-pending rows. Returns the number of entries lapsed.
func (r *PointRepository) MarkLapsed(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE point_entries
		SET lapsed = TRUE
		WHERE NOT settled
		  AND NOT lapsed
		  AND expires_at IS NOT NULL
		  AND expires_at < $1
	`

	result, err := r.q.Exec(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("failed to mark lapsed entries: %w", err)
	}

	return result.RowsAffected(), nil
}

// SumEligible computes the effective balance straight from the ledger: the
// sum of all entries whose pending window has opened and which have not
// expired as of now. Ground truth for the cached balance once settlement
// has caught up; clamped at zero like the cache.
func (r *PointRepository) SumEligible(ctx context.Context, userID int64, now time.Time) (int64, error) {
	query := `
		SELECT GREATEST(COALESCE(SUM(change), 0), 0)
		FROM point_entries
		WHERE user_id = $1
		  AND (pending_until IS NULL OR pending_until <= $2)
		  AND (expires_at IS NULL OR expires_at >= $2)
		  AND NOT lapsed
	`

	var sum int64
	if err := r.q.QueryRow(ctx, query, userID, now).Scan(&sum); err != nil {
		return 0, fmt.Errorf("failed to sum eligible entries for user %d: %w", userID, err)
	}

	return sum, nil
}

func scanPointEntries(rows pgx.Rows) ([]*models.PointEntry, error) {
	var entries []*models.PointEntry
	for rows.Next() {
		var entry models.PointEntry
		err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.Change,
			&entry.Kind,
			&entry.Description,
			&entry.PendingUntil,
			&entry.ExpiresAt,
			&entry.Settled,
			&entry.Lapsed,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan point entry: %w", err)
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate point entries: %w", err)
	}

	return entries, nil
}
