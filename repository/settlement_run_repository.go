package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"gaznger/database"
	"gaznger/models"

	"github.com/jackc/pgx/v5"
)

// SettlementRunRepository implements the service.SettlementRunRepository interface
type SettlementRunRepository struct {
	q queryable
}

// NewSettlementRunRepository creates a new settlement run repository
func NewSettlementRunRepository(db *database.DB) *SettlementRunRepository {
	return &SettlementRunRepository{q: db.Pool}
}

// newSettlementRunRepositoryWithTx creates a new settlement run repository with a transaction
func newSettlementRunRepositoryWithTx(tx queryable) *SettlementRunRepository {
	return &SettlementRunRepository{q: tx}
}

// Create records a completed settlement sweep
func (r *SettlementRunRepository) Create(ctx context.Context, run *models.SettlementRun) error {
	summaryJSON, err := json.Marshal(run.Summary)
	if err != nil {
		return fmt.Errorf("failed to marshal settlement summary: %w", err)
	}

	query := `
		INSERT INTO settlement_runs
		(started_at, entries_settled, entries_lapsed, entries_skipped, points_applied, summary)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err = r.q.QueryRow(ctx, query,
		run.StartedAt,
		run.EntriesSettled,
		run.EntriesLapsed,
		run.EntriesSkipped,
		run.PointsApplied,
		summaryJSON,
	).Scan(&run.ID, &run.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create settlement run: %w", err)
	}

	return nil
}

// GetLatest returns the most recent settlement run, or (nil, nil) if none exist
func (r *SettlementRunRepository) GetLatest(ctx context.Context) (*models.SettlementRun, error) {
	query := `
		SELECT id, started_at, entries_settled, entries_lapsed, entries_skipped,
		       points_applied, summary, created_at
		FROM settlement_runs
		ORDER BY started_at DESC
		LIMIT 1
	`

	var run models.SettlementRun
	var summaryJSON []byte

	err := r.q.QueryRow(ctx, query).Scan(
		&run.ID,
		&run.StartedAt,
		&run.EntriesSettled,
		&run.EntriesLapsed,
		&run.EntriesSkipped,
		&run.PointsApplied,
		&summaryJSON,
		&run.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest settlement run: %w", err)
	}

	if len(summaryJSON) > 0 {
		if err := json.Unmarshal(summaryJSON, &run.Summary); err != nil {
			return nil, fmt.Errorf("failed to unmarshal settlement summary: %w", err)
		}
	}

	return &run, nil
}
