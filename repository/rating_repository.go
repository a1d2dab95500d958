package repository

import (
	"context"
	"fmt"

	"gaznger/database"
	"gaznger/models"
)

// RatingRepository implements the service.RatingRepository interface
type RatingRepository struct {
	q queryable
}

// NewRatingRepository creates a new rating repository
func NewRatingRepository(db *database.DB) *RatingRepository {
	return &RatingRepository{q: db.Pool}
}

// newRatingRepositoryWithTx creates a new rating repository with a transaction
func newRatingRepositoryWithTx(tx queryable) *RatingRepository {
	return &RatingRepository{q: tx}
}

// Create creates a new rating
func (r *RatingRepository) Create(ctx context.Context, rating *models.Rating) error {
	query := `
		INSERT INTO ratings (user_id, station_id, order_id, score, comment)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		rating.UserID,
		rating.StationID,
		rating.OrderID,
		rating.Score,
		rating.Comment,
	).Scan(&rating.ID, &rating.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create rating for station %d: %w", rating.StationID, err)
	}

	return nil
}

// AverageForStation computes the average score across a station's ratings.
// Returns 0 when the station has no ratings.
func (r *RatingRepository) AverageForStation(ctx context.Context, stationID int64) (float64, error) {
	var avg float64
	err := r.q.QueryRow(ctx,
		`SELECT COALESCE(AVG(score), 0) FROM ratings WHERE station_id = $1`,
		stationID,
	).Scan(&avg)
	if err != nil {
		return 0, fmt.Errorf("failed to average ratings for station %d: %w", stationID, err)
	}
	return avg, nil
}
