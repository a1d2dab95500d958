package repository

import (
	"context"
	"fmt"
	"math"
	"strings"

	"gaznger/database"
	"gaznger/models"
	"gaznger/service"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// StationRepository implements the service.StationRepository interface
type StationRepository struct {
	q queryable
}

// NewStationRepository creates a new station repository
func NewStationRepository(db *database.DB) *StationRepository {
	return &StationRepository{q: db.Pool}
}

// newStationRepositoryWithTx creates a new station repository with a transaction
func newStationRepositoryWithTx(tx queryable) *StationRepository {
	return &StationRepository{q: tx}
}

const stationColumns = `id, name, address, state, lga, latitude, longitude, rating, verified, created_at, updated_at`

func scanStation(row pgx.Row) (*models.Station, error) {
	var station models.Station
	err := row.Scan(
		&station.ID,
		&station.Name,
		&station.Address,
		&station.State,
		&station.LGA,
		&station.Latitude,
		&station.Longitude,
		&station.Rating,
		&station.Verified,
		&station.CreatedAt,
		&station.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &station, nil
}

// List returns stations matching the filter, fuels populated.
// The radius filter is a degree bounding box: 1 degree of latitude is
// ~111km, longitude shrinks by cos(latitude).
func (r *StationRepository) List(ctx context.Context, filter models.StationFilter) ([]*models.Station, error) {
	var conds []string
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Verified != nil {
		conds = append(conds, "verified = "+arg(*filter.Verified))
	}
	if filter.State != "" {
		conds = append(conds, "state = "+arg(filter.State))
	}
	if filter.LGA != "" {
		conds = append(conds, "lga = "+arg(filter.LGA))
	}
	if filter.Latitude != nil && filter.Longitude != nil && filter.RadiusKM != nil {
		latDiff := *filter.RadiusKM / 111
		lngDiff := *filter.RadiusKM / (111 * math.Cos(*filter.Latitude*math.Pi/180))
		conds = append(conds, "latitude BETWEEN "+arg(*filter.Latitude-latDiff)+" AND "+arg(*filter.Latitude+latDiff))
		conds = append(conds, "longitude BETWEEN "+arg(*filter.Longitude-lngDiff)+" AND "+arg(*filter.Longitude+lngDiff))
	}

	query := `SELECT ` + stationColumns + ` FROM stations`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY name"

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list stations: %w", err)
	}
	defer rows.Close()

	var stations []*models.Station
	for rows.Next() {
		station, err := scanStation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan station: %w", err)
		}
		stations = append(stations, station)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate stations: %w", err)
	}

	for _, station := range stations {
		if err := r.loadFuels(ctx, station); err != nil {
			return nil, err
		}
	}

	return stations, nil
}

// GetByID retrieves a station with its fuels, returning (nil, nil) when absent
func (r *StationRepository) GetByID(ctx context.Context, id int64) (*models.Station, error) {
	query := `SELECT ` + stationColumns + ` FROM stations WHERE id = $1`

	station, err := scanStation(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get station %d: %w", id, err)
	}

	if err := r.loadFuels(ctx, station); err != nil {
		return nil, err
	}

	return station, nil
}

// Create creates a station and its fuel price rows
func (r *StationRepository) Create(ctx context.Context, station *models.Station) error {
	query := `
		INSERT INTO stations (name, address, state, lga, latitude, longitude, verified)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, rating, created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query,
		station.Name,
		station.Address,
		station.State,
		station.LGA,
		station.Latitude,
		station.Longitude,
		station.Verified,
	).Scan(&station.ID, &station.Rating, &station.CreatedAt, &station.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create station %s: %w", station.Name, err)
	}

	for _, fuel := range station.Fuels {
		_, err := r.q.Exec(ctx,
			`INSERT INTO station_fuels (station_id, fuel_type_id, price_per_unit) VALUES ($1, $2, $3)`,
			station.ID, fuel.FuelTypeID, fuel.PricePerUnit.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to add fuel %d to station %d: %w", fuel.FuelTypeID, station.ID, err)
		}
	}

	return nil
}

// UpdateRating sets a station's average rating
func (r *StationRepository) UpdateRating(ctx context.Context, stationID int64, rating float64) error {
	result, err := r.q.Exec(ctx,
		`UPDATE stations SET rating = $1, updated_at = NOW() WHERE id = $2`,
		rating, stationID,
	)
	if err != nil {
		return fmt.Errorf("failed to update rating for station %d: %w", stationID, err)
	}
	if result.RowsAffected() == 0 {
		return service.ErrStationNotFound
	}
	return nil
}

func (r *StationRepository) loadFuels(ctx context.Context, station *models.Station) error {
	query := `
		SELECT sf.fuel_type_id, ft.name, ft.unit, sf.price_per_unit::text
		FROM station_fuels sf
		JOIN fuel_types ft ON ft.id = sf.fuel_type_id
		WHERE sf.station_id = $1
		ORDER BY ft.name
	`

	rows, err := r.q.Query(ctx, query, station.ID)
	if err != nil {
		return fmt.Errorf("failed to load fuels for station %d: %w", station.ID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var fuel models.StationFuel
		var price string
		if err := rows.Scan(&fuel.FuelTypeID, &fuel.FuelName, &fuel.Unit, &price); err != nil {
			return fmt.Errorf("failed to scan station fuel: %w", err)
		}
		fuel.PricePerUnit, err = decimal.NewFromString(price)
		if err != nil {
			return fmt.Errorf("invalid station fuel price: %w", err)
		}
		station.Fuels = append(station.Fuels, fuel)
	}

	return rows.Err()
}
