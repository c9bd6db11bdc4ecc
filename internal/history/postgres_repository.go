package history

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository. The
// readings table is append-only; retention is handled out of band.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL sample repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Append stores one sample for a location.
func (r *PostgresRepository) Append(ctx context.Context, city string, sample Sample) error {
	query := `
		INSERT INTO readings (
			city, temperature, humidity, co2, pm25, aqi, wind_speed, recorded_at
		) VALUES (lower($1), $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.pool.Exec(ctx, query,
		city,
		sample.Temperature,
		sample.Humidity,
		sample.CO2,
		sample.PM25,
		sample.AQI,
		sample.WindSpeed,
		sample.Timestamp,
	)
	return err
}

// Recent retrieves up to limit samples for a location, oldest first.
func (r *PostgresRepository) Recent(ctx context.Context, city string, limit int) ([]Sample, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT temperature, humidity, co2, pm25, aqi, wind_speed, recorded_at
		FROM (
			SELECT temperature, humidity, co2, pm25, aqi, wind_speed, recorded_at
			FROM readings
			WHERE city = lower($1)
			ORDER BY recorded_at DESC
			LIMIT $2
		) recent
		ORDER BY recorded_at ASC
	`

	rows, err := r.pool.Query(ctx, query, city, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []Sample
	for rows.Next() {
		var s Sample
		err := rows.Scan(
			&s.Temperature,
			&s.Humidity,
			&s.CO2,
			&s.PM25,
			&s.AQI,
			&s.WindSpeed,
			&s.Timestamp,
		)
		if err != nil {
			return nil, err
		}
		samples = append(samples, s)
	}

	return samples, rows.Err()
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
