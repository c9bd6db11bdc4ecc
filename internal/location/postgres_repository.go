package location

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
// A unique index on (owner_id, lower(city), lower(country)) backs the
// duplicate check.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL location repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const locationColumns = `
	id, owner_id, name, city, country, lat, lon,
	is_default, sort_order, created_at, updated_at
`

// GetByOwnerAndID retrieves a location by owner ID and location ID.
func (r *PostgresRepository) GetByOwnerAndID(ctx context.Context, ownerID, locationID string) (*SavedLocation, error) {
	query := `SELECT ` + locationColumns + ` FROM saved_locations WHERE id = $1 AND owner_id = $2`
	return r.scanLocation(r.pool.QueryRow(ctx, query, locationID, ownerID))
}

// ListByOwner retrieves all locations for an owner.
func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string) ([]*SavedLocation, error) {
	query := `
		SELECT ` + locationColumns + `
		FROM saved_locations
		WHERE owner_id = $1
		ORDER BY sort_order ASC, created_at ASC
	`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var locations []*SavedLocation
	for rows.Next() {
		loc, err := r.scanLocation(rows)
		if err != nil {
			return nil, err
		}
		locations = append(locations, loc)
	}
	return locations, rows.Err()
}

func (r *PostgresRepository) scanLocation(row pgx.Row) (*SavedLocation, error) {
	var loc SavedLocation
	err := row.Scan(
		&loc.ID,
		&loc.OwnerID,
		&loc.Name,
		&loc.City,
		&loc.Country,
		&loc.Lat,
		&loc.Lon,
		&loc.IsDefault,
		&loc.Order,
		&loc.CreatedAt,
		&loc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLocationNotFound
		}
		return nil, err
	}
	return &loc, nil
}

// Create creates a new location.
func (r *PostgresRepository) Create(ctx context.Context, loc *SavedLocation) error {
	query := `
		INSERT INTO saved_locations (
			id, owner_id, name, city, country, lat, lon,
			is_default, sort_order, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.pool.Exec(ctx, query,
		loc.ID,
		loc.OwnerID,
		loc.Name,
		loc.City,
		loc.Country,
		loc.Lat,
		loc.Lon,
		loc.IsDefault,
		loc.Order,
		loc.CreatedAt,
		loc.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateCity
		}
		return err
	}
	return nil
}

// Update updates an existing location.
func (r *PostgresRepository) Update(ctx context.Context, loc *SavedLocation) error {
	query := `
		UPDATE saved_locations SET
			name = $2,
			is_default = $3,
			sort_order = $4,
			updated_at = $5
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		loc.ID,
		loc.Name,
		loc.IsDefault,
		loc.Order,
		loc.UpdatedAt,
	)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return ErrLocationNotFound
	}
	return nil
}

// Delete deletes a location by ID.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM saved_locations WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

// ClearDefault unsets the default flag on an owner's other locations.
func (r *PostgresRepository) ClearDefault(ctx context.Context, ownerID, exceptID string) error {
	query := `UPDATE saved_locations SET is_default = false WHERE owner_id = $1 AND id <> $2`
	_, err := r.pool.Exec(ctx, query, ownerID, exceptID)
	return err
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
