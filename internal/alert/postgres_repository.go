package alert

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
// Conditions are stored as a JSONB column.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL rule repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const ruleColumns = `
	id, owner_id, name, location, conditions,
	is_active, last_triggered, created_at, updated_at
`

// Get retrieves a rule by ID.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*Rule, error) {
	query := `SELECT ` + ruleColumns + ` FROM alert_rules WHERE id = $1`
	return r.scanRule(r.pool.QueryRow(ctx, query, id))
}

// GetByOwnerAndID retrieves a rule by owner ID and rule ID.
func (r *PostgresRepository) GetByOwnerAndID(ctx context.Context, ownerID, ruleID string) (*Rule, error) {
	query := `SELECT ` + ruleColumns + ` FROM alert_rules WHERE id = $1 AND owner_id = $2`
	return r.scanRule(r.pool.QueryRow(ctx, query, ruleID, ownerID))
}

// ListByOwner retrieves all rules for an owner.
func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string) ([]*Rule, error) {
	query := `SELECT ` + ruleColumns + ` FROM alert_rules WHERE owner_id = $1 ORDER BY created_at DESC`
	return r.queryRules(ctx, query, ownerID)
}

// ListActive retrieves all active rules across owners.
func (r *PostgresRepository) ListActive(ctx context.Context) ([]*Rule, error) {
	query := `SELECT ` + ruleColumns + ` FROM alert_rules WHERE is_active ORDER BY created_at DESC`
	return r.queryRules(ctx, query)
}

func (r *PostgresRepository) queryRules(ctx context.Context, query string, args ...interface{}) ([]*Rule, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []*Rule
	for rows.Next() {
		rule, err := r.scanRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

func (r *PostgresRepository) scanRule(row pgx.Row) (*Rule, error) {
	var rule Rule
	var conditions []byte

	err := row.Scan(
		&rule.ID,
		&rule.OwnerID,
		&rule.Name,
		&rule.Location,
		&conditions,
		&rule.IsActive,
		&rule.LastTriggered,
		&rule.CreatedAt,
		&rule.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRuleNotFound
		}
		return nil, err
	}

	if len(conditions) > 0 {
		if err := json.Unmarshal(conditions, &rule.Conditions); err != nil {
			return nil, fmt.Errorf("unmarshaling conditions: %w", err)
		}
	}

	return &rule, nil
}

// Create creates a new rule.
func (r *PostgresRepository) Create(ctx context.Context, rule *Rule) error {
	conditions, err := json.Marshal(rule.Conditions)
	if err != nil {
		return fmt.Errorf("marshaling conditions: %w", err)
	}

	query := `
		INSERT INTO alert_rules (
			id, owner_id, name, location, conditions,
			is_active, last_triggered, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = r.pool.Exec(ctx, query,
		rule.ID,
		rule.OwnerID,
		rule.Name,
		rule.Location,
		conditions,
		rule.IsActive,
		rule.LastTriggered,
		rule.CreatedAt,
		rule.UpdatedAt,
	)
	return err
}

// Update updates an existing rule.
func (r *PostgresRepository) Update(ctx context.Context, rule *Rule) error {
	conditions, err := json.Marshal(rule.Conditions)
	if err != nil {
		return fmt.Errorf("marshaling conditions: %w", err)
	}

	query := `
		UPDATE alert_rules SET
			name = $2,
			location = $3,
			conditions = $4,
			is_active = $5,
			last_triggered = $6,
			updated_at = $7
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		rule.ID,
		rule.Name,
		rule.Location,
		conditions,
		rule.IsActive,
		rule.LastTriggered,
		rule.UpdatedAt,
	)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return ErrRuleNotFound
	}

	return nil
}

// Delete deletes a rule by ID.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM alert_rules WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
