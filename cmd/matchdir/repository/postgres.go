package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/lyzr/matchdir/cmd/matchdir/models"
	"github.com/lyzr/matchdir/common/db"
)

// PostgresStore handles database operations for matches
type PostgresStore struct {
	db *db.DB
}

// NewPostgresStore creates a new Postgres-backed store
func NewPostgresStore(db *db.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// List retrieves all match summaries ordered by id (creation order)
func (r *PostgresStore) List(ctx context.Context) ([]models.MatchSummary, error) {
	query := `
		SELECT id, name
		FROM matches
		ORDER BY id ASC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	defer rows.Close()

	summaries := make([]models.MatchSummary, 0)
	for rows.Next() {
		var s models.MatchSummary
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		summaries = append(summaries, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating matches: %w", err)
	}

	return summaries, nil
}

// Create inserts a new match; the id comes from the BIGSERIAL sequence
func (r *PostgresStore) Create(ctx context.Context, name, state string) (int64, error) {
	query := `
		INSERT INTO matches (name, state)
		VALUES ($1, $2)
		RETURNING id
	`

	var id int64
	if err := r.db.QueryRow(ctx, query, name, state).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to create match: %w", err)
	}

	return id, nil
}

// GetByID retrieves a match by id
func (r *PostgresStore) GetByID(ctx context.Context, id int64) (*models.Match, error) {
	query := `
		SELECT id, name, state
		FROM matches
		WHERE id = $1
	`

	match := &models.Match{}
	err := r.db.QueryRow(ctx, query, id).Scan(&match.ID, &match.Name, &match.State)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrMatchNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get match: %w", err)
	}

	return match, nil
}

// UpdateState overwrites the state column of one row
func (r *PostgresStore) UpdateState(ctx context.Context, id int64, state string) error {
	query := `UPDATE matches SET state = $2 WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id, state)
	if err != nil {
		return fmt.Errorf("failed to update match state: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrMatchNotFound
	}

	return nil
}
