package repository

import (
	"context"
	"errors"

	"github.com/lyzr/matchdir/cmd/matchdir/models"
)

// ErrMatchNotFound is returned when no match has the requested id.
// Any other error from a Store is a backend fault.
var ErrMatchNotFound = errors.New("match not found")

// Store owns all match records
type Store interface {
	// List returns summaries of every match in creation order; never nil
	List(ctx context.Context) ([]models.MatchSummary, error)

	// Create persists a new match and returns its freshly allocated id
	Create(ctx context.Context, name, state string) (int64, error)

	// GetByID returns the full match or ErrMatchNotFound
	GetByID(ctx context.Context, id int64) (*models.Match, error)

	// UpdateState overwrites the state of an existing match or returns ErrMatchNotFound
	UpdateState(ctx context.Context, id int64, state string) error
}
