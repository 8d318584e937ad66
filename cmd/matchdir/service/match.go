package service

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/lyzr/matchdir/cmd/matchdir/models"
	"github.com/lyzr/matchdir/cmd/matchdir/repository"
	"github.com/lyzr/matchdir/common/logger"
)

// ErrInvalidMatch is returned when match input breaks a domain rule
var ErrInvalidMatch = errors.New("invalid match")

// MatchService handles match operations
type MatchService struct {
	repo repository.Store
	log  *logger.Logger
}

// NewMatchService creates a new match service
func NewMatchService(repo repository.Store, log *logger.Logger) *MatchService {
	return &MatchService{
		repo: repo,
		log:  log,
	}
}

// ListMatches lists every match in creation order
func (s *MatchService) ListMatches(ctx context.Context) ([]models.MatchSummary, error) {
	summaries, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}

	return summaries, nil
}

// CreateMatch stores a new match at the starting position and returns its id
func (s *MatchService) CreateMatch(ctx context.Context, name string) (int64, error) {
	if n := utf8.RuneCountInString(name); n > models.MaxNameLength {
		return 0, fmt.Errorf("%w: name is %d characters, limit is %d", ErrInvalidMatch, n, models.MaxNameLength)
	}

	id, err := s.repo.Create(ctx, name, models.DefaultState)
	if err != nil {
		return 0, fmt.Errorf("failed to create match: %w", err)
	}

	s.log.WithMatchID(id).Info("created match", "name", name)

	return id, nil
}

// GetMatch retrieves a match by id
func (s *MatchService) GetMatch(ctx context.Context, id int64) (*models.Match, error) {
	match, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get match %d: %w", id, err)
	}

	return match, nil
}

// UpdateState overwrites the state of a match; last write wins
func (s *MatchService) UpdateState(ctx context.Context, id int64, state string) error {
	if err := s.repo.UpdateState(ctx, id, state); err != nil {
		return fmt.Errorf("failed to update match %d: %w", id, err)
	}

	s.log.WithMatchID(id).Info("updated match state", "state", state)

	return nil
}
