package repository

import (
	"context"
	"sync"

	"github.com/lyzr/matchdir/cmd/matchdir/models"
)

// MemoryStore keeps matches in process memory
type MemoryStore struct {
	mu      sync.RWMutex
	order   []int64
	matches map[int64]*models.Match
	lastID  int64
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		matches: make(map[int64]*models.Match),
	}
}

// List returns summaries in creation order
func (s *MemoryStore) List(ctx context.Context) ([]models.MatchSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]models.MatchSummary, 0, len(s.order))
	for _, id := range s.order {
		summaries = append(summaries, s.matches[id].Summary())
	}
	return summaries, nil
}

// Create allocates the next id and stores the match
func (s *MemoryStore) Create(ctx context.Context, name, state string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastID++
	id := s.lastID
	s.matches[id] = &models.Match{ID: id, Name: name, State: state}
	s.order = append(s.order, id)

	return id, nil
}

// GetByID returns a copy of the stored match
func (s *MemoryStore) GetByID(ctx context.Context, id int64) (*models.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	match, ok := s.matches[id]
	if !ok {
		return nil, ErrMatchNotFound
	}

	cp := *match
	return &cp, nil
}

// UpdateState overwrites the state field only
func (s *MemoryStore) UpdateState(ctx context.Context, id int64, state string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	match, ok := s.matches[id]
	if !ok {
		return ErrMatchNotFound
	}

	match.State = state
	return nil
}
