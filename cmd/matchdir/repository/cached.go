package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/lyzr/matchdir/cmd/matchdir/models"
	"github.com/lyzr/matchdir/common/cache"
	"github.com/lyzr/matchdir/common/logger"
)

// CachedStore is a read-through cache in front of another Store.
// Cache faults never fail a request; the backing store stays authoritative.
// Invalidation is process-local, so it is only coherent for a single instance.
type CachedStore struct {
	next  Store
	cache cache.Cache
	ttl   time.Duration
	log   *logger.Logger

	// mu guards generations and orders cache fills against invalidations
	mu          sync.Mutex
	generations map[int64]uint64
}

// NewCachedStore wraps next with a read-through cache for single-match reads
func NewCachedStore(next Store, c cache.Cache, ttl time.Duration, log *logger.Logger) *CachedStore {
	return &CachedStore{
		next:        next,
		cache:       c,
		ttl:         ttl,
		log:         log,
		generations: make(map[int64]uint64),
	}
}

func cacheKey(id int64) string {
	return fmt.Sprintf("match:%d", id)
}

// List always goes to the backing store
func (s *CachedStore) List(ctx context.Context) ([]models.MatchSummary, error) {
	return s.next.List(ctx)
}

// Create always goes to the backing store
func (s *CachedStore) Create(ctx context.Context, name, state string) (int64, error) {
	return s.next.Create(ctx, name, state)
}

// GetByID serves from cache when possible and fills it on a miss
func (s *CachedStore) GetByID(ctx context.Context, id int64) (*models.Match, error) {
	key := cacheKey(id)

	raw, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.log.Warn("cache get failed", "key", key, "error", err)
	}
	if ok {
		var match models.Match
		if err := json.Unmarshal(raw, &match); err == nil {
			return &match, nil
		}
		s.log.Warn("dropping undecodable cache entry", "key", key)
		_ = s.cache.Delete(ctx, key)
	}

	gen := s.generation(id)

	match, err := s.next.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.fill(ctx, id, gen, match)
	return match, nil
}

func (s *CachedStore) generation(id int64) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generations[id]
}

// fill caches match unless an update landed after the read started
func (s *CachedStore) fill(ctx context.Context, id int64, gen uint64, match *models.Match) {
	raw, err := json.Marshal(match)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generations[id] != gen {
		s.log.Debug("skipping stale cache fill", "match_id", id)
		return
	}

	key := cacheKey(id)
	if err := s.cache.Set(ctx, key, raw, s.ttl); err != nil {
		s.log.Warn("cache set failed", "key", key, "error", err)
	}
}

// UpdateState writes through and invalidates the cached entry
func (s *CachedStore) UpdateState(ctx context.Context, id int64, state string) error {
	if err := s.next.UpdateState(ctx, id, state); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.generations[id]++
	if err := s.cache.Delete(ctx, cacheKey(id)); err != nil {
		s.log.Warn("cache invalidation failed", "match_id", id, "error", err)
	}

	return nil
}
