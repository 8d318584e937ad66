package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lyzr/matchdir/cmd/matchdir/models"
	"github.com/lyzr/matchdir/common/cache"
	"github.com/lyzr/matchdir/common/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingStore records how often reads reach the backing store
type countingStore struct {
	*MemoryStore
	gets int
}

func (s *countingStore) GetByID(ctx context.Context, id int64) (*models.Match, error) {
	s.gets++
	return s.MemoryStore.GetByID(ctx, id)
}

// stallingStore pauses GetByID after reading until release is closed
type stallingStore struct {
	*MemoryStore
	read    chan struct{}
	release chan struct{}
}

func (s *stallingStore) GetByID(ctx context.Context, id int64) (*models.Match, error) {
	match, err := s.MemoryStore.GetByID(ctx, id)
	close(s.read)
	<-s.release
	return match, err
}

// brokenCache fails every call
type brokenCache struct{}

func (brokenCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("cache down")
}
func (brokenCache) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("cache down")
}
func (brokenCache) Delete(context.Context, string) error { return errors.New("cache down") }
func (brokenCache) Close() error { return nil }

func newCached(t *testing.T) (*CachedStore, *countingStore) {
	t.Helper()
	backing := &countingStore{MemoryStore: NewMemoryStore()}
	c := cache.NewMemoryCache(logger.Discard())
	t.Cleanup(func() { c.Close() })
	return NewCachedStore(backing, c, time.Minute, logger.Discard()), backing
}

func TestCachedStore(t *testing.T) {
	runStoreSuite(t, func(t *testing.T) Store {
		store, _ := newCached(t)
		return store
	})
}

func TestCachedStore_RepeatedGetHitsCache(t *testing.T) {
	store, backing := newCached(t)
	ctx := context.Background()

	id, err := store.Create(ctx, "m", models.DefaultState)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		match, err := store.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "m", match.Name)
	}
	assert.Equal(t, 1, backing.gets)
}

func TestCachedStore_UpdateInvalidates(t *testing.T) {
	store, backing := newCached(t)
	ctx := context.Background()

	id, err := store.Create(ctx, "m", models.DefaultState)
	require.NoError(t, err)
	_, err = store.GetByID(ctx, id)
	require.NoError(t, err)

	require.NoError(t, store.UpdateState(ctx, id, movedState))

	match, err := store.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, movedState, match.State)
	assert.Equal(t, 2, backing.gets)
}

func TestCachedStore_NotFoundIsNotCached(t *testing.T) {
	store, backing := newCached(t)
	ctx := context.Background()

	_, err := store.GetByID(ctx, 1)
	assert.ErrorIs(t, err, ErrMatchNotFound)

	id, err := store.Create(ctx, "m", models.DefaultState)
	require.NoError(t, err)
	require.Equal(t, int64(1), id)

	match, err := store.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "m", match.Name)
	assert.Equal(t, 2, backing.gets)
}

func TestCachedStore_CacheFaultsFallBackToStore(t *testing.T) {
	backing := &countingStore{MemoryStore: NewMemoryStore()}
	store := NewCachedStore(backing, brokenCache{}, time.Minute, logger.Discard())
	ctx := context.Background()

	id, err := store.Create(ctx, "m", models.DefaultState)
	require.NoError(t, err)

	match, err := store.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "m", match.Name)

	assert.NoError(t, store.UpdateState(ctx, id, movedState))
}

func TestCachedStore_UpdateDuringMissIsNotOverwritten(t *testing.T) {
	mem := NewMemoryStore()
	c := cache.NewMemoryCache(logger.Discard())
	t.Cleanup(func() { c.Close() })
	ctx := context.Background()

	id, err := mem.Create(ctx, "m", models.DefaultState)
	require.NoError(t, err)

	slow := &stallingStore{MemoryStore: mem, read: make(chan struct{}), release: make(chan struct{})}
	store := NewCachedStore(slow, c, time.Minute, logger.Discard())

	done := make(chan *models.Match)
	go func() {
		match, err := store.GetByID(ctx, id)
		assert.NoError(t, err)
		done <- match
	}()

	<-slow.read
	require.NoError(t, store.UpdateState(ctx, id, movedState))
	close(slow.release)

	stale := <-done
	assert.Equal(t, models.DefaultState, stale.State)

	// the slow read must not have refilled the cache with the old state
	fresh := NewCachedStore(mem, c, time.Minute, logger.Discard())
	match, err := fresh.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, movedState, match.State)
}
