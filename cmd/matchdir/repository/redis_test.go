package repository

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/lyzr/matchdir/cmd/matchdir/models"
	"github.com/lyzr/matchdir/common/logger"
	rediscommon "github.com/lyzr/matchdir/common/redis"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	return NewRedisStore(rediscommon.NewClient(rdb, logger.Discard()), "test"), mr
}

func TestRedisStore(t *testing.T) {
	runStoreSuite(t, func(t *testing.T) Store {
		store, _ := newTestRedisStore(t)
		return store
	})
}

func TestRedisStore_KeyLayout(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()

	id, err := store.Create(ctx, "match-name", models.DefaultState)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	assert.Equal(t, "match-name", mr.HGet("test:match:1", "name"))
	assert.Equal(t, models.DefaultState, mr.HGet("test:match:1", "state"))

	order, err := mr.List("test:matches")
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, order)

	seq, err := mr.Get("test:matches:seq")
	require.NoError(t, err)
	assert.Equal(t, "1", seq)
}

func TestRedisStore_UpdateDoesNotCreateMissingMatch(t *testing.T) {
	store, mr := newTestRedisStore(t)

	err := store.UpdateState(context.Background(), 7, movedState)
	assert.ErrorIs(t, err, ErrMatchNotFound)
	assert.False(t, mr.Exists("test:match:7"))
}

func TestRedisStore_BackendFault(t *testing.T) {
	store, mr := newTestRedisStore(t)
	mr.Close()

	_, err := store.GetByID(context.Background(), 1)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMatchNotFound)
}
