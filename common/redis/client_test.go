package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/lyzr/matchdir/common/logger"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	c, err := Dial(context.Background(), mr.Addr(), "", 0, logger.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	return c, mr
}

func TestDial_Unreachable(t *testing.T) {
	_, err := Dial(context.Background(), "127.0.0.1:1", "", 0, logger.Discard())
	assert.ErrorContains(t, err, "failed to ping redis")
}

func TestIncrement(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		got, err := c.Increment(ctx, "seq")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestGetAllHash(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	_, err := c.GetAllHash(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	mr.HSet("h", "a", "1", "b", "2")
	fields, err := c.GetAllHash(ctx, "h")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, fields)
}

func TestGetHashFieldMultiple_SkipsMissing(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	mr.HSet("h1", "name", "one")
	mr.HSet("h2", "other", "x")

	got, err := c.GetHashFieldMultiple(ctx, []string{"h1", "h2", "h3"}, "name")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"h1": "one"}, got)

	empty, err := c.GetHashFieldMultiple(ctx, nil, "name")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestTxPipeline(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	pipe := c.NewTxPipeline()
	pipe.SetHash(ctx, "h", map[string]interface{}{"name": "n"})
	pipe.PushToList(ctx, "l", "1", "2")
	require.NoError(t, pipe.Exec(ctx))

	assert.Equal(t, "n", mr.HGet("h", "name"))

	items, err := c.ListRange(ctx, "l", 0, -1)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, items)
}

func TestRunScript(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	script := redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
  return 0
end
redis.call("HSET", KEYS[1], "v", ARGV[1])
return 1
`)

	n, err := c.RunScript(ctx, script, []string{"h"}, "x")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
	assert.False(t, mr.Exists("h"))

	mr.HSet("h", "v", "old")
	n, err = c.RunScript(ctx, script, []string{"h"}, "new")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, "new", mr.HGet("h", "v"))
}
