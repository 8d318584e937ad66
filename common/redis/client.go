package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Logger interface for logging
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
}

// ErrNotFound is returned when a key or hash does not exist
var ErrNotFound = fmt.Errorf("redis: key not found")

// Client wraps redis.Client with common operations and instrumentation
type Client struct {
	redis  *redis.Client
	logger Logger
}

// NewClient creates a new Redis client wrapper
func NewClient(redisClient *redis.Client, logger Logger) *Client {
	return &Client{
		redis:  redisClient,
		logger: logger,
	}
}

// Dial creates a raw client and verifies the connection
func Dial(ctx context.Context, addr, password string, db int, logger Logger) (*Client, error) {
	raw := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	c := NewClient(raw, logger)
	if err := c.Ping(ctx); err != nil {
		_ = raw.Close()
		return nil, err
	}

	logger.Info("redis connected", "addr", addr, "db", db)
	return c, nil
}

// Ping checks connectivity
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := c.redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}
	return nil
}

// Close closes the underlying connection pool
func (c *Client) Close() error {
	return c.redis.Close()
}

// Increment increments a counter and returns the new value
func (c *Client) Increment(ctx context.Context, key string) (int64, error) {
	val, err := c.redis.Incr(ctx, key).Result()
	if err != nil {
		c.logger.Error("redis INCR failed", "key", key, "error", err)
		return 0, fmt.Errorf("failed to increment key %s: %w", key, err)
	}
	c.logger.Debug("redis INCR", "key", key, "value", val)
	return val, nil
}

// GetAllHash retrieves all fields and values of a hash.
// A missing hash returns ErrNotFound.
func (c *Client) GetAllHash(ctx context.Context, key string) (map[string]string, error) {
	val, err := c.redis.HGetAll(ctx, key).Result()
	if err != nil {
		c.logger.Error("redis HGETALL failed", "key", key, "error", err)
		return nil, fmt.Errorf("failed to get all hash fields %s: %w", key, err)
	}
	if len(val) == 0 {
		c.logger.Debug("redis HGETALL key not found", "key", key)
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	c.logger.Debug("redis HGETALL", "key", key, "field_count", len(val))
	return val, nil
}

// GetHashFieldMultiple reads one field from many hashes in a single round-trip.
// Hashes without the field are omitted from the result.
func (c *Client) GetHashFieldMultiple(ctx context.Context, keys []string, field string) (map[string]string, error) {
	if len(keys) == 0 {
		return make(map[string]string), nil
	}

	pipe := c.redis.Pipeline()
	cmds := make([]*redis.StringCmd, len(keys))

	for i, key := range keys {
		cmds[i] = pipe.HGet(ctx, key, field)
	}

	_, err := pipe.Exec(ctx)
	if err != nil && err != redis.Nil {
		c.logger.Error("redis pipeline HGET failed", "key_count", len(keys), "error", err)
		return nil, fmt.Errorf("failed to get hash field %s from %d keys: %w", field, len(keys), err)
	}

	result := make(map[string]string, len(keys))
	for i, cmd := range cmds {
		val, err := cmd.Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			c.logger.Warn("redis HGET failed for key in pipeline", "key", keys[i], "error", err)
			continue
		}
		result[keys[i]] = val
	}

	c.logger.Debug("redis pipeline HGET", "requested", len(keys), "found", len(result))
	return result, nil
}

// ListRange returns list elements between start and stop (inclusive)
func (c *Client) ListRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	val, err := c.redis.LRange(ctx, key, start, stop).Result()
	if err != nil {
		c.logger.Error("redis LRANGE failed", "key", key, "error", err)
		return nil, fmt.Errorf("failed to lrange %s: %w", key, err)
	}
	c.logger.Debug("redis LRANGE", "key", key, "count", len(val))
	return val, nil
}

// Pipeline batches multiple Redis operations inside MULTI/EXEC
type Pipeline struct {
	pipe   redis.Pipeliner
	client *Client
}

// NewTxPipeline creates a transactional pipeline
func (c *Client) NewTxPipeline() *Pipeline {
	return &Pipeline{
		pipe:   c.redis.TxPipeline(),
		client: c,
	}
}

// SetHash queues an HSET of all given fields
func (p *Pipeline) SetHash(ctx context.Context, key string, fields map[string]interface{}) {
	p.pipe.HSet(ctx, key, fields)
}

// PushToList queues an RPUSH
func (p *Pipeline) PushToList(ctx context.Context, key string, values ...interface{}) {
	p.pipe.RPush(ctx, key, values...)
}

// Exec executes all queued operations in the pipeline
func (p *Pipeline) Exec(ctx context.Context) error {
	_, err := p.pipe.Exec(ctx)
	if err != nil {
		p.client.logger.Error("redis pipeline exec failed", "error", err)
		return fmt.Errorf("failed to execute pipeline: %w", err)
	}
	p.client.logger.Debug("redis pipeline executed successfully")
	return nil
}

// RunScript evaluates a Lua script (EVALSHA with EVAL fallback) and returns its integer result
func (c *Client) RunScript(ctx context.Context, script *redis.Script, keys []string, args ...interface{}) (int64, error) {
	val, err := script.Run(ctx, c.redis, keys, args...).Int64()
	if err != nil {
		c.logger.Error("redis script failed", "keys", keys, "error", err)
		return 0, fmt.Errorf("failed to run script on %v: %w", keys, err)
	}
	c.logger.Debug("redis script", "keys", keys, "result", val)
	return val, nil
}
