package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/lyzr/matchdir/cmd/matchdir/models"
	rediscommon "github.com/lyzr/matchdir/common/redis"
	"github.com/redis/go-redis/v9"
)

// updateStateScript writes the state field only when the match hash exists.
// Returns 1 on write, 0 when the match is absent.
var updateStateScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
    return 0
end
redis.call('HSET', KEYS[1], 'state', ARGV[1])
return 1
`)

// RedisStore keeps matches as hashes plus a creation-ordered id list
type RedisStore struct {
	client *rediscommon.Client
	prefix string
}

// NewRedisStore creates a Redis-backed store; all keys start with prefix
func NewRedisStore(client *rediscommon.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) keySeq() string { return s.prefix + ":matches:seq" }
func (s *RedisStore) keyOrder() string { return s.prefix + ":matches" }
func (s *RedisStore) keyMatch(id int64) string { return fmt.Sprintf("%s:match:%d", s.prefix, id) }
func (s *RedisStore) keyMatchRaw(id string) string { return s.prefix + ":match:" + id }

// List returns summaries in creation order
func (s *RedisStore) List(ctx context.Context) ([]models.MatchSummary, error) {
	ids, err := s.client.ListRange(ctx, s.keyOrder(), 0, -1)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.keyMatchRaw(id)
	}

	names, err := s.client.GetHashFieldMultiple(ctx, keys, "name")
	if err != nil {
		return nil, fmt.Errorf("failed to load match names: %w", err)
	}

	summaries := make([]models.MatchSummary, 0, len(ids))
	for i, raw := range ids {
		name, ok := names[keys[i]]
		if !ok {
			continue
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("corrupt match id %q in %s: %w", raw, s.keyOrder(), err)
		}
		summaries = append(summaries, models.MatchSummary{ID: id, Name: name})
	}

	return summaries, nil
}

// Create allocates an id with INCR, then writes the hash and appends to the order list atomically
func (s *RedisStore) Create(ctx context.Context, name, state string) (int64, error) {
	id, err := s.client.Increment(ctx, s.keySeq())
	if err != nil {
		return 0, fmt.Errorf("failed to allocate match id: %w", err)
	}

	pipe := s.client.NewTxPipeline()
	pipe.SetHash(ctx, s.keyMatch(id), map[string]interface{}{
		"name":  name,
		"state": state,
	})
	pipe.PushToList(ctx, s.keyOrder(), id)

	if err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to create match: %w", err)
	}

	return id, nil
}

// GetByID reads the match hash
func (s *RedisStore) GetByID(ctx context.Context, id int64) (*models.Match, error) {
	fields, err := s.client.GetAllHash(ctx, s.keyMatch(id))
	if errors.Is(err, rediscommon.ErrNotFound) {
		return nil, ErrMatchNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get match: %w", err)
	}

	return &models.Match{
		ID:    id,
		Name:  fields["name"],
		State: fields["state"],
	}, nil
}

// UpdateState overwrites the state field if the match exists
func (s *RedisStore) UpdateState(ctx context.Context, id int64, state string) error {
	written, err := s.client.RunScript(ctx, updateStateScript, []string{s.keyMatch(id)}, state)
	if err != nil {
		return fmt.Errorf("failed to update match state: %w", err)
	}

	if written == 0 {
		return ErrMatchNotFound
	}

	return nil
}
