package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/lyzr/matchdir/cmd/matchdir/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const movedState = "rnbqkbnr/pppppppp/8/8/8/P7/1PPPPPPP/RNBQKBNR b KQkq -"

// runStoreSuite checks the behavior every Store implementation must share.
// newStore must return an empty store.
func runStoreSuite(t *testing.T, newStore func(t *testing.T) Store) {
	t.Run("empty list", func(t *testing.T) {
		store := newStore(t)

		summaries, err := store.List(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, summaries)
		assert.Empty(t, summaries)
	})

	t.Run("create then get", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		id, err := store.Create(ctx, "match-name", models.DefaultState)
		require.NoError(t, err)

		match, err := store.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, &models.Match{ID: id, Name: "match-name", State: models.DefaultState}, match)
	})

	t.Run("list keeps creation order", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		id1, err := store.Create(ctx, "match 1", models.DefaultState)
		require.NoError(t, err)
		id2, err := store.Create(ctx, "match 2", models.DefaultState)
		require.NoError(t, err)

		summaries, err := store.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []models.MatchSummary{
			{ID: id1, Name: "match 1"},
			{ID: id2, Name: "match 2"},
		}, summaries)
	})

	t.Run("update state leaves id and name", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		id, err := store.Create(ctx, "match-name", models.DefaultState)
		require.NoError(t, err)

		require.NoError(t, store.UpdateState(ctx, id, movedState))

		match, err := store.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, id, match.ID)
		assert.Equal(t, "match-name", match.Name)
		assert.Equal(t, movedState, match.State)
	})

	t.Run("last write wins", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		id, err := store.Create(ctx, "m", models.DefaultState)
		require.NoError(t, err)

		require.NoError(t, store.UpdateState(ctx, id, "first"))
		require.NoError(t, store.UpdateState(ctx, id, "second"))

		match, err := store.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "second", match.State)
	})

	t.Run("missing id is not found", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		_, err := store.GetByID(ctx, 404)
		assert.ErrorIs(t, err, ErrMatchNotFound)

		err = store.UpdateState(ctx, 404, movedState)
		assert.ErrorIs(t, err, ErrMatchNotFound)
	})

	t.Run("ids are unique and increasing", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		seen := make(map[int64]bool)
		var last int64
		for i := 0; i < 50; i++ {
			id, err := store.Create(ctx, fmt.Sprintf("match %d", i), models.DefaultState)
			require.NoError(t, err)
			assert.False(t, seen[id], "id %d reused", id)
			assert.Greater(t, id, last)
			seen[id] = true
			last = id
		}

		summaries, err := store.List(ctx)
		require.NoError(t, err)
		assert.Len(t, summaries, 50)
	})
}
