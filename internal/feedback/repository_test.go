package feedback

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisRepo(t *testing.T) (*RedisRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisRepository(client), mr
}

func entryAt(msg string, at time.Time) Entry {
	return Entry{ID: uuid.New(), Name: "Ana", Email: "ana@example.com", Message: msg, CreatedAt: at}
}

func TestRedisRepositoryRoundTrip(t *testing.T) {
	repo, _ := newRedisRepo(t)
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	first := entryAt("first", base)
	second := entryAt("second", base.Add(time.Minute))
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	recent, err := repo.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "second", recent[0].Message)
	assert.Equal(t, first.ID, recent[1].ID)
	assert.True(t, first.CreatedAt.Equal(recent[1].CreatedAt))

	got, err := repo.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "first", got.Message)

	_, err = repo.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)

	none, err := repo.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRedisRepositoryTrims(t *testing.T) {
	repo, mr := newRedisRepo(t)
	ctx := context.Background()
	for i := 0; i < MaxStoredEntries+5; i++ {
		require.NoError(t, repo.Create(ctx, entryAt("m", time.Now())))
	}

	items, err := mr.List(redisEntriesKey)
	require.NoError(t, err)
	assert.Len(t, items, MaxStoredEntries)
}

func TestRedisRepositoryCorruptEntry(t *testing.T) {
	repo, mr := newRedisRepo(t)
	_, err := mr.Lpush(redisEntriesKey, "{not json")
	require.NoError(t, err)

	_, err = repo.Recent(context.Background(), 5)
	assert.Error(t, err)
}
