package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/example/novalearn/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	s := miniredis.RunT(t)
	store, err := NewRedisStore("redis://"+s.Addr(), ttl)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, s
}

func TestNewRedisStore(t *testing.T) {
	store, _ := setupTestRedis(t, 0)
	assert.NoError(t, store.Ping(context.Background()))

	_, err := NewRedisStore("not a url", 0)
	assert.Error(t, err)
}

func TestRedisStore_SaveLoadDelete(t *testing.T) {
	store, s := setupTestRedis(t, time.Hour)
	ctx := context.Background()

	_, err := store.Load(ctx, "u1")
	require.ErrorIs(t, err, ErrNotFound)

	snap := models.ProgressionSnapshot{TotalXP: 2100, Streak: 2, CompletedItems: []string{"case:mi-01"}}
	require.NoError(t, store.Save(ctx, "u1", snap))

	assert.True(t, s.Exists("progress:u1"))
	assert.Equal(t, time.Hour, s.TTL("progress:u1"))

	got, err := store.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, 2100, got.TotalXP)
	assert.Equal(t, []string{"case:mi-01"}, got.CompletedItems)

	require.NoError(t, store.Delete(ctx, "u1"))
	_, err = store.Load(ctx, "u1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_Expiry(t *testing.T) {
	store, s := setupTestRedis(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "u1", models.ProgressionSnapshot{TotalXP: 10}))
	s.FastForward(2 * time.Minute)

	_, err := store.Load(ctx, "u1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_CorruptBlob(t *testing.T) {
	store, s := setupTestRedis(t, 0)
	require.NoError(t, s.Set("progress:u1", "{not json"))

	_, err := store.Load(context.Background(), "u1")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}
