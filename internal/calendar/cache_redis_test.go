package calendar

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisCache(t *testing.T, ttl time.Duration) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisCache(client, ttl), mr
}

func TestRedisCacheRoundTrip(t *testing.T) {
	c, mr := newRedisCache(t, 5*time.Minute)
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "cal|2026-10-19")
	require.NoError(t, err)
	assert.False(t, ok)

	entry := Entry{
		Events:    []Event{{ID: "ev-1", Start: day, End: day.Add(time.Hour), Summary: "Supervision"}},
		FetchedAt: day,
	}
	require.NoError(t, c.Set(ctx, "cal|2026-10-19", entry))

	got, ok, err := c.Get(ctx, "cal|2026-10-19")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "ev-1", got.Events[0].ID)
	assert.True(t, got.FetchedAt.Equal(day))

	assert.Equal(t, 5*time.Minute, mr.TTL(redisKeyPrefix+"cal|2026-10-19"))

	mr.FastForward(6 * time.Minute)
	_, ok, err = c.Get(ctx, "cal|2026-10-19")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCacheClearOnlyTouchesMirrorKeys(t *testing.T) {
	c, mr := newRedisCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, mr.Set("session:abc", "keep"))
	require.NoError(t, c.Set(ctx, "a", Entry{FetchedAt: day}))
	require.NoError(t, c.Set(ctx, "b", Entry{FetchedAt: day}))

	n, err := c.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, c.Delete(ctx, "a"))
	n, _ = c.Len(ctx)
	assert.Equal(t, 1, n)

	require.NoError(t, c.Clear(ctx))
	n, _ = c.Len(ctx)
	assert.Equal(t, 0, n)
	assert.True(t, mr.Exists("session:abc"))
}

func TestRedisCacheCorruptValueIsMiss(t *testing.T) {
	c, mr := newRedisCache(t, time.Minute)
	require.NoError(t, mr.Set(redisKeyPrefix+"bad", "{not json"))

	_, ok, err := c.Get(context.Background(), "bad")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMirrorOverRedis(t *testing.T) {
	c, _ := newRedisCache(t, 5*time.Minute)
	feed := &scriptedFeed{events: []Event{{ID: "ev-1", Start: day, End: day.Add(time.Hour)}}}
	clock := &fakeClock{now: day}

	m := NewMirror(feed, WithCache(c), WithClock(clock))
	ctx := context.Background()

	_, err := m.EventsForDay(ctx, "cal", day)
	require.NoError(t, err)
	events, err := m.EventsForDay(ctx, "cal", day)
	require.NoError(t, err)

	assert.EqualValues(t, 1, feed.calls.Load())
	assert.Equal(t, "ev-1", events[0].ID)

	st, err := m.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Entries)
	assert.Zero(t, st.Capacity)
}
