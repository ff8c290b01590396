package calendar

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type scriptedFeed struct {
	calls  atomic.Int32
	fail   atomic.Bool
	events []Event
}

func (f *scriptedFeed) ListEvents(_ context.Context, _ string, _, _ time.Time) ([]Event, error) {
	f.calls.Add(1)
	if f.fail.Load() {
		return nil, errors.New("upstream 503")
	}
	return f.events, nil
}

var day = time.Date(2026, 10, 19, 15, 30, 0, 0, time.UTC)

func newTestMirror(feed Feed) (*Mirror, *fakeClock) {
	clock := &fakeClock{now: day}
	return NewMirror(feed, WithClock(clock), WithTTL(5*time.Minute)), clock
}

func TestMirrorServesFromCacheWithinTTL(t *testing.T) {
	feed := &scriptedFeed{events: []Event{{ID: "ev-1", Start: day, End: day.Add(time.Hour)}}}
	m, clock := newTestMirror(feed)
	ctx := context.Background()

	events, err := m.EventsForDay(ctx, "cal", day)
	require.NoError(t, err)
	assert.Len(t, events, 1)

	clock.Advance(4 * time.Minute)
	_, err = m.EventsForDay(ctx, "cal", day)
	require.NoError(t, err)
	assert.EqualValues(t, 1, feed.calls.Load())

	clock.Advance(2 * time.Minute)
	_, err = m.EventsForDay(ctx, "cal", day)
	require.NoError(t, err)
	assert.EqualValues(t, 2, feed.calls.Load())

	st, err := m.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, st.Hits)
	assert.EqualValues(t, 2, st.Misses)
	assert.Equal(t, 1, st.Entries)
}

func TestMirrorNeverCachesFailures(t *testing.T) {
	feed := &scriptedFeed{}
	feed.fail.Store(true)
	m, _ := newTestMirror(feed)
	ctx := context.Background()

	_, err := m.EventsForDay(ctx, "cal", day)
	require.ErrorIs(t, err, ErrUnavailable)

	// sem avançar o relógio: a próxima consulta tenta de novo
	_, err = m.EventsForDay(ctx, "cal", day)
	require.ErrorIs(t, err, ErrUnavailable)
	assert.EqualValues(t, 2, feed.calls.Load())

	st, err := m.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, st.Entries)
	assert.EqualValues(t, 2, st.Failures)

	feed.fail.Store(false)
	_, err = m.EventsForDay(ctx, "cal", day)
	require.NoError(t, err)
}

func TestMirrorFailureDropsStaleEntry(t *testing.T) {
	feed := &scriptedFeed{events: []Event{}}
	m, clock := newTestMirror(feed)
	ctx := context.Background()

	_, err := m.EventsForDay(ctx, "cal", day)
	require.NoError(t, err)

	clock.Advance(10 * time.Minute)
	feed.fail.Store(true)

	_, err = m.EventsForDay(ctx, "cal", day)
	require.ErrorIs(t, err, ErrUnavailable)

	n, err := m.cache.Len(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMirrorFetchTimeout(t *testing.T) {
	slow := FeedFunc(func(ctx context.Context, _ string, _, _ time.Time) ([]Event, error) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(5 * time.Second):
			return []Event{}, nil
		}
	})

	m := NewMirror(slow, WithFetchTimeout(20*time.Millisecond))

	start := time.Now()
	_, err := m.EventsForDay(context.Background(), "cal", day)
	require.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestMirrorFeedIgnoringContextStillTimesOut(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	stuck := FeedFunc(func(context.Context, string, time.Time, time.Time) ([]Event, error) {
		<-release
		return nil, nil
	})

	m := NewMirror(stuck, WithFetchTimeout(20*time.Millisecond))
	_, err := m.EventsForDay(context.Background(), "cal", day)
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestMirrorSharedFetchSurvivesCallerCancel(t *testing.T) {
	var (
		calls    atomic.Int32
		canceled atomic.Bool
	)
	started := make(chan struct{})
	release := make(chan struct{})

	feed := FeedFunc(func(ctx context.Context, _ string, _, _ time.Time) ([]Event, error) {
		if calls.Add(1) == 1 {
			close(started)
		}
		select {
		case <-release:
			return []Event{{ID: "ev-1", Start: day, End: day.Add(time.Hour)}}, nil
		case <-ctx.Done():
			canceled.Store(true)
			return nil, ctx.Err()
		}
	})

	clock := &fakeClock{now: day}
	m := NewMirror(feed, WithClock(clock), WithFetchTimeout(5*time.Second))

	first, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := m.EventsForDay(first, "cal", day)
		firstErr <- err
	}()

	<-started
	cancel()

	err := <-firstErr
	require.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, err, context.Canceled)

	close(release)

	// a busca segue sem o primeiro chamador e grava o dia
	require.Eventually(t, func() bool {
		st, err := m.Stats(context.Background())
		return err == nil && st.Entries == 1
	}, 2*time.Second, 5*time.Millisecond)

	events, err := m.EventsForDay(context.Background(), "cal", day)
	require.NoError(t, err)
	require.Len(t, events, 1)

	assert.EqualValues(t, 1, calls.Load())
	assert.False(t, canceled.Load())
}

func TestMirrorRecoversFeedPanic(t *testing.T) {
	boom := FeedFunc(func(context.Context, string, time.Time, time.Time) ([]Event, error) {
		panic("nil map")
	})

	m := NewMirror(boom)
	_, err := m.EventsForDay(context.Background(), "cal", day)
	require.ErrorIs(t, err, ErrUnavailable)
	assert.Contains(t, err.Error(), "nil map")
}

func TestMirrorInvalidation(t *testing.T) {
	feed := &scriptedFeed{events: []Event{}}
	m, _ := newTestMirror(feed)
	ctx := context.Background()
	tomorrow := day.AddDate(0, 0, 1)

	_, _ = m.EventsForDay(ctx, "cal", day)
	_, _ = m.EventsForDay(ctx, "cal", tomorrow)
	require.EqualValues(t, 2, feed.calls.Load())

	require.NoError(t, m.InvalidateDay(ctx, "cal", day))
	_, _ = m.EventsForDay(ctx, "cal", tomorrow)
	assert.EqualValues(t, 2, feed.calls.Load())
	_, _ = m.EventsForDay(ctx, "cal", day)
	assert.EqualValues(t, 3, feed.calls.Load())

	require.NoError(t, m.Invalidate(ctx))
	st, err := m.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, st.Entries)
	assert.Equal(t, DefaultCapacity, st.Capacity)
}

func TestMirrorSortsEvents(t *testing.T) {
	feed := &scriptedFeed{events: []Event{
		{ID: "late", Start: day.Add(2 * time.Hour)},
		{ID: "early", Start: day.Add(-2 * time.Hour)},
	}}
	m, _ := newTestMirror(feed)

	events, err := m.EventsForDay(context.Background(), "cal", day)
	require.NoError(t, err)
	assert.Equal(t, "early", events[0].ID)
	assert.Equal(t, "late", events[1].ID)
	assert.Equal(t, "late", feed.events[0].ID)
}

func TestMemoryCacheEvictsOldest(t *testing.T) {
	c := NewMemoryCache(2)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", Entry{FetchedAt: day}))
	require.NoError(t, c.Set(ctx, "b", Entry{FetchedAt: day.Add(time.Minute)}))
	require.NoError(t, c.Set(ctx, "c", Entry{FetchedAt: day.Add(2 * time.Minute)}))

	_, ok, _ := c.Get(ctx, "a")
	assert.False(t, ok)
	_, ok, _ = c.Get(ctx, "c")
	assert.True(t, ok)

	n, _ := c.Len(ctx)
	assert.Equal(t, 2, n)
}
