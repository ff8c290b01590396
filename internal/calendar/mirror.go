package calendar

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/BruksfildServices01/therapy-scheduler/internal/timezone"
)

const (
	instrumentationName = "github.com/BruksfildServices01/therapy-scheduler/internal/calendar"

	DefaultTTL          = 5 * time.Minute
	DefaultFetchTimeout = 3 * time.Second
)

// ======================================================
// MIRROR
// ======================================================

// Mirror é a visão read-through, com cache por dia, da agenda externa.
// Falhas de busca nunca são cacheadas.
type Mirror struct {
	feed    Feed
	cache   Cache
	clock   timezone.Clock
	ttl     time.Duration
	timeout time.Duration
	log     zerolog.Logger

	group  singleflight.Group
	tracer trace.Tracer

	hits     atomic.Int64
	misses   atomic.Int64
	failures atomic.Int64

	hitCounter     metric.Int64Counter
	missCounter    metric.Int64Counter
	failureCounter metric.Int64Counter
}

type Option func(*Mirror)

func WithCache(c Cache) Option { return func(m *Mirror) { m.cache = c } }

func WithClock(c timezone.Clock) Option { return func(m *Mirror) { m.clock = c } }

func WithLogger(l zerolog.Logger) Option { return func(m *Mirror) { m.log = l } }

func WithTTL(ttl time.Duration) Option {
	return func(m *Mirror) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

func WithFetchTimeout(d time.Duration) Option {
	return func(m *Mirror) {
		if d > 0 {
			m.timeout = d
		}
	}
}

func NewMirror(feed Feed, opts ...Option) *Mirror {
	m := &Mirror{
		feed:    feed,
		cache:   NewMemoryCache(DefaultCapacity),
		clock:   timezone.SystemClock{},
		ttl:     DefaultTTL,
		timeout: DefaultFetchTimeout,
		log:     zerolog.Nop(),
		tracer:  otel.Tracer(instrumentationName),
	}
	for _, opt := range opts {
		opt(m)
	}

	meter := otel.Meter(instrumentationName)
	m.hitCounter = counter(meter, "calendar_mirror_hits_total", "Calendar mirror lookups served from cache")
	m.missCounter = counter(meter, "calendar_mirror_misses_total", "Calendar mirror lookups that required a live fetch")
	m.failureCounter = counter(meter, "calendar_mirror_failures_total", "Live calendar fetches that failed")

	return m
}

func counter(meter metric.Meter, name, desc string) metric.Int64Counter {
	c, err := meter.Int64Counter(name, metric.WithDescription(desc))
	if err != nil {
		return noop.Int64Counter{}
	}
	return c
}

// Key identifica a entrada de um dia de uma agenda.
func Key(calendarID string, day time.Time) string {
	return calendarID + "|" + day.Format("2006-01-02")
}

func startOfDay(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
}

// EventsForDay devolve os eventos do dia civil de day (no fuso de day).
// Erros sempre embrulham ErrUnavailable.
func (m *Mirror) EventsForDay(ctx context.Context, calendarID string, day time.Time) ([]Event, error) {
	dayStart := startOfDay(day)
	key := Key(calendarID, dayStart)

	entry, ok, err := m.cache.Get(ctx, key)
	if err != nil {
		m.log.Warn().Err(err).Str("key", key).Msg("calendar cache read failed")
	}
	if err == nil && ok && m.clock.Now().Sub(entry.FetchedAt) < m.ttl {
		m.hits.Add(1)
		m.hitCounter.Add(ctx, 1)
		return entry.Events, nil
	}

	m.misses.Add(1)
	m.missCounter.Add(ctx, 1)

	// a busca é compartilhada: roda sem o cancelamento de quem chegou
	// primeiro, limitada só pelo timeout do espelho
	ch := m.group.DoChan(key, func() (any, error) {
		return m.refresh(context.WithoutCancel(ctx), key, calendarID, dayStart)
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		res = singleflight.Result{Err: fmt.Errorf("%w: %w", ErrUnavailable, ctx.Err())}
	}

	if res.Err != nil {
		m.failures.Add(1)
		m.failureCounter.Add(ctx, 1)
		return nil, res.Err
	}
	return res.Val.([]Event), nil
}

func (m *Mirror) refresh(ctx context.Context, key, calendarID string, dayStart time.Time) ([]Event, error) {
	events, err := m.fetch(ctx, calendarID, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		// entrada velha sai junto: um dia com falha não pode parecer livre
		if derr := m.cache.Delete(ctx, key); derr != nil {
			m.log.Warn().Err(derr).Str("key", key).Msg("calendar cache delete failed")
		}
		m.log.Warn().Err(err).Str("calendar_id", calendarID).Str("day", dayStart.Format("2006-01-02")).Msg("calendar fetch failed")
		return nil, err
	}

	if err := m.cache.Set(ctx, key, Entry{Events: events, FetchedAt: m.clock.Now()}); err != nil {
		m.log.Warn().Err(err).Str("key", key).Msg("calendar cache write failed")
	}
	return events, nil
}

type fetchResult struct {
	events []Event
	err    error
}

// fetch é a fronteira com o feed: timeout, panic e erro viram ErrUnavailable.
func (m *Mirror) fetch(ctx context.Context, calendarID string, from, to time.Time) ([]Event, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	ctx, span := m.tracer.Start(ctx, "calendar.fetch", trace.WithAttributes(
		attribute.String("calendar.id", calendarID),
		attribute.String("calendar.day", from.Format("2006-01-02")),
	))
	defer span.End()

	done := make(chan fetchResult, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				done <- fetchResult{err: fmt.Errorf("feed panic: %v", rec)}
			}
		}()
		events, err := m.feed.ListEvents(ctx, calendarID, from, to)
		done <- fetchResult{events: events, err: err}
	}()

	var res fetchResult
	select {
	case res = <-done:
	case <-ctx.Done():
		res = fetchResult{err: ctx.Err()}
	}

	if res.err != nil {
		err := fmt.Errorf("%w: %w", ErrUnavailable, res.err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	events := append([]Event(nil), res.events...)
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Start.Before(events[j].Start)
	})
	span.SetAttributes(attribute.Int("calendar.events", len(events)))
	return events, nil
}

// ======================================================
// DIAGNOSTICS
// ======================================================

func (m *Mirror) Invalidate(ctx context.Context) error {
	return m.cache.Clear(ctx)
}

func (m *Mirror) InvalidateDay(ctx context.Context, calendarID string, day time.Time) error {
	return m.cache.Delete(ctx, Key(calendarID, startOfDay(day)))
}

type Stats struct {
	Entries     int     `json:"entries"`
	Capacity    int     `json:"capacity,omitempty"`
	Utilization float64 `json:"utilization,omitempty"`
	TTLSeconds  float64 `json:"ttl_seconds"`
	Hits        int64   `json:"hits"`
	Misses      int64   `json:"misses"`
	Failures    int64   `json:"failures"`
}

func (m *Mirror) Stats(ctx context.Context) (Stats, error) {
	n, err := m.cache.Len(ctx)
	if err != nil {
		return Stats{}, err
	}

	st := Stats{
		Entries:    n,
		TTLSeconds: m.ttl.Seconds(),
		Hits:       m.hits.Load(),
		Misses:     m.misses.Load(),
		Failures:   m.failures.Load(),
	}

	if sized, ok := m.cache.(interface{ Capacity() int }); ok && sized.Capacity() > 0 {
		st.Capacity = sized.Capacity()
		st.Utilization = float64(n) / float64(st.Capacity)
	}
	return st, nil
}
