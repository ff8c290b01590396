package calendar

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable marca qualquer falha ao consultar a agenda externa.
var ErrUnavailable = errors.New("external calendar unavailable")

// Event é um compromisso da agenda externa, somente leitura.
type Event struct {
	ID      string    `json:"id"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
	AllDay  bool      `json:"all_day"`
	Summary string    `json:"summary"`
	Source  string    `json:"source"`
}

// Feed lista eventos em [timeMin, timeMax), ordenados pelo início.
type Feed interface {
	ListEvents(ctx context.Context, calendarID string, timeMin, timeMax time.Time) ([]Event, error)
}

type FeedFunc func(ctx context.Context, calendarID string, timeMin, timeMax time.Time) ([]Event, error)

func (f FeedFunc) ListEvents(ctx context.Context, calendarID string, timeMin, timeMax time.Time) ([]Event, error) {
	return f(ctx, calendarID, timeMin, timeMax)
}

// StaticFeed é usado quando não há agenda externa configurada.
type StaticFeed struct{}

func (StaticFeed) ListEvents(context.Context, string, time.Time, time.Time) ([]Event, error) {
	return []Event{}, nil
}
