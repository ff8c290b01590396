package audit

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const queueSize = 100

type Event struct {
	TherapistID string
	ActorID     string
	Action      string
	Entity      string
	EntityID    string
	Metadata    any
	OccurredAt  time.Time
}

// Sink recebe eventos já fora do caminho da requisição.
type Sink interface {
	Write(ctx context.Context, ev Event) error
}

type SinkFunc func(ctx context.Context, ev Event) error

func (f SinkFunc) Write(ctx context.Context, ev Event) error { return f(ctx, ev) }

type Dispatcher struct {
	log   zerolog.Logger
	sinks []Sink
	queue chan Event

	closeOnce sync.Once
	done      chan struct{}
}

func NewDispatcher(log zerolog.Logger, sinks ...Sink) *Dispatcher {
	d := &Dispatcher{
		log:   log.With().Str("component", "audit").Logger(),
		sinks: sinks,
		queue: make(chan Event, queueSize),
		done:  make(chan struct{}),
	}

	go d.worker()
	return d
}

func (d *Dispatcher) worker() {
	defer close(d.done)

	for ev := range d.queue {
		for _, s := range d.sinks {
			if err := s.Write(context.Background(), ev); err != nil {
				d.log.Error().Err(err).
					Str("action", ev.Action).
					Str("entity_id", ev.EntityID).
					Msg("audit sink failed")
			}
		}
	}
}

// Dispatch nunca bloqueia: fila cheia descarta o evento.
func (d *Dispatcher) Dispatch(ev Event) {
	if d == nil {
		return
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}

	select {
	case d.queue <- ev:
	default:
		d.log.Warn().Str("action", ev.Action).Msg("audit queue full, dropping event")
	}
}

// Close drena a fila e espera o worker terminar.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.closeOnce.Do(func() {
		close(d.queue)
	})
	<-d.done
}
