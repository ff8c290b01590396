package availability

import (
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/BruksfildServices01/therapy-scheduler/internal/models"
)

const (
	DefaultSessionDuration = 50 * time.Minute
	DefaultBuffer          = 10 * time.Minute
)

type SlotOptions struct {
	Duration time.Duration
	Buffer   time.Duration
}

func DefaultSlotOptions() SlotOptions {
	return SlotOptions{Duration: DefaultSessionDuration, Buffer: DefaultBuffer}
}

func (o SlotOptions) normalized() SlotOptions {
	if o.Duration <= 0 {
		o.Duration = DefaultSessionDuration
	}
	if o.Buffer < 0 {
		o.Buffer = 0
	}
	return o
}

// GenerateSlots percorre cada janela do dia da semana de date em passos de
// duração+buffer e emite [cursor, cursor+duração) quando o passo inteiro cabe
// na janela e o slot não cruza nenhum intervalo já reservado.
//
// Janelas sobrepostas são percorridas de forma independente (sem merge), então
// podem surgir slots repetidos no mesmo horário.
func GenerateSlots(
	windows []models.AvailabilityWindow,
	date time.Time,
	opts SlotOptions,
	booked []Interval,
	log zerolog.Logger,
) []Interval {

	opts = opts.normalized()
	step := opts.Duration + opts.Buffer

	slots := []Interval{}

	for _, w := range windows {
		if int(date.Weekday()) != w.DayOfWeek {
			continue
		}

		span, err := WindowSpan(w, date)
		if err != nil {
			// linha ruim não pode derrubar o dia inteiro
			log.Warn().
				Err(err).
				Uint("window_id", w.ID).
				Str("therapist_id", w.TherapistID).
				Msg("skipping malformed availability window")
			continue
		}

		for cur := span.Start; !cur.Add(step).After(span.End); cur = cur.Add(step) {
			slot := Interval{Start: cur, End: cur.Add(opts.Duration)}
			if slot.OverlapsAny(booked) {
				continue
			}
			slots = append(slots, slot)
		}
	}

	sort.SliceStable(slots, func(i, j int) bool {
		return slots[i].Start.Before(slots[j].Start)
	})

	return slots
}
