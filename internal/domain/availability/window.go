package availability

import (
	"context"
	"errors"
	"time"

	"github.com/BruksfildServices01/therapy-scheduler/internal/models"
	"github.com/BruksfildServices01/therapy-scheduler/internal/timezone"
)

var (
	ErrMissingBounds = errors.New("availability window without start or end")
	ErrInvalidBounds = errors.New("availability window end must be after start")
)

// Schedule é a agenda semanal completa de um terapeuta.
type Schedule struct {
	TherapistID string
	Windows     []models.AvailabilityWindow
	CalendarID  *string
}

type Store interface {
	ListWindows(ctx context.Context, therapistID string) ([]models.AvailabilityWindow, error)
	CalendarID(ctx context.Context, therapistID string) (string, error)

	// ReplaceSchedule apaga e recria as janelas numa única transação.
	ReplaceSchedule(ctx context.Context, s Schedule) error
}

// WindowSpan resolve a janela no dia civil de day (no fuso da janela).
func WindowSpan(w models.AvailabilityWindow, day time.Time) (Interval, error) {
	if w.StartTime == "" || w.EndTime == "" {
		return Interval{}, ErrMissingBounds
	}

	loc := timezone.Location(w.Timezone)

	start, err := timezone.OnDate(day, w.StartTime, loc)
	if err != nil {
		return Interval{}, err
	}
	end, err := timezone.OnDate(day, w.EndTime, loc)
	if err != nil {
		return Interval{}, err
	}
	if !end.After(start) {
		return Interval{}, ErrInvalidBounds
	}

	return Interval{Start: start, End: end}, nil
}

// WithinAnyWindow indica se [start, end) cabe inteiro em alguma janela do dia.
func WithinAnyWindow(windows []models.AvailabilityWindow, start, end time.Time) bool {
	req := Interval{Start: start, End: end}

	for _, w := range windows {
		loc := timezone.Location(w.Timezone)
		local := start.In(loc)
		if int(local.Weekday()) != w.DayOfWeek {
			continue
		}

		span, err := WindowSpan(w, local)
		if err != nil {
			continue
		}
		if span.Contains(req) {
			return true
		}
	}
	return false
}

// LocationOf devolve o fuso do terapeuta a partir das janelas cadastradas.
func LocationOf(windows []models.AvailabilityWindow) *time.Location {
	for _, w := range windows {
		if timezone.IsValid(w.Timezone) {
			return timezone.Location(w.Timezone)
		}
	}
	return timezone.Location("")
}
