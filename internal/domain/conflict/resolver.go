package conflict

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/BruksfildServices01/therapy-scheduler/internal/calendar"
	"github.com/BruksfildServices01/therapy-scheduler/internal/domain/availability"
	"github.com/BruksfildServices01/therapy-scheduler/internal/models"
	"github.com/BruksfildServices01/therapy-scheduler/internal/timezone"
)

// ======================================================
// SOURCES
// ======================================================

type AppointmentSource interface {
	ListActiveInRange(ctx context.Context, therapistID string, from, to time.Time) ([]models.Appointment, error)
}

type BlockSource interface {
	ListActive(ctx context.Context, therapistID string, from, to time.Time) ([]models.AdminBlock, error)
}

type ScheduleSource interface {
	ListWindows(ctx context.Context, therapistID string) ([]models.AvailabilityWindow, error)
	CalendarID(ctx context.Context, therapistID string) (string, error)
}

type CalendarSource interface {
	EventsForDay(ctx context.Context, calendarID string, day time.Time) ([]calendar.Event, error)
}

// ======================================================
// RESOLVER
// ======================================================

type Resolver struct {
	cfg          Config
	appointments AppointmentSource
	blocks       BlockSource
	schedules    ScheduleSource
	calendar     CalendarSource
	clock        timezone.Clock
	log          zerolog.Logger
}

type Deps struct {
	Appointments AppointmentSource
	Blocks       BlockSource
	Schedules    ScheduleSource
	Calendar     CalendarSource // opcional
	Clock        timezone.Clock // opcional
	Log          zerolog.Logger
}

func NewResolver(cfg Config, deps Deps) *Resolver {
	clock := deps.Clock
	if clock == nil {
		clock = timezone.SystemClock{}
	}
	return &Resolver{
		cfg:          cfg,
		appointments: deps.Appointments,
		blocks:       deps.Blocks,
		schedules:    deps.Schedules,
		calendar:     deps.Calendar,
		clock:        clock,
		log:          deps.Log,
	}
}

func (r *Resolver) Config() Config {
	return r.cfg
}

type Request struct {
	TherapistID string
	Start       time.Time
	End         time.Time

	// ignorado na checagem contra agendamentos (remarcação)
	IgnoreAppointmentID string

	// criação administrativa: dispensa a exigência de janela de atendimento
	AdminOverride bool
}

// Check responde se [Start, End) pode ser reservado. nil = livre;
// *Rejection = recusa estruturada; qualquer outro erro é de infraestrutura.
func (r *Resolver) Check(ctx context.Context, req Request) error {

	// --------------------------------------------------
	// 0️⃣ Intervalo coerente e no futuro
	// --------------------------------------------------
	if req.Start.IsZero() || req.End.IsZero() || !req.End.After(req.Start) {
		return Reject(ReasonInvalidTiming)
	}
	if req.Start.Before(r.clock.Now()) {
		return Reject(ReasonInvalidTiming)
	}

	windows, err := r.schedules.ListWindows(ctx, req.TherapistID)
	if err != nil {
		return fmt.Errorf("list windows: %w", err)
	}
	loc := availability.LocationOf(windows)

	// --------------------------------------------------
	// 1️⃣ Dia da semana permitido
	// --------------------------------------------------
	if !r.cfg.DayAllowed(req.Start.In(loc).Weekday()) {
		return Reject(ReasonDayNotAllowed)
	}

	// --------------------------------------------------
	// 1️⃣b Dentro de alguma janela de atendimento
	// --------------------------------------------------
	if !req.AdminOverride && !availability.WithinAnyWindow(windows, req.Start, req.End) {
		return Reject(ReasonOutsideWorkingHours)
	}

	// --------------------------------------------------
	// 2️⃣ 3️⃣ 4️⃣ Agendamentos, bloqueios, agenda externa
	// --------------------------------------------------
	slot := availability.Interval{Start: req.Start, End: req.End}

	v, err := r.load(ctx, req.TherapistID, loc, slot)
	if err != nil {
		return err
	}

	return r.evaluate(v, slot, req.IgnoreAppointmentID)
}

// FreeSlots lista os intervalos livres do dia civil de date (no fuso do
// terapeuta). Dados são carregados uma vez e cada slot passa pela mesma
// avaliação de Check.
func (r *Resolver) FreeSlots(ctx context.Context, therapistID string, date time.Time) ([]availability.Interval, error) {
	windows, err := r.schedules.ListWindows(ctx, therapistID)
	if err != nil {
		return nil, fmt.Errorf("list windows: %w", err)
	}

	loc := availability.LocationOf(windows)
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc)

	if !r.cfg.DayAllowed(dayStart.Weekday()) {
		return []availability.Interval{}, nil
	}

	day := availability.Interval{Start: dayStart, End: dayStart.AddDate(0, 0, 1)}

	v, err := r.load(ctx, therapistID, loc, day)
	if err != nil {
		return nil, err
	}

	booked := make([]availability.Interval, 0, len(v.appointments))
	for _, ap := range v.appointments {
		booked = append(booked, availability.Interval{Start: ap.ScheduledAt, End: ap.EndTime})
	}

	opts := availability.SlotOptions{
		Duration: r.cfg.SessionDuration(),
		Buffer:   r.cfg.Buffer(),
	}
	candidates := availability.GenerateSlots(windows, dayStart, opts, booked, r.log)

	now := r.clock.Now()
	free := make([]availability.Interval, 0, len(candidates))
	for _, slot := range candidates {
		if slot.Start.Before(now) {
			continue
		}
		if err := r.evaluate(v, slot, ""); err != nil {
			continue
		}
		free = append(free, slot)
	}

	if v.calendarErr != nil && r.cfg.FailSecure {
		r.log.Warn().
			Err(v.calendarErr).
			Str("therapist_id", therapistID).
			Str("date", dayStart.Format("2006-01-02")).
			Msg("external calendar unavailable, no slots offered (fail-secure)")
	}

	return free, nil
}

// ======================================================
// DAY VIEW
// ======================================================

type blockOccurrence struct {
	id       string
	interval availability.Interval
}

type view struct {
	loc          *time.Location
	appointments []models.Appointment
	blocks       []blockOccurrence
	events       []calendar.Event
	calendarErr  error
}

func (r *Resolver) load(ctx context.Context, therapistID string, loc *time.Location, span availability.Interval) (*view, error) {
	v := &view{loc: loc}

	// agendamentos podem encostar pelo buffer
	reach := span.Expand(r.cfg.Buffer())

	aps, err := r.appointments.ListActiveInRange(ctx, therapistID, reach.Start, reach.End)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	v.appointments = aps

	blocks, err := r.blocks.ListActive(ctx, therapistID, span.Start, span.End)
	if err != nil {
		return nil, fmt.Errorf("list admin blocks: %w", err)
	}
	for _, b := range blocks {
		for _, occ := range availability.Occurrences(b, span.Start, span.End, loc) {
			v.blocks = append(v.blocks, blockOccurrence{id: strconv.FormatUint(uint64(b.ID), 10), interval: occ})
		}
	}

	v.events, v.calendarErr = r.loadEvents(ctx, therapistID, loc, reach)
	if v.calendarErr != nil && !r.cfg.FailSecure {
		r.log.Warn().
			Err(v.calendarErr).
			Str("therapist_id", therapistID).
			Msg("external calendar unavailable, ignoring (fail-open)")
	}

	return v, nil
}

func (r *Resolver) loadEvents(ctx context.Context, therapistID string, loc *time.Location, reach availability.Interval) ([]calendar.Event, error) {
	if r.calendar == nil {
		return nil, nil
	}

	calendarID, err := r.schedules.CalendarID(ctx, therapistID)
	if err != nil {
		return nil, fmt.Errorf("%w: calendar link: %w", calendar.ErrUnavailable, err)
	}
	if calendarID == "" {
		return nil, nil
	}

	var events []calendar.Event
	last := timezone.StartOfDay(reach.End.Add(-time.Nanosecond), loc)
	for d := timezone.StartOfDay(reach.Start, loc); !d.After(last); d = d.AddDate(0, 0, 1) {
		dayEvents, err := r.calendar.EventsForDay(ctx, calendarID, d)
		if err != nil {
			return nil, err
		}
		events = append(events, dayEvents...)
	}
	return events, nil
}

func (r *Resolver) evaluate(v *view, slot availability.Interval, ignoreAppointmentID string) error {
	buffer := r.cfg.Buffer()

	for _, ap := range v.appointments {
		if ap.ID == ignoreAppointmentID {
			continue
		}
		existing := availability.Interval{Start: ap.ScheduledAt, End: ap.EndTime}
		if existing.Expand(buffer).Overlaps(slot) {
			return RejectWith(ReasonSlotAlreadyBooked, KindAppointment, ap.ID)
		}
	}

	for _, b := range v.blocks {
		if b.interval.Overlaps(slot) {
			return RejectWith(ReasonAdminBlocked, KindAdminBlock, b.id)
		}
	}

	if v.calendarErr != nil {
		if r.cfg.FailSecure {
			return Reject(ReasonCalendarUnavailable)
		}
		return nil
	}

	for _, ev := range v.events {
		if eventInterval(ev, v.loc, buffer).Overlaps(slot) {
			return RejectWith(ReasonExternalCalendar, KindCalendarEvent, ev.ID)
		}
	}

	return nil
}

// eventInterval: eventos de dia inteiro ocupam os dias civis completos (no
// fuso do terapeuta) e não recebem buffer; os demais recebem.
func eventInterval(ev calendar.Event, loc *time.Location, buffer time.Duration) availability.Interval {
	if !ev.AllDay {
		return availability.Interval{Start: ev.Start, End: ev.End}.Expand(buffer)
	}

	start := time.Date(ev.Start.Year(), ev.Start.Month(), ev.Start.Day(), 0, 0, 0, 0, loc)
	end := time.Date(ev.End.Year(), ev.End.Month(), ev.End.Day(), 0, 0, 0, 0, loc)
	if !end.After(start) {
		end = start.AddDate(0, 0, 1)
	}
	return availability.Interval{Start: start, End: end}
}
