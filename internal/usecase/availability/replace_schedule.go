package availability

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/BruksfildServices01/therapy-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/therapy-scheduler/internal/domain/availability"
	"github.com/BruksfildServices01/therapy-scheduler/internal/httperr"
	"github.com/BruksfildServices01/therapy-scheduler/internal/models"
	"github.com/BruksfildServices01/therapy-scheduler/internal/timezone"
)

// ======================================================
// INPUT
// ======================================================

type WindowInput struct {
	DayOfWeek int
	StartTime string
	EndTime   string
}

type ReplaceScheduleInput struct {
	TherapistID string
	Timezone    string
	Windows     []WindowInput

	// nil mantém o vínculo atual; "" remove
	CalendarID *string

	ActorID string
}

// ======================================================
// USE CASE
// ======================================================

type ReplaceSchedule struct {
	store domain.Store
	audit *audit.Dispatcher
	log   zerolog.Logger
}

func NewReplaceSchedule(
	store domain.Store,
	audit *audit.Dispatcher,
	log zerolog.Logger,
) *ReplaceSchedule {
	return &ReplaceSchedule{
		store: store,
		audit: audit,
		log:   log,
	}
}

func (uc *ReplaceSchedule) Execute(
	ctx context.Context,
	in ReplaceScheduleInput,
) ([]models.AvailabilityWindow, error) {

	// --------------------------------------------------
	// 1️⃣ Fuso
	// --------------------------------------------------
	tz := in.Timezone
	if tz == "" {
		tz = timezone.DefaultTimezone
	}
	if !timezone.IsValid(tz) {
		return nil, httperr.ErrBusiness("invalid_timezone")
	}

	// --------------------------------------------------
	// 2️⃣ Janelas
	// --------------------------------------------------
	windows := make([]models.AvailabilityWindow, 0, len(in.Windows))
	for _, w := range in.Windows {
		if err := validateWindow(w); err != nil {
			return nil, err
		}
		windows = append(windows, models.AvailabilityWindow{
			TherapistID: in.TherapistID,
			DayOfWeek:   w.DayOfWeek,
			StartTime:   w.StartTime,
			EndTime:     w.EndTime,
			Timezone:    tz,
		})
	}

	if overlapping(windows) {
		// mantidas como estão; o gerador não funde janelas
		uc.log.Warn().
			Str("therapist_id", in.TherapistID).
			Msg("schedule has overlapping windows on the same day")
	}

	// --------------------------------------------------
	// 3️⃣ Troca transacional
	// --------------------------------------------------
	if err := uc.store.ReplaceSchedule(ctx, domain.Schedule{
		TherapistID: in.TherapistID,
		Windows:     windows,
		CalendarID:  in.CalendarID,
	}); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		TherapistID: in.TherapistID,
		ActorID:     in.ActorID,
		Action:      "schedule_replaced",
		Entity:      "availability",
		EntityID:    in.TherapistID,
		Metadata:    map[string]any{"windows": len(windows)},
	})

	return windows, nil
}

func validateWindow(w WindowInput) error {
	if w.DayOfWeek < 0 || w.DayOfWeek > 6 {
		return httperr.ErrBusiness("invalid_window")
	}

	start, err := time.Parse("15:04", w.StartTime)
	if err != nil {
		return httperr.ErrBusiness("invalid_window")
	}
	end, err := time.Parse("15:04", w.EndTime)
	if err != nil {
		return httperr.ErrBusiness("invalid_window")
	}
	if !end.After(start) {
		return httperr.ErrBusiness("invalid_window")
	}
	return nil
}

// HH:MM com zero à esquerda ordena lexicograficamente
func overlapping(ws []models.AvailabilityWindow) bool {
	for i := range ws {
		for j := i + 1; j < len(ws); j++ {
			a, b := ws[i], ws[j]
			if a.DayOfWeek == b.DayOfWeek && a.StartTime < b.EndTime && b.StartTime < a.EndTime {
				return true
			}
		}
	}
	return false
}

// ======================================================
// GET
// ======================================================

type ScheduleView struct {
	TherapistID string                      `json:"therapist_id"`
	Timezone    string                      `json:"timezone"`
	CalendarID  string                      `json:"calendar_id,omitempty"`
	Windows     []models.AvailabilityWindow `json:"windows"`
}

type GetSchedule struct {
	store domain.Store
}

func NewGetSchedule(store domain.Store) *GetSchedule {
	return &GetSchedule{store: store}
}

func (uc *GetSchedule) Execute(
	ctx context.Context,
	therapistID string,
) (*ScheduleView, error) {

	windows, err := uc.store.ListWindows(ctx, therapistID)
	if err != nil {
		return nil, err
	}

	calendarID, err := uc.store.CalendarID(ctx, therapistID)
	if err != nil {
		return nil, err
	}

	return &ScheduleView{
		TherapistID: therapistID,
		Timezone:    domain.LocationOf(windows).String(),
		CalendarID:  calendarID,
		Windows:     windows,
	}, nil
}
