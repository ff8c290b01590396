package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/BruksfildServices01/therapy-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/therapy-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/therapy-scheduler/internal/domain/conflict"
	"github.com/BruksfildServices01/therapy-scheduler/internal/httperr"
	"github.com/BruksfildServices01/therapy-scheduler/internal/models"
	"github.com/BruksfildServices01/therapy-scheduler/internal/timezone"
)

type RescheduleInput struct {
	AppointmentID string
	NewStart      time.Time

	// 0 mantém a duração original
	DurationMinutes int

	ActorID       string
	ActorRole     string
	AdminOverride bool
}

type RescheduleAppointment struct {
	repo     domain.Repository
	resolver Checker
	audit    *audit.Dispatcher
	clock    timezone.Clock
	log      zerolog.Logger
}

func NewRescheduleAppointment(
	repo domain.Repository,
	resolver Checker,
	audit *audit.Dispatcher,
	clock timezone.Clock,
	log zerolog.Logger,
) *RescheduleAppointment {
	if clock == nil {
		clock = timezone.SystemClock{}
	}
	return &RescheduleAppointment{
		repo:     repo,
		resolver: resolver,
		audit:    audit,
		clock:    clock,
		log:      log.With().Str("component", "reschedule").Logger(),
	}
}

// Execute devolve o novo agendamento; o original fica como rescheduled.
func (uc *RescheduleAppointment) Execute(
	ctx context.Context,
	in RescheduleInput,
) (*models.Appointment, error) {

	// --------------------------------------------------
	// 1️⃣ Original
	// --------------------------------------------------
	original, err := findAppointment(ctx, uc.repo, in.AppointmentID)
	if err != nil {
		return nil, err
	}

	actor := domain.Actor{ID: in.ActorID, Role: in.ActorRole}
	if err := domain.Authorize(original, actor, domain.ActionReschedule); err != nil {
		return nil, err
	}

	from := domain.Status(original.Status)
	if err := domain.CanTransition(from, domain.StatusRescheduled); err != nil {
		return nil, err
	}

	duration := in.DurationMinutes
	if duration <= 0 {
		duration = original.DurationMinutes
	}
	start := in.NewStart
	end := start.Add(time.Duration(duration) * time.Minute)

	// --------------------------------------------------
	// 2️⃣ Novo horário (ignorando o próprio original)
	// --------------------------------------------------
	if err := uc.resolver.Check(ctx, conflict.Request{
		TherapistID:         original.TherapistID,
		Start:               start,
		End:                 end,
		IgnoreAppointmentID: original.ID,
		AdminOverride:       in.AdminOverride,
	}); err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 3️⃣ Troca atômica
	// --------------------------------------------------
	fromID := original.ID
	replacement := &models.Appointment{
		ID:                uuid.NewString(),
		ClientID:          original.ClientID,
		TherapistID:       original.TherapistID,
		ScheduledAt:       start,
		EndTime:           end,
		DurationMinutes:   duration,
		BlockedUntil:      end.Add(uc.resolver.Config().Buffer()),
		Status:            string(domain.InitialStatus()),
		PaymentStatus:     original.PaymentStatus,
		RescheduledFromID: &fromID,
		Notes:             original.Notes,
	}

	if err := domain.Apply(original, domain.ActionReschedule, uc.clock.Now()); err != nil {
		return nil, err
	}

	if err := uc.repo.Reschedule(ctx, original, from, replacement); err != nil {
		if httperr.IsExclusionConflict(err) {
			uc.log.Warn().
				Err(err).
				Str("appointment_id", fromID).
				Msg("reschedule lost race at persistence, slot already booked")
			return nil, conflict.Reject(conflict.ReasonSlotAlreadyBooked)
		}
		return nil, err
	}

	uc.log.Info().
		Str("appointment_id", fromID).
		Str("replacement_id", replacement.ID).
		Time("scheduled_at", start).
		Msg("appointment rescheduled")

	uc.audit.Dispatch(audit.Event{
		TherapistID: original.TherapistID,
		ActorID:     in.ActorID,
		Action:      "appointment_rescheduled",
		Entity:      "appointment",
		EntityID:    replacement.ID,
		Metadata:    map[string]any{"rescheduled_from": fromID},
	})

	return replacement, nil
}
