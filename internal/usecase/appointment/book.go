package appointment

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/BruksfildServices01/therapy-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/therapy-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/therapy-scheduler/internal/domain/conflict"
	"github.com/BruksfildServices01/therapy-scheduler/internal/httperr"
	"github.com/BruksfildServices01/therapy-scheduler/internal/models"
)

var tracer = otel.Tracer("github.com/BruksfildServices01/therapy-scheduler/internal/usecase/appointment")

// Checker é o resolvedor de conflitos visto pelos casos de uso.
type Checker interface {
	Check(ctx context.Context, req conflict.Request) error
	Config() conflict.Config
}

// ======================================================
// INPUT / OUTPUT
// ======================================================

type BookInput struct {
	ClientID    string
	TherapistID string

	ScheduledAt     time.Time
	DurationMinutes int

	IdempotencyKey string
	Notes          string

	ActorID       string
	AdminOverride bool
}

type BookResult struct {
	Appointment *models.Appointment

	// true quando a chave de idempotência já existia
	Replayed bool
}

// ======================================================
// USE CASE
// ======================================================

type BookAppointment struct {
	repo     domain.Repository
	resolver Checker
	audit    *audit.Dispatcher
	log      zerolog.Logger
}

func NewBookAppointment(
	repo domain.Repository,
	resolver Checker,
	audit *audit.Dispatcher,
	log zerolog.Logger,
) *BookAppointment {
	return &BookAppointment{
		repo:     repo,
		resolver: resolver,
		audit:    audit,
		log:      log.With().Str("component", "booking_gate").Logger(),
	}
}

// ======================================================
// EXECUTE
// ======================================================

// Execute: RECEIVED → VALIDATED → PERSISTED, saindo em REJECTED (recusa do
// resolvedor) ou CONFLICTED (o banco recusou o horário).
func (uc *BookAppointment) Execute(
	ctx context.Context,
	in BookInput,
) (_ *BookResult, err error) {

	ctx, span := tracer.Start(ctx, "booking.create")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	span.SetAttributes(
		attribute.String("therapist_id", in.TherapistID),
		attribute.Bool("idempotent", in.IdempotencyKey != ""),
	)

	log := uc.log.With().
		Str("therapist_id", in.TherapistID).
		Str("client_id", in.ClientID).
		Time("scheduled_at", in.ScheduledAt).
		Logger()

	log.Debug().Str("state", "received").Msg("booking received")

	// --------------------------------------------------
	// 1️⃣ Replay por chave de idempotência
	// --------------------------------------------------
	key := strings.TrimSpace(in.IdempotencyKey)
	if key != "" {
		existing, err := uc.repo.FindByIdempotencyKey(ctx, key)
		switch {
		case err == nil:
			log.Info().
				Str("appointment_id", existing.ID).
				Msg("idempotent replay, returning existing appointment")
			return &BookResult{Appointment: existing, Replayed: true}, nil
		case !errors.Is(err, domain.ErrNotFound):
			return nil, err
		}
	}

	// --------------------------------------------------
	// 2️⃣ Entrada
	// --------------------------------------------------
	if in.TherapistID == "" || in.ClientID == "" {
		return nil, httperr.ErrBusiness("invalid_input")
	}

	cfg := uc.resolver.Config()

	duration := in.DurationMinutes
	if duration <= 0 {
		duration = cfg.SessionMinutes
	}

	start := in.ScheduledAt
	end := start.Add(time.Duration(duration) * time.Minute)

	// --------------------------------------------------
	// 3️⃣ Resolvedor de conflitos (sempre refeito aqui)
	// --------------------------------------------------
	if err := uc.resolver.Check(ctx, conflict.Request{
		TherapistID:   in.TherapistID,
		Start:         start,
		End:           end,
		AdminOverride: in.AdminOverride,
	}); err != nil {
		if rej, ok := conflict.AsRejection(err); ok {
			log.Info().
				Str("state", "rejected").
				Str("reason", string(rej.Reason)).
				Str("conflicting_id", rej.ConflictingID).
				Msg("booking rejected")
			uc.dispatch(in, "appointment_rejected", "", map[string]any{"reason": rej.Reason})
		}
		return nil, err
	}

	log.Debug().Str("state", "validated").Msg("booking validated")

	// --------------------------------------------------
	// 4️⃣ Persistência
	// --------------------------------------------------
	ap := &models.Appointment{
		ID:              uuid.NewString(),
		ClientID:        in.ClientID,
		TherapistID:     in.TherapistID,
		ScheduledAt:     start,
		EndTime:         end,
		DurationMinutes: duration,
		BlockedUntil:    end.Add(cfg.Buffer()),
		Status:          string(domain.InitialStatus()),
		PaymentStatus:   "pending",
		Notes:           in.Notes,
	}
	if key != "" {
		ap.IdempotencyKey = &key
	}

	if err := uc.repo.CreateAppointment(ctx, ap); err != nil {

		// mesma chave gravada por uma requisição concorrente; o banco pode
		// acusar o índice da chave ou a exclusão do horário, em qualquer ordem
		if key != "" && httperr.IsExclusionConflict(err) {
			winner, findErr := uc.repo.FindByIdempotencyKey(ctx, key)
			if findErr == nil {
				log.Info().
					Str("appointment_id", winner.ID).
					Msg("concurrent idempotent replay, returning winner")
				return &BookResult{Appointment: winner, Replayed: true}, nil
			}
			if httperr.IsUniqueViolationOn(err, models.IdempotencyKeyIndex) {
				return nil, findErr
			}
		}

		// outra reserva ganhou a corrida entre o check e o insert
		if httperr.IsExclusionConflict(err) {
			log.Warn().
				Str("state", "conflicted").
				Err(err).
				Msg("booking lost race at persistence, slot already booked")
			uc.dispatch(in, "appointment_conflict", "", nil)
			return nil, conflict.Reject(conflict.ReasonSlotAlreadyBooked)
		}

		return nil, err
	}

	log.Info().
		Str("state", "persisted").
		Str("appointment_id", ap.ID).
		Msg("appointment booked")

	// --------------------------------------------------
	// 5️⃣ Auditoria / notificação
	// --------------------------------------------------
	uc.dispatch(in, "appointment_created", ap.ID, map[string]any{
		"client_id":    ap.ClientID,
		"scheduled_at": ap.ScheduledAt,
		"end_time":     ap.EndTime,
	})

	return &BookResult{Appointment: ap}, nil
}

func (uc *BookAppointment) dispatch(in BookInput, action, entityID string, meta map[string]any) {
	uc.audit.Dispatch(audit.Event{
		TherapistID: in.TherapistID,
		ActorID:     in.ActorID,
		Action:      action,
		Entity:      "appointment",
		EntityID:    entityID,
		Metadata:    meta,
	})
}
