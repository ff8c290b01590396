package appointment

import (
	"context"
	"errors"

	"github.com/BruksfildServices01/therapy-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/therapy-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/therapy-scheduler/internal/httperr"
	"github.com/BruksfildServices01/therapy-scheduler/internal/models"
	"github.com/BruksfildServices01/therapy-scheduler/internal/timezone"
)

type TransitionInput struct {
	AppointmentID string
	Action        domain.Action

	ActorID   string
	ActorRole string
}

// TransitionAppointment cobre confirm, start, complete, cancel e no-show.
type TransitionAppointment struct {
	repo  domain.Repository
	audit *audit.Dispatcher
	clock timezone.Clock
}

func NewTransitionAppointment(
	repo domain.Repository,
	audit *audit.Dispatcher,
	clock timezone.Clock,
) *TransitionAppointment {
	if clock == nil {
		clock = timezone.SystemClock{}
	}
	return &TransitionAppointment{
		repo:  repo,
		audit: audit,
		clock: clock,
	}
}

func (uc *TransitionAppointment) Execute(
	ctx context.Context,
	in TransitionInput,
) (*models.Appointment, error) {

	// remarcar exige novo horário
	if in.Action == domain.ActionReschedule {
		return nil, httperr.ErrBusiness("invalid_action")
	}

	ap, err := findAppointment(ctx, uc.repo, in.AppointmentID)
	if err != nil {
		return nil, err
	}

	if err := domain.Authorize(ap, domain.Actor{ID: in.ActorID, Role: in.ActorRole}, in.Action); err != nil {
		return nil, err
	}

	from := domain.Status(ap.Status)
	if err := domain.Apply(ap, in.Action, uc.clock.Now()); err != nil {
		return nil, err
	}

	if err := uc.repo.UpdateStatus(ctx, ap, from); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		TherapistID: ap.TherapistID,
		ActorID:     in.ActorID,
		Action:      "appointment_" + ap.Status,
		Entity:      "appointment",
		EntityID:    ap.ID,
	})

	return ap, nil
}

func findAppointment(
	ctx context.Context,
	repo domain.Repository,
	id string,
) (*models.Appointment, error) {
	ap, err := repo.FindByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, httperr.ErrBusiness("appointment_not_found")
	}
	return ap, err
}
