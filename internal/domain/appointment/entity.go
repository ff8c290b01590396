package appointment

import (
	"time"

	"github.com/BruksfildServices01/therapy-scheduler/internal/models"
)

// ===============================
// Domain Actions
// ===============================

type Action string

const (
	ActionConfirm    Action = "confirm"
	ActionStart      Action = "start"
	ActionComplete   Action = "complete"
	ActionCancel     Action = "cancel"
	ActionNoShow     Action = "no-show"
	ActionReschedule Action = "reschedule"
)

var actionTarget = map[Action]Status{
	ActionConfirm:    StatusConfirmed,
	ActionStart:      StatusInProgress,
	ActionComplete:   StatusCompleted,
	ActionCancel:     StatusCancelled,
	ActionNoShow:     StatusNoShow,
	ActionReschedule: StatusRescheduled,
}

// Apply executa a transição correspondente à ação.
func Apply(ap *models.Appointment, action Action, now time.Time) error {
	target, ok := actionTarget[action]
	if !ok {
		return errUnknownAction
	}

	if err := CanTransition(Status(ap.Status), target); err != nil {
		return err
	}

	ap.Status = string(target)

	switch target {
	case StatusCancelled:
		ap.CancelledAt = &now
	case StatusCompleted:
		ap.CompletedAt = &now
	}
	return nil
}
