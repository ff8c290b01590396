package appointment

import "github.com/BruksfildServices01/therapy-scheduler/internal/httperr"

// ===============================
// Appointment Status
// ===============================

type Status string

const (
	StatusScheduled   Status = "scheduled"
	StatusConfirmed   Status = "confirmed"
	StatusInProgress  Status = "in_progress"
	StatusCompleted   Status = "completed"
	StatusCancelled   Status = "cancelled"
	StatusRescheduled Status = "rescheduled"
	StatusNoShow      Status = "no_show"
)

var transitions = map[Status][]Status{
	StatusScheduled: {
		StatusConfirmed,
		StatusInProgress,
		StatusCancelled,
		StatusNoShow,
		StatusRescheduled,
	},
	StatusConfirmed: {
		StatusInProgress,
		StatusCancelled,
		StatusNoShow,
		StatusRescheduled,
	},
	StatusInProgress: {
		StatusCompleted,
	},
}

// ===============================
// Validations
// ===============================

// CanTransition define se um agendamento pode sair de from para to
func CanTransition(from, to Status) error {
	for _, next := range transitions[from] {
		if next == to {
			return nil
		}
	}
	return httperr.ErrBusiness("invalid_state")
}

// IsActive indica se o status ainda ocupa o horário do terapeuta
func IsActive(s Status) bool {
	switch s {
	case StatusScheduled, StatusConfirmed, StatusInProgress:
		return true
	}
	return false
}

func ActiveStatuses() []string {
	return []string{
		string(StatusScheduled),
		string(StatusConfirmed),
		string(StatusInProgress),
	}
}

func InitialStatus() Status {
	return StatusScheduled
}
