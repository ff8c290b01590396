package conflict

import (
	"errors"
	"fmt"
)

type Reason string

const (
	ReasonInvalidTiming       Reason = "INVALID_TIMING"
	ReasonDayNotAllowed       Reason = "DAY_NOT_ALLOWED"
	ReasonOutsideWorkingHours Reason = "OUTSIDE_WORKING_HOURS"
	ReasonSlotAlreadyBooked   Reason = "SLOT_ALREADY_BOOKED"
	ReasonAdminBlocked        Reason = "ADMIN_BLOCKED"
	ReasonExternalCalendar    Reason = "EXTERNAL_CALENDAR_CONFLICT"
	ReasonCalendarUnavailable Reason = "CALENDAR_SERVICE_UNAVAILABLE"
)

// Tipos de registro conflitante
const (
	KindAppointment   = "appointment"
	KindAdminBlock    = "admin_block"
	KindCalendarEvent = "calendar_event"
)

// Rejection é a resposta estruturada de "não pode reservar".
type Rejection struct {
	Reason          Reason
	ConflictingID   string
	ConflictingKind string
}

func (r *Rejection) Error() string {
	if r.ConflictingID == "" {
		return string(r.Reason)
	}
	return fmt.Sprintf("%s (%s %s)", r.Reason, r.ConflictingKind, r.ConflictingID)
}

func Reject(reason Reason) *Rejection {
	return &Rejection{Reason: reason}
}

func RejectWith(reason Reason, kind, id string) *Rejection {
	return &Rejection{Reason: reason, ConflictingKind: kind, ConflictingID: id}
}

func AsRejection(err error) (*Rejection, bool) {
	var r *Rejection
	if errors.As(err, &r) {
		return r, true
	}
	return nil, false
}

func IsReason(err error, reason Reason) bool {
	r, ok := AsRejection(err)
	return ok && r.Reason == reason
}
