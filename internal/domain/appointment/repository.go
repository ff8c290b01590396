package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/BruksfildServices01/therapy-scheduler/internal/httperr"
	"github.com/BruksfildServices01/therapy-scheduler/internal/models"
)

var (
	ErrNotFound      = errors.New("appointment not found")
	errUnknownAction = httperr.ErrBusiness("unknown_action")

	// ErrStatusChanged: o status gravado não é mais o que foi lido
	// (outra requisição fez a transição antes).
	ErrStatusChanged = httperr.ErrBusiness("invalid_state")
)

type Repository interface {
	// -------- Appointment (create / lookup) --------
	CreateAppointment(
		ctx context.Context,
		ap *models.Appointment,
	) error

	FindByID(
		ctx context.Context,
		id string,
	) (*models.Appointment, error)

	FindByIdempotencyKey(
		ctx context.Context,
		key string,
	) (*models.Appointment, error)

	// -------- Appointment (state change) --------
	// from é o status lido antes da transição; se já mudou no banco,
	// nada é gravado e volta ErrStatusChanged.
	UpdateStatus(
		ctx context.Context,
		ap *models.Appointment,
		from Status,
	) error

	Reschedule(
		ctx context.Context,
		original *models.Appointment,
		from Status,
		replacement *models.Appointment,
	) error

	// -------- Queries --------
	ListActiveInRange(
		ctx context.Context,
		therapistID string,
		from time.Time,
		to time.Time,
	) ([]models.Appointment, error)

	ListForPeriod(
		ctx context.Context,
		therapistID string,
		from time.Time,
		to time.Time,
	) ([]models.Appointment, error)
}
