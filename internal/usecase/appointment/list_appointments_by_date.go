package appointment

import (
	"context"
	"time"

	domain "github.com/BruksfildServices01/therapy-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/therapy-scheduler/internal/domain/availability"
	"github.com/BruksfildServices01/therapy-scheduler/internal/dto"
	"github.com/BruksfildServices01/therapy-scheduler/internal/httperr"
	"github.com/BruksfildServices01/therapy-scheduler/internal/models"
	"github.com/BruksfildServices01/therapy-scheduler/internal/timezone"
)

// WindowLister dá o fuso do terapeuta (via janelas cadastradas).
type WindowLister interface {
	ListWindows(ctx context.Context, therapistID string) ([]models.AvailabilityWindow, error)
}

type ListAppointmentsByDate struct {
	repo      domain.Repository
	schedules WindowLister
}

func NewListAppointmentsByDate(
	repo domain.Repository,
	schedules WindowLister,
) *ListAppointmentsByDate {
	return &ListAppointmentsByDate{
		repo:      repo,
		schedules: schedules,
	}
}

func (uc *ListAppointmentsByDate) Execute(
	ctx context.Context,
	therapistID string,
	dateStr string,
) ([]dto.AppointmentListDTO, error) {

	loc, err := therapistLocation(ctx, uc.schedules, therapistID)
	if err != nil {
		return nil, err
	}

	start, err := timezone.ParseDate(dateStr, loc)
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_date")
	}
	end := start.AddDate(0, 0, 1)

	appointments, err := uc.repo.ListForPeriod(
		ctx,
		therapistID,
		start,
		end,
	)
	if err != nil {
		return nil, err
	}

	return toListDTO(appointments), nil
}

func therapistLocation(
	ctx context.Context,
	schedules WindowLister,
	therapistID string,
) (*time.Location, error) {
	windows, err := schedules.ListWindows(ctx, therapistID)
	if err != nil {
		return nil, err
	}
	return availability.LocationOf(windows), nil
}

func toListDTO(appointments []models.Appointment) []dto.AppointmentListDTO {
	out := make([]dto.AppointmentListDTO, 0, len(appointments))
	for _, ap := range appointments {
		out = append(out, dto.AppointmentListDTO{
			ID:              ap.ID,
			ClientID:        ap.ClientID,
			StartTime:       ap.ScheduledAt,
			EndTime:         ap.EndTime,
			DurationMinutes: ap.DurationMinutes,
			Status:          ap.Status,
			PaymentStatus:   ap.PaymentStatus,
			RescheduledFrom: ap.RescheduledFromID,
		})
	}
	return out
}
