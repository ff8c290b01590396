package appointment

import (
	"context"
	"time"

	"github.com/BruksfildServices01/therapy-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/therapy-scheduler/internal/dto"
	"github.com/BruksfildServices01/therapy-scheduler/internal/httperr"
)

type ListAppointmentsByMonth struct {
	repo      appointment.Repository
	schedules WindowLister
}

func NewListAppointmentsByMonth(
	repo appointment.Repository,
	schedules WindowLister,
) *ListAppointmentsByMonth {
	return &ListAppointmentsByMonth{
		repo:      repo,
		schedules: schedules,
	}
}

func (uc *ListAppointmentsByMonth) Execute(
	ctx context.Context,
	therapistID string,
	year int,
	month int,
) ([]dto.AppointmentListDTO, error) {

	if month < 1 || month > 12 || year < 1970 {
		return nil, httperr.ErrBusiness("invalid_period")
	}

	loc, err := therapistLocation(ctx, uc.schedules, therapistID)
	if err != nil {
		return nil, err
	}

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	end := start.AddDate(0, 1, 0)

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
