package appointment

import (
	"context"
	"time"

	domain "github.com/BruksfildServices01/therapy-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/therapy-scheduler/internal/domain/availability"
)

type SlotFinder interface {
	FreeSlots(ctx context.Context, therapistID string, date time.Time) ([]availability.Interval, error)
}

type GetAvailability struct {
	slots SlotFinder
}

func NewGetAvailability(slots SlotFinder) *GetAvailability {
	return &GetAvailability{slots: slots}
}

func (uc *GetAvailability) Execute(
	ctx context.Context,
	in domain.AvailabilityInput,
) ([]domain.TimeSlot, error) {

	free, err := uc.slots.FreeSlots(ctx, in.TherapistID, in.Date)
	if err != nil {
		return nil, err
	}

	out := make([]domain.TimeSlot, 0, len(free))
	for _, s := range free {
		out = append(out, domain.TimeSlot{
			Start:    s.Start.Format("15:04"),
			End:      s.End.Format("15:04"),
			StartsAt: s.Start,
			EndsAt:   s.End,
		})
	}

	return out, nil
}
