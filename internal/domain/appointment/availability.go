package appointment

import "time"

type AvailabilityInput struct {
	TherapistID string
	Date        time.Time
}

type TimeSlot struct {
	Start    string    `json:"start"`
	End      string    `json:"end"`
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
}
