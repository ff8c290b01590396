package dto

import "time"

type AppointmentListDTO struct {
	ID              string    `json:"id"`
	ClientID        string    `json:"client_id"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	DurationMinutes int       `json:"duration_minutes"`
	Status          string    `json:"status"`
	PaymentStatus   string    `json:"payment_status"`
	RescheduledFrom *string   `json:"rescheduled_from_id,omitempty"`
}
