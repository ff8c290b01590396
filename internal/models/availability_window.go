package models

import "time"

// Janela semanal recorrente de atendimento do terapeuta.
// Várias por dia são permitidas e podem se sobrepor.
type AvailabilityWindow struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	TherapistID string `gorm:"size:64;not null;index" json:"therapist_id"`

	DayOfWeek int `gorm:"not null" json:"day_of_week"`

	StartTime string `gorm:"size:5" json:"start_time"`
	EndTime   string `gorm:"size:5" json:"end_time"`
	Timezone  string `gorm:"size:64" json:"timezone"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Vínculo terapeuta → agenda externa espelhada.
type CalendarLink struct {
	TherapistID string `gorm:"size:64;primaryKey" json:"therapist_id"`
	CalendarID  string `gorm:"size:255;not null" json:"calendar_id"`

	UpdatedAt time.Time `json:"updated_at"`
}
