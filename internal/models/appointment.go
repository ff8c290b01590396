package models

import "time"

// Nome do índice único da chave de idempotência (usado para distinguir
// replay concorrente de conflito de horário).
const IdempotencyKeyIndex = "idx_appointments_idempotency_key"

type Appointment struct {
	ID string `gorm:"type:uuid;primaryKey" json:"id"`

	ClientID    string `gorm:"size:64;not null;index" json:"client_id"`
	TherapistID string `gorm:"size:64;not null;index:idx_appointments_therapist_start,priority:1" json:"therapist_id"`

	ScheduledAt     time.Time `gorm:"not null;index:idx_appointments_therapist_start,priority:2" json:"scheduled_at"`
	EndTime         time.Time `gorm:"not null" json:"end_time"`
	DurationMinutes int       `gorm:"not null" json:"duration_minutes"`

	// fim + buffer no momento da reserva; é o intervalo protegido pela
	// constraint de exclusão appointments_no_overlap
	BlockedUntil time.Time `gorm:"not null" json:"-"`

	Status        string `gorm:"size:20;default:'scheduled';index" json:"status"`
	PaymentStatus string `gorm:"size:20;default:'pending'" json:"payment_status"`

	IdempotencyKey *string `gorm:"size:128;uniqueIndex:idx_appointments_idempotency_key" json:"idempotency_key,omitempty"`
	IsArchived     bool    `gorm:"default:false" json:"is_archived"`

	RescheduledFromID *string `gorm:"type:uuid" json:"rescheduled_from_id,omitempty"`

	Notes       string     `gorm:"size:255" json:"notes"`
	CancelledAt *time.Time `json:"cancelled_at"`
	CompletedAt *time.Time `json:"completed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
