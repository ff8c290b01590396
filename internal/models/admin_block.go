package models

import "time"

// Bloqueio administrativo: remove tempo independentemente da agenda regular.
// TherapistID nil vale para todos os terapeutas.
type AdminBlock struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	TherapistID *string `gorm:"size:64;index" json:"therapist_id,omitempty"`

	StartTime time.Time `gorm:"not null;index" json:"start_time"`
	EndTime   time.Time `gorm:"not null" json:"end_time"`

	BlockType   string `gorm:"size:30;not null" json:"block_type"`
	IsRecurring bool   `gorm:"default:false" json:"is_recurring"`
	Active      bool   `gorm:"default:true;index" json:"active"`
	Reason      string `gorm:"size:255" json:"reason"`

	CreatedBy string    `gorm:"size:64" json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
