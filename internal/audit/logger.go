package audit

import (
	"context"
	"encoding/json"

	"gorm.io/gorm"

	"github.com/BruksfildServices01/therapy-scheduler/internal/models"
)

// Logger persiste eventos na tabela audit_logs.
type Logger struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Logger {
	return &Logger{db: db}
}

func (l *Logger) Write(ctx context.Context, ev Event) error {

	var metaJSON string
	if ev.Metadata != nil {
		if b, err := json.Marshal(ev.Metadata); err == nil {
			metaJSON = string(b)
		}
	}

	row := models.AuditLog{
		TherapistID: ev.TherapistID,
		ActorID:     ev.ActorID,
		Action:      ev.Action,
		Entity:      ev.Entity,
		EntityID:    ev.EntityID,
		Metadata:    metaJSON,
		CreatedAt:   ev.OccurredAt,
	}

	return l.db.WithContext(ctx).Create(&row).Error
}

var _ Sink = (*Logger)(nil)
