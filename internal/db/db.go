package db

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/therapy-scheduler/internal/config"
	"github.com/BruksfildServices01/therapy-scheduler/internal/models"
	"github.com/BruksfildServices01/therapy-scheduler/internal/timezone"
)

// NoOverlapConstraint é a última barreira contra reserva dupla: dois
// agendamentos ativos do mesmo terapeuta não podem ter
// [scheduled_at, blocked_until) sobrepostos.
const NoOverlapConstraint = "appointments_no_overlap"

func Open(cfg *config.Config, log zerolog.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DBUrl), &gorm.Config{
		PrepareStmt: true,
		Logger:      NewGormLogger(log, 200*time.Millisecond),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	return db, nil
}

func Migrate(ctx context.Context, db *gorm.DB) error {
	db = db.WithContext(ctx)

	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS btree_gist`).Error; err != nil {
		return fmt.Errorf("enable btree_gist: %w", err)
	}

	if err := db.AutoMigrate(
		&models.AvailabilityWindow{},
		&models.CalendarLink{},
		&models.AdminBlock{},
		&models.Appointment{},
		&models.AuditLog{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	if err := db.Exec(`
		DO $$
		BEGIN
			IF NOT EXISTS (
				SELECT 1 FROM pg_constraint WHERE conname = '` + NoOverlapConstraint + `'
			) THEN
				ALTER TABLE appointments
					ADD CONSTRAINT ` + NoOverlapConstraint + `
					EXCLUDE USING gist (
						therapist_id WITH =,
						tstzrange(scheduled_at, blocked_until, '[)') WITH &&
					)
					WHERE (status IN ('scheduled', 'confirmed', 'in_progress') AND NOT is_archived);
			END IF;
		END
		$$;
	`).Error; err != nil {
		return fmt.Errorf("add %s: %w", NoOverlapConstraint, err)
	}

	return backfillTimezone(db)
}

// backfillTimezone preenche janelas antigas gravadas sem fuso.
func backfillTimezone(db *gorm.DB) error {
	if err := db.Exec(`
		UPDATE availability_windows
		SET timezone = ?
		WHERE timezone IS NULL OR timezone = ''
	`, timezone.DefaultTimezone).Error; err != nil {
		return fmt.Errorf("backfill window timezone: %w", err)
	}
	return nil
}
