package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	domain "github.com/BruksfildServices01/therapy-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/therapy-scheduler/internal/models"
)

type AppointmentGormRepository struct {
	db *gorm.DB
}

func NewAppointmentGormRepository(db *gorm.DB) *AppointmentGormRepository {
	return &AppointmentGormRepository{db: db}
}

// colunas que uma transição de status pode alterar
var statusColumns = []string{"status", "cancelled_at", "completed_at", "updated_at"}

// --------------------------------------------------
// Appointment (create / lookup)
// --------------------------------------------------

// CreateAppointment não faz checagem prévia: a constraint de exclusão
// appointments_no_overlap é a última palavra sobre o horário.
func (r *AppointmentGormRepository) CreateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {
	return r.db.WithContext(ctx).Create(ap).Error
}

func (r *AppointmentGormRepository) FindByID(
	ctx context.Context,
	id string,
) (*models.Appointment, error) {

	var ap models.Appointment
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&ap).Error; err != nil {
		return nil, notFound(err)
	}
	return &ap, nil
}

func (r *AppointmentGormRepository) FindByIdempotencyKey(
	ctx context.Context,
	key string,
) (*models.Appointment, error) {

	var ap models.Appointment
	if err := r.db.WithContext(ctx).
		Where("idempotency_key = ?", key).
		First(&ap).Error; err != nil {
		return nil, notFound(err)
	}
	return &ap, nil
}

// --------------------------------------------------
// Appointment (state change)
// --------------------------------------------------

func (r *AppointmentGormRepository) UpdateStatus(
	ctx context.Context,
	ap *models.Appointment,
	from domain.Status,
) error {
	return updateStatusFrom(r.db.WithContext(ctx), ap, from)
}

// Reschedule libera o horário antigo e grava o novo na mesma transação.
// Se o original já saiu de from, a transação é desfeita antes do insert.
func (r *AppointmentGormRepository) Reschedule(
	ctx context.Context,
	original *models.Appointment,
	from domain.Status,
	replacement *models.Appointment,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := updateStatusFrom(tx, original, from); err != nil {
			return err
		}
		return tx.Create(replacement).Error
	})
}

// updateStatusFrom: UPDATE ... WHERE id = ? AND status = from.
func updateStatusFrom(db *gorm.DB, ap *models.Appointment, from domain.Status) error {
	res := db.
		Model(ap).
		Where("status = ?", string(from)).
		Select(statusColumns).
		Updates(ap)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrStatusChanged
	}
	return nil
}

// --------------------------------------------------
// Queries
// --------------------------------------------------

func (r *AppointmentGormRepository) ListActiveInRange(
	ctx context.Context,
	therapistID string,
	from time.Time,
	to time.Time,
) ([]models.Appointment, error) {

	var apps []models.Appointment
	if err := r.db.WithContext(ctx).
		Where(
			"therapist_id = ? AND status IN ? AND is_archived = false AND scheduled_at < ? AND end_time > ?",
			therapistID, domain.ActiveStatuses(), to, from,
		).
		Order("scheduled_at ASC").
		Find(&apps).Error; err != nil {
		return nil, err
	}

	return apps, nil
}

func (r *AppointmentGormRepository) ListForPeriod(
	ctx context.Context,
	therapistID string,
	from time.Time,
	to time.Time,
) ([]models.Appointment, error) {

	var apps []models.Appointment

	err := r.db.WithContext(ctx).
		Where(
			"therapist_id = ? AND scheduled_at >= ? AND scheduled_at < ?",
			therapistID,
			from,
			to,
		).
		Order("scheduled_at ASC").
		Find(&apps).Error

	if err != nil {
		return nil, err
	}

	return apps, nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	return err
}

// Compile-time check
var _ domain.Repository = (*AppointmentGormRepository)(nil)
