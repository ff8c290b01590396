package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/BruksfildServices01/therapy-scheduler/internal/domain/availability"
	"github.com/BruksfildServices01/therapy-scheduler/internal/models"
)

type AvailabilityGormRepository struct {
	db *gorm.DB
}

func NewAvailabilityGormRepository(db *gorm.DB) *AvailabilityGormRepository {
	return &AvailabilityGormRepository{db: db}
}

func (r *AvailabilityGormRepository) ListWindows(
	ctx context.Context,
	therapistID string,
) ([]models.AvailabilityWindow, error) {

	var windows []models.AvailabilityWindow
	if err := r.db.WithContext(ctx).
		Where("therapist_id = ?", therapistID).
		Order("day_of_week ASC, start_time ASC").
		Find(&windows).Error; err != nil {
		return nil, err
	}
	return windows, nil
}

func (r *AvailabilityGormRepository) CalendarID(
	ctx context.Context,
	therapistID string,
) (string, error) {

	var link models.CalendarLink
	err := r.db.WithContext(ctx).
		Where("therapist_id = ?", therapistID).
		First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return link.CalendarID, nil
}

// ReplaceSchedule: delete + insert na mesma transação, nenhum leitor vê
// a agenda pela metade.
func (r *AvailabilityGormRepository) ReplaceSchedule(
	ctx context.Context,
	s availability.Schedule,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		if err := tx.
			Where("therapist_id = ?", s.TherapistID).
			Delete(&models.AvailabilityWindow{}).Error; err != nil {
			return err
		}

		if len(s.Windows) > 0 {
			for i := range s.Windows {
				s.Windows[i].ID = 0
				s.Windows[i].TherapistID = s.TherapistID
			}
			if err := tx.Create(&s.Windows).Error; err != nil {
				return err
			}
		}

		if s.CalendarID == nil {
			return nil
		}

		if *s.CalendarID == "" {
			return tx.
				Where("therapist_id = ?", s.TherapistID).
				Delete(&models.CalendarLink{}).Error
		}

		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "therapist_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"calendar_id", "updated_at"}),
		}).Create(&models.CalendarLink{
			TherapistID: s.TherapistID,
			CalendarID:  *s.CalendarID,
		}).Error
	})
}

var _ availability.Store = (*AvailabilityGormRepository)(nil)
