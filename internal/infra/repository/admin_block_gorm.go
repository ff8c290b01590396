package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/BruksfildServices01/therapy-scheduler/internal/domain/availability"
	"github.com/BruksfildServices01/therapy-scheduler/internal/httperr"
	"github.com/BruksfildServices01/therapy-scheduler/internal/models"
)

type AdminBlockGormRepository struct {
	db *gorm.DB
}

func NewAdminBlockGormRepository(db *gorm.DB) *AdminBlockGormRepository {
	return &AdminBlockGormRepository{db: db}
}

func (r *AdminBlockGormRepository) ListActive(
	ctx context.Context,
	therapistID string,
	from time.Time,
	to time.Time,
) ([]models.AdminBlock, error) {

	var blocks []models.AdminBlock
	if err := r.db.WithContext(ctx).
		Where("active = true").
		Where("therapist_id IS NULL OR therapist_id = ?", therapistID).
		// recorrentes são projetados depois (availability.Occurrences)
		Where("is_recurring = true OR (start_time < ? AND end_time > ?)", to, from).
		Order("start_time ASC").
		Find(&blocks).Error; err != nil {
		return nil, err
	}
	return blocks, nil
}

func (r *AdminBlockGormRepository) CreateBlock(
	ctx context.Context,
	b *models.AdminBlock,
) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *AdminBlockGormRepository) ListBlocks(
	ctx context.Context,
	f availability.BlockFilter,
) ([]models.AdminBlock, error) {

	q := r.db.WithContext(ctx).Model(&models.AdminBlock{})

	if f.ActiveOnly {
		q = q.Where("active = true")
	}
	if f.TherapistID != "" {
		q = q.Where("therapist_id IS NULL OR therapist_id = ?", f.TherapistID)
	}
	if !f.From.IsZero() {
		q = q.Where("is_recurring = true OR end_time > ?", f.From)
	}
	if !f.To.IsZero() {
		q = q.Where("start_time < ?", f.To)
	}

	var blocks []models.AdminBlock
	if err := q.Order("start_time ASC").Find(&blocks).Error; err != nil {
		return nil, err
	}
	return blocks, nil
}

func (r *AdminBlockGormRepository) DeactivateBlock(
	ctx context.Context,
	id uint,
) error {
	res := r.db.WithContext(ctx).
		Model(&models.AdminBlock{}).
		Where("id = ?", id).
		Update("active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return httperr.ErrBusiness("block_not_found")
	}
	return nil
}

var _ availability.BlockStore = (*AdminBlockGormRepository)(nil)
