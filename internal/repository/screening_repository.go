package repository

import (
	"context"
	"errors"

	"github.com/fadilmartias/resume-screener/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ScreeningRepository struct {
	db *gorm.DB
}

func NewScreeningRepository(db *gorm.DB) *ScreeningRepository {
	return &ScreeningRepository{db}
}

func (r *ScreeningRepository) Create(ctx context.Context, screening *model.Screening) error {
	return r.db.WithContext(ctx).Create(screening).Error
}

func (r *ScreeningRepository) ExistsForPair(ctx context.Context, jobID, candidateID uuid.UUID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Screening{}).
		Where("job_id = ? AND candidate_id = ?", jobID, candidateID).
		Count(&n).Error
	return n > 0, err
}

// ListByJob returns one page of a job's screenings, best score first.
func (r *ScreeningRepository) ListByJob(ctx context.Context, jobID uuid.UUID, offset, limit int) ([]model.Screening, int64, error) {
	db := r.db.WithContext(ctx)

	var total int64
	if err := db.Model(&model.Screening{}).Where("job_id = ?", jobID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var screenings []model.Screening
	err := db.Preload("Job").Preload("Candidate").
		Where("job_id = ?", jobID).
		Order("final_score DESC").Order("screened_at ASC").
		Offset(offset).Limit(limit).
		Find(&screenings).Error
	return screenings, total, err
}

func (r *ScreeningRepository) ListAllByJob(ctx context.Context, jobID uuid.UUID) ([]model.Screening, error) {
	var screenings []model.Screening
	err := r.db.WithContext(ctx).Preload("Candidate").
		Where("job_id = ?", jobID).
		Order("final_score DESC").Order("screened_at ASC").
		Find(&screenings).Error
	return screenings, err
}

// FindByID returns nil, nil when the screening does not exist.
func (r *ScreeningRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Screening, error) {
	var s model.Screening
	err := r.db.WithContext(ctx).Preload("Job").Preload("Candidate").First(&s, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Delete reports false when no screening had that id.
func (r *ScreeningRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Screening{})
	return res.RowsAffected > 0, res.Error
}
