package repository

import (
	"context"
	"errors"

	"github.com/fadilmartias/resume-screener/internal/model"
	"gorm.io/gorm"
)

type CandidateRepository struct {
	db *gorm.DB
}

func NewCandidateRepository(db *gorm.DB) *CandidateRepository {
	return &CandidateRepository{db}
}

// FindByContact returns nil, nil when no candidate uses that contact string.
func (r *CandidateRepository) FindByContact(ctx context.Context, contact string) (*model.Candidate, error) {
	var c model.Candidate
	err := r.db.WithContext(ctx).Where("contact = ?", contact).Order("created_at ASC").First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CandidateRepository) Create(ctx context.Context, candidate *model.Candidate) error {
	return r.db.WithContext(ctx).Create(candidate).Error
}
