package repository

import (
	"context"
	"errors"
	"time"

	"github.com/fadilmartias/resume-screener/internal/model"
	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type JobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db}
}

// JobSummaryRow is a job listing row with its screening count.
type JobSummaryRow struct {
	ID             uuid.UUID
	Title          string
	CreatedAt      time.Time
	CandidateCount int64
}

// SimilarJobRow is a job with its cosine distance to the probe embedding.
type SimilarJobRow struct {
	ID        uuid.UUID
	Title     string
	CreatedAt time.Time
	Distance  float64
}

// FindByTitle returns nil, nil when no job has that title.
func (r *JobRepository) FindByTitle(ctx context.Context, title string) (*model.Job, error) {
	var j model.Job
	err := r.db.WithContext(ctx).Where("title = ?", title).Order("created_at ASC").First(&j).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &j, nil
}

func (r *JobRepository) Create(ctx context.Context, job *model.Job) error {
	return r.db.WithContext(ctx).Create(job).Error
}

// FindByID returns nil, nil when the job does not exist.
func (r *JobRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Job, error) {
	var j model.Job
	err := r.db.WithContext(ctx).First(&j, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &j, nil
}

func (r *JobRepository) List(ctx context.Context, offset, limit int) ([]JobSummaryRow, int64, error) {
	db := r.db.WithContext(ctx)

	var total int64
	if err := db.Model(&model.Job{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []JobSummaryRow
	err := db.Raw(`
        SELECT j.id, j.title, j.created_at,
               (SELECT COUNT(*) FROM screenings s WHERE s.job_id = j.id) AS candidate_count
        FROM jobs j
        ORDER BY j.created_at DESC
        OFFSET ? LIMIT ?
    `, offset, limit).Scan(&rows).Error
	return rows, total, err
}

// Delete removes the job and its screenings in one transaction. It reports false when the
// job did not exist.
func (r *JobRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	var deleted bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("job_id = ?", id).Delete(&model.Screening{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&model.Job{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	return deleted, err
}

func (r *JobRepository) UpdateEmbedding(ctx context.Context, id uuid.UUID, embedding []float32) error {
	vec := pgvector.NewVector(embedding)
	return r.db.WithContext(ctx).Model(&model.Job{}).Where("id = ?", id).Update("embedding", vec).Error
}

// SearchSimilar orders jobs by cosine distance to the embedding of the given job,
// excluding the job itself and jobs without an embedding.
func (r *JobRepository) SearchSimilar(ctx context.Context, id uuid.UUID, topK int) ([]SimilarJobRow, error) {
	var rows []SimilarJobRow
	err := r.db.WithContext(ctx).Raw(`
        SELECT j.id, j.title, j.created_at, j.embedding <=> src.embedding AS distance
        FROM jobs j, jobs src
        WHERE src.id = ? AND src.embedding IS NOT NULL
          AND j.id <> src.id AND j.embedding IS NOT NULL
        ORDER BY j.embedding <=> src.embedding
        LIMIT ?
    `, id, topK).Scan(&rows).Error
	return rows, err
}
