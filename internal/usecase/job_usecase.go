package usecase

import (
	"context"
	"fmt"

	"github.com/fadilmartias/resume-screener/internal/model"
	"github.com/fadilmartias/resume-screener/internal/repository"
	"github.com/fadilmartias/resume-screener/internal/response"
	"github.com/fadilmartias/resume-screener/internal/service"
	"github.com/google/uuid"
)

const DefaultSimilarJobs = 5

type JobUsecase struct {
	jobs       JobStore
	screenings ScreeningStore
}

func NewJobUsecase(jobs JobStore, screenings ScreeningStore) *JobUsecase {
	return &JobUsecase{jobs: jobs, screenings: screenings}
}

func (uc *JobUsecase) ListJobs(ctx context.Context, page, pageSize int) ([]repository.JobSummaryRow, *response.Pagination, error) {
	page, pageSize, offset := response.NormalizePage(page, pageSize)
	rows, total, err := uc.jobs.List(ctx, offset, pageSize)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	return rows, response.NewPagination(page, pageSize, total, len(rows)), nil
}

func (uc *JobUsecase) GetJob(ctx context.Context, id uuid.UUID) (*model.Job, error) {
	job, err := uc.jobs.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load job: %w", err)
	}
	if job == nil {
		return nil, ErrJobNotFound
	}
	return job, nil
}

// ListScreenings pages through a job's screenings ordered by final score, best first.
func (uc *JobUsecase) ListScreenings(ctx context.Context, jobID uuid.UUID, page, pageSize int) ([]model.Screening, *response.Pagination, error) {
	if _, err := uc.GetJob(ctx, jobID); err != nil {
		return nil, nil, err
	}
	page, pageSize, offset := response.NormalizePage(page, pageSize)
	screenings, total, err := uc.screenings.ListByJob(ctx, jobID, offset, pageSize)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list screenings: %w", err)
	}
	return screenings, response.NewPagination(page, pageSize, total, len(screenings)), nil
}

// ExportScreenings renders every screening of the job as an xlsx workbook.
func (uc *JobUsecase) ExportScreenings(ctx context.Context, jobID uuid.UUID) (*model.Job, []byte, error) {
	job, err := uc.GetJob(ctx, jobID)
	if err != nil {
		return nil, nil, err
	}
	screenings, err := uc.screenings.ListAllByJob(ctx, jobID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list screenings: %w", err)
	}
	data, err := service.ExportScreenings(job, screenings)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to export screenings: %w", err)
	}
	return job, data, nil
}

// SimilarJobs returns the jobs closest to this one by description embedding. Jobs stored
// without an embedding have no neighbours.
func (uc *JobUsecase) SimilarJobs(ctx context.Context, jobID uuid.UUID, limit int) ([]repository.SimilarJobRow, error) {
	if _, err := uc.GetJob(ctx, jobID); err != nil {
		return nil, err
	}
	if limit < 1 || limit > response.MaxPageSize {
		limit = DefaultSimilarJobs
	}
	rows, err := uc.jobs.SearchSimilar(ctx, jobID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search similar jobs: %w", err)
	}
	return rows, nil
}

// DeleteJob removes the job together with its screenings.
func (uc *JobUsecase) DeleteJob(ctx context.Context, id uuid.UUID) error {
	deleted, err := uc.jobs.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}
	if !deleted {
		return ErrJobNotFound
	}
	return nil
}

func (uc *JobUsecase) DeleteScreening(ctx context.Context, id uuid.UUID) error {
	deleted, err := uc.screenings.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete screening: %w", err)
	}
	if !deleted {
		return ErrScreeningNotFound
	}
	return nil
}
