package usecase

import (
	"context"

	"github.com/fadilmartias/resume-screener/internal/analyzer"
	"github.com/fadilmartias/resume-screener/internal/model"
	"github.com/fadilmartias/resume-screener/internal/repository"
	"github.com/google/uuid"
)

type JobStore interface {
	FindByTitle(ctx context.Context, title string) (*model.Job, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Job, error)
	Create(ctx context.Context, job *model.Job) error
	List(ctx context.Context, offset, limit int) ([]repository.JobSummaryRow, int64, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	UpdateEmbedding(ctx context.Context, id uuid.UUID, embedding []float32) error
	SearchSimilar(ctx context.Context, id uuid.UUID, topK int) ([]repository.SimilarJobRow, error)
}

type CandidateStore interface {
	FindByContact(ctx context.Context, contact string) (*model.Candidate, error)
	Create(ctx context.Context, candidate *model.Candidate) error
}

type ScreeningStore interface {
	Create(ctx context.Context, screening *model.Screening) error
	ExistsForPair(ctx context.Context, jobID, candidateID uuid.UUID) (bool, error)
	ListByJob(ctx context.Context, jobID uuid.UUID, offset, limit int) ([]model.Screening, int64, error)
	ListAllByJob(ctx context.Context, jobID uuid.UUID) ([]model.Screening, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Screening, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// Analyzer is the part of analyzer.Pipeline the usecases drive.
type Analyzer interface {
	DeconstructJD(ctx context.Context, jobDescription string) (analyzer.RequirementProfile, error)
	AnalyzeBatch(ctx context.Context, req analyzer.RequirementProfile, docs []analyzer.Document, limit int) []analyzer.BatchItem
}
