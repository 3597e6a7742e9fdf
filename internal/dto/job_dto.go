package dto

import (
	"time"

	"github.com/fadilmartias/resume-screener/internal/model"
	"github.com/fadilmartias/resume-screener/internal/repository"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type PageQuery struct {
	Page     int `query:"page" validate:"omitempty,min=1"`
	PageSize int `query:"page_size" validate:"omitempty,min=1,max=100"`
}

type SimilarQuery struct {
	Limit int `query:"limit" validate:"omitempty,min=1,max=100"`
}

type JobSummaryDTO struct {
	ID             uuid.UUID `json:"id"`
	Title          string    `json:"title"`
	CreatedAt      time.Time `json:"created_at"`
	CandidateCount int64     `json:"candidate_count"`
}

type JobDetailDTO struct {
	ID           uuid.UUID      `json:"id"`
	Title        string         `json:"title"`
	RawText      string         `json:"raw_text"`
	StructuredJD datatypes.JSON `json:"structured_jd"`
	CreatedAt    time.Time      `json:"created_at"`
}

type JobRefDTO struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`
}

type SimilarJobDTO struct {
	ID         uuid.UUID `json:"id"`
	Title      string    `json:"title"`
	CreatedAt  time.Time `json:"created_at"`
	Similarity float64   `json:"similarity"`
}

func NewJobSummaries(rows []repository.JobSummaryRow) []JobSummaryDTO {
	out := make([]JobSummaryDTO, len(rows))
	for i, r := range rows {
		out[i] = JobSummaryDTO{ID: r.ID, Title: r.Title, CreatedAt: r.CreatedAt, CandidateCount: r.CandidateCount}
	}
	return out
}

func NewJobDetail(j *model.Job) JobDetailDTO {
	return JobDetailDTO{
		ID:           j.ID,
		Title:        j.Title,
		RawText:      j.RawText,
		StructuredJD: j.StructuredJD,
		CreatedAt:    j.CreatedAt,
	}
}

// NewSimilarJobs converts cosine distance into similarity (1 - distance).
func NewSimilarJobs(rows []repository.SimilarJobRow) []SimilarJobDTO {
	out := make([]SimilarJobDTO, len(rows))
	for i, r := range rows {
		out[i] = SimilarJobDTO{ID: r.ID, Title: r.Title, CreatedAt: r.CreatedAt, Similarity: 1 - r.Distance}
	}
	return out
}
