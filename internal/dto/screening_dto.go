package dto

import (
	"time"

	"github.com/fadilmartias/resume-screener/internal/model"
	"github.com/fadilmartias/resume-screener/internal/usecase"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type CandidateRefDTO struct {
	ID              uuid.UUID `json:"id"`
	FullName        string    `json:"full_name"`
	Contact         string    `json:"contact"`
	TotalExperience float64   `json:"total_experience"`
}

type ScreeningDTO struct {
	ID                 uuid.UUID        `json:"id"`
	FinalScore         float64          `json:"final_score"`
	UnadjustedScore    int              `json:"unadjusted_score"`
	QualityMultiplier  float64          `json:"quality_multiplier"`
	SkillMatchAnalysis datatypes.JSON   `json:"skill_match_analysis"`
	ScreenedAt         time.Time        `json:"screened_at"`
	Job                *JobRefDTO       `json:"job,omitempty"`
	Candidate          *CandidateRefDTO `json:"candidate,omitempty"`
}

// BatchResponseDTO is returned by the upload endpoints. Skipped lists every resume that
// did not produce a screening.
type BatchResponseDTO struct {
	Job        JobRefDTO               `json:"job"`
	Screenings []ScreeningDTO          `json:"screenings"`
	Skipped    []usecase.SkippedResume `json:"skipped"`
}

func NewScreening(s model.Screening) ScreeningDTO {
	out := ScreeningDTO{
		ID:                 s.ID,
		FinalScore:         s.FinalScore,
		UnadjustedScore:    s.UnadjustedScore,
		QualityMultiplier:  s.QualityMultiplier,
		SkillMatchAnalysis: s.SkillMatchAnalysis,
		ScreenedAt:         s.ScreenedAt,
	}
	if s.Job != nil {
		out.Job = &JobRefDTO{ID: s.Job.ID, Title: s.Job.Title}
	}
	if s.Candidate != nil {
		out.Candidate = &CandidateRefDTO{
			ID:              s.Candidate.ID,
			FullName:        s.Candidate.FullName,
			Contact:         s.Candidate.Contact,
			TotalExperience: s.Candidate.TotalExperience,
		}
	}
	return out
}

func NewScreenings(screenings []model.Screening) []ScreeningDTO {
	out := make([]ScreeningDTO, len(screenings))
	for i, s := range screenings {
		out[i] = NewScreening(s)
	}
	return out
}

func NewBatchResponse(res *usecase.BatchResult) BatchResponseDTO {
	out := BatchResponseDTO{
		Screenings: NewScreenings(res.Screenings),
		Skipped:    res.Skipped,
	}
	if out.Skipped == nil {
		out.Skipped = []usecase.SkippedResume{}
	}
	if res.Job != nil {
		out.Job = JobRefDTO{ID: res.Job.ID, Title: res.Job.Title}
	}
	return out
}
