package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Screening rows are append-only. At most one per (job, candidate) is enforced by the
// add-candidates flow, not by a constraint.
type Screening struct {
	ID                 uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	FinalScore         float64        `gorm:"type:numeric(5,2);index" json:"final_score"`
	UnadjustedScore    int            `json:"unadjusted_score"`
	QualityMultiplier  float64        `gorm:"type:numeric(3,2)" json:"quality_multiplier"`
	SkillMatchAnalysis datatypes.JSON `gorm:"type:jsonb" json:"skill_match_analysis"`
	ScreenedAt         time.Time      `gorm:"autoCreateTime" json:"screened_at"`
	JobID              uuid.UUID      `gorm:"type:uuid;index" json:"job_id"`
	CandidateID        uuid.UUID      `gorm:"type:uuid;index" json:"candidate_id"`
	Job                *Job           `gorm:"foreignKey:JobID" json:"job,omitempty"`
	Candidate          *Candidate     `gorm:"foreignKey:CandidateID" json:"candidate,omitempty"`
}

func (s *Screening) TableName() string {
	return "screenings"
}
