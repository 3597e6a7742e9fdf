package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Candidate struct {
	ID               uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	FullName         string         `gorm:"type:varchar(255);index" json:"full_name"`
	Contact          string         `gorm:"type:varchar(255);index" json:"contact"`
	RawText          string         `gorm:"type:text" json:"raw_text"`
	StructuredResume datatypes.JSON `gorm:"type:jsonb" json:"structured_resume"`
	TotalExperience  float64        `gorm:"type:numeric(5,2)" json:"total_experience"`
	ResumeKey        string         `gorm:"type:varchar(512)" json:"resume_key"`
	CreatedAt        time.Time      `json:"created_at"`
}

func (c *Candidate) TableName() string {
	return "candidates"
}
