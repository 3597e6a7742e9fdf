package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type Job struct {
	ID           uuid.UUID        `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Title        string           `gorm:"type:varchar(255);index" json:"title"`
	RawText      string           `gorm:"type:text" json:"raw_text"`
	StructuredJD datatypes.JSON   `gorm:"type:jsonb" json:"structured_jd"`
	Embedding    *pgvector.Vector `gorm:"type:vector(3072)" json:"-"` // nil when embeddings are disabled
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

func (j *Job) TableName() string {
	return "jobs"
}
