package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EvaluationRun is the immutable record of one group evaluation.
type EvaluationRun struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	ReferenceID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"reference_id"`
	GroupID     uint      `gorm:"not null;index" json:"group_id"`
	Status      string    `gorm:"not null" json:"status"`
	EvaluatedAt time.Time `gorm:"not null;index" json:"evaluated_at"`
	CreatedAt   time.Time `json:"created_at"`

	// Relationships
	Group   InvariantGroup   `gorm:"foreignKey:GroupID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
	Results []CheckResultLog `gorm:"foreignKey:RunID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}

func (r *EvaluationRun) BeforeCreate(tx *gorm.DB) error {
	if r.ReferenceID == uuid.Nil {
		r.ReferenceID = uuid.New()
	}
	return nil
}
