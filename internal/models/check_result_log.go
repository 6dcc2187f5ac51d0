package models

import "time"

// CheckResultLog is one check's outcome within an EvaluationRun. CheckID may
// reference a soft-deleted Check.
type CheckResultLog struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	RunID     uint      `gorm:"not null;index" json:"run_id"`
	CheckID   uint      `gorm:"not null;index" json:"check_id"`
	Status    string    `gorm:"not null" json:"status"`
	Expected  string    `json:"expected"`
	Observed  string    `json:"observed"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`

	// Relationships
	Run EvaluationRun `gorm:"foreignKey:RunID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}
