package models

import "time"

type InvariantGroup struct {
	BaseModel

	ProjectID       uint   `gorm:"not null;index"`
	CloudAccountID  uint   `gorm:"not null;index"`
	Name            string `gorm:"not null"`
	Description     string
	IntervalMinutes int        `gorm:"not null;default:5"`
	Enabled         bool       `gorm:"not null;default:true"`
	LastStatus      string     `gorm:"not null;default:PENDING"`
	LastEvaluatedAt *time.Time

	// Relationships
	Project        Project         `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
	CloudAccount   CloudAccount    `gorm:"foreignKey:CloudAccountID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
	Checks         []Check         `gorm:"foreignKey:GroupID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
	EvaluationRuns []EvaluationRun `gorm:"foreignKey:GroupID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}
