package models

import (
	"gorm.io/datatypes"
)

// Check is one structural assertion against a specific resource. Checks are
// soft-deleted (alias cleared, then the deletion marker set) so historical
// CheckResultLog rows stay joinable after removal.
type Check struct {
	BaseModel

	GroupID    uint   `gorm:"not null;index"`
	Name       string `gorm:"not null"`
	Service    string `gorm:"not null"` // "ec2", "s3", "network", ...
	Scope      string `gorm:"not null;default:GLOBAL"`
	Region     string // required iff Scope == REGIONAL
	Type       string `gorm:"not null"` // service-specific check type
	Parameters datatypes.JSONMap `gorm:"type:jsonb"`
	Operator   string `gorm:"not null;default:EQUALS"`
	Alias      string `gorm:"index"` // chaining handle, unique among live checks of a group

	// Relationships
	Group InvariantGroup `gorm:"foreignKey:GroupID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}
