package models

type CloudAccount struct {
	BaseModel

	ProjectID     uint   `gorm:"not null;index"`
	Name          string `gorm:"not null"`
	Provider      string `gorm:"not null;default:aws"`
	AccountID     string `gorm:"not null"`
	DefaultRegion string `gorm:"not null"`

	// Static key pair, or a role to assume for cross-account access.
	// Exactly one credential shape must be present; the credential
	// provider validates at evaluation time.
	AccessKeyID     string
	SecretAccessKey string `json:"-"`
	RoleARN         string
	ExternalID      string `json:"-"`

	// Relationships
	Project         Project          `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
	InvariantGroups []InvariantGroup `gorm:"foreignKey:CloudAccountID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}
