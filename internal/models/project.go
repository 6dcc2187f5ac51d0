package models

import "gorm.io/gorm"

type Project struct {
	gorm.Model

	Name           string `gorm:"not null"`
	Description    string
	OwnerID        uint `gorm:"not null;index"`
	DiscordWebhook string
	SlackWebhook   string

	// Relationships
	Owner           User             `gorm:"foreignKey:OwnerID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	CloudAccounts   []CloudAccount   `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	InvariantGroups []InvariantGroup `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
