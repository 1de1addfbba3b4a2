package models

import "gorm.io/gorm"

type Stage struct {
	gorm.Model

	Name       string `gorm:"not null"`
	PipelineID uint   `gorm:"not null;index"`

	// Relationships
	Pipeline Pipeline `gorm:"foreignKey:PipelineID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
