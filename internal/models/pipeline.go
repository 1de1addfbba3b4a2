package models

import "gorm.io/gorm"

type Pipeline struct {
	gorm.Model

	Name string `gorm:"not null"`

	// Relationships
	Stages []Stage `gorm:"foreignKey:PipelineID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}

// DefaultStageNames are seeded with every new pipeline, in this order.
var DefaultStageNames = []string{"Prospect", "Negotiation", "Closed"}
