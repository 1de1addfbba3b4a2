package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// OnboardingProfile tracks a user's progress through the multi-step
// onboarding form. Data holds the accumulated form payload as-is.
type OnboardingProfile struct {
	gorm.Model

	UserID    uint           `gorm:"not null;uniqueIndex"`
	Step      int            `gorm:"not null;default:1"`
	Completed bool           `gorm:"default:false"`
	Data      datatypes.JSON `gorm:"type:jsonb"`

	// Relationships
	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
