package models

import "gorm.io/gorm"

type Contact struct {
	gorm.Model

	Name        string `gorm:"not null"`
	Phone       string `gorm:"not null"`
	Email       string
	Website     string
	City        string
	State       string
	Country     string
	CompanyName string
	OwnerID     uint `gorm:"not null;index"`
	// DealID is unconstrained; deals live outside this schema.
	DealID *uint

	// Relationships
	Owner User `gorm:"foreignKey:OwnerID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
