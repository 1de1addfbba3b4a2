package models

import "gorm.io/gorm"

// Permission is an atomic capability gate, e.g. "view leads" or "manage roles".
type Permission struct {
	gorm.Model

	Name string `gorm:"uniqueIndex;not null"`

	// Relationships
	Roles []Role `gorm:"many2many:role_permissions;constraint:OnDelete:CASCADE"`
}
