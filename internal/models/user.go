package models

import "gorm.io/gorm"

type User struct {
	gorm.Model

	Name         string `gorm:"not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`

	// Relationships
	Roles    []Role    `gorm:"many2many:user_roles;constraint:OnDelete:CASCADE"`
	Contacts []Contact `gorm:"foreignKey:OwnerID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}

// HasRole reports whether the user holds the named role. Roles must be
// preloaded.
func (u *User) HasRole(name string) bool {
	for _, role := range u.Roles {
		if role.Name == name {
			return true
		}
	}

	return false
}

// HasPermission reports whether any of the user's roles grants the named
// permission. Roles and their Permissions must be preloaded.
func (u *User) HasPermission(name string) bool {
	for _, role := range u.Roles {
		for _, permission := range role.Permissions {
			if permission.Name == name {
				return true
			}
		}
	}

	return false
}
