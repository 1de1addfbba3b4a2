package db

import (
	"errors"
	"log"
	"os"

	"github.com/funnelbase-dev/funnelbase/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var defaultPermissions = []string{
	"view leads",
	"create leads",
	"edit leads",
	"delete leads",
	"manage roles",
	"manage permissions",
	"view dashboard",
}

var defaultRoles = map[string][]string{
	"admin":   defaultPermissions,
	"manager": {"view leads", "create leads", "edit leads", "view dashboard"},
	"sales":   {"view leads", "create leads", "view dashboard"},
}

// SeedDatabase creates the default permissions, roles and the admin user on
// first boot. Existing rows are left untouched, so it is safe to run on every
// startup.
func SeedDatabase() error {
	permissions := make(map[string]models.Permission, len(defaultPermissions))

	for _, name := range defaultPermissions {
		var permission models.Permission

		if err := DB.Where(models.Permission{Name: name}).FirstOrCreate(&permission).Error; err != nil {
			return err
		}

		permissions[name] = permission
	}

	for name, permissionNames := range defaultRoles {
		var role models.Role

		err := DB.Where(models.Role{Name: name}).First(&role).Error

		if err == nil {
			continue
		}

		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		role = models.Role{Name: name}

		if err := DB.Create(&role).Error; err != nil {
			return err
		}

		grants := make([]models.Permission, 0, len(permissionNames))

		for _, permissionName := range permissionNames {
			grants = append(grants, permissions[permissionName])
		}

		if err := DB.Model(&role).Association("Permissions").Replace(grants); err != nil {
			return err
		}
	}

	return seedAdminUser()
}

func seedAdminUser() error {
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")

	if email == "" || password == "" {
		log.Println("ADMIN_EMAIL or ADMIN_PASSWORD not set, skipping admin user seed")
		return nil
	}

	var existing models.User

	err := DB.Where("email = ?", email).First(&existing).Error

	if err == nil {
		return nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

	if err != nil {
		return err
	}

	admin := models.User{
		Name:         "Admin User",
		Email:        email,
		PasswordHash: string(passwordHash),
	}

	if err := DB.Create(&admin).Error; err != nil {
		return err
	}

	var adminRole models.Role

	if err := DB.Where("name = ?", "admin").First(&adminRole).Error; err != nil {
		return err
	}

	return DB.Model(&admin).Association("Roles").Replace([]models.Role{adminRole})
}
