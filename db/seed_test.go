package db

import (
	"testing"

	"github.com/funnelbase-dev/funnelbase/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupSeedDB(t *testing.T) {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	require.NoError(t, conn.AutoMigrate(
		&models.Permission{},
		&models.Role{},
		&models.User{},
		&models.Contact{},
		&models.Pipeline{},
		&models.Stage{},
		&models.OnboardingProfile{},
	))

	DB = conn
}

func TestSeedDatabaseCreatesRolesAndPermissions(t *testing.T) {
	setupSeedDB(t)

	require.NoError(t, SeedDatabase())

	var permissionCount int64
	require.NoError(t, DB.Model(&models.Permission{}).Count(&permissionCount).Error)
	assert.EqualValues(t, len(defaultPermissions), permissionCount)

	var admin models.Role
	require.NoError(t, DB.Preload("Permissions").Where("name = ?", "admin").First(&admin).Error)
	assert.Len(t, admin.Permissions, len(defaultPermissions))

	var sales models.Role
	require.NoError(t, DB.Preload("Permissions").Where("name = ?", "sales").First(&sales).Error)
	assert.Len(t, sales.Permissions, 3)
}

func TestSeedDatabaseIsIdempotent(t *testing.T) {
	setupSeedDB(t)

	require.NoError(t, SeedDatabase())
	require.NoError(t, SeedDatabase())

	var roleCount int64
	require.NoError(t, DB.Model(&models.Role{}).Count(&roleCount).Error)
	assert.EqualValues(t, len(defaultRoles), roleCount)
}
