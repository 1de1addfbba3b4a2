package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/funnelbase-dev/funnelbase/db"
	"github.com/funnelbase-dev/funnelbase/internal/auth"
	"github.com/funnelbase-dev/funnelbase/internal/models"
	"github.com/funnelbase-dev/funnelbase/internal/router"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
	auth.SetJWTSecret("test-secret")
}

// setupTestDB points the global connection at a fresh in-memory database
// scoped to the calling test.
func setupTestDB(t *testing.T) {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
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

	db.DB = conn
}

func newTestRouter() *gin.Engine {
	return router.NewRouter()
}

func createTestUser(t *testing.T, name, email string, roles ...models.Role) (models.User, string) {
	t.Helper()

	passwordHash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	user := models.User{Name: name, Email: email, PasswordHash: string(passwordHash)}
	require.NoError(t, db.DB.Create(&user).Error)

	if len(roles) > 0 {
		require.NoError(t, db.DB.Model(&user).Association("Roles").Replace(roles))
	}

	token, err := auth.GenerateJWT(user.ID, user.Email)
	require.NoError(t, err)

	return user, token
}

// createTestRole creates a role granting the named permissions, creating any
// permission that does not exist yet.
func createTestRole(t *testing.T, name string, permissionNames ...string) models.Role {
	t.Helper()

	role := models.Role{Name: name}
	require.NoError(t, db.DB.Create(&role).Error)

	permissions := make([]models.Permission, 0, len(permissionNames))

	for _, permissionName := range permissionNames {
		var permission models.Permission
		require.NoError(t, db.DB.Where(models.Permission{Name: permissionName}).FirstOrCreate(&permission).Error)
		permissions = append(permissions, permission)
	}

	require.NoError(t, db.DB.Model(&role).Association("Permissions").Replace(permissions))

	role.Permissions = permissions

	return role
}

func performRequest(t *testing.T, r http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader

	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	return body
}
