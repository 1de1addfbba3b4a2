package handlers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/funnelbase-dev/funnelbase/db"
	"github.com/funnelbase-dev/funnelbase/internal/models"
	"github.com/funnelbase-dev/funnelbase/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func adminUser(t *testing.T) (models.User, string) {
	t.Helper()

	admin := createTestRole(t, types.RoleAdmin, types.PermissionViewLeads, types.PermissionDeleteLeads)
	return createTestUser(t, "Admin", "admin@example.com", admin)
}

func TestCreateRoleWithPermissions(t *testing.T) {
	setupTestDB(t)
	r := newTestRouter()
	_, token := adminUser(t)

	var viewLeads models.Permission
	require.NoError(t, db.DB.Where("name = ?", types.PermissionViewLeads).First(&viewLeads).Error)

	w := performRequest(t, r, http.MethodPost, "/api/roles", token, map[string]interface{}{
		"name":        "sales",
		"permissions": []uint{viewLeads.ID},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "sales", body["name"])

	permissions := body["permissions"].([]interface{})
	require.Len(t, permissions, 1)
	assert.Equal(t, types.PermissionViewLeads, permissions[0].(map[string]interface{})["name"])
}

func TestCreateRoleDuplicateName(t *testing.T) {
	setupTestDB(t)
	r := newTestRouter()
	_, token := adminUser(t)
	createTestRole(t, "sales")

	w := performRequest(t, r, http.MethodPost, "/api/roles", token, map[string]interface{}{"name": "sales"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	errors := decodeBody(t, w)["errors"].(map[string]interface{})
	assert.Contains(t, errors, "name")
}

func TestCreateRoleNameHeldByDeletedRole(t *testing.T) {
	setupTestDB(t)
	r := newTestRouter()
	_, token := adminUser(t)

	sales := createTestRole(t, "sales")

	w := performRequest(t, r, http.MethodDelete, fmt.Sprintf("/api/roles/%d", sales.ID), token, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	// The soft-deleted row is invisible to the lookup but still holds the
	// unique index, so the conflict only surfaces on insert.
	w = performRequest(t, r, http.MethodPost, "/api/roles", token, map[string]interface{}{"name": "sales"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	errors := decodeBody(t, w)["errors"].(map[string]interface{})
	assert.Contains(t, errors, "name")
}

func TestUpdateRoleResyncsPermissions(t *testing.T) {
	setupTestDB(t)
	r := newTestRouter()
	_, token := adminUser(t)

	role := createTestRole(t, "sales", types.PermissionViewLeads, types.PermissionCreateLeads)

	var editLeads models.Permission
	require.NoError(t, db.DB.Where(models.Permission{Name: types.PermissionEditLeads}).FirstOrCreate(&editLeads).Error)

	// Exactly the given set: edit replaces view+create.
	w := performRequest(t, r, http.MethodPut, fmt.Sprintf("/api/roles/%d", role.ID), token, map[string]interface{}{
		"name":        "sales",
		"permissions": []uint{editLeads.ID},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var reloaded models.Role
	require.NoError(t, db.DB.Preload("Permissions").First(&reloaded, role.ID).Error)
	require.Len(t, reloaded.Permissions, 1)
	assert.Equal(t, types.PermissionEditLeads, reloaded.Permissions[0].Name)
}

func TestEmptyPermissionSyncIsIdempotent(t *testing.T) {
	setupTestDB(t)
	r := newTestRouter()
	_, token := adminUser(t)

	role := createTestRole(t, "sales", types.PermissionViewLeads)

	for i := 0; i < 2; i++ {
		w := performRequest(t, r, http.MethodPut, fmt.Sprintf("/api/roles/%d", role.ID), token, map[string]interface{}{
			"name":        "sales",
			"permissions": []uint{},
		})
		require.Equal(t, http.StatusOK, w.Code)

		var reloaded models.Role
		require.NoError(t, db.DB.Preload("Permissions").First(&reloaded, role.ID).Error)
		assert.Empty(t, reloaded.Permissions)
	}
}

func TestDeleteRoleRemovesItFromHolders(t *testing.T) {
	setupTestDB(t)
	r := newTestRouter()
	_, token := adminUser(t)

	sales := createTestRole(t, "sales", types.PermissionViewLeads)
	holder, _ := createTestUser(t, "Sal", "sal@example.com", sales)

	w := performRequest(t, r, http.MethodDelete, fmt.Sprintf("/api/roles/%d", sales.ID), token, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	var reloaded models.User
	require.NoError(t, db.DB.Preload("Roles").First(&reloaded, holder.ID).Error)
	assert.Empty(t, reloaded.Roles)
}

func TestRolesPermissionsEndpointRequiresAdmin(t *testing.T) {
	setupTestDB(t)
	r := newTestRouter()
	_, plainToken := createTestUser(t, "Plain", "plain@example.com")

	w := performRequest(t, r, http.MethodGet, "/api/roles-permissions", plainToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	_, adminToken := adminUser(t)

	w = performRequest(t, r, http.MethodGet, "/api/roles-permissions", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Contains(t, body, "roles")
	assert.Contains(t, body, "permissions")
}

// Granting a role opens the gated endpoint; pulling the permission out of the
// role closes it again on the very next request.
func TestPermissionRevocationTakesEffectImmediately(t *testing.T) {
	setupTestDB(t)
	r := newTestRouter()

	sales := createTestRole(t, "sales", types.PermissionViewLeads)
	_, token := createTestUser(t, "Sal", "sal@example.com", sales)

	w := performRequest(t, r, http.MethodGet, "/api/leads", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, db.DB.Model(&sales).Association("Permissions").Clear())

	w = performRequest(t, r, http.MethodGet, "/api/leads", token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
