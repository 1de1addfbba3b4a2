package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	setupTestDB(t)
	r := newTestRouter()

	w := performRequest(t, r, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":     "Ann",
		"email":    "Ann@Example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	user := decodeBody(t, w)["user"].(map[string]interface{})
	// Emails are normalized on the way in.
	assert.Equal(t, "ann@example.com", user["email"])

	w = performRequest(t, r, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "ann@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	w = performRequest(t, r, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "ann@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	setupTestDB(t)
	r := newTestRouter()
	createTestUser(t, "Ann", "ann@example.com")

	w := performRequest(t, r, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":     "Ann Again",
		"email":    "ann@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	errors := decodeBody(t, w)["errors"].(map[string]interface{})
	assert.Contains(t, errors, "email")
}

func TestMeRequiresAuth(t *testing.T) {
	setupTestDB(t)
	r := newTestRouter()

	w := performRequest(t, r, http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	_, token := createTestUser(t, "Ann", "ann@example.com")

	w = performRequest(t, r, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	user := decodeBody(t, w)["user"].(map[string]interface{})
	assert.Equal(t, "ann@example.com", user["email"])
}
