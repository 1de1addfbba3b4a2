package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardCounts(t *testing.T) {
	setupTestDB(t)
	r := newTestRouter()
	_, token := createTestUser(t, "Ann", "ann@example.com")

	w := performRequest(t, r, http.MethodPost, "/api/contacts", token, map[string]string{"name": "C1", "phone": "555-0000"})
	require.Equal(t, http.StatusCreated, w.Code)

	createPipeline(t, r, token, "Q1 Sales")

	w = performRequest(t, r, http.MethodGet, "/api/dashboard", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.EqualValues(t, 1, body["contacts"])
	assert.EqualValues(t, 1, body["pipelines"])
	assert.EqualValues(t, 3, body["stages"])
	assert.EqualValues(t, 1, body["users"])
}

func TestDashboardContactCountScopedToOwner(t *testing.T) {
	setupTestDB(t)
	r := newTestRouter()
	_, annToken := createTestUser(t, "Ann", "ann@example.com")
	_, bobToken := createTestUser(t, "Bob", "bob@example.com")

	for _, name := range []string{"A1", "A2"} {
		w := performRequest(t, r, http.MethodPost, "/api/contacts", annToken, map[string]string{"name": name})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := performRequest(t, r, http.MethodPost, "/api/contacts", bobToken, map[string]string{"name": "B1"})
	require.Equal(t, http.StatusCreated, w.Code)

	createPipeline(t, r, annToken, "Q1 Sales")

	// Contacts are scoped to the caller; pipelines, stages and users
	// are shared totals visible to everyone.
	w = performRequest(t, r, http.MethodGet, "/api/dashboard", annToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.EqualValues(t, 2, body["contacts"])
	assert.EqualValues(t, 1, body["pipelines"])
	assert.EqualValues(t, 3, body["stages"])
	assert.EqualValues(t, 2, body["users"])

	w = performRequest(t, r, http.MethodGet, "/api/dashboard", bobToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	body = decodeBody(t, w)
	assert.EqualValues(t, 1, body["contacts"])
	assert.EqualValues(t, 1, body["pipelines"])
	assert.EqualValues(t, 3, body["stages"])
	assert.EqualValues(t, 2, body["users"])
}
