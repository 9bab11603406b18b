package routes_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/showkit/catalog-api/internal/config"
	"github.com/showkit/catalog-api/internal/models"
	"github.com/showkit/catalog-api/internal/routes"
	"github.com/showkit/catalog-api/internal/store"
)

// setupApp builds a Fiber app with freshly seeded stores, mirroring the
// wiring in cmd/catalog.
func setupApp(t *testing.T) *fiber.App {
	t.Helper()

	cfg := &config.Config{}
	cfg.Observability.MetricsPath = "/metrics"

	items := store.NewItemStore()
	for _, p := range []models.ItemPayload{
		{Name: "Laptop", Description: "High-performance laptop with 16GB RAM", Price: 999.99, Tags: []string{"electronics", "computers"}},
		{Name: "Smartphone", Description: "Latest model with 5G support", Price: 699.99, Tags: []string{"electronics", "mobile"}, IsOffer: true},
		{Name: "Coffee Maker", Description: "Automatic coffee maker with timer", Price: 79.99, Tags: []string{"appliances", "kitchen"}},
	} {
		items.Create(p)
	}

	publicItems := store.NewItemStore()
	publicItems.Create(models.ItemPayload{Name: "Public Demo Item", Price: 19.99, Tags: []string{"public", "demo"}, IsOffer: true})
	publicItems.Create(models.ItemPayload{Name: "Free Sample", Price: 0.01, Tags: []string{"public", "free"}})

	users := store.NewUserStore()
	_, err := users.Create("testuser", "testuser@example.com", "testpass")
	require.NoError(t, err)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	app := fiber.New()
	routes.Setup(app, cfg, logger, &routes.Stores{
		Items:       items,
		PublicItems: publicItems,
		Users:       users,
		Tokens:      store.NewMemoryTokenRegistry(24 * time.Hour),
	})
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	resp.Body.Close()
}

func login(t *testing.T, app *fiber.App) string {
	t.Helper()

	resp := doJSON(t, app, http.MethodPost, "/token", "", map[string]string{
		"username": "testuser",
		"password": "testpass",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var tokenResp models.TokenResponse
	decode(t, resp, &tokenResp)
	require.NotEmpty(t, tokenResp.AccessToken)
	assert.Equal(t, "bearer", tokenResp.TokenType)
	assert.True(t, tokenResp.ExpiresAt.After(time.Now()))
	return tokenResp.AccessToken
}

func TestLanding_And_APIStatus(t *testing.T) {
	app := setupApp(t)

	resp := doJSON(t, app, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	page, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Contains(t, string(page), "Catalog API Demo")

	resp = doJSON(t, app, http.MethodGet, "/api", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var status map[string]string
	decode(t, resp, &status)
	assert.Equal(t, "Welcome to the Catalog API Demo", status["message"])
}

func TestLogin_WrongPassword(t *testing.T) {
	app := setupApp(t)

	resp := doJSON(t, app, http.MethodPost, "/token", "", map[string]string{
		"username": "testuser",
		"password": "wrongpass",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var errResp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	decode(t, resp, &errResp)
	assert.Equal(t, "INVALID_CREDENTIALS", errResp.Error.Code)
}

func TestLogin_MissingFields(t *testing.T) {
	app := setupApp(t)

	resp := doJSON(t, app, http.MethodPost, "/token", "", map[string]string{
		"username": "testuser",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestItems_RequireAuth(t *testing.T) {
	app := setupApp(t)

	resp := doJSON(t, app, http.MethodGet, "/items", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodPost, "/items", "", models.ItemPayload{Name: "X", Price: 1})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodGet, "/items", "bogus-token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestItems_ListSeeded(t *testing.T) {
	app := setupApp(t)
	token := login(t, app)

	resp := doJSON(t, app, http.MethodGet, "/items", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var items []models.Item
	decode(t, resp, &items)
	require.Len(t, items, 3)
	assert.Equal(t, "Laptop", items[0].Name)
	assert.Equal(t, "Smartphone", items[1].Name)
	assert.Equal(t, "Coffee Maker", items[2].Name)

	// skip beyond the collection yields an empty list, not an error
	resp = doJSON(t, app, http.MethodGet, "/items?skip=5", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &items)
	assert.Empty(t, items)
}

func TestItems_ListRejectsInvalidBounds(t *testing.T) {
	app := setupApp(t)
	token := login(t, app)

	for _, path := range []string{"/items?skip=-1", "/items?limit=0", "/items?limit=200"} {
		resp := doJSON(t, app, http.MethodGet, path, token, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, path)
		resp.Body.Close()
	}
}

func TestItems_CRUDLifecycle(t *testing.T) {
	app := setupApp(t)
	token := login(t, app)

	// Create
	resp := doJSON(t, app, http.MethodPost, "/items", token, models.ItemPayload{
		Name:  "Desk Lamp",
		Price: 24.99,
		Tags:  []string{"home"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created models.Item
	decode(t, resp, &created)
	assert.Equal(t, 4, created.ID)
	assert.Equal(t, "Desk Lamp", created.Name)

	// Read
	resp = doJSON(t, app, http.MethodGet, "/items/4", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var fetched models.Item
	decode(t, resp, &fetched)
	assert.Equal(t, created, fetched)

	// Full update replaces every field except id
	resp = doJSON(t, app, http.MethodPut, "/items/4", token, models.ItemPayload{
		Name:    "LED Desk Lamp",
		Price:   29.99,
		IsOffer: true,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var replaced models.Item
	decode(t, resp, &replaced)
	assert.Equal(t, 4, replaced.ID)
	assert.Equal(t, "LED Desk Lamp", replaced.Name)
	assert.True(t, replaced.IsOffer)
	assert.Empty(t, replaced.Tags)

	// Partial update keeps omitted fields
	resp = doJSON(t, app, http.MethodPatch, "/items/4", token, map[string]interface{}{
		"price": 19.99,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var patched models.Item
	decode(t, resp, &patched)
	assert.Equal(t, 19.99, patched.Price)
	assert.Equal(t, "LED Desk Lamp", patched.Name)
	assert.True(t, patched.IsOffer)

	// Delete
	resp = doJSON(t, app, http.MethodDelete, "/items/4", token, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodGet, "/items/4", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodDelete, "/items/4", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestItems_PatchPreservesTags(t *testing.T) {
	app := setupApp(t)
	token := login(t, app)

	resp := doJSON(t, app, http.MethodPatch, "/items/1", token, map[string]interface{}{
		"price": 5.0,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var patched models.Item
	decode(t, resp, &patched)
	assert.Equal(t, 5.0, patched.Price)
	assert.Equal(t, []string{"electronics", "computers"}, patched.Tags)
}

func TestItems_MutationsOnMissingID(t *testing.T) {
	app := setupApp(t)
	token := login(t, app)

	resp := doJSON(t, app, http.MethodPut, "/items/99", token, models.ItemPayload{Name: "X", Price: 1})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodPatch, "/items/99", token, map[string]interface{}{"price": 1.0})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestItems_ValidationFailures(t *testing.T) {
	app := setupApp(t)
	token := login(t, app)

	resp := doJSON(t, app, http.MethodPost, "/items", token, map[string]interface{}{
		"name":  "",
		"price": -1,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var errResp struct {
		Error struct {
			Code    string            `json:"code"`
			Details map[string]string `json:"details"`
		} `json:"error"`
	}
	decode(t, resp, &errResp)
	assert.Equal(t, "VALIDATION_FAILED", errResp.Error.Code)
	assert.Contains(t, errResp.Error.Details, "Name")
	assert.Contains(t, errResp.Error.Details, "Price")

	name := strings.Repeat("x", 51)
	resp = doJSON(t, app, http.MethodPost, "/items", token, map[string]interface{}{
		"name":  name,
		"price": 1.0,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestPublicItems_NoAuthRequired(t *testing.T) {
	app := setupApp(t)

	resp := doJSON(t, app, http.MethodGet, "/public/items", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var items []models.Item
	decode(t, resp, &items)
	require.Len(t, items, 2)
	assert.Equal(t, "Public Demo Item", items[0].Name)

	resp = doJSON(t, app, http.MethodGet, "/public/items/1", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodGet, "/public/items/42", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	// Public surface is read-only: no POST route exists
	resp = doJSON(t, app, http.MethodPost, "/public/items", "", models.ItemPayload{Name: "X", Price: 1})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestTokenRevocation(t *testing.T) {
	app := setupApp(t)
	token := login(t, app)

	// Token works before revocation
	resp := doJSON(t, app, http.MethodGet, "/items", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodPost, "/token/revoke", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Revoked token is rejected as unauthenticated
	resp = doJSON(t, app, http.MethodGet, "/items", token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	// Revoking again reports not found
	resp = doJSON(t, app, http.MethodPost, "/token/revoke", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestRegister_NewAndDuplicate(t *testing.T) {
	app := setupApp(t)

	payload := map[string]string{
		"username": "newuser",
		"email":    "newuser@example.com",
		"password": "password123",
	}

	resp := doJSON(t, app, http.MethodPost, "/users", "", payload)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var user models.User
	decode(t, resp, &user)
	assert.Equal(t, "newuser", user.Username)
	assert.True(t, user.IsActive)

	// The new user can log in
	resp = doJSON(t, app, http.MethodPost, "/token", "", map[string]string{
		"username": "newuser",
		"password": "password123",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodPost, "/users", "", payload)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()
}

func TestHealthAndVersion(t *testing.T) {
	app := setupApp(t)

	resp := doJSON(t, app, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodGet, "/version", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}
