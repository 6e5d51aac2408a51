package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"warlords/internal/handlers"
	"warlords/internal/middleware"
	"warlords/internal/models"
	"warlords/internal/password"
	"warlords/internal/repositories"
	"warlords/internal/services"
	"warlords/internal/session"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// testEnv bundles the Fiber app with direct repository access for seeding.
type testEnv struct {
	app      *fiber.App
	userRepo repositories.UserRepository
	charRepo repositories.CharacterRepository
}

// setupApp builds the full portal app against an in-memory SQLite database.
// Each test gets its own named shared-cache DB so GORM's pool sees one store.
func setupApp(t *testing.T, name string) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Character{}))

	userRepo := repositories.NewGORMUserRepository(db)
	charRepo := repositories.NewGORMCharacterRepository(db)

	codec := session.NewCodec("test_session_secret", false)
	authService := services.NewAuthService(userRepo, codec, nil) // nil events client
	accountService := services.NewAccountService(userRepo, charRepo, nil)

	authHandler := handlers.NewAuthHandler(authService, codec)
	accountHandler := handlers.NewAccountHandler(accountService)
	pageHandler := handlers.NewPageHandler(authService)

	app := fiber.New()
	app.Use(middleware.RouteGuard())

	apiV1 := app.Group("/api/v1")
	authHandler.RegisterRoutes(apiV1)

	protectedRoutes := apiV1.Group("", middleware.SessionRequired(authService))
	accountHandler.RegisterRoutes(protectedRoutes)

	pageHandler.RegisterRoutes(app)

	return &testEnv{app: app, userRepo: userRepo, charRepo: charRepo}
}

// TestMain suppresses request logging for cleaner output.
func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

// doJSON performs a request with an optional JSON body and session cookie.
func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}, cookie *http.Cookie) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}

	resp, err := app.Test(req, 10000) // bcrypt makes auth calls slow
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	var decoded map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return decoded
}

func sessionCookie(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == session.CookieName {
			return c
		}
	}
	return nil
}

func register(t *testing.T, app *fiber.App, username, email, pw string) *http.Cookie {
	t.Helper()
	resp := doJSON(t, app, "POST", "/api/v1/auth/register", fiber.Map{
		"username": username,
		"email":    email,
		"password": pw,
	}, nil)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	cookie := sessionCookie(resp)
	require.NotNil(t, cookie)
	return cookie
}

func TestRegisterLoginLogoutFlow(t *testing.T) {
	env := setupApp(t, "auth_flow")

	// Register establishes a session and returns the public projection only
	resp := doJSON(t, env.app, "POST", "/api/v1/auth/register", fiber.Map{
		"username": "demo2",
		"email":    "demo2@test.com",
		"password": "longenough1",
	}, nil)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	cookie := sessionCookie(resp)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "password")
	assert.NotContains(t, string(raw), "$2a$") // no bcrypt digest anywhere

	// The session resolves on /auth/me
	resp = doJSON(t, env.app, "GET", "/api/v1/auth/me", nil, cookie)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "demo2", user["username"])

	// Duplicate registration conflicts, email check first
	resp = doJSON(t, env.app, "POST", "/api/v1/auth/register", fiber.Map{
		"username": "someoneelse",
		"email":    "demo2@test.com",
		"password": "longenough1",
	}, nil)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	// Login works with the registered credentials
	resp = doJSON(t, env.app, "POST", "/api/v1/auth/login", fiber.Map{
		"email":    "demo2@test.com",
		"password": "longenough1",
	}, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NotNil(t, sessionCookie(resp))

	// Logout clears the cookie
	resp = doJSON(t, env.app, "POST", "/api/v1/auth/logout", nil, cookie)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	cleared := sessionCookie(resp)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	env := setupApp(t, "auth_enum")
	register(t, env.app, "demo2", "demo2@test.com", "longenough1")

	wrongPassword := doJSON(t, env.app, "POST", "/api/v1/auth/login", fiber.Map{
		"email":    "demo2@test.com",
		"password": "wrongpassword",
	}, nil)
	noSuchUser := doJSON(t, env.app, "POST", "/api/v1/auth/login", fiber.Map{
		"email":    "ghost@test.com",
		"password": "wrongpassword",
	}, nil)

	assert.Equal(t, fiber.StatusUnauthorized, wrongPassword.StatusCode)
	assert.Equal(t, fiber.StatusUnauthorized, noSuchUser.StatusCode)
	assert.Equal(t,
		decodeBody(t, wrongPassword)["error"],
		decodeBody(t, noSuchUser)["error"],
	)
}

func TestAccountRoutesRequireSession(t *testing.T) {
	env := setupApp(t, "account_guard")

	for _, route := range []struct{ method, path string }{
		{"GET", "/api/v1/account/profile"},
		{"GET", "/api/v1/characters"},
		{"POST", "/api/v1/characters"},
		{"POST", "/api/v1/characters/transfer"},
	} {
		resp := doJSON(t, env.app, route.method, route.path, nil, nil)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, "%s %s", route.method, route.path)
	}

	// A tampered cookie is rejected outright
	resp := doJSON(t, env.app, "GET", "/api/v1/account/profile", nil,
		&http.Cookie{Name: session.CookieName, Value: "tampered-token"})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestCharacterLifecycle(t *testing.T) {
	env := setupApp(t, "char_lifecycle")
	cookie := register(t, env.app, "demo2", "demo2@test.com", "longenough1")

	// One character below the minimum length
	resp := doJSON(t, env.app, "POST", "/api/v1/characters", fiber.Map{"name": "A"}, cookie)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	// Two characters is the boundary and succeeds
	resp = doJSON(t, env.app, "POST", "/api/v1/characters", fiber.Map{"name": "AA"}, cookie)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	created := decodeBody(t, resp)
	assert.Equal(t, "AA", created["name"])
	assert.Equal(t, "None", created["faction"])
	assert.Equal(t, float64(1), created["level"])
	assert.Equal(t, float64(0), created["jpoint"])
	assert.Contains(t, created, "created_at")

	// Only the public projection goes over the wire, no ORM bookkeeping
	for _, key := range []string{"ID", "CreatedAt", "UpdatedAt", "DeletedAt", "user_id"} {
		assert.NotContains(t, created, key)
	}

	// Duplicate names are rejected case-insensitively
	resp = doJSON(t, env.app, "POST", "/api/v1/characters", fiber.Map{"name": "aa"}, cookie)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	// The character shows up in the list
	resp = doJSON(t, env.app, "GET", "/api/v1/characters", nil, cookie)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	var characters []map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&characters))
	require.Len(t, characters, 1)
	characterID := characters[0]["id"].(string)

	// And in the profile count
	resp = doJSON(t, env.app, "GET", "/api/v1/account/profile", nil, cookie)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	profile := decodeBody(t, resp)
	assert.Equal(t, float64(1), profile["character_count"])

	// Delete it again
	resp = doJSON(t, env.app, "DELETE", "/api/v1/characters/"+characterID, nil, cookie)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = doJSON(t, env.app, "GET", "/api/v1/characters", nil, cookie)
	characters = nil
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&characters))
	assert.Empty(t, characters)

	// The deleted character's name is available again
	resp = doJSON(t, env.app, "POST", "/api/v1/characters", fiber.Map{"name": "AA"}, cookie)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
}

func TestTransferEndpoint(t *testing.T) {
	env := setupApp(t, "transfer")
	cookie := register(t, env.app, "demo2", "demo2@test.com", "longenough1")

	// Look up the registered user's id to seed funded characters directly.
	owner, err := env.userRepo.GetByEmail("demo2@test.com")
	require.NoError(t, err)
	source := &models.Character{UserID: owner.ID, Name: "Source", Level: 10, JPoint: 50}
	target := &models.Character{UserID: owner.ID, Name: "Target", Level: 5}
	require.NoError(t, env.charRepo.Create(source))
	require.NoError(t, env.charRepo.Create(target))

	// Transfer of 100 from a balance of 50 fails
	resp := doJSON(t, env.app, "POST", "/api/v1/characters/transfer", fiber.Map{
		"from_character_id": source.ID,
		"to_character_id":   target.ID,
		"amount":            100,
	}, cookie)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	// A funded transfer moves the exact amount
	resp = doJSON(t, env.app, "POST", "/api/v1/characters/transfer", fiber.Map{
		"from_character_id": source.ID,
		"to_character_id":   target.ID,
		"amount":            30,
	}, cookie)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Contains(t, body["message"], "Source")
	assert.Contains(t, body["message"], "Target")

	updatedSource, err := env.charRepo.GetByID(source.ID)
	require.NoError(t, err)
	updatedTarget, err := env.charRepo.GetByID(target.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(20), updatedSource.JPoint)
	assert.Equal(t, int64(30), updatedTarget.JPoint)

	// Characters of another account are invisible to transfers
	other := &models.Character{UserID: "usr_other", Name: "Foreign", Level: 3, JPoint: 1000}
	require.NoError(t, env.charRepo.Create(other))
	resp = doJSON(t, env.app, "POST", "/api/v1/characters/transfer", fiber.Map{
		"from_character_id": other.ID,
		"to_character_id":   target.ID,
		"amount":            10,
	}, cookie)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestSecondaryPasswordEndpoints(t *testing.T) {
	env := setupApp(t, "secondary_pw")
	cookie := register(t, env.app, "demo2", "demo2@test.com", "longenough1")

	// First set needs no current password
	resp := doJSON(t, env.app, "PUT", "/api/v1/account/secondary-password", fiber.Map{
		"new_password": "secret1",
	}, cookie)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	// Changing without the current one is rejected
	resp = doJSON(t, env.app, "PUT", "/api/v1/account/secondary-password", fiber.Map{
		"new_password": "secret2",
	}, cookie)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// Deletion of a character now requires the secondary password
	resp = doJSON(t, env.app, "POST", "/api/v1/characters", fiber.Map{"name": "Guarded"}, cookie)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	characterID := decodeBody(t, resp)["id"].(string)

	resp = doJSON(t, env.app, "DELETE", "/api/v1/characters/"+characterID, nil, cookie)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = doJSON(t, env.app, "DELETE", "/api/v1/characters/"+characterID, fiber.Map{
		"secondary_password": "secret1",
	}, cookie)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	// Remove the secondary password with the correct current one
	resp = doJSON(t, env.app, "DELETE", "/api/v1/account/secondary-password", fiber.Map{
		"current_password": "secret1",
	}, cookie)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestDashboardPageControlFlow(t *testing.T) {
	env := setupApp(t, "pages")

	// No cookie: the guard redirects before the page runs
	resp := doJSON(t, env.app, "GET", "/dashboard", nil, nil)
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login?callbackUrl=%2Fdashboard", resp.Header.Get("Location"))

	// Garbage cookie: the guard passes on presence, the page re-checks and
	// bounces the request to login
	resp = doJSON(t, env.app, "GET", "/dashboard", nil,
		&http.Cookie{Name: session.CookieName, Value: "garbage"})
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	// Real session: the dashboard renders
	cookie := register(t, env.app, "demo2", "demo2@test.com", "longenough1")
	resp = doJSON(t, env.app, "GET", "/dashboard", nil, cookie)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "demo2")

	// And the login page bounces authenticated visitors to the dashboard
	resp = doJSON(t, env.app, "GET", "/login", nil, cookie)
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/dashboard", resp.Header.Get("Location"))
}

// Seeded-data sanity: hashing a seed password and logging in through the
// API behaves the same as a registered account.
func TestSeededUserCanLogin(t *testing.T) {
	env := setupApp(t, "seeded")

	digest, err := password.Hash("admin123", password.SecondaryCost)
	require.NoError(t, err)
	require.NoError(t, env.userRepo.Create(&models.User{
		Email:    "admin@test.com",
		Username: "admin",
		Password: digest,
	}))

	resp := doJSON(t, env.app, "POST", "/api/v1/auth/login", fiber.Map{
		"email":    "admin@test.com",
		"password": "admin123",
	}, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NotNil(t, sessionCookie(resp))
}
