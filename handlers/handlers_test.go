package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"toloka2web/auth"
	"toloka2web/config"
	"toloka2web/database"
	"toloka2web/models"
	"toloka2web/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupRouter wires a minimal router over a throwaway database, mirroring
// the production route layout for the routes under test.
func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.AppSetting{}, &models.Release{}, &models.RevokedToken{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	prevDB := database.DB
	database.DB = db
	prevServices := service.GlobalServices
	service.InitServices(db, nil)
	prevApp := config.Settings.AppINIPath
	prevTitles := config.Settings.TitlesINIPath
	dir := t.TempDir()
	config.Settings.AppINIPath = filepath.Join(dir, "app.ini")
	config.Settings.TitlesINIPath = filepath.Join(dir, "titles.ini")
	auth.ResetRevocationCache()

	t.Cleanup(func() {
		database.DB = prevDB
		service.GlobalServices = prevServices
		config.Settings.AppINIPath = prevApp
		config.Settings.TitlesINIPath = prevTitles
	})

	r := gin.New()
	api := r.Group("/api")
	{
		api.POST("/auth/register", Register)
		api.POST("/auth/login", Login)
		api.POST("/auth/logout", Logout)
		api.POST("/auth/validate", Validate)

		authed := api.Group("", auth.RequireAuth(db))
		{
			authed.GET("/auth/me", Me)
			authed.GET("/releases", ListReleases)
		}

		admin := api.Group("", auth.RequireAdmin(db))
		{
			admin.GET("/settings", ListSettings)
			admin.PUT("/users/:id", UpdateUser)
		}
	}
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reqBody = bytes.NewBuffer(data)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var payload map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return payload
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	payload := decode(t, w)
	errObj, ok := payload["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("missing error envelope: %s", w.Body.String())
	}
	code, _ := errObj["code"].(string)
	return code
}

func TestRegisterAndLoginFlow(t *testing.T) {
	r := setupRouter(t)

	// First user becomes admin
	w := doJSON(t, r, "POST", "/api/auth/register",
		models.RegisterRequest{Username: "alice", Password: "longenough1"}, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("register status = %d, want 201: %s", w.Code, w.Body.String())
	}
	if payload := decode(t, w); payload["roles"] != "admin" {
		t.Fatalf("first user roles = %v, want admin", payload["roles"])
	}

	// Second user is a plain user
	w = doJSON(t, r, "POST", "/api/auth/register",
		models.RegisterRequest{Username: "bob", Password: "longenough2"}, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("register status = %d, want 201", w.Code)
	}
	if payload := decode(t, w); payload["roles"] != "user" {
		t.Fatalf("second user roles = %v, want user", payload["roles"])
	}

	// Valid login returns tokens
	w = doJSON(t, r, "POST", "/api/auth/login",
		models.LoginRequest{Username: "alice", Password: "longenough1"}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d: %s", w.Code, w.Body.String())
	}
	payload := decode(t, w)
	if payload["access_token"] == "" || payload["refresh_token"] == "" {
		t.Fatalf("missing tokens: %s", w.Body.String())
	}

	// Wrong password is a 401 with the error envelope
	w = doJSON(t, r, "POST", "/api/auth/login",
		models.LoginRequest{Username: "alice", Password: "wrong"}, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("bad login status = %d, want 401", w.Code)
	}
	if code := errorCode(t, w); code != "UNAUTHORIZED" {
		t.Fatalf("error code = %q, want UNAUTHORIZED", code)
	}
}

func TestRegisterValidation(t *testing.T) {
	r := setupRouter(t)

	w := doJSON(t, r, "POST", "/api/auth/register", map[string]string{"username": "alice"}, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if code := errorCode(t, w); code != "VALIDATION_ERROR" {
		t.Fatalf("error code = %q, want VALIDATION_ERROR", code)
	}

	w = doJSON(t, r, "POST", "/api/auth/register",
		models.RegisterRequest{Username: "weak", Password: "abc"}, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("short password status = %d, want 400", w.Code)
	}
	if code := errorCode(t, w); code != "VALIDATION_ERROR" {
		t.Fatalf("short password error code = %q, want VALIDATION_ERROR", code)
	}
}

func TestDuplicateRegistrationConflicts(t *testing.T) {
	r := setupRouter(t)

	doJSON(t, r, "POST", "/api/auth/register",
		models.RegisterRequest{Username: "alice", Password: "password1"}, nil)
	w := doJSON(t, r, "POST", "/api/auth/register",
		models.RegisterRequest{Username: "alice", Password: "password1"}, nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", w.Code)
	}
	if code := errorCode(t, w); code != "CONFLICT" {
		t.Fatalf("error code = %q, want CONFLICT", code)
	}
}

func TestProtectedRouteRequiresAuth(t *testing.T) {
	r := setupRouter(t)

	w := doJSON(t, r, "GET", "/api/releases", nil, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	if code := errorCode(t, w); code != "UNAUTHORIZED" {
		t.Fatalf("error code = %q, want UNAUTHORIZED", code)
	}
}

func TestBearerTokenOnProtectedRoute(t *testing.T) {
	r := setupRouter(t)

	doJSON(t, r, "POST", "/api/auth/register",
		models.RegisterRequest{Username: "alice", Password: "password1"}, nil)
	w := doJSON(t, r, "POST", "/api/auth/login",
		models.LoginRequest{Username: "alice", Password: "password1"}, nil)
	token, _ := decode(t, w)["access_token"].(string)
	if token == "" {
		t.Fatalf("no access token: %s", w.Body.String())
	}

	w = doJSON(t, r, "GET", "/api/auth/me", nil, map[string]string{
		"Authorization": "Bearer " + token,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if payload := decode(t, w); payload["username"] != "alice" {
		t.Fatalf("identity = %s", w.Body.String())
	}
}

func TestAdminRouteForbiddenForPlainUser(t *testing.T) {
	r := setupRouter(t)

	doJSON(t, r, "POST", "/api/auth/register",
		models.RegisterRequest{Username: "admin", Password: "password1"}, nil)
	doJSON(t, r, "POST", "/api/auth/register",
		models.RegisterRequest{Username: "bob", Password: "password1"}, nil)

	w := doJSON(t, r, "POST", "/api/auth/login",
		models.LoginRequest{Username: "bob", Password: "password1"}, nil)
	token, _ := decode(t, w)["access_token"].(string)

	w = doJSON(t, r, "GET", "/api/settings", nil, map[string]string{
		"Authorization": "Bearer " + token,
	})
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
	if code := errorCode(t, w); code != "FORBIDDEN" {
		t.Fatalf("error code = %q, want FORBIDDEN", code)
	}
}

// The static API key alone must pass admin-only routes, with no session or
// token anywhere in sight.
func TestAPIKeyPassesAdminRoute(t *testing.T) {
	r := setupRouter(t)

	doJSON(t, r, "POST", "/api/auth/register",
		models.RegisterRequest{Username: "admin", Password: "password1"}, nil)
	doJSON(t, r, "POST", "/api/auth/register",
		models.RegisterRequest{Username: "bob", Password: "password1"}, nil)

	w := doJSON(t, r, "PUT", "/api/users/2",
		models.UserUpdate{Roles: "admin"}, map[string]string{
			"X-API-Key": config.Settings.APIKey,
		})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if payload := decode(t, w); payload["roles"] != "admin" {
		t.Fatalf("roles = %v, want admin", payload["roles"])
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	r := setupRouter(t)

	doJSON(t, r, "POST", "/api/auth/register",
		models.RegisterRequest{Username: "alice", Password: "password1"}, nil)
	w := doJSON(t, r, "POST", "/api/auth/login",
		models.LoginRequest{Username: "alice", Password: "password1"}, nil)
	token, _ := decode(t, w)["access_token"].(string)
	header := map[string]string{"Authorization": "Bearer " + token}

	// Token is valid before logout
	w = doJSON(t, r, "POST", "/api/auth/validate", nil, header)
	if w.Code != http.StatusOK {
		t.Fatalf("validate before logout: %d", w.Code)
	}

	w = doJSON(t, r, "POST", "/api/auth/logout", nil, header)
	if w.Code != http.StatusOK {
		t.Fatalf("logout: %d: %s", w.Code, w.Body.String())
	}

	// And rejected afterward
	w = doJSON(t, r, "POST", "/api/auth/validate", nil, header)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("validate after logout = %d, want 401", w.Code)
	}
	w = doJSON(t, r, "GET", "/api/auth/me", nil, header)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("me after logout = %d, want 401", w.Code)
	}
}

func TestDeleteLastAdminViaAPI(t *testing.T) {
	r := setupRouter(t)

	doJSON(t, r, "POST", "/api/auth/register",
		models.RegisterRequest{Username: "admin", Password: "password1"}, nil)

	// Demoting the only admin through the API is refused
	w := doJSON(t, r, "PUT", "/api/users/1",
		models.UserUpdate{Roles: "user"}, map[string]string{
			"X-API-Key": config.Settings.APIKey,
		})
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409: %s", w.Code, w.Body.String())
	}
	if code := errorCode(t, w); code != "CONFLICT" {
		t.Fatalf("error code = %q, want CONFLICT", code)
	}
}
