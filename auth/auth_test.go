package auth

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"toloka2web/config"
	"toloka2web/models"
	"toloka2web/state"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.RevokedToken{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	ResetRevocationCache()
	return db
}

func testContext(t *testing.T) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	req, err := http.NewRequest("GET", "/", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	c.Request = req
	return c
}

func TestIssueAndParseToken(t *testing.T) {
	user := &models.User{ID: 1, Username: "alice", Roles: models.RoleAdmin}

	pair, err := IssueTokens(user)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := ParseToken(pair.AccessToken)
	if err != nil {
		t.Fatalf("parse access: %v", err)
	}
	if claims.Username != "alice" || claims.Roles != models.RoleAdmin {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.Typ != TokenTypeAccess {
		t.Fatalf("typ = %q, want access", claims.Typ)
	}
	if claims.ID == "" || claims.Subject != "1" {
		t.Fatalf("missing jti or subject: %+v", claims)
	}

	refresh, err := ParseToken(pair.RefreshToken)
	if err != nil {
		t.Fatalf("parse refresh: %v", err)
	}
	if refresh.Typ != TokenTypeRefresh {
		t.Fatalf("typ = %q, want refresh", refresh.Typ)
	}
	if refresh.ID == claims.ID {
		t.Fatalf("access and refresh tokens share a jti")
	}
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	if _, err := ParseToken("not-a-token"); err != ErrTokenInvalid {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestRevocationFromEitherStore(t *testing.T) {
	db := openTestDB(t)

	if IsTokenRevoked(db, "fresh-jti") {
		t.Fatalf("unrevoked jti reported revoked")
	}

	if err := RevokeToken(db, "dead-jti"); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if !IsTokenRevoked(db, "dead-jti") {
		t.Fatalf("revoked jti not detected")
	}

	// Clearing the cache must not lose the revocation: the table is
	// authoritative.
	ResetRevocationCache()
	if !IsTokenRevoked(db, "dead-jti") {
		t.Fatalf("revocation lost after cache reset")
	}

	// Revoking twice is not an error
	if err := RevokeToken(db, "dead-jti"); err != nil {
		t.Fatalf("duplicate revoke: %v", err)
	}
}

func TestPruneRevokedTokens(t *testing.T) {
	db := openTestDB(t)

	old := models.RevokedToken{JTI: "old-jti", RevokedAt: time.Now().UTC().Add(-45 * 24 * time.Hour)}
	recent := models.RevokedToken{JTI: "recent-jti", RevokedAt: time.Now().UTC()}
	if err := db.Create(&old).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := db.Create(&recent).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	removed, err := PruneRevokedTokens(db, 30*24*time.Hour)
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}

	var count int64
	db.Model(&models.RevokedToken{}).Count(&count)
	if count != 1 {
		t.Fatalf("remaining = %d, want 1", count)
	}
}

func TestResolveBearerToken(t *testing.T) {
	db := openTestDB(t)
	user := &models.User{ID: 3, Username: "bob", Roles: models.RoleUser}
	token, err := IssueAccessToken(user)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	c := testContext(t)
	c.Request.Header.Set("Authorization", "Bearer "+token)

	identity, failure := Resolve(c, db)
	if failure != nil {
		t.Fatalf("resolve failed: %+v", failure)
	}
	if identity.AuthType != AuthTypeJWT || identity.Username != "bob" || identity.UserID != 3 {
		t.Fatalf("unexpected identity: %+v", identity)
	}
	if identity.IsAdmin() {
		t.Fatalf("user role reported admin")
	}
}

func TestResolveBearerWinsOverSession(t *testing.T) {
	db := openTestDB(t)

	session := state.Session{
		ID:       state.NewSessionID(),
		UserID:   9,
		Username: "session-user",
		Roles:    models.RoleUser,
		Expires:  time.Now().Add(time.Hour),
	}
	state.Global.Add(session)
	defer state.Global.Remove(session.ID)

	token, err := IssueAccessToken(&models.User{ID: 3, Username: "token-user", Roles: models.RoleAdmin})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	c := testContext(t)
	c.Request.Header.Set("Authorization", "Bearer "+token)
	c.Request.AddCookie(&http.Cookie{Name: SessionCookieName, Value: session.ID})

	identity, failure := Resolve(c, db)
	if failure != nil {
		t.Fatalf("resolve failed: %+v", failure)
	}
	if identity.AuthType != AuthTypeJWT || identity.Username != "token-user" {
		t.Fatalf("bearer token did not win: %+v", identity)
	}
}

func TestResolveSessionCookie(t *testing.T) {
	db := openTestDB(t)

	session := state.Session{
		ID:       state.NewSessionID(),
		UserID:   5,
		Username: "carol",
		Roles:    models.RoleUser,
		Expires:  time.Now().Add(time.Hour),
	}
	state.Global.Add(session)
	defer state.Global.Remove(session.ID)

	c := testContext(t)
	c.Request.AddCookie(&http.Cookie{Name: SessionCookieName, Value: session.ID})

	identity, failure := Resolve(c, db)
	if failure != nil {
		t.Fatalf("resolve failed: %+v", failure)
	}
	if identity.AuthType != AuthTypeSession || identity.Username != "carol" {
		t.Fatalf("unexpected identity: %+v", identity)
	}
}

func TestResolveAPIKeyGrantsAdmin(t *testing.T) {
	db := openTestDB(t)

	c := testContext(t)
	c.Request.Header.Set("X-API-Key", config.Settings.APIKey)

	identity, failure := Resolve(c, db)
	if failure != nil {
		t.Fatalf("resolve failed: %+v", failure)
	}
	if identity.AuthType != AuthTypeAPIKey || !identity.IsAdmin() {
		t.Fatalf("API key identity not admin: %+v", identity)
	}
}

func TestResolveWrongAPIKey(t *testing.T) {
	db := openTestDB(t)

	c := testContext(t)
	c.Request.Header.Set("X-API-Key", "wrong-key")

	_, failure := Resolve(c, db)
	if failure == nil {
		t.Fatalf("expected failure for wrong API key")
	}
	if failure.Code != FailMissing {
		t.Fatalf("failure code = %q, want %q", failure.Code, FailMissing)
	}
}

func TestResolveRevokedToken(t *testing.T) {
	db := openTestDB(t)

	token, err := IssueAccessToken(&models.User{ID: 2, Username: "dave", Roles: models.RoleUser})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := ParseToken(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := RevokeToken(db, claims.ID); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	c := testContext(t)
	c.Request.Header.Set("Authorization", "Bearer "+token)

	_, failure := Resolve(c, db)
	if failure == nil {
		t.Fatalf("expected failure for revoked token")
	}
	if failure.Code != FailRevoked {
		t.Fatalf("failure code = %q, want %q", failure.Code, FailRevoked)
	}
}

func TestResolveRefreshRejectsAccessToken(t *testing.T) {
	db := openTestDB(t)

	access, err := IssueAccessToken(&models.User{ID: 2, Username: "dave", Roles: models.RoleUser})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	c := testContext(t)
	c.Request.Header.Set("Authorization", "Bearer "+access)

	if _, failure := ResolveRefresh(c, db); failure == nil {
		t.Fatalf("access token accepted as refresh token")
	}
}

func TestResolveRefreshAcceptsRefreshToken(t *testing.T) {
	db := openTestDB(t)

	pair, err := IssueTokens(&models.User{ID: 2, Username: "dave", Roles: models.RoleUser})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	c := testContext(t)
	c.Request.Header.Set("Authorization", "Bearer "+pair.RefreshToken)

	claims, failure := ResolveRefresh(c, db)
	if failure != nil {
		t.Fatalf("refresh rejected: %+v", failure)
	}
	if claims.Username != "dave" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}
