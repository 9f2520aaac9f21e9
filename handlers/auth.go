package handlers

import (
	"log"
	"strconv"
	"time"

	"toloka2web/apperr"
	"toloka2web/auth"
	"toloka2web/config"
	"toloka2web/database"
	"toloka2web/models"
	"toloka2web/service"
	"toloka2web/state"

	"github.com/gin-gonic/gin"
)

// Register creates a new account. The first account on an empty user table
// becomes admin.
func Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Validation("username and password are required"))
		return
	}

	user, err := service.GlobalServices.User.Register(req)
	if err != nil {
		fail(c, err)
		return
	}

	created(c, user.Info())
}

// Login verifies credentials and establishes both a token pair and a
// server-side session cookie.
func Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Validation("username and password are required"))
		return
	}

	user, err := service.GlobalServices.User.Authenticate(req)
	if err != nil {
		fail(c, err)
		return
	}

	tokens, err := auth.IssueTokens(user)
	if err != nil {
		fail(c, err)
		return
	}

	ttl := time.Duration(config.Settings.SessionTTLHours) * time.Hour
	session := state.Session{
		ID:       state.NewSessionID(),
		UserID:   user.ID,
		Username: user.Username,
		Roles:    user.Roles,
		Expires:  time.Now().Add(ttl),
	}
	state.Global.Add(session)
	c.SetCookie(auth.SessionCookieName, session.ID, int(ttl.Seconds()), "/", "", false, true)

	ok(c, gin.H{
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
		"user":          user.Info(),
	})
}

// Refresh exchanges a valid refresh token for a new access token. Roles are
// re-read from the database so demotions take effect at refresh time.
func Refresh(c *gin.Context) {
	claims, failure := auth.ResolveRefresh(c, database.DB)
	if failure != nil {
		fail(c, apperr.Unauthorized(failure.Message))
		return
	}

	userID, _ := strconv.ParseUint(claims.Subject, 10, 32)
	user, err := service.GlobalServices.User.Get(uint(userID))
	if err != nil {
		fail(c, apperr.Unauthorized("Invalid token"))
		return
	}

	access, err := auth.IssueAccessToken(user)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"access_token": access})
}

// Logout revokes the presented token and drops the session cookie when one
// exists.
func Logout(c *gin.Context) {
	claims, failure := auth.BearerClaims(c)
	if failure == nil {
		if err := auth.RevokeToken(database.DB, claims.ID); err != nil {
			log.Printf("token revocation failed: %v", err)
			fail(c, apperr.Internal("Failed to revoke token"))
			return
		}
	}

	if sessionID, err := c.Cookie(auth.SessionCookieName); err == nil && sessionID != "" {
		state.Global.Remove(sessionID)
		c.SetCookie(auth.SessionCookieName, "", -1, "/", "", false, true)
	}

	if failure != nil && failure.Code != auth.FailMissing {
		fail(c, apperr.Unauthorized(failure.Message))
		return
	}
	ok(c, gin.H{"message": "Logged out"})
}

// Me returns the resolved identity of the current request.
func Me(c *gin.Context) {
	ok(c, auth.IdentityFrom(c))
}

// Validate checks a bearer token without touching sessions or the API key.
func Validate(c *gin.Context) {
	claims, failure := auth.BearerClaims(c)
	if failure != nil {
		fail(c, apperr.Unauthorized(failure.Message))
		return
	}
	if auth.IsTokenRevoked(database.DB, claims.ID) {
		fail(c, apperr.Unauthorized("Token has been revoked"))
		return
	}
	ok(c, gin.H{
		"valid":    true,
		"username": claims.Username,
		"roles":    claims.Roles,
	})
}

// Check reports whether the request is authenticated and by which mechanism.
func Check(c *gin.Context) {
	identity := auth.IdentityFrom(c)
	ok(c, gin.H{
		"authenticated": true,
		"auth_type":     identity.AuthType,
		"username":      identity.Username,
		"roles":         identity.Roles,
	})
}

// ChangePassword replaces the caller's password and revokes the token used
// to make the change.
func ChangePassword(c *gin.Context) {
	identity := auth.IdentityFrom(c)
	if identity.UserID == 0 {
		fail(c, apperr.Forbidden("Password change requires a user identity"))
		return
	}

	var req models.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Validation("current_password and new_password are required"))
		return
	}

	if err := service.GlobalServices.User.ChangePassword(identity.UserID, req); err != nil {
		fail(c, err)
		return
	}

	if identity.JTI != "" {
		if err := auth.RevokeToken(database.DB, identity.JTI); err != nil {
			log.Printf("token revocation failed: %v", err)
		}
	}
	state.Global.RemoveForUser(identity.UserID)

	ok(c, gin.H{"message": "Password changed"})
}
