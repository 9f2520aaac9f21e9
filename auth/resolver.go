package auth

import (
	"crypto/subtle"
	"strconv"
	"strings"

	"toloka2web/config"
	"toloka2web/state"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Auth mechanism names reported in Identity.AuthType.
const (
	AuthTypeJWT     = "jwt"
	AuthTypeSession = "session"
	AuthTypeAPIKey  = "api_key"
)

// SessionCookieName is the cookie carrying the opaque session ID.
const SessionCookieName = "toloka2web_session"

// Identity is a resolved request identity. Handlers receive it already
// resolved instead of re-deriving credentials.
type Identity struct {
	AuthType string `json:"auth_type"`
	UserID   uint   `json:"id,omitempty"`
	Username string `json:"username,omitempty"`
	Roles    string `json:"roles"`
	JTI      string `json:"-"`
}

// IsAdmin reports whether the identity carries the admin role.
func (id *Identity) IsAdmin() bool {
	return id.Roles == "admin"
}

// Failure codes for the distinct unauthenticated cases.
const (
	FailExpired    = "token_expired"
	FailInvalid    = "invalid_token"
	FailRevoked    = "token_revoked"
	FailMissing    = "authorization_required"
	FailSufficient = "forbidden"
)

// Failure describes why resolution did not produce an identity.
type Failure struct {
	Code    string
	Message string
}

// Resolve tries the three mechanisms in strict priority order, returning on
// the first success: bearer token, then session cookie, then static API key.
// A presented-but-bad token (expired, bad signature, revoked) does not stop
// resolution: the session and API key mechanisms are still tried, and the
// token's failure code is kept so the caller can report the most specific
// reason when everything fails.
func Resolve(c *gin.Context, db *gorm.DB) (*Identity, *Failure) {
	failure := &Failure{Code: FailMissing, Message: "Authentication required"}

	// 1. Bearer token
	if tokenString, ok := bearerToken(c); ok {
		claims, err := ParseToken(tokenString)
		switch {
		case err == ErrTokenExpired:
			failure = &Failure{Code: FailExpired, Message: "Token has expired"}
		case err != nil:
			failure = &Failure{Code: FailInvalid, Message: "Invalid token"}
		case IsTokenRevoked(db, claims.ID):
			failure = &Failure{Code: FailRevoked, Message: "Token has been revoked"}
		default:
			userID, _ := strconv.ParseUint(claims.Subject, 10, 32)
			return &Identity{
				AuthType: AuthTypeJWT,
				UserID:   uint(userID),
				Username: claims.Username,
				Roles:    claims.Roles,
				JTI:      claims.ID,
			}, nil
		}
	}

	// 2. Session cookie
	if sessionID, err := c.Cookie(SessionCookieName); err == nil && sessionID != "" {
		if session, ok := state.Global.Get(sessionID); ok {
			return &Identity{
				AuthType: AuthTypeSession,
				UserID:   session.UserID,
				Username: session.Username,
				Roles:    session.Roles,
			}, nil
		}
	}

	// 3. Static API key, constant-time comparison. Always grants admin.
	if apiKey := c.GetHeader("X-API-Key"); apiKey != "" && validAPIKey(apiKey) {
		return &Identity{AuthType: AuthTypeAPIKey, Roles: "admin"}, nil
	}

	return nil, failure
}

// ResolveRefresh accepts only a bearer refresh token, for /auth/refresh.
func ResolveRefresh(c *gin.Context, db *gorm.DB) (*Claims, *Failure) {
	tokenString, ok := bearerToken(c)
	if !ok {
		return nil, &Failure{Code: FailMissing, Message: "Authorization token is missing"}
	}

	claims, err := ParseToken(tokenString)
	if err == ErrTokenExpired {
		return nil, &Failure{Code: FailExpired, Message: "Token has expired"}
	}
	if err != nil {
		return nil, &Failure{Code: FailInvalid, Message: "Invalid token"}
	}
	if claims.Typ != TokenTypeRefresh {
		return nil, &Failure{Code: FailInvalid, Message: "Refresh token required"}
	}
	if IsTokenRevoked(db, claims.ID) {
		return nil, &Failure{Code: FailRevoked, Message: "Token has been revoked"}
	}
	return claims, nil
}

// BearerClaims parses the presented bearer token without consulting the
// session or API key mechanisms. Used by token-only endpoints
// (logout, validate) that operate on the token itself.
func BearerClaims(c *gin.Context) (*Claims, *Failure) {
	tokenString, ok := bearerToken(c)
	if !ok {
		return nil, &Failure{Code: FailMissing, Message: "Authorization token is missing"}
	}
	claims, err := ParseToken(tokenString)
	if err == ErrTokenExpired {
		return nil, &Failure{Code: FailExpired, Message: "Token has expired"}
	}
	if err != nil {
		return nil, &Failure{Code: FailInvalid, Message: "Invalid token"}
	}
	return claims, nil
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

func validAPIKey(provided string) bool {
	expected := config.Settings.APIKey
	if provided == "" || expected == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) == 1
}
