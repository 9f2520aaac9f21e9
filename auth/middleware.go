package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const identityContextKey = "identity"

// RequireAuth resolves the request identity with any of the three
// mechanisms and aborts with 401 when none succeeds.
func RequireAuth(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, failure := Resolve(c, db)
		if identity == nil {
			abortWithFailure(c, failure)
			return
		}

		c.Set(identityContextKey, identity)
		c.Next()
	}
}

// RequireAdmin resolves the request identity and additionally requires the
// admin role: 401 when unauthenticated, 403 when authenticated as a
// plain user.
func RequireAdmin(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, failure := Resolve(c, db)
		if identity == nil {
			abortWithFailure(c, failure)
			return
		}
		if !identity.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": gin.H{"code": "FORBIDDEN", "message": "Admin privileges required"},
			})
			return
		}

		c.Set(identityContextKey, identity)
		c.Next()
	}
}

// IdentityFrom returns the identity stashed by RequireAuth/RequireAdmin.
func IdentityFrom(c *gin.Context) *Identity {
	if v, ok := c.Get(identityContextKey); ok {
		if id, ok := v.(*Identity); ok {
			return id
		}
	}
	return nil
}

func abortWithFailure(c *gin.Context, failure *Failure) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": gin.H{
			"code":    "UNAUTHORIZED",
			"message": failure.Message,
			"reason":  failure.Code,
		},
	})
}
