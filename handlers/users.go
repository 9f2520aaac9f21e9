package handlers

import (
	"toloka2web/apperr"
	"toloka2web/auth"
	"toloka2web/models"
	"toloka2web/service"

	"github.com/gin-gonic/gin"
)

// ListUsers lists all accounts
func ListUsers(c *gin.Context) {
	users, err := service.GlobalServices.User.List()
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, users)
}

// UpdateUser applies an admin edit to a user.
func UpdateUser(c *gin.Context) {
	id, okID := parseID(c)
	if !okID {
		return
	}

	var req models.UserUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Validation("invalid request body"))
		return
	}

	user, err := service.GlobalServices.User.Update(id, req)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, user.Info())
}

// DeleteUser removes a user. The last remaining admin is protected.
func DeleteUser(c *gin.Context) {
	id, okID := parseID(c)
	if !okID {
		return
	}

	if err := service.GlobalServices.User.Delete(id); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"message": "User deleted"})
}

// Profile returns the caller's own account.
func Profile(c *gin.Context) {
	identity := auth.IdentityFrom(c)
	if identity.UserID == 0 {
		fail(c, apperr.NotFound("No user account behind this identity"))
		return
	}

	user, err := service.GlobalServices.User.Get(identity.UserID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, user.Info())
}

// UpdateProfile lets the caller edit their own account. Role changes stay
// admin-only.
func UpdateProfile(c *gin.Context) {
	identity := auth.IdentityFrom(c)
	if identity.UserID == 0 {
		fail(c, apperr.NotFound("No user account behind this identity"))
		return
	}

	var req models.UserUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Validation("invalid request body"))
		return
	}
	if req.Roles != "" && !identity.IsAdmin() {
		fail(c, apperr.Forbidden("Role changes require admin"))
		return
	}

	user, err := service.GlobalServices.User.Update(identity.UserID, req)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, user.Info())
}
