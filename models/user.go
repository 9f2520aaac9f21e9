package models

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Role values stored in User.Roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is an application account. The first registered user becomes admin.
type User struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Username     string `gorm:"uniqueIndex;size:80;not null" json:"username"`
	PasswordHash string `gorm:"size:128;not null" json:"-"`
	Roles        string `gorm:"size:80;not null" json:"roles"`
}

// SetPassword hashes and stores the given plain-text password.
func (u *User) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword reports whether the given password matches the stored hash.
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// IsAdmin reports whether the user carries the admin role.
func (u *User) IsAdmin() bool {
	return u.Roles == RoleAdmin
}

// RegisterRequest is the payload for /auth/register.
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Normalize trims whitespace from input fields
func (r *RegisterRequest) Normalize() {
	r.Username = strings.TrimSpace(r.Username)
}

// LoginRequest is the payload for /auth/login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Normalize trims whitespace from input fields
func (r *LoginRequest) Normalize() {
	r.Username = strings.TrimSpace(r.Username)
}

// ChangePasswordRequest is the payload for /auth/change-password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

// UserUpdate is the admin payload for PUT /users/:id and the
// self-service payload for PUT /profile. Empty fields are left unchanged.
type UserUpdate struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Roles    string `json:"roles"`
}

// Normalize trims whitespace from input fields
func (u *UserUpdate) Normalize() {
	u.Username = strings.TrimSpace(u.Username)
	u.Roles = strings.TrimSpace(u.Roles)
}

// UserInfo is the wire projection of a User.
type UserInfo struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Roles    string `json:"roles"`
}

// Info returns the wire projection of the user.
func (u *User) Info() UserInfo {
	return UserInfo{ID: u.ID, Username: u.Username, Roles: u.Roles}
}
