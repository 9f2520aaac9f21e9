package service

import (
	"testing"

	"toloka2web/apperr"
	"toloka2web/models"
)

func TestFirstUserBecomesAdmin(t *testing.T) {
	svc := NewUserService(openTestDB(t))

	alice, err := svc.Register(models.RegisterRequest{Username: "alice", Password: "longenough1"})
	if err != nil {
		t.Fatalf("register alice: %v", err)
	}
	if alice.Roles != models.RoleAdmin {
		t.Fatalf("first user roles = %q, want admin", alice.Roles)
	}

	bob, err := svc.Register(models.RegisterRequest{Username: "bob", Password: "longenough2"})
	if err != nil {
		t.Fatalf("register bob: %v", err)
	}
	if bob.Roles != models.RoleUser {
		t.Fatalf("second user roles = %q, want user", bob.Roles)
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc := NewUserService(openTestDB(t))

	if _, err := svc.Register(models.RegisterRequest{Username: "alice", Password: "password1"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, err := svc.Register(models.RegisterRequest{Username: "alice", Password: "password2"})
	if err == nil {
		t.Fatalf("expected conflict for duplicate username")
	}
	if ae := apperr.From(err); ae.Code != apperr.CodeConflict {
		t.Fatalf("code = %q, want CONFLICT", ae.Code)
	}
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	svc := NewUserService(openTestDB(t))

	_, err := svc.Register(models.RegisterRequest{Username: "weak", Password: "abc"})
	if err == nil {
		t.Fatalf("expected rejection for short password")
	}
	if ae := apperr.From(err); ae.Code != apperr.CodeValidation {
		t.Fatalf("code = %q, want VALIDATION_ERROR", ae.Code)
	}

	// Exactly eight characters passes
	if _, err := svc.Register(models.RegisterRequest{Username: "weak", Password: "12345678"}); err != nil {
		t.Fatalf("register with 8-char password: %v", err)
	}
}

func TestRegistrationClosedBlocksLaterUsers(t *testing.T) {
	db := openTestDB(t)
	svc := NewUserService(db)

	if _, err := svc.Register(models.RegisterRequest{Username: "admin", Password: "password1"}); err != nil {
		t.Fatalf("register first: %v", err)
	}

	if err := db.Create(&models.AppSetting{Section: "web", Key: "open_registration", Value: "False"}).Error; err != nil {
		t.Fatalf("seed setting: %v", err)
	}

	_, err := svc.Register(models.RegisterRequest{Username: "late", Password: "password1"})
	if err == nil {
		t.Fatalf("expected forbidden when registration is closed")
	}
	if ae := apperr.From(err); ae.Code != apperr.CodeForbidden {
		t.Fatalf("code = %q, want FORBIDDEN", ae.Code)
	}
}

func TestAuthenticate(t *testing.T) {
	svc := NewUserService(openTestDB(t))

	if _, err := svc.Register(models.RegisterRequest{Username: "alice", Password: "secret123"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	user, err := svc.Authenticate(models.LoginRequest{Username: "alice", Password: "secret123"})
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if user.Username != "alice" {
		t.Fatalf("unexpected user: %+v", user)
	}

	if _, err := svc.Authenticate(models.LoginRequest{Username: "alice", Password: "wrong"}); err == nil {
		t.Fatalf("expected error for wrong password")
	}
	if _, err := svc.Authenticate(models.LoginRequest{Username: "ghost", Password: "secret123"}); err == nil {
		t.Fatalf("expected error for unknown user")
	}
}

func TestLastAdminIsProtected(t *testing.T) {
	svc := NewUserService(openTestDB(t))

	admin, err := svc.Register(models.RegisterRequest{Username: "admin", Password: "password1"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	regular, err := svc.Register(models.RegisterRequest{Username: "bob", Password: "password1"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	// Deleting or demoting the only admin is refused
	if err := svc.Delete(admin.ID); err == nil {
		t.Fatalf("expected refusal to delete last admin")
	}
	if _, err := svc.Update(admin.ID, models.UserUpdate{Roles: models.RoleUser}); err == nil {
		t.Fatalf("expected refusal to demote last admin")
	}

	// Non-admin deletion is fine
	if err := svc.Delete(regular.ID); err != nil {
		t.Fatalf("delete regular user: %v", err)
	}

	// With a second admin present, the first may go
	second, err := svc.Register(models.RegisterRequest{Username: "admin2", Password: "password1"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Update(second.ID, models.UserUpdate{Roles: models.RoleAdmin}); err != nil {
		t.Fatalf("promote: %v", err)
	}
	if err := svc.Delete(admin.ID); err != nil {
		t.Fatalf("delete non-last admin: %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	svc := NewUserService(openTestDB(t))

	user, err := svc.Register(models.RegisterRequest{Username: "alice", Password: "oldpassword"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	err = svc.ChangePassword(user.ID, models.ChangePasswordRequest{CurrentPassword: "wrong", NewPassword: "newpassword"})
	if err == nil {
		t.Fatalf("expected rejection for wrong current password")
	}

	err = svc.ChangePassword(user.ID, models.ChangePasswordRequest{CurrentPassword: "oldpassword", NewPassword: "tiny"})
	if ae := apperr.From(err); ae.Code != apperr.CodeValidation {
		t.Fatalf("short new password code = %q, want VALIDATION_ERROR", ae.Code)
	}

	err = svc.ChangePassword(user.ID, models.ChangePasswordRequest{CurrentPassword: "oldpassword", NewPassword: "newpassword"})
	if err != nil {
		t.Fatalf("change password: %v", err)
	}

	if _, err := svc.Authenticate(models.LoginRequest{Username: "alice", Password: "newpassword"}); err != nil {
		t.Fatalf("authenticate with new password: %v", err)
	}
	if _, err := svc.Authenticate(models.LoginRequest{Username: "alice", Password: "oldpassword"}); err == nil {
		t.Fatalf("old password still accepted")
	}
}
