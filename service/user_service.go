package service

import (
	"errors"
	"fmt"

	"toloka2web/apperr"
	"toloka2web/database"
	"toloka2web/models"

	"gorm.io/gorm"
)

// Weak passwords are refused wherever one is set.
const minPasswordLength = 8

// UserService handles account business logic
type UserService struct {
	db *gorm.DB
}

// NewUserService constructs a user service
func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// Register creates an account. The very first account becomes admin and is
// always allowed; later registrations require open_registration to be on.
func (s *UserService) Register(req models.RegisterRequest) (*models.User, error) {
	req.Normalize()
	if req.Username == "" || req.Password == "" {
		return nil, apperr.Validation("username and password are required")
	}

	var count int64
	if err := s.db.Model(&models.User{}).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	if count > 0 && !s.registrationOpen() {
		return nil, apperr.Forbidden("Registration is closed")
	}

	if len(req.Password) < minPasswordLength {
		return nil, apperr.Validation("Password must be at least 8 characters long")
	}

	var existing models.User
	err := s.db.Where("username = ?", req.Username).First(&existing).Error
	if err == nil {
		return nil, apperr.Conflict("Username already taken")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	user := models.User{Username: req.Username, Roles: models.RoleUser}
	if count == 0 {
		user.Roles = models.RoleAdmin
	}
	if err := user.SetPassword(req.Password); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &user, nil
}

// Authenticate verifies a username/password pair.
func (s *UserService) Authenticate(req models.LoginRequest) (*models.User, error) {
	req.Normalize()

	var user models.User
	err := s.db.Where("username = ?", req.Username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Unauthorized("Invalid username or password")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !user.CheckPassword(req.Password) {
		return nil, apperr.Unauthorized("Invalid username or password")
	}
	return &user, nil
}

// Get fetches a user by ID
func (s *UserService) Get(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// List lists all users
func (s *UserService) List() ([]models.UserInfo, error) {
	var users []models.User
	if err := s.db.Order("id").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	infos := make([]models.UserInfo, 0, len(users))
	for i := range users {
		infos = append(infos, users[i].Info())
	}
	return infos, nil
}

// ChangePassword replaces a user's password after verifying the current one.
func (s *UserService) ChangePassword(id uint, req models.ChangePasswordRequest) error {
	user, err := s.Get(id)
	if err != nil {
		return err
	}

	if !user.CheckPassword(req.CurrentPassword) {
		return apperr.Unauthorized("Current password is incorrect")
	}
	if len(req.NewPassword) < minPasswordLength {
		return apperr.Validation("New password must be at least 8 characters long")
	}

	if err := user.SetPassword(req.NewPassword); err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.db.Save(user).Error; err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// Update applies an admin edit to a user. Demoting the last remaining
// admin is refused so the instance never locks itself out.
func (s *UserService) Update(id uint, req models.UserUpdate) (*models.User, error) {
	user, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	req.Normalize()

	if req.Roles != "" && req.Roles != models.RoleUser && req.Roles != models.RoleAdmin {
		return nil, apperr.Validation("roles must be \"user\" or \"admin\"")
	}

	if user.IsAdmin() && req.Roles == models.RoleUser {
		last, err := s.isLastAdmin(user.ID)
		if err != nil {
			return nil, err
		}
		if last {
			return nil, apperr.Conflict("Cannot demote the last admin")
		}
	}

	if req.Username != "" && req.Username != user.Username {
		var existing models.User
		err := s.db.Where("username = ?", req.Username).First(&existing).Error
		if err == nil {
			return nil, apperr.Conflict("Username already taken")
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to look up user: %w", err)
		}
		user.Username = req.Username
	}
	if req.Roles != "" {
		user.Roles = req.Roles
	}
	if req.Password != "" {
		if len(req.Password) < minPasswordLength {
			return nil, apperr.Validation("Password must be at least 8 characters long")
		}
		if err := user.SetPassword(req.Password); err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
	}

	if err := s.db.Save(user).Error; err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// Delete removes a user. Deleting the last remaining admin is refused.
func (s *UserService) Delete(id uint) error {
	user, err := s.Get(id)
	if err != nil {
		return err
	}

	if user.IsAdmin() {
		last, err := s.isLastAdmin(user.ID)
		if err != nil {
			return err
		}
		if last {
			return apperr.Conflict("Cannot delete the last admin")
		}
	}

	if err := s.db.Delete(&models.User{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

func (s *UserService) isLastAdmin(id uint) (bool, error) {
	var others int64
	err := s.db.Model(&models.User{}).
		Where("roles = ? AND id <> ?", models.RoleAdmin, id).
		Count(&others).Error
	if err != nil {
		return false, fmt.Errorf("failed to count admins: %w", err)
	}
	return others == 0, nil
}

func (s *UserService) registrationOpen() bool {
	value, ok, err := database.GetSettingValue("web", "open_registration")
	if err != nil || !ok {
		return true
	}
	return value != "False"
}
