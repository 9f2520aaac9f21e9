package service

import (
	"errors"
	"fmt"
	"log"

	"toloka2web/apperr"
	"toloka2web/config"
	"toloka2web/iniconf"
	"toloka2web/models"

	"gorm.io/gorm"
)

// SettingService handles application settings business logic
type SettingService struct {
	db *gorm.DB
}

// NewSettingService constructs a setting service
func NewSettingService(db *gorm.DB) *SettingService {
	return &SettingService{db: db}
}

// List lists all settings
func (s *SettingService) List() ([]models.AppSetting, error) {
	var settings []models.AppSetting
	if err := s.db.Order("section, key").Find(&settings).Error; err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	return settings, nil
}

// Add creates a new setting. A duplicate (section, key) pair is refused.
func (s *SettingService) Add(req models.SettingInput) (*models.AppSetting, error) {
	req.Normalize()
	if req.Section == "" || req.Key == "" {
		return nil, apperr.Validation("section and key are required")
	}

	var existing models.AppSetting
	err := s.db.Where("section = ? AND key = ?", req.Section, req.Key).First(&existing).Error
	if err == nil {
		return nil, apperr.Conflict("Setting already exists")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up setting: %w", err)
	}

	setting := models.AppSetting{Section: req.Section, Key: req.Key, Value: req.Value}
	if err := s.db.Create(&setting).Error; err != nil {
		return nil, fmt.Errorf("failed to create setting: %w", err)
	}

	s.exportAfterMutation()
	return &setting, nil
}

// Update edits a setting by ID
func (s *SettingService) Update(id uint, req models.SettingInput) (*models.AppSetting, error) {
	req.Normalize()

	var setting models.AppSetting
	if err := s.db.First(&setting, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Setting not found")
		}
		return nil, fmt.Errorf("failed to get setting: %w", err)
	}

	if req.Section != setting.Section || req.Key != setting.Key {
		var clash models.AppSetting
		err := s.db.Where("section = ? AND key = ? AND id <> ?", req.Section, req.Key, id).First(&clash).Error
		if err == nil {
			return nil, apperr.Conflict("Setting already exists")
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to look up setting: %w", err)
		}
	}

	setting.Section = req.Section
	setting.Key = req.Key
	setting.Value = req.Value
	if err := s.db.Save(&setting).Error; err != nil {
		return nil, fmt.Errorf("failed to update setting: %w", err)
	}

	s.exportAfterMutation()
	return &setting, nil
}

// Delete removes a setting by ID
func (s *SettingService) Delete(id uint) error {
	var setting models.AppSetting
	if err := s.db.First(&setting, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("Setting not found")
		}
		return fmt.Errorf("failed to get setting: %w", err)
	}

	if err := s.db.Delete(&models.AppSetting{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete setting: %w", err)
	}

	s.exportAfterMutation()
	return nil
}

// Sync runs one (type, direction) pair against the INI mirrors.
func (s *SettingService) Sync(req models.SyncRequest) error {
	switch req.Type {
	case iniconf.TypeSettings, iniconf.TypeReleases:
	default:
		return apperr.Validation("type must be \"settings\" or \"releases\"")
	}
	switch req.Direction {
	case iniconf.DirectionToFile, iniconf.DirectionFromFile:
	default:
		return apperr.Validation("direction must be \"to-file\" or \"from-file\"")
	}

	err := iniconf.Sync(s.db, req.Type, req.Direction,
		config.Settings.AppINIPath, config.Settings.TitlesINIPath)
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}
	return nil
}

// SeedDefaults inserts the settings a fresh instance needs, without
// overwriting anything an import already provided.
func (s *SettingService) SeedDefaults() error {
	defaults := []models.AppSetting{
		{Section: "web", Key: "open_registration", Value: "True"},
	}

	for _, d := range defaults {
		var existing models.AppSetting
		err := s.db.Where("section = ? AND key = ?", d.Section, d.Key).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if err := s.db.Create(&d).Error; err != nil {
				return fmt.Errorf("failed to seed setting %s/%s: %w", d.Section, d.Key, err)
			}
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to look up setting %s/%s: %w", d.Section, d.Key, err)
		}
	}
	return nil
}

// exportAfterMutation keeps app.ini trailing the database. Export failure
// is logged, not surfaced: the database already holds the change.
func (s *SettingService) exportAfterMutation() {
	if err := iniconf.ExportSettings(s.db, config.Settings.AppINIPath); err != nil {
		log.Printf("settings export failed: %v", err)
	}
}
