package database

import (
	"errors"
	"strings"

	"toloka2web/models"

	"gorm.io/gorm"
)

// GetSettingValue returns a persisted (section, key) setting value.
// ok is false when the entry does not exist.
func GetSettingValue(section, key string) (value string, ok bool, err error) {
	if DB == nil {
		return "", false, errors.New("database not initialized")
	}

	section = strings.TrimSpace(section)
	key = strings.TrimSpace(key)
	if key == "" {
		return "", false, errors.New("empty setting key")
	}

	var s models.AppSetting
	q := DB.Where("key = ?", key)
	if section != "" {
		q = q.Where("section = ?", section)
	}
	if err := q.First(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return s.Value, true, nil
}

// GetAPIKey looks up an external-service credential by key name across all
// sections. Adapters call this before every outbound request.
func GetAPIKey(keyName string) (string, bool, error) {
	return GetSettingValue("", keyName)
}
