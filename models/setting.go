package models

import "strings"

// AppSetting is one INI entry: a (section, key) -> value triple mirrored
// into app.ini. Unique on (section, key).
type AppSetting struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Section string `gorm:"size:50;not null;uniqueIndex:idx_app_setting_section_key" json:"section"`
	Key     string `gorm:"size:50;not null;uniqueIndex:idx_app_setting_section_key" json:"key"`
	Value   string `gorm:"size:255;not null" json:"value"`
}

// SettingInput is the payload for adding or updating a setting.
type SettingInput struct {
	Section string `json:"section" binding:"required"`
	Key     string `json:"key" binding:"required"`
	Value   string `json:"value" binding:"required"`
}

// Normalize trims whitespace from input fields
func (s *SettingInput) Normalize() {
	s.Section = strings.TrimSpace(s.Section)
	s.Key = strings.TrimSpace(s.Key)
	s.Value = strings.TrimSpace(s.Value)
}

// SyncRequest selects one of the four (type, direction) sync pairs.
type SyncRequest struct {
	Type      string `json:"type" binding:"required"`      // "settings" or "releases"
	Direction string `json:"direction" binding:"required"` // "to-file" or "from-file"
}
