package handlers

import (
	"toloka2web/apperr"
	"toloka2web/models"
	"toloka2web/service"

	"github.com/gin-gonic/gin"
)

// ListSettings lists all settings
func ListSettings(c *gin.Context) {
	settings, err := service.GlobalServices.Setting.List()
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, settings)
}

// AddSetting creates a new (section, key) setting.
func AddSetting(c *gin.Context) {
	var req models.SettingInput
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Validation("section, key and value are required"))
		return
	}

	setting, err := service.GlobalServices.Setting.Add(req)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, setting)
}

// UpdateSetting edits a setting by ID.
func UpdateSetting(c *gin.Context) {
	id, okID := parseID(c)
	if !okID {
		return
	}

	var req models.SettingInput
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Validation("section, key and value are required"))
		return
	}

	setting, err := service.GlobalServices.Setting.Update(id, req)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, setting)
}

// DeleteSetting removes a setting by ID.
func DeleteSetting(c *gin.Context) {
	id, okID := parseID(c)
	if !okID {
		return
	}

	if err := service.GlobalServices.Setting.Delete(id); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"message": "Setting deleted"})
}

// SyncSettings runs one explicit (type, direction) INI sync pair.
func SyncSettings(c *gin.Context) {
	var req models.SyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Validation("type and direction are required"))
		return
	}

	if err := service.GlobalServices.Setting.Sync(req); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"message": "Sync completed"})
}
