package service

import (
	"path/filepath"
	"testing"

	"toloka2web/config"
	"toloka2web/database"
	"toloka2web/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestDB opens a throwaway database and points the globals the services
// read (settings lookups, INI mirror paths) at temp locations.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.AppSetting{}, &models.Release{}, &models.RevokedToken{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	prevDB := database.DB
	database.DB = db
	prevApp := config.Settings.AppINIPath
	prevTitles := config.Settings.TitlesINIPath
	dir := t.TempDir()
	config.Settings.AppINIPath = filepath.Join(dir, "app.ini")
	config.Settings.TitlesINIPath = filepath.Join(dir, "titles.ini")

	t.Cleanup(func() {
		database.DB = prevDB
		config.Settings.AppINIPath = prevApp
		config.Settings.TitlesINIPath = prevTitles
	})
	return db
}
