package iniconf

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"toloka2web/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.AppSetting{}, &models.Release{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestSettingsRoundTrip(t *testing.T) {
	db := openTestDB(t)
	path := filepath.Join(t.TempDir(), "app.ini")

	seed := []models.AppSetting{
		{Section: "Toloka", Key: "api_url", Value: "http://localhost:8080"},
		{Section: "Toloka", Key: "username", Value: "alice"},
		{Section: "web", Key: "open_registration", Value: "True"},
	}
	for _, s := range seed {
		if err := db.Create(&s).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	if err := ExportSettings(db, path); err != nil {
		t.Fatalf("export: %v", err)
	}

	// Wipe and re-import; every pair must come back
	if err := db.Where("1 = 1").Delete(&models.AppSetting{}).Error; err != nil {
		t.Fatalf("wipe: %v", err)
	}
	if err := ImportSettings(db, path); err != nil {
		t.Fatalf("import: %v", err)
	}

	var count int64
	db.Model(&models.AppSetting{}).Count(&count)
	if count != 3 {
		t.Fatalf("expected 3 settings after round trip, got %d", count)
	}

	var s models.AppSetting
	if err := db.Where("section = ? AND key = ?", "Toloka", "api_url").First(&s).Error; err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if s.Value != "http://localhost:8080" {
		t.Fatalf("value changed in round trip: %q", s.Value)
	}
}

func TestReleasesRoundTripStable(t *testing.T) {
	db := openTestDB(t)
	path := filepath.Join(t.TempDir(), "titles.ini")

	publish, _ := time.ParseInLocation(PublishDateLayout, "24-03-15 18:30", time.Local)
	release := models.Release{
		Section:               "moonlit-fantasy",
		EpisodeIndex:          5,
		SeasonNumber:          "2",
		TorrentName:           "Moonlit Fantasy S02",
		DownloadDir:           "/downloads/anime",
		PublishDate:           publish,
		ReleaseGroup:          "SubGroup",
		Meta:                  "1080p",
		Hash:                  "abc123",
		AdjustedEpisodeNumber: 3,
		GUID:                  "t675888",
		Ongoing:               true,
	}
	if err := db.Create(&release).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := ExportReleases(db, path); err != nil {
		t.Fatalf("export: %v", err)
	}
	if err := db.Where("1 = 1").Delete(&models.Release{}).Error; err != nil {
		t.Fatalf("wipe: %v", err)
	}
	if err := ImportReleases(db, path); err != nil {
		t.Fatalf("import: %v", err)
	}

	var got models.Release
	if err := db.Where("section = ?", "moonlit-fantasy").First(&got).Error; err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if got.EpisodeIndex != 5 || got.SeasonNumber != "2" || got.AdjustedEpisodeNumber != 3 {
		t.Fatalf("counters changed: episode=%d season=%q adjusted=%d",
			got.EpisodeIndex, got.SeasonNumber, got.AdjustedEpisodeNumber)
	}
	if !got.Ongoing {
		t.Fatalf("ongoing flag lost")
	}
	if got.PublishDate.Format(PublishDateLayout) != "24-03-15 18:30" {
		t.Fatalf("publish date changed: %s", got.PublishDate.Format(PublishDateLayout))
	}

	// A second export must be byte-identical to the first
	first, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if err := ExportReleases(db, path); err != nil {
		t.Fatalf("re-export: %v", err)
	}
	second, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(first) != string(second) {
		t.Fatalf("export is not stable across round trips")
	}
}

func TestImportReleasesDefaults(t *testing.T) {
	db := openTestDB(t)
	path := filepath.Join(t.TempDir(), "titles.ini")

	content := strings.Join([]string{
		"[sparse-show]",
		"episode_index = 7",
		"publish_date = not-a-date",
		"",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	before := time.Now()
	if err := ImportReleases(db, path); err != nil {
		t.Fatalf("import: %v", err)
	}

	var got models.Release
	if err := db.Where("section = ?", "sparse-show").First(&got).Error; err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if got.EpisodeIndex != 7 {
		t.Fatalf("episode_index = %d, want 7", got.EpisodeIndex)
	}
	if got.SeasonNumber != "1" {
		t.Fatalf("season_number default = %q, want \"1\"", got.SeasonNumber)
	}
	if got.AdjustedEpisodeNumber != 1 {
		t.Fatalf("adjusted_episode_number default = %d, want 1", got.AdjustedEpisodeNumber)
	}
	if !got.Ongoing {
		t.Fatalf("ongoing default = false, want true")
	}
	// Malformed date falls back to now
	if got.PublishDate.Before(before.Add(-time.Minute)) {
		t.Fatalf("publish_date fallback too old: %v", got.PublishDate)
	}
}

func TestImportIsAdditive(t *testing.T) {
	db := openTestDB(t)
	path := filepath.Join(t.TempDir(), "titles.ini")

	keep := models.Release{Section: "kept-show", EpisodeIndex: 2, SeasonNumber: "1", PublishDate: time.Now()}
	if err := db.Create(&keep).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	content := "[new-show]\nepisode_index = 1\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := ImportReleases(db, path); err != nil {
		t.Fatalf("import: %v", err)
	}

	var count int64
	db.Model(&models.Release{}).Count(&count)
	if count != 2 {
		t.Fatalf("import deleted rows: count=%d, want 2", count)
	}
}

func TestImportMissingFile(t *testing.T) {
	db := openTestDB(t)

	if err := ImportSettings(db, filepath.Join(t.TempDir(), "missing.ini")); err != nil {
		t.Fatalf("missing settings file should import as empty: %v", err)
	}
	if err := ImportReleases(db, filepath.Join(t.TempDir(), "missing.ini")); err != nil {
		t.Fatalf("missing releases file should import as empty: %v", err)
	}
}

func TestSyncRejectsInvalidPair(t *testing.T) {
	db := openTestDB(t)
	if err := Sync(db, "bogus", DirectionToFile, "a.ini", "b.ini"); err == nil {
		t.Fatalf("expected error for invalid sync type")
	}
	if err := Sync(db, TypeSettings, "sideways", "a.ini", "b.ini"); err == nil {
		t.Fatalf("expected error for invalid sync direction")
	}
}

func TestBoolEncoding(t *testing.T) {
	tests := []struct {
		in   bool
		want string
	}{
		{true, "True"},
		{false, "False"},
	}
	for _, tt := range tests {
		if got := formatBool(tt.in); got != tt.want {
			t.Fatalf("formatBool(%t) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
