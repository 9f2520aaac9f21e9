// Package iniconf keeps the settings and releases tables synchronized with
// their INI-file mirrors (app.ini, titles.ini). The database is the
// authoritative runtime source; the files are human-editable bootstrapping
// artifacts rewritten wholesale on every export.
package iniconf

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"toloka2web/models"

	"gopkg.in/ini.v1"
	"gorm.io/gorm"
)

// PublishDateLayout is the INI encoding for dates: YY-MM-DD HH:MM.
const PublishDateLayout = "06-01-02 15:04"

// Sync types and directions accepted by Sync.
const (
	TypeSettings = "settings"
	TypeReleases = "releases"

	DirectionToFile   = "to-file"
	DirectionFromFile = "from-file"
)

// Field defaults substituted for missing or unparseable INI values.
const (
	defaultSeasonNumber          = "1"
	defaultAdjustedEpisodeNumber = 1
)

// Sync dispatches one of the four (type, direction) pairs.
func Sync(db *gorm.DB, typ, direction, settingsPath, releasesPath string) error {
	switch {
	case typ == TypeSettings && direction == DirectionToFile:
		return ExportSettings(db, settingsPath)
	case typ == TypeSettings && direction == DirectionFromFile:
		return ImportSettings(db, settingsPath)
	case typ == TypeReleases && direction == DirectionToFile:
		return ExportReleases(db, releasesPath)
	case typ == TypeReleases && direction == DirectionFromFile:
		return ImportReleases(db, releasesPath)
	default:
		return fmt.Errorf("invalid sync pair: type=%q direction=%q", typ, direction)
	}
}

// ExportSettings serializes all settings rows into INI sections, one section
// per distinct Section value, and atomically overwrites the file.
func ExportSettings(db *gorm.DB, path string) error {
	var settings []models.AppSetting
	if err := db.Order("section, key").Find(&settings).Error; err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	cfg := ini.Empty()
	for _, s := range settings {
		section, err := cfg.GetSection(s.Section)
		if err != nil {
			if section, err = cfg.NewSection(s.Section); err != nil {
				return fmt.Errorf("failed to create section %q: %w", s.Section, err)
			}
		}
		section.Key(s.Key).SetValue(s.Value)
	}

	return writeAtomic(cfg, path)
}

// ImportSettings parses the INI file and upserts every (section, key)
// pair. Rows absent from the file are never deleted.
func ImportSettings(db *gorm.DB, path string) error {
	cfg, err := loadINI(path)
	if err != nil {
		return err
	}
	if cfg == nil {
		return nil
	}

	for _, section := range cfg.Sections() {
		if section.Name() == ini.DefaultSection {
			continue
		}
		for _, key := range section.Keys() {
			var existing models.AppSetting
			err := db.Where("section = ? AND key = ?", section.Name(), key.Name()).First(&existing).Error
			if err == gorm.ErrRecordNotFound {
				if err := db.Create(&models.AppSetting{
					Section: section.Name(),
					Key:     key.Name(),
					Value:   key.Value(),
				}).Error; err != nil {
					return fmt.Errorf("failed to insert setting %s/%s: %w", section.Name(), key.Name(), err)
				}
				continue
			}
			if err != nil {
				return fmt.Errorf("failed to look up setting %s/%s: %w", section.Name(), key.Name(), err)
			}
			existing.Value = key.Value()
			if err := db.Save(&existing).Error; err != nil {
				return fmt.Errorf("failed to update setting %s/%s: %w", section.Name(), key.Name(), err)
			}
		}
	}
	return nil
}

// ExportReleases serializes all release rows into INI sections keyed by
// codename and atomically overwrites the file.
func ExportReleases(db *gorm.DB, path string) error {
	var releases []models.Release
	if err := db.Order("section").Find(&releases).Error; err != nil {
		return fmt.Errorf("failed to load releases: %w", err)
	}

	cfg := ini.Empty()
	for _, r := range releases {
		section, err := cfg.NewSection(r.Section)
		if err != nil {
			return fmt.Errorf("failed to create section %q: %w", r.Section, err)
		}
		section.Key("episode_index").SetValue(strconv.Itoa(r.EpisodeIndex))
		section.Key("season_number").SetValue(r.SeasonNumber)
		section.Key("torrent_name").SetValue(r.TorrentName)
		section.Key("download_dir").SetValue(r.DownloadDir)
		section.Key("publish_date").SetValue(r.PublishDate.Format(PublishDateLayout))
		section.Key("release_group").SetValue(r.ReleaseGroup)
		section.Key("meta").SetValue(r.Meta)
		section.Key("hash").SetValue(r.Hash)
		section.Key("adjusted_episode_number").SetValue(strconv.Itoa(r.AdjustedEpisodeNumber))
		section.Key("guid").SetValue(r.GUID)
		section.Key("ongoing").SetValue(formatBool(r.Ongoing))
	}

	return writeAtomic(cfg, path)
}

// ImportReleases parses the INI file and upserts each section by codename.
// A field that fails to parse falls back to its documented default without
// aborting the import.
func ImportReleases(db *gorm.DB, path string) error {
	cfg, err := loadINI(path)
	if err != nil {
		return err
	}
	if cfg == nil {
		return nil
	}

	for _, section := range cfg.Sections() {
		if section.Name() == ini.DefaultSection {
			continue
		}

		var release models.Release
		err := db.Where("section = ?", section.Name()).First(&release).Error
		insert := err == gorm.ErrRecordNotFound
		if err != nil && !insert {
			return fmt.Errorf("failed to look up release %q: %w", section.Name(), err)
		}

		release.Section = section.Name()
		applySection(&release, section)

		if insert {
			err = db.Create(&release).Error
		} else {
			err = db.Save(&release).Error
		}
		if err != nil {
			return fmt.Errorf("failed to store release %q: %w", section.Name(), err)
		}
	}
	return nil
}

func applySection(release *models.Release, section *ini.Section) {
	release.EpisodeIndex = intKey(section, "episode_index", 0)
	release.SeasonNumber = stringKey(section, "season_number", defaultSeasonNumber)
	release.TorrentName = stringKey(section, "torrent_name", "")
	release.DownloadDir = stringKey(section, "download_dir", "")
	release.ReleaseGroup = stringKey(section, "release_group", "")
	release.Meta = stringKey(section, "meta", "")
	release.Hash = stringKey(section, "hash", "")
	release.AdjustedEpisodeNumber = intKey(section, "adjusted_episode_number", defaultAdjustedEpisodeNumber)
	release.GUID = stringKey(section, "guid", "")
	release.Ongoing = boolKey(section, "ongoing", true)

	// Malformed or missing publish date falls back to now.
	release.PublishDate = time.Now()
	if raw := stringKey(section, "publish_date", ""); raw != "" {
		if parsed, err := time.ParseInLocation(PublishDateLayout, raw, time.Local); err == nil {
			release.PublishDate = parsed
		}
	}
}

func stringKey(section *ini.Section, name, fallback string) string {
	if !section.HasKey(name) {
		return fallback
	}
	v := section.Key(name).String()
	if v == "" {
		return fallback
	}
	return v
}

func intKey(section *ini.Section, name string, fallback int) int {
	if !section.HasKey(name) {
		return fallback
	}
	v, err := strconv.Atoi(section.Key(name).String())
	if err != nil {
		return fallback
	}
	return v
}

func boolKey(section *ini.Section, name string, fallback bool) bool {
	if !section.HasKey(name) {
		return fallback
	}
	switch section.Key(name).String() {
	case "True":
		return true
	case "False":
		return false
	default:
		return fallback
	}
}

func formatBool(v bool) string {
	if v {
		return "True"
	}
	return "False"
}

// loadINI reads an INI file. A missing file imports as empty, not an error.
func loadINI(path string) (*ini.File, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cfg, nil
}

// writeAtomic rewrites the whole file via a temp file and rename so readers
// never observe a partially written mirror.
func writeAtomic(cfg *ini.File, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := cfg.WriteTo(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
