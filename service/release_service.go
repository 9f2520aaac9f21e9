package service

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"toloka2web/apperr"
	"toloka2web/clients"
	"toloka2web/config"
	"toloka2web/iniconf"
	"toloka2web/models"

	"gorm.io/gorm"
)

// ReleaseService handles release tracking business logic
type ReleaseService struct {
	db      *gorm.DB
	toloka  *clients.TolokaClient
	torrent *clients.TorrentStatusClient
}

// NewReleaseService constructs a release service
func NewReleaseService(db *gorm.DB, toloka *clients.TolokaClient, torrent *clients.TorrentStatusClient) *ReleaseService {
	return &ReleaseService{db: db, toloka: toloka, torrent: torrent}
}

// UpdateResult reports the outcome of an update sweep.
type UpdateResult struct {
	Updated []string          `json:"updated"`
	Skipped []string          `json:"skipped"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// List lists all releases
func (s *ReleaseService) List() ([]models.Release, error) {
	var releases []models.Release
	if err := s.db.Order("section").Find(&releases).Error; err != nil {
		return nil, fmt.Errorf("failed to list releases: %w", err)
	}
	return releases, nil
}

// Get fetches a release by codename
func (s *ReleaseService) Get(codename string) (*models.Release, error) {
	var release models.Release
	err := s.db.Where("section = ?", codename).First(&release).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Release not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get release: %w", err)
	}
	return &release, nil
}

// GetByHash fetches a release by its torrent hash.
func (s *ReleaseService) GetByHash(hash string) (*models.Release, error) {
	var release models.Release
	err := s.db.Where("hash = ?", hash).First(&release).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Release not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get release: %w", err)
	}
	return &release, nil
}

// AddByURL registers a new tracked release from a tracker page URL. The
// tracker record supplies the initial metadata; the torrent itself is handed
// to the downloader.
func (s *ReleaseService) AddByURL(input models.ReleaseInput, userID *uint) (*models.Release, error) {
	input.Normalize()
	if input.URL == "" {
		return nil, apperr.Validation("url is required")
	}
	if input.Title == "" {
		return nil, apperr.Validation("title is required")
	}

	codename := Slugify(input.Title)
	if codename == "" {
		return nil, apperr.Validation("title yields an empty codename")
	}

	var existing models.Release
	err := s.db.Where("section = ?", codename).First(&existing).Error
	if err == nil {
		return nil, apperr.Conflict("Release already tracked")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up release: %w", err)
	}

	releaseID := trackerReleaseID(input.URL)
	detail, err := s.toloka.TorrentDetail(releaseID)
	if err != nil {
		return nil, err
	}

	season := input.Season
	if season == "" {
		season = "1"
	}

	release := models.Release{
		Section:               codename,
		EpisodeIndex:          input.Index,
		SeasonNumber:          season,
		TorrentName:           stringField(detail, "name"),
		ReleaseGroup:          stringField(detail, "author"),
		GUID:                  releaseID,
		AdjustedEpisodeNumber: input.Correction,
		Ongoing:               true,
		UserID:                userID,
		PublishDate:           parseTrackerDate(stringField(detail, "date")),
	}

	if _, err := s.toloka.AddTorrent(input.URL); err != nil {
		return nil, err
	}
	release.Hash = s.findHashByName(release.TorrentName)

	if err := s.db.Create(&release).Error; err != nil {
		return nil, fmt.Errorf("failed to create release: %w", err)
	}

	s.exportAfterMutation()
	return &release, nil
}

// Edit overwrites release fields addressed by codename. Nil pointer fields
// are left unchanged.
func (s *ReleaseService) Edit(input models.ReleaseInput) (*models.Release, error) {
	input.Normalize()
	if input.Codename == "" {
		return nil, apperr.Validation("codename is required")
	}

	release, err := s.Get(input.Codename)
	if err != nil {
		return nil, err
	}

	if input.EpisodeIndex != nil {
		release.EpisodeIndex = *input.EpisodeIndex
	}
	if input.SeasonNumber != "" {
		release.SeasonNumber = input.SeasonNumber
	}
	if input.TorrentName != "" {
		release.TorrentName = input.TorrentName
	}
	if input.DownloadDir != "" {
		release.DownloadDir = input.DownloadDir
	}
	if input.PublishDate != "" {
		parsed, err := time.ParseInLocation(iniconf.PublishDateLayout, input.PublishDate, time.Local)
		if err != nil {
			return nil, apperr.Validation("publish_date must use the YY-MM-DD HH:MM layout")
		}
		release.PublishDate = parsed
	}
	if input.ReleaseGroup != "" {
		release.ReleaseGroup = input.ReleaseGroup
	}
	if input.Meta != "" {
		release.Meta = input.Meta
	}
	if input.Hash != "" {
		release.Hash = input.Hash
	}
	if input.AdjustedEpisodeNumber != nil {
		release.AdjustedEpisodeNumber = *input.AdjustedEpisodeNumber
	}
	if input.Ongoing != nil {
		release.Ongoing = *input.Ongoing
	}

	if err := s.db.Save(release).Error; err != nil {
		return nil, fmt.Errorf("failed to update release: %w", err)
	}

	s.exportAfterMutation()
	return release, nil
}

// Delete removes a release by codename
func (s *ReleaseService) Delete(codename string) error {
	release, err := s.Get(codename)
	if err != nil {
		return err
	}

	if err := s.db.Delete(&models.Release{}, release.ID).Error; err != nil {
		return fmt.Errorf("failed to delete release: %w", err)
	}

	s.exportAfterMutation()
	return nil
}

// UpdateOne re-checks the tracker record for one release and advances its
// episode counter when a newer torrent has been published.
func (s *ReleaseService) UpdateOne(codename string) (*UpdateResult, error) {
	release, err := s.Get(codename)
	if err != nil {
		return nil, err
	}

	result := &UpdateResult{Updated: []string{}, Skipped: []string{}, Errors: map[string]string{}}
	s.updateRelease(release, result)
	if msg, ok := result.Errors[codename]; ok {
		return nil, apperr.ServiceUnavailable(msg)
	}
	return result, nil
}

// UpdateAll sweeps every ongoing release. Non-ongoing releases are skipped;
// a per-release failure is recorded and the sweep continues.
func (s *ReleaseService) UpdateAll() (*UpdateResult, error) {
	var releases []models.Release
	if err := s.db.Order("section").Find(&releases).Error; err != nil {
		return nil, fmt.Errorf("failed to list releases: %w", err)
	}

	result := &UpdateResult{Updated: []string{}, Skipped: []string{}, Errors: map[string]string{}}
	for i := range releases {
		if !releases[i].Ongoing {
			result.Skipped = append(result.Skipped, releases[i].Section)
			continue
		}
		s.updateRelease(&releases[i], result)
	}
	return result, nil
}

// WithTorrents joins every release to its torrent-client status by hash.
// A torrent-client outage degrades to releases without status.
func (s *ReleaseService) WithTorrents() ([]models.ReleaseWithTorrent, error) {
	releases, err := s.List()
	if err != nil {
		return nil, err
	}

	byHash := map[string]models.TorrentStatus{}
	statuses, err := s.torrent.List()
	if err != nil {
		log.Printf("torrent status unavailable: %v", err)
	} else {
		for _, st := range statuses {
			byHash[st.Hash] = st
		}
	}

	joined := make([]models.ReleaseWithTorrent, 0, len(releases))
	for _, r := range releases {
		entry := models.ReleaseWithTorrent{Release: r}
		if st, ok := byHash[r.Hash]; ok && r.Hash != "" {
			status := st
			entry.Torrent = &status
		}
		joined = append(joined, entry)
	}
	return joined, nil
}

func (s *ReleaseService) updateRelease(release *models.Release, result *UpdateResult) {
	detail, err := s.toloka.TorrentDetail(release.GUID)
	if err != nil {
		result.Errors[release.Section] = err.Error()
		return
	}

	remote := parseTrackerDate(stringField(detail, "date"))
	if !remote.After(release.PublishDate) {
		result.Skipped = append(result.Skipped, release.Section)
		return
	}

	if url := stringField(detail, "url"); url != "" {
		if _, err := s.toloka.AddTorrent(url); err != nil {
			result.Errors[release.Section] = err.Error()
			return
		}
	}

	release.EpisodeIndex++
	release.PublishDate = remote
	if name := stringField(detail, "name"); name != "" {
		release.TorrentName = name
	}
	if hash := s.findHashByName(release.TorrentName); hash != "" {
		release.Hash = hash
	}

	if err := s.db.Save(release).Error; err != nil {
		result.Errors[release.Section] = err.Error()
		return
	}
	result.Updated = append(result.Updated, release.Section)
	s.exportAfterMutation()
}

// findHashByName matches a freshly added torrent in the client's status
// list by name. Best effort only.
func (s *ReleaseService) findHashByName(name string) string {
	if name == "" {
		return ""
	}
	statuses, err := s.torrent.List()
	if err != nil {
		return ""
	}
	for _, st := range statuses {
		if st.Name == name {
			return st.Hash
		}
	}
	return ""
}

func (s *ReleaseService) exportAfterMutation() {
	if err := iniconf.ExportReleases(s.db, config.Settings.TitlesINIPath); err != nil {
		log.Printf("releases export failed: %v", err)
	}
}

// Slugify turns a display title into a codename: lowercase with runs of
// non-alphanumerics collapsed to single dashes.
func Slugify(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// trackerReleaseID extracts the release identifier from a tracker page URL,
// e.g. https://toloka.to/t675888 -> t675888.
func trackerReleaseID(rawURL string) string {
	trimmed := strings.TrimSuffix(rawURL, "/")
	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 {
		return trimmed[idx+1:]
	}
	return trimmed
}

func parseTrackerDate(raw string) time.Time {
	if raw != "" {
		if parsed, err := time.ParseInLocation(iniconf.PublishDateLayout, raw, time.Local); err == nil {
			return parsed
		}
	}
	return time.Now()
}

func stringField(m map[string]interface{}, key string) string {
	v, ok := m[key].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(v)
}
