package models

import (
	"strings"
	"time"
)

// Release tracks one media title. Section is the unique business key
// ("codename") and also names the matching section in titles.ini.
type Release struct {
	ID                    uint      `gorm:"primaryKey" json:"id"`
	Section               string    `gorm:"uniqueIndex;size:100;not null" json:"section"`
	EpisodeIndex          int       `json:"episode_index"`
	SeasonNumber          string    `gorm:"size:10" json:"season_number"`
	TorrentName           string    `gorm:"size:100" json:"torrent_name"`
	DownloadDir           string    `gorm:"size:200" json:"download_dir"`
	PublishDate           time.Time `json:"publish_date"`
	ReleaseGroup          string    `gorm:"size:100" json:"release_group"`
	Meta                  string    `gorm:"size:200" json:"meta"`
	Hash                  string    `gorm:"size:40" json:"hash"`
	AdjustedEpisodeNumber int       `json:"adjusted_episode_number"`
	GUID                  string    `gorm:"index;size:50" json:"guid"`
	Ongoing               bool      `gorm:"default:true" json:"ongoing"`
	UserID                *uint     `json:"user_id,omitempty"`
}

// ReleaseInput is the payload for adding or editing a release.
// Add-by-URL uses URL/Season/Index/Correction/Title; edit and delete
// address an existing row by Codename.
type ReleaseInput struct {
	URL        string `json:"url"`
	Season     string `json:"season"`
	Index      int    `json:"index"`
	Correction int    `json:"correction"`
	Title      string `json:"title"`

	Codename              string `json:"codename"`
	EpisodeIndex          *int   `json:"episode_index,omitempty"`
	SeasonNumber          string `json:"season_number"`
	TorrentName           string `json:"torrent_name"`
	DownloadDir           string `json:"download_dir"`
	PublishDate           string `json:"publish_date"`
	ReleaseGroup          string `json:"release_group"`
	Meta                  string `json:"meta"`
	Hash                  string `json:"hash"`
	AdjustedEpisodeNumber *int   `json:"adjusted_episode_number,omitempty"`
	Ongoing               *bool  `json:"ongoing,omitempty"`
}

// Normalize trims whitespace from input fields
func (r *ReleaseInput) Normalize() {
	r.URL = strings.TrimSpace(r.URL)
	r.Season = strings.TrimSpace(r.Season)
	r.Title = strings.TrimSpace(r.Title)
	r.Codename = strings.TrimSpace(r.Codename)
	r.SeasonNumber = strings.TrimSpace(r.SeasonNumber)
	r.TorrentName = strings.TrimSpace(r.TorrentName)
	r.DownloadDir = strings.TrimSpace(r.DownloadDir)
	r.ReleaseGroup = strings.TrimSpace(r.ReleaseGroup)
	r.Hash = strings.TrimSpace(r.Hash)
}

// TorrentStatus is the torrent-client state joined to a release by hash.
type TorrentStatus struct {
	Hash     string  `json:"hash"`
	Name     string  `json:"name"`
	State    string  `json:"state"`
	Progress float64 `json:"progress"`
	SavePath string  `json:"save_path"`
}

// ReleaseWithTorrent is a release plus the best-effort torrent-client
// status matched by hash equality, when one exists.
type ReleaseWithTorrent struct {
	Release
	Torrent *TorrentStatus `json:"torrent,omitempty"`
}
