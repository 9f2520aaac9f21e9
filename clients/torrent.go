package clients

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"toloka2web/apperr"
	"toloka2web/database"
	"toloka2web/models"
)

// TorrentStatusClient reads the torrent client's status list so releases
// can be joined to their live torrents by hash.
type TorrentStatusClient struct {
	http *http.Client
}

// NewTorrentStatusClient builds a status client with the configured outbound timeout.
func NewTorrentStatusClient() *TorrentStatusClient {
	return &TorrentStatusClient{http: newHTTPClient()}
}

// List returns the status of every torrent the client currently tracks.
func (c *TorrentStatusClient) List() ([]models.TorrentStatus, error) {
	base, ok, err := database.GetSettingValue("TorrentClient", "api_url")
	if err != nil {
		return nil, apperr.ServiceUnavailable("Torrent client configuration unavailable")
	}
	if !ok || base == "" {
		return nil, apperr.ServiceUnavailable("Torrent client not configured")
	}

	resp, err := c.http.Get(strings.TrimSuffix(base, "/") + "/api/v2/torrents/info")
	if err != nil {
		return nil, apperr.ServiceUnavailable(fmt.Sprintf("Torrent client error: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperr.ServiceUnavailable(fmt.Sprintf("Torrent client error: HTTP %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.ServiceUnavailable(fmt.Sprintf("Torrent client error: %v", err))
	}

	var statuses []models.TorrentStatus
	if err := json.Unmarshal(body, &statuses); err != nil {
		return nil, apperr.ServiceUnavailable("Torrent client error: malformed response")
	}
	return statuses, nil
}
