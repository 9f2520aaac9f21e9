package clients

import (
	"net/http"
	"net/url"

	"toloka2web/apperr"
	"toloka2web/database"
)

// RetrySuggestedMessage is returned when the tracker asks for a retry twice
// in a row; the caller is told to repeat the search instead of looping.
const RetrySuggestedMessage = "Search did not complete, please repeat the search"

// TolokaClient talks to the Toloka tracker search/add API. The base URL is
// configured through the settings store so the tracker can be self-hosted
// or proxied.
type TolokaClient struct {
	http *http.Client
}

// NewTolokaClient builds a Toloka client with the configured outbound timeout.
func NewTolokaClient() *TolokaClient {
	return &TolokaClient{http: newHTTPClient()}
}

func (c *TolokaClient) baseURL() (string, error) {
	value, ok, err := database.GetSettingValue("Toloka", "api_url")
	if err != nil {
		return "", apperr.ServiceUnavailable("Toloka configuration unavailable")
	}
	if !ok || value == "" {
		return "", apperr.ServiceUnavailable("Toloka not configured")
	}
	return value, nil
}

// SearchTorrents searches the tracker. A response carrying
// retry_suggested=true is retried exactly once; a second suggestion gives
// up with a user-facing message rather than a third call.
func (c *TolokaClient) SearchTorrents(query string) (map[string]interface{}, error) {
	base, err := c.baseURL()
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("query", query)

	result, err := getJSON(c.http, base+"/search", params, nil, "Toloka")
	if err != nil {
		return nil, err
	}
	if !retrySuggested(result) {
		return result, nil
	}

	result, err = getJSON(c.http, base+"/search", params, nil, "Toloka")
	if err != nil {
		return nil, err
	}
	if retrySuggested(result) {
		return map[string]interface{}{
			"error":   true,
			"message": RetrySuggestedMessage,
		}, nil
	}
	return result, nil
}

// TorrentDetail fetches one torrent record by tracker release ID.
func (c *TolokaClient) TorrentDetail(releaseID string) (map[string]interface{}, error) {
	base, err := c.baseURL()
	if err != nil {
		return nil, err
	}
	return getJSON(c.http, base+"/torrent/"+url.PathEscape(releaseID), nil, nil, "Toloka")
}

// AddTorrent hands a torrent page URL to the tracker-side downloader.
func (c *TolokaClient) AddTorrent(torrentURL string) (map[string]interface{}, error) {
	base, err := c.baseURL()
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("url", torrentURL)
	return getJSON(c.http, base+"/add", params, nil, "Toloka")
}

func retrySuggested(result map[string]interface{}) bool {
	v, ok := result["retry_suggested"].(bool)
	return ok && v
}
