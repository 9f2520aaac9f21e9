package clients

import (
	"net/http"
	"net/url"

	"toloka2web/apperr"
	"toloka2web/database"
)

// StreamClient talks to the streaming-site search service.
type StreamClient struct {
	http *http.Client
}

// NewStreamClient builds a stream client with the configured outbound timeout.
func NewStreamClient() *StreamClient {
	return &StreamClient{http: newHTTPClient()}
}

func (c *StreamClient) baseURL() (string, error) {
	value, ok, err := database.GetSettingValue("Stream", "api_url")
	if err != nil {
		return "", apperr.ServiceUnavailable("Stream configuration unavailable")
	}
	if !ok || value == "" {
		return "", apperr.ServiceUnavailable("Stream service not configured")
	}
	return value, nil
}

// SearchTitles searches streaming-site titles by free text.
func (c *StreamClient) SearchTitles(query string) (map[string]interface{}, error) {
	base, err := c.baseURL()
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("query", query)
	return getJSON(c.http, base+"/search", params, nil, "Stream")
}

// TitleDetails fetches the per-provider detail record for one title link.
func (c *StreamClient) TitleDetails(provider, link string) (map[string]interface{}, error) {
	base, err := c.baseURL()
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("provider", provider)
	params.Set("link", link)
	return getJSON(c.http, base+"/details", params, nil, "Stream")
}

// AddTitle registers one streaming title for tracking.
func (c *StreamClient) AddTitle(provider, link string) (map[string]interface{}, error) {
	base, err := c.baseURL()
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("provider", provider)
	params.Set("link", link)
	return getJSON(c.http, base+"/add", params, nil, "Stream")
}
