package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"toloka2web/models"
	"toloka2web/service"
)

// Client is the HTTP client for talking to the Toloka2Web server
type Client struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
}

// NewClient creates a new HTTP client
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// doRequest executes an HTTP request
func (c *Client) doRequest(method, path string, body interface{}) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %v", err)
		}
		bodyReader = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %v", err)
	}

	return resp, nil
}

// handleResponse handles an HTTP response
func (c *Client) handleResponse(resp *http.Response, result interface{}) error {
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(bodyBytes))
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %v", err)
		}
	}

	return nil
}

// HealthCheck pings the health endpoint
func (c *Client) HealthCheck() error {
	resp, err := c.doRequest("GET", "/api/health", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return fmt.Errorf("server unhealthy: HTTP %d", resp.StatusCode)
	}

	return nil
}

// Login authenticates and stores the access token for later calls.
func (c *Client) Login(username, password string) error {
	resp, err := c.doRequest("POST", "/api/auth/login", models.LoginRequest{
		Username: username,
		Password: password,
	})
	if err != nil {
		return err
	}

	var result struct {
		AccessToken string          `json:"access_token"`
		User        models.UserInfo `json:"user"`
	}
	if err := c.handleResponse(resp, &result); err != nil {
		return err
	}

	c.accessToken = result.AccessToken
	return nil
}

// ListReleases lists all tracked releases
func (c *Client) ListReleases() ([]models.Release, error) {
	resp, err := c.doRequest("GET", "/api/releases", nil)
	if err != nil {
		return nil, err
	}

	var releases []models.Release
	if err := c.handleResponse(resp, &releases); err != nil {
		return nil, err
	}

	return releases, nil
}

// UpdateRelease updates one release by codename
func (c *Client) UpdateRelease(codename string) (*service.UpdateResult, error) {
	resp, err := c.doRequest("POST", "/api/releases/update", models.ReleaseInput{Codename: codename})
	if err != nil {
		return nil, err
	}

	var result service.UpdateResult
	if err := c.handleResponse(resp, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// UpdateAllReleases sweeps every ongoing release
func (c *Client) UpdateAllReleases() (*service.UpdateResult, error) {
	resp, err := c.doRequest("POST", "/api/releases/update", nil)
	if err != nil {
		return nil, err
	}

	var result service.UpdateResult
	if err := c.handleResponse(resp, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// MultiSearch runs the aggregated search
func (c *Client) MultiSearch(query string) ([]service.SearchResult, error) {
	resp, err := c.doRequest("GET", "/api/search?query="+url.QueryEscape(query), nil)
	if err != nil {
		return nil, err
	}

	var results []service.SearchResult
	if err := c.handleResponse(resp, &results); err != nil {
		return nil, err
	}

	return results, nil
}

// TolokaSearch searches the tracker
func (c *Client) TolokaSearch(query string) (map[string]interface{}, error) {
	resp, err := c.doRequest("GET", "/api/toloka?query="+url.QueryEscape(query), nil)
	if err != nil {
		return nil, err
	}

	var result map[string]interface{}
	if err := c.handleResponse(resp, &result); err != nil {
		return nil, err
	}

	return result, nil
}

// ListSettings lists all settings (admin)
func (c *Client) ListSettings() ([]models.AppSetting, error) {
	resp, err := c.doRequest("GET", "/api/settings", nil)
	if err != nil {
		return nil, err
	}

	var settings []models.AppSetting
	if err := c.handleResponse(resp, &settings); err != nil {
		return nil, err
	}

	return settings, nil
}

// Sync triggers one explicit INI sync pair (admin)
func (c *Client) Sync(typ, direction string) error {
	resp, err := c.doRequest("POST", "/api/settings/sync", models.SyncRequest{
		Type:      typ,
		Direction: direction,
	})
	if err != nil {
		return err
	}
	return c.handleResponse(resp, nil)
}
