// Package clients wraps the external services this application talks to:
// MyAnimeList, TMDB, the Toloka tracker, the streaming-site search, and the
// torrent client. Every call is a single synchronous HTTP request with a
// bounded timeout; failures come back as typed errors, never panics.
package clients

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"toloka2web/apperr"
	"toloka2web/config"
	"toloka2web/database"
)

func newHTTPClient() *http.Client {
	return &http.Client{
		Timeout: time.Duration(config.Settings.ExternalTimeoutSeconds) * time.Second,
	}
}

// apiKey fetches an external-service credential from the settings store.
// A missing key is a reported error, not a crash.
func apiKey(keyName, serviceName string) (string, error) {
	value, ok, err := database.GetAPIKey(keyName)
	if err != nil {
		return "", apperr.ServiceUnavailable(fmt.Sprintf("%s configuration unavailable", serviceName))
	}
	if !ok || value == "" {
		return "", apperr.ServiceUnavailable(fmt.Sprintf("%s API key not found", serviceName))
	}
	return value, nil
}

// getJSON performs one GET and decodes the JSON body. Non-2xx responses and
// transport failures surface as SERVICE_UNAVAILABLE errors tagged with the
// service name.
func getJSON(client *http.Client, rawURL string, params url.Values, headers map[string]string, serviceName string) (map[string]interface{}, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, apperr.ServiceUnavailable(fmt.Sprintf("%s API error: bad URL", serviceName))
	}
	if params != nil {
		u.RawQuery = params.Encode()
	}

	req, err := http.NewRequest(http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, apperr.ServiceUnavailable(fmt.Sprintf("%s API error: %v", serviceName, err))
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, apperr.ServiceUnavailable(fmt.Sprintf("%s API error: %v", serviceName, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperr.ServiceUnavailable(fmt.Sprintf("%s API error: HTTP %d", serviceName, resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.ServiceUnavailable(fmt.Sprintf("%s API error: %v", serviceName, err))
	}

	var result map[string]interface{}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, apperr.ServiceUnavailable(fmt.Sprintf("%s API error: malformed response", serviceName))
	}
	return result, nil
}
