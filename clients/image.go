package clients

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"toloka2web/apperr"
)

const imageUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64)"

// ImageClient fetches remote images on behalf of the browser so poster
// sources without CORS headers still render.
type ImageClient struct {
	http *http.Client
}

// NewImageClient builds an image fetcher with the configured outbound timeout.
func NewImageClient() *ImageClient {
	return &ImageClient{http: newHTTPClient()}
}

// NormalizeImageURL rewrites protocol-relative and bare-host URLs to https.
func NormalizeImageURL(raw string) string {
	raw = strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(raw, "//"):
		return "https:" + raw
	case strings.HasPrefix(raw, "http://"), strings.HasPrefix(raw, "https://"):
		return raw
	default:
		return "https://" + raw
	}
}

// Fetch downloads the image at url. The caller must close the returned body.
func (c *ImageClient) Fetch(url string) (body io.ReadCloser, contentType string, err error) {
	req, err := http.NewRequest(http.MethodGet, NormalizeImageURL(url), nil)
	if err != nil {
		return nil, "", apperr.Validation("invalid image URL")
	}
	req.Header.Set("User-Agent", imageUserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", apperr.ServiceUnavailable(fmt.Sprintf("image fetch error: %v", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, "", apperr.ServiceUnavailable(fmt.Sprintf("image fetch error: HTTP %d", resp.StatusCode))
	}

	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		ct = "application/octet-stream"
	}
	return resp.Body, ct, nil
}
