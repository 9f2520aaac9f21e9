package clients

import (
	"fmt"
	"net/http"
	"net/url"
)

// TMDBClient talks to The Movie Database v3 API.
type TMDBClient struct {
	BaseURL string
	http    *http.Client
}

// NewTMDBClient builds a TMDB client with the configured outbound timeout.
func NewTMDBClient() *TMDBClient {
	return &TMDBClient{
		BaseURL: "https://api.themoviedb.org/3",
		http:    newHTTPClient(),
	}
}

// SearchMulti searches movies, TV shows and people in one call.
func (c *TMDBClient) SearchMulti(query string) (map[string]interface{}, error) {
	key, err := apiKey("tmdb_api", "TMDB")
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("api_key", key)
	params.Set("query", query)
	params.Set("include_adult", "true")
	params.Set("language", "uk-UK")

	return getJSON(c.http, c.BaseURL+"/search/multi", params, nil, "TMDB")
}

// MediaDetail fetches one movie or TV record, with alternative titles and
// external IDs appended.
func (c *TMDBClient) MediaDetail(mediaID int, mediaType string) (map[string]interface{}, error) {
	key, err := apiKey("tmdb_api", "TMDB")
	if err != nil {
		return nil, err
	}
	if mediaType == "" {
		mediaType = "tv"
	}

	params := url.Values{}
	params.Set("api_key", key)
	params.Set("append_to_response", "external_ids,images,alternative_titles")
	params.Set("language", "uk-UK")

	return getJSON(c.http, fmt.Sprintf("%s/%s/%d", c.BaseURL, mediaType, mediaID), params, nil, "TMDB")
}

// Trending fetches the daily trending list for a media type.
func (c *TMDBClient) Trending(mediaType string) (map[string]interface{}, error) {
	key, err := apiKey("tmdb_api", "TMDB")
	if err != nil {
		return nil, err
	}
	if mediaType == "" {
		mediaType = "tv"
	}

	params := url.Values{}
	params.Set("api_key", key)
	params.Set("language", "uk-UK")

	return getJSON(c.http, fmt.Sprintf("%s/trending/%s/day", c.BaseURL, mediaType), params, nil, "TMDB")
}
