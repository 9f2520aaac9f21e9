package clients

import (
	"fmt"
	"net/http"
	"net/url"
)

// MALClient talks to the MyAnimeList v2 API.
type MALClient struct {
	BaseURL string
	http    *http.Client
}

// NewMALClient builds a MAL client with the configured outbound timeout.
func NewMALClient() *MALClient {
	return &MALClient{
		BaseURL: "https://api.myanimelist.net/v2",
		http:    newHTTPClient(),
	}
}

// SearchAnime searches anime by free text.
func (c *MALClient) SearchAnime(query string) (map[string]interface{}, error) {
	key, err := apiKey("mal_api", "MAL")
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", "10")
	params.Set("fields", "id,title,main_picture,alternative_titles,media_type,status,start_date,end_date")

	return getJSON(c.http, c.BaseURL+"/anime", params,
		map[string]string{"X-MAL-CLIENT-ID": key}, "MAL")
}

// AnimeDetail fetches the full record for one anime.
func (c *MALClient) AnimeDetail(animeID int) (map[string]interface{}, error) {
	key, err := apiKey("mal_api", "MAL")
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("fields", "id,title,main_picture,alternative_titles,start_date,end_date,synopsis,rank,"+
		"popularity,status,num_episodes,rating,pictures,background,related_anime")

	return getJSON(c.http, fmt.Sprintf("%s/anime/%d", c.BaseURL, animeID), params,
		map[string]string{"X-MAL-CLIENT-ID": key}, "MAL")
}
