package service

import (
	"fmt"
	"strings"

	"toloka2web/clients"
)

// perSourceLimit caps each backend's contribution to the merged list.
const perSourceLimit = 4

// SearchResult is the normalized shape every search backend is mapped into.
type SearchResult struct {
	Source      string `json:"source"`
	Title       string `json:"title"`
	ID          any    `json:"id"`
	Status      string `json:"status"`
	MediaType   string `json:"mediaType"`
	Image       string `json:"image"`
	Description string `json:"description"`
	ReleaseDate string `json:"releaseDate"`
	Alternative string `json:"alternative"`
}

// SearchService merges results from the external metadata backends and the
// local catalog into one list.
type SearchService struct {
	mal     *clients.MALClient
	tmdb    *clients.TMDBClient
	catalog *CatalogService
}

// NewSearchService constructs a search service
func NewSearchService(mal *clients.MALClient, tmdb *clients.TMDBClient, catalog *CatalogService) *SearchService {
	return &SearchService{mal: mal, tmdb: tmdb, catalog: catalog}
}

// MultiSearch queries all backends with one free-text query. Any single
// backend failure degrades that backend to an empty contribution; partial
// results are always preferred over a total failure.
func (s *SearchService) MultiSearch(query string) []SearchResult {
	combined := []SearchResult{}
	combined = append(combined, s.searchMAL(query)...)
	combined = append(combined, s.searchTMDB(query)...)
	combined = append(combined, s.searchCatalog(query)...)
	return combined
}

func (s *SearchService) searchMAL(query string) []SearchResult {
	payload, err := s.mal.SearchAnime(query)
	if err != nil {
		return nil
	}

	var results []SearchResult
	for _, item := range itemList(payload, "data") {
		if len(results) == perSourceLimit {
			break
		}
		node, _ := item["node"].(map[string]interface{})
		if node == nil {
			continue
		}

		alternatives := joinNonEmpty(" | ",
			safeString(node, "alternative_titles", "en"),
			safeString(node, "alternative_titles", "ja"),
			joinNonEmpty(" | ", safeStrings(node, "alternative_titles", "synonyms")...),
		)

		results = append(results, SearchResult{
			Source:      "MAL",
			Title:       safeString(node, "title"),
			ID:          node["id"],
			Status:      safeString(node, "status"),
			MediaType:   safeString(node, "media_type"),
			Image:       safeString(node, "main_picture", "medium"),
			Description: safeString(node, "title"),
			ReleaseDate: safeString(node, "start_date"),
			Alternative: alternatives,
		})
	}
	return results
}

func (s *SearchService) searchTMDB(query string) []SearchResult {
	payload, err := s.tmdb.SearchMulti(query)
	if err != nil {
		return nil
	}

	var results []SearchResult
	for _, item := range itemList(payload, "results") {
		if len(results) == perSourceLimit {
			break
		}

		mediaType := safeString(item, "media_type")
		if mediaType == "" {
			mediaType = "Unknown"
		}

		// The per-item detail call only enriches alternative titles; its
		// failure keeps the item with primary-search fields.
		alternative := s.tmdbAlternatives(item, mediaType)

		image := ""
		if poster := safeString(item, "poster_path"); poster != "" {
			image = "https://image.tmdb.org/t/p/w500" + poster
		}

		title := safeString(item, "name")
		if title == "" {
			title = safeString(item, "title")
		}
		releaseDate := safeString(item, "first_air_date")
		if releaseDate == "" {
			releaseDate = safeString(item, "release_date")
		}

		results = append(results, SearchResult{
			Source:      "TMDB",
			Title:       title,
			ID:          item["id"],
			Status:      "Unknown",
			MediaType:   mediaType,
			Image:       image,
			Description: safeString(item, "overview"),
			ReleaseDate: releaseDate,
			Alternative: alternative,
		})
	}
	return results
}

func (s *SearchService) tmdbAlternatives(item map[string]interface{}, mediaType string) string {
	original := safeString(item, "original_name")

	id, ok := numericID(item["id"])
	if !ok {
		return original
	}
	details, err := s.tmdb.MediaDetail(id, mediaType)
	if err != nil {
		return original
	}

	titles := mapList(details, "alternative_titles", "results")
	if len(titles) == 0 {
		titles = mapList(details, "alternative_titles", "titles")
	}

	relevant := map[string]bool{"JP": true, "US": true, "UA": true, "UK": true}
	var parts []string
	for _, t := range titles {
		if relevant[safeString(t, "iso_3166_1")] {
			if v := safeString(t, "title"); v != "" {
				parts = append(parts, v)
			}
		}
	}
	return joinNonEmpty(" | ", append([]string{original}, parts...)...)
}

func (s *SearchService) searchCatalog(query string) []SearchResult {
	anime, err := s.catalog.SearchAnime(query)
	if err != nil {
		return nil
	}

	var results []SearchResult
	for _, a := range anime {
		if len(results) == perSourceLimit {
			break
		}
		status := "Finished Airing"
		if a.StatusID == 2 {
			status = "Currently Airing"
		}
		results = append(results, SearchResult{
			Source:      "localdb",
			Title:       a.TitleUa,
			ID:          a.ID,
			Status:      status,
			MediaType:   "Anime",
			Image:       "",
			Description: a.Description,
			ReleaseDate: a.ReleaseDate,
			Alternative: a.TitleEn,
		})
	}
	return results
}

// itemList extracts a list of objects at payload[key].
func itemList(payload map[string]interface{}, key string) []map[string]interface{} {
	raw, _ := payload[key].([]interface{})
	items := make([]map[string]interface{}, 0, len(raw))
	for _, entry := range raw {
		if m, ok := entry.(map[string]interface{}); ok {
			items = append(items, m)
		}
	}
	return items
}

// mapList walks nested keys and extracts the final list of objects.
func mapList(payload map[string]interface{}, keys ...string) []map[string]interface{} {
	current := payload
	for i, key := range keys {
		if i == len(keys)-1 {
			return itemList(current, key)
		}
		next, ok := current[key].(map[string]interface{})
		if !ok {
			return nil
		}
		current = next
	}
	return nil
}

// safeString walks nested keys, resolving any miss to an empty string.
func safeString(payload map[string]interface{}, keys ...string) string {
	current := payload
	for i, key := range keys {
		if i == len(keys)-1 {
			switch v := current[key].(type) {
			case string:
				return v
			case float64:
				return fmt.Sprintf("%v", v)
			default:
				return ""
			}
		}
		next, ok := current[key].(map[string]interface{})
		if !ok {
			return ""
		}
		current = next
	}
	return ""
}

func safeStrings(payload map[string]interface{}, keys ...string) []string {
	current := payload
	for i, key := range keys {
		if i == len(keys)-1 {
			raw, _ := current[key].([]interface{})
			out := make([]string, 0, len(raw))
			for _, entry := range raw {
				if v, ok := entry.(string); ok {
					out = append(out, v)
				}
			}
			return out
		}
		next, ok := current[key].(map[string]interface{})
		if !ok {
			return nil
		}
		current = next
	}
	return nil
}

func numericID(v interface{}) (int, bool) {
	switch id := v.(type) {
	case float64:
		return int(id), true
	case int:
		return id, true
	default:
		return 0, false
	}
}

func joinNonEmpty(sep string, parts ...string) string {
	var kept []string
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
