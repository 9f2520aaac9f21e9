package handlers

import (
	"strconv"

	"toloka2web/apperr"
	"toloka2web/clients"

	"github.com/gin-gonic/gin"
)

// Clients shared by the external-service handlers.
var (
	tolokaClient = clients.NewTolokaClient()
	streamClient = clients.NewStreamClient()
	malClient    = clients.NewMALClient()
	tmdbClient   = clients.NewTMDBClient()
)

// TolokaSearch searches the tracker.
func TolokaSearch(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		fail(c, apperr.Validation("query is required"))
		return
	}

	result, err := tolokaClient.SearchTorrents(query)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, result)
}

// TolokaDetail fetches one tracker record by release ID.
func TolokaDetail(c *gin.Context) {
	result, err := tolokaClient.TorrentDetail(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, result)
}

// TolokaAdd hands a torrent page URL to the downloader.
func TolokaAdd(c *gin.Context) {
	var req struct {
		TorrentURL string `json:"torrent_url" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Validation("torrent_url is required"))
		return
	}

	result, err := tolokaClient.AddTorrent(req.TorrentURL)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, result)
}

// StreamSearch searches the streaming-site aggregator.
func StreamSearch(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		fail(c, apperr.Validation("query is required"))
		return
	}

	result, err := streamClient.SearchTitles(query)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, result)
}

// StreamDetails fetches one streaming title's details.
func StreamDetails(c *gin.Context) {
	var req struct {
		Provider string `json:"provider" binding:"required"`
		Link     string `json:"link" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Validation("provider and link are required"))
		return
	}

	result, err := streamClient.TitleDetails(req.Provider, req.Link)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, result)
}

// StreamAdd registers a streaming title for tracking.
func StreamAdd(c *gin.Context) {
	var req struct {
		Provider string `json:"provider" binding:"required"`
		Link     string `json:"link" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Validation("provider and link are required"))
		return
	}

	result, err := streamClient.AddTitle(req.Provider, req.Link)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, result)
}

// MALSearch searches the anime-metadata service.
func MALSearch(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		fail(c, apperr.Validation("query is required"))
		return
	}

	result, err := malClient.SearchAnime(query)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, result)
}

// MALDetail fetches one anime record.
func MALDetail(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		fail(c, apperr.Validation("invalid id"))
		return
	}

	result, err := malClient.AnimeDetail(id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, result)
}

// TMDBSearch searches the media-metadata service.
func TMDBSearch(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		fail(c, apperr.Validation("query is required"))
		return
	}

	result, err := tmdbClient.SearchMulti(query)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, result)
}

// TMDBDetail fetches one media record, type taken from ?type= (default tv).
func TMDBDetail(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		fail(c, apperr.Validation("invalid id"))
		return
	}

	result, err := tmdbClient.MediaDetail(id, c.Query("type"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, result)
}

// TMDBTrending fetches today's trending list for ?type= (default all).
func TMDBTrending(c *gin.Context) {
	result, err := tmdbClient.Trending(c.Query("type"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, result)
}
