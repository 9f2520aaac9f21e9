package handlers

import (
	"toloka2web/service"

	"github.com/gin-gonic/gin"
)

// ListAnime lists catalog titles, optionally filtered by ?query=.
func ListAnime(c *gin.Context) {
	anime, err := service.GlobalServices.Catalog.SearchAnime(c.Query("query"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, anime)
}

// GetAnime fetches one catalog title
func GetAnime(c *gin.Context) {
	id, okID := parseID(c)
	if !okID {
		return
	}

	anime, err := service.GlobalServices.Catalog.AnimeByID(id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, anime)
}

// AnimeStudios lists the studios that dubbed a title.
func AnimeStudios(c *gin.Context) {
	id, okID := parseID(c)
	if !okID {
		return
	}

	studios, err := service.GlobalServices.Catalog.StudiosForAnime(id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, studios)
}

// ListStudios lists studios, optionally filtered by ?query=.
func ListStudios(c *gin.Context) {
	studios, err := service.GlobalServices.Catalog.SearchStudios(c.Query("query"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, studios)
}

// GetStudio fetches one studio
func GetStudio(c *gin.Context) {
	id, okID := parseID(c)
	if !okID {
		return
	}

	studio, err := service.GlobalServices.Catalog.StudioByID(id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, studio)
}

// StudioAnime lists the titles a studio has dubbed.
func StudioAnime(c *gin.Context) {
	id, okID := parseID(c)
	if !okID {
		return
	}

	anime, err := service.GlobalServices.Catalog.AnimeForStudio(id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, anime)
}
