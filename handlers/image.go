package handlers

import (
	"io"
	"net/http"

	"toloka2web/apperr"
	"toloka2web/clients"

	"github.com/gin-gonic/gin"
)

var imageClient = clients.NewImageClient()

// ProxyImage fetches an external image and streams it back so the frontend
// can render posters from hosts without CORS headers.
func ProxyImage(c *gin.Context) {
	url := c.Query("url")
	if url == "" {
		fail(c, apperr.Validation("url is required"))
		return
	}

	body, contentType, err := imageClient.Fetch(url)
	if err != nil {
		fail(c, err)
		return
	}
	defer body.Close()

	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	io.Copy(c.Writer, body)
}
