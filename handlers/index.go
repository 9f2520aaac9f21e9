package handlers

import (
	"net/http"

	"toloka2web/version"

	"github.com/gin-gonic/gin"
)

// Index serves a minimal landing page for API-only deployments.
func Index(c *gin.Context) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(http.StatusOK,
		"<!DOCTYPE html><html><head><title>Toloka2Web</title></head>"+
			"<body><h1>Toloka2Web %s</h1><p>API is up. See <a href=\"/api/health\">/api/health</a>.</p></body></html>",
		version.Version)
}
