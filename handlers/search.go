package handlers

import (
	"toloka2web/apperr"
	"toloka2web/service"

	"github.com/gin-gonic/gin"
)

// MultiSearch runs the aggregated search across all backends.
func MultiSearch(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		fail(c, apperr.Validation("query is required"))
		return
	}
	ok(c, service.GlobalServices.Search.MultiSearch(query))
}
