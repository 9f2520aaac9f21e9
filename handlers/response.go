package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"toloka2web/apperr"

	"github.com/gin-gonic/gin"
)

// fail renders the error envelope {"error":{"code","message"}} with the
// status the typed error carries. Untyped errors become a 500 with a
// generic message so internals never leak to clients.
func fail(c *gin.Context, err error) {
	ae := apperr.From(err)
	c.JSON(ae.Status, gin.H{
		"error": gin.H{
			"code":    ae.Code,
			"message": ae.Message,
		},
	})
}

func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

func created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// bindJSON unmarshals an already-read request body.
func bindJSON(body []byte, out any) error {
	return json.Unmarshal(body, out)
}

// parseID parses a :id path parameter
func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		fail(c, apperr.Validation("invalid id"))
		return 0, false
	}
	return uint(id), true
}
