package handlers

import (
	"context"
	"net/http"
	"time"

	"toloka2web/database"
	"toloka2web/service"
	"toloka2web/version"

	"github.com/gin-gonic/gin"
)

// HealthCheck health endpoint
func HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	dbHealthy := database.SQLiteUp(ctx)

	health := gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
		"version":   version.Version,
		"db":        dbHealthy,
		"catalog":   service.GlobalServices.Catalog.Available(),
		"sqlite": gin.H{
			"busy_errors":   database.SQLiteBusyErrorsTotal(),
			"locked_errors": database.SQLiteLockedErrorsTotal(),
		},
	}

	if !dbHealthy {
		health["status"] = "degraded"
		c.JSON(http.StatusServiceUnavailable, health)
		return
	}

	c.JSON(http.StatusOK, health)
}
