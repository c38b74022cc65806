package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"storefront-service/internal/catalog"
)

var (
	healthDB   *gorm.DB
	healthSync *catalog.SyncStore
)

// SetHealthDependencies wires the connections the readiness probe inspects.
func SetHealthDependencies(db *gorm.DB, sync *catalog.SyncStore) {
	healthDB = db
	healthSync = sync
}

// HealthCheck provides a health check endpoint
// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} gin.H
// @Router /health [get]
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "storefront-service",
		"version":   "1.0.0",
		"timestamp": time.Now().UTC(),
	})
}

// ReadinessCheck provides a readiness check endpoint
// @Summary Readiness check
// @Description Check if the service is ready to handle requests
// @Tags health
// @Produce json
// @Success 200 {object} gin.H
// @Failure 503 {object} gin.H
// @Router /ready [get]
func ReadinessCheck(c *gin.Context) {
	if healthDB != nil {
		sqlDB, err := healthDB.DB()
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"service":   "storefront-service",
				"version":   "1.0.0",
				"timestamp": time.Now().UTC(),
				"error":     "failed to get database connection",
			})
			return
		}
		if err := sqlDB.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"service":   "storefront-service",
				"version":   "1.0.0",
				"timestamp": time.Now().UTC(),
				"error":     "database connection failed",
			})
			return
		}
	}

	catalogState := "syncing"
	if healthSync != nil {
		if healthSync.Loaded() {
			catalogState = "loaded"
		}
		if !healthSync.Healthy() {
			catalogState = "stale"
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "ready",
		"service":   "storefront-service",
		"version":   "1.0.0",
		"timestamp": time.Now().UTC(),
		"catalog":   catalogState,
	})
}
