package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/openrange/backend/internal/database"
	rediscache "github.com/openrange/backend/internal/redis"
	"github.com/openrange/backend/internal/ws"
)

var startTime = time.Now()

const version = "1.0.0"

// HealthCheck returns server health status along with the number of clients
// subscribed to the shot feed.
func HealthCheck(db *sqlx.DB, rdb *redis.Client, hub *ws.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		status, code := "ok", http.StatusOK
		checks := gin.H{"database": "ok", "redis": "ok"}

		if err := database.Ping(c.Request.Context(), db); err != nil {
			checks["database"] = err.Error()
			status, code = "degraded", http.StatusServiceUnavailable
		}
		if err := rediscache.Ping(c.Request.Context(), rdb); err != nil {
			checks["redis"] = err.Error()
			status, code = "degraded", http.StatusServiceUnavailable
		}

		subscribers := 0
		if hub != nil {
			subscribers = hub.RoomSize(ws.FeedRoom)
		}

		c.JSON(code, gin.H{
			"status":           status,
			"service":          "openrange-api",
			"version":          version,
			"uptime":           time.Since(startTime).String(),
			"checks":           checks,
			"feed_subscribers": subscribers,
		})
	}
}
