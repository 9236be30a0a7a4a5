package api

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/openrange/backend/internal/admin"
	"github.com/openrange/backend/internal/api/handlers"
	"github.com/openrange/backend/internal/config"
	"github.com/openrange/backend/internal/middleware"
	"github.com/openrange/backend/internal/shots"
	"github.com/openrange/backend/internal/ws"
)

// SetupRoutes configures all API routes. db and rdb may be nil; routes that
// need persistence then answer 503.
func SetupRoutes(router *gin.Engine, db *sqlx.DB, rdb *redis.Client, cfg *config.Config, svc *shots.Service, hub *ws.Hub) {
	router.Use(middleware.CORSMiddleware(cfg))

	if cfg.Environment != "production" {
		router.Use(func(c *gin.Context) {
			c.Header("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
			c.Next()
		})
		log.Println("[DEV MODE] no-cache headers enabled for all routes")
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.HealthCheck(db, rdb, hub))
		v1.POST("/auth/token", handlers.IssueToken(db, cfg))

		v1.GET("/surfaces", handlers.ListSurfaces)
		v1.GET("/conditions", handlers.GetConditions(cfg))

		shotRoutes := v1.Group("/shots", middleware.AuthMiddleware(cfg, admin.ScopeShots))
		{
			shotRoutes.POST("", handlers.SimulateShot(svc))
			shotRoutes.POST("/batch", handlers.SimulateBatch(svc, cfg))
			shotRoutes.GET("", handlers.ListShots(db))
			shotRoutes.GET("/:token", handlers.GetShot(db))
		}

		jobs := v1.Group("/jobs", middleware.AuthMiddleware(cfg, admin.ScopeJobs))
		{
			jobs.POST("", handlers.CreateJob(db, cfg))
			jobs.GET("/:token", handlers.GetJob(db))
		}

		adminRoutes := v1.Group("/admin", middleware.AuthMiddleware(cfg, admin.ScopeAdmin))
		{
			adminRoutes.GET("/config", handlers.GetAdminRuntimeConfig(db))
			adminRoutes.PUT("/config/:key", handlers.UpdateAdminRuntimeConfig(db, cfg))
		}

		stream := v1.Group("/ws", middleware.WebSocketCORSCheck(cfg))
		{
			stream.GET("/feed", ws.HandleFeed(hub))
			stream.GET("/stream", ws.HandleStream(hub, svc))
		}
	}
}
