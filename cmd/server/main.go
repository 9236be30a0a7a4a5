package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	goredis "github.com/redis/go-redis/v9"

	"github.com/openrange/backend/internal/admin"
	"github.com/openrange/backend/internal/api"
	"github.com/openrange/backend/internal/batch"
	"github.com/openrange/backend/internal/config"
	"github.com/openrange/backend/internal/database"
	"github.com/openrange/backend/internal/migrations"
	"github.com/openrange/backend/internal/redis"
	"github.com/openrange/backend/internal/shots"
	"github.com/openrange/backend/internal/ws"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Persistence is optional in development: without it shots are simulated
	// but not stored, and jobs are unavailable.
	var db *sqlx.DB
	if conn, err := database.Connect(cfg.DatabaseURL); err != nil {
		if cfg.Environment == "production" {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		log.Printf("[DB] Database unavailable, running without persistence: %v", err)
	} else {
		db = conn
		defer db.Close()
	}

	if db != nil && cfg.MigrateOnStart {
		log.Println("↗ Running DB migrations on startup...")
		if err := migrations.RunMigrations(cfg.DatabaseURL, migrations.DefaultDir); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	}

	if db != nil {
		if err := admin.ApplyRuntimeConfigToConfig(db, cfg); err != nil {
			log.Printf("[CONFIG] Runtime config not applied: %v", err)
		}
	}

	var rdb *goredis.Client
	if client, err := redis.Connect(cfg.RedisURL); err != nil {
		if cfg.Environment == "production" {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		log.Printf("[REDIS] Redis unavailable, caching and live feed disabled: %v", err)
	} else {
		rdb = client
		defer rdb.Close()
	}

	svc := shots.NewService(db, rdb, cfg)

	hub := ws.NewHub()
	go hub.Run()
	ws.StartShotEventSubscriber(ctx, rdb, hub)

	go batch.StartJobWorker(ctx, db, svc, cfg)
	batch.StartRecoveryChecker(ctx, db, cfg)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	api.SetupRoutes(router, db, rdb, cfg, svc, hub)

	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{Addr: ":" + port, Handler: router}
	go func() {
		log.Printf("Starting OpenRange server on port %s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown: %v", err)
	}
}
