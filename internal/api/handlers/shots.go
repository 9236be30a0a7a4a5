package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/openrange/backend/internal/batch"
	"github.com/openrange/backend/internal/config"
	"github.com/openrange/backend/internal/launch"
	"github.com/openrange/backend/internal/physics"
	"github.com/openrange/backend/internal/shots"
)

// batchRequest is the body of POST /shots/batch.
type batchRequest struct {
	Requests []shots.Request `json:"requests"`
}

// SimulateShot runs one shot synchronously.
func SimulateShot(svc *shots.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req shots.Request
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid shot: " + err.Error()})
			return
		}

		out, err := svc.Simulate(c.Request.Context(), req, clientID(c), shots.SourceAPI)
		if err != nil {
			writeShotError(c, err)
			return
		}

		c.Header("X-Shot-Token", out.ShotToken)
		if out.Cached {
			c.Header("X-Cache", "HIT")
		}
		c.JSON(http.StatusOK, out)
	}
}

// SimulateBatch runs up to MaxShotsPerRequest shots in parallel and returns
// their outcomes in request order. Larger batches belong in /jobs.
func SimulateBatch(svc *shots.Service, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req batchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid batch: " + err.Error()})
			return
		}
		if len(req.Requests) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "requests must not be empty"})
			return
		}
		if len(req.Requests) > cfg.MaxShotsPerRequest {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{
				"error": fmt.Sprintf("at most %d shots per request; submit a job instead", cfg.MaxShotsPerRequest),
			})
			return
		}

		client := clientID(c)
		type item struct {
			Outcome *shots.Outcome `json:"outcome,omitempty"`
			Error   string         `json:"error,omitempty"`
		}
		items, err := batch.Run(c.Request.Context(), req.Requests, cfg.BatchWorkers, func(ctx context.Context, _ int, r shots.Request) item {
			out, err := svc.Simulate(ctx, r, client, shots.SourceAPI)
			if err != nil {
				return item{Error: err.Error()}
			}
			return item{Outcome: &out}
		})
		if err != nil {
			c.JSON(http.StatusRequestTimeout, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"results": items})
	}
}

func writeShotError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, launch.ErrEmptyShot), errors.Is(err, launch.ErrInvalidShot), errors.Is(err, physics.ErrInvalidParams):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		log.Printf("[SHOTS] Simulation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "simulation failed"})
	}
}

// GetShot returns a stored shot with its trajectory.
func GetShot(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireDB(c, db) {
			return
		}
		s, err := shots.Get(c.Request.Context(), db, c.Param("token"))
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "shot not found"})
			return
		}
		if err != nil {
			log.Printf("[SHOTS] Failed to load shot: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		c.JSON(http.StatusOK, s)
	}
}

// ListShots returns recent shots without trajectories.
func ListShots(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireDB(c, db) {
			return
		}
		list, err := shots.List(c.Request.Context(), db, queryInt(c, "limit", 50), queryInt(c, "offset", 0))
		if err != nil {
			log.Printf("[SHOTS] Failed to list shots: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"shots": list})
	}
}

// CreateJob queues a batch for the background worker.
func CreateJob(db *sqlx.DB, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireDB(c, db) {
			return
		}
		var payload shots.JobPayload
		if err := c.ShouldBindJSON(&payload); err != nil || len(payload.Requests) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "requests required"})
			return
		}
		token, err := shots.EnqueueJob(c.Request.Context(), db, clientID(c), payload)
		if err != nil {
			log.Printf("[JOBS] Failed to enqueue job: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		log.Printf("[JOBS] Queued job %s (%d shots)", token, len(payload.Requests))
		c.JSON(http.StatusAccepted, gin.H{"job_token": token, "status": "queued", "shot_count": len(payload.Requests)})
	}
}

// GetJob returns a job's status and, once completed, its results.
func GetJob(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireDB(c, db) {
			return
		}
		job, err := shots.GetJob(c.Request.Context(), db, c.Param("token"))
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
			return
		}
		if err != nil {
			log.Printf("[JOBS] Failed to load job: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		resp := gin.H{
			"job_token":  job.JobToken,
			"status":     job.Status,
			"shot_count": job.ShotCount,
			"attempts":   job.Attempts,
			"created_at": job.CreatedAt,
		}
		if job.Error.Valid {
			resp["error"] = job.Error.String
		}
		if len(job.Results) > 0 {
			resp["results"] = json.RawMessage(job.Results)
		}
		c.JSON(http.StatusOK, resp)
	}
}
