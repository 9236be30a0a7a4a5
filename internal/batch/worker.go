package batch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/openrange/backend/internal/config"
	"github.com/openrange/backend/internal/metrics"
	"github.com/openrange/backend/internal/models"
	"github.com/openrange/backend/internal/shots"
)

// StartJobWorker polls the job table and runs queued batches until ctx ends.
func StartJobWorker(ctx context.Context, db *sqlx.DB, svc *shots.Service, cfg *config.Config) {
	if db == nil || svc == nil || cfg == nil {
		log.Println("[JOBS] Database or service missing; job worker not started")
		return
	}

	interval := time.Duration(cfg.JobPollSeconds) * time.Second
	if interval <= 0 {
		interval = 2 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Printf("[JOBS] Starting job worker (poll every %v, %d workers)", interval, cfg.BatchWorkers)

	for {
		select {
		case <-ctx.Done():
			log.Printf("[JOBS] Worker stopped")
			return
		case <-ticker.C:
			drainQueue(ctx, db, svc, cfg)
		}
	}
}

func drainQueue(ctx context.Context, db *sqlx.DB, svc *shots.Service, cfg *config.Config) {
	for ctx.Err() == nil {
		job, err := shots.ClaimJob(ctx, db)
		if errors.Is(err, shots.ErrNoJob) {
			return
		}
		if err != nil {
			log.Printf("[JOBS] Failed to claim job: %v", err)
			return
		}
		processJob(ctx, db, svc, cfg, job)
	}
}

func processJob(ctx context.Context, db *sqlx.DB, svc *shots.Service, cfg *config.Config, job *models.ShotJob) {
	log.Printf("[JOBS] Processing job %s (%d shots, attempt %d)", job.JobToken, job.ShotCount, job.Attempts)

	results, err := RunJob(ctx, svc, job, cfg.BatchWorkers)
	if err != nil {
		status, ferr := shots.FailJob(context.Background(), db, job, err, cfg.JobMaxAttempts)
		if ferr != nil {
			log.Printf("[JOBS] Failed to record failure of job %s: %v", job.JobToken, ferr)
		}
		log.Printf("[JOBS] Job %s failed (%v), now %s", job.JobToken, err, status)
		metrics.JobFinished(status)
		return
	}

	if err := shots.CompleteJob(ctx, db, job.ID, results); err != nil {
		log.Printf("[JOBS] Failed to complete job %s: %v", job.JobToken, err)
		return
	}
	metrics.JobFinished(models.JobCompleted)
	log.Printf("[JOBS] ✓ Job %s completed", job.JobToken)
}

// RunJob decodes a job payload and simulates every request in it.
func RunJob(ctx context.Context, svc *shots.Service, job *models.ShotJob, workers int) ([]shots.JobResult, error) {
	var payload shots.JobPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}

	results, err := Run(ctx, payload.Requests, workers, func(ctx context.Context, i int, req shots.Request) shots.JobResult {
		r := svc.RunJobShot(ctx, req, job.ClientID, job.ID)
		r.Index = i
		return r
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// StartRecoveryChecker periodically requeues jobs stuck in processing.
func StartRecoveryChecker(ctx context.Context, db *sqlx.DB, cfg *config.Config) {
	if db == nil || cfg == nil {
		return
	}
	visibility := time.Duration(cfg.JobStuckSeconds) * time.Second
	if visibility <= 0 {
		visibility = 2 * time.Minute
	}

	go func() {
		ticker := time.NewTicker(visibility / 2)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n, err := shots.RequeueStuckJobs(ctx, db, visibility); err != nil {
					log.Printf("[RECOVER] Error requeueing stuck jobs: %v", err)
				} else if n > 0 {
					log.Printf("[RECOVER] Requeued %d stuck jobs", n)
				}
			}
		}
	}()
}
