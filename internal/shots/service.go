package shots

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/openrange/backend/internal/config"
	"github.com/openrange/backend/internal/metrics"
)

// Sources recorded with each shot.
const (
	SourceAPI    = "api"
	SourceBatch  = "batch"
	SourceStream = "stream"
)

// Service runs shots and records them. DB and RDB may be nil, in which case
// persistence and caching are skipped.
type Service struct {
	DB  *sqlx.DB
	RDB *redis.Client
	Cfg *config.Config
}

// NewService creates a shot service.
func NewService(db *sqlx.DB, rdb *redis.Client, cfg *config.Config) *Service {
	return &Service{DB: db, RDB: rdb, Cfg: cfg}
}

// Simulate resolves, runs and records a single request.
func (s *Service) Simulate(ctx context.Context, req Request, clientID sql.NullInt64, source string) (Outcome, error) {
	plan, err := req.Resolve(s.Cfg.Conditions())
	if err != nil {
		return Outcome{}, err
	}
	out, err := s.run(ctx, plan, source)
	if err != nil {
		return Outcome{}, err
	}

	token := NewToken("s")
	out.ShotToken = token
	if s.DB != nil {
		if _, err := Save(ctx, s.DB, token, clientID, sql.NullInt64{}, plan, out); err != nil {
			log.Printf("[SHOTS] Failed to save shot %s: %v", token, err)
		}
	}
	if err := Publish(ctx, s.RDB, token, source, out); err != nil {
		log.Printf("[SHOTS] Failed to publish shot %s: %v", token, err)
	}

	if !req.Trajectory {
		out = out.WithoutTrajectory()
	}
	return out, nil
}

// run executes plan, consulting the result cache first.
func (s *Service) run(ctx context.Context, plan Plan, source string) (Outcome, error) {
	key, keyErr := CacheKey(plan)
	if keyErr == nil {
		cached, ok, err := LoadCached(ctx, s.RDB, key)
		if err != nil {
			log.Printf("[SHOTS] Cache lookup failed: %v", err)
		}
		if ok {
			metrics.CacheHit()
			cached.Cached = true
			return cached, nil
		}
	}

	out, elapsed, err := plan.Execute()
	if err != nil {
		return Outcome{}, err
	}
	metrics.ObserveShot(string(plan.Surface), source, out.Result, elapsed.Seconds())
	if out.Result.FailSafe {
		log.Printf("[SHOTS] Fail-safe tripped for %s shot at %.1f m/s", plan.Surface, plan.Shot.SpeedMPS())
	}

	if keyErr == nil {
		ttl := time.Duration(s.Cfg.ResultCacheTTL) * time.Minute
		if err := StoreCached(ctx, s.RDB, key, out, ttl); err != nil {
			log.Printf("[SHOTS] Cache store failed: %v", err)
		}
	}
	return out, nil
}

// RunJobShot runs one request of a batch job and saves it against jobID.
func (s *Service) RunJobShot(ctx context.Context, req Request, clientID sql.NullInt64, jobID int) JobResult {
	plan, err := req.Resolve(s.Cfg.Conditions())
	if err != nil {
		return JobResult{Error: err.Error()}
	}
	out, err := s.run(ctx, plan, SourceBatch)
	if err != nil {
		return JobResult{Error: err.Error()}
	}
	token := NewToken("s")
	if s.DB != nil {
		job := sql.NullInt64{Int64: int64(jobID), Valid: jobID > 0}
		if _, err := Save(ctx, s.DB, token, clientID, job, plan, out); err != nil {
			return JobResult{Error: err.Error()}
		}
	}
	return JobResult{ShotToken: token, Summary: Digest(out)}
}
