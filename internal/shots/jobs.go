package shots

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/openrange/backend/internal/models"
)

// ErrNoJob is returned by ClaimJob when nothing is queued.
var ErrNoJob = errors.New("no queued job")

// JobPayload is the body of a batch job.
type JobPayload struct {
	Requests []Request `json:"requests"`
}

// JobResult is the outcome of one request in a batch.
type JobResult struct {
	Index     int            `json:"index"`
	ShotToken string         `json:"shot_token,omitempty"`
	Summary   *OutcomeDigest `json:"summary,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// OutcomeDigest is the per-shot summary kept in a job's results.
type OutcomeDigest struct {
	Unit       string  `json:"unit"`
	Carry      float64 `json:"carry"`
	Total      float64 `json:"total"`
	Lateral    float64 `json:"lateral"`
	Apex       float64 `json:"apex"`
	SettleTime float64 `json:"settle_time"`
	TimedOut   bool    `json:"timed_out"`
}

// Digest condenses an outcome for job results.
func Digest(o Outcome) *OutcomeDigest {
	return &OutcomeDigest{
		Unit:       string(o.Summary.Unit),
		Carry:      o.Summary.Carry,
		Total:      o.Summary.Total,
		Lateral:    o.Summary.Lateral,
		Apex:       o.Summary.Apex,
		SettleTime: o.Result.SettleTime,
		TimedOut:   o.Result.TimedOut,
	}
}

// EnqueueJob stores a batch for the job worker and returns its token.
func EnqueueJob(ctx context.Context, db *sqlx.DB, clientID sql.NullInt64, payload JobPayload) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	token := NewToken("j")
	_, err = db.ExecContext(ctx, `
		INSERT INTO shot_jobs (job_token, client_id, status, payload, shot_count, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`, token, clientID, models.JobQueued, string(data), len(payload.Requests))
	if err != nil {
		return "", fmt.Errorf("insert job: %w", err)
	}
	return token, nil
}

// GetJob loads a job by token.
func GetJob(ctx context.Context, db *sqlx.DB, token string) (*models.ShotJob, error) {
	var job models.ShotJob
	err := db.GetContext(ctx, &job, `
		SELECT id, job_token, client_id, status, payload, results, shot_count, attempts, error,
		       created_at, started_at, completed_at
		FROM shot_jobs WHERE job_token=$1
	`, token)
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// ClaimJob moves the oldest queued job to processing. FOR UPDATE SKIP LOCKED
// lets several workers claim concurrently without blocking each other.
func ClaimJob(ctx context.Context, db *sqlx.DB) (*models.ShotJob, error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var job models.ShotJob
	err = tx.GetContext(ctx, &job, `
		SELECT id, job_token, client_id, status, payload, results, shot_count, attempts, error,
		       created_at, started_at, completed_at
		FROM shot_jobs
		WHERE status = $1
		ORDER BY created_at
		FOR UPDATE SKIP LOCKED
		LIMIT 1
	`, models.JobQueued)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoJob
	}
	if err != nil {
		return nil, fmt.Errorf("select queued job: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE shot_jobs SET status=$1, started_at=NOW(), attempts=attempts+1 WHERE id=$2
	`, models.JobProcessing, job.ID)
	if err != nil {
		return nil, fmt.Errorf("mark processing: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	job.Status = models.JobProcessing
	job.Attempts++
	return &job, nil
}

// CompleteJob stores the results of a processed job.
func CompleteJob(ctx context.Context, db *sqlx.DB, jobID int, results []JobResult) error {
	data, err := json.Marshal(results)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `
		UPDATE shot_jobs SET status=$1, results=$2, error=NULL, completed_at=NOW() WHERE id=$3
	`, models.JobCompleted, string(data), jobID)
	return err
}

// FailJob marks a job failed, or back to queued while attempts remain.
func FailJob(ctx context.Context, db *sqlx.DB, job *models.ShotJob, cause error, maxAttempts int) (string, error) {
	status := models.JobFailed
	if job.Attempts < maxAttempts {
		status = models.JobQueued
	}
	_, err := db.ExecContext(ctx, `
		UPDATE shot_jobs SET status=$1, error=$2, completed_at=CASE WHEN $1='failed' THEN NOW() ELSE NULL END
		WHERE id=$3
	`, status, cause.Error(), job.ID)
	return status, err
}

// RequeueStuckJobs returns jobs that have been processing longer than
// visibility to the queue, e.g. after a worker crash.
func RequeueStuckJobs(ctx context.Context, db *sqlx.DB, visibility time.Duration) (int, error) {
	res, err := db.ExecContext(ctx, `
		UPDATE shot_jobs SET status=$1
		WHERE status=$2 AND started_at < NOW() - make_interval(secs => $3)
	`, models.JobQueued, models.JobProcessing, visibility.Seconds())
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}
