package models

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/lib/pq"
)

// Shot is a simulated launch and its outcome. Distances are metres.
type Shot struct {
	ID          int             `db:"id" json:"id"`
	ShotToken   string          `db:"shot_token" json:"shot_token"`
	ClientID    sql.NullInt64   `db:"client_id" json:"client_id,omitempty"`
	JobID       sql.NullInt64   `db:"job_id" json:"job_id,omitempty"`
	Surface     string          `db:"surface" json:"surface"`
	BallSpeed   float64         `db:"ball_speed" json:"ball_speed"` // m/s
	VLA         float64         `db:"vla" json:"vla"`
	HLA         float64         `db:"hla" json:"hla"`
	BackSpin    float64         `db:"back_spin" json:"back_spin"`
	SideSpin    float64         `db:"side_spin" json:"side_spin"`
	Altitude    float64         `db:"altitude" json:"altitude"`
	Temperature float64         `db:"temperature" json:"temperature"`
	Units       string          `db:"units" json:"units"`
	Carry       float64         `db:"carry" json:"carry"`
	Total       float64         `db:"total" json:"total"`
	Lateral     float64         `db:"lateral" json:"lateral"`
	Apex        float64         `db:"apex" json:"apex"`
	FlightTime  float64         `db:"flight_time" json:"flight_time"`
	SettleTime  float64         `db:"settle_time" json:"settle_time"`
	Bounces     int             `db:"bounces" json:"bounces"`
	FailSafe    bool            `db:"fail_safe" json:"fail_safe"`
	TimedOut    bool            `db:"timed_out" json:"timed_out"`
	Trajectory  json.RawMessage `db:"trajectory" json:"trajectory,omitempty"`
	Events      json.RawMessage `db:"events" json:"events,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}

// ShotJob is a queued batch of shots processed by the job worker.
type ShotJob struct {
	ID          int             `db:"id" json:"id"`
	JobToken    string          `db:"job_token" json:"job_token"`
	ClientID    sql.NullInt64   `db:"client_id" json:"client_id,omitempty"`
	Status      string          `db:"status" json:"status"`
	Payload     json.RawMessage `db:"payload" json:"payload"`
	Results     json.RawMessage `db:"results" json:"results,omitempty"`
	ShotCount   int             `db:"shot_count" json:"shot_count"`
	Attempts    int             `db:"attempts" json:"attempts"`
	Error       sql.NullString  `db:"error" json:"error,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	StartedAt   sql.NullTime    `db:"started_at" json:"started_at,omitempty"`
	CompletedAt sql.NullTime    `db:"completed_at" json:"completed_at,omitempty"`
}

// Job statuses.
const (
	JobQueued     = "queued"
	JobProcessing = "processing"
	JobCompleted  = "completed"
	JobFailed     = "failed"
)

// RuntimeConfig is a typed key/value override applied over the environment config.
type RuntimeConfig struct {
	Key         string         `db:"key" json:"key"`
	Value       string         `db:"value" json:"value"`
	ValueType   string         `db:"value_type" json:"value_type"`
	Description sql.NullString `db:"description" json:"description,omitempty"`
	UpdatedBy   sql.NullString `db:"updated_by" json:"updated_by,omitempty"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

// APIClient is a launch monitor or integration allowed to submit shots.
type APIClient struct {
	ID         int            `db:"id" json:"id"`
	Name       string         `db:"name" json:"name"`
	KeyHash    string         `db:"key_hash" json:"-"`
	Scopes     pq.StringArray `db:"scopes" json:"scopes"`
	IsActive   bool           `db:"is_active" json:"is_active"`
	CreatedAt  time.Time      `db:"created_at" json:"created_at"`
	LastUsedAt sql.NullTime   `db:"last_used_at" json:"last_used_at,omitempty"`
}
