package shots

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/openrange/backend/internal/models"
)

const shotColumns = `id, shot_token, client_id, job_id, surface, ball_speed, vla, hla, back_spin, side_spin,
	altitude, temperature, units, carry, total, lateral, apex, flight_time, settle_time,
	bounces, fail_safe, timed_out, trajectory, events, created_at`

// Save inserts a simulated shot and returns its row ID.
func Save(ctx context.Context, db sqlx.ExtContext, token string, clientID, jobID sql.NullInt64, plan Plan, out Outcome) (int, error) {
	trajectory, err := json.Marshal(out.Result.Trajectory)
	if err != nil {
		return 0, fmt.Errorf("encode trajectory: %w", err)
	}
	events, err := json.Marshal(out.Result.Events)
	if err != nil {
		return 0, fmt.Errorf("encode events: %w", err)
	}

	res := out.Result
	var id int
	err = sqlx.GetContext(ctx, db, &id, `
		INSERT INTO shots (shot_token, client_id, job_id, surface, ball_speed, vla, hla, back_spin, side_spin,
			altitude, temperature, units, carry, total, lateral, apex, flight_time, settle_time,
			bounces, fail_safe, timed_out, trajectory, events, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, NOW())
		RETURNING id
	`, token, clientID, jobID, string(plan.Surface), plan.Shot.SpeedMPS(), plan.Shot.VLA, plan.Shot.HLA,
		out.Spin.Back, out.Spin.Side, plan.Environment.Altitude, plan.Environment.Temperature, string(plan.Environment.Units),
		res.Carry, res.Total, res.Lateral, res.Apex, res.FlightTime, res.SettleTime,
		res.Bounces, res.FailSafe, res.TimedOut, string(trajectory), string(events))
	if err != nil {
		return 0, fmt.Errorf("insert shot: %w", err)
	}
	return id, nil
}

// Get loads a shot by token.
func Get(ctx context.Context, db *sqlx.DB, token string) (*models.Shot, error) {
	var s models.Shot
	err := db.GetContext(ctx, &s, `SELECT `+shotColumns+` FROM shots WHERE shot_token=$1`, token)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// List returns recent shots without trajectory or events, newest first.
func List(ctx context.Context, db *sqlx.DB, limit, offset int) ([]models.Shot, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	shots := []models.Shot{}
	err := db.SelectContext(ctx, &shots, `
		SELECT id, shot_token, client_id, job_id, surface, ball_speed, vla, hla, back_spin, side_spin,
			altitude, temperature, units, carry, total, lateral, apex, flight_time, settle_time,
			bounces, fail_safe, timed_out, created_at
		FROM shots
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	return shots, err
}
