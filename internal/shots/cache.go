package shots

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	resultKeyPrefix = "shot:result:"
	// EventsChannel carries a compact ShotEvent for every simulated shot.
	EventsChannel = "shot_events"
)

// CacheKey derives the result cache key from everything that affects a run.
func CacheKey(p Plan) (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return resultKeyPrefix + hex.EncodeToString(sum[:]), nil
}

// LoadCached returns a cached outcome for key. A nil client or a miss
// returns ok=false with no error.
func LoadCached(ctx context.Context, rdb *redis.Client, key string) (Outcome, bool, error) {
	if rdb == nil {
		return Outcome{}, false, nil
	}
	data, err := rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Outcome{}, false, nil
	}
	if err != nil {
		return Outcome{}, false, err
	}
	var out Outcome
	if err := json.Unmarshal(data, &out); err != nil {
		return Outcome{}, false, fmt.Errorf("decode cached result: %w", err)
	}
	return out, true, nil
}

// StoreCached saves an outcome under key for ttl.
func StoreCached(ctx context.Context, rdb *redis.Client, key string, out Outcome, ttl time.Duration) error {
	if rdb == nil || ttl <= 0 {
		return nil
	}
	out.ShotToken = ""
	out.Cached = false
	data, err := json.Marshal(out)
	if err != nil {
		return err
	}
	return rdb.SetEx(ctx, key, data, ttl).Err()
}

// ShotEvent is the message published on EventsChannel.
type ShotEvent struct {
	Type      string  `json:"type"`
	ShotToken string  `json:"shot_token"`
	Source    string  `json:"source"`
	Surface   string  `json:"surface"`
	Carry     float64 `json:"carry"`
	Total     float64 `json:"total"`
	Lateral   float64 `json:"lateral"`
	Apex      float64 `json:"apex"`
	Unit      string  `json:"unit"`
	Timestamp int64   `json:"timestamp"`
}

// Publish broadcasts a shot summary to subscribers of EventsChannel.
func Publish(ctx context.Context, rdb *redis.Client, token, source string, out Outcome) error {
	if rdb == nil {
		return nil
	}
	evt := ShotEvent{
		Type:      "shot_completed",
		ShotToken: token,
		Source:    source,
		Surface:   string(out.Surface),
		Carry:     out.Summary.Carry,
		Total:     out.Summary.Total,
		Lateral:   out.Summary.Lateral,
		Apex:      out.Summary.Apex,
		Unit:      string(out.Summary.Unit),
		Timestamp: time.Now().Unix(),
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return rdb.Publish(ctx, EventsChannel, data).Err()
}
