package admin

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/openrange/backend/internal/config"
	"github.com/openrange/backend/internal/models"
	"github.com/openrange/backend/internal/physics"
)

// GetAllRuntimeConfig returns all runtime config entries
func GetAllRuntimeConfig(db *sqlx.DB) ([]models.RuntimeConfig, error) {
	configs := []models.RuntimeConfig{}
	err := db.Select(&configs, `
		SELECT key, value, value_type, description, updated_by, updated_at
		FROM runtime_config
		ORDER BY key
	`)
	return configs, err
}

// GetRuntimeConfigValue returns a single runtime config value
func GetRuntimeConfigValue(db *sqlx.DB, key string) (*models.RuntimeConfig, error) {
	var cfg models.RuntimeConfig
	err := db.Get(&cfg, `SELECT key, value, value_type, description, updated_by, updated_at FROM runtime_config WHERE key=$1`, key)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// UpdateRuntimeConfigValue validates and stores a single runtime config value
func UpdateRuntimeConfigValue(db *sqlx.DB, key, value, updatedBy string) error {
	existing, err := GetRuntimeConfigValue(db, key)
	if err != nil {
		return fmt.Errorf("config key not found: %s: %w", key, err)
	}
	if err := ValidateValue(key, existing.ValueType, value); err != nil {
		return err
	}

	_, err = db.Exec(`
		UPDATE runtime_config SET value=$1, updated_by=$2, updated_at=NOW() WHERE key=$3
	`, value, updatedBy, key)
	return err
}

// ValidateValue checks value against its declared type and, for known keys,
// the range the simulator accepts.
func ValidateValue(key, valueType, value string) error {
	switch valueType {
	case "int":
		if _, err := strconv.Atoi(value); err != nil {
			return fmt.Errorf("invalid integer value: %s", value)
		}
	case "float":
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			return fmt.Errorf("invalid float value: %s", value)
		}
	case "bool":
		if value != "true" && value != "false" {
			return fmt.Errorf("invalid boolean value: %s (must be 'true' or 'false')", value)
		}
	}

	switch key {
	case "default_surface":
		if !knownSurface(value) {
			return fmt.Errorf("unknown surface: %s", value)
		}
	case "env_units":
		if v := strings.ToLower(value); v != "imperial" && v != "metric" {
			return fmt.Errorf("unknown units: %s (must be 'imperial' or 'metric')", value)
		}
	case "drag_scale", "lift_scale", "rest_speed", "max_sim_seconds":
		if f, _ := strconv.ParseFloat(value, 64); f <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}

// ApplyRuntimeConfigToConfig loads runtime config from DB and applies overrides to the Config struct
func ApplyRuntimeConfigToConfig(db *sqlx.DB, cfg *config.Config) error {
	configs, err := GetAllRuntimeConfig(db)
	if err != nil {
		return err
	}
	n := ApplyOverrides(cfg, configs)
	log.Printf("[CONFIG] Applied %d runtime config overrides from database", n)
	return nil
}

// ApplyOverrides copies recognised entries onto cfg and returns how many
// were applied. Malformed values are skipped.
func ApplyOverrides(cfg *config.Config, entries []models.RuntimeConfig) int {
	applied := 0
	cfg.Update(func(c *config.Config) {
		for _, e := range entries {
			if ValidateValue(e.Key, e.ValueType, e.Value) != nil {
				log.Printf("[CONFIG] Skipping invalid runtime value %s=%q", e.Key, e.Value)
				continue
			}
			ok := true
			switch e.Key {
			case "altitude":
				c.Altitude, _ = strconv.ParseFloat(e.Value, 64)
			case "temperature":
				c.Temperature, _ = strconv.ParseFloat(e.Value, 64)
			case "env_units":
				c.EnvUnits = strings.ToLower(e.Value)
			case "default_surface":
				c.DefaultSurface = strings.ToLower(e.Value)
			case "drag_scale":
				c.DragScale, _ = strconv.ParseFloat(e.Value, 64)
			case "lift_scale":
				c.LiftScale, _ = strconv.ParseFloat(e.Value, 64)
			case "spin_memory":
				c.SpinMemory = e.Value == "true"
			case "rest_speed":
				c.RestSpeed, _ = strconv.ParseFloat(e.Value, 64)
			case "max_sim_seconds":
				c.MaxSimSeconds, _ = strconv.ParseFloat(e.Value, 64)
			default:
				ok = false
			}
			if ok {
				applied++
			}
		}
	})
	return applied
}

func knownSurface(name string) bool {
	for _, s := range physics.Surfaces() {
		if string(s) == strings.ToLower(name) {
			return true
		}
	}
	return false
}
