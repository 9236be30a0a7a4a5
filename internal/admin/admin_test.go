package admin

import (
	"strings"
	"testing"

	"github.com/openrange/backend/internal/config"
	"github.com/openrange/backend/internal/models"
)

func TestValidateValue(t *testing.T) {
	tests := []struct {
		key, typ, value string
		ok              bool
	}{
		{"altitude", "float", "5280", true},
		{"altitude", "float", "high", false},
		{"spin_memory", "bool", "true", true},
		{"spin_memory", "bool", "yes", false},
		{"default_surface", "string", "rough", true},
		{"default_surface", "string", "Firm", true},
		{"default_surface", "string", "sand", false},
		{"env_units", "string", "metric", true},
		{"env_units", "string", "kelvin", false},
		{"drag_scale", "float", "0", false},
		{"max_sim_seconds", "float", "-1", false},
		{"max_sim_seconds", "float", "20", true},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			err := ValidateValue(tt.key, tt.typ, tt.value)
			if (err == nil) != tt.ok {
				t.Errorf("ValidateValue(%s, %s) = %v, want ok=%v", tt.key, tt.value, err, tt.ok)
			}
		})
	}
}

func TestApplyOverrides(t *testing.T) {
	cfg := &config.Config{DefaultSurface: "fairway", EnvUnits: "imperial", SpinMemory: true, DragScale: 1}
	entries := []models.RuntimeConfig{
		{Key: "altitude", Value: "5280", ValueType: "float"},
		{Key: "default_surface", Value: "Rough", ValueType: "string"},
		{Key: "spin_memory", Value: "false", ValueType: "bool"},
		{Key: "drag_scale", Value: "nope", ValueType: "float"},
		{Key: "unrelated", Value: "1", ValueType: "int"},
	}

	if n := ApplyOverrides(cfg, entries); n != 3 {
		t.Errorf("applied %d overrides, want 3", n)
	}
	cond := cfg.Conditions()
	if cond.Altitude != 5280 {
		t.Errorf("altitude = %v", cond.Altitude)
	}
	if cond.DefaultSurface != "rough" {
		t.Errorf("surface = %q", cond.DefaultSurface)
	}
	if cond.SpinMemory {
		t.Error("spin memory should be off")
	}
	if cond.DragScale != 1 {
		t.Errorf("invalid drag scale applied: %v", cond.DragScale)
	}
}

func TestKeys(t *testing.T) {
	key, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	if !strings.HasPrefix(key, "ork_") {
		t.Errorf("key %q", key)
	}
	hash, err := HashKey(key)
	if err != nil {
		t.Fatalf("HashKey: %v", err)
	}
	if !VerifyKey(hash, key) {
		t.Error("key should verify against its hash")
	}
	if VerifyKey(hash, key+"x") {
		t.Error("wrong key verified")
	}
}

func TestHasScope(t *testing.T) {
	if !HasScope([]string{ScopeShots}, ScopeShots) {
		t.Error("shots scope should grant shots")
	}
	if HasScope([]string{ScopeShots}, ScopeJobs) {
		t.Error("shots scope should not grant jobs")
	}
	if !HasScope([]string{ScopeAdmin}, ScopeJobs) {
		t.Error("admin scope grants everything")
	}
}
