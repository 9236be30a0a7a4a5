package config

import (
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"
)

type Config struct {
	mu sync.RWMutex

	// Environment
	Environment string

	// Database
	DatabaseURL    string
	MigrateOnStart bool

	// Redis
	RedisURL string

	// Server
	Port        string
	FrontendURL string

	// Course conditions used when a request does not override them
	Altitude       float64 // in EnvUnits
	Temperature    float64 // in EnvUnits
	EnvUnits       string  // "imperial" or "metric"
	DefaultSurface string
	DragScale      float64
	LiftScale      float64
	DistanceUnit   string // "yards", "meters" or "feet"

	// Simulation
	TimestepHz     int
	MaxSimSeconds  float64
	RestSpeed      float64
	SpinMemory     bool
	SampleHz       int
	StreamFrameHz  int
	ResultCacheTTL int // minutes

	// Batch jobs
	BatchWorkers       int
	JobPollSeconds     int
	JobStuckSeconds    int
	JobMaxAttempts     int
	MaxShotsPerRequest int

	// Security
	JWTSecret       string
	TokenTTLMinutes int
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	return &Config{
		// Environment
		Environment: getEnv("APP_ENV", "development"),

		// Database
		DatabaseURL:    getEnv("DATABASE_URL", "postgres://localhost:5432/openrange?sslmode=disable"),
		MigrateOnStart: getEnvBool("MIGRATE_ON_START", false),

		// Redis
		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),

		// Server
		Port:        getEnv("APP_PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),

		// Course conditions
		Altitude:       getEnvFloat("ENV_ALTITUDE", 0),
		Temperature:    getEnvFloat("ENV_TEMPERATURE", 59),
		EnvUnits:       getEnv("ENV_UNITS", "imperial"),
		DefaultSurface: getEnv("DEFAULT_SURFACE", "fairway"),
		DragScale:      getEnvFloat("DRAG_SCALE", 1.0),
		LiftScale:      getEnvFloat("LIFT_SCALE", 1.0),
		DistanceUnit:   getEnv("DISTANCE_UNIT", "yards"),

		// Simulation
		TimestepHz:     getEnvInt("SIM_TIMESTEP_HZ", 240),
		MaxSimSeconds:  getEnvFloat("SIM_MAX_SECONDS", 60),
		RestSpeed:      getEnvFloat("SIM_REST_SPEED", 0.05),
		SpinMemory:     getEnvBool("SIM_SPIN_MEMORY", true),
		SampleHz:       getEnvInt("SIM_SAMPLE_HZ", 30),
		StreamFrameHz:  getEnvInt("STREAM_FRAME_HZ", 60),
		ResultCacheTTL: getEnvInt("RESULT_CACHE_TTL_MINUTES", 60),

		// Batch jobs
		BatchWorkers:       getEnvInt("BATCH_WORKERS", 4),
		JobPollSeconds:     getEnvInt("JOB_POLL_SECONDS", 2),
		JobStuckSeconds:    getEnvInt("JOB_STUCK_SECONDS", 120),
		JobMaxAttempts:     getEnvInt("JOB_MAX_ATTEMPTS", 3),
		MaxShotsPerRequest: getEnvInt("MAX_SHOTS_PER_REQUEST", 500),

		// Security
		JWTSecret:       getEnv("JWT_SECRET", "change-me-in-production"),
		TokenTTLMinutes: getEnvInt("TOKEN_TTL_MINUTES", 60),
	}
}

// Conditions is the subset of Config that runtime overrides may change while
// the server is running.
type Conditions struct {
	Altitude       float64 `json:"altitude"`
	Temperature    float64 `json:"temperature"`
	EnvUnits       string  `json:"env_units"`
	DefaultSurface string  `json:"default_surface"`
	DragScale      float64 `json:"drag_scale"`
	LiftScale      float64 `json:"lift_scale"`
	DistanceUnit   string  `json:"distance_unit"`
	TimestepHz     int     `json:"timestep_hz"`
	MaxSimSeconds  float64 `json:"max_sim_seconds"`
	RestSpeed      float64 `json:"rest_speed"`
	SpinMemory     bool    `json:"spin_memory"`
	SampleHz       int     `json:"sample_hz"`
}

// Conditions returns a consistent copy of the current course and simulation settings.
func (c *Config) Conditions() Conditions {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Conditions{
		Altitude:       c.Altitude,
		Temperature:    c.Temperature,
		EnvUnits:       c.EnvUnits,
		DefaultSurface: c.DefaultSurface,
		DragScale:      c.DragScale,
		LiftScale:      c.LiftScale,
		DistanceUnit:   c.DistanceUnit,
		TimestepHz:     c.TimestepHz,
		MaxSimSeconds:  c.MaxSimSeconds,
		RestSpeed:      c.RestSpeed,
		SpinMemory:     c.SpinMemory,
		SampleHz:       c.SampleHz,
	}
}

// Update applies fn under the write lock.
func (c *Config) Update(fn func(c *Config)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(c)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	}
	return defaultValue
}
