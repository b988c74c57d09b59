package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Triage       TriageConfig
	SLA          SLAConfig
	Notification NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// TriageConfig controls the triage engine and its scheduler.
type TriageConfig struct {
	PollIntervalSeconds     int
	AutoApply               bool
	PerformanceWindowDays   int
	DefaultPerformance      float64
	PerfCacheTTLSeconds     int
	SeniorRoles             []string
	DefaultLocationWeight   float64
	DefaultExperienceWeight float64
	DefaultWorkloadWeight   float64
}

// SLAConfig maps ticket priority to resolution time in minutes. The SLA
// deadline is derived from these at ticket creation and never changes.
type SLAConfig struct {
	UrgentMinutes int
	HighMinutes   int
	MediumMinutes int
	LowMinutes    int
}

// NotificationConfig holds stub notification endpoints.
type NotificationConfig struct {
	EmailFrom  string
	WebhookURL string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	defaultPerf, err := strconv.ParseFloat(getEnv("TRIAGE_DEFAULT_PERFORMANCE", "0.8"), 64)
	if err != nil || defaultPerf < 0 || defaultPerf > 1 {
		return nil, fmt.Errorf("invalid TRIAGE_DEFAULT_PERFORMANCE: %q", os.Getenv("TRIAGE_DEFAULT_PERFORMANCE"))
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "facility-triage-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Triage: TriageConfig{
			PollIntervalSeconds:     getEnvAsInt("TRIAGE_POLL_INTERVAL_SECONDS", 60),
			AutoApply:               getEnvAsBool("TRIAGE_AUTO_APPLY", true),
			PerformanceWindowDays:   getEnvAsInt("TRIAGE_PERFORMANCE_WINDOW_DAYS", 30),
			DefaultPerformance:      defaultPerf,
			PerfCacheTTLSeconds:     getEnvAsInt("PERF_CACHE_TTL_SECONDS", 300),
			SeniorRoles:             getEnvAsList("TRIAGE_SENIOR_ROLES", []string{"supervisor", "lead"}),
			DefaultLocationWeight:   getEnvAsFloat("TRIAGE_DEFAULT_LOCATION_WEIGHT", 0.4),
			DefaultExperienceWeight: getEnvAsFloat("TRIAGE_DEFAULT_EXPERIENCE_WEIGHT", 0.3),
			DefaultWorkloadWeight:   getEnvAsFloat("TRIAGE_DEFAULT_WORKLOAD_WEIGHT", 0.3),
		},
		SLA: SLAConfig{
			UrgentMinutes: getEnvAsInt("SLA_MINUTES_URGENT", 120),
			HighMinutes:   getEnvAsInt("SLA_MINUTES_HIGH", 240),
			MediumMinutes: getEnvAsInt("SLA_MINUTES_MEDIUM", 1440),
			LowMinutes:    getEnvAsInt("SLA_MINUTES_LOW", 4320),
		},
		Notification: NotificationConfig{
			EmailFrom:  getEnv("NOTIFY_EMAIL_FROM", "noreply@example.com"),
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// PollInterval returns the triage scheduler cadence.
func (t TriageConfig) PollInterval() time.Duration {
	if t.PollIntervalSeconds <= 0 {
		return time.Minute
	}
	return time.Duration(t.PollIntervalSeconds) * time.Second
}

// PerfCacheTTL returns how long cached performance scores stay fresh.
func (t TriageConfig) PerfCacheTTL() time.Duration {
	if t.PerfCacheTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(t.PerfCacheTTLSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsFloat(key string, fallback float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsList(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
