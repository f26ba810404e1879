package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the bot.
type Config struct {
	App       AppConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	Logger    LoggerConfig
	Scheduler SchedulerConfig
}

// AppConfig controls the ops HTTP server and service identity.
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

// SchedulerConfig tunes the background engine. The defaults mirror the
// production cadences; tests shrink them.
type SchedulerConfig struct {
	PriorityLeaseTTL      time.Duration
	PriorityLowInterval   time.Duration
	PriorityHighInterval  time.Duration
	EditSessionTTL        time.Duration
	EscalationInterval    time.Duration
	EscalationStaleAfter  time.Duration
	AutoCloseInterval     time.Duration
	ReminderInterval      time.Duration
	CloseGraceDelay       time.Duration
	AutoCloseChannelDelay time.Duration
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "ticket-bot"),
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
		Scheduler: SchedulerConfig{
			PriorityLeaseTTL:      getEnvAsDuration("PRIORITY_LEASE_TTL_SECONDS", 86400),
			PriorityLowInterval:   getEnvAsDuration("PRIORITY_LOW_PING_SECONDS", 7200),
			PriorityHighInterval:  getEnvAsDuration("PRIORITY_HIGH_PING_SECONDS", 3600),
			EditSessionTTL:        getEnvAsDuration("EDIT_SESSION_TTL_SECONDS", 600),
			EscalationInterval:    getEnvAsDuration("ESCALATION_SWEEP_SECONDS", 3600),
			EscalationStaleAfter:  getEnvAsDuration("ESCALATION_STALE_SECONDS", 3600),
			AutoCloseInterval:     getEnvAsDuration("AUTOCLOSE_SWEEP_SECONDS", 60),
			ReminderInterval:      getEnvAsDuration("REMINDER_SWEEP_SECONDS", 30),
			CloseGraceDelay:       getEnvAsDuration("CLOSE_GRACE_SECONDS", 5),
			AutoCloseChannelDelay: 500 * time.Millisecond,
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

func getEnvAsDuration(key string, fallbackSeconds int) time.Duration {
	return time.Duration(getEnvAsInt(key, fallbackSeconds)) * time.Second
}
