// Package config builds runtime configuration from environment variables so
// main stays lean. Empty Postgres/Redis/Kafka settings select the in-memory
// fallbacks; the demo binary runs with everything unset.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the full runtime configuration.
type Config struct {
	Server     Server
	Postgres   Postgres
	Redis      Redis
	Kafka      Kafka
	Governance Governance
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

// Postgres captures the database connection. An empty DSN selects in-memory
// stores.
type Postgres struct {
	DSN string
}

// Redis captures the metadata cache connection. An empty URL disables the
// cache.
type Redis struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	DescribeTTL  time.Duration
}

// Kafka captures the audit sink. Empty brokers disable the outbox worker.
type Kafka struct {
	Brokers    []string
	AuditTopic string
}

// Governance holds the policy knobs for analysis requests.
type Governance struct {
	// MaxGridSize caps the density grid resolution a researcher may request.
	MaxGridSize int
	// MinAggregateCount suppresses grid cells aggregating fewer records.
	MinAggregateCount int
	// SubmitRatePerMinute bounds request submission per researcher.
	SubmitRatePerMinute int
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	return Config{
		Server: Server{
			Addr:            envString("GEOVAULT_ADDR", ":8080"),
			RequestTimeout:  envDuration("GEOVAULT_REQUEST_TIMEOUT", 30*time.Second),
			ShutdownTimeout: envDuration("GEOVAULT_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Postgres: Postgres{
			DSN: os.Getenv("GEOVAULT_POSTGRES_DSN"),
		},
		Redis: Redis{
			URL:          os.Getenv("GEOVAULT_REDIS_URL"),
			PoolSize:     envInt("GEOVAULT_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("GEOVAULT_REDIS_MIN_IDLE", 2),
			DialTimeout:  envDuration("GEOVAULT_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("GEOVAULT_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("GEOVAULT_REDIS_WRITE_TIMEOUT", 3*time.Second),
			DescribeTTL:  envDuration("GEOVAULT_REDIS_DESCRIBE_TTL", 5*time.Minute),
		},
		Kafka: Kafka{
			Brokers:    envList("GEOVAULT_KAFKA_BROKERS"),
			AuditTopic: envString("GEOVAULT_KAFKA_AUDIT_TOPIC", "geovault.audit"),
		},
		Governance: Governance{
			MaxGridSize:         envInt("GEOVAULT_MAX_GRID_SIZE", 50),
			MinAggregateCount:   envInt("GEOVAULT_MIN_AGGREGATE_COUNT", 3),
			SubmitRatePerMinute: envInt("GEOVAULT_SUBMIT_RATE_PER_MINUTE", 30),
		},
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
