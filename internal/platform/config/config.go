package config

import (
	"os"
	"strings"
	"time"
)

// Server captures process-level configuration.
type Server struct {
	Addr          string
	JWTSigningKey string

	// PostgresURL switches persistence from in-memory to postgres when set.
	PostgresURL string
	// RedisURL enables the redis-backed notification throttle when set.
	RedisURL string
	// KafkaBrokers enables the kafka notification sink when non-empty.
	KafkaBrokers      []string
	NotificationTopic string

	// AdminTokenHash is the bcrypt hash of the operator token guarding the
	// manual sweep trigger. Empty leaves the endpoint open, for development.
	AdminTokenHash string

	SweepInterval time.Duration
	AutoRebalance bool
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("FUNDGATE_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("FUNDGATE_JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	sweepInterval := time.Hour
	if raw := os.Getenv("FUNDGATE_SWEEP_INTERVAL"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			sweepInterval = d
		}
	}

	topic := os.Getenv("FUNDGATE_NOTIFICATION_TOPIC")
	if topic == "" {
		topic = "loan-notifications"
	}

	var brokers []string
	if raw := os.Getenv("FUNDGATE_KAFKA_BROKERS"); raw != "" {
		for _, b := range strings.Split(raw, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
	}

	return Server{
		Addr:              addr,
		JWTSigningKey:     jwtSigningKey,
		PostgresURL:       os.Getenv("FUNDGATE_POSTGRES_URL"),
		RedisURL:          os.Getenv("FUNDGATE_REDIS_URL"),
		KafkaBrokers:      brokers,
		NotificationTopic: topic,
		AdminTokenHash:    os.Getenv("FUNDGATE_ADMIN_TOKEN_HASH"),
		SweepInterval:     sweepInterval,
		AutoRebalance:     os.Getenv("FUNDGATE_AUTO_REBALANCE") != "false",
	}
}

// RedisConfig tunes the go-redis client pool.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// RedisFromEnv returns pool settings with sane defaults around the configured URL.
func RedisFromEnv() RedisConfig {
	return RedisConfig{
		URL:          os.Getenv("FUNDGATE_REDIS_URL"),
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}
