// Package config loads server configuration from ANS_* environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"ans/pkg/domain"
)

// Backend names accepted by ANS_BACKEND.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Server captures everything main needs to wire the service.
type Server struct {
	Addr            string        `env:"ANS_ADDR" envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"ANS_SHUTDOWN_TIMEOUT" envDefault:"10s"`

	Log Log

	// Owner administers the registry. Deployer seeds component addresses.
	Owner    domain.Address `env:"ANS_OWNER,required"`
	Deployer domain.Address `env:"ANS_DEPLOYER"`

	JWTSigningKey string `env:"ANS_JWT_SIGNING_KEY" envDefault:"dev-secret-key-change-in-production"`
	JWTIssuer     string `env:"ANS_JWT_ISSUER" envDefault:"ans"`
	JWTAudience   string `env:"ANS_JWT_AUDIENCE" envDefault:"ans-api"`

	Backend  string `env:"ANS_BACKEND" envDefault:"memory"`
	Database Database
	Redis    RedisConfig
	Kafka    Kafka

	ResolveCacheTTL time.Duration `env:"ANS_RESOLVE_CACHE_TTL" envDefault:"5m"`
	OTLPEndpoint    string        `env:"ANS_OTLP_ENDPOINT"`
}

// Log selects the slog handler.
type Log struct {
	Level  string `env:"ANS_LOG_LEVEL" envDefault:"info"`
	Format string `env:"ANS_LOG_FORMAT" envDefault:"json"`
}

// Database configures the postgres backend.
type Database struct {
	URL             string        `env:"ANS_DATABASE_URL"`
	MaxOpenConns    int           `env:"ANS_DATABASE_MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns    int           `env:"ANS_DATABASE_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"ANS_DATABASE_CONN_MAX_LIFETIME" envDefault:"30m"`
	NotifyChannel   string        `env:"ANS_DATABASE_NOTIFY_CHANNEL" envDefault:"ans_name_assigned"`
	TxTimeout       time.Duration `env:"ANS_DATABASE_TX_TIMEOUT" envDefault:"5s"`
}

// RedisConfig configures the redis backend.
type RedisConfig struct {
	URL          string        `env:"ANS_REDIS_URL"`
	PoolSize     int           `env:"ANS_REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"ANS_REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"ANS_REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"ANS_REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"ANS_REDIS_WRITE_TIMEOUT" envDefault:"3s"`
	KeyPrefix    string        `env:"ANS_REDIS_KEY_PREFIX" envDefault:"ans:"`
	MaxRetries   int           `env:"ANS_REDIS_TX_RETRIES" envDefault:"8"`
}

// Kafka configures the optional event stream.
type Kafka struct {
	Brokers        []string      `env:"ANS_KAFKA_BROKERS" envSeparator:","`
	Topic          string        `env:"ANS_KAFKA_TOPIC" envDefault:"ans.names"`
	PublishTimeout time.Duration `env:"ANS_KAFKA_PUBLISH_TIMEOUT" envDefault:"5s"`
}

// FromEnv parses and validates the environment.
func FromEnv() (Server, error) {
	var cfg Server
	if err := env.Parse(&cfg); err != nil {
		return Server{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

// Validate checks cross-field requirements and fills the deployer default.
func (c *Server) Validate() error {
	if c.Owner.IsZero() {
		return fmt.Errorf("ANS_OWNER must be a non-zero address")
	}
	if c.Deployer.IsZero() {
		c.Deployer = c.Owner
	}
	switch c.Backend {
	case BackendMemory:
	case BackendPostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("ANS_DATABASE_URL is required for the postgres backend")
		}
	case BackendRedis:
		if c.Redis.URL == "" {
			return fmt.Errorf("ANS_REDIS_URL is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown ANS_BACKEND %q", c.Backend)
	}
	return nil
}
