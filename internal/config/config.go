package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Server        ServerConfig        `envconfig:"SERVER"`
	Auth          AuthConfig          `envconfig:"AUTH"`
	Redis         RedisConfig         `envconfig:"REDIS"`
	Seed          SeedConfig          `envconfig:"SEED"`
	Observability ObservabilityConfig `envconfig:"OBSERVABILITY"`
	CORS          CORSConfig          `envconfig:"CORS"`
	Log           LogConfig           `envconfig:"LOG"`
}

type ServerConfig struct {
	Port         string        `envconfig:"PORT" default:"8000"`
	Environment  string        `envconfig:"ENVIRONMENT" default:"development"`
	ReadTimeout  time.Duration `envconfig:"READ_TIMEOUT" default:"30s"`
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" default:"30s"`
	IdleTimeout  time.Duration `envconfig:"IDLE_TIMEOUT" default:"120s"`
}

type AuthConfig struct {
	// TokenTTL is how long an issued token stays valid. 1440 minutes = 24h.
	TokenTTL      time.Duration `envconfig:"TOKEN_TTL" default:"1440m"`
	SweepEnabled  bool          `envconfig:"SWEEP_ENABLED" default:"false"`
	SweepInterval time.Duration `envconfig:"SWEEP_INTERVAL" default:"10m"`
}

type RedisConfig struct {
	// Enabled switches the token registry from the in-memory map to Redis.
	Enabled     bool          `envconfig:"ENABLED" default:"false"`
	Address     string        `envconfig:"ADDRESS" default:"localhost:6379"`
	Password    string        `envconfig:"PASSWORD" default:""`
	Database    int           `envconfig:"DATABASE" default:"0"`
	MaxRetries  int           `envconfig:"MAX_RETRIES" default:"3"`
	PoolSize    int           `envconfig:"POOL_SIZE" default:"100"`
	DialTimeout time.Duration `envconfig:"DIAL_TIMEOUT" default:"5s"`
}

// SeedConfig describes the demo user created at startup.
type SeedConfig struct {
	Username string `envconfig:"USERNAME" default:"testuser"`
	Password string `envconfig:"PASSWORD" default:"testpass"`
	Email    string `envconfig:"EMAIL" default:"testuser@example.com"`
}

type ObservabilityConfig struct {
	MetricsPath string `envconfig:"METRICS_PATH" default:"/metrics"`
}

type CORSConfig struct {
	AllowOrigins string `envconfig:"ALLOW_ORIGINS" default:"*"`
}

type LogConfig struct {
	Level  string `envconfig:"LEVEL" default:"info"`
	Format string `envconfig:"FORMAT" default:"json"`
}

func Load() (*Config, error) {
	var cfg Config

	// Load from environment variables
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	// Validate required fields
	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func validateConfig(cfg *Config) error {
	// Validate port
	if port, err := strconv.Atoi(cfg.Server.Port); err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid server port: %s", cfg.Server.Port)
	}

	if cfg.Auth.TokenTTL <= 0 {
		return fmt.Errorf("invalid token TTL: %s", cfg.Auth.TokenTTL)
	}

	if cfg.Auth.SweepEnabled && cfg.Auth.SweepInterval <= 0 {
		return fmt.Errorf("invalid sweep interval: %s", cfg.Auth.SweepInterval)
	}

	if cfg.Seed.Username == "" || cfg.Seed.Password == "" {
		return fmt.Errorf("seed user credentials must not be empty")
	}

	return nil
}
