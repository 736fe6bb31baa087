// Package config loads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Prefix namespaces every variable, e.g. FAKTUR_HTTP_ADDR
const Prefix = "FAKTUR"

// Config holds runtime configuration
type Config struct {
	Env string `envconfig:"ENV" default:"development"`

	HTTPAddr         string        `envconfig:"HTTP_ADDR" default:":8080"`
	HTTPReadTimeout  time.Duration `envconfig:"HTTP_READ_TIMEOUT" default:"30s"`
	HTTPWriteTimeout time.Duration `envconfig:"HTTP_WRITE_TIMEOUT" default:"60s"`
	MaxBodyBytes     int64         `envconfig:"MAX_BODY_BYTES" default:"10485760"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`

	DatabaseDSN string `envconfig:"DATABASE_DSN" default:"file:faktur.db?cache=shared"`
	RedisAddr   string `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`

	WorkerConcurrency int `envconfig:"WORKER_CONCURRENCY" default:"4"`

	ExportDir string `envconfig:"EXPORT_DIR" default:"exports"`

	Peppol Peppol `envconfig:"PEPPOL"`
}

// Peppol configures the access point
type Peppol struct {
	Provider    string        `envconfig:"PROVIDER" default:"simulator"`
	MaxAttempts int           `envconfig:"MAX_ATTEMPTS" default:"3"`
	Backoff     time.Duration `envconfig:"BACKOFF" default:"60s"`

	StorecoveBaseURL       string        `envconfig:"STORECOVE_BASE_URL" default:"https://api.storecove.com/api/v2"`
	StorecoveAPIKey        string        `envconfig:"STORECOVE_API_KEY"`
	StorecoveLegalEntityID int64         `envconfig:"STORECOVE_LEGAL_ENTITY_ID"`
	StorecoveTimeout       time.Duration `envconfig:"STORECOVE_TIMEOUT" default:"30s"`

	SimulatorSuccessRate float64       `envconfig:"SIMULATOR_SUCCESS_RATE" default:"0.9"`
	SimulatorDelay       time.Duration `envconfig:"SIMULATOR_DELAY" default:"0s"`
}

// Load reads the given .env files, or ./.env when present if none are
// named, then the FAKTUR_* environment. A named file that cannot be read
// or parsed is an error.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		// the default .env is optional
		_ = godotenv.Load()
	} else if err := godotenv.Load(envFiles...); err != nil {
		return nil, fmt.Errorf("config: load env file: %w", err)
	}

	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints
func (c *Config) Validate() error {
	switch c.Peppol.Provider {
	case "simulator", "storecove":
	default:
		return fmt.Errorf("config: unknown peppol provider %q", c.Peppol.Provider)
	}
	if c.Peppol.MaxAttempts < 1 {
		return errors.New("config: peppol max attempts must be at least 1")
	}
	if c.Peppol.SimulatorSuccessRate < 0 || c.Peppol.SimulatorSuccessRate > 1 {
		return errors.New("config: simulator success rate must be between 0 and 1")
	}
	return nil
}

// IsProduction returns true when running in production
func (c *Config) IsProduction() bool {
	return c != nil && c.Env == "production"
}
