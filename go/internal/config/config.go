// Package config loads server settings from an optional YAML file and the
// environment. Environment variables win over the file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mcdev12/gooseclicker/go/internal/dbconfig"
	"gopkg.in/yaml.v3"
)

const defaultJWTSecret = "change-me-in-production"

type Backend string

const (
	BackendPostgres Backend = "postgres"
	BackendNATS     Backend = "nats"
	BackendLocal    Backend = "local"
)

type Config struct {
	InstanceID string `yaml:"instance_id"`

	Server struct {
		Port            int           `yaml:"port"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		AllowedOrigins  []string      `yaml:"allowed_origins"`
	} `yaml:"server"`

	Auth struct {
		JWTSecret string        `yaml:"jwt_secret"`
		TokenTTL  time.Duration `yaml:"token_ttl"`
		Issuer    string        `yaml:"issuer"`
	} `yaml:"auth"`

	Rounds struct {
		Duration     time.Duration `yaml:"duration"`
		Cooldown     time.Duration `yaml:"cooldown"`
		PollInterval time.Duration `yaml:"poll_interval"`
		RetainLedger bool          `yaml:"retain_ledger"`
	} `yaml:"rounds"`

	Store struct {
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"store"`

	Notifier struct {
		Backend       Backend `yaml:"backend"`
		Channel       string  `yaml:"channel"`
		NATSURL       string  `yaml:"nats_url"`
		Stream        string  `yaml:"stream"`
		SubjectPrefix string  `yaml:"subject_prefix"`
	} `yaml:"notifier"`

	RateLimit struct {
		TapsPerSecond float64 `yaml:"taps_per_second"`
		Burst         int     `yaml:"burst"`
	} `yaml:"rate_limit"`

	Log struct {
		Format string `yaml:"format"`
		Level  string `yaml:"level"`
	} `yaml:"log"`

	// Database always comes from DATABASE_URL or DB_*.
	Database dbconfig.Config `yaml:"-"`
}

// Default returns the settings used when nothing is configured.
func Default() *Config {
	var c Config
	c.Server.Port = 3000
	c.Server.ShutdownTimeout = 10 * time.Second
	c.Auth.JWTSecret = defaultJWTSecret
	c.Auth.TokenTTL = 24 * time.Hour
	c.Auth.Issuer = "gooseclicker"
	c.Rounds.Duration = 60 * time.Second
	c.Rounds.Cooldown = 30 * time.Second
	c.Rounds.PollInterval = time.Second
	c.Store.Timeout = 3 * time.Second
	c.Notifier.Backend = BackendPostgres
	c.Notifier.Channel = "tap_events"
	c.Notifier.NATSURL = "nats://127.0.0.1:4222"
	c.Notifier.Stream = "CLICKER_EVENTS"
	c.Notifier.SubjectPrefix = "clicker.rounds"
	c.RateLimit.TapsPerSecond = 20
	c.RateLimit.Burst = 40
	c.Log.Format = "json"
	c.Log.Level = "info"
	return &c
}

// Load reads path (if non-empty) over the defaults, applies environment
// overrides and validates the result.
func Load(path string) (*Config, error) {
	c := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := c.applyEnv(); err != nil {
		return nil, err
	}
	c.Database = dbconfig.NewConfigFromEnv()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv() error {
	var errs []error

	c.InstanceID = getEnv("INSTANCE_ID", c.InstanceID)
	c.Server.Port = getEnvAsInt("PORT", c.Server.Port)
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		c.Server.AllowedOrigins = strings.Split(v, ",")
	}

	c.Auth.JWTSecret = getEnv("JWT_SECRET", c.Auth.JWTSecret)
	c.Auth.TokenTTL = getEnvAsDuration("JWT_TTL", c.Auth.TokenTTL, &errs)

	// the round knobs are whole seconds
	c.Rounds.Duration = time.Duration(getEnvAsInt("ROUND_DURATION", int(c.Rounds.Duration/time.Second))) * time.Second
	c.Rounds.Cooldown = time.Duration(getEnvAsInt("COOLDOWN_DURATION", int(c.Rounds.Cooldown/time.Second))) * time.Second
	c.Rounds.PollInterval = getEnvAsDuration("POLL_INTERVAL", c.Rounds.PollInterval, &errs)
	c.Rounds.RetainLedger = getEnvAsBool("RETAIN_LEDGER", c.Rounds.RetainLedger, &errs)
	c.Store.Timeout = getEnvAsDuration("STORE_TIMEOUT", c.Store.Timeout, &errs)

	c.Notifier.Backend = Backend(getEnv("NOTIFIER_BACKEND", string(c.Notifier.Backend)))
	c.Notifier.Channel = getEnv("NOTIFY_CHANNEL", c.Notifier.Channel)
	c.Notifier.NATSURL = getEnv("NATS_URL", c.Notifier.NATSURL)
	c.Notifier.Stream = getEnv("NATS_STREAM", c.Notifier.Stream)

	if v := os.Getenv("TAP_RATE_LIMIT"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("TAP_RATE_LIMIT: %w", err))
		} else {
			c.RateLimit.TapsPerSecond = f
		}
	}
	c.RateLimit.Burst = getEnvAsInt("TAP_RATE_BURST", c.RateLimit.Burst)

	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)

	return errors.Join(errs...)
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Server.Port))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("jwt secret is required"))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("token ttl must be positive"))
	}
	if c.Rounds.Duration <= 0 {
		errs = append(errs, errors.New("round duration must be positive"))
	}
	if c.Rounds.Cooldown < 0 {
		errs = append(errs, errors.New("cooldown duration must not be negative"))
	}
	if c.Rounds.PollInterval <= 0 {
		errs = append(errs, errors.New("poll interval must be positive"))
	}
	if c.Store.Timeout <= 0 {
		errs = append(errs, errors.New("store timeout must be positive"))
	}
	switch c.Notifier.Backend {
	case BackendPostgres:
		if c.Notifier.Channel == "" {
			errs = append(errs, errors.New("notify channel is required for the postgres backend"))
		}
	case BackendNATS:
		if c.Notifier.NATSURL == "" || c.Notifier.Stream == "" {
			errs = append(errs, errors.New("nats url and stream are required for the nats backend"))
		}
	case BackendLocal:
	default:
		errs = append(errs, fmt.Errorf("unknown notifier backend %q", c.Notifier.Backend))
	}
	if c.RateLimit.TapsPerSecond < 0 || c.RateLimit.Burst < 0 {
		errs = append(errs, errors.New("rate limit must not be negative"))
	}

	return errors.Join(errs...)
}

// UsesDefaultSecret reports whether the JWT secret was never configured.
func (c *Config) UsesDefaultSecret() bool {
	return c.Auth.JWTSecret == defaultJWTSecret
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration, errs *[]error) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return defaultValue
	}
	return d
}

func getEnvAsBool(key string, defaultValue bool, errs *[]error) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return defaultValue
	}
	return b
}
