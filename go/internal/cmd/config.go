package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/mcdev12/gooseclicker/go/internal/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := setupLogging(cfg); err != nil {
		return nil, err
	}

	if cfg.InstanceID == "" {
		cfg.InstanceID = defaultInstanceID()
	}
	if cfg.UsesDefaultSecret() {
		log.Warn().Msg("JWT_SECRET is not set; using the built-in development secret")
	}

	log.Info().
		Str("instance_id", cfg.InstanceID).
		Str("notifier", string(cfg.Notifier.Backend)).
		Dur("round_duration", cfg.Rounds.Duration).
		Dur("cooldown", cfg.Rounds.Cooldown).
		Msg("configuration loaded")
	return cfg, nil
}

func setupLogging(cfg *config.Config) error {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Log.Level))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.Log.Level, err)
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Log.Format == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	return nil
}

// defaultInstanceID identifies this process in event origins and logs.
func defaultInstanceID() string {
	if host, err := os.Hostname(); err == nil && host != "" {
		return fmt.Sprintf("%s-%s", host, uuid.NewString()[:8])
	}
	return uuid.NewString()
}
