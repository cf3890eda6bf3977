package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/mcdev12/gooseclicker/go/internal/migrations"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	app := &cli.App{
		Name:  "gooseclicker",
		Usage: "real-time clicker game server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "path to a YAML config file",
				EnvVars: []string{"CONFIG_FILE"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "run the HTTP API, websocket gateway and round poller",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "migrate",
						Usage: "apply pending migrations before serving",
					},
				},
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "apply pending database migrations",
				Action: migrate,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("gooseclicker exited with error")
	}
}

func serve(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, err := setupDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	if c.Bool("migrate") {
		if err := runMigrations(ctx, database); err != nil {
			return err
		}
	}

	services, err := setupServices(ctx, database, cfg)
	if err != nil {
		return err
	}
	defer services.Close()

	server := setupServer(cfg, services)
	return run(ctx, cfg, server, services)
}

func migrate(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	database, err := setupDatabase(c.Context, cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	return runMigrations(c.Context, database)
}

func runMigrations(ctx context.Context, database *sql.DB) error {
	applied, err := migrations.Apply(ctx, database)
	if err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	if len(applied) == 0 {
		log.Info().Msg("database schema is up to date")
		return nil
	}
	log.Info().Strs("migrations", applied).Msg("applied migrations")
	return nil
}
