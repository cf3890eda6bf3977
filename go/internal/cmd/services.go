package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/gooseclicker/go/internal/auth"
	"github.com/mcdev12/gooseclicker/go/internal/config"
	gamedb "github.com/mcdev12/gooseclicker/go/internal/game/db"
	"github.com/mcdev12/gooseclicker/go/internal/game/gateway"
	"github.com/mcdev12/gooseclicker/go/internal/game/notifier"
	"github.com/mcdev12/gooseclicker/go/internal/game/poller"
	"github.com/mcdev12/gooseclicker/go/internal/game/round"
	"github.com/mcdev12/gooseclicker/go/internal/game/tap"
	"github.com/mcdev12/gooseclicker/go/internal/health"
	"github.com/mcdev12/gooseclicker/go/internal/metrics"
	"github.com/mcdev12/gooseclicker/go/internal/users"
	usersdb "github.com/mcdev12/gooseclicker/go/internal/users/db"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/time/rate"
)

// runner is a long-lived component started alongside the HTTP server.
type runner struct {
	name string
	run  func(ctx context.Context) error
}

type Services struct {
	Users   *users.Service
	Rounds  *round.Service
	Taps    *tap.Service
	Gateway *gateway.WebSocketHandler

	Tokens      auth.Provider
	TapLimiter  *auth.KeyedRateLimiter
	Health      *health.Checker
	Registry    *prometheus.Registry
	Connections *gateway.ConnectionManager

	runners []runner
	closers []func() error
}

func setupServices(ctx context.Context, database *sql.DB, cfg *config.Config) (*Services, error) {
	// Wire up dependency injection chain
	// Database layer → Repository layer → App layer → Service layer
	s := &Services{
		Registry: prometheus.NewRegistry(),
		Health:   health.NewChecker(2 * time.Second),
	}
	s.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewPrometheus(s.Registry)
	clock := clockwork.NewRealClock()

	s.Health.Add("database", database.PingContext)

	// Gateway
	s.Connections = gateway.NewConnectionManager(gateway.DefaultConnectionConfig(), m)
	s.Gateway = gateway.NewWebSocketHandler(s.Connections)
	s.addRunner("connection-manager", s.Connections.Run)

	// Notifier
	gameQueries := gamedb.New(database)
	eventNotifier, err := s.setupNotifier(ctx, cfg, gameQueries, clock, m)
	if err != nil {
		s.Close()
		return nil, err
	}

	// Users
	s.Tokens = auth.NewProvider(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	userRepo := users.NewRepository(usersdb.New(database))
	userApp := users.NewApp(userRepo)
	s.Users = users.NewService(userApp, s.Tokens)

	// Rounds
	roundRepo := round.NewRepository(gameQueries, database, cfg.Rounds.RetainLedger)
	roundApp := round.NewApp(roundRepo, eventNotifier, clock, m, round.Config{
		RoundDuration:    cfg.Rounds.Duration,
		CooldownDuration: cfg.Rounds.Cooldown,
		StoreTimeout:     cfg.Store.Timeout,
		NotifyTimeout:    time.Second,
	})
	s.Rounds = round.NewService(roundApp)

	// Taps
	tapRepo := tap.NewRepository(gameQueries, database)
	tapApp := tap.NewApp(tapRepo, eventNotifier, clock, m, tap.Config{
		StoreTimeout:  cfg.Store.Timeout,
		NotifyTimeout: time.Second,
	})
	s.Taps = tap.NewService(tapApp)
	s.TapLimiter = auth.NewKeyedRateLimiter(rate.Limit(cfg.RateLimit.TapsPerSecond), cfg.RateLimit.Burst)

	// Poller
	pollerCfg := poller.DefaultConfig()
	pollerCfg.Interval = cfg.Rounds.PollInterval
	p := poller.NewPoller(roundApp, clock, m, pollerCfg, cfg.InstanceID)
	roundApp.SetWaker(p)
	s.addRunner("poller", p.Run)

	return s, nil
}

// setupNotifier builds the event fan-out for the configured backend and
// registers whatever must run or be checked alongside it.
func (s *Services) setupNotifier(ctx context.Context, cfg *config.Config, queries *gamedb.Queries, clock clockwork.Clock, m metrics.Collector) (notifier.Notifier, error) {
	local := notifier.NewLocal(s.Connections)

	switch cfg.Notifier.Backend {
	case config.BackendLocal:
		return local, nil

	case config.BackendPostgres:
		relayCfg := notifier.DefaultRelayConfig()
		relayCfg.DatabaseURL = cfg.Database.DSN()
		relayCfg.Channel = cfg.Notifier.Channel
		relayCfg.Origin = cfg.InstanceID

		relay, err := notifier.NewRelay(s.Connections, relayCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to start notify relay: %w", err)
		}
		s.closers = append(s.closers, relay.Close)
		s.addRunner("notify-relay", relay.Run)
		s.Health.Add("notify-relay", relay.Check)

		publisher := notifier.NewPostgres(queries, cfg.Notifier.Channel, cfg.InstanceID)
		return notifier.Multi{
			local,
			notifier.NewRetrying(publisher, clock, m, notifier.DefaultRetryConfig()),
		}, nil

	case config.BackendNATS:
		jsCfg := notifier.DefaultJetStreamConfig()
		jsCfg.URL = cfg.Notifier.NATSURL
		jsCfg.StreamName = cfg.Notifier.Stream
		jsCfg.SubjectPrefix = cfg.Notifier.SubjectPrefix

		nc, err := notifier.Connect(jsCfg)
		if err != nil {
			return nil, err
		}
		publisher, err := notifier.NewJetStream(ctx, nc, jsCfg)
		if err != nil {
			nc.Close()
			return nil, err
		}
		s.closers = append(s.closers, publisher.Close)
		s.Health.Add("nats", publisher.Check)

		consumer := gateway.NewEventConsumer(publisher.JS(), s.Connections, gateway.JetStreamConsumerConfig{
			StreamName:    jsCfg.StreamName,
			SubjectPrefix: jsCfg.SubjectPrefix,
		})
		s.addRunner("event-consumer", consumer.Run)

		// every instance, this one included, hears events through its consumer
		return notifier.NewRetrying(publisher, clock, m, notifier.DefaultRetryConfig()), nil
	}

	return nil, fmt.Errorf("unknown notifier backend %q", cfg.Notifier.Backend)
}

func (s *Services) addRunner(name string, run func(ctx context.Context) error) {
	s.runners = append(s.runners, runner{name: name, run: run})
}

// Close releases notifier connections. The database is closed by the caller.
func (s *Services) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}
