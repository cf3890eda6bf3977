package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mcdev12/gooseclicker/go/internal/auth"
	"github.com/mcdev12/gooseclicker/go/internal/config"
	"github.com/mcdev12/gooseclicker/go/internal/httpx"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"
)

func setupServer(cfg *config.Config, services *Services) *http.Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httpx.RequestLogger)
	r.Use(middleware.Recoverer)

	// Add health check and metrics endpoints
	r.Method(http.MethodGet, "/health", services.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(services.Registry, promhttp.HandlerOpts{}))

	// Websocket gateway
	services.Gateway.RegisterRoutes(r)

	// Register services
	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", services.Users.RegisterRoutes)

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(services.Tokens))
			services.Rounds.RegisterRoutes(r)

			r.Group(func(r chi.Router) {
				r.Use(auth.RateLimitMiddleware(services.TapLimiter))
				services.Taps.RegisterRoutes(r)
			})
		})
	})

	origins := cfg.Server.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
			http.MethodOptions,
		},
		AllowedOrigins: origins,
		AllowedHeaders: []string{"*"},
	})

	// Wrap with CORS
	handler := c.Handler(r)

	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           h2c.NewHandler(handler, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// run serves until ctx is cancelled or any component fails, then shuts the
// server down and waits for every component to return.
func run(ctx context.Context, cfg *config.Config, server *http.Server, services *Services) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("addr", server.Addr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	for _, rn := range services.runners {
		g.Go(func() error {
			if err := rn.run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("%s: %w", rn.name, err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info().Msg("server stopped")
	return nil
}
