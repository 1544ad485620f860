package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rezkam/central/internal/application/planner"
	"github.com/rezkam/central/internal/clock"
	"github.com/rezkam/central/internal/config"
	httpserver "github.com/rezkam/central/internal/infrastructure/http"
	"github.com/rezkam/central/internal/infrastructure/http/handler"
	"github.com/rezkam/central/internal/infrastructure/observability"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		// slog may not be initialized if config loading failed.
		fmt.Fprintf(os.Stderr, "failed to run: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadServerConfig()
	if err != nil {
		return err
	}

	// Root context, cancelled on SIGTERM/SIGINT.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	loc, err := clock.LoadLocation(cfg.Planner.Timezone)
	if err != nil {
		return fmt.Errorf("failed to load timezone: %w", err)
	}

	level, err := observability.ParseLevel(cfg.Observability.LogLevel)
	if err != nil {
		return err
	}
	telemetry, err := observability.Setup(ctx, observability.Config{
		Enabled:        cfg.Observability.OTelEnabled,
		ServiceName:    cfg.Observability.ServiceName,
		ServiceVersion: version,
		LogLevel:       level,
	})
	if err != nil {
		return err
	}
	slog.SetDefault(telemetry.Logger)

	store, err := openStore(ctx, cfg.Storage)
	if err != nil {
		_ = telemetry.Shutdown(context.Background())
		return fmt.Errorf("failed to create store: %w", err)
	}

	svc, err := planner.NewService(store, clock.System{}, planner.Config{
		Location:                loc,
		MaxOccurrenceWindowDays: cfg.Planner.MaxOccurrenceWindowDays,
		MaxOccurrences:          cfg.Planner.MaxOccurrences,
		MeterProvider:           telemetry.Meter,
		TracerProvider:          telemetry.Tracer,
	})
	if err != nil {
		_ = newCleanup(nil, store, telemetry)(context.Background())
		return fmt.Errorf("failed to create planner service: %w", err)
	}

	serverCfg := httpServerConfig(cfg)
	serverCfg.Ready = svc.Ready
	server, err := httpserver.NewAPIServer(handler.NewRouter(svc), serverCfg)
	if err != nil {
		_ = newCleanup(nil, store, telemetry)(context.Background())
		return fmt.Errorf("failed to create HTTP server: %w", err)
	}

	// Shutdown order: stop taking requests, close the store, flush telemetry.
	cleanup := newCleanup(server, store, telemetry)

	slog.InfoContext(ctx, "starting central service",
		"version", version,
		"storage", cfg.Storage.Type,
		"timezone", loc.String(),
		"addr", cfg.HTTP.Addr())

	errResult := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errResult <- fmt.Errorf("failed to serve HTTP: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down")
	case err = <-errResult:
		slog.Error("server failed", "error", err)
	}

	shutdownCtx, cancelShutdown := newShutdownContext(cfg.ShutdownTimeout)
	defer cancelShutdown()
	if cerr := cleanup(shutdownCtx); cerr != nil {
		err = errors.Join(err, cerr)
	}
	return err
}

// httpServerConfig maps environment configuration onto the HTTP server.
func httpServerConfig(cfg *config.ServerConfig) httpserver.ServerConfig {
	sc := httpserver.ServerConfig{
		Host:              cfg.HTTP.Host,
		Port:              cfg.HTTP.Port,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		MaxHeaderBytes:    cfg.HTTP.MaxHeaderBytes,
		MaxBodyBytes:      cfg.HTTP.MaxBodyBytes,
		ServiceName:       cfg.Observability.ServiceName,
		RateLimitRPS:      cfg.HTTP.RateLimitRPS,
		RateLimitBurst:    cfg.HTTP.RateLimitBurst,
		RateLimitClients:  cfg.HTTP.RateLimitClients,
	}
	if cfg.HTTP.TLSEnabled {
		sc.TLSCertFile = cfg.HTTP.TLSCertFile
		sc.TLSKeyFile = cfg.HTTP.TLSKeyFile
	}
	return sc
}

// newShutdownContext bounds graceful shutdown. It deliberately does not
// derive from the signal context, which is already cancelled by then.
func newShutdownContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return context.WithTimeout(context.Background(), timeout)
}
