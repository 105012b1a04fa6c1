// Package main is the entry point for tripsyncd, the trip synchronization
// daemon. Its sole responsibility is wiring dependencies together and
// starting the companion HTTP server. No business logic belongs here.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/tripwhizz/tripsync/internal/apiclient"
	"github.com/tripwhizz/tripsync/internal/auth"
	"github.com/tripwhizz/tripsync/internal/config"
	"github.com/tripwhizz/tripsync/internal/events"
	"github.com/tripwhizz/tripsync/internal/handler"
	"github.com/tripwhizz/tripsync/internal/middleware"
	"github.com/tripwhizz/tripsync/internal/repo"
	"github.com/tripwhizz/tripsync/internal/service"
	"github.com/tripwhizz/tripsync/internal/telemetry"
	"github.com/tripwhizz/tripsync/internal/tripsync"
)

func main() {
	// --- Config -----------------------------------------------------------
	if err := config.LoadDotEnv(); err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}
	cfg, err := config.Load()
	if err != nil {
		// Use the default logger before ours is configured.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("tripsyncd stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Tracing ----------------------------------------------------------
	tp, shutdownTracing, err := telemetry.Setup(ctx, "tripsyncd", cfg.OTelEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn("tracing shutdown", "error", err)
		}
	}()

	// --- Auth -------------------------------------------------------------
	var tokens apiclient.TokenProvider = auth.Static(cfg.Token)
	var tokenFile *auth.FileStore
	if cfg.Token == "" {
		tokenFile, err = auth.NewFileStore(cfg.TokenFile)
		if err != nil {
			return err
		}
		defer tokenFile.Close()
		tokens = tokenFile
		if _, ok := tokenFile.Token(); !ok {
			logger.Warn("not signed in; run tripctl login", "credentials", cfg.TokenFile)
		}
	}

	// --- Backend client and services --------------------------------------
	client, err := apiclient.New(cfg.APIURL, tokens, apiclient.WithTracerProvider(tp))
	if err != nil {
		return err
	}
	directory := service.NewTripDirectory(client.Trips())
	prefs := service.NewPreferenceService(client.Preferences())
	exporter := service.NewExportService(client.Trips())

	// --- Selection store --------------------------------------------------
	store, err := repo.Open(ctx, cfg.SelectionStore)
	if err != nil {
		return err
	}
	defer store.Close()
	logger.Info("selection store opened", "url", cfg.SelectionStore)

	// --- Core -------------------------------------------------------------
	bus := events.NewBus()
	core := tripsync.New(directory, prefs, store,
		tripsync.WithPublisher(bus),
		tripsync.WithLogger(logger),
	)
	go func() {
		if err := core.Start(ctx); err != nil {
			logger.Error("initial trip load failed", "error", err)
		}
	}()

	if tokenFile != nil {
		// Signing in or out with tripctl swaps the token; reload under it.
		err := tokenFile.Watch(func() {
			logger.Info("credentials changed, refreshing trips")
			if err := core.RefreshTrips(ctx); err != nil {
				logger.Error("refresh after sign-in failed", "error", err)
			}
		})
		if err != nil {
			logger.Warn("credentials watch disabled", "error", err)
		}
	}

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Tracing → Logger
	// → Recoverer → CORS → MaxBodySize.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewTracing(tp))
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))

	srv := handler.NewServer(core, bus, exporter, logger)
	r.Mount("/", srv.Routes(middleware.NewRateLimiter(cfg.CommandRate, cfg.CommandBurst)))

	// --- HTTP Server ------------------------------------------------------
	// Explicit timeouts prevent slowloris and resource exhaustion attacks.
	// The state stream clears its own write deadline.
	// Request contexts derive from baseCtx so open event streams end when
	// shutdown begins.
	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()
	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		BaseContext:  func(net.Listener) context.Context { return baseCtx },
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	httpSrv.RegisterOnShutdown(cancelBase)
	return httpSrv.Shutdown(shutdownCtx)
}
