package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"github.com/okian/firmograph/internal/adapters/backend"
	"github.com/okian/firmograph/internal/adapters/http/api"
	"github.com/okian/firmograph/internal/adapters/http/auth"
	"github.com/okian/firmograph/internal/adapters/http/openapi"
	"github.com/okian/firmograph/internal/config"
	"github.com/okian/firmograph/pkg/logger"
	"github.com/okian/firmograph/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 30 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	nanosecondsPerMillisecond = 1e6
)

const apiDescription = "Company search, profiles, peers, news, job postings and funding rounds."

func main() {
	// A missing .env is fine; real deployments use the environment directly.
	_ = godotenv.Load()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// Use stderr for initialization errors since logger isn't available yet
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	handler, err := newHandler(ctx, cfg, log)
	if err != nil {
		log.Error(ctx, "failed to build HTTP handler", logger.Error(err))
		os.Exit(1)
	}

	// Start system metrics updater
	go startSystemMetricsUpdater(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr), logger.String("backend_url", cfg.BackendURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
}

// newHandler wires the backend, the companies API and its documentation into
// one router.
func newHandler(ctx context.Context, cfg *config.Config, log logger.Logger) (http.Handler, error) {
	b, err := newBackend(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	server := api.NewServer(b,
		api.WithLogger(log.Named("api")),
		api.WithAuthFlow(auth.Flow{
			AuthorizationURL: cfg.AuthURL,
			TokenURL:         cfg.TokenURL,
			ClientID:         cfg.OAuthClientID,
		}),
	)

	r := mux.NewRouter()
	server.Register(ctx, r)

	doc := server.Document(
		openapi.Info{Title: cfg.Title, Description: apiDescription, Version: cfg.Version},
		openapi.WithServer(cfg.ServerURL(), ""),
	)
	if err := openapi.Register(ctx, r, doc); err != nil {
		return nil, fmt.Errorf("register api reference: %w", err)
	}
	return r, nil
}

// newBackend returns the HTTP backend client, or a stand-in answering 503
// when no backend URL is configured.
func newBackend(ctx context.Context, cfg *config.Config, log logger.Logger) (backend.Backend, error) {
	if cfg.BackendURL == "" {
		log.Warn(ctx, "backend_url not set; companies routes will answer 503")
		return backend.Unconfigured{}, nil
	}
	client, err := backend.NewClient(cfg.BackendURL,
		backend.WithTimeout(cfg.BackendTimeout()),
		backend.WithRetryMax(cfg.BackendRetryMax),
		backend.WithLogger(log.Named("backend")),
	)
	if err != nil {
		return nil, fmt.Errorf("create backend client: %w", err)
	}
	if ttl := cfg.CacheTTL(); ttl > 0 {
		log.Info(ctx, "backend response cache enabled", logger.Duration("ttl", ttl))
		return backend.NewCached(client, ttl), nil
	}
	return client, nil
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	var avgPauseMs float64
	if m.NumGC > 0 {
		avgPauseMs = float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
	}
	metrics.UpdateSystem(m.Alloc, runtime.NumGoroutine(), avgPauseMs)
}
