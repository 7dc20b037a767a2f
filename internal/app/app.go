// Package app wires the task API server.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/xenking/bistro/internal/domain/task"
	"github.com/xenking/bistro/internal/handler"
	"github.com/xenking/bistro/internal/storage/postgres"
	"github.com/xenking/bistro/pkg/health"
	"github.com/xenking/bistro/pkg/httpmiddleware"
)

const (
	serviceName = "task-api"

	livePath  = "/livez"
	readyPath = "/readyz"
)

// Run creates all dependencies, starts the HTTP server, and blocks until ctx
// is done and the server has drained.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL,
		postgres.WithMaxConns(cfg.Database.MaxConns),
		postgres.WithMaxConnIdleTime(cfg.Database.MaxConnIdleTime),
	)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	healthSvc := health.New()
	healthSvc.AddReadinessCheck("postgres", cfg.Health.PingTimeout, health.PingCheck(pool))
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(cfg.Health.MaxGoroutines))
	healthSvc.AddLivenessCheck("gc_pause", time.Second, health.GCMaxPauseCheck(cfg.Health.MaxGCPause))
	healthSvc.Start(ctx, cfg.Health.Interval)

	taskSvc, err := task.NewService(postgres.NewTaskRepository(pool), m.TracerProvider(), m.MeterProvider())
	if err != nil {
		return errors.Wrap(err, "create task service")
	}
	security := handler.NewSecurityHandler(postgres.NewAPIKeyRepository(pool), []byte(cfg.APIKeyPepper))

	mux := http.NewServeMux()
	mux.HandleFunc("GET "+livePath, healthSvc.LiveEndpoint)
	mux.HandleFunc("GET "+readyPath, healthSvc.ReadyEndpoint)
	handler.NewHandler(taskSvc).Register(mux, security)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler:           newRouter(ctx, lg, m, cfg, mux),
	}
	healthSvc.SetReady(true)

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()

		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}

// newRouter wraps mux with the middleware chain, outermost first.
func newRouter(
	ctx context.Context,
	lg *zap.Logger,
	m httpmiddleware.TelemetryProvider,
	cfg *Config,
	mux *http.ServeMux,
) http.Handler {
	routeFinder := httpmiddleware.MakeRouteFinder(mux)
	return httpmiddleware.Wrap(mux,
		httpmiddleware.RequestID(),
		httpmiddleware.InjectLogger(lg),
		httpmiddleware.Recovery(),
		httpmiddleware.CORS(httpmiddleware.CORSConfig{
			AllowOrigins:     cfg.CORS.Origins,
			AllowHeaders:     []string{"Content-Type", handler.HeaderAPIKey, httpmiddleware.HeaderRequestID},
			ExposeHeaders:    []string{httpmiddleware.HeaderRequestID, "Retry-After"},
			AllowCredentials: cfg.CORS.AllowCredentials,
			MaxAge:           86400,
		}),
		httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
			Rate:      rate.Limit(cfg.RateLimit.RPS),
			Burst:     cfg.RateLimit.Burst,
			ExpiresIn: cfg.RateLimit.ExpiresIn,
			Skip:      isHealthProbe,
		}),
		httpmiddleware.Instrument(serviceName, routeFinder, m),
		httpmiddleware.LogRequests(routeFinder),
		httpmiddleware.Labeler(routeFinder),
	)
}

// isHealthProbe exempts orchestrator probes from client rate limits.
func isHealthProbe(r *http.Request) bool {
	return r.URL.Path == livePath || r.URL.Path == readyPath
}
