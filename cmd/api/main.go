package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/medcampus/portal/internal/adapters/http"
	"github.com/medcampus/portal/internal/bootstrap"
	"github.com/medcampus/portal/internal/config"
	"github.com/medcampus/portal/internal/observability/logging"
	"github.com/medcampus/portal/internal/telemetry"
)

const serviceName = "portal-api"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config_load_failed", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(logging.NewJSONLogger(serviceName, cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.TracingEnabled {
		shutdown, err := telemetry.InitTracer(serviceName, "1.0.0")
		if err != nil {
			slog.Error("tracer_init_failed", "error", err)
			os.Exit(1)
		}
		defer shutdown(context.Background())
	}

	app, err := bootstrap.New(ctx, cfg, serviceName)
	if err != nil {
		slog.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	router := httpadapter.NewRouter(
		serviceName,
		app.Uploader,
		app.Reviewer,
		app.Docs,
		app.Exporter,
		app.Scenarios,
		app.ScenarioSearch,
		app.Executor,
		app.Chat,
		app.Appointments,
		app.Library,
		app.Storage,
		app.Tokens,
		app.Metrics,
		httpadapter.TrafficControl{
			RateLimitRPS:   cfg.RateLimitRPS,
			RateLimitBurst: cfg.RateLimitBurst,
			MaxInFlight:    cfg.MaxInFlight,
			MaxQueueWait:   time.Duration(cfg.MaxQueueWaitMS) * time.Millisecond,
		},
	)

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("api_listening", "port", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("api_server_failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("api_shutdown_failed", "error", err)
	}
}
