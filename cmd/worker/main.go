package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/medcampus/portal/internal/bootstrap"
	"github.com/medcampus/portal/internal/config"
	"github.com/medcampus/portal/internal/core/domain"
	"github.com/medcampus/portal/internal/observability/logging"
)

const serviceName = "portal-worker"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config_load_failed", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(logging.NewJSONLogger(serviceName, cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, serviceName)
	if err != nil {
		slog.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	mux.Handle("GET /metrics", app.Metrics.Handler())

	probe := &http.Server{
		Addr:         ":" + cfg.WorkerHTTPPort,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	go func() {
		slog.Info("worker_probe_listening", "port", cfg.WorkerHTTPPort)
		if err := probe.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("worker_probe_failed", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = probe.Shutdown(shutdownCtx)
	}()

	slog.Info("worker_subscribed", "url", cfg.NATSURL)
	err = app.Bus.SubscribeDocumentUploaded(ctx, func(handlerCtx context.Context, event domain.DocumentUploadedEvent) error {
		processCtx, cancel := context.WithTimeout(handlerCtx, 5*time.Minute)
		defer cancel()
		return app.Processor.ProcessByID(processCtx, event.DocumentID)
	})
	if err != nil {
		slog.Error("worker_subscribe_failed", "error", err)
		os.Exit(1)
	}
}
