// Package bootstrap builds the object graph shared by the api and
// worker binaries.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/medcampus/portal/internal/auth/token"
	"github.com/medcampus/portal/internal/config"
	"github.com/medcampus/portal/internal/core/ports"
	"github.com/medcampus/portal/internal/core/usecase"
	"github.com/medcampus/portal/internal/infrastructure/events/nats"
	"github.com/medcampus/portal/internal/infrastructure/extractor/pdftext"
	"github.com/medcampus/portal/internal/infrastructure/llm/ollama"
	"github.com/medcampus/portal/internal/infrastructure/report/xlsx"
	"github.com/medcampus/portal/internal/infrastructure/repository/postgres"
	"github.com/medcampus/portal/internal/infrastructure/resilience"
	"github.com/medcampus/portal/internal/infrastructure/storage/localfs"
	s3store "github.com/medcampus/portal/internal/infrastructure/storage/s3"
	"github.com/medcampus/portal/internal/observability/metrics"
)

type App struct {
	Config  config.Config
	Bus     *nats.Bus
	Tokens  *token.Manager
	Metrics *metrics.PortalMetrics
	Storage ports.ObjectStorage

	Uploader       ports.DocumentUploader
	Reviewer       ports.DocumentReviewer
	Docs           ports.DocumentSearcher
	Exporter       ports.DocumentExporter
	Scenarios      ports.ScenarioManager
	ScenarioSearch ports.ScenarioSearcher
	Executor       ports.ScenarioExecutor
	Chat           ports.ChatService
	Appointments   ports.AppointmentScheduler
	Library        ports.ResourceLibrarian
	Processor      ports.DocumentProcessor

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, service string) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	documents := postgres.NewDocumentRepository(db)
	scenarios := postgres.NewScenarioRepository(db)
	conversations := postgres.NewConversationRepository(db)
	appointments := postgres.NewAppointmentRepository(db)
	resources := postgres.NewResourceRepository(db)

	storage, err := buildStorage(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	bus, err := nats.NewWithOptions(cfg.NATSURL, nats.Options{ResilienceExecutor: executor})
	if err != nil {
		return nil, fmt.Errorf("init event bus: %w", err)
	}

	model := ollama.New(cfg.OllamaURL, cfg.OllamaModel, ollama.WithExecutor(executor))
	extractor := pdftext.NewExtractor(storage)

	searchUC := usecase.NewSearchDocumentsUseCase(documents)

	app := &App{
		Config:  cfg,
		Bus:     bus,
		Tokens:  token.New(cfg.JWTSecret, cfg.JWTIssuer, time.Duration(cfg.TokenTTLMinutes)*time.Minute),
		Metrics: metrics.NewPortalMetrics(service),
		Storage: storage,

		Uploader:       usecase.NewUploadDocumentUseCase(documents, storage, bus),
		Reviewer:       usecase.NewReviewDocumentUseCase(documents, bus),
		Docs:           searchUC,
		Exporter:       usecase.NewExportDocumentsUseCase(searchUC, xlsx.NewExporter()),
		Scenarios:      usecase.NewManageScenarioUseCase(scenarios),
		ScenarioSearch: usecase.NewSearchScenariosUseCase(scenarios),
		Executor:       usecase.NewExecuteScenarioUseCase(scenarios, bus),
		Chat:           usecase.NewChatMessageUseCase(conversations, documents, appointments, resources, scenarios, model, bus),
		Appointments:   usecase.NewScheduleAppointmentUseCase(appointments),
		Library:        usecase.NewLibraryUseCase(resources),
		Processor:      usecase.NewProcessDocumentUseCase(documents, extractor),

		closeFn: func() {
			bus.Close()
			_ = db.Close()
		},
	}
	return app, nil
}

func buildStorage(ctx context.Context, cfg config.Config) (ports.ObjectStorage, error) {
	if cfg.StorageBackend == "s3" {
		return s3store.New(ctx, s3store.Config{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	}
	return localfs.New(cfg.StoragePath, cfg.StorageBaseURL)
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
