package ports

import (
	"context"
	"io"

	"github.com/medcampus/portal/internal/core/domain"
)

// DocumentRepository persists document review state. FindByFilters
// returns the matching page plus the total match count.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	FindByFilters(ctx context.Context, filter domain.DocumentFilter) ([]domain.Document, int, error)
	Update(ctx context.Context, doc *domain.Document) error
	Delete(ctx context.Context, id string) error
}

// ScenarioRepository persists AR training scenarios.
type ScenarioRepository interface {
	Create(ctx context.Context, sc *domain.Scenario) error
	GetByID(ctx context.Context, id string) (*domain.Scenario, error)
	FindByFilters(ctx context.Context, filter domain.ScenarioFilter) ([]domain.Scenario, int, error)
	Update(ctx context.Context, sc *domain.Scenario) error
	Delete(ctx context.Context, id string) error
}

// ConversationRepository persists chatbot sessions.
type ConversationRepository interface {
	Create(ctx context.Context, conv *domain.Conversation) error
	GetByID(ctx context.Context, id string) (*domain.Conversation, error)
	FindActiveByUser(ctx context.Context, userID string) (*domain.Conversation, error)
	Update(ctx context.Context, conv *domain.Conversation) error
}

// AppointmentRepository persists teleconsultation appointments.
type AppointmentRepository interface {
	Create(ctx context.Context, appt *domain.Appointment) error
	GetByID(ctx context.Context, id string) (*domain.Appointment, error)
	FindByFilters(ctx context.Context, filter domain.AppointmentFilter) ([]domain.Appointment, int, error)
	Update(ctx context.Context, appt *domain.Appointment) error
}

// ResourceRepository persists virtual-library entries.
type ResourceRepository interface {
	Create(ctx context.Context, res *domain.Resource) error
	GetByID(ctx context.Context, id string) (*domain.Resource, error)
	FindByFilters(ctx context.Context, filter domain.ResourceFilter) ([]domain.Resource, int, error)
}

// ObjectStorage stores uploaded files.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	URL(key string) string
}

// EventBus publishes cross-cutting notifications; consumers are
// decoupled from the publishing use-case.
type EventBus interface {
	PublishDocumentUploaded(ctx context.Context, event domain.DocumentUploadedEvent) error
	PublishDocumentReviewed(ctx context.Context, event domain.DocumentReviewedEvent) error
	PublishMessageProcessed(ctx context.Context, event domain.MessageProcessedEvent) error
	PublishScenarioCompleted(ctx context.Context, event domain.ScenarioCompletedEvent) error
}

// AssistantRequest is the input to the language-model collaborator.
type AssistantRequest struct {
	Message string
	History []domain.Message
	Context map[string]string
}

// AssistantReply is the model's reply plus any structured function calls
// it asked the caller to perform.
type AssistantReply struct {
	Text          string
	FunctionCalls []domain.FunctionCall
}

// AssistantModel is the language-model collaborator behind the chatbot.
type AssistantModel interface {
	Reply(ctx context.Context, req AssistantRequest) (AssistantReply, error)
}

// TextExtractor extracts plain text from a stored document.
type TextExtractor interface {
	Extract(ctx context.Context, doc *domain.Document) (string, error)
}

// ReportExporter renders a document set into a downloadable report.
type ReportExporter interface {
	DocumentsReport(docs []domain.Document) ([]byte, error)
}
