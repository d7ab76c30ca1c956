package ports

import (
	"context"
	"io"
	"time"

	"github.com/medcampus/portal/internal/core/domain"
)

type UploadDocumentInput struct {
	UserID       string
	FileName     string
	MimeType     string
	FileSize     int64
	DocumentType string
	Description  string
	IssueDate    time.Time
	Body         io.Reader
}

// DocumentUploader is the inbound contract for document submission.
type DocumentUploader interface {
	Upload(ctx context.Context, input UploadDocumentInput) (*domain.Document, error)
	Resubmit(ctx context.Context, documentID string, input UploadDocumentInput) (*domain.Document, error)
}

// DocumentReviewer drives the review state machine.
type DocumentReviewer interface {
	MoveToReview(ctx context.Context, documentID, reviewerID string) (*domain.Document, error)
	Approve(ctx context.Context, documentID, reviewerID string) (*domain.Document, error)
	Reject(ctx context.Context, documentID, reviewerID, reason string) (*domain.Document, error)
}

type DocumentSearchResult struct {
	Items      []domain.Document     `json:"items"`
	Pagination domain.Pagination     `json:"pagination"`
	Filters    domain.DocumentFilter `json:"filters"`
}

// DocumentSearcher is the inbound read model for documents.
type DocumentSearcher interface {
	Search(ctx context.Context, filter domain.DocumentFilter) (*DocumentSearchResult, error)
	GetByID(ctx context.Context, id string) (*domain.Document, error)
}

// DocumentExporter renders a filtered document set as a spreadsheet.
type DocumentExporter interface {
	Export(ctx context.Context, filter domain.DocumentFilter) ([]byte, error)
}

// DocumentProcessor is the worker-side contract for post-upload
// text extraction.
type DocumentProcessor interface {
	ProcessByID(ctx context.Context, documentID string) error
}

type ScenarioInput struct {
	Title            string
	Description      string
	Category         string
	Difficulty       string
	ModelURL         string
	ThumbnailURL     string
	Steps            []domain.ScenarioStep
	Criteria         []domain.EvaluationCriterion
	EstimatedMinutes int
	CreatorID        string
	Public           bool
}

// ScenarioManager handles authoring operations on scenarios.
type ScenarioManager interface {
	Create(ctx context.Context, input ScenarioInput) (*domain.Scenario, error)
	Update(ctx context.Context, id, actorID string, admin bool, input ScenarioInput) (*domain.Scenario, error)
	Delete(ctx context.Context, id, actorID string, admin bool) error
	Republish(ctx context.Context, id, actorID string, admin bool) (*domain.Scenario, error)
}

type ScenarioSearchResult struct {
	Items      []domain.Scenario     `json:"items"`
	Pagination domain.Pagination     `json:"pagination"`
	Filters    domain.ScenarioFilter `json:"filters"`
}

type ScenarioSearcher interface {
	Search(ctx context.Context, filter domain.ScenarioFilter) (*ScenarioSearchResult, error)
	GetByID(ctx context.Context, id string) (*domain.Scenario, error)
}

type ScenarioRun struct {
	RunID      string           `json:"run_id"`
	Scenario   *domain.Scenario `json:"scenario"`
	StartedAt  time.Time        `json:"started_at"`
	StartedBy  string           `json:"started_by"`
}

type CompletionMetricsInput struct {
	ScenarioID   string
	UserID       string
	Score        float64
	DurationSecs int
	StepsDone    int
}

// ScenarioExecutor starts runs and records completion metrics.
type ScenarioExecutor interface {
	Start(ctx context.Context, scenarioID, userID string) (*ScenarioRun, error)
	RecordMetrics(ctx context.Context, input CompletionMetricsInput) (*domain.Scenario, error)
}

type ChatInput struct {
	UserID         string
	Message        string
	ConversationID string
}

type ChatResult struct {
	ConversationID string                `json:"conversation_id"`
	Reply          string                `json:"reply"`
	FunctionCalls  []domain.FunctionCall `json:"function_calls,omitempty"`
}

// ChatService processes chatbot messages and session state.
type ChatService interface {
	Process(ctx context.Context, input ChatInput) (*ChatResult, error)
	Escalate(ctx context.Context, conversationID, userID, agent string) (*domain.Conversation, error)
	Resolve(ctx context.Context, conversationID, userID string) (*domain.Conversation, error)
	Rate(ctx context.Context, conversationID, userID string, rating int) (*domain.Conversation, error)
}

type AppointmentInput struct {
	PatientID   string
	ClinicianID string
	ScheduledAt time.Time
	Minutes     int
	Reason      string
}

type AppointmentSearchResult struct {
	Items      []domain.Appointment     `json:"items"`
	Pagination domain.Pagination        `json:"pagination"`
	Filters    domain.AppointmentFilter `json:"filters"`
}

// AppointmentScheduler creates appointments and moves their status.
type AppointmentScheduler interface {
	Schedule(ctx context.Context, input AppointmentInput) (*domain.Appointment, error)
	UpdateStatus(ctx context.Context, id, actorID, status string) (*domain.Appointment, error)
	List(ctx context.Context, filter domain.AppointmentFilter) (*AppointmentSearchResult, error)
}

type ResourceInput struct {
	Title    string
	Author   string
	Category string
	Format   string
	URL      string
	Tags     []string
	Year     int
}

type ResourceSearchResult struct {
	Items      []domain.Resource     `json:"items"`
	Pagination domain.Pagination     `json:"pagination"`
	Filters    domain.ResourceFilter `json:"filters"`
}

// ResourceLibrarian serves the virtual library.
type ResourceLibrarian interface {
	Search(ctx context.Context, filter domain.ResourceFilter) (*ResourceSearchResult, error)
	Add(ctx context.Context, input ResourceInput) (*domain.Resource, error)
}
