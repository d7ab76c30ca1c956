package httpadapter

import (
	"net/http"
	"time"

	"github.com/medcampus/portal/internal/auth/token"
	"github.com/medcampus/portal/internal/core/ports"
	"github.com/medcampus/portal/internal/observability/metrics"
)

// TrafficControl bounds the inbound request flow. Zero values disable
// the corresponding gate.
type TrafficControl struct {
	RateLimitRPS   int
	RateLimitBurst int
	MaxInFlight    int
	MaxQueueWait   time.Duration
}

type Router struct {
	uploader       ports.DocumentUploader
	reviewer       ports.DocumentReviewer
	docs           ports.DocumentSearcher
	exporter       ports.DocumentExporter
	scenarios      ports.ScenarioManager
	scenarioSearch ports.ScenarioSearcher
	executor       ports.ScenarioExecutor
	chat           ports.ChatService
	appointments   ports.AppointmentScheduler
	library        ports.ResourceLibrarian
	storage        ports.ObjectStorage

	tokens  *token.Manager
	metrics *metrics.PortalMetrics
	traffic TrafficControl
	service string
}

func NewRouter(
	service string,
	uploader ports.DocumentUploader,
	reviewer ports.DocumentReviewer,
	docs ports.DocumentSearcher,
	exporter ports.DocumentExporter,
	scenarios ports.ScenarioManager,
	scenarioSearch ports.ScenarioSearcher,
	executor ports.ScenarioExecutor,
	chat ports.ChatService,
	appointments ports.AppointmentScheduler,
	library ports.ResourceLibrarian,
	storage ports.ObjectStorage,
	tokens *token.Manager,
	portalMetrics *metrics.PortalMetrics,
	traffic TrafficControl,
) *Router {
	return &Router{
		uploader:       uploader,
		reviewer:       reviewer,
		docs:           docs,
		exporter:       exporter,
		scenarios:      scenarios,
		scenarioSearch: scenarioSearch,
		executor:       executor,
		chat:           chat,
		appointments:   appointments,
		library:        library,
		storage:        storage,
		tokens:         tokens,
		metrics:        portalMetrics,
		traffic:        traffic,
		service:        service,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", rt.healthz)
	mux.Handle("GET /metrics", rt.metrics.Handler())

	mux.HandleFunc("POST /v1/documents", rt.uploadDocument)
	mux.HandleFunc("GET /v1/documents", rt.searchDocuments)
	mux.HandleFunc("GET /v1/documents/export", rt.exportDocuments)
	mux.HandleFunc("GET /v1/documents/{id}", rt.getDocument)
	mux.HandleFunc("POST /v1/documents/{id}/review", rt.moveDocumentToReview)
	mux.HandleFunc("POST /v1/documents/{id}/approve", rt.approveDocument)
	mux.HandleFunc("POST /v1/documents/{id}/reject", rt.rejectDocument)
	mux.HandleFunc("POST /v1/documents/{id}/resubmit", rt.resubmitDocument)

	mux.HandleFunc("GET /v1/simulations/scenarios", rt.listScenarios)
	mux.HandleFunc("POST /v1/simulations/scenarios", rt.createScenario)
	mux.HandleFunc("PUT /v1/simulations/scenarios/{id}", rt.updateScenario)
	mux.HandleFunc("DELETE /v1/simulations/scenarios/{id}", rt.deleteScenario)
	mux.HandleFunc("POST /v1/simulations/scenarios/{id}/republish", rt.republishScenario)
	mux.HandleFunc("POST /v1/simulations/scenarios/{id}/execute", rt.executeScenario)
	mux.HandleFunc("POST /v1/simulations/metrics", rt.recordCompletionMetrics)

	mux.HandleFunc("POST /v1/chatbot/message", rt.chatMessage)
	mux.HandleFunc("POST /v1/chatbot/conversations/{id}/escalate", rt.escalateConversation)
	mux.HandleFunc("POST /v1/chatbot/conversations/{id}/resolve", rt.resolveConversation)
	mux.HandleFunc("POST /v1/chatbot/conversations/{id}/rate", rt.rateConversation)

	mux.HandleFunc("POST /v1/telehealth/appointments", rt.scheduleAppointment)
	mux.HandleFunc("GET /v1/telehealth/appointments", rt.listAppointments)
	mux.HandleFunc("PATCH /v1/telehealth/appointments/{id}/status", rt.updateAppointmentStatus)

	mux.HandleFunc("GET /v1/library/resources", rt.searchLibrary)
	mux.HandleFunc("POST /v1/library/resources", rt.addLibraryResource)

	var handler http.Handler = mux
	handler = rt.authMiddleware(handler)
	handler = rateLimitMiddleware(handler, rt.traffic.RateLimitRPS, rt.traffic.RateLimitBurst)
	handler = backpressureMiddleware(handler, rt.traffic.MaxInFlight, rt.traffic.MaxQueueWait)
	handler = rt.metrics.Middleware(rt.service, handler)
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
