package httpadapter

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/medcampus/portal/internal/auth/token"
	"github.com/medcampus/portal/internal/core/domain"
	"github.com/medcampus/portal/internal/core/ports"
	"github.com/medcampus/portal/internal/core/usecase"
	"github.com/medcampus/portal/internal/observability/metrics"
)

// The router tests run against the real use-cases wired to in-memory
// ports, so a request exercises the full path from HTTP to domain.

type memDocRepo struct {
	mu   sync.Mutex
	docs map[string]*domain.Document
}

func newMemDocRepo() *memDocRepo {
	return &memDocRepo{docs: make(map[string]*domain.Document)}
}

func (m *memDocRepo) Create(_ context.Context, doc *domain.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *doc
	m.docs[doc.ID] = &cp
	return nil
}

func (m *memDocRepo) GetByID(_ context.Context, id string) (*domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get document", fmt.Errorf("id %s", id))
	}
	cp := *doc
	return &cp, nil
}

func (m *memDocRepo) FindByFilters(_ context.Context, filter domain.DocumentFilter) ([]domain.Document, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var all []domain.Document
	for _, doc := range m.docs {
		if filter.OwnerID != "" && doc.OwnerID != filter.OwnerID {
			continue
		}
		if filter.Status != "" && doc.Status != filter.Status {
			continue
		}
		if filter.Type != "" && doc.Metadata.Type != filter.Type {
			continue
		}
		all = append(all, *doc)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	total := len(all)
	offset := filter.Page.Offset()
	if offset > total {
		offset = total
	}
	end := offset + filter.Page.Limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (m *memDocRepo) Update(_ context.Context, doc *domain.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[doc.ID]; !ok {
		return domain.WrapError(domain.ErrNotFound, "update document", fmt.Errorf("id %s", doc.ID))
	}
	cp := *doc
	m.docs[doc.ID] = &cp
	return nil
}

func (m *memDocRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[id]; !ok {
		return domain.WrapError(domain.ErrNotFound, "delete document", fmt.Errorf("id %s", id))
	}
	delete(m.docs, id)
	return nil
}

type memScenarioRepo struct {
	mu        sync.Mutex
	scenarios map[string]*domain.Scenario
}

func newMemScenarioRepo() *memScenarioRepo {
	return &memScenarioRepo{scenarios: make(map[string]*domain.Scenario)}
}

func (m *memScenarioRepo) Create(_ context.Context, sc *domain.Scenario) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *sc
	m.scenarios[sc.ID] = &cp
	return nil
}

func (m *memScenarioRepo) GetByID(_ context.Context, id string) (*domain.Scenario, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sc, ok := m.scenarios[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get scenario", fmt.Errorf("id %s", id))
	}
	cp := *sc
	return &cp, nil
}

func (m *memScenarioRepo) FindByFilters(_ context.Context, filter domain.ScenarioFilter) ([]domain.Scenario, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var all []domain.Scenario
	for _, sc := range m.scenarios {
		if filter.PublicOnly && !sc.Public {
			continue
		}
		if filter.CreatorID != "" && sc.CreatorID != filter.CreatorID {
			continue
		}
		if filter.Category != "" && sc.Category != filter.Category {
			continue
		}
		if filter.Query != "" && !strings.Contains(strings.ToLower(sc.Title), strings.ToLower(filter.Query)) {
			continue
		}
		all = append(all, *sc)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all, len(all), nil
}

func (m *memScenarioRepo) Update(_ context.Context, sc *domain.Scenario) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.scenarios[sc.ID]; !ok {
		return domain.WrapError(domain.ErrNotFound, "update scenario", fmt.Errorf("id %s", sc.ID))
	}
	cp := *sc
	m.scenarios[sc.ID] = &cp
	return nil
}

func (m *memScenarioRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.scenarios[id]; !ok {
		return domain.WrapError(domain.ErrNotFound, "delete scenario", fmt.Errorf("id %s", id))
	}
	delete(m.scenarios, id)
	return nil
}

type memConvRepo struct {
	mu            sync.Mutex
	conversations map[string]*domain.Conversation
}

func newMemConvRepo() *memConvRepo {
	return &memConvRepo{conversations: make(map[string]*domain.Conversation)}
}

func (m *memConvRepo) Create(_ context.Context, conv *domain.Conversation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *conv
	m.conversations[conv.ID] = &cp
	return nil
}

func (m *memConvRepo) GetByID(_ context.Context, id string) (*domain.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	conv, ok := m.conversations[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get conversation", fmt.Errorf("id %s", id))
	}
	cp := *conv
	return &cp, nil
}

func (m *memConvRepo) FindActiveByUser(_ context.Context, userID string) (*domain.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, conv := range m.conversations {
		if conv.UserID == userID && conv.Active {
			cp := *conv
			return &cp, nil
		}
	}
	return nil, domain.WrapError(domain.ErrNotFound, "active conversation", fmt.Errorf("user %s", userID))
}

func (m *memConvRepo) Update(_ context.Context, conv *domain.Conversation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.conversations[conv.ID]; !ok {
		return domain.WrapError(domain.ErrNotFound, "update conversation", fmt.Errorf("id %s", conv.ID))
	}
	cp := *conv
	m.conversations[conv.ID] = &cp
	return nil
}

type memApptRepo struct {
	mu           sync.Mutex
	appointments map[string]*domain.Appointment
}

func newMemApptRepo() *memApptRepo {
	return &memApptRepo{appointments: make(map[string]*domain.Appointment)}
}

func (m *memApptRepo) Create(_ context.Context, appt *domain.Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *appt
	m.appointments[appt.ID] = &cp
	return nil
}

func (m *memApptRepo) GetByID(_ context.Context, id string) (*domain.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	appt, ok := m.appointments[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get appointment", fmt.Errorf("id %s", id))
	}
	cp := *appt
	return &cp, nil
}

func (m *memApptRepo) FindByFilters(_ context.Context, filter domain.AppointmentFilter) ([]domain.Appointment, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var all []domain.Appointment
	for _, appt := range m.appointments {
		if filter.UserID != "" && appt.PatientID != filter.UserID && appt.ClinicianID != filter.UserID {
			continue
		}
		if filter.Status != "" && appt.Status != filter.Status {
			continue
		}
		if filter.From != nil && appt.ScheduledAt.Before(*filter.From) {
			continue
		}
		all = append(all, *appt)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ScheduledAt.Before(all[j].ScheduledAt) })
	return all, len(all), nil
}

func (m *memApptRepo) Update(_ context.Context, appt *domain.Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.appointments[appt.ID]; !ok {
		return domain.WrapError(domain.ErrNotFound, "update appointment", fmt.Errorf("id %s", appt.ID))
	}
	cp := *appt
	m.appointments[appt.ID] = &cp
	return nil
}

type memResourceRepo struct {
	mu        sync.Mutex
	resources map[string]*domain.Resource
}

func newMemResourceRepo() *memResourceRepo {
	return &memResourceRepo{resources: make(map[string]*domain.Resource)}
}

func (m *memResourceRepo) Create(_ context.Context, res *domain.Resource) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *res
	m.resources[res.ID] = &cp
	return nil
}

func (m *memResourceRepo) GetByID(_ context.Context, id string) (*domain.Resource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	res, ok := m.resources[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get resource", fmt.Errorf("id %s", id))
	}
	cp := *res
	return &cp, nil
}

func (m *memResourceRepo) FindByFilters(_ context.Context, filter domain.ResourceFilter) ([]domain.Resource, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var all []domain.Resource
	for _, res := range m.resources {
		if filter.Format != "" && res.Format != filter.Format {
			continue
		}
		if filter.Query != "" && !strings.Contains(strings.ToLower(res.Title), strings.ToLower(filter.Query)) {
			continue
		}
		all = append(all, *res)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all, len(all), nil
}

type memStorage struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func newMemStorage() *memStorage {
	return &memStorage{blobs: make(map[string][]byte)}
}

func (m *memStorage) Save(_ context.Context, key string, data io.Reader) error {
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[key] = raw
	return nil
}

func (m *memStorage) Open(_ context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.blobs[key]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "open blob", fmt.Errorf("key %s", key))
	}
	return io.NopCloser(strings.NewReader(string(raw))), nil
}

func (m *memStorage) URL(key string) string {
	return "http://blob.test/" + key
}

type nopEvents struct{}

func (nopEvents) PublishDocumentUploaded(context.Context, domain.DocumentUploadedEvent) error {
	return nil
}
func (nopEvents) PublishDocumentReviewed(context.Context, domain.DocumentReviewedEvent) error {
	return nil
}
func (nopEvents) PublishMessageProcessed(context.Context, domain.MessageProcessedEvent) error {
	return nil
}
func (nopEvents) PublishScenarioCompleted(context.Context, domain.ScenarioCompletedEvent) error {
	return nil
}

type stubModel struct {
	reply ports.AssistantReply
}

func (s *stubModel) Reply(context.Context, ports.AssistantRequest) (ports.AssistantReply, error) {
	return s.reply, nil
}

type stubExporter struct{}

func (stubExporter) DocumentsReport(docs []domain.Document) ([]byte, error) {
	return []byte(fmt.Sprintf("report:%d", len(docs))), nil
}

type testEnv struct {
	handler http.Handler
	tokens  *token.Manager
	model   *stubModel
	storage *memStorage
}

func newTestEnv(traffic TrafficControl) *testEnv {
	docRepo := newMemDocRepo()
	scenarioRepo := newMemScenarioRepo()
	convRepo := newMemConvRepo()
	apptRepo := newMemApptRepo()
	resourceRepo := newMemResourceRepo()
	storage := newMemStorage()
	events := nopEvents{}
	model := &stubModel{reply: ports.AssistantReply{Text: "ok"}}

	searchDocs := usecase.NewSearchDocumentsUseCase(docRepo)
	tokens := token.New("router-test-secret", "portal", time.Hour)

	router := NewRouter(
		"portal-api-test",
		usecase.NewUploadDocumentUseCase(docRepo, storage, events),
		usecase.NewReviewDocumentUseCase(docRepo, events),
		searchDocs,
		usecase.NewExportDocumentsUseCase(searchDocs, stubExporter{}),
		usecase.NewManageScenarioUseCase(scenarioRepo),
		usecase.NewSearchScenariosUseCase(scenarioRepo),
		usecase.NewExecuteScenarioUseCase(scenarioRepo, events),
		usecase.NewChatMessageUseCase(convRepo, docRepo, apptRepo, resourceRepo, scenarioRepo, model, events),
		usecase.NewScheduleAppointmentUseCase(apptRepo),
		usecase.NewLibraryUseCase(resourceRepo),
		storage,
		tokens,
		metrics.NewPortalMetrics("portal-api-test"),
		traffic,
	)

	return &testEnv{handler: router.Handler(), tokens: tokens, model: model, storage: storage}
}

func (e *testEnv) tokenFor(userID, role string) string {
	raw, err := e.tokens.Issue(userID, role)
	if err != nil {
		panic(err)
	}
	return raw
}
