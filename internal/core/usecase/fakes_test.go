package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/medcampus/portal/internal/core/domain"
	"github.com/medcampus/portal/internal/core/ports"
)

// In-memory port fakes shared by the use-case tests.

type docRepoFake struct {
	mu         sync.Mutex
	docs       map[string]*domain.Document
	createErr  error
	updateErr  error
	findErr    error
	lastFilter domain.DocumentFilter
	findItems  []domain.Document
	findTotal  int
}

func newDocRepoFake() *docRepoFake {
	return &docRepoFake{docs: make(map[string]*domain.Document)}
}

func (f *docRepoFake) Create(_ context.Context, doc *domain.Document) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	copyDoc := *doc
	f.docs[doc.ID] = &copyDoc
	return nil
}

func (f *docRepoFake) GetByID(_ context.Context, id string) (*domain.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.docs[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get document", fmt.Errorf("id %s", id))
	}
	copyDoc := *doc
	return &copyDoc, nil
}

func (f *docRepoFake) FindByFilters(_ context.Context, filter domain.DocumentFilter) ([]domain.Document, int, error) {
	f.lastFilter = filter
	if f.findErr != nil {
		return nil, 0, f.findErr
	}
	return f.findItems, f.findTotal, nil
}

func (f *docRepoFake) Update(_ context.Context, doc *domain.Document) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.docs[doc.ID]; !ok {
		return domain.WrapError(domain.ErrNotFound, "update document", fmt.Errorf("id %s", doc.ID))
	}
	copyDoc := *doc
	f.docs[doc.ID] = &copyDoc
	return nil
}

func (f *docRepoFake) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.docs[id]; !ok {
		return domain.WrapError(domain.ErrNotFound, "delete document", fmt.Errorf("id %s", id))
	}
	delete(f.docs, id)
	return nil
}

type scenarioRepoFake struct {
	scenarios  map[string]*domain.Scenario
	lastFilter domain.ScenarioFilter
	findItems  []domain.Scenario
	findTotal  int
	findErr    error
}

func newScenarioRepoFake() *scenarioRepoFake {
	return &scenarioRepoFake{scenarios: make(map[string]*domain.Scenario)}
}

func (f *scenarioRepoFake) Create(_ context.Context, sc *domain.Scenario) error {
	copySc := *sc
	f.scenarios[sc.ID] = &copySc
	return nil
}

func (f *scenarioRepoFake) GetByID(_ context.Context, id string) (*domain.Scenario, error) {
	sc, ok := f.scenarios[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get scenario", fmt.Errorf("id %s", id))
	}
	copySc := *sc
	return &copySc, nil
}

func (f *scenarioRepoFake) FindByFilters(_ context.Context, filter domain.ScenarioFilter) ([]domain.Scenario, int, error) {
	f.lastFilter = filter
	if f.findErr != nil {
		return nil, 0, f.findErr
	}
	return f.findItems, f.findTotal, nil
}

func (f *scenarioRepoFake) Update(_ context.Context, sc *domain.Scenario) error {
	if _, ok := f.scenarios[sc.ID]; !ok {
		return domain.WrapError(domain.ErrNotFound, "update scenario", fmt.Errorf("id %s", sc.ID))
	}
	copySc := *sc
	f.scenarios[sc.ID] = &copySc
	return nil
}

func (f *scenarioRepoFake) Delete(_ context.Context, id string) error {
	if _, ok := f.scenarios[id]; !ok {
		return domain.WrapError(domain.ErrNotFound, "delete scenario", fmt.Errorf("id %s", id))
	}
	delete(f.scenarios, id)
	return nil
}

type convRepoFake struct {
	conversations map[string]*domain.Conversation
	activeByUser  map[string]string
	updateErr     error
}

func newConvRepoFake() *convRepoFake {
	return &convRepoFake{
		conversations: make(map[string]*domain.Conversation),
		activeByUser:  make(map[string]string),
	}
}

func (f *convRepoFake) Create(_ context.Context, conv *domain.Conversation) error {
	copyConv := *conv
	f.conversations[conv.ID] = &copyConv
	if conv.Active {
		f.activeByUser[conv.UserID] = conv.ID
	}
	return nil
}

func (f *convRepoFake) GetByID(_ context.Context, id string) (*domain.Conversation, error) {
	conv, ok := f.conversations[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get conversation", fmt.Errorf("id %s", id))
	}
	copyConv := *conv
	return &copyConv, nil
}

func (f *convRepoFake) FindActiveByUser(_ context.Context, userID string) (*domain.Conversation, error) {
	id, ok := f.activeByUser[userID]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "active conversation", fmt.Errorf("user %s", userID))
	}
	return f.GetByID(context.Background(), id)
}

func (f *convRepoFake) Update(_ context.Context, conv *domain.Conversation) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.conversations[conv.ID]; !ok {
		return domain.WrapError(domain.ErrNotFound, "update conversation", fmt.Errorf("id %s", conv.ID))
	}
	copyConv := *conv
	f.conversations[conv.ID] = &copyConv
	return nil
}

type apptRepoFake struct {
	appointments map[string]*domain.Appointment
	lastFilter   domain.AppointmentFilter
	findItems    []domain.Appointment
	findTotal    int
	findErr      error
}

func newApptRepoFake() *apptRepoFake {
	return &apptRepoFake{appointments: make(map[string]*domain.Appointment)}
}

func (f *apptRepoFake) Create(_ context.Context, appt *domain.Appointment) error {
	copyAppt := *appt
	f.appointments[appt.ID] = &copyAppt
	return nil
}

func (f *apptRepoFake) GetByID(_ context.Context, id string) (*domain.Appointment, error) {
	appt, ok := f.appointments[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get appointment", fmt.Errorf("id %s", id))
	}
	copyAppt := *appt
	return &copyAppt, nil
}

func (f *apptRepoFake) FindByFilters(_ context.Context, filter domain.AppointmentFilter) ([]domain.Appointment, int, error) {
	f.lastFilter = filter
	if f.findErr != nil {
		return nil, 0, f.findErr
	}
	return f.findItems, f.findTotal, nil
}

func (f *apptRepoFake) Update(_ context.Context, appt *domain.Appointment) error {
	if _, ok := f.appointments[appt.ID]; !ok {
		return domain.WrapError(domain.ErrNotFound, "update appointment", fmt.Errorf("id %s", appt.ID))
	}
	copyAppt := *appt
	f.appointments[appt.ID] = &copyAppt
	return nil
}

type resourceRepoFake struct {
	resources  map[string]*domain.Resource
	lastFilter domain.ResourceFilter
	findItems  []domain.Resource
	findTotal  int
	findErr    error
}

func newResourceRepoFake() *resourceRepoFake {
	return &resourceRepoFake{resources: make(map[string]*domain.Resource)}
}

func (f *resourceRepoFake) Create(_ context.Context, res *domain.Resource) error {
	copyRes := *res
	f.resources[res.ID] = &copyRes
	return nil
}

func (f *resourceRepoFake) GetByID(_ context.Context, id string) (*domain.Resource, error) {
	res, ok := f.resources[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get resource", fmt.Errorf("id %s", id))
	}
	copyRes := *res
	return &copyRes, nil
}

func (f *resourceRepoFake) FindByFilters(_ context.Context, filter domain.ResourceFilter) ([]domain.Resource, int, error) {
	f.lastFilter = filter
	if f.findErr != nil {
		return nil, 0, f.findErr
	}
	return f.findItems, f.findTotal, nil
}

type storageFake struct {
	savedKey  string
	savedBody string
	saveErr   error
	openBody  string
	openErr   error
}

func (f *storageFake) Save(_ context.Context, key string, data io.Reader) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.savedKey = key
	f.savedBody = string(raw)
	return nil
}

func (f *storageFake) Open(_ context.Context, _ string) (io.ReadCloser, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	return io.NopCloser(strings.NewReader(f.openBody)), nil
}

func (f *storageFake) URL(key string) string {
	return "http://blob.local/" + key
}

type eventsFake struct {
	uploaded   []domain.DocumentUploadedEvent
	reviewed   []domain.DocumentReviewedEvent
	processed  []domain.MessageProcessedEvent
	completed  []domain.ScenarioCompletedEvent
	publishErr error
}

func (f *eventsFake) PublishDocumentUploaded(_ context.Context, event domain.DocumentUploadedEvent) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.uploaded = append(f.uploaded, event)
	return nil
}

func (f *eventsFake) PublishDocumentReviewed(_ context.Context, event domain.DocumentReviewedEvent) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.reviewed = append(f.reviewed, event)
	return nil
}

func (f *eventsFake) PublishMessageProcessed(_ context.Context, event domain.MessageProcessedEvent) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.processed = append(f.processed, event)
	return nil
}

func (f *eventsFake) PublishScenarioCompleted(_ context.Context, event domain.ScenarioCompletedEvent) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.completed = append(f.completed, event)
	return nil
}

type modelFake struct {
	reply    ports.AssistantReply
	replyErr error
	lastReq  ports.AssistantRequest
}

func (f *modelFake) Reply(_ context.Context, req ports.AssistantRequest) (ports.AssistantReply, error) {
	f.lastReq = req
	if f.replyErr != nil {
		return ports.AssistantReply{}, f.replyErr
	}
	return f.reply, nil
}

type extractorFake struct {
	text string
	err  error
}

func (f *extractorFake) Extract(_ context.Context, _ *domain.Document) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

var errBoom = errors.New("boom")
