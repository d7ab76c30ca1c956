package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/medcampus/portal/internal/core/domain"
	"github.com/medcampus/portal/internal/core/ports"
)

const (
	fnUserDocuments        = "get_user_documents"
	fnUpcomingAppointments = "get_upcoming_appointments"
	fnSearchResources      = "search_library_resources"
	fnAvailableScenarios   = "get_available_scenarios"
	fnEscalateToHuman      = "escalate_to_human"

	defaultEscalationAgent = "support"
	lookupLimit            = 5
)

// ChatMessageUseCase processes one chatbot turn: resolve the target
// conversation, persist the user message, ask the model, dispatch any
// function calls it requested and persist the enriched reply. A failure
// inside one function call is caught per-call; a dropped reply is not
// acceptable, partial enrichment is.
type ChatMessageUseCase struct {
	conversations ports.ConversationRepository
	documents     ports.DocumentRepository
	appointments  ports.AppointmentRepository
	resources     ports.ResourceRepository
	scenarios     ports.ScenarioRepository
	model         ports.AssistantModel
	events        ports.EventBus
}

func NewChatMessageUseCase(
	conversations ports.ConversationRepository,
	documents ports.DocumentRepository,
	appointments ports.AppointmentRepository,
	resources ports.ResourceRepository,
	scenarios ports.ScenarioRepository,
	model ports.AssistantModel,
	events ports.EventBus,
) *ChatMessageUseCase {
	return &ChatMessageUseCase{
		conversations: conversations,
		documents:     documents,
		appointments:  appointments,
		resources:     resources,
		scenarios:     scenarios,
		model:         model,
		events:        events,
	}
}

func (uc *ChatMessageUseCase) Process(ctx context.Context, input ports.ChatInput) (*ports.ChatResult, error) {
	message := strings.TrimSpace(input.Message)
	if message == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "chat message", fmt.Errorf("message is required"))
	}

	conv, err := uc.resolveConversation(ctx, input)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := conv.AppendMessage(domain.Message{Role: domain.RoleUser, Content: message, Timestamp: now}); err != nil {
		return nil, err
	}
	if err := uc.conversations.Update(ctx, conv); err != nil {
		return nil, fmt.Errorf("persist user message: %w", err)
	}

	reply, err := uc.model.Reply(ctx, ports.AssistantRequest{
		Message: message,
		History: conv.Messages,
		Context: conv.Context,
	})
	if err != nil {
		return nil, fmt.Errorf("assistant reply: %w", err)
	}

	text := reply.Text
	calls := make([]domain.FunctionCall, 0, len(reply.FunctionCalls))
	for _, call := range reply.FunctionCalls {
		executed := uc.dispatch(ctx, conv, &call)
		if executed && call.Result != "" {
			text = text + "\n\n" + call.Result
		}
		calls = append(calls, call)
	}

	assistantAt := time.Now().UTC()
	if err := conv.AppendMessage(domain.Message{
		Role:          domain.RoleAssistant,
		Content:       text,
		Timestamp:     assistantAt,
		FunctionCalls: calls,
	}); err != nil {
		return nil, err
	}
	if err := uc.conversations.Update(ctx, conv); err != nil {
		return nil, fmt.Errorf("persist assistant message: %w", err)
	}

	if err := uc.events.PublishMessageProcessed(ctx, domain.MessageProcessedEvent{
		ConversationID: conv.ID,
		UserID:         conv.UserID,
		FunctionCalls:  len(calls),
		Timestamp:      assistantAt,
	}); err != nil {
		return nil, fmt.Errorf("publish message event: %w", err)
	}

	return &ports.ChatResult{
		ConversationID: conv.ID,
		Reply:          text,
		FunctionCalls:  calls,
	}, nil
}

// resolveConversation picks, in order: the supplied conversation when
// owned by the caller, the user's active conversation, or a new one.
func (uc *ChatMessageUseCase) resolveConversation(ctx context.Context, input ports.ChatInput) (*domain.Conversation, error) {
	if id := strings.TrimSpace(input.ConversationID); id != "" {
		conv, err := uc.conversations.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("load conversation: %w", err)
		}
		if conv.UserID != input.UserID {
			return nil, domain.WrapError(domain.ErrForbidden, "chat message", fmt.Errorf("conversation %s is not owned by %s", id, input.UserID))
		}
		return conv, nil
	}

	conv, err := uc.conversations.FindActiveByUser(ctx, input.UserID)
	if err == nil {
		return conv, nil
	}
	if !domain.IsKind(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("find active conversation: %w", err)
	}

	conv, err = domain.NewConversation(uuid.NewString(), input.UserID, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if err := uc.conversations.Create(ctx, conv); err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}
	return conv, nil
}

// dispatch runs one function call against the read-only lookups. Errors
// are captured on the call record; they never abort the turn.
func (uc *ChatMessageUseCase) dispatch(ctx context.Context, conv *domain.Conversation, call *domain.FunctionCall) bool {
	var (
		result string
		err    error
	)

	switch call.Name {
	case fnUserDocuments:
		result, err = uc.lookupDocuments(ctx, conv.UserID)
	case fnUpcomingAppointments:
		result, err = uc.lookupAppointments(ctx, conv.UserID)
	case fnSearchResources:
		result, err = uc.lookupResources(ctx, call.Arguments["query"])
	case fnAvailableScenarios:
		result, err = uc.lookupScenarios(ctx)
	case fnEscalateToHuman:
		result, err = uc.escalate(conv, call.Arguments["agent"])
	default:
		slog.Warn("unrecognized assistant function call skipped", "function", call.Name, "conversation_id", conv.ID)
		call.Executed = false
		return false
	}

	if err != nil {
		slog.Warn("assistant function call failed", "function", call.Name, "conversation_id", conv.ID, "error", err)
		call.Executed = false
		call.Error = err.Error()
		return false
	}
	call.Executed = true
	call.Result = result
	return true
}

func (uc *ChatMessageUseCase) lookupDocuments(ctx context.Context, userID string) (string, error) {
	docs, total, err := uc.documents.FindByFilters(ctx, domain.DocumentFilter{
		OwnerID: userID,
		Page:    domain.Page{Page: 1, Limit: lookupLimit}.Normalize(),
	})
	if err != nil {
		return "", err
	}
	if total == 0 {
		return "You have no submitted documents.", nil
	}
	lines := make([]string, 0, len(docs)+1)
	lines = append(lines, fmt.Sprintf("You have %d document(s):", total))
	for _, doc := range docs {
		lines = append(lines, fmt.Sprintf("- %s (%s): %s", doc.Metadata.FileName, doc.Metadata.Type, doc.Status))
	}
	return strings.Join(lines, "\n"), nil
}

func (uc *ChatMessageUseCase) lookupAppointments(ctx context.Context, userID string) (string, error) {
	now := time.Now().UTC()
	appts, total, err := uc.appointments.FindByFilters(ctx, domain.AppointmentFilter{
		UserID: userID,
		From:   &now,
		Page:   domain.Page{Page: 1, Limit: lookupLimit}.Normalize(),
	})
	if err != nil {
		return "", err
	}
	if total == 0 {
		return "You have no upcoming appointments.", nil
	}
	lines := make([]string, 0, len(appts)+1)
	lines = append(lines, fmt.Sprintf("You have %d upcoming appointment(s):", total))
	for _, appt := range appts {
		lines = append(lines, fmt.Sprintf("- %s with %s (%s)", appt.ScheduledAt.Format(time.RFC1123), appt.ClinicianID, appt.Status))
	}
	return strings.Join(lines, "\n"), nil
}

func (uc *ChatMessageUseCase) lookupResources(ctx context.Context, query string) (string, error) {
	res, total, err := uc.resources.FindByFilters(ctx, domain.ResourceFilter{
		Query: strings.TrimSpace(query),
		Page:  domain.Page{Page: 1, Limit: lookupLimit}.Normalize(),
	})
	if err != nil {
		return "", err
	}
	if total == 0 {
		return "No library resources matched.", nil
	}
	lines := make([]string, 0, len(res)+1)
	lines = append(lines, fmt.Sprintf("Found %d library resource(s):", total))
	for _, r := range res {
		lines = append(lines, fmt.Sprintf("- %s (%s): %s", r.Title, r.Format, r.URL))
	}
	return strings.Join(lines, "\n"), nil
}

func (uc *ChatMessageUseCase) lookupScenarios(ctx context.Context) (string, error) {
	scs, total, err := uc.scenarios.FindByFilters(ctx, domain.ScenarioFilter{
		PublicOnly: true,
		Page:       domain.Page{Page: 1, Limit: lookupLimit}.Normalize(),
	})
	if err != nil {
		return "", err
	}
	if total == 0 {
		return "No training scenarios are currently available.", nil
	}
	lines := make([]string, 0, len(scs)+1)
	lines = append(lines, fmt.Sprintf("%d training scenario(s) available:", total))
	for _, sc := range scs {
		lines = append(lines, fmt.Sprintf("- %s (%s, %s, ~%d min)", sc.Title, sc.Category, sc.Difficulty, sc.EstimatedMinutes))
	}
	return strings.Join(lines, "\n"), nil
}

func (uc *ChatMessageUseCase) escalate(conv *domain.Conversation, agent string) (string, error) {
	if strings.TrimSpace(agent) == "" {
		agent = defaultEscalationAgent
	}
	if err := conv.Escalate(agent, time.Now().UTC()); err != nil {
		return "", err
	}
	return "Your conversation has been escalated to a human agent. Someone will reach out shortly.", nil
}

func (uc *ChatMessageUseCase) Escalate(ctx context.Context, conversationID, userID, agent string) (*domain.Conversation, error) {
	conv, err := uc.loadOwned(ctx, conversationID, userID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(agent) == "" {
		agent = defaultEscalationAgent
	}
	if err := conv.Escalate(agent, time.Now().UTC()); err != nil {
		return nil, err
	}
	if err := uc.conversations.Update(ctx, conv); err != nil {
		return nil, fmt.Errorf("persist conversation: %w", err)
	}
	return conv, nil
}

func (uc *ChatMessageUseCase) Resolve(ctx context.Context, conversationID, userID string) (*domain.Conversation, error) {
	conv, err := uc.loadOwned(ctx, conversationID, userID)
	if err != nil {
		return nil, err
	}
	if err := conv.ResolveEscalation(time.Now().UTC()); err != nil {
		return nil, err
	}
	if err := uc.conversations.Update(ctx, conv); err != nil {
		return nil, fmt.Errorf("persist conversation: %w", err)
	}
	return conv, nil
}

func (uc *ChatMessageUseCase) Rate(ctx context.Context, conversationID, userID string, rating int) (*domain.Conversation, error) {
	conv, err := uc.loadOwned(ctx, conversationID, userID)
	if err != nil {
		return nil, err
	}
	if err := conv.Rate(rating, time.Now().UTC()); err != nil {
		return nil, err
	}
	if err := uc.conversations.Update(ctx, conv); err != nil {
		return nil, fmt.Errorf("persist conversation: %w", err)
	}
	return conv, nil
}

func (uc *ChatMessageUseCase) loadOwned(ctx context.Context, conversationID, userID string) (*domain.Conversation, error) {
	conv, err := uc.conversations.GetByID(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("load conversation: %w", err)
	}
	if conv.UserID != userID {
		return nil, domain.WrapError(domain.ErrForbidden, "conversation", fmt.Errorf("conversation %s is not owned by %s", conversationID, userID))
	}
	return conv, nil
}
