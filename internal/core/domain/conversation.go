package domain

import (
	"fmt"
	"strings"
	"time"
)

type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleSystem    MessageRole = "system"
)

func IsMessageRole(v string) bool {
	switch MessageRole(v) {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

// FunctionCall records one structured call requested by the assistant and
// the outcome of dispatching it.
type FunctionCall struct {
	Name      string            `json:"name"`
	Arguments map[string]string `json:"arguments,omitempty"`
	Result    string            `json:"result,omitempty"`
	Executed  bool              `json:"executed"`
	Error     string            `json:"error,omitempty"`
}

type Message struct {
	Role          MessageRole    `json:"role"`
	Content       string         `json:"content"`
	Timestamp     time.Time      `json:"timestamp"`
	FunctionCalls []FunctionCall `json:"function_calls,omitempty"`
}

type Escalation struct {
	Agent string    `json:"agent"`
	At    time.Time `json:"at"`
}

// Conversation is a chatbot session owned by one user.
type Conversation struct {
	ID         string            `json:"id"`
	UserID     string            `json:"user_id"`
	Messages   []Message         `json:"messages"`
	Context    map[string]string `json:"context,omitempty"`
	Active     bool              `json:"active"`
	Escalation *Escalation       `json:"escalation,omitempty"`
	Rating     *int              `json:"rating,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

func NewConversation(id, userID string, now time.Time) (*Conversation, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, WrapError(ErrInvalidInput, "new conversation", fmt.Errorf("user id is required"))
	}
	return &Conversation{
		ID:        id,
		UserID:    userID,
		Messages:  []Message{},
		Context:   map[string]string{},
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// AppendMessage validates the role on every append.
func (c *Conversation) AppendMessage(msg Message) error {
	if !IsMessageRole(string(msg.Role)) {
		return WrapError(ErrInvalidInput, "append message", fmt.Errorf("unknown message role: %s", msg.Role))
	}
	if strings.TrimSpace(msg.Content) == "" {
		return WrapError(ErrInvalidInput, "append message", fmt.Errorf("message content is required"))
	}
	c.Messages = append(c.Messages, msg)
	c.UpdatedAt = msg.Timestamp
	return nil
}

func (c *Conversation) Escalate(agent string, now time.Time) error {
	if c.Escalation != nil {
		return WrapError(ErrInvalidTransition, "escalate", fmt.Errorf("conversation is already escalated"))
	}
	c.Escalation = &Escalation{Agent: strings.TrimSpace(agent), At: now}
	c.UpdatedAt = now
	return nil
}

func (c *Conversation) ResolveEscalation(now time.Time) error {
	if c.Escalation == nil {
		return WrapError(ErrInvalidTransition, "resolve escalation", fmt.Errorf("conversation is not escalated"))
	}
	c.Escalation = nil
	c.UpdatedAt = now
	return nil
}

func (c *Conversation) Rate(rating int, now time.Time) error {
	if rating < 1 || rating > 5 {
		return WrapError(ErrInvalidInput, "rate", fmt.Errorf("rating %d is outside [1, 5]", rating))
	}
	c.Rating = &rating
	c.UpdatedAt = now
	return nil
}

func (c *Conversation) Close(now time.Time) {
	c.Active = false
	c.UpdatedAt = now
}
