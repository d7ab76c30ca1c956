package domain

import (
	"testing"
	"time"
)

func activeConversation(t *testing.T) *Conversation {
	t.Helper()
	conv, err := NewConversation("conv-1", "user-1", time.Now().UTC())
	if err != nil {
		t.Fatalf("NewConversation() error = %v", err)
	}
	return conv
}

func TestAppendMessageValidatesRole(t *testing.T) {
	conv := activeConversation(t)
	now := time.Now().UTC()

	err := conv.AppendMessage(Message{Role: "tool", Content: "hi", Timestamp: now})
	if !IsKind(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input for unknown role, got %v", err)
	}

	if err := conv.AppendMessage(Message{Role: RoleUser, Content: "hi", Timestamp: now}); err != nil {
		t.Fatalf("AppendMessage() error = %v", err)
	}
	if len(conv.Messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(conv.Messages))
	}
	if !conv.UpdatedAt.Equal(now) {
		t.Fatalf("expected UpdatedAt touched on append")
	}
}

func TestEscalateTwiceFails(t *testing.T) {
	conv := activeConversation(t)
	now := time.Now().UTC()

	if err := conv.Escalate("agent-7", now); err != nil {
		t.Fatalf("Escalate() error = %v", err)
	}
	if conv.Escalation == nil || conv.Escalation.Agent != "agent-7" {
		t.Fatalf("expected escalation recorded")
	}
	if err := conv.Escalate("agent-8", now); !IsKind(err, ErrInvalidTransition) {
		t.Fatalf("expected already-escalated error, got %v", err)
	}
}

func TestResolveRequiresEscalation(t *testing.T) {
	conv := activeConversation(t)
	now := time.Now().UTC()

	if err := conv.ResolveEscalation(now); !IsKind(err, ErrInvalidTransition) {
		t.Fatalf("expected not-escalated error, got %v", err)
	}

	if err := conv.Escalate("agent-1", now); err != nil {
		t.Fatalf("Escalate() error = %v", err)
	}
	if err := conv.ResolveEscalation(now); err != nil {
		t.Fatalf("ResolveEscalation() error = %v", err)
	}
	if conv.Escalation != nil {
		t.Fatalf("expected escalation cleared")
	}
}

func TestRateBounds(t *testing.T) {
	conv := activeConversation(t)
	now := time.Now().UTC()

	for _, rating := range []int{0, 6, -1} {
		if err := conv.Rate(rating, now); !IsKind(err, ErrInvalidInput) {
			t.Fatalf("expected invalid input for rating %d, got %v", rating, err)
		}
	}
	if err := conv.Rate(4, now); err != nil {
		t.Fatalf("Rate() error = %v", err)
	}
	if conv.Rating == nil || *conv.Rating != 4 {
		t.Fatalf("expected rating 4 recorded")
	}
}
