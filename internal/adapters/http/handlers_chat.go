package httpadapter

import (
	"net/http"

	"github.com/medcampus/portal/internal/core/ports"
)

func (rt *Router) chatMessage(w http.ResponseWriter, r *http.Request) {
	p, ok := mustPrincipal(w, r)
	if !ok {
		return
	}

	var req struct {
		Message        string `json:"message"`
		ConversationID string `json:"conversation_id"`
	}
	if !decodeValidated(w, r, chatMessageSchema, &req) {
		return
	}

	result, err := rt.chat.Process(r.Context(), ports.ChatInput{
		UserID:         p.UserID,
		Message:        req.Message,
		ConversationID: req.ConversationID,
	})
	if err != nil {
		rt.metrics.RecordChatTurn(rt.service, "error")
		writeDomainError(w, err)
		return
	}

	rt.metrics.RecordChatTurn(rt.service, "ok")
	for _, call := range result.FunctionCalls {
		status := "failed"
		if call.Executed {
			status = "ok"
		}
		rt.metrics.RecordFunctionCall(rt.service, call.Name, status)
	}

	writeData(w, http.StatusOK, "message processed", result)
}

func (rt *Router) escalateConversation(w http.ResponseWriter, r *http.Request) {
	p, ok := mustPrincipal(w, r)
	if !ok {
		return
	}

	var req struct {
		Agent string `json:"agent"`
	}
	if !decodeValidated(w, r, escalateSchema, &req) {
		return
	}

	conv, err := rt.chat.Escalate(r.Context(), r.PathValue("id"), p.UserID, req.Agent)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, "conversation escalated", conv)
}

func (rt *Router) resolveConversation(w http.ResponseWriter, r *http.Request) {
	p, ok := mustPrincipal(w, r)
	if !ok {
		return
	}

	conv, err := rt.chat.Resolve(r.Context(), r.PathValue("id"), p.UserID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, "escalation resolved", conv)
}

func (rt *Router) rateConversation(w http.ResponseWriter, r *http.Request) {
	p, ok := mustPrincipal(w, r)
	if !ok {
		return
	}

	var req struct {
		Rating int `json:"rating"`
	}
	if !decodeValidated(w, r, ratingSchema, &req) {
		return
	}

	conv, err := rt.chat.Rate(r.Context(), r.PathValue("id"), p.UserID, req.Rating)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, "conversation rated", conv)
}
