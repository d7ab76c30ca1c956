// Package ollama backs the chatbot with a local Ollama model. The model
// is asked for strict JSON so function calls come back structured.
package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/medcampus/portal/internal/core/domain"
	"github.com/medcampus/portal/internal/core/ports"
	"github.com/medcampus/portal/internal/infrastructure/resilience"
)

type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
	executor   *resilience.Executor
}

type Option func(*Client)

func WithExecutor(executor *resilience.Executor) Option {
	return func(c *Client) {
		c.executor = executor
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

func New(baseURL, model string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// assistantPayload is the JSON shape the prompt instructs the model to
// produce.
type assistantPayload struct {
	Reply         string `json:"reply"`
	FunctionCalls []struct {
		Name      string            `json:"name"`
		Arguments map[string]string `json:"arguments"`
	} `json:"function_calls"`
}

func (c *Client) Reply(ctx context.Context, req ports.AssistantRequest) (ports.AssistantReply, error) {
	raw, err := c.generateJSON(ctx, buildAssistantPrompt(req))
	if err != nil {
		return ports.AssistantReply{}, err
	}

	var payload assistantPayload
	if err := json.Unmarshal([]byte(extractJSONObject(raw)), &payload); err != nil {
		return ports.AssistantReply{}, fmt.Errorf("parse assistant json: %w", err)
	}

	reply := ports.AssistantReply{Text: strings.TrimSpace(payload.Reply)}
	for _, call := range payload.FunctionCalls {
		name := strings.TrimSpace(call.Name)
		if name == "" {
			continue
		}
		reply.FunctionCalls = append(reply.FunctionCalls, domain.FunctionCall{
			Name:      name,
			Arguments: call.Arguments,
		})
	}
	return reply, nil
}

func (c *Client) generateJSON(ctx context.Context, prompt string) (string, error) {
	reqBody := map[string]any{
		"model":  c.model,
		"prompt": prompt,
		"stream": false,
		"format": "json",
	}

	var response struct {
		Response string `json:"response"`
	}

	call := func(ctx context.Context) error {
		return c.postJSON(ctx, "/api/generate", reqBody, &response, "generate")
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "ollama.generate", call, classifyOllamaError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return "", wrapTemporaryIfNeeded("assistant reply", err)
	}
	return strings.TrimSpace(response.Response), nil
}

func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}
