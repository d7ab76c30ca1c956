package ollama

import (
	"fmt"
	"strings"

	"github.com/medcampus/portal/internal/core/ports"
)

// The assistant may ask the portal to run these functions on its behalf.
var availableFunctions = []string{
	"get_user_documents",
	"get_upcoming_appointments",
	"search_library_resources",
	"get_available_scenarios",
	"escalate_to_human",
}

const maxHistoryMessages = 12

func buildAssistantPrompt(req ports.AssistantRequest) string {
	var history strings.Builder
	messages := req.History
	if len(messages) > maxHistoryMessages {
		messages = messages[len(messages)-maxHistoryMessages:]
	}
	for _, msg := range messages {
		history.WriteString(fmt.Sprintf("%s: %s\n", msg.Role, msg.Content))
	}

	var context strings.Builder
	for key, value := range req.Context {
		context.WriteString(fmt.Sprintf("%s=%s\n", key, value))
	}

	return fmt.Sprintf(`You are the assistant of a university clinical-training portal.
Students ask about their documents, appointments, AR training scenarios and library resources.
Return a strict JSON object with keys:
reply (string), function_calls (array of {name (string), arguments (object of strings)}).
Allowed function names: %s.
Use function_calls only when the question needs portal data; otherwise return an empty array.
No markdown, no extra keys.

Conversation so far:
%s
Session context:
%s
User message:
%s
`, strings.Join(availableFunctions, ", "), history.String(), context.String(), req.Message)
}
