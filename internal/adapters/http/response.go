package httpadapter

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/medcampus/portal/internal/core/domain"
)

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type envelope struct {
	Success    bool               `json:"success"`
	Message    string             `json:"message"`
	Data       any                `json:"data,omitempty"`
	Pagination *domain.Pagination `json:"pagination,omitempty"`
	Errors     []fieldError       `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeData(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, envelope{Success: true, Message: message, Data: data})
}

func writePage(w http.ResponseWriter, message string, data any, pagination domain.Pagination) {
	writeJSON(w, http.StatusOK, envelope{
		Success:    true,
		Message:    message,
		Data:       data,
		Pagination: &pagination,
	})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{Success: false, Message: message})
}

func writeFieldErrors(w http.ResponseWriter, message string, errs []fieldError) {
	writeJSON(w, http.StatusBadRequest, envelope{Success: false, Message: message, Errors: errs})
}

// writeDomainError maps a use-case error to a status code. Errors
// without a known kind stay server-side: the body gets a fixed message
// and the cause goes to the log.
func writeDomainError(w http.ResponseWriter, err error) {
	status := mapErrorToHTTPStatus(err)
	if status == http.StatusInternalServerError {
		slog.Error("unhandled_error", "error", err)
		writeError(w, status, "internal server error")
		return
	}
	writeError(w, status, err.Error())
}
