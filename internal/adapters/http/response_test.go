package httpadapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/medcampus/portal/internal/core/domain"
)

func TestWriteDomainErrorHidesUnclassifiedCauses(t *testing.T) {
	rec := httptest.NewRecorder()
	writeDomainError(rec, fmt.Errorf("search documents: pq: password authentication failed for user %q", "portal"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if body := rec.Body.String(); strings.Contains(body, "password") || strings.Contains(body, "pq:") {
		t.Fatalf("response leaks the cause: %s", body)
	}

	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if out["message"] != "internal server error" {
		t.Fatalf("message = %v", out["message"])
	}
	if out["success"] != false {
		t.Fatalf("success = %v", out["success"])
	}
}

func TestWriteDomainErrorKeepsClassifiedMessages(t *testing.T) {
	rec := httptest.NewRecorder()
	writeDomainError(rec, domain.WrapError(domain.ErrNotFound, "get document", errors.New("id doc-1")))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "get document") {
		t.Fatalf("classified error lost its message: %s", rec.Body.String())
	}
}
