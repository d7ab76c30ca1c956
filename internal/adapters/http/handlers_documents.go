package httpadapter

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/medcampus/portal/internal/core/domain"
	"github.com/medcampus/portal/internal/core/ports"
)

const maxUploadBody = domain.MaxDocumentSize + 1<<20

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	p, ok := mustPrincipal(w, r)
	if !ok {
		return
	}

	input, ok := rt.parseUploadForm(w, r, p)
	if !ok {
		return
	}

	doc, err := rt.uploader.Upload(r.Context(), input)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	rt.metrics.RecordDocumentUpload(rt.service, string(doc.Metadata.Type))
	writeData(w, http.StatusCreated, "document submitted for review", doc)
}

func (rt *Router) resubmitDocument(w http.ResponseWriter, r *http.Request) {
	p, ok := mustPrincipal(w, r)
	if !ok {
		return
	}

	input, ok := rt.parseUploadForm(w, r, p)
	if !ok {
		return
	}

	doc, err := rt.uploader.Resubmit(r.Context(), r.PathValue("id"), input)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	rt.metrics.RecordDocumentUpload(rt.service, string(doc.Metadata.Type))
	writeData(w, http.StatusCreated, "new document version submitted", doc)
}

func (rt *Router) parseUploadForm(w http.ResponseWriter, r *http.Request, p principal) (ports.UploadDocumentInput, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "multipart form is required")
		return ports.UploadDocumentInput{}, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeFieldErrors(w, "request validation failed", []fieldError{{Field: "file", Message: "multipart field 'file' is required"}})
		return ports.UploadDocumentInput{}, false
	}

	var errs []fieldError
	docType := strings.TrimSpace(r.FormValue("document_type"))
	if docType == "" {
		errs = append(errs, fieldError{Field: "document_type", Message: "document_type is required"})
	}

	issueDate, err := parseDateField(r.FormValue("issue_date"))
	if err != nil {
		errs = append(errs, fieldError{Field: "issue_date", Message: err.Error()})
	}
	if len(errs) > 0 {
		file.Close()
		writeFieldErrors(w, "request validation failed", errs)
		return ports.UploadDocumentInput{}, false
	}

	mimeType := header.Header.Get("Content-Type")
	if v := strings.TrimSpace(r.FormValue("mime_type")); v != "" {
		mimeType = v
	}

	return ports.UploadDocumentInput{
		UserID:       p.UserID,
		FileName:     header.Filename,
		MimeType:     mimeType,
		FileSize:     header.Size,
		DocumentType: docType,
		Description:  r.FormValue("description"),
		IssueDate:    issueDate,
		Body:         file,
	}, true
}

func (rt *Router) searchDocuments(w http.ResponseWriter, r *http.Request) {
	p, ok := mustPrincipal(w, r)
	if !ok {
		return
	}

	filter, ok := rt.parseDocumentFilter(w, r, p)
	if !ok {
		return
	}

	result, err := rt.docs.Search(r.Context(), filter)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writePage(w, "documents retrieved", result.Items, result.Pagination)
}

func (rt *Router) getDocument(w http.ResponseWriter, r *http.Request) {
	p, ok := mustPrincipal(w, r)
	if !ok {
		return
	}

	doc, err := rt.docs.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if doc.OwnerID != p.UserID && !p.canReview() {
		writeError(w, http.StatusForbidden, "document belongs to another user")
		return
	}
	writeData(w, http.StatusOK, "document retrieved", doc)
}

func (rt *Router) exportDocuments(w http.ResponseWriter, r *http.Request) {
	p, ok := mustPrincipal(w, r)
	if !ok {
		return
	}
	if !p.canReview() {
		writeError(w, http.StatusForbidden, "document export requires a reviewer role")
		return
	}

	filter, ok := rt.parseDocumentFilter(w, r, p)
	if !ok {
		return
	}

	out, err := rt.exporter.Export(r.Context(), filter)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="documents-report.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

func (rt *Router) moveDocumentToReview(w http.ResponseWriter, r *http.Request) {
	p, ok := rt.requireReviewer(w, r)
	if !ok {
		return
	}
	doc, err := rt.reviewer.MoveToReview(r.Context(), r.PathValue("id"), p.UserID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, "document moved to review", doc)
}

func (rt *Router) approveDocument(w http.ResponseWriter, r *http.Request) {
	p, ok := rt.requireReviewer(w, r)
	if !ok {
		return
	}
	doc, err := rt.reviewer.Approve(r.Context(), r.PathValue("id"), p.UserID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	rt.metrics.RecordReviewDecision(rt.service, "approved")
	writeData(w, http.StatusOK, "document approved", doc)
}

func (rt *Router) rejectDocument(w http.ResponseWriter, r *http.Request) {
	p, ok := rt.requireReviewer(w, r)
	if !ok {
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if !decodeValidated(w, r, rejectSchema, &req) {
		return
	}

	doc, err := rt.reviewer.Reject(r.Context(), r.PathValue("id"), p.UserID, req.Reason)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	rt.metrics.RecordReviewDecision(rt.service, "rejected")
	writeData(w, http.StatusOK, "document rejected", doc)
}

func (rt *Router) requireReviewer(w http.ResponseWriter, r *http.Request) (principal, bool) {
	p, ok := mustPrincipal(w, r)
	if !ok {
		return principal{}, false
	}
	if !p.canReview() {
		writeError(w, http.StatusForbidden, "review operations require a reviewer role")
		return principal{}, false
	}
	return p, true
}

// parseDocumentFilter builds the search filter from query parameters.
// Students are always scoped to their own documents.
func (rt *Router) parseDocumentFilter(w http.ResponseWriter, r *http.Request, p principal) (domain.DocumentFilter, bool) {
	q := r.URL.Query()
	var errs []fieldError

	filter := domain.DocumentFilter{Page: parsePage(q)}

	if p.canReview() {
		filter.OwnerID = strings.TrimSpace(q.Get("owner_id"))
	} else {
		filter.OwnerID = p.UserID
	}

	if v := strings.TrimSpace(q.Get("type")); v != "" {
		if !domain.IsDocumentType(v) {
			errs = append(errs, fieldError{Field: "type", Message: fmt.Sprintf("unknown document type: %s", v)})
		} else {
			filter.Type = domain.DocumentType(v)
		}
	}
	if v := strings.TrimSpace(q.Get("status")); v != "" {
		switch domain.DocumentStatus(v) {
		case domain.DocumentPending, domain.DocumentInReview, domain.DocumentApproved, domain.DocumentRejected:
			filter.Status = domain.DocumentStatus(v)
		default:
			errs = append(errs, fieldError{Field: "status", Message: fmt.Sprintf("unknown status: %s", v)})
		}
	}

	if v := strings.TrimSpace(q.Get("date_from")); v != "" {
		ts, err := parseDateField(v)
		if err != nil {
			errs = append(errs, fieldError{Field: "date_from", Message: err.Error()})
		} else {
			filter.DateFrom = &ts
		}
	}
	if v := strings.TrimSpace(q.Get("date_to")); v != "" {
		ts, err := parseDateField(v)
		if err != nil {
			errs = append(errs, fieldError{Field: "date_to", Message: err.Error()})
		} else {
			filter.DateTo = &ts
		}
	}
	if filter.DateFrom != nil && filter.DateTo != nil && filter.DateTo.Before(*filter.DateFrom) {
		errs = append(errs, fieldError{Field: "date_to", Message: "date_to must not be before date_from"})
	}

	if len(errs) > 0 {
		writeFieldErrors(w, "request validation failed", errs)
		return domain.DocumentFilter{}, false
	}
	return filter, true
}

func parsePage(q map[string][]string) domain.Page {
	get := func(key string) string {
		if vs := q[key]; len(vs) > 0 {
			return strings.TrimSpace(vs[0])
		}
		return ""
	}

	page := domain.Page{
		SortBy:    get("sort_by"),
		SortOrder: get("sort_order"),
	}
	if v, err := strconv.Atoi(get("page")); err == nil {
		page.Page = v
	}
	if v, err := strconv.Atoi(get("limit")); err == nil {
		page.Limit = v
	}
	return page
}

// parseDateField accepts either a full RFC3339 timestamp or a plain date.
// An empty value is allowed and maps to the zero time.
func parseDateField(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return ts.UTC(), nil
	}
	if ts, err := time.Parse("2006-01-02", raw); err == nil {
		return ts.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q, want RFC3339 or YYYY-MM-DD", raw)
}
