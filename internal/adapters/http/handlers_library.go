package httpadapter

import (
	"net/http"
	"strings"

	"github.com/medcampus/portal/internal/core/domain"
	"github.com/medcampus/portal/internal/core/ports"
)

func (rt *Router) searchLibrary(w http.ResponseWriter, r *http.Request) {
	if _, ok := mustPrincipal(w, r); !ok {
		return
	}

	q := r.URL.Query()
	filter := domain.ResourceFilter{
		Category: strings.TrimSpace(q.Get("category")),
		Query:    strings.TrimSpace(q.Get("q")),
		Page:     parsePage(q),
	}
	if v := strings.TrimSpace(q.Get("format")); v != "" {
		if !domain.IsResourceFormat(v) {
			writeFieldErrors(w, "request validation failed", []fieldError{
				{Field: "format", Message: "unknown resource format: " + v},
			})
			return
		}
		filter.Format = domain.ResourceFormat(v)
	}

	result, err := rt.library.Search(r.Context(), filter)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writePage(w, "resources retrieved", result.Items, result.Pagination)
}

func (rt *Router) addLibraryResource(w http.ResponseWriter, r *http.Request) {
	p, ok := mustPrincipal(w, r)
	if !ok {
		return
	}
	if !p.isAdmin() {
		writeError(w, http.StatusForbidden, "adding library resources requires the admin role")
		return
	}

	var req struct {
		Title    string   `json:"title"`
		Author   string   `json:"author"`
		Category string   `json:"category"`
		Format   string   `json:"format"`
		URL      string   `json:"url"`
		Tags     []string `json:"tags"`
		Year     int      `json:"year"`
	}
	if !decodeValidated(w, r, resourceSchema, &req) {
		return
	}

	res, err := rt.library.Add(r.Context(), ports.ResourceInput{
		Title:    req.Title,
		Author:   req.Author,
		Category: req.Category,
		Format:   req.Format,
		URL:      req.URL,
		Tags:     req.Tags,
		Year:     req.Year,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusCreated, "resource added", res)
}
