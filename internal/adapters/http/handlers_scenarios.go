package httpadapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/medcampus/portal/internal/core/domain"
	"github.com/medcampus/portal/internal/core/ports"
)

// Scenario assets (3-D models, thumbnails) are larger than documents
// but still bounded.
const maxScenarioFormBody = 256 << 20

type scenarioRequest struct {
	Title            string                       `json:"title"`
	Description      string                       `json:"description"`
	Category         string                       `json:"category"`
	Difficulty       string                       `json:"difficulty"`
	ModelURL         string                       `json:"model_url"`
	ThumbnailURL     string                       `json:"thumbnail_url"`
	Steps            []domain.ScenarioStep        `json:"steps"`
	Criteria         []domain.EvaluationCriterion `json:"criteria"`
	EstimatedMinutes int                          `json:"estimated_minutes"`
	Public           bool                         `json:"public"`
}

func (req scenarioRequest) toInput(creatorID string) ports.ScenarioInput {
	return ports.ScenarioInput{
		Title:            req.Title,
		Description:      req.Description,
		Category:         req.Category,
		Difficulty:       req.Difficulty,
		ModelURL:         req.ModelURL,
		ThumbnailURL:     req.ThumbnailURL,
		Steps:            req.Steps,
		Criteria:         req.Criteria,
		EstimatedMinutes: req.EstimatedMinutes,
		CreatorID:        creatorID,
		Public:           req.Public,
	}
}

func (rt *Router) listScenarios(w http.ResponseWriter, r *http.Request) {
	p, ok := mustPrincipal(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	filter := domain.ScenarioFilter{
		Query: strings.TrimSpace(q.Get("q")),
		Page:  parsePage(q),
	}
	if v := strings.TrimSpace(q.Get("category")); v != "" {
		filter.Category = domain.ScenarioCategory(v)
	}
	if v := strings.TrimSpace(q.Get("difficulty")); v != "" {
		filter.Difficulty = domain.Difficulty(v)
	}

	// The catalogue shows public scenarios; "mine" switches to the
	// caller's own, published or not. Admins may browse everything.
	switch {
	case q.Get("mine") == "true":
		filter.CreatorID = p.UserID
	case p.isAdmin() && q.Get("all") == "true":
	default:
		filter.PublicOnly = true
	}

	result, err := rt.scenarioSearch.Search(r.Context(), filter)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writePage(w, "scenarios retrieved", result.Items, result.Pagination)
}

// createScenario accepts either a JSON body referencing already-hosted
// assets, or a multipart form carrying optional "model" and "thumbnail"
// file parts that are stored before the scenario is created.
func (rt *Router) createScenario(w http.ResponseWriter, r *http.Request) {
	p, ok := mustPrincipal(w, r)
	if !ok {
		return
	}

	var req scenarioRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		req, ok = rt.parseScenarioForm(w, r)
	} else {
		ok = decodeValidated(w, r, scenarioSchema, &req)
	}
	if !ok {
		return
	}

	sc, err := rt.scenarios.Create(r.Context(), req.toInput(p.UserID))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusCreated, "scenario created", sc)
}

func (rt *Router) parseScenarioForm(w http.ResponseWriter, r *http.Request) (scenarioRequest, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxScenarioFormBody)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "multipart form is required")
		return scenarioRequest{}, false
	}

	req := scenarioRequest{
		Title:        strings.TrimSpace(r.FormValue("title")),
		Description:  r.FormValue("description"),
		Category:     strings.TrimSpace(r.FormValue("category")),
		Difficulty:   strings.TrimSpace(r.FormValue("difficulty")),
		ModelURL:     strings.TrimSpace(r.FormValue("model_url")),
		ThumbnailURL: strings.TrimSpace(r.FormValue("thumbnail_url")),
		Public:       r.FormValue("public") == "true",
	}

	var errs []fieldError
	if v := strings.TrimSpace(r.FormValue("estimated_minutes")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fieldError{Field: "estimated_minutes", Message: "estimated_minutes must be an integer"})
		} else {
			req.EstimatedMinutes = n
		}
	}
	if v := r.FormValue("steps"); v != "" {
		if err := json.Unmarshal([]byte(v), &req.Steps); err != nil {
			errs = append(errs, fieldError{Field: "steps", Message: "steps must be a JSON array"})
		}
	}
	if v := r.FormValue("criteria"); v != "" {
		if err := json.Unmarshal([]byte(v), &req.Criteria); err != nil {
			errs = append(errs, fieldError{Field: "criteria", Message: "criteria must be a JSON array"})
		}
	}
	if len(errs) > 0 {
		writeFieldErrors(w, "request validation failed", errs)
		return scenarioRequest{}, false
	}

	// An uploaded file wins over a model_url/thumbnail_url form value.
	modelURL, ok := rt.storeScenarioAsset(w, r, "model")
	if !ok {
		return scenarioRequest{}, false
	}
	if modelURL != "" {
		req.ModelURL = modelURL
	}
	thumbnailURL, ok := rt.storeScenarioAsset(w, r, "thumbnail")
	if !ok {
		return scenarioRequest{}, false
	}
	if thumbnailURL != "" {
		req.ThumbnailURL = thumbnailURL
	}
	return req, true
}

// storeScenarioAsset saves an optional file part and returns its URL.
// A missing part is not an error.
func (rt *Router) storeScenarioAsset(w http.ResponseWriter, r *http.Request, field string) (string, bool) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", true
		}
		writeFieldErrors(w, "request validation failed", []fieldError{{Field: field, Message: "unreadable file part"}})
		return "", false
	}
	defer file.Close()

	key := fmt.Sprintf("%s_%s", uuid.NewString(), sanitizeAssetName(header.Filename))
	if err := rt.storage.Save(r.Context(), key, file); err != nil {
		writeDomainError(w, err)
		return "", false
	}
	return rt.storage.URL(key), true
}

func sanitizeAssetName(name string) string {
	base := filepath.Base(strings.TrimSpace(name))
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" || base == "." {
		return "asset.bin"
	}
	return base
}

func (rt *Router) updateScenario(w http.ResponseWriter, r *http.Request) {
	p, ok := mustPrincipal(w, r)
	if !ok {
		return
	}

	var req scenarioRequest
	if !decodeValidated(w, r, scenarioSchema, &req) {
		return
	}

	sc, err := rt.scenarios.Update(r.Context(), r.PathValue("id"), p.UserID, p.isAdmin(), req.toInput(p.UserID))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, "scenario updated", sc)
}

func (rt *Router) deleteScenario(w http.ResponseWriter, r *http.Request) {
	p, ok := mustPrincipal(w, r)
	if !ok {
		return
	}

	if err := rt.scenarios.Delete(r.Context(), r.PathValue("id"), p.UserID, p.isAdmin()); err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, "scenario deleted", nil)
}

func (rt *Router) republishScenario(w http.ResponseWriter, r *http.Request) {
	p, ok := mustPrincipal(w, r)
	if !ok {
		return
	}

	sc, err := rt.scenarios.Republish(r.Context(), r.PathValue("id"), p.UserID, p.isAdmin())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, "scenario republished", sc)
}

func (rt *Router) executeScenario(w http.ResponseWriter, r *http.Request) {
	p, ok := mustPrincipal(w, r)
	if !ok {
		return
	}

	run, err := rt.executor.Start(r.Context(), r.PathValue("id"), p.UserID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, "scenario run started", run)
}

func (rt *Router) recordCompletionMetrics(w http.ResponseWriter, r *http.Request) {
	p, ok := mustPrincipal(w, r)
	if !ok {
		return
	}

	var req struct {
		ScenarioID      string  `json:"scenario_id"`
		Score           float64 `json:"score"`
		DurationSeconds int     `json:"duration_seconds"`
		StepsCompleted  int     `json:"steps_completed"`
	}
	if !decodeValidated(w, r, completionMetricsSchema, &req) {
		return
	}

	sc, err := rt.executor.RecordMetrics(r.Context(), ports.CompletionMetricsInput{
		ScenarioID:   req.ScenarioID,
		UserID:       p.UserID,
		Score:        req.Score,
		DurationSecs: req.DurationSeconds,
		StepsDone:    req.StepsCompleted,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	rt.metrics.RecordScenarioCompletion(rt.service, string(sc.Category), req.Score)
	writeData(w, http.StatusOK, "completion recorded", sc)
}
