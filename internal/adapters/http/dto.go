package httpadapter

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/xeipuuv/gojsonschema"
)

// JSON bodies are validated against compiled schemas before decoding so a
// bad request reports every violation at once, field by field.

const maxJSONBody = 1 << 20

var (
	chatMessageSchema = mustSchema(`{
		"type": "object",
		"required": ["message"],
		"properties": {
			"message": {"type": "string", "minLength": 1, "maxLength": 4000},
			"conversation_id": {"type": "string"}
		}
	}`)

	rejectSchema = mustSchema(`{
		"type": "object",
		"required": ["reason"],
		"properties": {
			"reason": {"type": "string", "minLength": 10, "maxLength": 2000}
		}
	}`)

	scenarioSchema = mustSchema(`{
		"type": "object",
		"required": ["title", "category", "difficulty", "steps", "estimated_minutes"],
		"properties": {
			"title": {"type": "string", "minLength": 5, "maxLength": 200},
			"description": {"type": "string", "maxLength": 4000},
			"category": {"type": "string", "enum": ["suturing", "intubation", "venipuncture", "cpr", "auscultation"]},
			"difficulty": {"type": "string", "enum": ["beginner", "intermediate", "advanced"]},
			"model_url": {"type": "string"},
			"thumbnail_url": {"type": "string"},
			"steps": {
				"type": "array",
				"minItems": 1,
				"items": {
					"type": "object",
					"required": ["title", "description"],
					"properties": {
						"title": {"type": "string", "minLength": 1},
						"description": {"type": "string", "minLength": 1}
					}
				}
			},
			"criteria": {
				"type": "array",
				"items": {
					"type": "object",
					"required": ["name", "weight"],
					"properties": {
						"name": {"type": "string", "minLength": 1},
						"weight": {"type": "number", "exclusiveMinimum": 0}
					}
				}
			},
			"estimated_minutes": {"type": "integer", "minimum": 5, "maximum": 120},
			"public": {"type": "boolean"}
		}
	}`)

	completionMetricsSchema = mustSchema(`{
		"type": "object",
		"required": ["scenario_id", "score"],
		"properties": {
			"scenario_id": {"type": "string", "minLength": 1},
			"score": {"type": "number", "minimum": 0, "maximum": 100},
			"duration_seconds": {"type": "integer", "minimum": 0},
			"steps_completed": {"type": "integer", "minimum": 0}
		}
	}`)

	appointmentSchema = mustSchema(`{
		"type": "object",
		"required": ["clinician_id", "scheduled_at", "minutes"],
		"properties": {
			"clinician_id": {"type": "string", "minLength": 1},
			"scheduled_at": {"type": "string", "format": "date-time"},
			"minutes": {"type": "integer", "minimum": 10, "maximum": 120},
			"reason": {"type": "string", "maxLength": 1000}
		}
	}`)

	appointmentStatusSchema = mustSchema(`{
		"type": "object",
		"required": ["status"],
		"properties": {
			"status": {"type": "string", "enum": ["SCHEDULED", "CONFIRMED", "COMPLETED", "CANCELLED"]}
		}
	}`)

	ratingSchema = mustSchema(`{
		"type": "object",
		"required": ["rating"],
		"properties": {
			"rating": {"type": "integer", "minimum": 1, "maximum": 5}
		}
	}`)

	escalateSchema = mustSchema(`{
		"type": "object",
		"properties": {
			"agent": {"type": "string", "maxLength": 100}
		}
	}`)

	resourceSchema = mustSchema(`{
		"type": "object",
		"required": ["title", "format", "url"],
		"properties": {
			"title": {"type": "string", "minLength": 1, "maxLength": 300},
			"author": {"type": "string", "maxLength": 200},
			"category": {"type": "string", "maxLength": 100},
			"format": {"type": "string", "enum": ["book", "article", "video", "guide"]},
			"url": {"type": "string", "minLength": 1},
			"tags": {"type": "array", "items": {"type": "string"}},
			"year": {"type": "integer", "minimum": 1800, "maximum": 2100}
		}
	}`)
)

func mustSchema(schemaJSON string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
	if err != nil {
		panic(fmt.Sprintf("invalid request schema: %v", err))
	}
	return schema
}

// decodeValidated reads the body once, validates it against the schema
// and only then unmarshals into the DTO. Returns (false) after having
// written the error response.
func decodeValidated(w http.ResponseWriter, r *http.Request, schema *gojsonschema.Schema, dst any) bool {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxJSONBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "cannot read request body")
		return false
	}
	if len(body) == 0 {
		body = []byte("{}")
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		writeError(w, http.StatusBadRequest, "request body is not valid JSON")
		return false
	}
	if !result.Valid() {
		errs := make([]fieldError, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			errs = append(errs, fieldError{Field: desc.Field(), Message: desc.Description()})
		}
		writeFieldErrors(w, "request validation failed", errs)
		return false
	}

	if err := json.Unmarshal(body, dst); err != nil {
		writeError(w, http.StatusBadRequest, "request body does not match the expected shape")
		return false
	}
	return true
}
