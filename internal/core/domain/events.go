package domain

import "time"

// Event payloads published on the bus. Consumers are decoupled; the
// worker subscribes to DocumentUploaded for text extraction.

type DocumentUploadedEvent struct {
	DocumentID   string       `json:"document_id"`
	UserID       string       `json:"user_id"`
	DocumentType DocumentType `json:"document_type"`
	Timestamp    time.Time    `json:"timestamp"`
}

type DocumentReviewedEvent struct {
	DocumentID string         `json:"document_id"`
	ReviewerID string         `json:"reviewer_id"`
	Status     DocumentStatus `json:"status"`
	Timestamp  time.Time      `json:"timestamp"`
}

type MessageProcessedEvent struct {
	ConversationID string    `json:"conversation_id"`
	UserID         string    `json:"user_id"`
	FunctionCalls  int       `json:"function_calls"`
	Timestamp      time.Time `json:"timestamp"`
}

type ScenarioCompletedEvent struct {
	ScenarioID string    `json:"scenario_id"`
	UserID     string    `json:"user_id"`
	Score      float64   `json:"score"`
	Timestamp  time.Time `json:"timestamp"`
}
