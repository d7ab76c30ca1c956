package domain

import (
	"fmt"
	"strings"
	"time"
)

type DocumentStatus string

const (
	DocumentPending  DocumentStatus = "PENDING"
	DocumentInReview DocumentStatus = "IN_REVIEW"
	DocumentApproved DocumentStatus = "APPROVED"
	DocumentRejected DocumentStatus = "REJECTED"
)

type DocumentType string

const (
	DocTypeTranscript    DocumentType = "transcript"
	DocTypeCertificate   DocumentType = "certificate"
	DocTypeIDCard        DocumentType = "id_card"
	DocTypeMedicalRecord DocumentType = "medical_record"
	DocTypeOther         DocumentType = "other"
)

func IsDocumentType(v string) bool {
	switch DocumentType(v) {
	case DocTypeTranscript, DocTypeCertificate, DocTypeIDCard, DocTypeMedicalRecord, DocTypeOther:
		return true
	}
	return false
}

const (
	MaxDocumentSize    = 50 << 20 // 50 MiB
	MinRejectionReason = 10
)

var allowedMimeTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/jpg":       true,
	"image/png":       true,
}

func IsAllowedMimeType(mimeType string) bool {
	return allowedMimeTypes[strings.ToLower(strings.TrimSpace(mimeType))]
}

// DocumentMetadata is an immutable value object describing the uploaded file.
type DocumentMetadata struct {
	Type        DocumentType `json:"type"`
	FileName    string       `json:"file_name"`
	FileSize    int64        `json:"file_size"`
	MimeType    string       `json:"mime_type"`
	IssueDate   time.Time    `json:"issue_date"`
	Description string       `json:"description,omitempty"`
}

func NewDocumentMetadata(docType, fileName string, fileSize int64, mimeType string, issueDate time.Time, description string) (DocumentMetadata, error) {
	if !IsDocumentType(docType) {
		return DocumentMetadata{}, WrapError(ErrInvalidInput, "document metadata", fmt.Errorf("unknown document type: %s", docType))
	}
	if strings.TrimSpace(fileName) == "" {
		return DocumentMetadata{}, WrapError(ErrInvalidInput, "document metadata", fmt.Errorf("file name is required"))
	}
	if fileSize <= 0 || fileSize > MaxDocumentSize {
		return DocumentMetadata{}, WrapError(ErrInvalidInput, "document metadata", fmt.Errorf("file size %d is outside (0, %d]", fileSize, MaxDocumentSize))
	}
	if !IsAllowedMimeType(mimeType) {
		return DocumentMetadata{}, WrapError(ErrInvalidInput, "document metadata", fmt.Errorf("mime type %s is not allowed", mimeType))
	}
	return DocumentMetadata{
		Type:        DocumentType(docType),
		FileName:    fileName,
		FileSize:    fileSize,
		MimeType:    strings.ToLower(strings.TrimSpace(mimeType)),
		IssueDate:   issueDate,
		Description: strings.TrimSpace(description),
	}, nil
}

// Document is a user-submitted file plus its review state. All state
// transitions go through the entity methods; callers persist afterwards.
type Document struct {
	ID                string           `json:"id"`
	OwnerID           string           `json:"owner_id"`
	Metadata          DocumentMetadata `json:"metadata"`
	StorageKey        string           `json:"storage_key"`
	StorageURL        string           `json:"storage_url"`
	Status            DocumentStatus   `json:"status"`
	Extraction        string           `json:"extraction,omitempty"`
	ValidationScore   *float64         `json:"validation_score,omitempty"`
	RejectionReason   string           `json:"rejection_reason,omitempty"`
	ReviewedBy        string           `json:"reviewed_by,omitempty"`
	ReviewedAt        *time.Time       `json:"reviewed_at,omitempty"`
	Version           int              `json:"version"`
	PreviousVersionID string           `json:"previous_version_id,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

func NewDocument(id, ownerID string, meta DocumentMetadata, storageKey, storageURL string, now time.Time) (*Document, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, WrapError(ErrInvalidInput, "new document", fmt.Errorf("owner id is required"))
	}
	return &Document{
		ID:         id,
		OwnerID:    ownerID,
		Metadata:   meta,
		StorageKey: storageKey,
		StorageURL: storageURL,
		Status:     DocumentPending,
		Version:    1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// MoveToReview transitions PENDING -> IN_REVIEW.
func (d *Document) MoveToReview(now time.Time) error {
	if d.Status != DocumentPending {
		return WrapError(ErrInvalidTransition, "move to review", fmt.Errorf("document is %s, expected %s", d.Status, DocumentPending))
	}
	d.Status = DocumentInReview
	d.UpdatedAt = now
	return nil
}

// Approve transitions IN_REVIEW -> APPROVED and records the reviewer.
// Any rejection reason left over from a prior cycle is cleared.
func (d *Document) Approve(reviewerID string, now time.Time) error {
	if d.Status != DocumentInReview {
		return WrapError(ErrInvalidTransition, "approve", fmt.Errorf("document is %s, expected %s", d.Status, DocumentInReview))
	}
	if strings.TrimSpace(reviewerID) == "" {
		return WrapError(ErrInvalidInput, "approve", fmt.Errorf("reviewer id is required"))
	}
	d.Status = DocumentApproved
	d.RejectionReason = ""
	d.ReviewedBy = reviewerID
	d.ReviewedAt = &now
	d.UpdatedAt = now
	return nil
}

// Reject is legal from PENDING or IN_REVIEW. The status is checked before
// the reason so a caller learns about an illegal state first.
func (d *Document) Reject(reason, reviewerID string, now time.Time) error {
	if d.Status != DocumentPending && d.Status != DocumentInReview {
		return WrapError(ErrInvalidTransition, "reject", fmt.Errorf("document is %s, expected %s or %s", d.Status, DocumentPending, DocumentInReview))
	}
	if len(strings.TrimSpace(reason)) < MinRejectionReason {
		return WrapError(ErrInvalidInput, "reject", fmt.Errorf("rejection reason must be at least %d characters", MinRejectionReason))
	}
	if strings.TrimSpace(reviewerID) == "" {
		return WrapError(ErrInvalidInput, "reject", fmt.Errorf("reviewer id is required"))
	}
	d.Status = DocumentRejected
	d.RejectionReason = strings.TrimSpace(reason)
	d.ReviewedBy = reviewerID
	d.ReviewedAt = &now
	d.UpdatedAt = now
	return nil
}

// NewVersion builds the resubmission of a rejected document as a fresh
// PENDING entity linked back through PreviousVersionID. History is never
// mutated in place.
func (d *Document) NewVersion(id string, meta DocumentMetadata, storageKey, storageURL string, now time.Time) (*Document, error) {
	if d.Status != DocumentRejected {
		return nil, WrapError(ErrInvalidTransition, "resubmit", fmt.Errorf("document is %s, expected %s", d.Status, DocumentRejected))
	}
	return &Document{
		ID:                id,
		OwnerID:           d.OwnerID,
		Metadata:          meta,
		StorageKey:        storageKey,
		StorageURL:        storageURL,
		Status:            DocumentPending,
		Version:           d.Version + 1,
		PreviousVersionID: d.ID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

// SetExtraction records the worker's text extraction result.
func (d *Document) SetExtraction(text string, score float64, now time.Time) {
	d.Extraction = text
	d.ValidationScore = &score
	d.UpdatedAt = now
}
