package usecase

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/medcampus/portal/internal/core/domain"
	"github.com/medcampus/portal/internal/core/ports"
)

// UploadDocumentUseCase validates a submission, stores the blob, creates
// the PENDING document and announces it. Every precondition fails before
// any side effect; a persistence failure after a successful blob write
// leaves the blob orphaned (known gap, no compensation).
type UploadDocumentUseCase struct {
	repo    ports.DocumentRepository
	storage ports.ObjectStorage
	events  ports.EventBus
}

func NewUploadDocumentUseCase(
	repo ports.DocumentRepository,
	storage ports.ObjectStorage,
	events ports.EventBus,
) *UploadDocumentUseCase {
	return &UploadDocumentUseCase{
		repo:    repo,
		storage: storage,
		events:  events,
	}
}

func (uc *UploadDocumentUseCase) Upload(ctx context.Context, input ports.UploadDocumentInput) (*domain.Document, error) {
	meta, err := domain.NewDocumentMetadata(
		input.DocumentType,
		input.FileName,
		input.FileSize,
		input.MimeType,
		input.IssueDate,
		input.Description,
	)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	key := fmt.Sprintf("%s_%s", id, sanitizeFilename(input.FileName))
	now := time.Now().UTC()

	if err := uc.storage.Save(ctx, key, input.Body); err != nil {
		return nil, fmt.Errorf("save to object storage: %w", err)
	}

	doc, err := domain.NewDocument(id, input.UserID, meta, key, uc.storage.URL(key), now)
	if err != nil {
		return nil, err
	}

	if err := uc.repo.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("create document record: %w", err)
	}

	if err := uc.events.PublishDocumentUploaded(ctx, domain.DocumentUploadedEvent{
		DocumentID:   doc.ID,
		UserID:       doc.OwnerID,
		DocumentType: doc.Metadata.Type,
		Timestamp:    now,
	}); err != nil {
		return nil, fmt.Errorf("publish upload event: %w", err)
	}

	return doc, nil
}

// Resubmit files a fresh version of a rejected document. The prior
// version stays untouched; the new one links back to it.
func (uc *UploadDocumentUseCase) Resubmit(ctx context.Context, documentID string, input ports.UploadDocumentInput) (*domain.Document, error) {
	prior, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("load prior version: %w", err)
	}
	if prior.OwnerID != input.UserID {
		return nil, domain.WrapError(domain.ErrForbidden, "resubmit", fmt.Errorf("document %s is not owned by %s", documentID, input.UserID))
	}

	meta, err := domain.NewDocumentMetadata(
		input.DocumentType,
		input.FileName,
		input.FileSize,
		input.MimeType,
		input.IssueDate,
		input.Description,
	)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	key := fmt.Sprintf("%s_%s", id, sanitizeFilename(input.FileName))
	now := time.Now().UTC()

	if err := uc.storage.Save(ctx, key, input.Body); err != nil {
		return nil, fmt.Errorf("save to object storage: %w", err)
	}

	next, err := prior.NewVersion(id, meta, key, uc.storage.URL(key), now)
	if err != nil {
		return nil, err
	}

	if err := uc.repo.Create(ctx, next); err != nil {
		return nil, fmt.Errorf("create document record: %w", err)
	}

	if err := uc.events.PublishDocumentUploaded(ctx, domain.DocumentUploadedEvent{
		DocumentID:   next.ID,
		UserID:       next.OwnerID,
		DocumentType: next.Metadata.Type,
		Timestamp:    now,
	}); err != nil {
		return nil, fmt.Errorf("publish upload event: %w", err)
	}

	return next, nil
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" {
		return "document.bin"
	}
	return base
}
