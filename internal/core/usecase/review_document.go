package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/medcampus/portal/internal/core/domain"
	"github.com/medcampus/portal/internal/core/ports"
)

// ReviewDocumentUseCase drives the review state machine. The entity owns
// the transition rules; this use-case loads, transitions, persists and
// announces the outcome.
type ReviewDocumentUseCase struct {
	repo   ports.DocumentRepository
	events ports.EventBus
}

func NewReviewDocumentUseCase(repo ports.DocumentRepository, events ports.EventBus) *ReviewDocumentUseCase {
	return &ReviewDocumentUseCase{repo: repo, events: events}
}

func (uc *ReviewDocumentUseCase) MoveToReview(ctx context.Context, documentID, reviewerID string) (*domain.Document, error) {
	doc, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}
	if err := doc.MoveToReview(time.Now().UTC()); err != nil {
		return nil, err
	}
	if err := uc.repo.Update(ctx, doc); err != nil {
		return nil, fmt.Errorf("persist document: %w", err)
	}
	return doc, nil
}

func (uc *ReviewDocumentUseCase) Approve(ctx context.Context, documentID, reviewerID string) (*domain.Document, error) {
	doc, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}
	now := time.Now().UTC()
	if err := doc.Approve(reviewerID, now); err != nil {
		return nil, err
	}
	if err := uc.repo.Update(ctx, doc); err != nil {
		return nil, fmt.Errorf("persist document: %w", err)
	}
	if err := uc.events.PublishDocumentReviewed(ctx, domain.DocumentReviewedEvent{
		DocumentID: doc.ID,
		ReviewerID: reviewerID,
		Status:     doc.Status,
		Timestamp:  now,
	}); err != nil {
		return nil, fmt.Errorf("publish review event: %w", err)
	}
	return doc, nil
}

func (uc *ReviewDocumentUseCase) Reject(ctx context.Context, documentID, reviewerID, reason string) (*domain.Document, error) {
	doc, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}
	now := time.Now().UTC()
	if err := doc.Reject(reason, reviewerID, now); err != nil {
		return nil, err
	}
	if err := uc.repo.Update(ctx, doc); err != nil {
		return nil, fmt.Errorf("persist document: %w", err)
	}
	if err := uc.events.PublishDocumentReviewed(ctx, domain.DocumentReviewedEvent{
		DocumentID: doc.ID,
		ReviewerID: reviewerID,
		Status:     doc.Status,
		Timestamp:  now,
	}); err != nil {
		return nil, fmt.Errorf("publish review event: %w", err)
	}
	return doc, nil
}
