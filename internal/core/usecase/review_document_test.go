package usecase

import (
	"context"
	"testing"

	"github.com/medcampus/portal/internal/core/domain"
)

func seedPendingDocument(t *testing.T, repo *docRepoFake, storage *storageFake, events *eventsFake) *domain.Document {
	t.Helper()
	uploader := NewUploadDocumentUseCase(repo, storage, events)
	doc, err := uploader.Upload(context.Background(), validUpload("student-7"))
	if err != nil {
		t.Fatalf("seed upload: %v", err)
	}
	return doc
}

func TestReviewHappyPath(t *testing.T) {
	repo := newDocRepoFake()
	events := &eventsFake{}
	doc := seedPendingDocument(t, repo, &storageFake{}, events)
	uc := NewReviewDocumentUseCase(repo, events)

	ctx := context.Background()
	inReview, err := uc.MoveToReview(ctx, doc.ID, "reviewer-1")
	if err != nil {
		t.Fatalf("move to review: %v", err)
	}
	if inReview.Status != domain.DocumentInReview {
		t.Fatalf("status = %s, want %s", inReview.Status, domain.DocumentInReview)
	}

	approved, err := uc.Approve(ctx, doc.ID, "reviewer-1")
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.Status != domain.DocumentApproved {
		t.Fatalf("status = %s, want %s", approved.Status, domain.DocumentApproved)
	}
	if approved.ReviewedBy != "reviewer-1" || approved.ReviewedAt == nil {
		t.Fatal("reviewer attribution missing")
	}
	if len(events.reviewed) != 1 {
		t.Fatalf("reviewed events = %d, want 1", len(events.reviewed))
	}
	if events.reviewed[0].Status != domain.DocumentApproved {
		t.Fatalf("event status = %s, want %s", events.reviewed[0].Status, domain.DocumentApproved)
	}
}

// A PENDING document can be rejected outright, but the rejected document
// cannot be approved afterwards.
func TestRejectPendingThenApproveFails(t *testing.T) {
	repo := newDocRepoFake()
	events := &eventsFake{}
	doc := seedPendingDocument(t, repo, &storageFake{}, events)
	uc := NewReviewDocumentUseCase(repo, events)

	ctx := context.Background()
	rejected, err := uc.Reject(ctx, doc.ID, "reviewer-1", "image too blurry to read")
	if err != nil {
		t.Fatalf("reject pending: %v", err)
	}
	if rejected.Status != domain.DocumentRejected {
		t.Fatalf("status = %s, want %s", rejected.Status, domain.DocumentRejected)
	}
	if rejected.RejectionReason != "image too blurry to read" {
		t.Fatalf("reason = %q", rejected.RejectionReason)
	}

	if _, err := uc.Approve(ctx, doc.ID, "reviewer-1"); !domain.IsKind(err, domain.ErrInvalidTransition) {
		t.Fatalf("approve after reject: err = %v, want %v", err, domain.ErrInvalidTransition)
	}
	if len(events.reviewed) != 1 {
		t.Fatalf("reviewed events = %d, want 1", len(events.reviewed))
	}
}

func TestRejectShortReasonDoesNotPersist(t *testing.T) {
	repo := newDocRepoFake()
	events := &eventsFake{}
	doc := seedPendingDocument(t, repo, &storageFake{}, events)
	uc := NewReviewDocumentUseCase(repo, events)

	if _, err := uc.Reject(context.Background(), doc.ID, "reviewer-1", "  blurry  "); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("err = %v, want %v", err, domain.ErrInvalidInput)
	}
	if stored := repo.docs[doc.ID]; stored.Status != domain.DocumentPending {
		t.Fatalf("status = %s, want still %s", stored.Status, domain.DocumentPending)
	}
	if len(events.reviewed) != 0 {
		t.Fatal("event published despite failed reject")
	}
}

func TestReviewUnknownDocument(t *testing.T) {
	uc := NewReviewDocumentUseCase(newDocRepoFake(), &eventsFake{})

	if _, err := uc.MoveToReview(context.Background(), "missing", "reviewer-1"); !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want %v", err, domain.ErrNotFound)
	}
}
