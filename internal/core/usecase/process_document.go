package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/medcampus/portal/internal/core/domain"
	"github.com/medcampus/portal/internal/core/ports"
)

// ProcessDocumentUseCase is the worker-side hook that runs after an
// upload: extract text from the stored blob and attach a validation
// score. Review state is untouched; reviewers see the extraction as a
// hint, not a verdict.
type ProcessDocumentUseCase struct {
	repo      ports.DocumentRepository
	extractor ports.TextExtractor
}

func NewProcessDocumentUseCase(repo ports.DocumentRepository, extractor ports.TextExtractor) *ProcessDocumentUseCase {
	return &ProcessDocumentUseCase{repo: repo, extractor: extractor}
}

func (uc *ProcessDocumentUseCase) ProcessByID(ctx context.Context, documentID string) error {
	doc, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}

	text, err := uc.extractor.Extract(ctx, doc)
	if err != nil {
		return fmt.Errorf("extract text: %w", err)
	}

	doc.SetExtraction(text, validationScore(doc, text), time.Now().UTC())
	if err := uc.repo.Update(ctx, doc); err != nil {
		return fmt.Errorf("persist extraction: %w", err)
	}
	return nil
}

// validationScore is a completeness heuristic in [0, 100]: readable text
// weighs most, then metadata quality.
func validationScore(doc *domain.Document, text string) float64 {
	score := 0.0
	if len(strings.TrimSpace(text)) >= 50 {
		score += 50
	} else if strings.TrimSpace(text) != "" {
		score += 25
	}
	if doc.Metadata.Description != "" {
		score += 20
	}
	if !doc.Metadata.IssueDate.IsZero() {
		score += 20
	}
	if doc.Metadata.FileSize < domain.MaxDocumentSize/2 {
		score += 10
	}
	return score
}
