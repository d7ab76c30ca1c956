package usecase

import (
	"context"
	"fmt"

	"github.com/medcampus/portal/internal/core/domain"
	"github.com/medcampus/portal/internal/core/ports"
)

// SearchDocumentsUseCase builds a persistence query from only the filters
// that are present and returns the page plus the normalized filter echo.
type SearchDocumentsUseCase struct {
	repo ports.DocumentRepository
}

func NewSearchDocumentsUseCase(repo ports.DocumentRepository) *SearchDocumentsUseCase {
	return &SearchDocumentsUseCase{repo: repo}
}

func (uc *SearchDocumentsUseCase) Search(ctx context.Context, filter domain.DocumentFilter) (*ports.DocumentSearchResult, error) {
	filter.Page = filter.Page.Normalize()

	items, total, err := uc.repo.FindByFilters(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("search documents: %w", err)
	}

	return &ports.DocumentSearchResult{
		Items:      items,
		Pagination: domain.NewPagination(filter.Page, total),
		Filters:    filter,
	}, nil
}

func (uc *SearchDocumentsUseCase) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	doc, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}
	return doc, nil
}

// ExportDocumentsUseCase renders a filtered document set through the
// report exporter. The export reuses the search path so filters behave
// identically in both.
type ExportDocumentsUseCase struct {
	search   *SearchDocumentsUseCase
	exporter ports.ReportExporter
}

func NewExportDocumentsUseCase(search *SearchDocumentsUseCase, exporter ports.ReportExporter) *ExportDocumentsUseCase {
	return &ExportDocumentsUseCase{search: search, exporter: exporter}
}

func (uc *ExportDocumentsUseCase) Export(ctx context.Context, filter domain.DocumentFilter) ([]byte, error) {
	// Exports always take the maximum page size.
	filter.Page.Limit = domain.MaxPageLimit
	result, err := uc.search.Search(ctx, filter)
	if err != nil {
		return nil, err
	}
	out, err := uc.exporter.DocumentsReport(result.Items)
	if err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	return out, nil
}
