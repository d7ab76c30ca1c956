package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/medcampus/portal/internal/core/domain"
	"github.com/medcampus/portal/internal/core/ports"
)

// LibraryUseCase serves the virtual library catalogue.
type LibraryUseCase struct {
	repo ports.ResourceRepository
}

func NewLibraryUseCase(repo ports.ResourceRepository) *LibraryUseCase {
	return &LibraryUseCase{repo: repo}
}

func (uc *LibraryUseCase) Search(ctx context.Context, filter domain.ResourceFilter) (*ports.ResourceSearchResult, error) {
	filter.Page = filter.Page.Normalize()
	items, total, err := uc.repo.FindByFilters(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("search resources: %w", err)
	}
	return &ports.ResourceSearchResult{
		Items:      items,
		Pagination: domain.NewPagination(filter.Page, total),
		Filters:    filter,
	}, nil
}

func (uc *LibraryUseCase) Add(ctx context.Context, input ports.ResourceInput) (*domain.Resource, error) {
	now := time.Now().UTC()
	res := &domain.Resource{
		ID:        uuid.NewString(),
		Title:     input.Title,
		Author:    input.Author,
		Category:  input.Category,
		Format:    domain.ResourceFormat(input.Format),
		URL:       input.URL,
		Tags:      input.Tags,
		Year:      input.Year,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := res.Validate(); err != nil {
		return nil, err
	}
	if err := uc.repo.Create(ctx, res); err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}
	return res, nil
}
