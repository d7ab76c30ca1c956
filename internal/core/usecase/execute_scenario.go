package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/medcampus/portal/internal/core/domain"
	"github.com/medcampus/portal/internal/core/ports"
)

// ExecuteScenarioUseCase starts simulation runs and folds completion
// metrics into the scenario's running average. Run state itself lives on
// the client; only completions persist.
type ExecuteScenarioUseCase struct {
	repo   ports.ScenarioRepository
	events ports.EventBus
}

func NewExecuteScenarioUseCase(repo ports.ScenarioRepository, events ports.EventBus) *ExecuteScenarioUseCase {
	return &ExecuteScenarioUseCase{repo: repo, events: events}
}

func (uc *ExecuteScenarioUseCase) Start(ctx context.Context, scenarioID, userID string) (*ports.ScenarioRun, error) {
	sc, err := uc.repo.GetByID(ctx, scenarioID)
	if err != nil {
		return nil, fmt.Errorf("load scenario: %w", err)
	}
	if !sc.Public && sc.CreatorID != userID {
		return nil, domain.WrapError(domain.ErrForbidden, "start scenario", fmt.Errorf("scenario %s is private", scenarioID))
	}
	return &ports.ScenarioRun{
		RunID:     uuid.NewString(),
		Scenario:  sc,
		StartedAt: time.Now().UTC(),
		StartedBy: userID,
	}, nil
}

func (uc *ExecuteScenarioUseCase) RecordMetrics(ctx context.Context, input ports.CompletionMetricsInput) (*domain.Scenario, error) {
	sc, err := uc.repo.GetByID(ctx, input.ScenarioID)
	if err != nil {
		return nil, fmt.Errorf("load scenario: %w", err)
	}
	now := time.Now().UTC()
	if err := sc.RecordCompletion(input.Score, now); err != nil {
		return nil, err
	}
	if err := uc.repo.Update(ctx, sc); err != nil {
		return nil, fmt.Errorf("persist scenario: %w", err)
	}
	if err := uc.events.PublishScenarioCompleted(ctx, domain.ScenarioCompletedEvent{
		ScenarioID: sc.ID,
		UserID:     input.UserID,
		Score:      input.Score,
		Timestamp:  now,
	}); err != nil {
		return nil, fmt.Errorf("publish completion event: %w", err)
	}
	return sc, nil
}

// SearchScenariosUseCase mirrors the document search pattern.
type SearchScenariosUseCase struct {
	repo ports.ScenarioRepository
}

func NewSearchScenariosUseCase(repo ports.ScenarioRepository) *SearchScenariosUseCase {
	return &SearchScenariosUseCase{repo: repo}
}

func (uc *SearchScenariosUseCase) Search(ctx context.Context, filter domain.ScenarioFilter) (*ports.ScenarioSearchResult, error) {
	filter.Page = filter.Page.Normalize()
	items, total, err := uc.repo.FindByFilters(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("search scenarios: %w", err)
	}
	return &ports.ScenarioSearchResult{
		Items:      items,
		Pagination: domain.NewPagination(filter.Page, total),
		Filters:    filter,
	}, nil
}

func (uc *SearchScenariosUseCase) GetByID(ctx context.Context, id string) (*domain.Scenario, error) {
	sc, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load scenario: %w", err)
	}
	return sc, nil
}
