package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/medcampus/portal/internal/core/domain"
	"github.com/medcampus/portal/internal/core/ports"
)

// ManageScenarioUseCase covers authoring: create, update, delete and
// republish. Mutations are restricted to the creator unless the actor
// is an admin.
type ManageScenarioUseCase struct {
	repo ports.ScenarioRepository
}

func NewManageScenarioUseCase(repo ports.ScenarioRepository) *ManageScenarioUseCase {
	return &ManageScenarioUseCase{repo: repo}
}

func (uc *ManageScenarioUseCase) Create(ctx context.Context, input ports.ScenarioInput) (*domain.Scenario, error) {
	now := time.Now().UTC()
	sc := &domain.Scenario{
		ID:               uuid.NewString(),
		Title:            input.Title,
		Description:      input.Description,
		Category:         domain.ScenarioCategory(input.Category),
		Difficulty:       domain.Difficulty(input.Difficulty),
		ModelURL:         input.ModelURL,
		ThumbnailURL:     input.ThumbnailURL,
		Steps:            input.Steps,
		Criteria:         input.Criteria,
		EstimatedMinutes: input.EstimatedMinutes,
		CreatorID:        input.CreatorID,
		Public:           input.Public,
		Version:          1,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	if err := uc.repo.Create(ctx, sc); err != nil {
		return nil, fmt.Errorf("create scenario: %w", err)
	}
	return sc, nil
}

func (uc *ManageScenarioUseCase) Update(ctx context.Context, id, actorID string, admin bool, input ports.ScenarioInput) (*domain.Scenario, error) {
	sc, err := uc.loadOwned(ctx, id, actorID, admin, "update scenario")
	if err != nil {
		return nil, err
	}

	sc.Title = input.Title
	sc.Description = input.Description
	sc.Category = domain.ScenarioCategory(input.Category)
	sc.Difficulty = domain.Difficulty(input.Difficulty)
	if input.ModelURL != "" {
		sc.ModelURL = input.ModelURL
	}
	if input.ThumbnailURL != "" {
		sc.ThumbnailURL = input.ThumbnailURL
	}
	sc.Steps = input.Steps
	sc.Criteria = input.Criteria
	sc.EstimatedMinutes = input.EstimatedMinutes
	sc.Public = input.Public
	sc.UpdatedAt = time.Now().UTC()

	if err := sc.Validate(); err != nil {
		return nil, err
	}
	if err := uc.repo.Update(ctx, sc); err != nil {
		return nil, fmt.Errorf("persist scenario: %w", err)
	}
	return sc, nil
}

func (uc *ManageScenarioUseCase) Delete(ctx context.Context, id, actorID string, admin bool) error {
	if _, err := uc.loadOwned(ctx, id, actorID, admin, "delete scenario"); err != nil {
		return err
	}
	if err := uc.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete scenario: %w", err)
	}
	return nil
}

func (uc *ManageScenarioUseCase) Republish(ctx context.Context, id, actorID string, admin bool) (*domain.Scenario, error) {
	sc, err := uc.loadOwned(ctx, id, actorID, admin, "republish scenario")
	if err != nil {
		return nil, err
	}
	sc.Republish(time.Now().UTC())
	if err := uc.repo.Update(ctx, sc); err != nil {
		return nil, fmt.Errorf("persist scenario: %w", err)
	}
	return sc, nil
}

func (uc *ManageScenarioUseCase) loadOwned(ctx context.Context, id, actorID string, admin bool, operation string) (*domain.Scenario, error) {
	sc, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load scenario: %w", err)
	}
	if !admin && sc.CreatorID != actorID {
		return nil, domain.WrapError(domain.ErrForbidden, operation, fmt.Errorf("scenario %s is not owned by %s", id, actorID))
	}
	return sc, nil
}
