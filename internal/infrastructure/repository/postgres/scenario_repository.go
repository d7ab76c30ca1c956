package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/medcampus/portal/internal/core/domain"
)

type ScenarioRepository struct {
	db *sql.DB
}

func NewScenarioRepository(db *sql.DB) *ScenarioRepository {
	return &ScenarioRepository{db: db}
}

const scenarioColumns = `id, title, description, category, difficulty, model_url, thumbnail_url,
steps, criteria, estimated_minutes, creator_id, public, version, completion_count, average_score,
created_at, updated_at`

func (r *ScenarioRepository) Create(ctx context.Context, sc *domain.Scenario) error {
	args, err := scenarioArgs(sc)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
INSERT INTO scenarios (`+scenarioColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
`, args...)
	if err != nil {
		return fmt.Errorf("insert scenario: %w", err)
	}
	return nil
}

func (r *ScenarioRepository) GetByID(ctx context.Context, id string) (*domain.Scenario, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+scenarioColumns+`
FROM scenarios
WHERE id = $1
`, id)

	sc, err := scanScenario(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get scenario", fmt.Errorf("id %s", id))
		}
		return nil, fmt.Errorf("scan scenario: %w", err)
	}
	return sc, nil
}

func (r *ScenarioRepository) FindByFilters(ctx context.Context, filter domain.ScenarioFilter) ([]domain.Scenario, int, error) {
	conditions := []string{"1=1"}
	args := []any{}

	addCondition := func(clause string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(clause, len(args)))
	}

	if filter.CreatorID != "" {
		addCondition("creator_id = $%d", filter.CreatorID)
	}
	if filter.Category != "" {
		addCondition("category = $%d", string(filter.Category))
	}
	if filter.Difficulty != "" {
		addCondition("difficulty = $%d", string(filter.Difficulty))
	}
	if filter.PublicOnly {
		conditions = append(conditions, "public = TRUE")
	}
	if filter.Query != "" {
		// Full-text match backed by the GIN index on title+description.
		addCondition("to_tsvector('english', title || ' ' || description) @@ plainto_tsquery('english', $%d)", filter.Query)
	}

	where := strings.Join(conditions, " AND ")

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM scenarios WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count scenarios: %w", err)
	}

	orderBy := sortColumn(map[string]string{
		"created_at":    "created_at",
		"title":         "title",
		"average_score": "average_score",
		"difficulty":    "difficulty",
	}, filter.Page.SortBy, "created_at")

	query := fmt.Sprintf(`
SELECT %s
FROM scenarios
WHERE %s
ORDER BY %s %s
LIMIT $%d OFFSET $%d
`, scenarioColumns, where, orderBy, sortDirection(filter.Page.SortOrder), len(args)+1, len(args)+2)
	args = append(args, filter.Page.Limit, filter.Page.Offset())

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query scenarios: %w", err)
	}
	defer rows.Close()

	var scenarios []domain.Scenario
	for rows.Next() {
		sc, err := scanScenario(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan scenario row: %w", err)
		}
		scenarios = append(scenarios, *sc)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate scenarios: %w", err)
	}
	return scenarios, total, nil
}

func (r *ScenarioRepository) Update(ctx context.Context, sc *domain.Scenario) error {
	args, err := scenarioArgs(sc)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
UPDATE scenarios
SET title = $2, description = $3, category = $4, difficulty = $5, model_url = $6, thumbnail_url = $7,
	steps = $8, criteria = $9, estimated_minutes = $10, creator_id = $11, public = $12,
	version = $13, completion_count = $14, average_score = $15, created_at = $16, updated_at = $17
WHERE id = $1
`, args...)
	if err != nil {
		return fmt.Errorf("update scenario: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update scenario rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrNotFound, "update scenario", fmt.Errorf("id %s", sc.ID))
	}
	return nil
}

func (r *ScenarioRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM scenarios WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete scenario: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete scenario rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrNotFound, "delete scenario", fmt.Errorf("id %s", id))
	}
	return nil
}

func scenarioArgs(sc *domain.Scenario) ([]any, error) {
	stepsJSON, err := json.Marshal(sc.Steps)
	if err != nil {
		return nil, fmt.Errorf("marshal steps: %w", err)
	}
	criteriaJSON, err := json.Marshal(sc.Criteria)
	if err != nil {
		return nil, fmt.Errorf("marshal criteria: %w", err)
	}
	return []any{
		sc.ID, sc.Title, sc.Description, string(sc.Category), string(sc.Difficulty), sc.ModelURL,
		sc.ThumbnailURL, stepsJSON, criteriaJSON, sc.EstimatedMinutes, sc.CreatorID, sc.Public,
		sc.Version, sc.CompletionCount, sc.AverageScore, sc.CreatedAt, sc.UpdatedAt,
	}, nil
}

func scanScenario(row rowScanner) (*domain.Scenario, error) {
	var (
		sc          domain.Scenario
		category    string
		difficulty  string
		stepsRaw    []byte
		criteriaRaw []byte
	)

	err := row.Scan(
		&sc.ID, &sc.Title, &sc.Description, &category, &difficulty, &sc.ModelURL, &sc.ThumbnailURL,
		&stepsRaw, &criteriaRaw, &sc.EstimatedMinutes, &sc.CreatorID, &sc.Public, &sc.Version,
		&sc.CompletionCount, &sc.AverageScore, &sc.CreatedAt, &sc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(stepsRaw, &sc.Steps); err != nil {
		return nil, fmt.Errorf("unmarshal steps: %w", err)
	}
	if err := json.Unmarshal(criteriaRaw, &sc.Criteria); err != nil {
		return nil, fmt.Errorf("unmarshal criteria: %w", err)
	}
	sc.Category = domain.ScenarioCategory(category)
	sc.Difficulty = domain.Difficulty(difficulty)
	return &sc, nil
}
