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

type ResourceRepository struct {
	db *sql.DB
}

func NewResourceRepository(db *sql.DB) *ResourceRepository {
	return &ResourceRepository{db: db}
}

const resourceColumns = `id, title, author, category, format, url, tags, year, created_at, updated_at`

func (r *ResourceRepository) Create(ctx context.Context, res *domain.Resource) error {
	args, err := resourceArgs(res)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
INSERT INTO resources (`+resourceColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
`, args...)
	if err != nil {
		return fmt.Errorf("insert resource: %w", err)
	}
	return nil
}

func (r *ResourceRepository) GetByID(ctx context.Context, id string) (*domain.Resource, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+resourceColumns+`
FROM resources
WHERE id = $1
`, id)

	res, err := scanResource(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get resource", fmt.Errorf("id %s", id))
		}
		return nil, fmt.Errorf("scan resource: %w", err)
	}
	return res, nil
}

func (r *ResourceRepository) FindByFilters(ctx context.Context, filter domain.ResourceFilter) ([]domain.Resource, int, error) {
	conditions := []string{"1=1"}
	args := []any{}

	addCondition := func(clause string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(clause, len(args)))
	}

	if filter.Category != "" {
		addCondition("category = $%d", filter.Category)
	}
	if filter.Format != "" {
		addCondition("format = $%d", string(filter.Format))
	}
	if filter.Query != "" {
		args = append(args, filter.Query)
		n := len(args)
		conditions = append(conditions, fmt.Sprintf("(title ILIKE '%%' || $%d || '%%' OR author ILIKE '%%' || $%d || '%%')", n, n))
	}

	where := strings.Join(conditions, " AND ")

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM resources WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count resources: %w", err)
	}

	orderBy := sortColumn(map[string]string{
		"title":      "title",
		"year":       "year",
		"created_at": "created_at",
	}, filter.Page.SortBy, "title")

	query := fmt.Sprintf(`
SELECT %s
FROM resources
WHERE %s
ORDER BY %s %s
LIMIT $%d OFFSET $%d
`, resourceColumns, where, orderBy, sortDirection(filter.Page.SortOrder), len(args)+1, len(args)+2)
	args = append(args, filter.Page.Limit, filter.Page.Offset())

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query resources: %w", err)
	}
	defer rows.Close()

	var resources []domain.Resource
	for rows.Next() {
		res, err := scanResource(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan resource row: %w", err)
		}
		resources = append(resources, *res)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate resources: %w", err)
	}
	return resources, total, nil
}

func resourceArgs(res *domain.Resource) ([]any, error) {
	tagsJSON, err := json.Marshal(res.Tags)
	if err != nil {
		return nil, fmt.Errorf("marshal tags: %w", err)
	}
	return []any{
		res.ID, res.Title, res.Author, res.Category, string(res.Format), res.URL,
		tagsJSON, res.Year, res.CreatedAt, res.UpdatedAt,
	}, nil
}

func scanResource(row rowScanner) (*domain.Resource, error) {
	var (
		res     domain.Resource
		format  string
		tagsRaw []byte
	)

	err := row.Scan(
		&res.ID, &res.Title, &res.Author, &res.Category, &format, &res.URL,
		&tagsRaw, &res.Year, &res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(tagsRaw, &res.Tags); err != nil {
		return nil, fmt.Errorf("unmarshal tags: %w", err)
	}
	res.Format = domain.ResourceFormat(format)
	return &res, nil
}
