package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/medcampus/portal/internal/core/domain"
)

type DocumentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

const documentColumns = `id, owner_id, doc_type, file_name, file_size, mime_type, issue_date, description,
storage_key, storage_url, status, extraction, validation_score, rejection_reason,
reviewed_by, reviewed_at, version, previous_version_id, created_at, updated_at`

func (r *DocumentRepository) Create(ctx context.Context, doc *domain.Document) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO documents (`+documentColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)
`, documentArgs(doc)...)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+documentColumns+`
FROM documents
WHERE id = $1
`, id)

	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get document", fmt.Errorf("id %s", id))
		}
		return nil, fmt.Errorf("scan document: %w", err)
	}
	return doc, nil
}

func (r *DocumentRepository) FindByFilters(ctx context.Context, filter domain.DocumentFilter) ([]domain.Document, int, error) {
	conditions := []string{"1=1"}
	args := []any{}

	addCondition := func(clause string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(clause, len(args)))
	}

	if filter.OwnerID != "" {
		addCondition("owner_id = $%d", filter.OwnerID)
	}
	if filter.Type != "" {
		addCondition("doc_type = $%d", string(filter.Type))
	}
	if filter.Status != "" {
		addCondition("status = $%d", string(filter.Status))
	}
	if filter.DateFrom != nil {
		addCondition("created_at >= $%d", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		addCondition("created_at <= $%d", *filter.DateTo)
	}

	where := strings.Join(conditions, " AND ")

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count documents: %w", err)
	}

	orderBy := sortColumn(map[string]string{
		"created_at": "created_at",
		"updated_at": "updated_at",
		"status":     "status",
		"file_name":  "file_name",
	}, filter.Page.SortBy, "created_at")

	query := fmt.Sprintf(`
SELECT %s
FROM documents
WHERE %s
ORDER BY %s %s
LIMIT $%d OFFSET $%d
`, documentColumns, where, orderBy, sortDirection(filter.Page.SortOrder), len(args)+1, len(args)+2)
	args = append(args, filter.Page.Limit, filter.Page.Offset())

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan document row: %w", err)
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate documents: %w", err)
	}
	return docs, total, nil
}

func (r *DocumentRepository) Update(ctx context.Context, doc *domain.Document) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE documents
SET owner_id = $2, doc_type = $3, file_name = $4, file_size = $5, mime_type = $6, issue_date = $7,
	description = $8, storage_key = $9, storage_url = $10, status = $11, extraction = $12,
	validation_score = $13, rejection_reason = $14, reviewed_by = $15, reviewed_at = $16,
	version = $17, previous_version_id = $18, created_at = $19, updated_at = $20
WHERE id = $1
`, documentArgs(doc)...)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update document rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrNotFound, "update document", fmt.Errorf("id %s", doc.ID))
	}
	return nil
}

func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete document rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrNotFound, "delete document", fmt.Errorf("id %s", id))
	}
	return nil
}

func documentArgs(doc *domain.Document) []any {
	var issueDate any
	if !doc.Metadata.IssueDate.IsZero() {
		issueDate = doc.Metadata.IssueDate
	}
	var score any
	if doc.ValidationScore != nil {
		score = *doc.ValidationScore
	}
	var reviewedAt any
	if doc.ReviewedAt != nil {
		reviewedAt = *doc.ReviewedAt
	}
	var previousVersion any
	if doc.PreviousVersionID != "" {
		previousVersion = doc.PreviousVersionID
	}

	return []any{
		doc.ID, doc.OwnerID, string(doc.Metadata.Type), doc.Metadata.FileName, doc.Metadata.FileSize,
		doc.Metadata.MimeType, issueDate, doc.Metadata.Description, doc.StorageKey, doc.StorageURL,
		string(doc.Status), doc.Extraction, score, doc.RejectionReason, doc.ReviewedBy, reviewedAt,
		doc.Version, previousVersion, doc.CreatedAt, doc.UpdatedAt,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*domain.Document, error) {
	var (
		doc             domain.Document
		docType         string
		status          string
		issueDate       sql.NullTime
		score           sql.NullFloat64
		reviewedAt      sql.NullTime
		previousVersion sql.NullString
	)

	err := row.Scan(
		&doc.ID, &doc.OwnerID, &docType, &doc.Metadata.FileName, &doc.Metadata.FileSize,
		&doc.Metadata.MimeType, &issueDate, &doc.Metadata.Description, &doc.StorageKey, &doc.StorageURL,
		&status, &doc.Extraction, &score, &doc.RejectionReason, &doc.ReviewedBy, &reviewedAt,
		&doc.Version, &previousVersion, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	doc.Metadata.Type = domain.DocumentType(docType)
	doc.Status = domain.DocumentStatus(status)
	if issueDate.Valid {
		doc.Metadata.IssueDate = issueDate.Time
	}
	if score.Valid {
		v := score.Float64
		doc.ValidationScore = &v
	}
	if reviewedAt.Valid {
		t := reviewedAt.Time
		doc.ReviewedAt = &t
	}
	if previousVersion.Valid {
		doc.PreviousVersionID = previousVersion.String
	}
	return &doc, nil
}
