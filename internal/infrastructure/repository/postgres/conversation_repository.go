package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/medcampus/portal/internal/core/domain"
)

type ConversationRepository struct {
	db *sql.DB
}

func NewConversationRepository(db *sql.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

const conversationColumns = `id, user_id, messages, context, active, escalated_agent, escalated_at,
rating, created_at, updated_at`

func (r *ConversationRepository) Create(ctx context.Context, conv *domain.Conversation) error {
	args, err := conversationArgs(conv)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
INSERT INTO conversations (`+conversationColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
`, args...)
	if err != nil {
		return fmt.Errorf("insert conversation: %w", err)
	}
	return nil
}

func (r *ConversationRepository) GetByID(ctx context.Context, id string) (*domain.Conversation, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+conversationColumns+`
FROM conversations
WHERE id = $1
`, id)

	conv, err := scanConversation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get conversation", fmt.Errorf("id %s", id))
		}
		return nil, fmt.Errorf("scan conversation: %w", err)
	}
	return conv, nil
}

// FindActiveByUser returns the most recent open session for the user so a
// new message continues it instead of forking a second thread.
func (r *ConversationRepository) FindActiveByUser(ctx context.Context, userID string) (*domain.Conversation, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+conversationColumns+`
FROM conversations
WHERE user_id = $1 AND active = TRUE
ORDER BY updated_at DESC
LIMIT 1
`, userID)

	conv, err := scanConversation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "find active conversation", fmt.Errorf("user %s", userID))
		}
		return nil, fmt.Errorf("scan conversation: %w", err)
	}
	return conv, nil
}

func (r *ConversationRepository) Update(ctx context.Context, conv *domain.Conversation) error {
	args, err := conversationArgs(conv)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
UPDATE conversations
SET user_id = $2, messages = $3, context = $4, active = $5, escalated_agent = $6,
	escalated_at = $7, rating = $8, created_at = $9, updated_at = $10
WHERE id = $1
`, args...)
	if err != nil {
		return fmt.Errorf("update conversation: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update conversation rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrNotFound, "update conversation", fmt.Errorf("id %s", conv.ID))
	}
	return nil
}

func conversationArgs(conv *domain.Conversation) ([]any, error) {
	messagesJSON, err := json.Marshal(conv.Messages)
	if err != nil {
		return nil, fmt.Errorf("marshal messages: %w", err)
	}
	contextJSON, err := json.Marshal(conv.Context)
	if err != nil {
		return nil, fmt.Errorf("marshal context: %w", err)
	}

	var escalatedAgent, escalatedAt, rating any
	if conv.Escalation != nil {
		escalatedAgent = conv.Escalation.Agent
		escalatedAt = conv.Escalation.At
	}
	if conv.Rating != nil {
		rating = *conv.Rating
	}

	return []any{
		conv.ID, conv.UserID, messagesJSON, contextJSON, conv.Active,
		escalatedAgent, escalatedAt, rating, conv.CreatedAt, conv.UpdatedAt,
	}, nil
}

func scanConversation(row rowScanner) (*domain.Conversation, error) {
	var (
		conv           domain.Conversation
		messagesRaw    []byte
		contextRaw     []byte
		escalatedAgent sql.NullString
		escalatedAt    sql.NullTime
		rating         sql.NullInt64
	)

	err := row.Scan(
		&conv.ID, &conv.UserID, &messagesRaw, &contextRaw, &conv.Active,
		&escalatedAgent, &escalatedAt, &rating, &conv.CreatedAt, &conv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(messagesRaw, &conv.Messages); err != nil {
		return nil, fmt.Errorf("unmarshal messages: %w", err)
	}
	if err := json.Unmarshal(contextRaw, &conv.Context); err != nil {
		return nil, fmt.Errorf("unmarshal context: %w", err)
	}
	if escalatedAgent.Valid {
		conv.Escalation = &domain.Escalation{Agent: escalatedAgent.String, At: escalatedAt.Time}
	}
	if rating.Valid {
		v := int(rating.Int64)
		conv.Rating = &v
	}
	return &conv, nil
}
