package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/verdantlabs/careloop/internal/core"
	"github.com/verdantlabs/careloop/pkg/log"
)

type MessagesRepo struct {
	db *sql.DB
}

func NewMessagesRepo(db *sql.DB) *MessagesRepo {
	return &MessagesRepo{db: db}
}

func (r *MessagesRepo) Add(ctx context.Context, msg core.StoredMessage) (int64, error) {
	query := `INSERT INTO messages (session_id, role, content, model, token_count, importance) VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query,
		msg.SessionID, msg.Role, msg.Content, msg.Model, msg.TokenCount, msg.Importance,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert message: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return id, nil
}

// LastN returns the most recent n messages in chronological order.
func (r *MessagesRepo) LastN(ctx context.Context, sessionID string, n int) ([]core.StoredMessage, error) {
	query := `SELECT id, session_id, role, content, model, token_count, importance, created_at
		FROM messages WHERE session_id = ? ORDER BY id DESC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, sessionID, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	messages, err := scanMessages(rows)
	if err != nil {
		return nil, err
	}

	// The query returned rows newest-first; reverse back to chronological
	// order for the model.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	log.FromCtx(ctx).Debug().Int("count", len(messages)).Msg("loaded buffer messages")
	return messages, nil
}

func (r *MessagesRepo) After(ctx context.Context, sessionID string, afterID int64) ([]core.StoredMessage, error) {
	query := `SELECT id, session_id, role, content, model, token_count, importance, created_at
		FROM messages WHERE session_id = ? AND id > ? ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, sessionID, afterID)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	return scanMessages(rows)
}

func (r *MessagesRepo) CountAfter(ctx context.Context, sessionID string, afterID int64) (int, error) {
	query := `SELECT COUNT(*) FROM messages WHERE session_id = ? AND id > ?`

	var count int
	if err := r.db.QueryRowContext(ctx, query, sessionID, afterID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}
	return count, nil
}

func (r *MessagesRepo) SetImportance(ctx context.Context, id int64, score float64) error {
	query := `UPDATE messages SET importance = ? WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, score, id); err != nil {
		return fmt.Errorf("failed to set message importance: %w", err)
	}
	return nil
}

func scanMessages(rows *sql.Rows) ([]core.StoredMessage, error) {
	var messages []core.StoredMessage
	for rows.Next() {
		var msg core.StoredMessage
		var model sql.NullString
		var importance sql.NullFloat64

		if err := rows.Scan(&msg.ID, &msg.SessionID, &msg.Role, &msg.Content,
			&model, &msg.TokenCount, &importance, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}

		msg.Model = model.String
		if importance.Valid {
			msg.Importance = &importance.Float64
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return messages, nil
}
