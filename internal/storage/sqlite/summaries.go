package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/verdantlabs/careloop/internal/core"
)

type SummariesRepo struct {
	db *sql.DB
}

func NewSummariesRepo(db *sql.DB) *SummariesRepo {
	return &SummariesRepo{db: db}
}

func (r *SummariesRepo) Add(ctx context.Context, s core.Summary) (int64, error) {
	query := `INSERT INTO conversation_summaries
		(session_id, content, message_count, start_message_id, end_message_id, importance)
		VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query,
		s.SessionID, s.Content, s.MessageCount, s.StartMessageID, s.EndMessageID, s.Importance,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert summary: %w", err)
	}
	return res.LastInsertId()
}

func (r *SummariesRepo) BySession(ctx context.Context, sessionID string) ([]core.Summary, error) {
	query := `SELECT id, session_id, content, message_count, start_message_id, end_message_id, importance, created_at
		FROM conversation_summaries WHERE session_id = ? ORDER BY start_message_id ASC`

	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query summaries: %w", err)
	}
	defer rows.Close()

	var summaries []core.Summary
	for rows.Next() {
		var s core.Summary
		if err := rows.Scan(&s.ID, &s.SessionID, &s.Content, &s.MessageCount,
			&s.StartMessageID, &s.EndMessageID, &s.Importance, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

func (r *SummariesRepo) Latest(ctx context.Context, sessionID string) (*core.Summary, error) {
	query := `SELECT id, session_id, content, message_count, start_message_id, end_message_id, importance, created_at
		FROM conversation_summaries WHERE session_id = ? ORDER BY end_message_id DESC LIMIT 1`

	var s core.Summary
	err := r.db.QueryRowContext(ctx, query, sessionID).Scan(&s.ID, &s.SessionID, &s.Content,
		&s.MessageCount, &s.StartMessageID, &s.EndMessageID, &s.Importance, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest summary: %w", err)
	}
	return &s, nil
}
