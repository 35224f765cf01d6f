package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/verdantlabs/careloop/internal/core"
)

type PinsRepo struct {
	db *sql.DB
}

func NewPinsRepo(db *sql.DB) *PinsRepo {
	return &PinsRepo{db: db}
}

func (r *PinsRepo) Add(ctx context.Context, p core.Pin) (int64, error) {
	query := `INSERT INTO semantic_pins
		(session_id, content, source_message_id, importance, pin_type, category, urgency, patient_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query,
		p.SessionID, p.Content, p.SourceMessageID, p.Importance,
		string(p.Type), p.Category, string(p.Urgency), p.PatientID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert pin: %w", err)
	}
	return res.LastInsertId()
}

// BySession returns pins ranked by importance, newest first among equals.
func (r *PinsRepo) BySession(ctx context.Context, sessionID string, limit int) ([]core.Pin, error) {
	query := `SELECT id, session_id, content, source_message_id, importance, pin_type, category, urgency, patient_id, created_at
		FROM semantic_pins WHERE session_id = ? ORDER BY importance DESC, id DESC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query pins: %w", err)
	}
	defer rows.Close()

	var pins []core.Pin
	for rows.Next() {
		var p core.Pin
		var sourceID sql.NullInt64
		var patientID sql.NullString
		var pinType, urgency string

		if err := rows.Scan(&p.ID, &p.SessionID, &p.Content, &sourceID, &p.Importance,
			&pinType, &p.Category, &urgency, &patientID, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan pin: %w", err)
		}

		p.Type = core.PinType(pinType)
		p.Urgency = core.Urgency(urgency)
		if sourceID.Valid {
			p.SourceMessageID = &sourceID.Int64
		}
		if patientID.Valid {
			p.PatientID = &patientID.String
		}
		pins = append(pins, p)
	}
	return pins, rows.Err()
}
