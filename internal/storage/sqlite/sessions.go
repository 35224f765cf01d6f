package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/verdantlabs/careloop/internal/core"
)

type SessionsRepo struct {
	db *sql.DB
}

func NewSessionsRepo(db *sql.DB) *SessionsRepo {
	return &SessionsRepo{db: db}
}

func (r *SessionsRepo) Create(ctx context.Context, s core.Session) error {
	query := `INSERT INTO sessions (id, patient_id, persona_id, saved, recap) VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, s.ID, s.PatientID, s.PersonaID, s.Saved, s.Recap)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

func (r *SessionsRepo) Get(ctx context.Context, id string) (core.Session, error) {
	query := `SELECT id, patient_id, persona_id, saved, recap, created_at, updated_at FROM sessions WHERE id = ?`

	var s core.Session
	var patientID sql.NullString
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&s.ID, &patientID, &s.PersonaID, &s.Saved, &s.Recap, &s.CreatedAt, &s.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Session{}, core.ErrSessionNotFound
	}
	if err != nil {
		return core.Session{}, fmt.Errorf("failed to query session: %w", err)
	}

	if patientID.Valid {
		s.PatientID = &patientID.String
	}
	return s, nil
}

func (r *SessionsRepo) SetPatient(ctx context.Context, sessionID, patientID string) error {
	query := `UPDATE sessions SET patient_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, patientID, sessionID)
	if err != nil {
		return fmt.Errorf("failed to link session patient: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrSessionNotFound
	}
	return nil
}

func (r *SessionsRepo) Touch(ctx context.Context, sessionID, recap string) error {
	query := `UPDATE sessions SET recap = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, recap, sessionID); err != nil {
		return fmt.Errorf("failed to touch session: %w", err)
	}
	return nil
}
