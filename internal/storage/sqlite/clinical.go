package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/verdantlabs/careloop/internal/core"
)

// ClinicalStore is the read-only adapter over the structured record domains.
// The conversation engine never writes through it; the surrounding
// application owns these tables.
type ClinicalStore struct {
	db *sql.DB
}

func NewClinicalStore(db *sql.DB) *ClinicalStore {
	return &ClinicalStore{db: db}
}

func (s *ClinicalStore) GetPatient(ctx context.Context, id string) (core.Patient, error) {
	query := `SELECT id, name, birth_date, created_at FROM patients WHERE id = ?`

	var p core.Patient
	var birthDate sql.NullTime
	err := s.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.Name, &birthDate, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Patient{}, core.ErrPatientNotFound
	}
	if err != nil {
		return core.Patient{}, fmt.Errorf("%w: patient lookup: %v", core.ErrStoreUnavailable, err)
	}
	p.BirthDate = birthDate.Time
	return p, nil
}

func (s *ClinicalStore) ListPatients(ctx context.Context) ([]core.Patient, error) {
	query := `SELECT id, name, birth_date, created_at FROM patients ORDER BY name ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: patients query: %v", core.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	patients := make([]core.Patient, 0)
	for rows.Next() {
		var p core.Patient
		var birthDate sql.NullTime
		if err := rows.Scan(&p.ID, &p.Name, &birthDate, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: patient scan: %v", core.ErrStoreUnavailable, err)
		}
		p.BirthDate = birthDate.Time
		patients = append(patients, p)
	}
	return patients, rows.Err()
}

func (s *ClinicalStore) ListMedications(ctx context.Context, patientID string) ([]core.Medication, error) {
	query := `SELECT id, patient_id, name, dosage, schedule, active, created_at
		FROM medications WHERE patient_id = ? AND active = 1 ORDER BY name ASC`

	rows, err := s.db.QueryContext(ctx, query, patientID)
	if err != nil {
		return nil, fmt.Errorf("%w: medications query: %v", core.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	meds := make([]core.Medication, 0)
	for rows.Next() {
		var m core.Medication
		if err := rows.Scan(&m.ID, &m.PatientID, &m.Name, &m.Dosage, &m.Schedule, &m.Active, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: medication scan: %v", core.ErrStoreUnavailable, err)
		}
		meds = append(meds, m)
	}
	return meds, rows.Err()
}

func (s *ClinicalStore) ListAppointments(ctx context.Context, patientID string) ([]core.Appointment, error) {
	query := `SELECT id, patient_id, title, location, scheduled_at, created_at
		FROM appointments WHERE patient_id = ? ORDER BY scheduled_at ASC`

	rows, err := s.db.QueryContext(ctx, query, patientID)
	if err != nil {
		return nil, fmt.Errorf("%w: appointments query: %v", core.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	appts := make([]core.Appointment, 0)
	for rows.Next() {
		var a core.Appointment
		if err := rows.Scan(&a.ID, &a.PatientID, &a.Title, &a.Location, &a.ScheduledAt, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: appointment scan: %v", core.ErrStoreUnavailable, err)
		}
		appts = append(appts, a)
	}
	return appts, rows.Err()
}

func (s *ClinicalStore) ListVitals(ctx context.Context, patientID string, r core.VitalRange) ([]core.Vital, error) {
	query := `SELECT id, patient_id, kind, value, unit, recorded_at FROM vitals WHERE patient_id = ?`
	args := []any{patientID}

	if !r.From.IsZero() {
		query += ` AND recorded_at >= ?`
		args = append(args, r.From)
	}
	if !r.To.IsZero() {
		query += ` AND recorded_at <= ?`
		args = append(args, r.To)
	}
	query += ` ORDER BY recorded_at ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: vitals query: %v", core.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	vitals := make([]core.Vital, 0)
	for rows.Next() {
		var v core.Vital
		if err := rows.Scan(&v.ID, &v.PatientID, &v.Kind, &v.Value, &v.Unit, &v.RecordedAt); err != nil {
			return nil, fmt.Errorf("%w: vital scan: %v", core.ErrStoreUnavailable, err)
		}
		vitals = append(vitals, v)
	}
	return vitals, rows.Err()
}
