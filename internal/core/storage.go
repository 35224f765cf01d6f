package core

import (
	"context"
	"time"
)

type SessionsRepository interface {
	Create(ctx context.Context, s Session) error
	Get(ctx context.Context, id string) (Session, error)
	SetPatient(ctx context.Context, sessionID, patientID string) error
	Touch(ctx context.Context, sessionID, recap string) error
}

type MessagesRepository interface {
	Add(ctx context.Context, msg StoredMessage) (int64, error)
	LastN(ctx context.Context, sessionID string, n int) ([]StoredMessage, error)
	// After returns messages with id > afterID in chronological order.
	After(ctx context.Context, sessionID string, afterID int64) ([]StoredMessage, error)
	CountAfter(ctx context.Context, sessionID string, afterID int64) (int, error)
	SetImportance(ctx context.Context, id int64, score float64) error
}

type SummariesRepository interface {
	Add(ctx context.Context, s Summary) (int64, error)
	BySession(ctx context.Context, sessionID string) ([]Summary, error)
	// Latest returns nil when the session has no summaries yet.
	Latest(ctx context.Context, sessionID string) (*Summary, error)
}

type PinsRepository interface {
	Add(ctx context.Context, p Pin) (int64, error)
	BySession(ctx context.Context, sessionID string, limit int) ([]Pin, error)
}

// VitalRange bounds a vitals lookup. Zero values mean unbounded.
type VitalRange struct {
	From time.Time
	To   time.Time
}

// ClinicalStore is the read-only adapter over the structured record domains.
// "No rows" is an empty slice, never an error; errors are reserved for
// connectivity and integrity failures.
type ClinicalStore interface {
	GetPatient(ctx context.Context, id string) (Patient, error)
	ListPatients(ctx context.Context) ([]Patient, error)
	ListMedications(ctx context.Context, patientID string) ([]Medication, error)
	ListAppointments(ctx context.Context, patientID string) ([]Appointment, error)
	ListVitals(ctx context.Context, patientID string, r VitalRange) ([]Vital, error)
}
