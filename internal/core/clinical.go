package core

import "time"

// Structured clinical records. The conversation engine never writes these;
// the surrounding application owns them.

type Patient struct {
	ID        string
	Name      string
	BirthDate time.Time
	CreatedAt time.Time
}

type Medication struct {
	ID        int64
	PatientID string
	Name      string
	Dosage    string
	Schedule  string
	Active    bool
	CreatedAt time.Time
}

type Appointment struct {
	ID          int64
	PatientID   string
	Title       string
	Location    string
	ScheduledAt time.Time
	CreatedAt   time.Time
}

type Vital struct {
	ID         int64
	PatientID  string
	Kind       string // e.g. "blood_pressure", "heart_rate", "weight"
	Value      string
	Unit       string
	RecordedAt time.Time
}
