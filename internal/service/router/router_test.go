package router

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/verdantlabs/careloop/internal/config"
	"github.com/verdantlabs/careloop/internal/core"
)

type mockStore struct {
	patients     []core.Patient
	medications  map[string][]core.Medication
	appointments map[string][]core.Appointment
	vitals       map[string][]core.Vital
	failWith     error
}

func (m *mockStore) GetPatient(ctx context.Context, id string) (core.Patient, error) {
	if m.failWith != nil {
		return core.Patient{}, m.failWith
	}
	for _, p := range m.patients {
		if p.ID == id {
			return p, nil
		}
	}
	return core.Patient{}, core.ErrPatientNotFound
}

func (m *mockStore) ListPatients(ctx context.Context) ([]core.Patient, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	return m.patients, nil
}

func (m *mockStore) ListMedications(ctx context.Context, patientID string) ([]core.Medication, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	return m.medications[patientID], nil
}

func (m *mockStore) ListAppointments(ctx context.Context, patientID string) ([]core.Appointment, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	return m.appointments[patientID], nil
}

func (m *mockStore) ListVitals(ctx context.Context, patientID string, r core.VitalRange) ([]core.Vital, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	return m.vitals[patientID], nil
}

var testNow = time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)

func newTestRouter(store *mockStore) *Router {
	cfg := &config.MemoryConfig{VitalsWindowDays: 7, MaxPins: 20, TokenBudget: 2048, BufferSize: 10, SummaryThreshold: 8, PinScoreThreshold: 0.5}
	r := NewRouter(store, cfg)
	r.now = func() time.Time { return testNow }
	return r
}

func twoPatientStore() *mockStore {
	return &mockStore{
		patients: []core.Patient{
			{ID: "p1", Name: "Aurora Quist"},
			{ID: "p2", Name: "Ben Okafor"},
		},
		medications: map[string][]core.Medication{
			"p1": {
				{ID: 1, PatientID: "p1", Name: "Metformin", Dosage: "500mg", Schedule: "twice daily", Active: true},
				{ID: 2, PatientID: "p1", Name: "Lisinopril", Dosage: "10mg", Schedule: "every morning", Active: true},
			},
		},
		appointments: map[string][]core.Appointment{
			"p1": {
				{ID: 1, PatientID: "p1", Title: "Cardiology follow-up", Location: "Clinic B", ScheduledAt: testNow.AddDate(0, 0, 3)},
				{ID: 2, PatientID: "p1", Title: "Old dental visit", ScheduledAt: testNow.AddDate(0, 0, -30)},
			},
		},
		vitals: map[string][]core.Vital{
			"p1": {
				{ID: 1, PatientID: "p1", Kind: "blood_pressure", Value: "128/82", Unit: "mmHg", RecordedAt: testNow.AddDate(0, 0, -1)},
			},
		},
	}
}

func TestRoute_GeneralGoesConversational(t *testing.T) {
	r := newTestRouter(twoPatientStore())

	res, err := r.Route(context.Background(), core.Session{ID: "s1"}, "good morning, how are you?")
	require.NoError(t, err)
	assert.Equal(t, DecideConversational, res.Decision)
	assert.Nil(t, res.Answer)
}

func TestRoute_MedicationsByName(t *testing.T) {
	r := newTestRouter(twoPatientStore())

	res, err := r.Route(context.Background(), core.Session{ID: "s1"}, "What medications is Aurora taking?")
	require.NoError(t, err)
	require.Equal(t, DecideStructured, res.Decision)
	require.NotNil(t, res.Answer)

	assert.True(t, res.Answer.AnsweredFromStore)
	assert.Equal(t, "medication", res.Answer.Domain)
	assert.Equal(t, "p1", res.Answer.SubjectID)
	assert.Equal(t, 2, res.Answer.FactsUsed)
	assert.Contains(t, res.Answer.RenderedText, "Metformin 500mg")
	assert.Contains(t, res.Answer.RenderedText, "Lisinopril 10mg")
	assert.Contains(t, res.Answer.RenderedText, "Aurora Quist")
}

func TestRoute_PronounUsesSessionPatient(t *testing.T) {
	r := newTestRouter(twoPatientStore())

	patientID := "p1"
	sess := core.Session{ID: "s1", PatientID: &patientID}
	res, err := r.Route(context.Background(), sess, "when is her next appointment?")
	require.NoError(t, err)
	require.Equal(t, DecideStructured, res.Decision)

	assert.Equal(t, "appointment", res.Answer.Domain)
	assert.Equal(t, "p1", res.Answer.SubjectID)
	// Only the future appointment counts.
	assert.Equal(t, 1, res.Answer.FactsUsed)
	assert.Contains(t, res.Answer.RenderedText, "Cardiology follow-up")
	assert.NotContains(t, res.Answer.RenderedText, "Old dental visit")
}

func TestRoute_UnresolvedSubjectAsksForClarification(t *testing.T) {
	r := newTestRouter(twoPatientStore())

	res, err := r.Route(context.Background(), core.Session{ID: "s1"}, "when is her next appointment?")
	require.NoError(t, err)
	assert.Equal(t, DecideClarify, res.Decision)
	assert.Nil(t, res.Answer)
	assert.NotEmpty(t, res.Clarification)
}

func TestRoute_SolePatientDefault(t *testing.T) {
	store := twoPatientStore()
	store.patients = store.patients[:1]
	r := newTestRouter(store)

	res, err := r.Route(context.Background(), core.Session{ID: "s1"}, "what were her blood pressure readings?")
	require.NoError(t, err)
	require.Equal(t, DecideStructured, res.Decision)
	assert.Equal(t, "vitals", res.Answer.Domain)
	assert.Equal(t, 1, res.Answer.FactsUsed)
	assert.Contains(t, res.Answer.RenderedText, "128/82")
	assert.Contains(t, res.Answer.RenderedText, "blood pressure")
}

func TestRoute_EmptyRecordsStateAbsenceLiterally(t *testing.T) {
	store := twoPatientStore()
	r := newTestRouter(store)

	res, err := r.Route(context.Background(), core.Session{ID: "s1"}, "Does Ben have any prescriptions?")
	require.NoError(t, err)
	require.Equal(t, DecideStructured, res.Decision)
	assert.Equal(t, 0, res.Answer.FactsUsed)
	assert.Equal(t, "No medication records found for Ben Okafor.", res.Answer.RenderedText)
}

func TestRoute_StoreFailureSurfaces(t *testing.T) {
	store := twoPatientStore()
	store.failWith = fmt.Errorf("%w: connection refused", core.ErrStoreUnavailable)
	r := newTestRouter(store)

	_, err := r.Route(context.Background(), core.Session{ID: "s1"}, "What medications is Aurora taking?")
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrStoreUnavailable))
}

func TestDetectNamed_WordBoundaries(t *testing.T) {
	store := &mockStore{patients: []core.Patient{{ID: "p1", Name: "Ann Reyes"}}}
	resolver := NewSubjectResolver(store)

	p, err := resolver.DetectNamed(context.Background(), "did Ann take her pills?")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "p1", p.ID)

	// "ann" inside another word is not a mention.
	p, err = resolver.DetectNamed(context.Background(), "did the planner update?")
	require.NoError(t, err)
	assert.Nil(t, p)
}
