package chat

import (
	"context"
	"sort"
	"sync"

	"github.com/verdantlabs/careloop/internal/core"
)

type mockSessions struct {
	mu       sync.Mutex
	sessions map[string]core.Session
	recaps   map[string]string
}

func newMockSessions() *mockSessions {
	return &mockSessions{sessions: make(map[string]core.Session), recaps: make(map[string]string)}
}

func (m *mockSessions) Create(ctx context.Context, s core.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return nil
}

func (m *mockSessions) Get(ctx context.Context, id string) (core.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return core.Session{}, core.ErrSessionNotFound
	}
	return s, nil
}

func (m *mockSessions) SetPatient(ctx context.Context, sessionID, patientID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return core.ErrSessionNotFound
	}
	s.PatientID = &patientID
	m.sessions[sessionID] = s
	return nil
}

func (m *mockSessions) Touch(ctx context.Context, sessionID, recap string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recaps[sessionID] = recap
	return nil
}

type mockMessages struct {
	mu     sync.Mutex
	msgs   []core.StoredMessage
	nextID int64
	scores map[int64]float64
}

func newMockMessages() *mockMessages {
	return &mockMessages{scores: make(map[int64]float64)}
}

func (m *mockMessages) Add(ctx context.Context, msg core.StoredMessage) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	msg.ID = m.nextID
	m.msgs = append(m.msgs, msg)
	return msg.ID, nil
}

func (m *mockMessages) LastN(ctx context.Context, sessionID string, n int) ([]core.StoredMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []core.StoredMessage
	for _, msg := range m.msgs {
		if msg.SessionID == sessionID {
			out = append(out, msg)
		}
	}
	if len(out) > n {
		out = out[len(out)-n:]
	}
	return out, nil
}

func (m *mockMessages) After(ctx context.Context, sessionID string, afterID int64) ([]core.StoredMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []core.StoredMessage
	for _, msg := range m.msgs {
		if msg.SessionID == sessionID && msg.ID > afterID {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (m *mockMessages) CountAfter(ctx context.Context, sessionID string, afterID int64) (int, error) {
	msgs, _ := m.After(ctx, sessionID, afterID)
	return len(msgs), nil
}

func (m *mockMessages) SetImportance(ctx context.Context, id int64, score float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scores[id] = score
	return nil
}

func (m *mockMessages) bySession(sessionID string) []core.StoredMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []core.StoredMessage
	for _, msg := range m.msgs {
		if msg.SessionID == sessionID {
			out = append(out, msg)
		}
	}
	return out
}

type mockSummaries struct {
	mu   sync.Mutex
	sums []core.Summary
}

func (m *mockSummaries) Add(ctx context.Context, s core.Summary) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.ID = int64(len(m.sums) + 1)
	m.sums = append(m.sums, s)
	return s.ID, nil
}

func (m *mockSummaries) BySession(ctx context.Context, sessionID string) ([]core.Summary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []core.Summary
	for _, s := range m.sums {
		if s.SessionID == sessionID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartMessageID < out[j].StartMessageID })
	return out, nil
}

func (m *mockSummaries) Latest(ctx context.Context, sessionID string) (*core.Summary, error) {
	sums, _ := m.BySession(ctx, sessionID)
	if len(sums) == 0 {
		return nil, nil
	}
	latest := sums[len(sums)-1]
	return &latest, nil
}

type mockPins struct {
	mu   sync.Mutex
	pins []core.Pin
}

func (m *mockPins) Add(ctx context.Context, p core.Pin) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = int64(len(m.pins) + 1)
	m.pins = append(m.pins, p)
	return p.ID, nil
}

func (m *mockPins) BySession(ctx context.Context, sessionID string, limit int) ([]core.Pin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []core.Pin
	for _, p := range m.pins {
		if p.SessionID == sessionID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Importance > out[j].Importance })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type mockClinical struct {
	patients     []core.Patient
	medications  map[string][]core.Medication
	appointments map[string][]core.Appointment
	vitals       map[string][]core.Vital
	failWith     error
}

func (m *mockClinical) GetPatient(ctx context.Context, id string) (core.Patient, error) {
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

func (m *mockClinical) ListPatients(ctx context.Context) ([]core.Patient, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	return m.patients, nil
}

func (m *mockClinical) ListMedications(ctx context.Context, patientID string) ([]core.Medication, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	return m.medications[patientID], nil
}

func (m *mockClinical) ListAppointments(ctx context.Context, patientID string) ([]core.Appointment, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	return m.appointments[patientID], nil
}

func (m *mockClinical) ListVitals(ctx context.Context, patientID string, r core.VitalRange) ([]core.Vital, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	return m.vitals[patientID], nil
}

// mockAI records every payload it is handed so tests can inspect exactly
// what the model saw.
type mockAI struct {
	mu       sync.Mutex
	payloads [][]core.ChatMessage
	reply    string
	err      error
}

func (m *mockAI) Chat(ctx context.Context, history []core.ChatMessage, opts core.GenOptions) (core.Reply, error) {
	m.mu.Lock()
	snapshot := make([]core.ChatMessage, len(history))
	copy(snapshot, history)
	m.payloads = append(m.payloads, snapshot)
	m.mu.Unlock()
	if m.err != nil {
		return core.Reply{}, m.err
	}
	return core.Reply{Content: m.reply, Model: "mock", CompletionTokens: 12}, nil
}

func (m *mockAI) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.payloads)
}

func (m *mockAI) lastPayload() []core.ChatMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.payloads) == 0 {
		return nil
	}
	return m.payloads[len(m.payloads)-1]
}

// mockStreamingAI additionally implements ChatStream, emitting the reply in
// fixed fragments. A non-nil streamErr is emitted after the fragments in
// place of the completion marker, like a dropped connection.
type mockStreamingAI struct {
	mockAI
	fragments []string
	streamErr error
}

func (m *mockStreamingAI) ChatStream(ctx context.Context, history []core.ChatMessage, opts core.GenOptions) (<-chan core.StreamDelta, error) {
	m.mu.Lock()
	snapshot := make([]core.ChatMessage, len(history))
	copy(snapshot, history)
	m.payloads = append(m.payloads, snapshot)
	m.mu.Unlock()

	ch := make(chan core.StreamDelta)
	go func() {
		defer close(ch)
		for _, f := range m.fragments {
			ch <- core.StreamDelta{Content: f}
		}
		if m.streamErr != nil {
			ch <- core.StreamDelta{Err: m.streamErr}
			return
		}
		ch <- core.StreamDelta{Done: true, Usage: &core.Usage{PromptTokens: 40, CompletionTokens: 9}}
	}()
	return ch, nil
}
