package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/verdantlabs/careloop/internal/core"
)

type mockMessages struct {
	mu         sync.Mutex
	msgs       []core.StoredMessage
	nextID     int64
	lastNErr   error
	importance map[int64]float64
}

func newMockMessages() *mockMessages {
	return &mockMessages{importance: make(map[int64]float64)}
}

func (m *mockMessages) add(sessionID, role, content string) core.StoredMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	msg := core.StoredMessage{ID: m.nextID, SessionID: sessionID, Role: role, Content: content}
	m.msgs = append(m.msgs, msg)
	return msg
}

func (m *mockMessages) Add(ctx context.Context, msg core.StoredMessage) (int64, error) {
	stored := m.add(msg.SessionID, msg.Role, msg.Content)
	return stored.ID, nil
}

func (m *mockMessages) LastN(ctx context.Context, sessionID string, n int) ([]core.StoredMessage, error) {
	if m.lastNErr != nil {
		return nil, m.lastNErr
	}
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
	m.importance[id] = score
	return nil
}

type mockSummaries struct {
	mu     sync.Mutex
	sums   []core.Summary
	nextID int64
	addErr error
}

func (m *mockSummaries) Add(ctx context.Context, s core.Summary) (int64, error) {
	if m.addErr != nil {
		return 0, m.addErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	s.ID = m.nextID
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
	mu     sync.Mutex
	pins   []core.Pin
	nextID int64
	addErr error
}

func (m *mockPins) Add(ctx context.Context, p core.Pin) (int64, error) {
	if m.addErr != nil {
		return 0, m.addErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	p.ID = m.nextID
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
	sort.Slice(out, func(i, j int) bool {
		if out[i].Importance != out[j].Importance {
			return out[i].Importance > out[j].Importance
		}
		return out[i].ID > out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type mockAI struct {
	mu    sync.Mutex
	calls int
	reply string
	err   error
}

func (m *mockAI) Chat(ctx context.Context, history []core.ChatMessage, opts core.GenOptions) (core.Reply, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.err != nil {
		return core.Reply{}, m.err
	}
	return core.Reply{Content: m.reply, Model: "mock"}, nil
}

func (m *mockAI) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
