package chat

import "sync"

// sessionLocks serializes turns per session. Concurrent turns on one session
// would otherwise read the same context snapshot and both append, producing
// duplicate summary triggers. Locks are never acquired transitively, so
// cross-session deadlock is structurally impossible.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{locks: make(map[string]*sync.Mutex)}
}

func (l *sessionLocks) acquire(sessionID string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	m, ok := l.locks[sessionID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[sessionID] = m
	}
	return m
}
