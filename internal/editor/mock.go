package editor

import "sync"

// MockStore is an in-memory implementation of the Store interface for testing.
// It is safe for concurrent use.
type MockStore struct {
	mu       sync.Mutex
	sessions map[string]Session

	// Spies for method calls
	SaveSessionFunc func(session *Session) error
	GetSessionFunc  func(id string) (*Session, error)

	// Call records
	SaveSessionCalls   []Session
	GetSessionCalls    []string
	DeleteSessionCalls []string
}

// NewMock creates a new mock instance.
func NewMock() *MockStore {
	return &MockStore{sessions: make(map[string]Session)}
}

var _ Store = (*MockStore)(nil)

// Reset clears all call records.
func (m *MockStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveSessionCalls = nil
	m.GetSessionCalls = nil
	m.DeleteSessionCalls = nil
}

func (m *MockStore) SaveSession(session *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveSessionCalls = append(m.SaveSessionCalls, *session)
	if m.SaveSessionFunc != nil {
		return m.SaveSessionFunc(session)
	}
	m.sessions[session.ID] = cloneSession(session)
	return nil
}

func (m *MockStore) GetSession(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetSessionCalls = append(m.GetSessionCalls, id)
	if m.GetSessionFunc != nil {
		return m.GetSessionFunc(id)
	}
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	out := cloneSession(&s)
	return &out, nil
}

func (m *MockStore) ListSessions() ([]Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, cloneSession(&s))
	}
	return out, nil
}

func (m *MockStore) DeleteSession(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeleteSessionCalls = append(m.DeleteSessionCalls, id)
	if _, ok := m.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}

// cloneSession copies the editor so callers cannot mutate stored state.
func cloneSession(s *Session) Session {
	out := *s
	if s.Editor != nil {
		ed := *s.Editor
		ed.Overs = make([]Over, len(s.Editor.Overs))
		for i, o := range s.Editor.Overs {
			ed.Overs[i] = Over{Balls: append([]string{}, o.Balls...)}
		}
		ed.Batsmen = append([]Batsman(nil), s.Editor.Batsmen...)
		ed.Opening = append([]Batsman(nil), s.Editor.Opening...)
		out.Editor = &ed
	}
	return out
}
