package subscription

import (
	"context"
	"sync"

	"github.com/mauv0809/wicketkeeper/internal/livescore"
)

// MockTransport records Connect calls and hands out MockHandles whose
// callbacks tests can drive directly. It is safe for concurrent use.
type MockTransport struct {
	mu sync.Mutex

	// Spies for method calls
	ConnectFunc func(ctx context.Context, matchID string, cb Callbacks) (Handle, error)

	// Call records
	ConnectCalls []string
	Handles      []*MockHandle
}

var _ Transport = (*MockTransport)(nil)

// NewMockTransport creates a new mock transport.
func NewMockTransport() *MockTransport {
	return &MockTransport{}
}

func (m *MockTransport) Connect(ctx context.Context, matchID string, cb Callbacks) (Handle, error) {
	m.mu.Lock()
	m.ConnectCalls = append(m.ConnectCalls, matchID)
	fn := m.ConnectFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, matchID, cb)
	}
	h := &MockHandle{MatchID: matchID, cb: cb}
	m.mu.Lock()
	m.Handles = append(m.Handles, h)
	m.mu.Unlock()
	return h, nil
}

// Handle returns the i-th handle handed out.
func (m *MockTransport) Handle(i int) *MockHandle {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Handles[i]
}

// Calls returns the match ids passed to Connect so far.
func (m *MockTransport) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.ConnectCalls...)
}

// Reset clears all call records.
func (m *MockTransport) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ConnectCalls = nil
	m.Handles = nil
}

// MockHandle is a connection created by MockTransport.
type MockHandle struct {
	MatchID string

	mu         sync.Mutex
	cb         Callbacks
	closeCalls int
	CloseErr   error
}

func (h *MockHandle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closeCalls++
	return h.CloseErr
}

// CloseCalls returns how many times Close was called.
func (h *MockHandle) CloseCalls() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closeCalls
}

func (h *MockHandle) callbacks() Callbacks {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cb
}

// Open fires OnOpen.
func (h *MockHandle) Open() { h.callbacks().open() }

// Message fires OnMessage.
func (h *MockHandle) Message(p livescore.InningsPayload) { h.callbacks().message(p) }

// Fail fires OnError.
func (h *MockHandle) Fail(err error) { h.callbacks().fail(err) }

// Complete fires OnComplete.
func (h *MockHandle) Complete() { h.callbacks().complete() }

// MockSink records what the manager forwards to it.
type MockSink struct {
	mu        sync.Mutex
	Payloads  []livescore.InningsPayload
	Statuses  []bool
	Errors    []string
	connected bool
	lastError string
}

var _ Sink = (*MockSink)(nil)

func (s *MockSink) UpdateInningsScore(p livescore.InningsPayload) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Payloads = append(s.Payloads, p)
	return true
}

func (s *MockSink) SetConnectionStatus(connected bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Statuses = append(s.Statuses, connected)
	s.connected = connected
}

func (s *MockSink) SetError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Errors = append(s.Errors, msg)
	s.lastError = msg
}

// State returns the current connection flag and error.
func (s *MockSink) State() (bool, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected, s.lastError
}

// PayloadCount returns how many payloads were forwarded.
func (s *MockSink) PayloadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Payloads)
}
