package metrics

import "sync"

var _ Metrics = (*Mock)(nil)

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu               sync.Mutex
	payloadsMerged   int
	payloadsMissed   int
	mergeDurations   []float64
	ballsRecorded    int
	wickets          int
	connected        bool
	feedErrors       int
	reconnects       int
	slackNotifSent   int
	slackNotifFailed int
	startupTime      float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		mergeDurations: make([]float64, 0),
	}
}

func (m *Mock) IncPayloadsMerged() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payloadsMerged++
}

func (m *Mock) IncPayloadsMissed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payloadsMissed++
}

func (m *Mock) ObserveMergeDuration(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mergeDurations = append(m.mergeDurations, duration)
}

func (m *Mock) IncBallsRecorded() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ballsRecorded++
}

func (m *Mock) IncWickets() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wickets++
}

func (m *Mock) SetConnected(connected bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = connected
}

func (m *Mock) IncFeedErrors() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.feedErrors++
}

func (m *Mock) IncReconnects() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reconnects++
}

func (m *Mock) IncSlackNotifSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifSent++
}

func (m *Mock) IncSlackNotifFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifFailed++
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = duration
}

// PayloadsMerged returns the number of times IncPayloadsMerged was called.
func (m *Mock) PayloadsMerged() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.payloadsMerged
}

// PayloadsMissed returns the number of times IncPayloadsMissed was called.
func (m *Mock) PayloadsMissed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.payloadsMissed
}

// MergeDurations returns every observed merge duration.
func (m *Mock) MergeDurations() []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]float64(nil), m.mergeDurations...)
}

// BallsRecorded returns the number of times IncBallsRecorded was called.
func (m *Mock) BallsRecorded() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ballsRecorded
}

// Wickets returns the number of times IncWickets was called.
func (m *Mock) Wickets() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.wickets
}

// Connected returns the last value passed to SetConnected.
func (m *Mock) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

// FeedErrors returns the number of times IncFeedErrors was called.
func (m *Mock) FeedErrors() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.feedErrors
}

// Reconnects returns the number of times IncReconnects was called.
func (m *Mock) Reconnects() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reconnects
}

// SlackNotifSent returns the number of times IncSlackNotifSent was called.
func (m *Mock) SlackNotifSent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifSent
}

// SlackNotifFailed returns the number of times IncSlackNotifFailed was called.
func (m *Mock) SlackNotifFailed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifFailed
}

var _ Store = (*MockStore)(nil)

// MockStore is an in-memory Store for testing.
type MockStore struct {
	mu       sync.Mutex
	counters map[string]int
}

// NewMockStore creates a new mock counter store.
func NewMockStore() *MockStore {
	return &MockStore{counters: make(map[string]int)}
}

func (m *MockStore) Increment(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[key]++
}

func (m *MockStore) GetAll() (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]int, len(m.counters))
	for k, v := range m.counters {
		out[k] = v
	}
	return out, nil
}
