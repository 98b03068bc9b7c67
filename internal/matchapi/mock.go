package matchapi

import (
	"context"
	"sync"

	"github.com/mauv0809/wicketkeeper/internal/scoring"
)

var _ MatchClient = (*MockClient)(nil)

// MockClient is a mock implementation of MatchClient for testing.
// It is safe for concurrent use.
type MockClient struct {
	mu sync.Mutex

	GetMatchFunc    func(ctx context.Context, matchID string) (*scoring.Match, error)
	ListMatchesFunc func(ctx context.Context, status scoring.MatchStatus) ([]MatchSummary, error)

	GetMatchCalls    []string
	ListMatchesCalls []scoring.MatchStatus
}

// NewMock creates a new mock client.
func NewMock() *MockClient {
	return &MockClient{}
}

func (m *MockClient) GetMatch(ctx context.Context, matchID string) (*scoring.Match, error) {
	m.mu.Lock()
	m.GetMatchCalls = append(m.GetMatchCalls, matchID)
	fn := m.GetMatchFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, matchID)
	}
	return &scoring.Match{ID: matchID}, nil
}

func (m *MockClient) ListMatches(ctx context.Context, status scoring.MatchStatus) ([]MatchSummary, error) {
	m.mu.Lock()
	m.ListMatchesCalls = append(m.ListMatchesCalls, status)
	fn := m.ListMatchesFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, status)
	}
	return nil, nil
}

// Reset clears all call records.
func (m *MockClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetMatchCalls = nil
	m.ListMatchesCalls = nil
}
