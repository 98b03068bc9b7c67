package notifier

import (
	"sync"

	"github.com/mauv0809/wicketkeeper/internal/scoring"
)

var _ Notifier = (*Mock)(nil)

// WicketCall holds the arguments for a call to SendWicketNotification.
type WicketCall struct {
	Match   *scoring.Match
	Innings scoring.Innings
	Out     scoring.DismissedBatter
}

// MilestoneCall holds the arguments for a call to SendMilestoneNotification.
type MilestoneCall struct {
	Innings   scoring.Innings
	Batter    scoring.Batsman
	Milestone int
}

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	// Spies for method calls
	SendWicketNotificationFunc func(match *scoring.Match, innings scoring.Innings, out scoring.DismissedBatter, dryRun bool) error

	// Call records
	SendWicketNotificationCalls          []WicketCall
	SendMilestoneNotificationCalls       []MilestoneCall
	SendInningsCompleteNotificationCalls []scoring.Innings
	FormatScoreResponseCalls             []*scoring.Match
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendWicketNotificationCalls = nil
	m.SendMilestoneNotificationCalls = nil
	m.SendInningsCompleteNotificationCalls = nil
	m.FormatScoreResponseCalls = nil
}

func (m *Mock) SendWicketNotification(match *scoring.Match, innings scoring.Innings, out scoring.DismissedBatter, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendWicketNotificationCalls = append(m.SendWicketNotificationCalls, WicketCall{Match: match, Innings: innings, Out: out})
	if m.SendWicketNotificationFunc != nil {
		return m.SendWicketNotificationFunc(match, innings, out, dryRun)
	}
	return nil
}

func (m *Mock) SendMilestoneNotification(match *scoring.Match, innings scoring.Innings, batter scoring.Batsman, milestone int, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendMilestoneNotificationCalls = append(m.SendMilestoneNotificationCalls, MilestoneCall{Innings: innings, Batter: batter, Milestone: milestone})
	return nil
}

func (m *Mock) SendInningsCompleteNotification(match *scoring.Match, innings scoring.Innings, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendInningsCompleteNotificationCalls = append(m.SendInningsCompleteNotificationCalls, innings)
	return nil
}

// WicketCalls returns a copy of the recorded wicket notifications.
func (m *Mock) WicketCalls() []WicketCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]WicketCall(nil), m.SendWicketNotificationCalls...)
}

// MilestoneCalls returns a copy of the recorded milestone notifications.
func (m *Mock) MilestoneCalls() []MilestoneCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MilestoneCall(nil), m.SendMilestoneNotificationCalls...)
}

// InningsCompleteCalls returns a copy of the recorded innings notifications.
func (m *Mock) InningsCompleteCalls() []scoring.Innings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]scoring.Innings(nil), m.SendInningsCompleteNotificationCalls...)
}

func (m *Mock) FormatScoreResponse(match *scoring.Match) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FormatScoreResponseCalls = append(m.FormatScoreResponseCalls, match)
	if match == nil {
		return "no live match", nil
	}
	return match.ID, nil
}
