package livescore

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/wicketkeeper/internal/scoring"
)

// State is what the live view renders.
type State struct {
	Data        *scoring.Match `json:"data"`
	Loading     bool           `json:"loading"`
	Error       string         `json:"error,omitempty"`
	IsConnected bool           `json:"isConnected"`
}

// Container owns the live match state. All writes go through its methods and
// are serialized, so payloads are folded one at a time in arrival order.
// A published *scoring.Match is never modified afterwards.
type Container struct {
	mu    sync.RWMutex
	state State
	now   func() time.Time
}

// New creates an empty container.
func New() *Container {
	return &Container{now: time.Now}
}

// Snapshot returns the current state.
func (c *Container) Snapshot() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *Container) SetLoading(loading bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Loading = loading
}

// SetMatchScore replaces the snapshot wholesale and clears any error.
func (c *Container) SetMatchScore(m *scoring.Match) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Data = m
	c.state.Error = ""
	c.state.Loading = false
	if m != nil {
		log.Info("Match snapshot loaded", "matchID", m.ID, "innings", len(m.Innings))
	}
}

// UpdateInningsScore merges a live payload. It reports whether the snapshot
// changed; payloads arriving before a snapshot, or for an unknown innings,
// are dropped.
func (c *Container) UpdateInningsScore(p InningsPayload) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Data == nil {
		log.Debug("Live payload dropped, no snapshot loaded", "inningsID", p.ID)
		return false
	}
	next, ok := MergeInnings(c.state.Data, p, c.now())
	if ok {
		c.state.Data = next
	}
	return ok
}

// ApplyBallEvent folds a single delivery into the snapshot.
func (c *Container) ApplyBallEvent(ev scoring.BallEvent) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	next, ok := applyBall(c.state.Data, ev, c.now())
	if ok {
		c.state.Data = next
	}
	return ok
}

// ClearLiveScore resets the container to its initial state.
func (c *Container) ClearLiveScore() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = State{}
}

func (c *Container) SetConnectionStatus(connected bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.IsConnected = connected
}

// SetError records a human readable error. An empty string clears it.
func (c *Container) SetError(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Error = msg
}
