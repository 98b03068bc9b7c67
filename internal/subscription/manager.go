package subscription

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/wicketkeeper/internal/livescore"
)

// Manager owns at most one live feed connection at a time. It reports
// connection failures to the sink and never retries on its own; wrap the
// transport with NewReconnecting for that.
type Manager struct {
	transport Transport
	sink      Sink

	mu      sync.Mutex
	current *connection
}

type connection struct {
	matchID string
	handle  Handle
	gate    *gate
}

// gate stops delivery to the sink once the connection has been closed. close
// waits for a callback that is already running to finish.
type gate struct {
	mu     sync.Mutex
	closed bool
}

func (g *gate) run(fn func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return
	}
	fn()
}

func (g *gate) close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.closed = true
}

// NewManager creates a manager that feeds sink from transport.
func NewManager(transport Transport, sink Sink) *Manager {
	return &Manager{transport: transport, sink: sink}
}

// Subscribe closes any open connection and opens one for matchID.
func (m *Manager) Subscribe(ctx context.Context, matchID string) error {
	if matchID == "" {
		return ErrNoMatchID
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closeLocked()

	g := &gate{}
	cb := Callbacks{
		OnOpen: func() {
			g.run(func() {
				log.Info("Live feed connected", "matchID", matchID)
				m.sink.SetConnectionStatus(true)
				m.sink.SetError("")
			})
		},
		OnMessage: func(p livescore.InningsPayload) {
			g.run(func() {
				m.sink.UpdateInningsScore(p)
			})
		},
		OnError: func(err error) {
			g.run(func() {
				log.Warn("Live feed error", "matchID", matchID, "error", err)
				m.sink.SetConnectionStatus(false)
				m.sink.SetError(err.Error())
			})
		},
		OnComplete: func() {
			g.run(func() {
				log.Info("Live feed completed", "matchID", matchID)
				m.sink.SetConnectionStatus(false)
			})
		},
	}

	handle, err := m.transport.Connect(ctx, matchID, cb)
	if err != nil {
		g.close()
		log.Error("Failed to open live feed", "matchID", matchID, "error", err)
		m.sink.SetConnectionStatus(false)
		m.sink.SetError(err.Error())
		return err
	}
	m.current = &connection{matchID: matchID, handle: handle, gate: g}
	log.Debug("Subscribed to live feed", "matchID", matchID)
	return nil
}

// Unsubscribe closes the open connection, if any. Once it returns no further
// callbacks from that connection reach the sink.
func (m *Manager) Unsubscribe() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeLocked()
}

func (m *Manager) closeLocked() {
	if m.current == nil {
		return
	}
	c := m.current
	m.current = nil
	c.gate.close()
	if err := c.handle.Close(); err != nil {
		log.Warn("Error closing live feed", "matchID", c.matchID, "error", err)
	}
	log.Debug("Unsubscribed from live feed", "matchID", c.matchID)
}

// MatchID returns the match of the open connection, or "".
func (m *Manager) MatchID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return ""
	}
	return m.current.matchID
}

// Active reports whether a connection is open.
func (m *Manager) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current != nil
}
