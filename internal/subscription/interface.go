package subscription

import (
	"context"

	"github.com/mauv0809/wicketkeeper/internal/livescore"
)

// Handle is an open live feed connection.
type Handle interface {
	Close() error
}

// Transport opens a live feed for one match and reports its lifecycle through
// the callbacks. Callbacks for one connection are delivered one at a time.
type Transport interface {
	Connect(ctx context.Context, matchID string, cb Callbacks) (Handle, error)
}

// Sink receives the effects of the feed. *livescore.Container satisfies it.
type Sink interface {
	UpdateInningsScore(p livescore.InningsPayload) bool
	SetConnectionStatus(connected bool)
	SetError(msg string)
}
