package processor

import (
	"github.com/mauv0809/wicketkeeper/internal/livescore"
	"github.com/mauv0809/wicketkeeper/internal/notifier"
	"github.com/mauv0809/wicketkeeper/internal/scoring"
	"github.com/mauv0809/wicketkeeper/internal/subscription"
)

// Live is the state the processor reads and writes. *livescore.Container
// implements it.
type Live interface {
	subscription.Sink
	ApplyBallEvent(ev scoring.BallEvent) bool
	Snapshot() livescore.State
}

// Notifier defines the notification operations required by the processor.
type Notifier interface {
	notifier.Notifier
}
