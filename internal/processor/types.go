package processor

import (
	"sync"

	"github.com/mauv0809/wicketkeeper/internal/metrics"
	"github.com/mauv0809/wicketkeeper/internal/pubsub"
)

// Processor sits between the live feed and the container. It forwards every
// update and turns the differences between snapshots into notifications and
// metrics.
type Processor struct {
	live     Live
	pubsub   pubsub.PubSubClient
	notifier Notifier
	metrics  metrics.Metrics
	counters metrics.Store
	dryRun   bool

	mu sync.Mutex
}

// milestones are the batting landmarks that trigger a notification.
var milestones = []int{50, 100, 150, 200}
