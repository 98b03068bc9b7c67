package pubsub

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"cloud.google.com/go/pubsub"
	"github.com/charmbracelet/log"
	"github.com/mauv0809/wicketkeeper/internal/livescore"
	"github.com/mauv0809/wicketkeeper/internal/subscription"
)

// Transport receives live innings payloads from a Pub/Sub subscription.
// Messages are msgpack-encoded livescore.InningsPayload values tagged with
// the matchId attribute; messages for other matches are acked and skipped.
type Transport struct {
	client         *pubsub.Client
	subscriptionID string
}

var _ subscription.Transport = (*Transport)(nil)

// ErrSubscriptionNotFound is reported through OnError when the feed
// subscription does not exist. No open is reported for such a connection.
var ErrSubscriptionNotFound = errors.New("pubsub subscription not found")

// NewTransport creates a transport reading from subscriptionID.
func NewTransport(c *pubsub.Client, subscriptionID string) *Transport {
	return &Transport{client: c, subscriptionID: subscriptionID}
}

type receiveHandle struct {
	cancel  context.CancelFunc
	done    chan struct{}
	mu      sync.Mutex
	closing bool
	once    sync.Once
}

func (h *receiveHandle) isClosing() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closing
}

// Close stops receiving and waits for in-flight callbacks to return.
func (h *receiveHandle) Close() error {
	h.once.Do(func() {
		h.mu.Lock()
		h.closing = true
		h.mu.Unlock()
		h.cancel()
		<-h.done
	})
	return nil
}

func (t *Transport) Connect(ctx context.Context, matchID string, cb subscription.Callbacks) (subscription.Handle, error) {
	sub := t.client.Subscription(t.subscriptionID)
	// One message at a time keeps payloads in delivery order.
	sub.ReceiveSettings.NumGoroutines = 1
	sub.ReceiveSettings.MaxOutstandingMessages = 1

	ctx, cancel := context.WithCancel(ctx)
	h := &receiveHandle{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(h.done)
		if err := t.checkSubscription(ctx, sub); err != nil {
			if h.isClosing() {
				return
			}
			log.Error("Pub/Sub feed unavailable", "subscription", t.subscriptionID, "error", err)
			if cb.OnError != nil {
				cb.OnError(err)
			}
			return
		}
		if h.isClosing() {
			return
		}
		if cb.OnOpen != nil {
			cb.OnOpen()
		}
		err := sub.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
			defer msg.Ack()
			if msg.Attributes[AttrMatchID] != matchID {
				return
			}
			var p livescore.InningsPayload
			if err := Decode(msg.Data, &p); err != nil {
				log.Warn("Skipping malformed live payload", "matchID", matchID, "messageID", msg.ID, "error", err)
				return
			}
			if h.isClosing() {
				return
			}
			if cb.OnMessage != nil {
				cb.OnMessage(p)
			}
		})
		if h.isClosing() {
			return
		}
		if err != nil {
			log.Error("Pub/Sub receive failed", "subscription", t.subscriptionID, "error", err)
			if cb.OnError != nil {
				cb.OnError(err)
			}
			return
		}
		if cb.OnComplete != nil {
			cb.OnComplete()
		}
	}()
	return h, nil
}

func (t *Transport) checkSubscription(ctx context.Context, sub *pubsub.Subscription) error {
	ok, err := sub.Exists(ctx)
	if err != nil {
		return fmt.Errorf("check subscription %s: %w", t.subscriptionID, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrSubscriptionNotFound, t.subscriptionID)
	}
	return nil
}
