package subscription

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/wicketkeeper/internal/livescore"
	"github.com/sethvargo/go-retry"
)

// BackoffFactory returns a fresh backoff for a run of reconnection attempts.
type BackoffFactory func() retry.Backoff

// ExponentialBackoff doubles from base and gives up after maxRetries attempts.
func ExponentialBackoff(base time.Duration, maxRetries uint64) BackoffFactory {
	return func() retry.Backoff {
		b := retry.NewExponential(base)
		b = retry.WithCappedDuration(30*time.Second, b)
		b = retry.WithJitterPercent(10, b)
		return retry.WithMaxRetries(maxRetries, b)
	}
}

// Reconnecting wraps a Transport and redials after a connection error. Errors
// are still reported through OnError before each redial. A completed feed is
// not redialed, and neither is one whose backoff is exhausted.
type Reconnecting struct {
	inner      Transport
	newBackoff BackoffFactory

	// OnRetry, if set, is called before each redial.
	OnRetry func(attempt int, delay time.Duration)
}

var _ Transport = (*Reconnecting)(nil)

// NewReconnecting decorates inner with a reconnection policy.
func NewReconnecting(inner Transport, newBackoff BackoffFactory) *Reconnecting {
	return &Reconnecting{inner: inner, newBackoff: newBackoff}
}

type reconnectHandle struct {
	cancel  context.CancelFunc
	exited  chan struct{}
	once    sync.Once
	closeMu sync.Mutex
	err     error
}

// Connect dials once synchronously; a failure here is returned to the caller.
func (r *Reconnecting) Connect(ctx context.Context, matchID string, cb Callbacks) (Handle, error) {
	ctx, cancel := context.WithCancel(ctx)

	failed := make(chan error, 1)
	completed := make(chan struct{}, 1)
	opened := make(chan struct{}, 1)
	signal := func(ch chan struct{}) {
		select {
		case ch <- struct{}{}:
		default:
		}
	}

	wrapped := Callbacks{
		OnOpen: func() {
			cb.open()
			signal(opened)
		},
		OnMessage: func(p livescore.InningsPayload) {
			cb.message(p)
		},
		OnError: func(err error) {
			cb.fail(err)
			select {
			case failed <- err:
			default:
			}
		},
		OnComplete: func() {
			cb.complete()
			signal(completed)
		},
	}

	h, err := r.inner.Connect(ctx, matchID, wrapped)
	if err != nil {
		cancel()
		return nil, err
	}

	rh := &reconnectHandle{cancel: cancel, exited: make(chan struct{})}
	go r.supervise(ctx, matchID, h, wrapped, failed, completed, opened, rh)
	return rh, nil
}

func (r *Reconnecting) supervise(ctx context.Context, matchID string, h Handle, cb Callbacks,
	failed <-chan error, completed, opened <-chan struct{}, rh *reconnectHandle) {
	defer close(rh.exited)
	closeCurrent := func() {
		if h == nil {
			return
		}
		if err := h.Close(); err != nil {
			rh.closeMu.Lock()
			rh.err = err
			rh.closeMu.Unlock()
		}
		h = nil
	}
	defer closeCurrent()

	backoff := r.newBackoff()
	attempt := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-completed:
			return
		case <-opened:
			backoff = r.newBackoff()
			attempt = 0
		case <-failed:
			closeCurrent()
			for h == nil {
				delay, stop := backoff.Next()
				if stop {
					log.Warn("Live feed reconnection gave up", "matchID", matchID, "attempts", attempt)
					return
				}
				attempt++
				if r.OnRetry != nil {
					r.OnRetry(attempt, delay)
				}
				log.Info("Reconnecting live feed", "matchID", matchID, "attempt", attempt, "delay", delay)

				timer := time.NewTimer(delay)
				select {
				case <-ctx.Done():
					timer.Stop()
					return
				case <-timer.C:
				}

				next, err := r.inner.Connect(ctx, matchID, cb)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					cb.fail(err)
					// fail queued a signal we are already handling.
					select {
					case <-failed:
					default:
					}
					continue
				}
				h = next
			}
		}
	}
}

// Close stops reconnecting and closes the current connection.
func (rh *reconnectHandle) Close() error {
	rh.once.Do(func() {
		rh.cancel()
		<-rh.exited
	})
	rh.closeMu.Lock()
	defer rh.closeMu.Unlock()
	return rh.err
}
