package subscription

import (
	"errors"

	"github.com/mauv0809/wicketkeeper/internal/livescore"
)

// ErrNoMatchID is returned by Subscribe for an empty match id.
var ErrNoMatchID = errors.New("match id is required")

// Callbacks are the lifecycle hooks a Transport invokes. Nil hooks are skipped.
type Callbacks struct {
	OnOpen     func()
	OnMessage  func(p livescore.InningsPayload)
	OnError    func(err error)
	OnComplete func()
}

func (cb Callbacks) open() {
	if cb.OnOpen != nil {
		cb.OnOpen()
	}
}

func (cb Callbacks) message(p livescore.InningsPayload) {
	if cb.OnMessage != nil {
		cb.OnMessage(p)
	}
}

func (cb Callbacks) fail(err error) {
	if cb.OnError != nil {
		cb.OnError(err)
	}
}

func (cb Callbacks) complete() {
	if cb.OnComplete != nil {
		cb.OnComplete()
	}
}
