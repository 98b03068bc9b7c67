package subscription

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/mauv0809/wicketkeeper/internal/livescore"
)

const (
	// Time allowed to write a control message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next message or ping from the peer.
	pongWait = 60 * time.Second

	// Maximum message size allowed from peer.
	maxMessageSize = 512 * 1024
)

// WebsocketTransport reads innings payloads as JSON text frames from
// <URL>?matchId=<id>. A normal closure from the server completes the feed.
type WebsocketTransport struct {
	URL    string
	Dialer *websocket.Dialer
}

var _ Transport = (*WebsocketTransport)(nil)

// NewWebsocketTransport creates a transport for the feed at rawURL.
func NewWebsocketTransport(rawURL string) *WebsocketTransport {
	return &WebsocketTransport{URL: rawURL, Dialer: websocket.DefaultDialer}
}

type wsHandle struct {
	conn    *websocket.Conn
	matchID string
	closing atomic.Bool
	done    chan struct{}
	once    sync.Once
}

func (t *WebsocketTransport) Connect(ctx context.Context, matchID string, cb Callbacks) (Handle, error) {
	u, err := url.Parse(t.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid feed url %q: %w", t.URL, err)
	}
	q := u.Query()
	q.Set("matchId", matchID)
	u.RawQuery = q.Encode()

	dialer := t.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	conn, _, err := dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial live feed: %w", err)
	}

	h := &wsHandle{conn: conn, matchID: matchID, done: make(chan struct{})}
	go h.readPump(cb)
	return h, nil
}

func (h *wsHandle) readPump(cb Callbacks) {
	defer close(h.done)
	defer h.conn.Close()

	h.conn.SetReadLimit(maxMessageSize)
	h.conn.SetReadDeadline(time.Now().Add(pongWait))
	h.conn.SetPingHandler(func(appData string) error {
		h.conn.SetReadDeadline(time.Now().Add(pongWait))
		err := h.conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(writeWait))
		if err == websocket.ErrCloseSent {
			return nil
		}
		return err
	})

	cb.open()
	for {
		_, data, err := h.conn.ReadMessage()
		if err != nil {
			if h.closing.Load() {
				return
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				cb.complete()
				return
			}
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn("Live feed closed unexpectedly", "matchID", h.matchID, "error", err)
			}
			cb.fail(err)
			return
		}
		h.conn.SetReadDeadline(time.Now().Add(pongWait))

		var p livescore.InningsPayload
		if err := json.Unmarshal(data, &p); err != nil {
			log.Warn("Skipping malformed live payload", "matchID", h.matchID, "error", err)
			continue
		}
		cb.message(p)
	}
}

// Close sends a normal closure and waits for the reader to stop.
func (h *wsHandle) Close() error {
	var err error
	h.once.Do(func() {
		h.closing.Store(true)
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		if werr := h.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait)); werr != nil && werr != websocket.ErrCloseSent {
			log.Debug("Failed to send close frame", "matchID", h.matchID, "error", werr)
		}
		if cerr := h.conn.Close(); cerr != nil && !errors.Is(cerr, net.ErrClosed) {
			err = cerr
		}
		<-h.done
	})
	return err
}
