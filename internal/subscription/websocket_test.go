package subscription

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mauv0809/wicketkeeper/internal/livescore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	events   chan string
	payloads chan livescore.InningsPayload
}

func newRecorder() *recorder {
	return &recorder{events: make(chan string, 16), payloads: make(chan livescore.InningsPayload, 16)}
}

func (r *recorder) callbacks() Callbacks {
	return Callbacks{
		OnOpen: func() { r.events <- "open" },
		OnMessage: func(p livescore.InningsPayload) {
			r.payloads <- p
			r.events <- "message"
		},
		OnError:    func(err error) { r.events <- "error" },
		OnComplete: func() { r.events <- "complete" },
	}
}

func (r *recorder) next(t *testing.T) string {
	t.Helper()
	select {
	case ev := <-r.events:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a callback")
		return ""
	}
}

func newFeedServer(t *testing.T, handler func(conn *websocket.Conn, r *http.Request)) string {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		handler(conn, r)
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/feed"
}

func drain(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func TestWebsocketTransport_DeliversAndCompletes(t *testing.T) {
	gotMatch := make(chan string, 1)
	url := newFeedServer(t, func(conn *websocket.Conn, r *http.Request) {
		gotMatch <- r.URL.Query().Get("matchId")
		conn.WriteMessage(websocket.TextMessage, []byte(`{"id":5,"score":{"runs":86,"wickets":2,"balls":61}}`))
		conn.WriteMessage(websocket.TextMessage, []byte(`not json`))
		conn.WriteMessage(websocket.TextMessage, []byte(`{"id":"6","isCompleted":true}`))
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "innings over"))
		drain(conn)
	})

	rec := newRecorder()
	h, err := NewWebsocketTransport(url).Connect(context.Background(), "m1", rec.callbacks())
	require.NoError(t, err)
	defer h.Close()

	assert.Equal(t, "m1", <-gotMatch)
	assert.Equal(t, "open", rec.next(t))
	assert.Equal(t, "message", rec.next(t))
	assert.Equal(t, "message", rec.next(t), "malformed frame is skipped")
	assert.Equal(t, "complete", rec.next(t))

	first := <-rec.payloads
	assert.Equal(t, livescore.FlexID("5"), first.ID)
	assert.Equal(t, 86, first.Score.Runs)
	second := <-rec.payloads
	assert.True(t, *second.IsCompleted)
}

func TestWebsocketTransport_AbruptDisconnectIsAnError(t *testing.T) {
	url := newFeedServer(t, func(conn *websocket.Conn, r *http.Request) {
		conn.WriteMessage(websocket.TextMessage, []byte(`{"id":5}`))
		conn.UnderlyingConn().Close()
	})

	rec := newRecorder()
	h, err := NewWebsocketTransport(url).Connect(context.Background(), "m1", rec.callbacks())
	require.NoError(t, err)
	defer h.Close()

	assert.Equal(t, "open", rec.next(t))
	assert.Equal(t, "message", rec.next(t))
	assert.Equal(t, "error", rec.next(t))
}

func TestWebsocketTransport_CloseStopsDelivery(t *testing.T) {
	url := newFeedServer(t, func(conn *websocket.Conn, r *http.Request) {
		drain(conn)
	})

	rec := newRecorder()
	h, err := NewWebsocketTransport(url).Connect(context.Background(), "m1", rec.callbacks())
	require.NoError(t, err)
	assert.Equal(t, "open", rec.next(t))

	require.NoError(t, h.Close())
	assert.NoError(t, h.Close(), "second close is a no-op")

	select {
	case ev := <-rec.events:
		t.Fatalf("unexpected callback after close: %s", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestWebsocketTransport_DialFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	srv.Close()

	_, err := NewWebsocketTransport(url).Connect(context.Background(), "m1", Callbacks{})
	assert.Error(t, err)
}
