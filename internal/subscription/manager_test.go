package subscription

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mauv0809/wicketkeeper/internal/livescore"
	"github.com/mauv0809/wicketkeeper/internal/scoring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_SubscribeReplacesConnection(t *testing.T) {
	tr := NewMockTransport()
	mgr := NewManager(tr, &MockSink{})
	ctx := context.Background()

	require.NoError(t, mgr.Subscribe(ctx, "m1"))
	require.NoError(t, mgr.Subscribe(ctx, "m2"))

	assert.Equal(t, []string{"m1", "m2"}, tr.Calls())
	assert.Equal(t, 1, tr.Handle(0).CloseCalls(), "m1 closed exactly once")
	assert.Equal(t, 0, tr.Handle(1).CloseCalls(), "m2 still open")
	assert.Equal(t, "m2", mgr.MatchID())
	assert.True(t, mgr.Active())

	t.Run("same match is reopened", func(t *testing.T) {
		require.NoError(t, mgr.Subscribe(ctx, "m2"))
		assert.Equal(t, 1, tr.Handle(1).CloseCalls())
		assert.Equal(t, 0, tr.Handle(2).CloseCalls())
	})
}

func TestManager_Unsubscribe(t *testing.T) {
	tr := NewMockTransport()
	mgr := NewManager(tr, &MockSink{})

	mgr.Unsubscribe()
	assert.False(t, mgr.Active(), "no-op without a connection")

	require.NoError(t, mgr.Subscribe(context.Background(), "m1"))
	mgr.Unsubscribe()
	mgr.Unsubscribe()

	assert.Equal(t, 1, tr.Handle(0).CloseCalls())
	assert.False(t, mgr.Active())
	assert.Empty(t, mgr.MatchID())
}

func TestManager_CallbackWiring(t *testing.T) {
	tr := NewMockTransport()
	sink := &MockSink{}
	mgr := NewManager(tr, sink)
	require.NoError(t, mgr.Subscribe(context.Background(), "m1"))
	h := tr.Handle(0)

	h.Open()
	connected, errMsg := sink.State()
	assert.True(t, connected)
	assert.Empty(t, errMsg)

	h.Message(livescore.InningsPayload{ID: "5"})
	assert.Equal(t, 1, sink.PayloadCount())

	h.Fail(errors.New("socket reset"))
	connected, errMsg = sink.State()
	assert.False(t, connected)
	assert.Equal(t, "socket reset", errMsg)

	h.Open()
	h.Complete()
	connected, errMsg = sink.State()
	assert.False(t, connected)
	assert.Empty(t, errMsg, "completion is not an error")
}

func TestManager_NoDeliveryAfterClose(t *testing.T) {
	tr := NewMockTransport()
	sink := &MockSink{}
	mgr := NewManager(tr, sink)
	ctx := context.Background()

	require.NoError(t, mgr.Subscribe(ctx, "m1"))
	old := tr.Handle(0)
	require.NoError(t, mgr.Subscribe(ctx, "m2"))

	old.Message(livescore.InningsPayload{ID: "5"})
	old.Fail(errors.New("late"))
	assert.Equal(t, 0, sink.PayloadCount())
	assert.Empty(t, sink.Errors)

	mgr.Unsubscribe()
	tr.Handle(1).Message(livescore.InningsPayload{ID: "5"})
	assert.Equal(t, 0, sink.PayloadCount())
}

type blockingSink struct {
	MockSink
	entered chan struct{}
	release chan struct{}
}

func (s *blockingSink) UpdateInningsScore(p livescore.InningsPayload) bool {
	close(s.entered)
	<-s.release
	return s.MockSink.UpdateInningsScore(p)
}

func TestManager_UnsubscribeWaitsForInFlightDelivery(t *testing.T) {
	tr := NewMockTransport()
	sink := &blockingSink{entered: make(chan struct{}), release: make(chan struct{})}
	mgr := NewManager(tr, sink)
	require.NoError(t, mgr.Subscribe(context.Background(), "m1"))

	go tr.Handle(0).Message(livescore.InningsPayload{ID: "5"})
	<-sink.entered

	unsubscribed := make(chan struct{})
	go func() {
		mgr.Unsubscribe()
		close(unsubscribed)
	}()

	select {
	case <-unsubscribed:
		t.Fatal("Unsubscribe returned while a delivery was in flight")
	case <-time.After(50 * time.Millisecond):
	}

	close(sink.release)
	select {
	case <-unsubscribed:
	case <-time.After(time.Second):
		t.Fatal("Unsubscribe did not return")
	}
	assert.Equal(t, 1, sink.PayloadCount())
}

func TestManager_ConnectFailure(t *testing.T) {
	tr := NewMockTransport()
	tr.ConnectFunc = func(ctx context.Context, matchID string, cb Callbacks) (Handle, error) {
		return nil, errors.New("connection refused")
	}
	sink := &MockSink{}
	mgr := NewManager(tr, sink)

	err := mgr.Subscribe(context.Background(), "m1")
	assert.EqualError(t, err, "connection refused")
	assert.False(t, mgr.Active())
	connected, errMsg := sink.State()
	assert.False(t, connected)
	assert.Equal(t, "connection refused", errMsg)

	assert.ErrorIs(t, mgr.Subscribe(context.Background(), ""), ErrNoMatchID)
}

func TestManager_FeedsContainer(t *testing.T) {
	tr := NewMockTransport()
	c := livescore.New()
	c.SetMatchScore(&scoring.Match{
		ID:      "m1",
		Innings: []scoring.Innings{{ID: "5", InningsNumber: 1, Score: scoring.Score{Runs: 80, Wickets: 2, Balls: 60}}},
	})
	mgr := NewManager(tr, c)
	require.NoError(t, mgr.Subscribe(context.Background(), "m1"))
	h := tr.Handle(0)

	h.Open()
	var wg sync.WaitGroup
	for i := 1; i <= 3; i++ {
		wg.Add(1)
		go func(runs int) {
			defer wg.Done()
			h.Message(livescore.InningsPayload{ID: "5", Score: &livescore.ScorePayload{Runs: 80 + runs, Wickets: 2, Balls: 60 + runs}})
		}(i)
	}
	wg.Wait()

	s := c.Snapshot()
	assert.True(t, s.IsConnected)
	assert.Contains(t, []int{81, 82, 83}, s.Data.Innings[0].Score.Runs)

	h.Fail(errors.New("gone"))
	s = c.Snapshot()
	assert.False(t, s.IsConnected)
	assert.Equal(t, "gone", s.Error)
}
