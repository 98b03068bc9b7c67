package http

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/mauv0809/wicketkeeper/internal/config"
	"github.com/mauv0809/wicketkeeper/internal/database"
	"github.com/mauv0809/wicketkeeper/internal/editor"
	"github.com/mauv0809/wicketkeeper/internal/livescore"
	"github.com/mauv0809/wicketkeeper/internal/matchapi"
	"github.com/mauv0809/wicketkeeper/internal/metrics"
	"github.com/mauv0809/wicketkeeper/internal/notifier"
	"github.com/mauv0809/wicketkeeper/internal/processor"
	"github.com/mauv0809/wicketkeeper/internal/pubsub"
	"github.com/mauv0809/wicketkeeper/internal/scoring"
	"github.com/mauv0809/wicketkeeper/internal/subscription"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSlackSigningSecret = "test-signing-secret"

type testDeps struct {
	matchClient *matchapi.MockClient
	transport   *subscription.MockTransport
	pubsub      *pubsub.MockPubSubClient
	notifier    *notifier.Mock
}

// setupTestServer initializes a new server with a test database and mock clients.
func setupTestServer(t *testing.T, slackSigningSecret string) (*Server, testDeps, func()) {
	t.Helper()

	db, dbTeardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)

	deps := testDeps{
		matchClient: matchapi.NewMock(),
		transport:   subscription.NewMockTransport(),
		pubsub:      pubsub.NewMock("TEST"),
		notifier:    notifier.NewMock(),
	}
	cfg := config.Config{Slack: config.SlackConfig{SigningSecret: slackSigningSecret}}

	reg := prometheus.NewRegistry()
	metricsSvc := metrics.NewService(reg)
	metricsHandler := metrics.NewMetricsHandler(reg)
	counters := metrics.NewStore(db)

	live := livescore.New()
	proc := processor.New(live, deps.notifier, metricsSvc, counters, deps.pubsub, false)
	subs := subscription.NewManager(deps.transport, proc)

	ctx, cancel := context.WithCancel(context.Background())
	server := NewServer(ctx, editor.NewStore(db), live, subs, deps.matchClient, metricsSvc, metricsHandler, counters, cfg, deps.notifier, proc, deps.pubsub)
	server.newID = func() string { return "s-1" }

	teardown := func() {
		subs.Unsubscribe()
		cancel()
		dbTeardown()
	}
	return server, deps, teardown
}

func do(t *testing.T, s *Server, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, target, &buf)
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	s.Router.ServeHTTP(rr, req)
	return rr
}

func liveMatch() *scoring.Match {
	return &scoring.Match{
		ID:    "m-1",
		TeamA: scoring.Team{ID: "a", Name: "Lions"},
		TeamB: scoring.Team{ID: "b", Name: "Tigers"},
		Meta:  scoring.Meta{Status: scoring.MatchStatusLive},
		Innings: []scoring.Innings{{
			ID: "5", InningsNumber: 1, BattingTeam: "a", BowlingTeam: "b",
			Score: scoring.Score{Runs: 80, Wickets: 2, Balls: 60, Overs: "10.0"},
		}},
	}
}

func TestHealthCheckHandler(t *testing.T) {
	server, _, teardown := setupTestServer(t, "")
	defer teardown()

	rr := do(t, server, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, rr.Code, "handler returned wrong status code")
	assert.Equal(t, "OK!", rr.Body.String(), "handler returned unexpected body")
}

func TestSubscribeHandler(t *testing.T) {
	server, deps, teardown := setupTestServer(t, "")
	defer teardown()
	deps.matchClient.GetMatchFunc = func(ctx context.Context, matchID string) (*scoring.Match, error) {
		return liveMatch(), nil
	}

	t.Run("requires matchID", func(t *testing.T) {
		rr := do(t, server, http.MethodPost, "/live/subscribe", nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	rr := do(t, server, http.MethodPost, "/live/subscribe?matchID=m-1", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	assert.Equal(t, []string{"m-1"}, deps.transport.Calls())
	assert.Equal(t, "m-1", server.Subscriptions.MatchID())

	var state livescore.State
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&state))
	require.NotNil(t, state.Data)
	assert.Equal(t, "m-1", state.Data.ID)
	assert.False(t, state.Loading)

	t.Run("feed messages reach the live view", func(t *testing.T) {
		h := deps.transport.Handle(0)
		h.Open()
		h.Message(livescore.InningsPayload{ID: "5", Score: &livescore.ScorePayload{Runs: 86, Wickets: 2, Balls: 61}})

		rr := do(t, server, http.MethodGet, "/live", nil)
		var state livescore.State
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&state))
		assert.True(t, state.IsConnected)
		assert.Equal(t, 86, state.Data.Innings[0].Score.Runs)
		assert.Equal(t, "10.1", state.Data.Innings[0].Score.Overs)
	})

	t.Run("unsubscribe closes the feed and clears the view", func(t *testing.T) {
		rr := do(t, server, http.MethodPost, "/live/unsubscribe", nil)
		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Equal(t, 1, deps.transport.Handle(0).CloseCalls())
		assert.False(t, server.Subscriptions.Active())
		assert.Nil(t, server.Live.Snapshot().Data)

		deps.transport.Handle(0).Message(livescore.InningsPayload{ID: "5"})
		assert.Nil(t, server.Live.Snapshot().Data)
	})
}

func TestSubscribeHandler_MatchNotFound(t *testing.T) {
	server, deps, teardown := setupTestServer(t, "")
	defer teardown()
	deps.matchClient.GetMatchFunc = func(ctx context.Context, matchID string) (*scoring.Match, error) {
		return nil, matchapi.ErrMatchNotFound
	}

	rr := do(t, server, http.MethodPost, "/live/subscribe?matchID=nope", nil)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Empty(t, deps.transport.Calls())
	state := server.Live.Snapshot()
	assert.False(t, state.Loading)
	assert.Contains(t, state.Error, "not found")
}

func TestSubscribeHandler_ConcurrentRequests(t *testing.T) {
	server, deps, teardown := setupTestServer(t, "")
	defer teardown()

	fetching := make(chan struct{})
	release := make(chan struct{})
	deps.matchClient.GetMatchFunc = func(ctx context.Context, matchID string) (*scoring.Match, error) {
		if matchID == "m-1" {
			close(fetching)
			<-release
		}
		return &scoring.Match{ID: matchID}, nil
	}

	codes := make(chan int, 2)
	go func() {
		codes <- do(t, server, http.MethodPost, "/live/subscribe?matchID=m-1", nil).Code
	}()
	<-fetching
	go func() {
		codes <- do(t, server, http.MethodPost, "/live/subscribe?matchID=m-2", nil).Code
	}()

	// The second request must not start fetching while the first holds the live view.
	time.Sleep(50 * time.Millisecond)
	deps.matchClient.Reset()
	close(release)

	for range 2 {
		select {
		case code := <-codes:
			assert.Equal(t, http.StatusOK, code)
		case <-time.After(5 * time.Second):
			t.Fatal("subscribe request did not finish")
		}
	}

	assert.Equal(t, []string{"m-2"}, deps.matchClient.GetMatchCalls, "second fetch ran after the first request finished")
	assert.Equal(t, []string{"m-1", "m-2"}, deps.transport.Calls())
	assert.Equal(t, "m-2", server.Subscriptions.MatchID())
	require.NotNil(t, server.Live.Snapshot().Data)
	assert.Equal(t, server.Subscriptions.MatchID(), server.Live.Snapshot().Data.ID)
}

func TestListMatchesHandler(t *testing.T) {
	server, deps, teardown := setupTestServer(t, "")
	defer teardown()
	deps.matchClient.ListMatchesFunc = func(ctx context.Context, status scoring.MatchStatus) ([]matchapi.MatchSummary, error) {
		return []matchapi.MatchSummary{{ID: "m-1", Status: status}}, nil
	}

	rr := do(t, server, http.MethodGet, "/matches?status=live", nil)

	require.Equal(t, http.StatusOK, rr.Code)
	var got []matchapi.MatchSummary
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
	assert.Equal(t, []matchapi.MatchSummary{{ID: "m-1", Status: scoring.MatchStatusLive}}, got)
}

func createSession(t *testing.T, server *Server) {
	t.Helper()
	rr := do(t, server, http.MethodPost, "/editor/sessions", createSessionRequest{
		MatchID: "m-1",
		Batsmen: []editor.Batsman{{Name: "Opener A", Striker: true}, {Name: "Opener B"}},
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
}

func decodeSession(t *testing.T, rr *httptest.ResponseRecorder) ballResponse {
	t.Helper()
	var resp ballResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	return resp
}

func TestEditorSessionFlow(t *testing.T) {
	server, deps, teardown := setupTestServer(t, "")
	defer teardown()

	t.Run("create validates input", func(t *testing.T) {
		rr := do(t, server, http.MethodPost, "/editor/sessions", createSessionRequest{MatchID: "m-1"})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	createSession(t, server)

	rr := do(t, server, http.MethodPost, "/editor/sessions/s-1/balls", ballRequest{Token: "4"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	resp := decodeSession(t, rr)
	assert.Equal(t, "4/0", resp.Summary.Score)
	assert.Equal(t, "0.1", resp.Summary.Overs)
	assert.Equal(t, 4, resp.Event.RunsAdded)
	assert.True(t, resp.Event.IsLegalBall)
	assert.False(t, resp.AppliedToLive, "no live match is followed")
	assert.Len(t, deps.pubsub.Calls(), 1)

	rr = do(t, server, http.MethodPost, "/editor/sessions/s-1/balls", ballRequest{Token: "1"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Opener B", decodeSession(t, rr).Summary.Striker)

	t.Run("unknown token is rejected", func(t *testing.T) {
		rr := do(t, server, http.MethodPost, "/editor/sessions/s-1/balls", ballRequest{Token: "7"})
		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	})

	t.Run("edit replays the innings", func(t *testing.T) {
		rr := do(t, server, http.MethodPut, "/editor/sessions/s-1/overs/0/balls/0", ballRequest{Token: "6"})
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		resp := decodeSession(t, rr)
		assert.Equal(t, "7/0", resp.Summary.Score)
		assert.Equal(t, []string{"6", "1"}, resp.Summary.CurrentOver)

		rr = do(t, server, http.MethodPut, "/editor/sessions/s-1/overs/3/balls/0", ballRequest{Token: "6"})
		assert.Equal(t, http.StatusNotFound, rr.Code)
		rr = do(t, server, http.MethodPut, "/editor/sessions/s-1/overs/x/balls/0", ballRequest{Token: "6"})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("undo", func(t *testing.T) {
		rr := do(t, server, http.MethodDelete, "/editor/sessions/s-1/balls/last", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "6/0", decodeSession(t, rr).Summary.Score)

		do(t, server, http.MethodDelete, "/editor/sessions/s-1/balls/last", nil)
		rr = do(t, server, http.MethodDelete, "/editor/sessions/s-1/balls/last", nil)
		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("get and list", func(t *testing.T) {
		rr := do(t, server, http.MethodGet, "/editor/sessions/s-1", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "m-1", decodeSession(t, rr).Session.MatchID)

		rr = do(t, server, http.MethodGet, "/editor/sessions", nil)
		var all []editor.Session
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&all))
		assert.Len(t, all, 1)

		rr = do(t, server, http.MethodGet, "/editor/sessions/unknown", nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("delete", func(t *testing.T) {
		rr := do(t, server, http.MethodDelete, "/editor/sessions/s-1", nil)
		assert.Equal(t, http.StatusNoContent, rr.Code)
		rr = do(t, server, http.MethodGet, "/editor/sessions/s-1", nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)

		rr = do(t, server, http.MethodDelete, "/editor/sessions/s-1", nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
		rr = do(t, server, http.MethodDelete, "/editor/sessions/unknown", nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestAddBallHandler_UpdatesLiveMatch(t *testing.T) {
	server, deps, teardown := setupTestServer(t, "")
	defer teardown()
	deps.matchClient.GetMatchFunc = func(ctx context.Context, matchID string) (*scoring.Match, error) {
		return liveMatch(), nil
	}
	require.Equal(t, http.StatusOK, do(t, server, http.MethodPost, "/live/subscribe?matchID=m-1", nil).Code)
	createSession(t, server)

	rr := do(t, server, http.MethodPost, "/editor/sessions/s-1/balls?dry_run=true", ballRequest{Token: "W"})

	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, decodeSession(t, rr).AppliedToLive)
	score := server.Live.Snapshot().Data.Innings[0].Score
	assert.Equal(t, 3, score.Wickets)
	assert.Equal(t, 61, score.Balls)
	assert.Empty(t, deps.pubsub.Calls(), "dry run does not publish")

	rr = do(t, server, http.MethodGet, "/stats", nil)
	var stats map[string]int
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&stats))
	assert.Equal(t, 1, stats[metrics.KeyBallsRecorded])
	assert.Equal(t, 1, stats[metrics.KeyWicketsRecorded])
}

func pushBody(t *testing.T, matchID string, payload livescore.InningsPayload) []byte {
	t.Helper()
	data, err := pubsub.Encode(payload)
	require.NoError(t, err)
	var msg pushMessageForTest
	msg.Message.Data = base64.StdEncoding.EncodeToString(data)
	msg.Message.Attributes = map[string]string{pubsub.AttrMatchID: matchID}
	body, err := json.Marshal(msg)
	require.NoError(t, err)
	return body
}

type pushMessageForTest struct {
	Message struct {
		Data       string            `json:"data"`
		Attributes map[string]string `json:"attributes"`
	} `json:"message"`
}

func TestInningsPushHandler(t *testing.T) {
	server, deps, teardown := setupTestServer(t, "")
	defer teardown()
	deps.pubsub.ProcessMessageFunc = pubsub.Decode
	deps.matchClient.GetMatchFunc = func(ctx context.Context, matchID string) (*scoring.Match, error) {
		return liveMatch(), nil
	}

	post := func(body []byte) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/pubsub/innings", bytes.NewReader(body))
		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)
		return rr
	}
	payload := livescore.InningsPayload{ID: "5", Score: &livescore.ScorePayload{Runs: 90, Wickets: 2, Balls: 62}}

	t.Run("ignored when not following the match", func(t *testing.T) {
		rr := post(pushBody(t, "m-1", payload))
		assert.Equal(t, http.StatusNoContent, rr.Code)
	})

	require.Equal(t, http.StatusOK, do(t, server, http.MethodPost, "/live/subscribe?matchID=m-1", nil).Code)

	rr := post(pushBody(t, "m-1", payload))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"merged":true}`, rr.Body.String())
	assert.Equal(t, 90, server.Live.Snapshot().Data.Innings[0].Score.Runs)

	t.Run("other match", func(t *testing.T) {
		rr := post(pushBody(t, "m-2", payload))
		assert.Equal(t, http.StatusNoContent, rr.Code)
	})

	t.Run("bad envelope", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, post([]byte("{")).Code)
		assert.Equal(t, http.StatusBadRequest, post([]byte(`{"message":{"data":"%%%"}}`)).Code)
	})
}

// createSlackCommandRequest creates an http.Request suitable for testing Slack slash commands,
// including the necessary signature and timestamp headers for verification.
func createSlackCommandRequest(t *testing.T, targetURL string, form url.Values, signingSecret string) *http.Request {
	t.Helper()

	body := form.Encode()
	req, err := http.NewRequest(http.MethodPost, targetURL, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	timestamp := time.Now().Unix()
	req.Header.Set("X-Slack-Request-Timestamp", strconv.FormatInt(timestamp, 10))

	h := hmac.New(sha256.New, []byte(signingSecret))
	fmt.Fprintf(h, "v0:%d:%s", timestamp, body)
	req.Header.Set("X-Slack-Signature", "v0="+hex.EncodeToString(h.Sum(nil)))
	return req
}

func TestScoreCommandHandler(t *testing.T) {
	server, deps, teardown := setupTestServer(t, testSlackSigningSecret)
	defer teardown()
	server.Live.SetMatchScore(liveMatch())

	form := url.Values{"command": {"/score"}, "user_name": {"umpire"}, "text": {""}}

	t.Run("valid signature", func(t *testing.T) {
		req := createSlackCommandRequest(t, "/slack/command/score", form, testSlackSigningSecret)
		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		require.Len(t, deps.notifier.FormatScoreResponseCalls, 1)
		assert.Equal(t, "m-1", deps.notifier.FormatScoreResponseCalls[0].ID)
	})

	t.Run("bad signature", func(t *testing.T) {
		req := createSlackCommandRequest(t, "/slack/command/score", form, "wrong-secret")
		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Len(t, deps.notifier.FormatScoreResponseCalls, 1)
	})
}

func TestMetricsEndpoint(t *testing.T) {
	server, _, teardown := setupTestServer(t, "")
	defer teardown()

	rr := do(t, server, http.MethodGet, "/metrics", nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "cricket_")
}
