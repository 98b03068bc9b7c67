package http

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/mauv0809/wicketkeeper/internal/config"
	"github.com/mauv0809/wicketkeeper/internal/editor"
	"github.com/mauv0809/wicketkeeper/internal/http/handlers"
	"github.com/mauv0809/wicketkeeper/internal/livescore"
	"github.com/mauv0809/wicketkeeper/internal/matchapi"
	"github.com/mauv0809/wicketkeeper/internal/metrics"
	"github.com/mauv0809/wicketkeeper/internal/notifier"
	"github.com/mauv0809/wicketkeeper/internal/processor"
	"github.com/mauv0809/wicketkeeper/internal/pubsub"
	"github.com/mauv0809/wicketkeeper/internal/subscription"
)

// NewServer wires the HTTP surface. feedCtx bounds the lifetime of live feed
// connections opened through /live/subscribe.
func NewServer(feedCtx context.Context, sessions editor.Store, live *livescore.Container, subs *subscription.Manager, matchClient matchapi.MatchClient, metricsSvc metrics.Metrics, metricsHandler http.Handler, counters metrics.Store, cfg config.Config, notifier notifier.Notifier, processor *processor.Processor, pubsub pubsub.PubSubClient) *Server {
	server := &Server{
		Sessions:       sessions,
		Live:           live,
		Subscriptions:  subs,
		MatchClient:    matchClient,
		Metrics:        metricsSvc,
		MetricsHandler: metricsHandler,
		Counters:       counters,
		Cfg:            cfg,
		Notifier:       notifier,
		Processor:      processor,
		Router:         http.NewServeMux(),
		pubsub:         pubsub,
		feedCtx:        feedCtx,
		newID:          uuid.NewString,
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	// e.g. Chain(s.MyHandler(), paramsMiddleware, authMiddleware)
	s.Router.Handle("GET /metrics", s.MetricsHandler)
	s.Router.Handle("GET /health", Chain(handlers.HealthCheckHandler(), paramsMiddleware))
	s.Router.Handle("GET /stats", Chain(handlers.StatsHandler(s.Counters), paramsMiddleware))

	s.Router.Handle("GET /matches", Chain(s.ListMatchesHandler(), paramsMiddleware))
	s.Router.Handle("GET /live", Chain(s.LiveStateHandler(), paramsMiddleware))
	s.Router.Handle("POST /live/subscribe", Chain(s.SubscribeHandler(), paramsMiddleware))
	s.Router.Handle("POST /live/unsubscribe", Chain(s.UnsubscribeHandler(), paramsMiddleware))
	if s.pubsub != nil {
		s.Router.Handle("POST /pubsub/innings", Chain(handlers.InningsPushHandler(s.Processor, s.Subscriptions.MatchID, s.pubsub), paramsMiddleware))
	}

	s.Router.Handle("POST /editor/sessions", Chain(s.CreateSessionHandler(), paramsMiddleware))
	s.Router.Handle("GET /editor/sessions", Chain(s.ListSessionsHandler(), paramsMiddleware))
	s.Router.Handle("GET /editor/sessions/{id}", Chain(s.GetSessionHandler(), paramsMiddleware))
	s.Router.Handle("DELETE /editor/sessions/{id}", Chain(s.DeleteSessionHandler(), paramsMiddleware))
	s.Router.Handle("POST /editor/sessions/{id}/balls", Chain(s.AddBallHandler(), paramsMiddleware))
	s.Router.Handle("PUT /editor/sessions/{id}/overs/{over}/balls/{ball}", Chain(s.EditBallHandler(), paramsMiddleware))
	s.Router.Handle("DELETE /editor/sessions/{id}/balls/last", Chain(s.UndoBallHandler(), paramsMiddleware))

	s.Router.Handle("POST /slack/command/score", Chain(handlers.ScoreCommandHandler(s.Live, s.Notifier), paramsMiddleware, slackVerifier(s.Cfg.Slack.SigningSecret)))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
