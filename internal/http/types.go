package http

import (
	"context"
	"net/http"
	"sync"

	"github.com/mauv0809/wicketkeeper/internal/config"
	"github.com/mauv0809/wicketkeeper/internal/editor"
	"github.com/mauv0809/wicketkeeper/internal/livescore"
	"github.com/mauv0809/wicketkeeper/internal/matchapi"
	"github.com/mauv0809/wicketkeeper/internal/metrics"
	"github.com/mauv0809/wicketkeeper/internal/notifier"
	"github.com/mauv0809/wicketkeeper/internal/processor"
	"github.com/mauv0809/wicketkeeper/internal/pubsub"
	"github.com/mauv0809/wicketkeeper/internal/scoring"
	"github.com/mauv0809/wicketkeeper/internal/subscription"
)

type Server struct {
	Sessions       editor.Store
	Live           *livescore.Container
	Subscriptions  *subscription.Manager
	MatchClient    matchapi.MatchClient
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	Counters       metrics.Store
	Cfg            config.Config
	Notifier       notifier.Notifier
	Processor      *processor.Processor
	Router         *http.ServeMux
	pubsub         pubsub.PubSubClient

	// feedCtx outlives any single request; live connections are bound to it.
	feedCtx context.Context
	// liveMu keeps the held snapshot and the followed feed on the same match.
	liveMu sync.Mutex
	// sessionsMu serializes read-modify-write cycles on editor sessions.
	sessionsMu sync.Mutex
	newID      func() string
}

type createSessionRequest struct {
	MatchID       string           `json:"matchId"`
	InningsNumber int              `json:"inningsNumber"`
	Batsmen       []editor.Batsman `json:"batsmen"`
}

type ballRequest struct {
	Token string `json:"token"`
}

type sessionResponse struct {
	Session *editor.Session `json:"session"`
	Summary editor.Summary  `json:"summary"`
}

type ballResponse struct {
	sessionResponse
	Event         scoring.BallEvent `json:"event"`
	AppliedToLive bool              `json:"appliedToLive"`
}
