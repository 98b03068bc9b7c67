package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		PayloadsMerged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cricket_live_payloads_merged_total",
			Help: "Live innings payloads merged into the match snapshot.",
		}),
		PayloadsMissed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cricket_live_payloads_missed_total",
			Help: "Live innings payloads dropped because no snapshot or innings matched.",
		}),
		MergeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cricket_live_merge_duration_seconds",
			Help:    "Time spent folding one payload into the snapshot.",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),
		BallsRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cricket_editor_balls_recorded_total",
			Help: "Deliveries recorded through the manual editor.",
		}),
		Wickets: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cricket_wickets_total",
			Help: "Wickets seen from the live feed and the manual editor.",
		}),
		FeedConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cricket_live_feed_connected",
			Help: "1 while the live feed connection is open.",
		}),
		FeedErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cricket_live_feed_errors_total",
			Help: "Errors reported by the live feed transport.",
		}),
		Reconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cricket_live_feed_reconnects_total",
			Help: "Reconnection attempts made after a feed error.",
		}),
		SlackNotifSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cricket_slack_notifications_sent_total",
			Help: "The total number of Slack notifications successfully sent.",
		}),
		SlackNotifFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cricket_slack_notifications_failed_total",
			Help: "The total number of Slack notifications that failed to send.",
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cricket_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.PayloadsMerged,
		s.PayloadsMissed,
		s.MergeDuration,
		s.BallsRecorded,
		s.Wickets,
		s.FeedConnected,
		s.FeedErrors,
		s.Reconnects,
		s.SlackNotifSent,
		s.SlackNotifFailed,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncPayloadsMerged() {
	s.PayloadsMerged.Inc()
}

func (s *Service) IncPayloadsMissed() {
	s.PayloadsMissed.Inc()
}

func (s *Service) ObserveMergeDuration(duration float64) {
	s.MergeDuration.Observe(duration)
}

func (s *Service) IncBallsRecorded() {
	s.BallsRecorded.Inc()
}

func (s *Service) IncWickets() {
	s.Wickets.Inc()
}

func (s *Service) SetConnected(connected bool) {
	if connected {
		s.FeedConnected.Set(1)
		return
	}
	s.FeedConnected.Set(0)
}

func (s *Service) IncFeedErrors() {
	s.FeedErrors.Inc()
}

func (s *Service) IncReconnects() {
	s.Reconnects.Inc()
}

func (s *Service) IncSlackNotifSent() {
	s.SlackNotifSent.Inc()
}

func (s *Service) IncSlackNotifFailed() {
	s.SlackNotifFailed.Inc()
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}
