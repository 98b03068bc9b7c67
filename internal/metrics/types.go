package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service holds all the Prometheus metrics for the application.
type Service struct {
	PayloadsMerged     prometheus.Counter
	PayloadsMissed     prometheus.Counter
	MergeDuration      prometheus.Histogram
	BallsRecorded      prometheus.Counter
	Wickets            prometheus.Counter
	FeedConnected      prometheus.Gauge
	FeedErrors         prometheus.Counter
	Reconnects         prometheus.Counter
	SlackNotifSent     prometheus.Counter
	SlackNotifFailed   prometheus.Counter
	StartupTimeSeconds prometheus.Gauge
}

// Persistent counter keys.
const (
	KeyBallsRecorded   = "balls_recorded"
	KeyWicketsRecorded = "wickets_recorded"
	KeyPayloadsMerged  = "payloads_merged"
	KeyNotifSent       = "slack_notifications_sent"
)
