package metrics

// Metrics defines the interface for collecting application metrics.
// This decouples the application from the specific metrics implementation (e.g., Prometheus).
type Metrics interface {
	IncPayloadsMerged()
	IncPayloadsMissed()
	ObserveMergeDuration(duration float64)
	IncBallsRecorded()
	IncWickets()
	SetConnected(connected bool)
	IncFeedErrors()
	IncReconnects()
	IncSlackNotifSent()
	IncSlackNotifFailed()
	SetStartupTime(duration float64)
}

// Store keeps named counters that survive restarts.
type Store interface {
	Increment(key string)
	GetAll() (map[string]int, error)
}
