package config

import "time"

// Config holds all configuration for the application.
type Config struct {
	DBName        string
	MigrationsDir string
	Port          string
	DryRun        bool
	Slack         SlackConfig
	Turso         TursoConfig
	Feed          FeedConfig
	PubSub        PubSubConfig
	MatchAPIURL   string
}
type SlackConfig struct {
	Token         string
	ChannelID     string
	SigningSecret string
}
type TursoConfig struct {
	PrimaryURL string
	AuthToken  string
}

// FeedConfig selects and tunes the live score transport.
type FeedConfig struct {
	Transport      string
	WebsocketURL   string
	ReconnectBase  time.Duration
	ReconnectTries uint64
}
type PubSubConfig struct {
	ProjectID      string
	SubscriptionID string
}

const (
	TransportWebsocket = "websocket"
	TransportPubSub    = "pubsub"
)
