package config

import (
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

// Load reads configuration from environment variables and .env file.
func Load() Config {
	err := godotenv.Load()
	if err != nil {
		log.Info("No .env file found, reading from environment variables")
	}
	return fromEnv()
}

func fromEnv() Config {
	// A helper function to get a required env var. It will fail if the env var is not set.
	getEnv := func(key string) string {
		if value, ok := os.LookupEnv(key); ok {
			return value
		}
		log.Fatalf("Error: Required environment variable %s is not set.", key)
		return "" // This line is never reached
	}

	transport := getEnvDefault("FEED_TRANSPORT", TransportWebsocket)
	cfg := Config{
		DBName:        getEnvDefault("DB_NAME", "wicketkeeper.db"),
		MigrationsDir: getEnvDefault("MIGRATIONS_DIR", "./migrations"),
		Port:          getEnvDefault("PORT", "8080"),
		DryRun:        getEnvBool("DRY_RUN", false),
		Slack: SlackConfig{
			Token:         getEnv("SLACK_BOT_TOKEN"),
			ChannelID:     getEnv("SLACK_CHANNEL_ID"),
			SigningSecret: getEnvDefault("SLACK_SIGNING_SECRET", ""),
		},
		Turso: TursoConfig{
			PrimaryURL: getEnvDefault("TURSO_PRIMARY_URL", ""),
			AuthToken:  getEnvDefault("TURSO_AUTH_TOKEN", ""),
		},
		Feed: FeedConfig{
			Transport:      transport,
			ReconnectBase:  time.Duration(getEnvInt("RECONNECT_BASE_MS", 500)) * time.Millisecond,
			ReconnectTries: uint64(getEnvInt("RECONNECT_MAX_RETRIES", 10)),
		},
		PubSub: PubSubConfig{
			ProjectID:      getEnvDefault("GCP_PROJECT", ""),
			SubscriptionID: getEnvDefault("PUBSUB_SUBSCRIPTION", ""),
		},
		MatchAPIURL: getEnv("MATCH_API_URL"),
	}

	switch transport {
	case TransportWebsocket:
		cfg.Feed.WebsocketURL = getEnv("FEED_WS_URL")
	case TransportPubSub:
		cfg.PubSub.ProjectID = getEnv("GCP_PROJECT")
		cfg.PubSub.SubscriptionID = getEnv("PUBSUB_SUBSCRIPTION")
	default:
		log.Fatalf("Error: FEED_TRANSPORT must be %q or %q, got %q", TransportWebsocket, TransportPubSub, transport)
	}
	return cfg
}

// getEnvDefault returns the value of key, or def when it is unset.
func getEnvDefault(key, def string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return def
}

func getEnvInt(key string, def int) int {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		log.Warn("Ignoring invalid integer env var", "key", key, "value", raw, "default", def)
		return def
	}
	return v
}

func getEnvBool(key string, def bool) bool {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		log.Warn("Ignoring invalid boolean env var", "key", key, "value", raw, "default", def)
		return def
	}
	return v
}
