package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	gpubsub "cloud.google.com/go/pubsub"
	"github.com/charmbracelet/log"
	"github.com/mauv0809/wicketkeeper/internal/config"
	"github.com/mauv0809/wicketkeeper/internal/database"
	"github.com/mauv0809/wicketkeeper/internal/editor"
	server "github.com/mauv0809/wicketkeeper/internal/http"
	"github.com/mauv0809/wicketkeeper/internal/livescore"
	"github.com/mauv0809/wicketkeeper/internal/matchapi"
	"github.com/mauv0809/wicketkeeper/internal/metrics"
	"github.com/mauv0809/wicketkeeper/internal/notifier/slack"
	"github.com/mauv0809/wicketkeeper/internal/processor"
	"github.com/mauv0809/wicketkeeper/internal/pubsub"
	"github.com/mauv0809/wicketkeeper/internal/subscription"
)

func main() {
	// Start profiling timer
	startTime := time.Now()
	log.SetFormatter(log.JSONFormatter)
	cfg := config.Load()
	db, dbTeardown, err := database.InitDB(cfg.DBName, cfg.Turso.PrimaryURL, cfg.Turso.AuthToken, cfg.MigrationsDir)
	dbInitDuration := time.Since(startTime)
	log.Info("Database initialization time recorded", "duration_ms", dbInitDuration.Milliseconds())
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer func() {
		log.Info("Closing database connection")
		dbTeardown()
	}()

	// Live feed connections are bound to feedCtx, not to the request that opened them.
	feedCtx, stopFeeds := context.WithCancel(context.Background())
	defer stopFeeds()

	sessions := editor.NewStore(db)
	counters := metrics.NewStore(db)
	metricsSvc := metrics.NewService()
	metricsHandler := metrics.NewMetricsHandler()
	matchClient := matchapi.NewClient(cfg.MatchAPIURL)
	notifier := slack.NewNotifier(cfg.Slack.Token, cfg.Slack.ChannelID, metricsSvc)
	live := livescore.New()

	var (
		psClient  *gpubsub.Client
		publisher pubsub.PubSubClient
	)
	if cfg.PubSub.ProjectID != "" {
		psClient, err = gpubsub.NewClient(feedCtx, cfg.PubSub.ProjectID)
		if err != nil {
			log.Fatalf("Failed to create pubsub client: %v", err)
		}
		var pubsubTeardown func()
		publisher, pubsubTeardown = pubsub.NewWithClient(psClient)
		defer pubsubTeardown()
	} else {
		log.Info("GCP_PROJECT not set, ball events will not be published")
	}

	proc := processor.New(live, notifier, metricsSvc, counters, publisher, cfg.DryRun)

	var transport subscription.Transport
	switch cfg.Feed.Transport {
	case config.TransportPubSub:
		transport = pubsub.NewTransport(psClient, cfg.PubSub.SubscriptionID)
	default:
		transport = subscription.NewWebsocketTransport(cfg.Feed.WebsocketURL)
	}
	reconnecting := subscription.NewReconnecting(transport, subscription.ExponentialBackoff(cfg.Feed.ReconnectBase, cfg.Feed.ReconnectTries))
	reconnecting.OnRetry = func(attempt int, delay time.Duration) {
		metricsSvc.IncReconnects()
		log.Info("Reconnecting to live feed", "attempt", attempt, "delay", delay)
	}
	subs := subscription.NewManager(reconnecting, proc)
	defer subs.Unsubscribe()

	s := server.NewServer(
		feedCtx,
		sessions,
		live,
		subs,
		matchClient,
		metricsSvc,
		metricsHandler,
		counters,
		cfg,
		notifier,
		proc,
		publisher,
	)

	// --- Record startup time ---
	startupDuration := time.Since(startTime)
	metricsSvc.SetStartupTime(startupDuration.Seconds())
	log.Info("Startup time recorded", "duration_ms", startupDuration.Milliseconds(), "transport", cfg.Feed.Transport, "dryRun", cfg.DryRun)

	// --- Graceful shutdown setup ---
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: s,
	}

	// Channel to listen for errors coming from the server
	serverErrors := make(chan error, 1)

	// Start the server in a goroutine
	go func() {
		log.Info("Server started", "port", cfg.Port)
		serverErrors <- srv.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-shutdown:
		log.Info("Shutdown signal received", "signal", sig)

		// Create a context with a timeout for the shutdown.
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		// Attempt to gracefully shut down the server.
		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Server shutdown failed", "error", err)
		} else {
			log.Info("Server gracefully stopped")
		}
	}

	log.Info("Server process shutting down")
}
