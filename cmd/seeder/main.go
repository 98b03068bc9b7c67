package main

import (
	"math/rand"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/mauv0809/wicketkeeper/internal/database"
	"github.com/mauv0809/wicketkeeper/internal/editor"
)

// Simplified config loading for the script
func loadConfig() map[string]string {
	err := godotenv.Load()
	if err != nil {
		log.Warn("No .env file found, reading from environment variables")
	}

	config := map[string]string{
		"DB_NAME":        "wicketkeeper.db",
		"MIGRATIONS_DIR": "./migrations",
		"SEED_MATCH_ID":  "demo-match",
	}
	for _, key := range []string{"DB_NAME", "MIGRATIONS_DIR", "SEED_MATCH_ID", "TURSO_PRIMARY_URL", "TURSO_AUTH_TOKEN"} {
		if value, ok := os.LookupEnv(key); ok {
			config[key] = value
		}
	}
	return config
}

// outcomes is weighted towards dots and singles.
var outcomes = []string{"0", "0", "0", "1", "1", "1", "2", "2", "3", "4", "4", "6", "W", "WD", "NB", "LB", "B"}

func main() {
	log.Info("Starting editor session seeder...")
	cfg := loadConfig()

	db, teardown, err := database.InitDB(cfg["DB_NAME"], cfg["TURSO_PRIMARY_URL"], cfg["TURSO_AUTH_TOKEN"], cfg["MIGRATIONS_DIR"])
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer teardown()
	store := editor.NewStore(db)

	const numSessions = 4
	const ballsPerSession = 60
	startTime := time.Now()

	for i := 0; i < numSessions; i++ {
		ed := editor.New(i%2+1, []editor.Batsman{
			{Name: "Seeder Opener A", Striker: true},
			{Name: "Seeder Opener B"},
		})
		for b := 0; b < ballsPerSession; b++ {
			if _, err := ed.AddBallRun(outcomes[rand.Intn(len(outcomes))]); err != nil {
				log.Fatalf("Failed to record seeded ball: %s", err)
			}
		}

		session := &editor.Session{ID: uuid.NewString(), MatchID: cfg["SEED_MATCH_ID"], Editor: ed}
		if err := store.SaveSession(session); err != nil {
			log.Fatalf("Failed to save seeded session: %s", err)
		}
		summary := ed.Summary()
		log.Info("Seeded session", "sessionID", session.ID, "innings", ed.InningsNumber, "score", summary.Score, "overs", summary.Overs)
	}

	log.Info("Successfully seeded editor sessions.", "count", numSessions, "duration", time.Since(startTime))
}
