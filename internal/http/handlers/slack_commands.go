package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/wicketkeeper/internal/livescore"
	"github.com/mauv0809/wicketkeeper/internal/notifier"
	"github.com/slack-go/slack"
)

// respondWithSlackMsg is a helper to format and write a Slack message as an HTTP response.
func respondWithSlackMsg(w http.ResponseWriter, msg slack.Message) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(msg); err != nil {
		log.Error("Failed to encode slack message to JSON", "error", err)
	}
}

// ScoreCommandHandler answers the /score slash command with the live scorecard.
func ScoreCommandHandler(live *livescore.Container, notifier notifier.Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cmd, err := slack.SlashCommandParse(r)
		if err != nil {
			http.Error(w, "Error parsing form", http.StatusBadRequest)
			return
		}
		log.Info("Received score command", "user", cmd.UserName, "channel", cmd.ChannelName)

		msg, err := notifier.FormatScoreResponse(live.Snapshot().Data)
		if err != nil {
			http.Error(w, "Failed to format score", http.StatusInternalServerError)
			log.Error("Failed to format score", "error", err)
			return
		}

		slackMsg, ok := msg.(slack.Message)
		if !ok {
			// Non-Slack notifiers return plain text.
			WriteJSON(w, http.StatusOK, map[string]any{"text": msg})
			return
		}
		respondWithSlackMsg(w, slackMsg)
	}
}
