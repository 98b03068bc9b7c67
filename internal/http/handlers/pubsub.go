package handlers

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/wicketkeeper/internal/livescore"
	"github.com/mauv0809/wicketkeeper/internal/pubsub"
	"github.com/mauv0809/wicketkeeper/internal/subscription"
)

type pushMessage struct {
	Subscription string `json:"subscription"`
	Message      struct {
		Data       string            `json:"data"`
		Attributes map[string]string `json:"attributes"`
		MessageID  string            `json:"messageId"`
	} `json:"message"`
}

// InningsPushHandler accepts innings updates delivered by a Pub/Sub push
// subscription. Messages for a match other than the followed one are
// acknowledged and dropped.
func InningsPushHandler(sink subscription.Sink, followed func() string, pubsubClient pubsub.PubSubClient) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bodyBytes, err := io.ReadAll(r.Body)
		if err != nil {
			log.Error("Failed to read request body", "error", err)
			http.Error(w, "Failed to read request body", http.StatusInternalServerError)
			return
		}
		log.Debug("Received innings push message", "body", string(bodyBytes))

		var pubsubMsg pushMessage
		if err := json.Unmarshal(bodyBytes, &pubsubMsg); err != nil {
			log.Error("Failed to unmarshal wrapper JSON", "error", err)
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}

		rawData, err := base64.StdEncoding.DecodeString(pubsubMsg.Message.Data)
		if err != nil {
			log.Error("Failed to decode base64 data", "error", err)
			http.Error(w, "Invalid base64 data", http.StatusBadRequest)
			return
		}

		matchID := pubsubMsg.Message.Attributes[pubsub.AttrMatchID]
		if current := followed(); current == "" || matchID != current {
			log.Debug("Ignoring push message for another match", "matchID", matchID, "following", current)
			w.WriteHeader(http.StatusNoContent)
			return
		}

		var payload livescore.InningsPayload
		if err := pubsubClient.ProcessMessage(rawData, &payload); err != nil {
			// Returning 2xx acks the message; a payload we cannot decode will never succeed.
			log.Error("Failed to decode innings payload", "error", err, "messageID", pubsubMsg.Message.MessageID)
			w.WriteHeader(http.StatusNoContent)
			return
		}
		merged := sink.UpdateInningsScore(payload)
		WriteJSON(w, http.StatusOK, map[string]bool{"merged": merged})
	}
}
