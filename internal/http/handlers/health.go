package handlers

import (
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/wicketkeeper/internal/metrics"
)

func HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

// StatsHandler returns the persisted counters as JSON.
func StatsHandler(counters metrics.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := counters.GetAll()
		if err != nil {
			http.Error(w, "Failed to get stats", http.StatusInternalServerError)
			log.Error("Failed to get counters from store", "error", err)
			return
		}
		WriteJSON(w, http.StatusOK, stats)
	}
}
