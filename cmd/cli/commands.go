package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/spf13/cobra"
)

var (
	matchStatus   string
	inningsNumber int
	batsmen       []string
)

func init() {
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(matchesCmd)
	rootCmd.AddCommand(liveCmd)
	rootCmd.AddCommand(subscribeCmd)
	rootCmd.AddCommand(unsubscribeCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(newSessionCmd)
	rootCmd.AddCommand(ballCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(undoCmd)

	matchesCmd.Flags().StringVar(&matchStatus, "status", "live", "Only list matches with this status")
	newSessionCmd.Flags().IntVar(&inningsNumber, "innings", 1, "Innings number being scored")
	newSessionCmd.Flags().StringSliceVar(&batsmen, "batsmen", nil, "Opening batsmen, striker first")
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/health", nil)
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/metrics", nil)
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Get the persisted counters",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/stats", nil)
	},
}

var matchesCmd = &cobra.Command{
	Use:   "matches",
	Short: "List matches from the match API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/matches?status="+url.QueryEscape(matchStatus), nil)
	},
}

var liveCmd = &cobra.Command{
	Use:   "live",
	Short: "Show the live match state",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/live", nil)
	},
}

var subscribeCmd = &cobra.Command{
	Use:   "subscribe <matchID>",
	Short: "Load a match and follow its live feed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodPost, "/live/subscribe?matchID="+url.QueryEscape(args[0]), nil)
	},
}

var unsubscribeCmd = &cobra.Command{
	Use:   "unsubscribe",
	Short: "Stop following the live feed",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodPost, "/live/unsubscribe", nil)
	},
}

var sessionsCmd = &cobra.Command{
	Use:   "sessions [sessionID]",
	Short: "List editor sessions, or show one",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			return performRequest(http.MethodGet, "/editor/sessions/"+url.PathEscape(args[0]), nil)
		}
		return performRequest(http.MethodGet, "/editor/sessions", nil)
	},
}

var newSessionCmd = &cobra.Command{
	Use:   "new-session <matchID>",
	Short: "Start scoring an innings by hand",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(batsmen) == 0 {
			return fmt.Errorf("at least one batsman is required")
		}
		lineup := make([]map[string]any, 0, len(batsmen))
		for i, name := range batsmen {
			lineup = append(lineup, map[string]any{"name": strings.TrimSpace(name), "striker": i == 0})
		}
		return performRequest(http.MethodPost, "/editor/sessions", map[string]any{
			"matchId":       args[0],
			"inningsNumber": inningsNumber,
			"batsmen":       lineup,
		})
	},
}

var ballCmd = &cobra.Command{
	Use:   "ball <sessionID> <outcome>",
	Short: "Record a delivery (0-6, W, WD, NB, LB, B)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodPost, "/editor/sessions/"+url.PathEscape(args[0])+"/balls", map[string]string{"token": args[1]})
	},
}

var editCmd = &cobra.Command{
	Use:   "edit <sessionID> <over> <ball> <outcome>",
	Short: "Correct a recorded delivery",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		endpoint := fmt.Sprintf("/editor/sessions/%s/overs/%s/balls/%s", url.PathEscape(args[0]), url.PathEscape(args[1]), url.PathEscape(args[2]))
		return performRequest(http.MethodPut, endpoint, map[string]string{"token": args[3]})
	},
}

var undoCmd = &cobra.Command{
	Use:   "undo <sessionID>",
	Short: "Remove the last recorded delivery",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodDelete, "/editor/sessions/"+url.PathEscape(args[0])+"/balls/last", nil)
	},
}

func performRequest(method, endpoint string, body any) error {
	target := host + endpoint
	if dryRun {
		sep := "?"
		if strings.Contains(endpoint, "?") {
			sep = "&"
		}
		target += sep + "dry_run=true"
	}
	fmt.Printf("Making %s request to %s\n", method, target)

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(method, target, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(respBody))

	return nil
}
