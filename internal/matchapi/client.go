package matchapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/wicketkeeper/internal/livescore"
	"github.com/mauv0809/wicketkeeper/internal/scoring"
	"github.com/sethvargo/go-retry"
)

// APIClient is an HTTP client for the match API.
type APIClient struct {
	httpClient *http.Client
	BaseURL    string
	retries    uint64
}

// NewClient creates a new match API client.
func NewClient(baseURL string) MatchClient {
	return &APIClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		BaseURL:    baseURL,
		retries:    3,
	}
}

// Ensure APIClient implements the MatchClient interface.
var _ MatchClient = (*APIClient)(nil)

// GetMatch fetches the full snapshot of a match.
func (c *APIClient) GetMatch(ctx context.Context, matchID string) (*scoring.Match, error) {
	endpoint := fmt.Sprintf("%s/v1/matches/%s", c.BaseURL, url.PathEscape(matchID))

	var payload livescore.MatchPayload
	if err := c.getJSON(ctx, endpoint, &payload); err != nil {
		return nil, err
	}
	m := payload.ToMatch()
	if m.ID == "" {
		m.ID = matchID
	}
	log.Info("Fetched match", "matchID", m.ID, "innings", len(m.Innings), "status", m.Meta.Status)
	return m, nil
}

// ListMatches returns every match with the given status, following pages
// until a short page is returned.
func (c *APIClient) ListMatches(ctx context.Context, status scoring.MatchStatus) ([]MatchSummary, error) {
	const pageSize = 100
	var (
		all  []MatchSummary
		page = 0
	)
	for {
		q := url.Values{}
		if status != "" {
			q.Set("status", string(status))
		}
		q.Set("size", strconv.Itoa(pageSize))
		q.Set("page", strconv.Itoa(page))
		endpoint := fmt.Sprintf("%s/v1/matches?%s", c.BaseURL, q.Encode())

		var resp listResponse
		if err := c.getJSON(ctx, endpoint, &resp); err != nil {
			return nil, fmt.Errorf("error listing matches: %w", err)
		}
		for _, m := range resp.Matches {
			all = append(all, MatchSummary{
				ID:     m.ID,
				TeamA:  m.TeamA.Name,
				TeamB:  m.TeamB.Name,
				Status: m.Meta.Status,
				Venue:  m.Meta.Venue,
			})
		}
		if len(resp.Matches) < pageSize {
			break
		}
		page++
	}
	log.Info("Fetched all matches", "count", len(all), "status", status)
	return all, nil
}

// getJSON issues a GET and decodes the body into out. Transport failures and
// 5xx responses are retried with backoff; other statuses fail immediately.
func (c *APIClient) getJSON(ctx context.Context, endpoint string, out any) error {
	backoff := retry.WithMaxRetries(c.retries, retry.NewExponential(200*time.Millisecond))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "wicketkeeper/1.0")
		log.Debug("Requesting match API", "url", endpoint)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return retry.RetryableError(fmt.Errorf("failed to execute request: %w", err))
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return ErrMatchNotFound
		case resp.StatusCode >= http.StatusInternalServerError:
			body, _ := io.ReadAll(resp.Body)
			log.Warn("Match API server error, retrying", "status", resp.StatusCode, "body", string(body))
			return retry.RetryableError(fmt.Errorf("received non-OK HTTP status: %d", resp.StatusCode))
		case resp.StatusCode != http.StatusOK:
			body, _ := io.ReadAll(resp.Body)
			log.Error("Received non-OK HTTP status from match API", "status", resp.StatusCode, "body", string(body))
			return fmt.Errorf("received non-OK HTTP status: %d", resp.StatusCode)
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		return nil
	})
}
