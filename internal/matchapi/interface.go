package matchapi

import (
	"context"

	"github.com/mauv0809/wicketkeeper/internal/scoring"
)

// MatchClient fetches match snapshots from the upstream match API.
type MatchClient interface {
	GetMatch(ctx context.Context, matchID string) (*scoring.Match, error)
	ListMatches(ctx context.Context, status scoring.MatchStatus) ([]MatchSummary, error)
}
