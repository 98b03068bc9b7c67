package matchapi

import (
	"errors"

	"github.com/mauv0809/wicketkeeper/internal/scoring"
)

// ErrMatchNotFound is returned when the API has no match with the given id.
var ErrMatchNotFound = errors.New("match not found")

// MatchSummary is a row of the match listing.
type MatchSummary struct {
	ID     string              `json:"id"`
	TeamA  string              `json:"teamA"`
	TeamB  string              `json:"teamB"`
	Status scoring.MatchStatus `json:"status"`
	Venue  string              `json:"venue,omitempty"`
}

type listResponse struct {
	Matches []struct {
		ID    string       `json:"id"`
		TeamA scoring.Team `json:"teamA"`
		TeamB scoring.Team `json:"teamB"`
		Meta  scoring.Meta `json:"meta"`
	} `json:"matches"`
}
