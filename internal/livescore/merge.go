package livescore

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/wicketkeeper/internal/scoring"
)

// MergeInnings folds one live innings payload into the match snapshot.
//
// The innings is found by comparing ids as strings. A payload without an id
// never matches. When none matches, m is returned unchanged with false. Otherwise a new Match is returned whose
// Innings slice is a fresh copy with the matching element replaced and whose
// Meta.LastUpdated is now. m itself is never modified.
func MergeInnings(m *scoring.Match, p InningsPayload, now time.Time) (*scoring.Match, bool) {
	if m == nil {
		return nil, false
	}
	if p.ID == "" {
		log.Debug("Live payload without innings id ignored", "matchID", m.ID)
		return m, false
	}
	idx := -1
	for i := range m.Innings {
		if m.Innings[i].ID == string(p.ID) {
			idx = i
			break
		}
	}
	if idx == -1 {
		log.Debug("Live payload for unknown innings ignored", "matchID", m.ID, "inningsID", p.ID)
		return m, false
	}

	next := *m
	next.Innings = make([]scoring.Innings, len(m.Innings))
	copy(next.Innings, m.Innings)
	next.Innings[idx] = p.ToPartial().Over(m.Innings[idx])
	next.Meta.LastUpdated = now
	return &next, true
}

// applyBall is the copy-on-write form of scoring.ApplyBallEvent.
func applyBall(m *scoring.Match, ev scoring.BallEvent, now time.Time) (*scoring.Match, bool) {
	if m == nil {
		return nil, false
	}
	innings := make([]scoring.Innings, len(m.Innings))
	copy(innings, m.Innings)
	if !scoring.ApplyBallEvent(innings, ev) {
		return m, false
	}
	next := *m
	next.Innings = innings
	next.Meta.LastUpdated = now
	return &next, true
}
