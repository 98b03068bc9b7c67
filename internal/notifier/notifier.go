package notifier

import "github.com/mauv0809/wicketkeeper/internal/scoring"

// Notifier defines a high-level interface for sending notifications about match events.
// This decouples the rest of the application from the specific notification provider (e.g., Slack).
type Notifier interface {
	// A batter was dismissed.
	SendWicketNotification(match *scoring.Match, innings scoring.Innings, out scoring.DismissedBatter, dryRun bool) error
	// A batter reached a fifty or a hundred.
	SendMilestoneNotification(match *scoring.Match, innings scoring.Innings, batter scoring.Batsman, milestone int, dryRun bool) error
	// An innings closed.
	SendInningsCompleteNotification(match *scoring.Match, innings scoring.Innings, dryRun bool) error

	// Formatting for slash command responses. A nil match means nothing is live.
	FormatScoreResponse(match *scoring.Match) (any, error)
}
