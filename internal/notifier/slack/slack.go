package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/wicketkeeper/internal/metrics"
	"github.com/mauv0809/wicketkeeper/internal/notifier"
	"github.com/mauv0809/wicketkeeper/internal/scoring"
	"github.com/slack-go/slack"
)

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

// Notifier handles sending notifications to Slack.
type Notifier struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
}

// NewNotifier creates a new Notifier.
func NewNotifier(token, channelID string, metrics metrics.Metrics) *Notifier {
	api := slack.New(token)
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

// NewNotifierWithAPI creates a new Notifier with a specific slack.Client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

func (s *Notifier) sendMessage(message slack.Message, dryRun bool) (string, string, error) {
	if dryRun {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "message", string(jsonMsg))
		return "dry-run-ts", "dry-run-thread-ts", nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionAsUser(true),
	)

	if err != nil {
		s.metrics.IncSlackNotifFailed()
		log.Error("Failed to send Slack message", "error", err, "channel", channelID)
		return "", "", fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncSlackNotifSent()
	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	return channelID, timestamp, nil
}

func (s *Notifier) SendWicketNotification(match *scoring.Match, innings scoring.Innings, out scoring.DismissedBatter, dryRun bool) error {
	_, _, err := s.sendMessage(s.formatWicket(match, innings, out), dryRun)
	return err
}

func (s *Notifier) SendMilestoneNotification(match *scoring.Match, innings scoring.Innings, batter scoring.Batsman, milestone int, dryRun bool) error {
	_, _, err := s.sendMessage(s.formatMilestone(match, innings, batter, milestone), dryRun)
	return err
}

func (s *Notifier) SendInningsCompleteNotification(match *scoring.Match, innings scoring.Innings, dryRun bool) error {
	_, _, err := s.sendMessage(s.formatInningsComplete(match, innings), dryRun)
	return err
}

func teamName(match *scoring.Match, id string) string {
	switch id {
	case match.TeamA.ID:
		return match.TeamA.Name
	case match.TeamB.ID:
		return match.TeamB.Name
	}
	return id
}

func scoreLine(match *scoring.Match, in scoring.Innings) string {
	overs := in.Score.Overs
	if overs == "" {
		overs = scoring.OversString(in.Score.Balls)
	}
	return fmt.Sprintf("%s %d/%d (%s ov)", teamName(match, in.BattingTeam), in.Score.Runs, in.Score.Wickets, overs)
}

func dismissalText(d scoring.Dismissal) string {
	switch d.Type {
	case scoring.DismissalBowled:
		return "b " + d.Bowler
	case scoring.DismissalLBW:
		return "lbw b " + d.Bowler
	case scoring.DismissalCaught:
		if d.Fielder == "" || d.Fielder == d.Bowler {
			return "c & b " + d.Bowler
		}
		return fmt.Sprintf("c %s b %s", d.Fielder, d.Bowler)
	case scoring.DismissalStumped:
		return fmt.Sprintf("st %s b %s", d.Fielder, d.Bowler)
	case scoring.DismissalRunOut:
		if d.Fielder != "" {
			return fmt.Sprintf("run out (%s)", d.Fielder)
		}
		return "run out"
	case scoring.DismissalHitWicket:
		return "hit wicket b " + d.Bowler
	}
	return strings.ReplaceAll(string(d.Type), "_", " ")
}

// formatWicket creates the Slack message for a dismissal using Block Kit.
func (s *Notifier) formatWicket(match *scoring.Match, in scoring.Innings, out scoring.DismissedBatter) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "🏏 Wicket!", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	detailsText := fmt.Sprintf("%s %s %d (%d)", out.Name, dismissalText(out.Dismissal), out.Runs, out.Balls)
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", detailsText, true, false), nil, nil))

	contextText := slack.NewTextBlockObject("plain_text", scoreLine(match, in), true, false)
	blocks = append(blocks, slack.NewContextBlock("", contextText))

	return slack.NewBlockMessage(blocks...)
}

// formatMilestone creates the Slack message for a batting milestone.
func (s *Notifier) formatMilestone(match *scoring.Match, in scoring.Innings, b scoring.Batsman, milestone int) slack.Message {
	label := "Fifty"
	if milestone >= 100 {
		label = "Hundred"
	}
	blocks := []slack.Block{
		slack.NewHeaderBlock(slack.NewTextBlockObject("plain_text", fmt.Sprintf("🏏 %s for %s!", label, b.Name), true, false)),
		slack.NewSectionBlock(slack.NewTextBlockObject("plain_text",
			fmt.Sprintf("%d off %d balls (4s: %d, 6s: %d, SR %s)", b.Runs, b.Balls, b.Fours, b.Sixes, b.StrikeRate), true, false), nil, nil),
		slack.NewContextBlock("", slack.NewTextBlockObject("plain_text", scoreLine(match, in), true, false)),
	}
	return slack.NewBlockMessage(blocks...)
}

// formatInningsComplete creates the Slack message for the end of an innings,
// including the top bowler figures.
func (s *Notifier) formatInningsComplete(match *scoring.Match, in scoring.Innings) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", fmt.Sprintf("🏏 Innings %d complete", in.InningsNumber), true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	summary := fmt.Sprintf("%s\nRun rate: %s", scoreLine(match, in), in.RunRate())
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", summary, true, false), nil, nil))

	if len(in.Bowling) > 0 {
		best := in.Bowling[0]
		for _, b := range in.Bowling[1:] {
			if b.Wickets > best.Wickets || (b.Wickets == best.Wickets && b.Runs < best.Runs) {
				best = b
			}
		}
		bowlingText := fmt.Sprintf("Best bowling: %s %d/%d (%s)", best.Name, best.Wickets, best.Runs, scoring.OversString(best.Balls))
		blocks = append(blocks, slack.NewContextBlock("", slack.NewTextBlockObject("plain_text", bowlingText, true, false)))
	}

	return slack.NewBlockMessage(blocks...)
}

// FormatScoreResponse renders the live scorecard for the /score slash command.
func (s *Notifier) FormatScoreResponse(match *scoring.Match) (any, error) {
	if match == nil {
		return slack.NewBlockMessage(
			slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", "No match is being followed right now.", false, false), nil, nil),
		), nil
	}

	blocks := make([]slack.Block, 0, len(match.Innings)+3)
	title := fmt.Sprintf("🏏 %s vs %s", match.TeamA.Name, match.TeamB.Name)
	blocks = append(blocks, slack.NewHeaderBlock(slack.NewTextBlockObject("plain_text", title, true, false)))

	for _, in := range match.Innings {
		if in.Score.Balls == 0 && in.Score.Runs == 0 && !in.IsCompleted {
			continue
		}
		line := fmt.Sprintf("*%s*  RR %s", scoreLine(match, in), in.RunRate())
		if in.IsCompleted {
			line += "  _(complete)_"
		}
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", line, false, false), nil, nil))
	}

	if current := currentInnings(match); current != nil {
		var crease []string
		for _, b := range []*scoring.Batsman{current.Batting.Striker, current.Batting.NonStriker} {
			if b != nil {
				crease = append(crease, fmt.Sprintf("%s %d (%d)", b.Name, b.Runs, b.Balls))
			}
		}
		if len(crease) > 0 {
			crease[0] += "*"
			blocks = append(blocks, slack.NewContextBlock("", slack.NewTextBlockObject("plain_text", strings.Join(crease, "  "), true, false)))
		}
	}
	if match.Meta.Status != "" {
		status := fmt.Sprintf("%s · %s", match.Meta.Status, match.Meta.Venue)
		blocks = append(blocks, slack.NewContextBlock("", slack.NewTextBlockObject("plain_text", strings.TrimSuffix(status, " · "), true, false)))
	}
	return slack.NewBlockMessage(blocks...), nil
}

// currentInnings is the latest innings that has started and is not complete.
func currentInnings(match *scoring.Match) *scoring.Innings {
	for i := len(match.Innings) - 1; i >= 0; i-- {
		in := match.Innings[i]
		if !in.IsCompleted && (in.Score.Balls > 0 || in.Batting.Striker != nil) {
			return &match.Innings[i]
		}
	}
	return nil
}
