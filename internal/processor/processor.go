package processor

import (
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/wicketkeeper/internal/editor"
	"github.com/mauv0809/wicketkeeper/internal/livescore"
	"github.com/mauv0809/wicketkeeper/internal/metrics"
	"github.com/mauv0809/wicketkeeper/internal/pubsub"
	"github.com/mauv0809/wicketkeeper/internal/scoring"
	"github.com/mauv0809/wicketkeeper/internal/subscription"
)

var _ subscription.Sink = (*Processor)(nil)

// New creates a new Processor. ps may be nil when ball events are not
// published. With dryRun set, notifications and publishes are only logged.
func New(live Live, notifier Notifier, metrics metrics.Metrics, counters metrics.Store, ps pubsub.PubSubClient, dryRun bool) *Processor {
	return &Processor{
		live:     live,
		pubsub:   ps,
		notifier: notifier,
		metrics:  metrics,
		counters: counters,
		dryRun:   dryRun,
	}
}

// UpdateInningsScore merges a live payload and reports what changed.
func (p *Processor) UpdateInningsScore(payload livescore.InningsPayload) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	startTime := time.Now()
	before := p.live.Snapshot().Data
	merged := p.live.UpdateInningsScore(payload)
	p.metrics.ObserveMergeDuration(time.Since(startTime).Seconds())

	if !merged {
		p.metrics.IncPayloadsMissed()
		return false
	}
	p.metrics.IncPayloadsMerged()
	p.counters.Increment(metrics.KeyPayloadsMerged)

	after := p.live.Snapshot().Data
	p.processChanges(after, findInnings(before, string(payload.ID)), findInnings(after, string(payload.ID)))
	return true
}

func (p *Processor) SetConnectionStatus(connected bool) {
	p.live.SetConnectionStatus(connected)
	p.metrics.SetConnected(connected)
}

func (p *Processor) SetError(msg string) {
	p.live.SetError(msg)
	if msg != "" {
		p.metrics.IncFeedErrors()
	}
}

func findInnings(m *scoring.Match, id string) *scoring.Innings {
	if m == nil {
		return nil
	}
	for i := range m.Innings {
		if m.Innings[i].ID == id {
			return &m.Innings[i]
		}
	}
	return nil
}

// processChanges compares one innings before and after a merge.
func (p *Processor) processChanges(match *scoring.Match, before, after *scoring.Innings) {
	if before == nil || after == nil {
		return
	}

	seen := make(map[string]bool, len(before.Dismissed))
	for _, d := range before.Dismissed {
		seen[d.Name] = true
	}
	for _, d := range after.Dismissed {
		if seen[d.Name] {
			continue
		}
		log.Info("Wicket", "matchID", match.ID, "innings", after.InningsNumber, "batter", d.Name, "how", d.Dismissal.Type)
		p.metrics.IncWickets()
		if err := p.notifier.SendWicketNotification(match, *after, d, p.dryRun); err != nil {
			log.Error("Failed to send wicket notification", "error", err, "matchID", match.ID)
		}
	}

	for _, b := range []*scoring.Batsman{after.Batting.Striker, after.Batting.NonStriker} {
		if b == nil {
			continue
		}
		prev := previousRuns(before, b.Name)
		for _, m := range milestones {
			if prev < m && b.Runs >= m {
				log.Info("Batting milestone", "matchID", match.ID, "batter", b.Name, "milestone", m)
				if err := p.notifier.SendMilestoneNotification(match, *after, *b, m, p.dryRun); err != nil {
					log.Error("Failed to send milestone notification", "error", err, "matchID", match.ID)
				}
			}
		}
	}

	if !before.IsCompleted && after.IsCompleted {
		log.Info("Innings complete", "matchID", match.ID, "innings", after.InningsNumber, "runs", after.Score.Runs, "wickets", after.Score.Wickets)
		if err := p.notifier.SendInningsCompleteNotification(match, *after, p.dryRun); err != nil {
			log.Error("Failed to send innings notification", "error", err, "matchID", match.ID)
		}
	}
}

// previousRuns returns the runs a batter had at the crease before the merge,
// or zero for a new batter.
func previousRuns(in *scoring.Innings, name string) int {
	for _, b := range []*scoring.Batsman{in.Batting.Striker, in.Batting.NonStriker} {
		if b != nil && b.Name == name {
			return b.Runs
		}
	}
	return 0
}

// RecordBall handles a delivery entered in the editor. The ball is folded
// into the live snapshot when it shows the same match, and published for
// downstream consumers. It reports whether the snapshot changed.
func (p *Processor) RecordBall(session *editor.Session, ev scoring.BallEvent, dryRun bool) bool {
	p.metrics.IncBallsRecorded()
	p.counters.Increment(metrics.KeyBallsRecorded)
	if ev.IsWicket {
		p.metrics.IncWickets()
		p.counters.Increment(metrics.KeyWicketsRecorded)
	}

	applied := false
	if current := p.live.Snapshot().Data; current != nil && current.ID == session.MatchID {
		p.mu.Lock()
		applied = p.live.ApplyBallEvent(ev)
		p.mu.Unlock()
	}

	msg := pubsub.BallRecorded{
		SessionID: session.ID,
		MatchID:   session.MatchID,
		Over:      ev.OverIndex,
		Ball:      ev.BallIndex,
		Token:     string(ev.Token),
		RunsAdded: ev.RunsAdded,
		IsLegal:   ev.IsLegalBall,
		IsWicket:  ev.IsWicket,
		Timestamp: ev.Timestamp.UnixMilli(),
	}
	switch {
	case p.pubsub == nil:
	case dryRun || p.dryRun:
		log.Info("[Dry Run] Would publish ball event", "sessionID", session.ID, "token", ev.Token)
	default:
		attrs := map[string]string{
			pubsub.AttrMatchID: session.MatchID,
			"innings":          strconv.Itoa(ev.Innings),
		}
		if err := p.pubsub.Publish(pubsub.EventBallRecorded, msg, attrs); err != nil {
			log.Error("Failed to publish ball event", "error", err, "sessionID", session.ID)
		}
	}
	log.Debug("Ball processed", "sessionID", session.ID, "matchID", session.MatchID, "appliedToLive", applied)
	return applied
}
