package pubsub

import (
	"sync"

	"cloud.google.com/go/pubsub"
)

type client struct {
	client   *pubsub.Client
	mu       sync.Mutex
	topics   map[EventType]*pubsub.Topic
	teardown func()
}

// EventType names the topic a message is sent to.
type EventType string

const EventBallRecorded EventType = "ball-events"

// AttrMatchID is the message attribute carrying the match a message belongs to.
const AttrMatchID = "matchId"

// BallRecorded is published for every delivery entered through the editor.
type BallRecorded struct {
	SessionID string `json:"sessionId"`
	MatchID   string `json:"matchId"`
	Over      int    `json:"over"`
	Ball      int    `json:"ball"`
	Token     string `json:"token"`
	RunsAdded int    `json:"runsAdded"`
	IsLegal   bool   `json:"isLegal"`
	IsWicket  bool   `json:"isWicket"`
	Timestamp int64  `json:"timestamp"`
}
